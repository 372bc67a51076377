package reg

import "testing"

func TestRegisterNames(t *testing.T) {
	tests := []struct {
		reg      Register
		expected string
	}{
		{Gpr(R0), "r0"},
		{Gpr(V0), "v0"},
		{Gpr(A0), "a0"},
		{Gpr(S7), "s7"},
		{Gpr(RA), "ra"},
		{Fpr(12), "f12"},
		{Register{Kind: VF, Index: 3}, "vf3"},
		{Register{Kind: VI, Index: 15}, "vi15"},
		{Register{}, "<no-reg>"},
	}

	for _, tc := range tests {
		got := tc.reg.String()
		if got != tc.expected {
			t.Errorf("String(%#v) = %q, want %q", tc.reg, got, tc.expected)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	names := []string{"r0", "at", "t9", "sp", "f0", "f31", "vf0", "vf31", "vi7", "c12", "pcr1"}
	for _, name := range names {
		r, err := Parse(name)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", name, err)
			continue
		}
		if r.String() != name {
			t.Errorf("Parse(%q).String() = %q", name, r.String())
		}
	}
}

func TestParseErrors(t *testing.T) {
	for _, name := range []string{"", "x9", "f32", "vi16", "vfq"} {
		if _, err := Parse(name); err == nil {
			t.Errorf("Parse(%q) should fail", name)
		}
	}
}

func TestZeroRegisterIsInvalid(t *testing.T) {
	var r Register
	if r.Valid() {
		t.Error("zero register should not be valid")
	}
	if !Gpr(R0).Valid() {
		t.Error("r0 should be valid")
	}
}

func TestCallerSaved(t *testing.T) {
	saved := make(map[Register]bool)
	for _, r := range CallerSaved() {
		saved[r] = true
	}
	for _, name := range []string{"v0", "a0", "t3", "t9", "f0"} {
		if !saved[MustParse(name)] {
			t.Errorf("%s should be caller-saved", name)
		}
	}
	for _, name := range []string{"s0", "s7", "sp", "gp", "f30"} {
		if saved[MustParse(name)] {
			t.Errorf("%s should be callee-saved", name)
		}
	}
}

func TestLess(t *testing.T) {
	if !Gpr(A0).Less(Gpr(A1)) {
		t.Error("a0 should sort before a1")
	}
	if !Gpr(RA).Less(Fpr(0)) {
		t.Error("gprs should sort before fprs")
	}
}
