package ir

import "testing"

func TestStaticTruth(t *testing.T) {
	tests := []struct {
		name  string
		node  Node
		value bool
		known bool
	}{
		{"equal constants", &Compare{Condition: Cond2(Equal, Const(3), Const(3))}, true, true},
		{"not equal constants", &Compare{Condition: Cond2(NotEqual, Const(3), Const(3))}, false, true},
		{"truthy false symbol", &Compare{Condition: Cond1(Truthy, FalseSentinel())}, false, true},
		{"not false symbol", &Compare{Condition: Cond1(False, FalseSentinel())}, true, true},
		{"always", &Compare{Condition: Cond0(Always)}, true, true},
		{"register operand", &Compare{Condition: Cond1(Zero, Gpr("a0"))}, false, false},
		{"false sentinel", FalseSentinel(), false, true},
		{"other symbol", &Symbol{Name: "foo"}, true, true},
		{"integer", Const(0), true, true},
		{"register", Gpr("a0"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, known := StaticTruth(tt.node)
			if value != tt.value || known != tt.known {
				t.Errorf("StaticTruth() = %v, %v, want %v, %v", value, known, tt.value, tt.known)
			}
		})
	}
}

func TestShortCircuitAndStopsAtFalseEntry(t *testing.T) {
	out1, out2, out3 := Gpr("s4"), Gpr("s5"), Gpr("s6")
	sc := &ShortCircuit{
		Kind: ShortCircuitAnd,
		Entries: []ShortCircuitEntry{
			{Condition: &Compare{Condition: Cond2(Equal, Const(1), Const(1))}, Output: out1},
			{Condition: &Compare{Condition: Cond2(Equal, Const(1), Const(2))}, Output: out2},
			// never consulted; would be undecidable
			{Condition: &Compare{Condition: Cond1(Truthy, Gpr("a0"))}, Output: out3},
		},
		FinalResult: Gpr("v0"),
	}

	result, consulted, known := sc.Result()
	if !known {
		t.Fatal("Result() should be known")
	}
	if result != out2 {
		t.Errorf("Result() = %s, want s5", Print(result, nil))
	}
	if consulted != 2 {
		t.Errorf("consulted %d entries, want 2", consulted)
	}
}

func TestShortCircuitOr(t *testing.T) {
	falseEntry := ShortCircuitEntry{Condition: &Compare{Condition: Cond0(Never)}, Output: Gpr("s4")}
	trueEntry := ShortCircuitEntry{Condition: &Compare{Condition: Cond0(Always)}, Output: Gpr("s5")}

	sc := &ShortCircuit{Kind: ShortCircuitOr, Entries: []ShortCircuitEntry{falseEntry, trueEntry, falseEntry}}
	result, consulted, known := sc.Result()
	if !known || result != trueEntry.Output || consulted != 2 {
		t.Errorf("Result() = %v, %d, %v, want s5 after 2 entries", result, consulted, known)
	}

	// nothing taken: value of the last entry
	sc = &ShortCircuit{Kind: ShortCircuitOr, Entries: []ShortCircuitEntry{
		falseEntry,
		{Condition: &Compare{Condition: Cond0(Never)}},
	}}
	result, consulted, known = sc.Result()
	if !known || !IsFalseSentinel(result) || consulted != 2 {
		t.Errorf("Result() = %v, %d, %v, want #f after 2 entries", result, consulted, known)
	}
}

func TestShortCircuitUnknown(t *testing.T) {
	sc := &ShortCircuit{Kind: ShortCircuitUnknown, Entries: []ShortCircuitEntry{
		{Condition: &Compare{Condition: Cond0(Always)}},
	}}
	if _, _, known := sc.Result(); known {
		t.Error("unresolved short circuit should not have a known result")
	}
}

func TestCondAllFalseYieldsFalseSentinel(t *testing.T) {
	c := &Cond{Entries: []CondNoElseEntry{
		{Condition: &Compare{Condition: Cond2(Equal, Const(1), Const(2))}, Body: Const(10)},
		{Condition: &Compare{Condition: Cond0(Never)}, Body: Const(20)},
	}}

	result, consulted, known := c.Result()
	if !known || consulted != 2 {
		t.Fatalf("Result() = %v, %d, %v", result, consulted, known)
	}
	if !IsFalseSentinel(result) {
		t.Errorf("Result() = %s, want false sentinel", Print(result, nil))
	}
	if got := Print(result, nil); got != "#f" {
		t.Errorf("fallback renders as %q, want #f", got)
	}
}

func TestCondFirstMatch(t *testing.T) {
	body := Const(20)
	c := &Cond{Entries: []CondNoElseEntry{
		{Condition: &Compare{Condition: Cond0(Never)}, Body: Const(10)},
		{Condition: &Compare{Condition: Cond2(GeqSigned, Const(2), Const(1))}, Body: body},
		{Condition: Gpr("a0"), Body: Const(30)},
	}}
	result, consulted, known := c.Result()
	if !known || result != body || consulted != 2 {
		t.Errorf("Result() = %v, %d, %v, want body after 2 entries", result, consulted, known)
	}
}

func TestCondWithElseFallsBack(t *testing.T) {
	elseBody := Const(99)
	c := &CondWithElse{
		Entries: []CondEntry{{Condition: FalseSentinel(), Body: Const(1)}},
		Else:    elseBody,
	}
	result, consulted, known := c.Result()
	if !known || result != elseBody || consulted != 1 {
		t.Errorf("Result() = %v, %d, %v, want else body", result, consulted, known)
	}
}

func TestCleanedFlagDoesNotAffectRender(t *testing.T) {
	entry := func(cleaned bool) *Cond {
		return &Cond{Entries: []CondNoElseEntry{
			{Condition: &Compare{Condition: Cond1(Zero, Gpr("a0"))}, Body: Const(1), Cleaned: cleaned},
		}}
	}
	if Print(entry(false), nil) != Print(entry(true), nil) {
		t.Error("cleaned flag changed the rendered form")
	}
}
