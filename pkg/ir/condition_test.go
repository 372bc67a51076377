package ir

import (
	"math"
	"testing"

	"github.com/raymyers/ralph-decomp/pkg/reg"
)

func expectPanic(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	f()
}

func operandsFor(arity int) (Node, Node) {
	switch arity {
	case 2:
		return Gpr("a0"), Gpr("a1")
	case 1:
		return Gpr("a0"), nil
	}
	return nil, nil
}

func TestConditionKindCount(t *testing.T) {
	kinds := AllConditionKinds()
	if len(kinds) != 26 {
		t.Fatalf("AllConditionKinds() has %d kinds, want 26", len(kinds))
	}
	// the zero value is the 27th enumerator and is not constructible
	for _, k := range kinds {
		if k == InvalidCondition {
			t.Errorf("AllConditionKinds() includes InvalidCondition")
		}
	}
}

func TestConditionArity(t *testing.T) {
	tests := []struct {
		kind  ConditionKind
		arity int
	}{
		{NotEqual, 2},
		{Equal, 2},
		{LessThanSigned, 2},
		{GeqUnsigned, 2},
		{GreaterThanZeroSigned, 1},
		{LessThanZero, 1},
		{Zero, 1},
		{Nonzero, 1},
		{False, 1},
		{Truthy, 1},
		{Always, 0},
		{Never, 0},
		{FloatEqual, 2},
		{FloatGreaterThan, 2},
	}

	for _, tt := range tests {
		if got := tt.kind.Arity(); got != tt.arity {
			t.Errorf("Arity(%s) = %d, want %d", tt.kind, got, tt.arity)
		}
	}
}

func TestNewConditionChecksOperands(t *testing.T) {
	for _, k := range AllConditionKinds() {
		a, b := operandsFor(k.Arity())
		c := NewCondition(k, a, b, reg.Register{})
		if len(c.Operands()) != k.Arity() {
			t.Errorf("%s: %d operands, want %d", k, len(c.Operands()), k.Arity())
		}

		for n := 0; n <= 2; n++ {
			if n == k.Arity() {
				continue
			}
			a, b := operandsFor(n)
			expectPanic(t, k.String(), func() {
				NewCondition(k, a, b, reg.Register{})
			})
		}
	}
}

func TestNewConditionRejectsGap(t *testing.T) {
	// a single operand in the second slot is not a valid unary condition
	expectPanic(t, "zero? with src1 only", func() {
		NewCondition(Zero, nil, Gpr("a0"), reg.Register{})
	})
}

func TestInvalidConditionPanics(t *testing.T) {
	expectPanic(t, "Arity", func() { InvalidCondition.Arity() })
	expectPanic(t, "Invert", func() { InvalidCondition.Invert() })
	expectPanic(t, "Eval", func() { InvalidCondition.Eval(0, 0) })
}

func TestInvertIsInvolution(t *testing.T) {
	for _, k := range AllConditionKinds() {
		inv := k.Invert()
		if inv == k {
			t.Errorf("Invert(%s) returned itself", k)
		}
		if inv.Invert() != k {
			t.Errorf("Invert(Invert(%s)) = %s", k, inv.Invert())
		}
		if inv.Arity() != k.Arity() {
			t.Errorf("Invert(%s) changes arity %d -> %d", k, k.Arity(), inv.Arity())
		}
	}
}

func TestInvertNegatesPredicate(t *testing.T) {
	f := func(x float32) uint64 { return uint64(math.Float32bits(x)) }
	neg := func(x int64) uint64 { return uint64(x) }
	samples := [][2]uint64{
		{3, 3},
		{1, 2},
		{2, 1},
		{0, 0},
		{neg(-1), 0},
		{0, neg(-1)},
		{FalseBits, 0},
		{FalseBits, FalseBits},
		{f(1.5), f(2.5)},
		{f(2.5), f(1.5)},
		{f(-0.0), f(0.0)},
		{f(float32(math.NaN())), f(1)},
	}

	for _, k := range AllConditionKinds() {
		for _, s := range samples {
			got := k.Eval(s[0], s[1])
			inv := k.Invert().Eval(s[0], s[1])
			if got == inv {
				t.Errorf("%s(%#x, %#x) = %v and %s = %v", k, s[0], s[1], got, k.Invert(), inv)
			}
		}
	}
}

func TestEvalSpotChecks(t *testing.T) {
	neg := func(x int64) uint64 { return uint64(x) }
	tests := []struct {
		kind     ConditionKind
		a, b     uint64
		expected bool
	}{
		{Equal, 3, 3, true},
		{NotEqual, 3, 3, false},
		{LessThanSigned, neg(-1), 0, true},
		{LessThanUnsigned, neg(-1), 0, false},
		{GreaterThanZeroSigned, 5, 0, true},
		{LeqZeroSigned, 0, 0, true},
		{LessThanZero, neg(-5), 0, true},
		{Zero, 0, 0, true},
		{False, FalseBits, 0, true},
		{Truthy, 0, 0, true},
		{Always, 0, 0, true},
		{Never, 0, 0, false},
	}

	for _, tt := range tests {
		if got := tt.kind.Eval(tt.a, tt.b); got != tt.expected {
			t.Errorf("%s(%d, %d) = %v, want %v", tt.kind, tt.a, tt.b, got, tt.expected)
		}
	}
}

func TestConditionInvertKeepsOperands(t *testing.T) {
	a, b := Gpr("a0"), Gpr("a1")
	c := NewCondition(LessThanSigned, a, b, reg.Gpr(reg.T0))
	c.Invert()

	if c.Kind != GeqSigned {
		t.Errorf("Kind = %s, want >=.si", c.Kind)
	}
	if c.Src0 != a || c.Src1 != b {
		t.Error("Invert changed operand identity")
	}
	if c.Clobber != reg.Gpr(reg.T0) {
		t.Errorf("Invert changed clobber to %s", c.Clobber)
	}
}

func TestDelayOperands(t *testing.T) {
	dst, src := Gpr("v0"), Gpr("a0")
	d := &BranchDelay{Kind: DelaySetRegReg, Destination: dst, Source: src}
	ops := d.Operands()
	if len(ops) != 2 || ops[0] != dst || ops[1] != src {
		t.Errorf("Operands() = %v, want [v0 a0]", ops)
	}
	if !d.Foldable() {
		t.Error("set-reg-reg should be foldable")
	}
	if NewDelay(DelayUnknown).Foldable() {
		t.Error("unknown delay should not be foldable")
	}
}
