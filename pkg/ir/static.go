package ir

// FalseName and TrueName are the symbols for boolean false and true
const (
	FalseName = "#f"
	TrueName  = "#t"
)

// FalseSentinel returns a fresh #f symbol node, the value of a Cond whose
// entries all fail
func FalseSentinel() *Symbol {
	return &Symbol{Name: FalseName}
}

// IsFalseSentinel reports whether n is the #f symbol
func IsFalseSentinel(n Node) bool {
	s, ok := n.(*Symbol)
	return ok && s.Name == FalseName
}

// operandBits returns the register value of a constant operand
func operandBits(n Node) (uint64, bool) {
	switch x := n.(type) {
	case *IntegerConstant:
		return uint64(x.Value), true
	case *Symbol:
		if x.Name == FalseName {
			return FalseBits, true
		}
	}
	return 0, false
}

// StaticValue evaluates the condition when every operand is a constant.
// The second result is false when the outcome depends on runtime values.
func (c *Condition) StaticValue() (bool, bool) {
	var bits [2]uint64
	for i, op := range c.Operands() {
		v, ok := operandBits(op)
		if !ok {
			return false, false
		}
		bits[i] = v
	}
	return c.Kind.Eval(bits[0], bits[1]), true
}

// StaticTruth reports the truth value of n when it can be decided without
// running the program. Anything other than #f is true.
func StaticTruth(n Node) (value, known bool) {
	switch x := n.(type) {
	case *Compare:
		return x.Condition.StaticValue()
	case *Symbol:
		return x.Name != FalseName, true
	case *IntegerConstant, *StaticAddress:
		return true, true
	}
	return false, false
}

// Result returns the value of the and/or chain when it is statically known,
// along with how many entries were consulted. Evaluation stops at the first
// entry that decides the outcome, so later entries are never looked at.
func (s *ShortCircuit) Result() (result Node, consulted int, known bool) {
	if len(s.Entries) == 0 {
		return nil, 0, false
	}
	if s.Kind == ShortCircuitUnknown {
		return nil, 0, false
	}
	// and stops at the first false entry, or at the first true one
	stopOn := s.Kind == ShortCircuitOr

	for i, e := range s.Entries {
		v, ok := StaticTruth(e.Condition)
		if !ok {
			return nil, i + 1, false
		}
		if v == stopOn {
			return entryValue(e, v), i + 1, true
		}
	}
	last := s.Entries[len(s.Entries)-1]
	return entryValue(last, !stopOn), len(s.Entries), true
}

// entryValue is what a short circuit entry leaves in the result register
func entryValue(e ShortCircuitEntry, truth bool) Node {
	if e.Output != nil {
		return e.Output
	}
	if !truth {
		return FalseSentinel()
	}
	return e.Condition
}

// Result returns the body of the first entry whose condition holds, or the
// false sentinel when none do. known is false as soon as an entry's
// condition cannot be decided statically.
func (c *Cond) Result() (result Node, consulted int, known bool) {
	for i, e := range c.Entries {
		v, ok := StaticTruth(e.Condition)
		if !ok {
			return nil, i + 1, false
		}
		if v {
			return e.Body, i + 1, true
		}
	}
	return FalseSentinel(), len(c.Entries), true
}

// Result is like Cond.Result but falls back to the else body
func (c *CondWithElse) Result() (result Node, consulted int, known bool) {
	for i, e := range c.Entries {
		v, ok := StaticTruth(e.Condition)
		if !ok {
			return nil, i + 1, false
		}
		if v {
			return e.Body, i + 1, true
		}
	}
	return c.Else, len(c.Entries), true
}
