package ir

// BranchDelayKind is a recognized branch delay slot idiom
type BranchDelayKind int

const (
	DelayNop         BranchDelayKind = iota
	DelaySetRegFalse                 // dst = #f
	DelaySetRegTrue                  // dst = #t
	DelaySetRegReg                   // dst = src
	DelaySetBinteger                 // dst = binteger type
	DelaySetPair                     // dst = pair type
	DelayDsllv                       // dst = src << src2
	DelayNegate                      // dst = -src
	DelayUnknown                     // unrecognized, must stay visible
)

func (k BranchDelayKind) String() string {
	names := []string{"nop", "set-reg-false", "set-reg-true", "set-reg-reg",
		"set-binteger", "set-pair", "dsllv", "negate", "unknown"}
	if int(k) < len(names) {
		return names[k]
	}
	return "?"
}

// BranchDelay is the instruction in a branch's delay slot, which executes
// whether or not the branch is taken
type BranchDelay struct {
	Kind        BranchDelayKind
	Destination Node
	Source      Node
	Source2     Node
}

// NewDelay returns a delay slot of the given kind with no operands
func NewDelay(kind BranchDelayKind) *BranchDelay {
	return &BranchDelay{Kind: kind}
}

// Operands returns the non-nil operands in the order destination, source,
// source2
func (d *BranchDelay) Operands() []Node {
	var out []Node
	for _, n := range []Node{d.Destination, d.Source, d.Source2} {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Foldable reports whether the delay slot is a known idiom that the
// structuring pass may fold into a higher level form
func (d *BranchDelay) Foldable() bool {
	return d.Kind != DelayUnknown
}
