package ir

import (
	"fmt"

	"github.com/raymyers/ralph-decomp/pkg/form"
)

// Resolver supplies display names for labels and symbols. Misses are not
// errors; the renderer substitutes a placeholder.
type Resolver interface {
	LabelName(id int) (string, bool)
	SymbolName(name string) (string, bool)
}

// LabelPlaceholder is the name printed for a label the resolver does not know
func LabelPlaceholder(id int) string {
	return fmt.Sprintf("L%d?", id)
}

// Print renders n and pretty prints the result
func Print(n Node, r Resolver) string {
	return form.Pretty(Render(n, r), form.DefaultWidth)
}

// Render converts a node tree to surface syntax. A nil resolver renders
// every label as a placeholder and every symbol under its own name.
func Render(n Node, r Resolver) form.Object {
	return renderer{r: r}.node(n)
}

type renderer struct {
	r Resolver
}

func (p renderer) label(id int) form.Object {
	if p.r != nil {
		if name, ok := p.r.LabelName(id); ok {
			return form.Symbol(name)
		}
	}
	return form.Symbol(LabelPlaceholder(id))
}

func (p renderer) symbol(name string) string {
	if p.r != nil {
		if display, ok := p.r.SymbolName(name); ok {
			return display
		}
	}
	return name
}

// body renders a statement for use in a form that takes a body list.
// A Begin is spliced so (while c (begin a b)) prints as (while c a b).
func (p renderer) body(n Node) []form.Object {
	if b, ok := n.(*Begin); ok {
		out := make([]form.Object, 0, len(b.Forms))
		for _, f := range b.Forms {
			out = append(out, p.node(f))
		}
		return out
	}
	return []form.Object{p.node(n)}
}

func (p renderer) nodes(ns ...Node) []form.Object {
	out := make([]form.Object, 0, len(ns))
	for _, n := range ns {
		if n != nil {
			out = append(out, p.node(n))
		}
	}
	return out
}

func (p renderer) node(n Node) form.Object {
	switch x := n.(type) {
	case *Failed:
		return form.Build("failed-to-decompile!")
	case *Register:
		return form.Symbol(x.Reg.String())
	case *Symbol:
		if x.Name == FalseName || x.Name == TrueName {
			return form.Symbol(x.Name)
		}
		return form.Quote(form.Symbol(p.symbol(x.Name)))
	case *SymbolValue:
		return form.Symbol(p.symbol(x.Name))
	case *StaticAddress:
		return p.label(x.LabelID)
	case *IntegerConstant:
		return form.Integer(x.Value)
	case *AsmReg:
		if x.Kind == VUQ {
			return form.Symbol("Q")
		}
		return form.Symbol("ACC")
	case *Load:
		return form.Build(loadOp(x.Kind, x.Size), p.node(x.Location))
	case *IntMath2:
		return form.Build(intMath2Ops[x.Kind], p.node(x.Arg0), p.node(x.Arg1))
	case *IntMath1:
		return form.Build(intMath1Ops[x.Kind], p.node(x.Arg))
	case *FloatMath2:
		return form.Build(floatMath2Ops[x.Kind], p.node(x.Arg0), p.node(x.Arg1))
	case *FloatMath1:
		return form.Build(floatMath1Ops[x.Kind], p.node(x.Arg))
	case *Set:
		src := p.node(x.Src)
		switch x.Kind {
		case SetFPRToGPR64:
			src = form.Build("fpr->gpr", src)
		case SetGPRToFPR:
			src = form.Build("gpr->fpr", src)
		}
		return form.Build("set!", p.node(x.Dst), src)
	case *Store:
		return form.Build(storeOp(x.Kind, x.Size), p.node(x.Dst), p.node(x.Src))
	case *Call:
		return form.Build("call!")
	case *Branch:
		op := "b!"
		if x.Likely {
			op = "bl!"
		}
		return form.Build(op, p.condition(x.Condition), p.label(x.DestLabel), p.delay(x.Delay))
	case *Compare:
		return p.condition(x.Condition)
	case *Nop:
		return form.Build("nop!")
	case *Suspend:
		return form.Build("suspend")
	case *Begin:
		return form.Build("begin", p.nodes(x.Forms...)...)
	case *WhileLoop:
		return form.Build("while", append([]form.Object{p.node(x.Condition)}, p.body(x.Body)...)...)
	case *UntilLoop:
		return form.Build("until", append([]form.Object{p.node(x.Condition)}, p.body(x.Body)...)...)
	case *CondWithElse:
		l := form.Build("cond")
		for _, e := range x.Entries {
			l = append(l, append(form.List{p.node(e.Condition)}, p.body(e.Body)...))
		}
		return append(l, append(form.List{form.Symbol("else")}, p.body(x.Else)...))
	case *Cond:
		l := form.Build("cond")
		for _, e := range x.Entries {
			l = append(l, append(form.List{p.node(e.Condition)}, p.body(e.Body)...))
		}
		return l
	case *ShortCircuit:
		l := form.Build(shortCircuitOps[x.Kind])
		for _, e := range x.Entries {
			l = append(l, p.node(e.Condition))
		}
		return l
	case *Return:
		return form.Build("return", p.nodes(x.ReturnCode, x.DeadCode)...)
	case *Break:
		return form.Build("break!", p.nodes(x.ReturnCode, x.DeadCode)...)
	case *GetRuntimeType:
		return form.Build("type-of", p.node(x.Object))
	case *Ash:
		op := "ash"
		if !x.IsSigned {
			op = "ash.ui"
		}
		return form.Build(op, p.node(x.Value), p.node(x.ShiftAmount))
	case *AsmOp:
		return form.Build("."+x.Name, p.nodes(x.Dst, x.Src0, x.Src1, x.Src2)...)
	case *CMoveF:
		op := "cmove-#f-nonzero"
		if x.OnZero {
			op = "cmove-#f-zero"
		}
		return form.Build(op, p.node(x.Src))
	}
	panic(fmt.Sprintf("ir: render: unknown node %T", n))
}

func (p renderer) condition(c *Condition) form.Object {
	if c.Kind.Arity() == 0 {
		return form.Symbol(c.Kind.String())
	}
	return form.Build(c.Kind.String(), p.nodes(c.Operands()...)...)
}

func (p renderer) delay(d *BranchDelay) form.Object {
	if d == nil {
		d = NewDelay(DelayNop)
	}
	dst := func() form.Object { return p.node(d.Destination) }
	switch d.Kind {
	case DelayNop:
		return form.Build("nop!")
	case DelaySetRegFalse:
		return form.Build("set!", dst(), form.Symbol("#f"))
	case DelaySetRegTrue:
		return form.Build("set!", dst(), form.Symbol("#t"))
	case DelaySetRegReg:
		return form.Build("set!", dst(), p.node(d.Source))
	case DelaySetBinteger:
		return form.Build("set!", dst(), form.Symbol("binteger"))
	case DelaySetPair:
		return form.Build("set!", dst(), form.Symbol("pair"))
	case DelayDsllv:
		return form.Build("set!", dst(), form.Build("sll", p.node(d.Source), p.node(d.Source2)))
	case DelayNegate:
		return form.Build("set!", dst(), form.Build("-", p.node(d.Source)))
	case DelayUnknown:
		return form.Build("unknown-branch-delay")
	}
	panic(fmt.Sprintf("ir: render: unknown branch delay %d", int(d.Kind)))
}

func (k IntMath2Kind) String() string { return intMath2Ops[k] }

func (k IntMath1Kind) String() string { return intMath1Ops[k] }

func (k FloatMath2Kind) String() string { return floatMath2Ops[k] }

func (k FloatMath1Kind) String() string { return floatMath1Ops[k] }

func (k ShortCircuitKind) String() string { return shortCircuitOps[k] }

// LoadOp returns the spelling of a load, such as l.wu
func LoadOp(kind LoadKind, size int) string { return loadOp(kind, size) }

// StoreOp returns the spelling of a store, such as s.w!
func StoreOp(kind StoreKind, size int) string { return storeOp(kind, size) }

var intMath2Ops = map[IntMath2Kind]string{
	Add:             "+",
	Sub:             "-",
	MulSigned:       "*.si",
	DivSigned:       "/.si",
	ModSigned:       "mod.si",
	DivUnsigned:     "/.ui",
	ModUnsigned:     "mod.ui",
	Or:              "logior",
	And:             "logand",
	Nor:             "lognor",
	Xor:             "logxor",
	LeftShift:       "sll",
	RightShiftArith: "sra",
	RightShiftLogic: "srl",
	MulUnsigned:     "*.ui",
	MinSigned:       "min.si",
	MaxSigned:       "max.si",
}

var intMath1Ops = map[IntMath1Kind]string{
	Not: "lognot",
	Abs: "abs",
	Neg: "-",
}

var floatMath2Ops = map[FloatMath2Kind]string{
	FDiv: "/.s",
	FMul: "*.s",
	FAdd: "+.s",
	FSub: "-.s",
	FMin: "min.s",
	FMax: "max.s",
}

var floatMath1Ops = map[FloatMath1Kind]string{
	FloatToInt: "int<-float",
	IntToFloat: "float<-int",
	FAbs:       "abs.s",
	FNeg:       "neg.s",
	FSqrt:      "sqrt.s",
}

var shortCircuitOps = map[ShortCircuitKind]string{
	ShortCircuitUnknown: "unknown-sc",
	ShortCircuitAnd:     "and",
	ShortCircuitOr:      "or",
}

func loadOp(kind LoadKind, size int) string {
	if kind == LoadFloat {
		return "l.f"
	}
	suffix := map[int]string{1: "b", 2: "h", 4: "w", 8: "d", 16: "q"}[size]
	if suffix == "" {
		suffix = fmt.Sprintf("%d", size)
	}
	if kind == LoadUnsigned && size < 8 {
		return "l." + suffix + "u"
	}
	return "l." + suffix
}

func storeOp(kind StoreKind, size int) string {
	if kind == StoreFloat {
		return "s.f!"
	}
	suffix := map[int]string{1: "b", 2: "h", 4: "w", 8: "d", 16: "q"}[size]
	if suffix == "" {
		suffix = fmt.Sprintf("%d", size)
	}
	return "s." + suffix + "!"
}
