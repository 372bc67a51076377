package typeprop

import (
	"fmt"

	"github.com/raymyers/ralph-decomp/pkg/form"
	"github.com/raymyers/ralph-decomp/pkg/ir"
	"github.com/raymyers/ralph-decomp/pkg/reg"
	"github.com/raymyers/ralph-decomp/pkg/typespec"
)

// DefaultMaxLoopIterations bounds the loop fixed point search
const DefaultMaxLoopIterations = 8

// Miss records an assignment whose source could not be typed. The
// destination register is unknown after the statement.
type Miss struct {
	Stmt int          // index of the top-level statement
	Dst  reg.Register // register left unknown
	Form string       // the offending statement, rendered on one line
}

func (m Miss) String() string {
	return fmt.Sprintf("stmt %d: %s unknown after %s", m.Stmt, m.Dst, m.Form)
}

// Result is the outcome of running the pass over one function body
type Result struct {
	// Types is the map after the last statement
	Types TypeMap
	// Snapshots holds the map after each top-level statement
	Snapshots []TypeMap
	Misses    []Miss
}

// Pass runs type propagation over function bodies. A Pass holds no
// per-function state and may be shared by concurrent workers as long as
// its Oracle is safe for concurrent readers.
type Pass struct {
	Oracle            typespec.Oracle
	MaxLoopIterations int
}

// NewPass creates a pass using the given oracle
func NewPass(o typespec.Oracle) *Pass {
	return &Pass{Oracle: o, MaxLoopIterations: DefaultMaxLoopIterations}
}

// EntryTypes returns the map at function entry for a function type
// (function arg0 arg1 ... ret): arguments are assigned to the argument
// registers in order.
func EntryTypes(fnType typespec.TypeSpec) TypeMap {
	m := NewTypeMap()
	if fnType.Base != "function" || len(fnType.Args) == 0 {
		return m
	}
	args := fnType.Args[:len(fnType.Args)-1]
	for i, r := range reg.ArgRegs() {
		if i >= len(args) {
			break
		}
		m.Set(r, args[i])
	}
	return m
}

// Run types a function body starting from the entry map. If body is a
// Begin, each form is a top-level statement with its own snapshot. The
// entry map is not modified.
func (p *Pass) Run(body ir.Node, entry TypeMap) *Result {
	a := &analyzer{oracle: p.Oracle, maxIter: p.MaxLoopIterations}
	if a.maxIter <= 0 {
		a.maxIter = DefaultMaxLoopIterations
	}

	stmts := []ir.Node{body}
	if b, ok := body.(*ir.Begin); ok {
		stmts = b.Forms
	}

	res := &Result{Snapshots: make([]TypeMap, 0, len(stmts))}
	m := entry.Clone()
	for i, s := range stmts {
		a.stmt = i
		a.apply(s, m)
		res.Snapshots = append(res.Snapshots, m.Clone())
	}
	res.Types = m
	res.Misses = a.misses
	return res
}

// Apply updates m for one statement executed in program order. Misses are
// not recorded; use Pass.Run for that.
func Apply(stmt ir.Node, m TypeMap, o typespec.Oracle) {
	a := &analyzer{oracle: o, maxIter: DefaultMaxLoopIterations, quiet: 1}
	a.apply(stmt, m)
}

type analyzer struct {
	oracle  typespec.Oracle
	maxIter int
	stmt    int
	quiet   int // > 0 while exploring loop iterations that are thrown away
	misses  []Miss
}

func (a *analyzer) miss(dst reg.Register, n ir.Node) {
	if a.quiet > 0 {
		return
	}
	a.misses = append(a.misses, Miss{
		Stmt: a.stmt,
		Dst:  dst,
		Form: form.Print(ir.Render(n, nil)),
	})
}

// write stores the type of a source into a destination register. On a
// miss the destination becomes unknown. Writes to r0 are discarded.
func (a *analyzer) write(m TypeMap, dst reg.Register, t typespec.TypeSpec, ok bool, n ir.Node) {
	if dst == reg.Gpr(reg.R0) {
		return
	}
	if !ok {
		m.Delete(dst)
		a.miss(dst, n)
		return
	}
	m.Set(dst, t)
}

// clobber forgets every register destroyed as a side effect anywhere in n
func (a *analyzer) clobber(n ir.Node, m TypeMap) {
	ir.Inspect(n, func(x ir.Node) bool {
		for _, c := range ir.Clobbers(x) {
			m.Delete(c.(*ir.Register).Reg)
		}
		return true
	})
}

func (a *analyzer) apply(n ir.Node, m TypeMap) {
	switch x := n.(type) {
	case *ir.Set:
		a.applySet(x, m)
	case *ir.Store:
		a.clobber(x, m)
	case *ir.Branch:
		a.applyBranch(x, m)
	case *ir.Call:
		a.applyCall(m)
	case *ir.Begin:
		for _, f := range x.Forms {
			a.apply(f, m)
		}
	case *ir.WhileLoop:
		a.applyWhile(x, m)
	case *ir.UntilLoop:
		a.applyUntil(x, m)
	case *ir.Cond:
		a.applyCond(x, m)
	case *ir.CondWithElse:
		a.applyCondWithElse(x, m)
	case *ir.ShortCircuit:
		a.applyShortCircuit(x, m)
	case *ir.Return:
		if x.ReturnCode != nil {
			a.apply(x.ReturnCode, m)
		}
	case *ir.Break:
		if x.ReturnCode != nil {
			a.apply(x.ReturnCode, m)
		}
	case *ir.AsmOp:
		if r, ok := x.Dst.(*ir.Register); ok {
			m.Delete(r.Reg)
		}
	case *ir.Compare, *ir.GetRuntimeType, *ir.Ash, *ir.Load, *ir.IntMath2, *ir.IntMath1,
		*ir.FloatMath2, *ir.FloatMath1:
		a.clobber(x, m)
	case *ir.Failed, *ir.Register, *ir.Symbol, *ir.SymbolValue, *ir.StaticAddress,
		*ir.IntegerConstant, *ir.AsmReg, *ir.Nop, *ir.Suspend, *ir.CMoveF:
	default:
		panic(fmt.Sprintf("typeprop: unknown node %T", n))
	}
}

func (a *analyzer) applySet(s *ir.Set, m TypeMap) {
	// the source is typed under the map as it stands before this statement
	t, ok := TypeOf(s.Src, m, a.oracle)
	a.clobber(s, m)

	dst, isReg := s.Dst.(*ir.Register)
	if !isReg {
		return
	}
	switch s.Kind {
	case ir.SetStore, ir.SetSymStore:
		return
	case ir.SetGPRToFPR:
		if ok {
			t = a.oracle.CoerceToRegClass(t, typespec.RegFPR)
		}
	case ir.SetLoad, ir.SetSymLoad:
		if ok {
			t = a.oracle.CoerceToRegClass(t, typespec.RegGPR64)
		}
	case ir.SetRegI128:
		if ok {
			t = a.oracle.CoerceToRegClass(t, typespec.RegI128)
		}
	}
	a.write(m, dst.Reg, t, ok, s)
}

// applyBranch handles the delay slot, which executes whether or not the
// branch is taken. The condition is a read-only test.
func (a *analyzer) applyBranch(b *ir.Branch, m TypeMap) {
	if b.Condition.Clobber.Valid() {
		m.Delete(b.Condition.Clobber)
	}
	d := b.Delay
	if d == nil {
		return
	}
	dst, isReg := d.Destination.(*ir.Register)
	if !isReg {
		return
	}

	switch d.Kind {
	case ir.DelayNop:
	case ir.DelaySetRegFalse, ir.DelaySetRegTrue:
		a.write(m, dst.Reg, tSymbol, true, b)
	case ir.DelaySetBinteger, ir.DelaySetPair:
		a.write(m, dst.Reg, tType, true, b)
	case ir.DelaySetRegReg, ir.DelayDsllv:
		t, ok := TypeOf(d.Source, m, a.oracle)
		a.write(m, dst.Reg, t, ok, b)
	case ir.DelayNegate:
		t, ok := TypeOf(&ir.IntMath1{Kind: ir.Neg, Arg: d.Source}, m, a.oracle)
		a.write(m, dst.Reg, t, ok, b)
	case ir.DelayUnknown:
		m.Delete(dst.Reg)
	default:
		panic(fmt.Sprintf("typeprop: unknown branch delay %d", int(d.Kind)))
	}
}

// applyCall forgets the caller-saved registers and types v0 from the
// return type of the function held in t9
func (a *analyzer) applyCall(m TypeMap) {
	fn, known := m.Get(reg.Gpr(reg.T9))
	for _, r := range reg.CallerSaved() {
		m.Delete(r)
	}
	if known && fn.Base == "function" && len(fn.Args) > 0 {
		m.Set(reg.Gpr(reg.V0), fn.Last())
	}
}

// replace overwrites dst with the contents of src
func replace(dst, src TypeMap) {
	for r := range dst {
		delete(dst, r)
	}
	for r, t := range src {
		dst[r] = t
	}
}

// fixpoint iterates step from the entry map until the map at the loop head
// stops changing or the iteration bound is reached. step returns the map
// at the back edge. Iterations are explored quietly.
func (a *analyzer) fixpoint(entry TypeMap, step func(head TypeMap) TypeMap) TypeMap {
	a.quiet++
	defer func() { a.quiet-- }()

	head := entry.Clone()
	for i := 0; i < a.maxIter; i++ {
		next := Meet(entry, step(head.Clone()), a.oracle)
		if next.Equal(head) {
			break
		}
		head = next
	}
	return head
}

func (a *analyzer) applyWhile(w *ir.WhileLoop, m TypeMap) {
	head := a.fixpoint(m, func(h TypeMap) TypeMap {
		a.apply(w.Condition, h)
		a.apply(w.Body, h)
		return h
	})

	// final recorded pass; the loop exits after a failing condition test
	a.apply(w.Condition, head)
	a.apply(w.Body, head.Clone())
	replace(m, head)
}

func (a *analyzer) applyUntil(u *ir.UntilLoop, m TypeMap) {
	head := a.fixpoint(m, func(h TypeMap) TypeMap {
		a.apply(u.Body, h)
		a.apply(u.Condition, h)
		return h
	})

	a.apply(u.Body, head)
	a.apply(u.Condition, head)
	replace(m, head)
}

// applyCond tries entries in order. Each body starts from the map after its
// own condition; the untaken path continues past every condition and
// writes #f to the false destination.
func (a *analyzer) applyCond(c *ir.Cond, m TypeMap) {
	paths := make([]TypeMap, 0, len(c.Entries)+1)
	for _, e := range c.Entries {
		a.apply(e.Condition, m)
		body := m.Clone()
		a.apply(e.Body, body)
		paths = append(paths, body)
	}
	fallthru := m.Clone()
	for _, e := range c.Entries {
		if r, ok := e.FalseDestination.(*ir.Register); ok {
			a.write(fallthru, r.Reg, tSymbol, true, c)
		}
	}
	replace(m, MeetAll(a.oracle, append(paths, fallthru)...))
}

func (a *analyzer) applyCondWithElse(c *ir.CondWithElse, m TypeMap) {
	paths := make([]TypeMap, 0, len(c.Entries)+1)
	for _, e := range c.Entries {
		a.apply(e.Condition, m)
		body := m.Clone()
		a.apply(e.Body, body)
		paths = append(paths, body)
	}
	a.apply(c.Else, m)
	replace(m, MeetAll(a.oracle, append(paths, m)...))
}

// applyShortCircuit merges the exit after every entry. The delay slot of
// each entry's branch writes its output register, and the overall result
// lands in FinalResult.
func (a *analyzer) applyShortCircuit(s *ir.ShortCircuit, m TypeMap) {
	exits := make([]TypeMap, 0, len(s.Entries))
	for _, e := range s.Entries {
		a.apply(e.Condition, m)
		exit := m.Clone()
		if r, ok := e.Output.(*ir.Register); ok {
			t, ok := TypeOf(e.Condition, m, a.oracle)
			a.write(exit, r.Reg, t, ok, s)
		}
		exits = append(exits, exit)
	}
	if len(exits) > 0 {
		replace(m, MeetAll(a.oracle, exits...))
	}
	if r, ok := s.FinalResult.(*ir.Register); ok {
		a.write(m, r.Reg, tSymbol, true, s)
	}
}
