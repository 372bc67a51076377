package ir

import "fmt"

// Children returns the structural operands of n in a fixed order. Clobber
// registers are never included. Orders per variant:
//
//	Load                        [Location]
//	IntMath2, FloatMath2        [Arg0, Arg1]
//	IntMath1, FloatMath1        [Arg]
//	Set, Store                  [Dst, Src]
//	Compare                     condition operands
//	Branch                      condition operands, then delay slot operands
//	Begin                       Forms
//	WhileLoop, UntilLoop        [Condition, Body]
//	CondWithElse                per entry [Condition, Body], then Else
//	Cond                        per entry [Condition, Body, FalseDestination]
//	ShortCircuit                per entry [Condition, Output], then FinalResult
//	Return, Break               [ReturnCode, DeadCode]
//	GetRuntimeType              [Object]
//	Ash                         [Value, ShiftAmount]
//	AsmOp                       [Dst, Src0, Src1, Src2]
//	CMoveF                      [Src]
//
// Optional operands that are nil are skipped. Leaves return nil.
func Children(n Node) []Node {
	switch x := n.(type) {
	case *Failed, *Register, *Symbol, *SymbolValue, *StaticAddress,
		*IntegerConstant, *AsmReg, *Call, *Nop, *Suspend:
		return nil
	case *Load:
		return []Node{x.Location}
	case *IntMath2:
		return []Node{x.Arg0, x.Arg1}
	case *FloatMath2:
		return []Node{x.Arg0, x.Arg1}
	case *IntMath1:
		return []Node{x.Arg}
	case *FloatMath1:
		return []Node{x.Arg}
	case *Set:
		return []Node{x.Dst, x.Src}
	case *Store:
		return []Node{x.Dst, x.Src}
	case *Compare:
		return x.Condition.Operands()
	case *Branch:
		out := x.Condition.Operands()
		if x.Delay != nil {
			out = append(out, x.Delay.Operands()...)
		}
		return out
	case *Begin:
		return append([]Node(nil), x.Forms...)
	case *WhileLoop:
		return []Node{x.Condition, x.Body}
	case *UntilLoop:
		return []Node{x.Condition, x.Body}
	case *CondWithElse:
		out := make([]Node, 0, 2*len(x.Entries)+1)
		for _, e := range x.Entries {
			out = append(out, e.Condition, e.Body)
		}
		return append(out, x.Else)
	case *Cond:
		var out []Node
		for _, e := range x.Entries {
			out = append(out, e.Condition, e.Body)
			if e.FalseDestination != nil {
				out = append(out, e.FalseDestination)
			}
		}
		return out
	case *ShortCircuit:
		var out []Node
		for _, e := range x.Entries {
			out = append(out, e.Condition)
			if e.Output != nil {
				out = append(out, e.Output)
			}
		}
		if x.FinalResult != nil {
			out = append(out, x.FinalResult)
		}
		return out
	case *Return:
		return nonNil(x.ReturnCode, x.DeadCode)
	case *Break:
		return nonNil(x.ReturnCode, x.DeadCode)
	case *GetRuntimeType:
		return []Node{x.Object}
	case *Ash:
		return []Node{x.Value, x.ShiftAmount}
	case *AsmOp:
		return nonNil(x.Dst, x.Src0, x.Src1, x.Src2)
	case *CMoveF:
		return []Node{x.Src}
	}
	panic(fmt.Sprintf("ir: children: unknown node %T", n))
}

func nonNil(ns ...Node) []Node {
	var out []Node
	for _, n := range ns {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Inspect traverses the tree rooted at n in depth-first pre-order, calling
// f for each node. If f returns false, the children of that node are
// skipped. Shared nodes are visited once per reference.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, f)
	}
}

// Flatten returns n and all of its descendants in pre-order
func Flatten(n Node) []Node {
	var out []Node
	Inspect(n, func(x Node) bool {
		out = append(out, x)
		return true
	})
	return out
}

// CountFailures returns the number of Failed nodes in the tree
func CountFailures(n Node) int {
	count := 0
	Inspect(n, func(x Node) bool {
		if _, ok := x.(*Failed); ok {
			count++
		}
		return true
	})
	return count
}

// Clobbers returns the valid clobber registers attached to n itself, in
// the order they appear (condition clobbers first for branches).
func Clobbers(n Node) []Node {
	var out []Node
	switch x := n.(type) {
	case *Set:
		if x.Clobber.Valid() {
			out = append(out, Reg(x.Clobber))
		}
	case *Store:
		if x.Clobber.Valid() {
			out = append(out, Reg(x.Clobber))
		}
	case *Compare:
		if x.Condition.Clobber.Valid() {
			out = append(out, Reg(x.Condition.Clobber))
		}
	case *Branch:
		if x.Condition.Clobber.Valid() {
			out = append(out, Reg(x.Condition.Clobber))
		}
	case *GetRuntimeType:
		if x.Clobber.Valid() {
			out = append(out, Reg(x.Clobber))
		}
	case *Ash:
		if x.Clobber.Valid() {
			out = append(out, Reg(x.Clobber))
		}
	}
	return out
}
