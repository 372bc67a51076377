package typeprop

import (
	"fmt"

	"github.com/raymyers/ralph-decomp/pkg/ir"
	"github.com/raymyers/ralph-decomp/pkg/typespec"
)

var (
	tSymbol   = typespec.New("symbol")
	tObject   = typespec.New("object")
	tPointer  = typespec.New("pointer")
	tFloat    = typespec.New("float")
	tInt      = typespec.New("int")
	tType     = typespec.New("type")
	tInteger  = typespec.New("integer")
	tUinteger = typespec.New("uinteger")
	tUint128  = typespec.New("uint128")
)

// IntegerConstantType returns the smallest standard integer type holding v:
// int8 through int64 for negative values, uint8 through uint64 otherwise.
func IntegerConstantType(v int64) typespec.TypeSpec {
	if v < 0 {
		switch {
		case v >= -1<<7:
			return typespec.New("int8")
		case v >= -1<<15:
			return typespec.New("int16")
		case v >= -1<<31:
			return typespec.New("int32")
		}
		return typespec.New("int64")
	}
	switch {
	case v < 1<<8:
		return typespec.New("uint8")
	case v < 1<<16:
		return typespec.New("uint16")
	case v < 1<<32:
		return typespec.New("uint32")
	}
	return typespec.New("uint64")
}

// LoadType returns the type produced by a load of the given kind and size
// when nothing is known about the address
func LoadType(kind ir.LoadKind, size int) typespec.TypeSpec {
	if kind == ir.LoadFloat {
		return tFloat
	}
	prefix := "uint"
	if kind == ir.LoadSigned {
		prefix = "int"
	}
	switch size {
	case 1, 2, 4, 8, 16:
		return typespec.New(fmt.Sprintf("%s%d", prefix, size*8))
	}
	return typespec.New(prefix)
}

// MathClass returns the promotion class of an integer operation
func MathClass(kind ir.IntMath2Kind) typespec.MathClass {
	switch kind {
	case ir.Add, ir.Sub, ir.MulSigned, ir.DivSigned, ir.ModSigned:
		return typespec.MathArith
	case ir.MulUnsigned, ir.DivUnsigned, ir.ModUnsigned:
		return typespec.MathArithUnsigned
	case ir.Or, ir.And, ir.Nor, ir.Xor:
		return typespec.MathBitwise
	case ir.LeftShift, ir.RightShiftArith, ir.RightShiftLogic:
		return typespec.MathShift
	case ir.MinSigned, ir.MaxSigned:
		return typespec.MathMinMax
	}
	panic(fmt.Sprintf("typeprop: unknown int math kind %d", int(kind)))
}

// TypeOf returns the type n produces under m. The second result is false
// when no type can be derived; that is a local miss, never an error.
func TypeOf(n ir.Node, m TypeMap, o typespec.Oracle) (typespec.TypeSpec, bool) {
	switch x := n.(type) {
	case *ir.Register:
		return m.Get(x.Reg)
	case *ir.IntegerConstant:
		return IntegerConstantType(x.Value), true
	case *ir.Symbol:
		return tSymbol, true
	case *ir.SymbolValue:
		if t, ok := o.SymbolType(x.Name); ok {
			return t, true
		}
		return tObject, true
	case *ir.StaticAddress:
		return tPointer, true
	case *ir.AsmReg:
		return tUint128, true
	case *ir.Load:
		return loadType(x, m, o), true
	case *ir.IntMath2:
		a, ok := TypeOf(x.Arg0, m, o)
		if !ok {
			return typespec.TypeSpec{}, false
		}
		b, ok := TypeOf(x.Arg1, m, o)
		if !ok {
			return typespec.TypeSpec{}, false
		}
		return o.PromoteIntMath(MathClass(x.Kind), a, b)
	case *ir.IntMath1:
		a, ok := TypeOf(x.Arg, m, o)
		if !ok || !o.IsA(tInteger, a) {
			return typespec.TypeSpec{}, false
		}
		if x.Kind != ir.Not && o.IsA(tUinteger, a) {
			return tInt, true
		}
		return a, true
	case *ir.FloatMath2:
		a, ok := TypeOf(x.Arg0, m, o)
		if !ok || !o.IsA(tFloat, a) {
			return typespec.TypeSpec{}, false
		}
		b, ok := TypeOf(x.Arg1, m, o)
		if !ok || !o.IsA(tFloat, b) {
			return typespec.TypeSpec{}, false
		}
		return tFloat, true
	case *ir.FloatMath1:
		switch x.Kind {
		case ir.FloatToInt:
			return tInt, true
		case ir.IntToFloat:
			return tFloat, true
		}
		a, ok := TypeOf(x.Arg, m, o)
		if !ok || !o.IsA(tFloat, a) {
			return typespec.TypeSpec{}, false
		}
		return tFloat, true
	case *ir.Set:
		return TypeOf(x.Src, m, o)
	case *ir.Compare, *ir.ShortCircuit:
		return tSymbol, true
	case *ir.GetRuntimeType:
		return tType, true
	case *ir.Ash:
		a, ok := TypeOf(x.Value, m, o)
		if !ok || !o.IsA(tInteger, a) {
			return typespec.TypeSpec{}, false
		}
		return a, true
	case *ir.Begin:
		if len(x.Forms) == 0 {
			return typespec.TypeSpec{}, false
		}
		return TypeOf(x.Forms[len(x.Forms)-1], m, o)
	case *ir.Cond:
		bodies := make([]ir.Node, 0, len(x.Entries)+1)
		for _, e := range x.Entries {
			bodies = append(bodies, e.Body)
		}
		return joinTypes(append(bodies, ir.FalseSentinel()), m, o)
	case *ir.CondWithElse:
		bodies := make([]ir.Node, 0, len(x.Entries)+1)
		for _, e := range x.Entries {
			bodies = append(bodies, e.Body)
		}
		return joinTypes(append(bodies, x.Else), m, o)
	case *ir.Failed, *ir.Store, *ir.Call, *ir.Branch, *ir.Nop, *ir.Suspend,
		*ir.WhileLoop, *ir.UntilLoop, *ir.Return, *ir.Break, *ir.AsmOp, *ir.CMoveF:
		return typespec.TypeSpec{}, false
	}
	panic(fmt.Sprintf("typeprop: unknown node %T", n))
}

// loadType uses the declared field type when the address is a typed base
// register plus a constant offset, and the generic kind/size rule otherwise
func loadType(l *ir.Load, m TypeMap, o typespec.Oracle) typespec.TypeSpec {
	if addr, ok := ir.SplitAddress(l.Location); ok {
		if base, ok := m.Get(addr.Base); ok {
			if f, ok := o.FieldAt(base, int(addr.Offset)); ok {
				return f.Type
			}
		}
	}
	return LoadType(l.Kind, l.Size)
}

// joinTypes is the lowest common ancestor of the types of all nodes
func joinTypes(nodes []ir.Node, m TypeMap, o typespec.Oracle) (typespec.TypeSpec, bool) {
	var out typespec.TypeSpec
	for i, n := range nodes {
		t, ok := TypeOf(n, m, o)
		if !ok {
			return typespec.TypeSpec{}, false
		}
		if i == 0 {
			out = t
			continue
		}
		out = o.LowestCommonAncestor(out, t)
	}
	return out, !out.IsZero()
}
