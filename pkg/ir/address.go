package ir

import "github.com/raymyers/ralph-decomp/pkg/reg"

// Address is a memory location expressed as a base register plus a
// constant byte offset
type Address struct {
	Base   reg.Register
	Offset int64
}

// SplitAddress classifies a load or store location. It recognizes a bare
// register and a register plus an integer constant in either order; any
// other shape reports false.
func SplitAddress(loc Node) (Address, bool) {
	switch x := loc.(type) {
	case *Register:
		return Address{Base: x.Reg}, true
	case *IntMath2:
		if x.Kind != Add {
			return Address{}, false
		}
		if r, ok := x.Arg0.(*Register); ok {
			if c, ok := x.Arg1.(*IntegerConstant); ok {
				return Address{Base: r.Reg, Offset: c.Value}, true
			}
		}
		if c, ok := x.Arg0.(*IntegerConstant); ok {
			if r, ok := x.Arg1.(*Register); ok {
				return Address{Base: r.Reg, Offset: c.Value}, true
			}
		}
	}
	return Address{}, false
}
