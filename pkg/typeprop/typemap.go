// Package typeprop assigns recovered types to registers. TypeOf types an
// expression bottom-up under the current TypeMap; Apply threads the map
// through statements in program order; Pass runs a whole function body.
package typeprop

import (
	"sort"
	"strings"

	"github.com/raymyers/ralph-decomp/pkg/reg"
	"github.com/raymyers/ralph-decomp/pkg/typespec"
)

// TypeMap maps each register to its currently believed type. A register
// with no entry has an unknown type.
type TypeMap map[reg.Register]typespec.TypeSpec

// NewTypeMap creates an empty type map
func NewTypeMap() TypeMap {
	return make(TypeMap)
}

// Clone returns an independent copy of the map
func (m TypeMap) Clone() TypeMap {
	out := make(TypeMap, len(m))
	for r, t := range m {
		out[r] = t
	}
	return out
}

// Get returns the type of r, if known
func (m TypeMap) Get(r reg.Register) (typespec.TypeSpec, bool) {
	t, ok := m[r]
	return t, ok
}

// Set records t as the type of r, replacing any previous entry
func (m TypeMap) Set(r reg.Register, t typespec.TypeSpec) {
	m[r] = t
}

// Delete marks r as unknown
func (m TypeMap) Delete(r reg.Register) {
	delete(m, r)
}

// Equal reports whether both maps hold the same registers with equal types
func (m TypeMap) Equal(o TypeMap) bool {
	if len(m) != len(o) {
		return false
	}
	for r, t := range m {
		ot, ok := o[r]
		if !ok || !t.Equal(ot) {
			return false
		}
	}
	return true
}

// Registers returns the registers with known types in register order
func (m TypeMap) Registers() []reg.Register {
	regs := make([]reg.Register, 0, len(m))
	for r := range m {
		regs = append(regs, r)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].Less(regs[j]) })
	return regs
}

// String formats the map as "[a0: int v0: symbol]" in register order
func (m TypeMap) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, r := range m.Registers() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(r.String())
		sb.WriteString(": ")
		sb.WriteString(m[r].String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// Meet merges the maps of two paths that reconverge. Registers known on
// both sides get the lowest common ancestor of their types; a register
// missing on either side is unknown afterwards.
func Meet(a, b TypeMap, o typespec.Oracle) TypeMap {
	out := make(TypeMap)
	for r, ta := range a {
		tb, ok := b[r]
		if !ok {
			continue
		}
		if ta.Equal(tb) {
			out[r] = ta
			continue
		}
		out[r] = o.LowestCommonAncestor(ta, tb)
	}
	return out
}

// MeetAll folds Meet over one or more maps
func MeetAll(o typespec.Oracle, maps ...TypeMap) TypeMap {
	if len(maps) == 0 {
		return NewTypeMap()
	}
	out := maps[0].Clone()
	for _, m := range maps[1:] {
		out = Meet(out, m, o)
	}
	return out
}
