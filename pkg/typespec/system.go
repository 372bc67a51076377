package typespec

import (
	"fmt"
	"sort"
	"strings"

	"tlog.app/go/errors"
)

// Offsets of the first byte of an object relative to a tagged pointer to it
const (
	BasicOffset = 4  // basics are addressed past their type tag
	PairCarOff  = -2 // car of a pair pointer
	PairCdrOff  = 2  // cdr of a pair pointer
)

// Type describes one named type in the type tree
type Type struct {
	Name    string
	Parent  string
	Size    int // bytes, 0 if unsized
	Fields  []Field
	Methods []Method
}

// Field is a member of a structure or basic. Offsets are from the start of
// the object, so basic fields begin at BasicOffset.
type Field struct {
	Name   string   `yaml:"name"`
	Offset int      `yaml:"offset"`
	Type   TypeSpec `yaml:"type"`
}

// Method is an entry in a type's method table
type Method struct {
	Name string   `yaml:"name"`
	ID   int      `yaml:"id"`
	Type TypeSpec `yaml:"type"`
}

// MathClass groups integer operations that share a promotion rule
type MathClass int

const (
	MathArith         MathClass = iota // add, sub, signed mul/div/mod
	MathArithUnsigned                  // unsigned mul/div/mod
	MathBitwise                        // and, or, xor, nor
	MathShift                          // sll, sra, srl
	MathMinMax                         // min, max
)

// RegClass is a register storage class
type RegClass int

const (
	RegGPR64 RegClass = iota
	RegFPR
	RegI128
)

// Oracle answers the type questions asked during type propagation.
// Implementations must be safe for concurrent readers.
type Oracle interface {
	// IsA reports whether child is parent or one of its descendants
	IsA(parent, child TypeSpec) bool
	// LowestCommonAncestor returns the most specific type both a and b are
	LowestCommonAncestor(a, b TypeSpec) TypeSpec
	// FieldAt returns the field loaded by dereferencing a value of type base
	// at the given pointer offset
	FieldAt(base TypeSpec, offset int) (Field, bool)
	// PromoteIntMath returns the result type of an integer operation
	PromoteIntMath(class MathClass, a, b TypeSpec) (TypeSpec, bool)
	// CoerceToRegClass returns the type a value has once held in a register
	// of the given class
	CoerceToRegClass(t TypeSpec, class RegClass) TypeSpec
	// SymbolType returns the declared type of a global symbol's value
	SymbolType(name string) (TypeSpec, bool)
}

// TypeSystem is the built-in Oracle. It is populated at load time and is
// read-only afterwards.
type TypeSystem struct {
	types   map[string]*Type
	symbols map[string]TypeSpec
}

var _ Oracle = (*TypeSystem)(nil)

// builtin type tree: name, parent, size
var builtins = []Type{
	{Name: "object", Size: 4},
	{Name: "none", Parent: "object"},
	{Name: "structure", Parent: "object"},
	{Name: "basic", Parent: "structure", Size: 4},
	{Name: "symbol", Parent: "basic", Size: 8},
	{Name: "type", Parent: "basic", Size: 16},
	{Name: "string", Parent: "basic", Size: 8},
	{Name: "function", Parent: "basic", Size: 4},
	{Name: "pair", Parent: "object", Size: 8},
	{Name: "pointer", Parent: "object", Size: 4},
	{Name: "number", Parent: "object", Size: 8},
	{Name: "float", Parent: "number", Size: 4},
	{Name: "integer", Parent: "number", Size: 8},
	{Name: "binteger", Parent: "integer", Size: 8},
	{Name: "sinteger", Parent: "integer", Size: 8},
	{Name: "int8", Parent: "sinteger", Size: 1},
	{Name: "int16", Parent: "sinteger", Size: 2},
	{Name: "int32", Parent: "sinteger", Size: 4},
	{Name: "int64", Parent: "sinteger", Size: 8},
	{Name: "int", Parent: "sinteger", Size: 8},
	{Name: "int128", Parent: "sinteger", Size: 16},
	{Name: "uinteger", Parent: "integer", Size: 8},
	{Name: "uint8", Parent: "uinteger", Size: 1},
	{Name: "uint16", Parent: "uinteger", Size: 2},
	{Name: "uint32", Parent: "uinteger", Size: 4},
	{Name: "uint64", Parent: "uinteger", Size: 8},
	{Name: "uint", Parent: "uinteger", Size: 8},
	{Name: "uint128", Parent: "uinteger", Size: 16},
}

// NewTypeSystem returns a type system holding only the built-in types
func NewTypeSystem() *TypeSystem {
	ts := &TypeSystem{
		types:   make(map[string]*Type),
		symbols: make(map[string]TypeSpec),
	}
	for _, b := range builtins {
		t := b
		ts.types[t.Name] = &t
	}
	ts.symbols["#f"] = New("symbol")
	ts.symbols["#t"] = New("symbol")
	return ts
}

// AddType registers a type. The parent must already exist.
func (ts *TypeSystem) AddType(t Type) error {
	if t.Name == "" {
		return errors.New("type without a name")
	}
	if t.Parent == "" {
		t.Parent = "structure"
	}
	if _, ok := ts.types[t.Parent]; !ok {
		return errors.New("type %v: unknown parent %v", t.Name, t.Parent)
	}
	if _, ok := ts.types[t.Name]; ok {
		return errors.New("type %v: redefined", t.Name)
	}
	ts.types[t.Name] = &t
	return nil
}

// AddSymbol declares the type of a global symbol
func (ts *TypeSystem) AddSymbol(name string, t TypeSpec) {
	ts.symbols[name] = t
}

// Lookup returns the named type
func (ts *TypeSystem) Lookup(name string) (*Type, bool) {
	t, ok := ts.types[name]
	return t, ok
}

// ancestors returns name followed by its parents up to object. Unknown
// names are treated as direct children of object.
func (ts *TypeSystem) ancestors(name string) []string {
	chain := []string{name}
	for {
		t, ok := ts.types[name]
		if !ok {
			if name != "object" {
				chain = append(chain, "object")
			}
			return chain
		}
		if t.Parent == "" {
			return chain
		}
		name = t.Parent
		chain = append(chain, name)
	}
}

// IsA implements Oracle
func (ts *TypeSystem) IsA(parent, child TypeSpec) bool {
	if parent.IsZero() || child.IsZero() {
		return false
	}
	for _, a := range ts.ancestors(child.Base) {
		if a != parent.Base {
			continue
		}
		if len(parent.Args) == 0 {
			return true
		}
		// parameterized parents only match the same base with matching args
		return a == child.Base && parent.Equal(child)
	}
	return false
}

// LowestCommonAncestor implements Oracle
func (ts *TypeSystem) LowestCommonAncestor(a, b TypeSpec) TypeSpec {
	if a.Equal(b) {
		return a
	}
	if a.Base == b.Base {
		return New(a.Base)
	}
	bChain := make(map[string]bool)
	for _, n := range ts.ancestors(b.Base) {
		bChain[n] = true
	}
	for _, n := range ts.ancestors(a.Base) {
		if bChain[n] {
			return New(n)
		}
	}
	return New("object")
}

// IsInteger reports whether t is an integer type
func (ts *TypeSystem) IsInteger(t TypeSpec) bool {
	return ts.IsA(New("integer"), t)
}

// IsFloat reports whether t is a float type
func (ts *TypeSystem) IsFloat(t TypeSpec) bool {
	return ts.IsA(New("float"), t)
}

// IsSigned reports whether t is a signed integer type
func (ts *TypeSystem) IsSigned(t TypeSpec) bool {
	return ts.IsA(New("sinteger"), t) || t.Base == "binteger"
}

// SizeOf returns the size in bytes of a value of type t
func (ts *TypeSystem) SizeOf(t TypeSpec) int {
	for _, n := range ts.ancestors(t.Base) {
		if tt, ok := ts.types[n]; ok && tt.Size > 0 {
			return tt.Size
		}
	}
	return 4
}

// fields returns the fields of name and all of its ancestors
func (ts *TypeSystem) fields(name string) []Field {
	var out []Field
	for _, n := range ts.ancestors(name) {
		if t, ok := ts.types[n]; ok {
			out = append(out, t.Fields...)
		}
	}
	return out
}

// FieldAt implements Oracle
func (ts *TypeSystem) FieldAt(base TypeSpec, offset int) (Field, bool) {
	switch base.Base {
	case "pair":
		switch offset {
		case PairCarOff:
			return Field{Name: "car", Offset: 0, Type: New("object")}, true
		case PairCdrOff:
			return Field{Name: "cdr", Offset: 4, Type: New("object")}, true
		}
		return Field{}, false
	case "pointer":
		elem := base.Arg(0)
		if elem.IsZero() {
			return Field{}, false
		}
		size := ts.SizeOf(elem)
		if offset%size != 0 {
			return Field{}, false
		}
		return Field{Name: fmt.Sprintf("%d", offset/size), Offset: offset, Type: elem}, true
	}

	if _, ok := ts.types[base.Base]; !ok {
		return Field{}, false
	}
	effective := offset
	if ts.IsA(New("basic"), base) {
		effective += BasicOffset
	}
	for _, f := range ts.fields(base.Base) {
		if f.Offset == effective {
			return f, true
		}
	}
	return Field{}, false
}

// PromoteIntMath implements Oracle
func (ts *TypeSystem) PromoteIntMath(class MathClass, a, b TypeSpec) (TypeSpec, bool) {
	aPtr, bPtr := a.Base == "pointer", b.Base == "pointer"
	aInt, bInt := ts.IsInteger(a), ts.IsInteger(b)

	if (!aInt && !aPtr) || (!bInt && !bPtr) {
		return TypeSpec{}, false
	}

	switch {
	case aPtr && bPtr:
		if class == MathArith {
			return New("int"), true
		}
		return a, true
	case aPtr:
		return a, true
	case bPtr:
		if class == MathArith {
			return b, true
		}
		return New("uint"), true
	}

	switch class {
	case MathArith:
		if a.Equal(b) {
			return a, true
		}
		return New("int"), true
	case MathArithUnsigned:
		if a.Equal(b) && !ts.IsSigned(a) {
			return a, true
		}
		return New("uint"), true
	case MathBitwise:
		if ts.SizeOf(b) > ts.SizeOf(a) {
			return b, true
		}
		return a, true
	case MathShift:
		return a, true
	case MathMinMax:
		if a.Equal(b) {
			return a, true
		}
		return New("int"), true
	}
	return TypeSpec{}, false
}

// CoerceToRegClass implements Oracle
func (ts *TypeSystem) CoerceToRegClass(t TypeSpec, class RegClass) TypeSpec {
	switch class {
	case RegFPR:
		if ts.IsFloat(t) {
			return t
		}
		return New("float")
	case RegGPR64:
		if !ts.IsInteger(t) || t.Base == "binteger" || ts.SizeOf(t) >= 8 {
			return t
		}
		if ts.IsSigned(t) {
			return New("int")
		}
		return New("uint")
	}
	return t
}

// SymbolType implements Oracle
func (ts *TypeSystem) SymbolType(name string) (TypeSpec, bool) {
	t, ok := ts.symbols[name]
	return t, ok
}

// DumpSymbolTypes lists every declared symbol with its type, sorted by name
func (ts *TypeSystem) DumpSymbolTypes() string {
	names := make([]string, 0, len(ts.symbols))
	for n := range ts.symbols {
		names = append(names, n)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, n := range names {
		fmt.Fprintf(&sb, "(define-extern %s %s)\n", n, ts.symbols[n])
	}

	typeNames := make([]string, 0, len(ts.types))
	for n, t := range ts.types {
		if len(t.Methods) > 0 {
			typeNames = append(typeNames, n)
		}
	}
	sort.Strings(typeNames)
	for _, n := range typeNames {
		methods := append([]Method(nil), ts.types[n].Methods...)
		sort.Slice(methods, func(i, j int) bool { return methods[i].ID < methods[j].ID })
		for _, m := range methods {
			fmt.Fprintf(&sb, "(defmethod-extern %s %d %s %s)\n", n, m.ID, m.Name, m.Type)
		}
	}
	return sb.String()
}
