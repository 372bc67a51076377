// Package typespec defines GOAL type specifications and the type system that
// answers field-layout, promotion and lattice questions for the decompiler.
package typespec

import (
	"strings"

	"github.com/raymyers/ralph-decomp/pkg/form"
	"gopkg.in/yaml.v3"
	"tlog.app/go/errors"
)

// TypeSpec is a possibly parameterized type such as int32 or (pointer uint8)
type TypeSpec struct {
	Base string
	Args []TypeSpec
}

// New returns a TypeSpec with the given base and arguments
func New(base string, args ...TypeSpec) TypeSpec {
	return TypeSpec{Base: base, Args: args}
}

// Pointer returns (pointer elem)
func Pointer(elem TypeSpec) TypeSpec {
	return New("pointer", elem)
}

// IsZero reports whether t is the empty TypeSpec
func (t TypeSpec) IsZero() bool {
	return t.Base == "" && len(t.Args) == 0
}

// Arg returns the i-th argument or the zero TypeSpec
func (t TypeSpec) Arg(i int) TypeSpec {
	if i < 0 || i >= len(t.Args) {
		return TypeSpec{}
	}
	return t.Args[i]
}

// Last returns the final argument, which is the return type of a function type
func (t TypeSpec) Last() TypeSpec {
	return t.Arg(len(t.Args) - 1)
}

// Equal reports whether two TypeSpecs are identical
func (t TypeSpec) Equal(o TypeSpec) bool {
	if t.Base != o.Base || len(t.Args) != len(o.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

func (t TypeSpec) String() string {
	if t.IsZero() {
		return "<unknown>"
	}
	if len(t.Args) == 0 {
		return t.Base
	}
	var sb strings.Builder
	sb.WriteByte('(')
	sb.WriteString(t.Base)
	for _, a := range t.Args {
		sb.WriteByte(' ')
		sb.WriteString(a.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Form returns t as a surface syntax object
func (t TypeSpec) Form() form.Object {
	if len(t.Args) == 0 {
		return form.Symbol(t.Base)
	}
	l := form.Build(t.Base)
	for _, a := range t.Args {
		l = append(l, a.Form())
	}
	return l
}

// Parse reads a TypeSpec from its text form
func Parse(text string) (TypeSpec, error) {
	o, err := form.Read(text)
	if err != nil {
		return TypeSpec{}, errors.Wrap(err, "type %q", text)
	}
	return FromForm(o)
}

// MustParse is like Parse but panics on error
func MustParse(text string) TypeSpec {
	t, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return t
}

// FromForm converts a symbol or list object to a TypeSpec
func FromForm(o form.Object) (TypeSpec, error) {
	switch x := o.(type) {
	case form.Symbol:
		return New(string(x)), nil
	case form.List:
		if len(x) == 0 {
			return TypeSpec{}, errors.New("empty type")
		}
		head, ok := x[0].(form.Symbol)
		if !ok {
			return TypeSpec{}, errors.New("type head must be a symbol, got %s", form.Print(x[0]))
		}
		t := New(string(head))
		for _, a := range x[1:] {
			arg, err := FromForm(a)
			if err != nil {
				return TypeSpec{}, err
			}
			t.Args = append(t.Args, arg)
		}
		return t, nil
	}
	return TypeSpec{}, errors.New("bad type form %s", form.Print(o))
}

// UnmarshalYAML reads a TypeSpec written as a string
func (t *TypeSpec) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalYAML writes a TypeSpec as its text form
func (t TypeSpec) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}
