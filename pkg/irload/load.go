// Package irload reads already-structured function bodies from YAML
// fixtures. It stands in for the control flow structuring stage: the node
// shapes in a fixture are taken as given.
package irload

import (
	"os"

	"github.com/raymyers/ralph-decomp/pkg/ir"
	"github.com/raymyers/ralph-decomp/pkg/reg"
	"github.com/raymyers/ralph-decomp/pkg/typespec"
	"gopkg.in/yaml.v3"
	"tlog.app/go/errors"
)

// Function is one function body handed to the decompiler
type Function struct {
	Name string
	Type typespec.TypeSpec // (function arg... ret), zero if unknown
	// Args overrides the entry type of individual registers
	Args map[reg.Register]typespec.TypeSpec
	Body ir.Node
}

type fileFunction struct {
	Name string                       `yaml:"name"`
	Type typespec.TypeSpec            `yaml:"type"`
	Args map[string]typespec.TypeSpec `yaml:"args"`
	Body yaml.Node                    `yaml:"body"`
}

type file struct {
	Functions []fileFunction `yaml:"functions"`
}

// Load decodes every function in a fixture document
func Load(data []byte) ([]*Function, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "parse functions")
	}

	seen := make(map[string]bool)
	out := make([]*Function, 0, len(f.Functions))
	for i, ff := range f.Functions {
		if ff.Name == "" {
			return nil, errors.New("function %d: missing name", i)
		}
		if seen[ff.Name] {
			return nil, errors.New("function %v: defined twice", ff.Name)
		}
		seen[ff.Name] = true

		fn, err := decodeFunction(ff)
		if err != nil {
			return nil, errors.Wrap(err, "function %v", ff.Name)
		}
		out = append(out, fn)
	}
	return out, nil
}

// LoadFile reads and decodes a fixture file
func LoadFile(path string) ([]*Function, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read functions")
	}
	fns, err := Load(data)
	if err != nil {
		return nil, errors.Wrap(err, "%v", path)
	}
	return fns, nil
}

func decodeFunction(ff fileFunction) (*Function, error) {
	fn := &Function{
		Name: ff.Name,
		Type: ff.Type,
		Args: make(map[reg.Register]typespec.TypeSpec, len(ff.Args)),
	}
	for name, t := range ff.Args {
		r, err := reg.Parse(name)
		if err != nil {
			return nil, errors.Wrap(err, "args")
		}
		fn.Args[r] = t
	}

	if ff.Body.Kind == 0 {
		return nil, errors.New("missing body")
	}
	body, err := DecodeNode(&ff.Body)
	if err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}
