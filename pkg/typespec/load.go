package typespec

import (
	"os"

	"gopkg.in/yaml.v3"
	"tlog.app/go/errors"
)

// typeFile is the on-disk layout of a type definition file
type typeFile struct {
	Types []struct {
		Name    string   `yaml:"name"`
		Parent  string   `yaml:"parent"`
		Size    int      `yaml:"size"`
		Fields  []Field  `yaml:"fields"`
		Methods []Method `yaml:"methods"`
	} `yaml:"types"`
	Symbols map[string]TypeSpec `yaml:"symbols"`
}

// Load parses a YAML type definition document on top of the built-in types.
// Types must be listed after their parents.
func Load(data []byte) (*TypeSystem, error) {
	var f typeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "parse types")
	}

	ts := NewTypeSystem()
	for _, t := range f.Types {
		err := ts.AddType(Type{
			Name:    t.Name,
			Parent:  t.Parent,
			Size:    t.Size,
			Fields:  t.Fields,
			Methods: t.Methods,
		})
		if err != nil {
			return nil, errors.Wrap(err, "add type")
		}
	}
	for name, t := range f.Symbols {
		ts.AddSymbol(name, t)
	}
	return ts, nil
}

// LoadFile reads and parses a type definition file
func LoadFile(path string) (*TypeSystem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read types")
	}
	ts, err := Load(data)
	if err != nil {
		return nil, errors.Wrap(err, "%v", path)
	}
	return ts, nil
}
