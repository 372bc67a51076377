// Package linkfile holds the label and symbol names of one object file, as
// produced by the linker stage, and resolves them for the form renderer.
package linkfile

import (
	"os"
	"sort"

	"github.com/raymyers/ralph-decomp/pkg/ir"
	"gopkg.in/yaml.v3"
	"tlog.app/go/errors"
)

// Table maps label ids and symbol names to display names. It is read-only
// once loaded and safe for concurrent readers.
type Table struct {
	Labels  map[int]string    `yaml:"labels"`
	Symbols map[string]string `yaml:"symbols"`
}

var _ ir.Resolver = (*Table)(nil)

// New creates an empty table
func New() *Table {
	return &Table{
		Labels:  make(map[int]string),
		Symbols: make(map[string]string),
	}
}

// Load parses a YAML link table:
//
//	labels:
//	  3: L3
//	symbols:
//	  "*display*": "*display-list*"
func Load(data []byte) (*Table, error) {
	t := New()
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, errors.Wrap(err, "parse link table")
	}
	if t.Labels == nil {
		t.Labels = make(map[int]string)
	}
	if t.Symbols == nil {
		t.Symbols = make(map[string]string)
	}
	for id, name := range t.Labels {
		if name == "" {
			return nil, errors.New("label %d: empty name", id)
		}
	}
	return t, nil
}

// LoadFile reads and parses a link table file
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read link table")
	}
	t, err := Load(data)
	if err != nil {
		return nil, errors.Wrap(err, "%v", path)
	}
	return t, nil
}

// AddLabel names a label
func (t *Table) AddLabel(id int, name string) {
	t.Labels[id] = name
}

// AddSymbol sets the display name of a symbol
func (t *Table) AddSymbol(name, display string) {
	t.Symbols[name] = display
}

// LabelName implements ir.Resolver
func (t *Table) LabelName(id int) (string, bool) {
	if t == nil {
		return "", false
	}
	name, ok := t.Labels[id]
	return name, ok
}

// SymbolName implements ir.Resolver
func (t *Table) SymbolName(name string) (string, bool) {
	if t == nil {
		return "", false
	}
	display, ok := t.Symbols[name]
	return display, ok
}

// LabelIDs returns the known label ids in ascending order
func (t *Table) LabelIDs() []int {
	ids := make([]int, 0, len(t.Labels))
	for id := range t.Labels {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Unresolved returns the ids of labels referenced by n that the table does
// not name, in order of first appearance
func (t *Table) Unresolved(n ir.Node) []int {
	var out []int
	seen := make(map[int]bool)
	note := func(id int) {
		if _, ok := t.LabelName(id); ok || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
	}
	ir.Inspect(n, func(x ir.Node) bool {
		switch x := x.(type) {
		case *ir.StaticAddress:
			note(x.LabelID)
		case *ir.Branch:
			note(x.DestLabel)
		}
		return true
	})
	return out
}
