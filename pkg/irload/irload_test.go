package irload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/raymyers/ralph-decomp/pkg/ir"
	"github.com/raymyers/ralph-decomp/pkg/reg"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func decode(t *testing.T, src string) (ir.Node, error) {
	t.Helper()
	var n yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &n))
	return DecodeNode(&n)
}

func TestDecodeNode(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected string
	}{
		{"register", "a0", "a0"},
		{"fpr", "f12", "f12"},
		{"integer", "42", "42"},
		{"hex integer", "0x10", "16"},
		{"negative integer", "-8", "-8"},
		{"quoted symbol", `"'foo"`, "'foo"},
		{"false", `"#f"`, "#f"},
		{"symbol value", `"*display*"`, "*display*"},
		{"nop", "nop!", "(nop!)"},
		{"call", "call!", "(call!)"},
		{"failed", "failed-to-decompile!", "(failed-to-decompile!)"},
		{"vu q", "Q", "Q"},
		{"label", "{label: 4}", "L4?"},
		{"symbol form", "{sym: foo}", "'foo"},
		{"const form", "{const: 7}", "7"},
		{"negate", `{"-": a0}`, "(- a0)"},
		{"subtract", `{"-": [a0, a1]}`, "(- a0 a1)"},
		{"lognot", "{lognot: a0}", "(lognot a0)"},
		{"float add", `{"+.s": [f0, f1]}`, "(+.s f0 f1)"},
		{"sqrt", "{sqrt.s: f0}", "(sqrt.s f0)"},
		{"load", `{l.wu: {"+": [a0, 4]}}`, "(l.wu (+ a0 4))"},
		{"load float", "{l.f: a0}", "(l.f a0)"},
		{"store", "{s.d!: [a0, v1]}", "(s.d! a0 v1)"},
		{"store mapping", "{store: {kind: float, size: 4, dst: a0, src: f0}}", "(s.f! a0 f0)"},
		{"set!", `{set!: [v0, {"+": [a0, 1]}]}`, "(set! v0 (+ a0 1))"},
		{"set crossing", "{set: {kind: gpr->fpr, dst: f0, src: a0}}", "(set! f0 (gpr->fpr a0))"},
		{"compare", `{compare: {"<.si": [a0, a1]}}`, "(<.si a0 a1)"},
		{"compare unary", "{compare: {zero?: a0}}", "(zero? a0)"},
		{"compare nullary", `{compare: "#t"}`, "#t"},
		{"branch likely", "{bl!: {cond: {nonzero?: a0}, label: 2}}", "(bl! (nonzero? a0) L2? (nop!))"},
		{"branch delay", "{b!: {cond: {truthy: a0}, label: 1, delay: {kind: set-reg-reg, dst: v0, src: a1}}}",
			"(b! (truthy a0) L1? (set! v0 a1))"},
		{"branch unknown delay", `{b!: {cond: "#f", delay: unknown}}`, "(b! #f L0? (unknown-branch-delay))"},
		{"branch nop delay", "{b!: {cond: {zero?: a0}, label: 4, delay: nop}}", "(b! (zero? a0) L4? (nop!))"},
		{"begin", "[a0, a1]", "(begin a0 a1)"},
		{"while", `{while: {cond: {compare: {truthy: a0}}, body: [{set!: [a0, {"-": [a0, 1]}]}]}}`,
			"(while (truthy a0) (set! a0 (- a0 1)))"},
		{"until", "{until: {cond: {compare: {zero?: v0}}, body: suspend}}", "(until (zero? v0) (suspend))"},
		{"cond", "{cond: [{test: {compare: {zero?: a0}}, body: {set!: [v0, 1]}, false-dst: v0}]}",
			"(cond ((zero? a0) (set! v0 1)))"},
		{"cond else", "{cond-else: {entries: [{test: {compare: {zero?: a0}}, body: 1}], else: 2}}",
			"(cond ((zero? a0) 1) (else 2))"},
		{"and", "{and: {entries: [{test: {compare: {truthy: a0}}, out: v0}, {test: {compare: {truthy: a1}}, out: v0}], result: v0}}",
			"(and (truthy a0) (truthy a1))"},
		{"return", "{return: [v0, nop!]}", "(return v0 (nop!))"},
		{"return value", "{return: v0}", "(return v0)"},
		{"break", "{break!: null}", "(break!)"},
		{"type-of", "{type-of: a0}", "(type-of a0)"},
		{"type-of clobber", "{type-of: {obj: a0, clobber: t0}}", "(type-of a0)"},
		{"ash", "{ash: {value: a0, shift: a1}}", "(ash a0 a1)"},
		{"asm", "{asm: {op: sync.l}}", "(.sync.l)"},
		{"cmove", "{cmove-#f-zero: a0}", "(cmove-#f-zero a0)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := decode(t, tt.src)
			require.NoError(t, err)
			require.Equal(t, tt.expected, ir.Print(n, nil))
		})
	}
}

func TestDecodeClobbers(t *testing.T) {
	n, err := decode(t, "{set: {dst: v0, src: a0, clobber: t3}}")
	require.NoError(t, err)
	s := n.(*ir.Set)
	require.Equal(t, reg.MustParse("t3"), s.Clobber)
	require.Len(t, ir.Children(s), 2)

	n, err = decode(t, `{compare: {"=": [a0, a1], clobber: v1}}`)
	require.NoError(t, err)
	require.Equal(t, reg.MustParse("v1"), n.(*ir.Compare).Condition.Clobber)
}

func TestDecodeCleanedFlags(t *testing.T) {
	n, err := decode(t, "{while: {cond: a0, body: nop!, cleaned: true}}")
	require.NoError(t, err)
	require.True(t, n.(*ir.WhileLoop).Cleaned)

	n, err = decode(t, "{or: {entries: [{test: a0, cleaned: true}, {test: a1}]}}")
	require.NoError(t, err)
	sc := n.(*ir.ShortCircuit)
	require.Equal(t, ir.ShortCircuitOr, sc.Kind)
	require.True(t, sc.Entries[0].Cleaned)
	require.False(t, sc.Entries[1].Cleaned)
	require.Nil(t, sc.FinalResult)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"binary condition with one operand", `{compare: {"=": [a0]}}`},
		{"unary condition with two operands", "{compare: {zero?: [a0, a1]}}"},
		{"nullary condition with operand", `{compare: {"#t": [a0]}}`},
		{"unknown condition", "{compare: {bogus: a0}}"},
		{"two predicates", `{compare: {zero?: a0, nonzero?: a1}}`},
		{"unknown operator", "{frob: a0}"},
		{"two keys", "{set!: [a0, a1], lognot: a0}"},
		{"math arity", `{"+": [a0]}`},
		{"bad set kind", "{set: {kind: weird, dst: a0, src: a1}}"},
		{"missing src", "{set: {dst: a0}}"},
		{"unexpected key", "{set: {dst: a0, src: a1, extra: 1}}"},
		{"delay missing source", "{b!: {cond: {zero?: a0}, delay: {kind: set-reg-reg, dst: v0}}}"},
		{"unknown delay", "{b!: {cond: {zero?: a0}, delay: frob}}"},
		{"scalar delay missing destination", "{b!: {cond: {zero?: a0}, delay: set-reg-false}}"},
		{"scalar delay missing operands", "{b!: {cond: {zero?: a0}, delay: dsllv}}"},
		{"empty cond", "{cond: []}"},
		{"const of register", "{const: a0}"},
		{"bad clobber", "{set: {dst: a0, src: a1, clobber: x7}}"},
		{"null", "null"},
		{"long return", "{return: [a0, a1, a2]}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decode(t, tt.src)
			require.ErrorIs(t, err, ErrBadNode)
		})
	}
}

const testFunctions = `
functions:
  - name: add-one
    type: (function int int)
    args: {a1: float}
    body:
      - set!: [v0, {"+": [a0, 1]}]
      - b!:
          cond: {"=": [v0, 0]}
          label: 3
          delay: {kind: set-reg-false, dst: v1}
      - return: v0
  - name: idle
    body: nop!
`

func TestLoad(t *testing.T) {
	fns, err := Load([]byte(testFunctions))
	require.NoError(t, err)
	require.Len(t, fns, 2)

	fn := fns[0]
	require.Equal(t, "add-one", fn.Name)
	require.Equal(t, "(function int int)", fn.Type.String())
	require.Equal(t, "float", fn.Args[reg.MustParse("a1")].String())
	require.Equal(t,
		"(begin (set! v0 (+ a0 1)) (b! (= v0 0) L3? (set! v1 #f)) (return v0))",
		ir.Print(fn.Body, nil))

	require.True(t, fns[1].Type.IsZero())
	require.IsType(t, &ir.Nop{}, fns[1].Body)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "functions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testFunctions), 0o644))

	fns, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, fns, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing name", "functions: [{body: nop!}]"},
		{"duplicate name", "functions: [{name: f, body: nop!}, {name: f, body: nop!}]"},
		{"missing body", "functions: [{name: f}]"},
		{"bad arg register", "functions: [{name: f, args: {x9: int}, body: nop!}]"},
		{"bad type", `functions: [{name: f, type: "(", body: nop!}]`},
		{"bad yaml", "functions: [{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.src))
			require.Error(t, err)
		})
	}

	_, err := Load([]byte("functions: [{name: f, body: {frob: 1}}]"))
	require.ErrorIs(t, err, ErrBadNode)
}
