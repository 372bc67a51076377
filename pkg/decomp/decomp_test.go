package decomp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/raymyers/ralph-decomp/pkg/config"
	"github.com/raymyers/ralph-decomp/pkg/ir"
	"github.com/raymyers/ralph-decomp/pkg/irload"
	"github.com/raymyers/ralph-decomp/pkg/linkfile"
	"github.com/raymyers/ralph-decomp/pkg/reg"
	"github.com/raymyers/ralph-decomp/pkg/typespec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func add1() *irload.Function {
	return &irload.Function{
		Name: "add1",
		Type: typespec.MustParse("(function int32 int32)"),
		Body: &ir.Begin{Forms: []ir.Node{
			ir.Assign(ir.Gpr("v0"), ir.Math2(ir.Add, ir.Gpr("a0"), ir.Const(1))),
			&ir.Return{ReturnCode: ir.Gpr("v0")},
		}},
	}
}

func jumper() *irload.Function {
	return &irload.Function{
		Name: "jumper",
		Body: &ir.Begin{Forms: []ir.Node{
			&ir.Branch{
				Condition: ir.Cond1(ir.Zero, ir.Gpr("a0")),
				DestLabel: 7,
				Delay:     &ir.BranchDelay{Kind: ir.DelaySetRegFalse, Destination: ir.Gpr("v0")},
			},
			&ir.Branch{
				Condition: ir.Cond0(ir.Always),
				DestLabel: 9,
				Delay:     ir.NewDelay(ir.DelayNop),
			},
			&ir.Failed{},
		}},
	}
}

// broken holds a condition no constructor would build, so rendering it
// panics
func broken() *irload.Function {
	return &irload.Function{
		Name: "broken",
		Body: &ir.Compare{Condition: &ir.Condition{Kind: ir.InvalidCondition}},
	}
}

func TestFunction(t *testing.T) {
	d := New(nil, nil, nil)

	out := d.Function(context.Background(), add1())
	require.NoError(t, out.Err)

	assert.Equal(t, "(defun add1 ((a0 int32)) (set! v0 (+ a0 1)) (return v0))\n", out.Text)
	assert.Equal(t, "[v0: int a0: int32]", out.Types.Types.String())
	assert.Len(t, out.Types.Snapshots, 2)
	assert.Empty(t, out.Types.Misses)
	assert.Zero(t, out.Failures)
}

func TestFunctionArgOverride(t *testing.T) {
	fn := add1()
	fn.Args = map[reg.Register]typespec.TypeSpec{
		reg.MustParse("a0"): typespec.New("int"),
		reg.MustParse("a1"): typespec.New("string"),
	}

	d := New(nil, nil, nil)
	out := d.Function(context.Background(), fn)
	require.NoError(t, out.Err)

	// a1 is typed on entry but is not part of the function type
	assert.Equal(t, "(defun add1 ((a0 int)) (set! v0 (+ a0 1)) (return v0))\n", out.Text)
	assert.Equal(t, "[v0: int a0: int a1: string]", out.Types.Types.String())
}

func TestFunctionLabels(t *testing.T) {
	labels := linkfile.New()
	labels.AddLabel(7, "L7")

	d := New(nil, nil, labels)
	out := d.Function(context.Background(), jumper())
	require.NoError(t, out.Err)

	assert.Equal(t, "(defun jumper () (b! (zero? a0) L7 (set! v0 #f)) (b! #t L9? (nop!)) (failed-to-decompile!))\n", out.Text)
	assert.Equal(t, []int{9}, out.Unresolved)
	assert.Equal(t, 1, out.Failures)
	assert.Equal(t, "[v0: symbol]", out.Types.Types.String())
}

func TestFunctionDumps(t *testing.T) {
	cfg := config.Default()
	cfg.DumpForms = true
	cfg.DumpTypes = true

	d := New(cfg, nil, nil)
	out := d.Function(context.Background(), add1())
	require.NoError(t, out.Err)

	assert.Equal(t, "(defun add1 ((a0 int32)) (set! v0 (+ a0 1)) (return v0))\n"+
		";; entry [a0: int32]\n"+
		";; 0 [v0: int a0: int32]\n"+
		";; 1 [v0: int a0: int32]\n", out.Text)
}

func TestFunctionPanicIsolated(t *testing.T) {
	d := New(nil, nil, nil)

	out := d.Function(context.Background(), broken())
	require.Error(t, out.Err)
	assert.Contains(t, out.Err.Error(), "internal error")
	assert.Empty(t, out.Text)
}

func TestFunctionNoBody(t *testing.T) {
	d := New(nil, nil, nil)

	out := d.Function(context.Background(), &irload.Function{Name: "empty"})
	require.Error(t, out.Err)
}

func TestRun(t *testing.T) {
	cfg := config.Default()
	cfg.Jobs = 2

	d := New(cfg, nil, nil)
	outs, err := d.Run(context.Background(), []*irload.Function{add1(), broken(), jumper()})
	require.NoError(t, err)
	require.Len(t, outs, 3)

	// input order regardless of completion order
	assert.Equal(t, "add1", outs[0].Name)
	assert.Equal(t, "broken", outs[1].Name)
	assert.Equal(t, "jumper", outs[2].Name)

	// one broken function does not take the others down
	assert.NoError(t, outs[0].Err)
	assert.Error(t, outs[1].Err)
	assert.NoError(t, outs[2].Err)
}

func TestRunSelected(t *testing.T) {
	cfg := config.Default()
	cfg.Functions = []string{"jumper"}

	d := New(cfg, nil, nil)
	outs, err := d.Run(context.Background(), []*irload.Function{add1(), jumper()})
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, "jumper", outs[0].Name)
}

func TestRunOutDir(t *testing.T) {
	ts := typespec.NewTypeSystem()
	ts.AddSymbol("*counter*", typespec.New("int32"))

	cfg := config.Default()
	cfg.OutDir = filepath.Join(t.TempDir(), "out")

	d := New(cfg, ts, nil)
	outs, err := d.Run(context.Background(), []*irload.Function{add1(), broken()})
	require.NoError(t, err)
	require.Len(t, outs, 2)

	data, err := os.ReadFile(filepath.Join(cfg.OutDir, "add1.gc"))
	require.NoError(t, err)
	assert.Equal(t, outs[0].Text, string(data))

	// failed functions leave no file behind
	_, err = os.Stat(filepath.Join(cfg.OutDir, "broken.gc"))
	assert.True(t, os.IsNotExist(err))

	data, err = os.ReadFile(filepath.Join(cfg.OutDir, AllTypesFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "(define-extern *counter* int32)\n")
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	types := filepath.Join(dir, "types.yaml")
	require.NoError(t, os.WriteFile(types, []byte("symbols:\n  '*counter*': int32\n"), 0o644))

	labels := filepath.Join(dir, "labels.yaml")
	require.NoError(t, os.WriteFile(labels, []byte("labels:\n  9: L9\n"), 0o644))

	cfg := config.Default()
	cfg.Types = types
	cfg.Labels = labels

	d, err := Open(cfg)
	require.NoError(t, err)

	out := d.Function(context.Background(), jumper())
	require.NoError(t, out.Err)
	assert.Equal(t, []int{7}, out.Unresolved)

	cfg.Types = filepath.Join(dir, "missing.yaml")
	_, err = Open(cfg)
	require.Error(t, err)
}
