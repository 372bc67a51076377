// Package decomp runs type propagation and rendering over a batch of
// structured functions. Functions are independent: each worker owns its
// function tree and type map, and a function that trips an internal
// invariant fails alone.
package decomp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/raymyers/ralph-decomp/pkg/config"
	"github.com/raymyers/ralph-decomp/pkg/form"
	"github.com/raymyers/ralph-decomp/pkg/ir"
	"github.com/raymyers/ralph-decomp/pkg/irload"
	"github.com/raymyers/ralph-decomp/pkg/linkfile"
	"github.com/raymyers/ralph-decomp/pkg/typeprop"
	"github.com/raymyers/ralph-decomp/pkg/typespec"
	"golang.org/x/sync/errgroup"
	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"
)

// AllTypesFile is the name of the symbol type summary written to the output
// directory
const AllTypesFile = "all-types.gc"

// Output is the result of decompiling one function
type Output struct {
	Name string
	// Text is the rendered (defun ...) form, with type comments when
	// requested
	Text       string
	Types      *typeprop.Result
	Failures   int   // failed-to-decompile subtrees
	Unresolved []int // labels with no name
	Err        error
}

// Decompiler holds the read-only state shared by all workers
type Decompiler struct {
	cfg    *config.Config
	types  *typespec.TypeSystem
	labels *linkfile.Table
	pass   *typeprop.Pass
}

// New creates a decompiler. Nil types or labels are replaced by the
// built-in type system and an empty label table.
func New(cfg *config.Config, types *typespec.TypeSystem, labels *linkfile.Table) *Decompiler {
	if cfg == nil {
		cfg = config.Default()
	}
	if types == nil {
		types = typespec.NewTypeSystem()
	}
	if labels == nil {
		labels = linkfile.New()
	}

	pass := typeprop.NewPass(types)
	pass.MaxLoopIterations = cfg.MaxLoopIterations

	return &Decompiler{
		cfg:    cfg,
		types:  types,
		labels: labels,
		pass:   pass,
	}
}

// Open creates a decompiler, loading the type and label files named by cfg
func Open(cfg *config.Config) (*Decompiler, error) {
	var (
		types  *typespec.TypeSystem
		labels *linkfile.Table
		err    error
	)

	if cfg.Types != "" {
		types, err = typespec.LoadFile(cfg.Types)
		if err != nil {
			return nil, errors.Wrap(err, "load types")
		}
	}
	if cfg.Labels != "" {
		labels, err = linkfile.LoadFile(cfg.Labels)
		if err != nil {
			return nil, errors.Wrap(err, "load labels")
		}
	}

	return New(cfg, types, labels), nil
}

// Run decompiles the selected functions with at most cfg.Jobs at a time.
// Outputs are returned in input order. Per-function failures are reported
// in Output.Err; the returned error is for the batch itself (output files
// that could not be written).
func (d *Decompiler) Run(ctx context.Context, fns []*irload.Function) (outs []*Output, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "decompile batch", "functions", len(fns), "jobs", d.cfg.Jobs)
	defer tr.Finish("err", &err)

	var selected []*irload.Function
	for _, fn := range fns {
		if d.cfg.Selected(fn.Name) {
			selected = append(selected, fn)
		}
	}

	if d.cfg.OutDir != "" {
		if err = os.MkdirAll(d.cfg.OutDir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create output dir")
		}
	}

	outs = make([]*Output, len(selected))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Jobs)

	for i, fn := range selected {
		i, fn := i, fn // per-iteration copies (go < 1.22 loop semantics)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			out := d.Function(ctx, fn)
			outs[i] = out

			if d.cfg.OutDir == "" || out.Err != nil {
				return nil
			}

			return d.writeFile(fn.Name+".gc", out.Text)
		})
	}

	if err = g.Wait(); err != nil {
		return outs, err
	}

	failed, failures := 0, 0
	for _, out := range outs {
		if out.Err != nil {
			failed++
		}
		failures += out.Failures
	}

	tr.Printw("batch done", "functions", len(outs), "failed", failed, "failed_subtrees", failures)

	if d.cfg.OutDir != "" && d.cfg.WriteAllTypes {
		if err = d.writeFile(AllTypesFile, d.types.DumpSymbolTypes()); err != nil {
			return outs, err
		}
	}

	return outs, nil
}

func (d *Decompiler) writeFile(name, text string) error {
	path := filepath.Join(d.cfg.OutDir, name)

	err := os.WriteFile(path, []byte(text), 0o644)
	if err != nil {
		return errors.Wrap(err, "write %v", path)
	}

	return nil
}

// Function decompiles a single function. It never panics: a broken
// invariant inside the function becomes Output.Err.
func (d *Decompiler) Function(ctx context.Context, fn *irload.Function) *Output {
	out := &Output{Name: fn.Name}
	out.Err = d.function(ctx, fn, out)

	return out
}

func (d *Decompiler) function(ctx context.Context, fn *irload.Function, out *Output) (err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "decompile func", "name", fn.Name)
	defer tr.Finish("err", &err)

	defer func() {
		p := recover()
		if p == nil {
			return
		}

		tr.Printw("panic", "panic", p, "from", loc.Callers(2, 4))

		err = errors.New("internal error: %v", p)
	}()

	if fn.Body == nil {
		return errors.New("no body")
	}

	entry := EntryTypes(fn)

	res := d.pass.Run(fn.Body, entry)
	out.Types = res

	if tr.If("type_miss") {
		for _, m := range res.Misses {
			tr.Printw("type miss", "stmt", m.Stmt, "reg", m.Dst.String(), "form", m.Form)
		}
	}

	if tr.If("dump_types") {
		tr.Printw("entry types", "types", entry.String())

		for i, snap := range res.Snapshots {
			tr.Printw("types", "stmt", i, "types", snap.String())
		}
	}

	out.Failures = ir.CountFailures(fn.Body)
	out.Unresolved = d.labels.Unresolved(fn.Body)

	if len(out.Unresolved) != 0 {
		tr.Printw("unresolved labels", "labels", out.Unresolved)
	}

	defun := d.Defun(fn)

	var sb strings.Builder

	if d.cfg.DumpForms {
		sb.WriteString(form.Print(defun))
		sb.WriteByte('\n')
	} else {
		sb.WriteString(form.Pretty(defun, form.DefaultWidth))
		sb.WriteByte('\n')
	}

	if d.cfg.DumpTypes {
		fmt.Fprintf(&sb, ";; entry %v\n", entry)

		for i, snap := range res.Snapshots {
			fmt.Fprintf(&sb, ";; %d %v\n", i, snap)
		}
	}

	out.Text = sb.String()

	tr.Printw("decompiled", "stmts", len(res.Snapshots), "misses", len(res.Misses), "failed_subtrees", out.Failures)

	return nil
}

// EntryTypes returns the type map at the start of fn: the argument types
// from its function type, overridden by explicit per-register types.
func EntryTypes(fn *irload.Function) typeprop.TypeMap {
	m := typeprop.EntryTypes(fn.Type)
	for r, t := range fn.Args {
		m.Set(r, t)
	}

	return m
}

// Defun renders fn as (defun name ((a0 type) ...) body...). Arguments are
// the argument registers its function type covers.
func (d *Decompiler) Defun(fn *irload.Function) form.List {
	entry := typeprop.EntryTypes(fn.Type)

	args := form.List{}
	for _, r := range entry.Registers() {
		t := entry[r]
		if override, ok := fn.Args[r]; ok {
			t = override
		}

		args = append(args, form.List{form.Symbol(r.String()), t.Form()})
	}

	l := form.Build("defun", form.Symbol(fn.Name), args)

	stmts := []ir.Node{fn.Body}
	if b, ok := fn.Body.(*ir.Begin); ok {
		stmts = b.Forms
	}

	for _, s := range stmts {
		l = append(l, ir.Render(s, d.labels))
	}

	return l
}
