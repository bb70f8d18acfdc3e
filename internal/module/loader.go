// Package module is Noolang's module loader (spec.md §4.M): it resolves
// `import "path"` expressions against the filesystem, type-checks and
// evaluates the imported file once per process, and caches the result
// keyed by absolute path. Grounded on the teacher's internal/loader
// (path resolution + an in-progress stack for cycle detection),
// generalized from AILANG's manifest-driven package resolution to
// Noolang's simpler "relative to the importing file" rule (spec.md
// never introduces a package manifest).
package module

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jethrolarson/noolang-sub000/internal/checker"
	"github.com/jethrolarson/noolang-sub000/internal/eval"
	nerrors "github.com/jethrolarson/noolang-sub000/internal/errors"
	"github.com/jethrolarson/noolang-sub000/internal/parser"
	"github.com/jethrolarson/noolang-sub000/internal/stdlib"
	"github.com/jethrolarson/noolang-sub000/internal/traits"
	"github.com/jethrolarson/noolang-sub000/internal/types"
)

type cached struct {
	Type    types.Type
	Effects types.EffectSet
	Value   eval.Value
}

// Loader owns the single Registry and Evaluator shared across every
// module loaded in a process (or REPL session), so constraint
// implementations and ConstructorADT entries accumulate correctly
// across files (spec.md §4.R, §4.E).
type Loader struct {
	Registry  *traits.Registry
	Evaluator *eval.Evaluator

	// PreludeTypeEnv / PreludeValueEnv are the ambient scopes every
	// loaded file's top level is a Child() of — the stdlib prelude's
	// bindings (Option, Result, isEmpty, …) are in scope everywhere
	// without an explicit import (spec.md "auto-loaded by the module
	// loader before the user's program").
	PreludeTypeEnv  *types.Env
	PreludeValueEnv *eval.Env

	// SearchPaths are extra directories consulted for `import "path"`
	// when it does not resolve relative to the importing file (or the
	// working directory for a top-level program) — sourced from a
	// project's `.noorc.yaml` (internal/config), set via SetSearchPaths.
	SearchPaths []string

	cache      map[string]*cached
	inProgress map[string]bool
	stack      []string
}

// SetSearchPaths configures the extra directories Load falls back to
// when an import doesn't resolve relative to its importing file.
func (l *Loader) SetSearchPaths(paths []string) {
	l.SearchPaths = paths
}

// New builds a Loader and bootstraps the embedded stdlib prelude into
// its ambient scopes. out/rnd configure the Evaluator's print/println/
// log destination and random source.
func New(out io.Writer, rnd eval.Randomizer) (*Loader, error) {
	registry := traits.New()
	ev := eval.New(registry, out, rnd)
	l := &Loader{
		Registry:   registry,
		Evaluator:  ev,
		cache:      make(map[string]*cached),
		inProgress: make(map[string]bool),
	}
	if err := l.bootstrapPrelude(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Loader) bootstrapPrelude() error {
	prog, err := parser.Parse(stdlib.PreludeSource)
	if err != nil {
		return err
	}

	typeEnv := checker.BaseEnv().Child()
	c := checker.New(l.Registry)
	if _, _, err := c.CheckProgram(prog, typeEnv); err != nil {
		return err
	}

	valueEnv := eval.BaseEnv(l.Evaluator).Child()
	if _, _, err := l.Evaluator.EvaluateProgram(prog, valueEnv); err != nil {
		return err
	}

	l.PreludeTypeEnv = typeEnv
	l.PreludeValueEnv = valueEnv
	return nil
}

// resolve turns an import path into an absolute file path, relative to
// fromFile's directory (or the process's working directory when
// fromFile is empty, i.e. the top-level program has no file context —
// spec.md §4.M). When that candidate doesn't exist on disk, each of
// l.SearchPaths is tried in order before giving up, so a project's
// `.noorc.yaml` searchPaths can widen import resolution without every
// import needing a relative prefix.
func (l *Loader) resolve(path, fromFile string) (string, error) {
	if !strings.HasSuffix(path, ".noo") {
		path += ".noo"
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	base := ""
	if fromFile != "" {
		base = filepath.Dir(fromFile)
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		base = wd
	}
	primary, err := filepath.Abs(filepath.Join(base, path))
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(primary); err == nil {
		return primary, nil
	}
	for _, dir := range l.SearchPaths {
		candidate, err := filepath.Abs(filepath.Join(dir, path))
		if err != nil {
			continue
		}
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return primary, nil
}

// Load resolves, type-checks, evaluates, and caches the module at path
// (relative to fromFile), returning its exported record type, the
// effects evaluating it incurred, and its exported record value.
func (l *Loader) Load(path, fromFile string) (types.Type, types.EffectSet, eval.Value, error) {
	abs, err := l.resolve(path, fromFile)
	if err != nil {
		return nil, nil, nil, nerrors.Wrap(nerrors.NewImport(nil, "cannot resolve import %q: %v", path, err))
	}

	if c, ok := l.cache[abs]; ok {
		return c.Type, c.Effects, c.Value, nil
	}
	if l.inProgress[abs] {
		trail := append(append([]string{}, l.stack...), abs)
		return nil, nil, nil, nerrors.Wrap(nerrors.NewImport(nil, "import cycle: %s", strings.Join(trail, " -> ")))
	}

	l.inProgress[abs] = true
	l.stack = append(l.stack, abs)
	defer func() {
		delete(l.inProgress, abs)
		l.stack = l.stack[:len(l.stack)-1]
	}()

	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, nil, nil, nerrors.Wrap(nerrors.NewImport(nil, "cannot read %q: %v", path, err))
	}

	prog, err := parser.Parse(string(src))
	if err != nil {
		return nil, nil, nil, err
	}

	typeEnv := l.PreludeTypeEnv.Child()
	c := checker.New(l.Registry)
	c.Importer = func(p string) (types.Type, types.EffectSet, error) {
		t, eff, _, err := l.Load(p, abs)
		return t, eff, err
	}
	_, eff, err := c.CheckProgram(prog, typeEnv)
	if err != nil {
		return nil, nil, nil, err
	}

	valueEnv := l.PreludeValueEnv.Child()
	prevImporter := l.Evaluator.Importer
	l.Evaluator.Importer = func(p string) (eval.Value, error) {
		_, _, v, err := l.Load(p, abs)
		return v, err
	}
	_, _, err = l.Evaluator.EvaluateProgram(prog, valueEnv)
	l.Evaluator.Importer = prevImporter
	if err != nil {
		return nil, nil, nil, err
	}

	expType, expValue := exportRecord(typeEnv, valueEnv)
	l.cache[abs] = &cached{Type: expType, Effects: eff, Value: expValue}
	return expType, eff, expValue, nil
}

// EvalString runs the full pipeline (parse, type-check, evaluate) over
// source text that is not itself backed by a file on disk — a
// `--eval`/`-e` expression or a whole file read into memory by the
// caller (spec.md §6). path, when
// non-empty, anchors any imports the program contains the same way a
// loaded file's own path does; an empty path resolves imports relative
// to the process's working directory. It is the single entry point
// cmd/noolang and the test suite share so the pipeline wiring (prelude
// scopes, Importer plumbing) exists in exactly one place.
func (l *Loader) EvalString(src, path string) (types.Type, types.EffectSet, eval.Value, error) {
	prog, err := parser.Parse(src)
	if err != nil {
		return nil, nil, nil, err
	}

	typeEnv := l.PreludeTypeEnv.Child()
	c := checker.New(l.Registry)
	c.Importer = func(p string) (types.Type, types.EffectSet, error) {
		t, eff, _, err := l.Load(p, path)
		return t, eff, err
	}
	resultT, eff, err := c.CheckProgram(prog, typeEnv)
	if err != nil {
		return nil, nil, nil, err
	}

	valueEnv := l.PreludeValueEnv.Child()
	prevImporter := l.Evaluator.Importer
	l.Evaluator.Importer = func(p string) (eval.Value, error) {
		_, _, v, err := l.Load(p, path)
		return v, err
	}
	result, _, err := l.Evaluator.EvaluateProgram(prog, valueEnv)
	l.Evaluator.Importer = prevImporter
	if err != nil {
		return nil, nil, nil, err
	}
	return resultT, eff, result, nil
}

// exportRecord builds the record of a module's top-level bindings
// (spec.md §4.M: "import produces a record of the module's top-level
// definitions"). The record's field types keep whatever free type
// variables remain after checking the module; they're generalized
// together, as one Scheme over the whole record, wherever the import
// expression itself is bound to a name — Noolang's types.Record has no
// per-field Scheme, so per-export let-polymorphism isn't separated out
// any more finely than that (see DESIGN.md).
func exportRecord(typeEnv *types.Env, valueEnv *eval.Env) (types.Type, eval.Value) {
	names := typeEnv.LocalNames()
	fields := make(map[string]types.Type, len(names))
	order := make([]string, 0, len(names))
	for _, name := range names {
		scheme, ok := typeEnv.Lookup(name)
		if !ok {
			continue
		}
		fields[name] = scheme.Type
		order = append(order, name)
	}
	expType := &types.Record{Fields: fields, Order: order}

	valFields := make(map[string]eval.Value, len(order))
	for _, name := range order {
		v, _ := valueEnv.Lookup(name)
		valFields[name] = v
	}
	expValue := &eval.Record{Fields: valFields, Order: order}

	return expType, expValue
}
