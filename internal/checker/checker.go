// Package checker is Noolang's Typer (spec.md §4.T): Algorithm W extended
// with row/record unification, effect propagation, and trait constraint
// solving against a traits.Registry. It decorates the AST it is given in
// place — every *ast.Meta-embedding node gains a resolved type and effect
// set — the same contract the teacher's internal/types inference pass
// uses (infer returns (Type, Effects, error); see internal/types/inference.go),
// generalized from the teacher's three-layer Core/TypedCore pipeline down
// to a single pass over the surface AST, per SPEC_FULL.md's simplified
// architecture.
package checker

import (
	"fmt"

	"github.com/jethrolarson/noolang-sub000/internal/ast"
	nerrors "github.com/jethrolarson/noolang-sub000/internal/errors"
	"github.com/jethrolarson/noolang-sub000/internal/traits"
	"github.com/jethrolarson/noolang-sub000/internal/types"
)

// Checker threads unification and trait-dispatch state across a single
// typechecking pass (spec.md §3's "central state object").
type Checker struct {
	Subst    *types.Subst
	Registry *traits.Registry
	// Importer resolves `import "path"` to the imported module's exported
	// record type; nil when imports aren't available (e.g. a REPL
	// snippet typed with no loader attached).
	Importer func(path string) (types.Type, types.EffectSet, error)

	freshCounter int
	pending      []types.Constraint

	// AdtConstructors maps an ADT's name to the full set of its
	// constructors' names, in declaration order, populated as each
	// *ast.TypeDefinition is inferred. Drives Match exhaustiveness
	// checking (SPEC_FULL.md: promoted to a hard TypeError per spec.md
	// §9's recommended resolution of the exhaustiveness open question).
	AdtConstructors map[string][]string
}

// New returns a Checker backed by registry (never nil — pass traits.New()
// for a fresh, empty one).
func New(registry *traits.Registry) *Checker {
	return &Checker{Subst: types.NewSubst(), Registry: registry, AdtConstructors: make(map[string][]string)}
}

func (c *Checker) fresh() *types.Var {
	c.freshCounter++
	return &types.Var{Name: fmt.Sprintf("t%d", c.freshCounter)}
}

// optionType builds the `Option t` head the stdlib prelude's ADT
// declaration produces, used to type `|?`'s monadic-bind shape and
// the list builtins' `head` result (env.go's BaseEnv calls it too)
// without importing the prelude itself.
func optionType(t types.Type) types.Type {
	return &types.Variant{Name: "Option", Args: []types.Type{t}}
}

func toErrPos(p ast.Pos) *nerrors.Position {
	return &nerrors.Position{Line: p.Line, Column: p.Column}
}

func (c *Checker) unify(a, b types.Type, span ast.Span) error {
	if err := types.Unify(a, b, c.Subst); err != nil {
		return nerrors.Wrap(nerrors.NewType(toErrPos(span.Start), "%v", err))
	}
	return nil
}

// effectSetter is satisfied by ast.Meta; not part of the ast.Expr
// interface, so we type-assert it locally rather than widening ast.Expr.
type effectSetter interface {
	SetEffects(types.EffectSet)
}

func (c *Checker) decorate(e ast.Expr, t types.Type, eff types.EffectSet) (types.Type, types.EffectSet, error) {
	e.SetResolvedType(t)
	if es, ok := e.(effectSetter); ok {
		es.SetEffects(eff)
	}
	return t, eff, nil
}

// Infer is the Algorithm W dispatch over every expression node
// (spec.md §4.T).
func (c *Checker) Infer(expr ast.Expr, env *types.Env) (types.Type, types.EffectSet, error) {
	switch e := expr.(type) {

	case *ast.Literal:
		var t types.Type
		switch e.Value.(type) {
		case float64:
			t = types.Float
		case string:
			t = types.Str
		case bool:
			t = types.Bool
		default:
			return nil, nil, nerrors.Wrap(nerrors.NewType(toErrPos(e.Span.Start), "unknown literal value %v", e.Value))
		}
		return c.decorate(e, t, types.EmptyEffects())

	case *ast.Variable:
		scheme, ok := env.Lookup(e.Name)
		if !ok {
			return nil, nil, nerrors.Wrap(nerrors.NewType(toErrPos(e.Span.Start), "Undefined variable: %s", e.Name))
		}
		t, cs := c.instantiate(scheme)
		c.pending = append(c.pending, cs...)
		if cell, ok := t.(*types.Variant); ok && cell.Name == "Cell" && len(cell.Args) == 1 {
			t = cell.Args[0]
		}
		return c.decorate(e, t, types.EmptyEffects())

	case *ast.Function:
		childEnv := env.Child()
		paramVars := make([]types.Type, len(e.Params))
		for i, p := range e.Params {
			v := c.fresh()
			paramVars[i] = v
			childEnv.Bind(p, types.Mono(v))
		}
		bodyT, bodyEff, err := c.Infer(e.Body, childEnv)
		if err != nil {
			return nil, nil, err
		}
		t := types.CurriedFunc(paramVars, bodyT, bodyEff)
		return c.decorate(e, t, types.EmptyEffects())

	case *ast.Application:
		return c.inferApplication(e, env)

	case *ast.Binary:
		return c.inferBinary(e, env)

	case *ast.If:
		condT, condEff, err := c.Infer(e.Cond, env)
		if err != nil {
			return nil, nil, err
		}
		if err := c.unify(condT, types.Bool, e.Cond.Position()); err != nil {
			return nil, nil, err
		}
		thenT, thenEff, err := c.Infer(e.Then, env)
		if err != nil {
			return nil, nil, err
		}
		elseT, elseEff, err := c.Infer(e.Else, env)
		if err != nil {
			return nil, nil, err
		}
		if err := c.unify(thenT, elseT, e.Span); err != nil {
			return nil, nil, err
		}
		result := c.Subst.Apply(thenT)
		return c.decorate(e, result, condEff.Union(thenEff).Union(elseEff))

	case *ast.Definition:
		// Bind a monomorphic placeholder for e.Name before inferring the
		// value so a self-recursive reference in e.Value's body (e.g. a
		// `factorial` calling itself) resolves instead of hitting the
		// undefined-variable path. Unifying it with the inferred type
		// afterward ties any recursive call sites to the function's own
		// shape; generalization then happens exactly once, over the
		// unified result, same as a non-recursive definition.
		recVar := c.fresh()
		env.Bind(e.Name, types.Mono(recVar))
		valT, valEff, err := c.Infer(e.Value, env)
		if err != nil {
			return nil, nil, err
		}
		if err := c.unify(recVar, valT, e.Span); err != nil {
			return nil, nil, err
		}
		resolved := c.Subst.Apply(valT)
		scheme := c.generalize(env, resolved)
		env.Bind(e.Name, scheme)
		return c.decorate(e, resolved, valEff)

	case *ast.MutableDefinition:
		valT, valEff, err := c.Infer(e.Value, env)
		if err != nil {
			return nil, nil, err
		}
		cellT := &types.Variant{Name: "Cell", Args: []types.Type{valT}}
		env.Bind(e.Name, types.Mono(cellT))
		return c.decorate(e, valT, valEff)

	case *ast.Mutation:
		scheme, ok := env.Lookup(e.Name)
		if !ok {
			return nil, nil, nerrors.Wrap(nerrors.NewType(toErrPos(e.Span.Start), "Undefined variable: %s", e.Name))
		}
		cellT, cs := c.instantiate(scheme)
		c.pending = append(c.pending, cs...)
		cell, ok := cellT.(*types.Variant)
		if !ok || cell.Name != "Cell" || len(cell.Args) != 1 {
			return nil, nil, nerrors.Wrap(nerrors.NewType(toErrPos(e.Span.Start), "%q was not declared with mut and cannot be mutated", e.Name))
		}
		valT, valEff, err := c.Infer(e.Value, env)
		if err != nil {
			return nil, nil, err
		}
		if err := c.unify(valT, cell.Args[0], e.Span); err != nil {
			return nil, nil, err
		}
		return c.decorate(e, valT, valEff.Union(types.NewEffects(types.State)))

	case *ast.TupleDestructuring:
		return c.inferTupleDestructuring(e, env)

	case *ast.RecordDestructuring:
		return c.inferRecordDestructuring(e, env)

	case *ast.Import:
		if c.Importer == nil {
			return nil, nil, nerrors.Wrap(nerrors.NewImport(toErrPos(e.Span.Start), "imports are not available in this context"))
		}
		modT, modEff, err := c.Importer(e.Path)
		if err != nil {
			return nil, nil, err
		}
		return c.decorate(e, modT, modEff.Union(types.NewEffects(types.Read)))

	case *ast.Record:
		fields := map[string]types.Type{}
		order := make([]string, 0, len(e.Fields))
		effects := types.EmptyEffects()
		for _, f := range e.Fields {
			ft, feff, err := c.Infer(f.Value, env)
			if err != nil {
				return nil, nil, err
			}
			fields[f.Name] = ft
			order = append(order, f.Name)
			effects = effects.Union(feff)
		}
		return c.decorate(e, &types.Record{Fields: fields, Order: order}, effects)

	case *ast.Tuple:
		elems := make([]types.Type, len(e.Elements))
		effects := types.EmptyEffects()
		for i, el := range e.Elements {
			t, eff, err := c.Infer(el, env)
			if err != nil {
				return nil, nil, err
			}
			elems[i] = t
			effects = effects.Union(eff)
		}
		return c.decorate(e, &types.Tuple{Elements: elems}, effects)

	case *ast.Unit:
		return c.decorate(e, types.Unit, types.EmptyEffects())

	case *ast.Accessor:
		a := c.fresh()
		r := c.fresh()
		param := &types.Record{Fields: map[string]types.Type{e.Field: a}, Order: []string{e.Field}, Row: r}
		t := &types.Func{Param: param, Return: a, Effects: types.EmptyEffects()}
		return c.decorate(e, t, types.EmptyEffects())

	case *ast.List:
		if len(e.Elements) == 0 {
			return c.decorate(e, &types.List{Element: c.fresh()}, types.EmptyEffects())
		}
		firstT, firstEff, err := c.Infer(e.Elements[0], env)
		if err != nil {
			return nil, nil, err
		}
		effects := firstEff
		for _, el := range e.Elements[1:] {
			t, eff, err := c.Infer(el, env)
			if err != nil {
				return nil, nil, err
			}
			if err := c.unify(t, firstT, el.Position()); err != nil {
				return nil, nil, err
			}
			effects = effects.Union(eff)
		}
		return c.decorate(e, &types.List{Element: c.Subst.Apply(firstT)}, effects)

	case *ast.Where:
		childEnv := env.Child()
		effects := types.EmptyEffects()
		for _, def := range e.Definitions {
			_, deff, err := c.Infer(def, childEnv)
			if err != nil {
				return nil, nil, err
			}
			effects = effects.Union(deff)
		}
		mainT, mainEff, err := c.Infer(e.Main, childEnv)
		if err != nil {
			return nil, nil, err
		}
		return c.decorate(e, mainT, effects.Union(mainEff))

	case *ast.Typed:
		exprT, exprEff, err := c.Infer(e.Expr, env)
		if err != nil {
			return nil, nil, err
		}
		if err := c.unify(exprT, e.Annotation, e.Span); err != nil {
			return nil, nil, err
		}
		return c.decorate(e, c.Subst.Apply(e.Annotation), exprEff)

	case *ast.Constrained:
		exprT, exprEff, err := c.Infer(e.Expr, env)
		if err != nil {
			return nil, nil, err
		}
		if err := c.unify(exprT, e.Annotation, e.Span); err != nil {
			return nil, nil, err
		}
		c.pending = append(c.pending, e.Given)
		return c.decorate(e, c.Subst.Apply(e.Annotation), exprEff)

	case *ast.TypeDefinition:
		return c.inferTypeDefinition(e, env)

	case *ast.Match:
		return c.inferMatch(e, env)

	case *ast.ConstraintDefinition:
		return c.inferConstraintDefinition(e, env)

	case *ast.ImplementDefinition:
		return c.inferImplementDefinition(e, env)

	case *ast.FFI:
		return c.decorate(e, e.Annotation, types.NewEffects(types.FFI))

	default:
		return nil, nil, nerrors.Wrap(nerrors.NewType(nil, "checker: unhandled node %T", expr))
	}
}

func (c *Checker) inferApplication(e *ast.Application, env *types.Env) (types.Type, types.EffectSet, error) {
	cur, effects, err := c.Infer(e.Fn, env)
	if err != nil {
		return nil, nil, err
	}
	for _, arg := range e.Args {
		argT, argEff, err := c.Infer(arg, env)
		if err != nil {
			return nil, nil, err
		}
		effects = effects.Union(argEff)
		retVar := c.fresh()
		if err := c.unify(cur, &types.Func{Param: argT, Return: retVar, Effects: types.EmptyEffects()}, e.Span); err != nil {
			return nil, nil, err
		}
		resolved := c.Subst.Apply(cur)
		if fn, ok := resolved.(*types.Func); ok {
			effects = effects.Union(fn.Effects)
		}
		cur = retVar
	}
	result := c.Subst.Apply(cur)
	return c.decorate(e, result, effects)
}

func (c *Checker) inferBinary(e *ast.Binary, env *types.Env) (types.Type, types.EffectSet, error) {
	leftT, leftEff, err := c.Infer(e.Left, env)
	if err != nil {
		return nil, nil, err
	}
	rightT, rightEff, err := c.Infer(e.Right, env)
	if err != nil {
		return nil, nil, err
	}
	effects := leftEff.Union(rightEff)

	switch e.Op {
	case ";":
		return c.decorate(e, rightT, effects)

	case "+", "-", "*", "/":
		if err := c.unify(leftT, types.Float, e.Span); err != nil {
			return nil, nil, err
		}
		if err := c.unify(rightT, types.Float, e.Span); err != nil {
			return nil, nil, err
		}
		return c.decorate(e, types.Float, effects)

	case "==", "!=", "<", ">", "<=", ">=":
		if err := c.unify(leftT, rightT, e.Span); err != nil {
			return nil, nil, err
		}
		return c.decorate(e, types.Bool, effects)

	case "|", "|>":
		retVar := c.fresh()
		if err := c.unify(rightT, &types.Func{Param: leftT, Return: retVar, Effects: types.EmptyEffects()}, e.Span); err != nil {
			return nil, nil, err
		}
		if fn, ok := c.Subst.Apply(rightT).(*types.Func); ok {
			effects = effects.Union(fn.Effects)
		}
		return c.decorate(e, c.Subst.Apply(retVar), effects)

	case "|?":
		// Monadic bind on Option (spec.md §4.E): left : Option a, right :
		// a -> Option b, result : Option b — not the plain-pipe shape,
		// since the callee's own Option wrapping must not be doubled.
		bindArg := c.fresh()
		bindRet := c.fresh()
		if err := c.unify(leftT, optionType(bindArg), e.Span); err != nil {
			return nil, nil, err
		}
		fnT := &types.Func{Param: bindArg, Return: optionType(bindRet), Effects: types.EmptyEffects()}
		if err := c.unify(rightT, fnT, e.Span); err != nil {
			return nil, nil, err
		}
		if fn, ok := c.Subst.Apply(rightT).(*types.Func); ok {
			effects = effects.Union(fn.Effects)
		}
		return c.decorate(e, c.Subst.Apply(optionType(bindRet)), effects)

	case "<|":
		retVar := c.fresh()
		if err := c.unify(leftT, &types.Func{Param: rightT, Return: retVar, Effects: types.EmptyEffects()}, e.Span); err != nil {
			return nil, nil, err
		}
		if fn, ok := c.Subst.Apply(leftT).(*types.Func); ok {
			effects = effects.Union(fn.Effects)
		}
		return c.decorate(e, c.Subst.Apply(retVar), effects)

	default:
		return nil, nil, nerrors.Wrap(nerrors.NewType(toErrPos(e.Span.Start), "unknown operator %q", e.Op))
	}
}

func (c *Checker) inferTupleDestructuring(e *ast.TupleDestructuring, env *types.Env) (types.Type, types.EffectSet, error) {
	valT, valEff, err := c.Infer(e.Value, env)
	if err != nil {
		return nil, nil, err
	}
	elemVars := make([]types.Type, len(e.Names))
	for i := range e.Names {
		elemVars[i] = c.fresh()
	}
	if err := c.unify(valT, &types.Tuple{Elements: elemVars}, e.Span); err != nil {
		return nil, nil, err
	}
	for i, name := range e.Names {
		env.Bind(name, c.generalize(env, c.Subst.Apply(elemVars[i])))
	}
	return c.decorate(e, valT, valEff)
}

func (c *Checker) inferRecordDestructuring(e *ast.RecordDestructuring, env *types.Env) (types.Type, types.EffectSet, error) {
	valT, valEff, err := c.Infer(e.Value, env)
	if err != nil {
		return nil, nil, err
	}
	fieldVars := map[string]types.Type{}
	for _, field := range e.Order {
		fieldVars[field] = c.fresh()
	}
	rowVar := c.fresh()
	if err := c.unify(valT, &types.Record{Fields: fieldVars, Row: rowVar}, e.Span); err != nil {
		return nil, nil, err
	}
	for _, field := range e.Order {
		local := e.Fields[field]
		env.Bind(local, c.generalize(env, c.Subst.Apply(fieldVars[field])))
	}
	return c.decorate(e, valT, valEff)
}
