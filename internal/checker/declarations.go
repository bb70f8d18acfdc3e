package checker

import (
	"github.com/jethrolarson/noolang-sub000/internal/ast"
	nerrors "github.com/jethrolarson/noolang-sub000/internal/errors"
	"github.com/jethrolarson/noolang-sub000/internal/traits"
	"github.com/jethrolarson/noolang-sub000/internal/types"
)

// inferTypeDefinition registers an ADT's constructors in env, n-ary ones
// as curried constructor functions and nullary ones as plain values of
// the ADT type (spec.md §4.T): `type Option a = Some a |
// None` binds `Some : ∀a. a -> Option a` and `None : ∀a. Option a`.
func (c *Checker) inferTypeDefinition(e *ast.TypeDefinition, env *types.Env) (types.Type, types.EffectSet, error) {
	typeArgs := make([]types.Type, len(e.TypeParams))
	for i, p := range e.TypeParams {
		typeArgs[i] = &types.Var{Name: p}
	}
	resultT := &types.Variant{Name: e.Name, Args: typeArgs}

	names := make([]string, len(e.Constructors))
	for i, con := range e.Constructors {
		var ctorT types.Type = resultT
		if len(con.Args) > 0 {
			ctorT = types.CurriedFunc(con.Args, resultT, types.EmptyEffects())
		}
		scheme := &types.Scheme{Vars: e.TypeParams, Type: ctorT}
		env.Bind(con.Name, scheme)
		names[i] = con.Name
	}
	c.AdtConstructors[e.Name] = names
	return c.decorate(e, types.Unit, types.EmptyEffects())
}

// inferConstraintDefinition registers a trait with the Registry and binds
// each declared function at the term level so calling it before any
// implementation exists still type-checks, carrying an Implements
// constraint on the trait's type parameter (spec.md §4.R).
func (c *Checker) inferConstraintDefinition(e *ast.ConstraintDefinition, env *types.Env) (types.Type, types.EffectSet, error) {
	def := &traits.ConstraintDef{Name: e.Name, TypeParam: e.TypeParam, Functions: toASTSigs(e.Functions)}
	c.Registry.DefineConstraint(def)

	for _, sig := range e.Functions {
		vars := freeVarsOf(sig.Type)
		scheme := &types.Scheme{
			Vars:        vars,
			Constraints: []types.Constraint{&types.Implements{Var: e.TypeParam, Trait: e.Name}},
			Type:        sig.Type,
		}
		env.Bind(sig.Name, scheme)
	}
	return c.decorate(e, types.Unit, types.EmptyEffects())
}

func toASTSigs(fs []ast.FunctionSig) []ast.FunctionSig {
	out := make([]ast.FunctionSig, len(fs))
	copy(out, fs)
	return out
}

// inferImplementDefinition type-checks each function body against the
// constraint's declared signature (with the trait's type parameter
// substituted for the implementation's head type) and registers the
// implementation with the Registry (spec.md §4.R).
func (c *Checker) inferImplementDefinition(e *ast.ImplementDefinition, env *types.Env) (types.Type, types.EffectSet, error) {
	def, ok := c.Registry.LookupConstraint(e.ConstraintName)
	if !ok {
		return nil, nil, nerrors.Wrap(nerrors.NewType(toErrPos(e.Span.Start), "implement of undeclared constraint %q", e.ConstraintName))
	}

	impl := &traits.Implementation{ConstraintName: e.ConstraintName, Head: e.Head, Given: e.Given, Functions: map[string]ast.Expr{}}
	effects := types.EmptyEffects()

	for _, fn := range e.Functions {
		var sig *ast.FunctionSig
		for i := range def.Functions {
			if def.Functions[i].Name == fn.Name {
				sig = &def.Functions[i]
				break
			}
		}
		if sig == nil {
			return nil, nil, nerrors.Wrap(nerrors.NewType(toErrPos(e.Span.Start), "%q is not a function of constraint %q", fn.Name, e.ConstraintName))
		}
		expected := substituteTypeParam(sig.Type, def.TypeParam, e.Head)

		bodyT, bodyEff, err := c.Infer(fn.Body, env.Child())
		if err != nil {
			return nil, nil, err
		}
		if err := c.unify(bodyT, expected, fn.Body.Position()); err != nil {
			return nil, nil, err
		}
		effects = effects.Union(bodyEff)
		impl.Functions[fn.Name] = fn.Body
	}

	c.Registry.AddImplementation(impl)
	return c.decorate(e, types.Unit, effects)
}

func substituteTypeParam(t types.Type, param string, with types.Type) types.Type {
	// A head variable that shadows the constraint's own parameter name
	// (`constraint C a` + `implement C (List a)`) would make the
	// substitution cyclic; rename it first.
	for _, fv := range freeVarsOf(with) {
		if fv == param {
			r := types.NewSubst()
			r.Bind(param, &types.Var{Name: param + "0"})
			with = r.Apply(with)
			break
		}
	}
	tmp := types.NewSubst()
	tmp.Bind(param, with)
	return tmp.Apply(t)
}
