package checker

import (
	"sort"

	"github.com/jethrolarson/noolang-sub000/internal/types"
)

// instantiate replaces a scheme's quantified variables with fresh ones,
// renaming both their occurrences inside the type and the `Var` field of
// any constraint attached to the scheme (spec.md §4.T). Subst.Apply alone
// resolves Var occurrences embedded inside Type values, but a
// constraint's own Var field names the scheme-quantified variable
// directly rather than embedding a Type, so it needs its own rename pass.
func (c *Checker) instantiate(s *types.Scheme) (types.Type, []types.Constraint) {
	tmp := types.NewSubst()
	rename := map[string]string{}
	for _, v := range s.Vars {
		fv := c.fresh()
		rename[v] = fv.Name
		tmp.Bind(v, fv)
	}
	instType := tmp.Apply(s.Type)
	instConstraints := make([]types.Constraint, len(s.Constraints))
	for i, con := range s.Constraints {
		instConstraints[i] = renameConstraintVar(tmp.ApplyConstraint(con), rename)
	}
	return instType, instConstraints
}

func renameConstraintVar(c types.Constraint, rename map[string]string) types.Constraint {
	renameVar := func(v string) string {
		if nv, ok := rename[v]; ok {
			return nv
		}
		return v
	}
	switch v := c.(type) {
	case *types.Is:
		return &types.Is{Var: renameVar(v.Var), Class: v.Class}
	case *types.HasField:
		return &types.HasField{Var: renameVar(v.Var), Field: v.Field, Of: v.Of}
	case *types.HasStructure:
		return &types.HasStructure{Var: renameVar(v.Var), Fields: v.Fields}
	case *types.Implements:
		return &types.Implements{Var: renameVar(v.Var), Trait: v.Trait}
	case *types.Custom:
		return &types.Custom{Var: renameVar(v.Var), Name: v.Name, Args: v.Args}
	case *types.And:
		out := make([]types.Constraint, len(v.Constraints))
		for i, sub := range v.Constraints {
			out[i] = renameConstraintVar(sub, rename)
		}
		return &types.And{Constraints: out}
	case *types.Or:
		out := make([]types.Constraint, len(v.Constraints))
		for i, sub := range v.Constraints {
			out[i] = renameConstraintVar(sub, rename)
		}
		return &types.Or{Constraints: out}
	case *types.Paren:
		return &types.Paren{Inner: renameConstraintVar(v.Inner, rename)}
	default:
		return c
	}
}

// generalize quantifies every free variable of t that does not escape
// into env (spec.md §3's let-generalization invariant), attaching any
// pending constraint whose Var is among the quantified set.
func (c *Checker) generalize(env *types.Env, t types.Type) *types.Scheme {
	t = c.Subst.Apply(t)
	envFree := env.FreeVars()
	free := map[string]bool{}
	var vars []string
	for _, v := range freeVarsOf(t) {
		if !envFree[v] && !free[v] {
			free[v] = true
			vars = append(vars, v)
		}
	}

	var constraints []types.Constraint
	var remaining []types.Constraint
	for _, con := range c.pending {
		resolved := c.Subst.ApplyConstraint(con)
		owned := false
		for _, v := range resolved.Vars() {
			if free[v] {
				owned = true
				break
			}
		}
		if owned {
			constraints = append(constraints, resolved)
		} else {
			remaining = append(remaining, con)
		}
	}
	c.pending = remaining

	return &types.Scheme{Vars: vars, Constraints: constraints, Type: t}
}

func freeVarsOf(t types.Type) []string {
	seen := map[string]bool{}
	var out []string
	var walk func(types.Type)
	walk = func(t types.Type) {
		switch v := t.(type) {
		case *types.Var:
			if !seen[v.Name] {
				seen[v.Name] = true
				out = append(out, v.Name)
			}
		case *types.Func:
			walk(v.Param)
			walk(v.Return)
		case *types.List:
			walk(v.Element)
		case *types.Tuple:
			for _, e := range v.Elements {
				walk(e)
			}
		case *types.Record:
			names := make([]string, 0, len(v.Fields))
			for name := range v.Fields {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				walk(v.Fields[name])
			}
			if v.Row != nil {
				walk(v.Row)
			}
		case *types.Variant:
			for _, a := range v.Args {
				walk(a)
			}
		}
	}
	walk(t)
	return out
}
