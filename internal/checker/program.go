package checker

import (
	"fmt"

	"github.com/jethrolarson/noolang-sub000/internal/ast"
	nerrors "github.com/jethrolarson/noolang-sub000/internal/errors"
	"github.com/jethrolarson/noolang-sub000/internal/types"
)

// CheckProgram type-checks a program's statements in order, threading env
// so each Definition/MutableDefinition/destructuring statement extends
// the scope later statements see — the implicit top-level let-chain
// spec.md §4.P's grammar describes as `statement (';' statement)*`.
func (c *Checker) CheckProgram(prog *ast.Program, env *types.Env) (types.Type, types.EffectSet, error) {
	if len(prog.Statements) == 0 {
		return types.Unit, types.EmptyEffects(), nil
	}
	var lastType types.Type = types.Unit
	effects := types.EmptyEffects()
	for _, stmt := range prog.Statements {
		t, eff, err := c.Infer(stmt, env)
		if err != nil {
			return nil, nil, err
		}
		lastType = t
		effects = effects.Union(eff)
		if err := c.solvePending(stmt.Position()); err != nil {
			return nil, nil, err
		}
	}
	return c.Subst.Apply(lastType), effects, nil
}

// solvePending discharges every constraint whose variable has resolved to
// a concrete type head, dropping it from the pending list; constraints
// still mentioning an unresolved variable are left for a later call
// (spec.md §4.T "Constraint solving"). HasField/HasStructure are
// accepted without being checked. Accessors, record destructuring and
// record patterns do not produce them: those are typed through
// row-polymorphic records and unification. These two constraints only
// come from written `has` clauses, and nothing here checks the type they
// name for the listed fields.
func (c *Checker) solvePending(span ast.Span) error {
	var remaining []types.Constraint
	for _, con := range c.pending {
		resolved := c.Subst.ApplyConstraint(con)
		done, err := c.tryDischarge(resolved)
		if err != nil {
			return nerrors.Wrap(nerrors.NewType(toErrPos(span.Start), "%v", err))
		}
		if !done {
			remaining = append(remaining, con)
		}
	}
	c.pending = remaining
	return nil
}

// tryDischarge reports (true, nil) when con is satisfied, (false, nil)
// when con can't be decided yet (still polymorphic), and (false, err)
// when con is decidable and fails.
func (c *Checker) tryDischarge(con types.Constraint) (bool, error) {
	switch v := con.(type) {
	case *types.Paren:
		return c.tryDischarge(v.Inner)

	case *types.And:
		for _, sub := range v.Constraints {
			ok, err := c.tryDischarge(sub)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil

	case *types.Or:
		allDecided := true
		for _, sub := range v.Constraints {
			ok, err := c.tryDischarge(sub)
			if ok {
				return true, nil
			}
			if err == nil {
				allDecided = false
			}
		}
		if allDecided {
			return false, &traitMismatchError{"no disjunct of (" + v.String() + ") is satisfied"}
		}
		return false, nil

	case *types.Is:
		return c.dischargeByHead(v.Var, v.Class)
	case *types.Implements:
		return c.dischargeByHead(v.Var, v.Trait)
	case *types.Custom:
		return c.dischargeByHead(v.Var, v.Name)

	case *types.HasField, *types.HasStructure:
		return true, nil

	default:
		return true, nil
	}
}

func (c *Checker) dischargeByHead(varName, constraintName string) (bool, error) {
	resolved := c.Subst.Apply(&types.Var{Name: varName})
	if _, stillVar := resolved.(*types.Var); stillVar {
		return false, nil
	}
	// Lookup already narrows by head unification and `given` satisfaction
	// (spec.md §4.R); anything left over is either the unique dispatch
	// target or a genuine ambiguity.
	candidates := c.Registry.Lookup(constraintName, resolved)
	switch len(candidates) {
	case 0:
		return false, &traitMismatchError{"no implementation of " + constraintName + " for " + types.Head(resolved)}
	case 1:
		return true, nil
	default:
		return false, &traitMismatchError{fmt.Sprintf("multiple implementations satisfy %s for %s (%d candidates)", constraintName, types.Head(resolved), len(candidates))}
	}
}

type traitMismatchError struct{ msg string }

func (e *traitMismatchError) Error() string { return e.msg }
