// Package traits is Noolang's Trait Registry (spec.md §4.R): it stores
// constraint (trait) definitions and their — possibly conditional —
// implementations, and answers the typer's and evaluator's dispatch
// queries. Grounded on the teacher's internal/types/instances.go
// InstanceEnv, generalized from a fixed class hierarchy (Num/Ord/Eq) to
// Noolang's open, user-declarable constraint/implement system.
package traits

import (
	"fmt"
	"sort"

	"github.com/jethrolarson/noolang-sub000/internal/ast"
	"github.com/jethrolarson/noolang-sub000/internal/types"
)

// ConstraintDef is one `constraint C a ( name : type; … )` declaration.
type ConstraintDef struct {
	Name      string
	TypeParam string
	Functions []ast.FunctionSig
}

// Implementation is one `implement C (T a b) ( name = expr; … )`, with
// an optional `given` clause that must hold for the implementation to
// apply (spec.md §4.R).
type Implementation struct {
	ConstraintName string
	Head           types.Type
	HeadConstruct  string // types.Head(Head), cached for dispatch indexing
	Given          types.Constraint
	Functions      map[string]ast.Expr
}

// Registry indexes constraint definitions and implementations the way
// spec.md §4.R describes: implementations keyed by
// (constraintName, headConstructor).
type Registry struct {
	constraints map[string]*ConstraintDef
	impls       map[string][]*Implementation // key: constraintName + "/" + headConstructor
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		constraints: make(map[string]*ConstraintDef),
		impls:       make(map[string][]*Implementation),
	}
}

// Clone makes a shallow copy whose maps are independent of the
// receiver's, so the REPL can snapshot/restore registry state around
// each evaluated input (spec.md §7) without the restored copy aliasing
// the working one.
func (r *Registry) Clone() *Registry {
	out := New()
	for k, v := range r.constraints {
		out.constraints[k] = v
	}
	for k, v := range r.impls {
		cp := make([]*Implementation, len(v))
		copy(cp, v)
		out.impls[k] = cp
	}
	return out
}

func implKey(constraintName, headConstruct string) string {
	return constraintName + "/" + headConstruct
}

// DefineConstraint registers a trait. Re-declaring the same name
// overwrites the previous definition, which avoids a spurious "already
// defined" error if a file re-states an equivalent constraint.
func (r *Registry) DefineConstraint(def *ConstraintDef) {
	r.constraints[def.Name] = def
}

// LookupConstraint returns a declared constraint's signature set.
func (r *Registry) LookupConstraint(name string) (*ConstraintDef, bool) {
	def, ok := r.constraints[name]
	return def, ok
}

// AddImplementation indexes impl by (constraintName, head constructor).
func (r *Registry) AddImplementation(impl *Implementation) {
	impl.HeadConstruct = types.Head(impl.Head)
	key := implKey(impl.ConstraintName, impl.HeadConstruct)
	r.impls[key] = append(r.impls[key], impl)
}

// Lookup returns the ordered list of candidate implementations whose
// head unifies with headType and whose `given` constraints hold for the
// resulting bindings (spec.md §4.R). The caller treats more than one
// surviving candidate as an ambiguity error.
func (r *Registry) Lookup(constraintName string, headType types.Type) []*Implementation {
	candidates := r.impls[implKey(constraintName, types.Head(headType))]
	if len(candidates) == 0 {
		return nil
	}
	out := make([]*Implementation, 0, len(candidates))
	for _, impl := range candidates {
		if r.Matches(impl, headType) {
			out = append(out, impl)
		}
	}
	return out
}

// Matches reports whether impl applies to headType: its head must unify
// with headType, and — when a `given` clause is present — the clause
// must hold under the bindings that unification produced.
func (r *Registry) Matches(impl *Implementation, headType types.Type) bool {
	s := types.NewSubst()
	if types.Unify(impl.Head, headType, s) != nil {
		return false
	}
	if impl.Given == nil {
		return true
	}
	return r.constraintHolds(impl.Given, s)
}

// constraintHolds evaluates a given-clause against the head bindings in
// s. A disjunct/conjunct mentioning a variable that is still unresolved
// counts as holding — it cannot be refuted yet, and the evaluator's
// value-level dispatch re-checks it once concrete arguments exist.
func (r *Registry) constraintHolds(c types.Constraint, s *types.Subst) bool {
	switch v := c.(type) {
	case *types.Paren:
		return r.constraintHolds(v.Inner, s)
	case *types.And:
		for _, sub := range v.Constraints {
			if !r.constraintHolds(sub, s) {
				return false
			}
		}
		return true
	case *types.Or:
		for _, sub := range v.Constraints {
			if r.constraintHolds(sub, s) {
				return true
			}
		}
		return false
	case *types.Is:
		return r.headSatisfies(v.Class, s.Apply(&types.Var{Name: v.Var}))
	case *types.Implements:
		return r.headSatisfies(v.Trait, s.Apply(&types.Var{Name: v.Var}))
	case *types.Custom:
		return r.headSatisfies(v.Name, s.Apply(&types.Var{Name: v.Var}))
	case *types.HasField:
		t := s.Apply(&types.Var{Name: v.Var})
		if _, still := t.(*types.Var); still {
			return true
		}
		rec, ok := t.(*types.Record)
		if !ok {
			return false
		}
		_, has := rec.Fields[v.Field]
		return has
	case *types.HasStructure:
		t := s.Apply(&types.Var{Name: v.Var})
		if _, still := t.(*types.Var); still {
			return true
		}
		rec, ok := t.(*types.Record)
		if !ok {
			return false
		}
		for name := range v.Fields {
			if _, has := rec.Fields[name]; !has {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// headSatisfies reports whether t has some applicable implementation of
// constraintName, recursing through that implementation's own given
// clause. A still-unresolved t is treated as satisfiable.
func (r *Registry) headSatisfies(constraintName string, t types.Type) bool {
	if _, still := t.(*types.Var); still {
		return true
	}
	for _, impl := range r.impls[implKey(constraintName, types.Head(t))] {
		if r.Matches(impl, t) {
			return true
		}
	}
	return false
}

// LookupByHead is Lookup's counterpart for callers that only have a raw
// head-constructor string (the evaluator, dispatching on a runtime Value
// rather than a types.Type — see eval.ValueHead). Unlike Lookup it does
// not narrow by `given`: the evaluator re-checks given clauses against
// the concrete argument values itself.
func (r *Registry) LookupByHead(constraintName, head string) []*Implementation {
	return r.impls[implKey(constraintName, head)]
}

// AllImplementations returns every implementation of constraintName,
// regardless of head, ordered by head constructor name. The evaluator's
// runtime dispatch does not use it; it goes through LookupByHead.
func (r *Registry) AllImplementations(constraintName string) []*Implementation {
	var out []*Implementation
	keys := make([]string, 0, len(r.impls))
	for k := range r.impls {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	prefix := constraintName + "/"
	for _, k := range keys {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			out = append(out, r.impls[k]...)
		}
	}
	return out
}

// AmbiguousError describes more than one implementation surviving
// narrowing for a single dispatch. The checker and evaluator build their
// own error messages and do not return it.
type AmbiguousError struct {
	Constraint string
	Head       string
	Count      int
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("multiple implementations satisfy %s for %s (%d candidates)", e.Constraint, e.Head, e.Count)
}

// NoMatchError describes a dispatch that finds no implementation at all;
// like AmbiguousError, nothing in the checker or evaluator returns it.
type NoMatchError struct {
	Constraint string
	Head       string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no implementation of %s for %s", e.Constraint, e.Head)
}
