package types

// Subst is a substitution: a finite map from unification-variable names
// to types. Per spec.md §3 it must be idempotent after composition; we
// achieve that not by eagerly rewriting every stored entry on every bind
// (which is what true idempotent composition would require) but by
// always resolving through Apply, which follows variable chains to a
// fixed point. This is the same "chase the substitution" approach the
// teacher's unifier takes in internal/types/unification.go, adapted
// from its functional subs-as-value style to a single mutable table
// threaded through one typechecking pass (spec.md §3's "central state
// object that accumulates across a program").
type Subst struct {
	mapping map[string]Type
}

// NewSubst creates an empty substitution.
func NewSubst() *Subst {
	return &Subst{mapping: make(map[string]Type)}
}

// Bind records name ↦ t. Callers must have already run the occurs check.
func (s *Subst) Bind(name string, t Type) {
	s.mapping[name] = t
}

// Lookup returns the type name is bound to in one hop, if any.
func (s *Subst) Lookup(name string) (Type, bool) {
	t, ok := s.mapping[name]
	return t, ok
}

// Apply recursively resolves t through the substitution to a fixed
// point: every bound variable reachable from t is replaced by its
// binding, however deep the chain.
func (s *Subst) Apply(t Type) Type {
	switch v := t.(type) {
	case *Var:
		if bound, ok := s.mapping[v.Name]; ok {
			return s.Apply(bound)
		}
		if len(v.Constraints) == 0 {
			return v
		}
		resolved := make([]Constraint, len(v.Constraints))
		for i, c := range v.Constraints {
			resolved[i] = s.ApplyConstraint(c)
		}
		return &Var{Name: v.Name, Constraints: resolved}
	case *Func:
		return &Func{
			Param:       s.Apply(v.Param),
			Return:      s.Apply(v.Return),
			Effects:     v.Effects,
			Constraints: s.applyConstraints(v.Constraints),
		}
	case *List:
		return &List{Element: s.Apply(v.Element)}
	case *Tuple:
		elems := make([]Type, len(v.Elements))
		for i, e := range v.Elements {
			elems[i] = s.Apply(e)
		}
		return &Tuple{Elements: elems}
	case *Record:
		fields := make(map[string]Type, len(v.Fields))
		for name, ft := range v.Fields {
			fields[name] = s.Apply(ft)
		}
		var row Type
		if v.Row != nil {
			row = s.Apply(v.Row)
		}
		return &Record{Fields: fields, Order: v.Order, Row: row}
	case *Variant:
		args := make([]Type, len(v.Args))
		for i, a := range v.Args {
			args[i] = s.Apply(a)
		}
		return &Variant{Name: v.Name, Args: args}
	case *Union:
		types := make([]Type, len(v.Types))
		for i, u := range v.Types {
			types[i] = s.Apply(u)
		}
		return &Union{Types: types}
	default:
		return t
	}
}

func (s *Subst) applyConstraints(cs []Constraint) []Constraint {
	if len(cs) == 0 {
		return nil
	}
	out := make([]Constraint, len(cs))
	for i, c := range cs {
		out[i] = s.ApplyConstraint(c)
	}
	return out
}

// ApplyConstraint resolves the types embedded in a constraint.
func (s *Subst) ApplyConstraint(c Constraint) Constraint {
	switch v := c.(type) {
	case *Is:
		return v
	case *HasField:
		return &HasField{Var: v.Var, Field: v.Field, Of: s.Apply(v.Of)}
	case *HasStructure:
		fields := make(map[string]Type, len(v.Fields))
		for n, t := range v.Fields {
			fields[n] = s.Apply(t)
		}
		return &HasStructure{Var: v.Var, Fields: fields}
	case *Implements:
		return v
	case *Custom:
		args := make([]Type, len(v.Args))
		for i, a := range v.Args {
			args[i] = s.Apply(a)
		}
		return &Custom{Var: v.Var, Name: v.Name, Args: args}
	case *And:
		return &And{Constraints: s.applyConstraints(v.Constraints)}
	case *Or:
		return &Or{Constraints: s.applyConstraints(v.Constraints)}
	case *Paren:
		return &Paren{Inner: s.ApplyConstraint(v.Inner)}
	default:
		return c
	}
}

// Occurs reports whether the variable name appears free in t, after
// resolving t through the substitution — the occurs check that must run
// before every Bind (spec.md §3's unifier invariant).
func (s *Subst) Occurs(name string, t Type) bool {
	t = s.Apply(t)
	switch v := t.(type) {
	case *Var:
		return v.Name == name
	case *Func:
		return s.Occurs(name, v.Param) || s.Occurs(name, v.Return)
	case *List:
		return s.Occurs(name, v.Element)
	case *Tuple:
		for _, e := range v.Elements {
			if s.Occurs(name, e) {
				return true
			}
		}
		return false
	case *Record:
		for _, ft := range v.Fields {
			if s.Occurs(name, ft) {
				return true
			}
		}
		if v.Row != nil {
			return s.Occurs(name, v.Row)
		}
		return false
	case *Variant:
		for _, a := range v.Args {
			if s.Occurs(name, a) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
