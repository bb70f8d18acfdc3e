package types

import "fmt"

// UnifyError reports two types that could not be made equal. The typer
// wraps it with a source position and a hint before surfacing it as a
// TypeError (spec.md §4.T).
type UnifyError struct {
	Left, Right Type
	Reason      string
}

func (e *UnifyError) Error() string {
	return fmt.Sprintf("cannot unify %s with %s: %s", e.Left, e.Right, e.Reason)
}

// OccursError is raised when binding a variable would create a cyclic
// type.
type OccursError struct {
	Var string
	In  Type
}

func (e *OccursError) Error() string {
	return fmt.Sprintf("occurs check failed: %s occurs in %s", e.Var, e.In)
}

// Unify makes a and b equal under s, mutating s with any new bindings.
// It is structural on type heads and eliminates variables elsewhere,
// running the occurs check before every bind (spec.md §4.T).
func Unify(a, b Type, s *Subst) error {
	a = s.Apply(a)
	b = s.Apply(b)

	if _, ok := a.(*UnknownType); ok {
		return nil
	}
	if _, ok := b.(*UnknownType); ok {
		return nil
	}

	if av, ok := a.(*Var); ok {
		return bindVar(av, b, s)
	}
	if bv, ok := b.(*Var); ok {
		return bindVar(bv, a, s)
	}

	switch av := a.(type) {
	case *Primitive:
		bv, ok := b.(*Primitive)
		if !ok || av.Name != bv.Name {
			return &UnifyError{Left: a, Right: b, Reason: "primitive mismatch"}
		}
		return nil

	case *UnitType:
		if _, ok := b.(*UnitType); !ok {
			return &UnifyError{Left: a, Right: b, Reason: "expected unit"}
		}
		return nil

	case *Func:
		bv, ok := b.(*Func)
		if !ok {
			return &UnifyError{Left: a, Right: b, Reason: "expected a function"}
		}
		if err := Unify(av.Param, bv.Param, s); err != nil {
			return err
		}
		if err := Unify(av.Return, bv.Return, s); err != nil {
			return err
		}
		return nil

	case *List:
		bv, ok := b.(*List)
		if !ok {
			return &UnifyError{Left: a, Right: b, Reason: "expected a list"}
		}
		return Unify(av.Element, bv.Element, s)

	case *Tuple:
		bv, ok := b.(*Tuple)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return &UnifyError{Left: a, Right: b, Reason: "tuple arity mismatch"}
		}
		for i := range av.Elements {
			if err := Unify(av.Elements[i], bv.Elements[i], s); err != nil {
				return err
			}
		}
		return nil

	case *Record:
		bv, ok := b.(*Record)
		if !ok {
			return &UnifyError{Left: a, Right: b, Reason: "expected a record"}
		}
		return unifyRecords(av, bv, s)

	case *Variant:
		bv, ok := b.(*Variant)
		if !ok || av.Name != bv.Name || len(av.Args) != len(bv.Args) {
			return &UnifyError{Left: a, Right: b, Reason: "constructor head/arity mismatch"}
		}
		for i := range av.Args {
			if err := Unify(av.Args[i], bv.Args[i], s); err != nil {
				return err
			}
		}
		return nil
	}

	return &UnifyError{Left: a, Right: b, Reason: "incompatible type shapes"}
}

func bindVar(v *Var, t Type, s *Subst) error {
	if other, ok := t.(*Var); ok && other.Name == v.Name {
		return nil
	}
	if s.Occurs(v.Name, t) {
		return &OccursError{Var: v.Name, In: t}
	}
	// Fresh constraints on v must be re-attached to whatever v resolves
	// to so they are discharged once the concrete head is known.
	if len(v.Constraints) > 0 {
		if tv, ok := t.(*Var); ok {
			merged := append(append([]Constraint{}, tv.Constraints...), v.Constraints...)
			t = &Var{Name: tv.Name, Constraints: merged}
		}
	}
	s.Bind(v.Name, t)
	return nil
}

// unifyRecords requires equal field sets when neither side carries a row
// variable (an exact record-literal unification); when one side has a
// Row, the missing fields are required to unify with fresh bindings
// through that row variable instead (row extension, spec.md §4.T).
func unifyRecords(a, b *Record, s *Subst) error {
	for name, at := range a.Fields {
		bt, ok := b.Fields[name]
		if !ok {
			if b.Row == nil {
				return &UnifyError{Left: a, Right: b, Reason: fmt.Sprintf("missing field @%s", name)}
			}
			// Extend b's row with this field.
			if err := Unify(b.Row, &Record{Fields: map[string]Type{name: at}, Row: freshRowVar()}, s); err != nil {
				return err
			}
			continue
		}
		if err := Unify(at, bt, s); err != nil {
			return err
		}
	}
	for name, bt := range b.Fields {
		if _, ok := a.Fields[name]; ok {
			continue
		}
		if a.Row == nil {
			return &UnifyError{Left: a, Right: b, Reason: fmt.Sprintf("missing field @%s", name)}
		}
		if err := Unify(a.Row, &Record{Fields: map[string]Type{name: bt}, Row: freshRowVar()}, s); err != nil {
			return err
		}
	}
	if a.Row != nil && b.Row != nil {
		return Unify(a.Row, b.Row, s)
	}
	return nil
}

var rowVarCounter int

func freshRowVar() Type {
	rowVarCounter++
	return &Var{Name: fmt.Sprintf("row%d", rowVarCounter)}
}
