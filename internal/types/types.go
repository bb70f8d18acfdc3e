// Package types defines Noolang's type language: primitives, functions
// with effect rows, lists, tuples, row-polymorphic records, algebraic
// data types, unification variables, and the constraint propositions that
// attach to them. It is shared by the parser (type annotations), the
// typer (inference and decoration), and the evaluator (runtime-shape
// checks), per spec.md §3.
package types

import (
	"fmt"
	"sort"
	"strings"
)

// Type is the tagged sum described in spec.md §3.
type Type interface {
	String() string
	typeNode()
}

// Primitive is one of the three scalar primitives. Lists are not
// primitive — List carries an element type — and there is no integer
// type: all numeric literals are Float (spec.md §9).
type Primitive struct {
	Name string // "Float" | "String" | "Bool"
}

func (p *Primitive) typeNode()     {}
func (p *Primitive) String() string { return p.Name }

var (
	Float = &Primitive{Name: "Float"}
	Str   = &Primitive{Name: "String"}
	Bool  = &Primitive{Name: "Bool"}
)

// Unit is the zero-field tuple / empty-record type, written `{}`.
type UnitType struct{}

func (u *UnitType) typeNode()     {}
func (u *UnitType) String() string { return "{}" }

var Unit = &UnitType{}

// Unknown unifies with anything and disappears (spec.md §4.T tie-breaks).
type UnknownType struct{}

func (u *UnknownType) typeNode()     {}
func (u *UnknownType) String() string { return "Unknown" }

var Unknown = &UnknownType{}

// Var is a unification variable or a rigid (quantified) type parameter;
// constraints attach directly to the variable they constrain.
type Var struct {
	Name        string
	Constraints []Constraint
}

func (v *Var) typeNode() {}
func (v *Var) String() string {
	if len(v.Constraints) == 0 {
		return v.Name
	}
	parts := make([]string, len(v.Constraints))
	for i, c := range v.Constraints {
		parts[i] = c.String()
	}
	return fmt.Sprintf("%s given %s", v.Name, strings.Join(parts, " and "))
}

// Func is a one-parameter arrow; currying is explicit, so an n-ary
// surface function is n nested Funcs (spec.md §3).
type Func struct {
	Param       Type
	Return      Type
	Effects     EffectSet
	Constraints []Constraint
}

func (f *Func) typeNode() {}
func (f *Func) String() string {
	paramStr := f.Param.String()
	if _, ok := f.Param.(*Func); ok {
		paramStr = "(" + paramStr + ")"
	}
	s := fmt.Sprintf("%s -> %s", paramStr, f.Return.String())
	if !f.Effects.Empty() {
		s += " " + f.Effects.String()
	}
	return s
}

// CurriedFunc builds the right-associative arrow chain
// `p1 -> (p2 -> (… -> ret))` that spec.md §4.T's Function inference rule
// describes, attaching effects only to the outermost arrow (the type of
// the whole function value).
func CurriedFunc(params []Type, ret Type, effects EffectSet) Type {
	if len(params) == 0 {
		return &Func{Param: Unit, Return: ret, Effects: effects}
	}
	result := ret
	for i := len(params) - 1; i >= 0; i-- {
		eff := EmptyEffects()
		if i == 0 {
			eff = effects
		}
		result = &Func{Param: params[i], Return: result, Effects: eff}
	}
	return result
}

// List is `List τ`.
type List struct {
	Element Type
}

func (l *List) typeNode()     {}
func (l *List) String() string { return fmt.Sprintf("List %s", elemStr(l.Element)) }

func elemStr(t Type) string {
	switch t.(type) {
	case *Func, *Variant:
		return "(" + t.String() + ")"
	default:
		return t.String()
	}
}

// Tuple is a fixed-length heterogeneous product.
type Tuple struct {
	Elements []Type
}

func (t *Tuple) typeNode() {}
func (t *Tuple) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Record is a row: a fixed set of named fields plus an optional row
// variable (Row) standing for "the rest of the record", used to encode
// HasField constraints on accessors (spec.md §9).
type Record struct {
	Fields map[string]Type
	Order  []string // declaration order, for diagnostics and printing
	Row    Type     // nil for an exact (closed) record
}

func (r *Record) typeNode() {}
func (r *Record) String() string {
	names := r.Order
	if len(names) == 0 {
		names = sortedKeys(r.Fields)
	}
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("@%s: %s", name, r.Fields[name].String()))
	}
	if r.Row != nil {
		parts = append(parts, "| "+r.Row.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func sortedKeys(m map[string]Type) []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

// Variant is an applied ADT head: `Option Float`, `Result a b`. A bare
// ADT without type parameters (`Color`) has no Args. Bool is a Primitive
// and lists are List, not Variants.
type Variant struct {
	Name string
	Args []Type
}

func (v *Variant) typeNode() {}
func (v *Variant) String() string {
	if len(v.Args) == 0 {
		return v.Name
	}
	parts := make([]string, len(v.Args))
	for i, a := range v.Args {
		parts[i] = elemStr(a)
	}
	return v.Name + " " + strings.Join(parts, " ")
}

// Constructor is one arm of an ADT declaration: a name plus the types of
// its positional fields.
type Constructor struct {
	Name string
	Args []Type
}

// Adt is the declaration form produced by `type T a b = Con1 t… | …`.
type Adt struct {
	Name         string
	TypeParams   []string
	Constructors []Constructor
}

func (a *Adt) typeNode() {}
func (a *Adt) String() string {
	parts := make([]string, len(a.Constructors))
	for i, c := range a.Constructors {
		if len(c.Args) == 0 {
			parts[i] = c.Name
			continue
		}
		argStrs := make([]string, len(c.Args))
		for j, arg := range c.Args {
			argStrs[j] = elemStr(arg)
		}
		parts[i] = c.Name + " " + strings.Join(argStrs, " ")
	}
	head := a.Name
	for _, p := range a.TypeParams {
		head += " " + p
	}
	return fmt.Sprintf("type %s = %s", head, strings.Join(parts, " | "))
}

// Union is an ad hoc sum of types (used internally to carry alternatives
// through constraint solving; not user-syntax).
type Union struct {
	Types []Type
}

func (u *Union) typeNode() {}
func (u *Union) String() string {
	parts := make([]string, len(u.Types))
	for i, t := range u.Types {
		parts[i] = t.String()
	}
	return strings.Join(parts, " | ")
}

// Head returns a stable string identifying a type's outermost
// constructor — used to index trait implementations and to drive
// dispatch (spec.md §4.R).
func Head(t Type) string {
	switch v := t.(type) {
	case *Primitive:
		return v.Name
	case *UnitType:
		return "{}"
	case *List:
		return "List"
	case *Tuple:
		return fmt.Sprintf("Tuple/%d", len(v.Elements))
	case *Record:
		return "Record"
	case *Variant:
		return v.Name
	case *Var:
		return "" // not yet resolved
	default:
		return ""
	}
}
