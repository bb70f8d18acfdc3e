// Package eval is Noolang's tree-walking evaluator (spec.md §4.E): it
// walks the same decorated AST the checker already typed and produces
// runtime Values, threading effects that were already verified at type
// time rather than re-checking them. Grounded on the teacher's
// internal/eval package (a tree-walking Value/Env/Evaluate triple),
// generalized from AILANG's Core-ANF evaluator to Noolang's direct-AST
// walk (Noolang has no separate Core IR — spec.md never introduces one).
package eval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jethrolarson/noolang-sub000/internal/ast"
)

// Value is any runtime Noolang value. Concrete types below mirror
// spec.md §4.E's value enumeration: numbers, strings, tuples, lists,
// records, functions (closures and natives), ADT constructors, trait
// functions awaiting dispatch, unit, and mutable cells.
type Value interface {
	// TypeName names the value's runtime shape for REPL/error display,
	// e.g. "Float", "String", "Function". ADT values report their
	// constructor name (callers that need the owning type name go
	// through Evaluator.ConstructorADT).
	TypeName() string
	String() string
}

// Number is Noolang's single numeric type (spec.md: "numbers are
// float64"). Integral values print without a trailing ".0".
type Number float64

func (Number) TypeName() string { return "Float" }

func (n Number) String() string {
	f := float64(n)
	if f == float64(int64(f)) && !strings.Contains(strconv.FormatFloat(f, 'g', -1, 64), "e") {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Str is a Noolang string value.
type Str string

func (Str) TypeName() string { return "String" }
func (s Str) String() string { return "\"" + string(s) + "\"" }

// Bool is Noolang's boolean primitive (types.Bool, not an ADT).
type Bool bool

func (Bool) TypeName() string { return "Bool" }
func (b Bool) String() string {
	if b {
		return "True"
	}
	return "False"
}

// Unit is the sole inhabitant of the unit type `{}`.
type Unit struct{}

func (Unit) TypeName() string { return "Unit" }
func (Unit) String() string   { return "{}" }

// Tuple is a fixed-arity heterogeneous product value.
type Tuple struct{ Elements []Value }

func (*Tuple) TypeName() string { return "Tuple" }
func (t *Tuple) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// List is a homogeneous, ordered sequence value.
type List struct{ Elements []Value }

func (*List) TypeName() string { return "List" }
func (l *List) String() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Record is an ordered field->value map; Order preserves declaration
// order the way the checker's types.Record does, so printing and
// destructuring see fields in source order regardless of Go map
// iteration.
type Record struct {
	Fields map[string]Value
	Order  []string
}

func (*Record) TypeName() string { return "Record" }
func (r *Record) String() string {
	parts := make([]string, len(r.Order))
	for i, name := range r.Order {
		parts[i] = "@" + name + " " + r.Fields[name].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// With returns a copy of r with field replaced by value, appending it
// to Order if it's new. Backs the `set` builtin (spec.md §4.E); records
// are otherwise immutable.
func (r *Record) With(field string, value Value) *Record {
	fields := make(map[string]Value, len(r.Fields)+1)
	for k, v := range r.Fields {
		fields[k] = v
	}
	order := r.Order
	if _, exists := fields[field]; !exists {
		order = append(append([]string{}, r.Order...), field)
	}
	fields[field] = value
	return &Record{Fields: fields, Order: order}
}

// Function is a user-defined closure. Params are uncurried at the AST
// level (ast.Function.Params) but applied one at a time (spec.md §4.E
// "functions are applied to one argument at a time, left to right");
// Bound accumulates partially-applied arguments until len(Bound) ==
// len(Params).
type Function struct {
	Params []string
	Body   ast.Expr
	Env    *Env
	Bound  []Value
}

func (*Function) TypeName() string { return "Function" }
func (*Function) String() string   { return "<function>" }

// NativeFn is a builtin implemented in Go. It receives the owning
// Evaluator (for Out/Rand/Registry access) and the fully-applied
// argument list.
type NativeFn func(ev *Evaluator, args []Value) (Value, error)

// Native is a builtin function value, curried the same way Function is.
type Native struct {
	Name  string
	Arity int
	Bound []Value
	Fn    NativeFn
}

func (*Native) TypeName() string { return "Function" }
func (n *Native) String() string { return "<native:" + n.Name + ">" }

// Constructor is an ADT value: a constructor name plus its arguments
// (empty for nullary constructors like None). True and False are Bool
// values, not Constructors.
type Constructor struct {
	Name string
	Args []Value
}

func (c *Constructor) TypeName() string { return c.Name }

func (c *Constructor) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		s := a.String()
		switch a.(type) {
		case *Constructor:
			if len(a.(*Constructor).Args) > 0 {
				s = "(" + s + ")"
			}
		}
		parts[i] = s
	}
	return c.Name + " " + strings.Join(parts, " ")
}

// TraitFunction is a constraint function whose implementation hasn't
// been resolved yet (spec.md §4.R/§5: "dispatch deferred to runtime
// when the typer can't pin the head"). Apply dispatches on the first
// bound argument — see Evaluator.Apply.
type TraitFunction struct {
	Name           string
	ConstraintName string
	Bound          []Value
}

func (*TraitFunction) TypeName() string { return "Function" }
func (t *TraitFunction) String() string { return "<trait:" + t.Name + ">" }

// Cell is the sole mutable value (spec.md §4.E: "mut introduces a Cell;
// mut! mutates it; reading a Cell-bound variable auto-dereferences").
type Cell struct{ Value Value }

func (*Cell) TypeName() string { return "Cell" }
func (c *Cell) String() string { return "mut " + c.Value.String() }

// Display renders a value the way `print`/`println` write it: like
// String() except a top-level Str is unquoted.
func Display(v Value) string {
	if s, ok := v.(Str); ok {
		return string(s)
	}
	return v.String()
}

// ValuesEqual implements structural equality for `==`/`!=` (spec.md
// §4.T's comparison operators; the checker only requires both sides
// unify, equality itself is evaluated here).
func ValuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case Str:
		bv, ok := b.(Str)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Unit:
		_, ok := b.(Unit)
		return ok
	case *Tuple:
		bv, ok := b.(*Tuple)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !ValuesEqual(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case *List:
		bv, ok := b.(*List)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !ValuesEqual(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case *Record:
		bv, ok := b.(*Record)
		if !ok || len(av.Order) != len(bv.Order) {
			return false
		}
		for _, name := range av.Order {
			other, ok := bv.Fields[name]
			if !ok || !ValuesEqual(av.Fields[name], other) {
				return false
			}
		}
		return true
	case *Constructor:
		bv, ok := b.(*Constructor)
		if !ok || av.Name != bv.Name || len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if !ValuesEqual(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	case *Cell:
		bv, ok := b.(*Cell)
		return ok && ValuesEqual(av.Value, bv.Value)
	default:
		return false
	}
}

// ValuesCompare implements ordering for `< > <= >=`. Only Number and
// Str are orderable; anything else is a runtime error raised by the
// caller.
func ValuesCompare(a, b Value) (int, error) {
	switch av := a.(type) {
	case Number:
		bv, ok := b.(Number)
		if !ok {
			return 0, fmt.Errorf("cannot compare %s with %s", a.TypeName(), b.TypeName())
		}
		switch {
		case av < bv:
			return -1, nil
		case av > bv:
			return 1, nil
		default:
			return 0, nil
		}
	case Str:
		bv, ok := b.(Str)
		if !ok {
			return 0, fmt.Errorf("cannot compare %s with %s", a.TypeName(), b.TypeName())
		}
		return strings.Compare(string(av), string(bv)), nil
	default:
		return 0, fmt.Errorf("cannot order values of type %s", a.TypeName())
	}
}

// IsTruthy unwraps a Bool value for `if` and for filter's predicate results.
func IsTruthy(v Value) (bool, error) {
	b, ok := v.(Bool)
	if !ok {
		return false, fmt.Errorf("expected Bool, got %s", v.TypeName())
	}
	return bool(b), nil
}
