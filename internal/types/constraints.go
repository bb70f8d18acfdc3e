package types

import (
	"fmt"
	"sort"
	"strings"
)

// Constraint is the proposition sum described in spec.md §3. Unlike most
// of this package, constraints are not unified structurally — they are
// discharged against a concrete type head once the variable they
// constrain becomes bound (spec.md §4.T "Constraint solving").
type Constraint interface {
	String() string
	constraintNode()
	// Vars returns the free type-variable names this constraint mentions,
	// used when deciding what survives generalization.
	Vars() []string
}

// Is is nominal trait/class membership: `a is Collection`.
type Is struct {
	Var   string
	Class string
}

func (c *Is) constraintNode()  {}
func (c *Is) Vars() []string   { return []string{c.Var} }
func (c *Is) String() string   { return fmt.Sprintf("%s is %s", c.Var, c.Class) }

// HasField is the row constraint a written `a has {@field T}` or
// `a has field "name" of type T` clause produces: the type bound to Var must be (or
// extend to) a record containing Field with type Of. Accessors and
// record destructuring do not produce it; they type through Record rows.
type HasField struct {
	Var   string
	Field string
	Of    Type
}

func (c *HasField) constraintNode() {}
func (c *HasField) Vars() []string {
	return append([]string{c.Var}, freeVarsIn(c.Of)...)
}
func (c *HasField) String() string {
	return fmt.Sprintf("%s has {@%s: %s}", c.Var, c.Field, c.Of.String())
}

// HasStructure requires several fields at once — the constraint a
// written `a has {@f T, @g U, …}` clause with more than one field
// produces.
type HasStructure struct {
	Var    string
	Fields map[string]Type
}

func (c *HasStructure) constraintNode() {}
func (c *HasStructure) Vars() []string {
	vars := []string{c.Var}
	for _, t := range c.Fields {
		vars = append(vars, freeVarsIn(t)...)
	}
	return vars
}
func (c *HasStructure) String() string {
	names := make([]string, 0, len(c.Fields))
	for n := range c.Fields {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("@%s: %s", n, c.Fields[n].String())
	}
	return fmt.Sprintf("%s has {%s}", c.Var, strings.Join(parts, ", "))
}

// Implements is a trait constraint: the dispatch key for the Trait
// Registry (spec.md §4.R).
type Implements struct {
	Var   string
	Trait string
}

func (c *Implements) constraintNode() {}
func (c *Implements) Vars() []string  { return []string{c.Var} }
func (c *Implements) String() string  { return fmt.Sprintf("%s implements %s", c.Var, c.Trait) }

// Custom is a user-defined parameterized constraint.
type Custom struct {
	Var  string
	Name string
	Args []Type
}

func (c *Custom) constraintNode() {}
func (c *Custom) Vars() []string {
	vars := []string{c.Var}
	for _, a := range c.Args {
		vars = append(vars, freeVarsIn(a)...)
	}
	return vars
}
func (c *Custom) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%s is %s", c.Var, c.Name)
	}
	return fmt.Sprintf("%s is %s %s", c.Var, c.Name, strings.Join(parts, " "))
}

// And is the logical conjunction of constraints: every conjunct must
// hold.
type And struct{ Constraints []Constraint }

func (c *And) constraintNode() {}
func (c *And) Vars() []string {
	var vs []string
	for _, sub := range c.Constraints {
		vs = append(vs, sub.Vars()...)
	}
	return vs
}
func (c *And) String() string {
	parts := make([]string, len(c.Constraints))
	for i, sub := range c.Constraints {
		parts[i] = sub.String()
	}
	return strings.Join(parts, " and ")
}

// Or is the logical disjunction of constraints: at least one disjunct
// must hold. Implementers must not collapse Or into And — spec.md §9
// calls this out explicitly as a deliberate behavior change from the
// (buggy) reference implementation. Or is preserved as a connective all
// the way to discharge time in the typer (see checker.tryDischarge).
type Or struct{ Constraints []Constraint }

func (c *Or) constraintNode() {}
func (c *Or) Vars() []string {
	var vs []string
	for _, sub := range c.Constraints {
		vs = append(vs, sub.Vars()...)
	}
	return vs
}
func (c *Or) String() string {
	parts := make([]string, len(c.Constraints))
	for i, sub := range c.Constraints {
		parts[i] = sub.String()
	}
	return strings.Join(parts, " or ")
}

// Paren groups a constraint expression for printing/precedence purposes
// only; it is transparent to solving.
type Paren struct{ Inner Constraint }

func (c *Paren) constraintNode() {}
func (c *Paren) Vars() []string  { return c.Inner.Vars() }
func (c *Paren) String() string  { return "(" + c.Inner.String() + ")" }

func freeVarsIn(t Type) []string {
	var out []string
	var walk func(Type)
	walk = func(t Type) {
		switch v := t.(type) {
		case *Var:
			out = append(out, v.Name)
		case *Func:
			walk(v.Param)
			walk(v.Return)
		case *List:
			walk(v.Element)
		case *Tuple:
			for _, e := range v.Elements {
				walk(e)
			}
		case *Record:
			for _, name := range sortedKeys(v.Fields) {
				walk(v.Fields[name])
			}
			if v.Row != nil {
				walk(v.Row)
			}
		case *Variant:
			for _, a := range v.Args {
				walk(a)
			}
		}
	}
	walk(t)
	return out
}
