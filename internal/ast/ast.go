// Package ast defines Noolang's expression, pattern, and declaration
// nodes (spec.md §3). Type annotations embedded in the AST (Typed,
// Constrained, FFI, type parameters…) are represented directly with
// *types.Type / types.Constraint values built by the parser — there is
// no separate "parsed type" layer distinct from the typer's Type sum,
// which keeps the single Type data model spec.md §3 actually describes
// instead of introducing a second representation the spec never names.
package ast

import (
	"fmt"

	"github.com/jethrolarson/noolang-sub000/internal/types"
)

// Pos is a 1-indexed source location.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Column) }

// Span is the start/end range of a node in source.
type Span struct {
	Start Pos
	End   Pos
}

// Node is implemented by every AST node.
type Node interface {
	Position() Span
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
	// ResolvedType returns the type the typer decorated this node with,
	// or nil before inference runs.
	ResolvedType() types.Type
	SetResolvedType(types.Type)
}

// Meta carries the fields every expression node has in common: its
// source span and its post-inference decoration (type + effects). The
// typer mutates Type/Effects in place through SetResolvedType/SetEffects
// — this is the "decorates AST in place" contract of spec.md §4.T.
type Meta struct {
	Span    Span
	Type    types.Type
	Effects types.EffectSet
}

func (m *Meta) Position() Span                  { return m.Span }
func (m *Meta) ResolvedType() types.Type        { return m.Type }
func (m *Meta) SetResolvedType(t types.Type)     { m.Type = t }
func (m *Meta) ResolvedEffects() types.EffectSet { return m.Effects }
func (m *Meta) SetEffects(e types.EffectSet)     { m.Effects = e }

// Program is the parser's top-level result: a sequence of statements
// separated by `;` (spec.md §4.P — "`;` at the statement level is
// sequence, not part of a larger expression").
type Program struct {
	Statements []Expr
	Span       Span
}

func (p *Program) Position() Span { return p.Span }

// Literal is a Float/String/Bool scalar value. Numeric
// literals are always Float (spec.md §9) — there is no integer kind.
type Literal struct {
	Meta
	Value interface{} // float64 | string | bool
}

func (l *Literal) exprNode() {}

// Variable references a bound name.
type Variable struct {
	Meta
	Name string
}

func (v *Variable) exprNode() {}

// Function is an uncurried lambda at the AST level; the typer curries
// it into a chain of one-parameter arrows (spec.md §3, §4.T).
type Function struct {
	Meta
	Params []string
	Body   Expr
}

func (f *Function) exprNode() {}

// Application is `fn arg1 arg2 …` — left-associative, whitespace
// separated at the surface syntax, uncurried in this node and curried
// one argument at a time during inference and evaluation.
type Application struct {
	Meta
	Fn   Expr
	Args []Expr
}

func (a *Application) exprNode() {}

// Binary is one of `+ - * / == != < > <= >= | |? |> <| ;`. `f $ x` is
// not a Binary: the parser desugars it into an Application.
type Binary struct {
	Meta
	Op    string
	Left  Expr
	Right Expr
}

func (b *Binary) exprNode() {}

// If is the conditional expression.
type If struct {
	Meta
	Cond Expr
	Then Expr
	Else Expr
}

func (i *If) exprNode() {}

// Definition binds Name to Value in the enclosing scope (let-like).
type Definition struct {
	Meta
	Name  string
	Value Expr
}

func (d *Definition) exprNode() {}

// MutableDefinition creates a Cell-typed binding (`mut x = v`).
type MutableDefinition struct {
	Meta
	Name  string
	Value Expr
}

func (d *MutableDefinition) exprNode() {}

// Mutation writes through an existing Cell binding (`mut! x = v`).
type Mutation struct {
	Meta
	Name  string
	Value Expr
}

func (m *Mutation) exprNode() {}

// TupleDestructuring binds a tuple pattern's components from Value.
type TupleDestructuring struct {
	Meta
	Names []string
	Value Expr
}

func (t *TupleDestructuring) exprNode() {}

// RecordDestructuring binds named fields of Value, field→local-name.
type RecordDestructuring struct {
	Meta
	Fields map[string]string
	Order  []string
	Value  Expr
}

func (r *RecordDestructuring) exprNode() {}

// Import loads another Noolang source file.
type Import struct {
	Meta
	Path string
}

func (i *Import) exprNode() {}

// RecordField is one `@name value` entry of a Record literal.
type RecordField struct {
	Name  string
	Value Expr
}

// Record is `{ @name value, … }`, fields kept in declaration order.
type Record struct {
	Meta
	Fields []RecordField
}

func (r *Record) exprNode() {}

// Tuple is `{ e, e, … }` with two or more elements (a single-element
// `{ e }` is parsed as a parenthesized literal, not a Tuple).
type Tuple struct {
	Meta
	Elements []Expr
}

func (t *Tuple) exprNode() {}

// Unit is `{}`.
type Unit struct {
	Meta
}

func (u *Unit) exprNode() {}

// Accessor is a first-class field selector `@f`.
type Accessor struct {
	Meta
	Field string
}

func (a *Accessor) exprNode() {}

// List is `[e, e, …]`.
type List struct {
	Meta
	Elements []Expr
}

func (l *List) exprNode() {}

// Where is `main where (def; def; …)` — local bindings scoped to Main,
// evaluated like `let … in`.
type Where struct {
	Meta
	Main        Expr
	Definitions []Expr
}

func (w *Where) exprNode() {}

// Typed is an explicit type ascription `expr : Type`.
type Typed struct {
	Meta
	Expr       Expr
	Annotation types.Type
}

func (t *Typed) exprNode() {}

// Constrained is an ascription plus a `given` clause:
// `expr : Type given <constraint>`.
type Constrained struct {
	Meta
	Expr       Expr
	Annotation types.Type
	Given      types.Constraint
}

func (c *Constrained) exprNode() {}

// ConstructorDef is one arm of a TypeDefinition.
type ConstructorDef struct {
	Name string
	Args []types.Type
}

// TypeDefinition declares an algebraic data type:
// `type T a b = Con1 t… | Con2 t… | …`.
type TypeDefinition struct {
	Meta
	Name         string
	TypeParams   []string
	Constructors []ConstructorDef
}

func (t *TypeDefinition) exprNode() {}

// MatchCase is one `pattern => expr` arm of a Match.
type MatchCase struct {
	Pattern Pattern
	Body    Expr
}

// Match is `match e with (pat => expr; …)`.
type Match struct {
	Meta
	Scrutinee Expr
	Cases     []MatchCase
}

func (m *Match) exprNode() {}

// FunctionSig is a declared signature inside a constraint definition:
// `name : type`.
type FunctionSig struct {
	Name string
	Type types.Type
}

// ConstraintDefinition declares a trait:
// `constraint C a ( name : type; … )`.
type ConstraintDefinition struct {
	Meta
	Name      string
	TypeParam string
	Functions []FunctionSig
}

func (c *ConstraintDefinition) exprNode() {}

// ImplFunc is one `name = expr` entry of an implement block.
type ImplFunc struct {
	Name string
	Body Expr
}

// ImplementDefinition provides a trait implementation:
// `implement C (T a b) ( name = expr; … )`, with an optional `given`.
type ImplementDefinition struct {
	Meta
	ConstraintName string
	Head           types.Type
	Given          types.Constraint
	Functions      []ImplFunc
}

func (i *ImplementDefinition) exprNode() {}

// FFI is the typed escape hatch naming a foreign module, a name in it,
// and a Type annotation. No grammar rule produces it: the lexer has no
// `ffi` keyword, so FFI nodes exist only when built directly in Go.
type FFI struct {
	Meta
	Module     string
	Name       string
	Annotation types.Type
}

func (f *FFI) exprNode() {}
