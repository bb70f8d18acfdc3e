package eval

import (
	"io"

	"github.com/jethrolarson/noolang-sub000/internal/ast"
	nerrors "github.com/jethrolarson/noolang-sub000/internal/errors"
	"github.com/jethrolarson/noolang-sub000/internal/traits"
	"github.com/jethrolarson/noolang-sub000/internal/types"
)

// Trace records one top-level statement's evaluated result, so the CLI
// and REPL can show intermediate values the way spec.md §6/§7 describe
// (each statement separated by `;` produces a visible result). Source
// text isn't stored here: the driver holding the original source slices
// it using Span, keeping the evaluator decoupled from any particular
// input surface (file vs REPL line).
type Trace struct {
	Span   ast.Span
	Result Value
}

// Importer resolves an `import "path"` expression to the module's
// exported Value (an eval.Record, spec.md §4.M) — supplied by
// internal/module so this package stays independent of filesystem
// concerns.
type Importer func(path string) (Value, error)

// Evaluator walks a checked, decorated *ast.Program and produces
// Values. One Evaluator is reused across every file/REPL input in a
// session so ConstructorADT and ImplEnv accumulate across definitions
// (spec.md §4.E, §5 "Trait dispatch (runtime)"). Grounded on the
// teacher's internal/eval.Evaluator (closures over *Env, dispatch by
// Core node), adapted to Noolang's direct-AST walk.
type Evaluator struct {
	Registry *traits.Registry
	Out      io.Writer
	Rand     Randomizer

	// ConstructorADT maps a constructor name to the ADT type name that
	// declares it ("Some" -> "Option"), populated when a
	// *ast.TypeDefinition is evaluated. Needed because runtime trait
	// dispatch keys on the ADT's name (matching types.Head), while a
	// Constructor value only carries its own constructor name.
	ConstructorADT map[string]string

	// ImplEnv records the environment each implementation's function
	// bodies should evaluate in, captured when the *ast.ImplementDefinition
	// that produced it is evaluated (see registerImplEnv).
	ImplEnv map[*traits.Implementation]*Env

	Importer Importer
}

// Randomizer abstracts the single source of randomness `random` and
// `randomRange` draw from, so tests can supply a deterministic stub.
type Randomizer interface {
	Float64() float64
}

// New returns an Evaluator with fresh bookkeeping maps.
func New(registry *traits.Registry, out io.Writer, rnd Randomizer) *Evaluator {
	return &Evaluator{
		Registry:       registry,
		Out:            out,
		Rand:           rnd,
		ConstructorADT: make(map[string]string),
		ImplEnv:        make(map[*traits.Implementation]*Env),
	}
}

// ValueHead maps a runtime Value to the same head-constructor string
// types.Head produces for its static type, so runtime trait dispatch
// (TraitFunction) can reuse the Registry's (constraintName, head)
// index built by the checker.
func (ev *Evaluator) ValueHead(v Value) string {
	switch val := v.(type) {
	case Number:
		return "Float"
	case Str:
		return "String"
	case Bool:
		return "Bool"
	case Unit:
		return "{}"
	case *List:
		return "List"
	case *Tuple:
		return tupleHead(len(val.Elements))
	case *Record:
		return "Record"
	case *Constructor:
		if adt, ok := ev.ConstructorADT[val.Name]; ok {
			return adt
		}
		return val.Name
	default:
		return ""
	}
}

func tupleHead(n int) string {
	if n == 0 {
		return "{}"
	}
	digits := [...]string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}
	s := ""
	for n > 0 {
		s = digits[n%10] + s
		n /= 10
	}
	return "Tuple/" + s
}

// EvaluateProgram evaluates each statement of prog in order against
// env, returning the final statement's value plus a trace of every
// statement's result (spec.md §4.E, §6 "every top-level statement
// produces a visible result").
func (ev *Evaluator) EvaluateProgram(prog *ast.Program, env *Env) (Value, []Trace, error) {
	var result Value = Unit{}
	var trace []Trace
	for _, stmt := range prog.Statements {
		v, err := ev.Eval(stmt, env)
		if err != nil {
			return nil, trace, err
		}
		result = v
		trace = append(trace, Trace{Span: stmt.Position(), Result: v})
	}
	return result, trace, nil
}

// Eval evaluates a single expression node against env (spec.md §4.E).
func (ev *Evaluator) Eval(expr ast.Expr, env *Env) (Value, error) {
	switch e := expr.(type) {

	case *ast.Literal:
		switch v := e.Value.(type) {
		case float64:
			return Number(v), nil
		case string:
			return Str(v), nil
		case bool:
			return Bool(v), nil
		default:
			return nil, runtimeErr(e, "unknown literal value %v", e.Value)
		}

	case *ast.Variable:
		v, ok := env.Lookup(e.Name)
		if !ok {
			return nil, runtimeErr(e, "undefined variable %q", e.Name)
		}
		if cell, ok := v.(*Cell); ok {
			return cell.Value, nil
		}
		return v, nil

	case *ast.Function:
		return &Function{Params: e.Params, Body: e.Body, Env: env}, nil

	case *ast.Application:
		return ev.evalApplication(e, env)

	case *ast.Binary:
		return ev.evalBinary(e, env)

	case *ast.If:
		condV, err := ev.Eval(e.Cond, env)
		if err != nil {
			return nil, err
		}
		truthy, err := IsTruthy(condV)
		if err != nil {
			return nil, runtimeErr(e, "%v", err)
		}
		if truthy {
			return ev.Eval(e.Then, env)
		}
		return ev.Eval(e.Else, env)

	case *ast.Definition:
		v, err := ev.Eval(e.Value, env)
		if err != nil {
			return nil, err
		}
		env.Bind(e.Name, v)
		return v, nil

	case *ast.MutableDefinition:
		v, err := ev.Eval(e.Value, env)
		if err != nil {
			return nil, err
		}
		env.Bind(e.Name, &Cell{Value: v})
		return v, nil

	case *ast.Mutation:
		existing, ok := env.Lookup(e.Name)
		if !ok {
			return nil, runtimeErr(e, "undefined variable %q", e.Name)
		}
		cell, ok := existing.(*Cell)
		if !ok {
			return nil, runtimeErr(e, "%q was not declared with mut and cannot be mutated", e.Name)
		}
		v, err := ev.Eval(e.Value, env)
		if err != nil {
			return nil, err
		}
		cell.Value = v
		return v, nil

	case *ast.TupleDestructuring:
		v, err := ev.Eval(e.Value, env)
		if err != nil {
			return nil, err
		}
		tup, ok := v.(*Tuple)
		if !ok || len(tup.Elements) != len(e.Names) {
			return nil, runtimeErr(e, "cannot destructure %s into %d names", v.TypeName(), len(e.Names))
		}
		for i, name := range e.Names {
			env.Bind(name, tup.Elements[i])
		}
		return v, nil

	case *ast.RecordDestructuring:
		v, err := ev.Eval(e.Value, env)
		if err != nil {
			return nil, err
		}
		rec, ok := v.(*Record)
		if !ok {
			return nil, runtimeErr(e, "cannot destructure %s as a record", v.TypeName())
		}
		for _, field := range e.Order {
			local := e.Fields[field]
			fv, ok := rec.Fields[field]
			if !ok {
				return nil, runtimeErr(e, "record has no field %q", field)
			}
			env.Bind(local, fv)
		}
		return v, nil

	case *ast.Import:
		if ev.Importer == nil {
			return nil, runtimeErr(e, "imports are not available in this context")
		}
		v, err := ev.Importer(e.Path)
		if err != nil {
			return nil, err
		}
		return v, nil

	case *ast.Record:
		fields := make(map[string]Value, len(e.Fields))
		order := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			v, err := ev.Eval(f.Value, env)
			if err != nil {
				return nil, err
			}
			fields[f.Name] = v
			order = append(order, f.Name)
		}
		return &Record{Fields: fields, Order: order}, nil

	case *ast.Tuple:
		elems := make([]Value, len(e.Elements))
		for i, el := range e.Elements {
			v, err := ev.Eval(el, env)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return &Tuple{Elements: elems}, nil

	case *ast.Unit:
		return Unit{}, nil

	case *ast.Accessor:
		field := e.Field
		return &Native{Name: "@" + field, Arity: 1, Fn: func(ev *Evaluator, args []Value) (Value, error) {
			rec, ok := args[0].(*Record)
			if !ok {
				return nil, nerrors.Wrap(nerrors.NewRuntime(nil, "cannot access @%s on %s", field, args[0].TypeName()))
			}
			v, ok := rec.Fields[field]
			if !ok {
				return nil, nerrors.Wrap(nerrors.NewRuntime(nil, "record has no field %q", field))
			}
			return v, nil
		}}, nil

	case *ast.List:
		elems := make([]Value, len(e.Elements))
		for i, el := range e.Elements {
			v, err := ev.Eval(el, env)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return &List{Elements: elems}, nil

	case *ast.Where:
		childEnv := env.Child()
		for _, def := range e.Definitions {
			if _, err := ev.Eval(def, childEnv); err != nil {
				return nil, err
			}
		}
		return ev.Eval(e.Main, childEnv)

	case *ast.Typed:
		return ev.Eval(e.Expr, env)

	case *ast.Constrained:
		return ev.Eval(e.Expr, env)

	case *ast.TypeDefinition:
		for _, con := range e.Constructors {
			ev.ConstructorADT[con.Name] = e.Name
			arity := len(con.Args)
			if arity == 0 {
				env.Bind(con.Name, &Constructor{Name: con.Name})
				continue
			}
			name := con.Name
			env.Bind(con.Name, &Native{Name: name, Arity: arity, Fn: func(_ *Evaluator, args []Value) (Value, error) {
				return &Constructor{Name: name, Args: append([]Value{}, args...)}, nil
			}})
		}
		return Unit{}, nil

	case *ast.Match:
		return ev.evalMatch(e, env)

	case *ast.ConstraintDefinition:
		for _, sig := range e.Functions {
			env.Bind(sig.Name, &TraitFunction{Name: sig.Name, ConstraintName: e.Name})
		}
		return Unit{}, nil

	case *ast.ImplementDefinition:
		ev.registerImplEnv(e, env)
		return Unit{}, nil

	case *ast.FFI:
		return nil, runtimeErr(e, "ffi is not supported by this evaluator")

	default:
		return nil, nerrors.Wrap(nerrors.NewRuntime(nil, "eval: unhandled expression %T", expr))
	}
}

func runtimeErr(e ast.Expr, format string, args ...interface{}) error {
	pos := e.Position().Start
	return nerrors.Wrap(nerrors.NewRuntime(&nerrors.Position{Line: pos.Line, Column: pos.Column}, format, args...))
}

func (ev *Evaluator) evalApplication(e *ast.Application, env *Env) (Value, error) {
	fnV, err := ev.Eval(e.Fn, env)
	if err != nil {
		return nil, err
	}
	for _, argExpr := range e.Args {
		argV, err := ev.Eval(argExpr, env)
		if err != nil {
			return nil, err
		}
		fnV, err = ev.Apply(fnV, argV)
		if err != nil {
			return nil, err
		}
	}
	return fnV, nil
}

// Apply applies fn to one argument, handling currying/partial
// application for Function and Native, and runtime dispatch for
// TraitFunction (spec.md §4.E, §5).
func (ev *Evaluator) Apply(fn Value, arg Value) (Value, error) {
	switch f := fn.(type) {

	case *Function:
		bound := append(append([]Value{}, f.Bound...), arg)
		if len(bound) < len(f.Params) {
			return &Function{Params: f.Params, Body: f.Body, Env: f.Env, Bound: bound}, nil
		}
		callEnv := f.Env.Child()
		for i, p := range f.Params {
			callEnv.Bind(p, bound[i])
		}
		return ev.Eval(f.Body, callEnv)

	case *Native:
		bound := append(append([]Value{}, f.Bound...), arg)
		if len(bound) < f.Arity {
			return &Native{Name: f.Name, Arity: f.Arity, Bound: bound, Fn: f.Fn}, nil
		}
		return f.Fn(ev, bound)

	case *TraitFunction:
		return ev.applyTrait(f, arg)

	default:
		return nil, nerrors.Wrap(nerrors.NewRuntime(nil, "cannot apply a value of type %s", fn.TypeName()))
	}
}

// applyTrait dispatches a constraint function on the first argument it
// receives (every constraint function this implementation defines
// takes the trait's type parameter as its first parameter, so one
// argument is always enough to resolve the head — spec.md §5 notes
// richer dispatch is possible but doesn't require it). Candidates whose
// `given` clause fails for the argument's shape are dropped before
// picking; zero survivors is a runtime error, more than one is an
// ambiguity (spec.md §4.E).
func (ev *Evaluator) applyTrait(t *TraitFunction, arg Value) (Value, error) {
	bound := append(append([]Value{}, t.Bound...), arg)
	head := ev.ValueHead(bound[0])
	var viable []*traits.Implementation
	for _, c := range ev.Registry.LookupByHead(t.ConstraintName, head) {
		if ev.givenHolds(c, bound[0]) {
			viable = append(viable, c)
		}
	}
	if len(viable) == 0 {
		return nil, nerrors.Wrap(nerrors.NewRuntime(nil, "no matching trait implementation for %s %s", t.ConstraintName, head))
	}
	if len(viable) > 1 {
		return nil, nerrors.Wrap(nerrors.NewRuntime(nil, "ambiguous implementation of %s for %s (%d candidates)", t.ConstraintName, head, len(viable)))
	}
	chosen := viable[0]
	body, ok := chosen.Functions[t.Name]
	if !ok {
		return nil, nerrors.Wrap(nerrors.NewRuntime(nil, "implementation of %s for %s has no function %q", t.ConstraintName, head, t.Name))
	}
	implEnv, ok := ev.ImplEnv[chosen]
	if !ok {
		return nil, nerrors.Wrap(nerrors.NewRuntime(nil, "internal error: no captured environment for %s/%s", t.ConstraintName, head))
	}
	result, err := ev.Eval(body, implEnv)
	if err != nil {
		return nil, err
	}
	for _, a := range bound {
		result, err = ev.Apply(result, a)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// givenHolds checks an implementation's `given` clause against the
// runtime value being dispatched on: the head type's variables are bound
// to representative sub-values of arg, and each atomic constraint asks
// whether its bound value's own head has an applicable implementation.
// A head variable left unbound (empty list, nullary constructor) cannot
// be refuted and counts as satisfied.
func (ev *Evaluator) givenHolds(impl *traits.Implementation, arg Value) bool {
	if impl.Given == nil {
		return true
	}
	binds := map[string]Value{}
	ev.bindHeadValue(impl.Head, arg, binds)
	return ev.givenSatisfied(impl.Given, binds)
}

// bindHeadValue walks a head type and a runtime value in parallel,
// recording a representative value for each head type variable (the
// first list element, the pairwise tuple/record components, a unary
// constructor's payload).
func (ev *Evaluator) bindHeadValue(head types.Type, v Value, binds map[string]Value) {
	switch h := head.(type) {
	case *types.Var:
		binds[h.Name] = v
	case *types.List:
		if l, ok := v.(*List); ok && len(l.Elements) > 0 {
			ev.bindHeadValue(h.Element, l.Elements[0], binds)
		}
	case *types.Tuple:
		if t, ok := v.(*Tuple); ok && len(t.Elements) == len(h.Elements) {
			for i, sub := range h.Elements {
				ev.bindHeadValue(sub, t.Elements[i], binds)
			}
		}
	case *types.Record:
		if r, ok := v.(*Record); ok {
			for name, ft := range h.Fields {
				if fv, has := r.Fields[name]; has {
					ev.bindHeadValue(ft, fv, binds)
				}
			}
		}
	case *types.Variant:
		// A constructor value's positional args are paired with the
		// variant's type arguments whenever the two counts are equal (Some x
		// against Option a); with unequal counts (Ok x against Result a b)
		// nothing is bound, so nothing is refuted.
		if c, ok := v.(*Constructor); ok && len(h.Args) == len(c.Args) {
			for i, sub := range h.Args {
				ev.bindHeadValue(sub, c.Args[i], binds)
			}
		}
	}
}

func (ev *Evaluator) givenSatisfied(c types.Constraint, binds map[string]Value) bool {
	switch v := c.(type) {
	case *types.Paren:
		return ev.givenSatisfied(v.Inner, binds)
	case *types.And:
		for _, sub := range v.Constraints {
			if !ev.givenSatisfied(sub, binds) {
				return false
			}
		}
		return true
	case *types.Or:
		for _, sub := range v.Constraints {
			if ev.givenSatisfied(sub, binds) {
				return true
			}
		}
		return false
	case *types.Is:
		return ev.valueSatisfies(v.Class, binds[v.Var])
	case *types.Implements:
		return ev.valueSatisfies(v.Trait, binds[v.Var])
	case *types.Custom:
		return ev.valueSatisfies(v.Name, binds[v.Var])
	case *types.HasField:
		bound, ok := binds[v.Var]
		if !ok {
			return true
		}
		rec, isRec := bound.(*Record)
		if !isRec {
			return false
		}
		_, has := rec.Fields[v.Field]
		return has
	case *types.HasStructure:
		bound, ok := binds[v.Var]
		if !ok {
			return true
		}
		rec, isRec := bound.(*Record)
		if !isRec {
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

// valueSatisfies reports whether v's head has an applicable
// implementation of constraintName, recursing through that
// implementation's own given clause. A nil v means the head variable
// never got bound — undecidable, so satisfied.
func (ev *Evaluator) valueSatisfies(constraintName string, v Value) bool {
	if v == nil {
		return true
	}
	for _, impl := range ev.Registry.LookupByHead(constraintName, ev.ValueHead(v)) {
		if ev.givenHolds(impl, v) {
			return true
		}
	}
	return false
}

// registerImplEnv records the environment an *ast.ImplementDefinition's
// function bodies should close over, by matching this node's function
// bodies (by AST identity) against the Implementation the checker
// already registered for the same (constraint, head) during type
// checking. Check and Eval walk the same decorated tree, so the
// ast.Expr pointers line up exactly.
func (ev *Evaluator) registerImplEnv(e *ast.ImplementDefinition, env *Env) {
	candidates := ev.Registry.LookupByHead(e.ConstraintName, types.Head(e.Head))
	for _, impl := range candidates {
		if implMatchesNode(impl, e) {
			ev.ImplEnv[impl] = env
		}
	}
}

func implMatchesNode(impl *traits.Implementation, e *ast.ImplementDefinition) bool {
	if len(impl.Functions) != len(e.Functions) {
		return false
	}
	for _, fn := range e.Functions {
		body, ok := impl.Functions[fn.Name]
		if !ok || body != fn.Body {
			return false
		}
	}
	return true
}

func (ev *Evaluator) evalMatch(e *ast.Match, env *Env) (Value, error) {
	scrutV, err := ev.Eval(e.Scrutinee, env)
	if err != nil {
		return nil, err
	}
	for _, cs := range e.Cases {
		caseEnv := env.Child()
		if MatchPattern(cs.Pattern, scrutV, caseEnv) {
			return ev.Eval(cs.Body, caseEnv)
		}
	}
	return nil, runtimeErr(e, "no pattern matched")
}

func (ev *Evaluator) evalBinary(e *ast.Binary, env *Env) (Value, error) {
	switch e.Op {
	case ";":
		if _, err := ev.Eval(e.Left, env); err != nil {
			return nil, err
		}
		return ev.Eval(e.Right, env)

	case "+", "-", "*", "/":
		l, err := ev.Eval(e.Left, env)
		if err != nil {
			return nil, err
		}
		r, err := ev.Eval(e.Right, env)
		if err != nil {
			return nil, err
		}
		ln, ok := l.(Number)
		if !ok {
			return nil, runtimeErr(e, "expected Float, got %s", l.TypeName())
		}
		rn, ok := r.(Number)
		if !ok {
			return nil, runtimeErr(e, "expected Float, got %s", r.TypeName())
		}
		switch e.Op {
		case "+":
			return ln + rn, nil
		case "-":
			return ln - rn, nil
		case "*":
			return ln * rn, nil
		case "/":
			if rn == 0 {
				return nil, runtimeErr(e, "Division by zero")
			}
			return ln / rn, nil
		}

	case "==", "!=":
		l, err := ev.Eval(e.Left, env)
		if err != nil {
			return nil, err
		}
		r, err := ev.Eval(e.Right, env)
		if err != nil {
			return nil, err
		}
		eq := ValuesEqual(l, r)
		if e.Op == "!=" {
			eq = !eq
		}
		return Bool(eq), nil

	case "<", ">", "<=", ">=":
		l, err := ev.Eval(e.Left, env)
		if err != nil {
			return nil, err
		}
		r, err := ev.Eval(e.Right, env)
		if err != nil {
			return nil, err
		}
		cmp, err := ValuesCompare(l, r)
		if err != nil {
			return nil, runtimeErr(e, "%v", err)
		}
		switch e.Op {
		case "<":
			return Bool(cmp < 0), nil
		case ">":
			return Bool(cmp > 0), nil
		case "<=":
			return Bool(cmp <= 0), nil
		case ">=":
			return Bool(cmp >= 0), nil
		}

	case "|", "|>":
		l, err := ev.Eval(e.Left, env)
		if err != nil {
			return nil, err
		}
		r, err := ev.Eval(e.Right, env)
		if err != nil {
			return nil, err
		}
		return ev.Apply(r, l)

	case "|?":
		// Monadic bind on Option: Some x |? f == f x; None |? f == None;
		// a non-Option left is wrapped in Some before binding (spec.md
		// §4.E) — never double-wraps the callee's own Option result the
		// way a plain `|` application would.
		l, err := ev.Eval(e.Left, env)
		if err != nil {
			return nil, err
		}
		r, err := ev.Eval(e.Right, env)
		if err != nil {
			return nil, err
		}
		left, ok := l.(*Constructor)
		if !ok || (left.Name != "Some" && left.Name != "None") {
			left = &Constructor{Name: "Some", Args: []Value{l}}
		}
		if left.Name == "None" {
			return left, nil
		}
		return ev.Apply(r, left.Args[0])

	case "<|":
		l, err := ev.Eval(e.Left, env)
		if err != nil {
			return nil, err
		}
		r, err := ev.Eval(e.Right, env)
		if err != nil {
			return nil, err
		}
		return ev.Apply(l, r)
	}
	return nil, runtimeErr(e, "unknown operator %q", e.Op)
}
