package eval

import (
	"fmt"
	"os"

	nerrors "github.com/jethrolarson/noolang-sub000/internal/errors"
)

// BaseEnv seeds a fresh value environment with the native builtins
// whose type signatures live in checker.BaseEnv: print/println/log
// (write to ev.Out), readFile/writeFile, random/randomRange (draw from
// ev.Rand), mutGet/mutSet, the list primitives (head/tail/map/filter/
// foldl/length) the stdlib prelude's Noolang source builds on, and
// `set` for row-polymorphic record update (spec.md §4.E). Mirrors the
// teacher's builtins package (native Go functions registered into the
// initial eval environment), generalized from AILANG's effect-indexed
// registry to Noolang's flat global scope.
func BaseEnv(ev *Evaluator) *Env {
	env := NewEnv()

	unary := func(name string, fn func(*Evaluator, Value) (Value, error)) {
		env.Bind(name, &Native{Name: name, Arity: 1, Fn: func(ev *Evaluator, args []Value) (Value, error) {
			return fn(ev, args[0])
		}})
	}
	binary := func(name string, fn func(*Evaluator, Value, Value) (Value, error)) {
		env.Bind(name, &Native{Name: name, Arity: 2, Fn: func(ev *Evaluator, args []Value) (Value, error) {
			return fn(ev, args[0], args[1])
		}})
	}
	ternary := func(name string, fn func(*Evaluator, Value, Value, Value) (Value, error)) {
		env.Bind(name, &Native{Name: name, Arity: 3, Fn: func(ev *Evaluator, args []Value) (Value, error) {
			return fn(ev, args[0], args[1], args[2])
		}})
	}

	unary("print", func(ev *Evaluator, v Value) (Value, error) {
		fmt.Fprint(ev.Out, Display(v))
		return Unit{}, nil
	})
	unary("println", func(ev *Evaluator, v Value) (Value, error) {
		fmt.Fprintln(ev.Out, Display(v))
		return Unit{}, nil
	})
	unary("log", func(ev *Evaluator, v Value) (Value, error) {
		fmt.Fprintln(ev.Out, Display(v))
		return Unit{}, nil
	})

	unary("readFile", func(ev *Evaluator, v Value) (Value, error) {
		path, ok := v.(Str)
		if !ok {
			return nil, nerrors.Wrap(nerrors.NewRuntime(nil, "readFile expects a String path"))
		}
		data, err := os.ReadFile(string(path))
		if err != nil {
			return nil, nerrors.Wrap(nerrors.NewRuntime(nil, "readFile: %v", err))
		}
		return Str(data), nil
	})
	binary("writeFile", func(ev *Evaluator, p, content Value) (Value, error) {
		path, ok := p.(Str)
		if !ok {
			return nil, nerrors.Wrap(nerrors.NewRuntime(nil, "writeFile expects a String path"))
		}
		body, ok := content.(Str)
		if !ok {
			return nil, nerrors.Wrap(nerrors.NewRuntime(nil, "writeFile expects a String body"))
		}
		if err := os.WriteFile(string(path), []byte(body), 0o644); err != nil {
			return nil, nerrors.Wrap(nerrors.NewRuntime(nil, "writeFile: %v", err))
		}
		return Unit{}, nil
	})

	unary("random", func(ev *Evaluator, _ Value) (Value, error) {
		return Number(ev.Rand.Float64()), nil
	})
	binary("randomRange", func(ev *Evaluator, lo, hi Value) (Value, error) {
		lon, ok := lo.(Number)
		if !ok {
			return nil, nerrors.Wrap(nerrors.NewRuntime(nil, "randomRange expects Float bounds"))
		}
		hin, ok := hi.(Number)
		if !ok {
			return nil, nerrors.Wrap(nerrors.NewRuntime(nil, "randomRange expects Float bounds"))
		}
		return Number(float64(lon) + ev.Rand.Float64()*float64(hin-lon)), nil
	})

	unary("mutGet", func(ev *Evaluator, v Value) (Value, error) {
		cell, ok := v.(*Cell)
		if !ok {
			return nil, nerrors.Wrap(nerrors.NewRuntime(nil, "mutGet expects a mutable cell"))
		}
		return cell.Value, nil
	})
	binary("mutSet", func(ev *Evaluator, v, newVal Value) (Value, error) {
		cell, ok := v.(*Cell)
		if !ok {
			return nil, nerrors.Wrap(nerrors.NewRuntime(nil, "mutSet expects a mutable cell"))
		}
		cell.Value = newVal
		return Unit{}, nil
	})

	unary("length", func(ev *Evaluator, v Value) (Value, error) {
		list, ok := v.(*List)
		if !ok {
			return nil, nerrors.Wrap(nerrors.NewRuntime(nil, "length expects a List"))
		}
		return Number(len(list.Elements)), nil
	})
	unary("head", func(ev *Evaluator, v Value) (Value, error) {
		list, ok := v.(*List)
		if !ok {
			return nil, nerrors.Wrap(nerrors.NewRuntime(nil, "head expects a List"))
		}
		if len(list.Elements) == 0 {
			return &Constructor{Name: "None"}, nil
		}
		return &Constructor{Name: "Some", Args: []Value{list.Elements[0]}}, nil
	})
	unary("tail", func(ev *Evaluator, v Value) (Value, error) {
		list, ok := v.(*List)
		if !ok {
			return nil, nerrors.Wrap(nerrors.NewRuntime(nil, "tail expects a List"))
		}
		if len(list.Elements) == 0 {
			return nil, nerrors.Wrap(nerrors.NewRuntime(nil, "tail of an empty list"))
		}
		rest := make([]Value, len(list.Elements)-1)
		copy(rest, list.Elements[1:])
		return &List{Elements: rest}, nil
	})

	binary("map", func(ev *Evaluator, fn, v Value) (Value, error) {
		list, ok := v.(*List)
		if !ok {
			return nil, nerrors.Wrap(nerrors.NewRuntime(nil, "map expects a List"))
		}
		out := make([]Value, len(list.Elements))
		for i, el := range list.Elements {
			r, err := ev.Apply(fn, el)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return &List{Elements: out}, nil
	})
	binary("filter", func(ev *Evaluator, fn, v Value) (Value, error) {
		list, ok := v.(*List)
		if !ok {
			return nil, nerrors.Wrap(nerrors.NewRuntime(nil, "filter expects a List"))
		}
		var out []Value
		for _, el := range list.Elements {
			r, err := ev.Apply(fn, el)
			if err != nil {
				return nil, err
			}
			keep, err := IsTruthy(r)
			if err != nil {
				return nil, nerrors.Wrap(nerrors.NewRuntime(nil, "%v", err))
			}
			if keep {
				out = append(out, el)
			}
		}
		return &List{Elements: out}, nil
	})
	ternary("foldl", func(ev *Evaluator, fn, init, v Value) (Value, error) {
		list, ok := v.(*List)
		if !ok {
			return nil, nerrors.Wrap(nerrors.NewRuntime(nil, "foldl expects a List"))
		}
		acc := init
		for _, el := range list.Elements {
			stepped, err := ev.Apply(fn, acc)
			if err != nil {
				return nil, err
			}
			acc, err = ev.Apply(stepped, el)
			if err != nil {
				return nil, err
			}
		}
		return acc, nil
	})

	ternary("set", func(ev *Evaluator, accessor, rec, value Value) (Value, error) {
		nat, ok := accessor.(*Native)
		if !ok || len(nat.Name) == 0 || nat.Name[0] != '@' {
			return nil, nerrors.Wrap(nerrors.NewRuntime(nil, "set's first argument must be a field accessor"))
		}
		record, ok := rec.(*Record)
		if !ok {
			return nil, nerrors.Wrap(nerrors.NewRuntime(nil, "set expects a Record"))
		}
		return record.With(nat.Name[1:], value), nil
	})

	return env
}
