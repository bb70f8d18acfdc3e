package checker

import "github.com/jethrolarson/noolang-sub000/internal/types"

// BaseEnv seeds a fresh type environment with the native builtins
// (spec.md §4.T's effect-propagation table: "print, println, writeFile
// add write; log adds log; readFile adds read; random / randomRange add
// rand; mutGet / mutSet / Mutation add state") plus the list primitives
// (head/tail/map/filter/foldl/length) and the record-update builtin
// `set`. These are native Go functions rather than Noolang source
// because List has no surface-syntax pattern (spec.md's pattern grammar
// only covers literals/variables/tuples/records/constructors), so
// recursion over a List body can't be expressed in Noolang itself. The
// embedded stdlib prelude builds Option/Result and a Collection trait
// on top of these.
func BaseEnv() *types.Env {
	env := types.NewEnv()

	unaryWrite := func(param types.Type, ret types.Type, eff types.Effect) *types.Scheme {
		return &types.Scheme{Vars: freeVarsOf(param), Type: &types.Func{Param: param, Return: ret, Effects: types.NewEffects(eff)}}
	}

	a := &types.Var{Name: "a"}
	env.Bind("print", unaryWrite(a, types.Unit, types.Write))
	env.Bind("println", unaryWrite(&types.Var{Name: "a"}, types.Unit, types.Write))
	env.Bind("log", unaryWrite(&types.Var{Name: "a"}, types.Unit, types.Log))

	env.Bind("readFile", &types.Scheme{Type: &types.Func{Param: types.Str, Return: types.Str, Effects: types.NewEffects(types.Read)}})
	env.Bind("writeFile", &types.Scheme{Type: &types.Func{
		Param:  types.Str,
		Return: &types.Func{Param: types.Str, Return: types.Unit, Effects: types.NewEffects(types.Write)},
	}})

	env.Bind("random", &types.Scheme{Type: &types.Func{Param: types.Unit, Return: types.Float, Effects: types.NewEffects(types.Rand)}})
	env.Bind("randomRange", &types.Scheme{Type: &types.Func{
		Param:  types.Float,
		Return: &types.Func{Param: types.Float, Return: types.Float, Effects: types.NewEffects(types.Rand)},
	}})

	cellA := &types.Variant{Name: "Cell", Args: []types.Type{&types.Var{Name: "b"}}}
	env.Bind("mutGet", &types.Scheme{Vars: []string{"b"}, Type: &types.Func{
		Param: cellA, Return: &types.Var{Name: "b"}, Effects: types.NewEffects(types.State),
	}})
	cellC := &types.Variant{Name: "Cell", Args: []types.Type{&types.Var{Name: "c"}}}
	env.Bind("mutSet", &types.Scheme{Vars: []string{"c"}, Type: &types.Func{
		Param:  cellC,
		Return: &types.Func{Param: &types.Var{Name: "c"}, Return: types.Unit, Effects: types.NewEffects(types.State)},
	}})

	d := &types.Var{Name: "d"}
	env.Bind("length", &types.Scheme{Vars: []string{"d"}, Type: &types.Func{
		Param: &types.List{Element: d}, Return: types.Float, Effects: types.EmptyEffects(),
	}})

	e1 := &types.Var{Name: "e"}
	env.Bind("head", &types.Scheme{Vars: []string{"e"}, Type: &types.Func{
		Param: &types.List{Element: e1}, Return: optionType(e1), Effects: types.EmptyEffects(),
	}})

	f1 := &types.Var{Name: "f"}
	env.Bind("tail", &types.Scheme{Vars: []string{"f"}, Type: &types.Func{
		Param: &types.List{Element: f1}, Return: &types.List{Element: f1}, Effects: types.EmptyEffects(),
	}})

	g, h := &types.Var{Name: "g"}, &types.Var{Name: "h"}
	env.Bind("map", &types.Scheme{Vars: []string{"g", "h"}, Type: &types.Func{
		Param: &types.Func{Param: g, Return: h, Effects: types.EmptyEffects()},
		Return: &types.Func{
			Param: &types.List{Element: g}, Return: &types.List{Element: h}, Effects: types.EmptyEffects(),
		},
		Effects: types.EmptyEffects(),
	}})

	i := &types.Var{Name: "i"}
	env.Bind("filter", &types.Scheme{Vars: []string{"i"}, Type: &types.Func{
		Param: &types.Func{Param: i, Return: types.Bool, Effects: types.EmptyEffects()},
		Return: &types.Func{
			Param: &types.List{Element: i}, Return: &types.List{Element: i}, Effects: types.EmptyEffects(),
		},
		Effects: types.EmptyEffects(),
	}})

	j, k := &types.Var{Name: "j"}, &types.Var{Name: "k"}
	env.Bind("foldl", &types.Scheme{Vars: []string{"j", "k"}, Type: &types.Func{
		Param: &types.Func{Param: k, Return: &types.Func{Param: j, Return: k, Effects: types.EmptyEffects()}, Effects: types.EmptyEffects()},
		Return: &types.Func{
			Param: k,
			Return: &types.Func{
				Param: &types.List{Element: j}, Return: k, Effects: types.EmptyEffects(),
			},
			Effects: types.EmptyEffects(),
		},
		Effects: types.EmptyEffects(),
	}})

	// set : (r -> a) -> r -> a -> r, where the first argument is an
	// accessor `@field`; the accessor's own inferred type, a function from
	// the open record `{@field: a | rest}` to a, is what actually ties r's
	// field to a — set's signature just needs to agree with it
	// structurally (spec.md §4.E "set @field record value").
	rVar, aVar := &types.Var{Name: "r"}, &types.Var{Name: "a"}
	setScheme := &types.Scheme{
		Vars: []string{"r", "a"},
		Type: &types.Func{
			Param: &types.Func{Param: rVar, Return: aVar, Effects: types.EmptyEffects()},
			Return: &types.Func{
				Param: rVar,
				Return: &types.Func{
					Param: aVar, Return: rVar, Effects: types.EmptyEffects(),
				},
				Effects: types.EmptyEffects(),
			},
			Effects: types.EmptyEffects(),
		},
	}
	env.Bind("set", setScheme)

	return env
}
