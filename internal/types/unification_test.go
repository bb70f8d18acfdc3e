package types

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnifyPrimitivesMatch(t *testing.T) {
	s := NewSubst()
	require.NoError(t, Unify(Float, Float, s))
	require.NoError(t, Unify(Str, Str, s))
}

func TestUnifyPrimitivesMismatch(t *testing.T) {
	s := NewSubst()
	err := Unify(Float, Bool, s)
	require.Error(t, err)
	assert.IsType(t, &UnifyError{}, err)
}

func TestUnifyVariableBindsAndApplies(t *testing.T) {
	s := NewSubst()
	a := &Var{Name: "a"}
	require.NoError(t, Unify(a, Float, s))

	got := s.Apply(a)
	assert.Equal(t, Float, got)
}

func TestUnifyOccursCheckFails(t *testing.T) {
	s := NewSubst()
	a := &Var{Name: "a"}
	listA := &List{Element: a}

	err := Unify(a, listA, s)
	require.Error(t, err)
	assert.IsType(t, &OccursError{}, err)
}

func TestUnifyFunctionsUnifyEffectsAsSubset(t *testing.T) {
	s := NewSubst()
	f1 := &Func{Param: Float, Return: Float, Effects: NewEffects(Write)}
	f2 := &Func{Param: Float, Return: Float, Effects: NewEffects(Write, Log)}

	require.NoError(t, Unify(f1, f2, s))
}

func TestUnifyVariantsRequireMatchingNameAndArity(t *testing.T) {
	s := NewSubst()
	opt1 := &Variant{Name: "Option", Args: []Type{Float}}
	opt2 := &Variant{Name: "Option", Args: []Type{Float}}
	require.NoError(t, Unify(opt1, opt2, s))

	mismatched := &Variant{Name: "Option", Args: []Type{Str}}
	require.Error(t, Unify(opt1, mismatched, s))

	wrongName := &Variant{Name: "Result", Args: []Type{Float}}
	require.Error(t, Unify(opt1, wrongName, s))
}

func TestUnifyRecordsExactFieldsUnifyPairwise(t *testing.T) {
	s := NewSubst()
	r1 := &Record{
		Fields: map[string]Type{"name": Str, "age": Float},
		Order:  []string{"name", "age"},
	}
	r2 := &Record{
		Fields: map[string]Type{"name": Str, "age": Float},
		Order:  []string{"name", "age"},
	}
	require.NoError(t, Unify(r1, r2, s))
}

func TestUnifyRecordsMissingFieldFails(t *testing.T) {
	s := NewSubst()
	r1 := &Record{Fields: map[string]Type{"name": Str}, Order: []string{"name"}}
	r2 := &Record{Fields: map[string]Type{"age": Float}, Order: []string{"age"}}
	require.Error(t, Unify(r1, r2, s))
}

func TestUnifyRecordWithRowVariableBindsResidual(t *testing.T) {
	s := NewSubst()
	row := &Var{Name: "r"}
	withField := &Record{
		Fields: map[string]Type{"name": Str},
		Order:  []string{"name"},
		Row:    row,
	}
	concrete := &Record{
		Fields: map[string]Type{"name": Str, "age": Float},
		Order:  []string{"name", "age"},
	}
	require.NoError(t, Unify(withField, concrete, s))

	resolvedRow := s.Apply(row)
	resRec, ok := resolvedRow.(*Record)
	require.True(t, ok, "row variable should resolve to the residual record, got %T", resolvedRow)
	assert.Contains(t, resRec.Fields, "age")
	assert.NotContains(t, resRec.Fields, "name")
}

func TestUnknownUnifiesWithAnythingAndDisappears(t *testing.T) {
	s := NewSubst()
	require.NoError(t, Unify(Unknown, Float, s))
	require.NoError(t, Unify(&List{Element: Unknown}, &List{Element: Str}, s))
}

func TestSubstApplyIsIdempotentAfterComposition(t *testing.T) {
	s := NewSubst()
	a := &Var{Name: "a"}
	b := &Var{Name: "b"}
	s.Bind("a", b)
	s.Bind("b", Float)

	got := s.Apply(a)
	assert.Equal(t, Float, got, "chained variable bindings should resolve transitively")

	again := s.Apply(got)
	assert.Equal(t, got, again, "applying twice must be a no-op (idempotent substitution)")
}

func TestEffectSetUnionAndSuperset(t *testing.T) {
	a := NewEffects(Read, Log)
	b := NewEffects(Write)
	union := a.Union(b)

	assert.True(t, union.Has(Read))
	assert.True(t, union.Has(Write))
	assert.True(t, union.IsSupersetOf(a))
	assert.True(t, union.IsSupersetOf(b))
	assert.False(t, a.IsSupersetOf(union))
}

func TestCurriedFuncBuildsRightAssociativeChain(t *testing.T) {
	fn := CurriedFunc([]Type{Float, Str}, Bool, NewEffects(Write))

	outer, ok := fn.(*Func)
	require.True(t, ok)
	if diff := cmp.Diff(Float.String(), outer.Param.String()); diff != "" {
		t.Errorf("outer param mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, outer.Effects.Has(Write), "effects attach only to the outermost arrow")

	inner, ok := outer.Return.(*Func)
	require.True(t, ok)
	assert.Equal(t, Str.String(), inner.Param.String())
	assert.True(t, inner.Effects.Empty(), "inner arrows carry no effects of their own")
	assert.Equal(t, Bool, inner.Return)
}
