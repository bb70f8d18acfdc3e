package traits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jethrolarson/noolang-sub000/internal/ast"
	"github.com/jethrolarson/noolang-sub000/internal/types"
)

func TestDefineConstraintAndLookup(t *testing.T) {
	r := New()
	r.DefineConstraint(&ConstraintDef{
		Name:      "Collection",
		TypeParam: "a",
		Functions: []ast.FunctionSig{{Name: "length"}},
	})

	def, ok := r.LookupConstraint("Collection")
	require.True(t, ok)
	assert.Equal(t, "a", def.TypeParam)
}

func TestAddImplementationIndexesByHeadConstructor(t *testing.T) {
	r := New()
	r.AddImplementation(&Implementation{
		ConstraintName: "Collection",
		Head:           &types.List{Element: &types.Var{Name: "a"}},
		Functions:      map[string]ast.Expr{},
	})

	found := r.Lookup("Collection", &types.List{Element: types.Float})
	require.Len(t, found, 1)
	assert.Equal(t, "List", found[0].HeadConstruct)

	assert.Empty(t, r.Lookup("Collection", types.Str))
}

func TestLookupByHeadMatchesRawConstructorName(t *testing.T) {
	r := New()
	r.AddImplementation(&Implementation{
		ConstraintName: "Show",
		Head:           &types.Variant{Name: "Option", Args: []types.Type{&types.Var{Name: "a"}}},
	})

	found := r.LookupByHead("Show", "Option")
	assert.Len(t, found, 1)
}

func TestAllImplementationsReturnsEveryHeadSorted(t *testing.T) {
	r := New()
	r.AddImplementation(&Implementation{ConstraintName: "Collection", Head: types.Str})
	r.AddImplementation(&Implementation{ConstraintName: "Collection", Head: &types.List{Element: types.Float}})
	r.AddImplementation(&Implementation{ConstraintName: "Other", Head: types.Float})

	all := r.AllImplementations("Collection")
	require.Len(t, all, 2)
	assert.Equal(t, "List", all[0].HeadConstruct)
	assert.Equal(t, "String", all[1].HeadConstruct)
}

func TestCloneIsIndependentOfOriginal(t *testing.T) {
	r := New()
	r.DefineConstraint(&ConstraintDef{Name: "Eq", TypeParam: "a"})
	r.AddImplementation(&Implementation{ConstraintName: "Eq", Head: types.Float})

	clone := r.Clone()
	clone.AddImplementation(&Implementation{ConstraintName: "Eq", Head: types.Str})

	assert.Len(t, r.Lookup("Eq", types.Float), 1)
	assert.Empty(t, r.Lookup("Eq", types.Str), "original registry must not see implementations added to the clone")
	assert.Len(t, clone.Lookup("Eq", types.Str), 1)
}

func TestLookupNarrowsByGivenClause(t *testing.T) {
	r := New()
	r.AddImplementation(&Implementation{ConstraintName: "Pretty", Head: types.Float})
	r.AddImplementation(&Implementation{
		ConstraintName: "Show",
		Head:           &types.List{Element: &types.Var{Name: "a"}},
		Given:          &types.Is{Var: "a", Class: "Pretty"},
	})
	r.AddImplementation(&Implementation{
		ConstraintName: "Show",
		Head:           &types.List{Element: &types.Var{Name: "b"}},
	})

	// Float elements satisfy the gated candidate's given, so both survive
	// — the caller reports that as an ambiguity.
	assert.Len(t, r.Lookup("Show", &types.List{Element: types.Float}), 2)

	// String elements fail `a is Pretty`; only the unconditional
	// implementation is left.
	found := r.Lookup("Show", &types.List{Element: types.Str})
	require.Len(t, found, 1)
	assert.Nil(t, found[0].Given)
}

func TestLookupGivenOnUnresolvedElementIsNotRefuted(t *testing.T) {
	r := New()
	r.AddImplementation(&Implementation{
		ConstraintName: "Show",
		Head:           &types.List{Element: &types.Var{Name: "a"}},
		Given:          &types.Is{Var: "a", Class: "Pretty"},
	})

	// A still-polymorphic element can't fail the given yet; the candidate
	// stays viable and the evaluator re-checks at dispatch time.
	assert.Len(t, r.Lookup("Show", &types.List{Element: &types.Var{Name: "e"}}), 1)
}

func TestAmbiguousAndNoMatchErrorMessages(t *testing.T) {
	ambiguous := &AmbiguousError{Constraint: "Eq", Head: "Float", Count: 2}
	assert.Contains(t, ambiguous.Error(), "Eq")
	assert.Contains(t, ambiguous.Error(), "Float")

	noMatch := &NoMatchError{Constraint: "Show", Head: "Widget"}
	assert.Contains(t, noMatch.Error(), "no implementation")
}
