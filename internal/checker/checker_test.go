package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jethrolarson/noolang-sub000/internal/parser"
	"github.com/jethrolarson/noolang-sub000/internal/traits"
	"github.com/jethrolarson/noolang-sub000/internal/types"
)

// typeOf parses and type-checks src against a fresh Checker + BaseEnv,
// returning the final statement's resolved type and effects.
func typeOf(t *testing.T, src string) (types.Type, types.EffectSet, error) {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err)
	c := New(traits.New())
	return c.CheckProgram(prog, BaseEnv())
}

func TestInferArithmeticIsFloat(t *testing.T) {
	ty, eff, err := typeOf(t, "1 + 2 * 3")
	require.NoError(t, err)
	assert.Equal(t, "Float", ty.String())
	assert.True(t, eff.Empty())
}

func TestInferIfUnifiesBranches(t *testing.T) {
	ty, _, err := typeOf(t, "if True then 1 else 2")
	require.NoError(t, err)
	assert.Equal(t, "Float", ty.String())
}

func TestInferIfRejectsMismatchedBranches(t *testing.T) {
	_, _, err := typeOf(t, `if True then 1 else "x"`)
	assert.Error(t, err)
}

func TestInferAccessorIsHasFieldFunction(t *testing.T) {
	ty, _, err := typeOf(t, `@name { @name "Alice", @age 30 }`)
	require.NoError(t, err)
	assert.Equal(t, "String", ty.String())
}

func TestInferRecursiveDefinitionTypeChecks(t *testing.T) {
	ty, _, err := typeOf(t, "factorial = fn n => if n == 0 then 1 else n * factorial (n - 1); factorial 5")
	require.NoError(t, err)
	assert.Equal(t, "Float", ty.String())
}

func TestInferListUnifiesElements(t *testing.T) {
	ty, _, err := typeOf(t, "[1, 2, 3]")
	require.NoError(t, err)
	assert.Equal(t, "List Float", ty.String())
}

func TestInferListRejectsMixedElementTypes(t *testing.T) {
	_, _, err := typeOf(t, `[1, "two"]`)
	assert.Error(t, err)
}

func TestInferPrintCarriesWriteEffect(t *testing.T) {
	_, eff, err := typeOf(t, "print 42")
	require.NoError(t, err)
	assert.True(t, eff.Has(types.Write))
}

func TestInferMutationCarriesStateEffect(t *testing.T) {
	_, eff, err := typeOf(t, "mut x = 1; mut! x = 2")
	require.NoError(t, err)
	assert.True(t, eff.Has(types.State))
}

func TestInferMutationOnUndeclaredNameIsError(t *testing.T) {
	_, _, err := typeOf(t, "x = 1; mut! x = 2")
	assert.Error(t, err)
}

func TestInferUndefinedVariableMessage(t *testing.T) {
	_, _, err := typeOf(t, "doesNotExist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Undefined variable: doesNotExist")
}

func TestInferMatchOnADTIsExhaustive(t *testing.T) {
	ty, _, err := typeOf(t, "type Color = Red | Green | Blue; match Red with (Red => 1; Green => 2; Blue => 3)")
	require.NoError(t, err)
	assert.Equal(t, "Float", ty.String())
}

func TestInferMatchMissingConstructorIsError(t *testing.T) {
	_, _, err := typeOf(t, "type Color = Red | Green | Blue; match Red with (Red => 1; Green => 2)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Blue")
}

func TestInferMatchWithWildcardIsExhaustive(t *testing.T) {
	ty, _, err := typeOf(t, "type Color = Red | Green | Blue; match Red with (Red => 1; _ => 0)")
	require.NoError(t, err)
	assert.Equal(t, "Float", ty.String())
}

func TestGeneralizationAllowsTwoDistinctInstantiations(t *testing.T) {
	// A polymorphic identity used at two different types must not force
	// those types to unify with each other (spec.md §8 invariant 7).
	ty, _, err := typeOf(t, `id = fn x => x; { id 1, id "s" }`)
	require.NoError(t, err)
	assert.Equal(t, "{Float, String}", ty.String())
}
