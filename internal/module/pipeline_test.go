package module

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jethrolarson/noolang-sub000/internal/eval"
)

// run is a test helper that drives the whole source->lex->parse->check
// ->evaluate pipeline the way cmd/noolang's evaluateSource (and
// Loader.EvalString, which both now share) does, against a fresh Loader
// so test cases never see another test's prelude/registry state.
func run(t *testing.T, src string) (string, string, error) {
	t.Helper()
	val, typ, _, err := runCapturingOutput(t, src)
	return val, typ, err
}

func runCapturingOutput(t *testing.T, src string) (string, string, string, error) {
	t.Helper()
	var out bytes.Buffer
	loader, err := New(&out, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	typ, _, val, err := loader.EvalString(src, "")
	if err != nil {
		return "", "", out.String(), err
	}
	return eval.Display(val), typ.String(), out.String(), nil
}

// These mirror spec.md §8's "Seed scenarios" table.

func TestSeedArithmeticPrecedence(t *testing.T) {
	val, typ, err := run(t, "1 + 2 * 3")
	require.NoError(t, err)
	assert.Equal(t, "7", val)
	assert.Equal(t, "Float", typ)
}

func TestSeedCurriedFunctionApplication(t *testing.T) {
	val, _, err := run(t, "add = fn x y => x + y; add 2 3")
	require.NoError(t, err)
	assert.Equal(t, "5", val)
}

func TestSeedMapOverList(t *testing.T) {
	val, _, err := run(t, "[1, 2, 3] | map (fn x => x * 2)")
	require.NoError(t, err)
	assert.Equal(t, "[2, 4, 6]", val)
}

func TestSeedRecursiveFactorial(t *testing.T) {
	val, _, err := run(t, "factorial = fn n => if n == 0 then 1 else n * factorial (n - 1); factorial 5")
	require.NoError(t, err)
	assert.Equal(t, "120", val)
}

func TestSeedOptionBindPipe(t *testing.T) {
	some, _, err := run(t, "Some 5 |? (fn x => Some (x * 2))")
	require.NoError(t, err)
	assert.Equal(t, "Some 10", some)

	none, _, err := run(t, "None |? (fn x => Some (x * 2))")
	require.NoError(t, err)
	assert.Equal(t, "None", none)
}

func TestSeedMatchOnADT(t *testing.T) {
	val, _, err := run(t, "type Color = Red | Green | Blue; match Red with (Red => 1; Green => 2; Blue => 3)")
	require.NoError(t, err)
	assert.Equal(t, "1", val)
}

func TestSeedPrintYieldsEffectAndValue(t *testing.T) {
	_, _, stdout, err := runCapturingOutput(t, "print 42")
	require.NoError(t, err)
	assert.Contains(t, stdout, "42")
}

func TestSeedImmutableRecordUpdate(t *testing.T) {
	val, _, err := run(t, `user = { @name "Alice", @age 30 }; set @age user 31 |> @age`)
	require.NoError(t, err)
	assert.Equal(t, "31", val)

	original, _, err := run(t, `user = { @name "Alice", @age 30 }; set @age user 31; user |> @age`)
	require.NoError(t, err)
	assert.Equal(t, "30", original, "set must not mutate the original record")
}

// Boundary behaviors (spec.md §8).

func TestBoundaryEmptyListHeadIsNone(t *testing.T) {
	val, _, err := run(t, "head []")
	require.NoError(t, err)
	assert.Equal(t, "None", val)
}

func TestBoundaryDivisionByZero(t *testing.T) {
	_, _, err := run(t, "1 / 0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Division by zero")
}

func TestBoundaryUndefinedVariableIsTypeError(t *testing.T) {
	_, _, err := run(t, "undefinedName")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Undefined variable")
}

// Round-trips (spec.md §8).

func TestRoundTripIdentityFunction(t *testing.T) {
	val, _, err := run(t, "(fn x => x) 42")
	require.NoError(t, err)
	assert.Equal(t, "42", val)
}

func TestRoundTripSetThenGetSameField(t *testing.T) {
	val, _, err := run(t, `r = { @f 1, @g 2 }; set @f r 9 |> @f`)
	require.NoError(t, err)
	assert.Equal(t, "9", val)
}

func TestRoundTripSetDifferentFieldLeavesOthersAlone(t *testing.T) {
	val, _, err := run(t, `r = { @f 1, @g 2 }; set @g r 9 |> @f`)
	require.NoError(t, err)
	assert.Equal(t, "1", val)
}

// Conditional (given-gated) trait implementations, spec.md §4.R/§4.E.

func TestTraitDispatchHonorsGivenClause(t *testing.T) {
	src := `constraint Pretty a ( pretty : a -> Float );
implement Pretty (Float) ( pretty = fn x => x );
constraint Describe d ( describe : d -> Float );
implement Describe (List a) given a is Pretty ( describe = fn xs => length xs );
describe [1, 2, 3]`
	val, _, err := run(t, src)
	require.NoError(t, err)
	assert.Equal(t, "3", val)
}

func TestTraitDispatchRejectsUnsatisfiedGiven(t *testing.T) {
	src := `constraint Pretty a ( pretty : a -> Float );
implement Pretty (Float) ( pretty = fn x => x );
constraint Describe d ( describe : d -> Float );
implement Describe (List a) given a is Pretty ( describe = fn xs => length xs );
describe ["x"]`
	_, _, err := run(t, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Describe")
}

func TestTraitDispatchFallsToUnconditionalWhenGivenFails(t *testing.T) {
	src := `constraint Pretty a ( pretty : a -> Float );
implement Pretty (Float) ( pretty = fn x => x );
constraint Describe d ( describe : d -> Float );
implement Describe (List a) given a is Pretty ( describe = fn xs => 1 );
implement Describe (List b) ( describe = fn xs => 2 );
describe ["x"]`
	val, _, err := run(t, src)
	require.NoError(t, err)
	assert.Equal(t, "2", val, "the gated implementation must be dropped when its given fails")
}

func TestTraitDispatchBothViableIsAmbiguous(t *testing.T) {
	src := `constraint Pretty a ( pretty : a -> Float );
implement Pretty (Float) ( pretty = fn x => x );
constraint Describe d ( describe : d -> Float );
implement Describe (List a) given a is Pretty ( describe = fn xs => 1 );
implement Describe (List b) ( describe = fn xs => 2 );
describe [1]`
	_, _, err := run(t, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple implementations")
}

func TestNumericEqualityAcrossIntLikeAndFractional(t *testing.T) {
	val, _, err := run(t, "5 == 5.0")
	require.NoError(t, err)
	assert.Equal(t, "True", val)
}

func TestDivisionProducesFractionalResult(t *testing.T) {
	val, _, err := run(t, "5 / 2")
	require.NoError(t, err)
	assert.Equal(t, "2.5", val)
}
