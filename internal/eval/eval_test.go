package eval

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jethrolarson/noolang-sub000/internal/parser"
	"github.com/jethrolarson/noolang-sub000/internal/traits"
)

type fixedRand struct{ v float64 }

func (f fixedRand) Float64() float64 { return f.v }

func newEvaluator(t *testing.T) (*Evaluator, *Env, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	ev := New(traits.New(), &out, fixedRand{0.5})
	env := BaseEnv(ev)
	return ev, env, &out
}

func runValue(t *testing.T, src string) (Value, error) {
	t.Helper()
	ev, env, _ := newEvaluator(t)
	prog, err := parser.Parse(src)
	require.NoError(t, err)
	v, _, err := ev.EvaluateProgram(prog, env)
	return v, err
}

func TestEvalArithmetic(t *testing.T) {
	v, err := runValue(t, "1 + 2 * 3")
	require.NoError(t, err)
	assert.Equal(t, "7", v.String())
}

func TestEvalDivisionByZero(t *testing.T) {
	_, err := runValue(t, "1 / 0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Division by zero")
}

func TestEvalCurriedClosure(t *testing.T) {
	v, err := runValue(t, "add = fn x y => x + y; add 2 3")
	require.NoError(t, err)
	assert.Equal(t, Number(5), v)
}

func TestEvalIfDispatchesOnConstructor(t *testing.T) {
	v, err := runValue(t, "if True then 1 else 2")
	require.NoError(t, err)
	assert.Equal(t, Number(1), v)
}

func TestEvalRecordSetDoesNotMutateOriginal(t *testing.T) {
	v, err := runValue(t, `user = { @name "Alice", @age 30 }; set @age user 31; user |> @age`)
	require.NoError(t, err)
	assert.Equal(t, Number(30), v)
}

func TestEvalAccessorAppliesDirectlyAsFunction(t *testing.T) {
	v, err := runValue(t, `@name { @name "Alice" }`)
	require.NoError(t, err)
	assert.Equal(t, Str("Alice"), v)
}

func TestEvalMatchFirstCaseWins(t *testing.T) {
	v, err := runValue(t, "type Color = Red | Green | Blue; match Red with (Red => 1; Green => 2; Blue => 3)")
	require.NoError(t, err)
	assert.Equal(t, Number(1), v)
}

func TestEvalMatchDestructuresConstructorArgs(t *testing.T) {
	v, err := runValue(t, "type Option a = Some a | None; match Some 9 with (Some x => x; None => 0)")
	require.NoError(t, err)
	assert.Equal(t, Number(9), v)
}

func TestEvalOptionBindShortCircuitsOnNone(t *testing.T) {
	v, err := runValue(t, "type Option a = Some a | None; None |? (fn x => Some (x * 2))")
	require.NoError(t, err)
	assert.Equal(t, "None", v.String())
}

func TestEvalOptionBindUnwrapsSome(t *testing.T) {
	v, err := runValue(t, "type Option a = Some a | None; Some 5 |? (fn x => Some (x * 2))")
	require.NoError(t, err)
	assert.Equal(t, "Some 10", v.String())
}

func TestEvalMutationWritesThroughCell(t *testing.T) {
	v, err := runValue(t, "mut counter = 0; mut! counter = counter + 1; mut! counter = counter + 1; counter")
	require.NoError(t, err)
	assert.Equal(t, Number(2), v)
}

func TestEvalMutationOnUndeclaredNameIsRuntimeError(t *testing.T) {
	_, err := runValue(t, "x = 1; mut! x = 2")
	assert.Error(t, err)
}

func TestEvalListBuiltins(t *testing.T) {
	v, err := runValue(t, "[1, 2, 3] | map (fn x => x * 2) | filter (fn x => x > 2)")
	require.NoError(t, err)
	assert.Equal(t, "[4, 6]", v.String())
}

func TestEvalHeadOfEmptyListIsNone(t *testing.T) {
	v, err := runValue(t, "head []")
	require.NoError(t, err)
	assert.Equal(t, "None", v.String())
}

func TestEvalTupleDestructuring(t *testing.T) {
	v, err := runValue(t, "{a, b} = {1, 2}; a + b")
	require.NoError(t, err)
	assert.Equal(t, Number(3), v)
}

func TestDisplayUnquotesTopLevelString(t *testing.T) {
	assert.Equal(t, "hi", Display(Str("hi")))
	assert.Equal(t, `"hi"`, (&Tuple{Elements: []Value{Str("hi")}}).Elements[0].String())
}
