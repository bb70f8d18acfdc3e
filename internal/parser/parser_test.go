package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jethrolarson/noolang-sub000/internal/ast"
)

// These exercise Parse directly against the grammar in spec.md §4.P,
// one level below the full pipeline tests in internal/module.

func TestParseDefinitionAndApplication(t *testing.T) {
	prog, err := Parse("add = fn x y => x + y; add 2 3")
	require.NoError(t, err)
	require.Len(t, prog.Statements, 2)

	def, ok := prog.Statements[0].(*ast.Definition)
	require.True(t, ok, "want *ast.Definition, got %T", prog.Statements[0])
	assert.Equal(t, "add", def.Name)

	fn, ok := def.Value.(*ast.Function)
	require.True(t, ok, "want *ast.Function, got %T", def.Value)
	assert.Equal(t, []string{"x", "y"}, fn.Params)

	body, ok := fn.Body.(*ast.Binary)
	require.True(t, ok, "want *ast.Binary, got %T", fn.Body)
	assert.Equal(t, "+", body.Op)

	app, ok := prog.Statements[1].(*ast.Application)
	require.True(t, ok, "want *ast.Application, got %T", prog.Statements[1])
	fnVar, ok := app.Fn.(*ast.Variable)
	require.True(t, ok)
	assert.Equal(t, "add", fnVar.Name)
	require.Len(t, app.Args, 2)
}

func TestParseIfThenElse(t *testing.T) {
	prog, err := Parse("if x == 0 then 1 else 2")
	require.NoError(t, err)
	require.Len(t, prog.Statements, 1)

	ifExpr, ok := prog.Statements[0].(*ast.If)
	require.True(t, ok, "want *ast.If, got %T", prog.Statements[0])
	cond, ok := ifExpr.Cond.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, "==", cond.Op)
}

func TestParseOperatorPrecedence(t *testing.T) {
	// `*` binds tighter than `+`, so this parses as `1 + (2 * 3)`.
	prog, err := Parse("1 + 2 * 3")
	require.NoError(t, err)
	require.Len(t, prog.Statements, 1)

	top, ok := prog.Statements[0].(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, "+", top.Op)

	right, ok := top.Right.(*ast.Binary)
	require.True(t, ok, "want nested *ast.Binary on the right, got %T", top.Right)
	assert.Equal(t, "*", right.Op)
}

func TestParseRecordLiteral(t *testing.T) {
	prog, err := Parse(`{ @name "Alice", @age 30 }`)
	require.NoError(t, err)
	rec, ok := prog.Statements[0].(*ast.Record)
	require.True(t, ok, "want *ast.Record, got %T", prog.Statements[0])
	require.Len(t, rec.Fields, 2)
	assert.Equal(t, "name", rec.Fields[0].Name)
	assert.Equal(t, "age", rec.Fields[1].Name)
}

func TestParseUnitIsEmptyBraces(t *testing.T) {
	prog, err := Parse("{}")
	require.NoError(t, err)
	_, ok := prog.Statements[0].(*ast.Unit)
	assert.True(t, ok, "want *ast.Unit, got %T", prog.Statements[0])
}

func TestParseTupleRequiresTwoOrMoreElements(t *testing.T) {
	prog, err := Parse("{ 1, 2, 3 }")
	require.NoError(t, err)
	tup, ok := prog.Statements[0].(*ast.Tuple)
	require.True(t, ok, "want *ast.Tuple, got %T", prog.Statements[0])
	assert.Len(t, tup.Elements, 3)
}

func TestParseListLiteral(t *testing.T) {
	prog, err := Parse("[1, 2, 3]")
	require.NoError(t, err)
	list, ok := prog.Statements[0].(*ast.List)
	require.True(t, ok, "want *ast.List, got %T", prog.Statements[0])
	assert.Len(t, list.Elements, 3)
}

func TestParseStandaloneAccessor(t *testing.T) {
	prog, err := Parse("@name")
	require.NoError(t, err)
	acc, ok := prog.Statements[0].(*ast.Accessor)
	require.True(t, ok, "want *ast.Accessor, got %T", prog.Statements[0])
	assert.Equal(t, "name", acc.Field)
}

func TestParseTypeDefinitionADT(t *testing.T) {
	prog, err := Parse("type Color = Red | Green | Blue")
	require.NoError(t, err)
	def, ok := prog.Statements[0].(*ast.TypeDefinition)
	require.True(t, ok, "want *ast.TypeDefinition, got %T", prog.Statements[0])
	assert.Equal(t, "Color", def.Name)
	require.Len(t, def.Constructors, 3)
	assert.Equal(t, "Red", def.Constructors[0].Name)
	assert.Equal(t, "Blue", def.Constructors[2].Name)
}

func TestParseMatchExpression(t *testing.T) {
	prog, err := Parse("match Red with (Red => 1; Green => 2; Blue => 3)")
	require.NoError(t, err)
	m, ok := prog.Statements[0].(*ast.Match)
	require.True(t, ok, "want *ast.Match, got %T", prog.Statements[0])
	require.Len(t, m.Cases, 3)
}

func TestParseRejectsUnconsumedTrailingTokens(t *testing.T) {
	_, err := Parse("1 + )")
	assert.Error(t, err)
}

func TestParseMutAndMutBang(t *testing.T) {
	prog, err := Parse("mut counter = 0; mut! counter = counter + 1")
	require.NoError(t, err)
	require.Len(t, prog.Statements, 2)
	_, ok := prog.Statements[0].(*ast.MutableDefinition)
	assert.True(t, ok, "want *ast.MutableDefinition, got %T", prog.Statements[0])
	_, ok = prog.Statements[1].(*ast.Mutation)
	assert.True(t, ok, "want *ast.Mutation, got %T", prog.Statements[1])
}
