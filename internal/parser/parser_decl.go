package parser

import (
	"github.com/jethrolarson/noolang-sub000/internal/ast"
	"github.com/jethrolarson/noolang-sub000/internal/lexer"
	"github.com/jethrolarson/noolang-sub000/internal/types"
)

// statementParser is one item of a `statement (';' statement)*` program
// (spec.md §4.P). Declaration forms are tried before the bare-expression
// fallback; Choice's furthest-failure tracking means a malformed
// declaration still reports a sensible position even though every
// alternative backtracks fully.
func statementParser() Parser {
	return Choice(
		importStatementParser(),
		typeDefStatementParser(),
		constraintDefStatementParser(),
		implementDefStatementParser(),
		mutationStatementParser(),
		mutableDefStatementParser(),
		tupleDestructureStatementParser(),
		recordDestructureStatementParser(),
		definitionStatementParser(),
		exprParser(),
	)
}

func importStatementParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		v, rest, err := Seq(Token(lexer.Keyword, "import"), Token(lexer.String, ""))(in)
		if err != nil {
			return nil, in, err
		}
		parts := v.([]interface{})
		kwTok := parts[0].(lexer.Token)
		pathTok := parts[1].(lexer.Token)
		return ast.Expr(&ast.Import{
			Meta: ast.Meta{Span: spanFrom(toPos(kwTok.Start), toPos(pathTok.End))}, Path: pathTok.Value,
		}), rest, nil
	}
}

// typeDefStatementParser is `type T a b = Con1 t… | Con2 t… | …`.
func typeDefStatementParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		v, rest, err := Seq(
			Token(lexer.Keyword, "type"), Token(lexer.Identifier, ""),
			Many(lowerIdentParser()),
			Token(lexer.Operator, "="),
			SepBy(adtConstructorParser(), Token(lexer.Operator, "|")),
		)(in)
		if err != nil {
			return nil, in, err
		}
		parts := v.([]interface{})
		kwTok := parts[0].(lexer.Token)
		nameTok := parts[1].(lexer.Token)
		paramToks := parts[2].([]interface{})
		params := make([]string, len(paramToks))
		for i, p := range paramToks {
			params[i] = p.(lexer.Token).Value
		}
		consV := parts[4].([]interface{})
		cons := make([]ast.ConstructorDef, len(consV))
		for i, c := range consV {
			cons[i] = c.(ast.ConstructorDef)
		}
		return ast.Expr(&ast.TypeDefinition{
			Meta:         ast.Meta{Span: spanFrom(toPos(kwTok.Start), toPos(nameTok.End))},
			Name:         nameTok.Value,
			TypeParams:   params,
			Constructors: cons,
		}), rest, nil
	}
}

func lowerIdentParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		cur := in.Cur()
		if cur.Kind != lexer.Identifier || !isLowerIdent(cur.Value) {
			return nil, in, failAt(in, "expected a lowercase type parameter")
		}
		return cur, in.Advance(), nil
	}
}

func adtConstructorParser() Parser {
	return Map(Seq(Token(lexer.Identifier, ""), Many(typeAtomParser())), func(v interface{}) interface{} {
		parts := v.([]interface{})
		nameTok := parts[0].(lexer.Token)
		argItems := parts[1].([]interface{})
		args := make([]types.Type, len(argItems))
		for i, a := range argItems {
			args[i] = a.(typeResult).t
		}
		return ast.ConstructorDef{Name: nameTok.Value, Args: args}
	})
}

// constraintDefStatementParser is `constraint C a ( name : type; … )`.
func constraintDefStatementParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		v, rest, err := Seq(
			Token(lexer.Keyword, "constraint"), Token(lexer.Identifier, ""), Token(lexer.Identifier, ""),
			Token(lexer.Punctuation, "("),
			SepBy(functionSigParser(), Token(lexer.Punctuation, ";")),
			Token(lexer.Punctuation, ")"),
		)(in)
		if err != nil {
			return nil, in, err
		}
		parts := v.([]interface{})
		kwTok := parts[0].(lexer.Token)
		nameTok := parts[1].(lexer.Token)
		typeParamTok := parts[2].(lexer.Token)
		closeTok := parts[5].(lexer.Token)
		sigsV := parts[4].([]interface{})
		sigs := make([]ast.FunctionSig, len(sigsV))
		for i, s := range sigsV {
			sigs[i] = s.(ast.FunctionSig)
		}
		return ast.Expr(&ast.ConstraintDefinition{
			Meta:      ast.Meta{Span: spanFrom(toPos(kwTok.Start), toPos(closeTok.End))},
			Name:      nameTok.Value,
			TypeParam: typeParamTok.Value,
			Functions: sigs,
		}), rest, nil
	}
}

func functionSigParser() Parser {
	return Map(Seq(Token(lexer.Identifier, ""), Token(lexer.Punctuation, ":"), Lazy(typeExprParser)), func(v interface{}) interface{} {
		parts := v.([]interface{})
		return ast.FunctionSig{Name: parts[0].(lexer.Token).Value, Type: parts[2].(typeResult).t}
	})
}

// implementDefStatementParser is
// `implement C (T a b) ( name = expr; … )` with optional `given <constraintExpr>`.
func implementDefStatementParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		v, rest, err := Seq(
			Token(lexer.Keyword, "implement"), Token(lexer.Identifier, ""),
			Token(lexer.Punctuation, "("), Lazy(typeExprParser), Token(lexer.Punctuation, ")"),
			Optional(Seq(Token(lexer.Keyword, "given"), Lazy(constraintExprParser))),
			Token(lexer.Punctuation, "("),
			SepBy(implFuncParser(), Token(lexer.Punctuation, ";")),
			Token(lexer.Punctuation, ")"),
		)(in)
		if err != nil {
			return nil, in, err
		}
		parts := v.([]interface{})
		kwTok := parts[0].(lexer.Token)
		nameTok := parts[1].(lexer.Token)
		head := parts[3].(typeResult).t
		givenV := parts[5]
		closeTok := parts[8].(lexer.Token)
		fnsV := parts[7].([]interface{})
		fns := make([]ast.ImplFunc, len(fnsV))
		for i, f := range fnsV {
			fns[i] = f.(ast.ImplFunc)
		}
		var given types.Constraint
		if givenV != nil {
			given = givenV.([]interface{})[1].(constraintResult).c
		}
		return ast.Expr(&ast.ImplementDefinition{
			Meta:           ast.Meta{Span: spanFrom(toPos(kwTok.Start), toPos(closeTok.End))},
			ConstraintName: nameTok.Value,
			Head:           head,
			Given:          given,
			Functions:      fns,
		}), rest, nil
	}
}

func implFuncParser() Parser {
	return Map(Seq(Token(lexer.Identifier, ""), Token(lexer.Operator, "="), Lazy(exprParser)), func(v interface{}) interface{} {
		parts := v.([]interface{})
		return ast.ImplFunc{Name: parts[0].(lexer.Token).Value, Body: parts[2].(ast.Expr)}
	})
}

// mutableDefStatementParser is `mut name = expr`.
func mutableDefStatementParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		v, rest, err := Seq(Token(lexer.Keyword, "mut"), Token(lexer.Identifier, ""), Token(lexer.Operator, "="), Lazy(exprParser))(in)
		if err != nil {
			return nil, in, err
		}
		parts := v.([]interface{})
		kwTok := parts[0].(lexer.Token)
		name := parts[1].(lexer.Token).Value
		value := parts[3].(ast.Expr)
		return ast.Expr(&ast.MutableDefinition{
			Meta: ast.Meta{Span: spanFrom(toPos(kwTok.Start), value.Position().End)}, Name: name, Value: value,
		}), rest, nil
	}
}

// mutationStatementParser is `mut! name = expr` (the lexer already folds
// `mut` immediately followed by `!` into a single "mut!" keyword token).
func mutationStatementParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		v, rest, err := Seq(Token(lexer.Keyword, "mut!"), Token(lexer.Identifier, ""), Token(lexer.Operator, "="), Lazy(exprParser))(in)
		if err != nil {
			return nil, in, err
		}
		parts := v.([]interface{})
		kwTok := parts[0].(lexer.Token)
		name := parts[1].(lexer.Token).Value
		value := parts[3].(ast.Expr)
		return ast.Expr(&ast.Mutation{
			Meta: ast.Meta{Span: spanFrom(toPos(kwTok.Start), value.Position().End)}, Name: name, Value: value,
		}), rest, nil
	}
}

// tupleDestructureStatementParser is `{ a, b, … } = expr` (≥2 bare
// names — a single name in braces isn't distinguishable from a group
// and is left to the expression grammar).
func tupleDestructureStatementParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		v, rest, err := Seq(
			Token(lexer.Punctuation, "{"), Token(lexer.Identifier, ""),
			Many1(Seq(Token(lexer.Punctuation, ","), Token(lexer.Identifier, ""))),
			Token(lexer.Punctuation, "}"), Token(lexer.Operator, "="), Lazy(exprParser),
		)(in)
		if err != nil {
			return nil, in, err
		}
		parts := v.([]interface{})
		openTok := parts[0].(lexer.Token)
		first := parts[1].(lexer.Token).Value
		restToks := parts[2].([]interface{})
		names := []string{first}
		for _, r := range restToks {
			pair := r.([]interface{})
			names = append(names, pair[1].(lexer.Token).Value)
		}
		value := parts[5].(ast.Expr)
		return ast.Expr(&ast.TupleDestructuring{
			Meta: ast.Meta{Span: spanFrom(toPos(openTok.Start), value.Position().End)}, Names: names, Value: value,
		}), rest, nil
	}
}

// recordDestructureStatementParser is `{ @a, @b, … } = expr`; each bound
// local name equals the field name.
func recordDestructureStatementParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		v, rest, err := Seq(
			Token(lexer.Punctuation, "{"),
			SepBy(Token(lexer.Accessor, ""), Token(lexer.Punctuation, ",")),
			Token(lexer.Punctuation, "}"), Token(lexer.Operator, "="), Lazy(exprParser),
		)(in)
		if err != nil {
			return nil, in, err
		}
		parts := v.([]interface{})
		openTok := parts[0].(lexer.Token)
		fieldToks := parts[1].([]interface{})
		if len(fieldToks) == 0 {
			return nil, in, failAt(in, "expected at least one @field in a record destructuring")
		}
		fields := map[string]string{}
		order := make([]string, len(fieldToks))
		for i, f := range fieldToks {
			name := f.(lexer.Token).Value
			fields[name] = name
			order[i] = name
		}
		value := parts[4].(ast.Expr)
		return ast.Expr(&ast.RecordDestructuring{
			Meta: ast.Meta{Span: spanFrom(toPos(openTok.Start), value.Position().End)}, Fields: fields, Order: order, Value: value,
		}), rest, nil
	}
}

// definitionStatementParser is the plain `name = expr` binding form.
func definitionStatementParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		v, rest, err := Seq(Token(lexer.Identifier, ""), Token(lexer.Operator, "="), Lazy(exprParser))(in)
		if err != nil {
			return nil, in, err
		}
		parts := v.([]interface{})
		nameTok := parts[0].(lexer.Token)
		value := parts[2].(ast.Expr)
		return ast.Expr(&ast.Definition{
			Meta: ast.Meta{Span: spanFrom(toPos(nameTok.Start), value.Position().End)}, Name: nameTok.Value, Value: value,
		}), rest, nil
	}
}
