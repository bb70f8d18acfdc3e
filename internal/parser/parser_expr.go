package parser

import (
	"strconv"

	"github.com/jethrolarson/noolang-sub000/internal/ast"
	"github.com/jethrolarson/noolang-sub000/internal/lexer"
)

// anyOperator matches an Operator token whose value is one of values.
func anyOperator(values ...string) Parser {
	parsers := make([]Parser, len(values))
	for i, v := range values {
		parsers[i] = Token(lexer.Operator, v)
	}
	return Choice(parsers...)
}

func opToken(v interface{}) string { return v.(lexer.Token).Value }

func buildBinary(left, op, right interface{}) interface{} {
	l := left.(ast.Expr)
	r := right.(ast.Expr)
	return ast.Expr(&ast.Binary{
		Meta: ast.Meta{Span: spanFrom(l.Position().Start, r.Position().End)},
		Op:   opToken(op),
		Left: l, Right: r,
	})
}

// exprParser is the full expression grammar's entry point.
func exprParser() Parser { return whereExprParser() }

// whereExprParser wraps the ascription level with an optional trailing
// `where (def; def; …)` clause (spec.md §3/§4.P).
func whereExprParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		main, rest, err := ascriptionExprParser()(in)
		if err != nil {
			return nil, in, err
		}
		wv, rest2, err := Optional(Seq(
			Token(lexer.Keyword, "where"),
			Token(lexer.Punctuation, "("),
			SepBy(Lazy(statementParser), Token(lexer.Punctuation, ";")),
			Token(lexer.Punctuation, ")"),
		))(rest)
		if err != nil {
			return nil, in, err
		}
		if wv == nil {
			return main, rest2, nil
		}
		parts := wv.([]interface{})
		defItems := parts[2].([]interface{})
		defs := make([]ast.Expr, len(defItems))
		for i, d := range defItems {
			defs[i] = d.(ast.Expr)
		}
		mainExpr := main.(ast.Expr)
		closeTok := parts[3].(lexer.Token)
		return ast.Expr(&ast.Where{
			Meta:        ast.Meta{Span: spanFrom(mainExpr.Position().Start, toPos(closeTok.End))},
			Main:        mainExpr,
			Definitions: defs,
		}), rest2, nil
	}
}

// ascriptionExprParser handles the optional trailing `: Type [given C]`.
func ascriptionExprParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		base, rest, err := dollarExprParser()(in)
		if err != nil {
			return nil, in, err
		}
		av, rest2, err := Optional(Seq(
			Token(lexer.Punctuation, ":"),
			Lazy(typeExprParser),
			Optional(Seq(Token(lexer.Keyword, "given"), Lazy(constraintExprParser))),
		))(rest)
		if err != nil {
			return nil, in, err
		}
		if av == nil {
			return base, rest2, nil
		}
		parts := av.([]interface{})
		baseExpr := base.(ast.Expr)
		typ := parts[1]
		givenVal := parts[2]
		if givenVal == nil {
			return ast.Expr(&ast.Typed{
				Meta:       ast.Meta{Span: spanFrom(baseExpr.Position().Start, toPos(rest2.Cur().Start))},
				Expr:       baseExpr,
				Annotation: typ.(typeResult).t,
			}), rest2, nil
		}
		given := givenVal.([]interface{})[1]
		return ast.Expr(&ast.Constrained{
			Meta:       ast.Meta{Span: spanFrom(baseExpr.Position().Start, toPos(rest2.Cur().Start))},
			Expr:       baseExpr,
			Annotation: typ.(typeResult).t,
			Given:      given.(constraintResult).c,
		}), rest2, nil
	}
}

// dollarExprParser handles `$`, Noolang's lowest-precedence, right
// associative "application sugar" operator: `f $ x` === `f x`.
func dollarExprParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		left, rest, err := pipeExprParser()(in)
		if err != nil {
			return nil, in, err
		}
		_, afterOp, err := Token(lexer.Operator, "$")(rest)
		if err != nil {
			return left, rest, nil
		}
		right, rest2, err := dollarExprParser()(afterOp) // right-associative
		if err != nil {
			return nil, in, err
		}
		l := left.(ast.Expr)
		r := right.(ast.Expr)
		return ast.Expr(&ast.Application{
			Meta: ast.Meta{Span: spanFrom(l.Position().Start, r.Position().End)},
			Fn:   l, Args: []ast.Expr{r},
		}), rest2, nil
	}
}

func pipeExprParser() Parser {
	return Chainl1(comparisonExprParser(), anyOperator("|>", "<|", "|?", "|"), buildBinary)
}

func comparisonExprParser() Parser {
	return Chainl1(additiveExprParser(), anyOperator("==", "!=", "<=", ">=", "<", ">"), buildBinary)
}

func additiveExprParser() Parser {
	return Chainl1(multiplicativeExprParser(), anyOperator("+", "-"), buildBinary)
}

func multiplicativeExprParser() Parser {
	return Chainl1(applicationExprParser(), anyOperator("*", "/"), buildBinary)
}

// applicationExprParser is left-associative, whitespace-separated
// function application: `f x y` parses as one Application node with two
// args (spec.md §3's Application is uncurried at the AST level).
func applicationExprParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		head, rest, err := atomExprParser()(in)
		if err != nil {
			return nil, in, err
		}
		argsV, rest2, _ := Many(atomExprParser())(rest)
		args := argsV.([]interface{})
		if len(args) == 0 {
			return head, rest2, nil
		}
		exprArgs := make([]ast.Expr, len(args))
		for i, a := range args {
			exprArgs[i] = a.(ast.Expr)
		}
		headExpr := head.(ast.Expr)
		return ast.Expr(&ast.Application{
			Meta: ast.Meta{Span: spanFrom(headExpr.Position().Start, exprArgs[len(exprArgs)-1].Position().End)},
			Fn:   headExpr, Args: exprArgs,
		}), rest2, nil
	}
}

// atomExprParser is the grammar's primary/terminal level.
func atomExprParser() Parser {
	return Choice(
		literalExprParser(),
		accessorApplicationOrBareParser(),
		ifExprParser(),
		fnExprParser(),
		matchExprParser(),
		variableExprParser(),
		listExprParser(),
		braceExprParser(),
		parenExprParser(),
	)
}

func literalExprParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		cur := in.Cur()
		switch {
		case cur.Kind == lexer.Number:
			f, _ := strconv.ParseFloat(cur.Value, 64)
			return ast.Expr(&ast.Literal{Meta: metaOf(cur, cur), Value: f}), in.Advance(), nil
		case cur.Kind == lexer.String:
			return ast.Expr(&ast.Literal{Meta: metaOf(cur, cur), Value: cur.Value}), in.Advance(), nil
		case cur.Kind == lexer.Boolean:
			return ast.Expr(&ast.Literal{Meta: metaOf(cur, cur), Value: cur.Value == "True"}), in.Advance(), nil
		default:
			return nil, in, failAt(in, "expected a literal")
		}
	}
}

func metaOf(start, end lexer.Token) ast.Meta {
	return ast.Meta{Span: spanFrom(toPos(start.Start), toPos(end.End))}
}

func variableExprParser() Parser {
	return Map(Token(lexer.Identifier, ""), func(v interface{}) interface{} {
		tok := v.(lexer.Token)
		return ast.Expr(&ast.Variable{Meta: metaOf(tok, tok), Name: tok.Value})
	})
}

// accessorApplicationOrBareParser parses `@field` as a standalone
// Accessor function value, or `@field expr` applying it immediately
// (spec.md §4.P: "a standalone @name is a function expression; @name
// expr applies it"). The immediate-application form is folded into the
// surrounding application chain instead of being special-cased here, so
// this just produces the bare Accessor and lets applicationExprParser's
// Many(atomExprParser()) naturally apply it to whatever follows.
func accessorApplicationOrBareParser() Parser {
	return Map(Token(lexer.Accessor, ""), func(v interface{}) interface{} {
		tok := v.(lexer.Token)
		return ast.Expr(&ast.Accessor{Meta: metaOf(tok, tok), Field: tok.Value})
	})
}

func ifExprParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		v, rest, err := Seq(
			Token(lexer.Keyword, "if"), Lazy(exprParser),
			Token(lexer.Keyword, "then"), Lazy(exprParser),
			Token(lexer.Keyword, "else"), Lazy(exprParser),
		)(in)
		if err != nil {
			return nil, in, err
		}
		parts := v.([]interface{})
		ifTok := parts[0].(lexer.Token)
		elseExpr := parts[5].(ast.Expr)
		return ast.Expr(&ast.If{
			Meta: ast.Meta{Span: spanFrom(toPos(ifTok.Start), elseExpr.Position().End)},
			Cond: parts[1].(ast.Expr), Then: parts[3].(ast.Expr), Else: elseExpr,
		}), rest, nil
	}
}

// fnExprParser is `fn params+ => body`.
func fnExprParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		v, rest, err := Seq(
			Token(lexer.Keyword, "fn"),
			Many1(Token(lexer.Identifier, "")),
			Token(lexer.Operator, "=>"),
			Lazy(exprParser),
		)(in)
		if err != nil {
			return nil, in, err
		}
		parts := v.([]interface{})
		fnTok := parts[0].(lexer.Token)
		paramToks := parts[1].([]interface{})
		params := make([]string, len(paramToks))
		for i, p := range paramToks {
			params[i] = p.(lexer.Token).Value
		}
		body := parts[3].(ast.Expr)
		return ast.Expr(&ast.Function{
			Meta: ast.Meta{Span: spanFrom(toPos(fnTok.Start), body.Position().End)},
			Params: params, Body: body,
		}), rest, nil
	}
}

// matchExprParser is `match e with (pat => expr (; pat => expr)*)`.
func matchExprParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		v, rest, err := Seq(
			Token(lexer.Keyword, "match"), Lazy(exprParser),
			Token(lexer.Keyword, "with"), Token(lexer.Punctuation, "("),
			SepBy(matchCaseParser(), Token(lexer.Punctuation, ";")),
			Token(lexer.Punctuation, ")"),
		)(in)
		if err != nil {
			return nil, in, err
		}
		parts := v.([]interface{})
		matchTok := parts[0].(lexer.Token)
		closeTok := parts[5].(lexer.Token)
		caseItems := parts[4].([]interface{})
		cases := make([]ast.MatchCase, len(caseItems))
		for i, c := range caseItems {
			cases[i] = c.(ast.MatchCase)
		}
		return ast.Expr(&ast.Match{
			Meta:      ast.Meta{Span: spanFrom(toPos(matchTok.Start), toPos(closeTok.End))},
			Scrutinee: parts[1].(ast.Expr), Cases: cases,
		}), rest, nil
	}
}

func matchCaseParser() Parser {
	return Map(Seq(patternParser(), Token(lexer.Operator, "=>"), Lazy(exprParser)), func(v interface{}) interface{} {
		parts := v.([]interface{})
		return ast.MatchCase{Pattern: parts[0].(ast.Pattern), Body: parts[2].(ast.Expr)}
	})
}

func listExprParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		v, rest, err := Seq(
			Token(lexer.Punctuation, "["),
			SepBy(Lazy(exprParser), listSepParser()),
			Token(lexer.Punctuation, "]"),
		)(in)
		if err != nil {
			return nil, in, err
		}
		parts := v.([]interface{})
		openTok := parts[0].(lexer.Token)
		closeTok := parts[2].(lexer.Token)
		items := parts[1].([]interface{})
		elems := make([]ast.Expr, len(items))
		for i, it := range items {
			elems[i] = it.(ast.Expr)
		}
		return ast.Expr(&ast.List{
			Meta: ast.Meta{Span: spanFrom(toPos(openTok.Start), toPos(closeTok.End))}, Elements: elems,
		}), rest, nil
	}
}

// listSepParser accepts either `,` or `;` as a list-literal separator
// (spec.md §4.P: "[e, e, …] or [e; e; …] (both separators accepted)").
func listSepParser() Parser {
	return Choice(Token(lexer.Punctuation, ","), Token(lexer.Punctuation, ";"))
}

// braceExprParser disambiguates `{}` (Unit), `{ @f v, … }` (Record), and
// `{ e, e, … }` (Tuple, ≥2 elements — a one-element `{ e }` parses as a
// parenthesized value rather than a Tuple node).
func braceExprParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		open, rest, err := Token(lexer.Punctuation, "{")(in)
		if err != nil {
			return nil, in, err
		}
		openTok := open.(lexer.Token)

		if close, rest2, err := Token(lexer.Punctuation, "}")(rest); err == nil {
			closeTok := close.(lexer.Token)
			return ast.Expr(&ast.Unit{Meta: ast.Meta{Span: spanFrom(toPos(openTok.Start), toPos(closeTok.End))}}), rest2, nil
		}

		if _, _, err := Token(lexer.Accessor, "")(rest); err == nil {
			fieldsV, rest2, err := SepBy(recordFieldParser(), Token(lexer.Punctuation, ","))(rest)
			if err != nil {
				return nil, in, err
			}
			closeTok, rest3, err := Token(lexer.Punctuation, "}")(rest2)
			if err != nil {
				return nil, in, err
			}
			items := fieldsV.([]interface{})
			fields := make([]ast.RecordField, len(items))
			for i, it := range items {
				fields[i] = it.(ast.RecordField)
			}
			return ast.Expr(&ast.Record{
				Meta: ast.Meta{Span: spanFrom(toPos(openTok.Start), toPos(closeTok.(lexer.Token).End))}, Fields: fields,
			}), rest3, nil
		}

		elemsV, rest2, err := SepBy(Lazy(exprParser), Token(lexer.Punctuation, ","))(rest)
		if err != nil {
			return nil, in, err
		}
		closeTok, rest3, err := Token(lexer.Punctuation, "}")(rest2)
		if err != nil {
			return nil, in, err
		}
		items := elemsV.([]interface{})
		if len(items) == 1 {
			return items[0], rest3, nil
		}
		elems := make([]ast.Expr, len(items))
		for i, it := range items {
			elems[i] = it.(ast.Expr)
		}
		return ast.Expr(&ast.Tuple{
			Meta: ast.Meta{Span: spanFrom(toPos(openTok.Start), toPos(closeTok.(lexer.Token).End))}, Elements: elems,
		}), rest3, nil
	}
}

func recordFieldParser() Parser {
	return Map(Seq(Token(lexer.Accessor, ""), Lazy(exprParser)), func(v interface{}) interface{} {
		parts := v.([]interface{})
		tok := parts[0].(lexer.Token)
		return ast.RecordField{Name: tok.Value, Value: parts[1].(ast.Expr)}
	})
}

func parenExprParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		v, rest, err := Seq(Token(lexer.Punctuation, "("), Lazy(exprParser), Token(lexer.Punctuation, ")"))(in)
		if err != nil {
			return nil, in, err
		}
		return v.([]interface{})[1], rest, nil
	}
}
