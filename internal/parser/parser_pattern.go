package parser

import (
	"strconv"

	"github.com/jethrolarson/noolang-sub000/internal/ast"
	"github.com/jethrolarson/noolang-sub000/internal/lexer"
)

func patMeta(start, end lexer.Token) ast.PatternMeta {
	return ast.PatternMeta{Span: spanFrom(toPos(start.Start), toPos(end.End))}
}

// patternParser is a match arm's full pattern: a constructor pattern may
// take further patternAtomParser arguments, everything else is atomic.
func patternParser() Parser {
	return Choice(constructorPatternParser(), patternAtomParser())
}

func constructorPatternParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		tok := in.Cur()
		if tok.Kind != lexer.Identifier || isLowerIdent(tok.Value) || tok.Value == "_" {
			return nil, in, failAt(in, "expected a constructor pattern")
		}
		rest := in.Advance()
		argsV, rest2, _ := Many(patternAtomParser())(rest)
		items := argsV.([]interface{})
		if len(items) == 0 {
			return ast.Pattern(&ast.PatternConstructor{PatternMeta: patMeta(tok, tok), Name: tok.Value}), rest2, nil
		}
		args := make([]ast.Pattern, len(items))
		for i, it := range items {
			args[i] = it.(ast.Pattern)
		}
		last := args[len(args)-1]
		return ast.Pattern(&ast.PatternConstructor{
			PatternMeta: ast.PatternMeta{Span: spanFrom(toPos(tok.Start), last.Position().End)},
			Name:        tok.Value, Args: args,
		}), rest2, nil
	}
}

func patternAtomParser() Parser {
	return Choice(
		literalPatternParser(),
		wildcardPatternParser(),
		bareConstructorPatternParser(),
		variablePatternParser(),
		tuplePatternParser(),
		recordPatternParser(),
		parenPatternParser(),
	)
}

func literalPatternParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		cur := in.Cur()
		switch cur.Kind {
		case lexer.Number:
			f, _ := strconv.ParseFloat(cur.Value, 64)
			return ast.Pattern(&ast.PatternLiteral{PatternMeta: patMeta(cur, cur), Value: f}), in.Advance(), nil
		case lexer.String:
			return ast.Pattern(&ast.PatternLiteral{PatternMeta: patMeta(cur, cur), Value: cur.Value}), in.Advance(), nil
		case lexer.Boolean:
			return ast.Pattern(&ast.PatternLiteral{PatternMeta: patMeta(cur, cur), Value: cur.Value == "True"}), in.Advance(), nil
		default:
			return nil, in, failAt(in, "expected a literal pattern")
		}
	}
}

func wildcardPatternParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		cur := in.Cur()
		if cur.Kind != lexer.Identifier || cur.Value != "_" {
			return nil, in, failAt(in, "expected _")
		}
		return ast.Pattern(&ast.PatternWildcard{PatternMeta: patMeta(cur, cur)}), in.Advance(), nil
	}
}

func variablePatternParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		cur := in.Cur()
		if cur.Kind != lexer.Identifier || !isLowerIdent(cur.Value) || cur.Value == "_" {
			return nil, in, failAt(in, "expected a variable pattern")
		}
		return ast.Pattern(&ast.PatternVariable{PatternMeta: patMeta(cur, cur), Name: cur.Value}), in.Advance(), nil
	}
}

// bareConstructorPatternParser matches a nullary constructor reference
// used as a pattern argument (e.g. the `None` inside `Some None`).
func bareConstructorPatternParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		cur := in.Cur()
		if cur.Kind != lexer.Identifier || isLowerIdent(cur.Value) {
			return nil, in, failAt(in, "expected a constructor")
		}
		return ast.Pattern(&ast.PatternConstructor{PatternMeta: patMeta(cur, cur), Name: cur.Value}), in.Advance(), nil
	}
}

func tuplePatternParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		open, rest, err := Token(lexer.Punctuation, "{")(in)
		if err != nil {
			return nil, in, err
		}
		if _, _, err := Token(lexer.Accessor, "")(rest); err == nil {
			return nil, in, failAt(in, "not a tuple pattern")
		}
		openTok := open.(lexer.Token)
		elemsV, rest2, err := SepBy(Lazy(patternParser), Token(lexer.Punctuation, ","))(rest)
		if err != nil {
			return nil, in, err
		}
		closeTok, rest3, err := Token(lexer.Punctuation, "}")(rest2)
		if err != nil {
			return nil, in, err
		}
		items := elemsV.([]interface{})
		if len(items) == 1 {
			return nil, in, failAt(in, "not a tuple pattern")
		}
		// len == 0 is `{}`, the Unit pattern, represented as an empty tuple.
		elems := make([]ast.Pattern, len(items))
		for i, it := range items {
			elems[i] = it.(ast.Pattern)
		}
		return ast.Pattern(&ast.PatternTuple{
			PatternMeta: ast.PatternMeta{Span: spanFrom(toPos(openTok.Start), toPos(closeTok.(lexer.Token).End))}, Elements: elems,
		}), rest3, nil
	}
}

// recordPatternParser is `{ @field, @field pattern, … }`: a bare
// `@field` binds a local variable named after the field, matching by
// field name regardless of source order (spec.md §4.E).
func recordPatternParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		v, rest, err := Seq(
			Token(lexer.Punctuation, "{"),
			SepBy(recordPatternFieldParser(), Token(lexer.Punctuation, ",")),
			Token(lexer.Punctuation, "}"),
		)(in)
		if err != nil {
			return nil, in, err
		}
		parts := v.([]interface{})
		openTok := parts[0].(lexer.Token)
		closeTok := parts[2].(lexer.Token)
		items := parts[1].([]interface{})
		if len(items) == 0 {
			return nil, in, failAt(in, "not a record pattern")
		}
		fields := make([]ast.PatternRecordField, len(items))
		for i, it := range items {
			fields[i] = it.(ast.PatternRecordField)
		}
		return ast.Pattern(&ast.PatternRecord{
			PatternMeta: ast.PatternMeta{Span: spanFrom(toPos(openTok.Start), toPos(closeTok.End))}, Fields: fields,
		}), rest, nil
	}
}

func recordPatternFieldParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		fieldTok, rest, err := Token(lexer.Accessor, "")(in)
		if err != nil {
			return nil, in, err
		}
		tok := fieldTok.(lexer.Token)
		sub, rest2, err := Optional(patternAtomParser())(rest)
		if err != nil {
			return nil, in, err
		}
		if sub == nil {
			return ast.PatternRecordField{
				Name:    tok.Value,
				Pattern: &ast.PatternVariable{PatternMeta: patMeta(tok, tok), Name: tok.Value},
			}, rest2, nil
		}
		return ast.PatternRecordField{Name: tok.Value, Pattern: sub.(ast.Pattern)}, rest2, nil
	}
}

func parenPatternParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		v, rest, err := Seq(Token(lexer.Punctuation, "("), Lazy(patternParser), Token(lexer.Punctuation, ")"))(in)
		if err != nil {
			return nil, in, err
		}
		return v.([]interface{})[1], rest, nil
	}
}
