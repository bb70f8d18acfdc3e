package parser

import (
	"github.com/jethrolarson/noolang-sub000/internal/ast"
	nerrors "github.com/jethrolarson/noolang-sub000/internal/errors"
	"github.com/jethrolarson/noolang-sub000/internal/lexer"
)

// Parse lexes and parses src, returning the full Program. The outermost
// rule requires every token to be consumed (spec.md §4.P).
func Parse(src string) (*ast.Program, error) {
	tokens := lexer.Tokenize(src)
	return ParseTokens(tokens)
}

// ParseTokens parses an already-lexed token stream; Parse calls it after
// lexing (the CLI's `--tokens` and REPL `.tokens` paths call only the
// lexer and never reach it). Combinator failures surface as
// structured ParseError reports with the furthest position reached.
func ParseTokens(tokens []lexer.Token) (*ast.Program, error) {
	in := Input{Tokens: tokens}
	v, err := ParseAll(programParser())(in)
	if err != nil {
		if f, ok := err.(*Fail); ok {
			pos := &nerrors.Position{Line: f.Pos.Line, Column: f.Pos.Column}
			return nil, nerrors.Wrap(nerrors.NewParse(pos, "%s", f.Message))
		}
		return nil, err
	}
	return v.(*ast.Program), nil
}

func toPos(p lexer.Position) ast.Pos {
	return ast.Pos{Line: p.Line, Column: p.Column}
}

func spanFrom(start, end ast.Pos) ast.Span {
	return ast.Span{Start: start, End: end}
}

// programParser is `statement (';' statement)*`.
func programParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		startTok := in.Cur()
		v, rest, err := SepBy(Lazy(statementParser), Token(lexer.Punctuation, ";"))(in)
		if err != nil {
			return nil, in, err
		}
		items := v.([]interface{})
		stmts := make([]ast.Expr, len(items))
		for i, it := range items {
			stmts[i] = it.(ast.Expr)
		}
		return &ast.Program{
			Statements: stmts,
			Span:       spanFrom(toPos(startTok.Start), toPos(rest.Cur().End)),
		}, rest, nil
	}
}
