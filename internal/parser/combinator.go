// Package parser implements Noolang's parser as a set of composable
// parser combinators over the lexer's token stream (spec.md §4.P): the
// public combinator primitives are token, anyToken, seq, choice, many,
// many1, optional, map, lazy, sepBy, and parseAll, plus Chainl1; the
// grammar itself (parser_expr.go, parser_decl.go, parser_type.go,
// parser_pattern.go) is built out of those together with hand-written
// rules that inspect the Input cursor directly.
package parser

import (
	"fmt"

	"github.com/jethrolarson/noolang-sub000/internal/lexer"
)

// Input is an immutable cursor into a token slice; combinators thread it
// by value, the same way the teacher's recursive-descent parser threads
// an explicit curToken/peekToken pair, but generalized so every rule is
// a plain function of (Input) rather than a method with mutable fields.
type Input struct {
	Tokens []lexer.Token
	Pos    int
}

// Cur returns the token at the cursor (EOF forever past the end).
func (in Input) Cur() lexer.Token {
	if in.Pos >= len(in.Tokens) {
		return in.Tokens[len(in.Tokens)-1] // EOF sentinel
	}
	return in.Tokens[in.Pos]
}

// Advance returns the cursor moved one token forward.
func (in Input) Advance() Input {
	if in.Pos >= len(in.Tokens)-1 {
		return in
	}
	return Input{Tokens: in.Tokens, Pos: in.Pos + 1}
}

// Fail is a parser failure: a message and the furthest position reached.
// The parser's overall error policy (spec.md §4.P) is "fail on the first
// token no alternative can consume", reported with this position.
type Fail struct {
	Message string
	Pos     lexer.Position
}

func (f *Fail) Error() string {
	return fmt.Sprintf("%s at %s", f.Message, f.Pos)
}

func failAt(in Input, format string, args ...interface{}) error {
	return &Fail{Message: fmt.Sprintf(format, args...), Pos: in.Cur().Start}
}

// Parser consumes from Input and either succeeds with a value and the
// remaining input, or fails with an error that never advances Input.
type Parser func(Input) (value interface{}, rest Input, err error)

// Token matches a single token of the given kind, and — when value is
// non-empty — the given literal value too.
func Token(kind lexer.Kind, value string) Parser {
	return func(in Input) (interface{}, Input, error) {
		cur := in.Cur()
		if cur.Kind != kind || (value != "" && cur.Value != value) {
			want := kind.String()
			if value != "" {
				want = fmt.Sprintf("%s %q", kind, value)
			}
			return nil, in, failAt(in, "expected %s, got %s %q", want, cur.Kind, cur.Value)
		}
		return cur, in.Advance(), nil
	}
}

// AnyToken matches whatever the next token is, failing only at EOF.
func AnyToken() Parser {
	return func(in Input) (interface{}, Input, error) {
		cur := in.Cur()
		if cur.Kind == lexer.EOF {
			return nil, in, failAt(in, "unexpected end of input")
		}
		return cur, in.Advance(), nil
	}
}

// Seq runs parsers in order, succeeding with a []interface{} of their
// results only if every one of them succeeds.
func Seq(parsers ...Parser) Parser {
	return func(in Input) (interface{}, Input, error) {
		results := make([]interface{}, 0, len(parsers))
		cur := in
		for _, p := range parsers {
			v, rest, err := p(cur)
			if err != nil {
				return nil, in, err
			}
			results = append(results, v)
			cur = rest
		}
		return results, cur, nil
	}
}

// Choice tries each alternative in order and returns the first success.
// If all fail, it reports the failure that reached furthest into the
// input — the "first token that cannot be consumed by any alternative"
// policy spec.md §4.P requires.
func Choice(parsers ...Parser) Parser {
	return func(in Input) (interface{}, Input, error) {
		var best error
		bestPos := -1
		for _, p := range parsers {
			v, rest, err := p(in)
			if err == nil {
				return v, rest, nil
			}
			if f, ok := err.(*Fail); ok {
				if f.Pos.Line*100000+f.Pos.Column > bestPos {
					bestPos = f.Pos.Line*100000 + f.Pos.Column
					best = err
				}
			} else if best == nil {
				best = err
			}
		}
		if best == nil {
			best = failAt(in, "no alternative matched")
		}
		return nil, in, best
	}
}

// Many matches p zero or more times, never failing itself.
func Many(p Parser) Parser {
	return func(in Input) (interface{}, Input, error) {
		var results []interface{}
		cur := in
		for {
			v, rest, err := p(cur)
			if err != nil {
				return results, cur, nil
			}
			if rest.Pos == cur.Pos {
				// p matched without consuming input; stop to avoid looping.
				return results, cur, nil
			}
			results = append(results, v)
			cur = rest
		}
	}
}

// Many1 matches p one or more times.
func Many1(p Parser) Parser {
	return func(in Input) (interface{}, Input, error) {
		first, rest, err := p(in)
		if err != nil {
			return nil, in, err
		}
		restResults, rest2, _ := Many(p)(rest)
		results := append([]interface{}{first}, restResults.([]interface{})...)
		return results, rest2, nil
	}
}

// Optional matches p or succeeds with a nil value, consuming nothing on
// failure.
func Optional(p Parser) Parser {
	return func(in Input) (interface{}, Input, error) {
		v, rest, err := p(in)
		if err != nil {
			return nil, in, nil
		}
		return v, rest, nil
	}
}

// Map transforms a successful parse's value.
func Map(p Parser, f func(interface{}) interface{}) Parser {
	return func(in Input) (interface{}, Input, error) {
		v, rest, err := p(in)
		if err != nil {
			return nil, in, err
		}
		return f(v), rest, nil
	}
}

// Lazy defers construction of p until it is actually invoked, which is
// what lets mutually-recursive grammar rules (expr → … → expr) close
// over each other without an initialization cycle.
func Lazy(f func() Parser) Parser {
	return func(in Input) (interface{}, Input, error) {
		return f()(in)
	}
}

// SepBy matches zero or more p separated by sep, returning the p
// results only (separators are discarded).
func SepBy(p Parser, sep Parser) Parser {
	return func(in Input) (interface{}, Input, error) {
		first, rest, err := p(in)
		if err != nil {
			return []interface{}{}, in, nil
		}
		results := []interface{}{first}
		cur := rest
		for {
			_, afterSep, err := sep(cur)
			if err != nil {
				break
			}
			v, afterItem, err := p(afterSep)
			if err != nil {
				break
			}
			results = append(results, v)
			cur = afterItem
		}
		return results, cur, nil
	}
}

// ParseAll runs p and then requires every remaining token to be EOF —
// the outermost grammar rule's "all tokens must be consumed" contract.
func ParseAll(p Parser) func(Input) (interface{}, error) {
	return func(in Input) (interface{}, error) {
		v, rest, err := p(in)
		if err != nil {
			return nil, err
		}
		if rest.Cur().Kind != lexer.EOF {
			return nil, failAt(rest, "unexpected token %s %q", rest.Cur().Kind, rest.Cur().Value)
		}
		return v, nil
	}
}

// Chainl1 parses a left-associative chain: term (op term)*, folding
// left-to-right with build, as a hand-written loop over term and op. A
// failed op or a failed term after an op ends the chain and leaves the
// input just after the last complete term. It parses the precedence
// levels spec.md §4.P lists.
func Chainl1(term Parser, op Parser, build func(left, opTok, right interface{}) interface{}) Parser {
	return func(in Input) (interface{}, Input, error) {
		left, rest, err := term(in)
		if err != nil {
			return nil, in, err
		}
		cur := rest
		for {
			opVal, afterOp, err := op(cur)
			if err != nil {
				return left, cur, nil
			}
			right, afterRight, err := term(afterOp)
			if err != nil {
				return left, cur, nil
			}
			left = build(left, opVal, right)
			cur = afterRight
		}
	}
}
