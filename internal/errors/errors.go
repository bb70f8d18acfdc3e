// Package errors is Noolang's structured error model: every failure
// surfaced by the lexer, parser, typer, evaluator, or loader is a
// *Report carrying a Kind, a message, an optional source position, and
// optional context/suggestion strings for the CLI and REPL to render.
// Grounded on the teacher's internal/errors/report.go Report/ReportError
// pattern, simplified from its open-ended error-code taxonomy down to
// the five structured kinds Noolang actually distinguishes.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind is one of Noolang's five structured error kinds.
type Kind string

const (
	Lexer   Kind = "LexerError"
	Parse   Kind = "ParseError"
	Type    Kind = "TypeError"
	Runtime Kind = "RuntimeError"
	Import  Kind = "ImportError"
)

// Position is a 1-indexed source location, independent of the lexer and
// ast packages' own Position/Pos types so this package has no import
// dependency on either — callers convert at the boundary.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Column) }

// Report is Noolang's canonical structured error value.
type Report struct {
	Kind       Kind      `json:"kind"`
	Message    string    `json:"message"`
	Pos        *Position `json:"pos,omitempty"`
	Context    string    `json:"context,omitempty"`
	Suggestion string    `json:"suggestion,omitempty"`
}

// reportError wraps a Report so it survives errors.As unwrapping while
// still satisfying the error interface.
type reportError struct{ rep *Report }

func (e *reportError) Error() string {
	if e.rep.Pos != nil {
		return fmt.Sprintf("%s: %s (at %s)", e.rep.Kind, e.rep.Message, e.rep.Pos)
	}
	return fmt.Sprintf("%s: %s", e.rep.Kind, e.rep.Message)
}

// Wrap turns a Report into an error.
func Wrap(r *Report) error {
	if r == nil {
		return nil
	}
	return &reportError{rep: r}
}

// As extracts a *Report from an error chain, if one is present.
func As(err error) (*Report, bool) {
	var re *reportError
	if errors.As(err, &re) {
		return re.rep, true
	}
	return nil, false
}

func newf(kind Kind, pos *Position, format string, args ...interface{}) *Report {
	return &Report{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: pos}
}

// NewLexer builds a LexerError report.
func NewLexer(pos *Position, format string, args ...interface{}) *Report {
	return newf(Lexer, pos, format, args...)
}

// NewParse builds a ParseError report.
func NewParse(pos *Position, format string, args ...interface{}) *Report {
	return newf(Parse, pos, format, args...)
}

// NewType builds a TypeError report.
func NewType(pos *Position, format string, args ...interface{}) *Report {
	return newf(Type, pos, format, args...)
}

// NewRuntime builds a RuntimeError report.
func NewRuntime(pos *Position, format string, args ...interface{}) *Report {
	return newf(Runtime, pos, format, args...)
}

// NewImport builds an ImportError report.
func NewImport(pos *Position, format string, args ...interface{}) *Report {
	return newf(Import, pos, format, args...)
}

// WithContext attaches the source-line context the REPL's
// `.error-context` mode renders alongside the message.
func (r *Report) WithContext(ctx string) *Report {
	r.Context = ctx
	return r
}

// WithSuggestion attaches the `.error-detail` suggestion text.
func (r *Report) WithSuggestion(s string) *Report {
	r.Suggestion = s
	return r
}

// ToJSON renders the report as indented JSON (deterministic field order
// via the struct tags above).
func (r *Report) ToJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (r *Report) Error() string { return Wrap(r).Error() }
