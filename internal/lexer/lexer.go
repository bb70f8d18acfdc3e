// Package lexer turns Noolang source text into a stream of positioned
// tokens, per spec.md §4.L.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Lexer scans a normalized source buffer one rune at a time.
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           rune
	line         int
	column       int
}

// New creates a Lexer over src. src is NFC-normalized and BOM-stripped
// before scanning begins.
func New(src string) *Lexer {
	l := &Lexer{
		input:  normalizeSource(src),
		line:   1,
		column: 0,
	}
	l.readChar()
	return l
}

// normalizeSource strips a leading UTF-8 BOM and NFC-normalizes src, so
// Unicode-equivalent spellings of the same identifier lex to identical
// tokens regardless of how an editor encoded them.
func normalizeSource(src string) string {
	src = strings.TrimPrefix(src, "\ufeff")
	if norm.NFC.IsNormalString(src) {
		return src
	}
	return norm.NFC.String(src)
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}
	ch, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.position = l.readPosition
	l.readPosition += size
	l.column++
	if l.ch == '\n' {
		l.line++
		l.column = 1
	}
	l.ch = ch
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	ch, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return ch
}

func (l *Lexer) peekAt(offset int) rune {
	pos := l.readPosition
	var ch rune
	for i := 0; i <= offset; i++ {
		if pos >= len(l.input) {
			return 0
		}
		var size int
		ch, size = utf8.DecodeRuneInString(l.input[pos:])
		pos += size
	}
	return ch
}

func (l *Lexer) pos() Position {
	return Position{Line: l.line, Column: l.column}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch != 0 && unicode.IsSpace(l.ch) {
			l.readChar()
		}
		if l.ch == '#' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		break
	}
}

// Tokenize lexes the entire input and returns the full token stream,
// always ending in a single EOF token.
func Tokenize(src string) []Token {
	l := New(src)
	var toks []Token
	for {
		t := l.NextToken()
		toks = append(toks, t)
		if t.Kind == EOF {
			return toks
		}
	}
}

// NextToken returns the next token in the stream.
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	start := l.pos()

	if l.ch == 0 {
		return Token{Kind: EOF, Value: "", Start: start, End: start}
	}

	switch {
	case l.ch == '@':
		return l.readAccessor(start)
	case l.ch == '"' || l.ch == '\'':
		return l.readString(start)
	case unicode.IsDigit(l.ch):
		return l.readNumber(start)
	case isIdentStart(l.ch):
		return l.readIdentifier(start)
	}

	if tok, ok := l.tryOperator(start); ok {
		return tok
	}

	if strings.ContainsRune(punctuation, l.ch) {
		v := string(l.ch)
		l.readChar()
		return Token{Kind: Punctuation, Value: v, Start: start, End: l.pos()}
	}

	// Unknown bytes become single-character punctuation tokens rather
	// than a lexer failure — spec.md §4.L keeps LexerError reserved for
	// contradictions the implementation doesn't currently produce.
	v := string(l.ch)
	l.readChar()
	return Token{Kind: Punctuation, Value: v, Start: start, End: l.pos()}
}

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isIdentCont(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

func (l *Lexer) readIdentifier(start Position) Token {
	var sb strings.Builder
	for isIdentCont(l.ch) {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	word := sb.String()

	// `mut` immediately followed by `!` forms the keyword `mut!`.
	if word == "mut" && l.ch == '!' {
		l.readChar()
		return Token{Kind: Keyword, Value: "mut!", Start: start, End: l.pos()}
	}

	if word == "True" || word == "False" {
		return Token{Kind: Boolean, Value: word, Start: start, End: l.pos()}
	}
	if IsKeyword(word) {
		return Token{Kind: Keyword, Value: word, Start: start, End: l.pos()}
	}
	return Token{Kind: Identifier, Value: word, Start: start, End: l.pos()}
}

func (l *Lexer) readAccessor(start Position) Token {
	l.readChar() // consume '@'
	var sb strings.Builder
	for isIdentCont(l.ch) {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	return Token{Kind: Accessor, Value: sb.String(), Start: start, End: l.pos()}
}

// readNumber consumes one or more digits with an optional `.digits` tail;
// a trailing dot not followed by a digit is left for the next token
// (e.g. a tuple/record separator or the `.` field-access punctuation).
func (l *Lexer) readNumber(start Position) Token {
	var sb strings.Builder
	for unicode.IsDigit(l.ch) {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	if l.ch == '.' && unicode.IsDigit(l.peekChar()) {
		sb.WriteRune(l.ch)
		l.readChar()
		for unicode.IsDigit(l.ch) {
			sb.WriteRune(l.ch)
			l.readChar()
		}
	}
	return Token{Kind: Number, Value: sb.String(), Start: start, End: l.pos()}
}

// readString consumes a quoted string. `\x` consumes the next character
// literally (no escape-sequence table beyond that). An unclosed string
// yields the lexeme collected so far without raising a LexerError — the
// parser rejects it when it cannot find the closing quote it expects.
func (l *Lexer) readString(start Position) Token {
	quote := l.ch
	l.readChar() // consume opening quote
	var sb strings.Builder
	for l.ch != quote && l.ch != 0 {
		if l.ch == '\\' {
			l.readChar()
			if l.ch == 0 {
				break
			}
			sb.WriteRune(l.ch)
			l.readChar()
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	if l.ch == quote {
		l.readChar() // consume closing quote
	}
	return Token{Kind: String, Value: sb.String(), Start: start, End: l.pos()}
}

func (l *Lexer) tryOperator(start Position) (Token, bool) {
	for _, op := range operators {
		if l.matches(op) {
			for range op {
				l.readChar()
			}
			return Token{Kind: Operator, Value: op, Start: start, End: l.pos()}, true
		}
	}
	return Token{}, false
}

func (l *Lexer) matches(op string) bool {
	if l.ch == 0 {
		return false
	}
	runes := []rune(op)
	if l.ch != runes[0] {
		return false
	}
	for i := 1; i < len(runes); i++ {
		if l.peekAt(i-1) != runes[i] {
			return false
		}
	}
	return true
}
