package lexer

import "testing"

func TestNextToken(t *testing.T) {
	input := `add = fn x y => x + y
if x == 0 then 1 else x * factorial (x - 1)
[1, 2, 3] | map (fn x => x * 2)
{ @name "Alice", @age 30 }
# a trailing comment
user.name mut! count = count + 1
`

	tests := []struct {
		kind  Kind
		value string
	}{
		{Identifier, "add"},
		{Operator, "="},
		{Keyword, "fn"},
		{Identifier, "x"},
		{Identifier, "y"},
		{Operator, "=>"},
		{Identifier, "x"},
		{Operator, "+"},
		{Identifier, "y"},

		{Keyword, "if"},
		{Identifier, "x"},
		{Operator, "=="},
		{Number, "0"},
		{Keyword, "then"},
		{Number, "1"},
		{Keyword, "else"},
		{Identifier, "x"},
		{Operator, "*"},
		{Identifier, "factorial"},
		{Punctuation, "("},
		{Identifier, "x"},
		{Operator, "-"},
		{Number, "1"},
		{Punctuation, ")"},

		{Punctuation, "["},
		{Number, "1"},
		{Punctuation, ","},
		{Number, "2"},
		{Punctuation, ","},
		{Number, "3"},
		{Punctuation, "]"},
		{Operator, "|"},
		{Identifier, "map"},
		{Punctuation, "("},
		{Keyword, "fn"},
		{Identifier, "x"},
		{Operator, "=>"},
		{Identifier, "x"},
		{Operator, "*"},
		{Number, "2"},
		{Punctuation, ")"},

		{Punctuation, "{"},
		{Accessor, "name"},
		{String, "Alice"},
		{Punctuation, ","},
		{Accessor, "age"},
		{Number, "30"},
		{Punctuation, "}"},

		{Identifier, "user"},
		{Punctuation, "."},
		{Identifier, "name"},
		{Keyword, "mut!"},
		{Identifier, "count"},
		{Operator, "="},
		{Identifier, "count"},
		{Operator, "+"},
		{Number, "1"},

		{EOF, ""},
	}

	toks := Tokenize(input)
	if len(toks) != len(tests) {
		t.Fatalf("token count mismatch: got %d, want %d (%v)", len(toks), len(tests), toks)
	}
	for i, tt := range tests {
		got := toks[i]
		if got.Kind != tt.kind || got.Value != tt.value {
			t.Fatalf("token[%d] = %s, want {%s %q}", i, got, tt.kind, tt.value)
		}
	}
}

func TestNumberDotNotConsumedWithoutDigit(t *testing.T) {
	toks := Tokenize("3.foo")
	want := []struct {
		kind  Kind
		value string
	}{
		{Number, "3"},
		{Punctuation, "."},
		{Identifier, "foo"},
		{EOF, ""},
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Kind != w.kind || toks[i].Value != w.value {
			t.Fatalf("token[%d] = %s, want {%s %q}", i, toks[i], w.kind, w.value)
		}
	}
}

func TestUnclosedStringYieldsLexemeSoFar(t *testing.T) {
	toks := Tokenize(`"unterminated`)
	if len(toks) != 2 || toks[0].Kind != String || toks[0].Value != "unterminated" {
		t.Fatalf("unexpected tokens: %v", toks)
	}
}

func TestEmptyParensFallThroughToPunctuation(t *testing.T) {
	toks := Tokenize("()")
	if len(toks) != 3 || toks[0].Value != "(" || toks[1].Value != ")" {
		t.Fatalf("unexpected tokens for (): %v", toks)
	}
}

func TestLongestOperatorMatchFirst(t *testing.T) {
	toks := Tokenize("|> <| |? == <= >=")
	want := []string{"|>", "<|", "|?", "==", "<=", ">="}
	if len(toks) != len(want)+1 {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want)+1, toks)
	}
	for i, w := range want {
		if toks[i].Value != w {
			t.Fatalf("token[%d] = %q, want %q", i, toks[i].Value, w)
		}
	}
}
