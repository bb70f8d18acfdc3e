package parser

import (
	"github.com/jethrolarson/noolang-sub000/internal/lexer"
	"github.com/jethrolarson/noolang-sub000/internal/types"
)

// typeResult and constraintResult box the untyped interface{} values the
// combinators pass around so the rest of the parser doesn't have to keep
// type-asserting raw types.Type/types.Constraint values out of Seq/Choice
// results.
type typeResult struct{ t types.Type }
type constraintResult struct{ c types.Constraint }

func isLowerIdent(s string) bool {
	if s == "" {
		return true
	}
	r := s[0]
	return r >= 'a' && r <= 'z'
}

// typeExprParser parses a type expression directly into a types.Type
// (spec.md §4.P: "parses types and constraints" — there is no separate
// parsed-type AST, per internal/ast.go's package doc).
func typeExprParser() Parser { return typeArrowParser() }

// typeArrowParser is the right-associative `->` arrow chain.
func typeArrowParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		left, rest, err := typeAppParser()(in)
		if err != nil {
			return nil, in, err
		}
		_, afterArrow, err := Token(lexer.Operator, "->")(rest)
		if err != nil {
			return left, rest, nil
		}
		right, rest2, err := typeArrowParser()(afterArrow)
		if err != nil {
			return nil, in, err
		}
		return typeResult{t: &types.Func{
			Param: left.(typeResult).t, Return: right.(typeResult).t, Effects: types.EmptyEffects(),
		}}, rest2, nil
	}
}

// typeAppParser handles `List T` and applied ADT heads `Option a`.
func typeAppParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		cur := in.Cur()
		if cur.Kind == lexer.Keyword && cur.Value == "List" {
			elemV, rest, err := typeAtomParser()(in.Advance())
			if err != nil {
				return nil, in, err
			}
			return typeResult{t: &types.List{Element: elemV.(typeResult).t}}, rest, nil
		}
		headV, rest, err := typeAtomParser()(in)
		if err != nil {
			return nil, in, err
		}
		variant, ok := headV.(typeResult).t.(*types.Variant)
		if !ok {
			return headV, rest, nil
		}
		argsV, rest2, _ := Many(typeAtomParser())(rest)
		argItems := argsV.([]interface{})
		if len(argItems) == 0 {
			return headV, rest, nil
		}
		args := make([]types.Type, len(argItems))
		for i, a := range argItems {
			args[i] = a.(typeResult).t
		}
		return typeResult{t: &types.Variant{Name: variant.Name, Args: args}}, rest2, nil
	}
}

func primitiveTypeParser(kw string, t types.Type) Parser {
	return Map(Token(lexer.Keyword, kw), func(interface{}) interface{} { return typeResult{t: t} })
}

func typeAtomParser() Parser {
	return Choice(
		primitiveTypeParser("Float", types.Float),
		primitiveTypeParser("String", types.Str),
		primitiveTypeParser("Bool", types.Bool),
		primitiveTypeParser("Unit", types.Unit),
		identifierTypeParser(),
		parenTypeParser(),
		braceTypeParser(),
	)
}

func identifierTypeParser() Parser {
	return Map(Token(lexer.Identifier, ""), func(v interface{}) interface{} {
		tok := v.(lexer.Token)
		if isLowerIdent(tok.Value) {
			return typeResult{t: &types.Var{Name: tok.Value}}
		}
		return typeResult{t: &types.Variant{Name: tok.Value}}
	})
}

func parenTypeParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		v, rest, err := Seq(Token(lexer.Punctuation, "("), Lazy(typeExprParser), Token(lexer.Punctuation, ")"))(in)
		if err != nil {
			return nil, in, err
		}
		return v.([]interface{})[1], rest, nil
	}
}

type fieldTypeEntry struct {
	name string
	t    types.Type
}

func recordFieldTypeParser() Parser {
	return Map(Seq(Token(lexer.Accessor, ""), Optional(Token(lexer.Punctuation, ":")), Lazy(typeExprParser)), func(v interface{}) interface{} {
		parts := v.([]interface{})
		tok := parts[0].(lexer.Token)
		return fieldTypeEntry{name: tok.Value, t: parts[2].(typeResult).t}
	})
}

// braceTypeParser disambiguates `{}` (Unit), `{@f: T, … | r}` (Record,
// optionally row-polymorphic), and `{T, T, …}` (Tuple).
func braceTypeParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		_, rest, err := Token(lexer.Punctuation, "{")(in)
		if err != nil {
			return nil, in, err
		}
		if _, rest2, err := Token(lexer.Punctuation, "}")(rest); err == nil {
			return typeResult{t: types.Unit}, rest2, nil
		}
		if _, _, err := Token(lexer.Accessor, "")(rest); err == nil {
			fieldsV, rest2, err := SepBy(recordFieldTypeParser(), Token(lexer.Punctuation, ","))(rest)
			if err != nil {
				return nil, in, err
			}
			rowV, rest3, err := Optional(Seq(Token(lexer.Operator, "|"), Lazy(typeExprParser)))(rest2)
			if err != nil {
				return nil, in, err
			}
			_, rest4, err := Token(lexer.Punctuation, "}")(rest3)
			if err != nil {
				return nil, in, err
			}
			items := fieldsV.([]interface{})
			fields := map[string]types.Type{}
			order := make([]string, len(items))
			for i, it := range items {
				fr := it.(fieldTypeEntry)
				fields[fr.name] = fr.t
				order[i] = fr.name
			}
			var row types.Type
			if rowV != nil {
				row = rowV.([]interface{})[1].(typeResult).t
			}
			return typeResult{t: &types.Record{Fields: fields, Order: order, Row: row}}, rest4, nil
		}
		elemsV, rest2, err := SepBy(Lazy(typeExprParser), Token(lexer.Punctuation, ","))(rest)
		if err != nil {
			return nil, in, err
		}
		_, rest3, err := Token(lexer.Punctuation, "}")(rest2)
		if err != nil {
			return nil, in, err
		}
		items := elemsV.([]interface{})
		if len(items) == 1 {
			return items[0], rest3, nil
		}
		elems := make([]types.Type, len(items))
		for i, it := range items {
			elems[i] = it.(typeResult).t
		}
		return typeResult{t: &types.Tuple{Elements: elems}}, rest3, nil
	}
}

// constraintExprParser implements spec.md §4.P's constraint-expression
// grammar: atomic constraints `a is C`, `a has {…}`, `a has field "n" of
// type T`, `a implements I`, composed by `and`/`or`, grouped by parens.
func constraintExprParser() Parser { return constraintOrParser() }

func constraintOrParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		v, rest, err := SepBy(Lazy(constraintAndParser), Token(lexer.Keyword, "or"))(in)
		if err != nil {
			return nil, in, err
		}
		items := v.([]interface{})
		if len(items) == 0 {
			return nil, in, failAt(in, "expected a constraint")
		}
		if len(items) == 1 {
			return items[0], rest, nil
		}
		cs := make([]types.Constraint, len(items))
		for i, it := range items {
			cs[i] = it.(constraintResult).c
		}
		return constraintResult{c: &types.Or{Constraints: cs}}, rest, nil
	}
}

func constraintAndParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		v, rest, err := SepBy(constraintAtomParser(), Token(lexer.Keyword, "and"))(in)
		if err != nil {
			return nil, in, err
		}
		items := v.([]interface{})
		if len(items) == 0 {
			return nil, in, failAt(in, "expected a constraint")
		}
		if len(items) == 1 {
			return items[0], rest, nil
		}
		cs := make([]types.Constraint, len(items))
		for i, it := range items {
			cs[i] = it.(constraintResult).c
		}
		return constraintResult{c: &types.And{Constraints: cs}}, rest, nil
	}
}

func constraintAtomParser() Parser {
	return Choice(
		parenConstraintParser(),
		hasFieldOfTypeConstraintParser(),
		hasStructureConstraintParser(),
		implementsConstraintParser(),
		isOrCustomConstraintParser(),
	)
}

func parenConstraintParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		v, rest, err := Seq(Token(lexer.Punctuation, "("), Lazy(constraintExprParser), Token(lexer.Punctuation, ")"))(in)
		if err != nil {
			return nil, in, err
		}
		inner := v.([]interface{})[1].(constraintResult).c
		return constraintResult{c: &types.Paren{Inner: inner}}, rest, nil
	}
}

// isOrCustomConstraintParser is `a is C` or, with trailing type
// arguments, the user-defined parameterized form `a is C t1 t2`.
func isOrCustomConstraintParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		v, rest, err := Seq(Token(lexer.Identifier, ""), Token(lexer.Keyword, "is"), Token(lexer.Identifier, ""))(in)
		if err != nil {
			return nil, in, err
		}
		parts := v.([]interface{})
		varName := parts[0].(lexer.Token).Value
		className := parts[2].(lexer.Token).Value
		argsV, rest2, _ := Many(typeAtomParser())(rest)
		argItems := argsV.([]interface{})
		if len(argItems) == 0 {
			return constraintResult{c: &types.Is{Var: varName, Class: className}}, rest2, nil
		}
		args := make([]types.Type, len(argItems))
		for i, a := range argItems {
			args[i] = a.(typeResult).t
		}
		return constraintResult{c: &types.Custom{Var: varName, Name: className, Args: args}}, rest2, nil
	}
}

// hasStructureConstraintParser is `a has {@field T, …}`.
func hasStructureConstraintParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		v, rest, err := Seq(
			Token(lexer.Identifier, ""), Token(lexer.Keyword, "has"), Token(lexer.Punctuation, "{"),
			SepBy(recordFieldTypeParser(), Token(lexer.Punctuation, ",")),
			Token(lexer.Punctuation, "}"),
		)(in)
		if err != nil {
			return nil, in, err
		}
		parts := v.([]interface{})
		varName := parts[0].(lexer.Token).Value
		items := parts[3].([]interface{})
		if len(items) == 1 {
			fr := items[0].(fieldTypeEntry)
			return constraintResult{c: &types.HasField{Var: varName, Field: fr.name, Of: fr.t}}, rest, nil
		}
		fields := map[string]types.Type{}
		for _, it := range items {
			fr := it.(fieldTypeEntry)
			fields[fr.name] = fr.t
		}
		return constraintResult{c: &types.HasStructure{Var: varName, Fields: fields}}, rest, nil
	}
}

// hasFieldOfTypeConstraintParser is `a has field "name" of type T`.
func hasFieldOfTypeConstraintParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		v, rest, err := Seq(
			Token(lexer.Identifier, ""), Token(lexer.Keyword, "has"), Token(lexer.Keyword, "field"),
			Token(lexer.String, ""), Token(lexer.Keyword, "of"), Token(lexer.Keyword, "type"),
			Lazy(typeExprParser),
		)(in)
		if err != nil {
			return nil, in, err
		}
		parts := v.([]interface{})
		varName := parts[0].(lexer.Token).Value
		field := parts[3].(lexer.Token).Value
		of := parts[6].(typeResult).t
		return constraintResult{c: &types.HasField{Var: varName, Field: field, Of: of}}, rest, nil
	}
}

func implementsConstraintParser() Parser {
	return func(in Input) (interface{}, Input, error) {
		v, rest, err := Seq(Token(lexer.Identifier, ""), Token(lexer.Keyword, "implements"), Token(lexer.Identifier, ""))(in)
		if err != nil {
			return nil, in, err
		}
		parts := v.([]interface{})
		return constraintResult{c: &types.Implements{
			Var: parts[0].(lexer.Token).Value, Trait: parts[2].(lexer.Token).Value,
		}}, rest, nil
	}
}
