package eval

import "github.com/jethrolarson/noolang-sub000/internal/ast"

// MatchPattern attempts to match value against pat, binding any
// variables pat introduces into env. Returns whether the match
// succeeded; on failure, any bindings already made into env are
// harmless since callers always use a fresh child Env per case
// (spec.md §4.E "pattern matching").
func MatchPattern(pat ast.Pattern, value Value, env *Env) bool {
	switch p := pat.(type) {

	case *ast.PatternWildcard:
		return true

	case *ast.PatternVariable:
		env.Bind(p.Name, value)
		return true

	case *ast.PatternLiteral:
		switch lv := p.Value.(type) {
		case float64:
			n, ok := value.(Number)
			return ok && float64(n) == lv
		case string:
			s, ok := value.(Str)
			return ok && string(s) == lv
		case bool:
			b, ok := value.(Bool)
			return ok && bool(b) == lv
		default:
			return false
		}

	case *ast.PatternTuple:
		tup, ok := value.(*Tuple)
		if !ok || len(tup.Elements) != len(p.Elements) {
			return false
		}
		for i, sub := range p.Elements {
			if !MatchPattern(sub, tup.Elements[i], env) {
				return false
			}
		}
		return true

	case *ast.PatternRecord:
		rec, ok := value.(*Record)
		if !ok {
			return false
		}
		for _, f := range p.Fields {
			fv, ok := rec.Fields[f.Name]
			if !ok {
				return false
			}
			if !MatchPattern(f.Pattern, fv, env) {
				return false
			}
		}
		return true

	case *ast.PatternConstructor:
		con, ok := value.(*Constructor)
		if !ok || con.Name != p.Name || len(con.Args) != len(p.Args) {
			return false
		}
		for i, sub := range p.Args {
			if !MatchPattern(sub, con.Args[i], env) {
				return false
			}
		}
		return true

	default:
		return false
	}
}
