package ast

import (
	"encoding/json"
	"fmt"
)

// PrintProgramJSON renders a Program as deterministic JSON for the CLI's
// `--ast`/`--ast-file` dumps and the REPL's `.ast-json`, grounded on the
// teacher's internal/ast/print.go "simplify" approach: walk the Node
// interface by hand into a map tree rather than relying on struct tags,
// since Expr/Pattern/types.Type are interfaces `encoding/json` cannot
// marshal politely on its own.
func PrintProgramJSON(prog *Program) string {
	if prog == nil {
		return "null"
	}
	stmts := make([]interface{}, len(prog.Statements))
	for i, s := range prog.Statements {
		stmts[i] = simplifyExpr(s)
	}
	data, err := json.MarshalIndent(map[string]interface{}{
		"type":       "Program",
		"statements": stmts,
	}, "", "  ")
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(data)
}

func simplifyExpr(e Expr) interface{} {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *Literal:
		return node("Literal", map[string]interface{}{"value": n.Value})
	case *Variable:
		return node("Variable", map[string]interface{}{"name": n.Name})
	case *Function:
		return node("Function", map[string]interface{}{"params": n.Params, "body": simplifyExpr(n.Body)})
	case *Application:
		return node("Application", map[string]interface{}{"fn": simplifyExpr(n.Fn), "args": simplifyExprs(n.Args)})
	case *Binary:
		return node("Binary", map[string]interface{}{"op": n.Op, "left": simplifyExpr(n.Left), "right": simplifyExpr(n.Right)})
	case *If:
		return node("If", map[string]interface{}{"cond": simplifyExpr(n.Cond), "then": simplifyExpr(n.Then), "else": simplifyExpr(n.Else)})
	case *Definition:
		return node("Definition", map[string]interface{}{"name": n.Name, "value": simplifyExpr(n.Value)})
	case *MutableDefinition:
		return node("MutableDefinition", map[string]interface{}{"name": n.Name, "value": simplifyExpr(n.Value)})
	case *Mutation:
		return node("Mutation", map[string]interface{}{"name": n.Name, "value": simplifyExpr(n.Value)})
	case *TupleDestructuring:
		return node("TupleDestructuring", map[string]interface{}{"names": n.Names, "value": simplifyExpr(n.Value)})
	case *RecordDestructuring:
		return node("RecordDestructuring", map[string]interface{}{"fields": n.Fields, "value": simplifyExpr(n.Value)})
	case *Import:
		return node("Import", map[string]interface{}{"path": n.Path})
	case *Record:
		fields := make([]interface{}, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = map[string]interface{}{"name": f.Name, "value": simplifyExpr(f.Value)}
		}
		return node("Record", map[string]interface{}{"fields": fields})
	case *Tuple:
		return node("Tuple", map[string]interface{}{"elements": simplifyExprs(n.Elements)})
	case *Unit:
		return node("Unit", nil)
	case *Accessor:
		return node("Accessor", map[string]interface{}{"field": n.Field})
	case *List:
		return node("List", map[string]interface{}{"elements": simplifyExprs(n.Elements)})
	case *Where:
		return node("Where", map[string]interface{}{"main": simplifyExpr(n.Main), "definitions": simplifyExprs(n.Definitions)})
	case *Typed:
		return node("Typed", map[string]interface{}{"expr": simplifyExpr(n.Expr), "annotation": n.Annotation.String()})
	case *Constrained:
		return node("Constrained", map[string]interface{}{"expr": simplifyExpr(n.Expr), "annotation": n.Annotation.String(), "given": n.Given.String()})
	case *TypeDefinition:
		return node("TypeDefinition", map[string]interface{}{"name": n.Name, "typeParams": n.TypeParams})
	case *Match:
		cases := make([]interface{}, len(n.Cases))
		for i, c := range n.Cases {
			cases[i] = map[string]interface{}{"pattern": simplifyPattern(c.Pattern), "body": simplifyExpr(c.Body)}
		}
		return node("Match", map[string]interface{}{"scrutinee": simplifyExpr(n.Scrutinee), "cases": cases})
	case *ConstraintDefinition:
		return node("ConstraintDefinition", map[string]interface{}{"name": n.Name, "typeParam": n.TypeParam})
	case *ImplementDefinition:
		return node("ImplementDefinition", map[string]interface{}{"constraint": n.ConstraintName, "head": n.Head.String()})
	case *FFI:
		return node("FFI", map[string]interface{}{"module": n.Module, "name": n.Name})
	default:
		return node(fmt.Sprintf("%T", e), nil)
	}
}

func simplifyExprs(es []Expr) []interface{} {
	out := make([]interface{}, len(es))
	for i, e := range es {
		out[i] = simplifyExpr(e)
	}
	return out
}

func simplifyPattern(p Pattern) interface{} {
	if p == nil {
		return nil
	}
	switch n := p.(type) {
	case *PatternConstructor:
		args := make([]interface{}, len(n.Args))
		for i, a := range n.Args {
			args[i] = simplifyPattern(a)
		}
		return node("PatternConstructor", map[string]interface{}{"name": n.Name, "args": args})
	case *PatternVariable:
		return node("PatternVariable", map[string]interface{}{"name": n.Name})
	case *PatternLiteral:
		return node("PatternLiteral", map[string]interface{}{"value": n.Value})
	case *PatternWildcard:
		return node("PatternWildcard", nil)
	case *PatternTuple:
		elems := make([]interface{}, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = simplifyPattern(e)
		}
		return node("PatternTuple", map[string]interface{}{"elements": elems})
	case *PatternRecord:
		fields := make([]interface{}, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = map[string]interface{}{"name": f.Name, "pattern": simplifyPattern(f.Pattern)}
		}
		return node("PatternRecord", map[string]interface{}{"fields": fields})
	default:
		return node(fmt.Sprintf("%T", p), nil)
	}
}

func node(kind string, fields map[string]interface{}) map[string]interface{} {
	m := map[string]interface{}{"type": kind}
	for k, v := range fields {
		m[k] = v
	}
	return m
}
