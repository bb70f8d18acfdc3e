package ast

import (
	"encoding/json"
	"testing"
)

func TestPrintProgramJSONNilProgram(t *testing.T) {
	if got := PrintProgramJSON(nil); got != "null" {
		t.Fatalf("PrintProgramJSON(nil) = %q, want %q", got, "null")
	}
}

func TestPrintProgramJSONIsValidAndRoundTrips(t *testing.T) {
	prog := &Program{
		Statements: []Expr{
			&Definition{
				Name: "x",
				Value: &Binary{
					Op:   "+",
					Left: &Literal{Value: float64(1)},
					Right: &Literal{Value: float64(2)},
				},
			},
		},
	}

	out := PrintProgramJSON(prog)

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("PrintProgramJSON produced invalid JSON: %v\n%s", err, out)
	}
	if decoded["type"] != "Program" {
		t.Fatalf(`decoded["type"] = %v, want "Program"`, decoded["type"])
	}
	stmts, ok := decoded["statements"].([]interface{})
	if !ok || len(stmts) != 1 {
		t.Fatalf("decoded statements = %#v, want a single-element list", decoded["statements"])
	}
	stmt, ok := stmts[0].(map[string]interface{})
	if !ok || stmt["type"] != "Definition" {
		t.Fatalf("decoded statements[0] = %#v, want a Definition node", stmts[0])
	}
}
