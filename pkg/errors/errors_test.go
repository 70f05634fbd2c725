package errors

import (
	"bytes"
	"strings"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		err  Error
		kind string
		text string
	}{
		{&SyntaxError{Position: Position{Line: 1, Column: 4}, Msg: "Unexpected token"}, "Syntax", "Syntax Error at 1:4: Unexpected token"},
		{&AmbiguityError{Position: Position{Line: 2, Column: 0}, Msg: "Ambiguous expression", Candidates: []int{3, 9}}, "Ambiguity", "Ambiguity Error at 2:0: Ambiguous expression"},
		{&NestingError{Position: Position{Line: 1, Column: 1}, Limit: 10}, "Nesting", "Nesting Error at 1:1: maximum nesting depth of 10 exceeded"},
		{&ConfigError{Option: "flow", Msg: "bad"}, "Config", `Config Error in "flow": bad`},
	}

	for _, tt := range tests {
		if tt.err.Kind() != tt.kind {
			t.Errorf("Kind() = %q, want %q", tt.err.Kind(), tt.kind)
		}
		if tt.err.Error() != tt.text {
			t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.text)
		}
	}
}

func TestDisplayErrors(t *testing.T) {
	var buf bytes.Buffer
	src := "let a = 1;\nlet = ;\n"
	DisplayErrors(&buf, src, []Error{
		&SyntaxError{Position: Position{Line: 2, Column: 4, StartPos: 15, EndPos: 16}, Msg: "Unexpected token"},
	})

	out := buf.String()
	if !strings.Contains(out, "Syntax Error at 2:4: Unexpected token") {
		t.Errorf("missing header in output:\n%s", out)
	}
	if !strings.Contains(out, "  let = ;\n      ^\n") {
		t.Errorf("missing excerpt or marker in output:\n%s", out)
	}
}
