package parser

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestEstreeShapes(t *testing.T) {
	file := mustParse(t, `"use strict"; let a = [1, "s", null, true, /x/g, 10n];
let o = { a, b: 1, m() {}, get g() { return 1; } };
class C { m() {} }`, moduleOptions("estree"))
	body := file.Program.BodyList

	directive := body[0]
	if directive.Type != "ExpressionStatement" || directive.Directive != "use strict" || directive.Expression.Type != "Literal" {
		t.Errorf("directive = %s %q", directive.Type, directive.Directive)
	}
	if len(file.Program.Directives) != 0 {
		t.Errorf("program still has %d directives", len(file.Program.Directives))
	}

	elems := initOf(body[1]).Elements
	for i, e := range elems {
		if e.Type != "Literal" {
			t.Errorf("element %d = %s, want Literal", i, e.Type)
		}
	}
	if elems[1].Raw != `"s"` {
		t.Errorf("string raw = %q", elems[1].Raw)
	}
	if elems[4].Regex == nil || elems[4].Regex.Pattern != "x" || elems[4].Regex.Flags != "g" {
		t.Errorf("regex = %+v", elems[4].Regex)
	}
	if elems[5].Bigint != "10" {
		t.Errorf("bigint = %q", elems[5].Bigint)
	}

	for i, prop := range initOf(body[2]).Properties {
		if prop.Type != "Property" {
			t.Errorf("property %d = %s, want Property", i, prop.Type)
		}
	}
	getter := initOf(body[2]).Properties[3]
	if getter.Kind != "get" || getter.Value.Type != "FunctionExpression" {
		t.Errorf("getter kind %q value %s", getter.Kind, getter.Value.Type)
	}

	method := body[3].Body.BodyList[0]
	if method.Type != "MethodDefinition" || method.Value.Type != "FunctionExpression" {
		t.Errorf("class method = %s", method.Type)
	}
}

func TestEstreeJSON(t *testing.T) {
	file := mustParse(t, "x = 1;", moduleOptions("estree"))
	out, err := json.Marshal(file)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	s := string(out)
	for _, want := range []string{`"type":"Literal"`, `"value":1`, `"raw":"1"`} {
		if !strings.Contains(s, want) {
			t.Errorf("JSON %s does not contain %s", s, want)
		}
	}
	if strings.Contains(s, "NumericLiteral") {
		t.Errorf("JSON still uses NumericLiteral: %s", s)
	}
}

func TestEstreeErrors(t *testing.T) {
	tests := []struct {
		input string
		msg   string
	}{
		{"({ get a(b) {} });", "getter must not have any formal parameters"},
		{"({ set a() {} });", "setter must have exactly one formal parameter"},
		{"({ __proto__: a, __proto__: b });", "Redefinition of __proto__ property"},
		{"({ get a() {} } = b);", "Object pattern can't contain getter or setter"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := mustFail(t, tt.input, moduleOptions("estree"))
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not mention %q", err, tt.msg)
			}
		})
	}
}
