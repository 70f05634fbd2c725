package parser

import (
	"testing"

	"github.com/nooga/esparse/pkg/ast"
)

var typeDialects = []string{"typescript", "flow"}

func TestParseGenericFunctionLiteral(t *testing.T) {
	inputs := []string{
		"function identity<T>(x: T): T { return x; }",
		"let identity = function <T>(x: T): T { return x; };",
	}
	for _, dialect := range typeDialects {
		for _, input := range inputs {
			t.Run(dialect+"/"+input, func(t *testing.T) {
				fn := firstStatement(t, input, dialect)
				if fn.Type == "VariableDeclaration" {
					fn = initOf(fn)
				}
				if fn.TypeParameters == nil || len(fn.TypeParameters.Params) != 1 {
					t.Fatalf("%s has no type parameters", fn.Type)
				}
				if fn.TypeParameters.Params[0].Name != "T" {
					t.Errorf("type parameter = %q, want T", fn.TypeParameters.Params[0].Name)
				}
				if fn.ReturnType == nil || fn.Params[0].TypeAnnotation == nil {
					t.Errorf("annotations missing on %s", fn.Type)
				}
			})
		}
	}
}

func TestParseGenericArrowFunction(t *testing.T) {
	inputs := []string{
		"let f = <T>(x: T): T => x;",
		"let f = <T, U>(x: T, y: U) => [x, y];",
	}
	for _, dialect := range typeDialects {
		for _, input := range inputs {
			t.Run(dialect+"/"+input, func(t *testing.T) {
				fn := initOf(firstStatement(t, input, dialect))
				if fn.Type != "ArrowFunctionExpression" {
					t.Fatalf("got %s, want ArrowFunctionExpression", fn.Type)
				}
				if fn.TypeParameters == nil {
					t.Fatalf("arrow has no type parameters")
				}
				if fn.Start != fn.TypeParameters.Start {
					t.Errorf("arrow starts at %d, type parameters at %d", fn.Start, fn.TypeParameters.Start)
				}
			})
		}
	}
}

func TestParseTypeParameters(t *testing.T) {
	tests := []struct {
		dialect     string
		input       string
		count       int
		constrained []bool
	}{
		{"typescript", "function f<T>() {}", 1, []bool{false}},
		{"typescript", "function f<T, U>() {}", 2, []bool{false, false}},
		{"typescript", "function f<T extends string>() {}", 1, []bool{true}},
		{"typescript", "function f<T, U extends number, V>() {}", 3, []bool{false, true, false}},
		{"flow", "function f<T>() {}", 1, []bool{false}},
		{"flow", "function f<T: string>() {}", 1, []bool{true}},
		{"flow", "function f<T, U: number, V>() {}", 3, []bool{false, true, false}},
	}
	for _, tt := range tests {
		t.Run(tt.dialect+"/"+tt.input, func(t *testing.T) {
			fn := firstStatement(t, tt.input, tt.dialect)
			params := fn.TypeParameters.Params
			if len(params) != tt.count {
				t.Fatalf("%d type parameters, want %d", len(params), tt.count)
			}
			for i, param := range params {
				if got := constraintOf(param) != nil; got != tt.constrained[i] {
					t.Errorf("param %d constrained = %v, want %v", i, got, tt.constrained[i])
				}
			}
		})
	}
}

func TestTypeParameterDefaults(t *testing.T) {
	tests := []struct {
		dialect string
		input   string
	}{
		{"typescript", "type A<T = string> = T;"},
		{"typescript", "interface I<T extends object = {}> {}"},
		{"flow", "type A<T = string> = T;"},
		{"flow", "type A<T: mixed = string> = T;"},
	}
	for _, tt := range tests {
		t.Run(tt.dialect+"/"+tt.input, func(t *testing.T) {
			decl := firstStatement(t, tt.input, tt.dialect)
			if decl.TypeParameters == nil || decl.TypeParameters.Params[0].Default == nil {
				t.Errorf("%s: default missing", decl.Type)
			}
		})
	}
}

func TestGenericFunctionWithComplexSignature(t *testing.T) {
	input := "function map<T, U>(arr: Array<T>, fn: (x: T) => U): Array<U> { return []; }"
	for _, dialect := range typeDialects {
		t.Run(dialect, func(t *testing.T) {
			fn := firstStatement(t, input, dialect)
			if fn.Id.Name != "map" || len(fn.TypeParameters.Params) != 2 {
				t.Fatalf("got %s %v", fn.Type, fn.Id)
			}
			if len(fn.Params) != 2 {
				t.Fatalf("%d params, want 2", len(fn.Params))
			}
			callback := fn.Params[1].TypeAnnotation.TypeAnnotation
			wantFn := map[string]string{"typescript": "TSFunctionType", "flow": "FunctionTypeAnnotation"}[dialect]
			if callback.Type != wantFn {
				t.Errorf("callback type = %s, want %s", callback.Type, wantFn)
			}
			if fn.ReturnType == nil || len(fn.Body.BodyList) != 1 {
				t.Errorf("return type or body missing")
			}
		})
	}
}

func constraintOf(param *ast.Node) *ast.Node {
	if param.Constraint != nil {
		return param.Constraint
	}
	return param.Bound
}
