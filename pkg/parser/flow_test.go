package parser

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/nooga/esparse/pkg/ast"
	"github.com/nooga/esparse/pkg/errors"
)

func TestFlowStatements(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, n *ast.Node)
	}{
		{"type alias", "type A<T> = { a: T, b?: ?string };", func(t *testing.T, n *ast.Node) {
			if n.Type != "TypeAlias" || n.TypeParameters == nil || n.Right == nil {
				t.Fatalf("got %s", n.Type)
			}
			if n.Right.Type != "ObjectTypeAnnotation" || len(n.Right.Properties) != 2 {
				t.Errorf("right = %v", n.Right)
			}
		}},
		{"opaque type", "opaque type ID: string = string;", func(t *testing.T, n *ast.Node) {
			if n.Type != "OpaqueType" || n.Supertype == nil || n.Impltype == nil {
				t.Errorf("got %s", n.Type)
			}
		}},
		{"interface", "interface I extends J { m(): void }", func(t *testing.T, n *ast.Node) {
			if n.Type != "InterfaceDeclaration" || len(n.Extends) != 1 {
				t.Errorf("got %s", n.Type)
			}
		}},
		{"declare function", "declare function f(x: number): string;", func(t *testing.T, n *ast.Node) {
			if n.Type != "DeclareFunction" {
				t.Errorf("got %s", n.Type)
			}
		}},
		{"declare class", "declare class C<T> extends D mixins M { static x: number; m(): void }", func(t *testing.T, n *ast.Node) {
			if n.Type != "DeclareClass" || len(n.Mixins) != 1 {
				t.Errorf("got %s mixins %d", n.Type, len(n.Mixins))
			}
		}},
		{"declare module", `declare module "m" { declare var x: number; }`, func(t *testing.T, n *ast.Node) {
			if n.Type != "DeclareModule" || n.Body.Type != "BlockStatement" {
				t.Errorf("got %s", n.Type)
			}
		}},
		{"declare module exports", "declare module.exports: { a: number };", func(t *testing.T, n *ast.Node) {
			if n.Type != "DeclareModuleExports" {
				t.Errorf("got %s", n.Type)
			}
		}},
		{"annotated function", "function f(a: number, b?: string, ...c: Array<mixed>): boolean %checks { return !!a; }", func(t *testing.T, n *ast.Node) {
			if n.Type != "FunctionDeclaration" || n.ReturnType == nil || n.Predicate == nil {
				t.Fatalf("got %s", n.Type)
			}
			if !n.Params[1].Optional {
				t.Errorf("b not optional")
			}
		}},
		{"import type", `import type { A } from "a";`, func(t *testing.T, n *ast.Node) {
			if n.ImportKind != "type" {
				t.Errorf("kind %q", n.ImportKind)
			}
		}},
		{"import typeof", `import typeof B from "b";`, func(t *testing.T, n *ast.Node) {
			if n.ImportKind != "typeof" {
				t.Errorf("kind %q", n.ImportKind)
			}
		}},
		{"export type", "export type T = number;", func(t *testing.T, n *ast.Node) {
			if n.Type != "ExportNamedDeclaration" || n.ExportKind != "type" || n.Declaration.Type != "TypeAlias" {
				t.Errorf("got %s kind %q", n.Type, n.ExportKind)
			}
		}},
		{"nullable nullable type", "type A = ??T;", func(t *testing.T, n *ast.Node) {
			if n.Right.Type != "NullableTypeAnnotation" || n.Right.TypeAnnotation.Type != "NullableTypeAnnotation" {
				t.Fatalf("right = %s", n.Right.Type)
			}
			if inner := n.Right.TypeAnnotation.TypeAnnotation; inner.Type != "GenericTypeAnnotation" {
				t.Errorf("innermost = %s", inner.Type)
			}
		}},
		{"class members", "class C<+T> implements I { +p: T; static q: number = 1; m<U>(): U {} }", func(t *testing.T, n *ast.Node) {
			if n.TypeParameters.Params[0].Variance == nil || len(n.Implements) != 1 {
				t.Fatalf("class = %v", n)
			}
			if n.Body.BodyList[0].Variance == nil || n.Body.BodyList[2].TypeParameters == nil {
				t.Errorf("members = %v", n.Body.BodyList)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, firstStatement(t, tt.input, "flow"))
		})
	}
}

func TestFlowExpressions(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"type cast", "let a = (b: any);", "TypeCastExpression"},
		{"arrow with return type", "let f = (x: number): string => String(x);", "ArrowFunctionExpression"},
		{"generic arrow", "let f = <T>(x: T): T => x;", "ArrowFunctionExpression"},
		{"generic async arrow", "let f = async <T>(x: T) => x;", "ArrowFunctionExpression"},
		{"conditional arrow consequent", "let v = a ? (b): c => d : e;", "ConditionalExpression"},
		{"conditional plain", "let v = a ? (b) : c => d;", "ConditionalExpression"},
		{"call with type arguments", "// @flow\nlet v = f<T>(x);", "CallExpression"},
		{"comparison without pragma", "let v = f<T>(x);", "BinaryExpression"},
		{"pragma after another comment", "/* hello */ /* @flow */ let v = f<T>(x);", "BinaryExpression"},
		{"pragma in the first comment", "/* @flow */ /* hello */ let v = f<T>(x);", "CallExpression"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := initOf(firstStatement(t, tt.input, "flow")).Type; got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFlowTypeCastArgument(t *testing.T) {
	call := initOf(firstStatement(t, "let a = f(b: any);", "flow"))
	if call.Type != "CallExpression" || len(call.Arguments) != 1 {
		t.Fatalf("got %s", call.Type)
	}
	if arg := call.Arguments[0]; arg.Type != "TypeCastExpression" || arg.TypeAnnotation == nil {
		t.Errorf("argument = %s", arg.Type)
	}
}

func TestFlowAmbiguousArrows(t *testing.T) {
	err := mustFail(t, "a ? (b) : c => (d) : e => f;", moduleOptions("flow"))
	var ae *errors.AmbiguityError
	if !stderrors.As(err, &ae) {
		t.Fatalf("got %T (%v), want *errors.AmbiguityError", err, err)
	}
	if !strings.Contains(ae.Msg, "wrap the arrow functions in parentheses") {
		t.Errorf("message = %q", ae.Msg)
	}
	if len(ae.Candidates) < 2 {
		t.Errorf("candidates = %v, want at least two", ae.Candidates)
	}
}

func TestFlowComments(t *testing.T) {
	file := mustParse(t, "/*:: type A = number; */\nfunction f(x /*: A */) /*: string */ { return ''; }", moduleOptions("flow", "flowComments"))
	body := file.Program.BodyList
	if len(body) != 2 || body[0].Type != "TypeAlias" {
		t.Fatalf("body = %v", body)
	}
	fn := body[1]
	if fn.Params[0].TypeAnnotation == nil || fn.ReturnType == nil {
		t.Errorf("annotations in comments were not parsed")
	}
}

func TestFlowErrors(t *testing.T) {
	tests := []struct {
		input string
		msg   string
	}{
		{"function f(a = 1: number) {}", "Type annotations must come before default assignments"},
		{"type A = ;", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := mustFail(t, tt.input, moduleOptions("flow"))
			if tt.msg != "" && !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not mention %q", err, tt.msg)
			}
		})
	}
}
