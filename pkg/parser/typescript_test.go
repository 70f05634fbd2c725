package parser

import (
	"strings"
	"testing"

	"github.com/nooga/esparse/pkg/ast"
)

func initOf(stmt *ast.Node) *ast.Node {
	return stmt.Declarations[0].Init
}

func TestTypeScriptDeclarations(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, n *ast.Node)
	}{
		{"annotated variable", "let x: number = 1;", func(t *testing.T, n *ast.Node) {
			ann := n.Declarations[0].Id.TypeAnnotation
			if ann == nil || ann.Type != "TSTypeAnnotation" || ann.TypeAnnotation.Type != "TSNumberKeyword" {
				t.Errorf("annotation = %v", ann)
			}
		}},
		{"definite variable", "let x!: string;", func(t *testing.T, n *ast.Node) {
			if !n.Declarations[0].Definite {
				t.Errorf("definite not set")
			}
		}},
		{"interface", "interface A<T> extends B, C.D<T> { x: T; m?(a: number): void; [k: string]: any; readonly y: string }", func(t *testing.T, n *ast.Node) {
			if n.Type != "TSInterfaceDeclaration" {
				t.Fatalf("got %s", n.Type)
			}
			if len(n.Extends) != 2 || n.Extends[1].Expression.Type != "TSQualifiedName" {
				t.Errorf("extends = %v", n.Extends)
			}
			want := []string{"TSPropertySignature", "TSMethodSignature", "TSIndexSignature", "TSPropertySignature"}
			if len(n.Body.BodyList) != len(want) {
				t.Fatalf("%d members, want %d", len(n.Body.BodyList), len(want))
			}
			for i, m := range n.Body.BodyList {
				if m.Type != want[i] {
					t.Errorf("member %d = %s, want %s", i, m.Type, want[i])
				}
			}
		}},
		{"type alias", "type U = A | B & C;", func(t *testing.T, n *ast.Node) {
			if n.Type != "TSTypeAliasDeclaration" || n.TypeAnnotation.Type != "TSUnionType" {
				t.Fatalf("got %s / %v", n.Type, n.TypeAnnotation)
			}
			if n.TypeAnnotation.Types[1].Type != "TSIntersectionType" {
				t.Errorf("second member = %s", n.TypeAnnotation.Types[1].Type)
			}
		}},
		{"enum", `enum E { A = 1, "b", C }`, func(t *testing.T, n *ast.Node) {
			if n.Type != "TSEnumDeclaration" || len(n.Members) != 3 || n.Const {
				t.Fatalf("got %s with %d members", n.Type, len(n.Members))
			}
			if n.Members[0].Initializer == nil || n.Members[1].Id.Type != "StringLiteral" {
				t.Errorf("members = %v", n.Members)
			}
		}},
		{"const enum", "const enum E { A }", func(t *testing.T, n *ast.Node) {
			if n.Type != "TSEnumDeclaration" || !n.Const {
				t.Errorf("got %s const=%v", n.Type, n.Const)
			}
		}},
		{"declare const", "declare const x: number;", func(t *testing.T, n *ast.Node) {
			if n.Type != "VariableDeclaration" || !n.Declare {
				t.Errorf("got %s declare=%v", n.Type, n.Declare)
			}
		}},
		{"declare function", "declare function f(a: string): void;", func(t *testing.T, n *ast.Node) {
			if n.Type != "TSDeclareFunction" || !n.Declare {
				t.Errorf("got %s declare=%v", n.Type, n.Declare)
			}
		}},
		{"overload", "function f(a: number): void;", func(t *testing.T, n *ast.Node) {
			if n.Type != "TSDeclareFunction" {
				t.Errorf("got %s", n.Type)
			}
		}},
		{"ambient module", `declare module "m" { export const a: number; }`, func(t *testing.T, n *ast.Node) {
			if n.Type != "TSModuleDeclaration" || !n.Declare || n.Id.Type != "StringLiteral" {
				t.Fatalf("got %s declare=%v id=%v", n.Type, n.Declare, n.Id)
			}
			if n.Body.Type != "TSModuleBlock" || len(n.Body.BodyList) != 1 {
				t.Errorf("body = %v", n.Body)
			}
		}},
		{"dotted namespace", "namespace A.B { let x; }", func(t *testing.T, n *ast.Node) {
			if n.Type != "TSModuleDeclaration" || n.Body.Type != "TSModuleDeclaration" || n.Body.Id.Name != "B" {
				t.Errorf("got %s with body %v", n.Type, n.Body)
			}
		}},
		{"global", "declare global { interface W {} }", func(t *testing.T, n *ast.Node) {
			if n.Type != "TSModuleDeclaration" || !n.Global {
				t.Errorf("got %s global=%v", n.Type, n.Global)
			}
		}},
		{"import equals", `import A = require("a");`, func(t *testing.T, n *ast.Node) {
			if n.Type != "TSImportEqualsDeclaration" || n.ModuleReference.Type != "TSExternalModuleReference" {
				t.Errorf("got %s", n.Type)
			}
		}},
		{"import alias", "import B = A.B.C;", func(t *testing.T, n *ast.Node) {
			if n.Type != "TSImportEqualsDeclaration" || n.ModuleReference.Type != "TSQualifiedName" {
				t.Errorf("got %s", n.Type)
			}
		}},
		{"import type", `import type { A } from "a";`, func(t *testing.T, n *ast.Node) {
			if n.Type != "ImportDeclaration" || n.ImportKind != "type" {
				t.Errorf("got %s kind %q", n.Type, n.ImportKind)
			}
		}},
		{"import named type", `import type from "a";`, func(t *testing.T, n *ast.Node) {
			if n.ImportKind != "value" || n.Specifiers[0].Local.Name != "type" {
				t.Errorf("kind %q specifiers %v", n.ImportKind, n.Specifiers)
			}
		}},
		{"export assignment", "export = x;", func(t *testing.T, n *ast.Node) {
			if n.Type != "TSExportAssignment" {
				t.Errorf("got %s", n.Type)
			}
		}},
		{"export as namespace", "export as namespace Lib;", func(t *testing.T, n *ast.Node) {
			if n.Type != "TSNamespaceExportDeclaration" || n.Id.Name != "Lib" {
				t.Errorf("got %s", n.Type)
			}
		}},
		{"export interface", "export interface I {}", func(t *testing.T, n *ast.Node) {
			if n.Type != "ExportNamedDeclaration" || n.Declaration.Type != "TSInterfaceDeclaration" || n.ExportKind != "value" {
				t.Errorf("got %s kind %q", n.Type, n.ExportKind)
			}
		}},
		{"export declare", "export declare class C {}", func(t *testing.T, n *ast.Node) {
			if n.Declaration.Type != "ClassDeclaration" || !n.Declaration.Declare || n.Declaration.Start != n.Start+len("export ") {
				t.Errorf("declaration = %v", n.Declaration)
			}
		}},
		{"export type specifiers", "export type { A, B };", func(t *testing.T, n *ast.Node) {
			if n.ExportKind != "type" || len(n.Specifiers) != 2 || n.Declaration != nil {
				t.Errorf("kind %q specifiers %d", n.ExportKind, len(n.Specifiers))
			}
		}},
		{"export default abstract class", "export default abstract class {}", func(t *testing.T, n *ast.Node) {
			if n.Declaration.Type != "ClassDeclaration" || !n.Declaration.Abstract {
				t.Errorf("declaration = %v", n.Declaration)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, firstStatement(t, tt.input, "typescript"))
		})
	}
}

func TestTypeScriptClasses(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, n *ast.Node)
	}{
		{"abstract", "abstract class A { abstract m(): void; }", func(t *testing.T, n *ast.Node) {
			if !n.Abstract {
				t.Errorf("class not abstract")
			}
			m := n.Body.BodyList[0]
			if m.Type != "TSDeclareMethod" || !m.Abstract {
				t.Errorf("member = %s abstract=%v", m.Type, m.Abstract)
			}
		}},
		{"members", "class C { private x?: number = 1; static readonly y = 2; declare z: string; w!: T; }", func(t *testing.T, n *ast.Node) {
			body := n.Body.BodyList
			if len(body) != 4 {
				t.Fatalf("%d members, want 4", len(body))
			}
			if body[0].Accessibility != "private" || !body[0].Optional || body[0].TypeAnnotation == nil {
				t.Errorf("x = %+v", body[0])
			}
			if !body[1].Static || !body[1].Readonly {
				t.Errorf("y static=%v readonly=%v", body[1].Static, body[1].Readonly)
			}
			if !body[2].Declare {
				t.Errorf("z not declared")
			}
			if !body[3].Definite {
				t.Errorf("w not definite")
			}
		}},
		{"parameter properties", "class C { constructor(private readonly a: string, public b = 1, c) {} }", func(t *testing.T, n *ast.Node) {
			params := n.Body.BodyList[0].Params
			if len(params) != 3 {
				t.Fatalf("%d params", len(params))
			}
			if params[0].Type != "TSParameterProperty" || params[0].Accessibility != "private" || !params[0].Readonly {
				t.Errorf("a = %+v", params[0])
			}
			if params[0].Start != strings.Index("class C { constructor(private", "private") {
				t.Errorf("parameter property starts at %d", params[0].Start)
			}
			if params[1].Type != "TSParameterProperty" || params[1].Parameter.Type != "AssignmentPattern" {
				t.Errorf("b = %+v", params[1])
			}
			if params[2].Type != "Identifier" {
				t.Errorf("c = %s", params[2].Type)
			}
		}},
		{"heritage", "class A<T> extends B<T> implements C, D<T> {}", func(t *testing.T, n *ast.Node) {
			if n.TypeParameters == nil || n.SuperTypeParameters == nil || len(n.Implements) != 2 {
				t.Errorf("typeParameters=%v superTypeParameters=%v implements=%d", n.TypeParameters, n.SuperTypeParameters, len(n.Implements))
			}
		}},
		{"index signature", "class A { [key: string]: number; }", func(t *testing.T, n *ast.Node) {
			if n.Body.BodyList[0].Type != "TSIndexSignature" {
				t.Errorf("member = %s", n.Body.BodyList[0].Type)
			}
		}},
		{"generic method", "class A { m<T>(x: T): T { return x; } }", func(t *testing.T, n *ast.Node) {
			m := n.Body.BodyList[0]
			if m.Type != "ClassMethod" || m.TypeParameters == nil || m.ReturnType == nil {
				t.Errorf("method = %+v", m)
			}
		}},
		{"duplicate constructor overloads", "class A { constructor(a: string); constructor(a: any) {} }", func(t *testing.T, n *ast.Node) {
			if len(n.Body.BodyList) != 2 || n.Body.BodyList[0].Type != "TSDeclareMethod" {
				t.Errorf("members = %v", n.Body.BodyList)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, firstStatement(t, tt.input, "typescript"))
		})
	}
}

func TestTypeScriptExpressions(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, init *ast.Node)
	}{
		{"as chain", "let v = x as any as string;", func(t *testing.T, e *ast.Node) {
			if e.Type != "TSAsExpression" || e.Expression.Type != "TSAsExpression" || e.TypeAnnotation.Type != "TSStringKeyword" {
				t.Errorf("got %s(%s)", e.Type, e.Expression.Type)
			}
		}},
		{"as const", "let v = [1] as const;", func(t *testing.T, e *ast.Node) {
			if e.Type != "TSAsExpression" || e.TypeAnnotation.Type != "TSTypeReference" || e.TypeAnnotation.TypeName.Name != "const" {
				t.Errorf("got %s %v", e.Type, e.TypeAnnotation)
			}
		}},
		{"as binds tighter than equality", "let v = a as T === b;", func(t *testing.T, e *ast.Node) {
			if e.Type != "BinaryExpression" || e.Left.Type != "TSAsExpression" {
				t.Errorf("got %s", e.Type)
			}
		}},
		{"type assertion", "let v = <T>x;", func(t *testing.T, e *ast.Node) {
			if e.Type != "TSTypeAssertion" || e.Start != strings.Index("let v = <T>x;", "<") {
				t.Errorf("got %s at %d", e.Type, e.Start)
			}
		}},
		{"non-null", "let v = x!.y;", func(t *testing.T, e *ast.Node) {
			if e.Type != "MemberExpression" || e.Object.Type != "TSNonNullExpression" {
				t.Errorf("got %s", e.Type)
			}
		}},
		{"generic arrow", "let f = <T>(x: T): T => x;", func(t *testing.T, e *ast.Node) {
			if e.Type != "ArrowFunctionExpression" || e.TypeParameters == nil || e.ReturnType == nil {
				t.Fatalf("got %s", e.Type)
			}
			if e.Start != e.TypeParameters.Start {
				t.Errorf("arrow starts at %d, type parameters at %d", e.Start, e.TypeParameters.Start)
			}
			if e.Params[0].TypeAnnotation == nil {
				t.Errorf("parameter lost its annotation")
			}
		}},
		{"generic async arrow", "let f = async <T>(x: T) => x;", func(t *testing.T, e *ast.Node) {
			if e.Type != "ArrowFunctionExpression" || !e.Async || e.TypeParameters == nil {
				t.Errorf("got %s async=%v", e.Type, e.Async)
			}
		}},
		{"async arrow return type", "let f = async (x): Promise<void> => {};", func(t *testing.T, e *ast.Node) {
			if e.Type != "ArrowFunctionExpression" || e.ReturnType == nil {
				t.Errorf("got %s", e.Type)
			}
		}},
		{"optional arrow param", "let f = (x?: number) => x;", func(t *testing.T, e *ast.Node) {
			if e.Type != "ArrowFunctionExpression" || !e.Params[0].Optional {
				t.Errorf("got %s", e.Type)
			}
		}},
		{"conditional with arrow", "let v = a ? b : c => d;", func(t *testing.T, e *ast.Node) {
			if e.Type != "ConditionalExpression" || e.Alternate.Type != "ArrowFunctionExpression" {
				t.Errorf("got %s", e.Type)
			}
		}},
		{"new with type arguments", "let m = new Map<string, number>();", func(t *testing.T, e *ast.Node) {
			if e.Type != "NewExpression" || e.TypeParameters == nil || len(e.TypeParameters.Params) != 2 {
				t.Errorf("got %s %v", e.Type, e.TypeParameters)
			}
		}},
		{"tagged template", "let s = tag<T>`x`;", func(t *testing.T, e *ast.Node) {
			if e.Type != "TaggedTemplateExpression" || e.TypeParameters == nil {
				t.Errorf("got %s", e.Type)
			}
		}},
		{"generic object method", "let o = { m<T>(x: T) { return x; } };", func(t *testing.T, e *ast.Node) {
			if m := e.Properties[0]; m.Type != "ObjectMethod" || m.TypeParameters == nil {
				t.Errorf("got %s", m.Type)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, initOf(firstStatement(t, tt.input, "typescript")))
		})
	}
}

// `<` after a line break is a comparison, never type arguments.
func TestTypeArgumentsVersusComparison(t *testing.T) {
	call := firstStatement(t, "f<T>(x);", "typescript").Expression
	if call.Type != "CallExpression" || call.TypeParameters == nil {
		t.Fatalf("f<T>(x) = %s, want a call with type arguments", call.Type)
	}

	tests := []string{
		"f\n< T > (x);",
		"f < T > x;",
	}
	for _, input := range tests {
		expr := firstStatement(t, input, "typescript").Expression
		if expr.Type != "BinaryExpression" || expr.Operator != ">" || expr.Left.Operator != "<" {
			t.Errorf("%q = %s %q, want (f < T) > x", input, expr.Type, expr.Operator)
		}
	}
}

func TestTypeScriptTypes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"let t: [string, number?, ...boolean[]];", "TSTupleType"},
		{"let t: { readonly [K in keyof T]?: T[K] };", "TSMappedType"},
		{"let t: T extends string ? 's' : never;", "TSConditionalType"},
		{"let t: (a: number, ...r: string[]) => void;", "TSFunctionType"},
		{"let t: new () => C;", "TSConstructorType"},
		{"let t: typeof a.b;", "TSTypeQuery"},
		{"let t: keyof T;", "TSTypeOperator"},
		{"let t: T[number];", "TSIndexedAccessType"},
		{"let t: string[][];", "TSArrayType"},
		{"let t: -1;", "TSLiteralType"},
		{"let t: this;", "TSThisType"},
		{"let t: (string);", "TSParenthesizedType"},
		{"let t: { (): void; new (): T; a?: b };", "TSTypeLiteral"},
		{"let t: T extends (infer U)[] ? U : T;", "TSConditionalType"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			decl := firstStatement(t, tt.input, "typescript").Declarations[0]
			if got := decl.Id.TypeAnnotation.TypeAnnotation.Type; got != tt.want {
				t.Errorf("type = %s, want %s", got, tt.want)
			}
		})
	}

	lit := firstStatement(t, "let t: -1;", "typescript").Declarations[0].Id.TypeAnnotation.TypeAnnotation.Literal
	if lit.Extra["raw"] != "-1" {
		t.Errorf("negative literal raw = %v, want -1", lit.Extra["raw"])
	}
}

func TestTypeScriptErrors(t *testing.T) {
	tests := []struct {
		input string
		msg   string
	}{
		{"class A { readonly readonly x; }", "'readonly' modifier already seen."},
		{"class A { public private x; }", "Accessibility modifier already seen."},
		{"let t: [a?, b];", "A required element cannot follow an optional element."},
		{"let t: [...a[], b];", "A rest element must be last in a tuple type."},
		{"class A { constructor(private {x}) {} }", "A parameter property may only be declared using an identifier or assignment pattern."},
		{"function f([a]?) {}", "A binding pattern parameter cannot be optional in an implementation signature."},
		{"function f(a = 1: number) {}", "Type annotations must come before default assignments"},
		{"let x = (a: number);", "Did not expect a type annotation here."},
		{"let x = f(a: number);", "Did not expect a type annotation here."},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := mustFail(t, tt.input, moduleOptions("typescript"))
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not mention %q", err, tt.msg)
			}
		})
	}
}

func TestTypeScriptWithJSX(t *testing.T) {
	el := initOf(firstStatement(t, "let a = <div>{x as any}</div>;", "typescript", "jsx"))
	if el.Type != "JSXElement" {
		t.Fatalf("got %s, want JSXElement", el.Type)
	}
	arrow := initOf(firstStatement(t, "let f = <T,>(x: T) => x;", "typescript", "jsx"))
	if arrow.Type != "ArrowFunctionExpression" || arrow.TypeParameters == nil {
		t.Errorf("got %s, want a generic arrow", arrow.Type)
	}
	mustFail(t, "let v = <T>x;", moduleOptions("typescript", "jsx"))
}
