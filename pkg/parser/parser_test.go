package parser

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/nooga/esparse/pkg/ast"
	"github.com/nooga/esparse/pkg/errors"
)

func moduleOptions(plugins ...string) Options {
	opts := DefaultOptions()
	opts.SourceType = SourceModule
	opts.Plugins = PluginsFromNames(plugins...)
	return opts
}

func mustParse(t *testing.T, input string, opts Options) *ast.Node {
	t.Helper()
	file, err := Parse(input, opts)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", input, err)
	}
	return file
}

// firstStatement parses input as a module with plugins and returns the
// first top level statement.
func firstStatement(t *testing.T, input string, plugins ...string) *ast.Node {
	t.Helper()
	file := mustParse(t, input, moduleOptions(plugins...))
	if len(file.Program.BodyList) == 0 {
		t.Fatalf("Parse(%q) produced an empty program", input)
	}
	return file.Program.BodyList[0]
}

func mustFail(t *testing.T, input string, opts Options) error {
	t.Helper()
	file, err := Parse(input, opts)
	if err == nil {
		t.Fatalf("Parse(%q) = %s, want an error", input, file.Type)
	}
	return err
}

func TestParseProgramShape(t *testing.T) {
	file := mustParse(t, "let a = 1;\n// done\n", moduleOptions())
	if file.Type != "File" || file.Program.Type != "Program" {
		t.Fatalf("got %s/%s, want File/Program", file.Type, file.Program.Type)
	}
	if file.Program.SourceType != "module" {
		t.Errorf("sourceType = %q, want module", file.Program.SourceType)
	}
	if len(file.Comments) != 1 || file.Comments[0].Type != "CommentLine" {
		t.Errorf("comments = %v, want one CommentLine", file.Comments)
	}
}

func TestUnambiguousSourceType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		plugins []string
		want    string
	}{
		{"import", `import a from "a";`, nil, "module"},
		{"export", `export const a = 1;`, nil, "module"},
		{"export default", `export default 1;`, nil, "module"},
		{"plain script", `var a = 1;`, nil, "script"},
		{"sloppy only", `with (a) { b; }`, nil, "script"},
		{"import call", `import("a");`, nil, "script"},
		{"type only export", `export type { A };`, []string{"typescript"}, "script"},
		{"type only import", `import type A from "a";`, []string{"flow"}, "script"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.SourceType = SourceUnambiguous
			opts.Plugins = PluginsFromNames(tt.plugins...)
			file := mustParse(t, tt.input, opts)
			if got := file.Program.SourceType; got != tt.want {
				t.Errorf("sourceType = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnambiguousReportsModuleError(t *testing.T) {
	opts := DefaultOptions()
	opts.SourceType = SourceUnambiguous
	err := mustFail(t, "import a from;", opts)
	var se *errors.SyntaxError
	if !stderrors.As(err, &se) {
		t.Fatalf("got %T, want *errors.SyntaxError", err)
	}
}

func TestParseExpression(t *testing.T) {
	expr, err := ParseExpression("a + b * c", DefaultOptions())
	if err != nil {
		t.Fatalf("ParseExpression failed: %v", err)
	}
	if expr.Type != "BinaryExpression" || expr.Operator != "+" {
		t.Fatalf("got %s %q, want BinaryExpression +", expr.Type, expr.Operator)
	}
	if expr.Right.Type != "BinaryExpression" || expr.Right.Operator != "*" {
		t.Errorf("right = %s %q, want BinaryExpression *", expr.Right.Type, expr.Right.Operator)
	}

	if _, err := ParseExpression("a b", DefaultOptions()); err == nil {
		t.Errorf("ParseExpression(%q) succeeded, want trailing token error", "a b")
	}
}

func TestNestingLimit(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxDepth = 20
	input := strings.Repeat("(", 50) + "1" + strings.Repeat(")", 50)
	err := mustFail(t, input, opts)
	var ne *errors.NestingError
	if !stderrors.As(err, &ne) {
		t.Fatalf("got %T (%v), want *errors.NestingError", err, err)
	}
	if ne.Limit != 20 {
		t.Errorf("limit = %d, want 20", ne.Limit)
	}

	opts.MaxDepth = 0
	mustParse(t, input, opts)
}

func TestNestingLimitInTypes(t *testing.T) {
	tests := []struct {
		name   string
		plugin string
		input  string
	}{
		{"flow nullable", "flow", "type A = " + strings.Repeat("?", 60) + "T;"},
		{"flow arrays", "flow", "type A = " + strings.Repeat("Array<", 30) + "T" + strings.Repeat(">", 30) + ";"},
		{"typescript keyof", "typescript", "type A = " + strings.Repeat("keyof ", 60) + "T;"},
		{"typescript unique", "typescript", "type A = " + strings.Repeat("unique ", 60) + "symbol;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := moduleOptions(tt.plugin)
			opts.MaxDepth = 20
			err := mustFail(t, tt.input, opts)
			var ne *errors.NestingError
			if !stderrors.As(err, &ne) {
				t.Fatalf("got %T (%v), want *errors.NestingError", err, err)
			}

			opts.MaxDepth = 0
			mustParse(t, tt.input, opts)
		})
	}
}

func TestInvalidAssignmentTargets(t *testing.T) {
	tests := []struct {
		input string
		msg   string
	}{
		{"1 = 2;", "Invalid left-hand side in assignment expression"},
		{"++1;", "Invalid left-hand side in prefix operation"},
		{"f()++;", "Invalid left-hand side in postfix operation"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := mustFail(t, tt.input, moduleOptions())
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not mention %q", err, tt.msg)
			}
		})
	}
}

func TestSyntaxErrorPosition(t *testing.T) {
	err := mustFail(t, "let a = 1;\nlet = ;", moduleOptions())
	var se *errors.SyntaxError
	if !stderrors.As(err, &se) {
		t.Fatalf("got %T, want *errors.SyntaxError", err)
	}
	if se.Line != 2 {
		t.Errorf("line = %d, want 2", se.Line)
	}
}

func TestStartLine(t *testing.T) {
	opts := moduleOptions()
	opts.StartLine = 10
	file := mustParse(t, "a;\nb;", opts)
	second := file.Program.BodyList[1]
	if second.Loc.Start.Line != 11 {
		t.Errorf("second statement line = %d, want 11", second.Loc.Start.Line)
	}
}

// Every node lies within its parent.
func TestSpansNest(t *testing.T) {
	inputs := []struct {
		name    string
		input   string
		plugins []string
	}{
		{"base", "class A extends B { #x = 1; static async *m(a = 1, ...r) { yield* a?.[b]; } }\nfor (const [k, v] of m) label: { break label; }", nil},
		{"estree", "const o = { a, b: 2, get c() { return 3; } }; 'use strict';", []string{"estree"}},
		{"jsx", "const el = <A b={1} {...c}><B.C /> text {d}</A>;", []string{"jsx"}},
		{"flow", "type T<U> = { a: ?U, [k: string]: number };\nfunction f(x: T<string> = {}): void {}", []string{"flow"}},
		{"typescript", "enum E { A = 1, B }\nclass C<T> implements I { private readonly x?: T; constructor(public y: number) {} }\nlet z = f<string>(a as any)!;", []string{"typescript"}},
	}
	for _, tt := range inputs {
		t.Run(tt.name, func(t *testing.T) {
			file := mustParse(t, tt.input, moduleOptions(tt.plugins...))
			ast.Walk(file, func(n *ast.Node) bool {
				if n.Start > n.End {
					t.Errorf("%s: start %d after end %d", n.Type, n.Start, n.End)
				}
				for _, c := range n.ChildNodes() {
					if c.Start < n.Start || c.End > n.End {
						t.Errorf("%s [%d,%d] escapes parent %s [%d,%d]", c.Type, c.Start, c.End, n.Type, n.Start, n.End)
					}
				}
				return true
			})
		})
	}
}

func TestNewRejectsBadOptions(t *testing.T) {
	tests := []struct {
		name   string
		opts   Options
		option string
	}{
		{"source type", Options{SourceType: "json", StartLine: 1}, "sourceType"},
		{"start line", Options{SourceType: SourceScript}, "startLine"},
		{"plugin", Options{SourceType: SourceScript, StartLine: 1, Plugins: PluginsFromNames("nope")}, "nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("a", tt.opts)
			var ce *errors.ConfigError
			if !stderrors.As(err, &ce) {
				t.Fatalf("got %v, want *errors.ConfigError", err)
			}
			if ce.Option != tt.option {
				t.Errorf("option = %q, want %q", ce.Option, tt.option)
			}
		})
	}
}

func TestOptionsFromMap(t *testing.T) {
	opts, err := OptionsFromMap(map[string]any{
		"sourceType": "module",
		"startLine":  float64(3),
		"plugins":    []any{"jsx", []any{"decorators", map[string]any{"decoratorsBeforeExport": true}}},
		"unknown":    1,
	})
	if err != nil {
		t.Fatalf("OptionsFromMap failed: %v", err)
	}
	if opts.SourceType != SourceModule || opts.StartLine != 3 {
		t.Errorf("got sourceType %q startLine %d", opts.SourceType, opts.StartLine)
	}
	if !opts.Plugins.Has("jsx") || !opts.Plugins.Has("decorators") {
		t.Errorf("plugins = %v", opts.Plugins.Names())
	}
	if v, _ := opts.Plugins.Option("decorators", "decoratorsBeforeExport"); v != true {
		t.Errorf("decoratorsBeforeExport = %v, want true", v)
	}

	if _, err := OptionsFromMap(map[string]any{"startLine": "1"}); err == nil {
		t.Errorf("string startLine accepted")
	}
}
