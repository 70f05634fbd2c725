package lsp

import (
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/nooga/esparse/pkg/errors"
	"github.com/nooga/esparse/pkg/parser"
)

func TestOptionsForURI(t *testing.T) {
	tests := []struct {
		uri        string
		text       string
		plugins    []string
		sourceType parser.SourceType
	}{
		{"file:///a/b.ts", "", []string{"typescript"}, parser.SourceUnambiguous},
		{"file:///a/b.tsx", "", []string{"jsx", "typescript"}, parser.SourceUnambiguous},
		{"file:///a/b.mts", "", []string{"typescript"}, parser.SourceModule},
		{"file:///a/b.cts", "", []string{"typescript"}, parser.SourceScript},
		{"file:///a/b.js", "let a = 1;", []string{"jsx"}, parser.SourceUnambiguous},
		{"file:///a/b.jsx", "// @flow\nlet a = 1;", []string{"flow", "jsx"}, parser.SourceUnambiguous},
		{"file:///a/b.js", "/**\n * @flow strict\n */\n", []string{"flow", "jsx"}, parser.SourceUnambiguous},
		{"file:///a/b.js", "// @noflow\n", []string{"jsx"}, parser.SourceUnambiguous},
		{"file:///a/b.js", "let a = 1; // @flow\n", []string{"jsx"}, parser.SourceUnambiguous},
		{"file:///a/b.mjs", "", []string{"jsx"}, parser.SourceModule},
		{"file:///a/b.cjs", "", []string{"jsx"}, parser.SourceScript},
	}
	for _, tt := range tests {
		t.Run(tt.uri+" "+tt.text, func(t *testing.T) {
			opts := OptionsForURI(tt.uri, tt.text)
			names := opts.Plugins.Names()
			if len(names) != len(tt.plugins) {
				t.Fatalf("plugins = %v, want %v", names, tt.plugins)
			}
			for i := range names {
				if names[i] != tt.plugins[i] {
					t.Errorf("plugins = %v, want %v", names, tt.plugins)
					break
				}
			}
			if opts.SourceType != tt.sourceType {
				t.Errorf("source type = %s, want %s", opts.SourceType, tt.sourceType)
			}
		})
	}
}

func TestDiagnosticsClear(t *testing.T) {
	diagnostics := Diagnostics("let a = 1;", nil)
	if diagnostics == nil || len(diagnostics) != 0 {
		t.Errorf("got %v, want an empty list", diagnostics)
	}
}

func TestDiagnosticsFromSyntaxError(t *testing.T) {
	text := "x = 1;\nlet a = ;"
	_, err := parser.Parse(text, parser.DefaultOptions())
	if err == nil {
		t.Fatalf("expected a syntax error")
	}
	diagnostics := Diagnostics(text, err)
	if len(diagnostics) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(diagnostics))
	}
	d := diagnostics[0]
	if d.Range.Start.Line != 1 || d.Range.Start.Character != 8 {
		t.Errorf("start = %+v, want 1:8", d.Range.Start)
	}
	if d.Range.End.Character != 9 {
		t.Errorf("end = %+v, want 1:9", d.Range.End)
	}
	if d.Severity == nil || *d.Severity != protocol.DiagnosticSeverityError {
		t.Errorf("severity = %v", d.Severity)
	}
	if d.Code == nil || d.Code.Value != "Syntax" {
		t.Errorf("code = %v", d.Code)
	}
}

func TestDiagnosticsFromConfigError(t *testing.T) {
	err := &errors.ConfigError{Option: "flow", Msg: "Cannot combine flow and typescript plugins."}
	d := Diagnostics("", err)[0]
	if d.Message != err.Msg {
		t.Errorf("message = %q", d.Message)
	}
	if d.Range.Start.Line != 0 || d.Range.End.Character != 0 {
		t.Errorf("range = %+v, want empty", d.Range)
	}
}

func TestOffsetToPosition(t *testing.T) {
	tests := []struct {
		text   string
		offset int
		line   protocol.UInteger
		char   protocol.UInteger
	}{
		{"abc", 2, 0, 2},
		{"a\nbc", 3, 1, 1},
		{"é = 1", 3, 0, 2},
		{"'😀' + x", 6, 0, 4},
		{"abc", 10, 0, 3},
	}
	for _, tt := range tests {
		got := offsetToPosition(tt.text, tt.offset)
		if got.Line != tt.line || got.Character != tt.char {
			t.Errorf("offsetToPosition(%q, %d) = %d:%d, want %d:%d", tt.text, tt.offset, got.Line, got.Character, tt.line, tt.char)
		}
	}
}
