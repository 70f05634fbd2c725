package main

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/nooga/esparse/pkg/parser"
	"github.com/nooga/esparse/pkg/source"
)

func flagsFor(t *testing.T, args ...string) (*parseFlags, *pflag.FlagSet) {
	t.Helper()
	var f parseFlags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.register(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("flag parse failed: %v", err)
	}
	return &f, fs
}

func TestParseFlagsOptions(t *testing.T) {
	f, fs := flagsFor(t, "--source-type", "module", "-p", "jsx", "-p", `decorators:{"decoratorsBeforeExport":true}`, "--strict=false", "--start-line", "3")
	opts, err := f.options(fs)
	if err != nil {
		t.Fatalf("options failed: %v", err)
	}
	if opts.SourceType != parser.SourceModule || opts.StartLine != 3 {
		t.Errorf("got %s line %d", opts.SourceType, opts.StartLine)
	}
	if opts.StrictMode == nil || *opts.StrictMode {
		t.Errorf("strict mode = %v, want false", opts.StrictMode)
	}
	if !opts.Plugins.Has("jsx") {
		t.Errorf("plugins = %+v", opts.Plugins)
	}
	if v, ok := opts.Plugins.Option("decorators", "decoratorsBeforeExport"); !ok || v != true {
		t.Errorf("decoratorsBeforeExport = %v", v)
	}
}

func TestParseFlagsOptionsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opts.json")
	if err := os.WriteFile(path, []byte(`{"sourceType":"module","plugins":["flow"]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	f, fs := flagsFor(t, "--options", path, "-p", "jsx")
	opts, err := f.options(fs)
	if err != nil {
		t.Fatalf("options failed: %v", err)
	}
	if opts.SourceType != parser.SourceModule {
		t.Errorf("source type = %s, want module from the file", opts.SourceType)
	}
	if names := opts.Plugins.Names(); len(names) != 2 || names[0] != "flow" || names[1] != "jsx" {
		t.Errorf("plugins = %v", names)
	}

	f, fs = flagsFor(t, "--options", path, "--source-type", "script")
	if opts, _ = f.options(fs); opts.SourceType != parser.SourceScript {
		t.Errorf("flag did not override the file: %s", opts.SourceType)
	}
}

func TestReportExitCodes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		plugins []string
		code    int
	}{
		{"syntax", "let = ;", nil, exitSyntax},
		{"config", "x;", []string{"flow", "typescript"}, exitConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := source.NewEvalSource(tt.input)
			opts := parser.DefaultOptions()
			opts.Plugins = parser.PluginsFromNames(tt.plugins...)
			_, err := parser.ParseSource(src, opts)
			if err == nil {
				t.Fatalf("expected an error")
			}
			var buf bytes.Buffer
			var ee *exitError
			if !stderrors.As(report(&buf, src, err), &ee) {
				t.Fatalf("report did not return an exit error")
			}
			if ee.code != tt.code {
				t.Errorf("exit code = %d, want %d", ee.code, tt.code)
			}
			if !strings.Contains(buf.String(), "Error") {
				t.Errorf("nothing printed: %q", buf.String())
			}
		})
	}
}

func TestIsIncomplete(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"function f() {\n", true},
		{"let a = [1,\n", true},
		{"`abc\n", true},
		{"/* note\n", true},
		{"1 +* 2;\n", false},
		{"a b\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := parseReplInput(tt.input, parser.DefaultOptions())
			if err == nil {
				t.Fatalf("expected an error")
			}
			if got := isIncomplete(tt.input, err); got != tt.want {
				t.Errorf("isIncomplete = %v, want %v (%v)", got, tt.want, err)
			}
		})
	}
}

func TestParseReplInput(t *testing.T) {
	node, err := parseReplInput("a + b\n", parser.DefaultOptions())
	if err != nil || node.Type != "BinaryExpression" {
		t.Fatalf("expression input gave %v, %v", node, err)
	}
	node, err = parseReplInput("let a = 1;\n", parser.DefaultOptions())
	if err != nil || node.Type != "File" {
		t.Fatalf("statement input gave %v, %v", node, err)
	}
}

func TestListPlugins(t *testing.T) {
	var buf bytes.Buffer
	if err := listPlugins(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"typescript", "flow", "jsx", "estree", "layer"} {
		if !strings.Contains(out, want) {
			t.Errorf("listing does not mention %s", want)
		}
	}
}
