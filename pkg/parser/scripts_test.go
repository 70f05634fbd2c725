package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dlclark/regexp2"

	"github.com/nooga/esparse/pkg/source"
)

// Directives in the leading comments of a script:
//
//	// plugins: flow jsx
//	// sourceType: module
//	// expect: ImportDeclaration, FunctionDeclaration
//	// expect_error: message
var directivePattern = regexp2.MustCompile(`^//\s*(plugins|sourceType|expect|expect_error):[ \t]*(.*?)\s*$`, regexp2.Multiline)

type scriptCase struct {
	opts        Options
	expect      []string
	expectError string
}

func parseScriptCase(content string) (*scriptCase, error) {
	sc := &scriptCase{opts: DefaultOptions()}
	found := false
	m, err := directivePattern.FindStringMatch(content)
	for ; m != nil && err == nil; m, err = directivePattern.FindNextMatch(m) {
		groups := m.Groups()
		value := groups[2].String()
		switch groups[1].String() {
		case "plugins":
			sc.opts.Plugins = PluginsFromNames(strings.Fields(value)...)
		case "sourceType":
			sc.opts.SourceType = SourceType(value)
		case "expect":
			for _, typ := range strings.Split(value, ",") {
				sc.expect = append(sc.expect, strings.TrimSpace(typ))
			}
			found = true
		case "expect_error":
			sc.expectError = value
			found = true
		}
	}
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("no expectation comment found (e.g., // expect: ExpressionStatement)")
	}
	return sc, nil
}

func TestScripts(t *testing.T) {
	scriptDir := filepath.Join("testdata", "scripts")
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		t.Fatalf("Failed to read script directory %q: %v", scriptDir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		scriptPath := filepath.Join(scriptDir, entry.Name())
		t.Run(entry.Name(), func(t *testing.T) {
			src, err := source.ReadFile(scriptPath)
			if err != nil {
				t.Fatalf("Failed to read script file %q: %v", scriptPath, err)
			}
			sc, err := parseScriptCase(src.Content)
			if err != nil {
				t.Fatalf("%s: %v", scriptPath, err)
			}

			file, err := ParseSource(src, sc.opts)
			if sc.expectError != "" {
				if err == nil {
					t.Fatalf("Expected error containing %q, but the script parsed", sc.expectError)
				}
				if !strings.Contains(err.Error(), sc.expectError) {
					t.Errorf("Expected error containing %q, got %q", sc.expectError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			body := file.Program.BodyList
			got := make([]string, len(body))
			for i, stmt := range body {
				got[i] = stmt.Type
			}
			if strings.Join(got, ", ") != strings.Join(sc.expect, ", ") {
				t.Errorf("statements:\n  got  %s\n  want %s", strings.Join(got, ", "), strings.Join(sc.expect, ", "))
			}
		})
	}
}
