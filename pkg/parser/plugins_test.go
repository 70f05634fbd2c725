package parser

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/nooga/esparse/pkg/errors"
)

func TestValidatePlugins(t *testing.T) {
	decorators := func(opts map[string]any) PluginSpec {
		return PluginSpec{Name: "decorators", Options: opts}
	}
	tests := []struct {
		name    string
		plugins Plugins
		option  string
		msg     string // substring of the message, "" for success
	}{
		{"empty", nil, "", ""},
		{"layers", PluginsFromNames("estree", "jsx", "typescript"), "", ""},
		{"builtin names", PluginsFromNames("classProperties", "optionalChaining", "bigInt"), "", ""},
		{"flow and typescript", PluginsFromNames("typescript", "flow"), "flow", "Cannot combine flow and typescript plugins."},
		{"flow and legacy decorators", PluginsFromNames("flow", "decorators-legacy"), "flow", "Cannot combine flow and decorators-legacy plugins."},
		{
			"both decorators",
			Plugins{decorators(map[string]any{"decoratorsBeforeExport": true}), {Name: "decorators-legacy"}},
			"decorators", "Cannot use the decorators and decorators-legacy plugin together",
		},
		{"decorators without option", Plugins{decorators(nil)}, "decorators", "requires a 'decoratorsBeforeExport' option"},
		{"decorators with string option", Plugins{decorators(map[string]any{"decoratorsBeforeExport": "yes"})}, "decorators", "'decoratorsBeforeExport' must be a boolean."},
		{"decorators ok", Plugins{decorators(map[string]any{"decoratorsBeforeExport": false})}, "", ""},
		{"pipeline without proposal", PluginsFromNames("pipelineOperator"), "pipelineOperator", "one of: 'minimal'"},
		{"pipeline minimal", Plugins{{Name: "pipelineOperator", Options: map[string]any{"proposal": "minimal"}}}, "", ""},
		{"unknown", PluginsFromNames("typescrpt"), "typescrpt", `did you mean "typescript"?`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePlugins(tt.plugins)
			if tt.msg == "" {
				if err != nil {
					t.Fatalf("ValidatePlugins failed: %v", err)
				}
				return
			}
			var ce *errors.ConfigError
			if !stderrors.As(err, &ce) {
				t.Fatalf("got %v, want *errors.ConfigError", err)
			}
			if ce.Option != tt.option {
				t.Errorf("option = %q, want %q", ce.Option, tt.option)
			}
			if !strings.Contains(ce.Msg, tt.msg) {
				t.Errorf("message %q does not contain %q", ce.Msg, tt.msg)
			}
		})
	}
}

func TestSuggestPlugin(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"typescrpt", "typescript"},
		{"JSX", "jsx"},
		{"decorator", "decorators"},
		{"zzzzzzzzzzzz", ""},
	}
	for _, tt := range tests {
		if got := suggestPlugin(tt.in); got != tt.want {
			t.Errorf("suggestPlugin(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParsePluginSpec(t *testing.T) {
	spec, err := ParsePluginSpec(`decorators:{"decoratorsBeforeExport":true}`)
	if err != nil {
		t.Fatalf("ParsePluginSpec failed: %v", err)
	}
	if spec.Name != "decorators" || spec.Options["decoratorsBeforeExport"] != true {
		t.Errorf("got %+v", spec)
	}

	spec, err = ParsePluginSpec(" jsx ")
	if err != nil || spec.Name != "jsx" || spec.Options != nil {
		t.Errorf("got %+v, %v", spec, err)
	}

	for _, bad := range []string{"", ":{}", `flow:{"all":`} {
		if _, err := ParsePluginSpec(bad); err == nil {
			t.Errorf("ParsePluginSpec(%q) succeeded", bad)
		}
	}
}

func TestPluginNames(t *testing.T) {
	ps := PluginsFromNames("jsx", "flow", "jsx")
	got := strings.Join(ps.Names(), ",")
	if got != "flow,jsx" {
		t.Errorf("Names() = %q, want %q", got, "flow,jsx")
	}
}

func TestPluginGatedSyntax(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		plugins []string
	}{
		{"do expression", "let a = do { 1; };", []string{"doExpressions"}},
		{"bind", "a::b;", []string{"functionBind"}},
		{"throw expression", "let a = b || throw c;", []string{"throwExpressions"}},
		{"export default from", `export v from "m";`, []string{"exportDefaultFrom"}},
		{"jsx", "<a />;", []string{"jsx"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustFail(t, tt.input, moduleOptions())
			mustParse(t, tt.input, moduleOptions(tt.plugins...))
		})
	}
}
