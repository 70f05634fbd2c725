package parser

import (
	"testing"

	"github.com/nooga/esparse/pkg/source"
)

func TestComposeIsMemoized(t *testing.T) {
	a := compose(PluginsFromNames("jsx", "estree"))
	b := compose(PluginsFromNames("estree", "jsx", "jsx"))
	if a != b {
		t.Fatalf("equal plugin sets gave different compositions")
	}
	if c := compose(PluginsFromNames("jsx")); c == a {
		t.Fatalf("different plugin sets share a composition")
	}
}

func TestComposeLayers(t *testing.T) {
	tests := []struct {
		plugins []string
		layers  int
		jsx     bool
		flow    bool
	}{
		{nil, 0, false, false},
		{[]string{"classProperties", "doExpressions"}, 0, false, false},
		{[]string{"jsx"}, 1, true, false},
		{[]string{"estree", "jsx", "typescript"}, 3, true, false},
		{[]string{"flow", "flowComments"}, 1, false, true},
	}
	for _, tt := range tests {
		c := compose(PluginsFromNames(tt.plugins...))
		if len(c.layers) != tt.layers {
			t.Errorf("%v: %d layers, want %d", tt.plugins, len(c.layers), tt.layers)
		}
		if c.lexer.JSX != tt.jsx || c.lexer.Flow != tt.flow {
			t.Errorf("%v: lexer jsx=%v flow=%v", tt.plugins, c.lexer.JSX, c.lexer.Flow)
		}
	}
}

// The typescript layer sits outside the markup layer, whatever the listed order.
func TestBindOrder(t *testing.T) {
	for _, order := range [][]string{{"jsx", "typescript"}, {"typescript", "jsx"}} {
		p, err := New(source.NewEvalSource(""), Options{SourceType: SourceScript, StartLine: 1, Plugins: PluginsFromNames(order...)})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		ts, ok := p.g.(*typeScriptLayer)
		if !ok {
			t.Fatalf("%v: outermost layer is %T", order, p.g)
		}
		if _, ok := ts.grammar.(*jsxLayer); !ok {
			t.Errorf("%v: layer under typescript is %T", order, ts.grammar)
		}
	}
}

func TestParsersDoNotShareState(t *testing.T) {
	opts := moduleOptions("jsx")
	first := mustParse(t, "let a = <b />;", opts)
	second := mustParse(t, "let c = 1;", opts)
	if first.Program.BodyList[0].Declarations[0].Id.Name != "a" {
		t.Errorf("first tree changed after a second parse")
	}
	if second.Program.BodyList[0].Declarations[0].Id.Name != "c" {
		t.Errorf("second parse = %v", second.Program.BodyList[0])
	}
}
