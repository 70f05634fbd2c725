package parser

import (
	"strings"
	"testing"

	"github.com/nooga/esparse/pkg/ast"
)

func TestJSXElements(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, el *ast.Node)
	}{
		{"self closing", "<a />;", func(t *testing.T, el *ast.Node) {
			if el.Type != "JSXElement" || !el.OpeningElement.SelfClosing || el.ClosingElement != nil {
				t.Errorf("got %s", el.Type)
			}
		}},
		{"children", "<div>hi {name} <b>!</b></div>;", func(t *testing.T, el *ast.Node) {
			want := []string{"JSXText", "JSXExpressionContainer", "JSXText", "JSXElement"}
			if len(el.Children) != len(want) {
				t.Fatalf("%d children, want %d", len(el.Children), len(want))
			}
			for i, c := range el.Children {
				if c.Type != want[i] {
					t.Errorf("child %d = %s, want %s", i, c.Type, want[i])
				}
			}
		}},
		{"attributes", `<a b="1" c={2} d e:f="g" {...h} />;`, func(t *testing.T, el *ast.Node) {
			attrs := el.OpeningElement.Attributes
			if len(attrs) != 5 {
				t.Fatalf("%d attributes, want 5", len(attrs))
			}
			if attrs[2].Value != nil {
				t.Errorf("bare attribute has value %v", attrs[2].Value)
			}
			if attrs[3].NameNode.Type != "JSXNamespacedName" {
				t.Errorf("namespaced attribute name = %s", attrs[3].NameNode.Type)
			}
			if attrs[4].Type != "JSXSpreadAttribute" {
				t.Errorf("spread attribute = %s", attrs[4].Type)
			}
		}},
		{"member name", "<A.B.C></A.B.C>;", func(t *testing.T, el *ast.Node) {
			if el.OpeningElement.NameNode.Type != "JSXMemberExpression" {
				t.Errorf("name = %s", el.OpeningElement.NameNode.Type)
			}
		}},
		{"fragment", "<><a /></>;", func(t *testing.T, el *ast.Node) {
			if el.Type != "JSXFragment" || el.OpeningFragment == nil || el.ClosingFragment == nil {
				t.Errorf("got %s", el.Type)
			}
		}},
		{"spread child", "<a>{...b}</a>;", func(t *testing.T, el *ast.Node) {
			if el.Children[0].Type != "JSXSpreadChild" {
				t.Errorf("child = %s", el.Children[0].Type)
			}
		}},
		{"empty expression", "<a>{/* note */}</a>;", func(t *testing.T, el *ast.Node) {
			if el.Children[0].Type != "JSXExpressionContainer" || el.Children[0].Expression.Type != "JSXEmptyExpression" {
				t.Errorf("child = %v", el.Children[0])
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, firstStatement(t, tt.input, "jsx").Expression)
		})
	}
}

func TestJSXText(t *testing.T) {
	el := firstStatement(t, "<a>x &amp; y</a>;", "jsx").Expression
	text := el.Children[0]
	if text.LitValue != "x & y" {
		t.Errorf("cooked text = %q, want %q", text.LitValue, "x & y")
	}
	if text.Extra["raw"] != "x &amp; y" {
		t.Errorf("raw text = %v", text.Extra["raw"])
	}

	el = firstStatement(t, "<a>&quot;x&quot; &lt;3</a>;", "jsx").Expression
	if text := el.Children[0]; text.LitValue != `"x" <3` {
		t.Errorf("cooked entities = %q", text.LitValue)
	}

	el = firstStatement(t, "<a>x &amp; y</a>;", "jsx", "estree").Expression
	if text := el.Children[0]; text.Raw != "x &amp; y" {
		t.Errorf("estree raw text = %q", text.Raw)
	}
}

func TestJSXErrors(t *testing.T) {
	tests := []struct {
		input string
		msg   string
	}{
		{"<a></b>;", "Expected corresponding JSX closing tag for <a>"},
		{"<a.b></a.c>;", "Expected corresponding JSX closing tag for <a.b>"},
		{"<></a>;", "Expected corresponding JSX closing tag for <>"},
		{"<a b={} />;", "JSX attributes must only be assigned a non-empty expression"},
		{"let x = <a /><b />;", "Adjacent JSX elements must be wrapped in an enclosing tag"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := mustFail(t, tt.input, moduleOptions("jsx"))
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not mention %q", err, tt.msg)
			}
		})
	}
}
