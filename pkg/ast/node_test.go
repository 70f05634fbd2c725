package ast

import (
	"encoding/json"
	"strings"
	"testing"
)

func ident(name string, start int) *Node {
	n := NewNode(start, Position{Offset: start, Line: 1, Column: start}, "")
	n.Name = name
	return n.Finish("Identifier", start+len(name), Position{Offset: start + len(name), Line: 1, Column: start + len(name)})
}

func TestCloneDropsCommentsAndCopiesContainers(t *testing.T) {
	call := NewNode(0, Position{Line: 1}, "a.js")
	call.Callee = ident("f", 0)
	call.Arguments = []*Node{ident("x", 2)}
	call.LeadingComments = []*Comment{{Type: "CommentLine", Value: " hi"}}
	call.SetExtra("parenthesized", true)
	call.Finish("CallExpression", 4, Position{Line: 1, Column: 4})

	clone := call.Clone()
	if clone.LeadingComments != nil {
		t.Errorf("clone kept leading comments")
	}
	if clone.Type != "CallExpression" || clone.Callee != call.Callee {
		t.Errorf("clone lost fields: %v", clone)
	}

	clone.Arguments[0] = ident("y", 2)
	clone.Arguments = append(clone.Arguments, ident("z", 4))
	if call.Arguments[0].Name != "x" || len(call.Arguments) != 1 {
		t.Errorf("clone aliases the argument list of the original")
	}
	clone.SetExtra("parenthesized", false)
	if !call.Parenthesized() {
		t.Errorf("clone aliases the extra map of the original")
	}
}

func TestCloneKeepsEmptyLists(t *testing.T) {
	fn := &Node{Type: "FunctionExpression", Params: []*Node{}}
	if c := fn.Clone(); c.Params == nil {
		t.Errorf("empty params became nil after Clone")
	}
}

func TestMarshalJSON(t *testing.T) {
	lit := &Node{Type: "Literal", Start: 8, End: 12, LitValue: Null, Raw: "null"}
	decl := &Node{
		Type:  "VariableDeclarator",
		Start: 4, End: 12,
		Id:    ident("x", 4),
		Init:  lit,
	}

	b, err := json.Marshal(decl)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	out := string(b)
	if !strings.HasPrefix(out, `{"type":"VariableDeclarator","start":4,"end":12,"loc":`) {
		t.Errorf("unexpected key order: %s", out)
	}
	if !strings.Contains(out, `"value":null,"raw":"null"`) {
		t.Errorf("null literal value missing: %s", out)
	}
	if strings.Contains(out, `"computed"`) {
		t.Errorf("zero fields should be omitted: %s", out)
	}
}

func TestWalk(t *testing.T) {
	program := &Node{Type: "Program", BodyList: []*Node{
		{Type: "ExpressionStatement", Expression: ident("a", 0)},
		{Type: "ArrayExpression", Elements: []*Node{nil, ident("b", 3)}},
	}}

	var kinds []string
	Walk(program, func(n *Node) bool {
		kinds = append(kinds, n.Type)
		return n.Type != "ArrayExpression"
	})

	want := "Program,ExpressionStatement,Identifier,ArrayExpression"
	if got := strings.Join(kinds, ","); got != want {
		t.Errorf("Walk visited %s, want %s", got, want)
	}
}
