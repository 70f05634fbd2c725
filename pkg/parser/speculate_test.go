package parser

import (
	"reflect"
	"testing"

	"github.com/nooga/esparse/pkg/ast"
	"github.com/nooga/esparse/pkg/errors"
	"github.com/nooga/esparse/pkg/source"
)

// startedParser returns a parser positioned on the first token of input.
func startedParser(t *testing.T, input string, plugins ...string) *Parser {
	t.Helper()
	p, err := New(source.NewEvalSource(input), moduleOptions(plugins...))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	p.tok.NextToken()
	return p
}

func TestTryParseRollsBack(t *testing.T) {
	p := startedParser(t, "a b c")
	contexts := len(p.state.Context)

	node, err := p.tryParse(func() *ast.Node {
		p.next()
		p.next()
		p.state.Labels = append(p.state.Labels, label{Name: "x"})
		p.unexpected()
		return nil
	})
	if err == nil || node != nil {
		t.Fatalf("tryParse = %v, %v; want a failure", node, err)
	}
	if err.StartPos != 4 {
		t.Errorf("failure at %d, want 4", err.StartPos)
	}
	if p.state.Value != "a" || p.state.Start != 0 {
		t.Errorf("current token %q at %d, want %q at 0", p.state.Value, p.state.Start, "a")
	}
	if len(p.state.Labels) != 0 || len(p.state.Context) != contexts {
		t.Errorf("labels %d, contexts %d leaked out of the trial", len(p.state.Labels), len(p.state.Context))
	}

	// A later trial starts from the restored state.
	node, err = p.tryParse(func() *ast.Node { return p.parseIdentifier(false) })
	if err != nil || node.Name != "a" {
		t.Fatalf("second trial = %v, %v", node, err)
	}
	if p.state.Value != "b" {
		t.Errorf("after a successful trial the current token is %q, want %q", p.state.Value, "b")
	}
}

func TestTryParseRestoresWholeState(t *testing.T) {
	p := startedParser(t, "a /* one */ b /* two */ c", "flow")
	want := p.state.clone()

	_, err := p.tryParse(func() *ast.Node {
		p.next()
		p.next()
		p.state.NoArrowAt = append(p.state.NoArrowAt, 7)
		p.state.ExportedIdentifiers = append(p.state.ExportedIdentifiers, "b")
		p.unexpected()
		return nil
	})
	if err == nil {
		t.Fatalf("tryParse succeeded, want a failure")
	}
	if !reflect.DeepEqual(want, p.state) {
		t.Errorf("state after rollback differs from the snapshot:\n got  %+v\n want %+v", p.state, want)
	}
	if len(p.state.Comments) != 0 {
		t.Errorf("%d comments from the failed trial are visible", len(p.state.Comments))
	}

	p.next()
	if len(p.state.Comments) != 1 || p.state.Comments[0].Value != " one " {
		t.Errorf("comments after rollback = %v", p.state.Comments)
	}
}

func TestTryParseIf(t *testing.T) {
	p := startedParser(t, "a b")
	node, err := p.tryParseIf(func() *ast.Node { return p.parseIdentifier(false) }, func(n *ast.Node) bool {
		return n.Name == "z"
	})
	if node != nil || err != nil {
		t.Fatalf("rejected trial = %v, %v; want nil, nil", node, err)
	}
	if p.state.Value != "a" {
		t.Errorf("rejected trial left the parser at %q", p.state.Value)
	}
}

func TestLookaheadAlwaysRestores(t *testing.T) {
	p := startedParser(t, "a b c")
	if !p.lookahead(func() bool { p.next(); p.next(); return true }) {
		t.Errorf("lookahead = false, want true")
	}
	if p.lookahead(func() bool { p.unexpected(); return true }) {
		t.Errorf("failing lookahead = true, want false")
	}
	if p.state.Value != "a" {
		t.Errorf("lookahead left the parser at %q", p.state.Value)
	}
	if next := p.peek(); next.Value != "b" {
		t.Errorf("peek = %q, want %q", next.Value, "b")
	}
	if p.state.Value != "a" {
		t.Errorf("peek consumed a token")
	}
}

func TestTrialsDoNotCatchFatalErrors(t *testing.T) {
	p := startedParser(t, "a")
	defer func() {
		r := recover()
		if _, ok := r.(*errors.AmbiguityError); !ok {
			t.Fatalf("recovered %v, want *errors.AmbiguityError", r)
		}
	}()
	p.tryParse(func() *ast.Node {
		p.raiseAmbiguity(0, "two readings", 0, 1)
		return nil
	})
	t.Fatalf("tryParse swallowed an ambiguity")
}
