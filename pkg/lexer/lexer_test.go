package lexer

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/nooga/esparse/pkg/ast"
	"github.com/nooga/esparse/pkg/errors"
)

type tok struct {
	typ   TokenType
	value string
}

// scan tokenizes the whole input and returns the tokens before EOF.
func scan(input string, opts Options) (toks []tok, err *errors.SyntaxError) {
	defer func() {
		if r := recover(); r != nil {
			se, ok := r.(*errors.SyntaxError)
			if !ok {
				panic(r)
			}
			err = se
		}
	}()
	st := NewState(1)
	tk := New(input, opts, &st)
	tk.NextToken()
	for st.Type != EOF {
		toks = append(toks, tok{st.Type, st.Value})
		tk.Next()
	}
	return toks, nil
}

func checkTokens(t *testing.T, input string, opts Options, want []tok) {
	t.Helper()
	got, err := scan(input, opts)
	if err != nil {
		t.Fatalf("scan(%q): %v", input, err)
	}
	if len(got) != len(want) {
		t.Fatalf("scan(%q): got %d tokens %v, want %d %v", input, len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("scan(%q) token %d: got %v, want %v", input, i, got[i], want[i])
		}
	}
}

func TestNextToken(t *testing.T) {
	input := `let five = 5;
const add = function(x, y) {
  return x + y;
};
if (five >= 10) { five **= 2 } else five?.x ?? null;`

	checkTokens(t, input, Options{}, []tok{
		{NAME, "let"}, {NAME, "five"}, {EQ, "="}, {NUM, "5"}, {SEMI, ";"},
		{CONST, "const"}, {NAME, "add"}, {EQ, "="}, {FUNCTION, "function"},
		{PAREN_L, "("}, {NAME, "x"}, {COMMA, ","}, {NAME, "y"}, {PAREN_R, ")"},
		{BRACE_L, "{"}, {RETURN, "return"}, {NAME, "x"}, {PLUS_MIN, "+"}, {NAME, "y"},
		{SEMI, ";"}, {BRACE_R, "}"}, {SEMI, ";"},
		{IF, "if"}, {PAREN_L, "("}, {NAME, "five"}, {RELATIONAL, ">="}, {NUM, "10"},
		{PAREN_R, ")"}, {BRACE_L, "{"}, {NAME, "five"}, {ASSIGN, "**="}, {NUM, "2"},
		{BRACE_R, "}"}, {ELSE, "else"}, {NAME, "five"}, {QUESTION_DOT, "?."},
		{NAME, "x"}, {NULLISH, "??"}, {NULL, "null"}, {SEMI, ";"},
	})
}

func TestSlashDisambiguation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []tok
	}{
		{"division chain", "a / b / c", []tok{
			{NAME, "a"}, {SLASH, "/"}, {NAME, "b"}, {SLASH, "/"}, {NAME, "c"},
		}},
		{"regex after assignment", "x = /ab+c/", []tok{
			{NAME, "x"}, {EQ, "="}, {REGEXP, "ab+c"},
		}},
		{"regex after statement paren", "if (a) /re/.test(b)", []tok{
			{IF, "if"}, {PAREN_L, "("}, {NAME, "a"}, {PAREN_R, ")"}, {REGEXP, "re"},
			{DOT, "."}, {NAME, "test"}, {PAREN_L, "("}, {NAME, "b"}, {PAREN_R, ")"},
		}},
		{"division after expression paren", "(a) / 2", []tok{
			{PAREN_L, "("}, {NAME, "a"}, {PAREN_R, ")"}, {SLASH, "/"}, {NUM, "2"},
		}},
		{"divide assign", "a /= 2", []tok{
			{NAME, "a"}, {ASSIGN, "/="}, {NUM, "2"},
		}},
		{"regex with class containing slash", "r = /[/]/", []tok{
			{NAME, "r"}, {EQ, "="}, {REGEXP, "[/]"},
		}},
		{"keyword property then division", "a.return / 2", []tok{
			{NAME, "a"}, {DOT, "."}, {RETURN, "return"}, {SLASH, "/"}, {NUM, "2"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkTokens(t, tt.input, Options{}, tt.want)
		})
	}
}

func TestTemplates(t *testing.T) {
	checkTokens(t, "`a${b}c`", Options{}, []tok{
		{BACK_QUOTE, "`"}, {TEMPLATE, "a"}, {DOLLAR_BRACE_L, "${"}, {NAME, "b"},
		{BRACE_R, "}"}, {TEMPLATE, "c"}, {BACK_QUOTE, "`"},
	})
	checkTokens(t, "``", Options{}, []tok{
		{BACK_QUOTE, "`"}, {TEMPLATE, ""}, {BACK_QUOTE, "`"},
	})
	checkTokens(t, "`a\r\nb`", Options{}, []tok{
		{BACK_QUOTE, "`"}, {TEMPLATE, "a\nb"}, {BACK_QUOTE, "`"},
	})
}

func TestInvalidTemplateEscape(t *testing.T) {
	st := NewState(1)
	tk := New("`\\unicode`", Options{}, &st)
	tk.NextToken()
	tk.Next()
	if st.Type != TEMPLATE || !st.Invalid {
		t.Fatalf("got %s invalid=%v, want an invalid template chunk", st.Type, st.Invalid)
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input string
		typ   TokenType
		num   float64
	}{
		{"42", NUM, 42},
		{"1_000_000", NUM, 1000000},
		{".5", NUM, 0.5},
		{"1e3", NUM, 1000},
		{"0x1F", NUM, 31},
		{"0b101", NUM, 5},
		{"0o17", NUM, 15},
		{"017", NUM, 15},
		{"019", NUM, 19},
		{"10n", BIGINT, 0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			st := NewState(1)
			tk := New(tt.input, Options{}, &st)
			tk.NextToken()
			if st.Type != tt.typ {
				t.Fatalf("type: got %s, want %s", st.Type, tt.typ)
			}
			if tt.typ == NUM && st.Num != tt.num {
				t.Errorf("value: got %v, want %v", st.Num, tt.num)
			}
		})
	}
}

func TestTokenizerErrors(t *testing.T) {
	tests := []struct {
		input string
		msg   string
	}{
		{"1__0", "Only one underscore is allowed as numeric separator"},
		{"1_", "Numeric separators are not allowed at the end of numeric literals"},
		{"3in x", "Identifier directly after number"},
		{"'abc", "Unterminated string constant"},
		{"/* open", "Unterminated comment"},
		{"x = /abc", "Unterminated regular expression"},
		{"x = /a/gg", "Duplicate regular expression flag"},
		{"x = /a/q", "Invalid regular expression flag"},
		{"1.5n", "Invalid BigIntLiteral"},
		{"`abc", "Unterminated template"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := scan(tt.input, Options{})
			if err == nil {
				t.Fatalf("expected error %q", tt.msg)
			}
			if err.Msg != tt.msg {
				t.Errorf("got %q, want %q", err.Msg, tt.msg)
			}
		})
	}
}

func TestStrings(t *testing.T) {
	checkTokens(t, `"a\tb" 'c\x41\u{1F600}' "\101"`, Options{}, []tok{
		{STRING, "a\tb"}, {STRING, "cA\U0001F600"}, {STRING, "A"},
	})
}

func TestComments(t *testing.T) {
	st := NewState(1)
	var seen []string
	tk := New("// one\na /* two */ b", Options{}, &st)
	tk.OnComment = func(c *ast.Comment) { seen = append(seen, c.Type+":"+c.Value) }
	tk.NextToken()
	for st.Type != EOF {
		tk.Next()
	}
	want := []string{"CommentLine: one", "CommentBlock: two "}
	if len(seen) != len(want) {
		t.Fatalf("got %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("comment %d: got %q, want %q", i, seen[i], want[i])
		}
	}
	if len(st.Comments) != 2 {
		t.Errorf("state holds %d comments, want 2", len(st.Comments))
	}
}

func TestPositions(t *testing.T) {
	st := NewState(5)
	tk := New("a\n  héllo", Options{}, &st)
	tk.NextToken()
	tk.Next()
	if st.StartLoc.Line != 6 || st.StartLoc.Column != 2 {
		t.Errorf("start: got %d:%d, want 6:2", st.StartLoc.Line, st.StartLoc.Column)
	}
	if st.EndLoc.Column != 7 {
		t.Errorf("end column counts runes: got %d, want 7", st.EndLoc.Column)
	}
	if st.End != len("a\n  héllo") {
		t.Errorf("end offset counts bytes: got %d", st.End)
	}
	if loc := tk.PositionAt(st.Start); loc != st.StartLoc {
		t.Errorf("PositionAt: got %+v, want %+v", loc, st.StartLoc)
	}
}

func TestColumnsOnLongLines(t *testing.T) {
	line := strings.Repeat("é", 100) + strings.Repeat("x", 70) + "ü"
	input := "a;\n" + "'" + line + "' ; b"
	st := NewState(1)
	tk := New(input, Options{}, &st)
	tk.NextToken()
	for st.Type != EOF && st.Value != "b" {
		tk.Next()
	}
	want := utf8.RuneCountInString("'"+line+"' ; ")
	if st.StartLoc.Line != 2 || st.StartLoc.Column != want {
		t.Errorf("b: got %d:%d, want 2:%d", st.StartLoc.Line, st.StartLoc.Column, want)
	}
	for _, offset := range []int{0, 3, 64, 130, 200, len(input)} {
		lineStart := strings.LastIndexByte(input[:offset], '\n') + 1
		if got, want := tk.PositionAt(offset).Column, utf8.RuneCountInString(input[lineStart:offset]); got != want {
			t.Errorf("PositionAt(%d).Column = %d, want %d", offset, got, want)
		}
	}
}

func TestCloneSharesComments(t *testing.T) {
	st := NewState(1)
	tk := New(strings.Repeat("/* c */\n", 100)+"a b", Options{}, &st)
	tk.NextToken()
	if len(st.Comments) != 100 {
		t.Fatalf("got %d comments, want 100", len(st.Comments))
	}

	c := st.Clone()
	if &c.Comments[0] != &st.Comments[0] {
		t.Errorf("Clone copied the comment list")
	}
	c.Comments = append(c.Comments, &ast.Comment{Value: "clone"})
	st.Comments = append(st.Comments, &ast.Comment{Value: "live"})
	if c.Comments[100].Value != "clone" || st.Comments[100].Value != "live" {
		t.Errorf("appends interfered: clone %q, live %q", c.Comments[100].Value, st.Comments[100].Value)
	}

	c.Context = append(c.Context[:0], BraceExpression)
	if st.Context[0] != BraceStatement {
		t.Errorf("Clone shares the context stack")
	}
}

func TestInterpreterDirective(t *testing.T) {
	st := NewState(1)
	tk := New("#!/usr/bin/env node\nfoo", Options{}, &st)
	tk.NextToken()
	if name, end := tk.Interpreter(); name != "/usr/bin/env node" || end != 19 {
		t.Errorf("got %q at %d", name, end)
	}
	if st.Type != NAME || st.Value != "foo" || st.StartLoc.Line != 2 {
		t.Errorf("got %s %q on line %d", st.Type, st.Value, st.StartLoc.Line)
	}
}

func TestLookaheadLeavesStateAlone(t *testing.T) {
	st := NewState(1)
	tk := New("a // c\n b", Options{}, &st)
	tk.NextToken()
	next := tk.Lookahead()
	if next.Type != NAME || next.Value != "b" {
		t.Fatalf("lookahead: got %s %q", next.Type, next.Value)
	}
	if st.Value != "a" || st.Pos != 1 {
		t.Errorf("state moved: %q at %d", st.Value, st.Pos)
	}
	if len(st.Comments) != 0 {
		t.Errorf("lookahead recorded comments")
	}
}

func TestRescanInType(t *testing.T) {
	st := NewState(1)
	tk := New("a>>b", Options{}, &st)
	tk.NextToken()
	tk.Next()
	if st.Type != BIT_SHIFT {
		t.Fatalf("got %s, want shift", st.Type)
	}
	st.InType = true
	tk.Rescan()
	if st.Type != RELATIONAL || st.Value != ">" || st.End != 2 {
		t.Errorf("rescan: got %s %q ending at %d", st.Type, st.Value, st.End)
	}
}

func TestDoubleQuestionInType(t *testing.T) {
	st := NewState(1)
	tk := New("??T", Options{}, &st)
	st.InType = true
	tk.NextToken()
	if st.Type != QUESTION || st.End != 1 {
		t.Fatalf("in a type: got %s ending at %d, want a single ?", st.Type, st.End)
	}
	st.InType = false
	tk.Rescan()
	if st.Type != NULLISH {
		t.Errorf("in an expression: got %s, want ??", st.Type)
	}
}

func TestJSXTokens(t *testing.T) {
	opts := Options{JSX: true}
	checkTokens(t, `<a href="x">hi &amp; {b}</a>`, opts, []tok{
		{JSX_TAG_START, ""}, {JSX_NAME, "a"}, {JSX_NAME, "href"}, {EQ, "="},
		{STRING, "x"}, {JSX_TAG_END, ""}, {JSX_TEXT, "hi & "},
		{BRACE_L, "{"}, {NAME, "b"}, {BRACE_R, "}"},
		{JSX_TAG_START, ""}, {SLASH, "/"}, {JSX_NAME, "a"}, {JSX_TAG_END, ""},
	})
	checkTokens(t, `<data-x/>`, opts, []tok{
		{JSX_TAG_START, ""}, {JSX_NAME, "data-x"}, {SLASH, "/"}, {JSX_TAG_END, ""},
	})
	checkTokens(t, `a < b`, opts, []tok{
		{NAME, "a"}, {RELATIONAL, "<"}, {NAME, "b"},
	})
}

func TestJSXEntities(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`<a>&lt;&#65;&#x42;</a>`, "<AB"},
		{`<a>&unknown; x</a>`, "&unknown; x"},
		{`<a>R&D</a>`, "R&D"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := scan(tt.input, Options{JSX: true})
			if err != nil {
				t.Fatal(err)
			}
			if len(got) < 4 || got[3].typ != JSX_TEXT || got[3].value != tt.want {
				t.Errorf("got %v, want text %q", got, tt.want)
			}
		})
	}
}

func TestFlowTokens(t *testing.T) {
	opts := Options{Flow: true}
	checkTokens(t, "{| a |}", opts, []tok{
		{BRACE_BAR_L, "{|"}, {NAME, "a"}, {BRACE_BAR_R, "|}"},
	})
	checkTokens(t, "@@iterator", opts, []tok{{NAME, "@@iterator"}})
	if _, err := scan("@@other", opts); err == nil {
		t.Errorf("expected an error for an unknown @@ name")
	}
}

func TestFlowComments(t *testing.T) {
	opts := Options{Flow: true, FlowComments: true}
	checkTokens(t, "a /*: number */ /*:: b */ c", opts, []tok{
		{NAME, "a"}, {COLON, ":"}, {NAME, "number"}, {NAME, "b"}, {NAME, "c"},
	})
	checkTokens(t, "/*flow-include type T = X */", opts, []tok{
		{NAME, "type"}, {NAME, "T"}, {EQ, "="}, {NAME, "X"},
	})
}
