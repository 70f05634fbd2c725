package lexer

import "github.com/nooga/esparse/pkg/ast"

// Context is an entry of the tokenizer's context stack. The stack decides
// whether `/` starts a regular expression, whether `}` resumes a template and
// whether markup text is being read. Contexts are immutable and shared.
type Context struct {
	Token         string
	IsExpr        bool
	PreserveSpace bool
}

// The contexts known to the tokenizer.
var (
	BraceStatement     = &Context{Token: "{"}
	BraceExpression    = &Context{Token: "{", IsExpr: true}
	TemplateQuasi      = &Context{Token: "${"}
	ParenStatement     = &Context{Token: "("}
	ParenExpression    = &Context{Token: "(", IsExpr: true}
	Template           = &Context{Token: "`", IsExpr: true, PreserveSpace: true}
	FunctionExpression = &Context{Token: "function", IsExpr: true}
	FunctionStatement  = &Context{Token: "function"}
	JSXOpenTag         = &Context{Token: "<tag"}
	JSXCloseTag        = &Context{Token: "</tag"}
	JSXExpr            = &Context{Token: "<tag>...</tag>", IsExpr: true, PreserveSpace: true}
)

// State is the tokenizer part of the parser state. It is a plain value: the
// parser snapshots it by copying and restores it by assignment. The context
// stack is copied by Clone; Comments is only ever appended to, so a
// snapshot keeps just its length.
type State struct {
	Strict         bool
	InType         bool // `<` and `>` are single-character tokens
	InPropertyName bool
	IsIterator     bool
	HasFlowComment bool
	InGenerator    bool // `yield` followed by an expression

	Pos       int
	LineStart int
	CurLine   int

	// Current token
	Type     TokenType
	Value    string  // name, cooked string, operator, regex pattern, raw number
	Num      float64 // numeric value of NUM tokens
	Flags    string  // regex flags
	Invalid  bool    // template chunk with an invalid escape
	Start    int
	End      int
	StartLoc ast.Position
	EndLoc   ast.Position

	LastTokStart    int
	LastTokEnd      int
	LastTokStartLoc ast.Position
	LastTokEndLoc   ast.Position

	Context     []*Context
	ExprAllowed bool

	ContainsEsc   bool
	ContainsOctal bool
	OctalPosition int

	Comments []*ast.Comment
}

// NewState returns the state for the start of input numbered from startLine.
func NewState(startLine int) State {
	if startLine < 1 {
		startLine = 1
	}
	loc := ast.Position{Line: startLine}
	return State{
		CurLine:         startLine,
		Type:            EOF,
		StartLoc:        loc,
		EndLoc:          loc,
		LastTokStartLoc: loc,
		LastTokEndLoc:   loc,
		Context:         []*Context{BraceStatement},
		ExprAllowed:     true,
		OctalPosition:   -1,
	}
}

// Clone returns a copy of s whose context stack is its own. Appending to
// the copy's Comments never disturbs s.
func (s State) Clone() State {
	c := s
	c.Context = append(make([]*Context, 0, len(s.Context)+4), s.Context...)
	c.Comments = s.Comments[:len(s.Comments):len(s.Comments)]
	return c
}

// CurContext returns the innermost context.
func (s *State) CurContext() *Context {
	if len(s.Context) == 0 {
		return nil
	}
	return s.Context[len(s.Context)-1]
}

func (s *State) pushContext(c *Context) {
	s.Context = append(s.Context, c)
}

func (s *State) popContext() *Context {
	c := s.Context[len(s.Context)-1]
	s.Context = s.Context[:len(s.Context)-1]
	return c
}
