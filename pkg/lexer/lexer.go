package lexer

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/nooga/esparse/pkg/ast"
	"github.com/nooga/esparse/pkg/errors"
)

// Options selects the dialect-specific tokens.
type Options struct {
	JSX            bool // markup tokens
	Flow           bool // `{|`, `|}`, `@@iterator`, `void` as a type name
	FlowComments   bool // code inside `/*:: */`, `/*: */` and `/*flow-include */`
	ValidateRegExp bool // compile regular expression bodies
	FunctionBind   bool // `::`
}

// Tokenizer reads tokens on demand into a State owned by the caller.
type Tokenizer struct {
	input       string
	opts        Options
	state       *State
	startLine   int
	lineStarts  []int
	runeIndex   []int32 // nil for ASCII input
	isLookahead bool

	interpreter    string
	interpreterEnd int

	// OnComment is called for every comment read outside of lookahead.
	OnComment func(c *ast.Comment)
}

// New returns a tokenizer over input that reads into state.
func New(input string, opts Options, state *State) *Tokenizer {
	t := &Tokenizer{input: input, opts: opts, state: state, startLine: state.CurLine, interpreterEnd: -1}
	t.runeIndex = buildRuneIndex(input)
	if len(input) >= 2 && input[0] == '#' && input[1] == '!' {
		end := 2
		for end < len(input) && !isNewLineByte(input, end) {
			end++
		}
		t.interpreter = input[2:end]
		t.interpreterEnd = end
		state.Pos = end
	}
	return t
}

// Input returns the text being tokenized.
func (t *Tokenizer) Input() string { return t.input }

// State returns the live state.
func (t *Tokenizer) State() *State { return t.state }

// Interpreter returns the `#!` line without its marker and the offset where
// it ends, or end -1 when the input has none.
func (t *Tokenizer) Interpreter() (string, int) { return t.interpreter, t.interpreterEnd }

// Raise aborts tokenizing or parsing with a syntax error at pos.
func (t *Tokenizer) Raise(pos int, format string, args ...any) {
	loc := t.PositionAt(pos)
	panic(&errors.SyntaxError{
		Position: errors.Position{Line: loc.Line, Column: loc.Column, StartPos: pos, EndPos: pos},
		Msg:      fmt.Sprintf(format, args...),
	})
}

// PositionAt converts a byte offset into a line/column position.
func (t *Tokenizer) PositionAt(offset int) ast.Position {
	if t.lineStarts == nil {
		t.lineStarts = []int{0}
		for i := 0; i < len(t.input); {
			c := t.input[i]
			switch {
			case c == '\r' && i+1 < len(t.input) && t.input[i+1] == '\n':
				i += 2
				t.lineStarts = append(t.lineStarts, i)
			case c == '\n' || c == '\r':
				i++
				t.lineStarts = append(t.lineStarts, i)
			case c == 0xE2 && isNewLineByte(t.input, i):
				i += 3
				t.lineStarts = append(t.lineStarts, i)
			default:
				i++
			}
		}
	}
	if offset > len(t.input) {
		offset = len(t.input)
	}
	line := sort.Search(len(t.lineStarts), func(i int) bool { return t.lineStarts[i] > offset }) - 1
	start := t.lineStarts[line]
	return ast.Position{
		Offset: offset,
		Line:   t.startLine + line,
		Column: t.column(start, offset),
	}
}

func (t *Tokenizer) curPosition() ast.Position {
	s := t.state
	return ast.Position{
		Offset: s.Pos,
		Line:   s.CurLine,
		Column: t.column(s.LineStart, s.Pos),
	}
}

// --- Columns ---

// runeIndexStride is the sampling distance of the rune index.
const runeIndexStride = 64

// buildRuneIndex records, every runeIndexStride bytes, how many UTF-8
// continuation bytes precede that offset. Column lookups then cost at most
// one stride of scanning however long the line is.
func buildRuneIndex(input string) []int32 {
	ascii := true
	for i := 0; i < len(input); i++ {
		if input[i] >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return nil
	}
	idx := make([]int32, len(input)/runeIndexStride+1)
	var n int32
	for i := 0; i <= len(input); i++ {
		if i%runeIndexStride == 0 {
			idx[i/runeIndexStride] = n
		}
		if i < len(input) && isContinuationByte(input[i]) {
			n++
		}
	}
	return idx
}

func isContinuationByte(b byte) bool {
	return b&0xC0 == 0x80
}

func (t *Tokenizer) continuationBytes(offset int) int {
	bucket := offset / runeIndexStride
	n := int(t.runeIndex[bucket])
	for i := bucket * runeIndexStride; i < offset; i++ {
		if isContinuationByte(t.input[i]) {
			n++
		}
	}
	return n
}

// column counts the runes in input[lineStart:offset].
func (t *Tokenizer) column(lineStart, offset int) int {
	if t.runeIndex == nil {
		return offset - lineStart
	}
	return offset - lineStart - (t.continuationBytes(offset) - t.continuationBytes(lineStart))
}

// HasLineBreak reports whether input[start:end] contains a line terminator.
func (t *Tokenizer) HasLineBreak(start, end int) bool {
	if start < 0 {
		start = 0
	}
	if end > len(t.input) {
		end = len(t.input)
	}
	for i := start; i < end; i++ {
		if isNewLineByte(t.input, i) {
			return true
		}
	}
	return false
}

// --- Driving ---

// Next moves to the next token, remembering where the current one ended.
func (t *Tokenizer) Next() {
	s := t.state
	s.LastTokEnd = s.End
	s.LastTokStart = s.Start
	s.LastTokEndLoc = s.EndLoc
	s.LastTokStartLoc = s.StartLoc
	t.NextToken()
}

// NextToken reads a token starting at the current position.
func (t *Tokenizer) NextToken() {
	s := t.state
	ctx := s.CurContext()
	if ctx == nil || !ctx.PreserveSpace {
		t.skipSpace()
	}
	s.ContainsOctal = false
	s.OctalPosition = -1
	s.Start = s.Pos
	s.StartLoc = t.curPosition()
	if s.Pos >= len(t.input) {
		t.finishToken(EOF, "")
		return
	}
	if ctx == Template {
		t.readTemplateToken()
		return
	}
	t.readToken(t.codePointAt(s.Pos))
}

// Lookahead returns the state after the next token without moving.
func (t *Tokenizer) Lookahead() State {
	old := *t.state
	*t.state = old.Clone()
	t.isLookahead = true
	t.Next()
	t.isLookahead = false
	next := *t.state
	*t.state = old
	return next
}

// Rescan re-reads the current token from its start, for callers that
// changed InType or the context stack after it was read.
func (t *Tokenizer) Rescan() {
	s := t.state
	loc := t.PositionAt(s.Start)
	s.Pos = s.Start
	s.CurLine = loc.Line
	s.LineStart = t.lineStarts[loc.Line-t.startLine]
	t.NextToken()
}

func (t *Tokenizer) finishToken(typ TokenType, value string) {
	s := t.state
	s.End = s.Pos
	s.EndLoc = t.curPosition()
	prev := s.Type
	s.Type = typ
	s.Value = value
	t.updateContext(prev)
}

func (t *Tokenizer) finishOp(typ TokenType, size int) {
	s := t.state
	value := t.input[s.Pos : s.Pos+size]
	s.Pos += size
	t.finishToken(typ, value)
}

func (t *Tokenizer) codePointAt(pos int) rune {
	r, _ := t.runeAt(pos)
	return r
}

func (t *Tokenizer) runeAt(pos int) (rune, int) {
	if pos >= len(t.input) {
		return -1, 0
	}
	if c := t.input[pos]; c < utf8.RuneSelf {
		return rune(c), 1
	}
	return utf8.DecodeRuneInString(t.input[pos:])
}

func (t *Tokenizer) byteAt(pos int) byte {
	if pos >= len(t.input) || pos < 0 {
		return 0
	}
	return t.input[pos]
}

// --- Whitespace and comments ---

func (t *Tokenizer) newLine(pos int) {
	s := t.state
	s.CurLine++
	s.LineStart = pos
}

func (t *Tokenizer) skipSpace() {
	s := t.state
	for s.Pos < len(t.input) {
		c := t.input[s.Pos]
		switch c {
		case ' ', '\t', '\v', '\f':
			s.Pos++
		case '\r':
			s.Pos++
			if t.byteAt(s.Pos) == '\n' {
				s.Pos++
			}
			t.newLine(s.Pos)
		case '\n':
			s.Pos++
			t.newLine(s.Pos)
		case '/':
			switch t.byteAt(s.Pos + 1) {
			case '*':
				t.skipBlockComment()
			case '/':
				t.skipLineComment(2)
			default:
				return
			}
		default:
			if c < utf8.RuneSelf {
				return
			}
			r, size := utf8.DecodeRuneInString(t.input[s.Pos:])
			switch {
			case r == 0x2028 || r == 0x2029:
				s.Pos += size
				t.newLine(s.Pos)
			case isWhitespace(r):
				s.Pos += size
			default:
				return
			}
		}
	}
}

// skipBlockComment skips a `/* */` comment. Flow comments only skip their
// opening marker so the contents are tokenized as code.
func (t *Tokenizer) skipBlockComment() {
	s := t.state
	if t.opts.FlowComments {
		if skip := t.flowCommentPrefix(); skip > 0 {
			if !containsFrom(t.input, s.Pos, "*/") {
				t.Raise(s.Pos, "Unterminated comment")
			}
			s.Pos += skip
			s.HasFlowComment = true
			return
		}
	}
	if t.opts.Flow && s.HasFlowComment {
		end := indexFrom(t.input, s.Pos+2, "*-/")
		if end < 0 {
			t.Raise(s.Pos, "Unterminated comment")
		}
		s.Pos = end + 3
		return
	}

	start := s.Pos
	startLoc := t.curPosition()
	end := indexFrom(t.input, s.Pos+2, "*/")
	if end < 0 {
		t.Raise(s.Pos, "Unterminated comment")
	}
	for i := start + 2; i < end; {
		switch {
		case t.input[i] == '\r' && t.byteAt(i+1) == '\n':
			i += 2
			t.newLine(i)
		case isNewLineByte(t.input, i):
			if t.input[i] == 0xE2 {
				i += 3
			} else {
				i++
			}
			t.newLine(i)
		default:
			i++
		}
	}
	s.Pos = end + 2
	t.pushComment(true, t.input[start+2:end], start, s.Pos, startLoc)
}

func (t *Tokenizer) flowCommentPrefix() int {
	s := t.state
	c2, c3 := t.byteAt(s.Pos+2), t.byteAt(s.Pos+3)
	switch {
	case c2 == ':' && c3 == ':':
		return 4
	case hasPrefixAt(t.input, s.Pos+2, "flow-include"):
		return 14
	case c2 == ':':
		return 2
	}
	return 0
}

func (t *Tokenizer) skipLineComment(startSkip int) {
	s := t.state
	start := s.Pos
	startLoc := t.curPosition()
	s.Pos += startSkip
	for s.Pos < len(t.input) && !isNewLineByte(t.input, s.Pos) {
		s.Pos++
	}
	t.pushComment(false, t.input[start+startSkip:s.Pos], start, s.Pos, startLoc)
}

func (t *Tokenizer) pushComment(block bool, text string, start, end int, startLoc ast.Position) {
	if t.isLookahead {
		return
	}
	kind := "CommentLine"
	if block {
		kind = "CommentBlock"
	}
	c := &ast.Comment{
		Type:  kind,
		Value: text,
		Start: start,
		End:   end,
		Loc:   ast.SourceLocation{Start: startLoc, End: t.curPosition()},
	}
	s := t.state
	s.Comments = append(s.Comments, c)
	if t.OnComment != nil {
		t.OnComment(c)
	}
}

// --- Token dispatch ---

func (t *Tokenizer) readToken(code rune) {
	s := t.state
	if s.InType && (code == '<' || code == '>') {
		t.finishOp(RELATIONAL, 1)
		return
	}
	if t.opts.Flow && code == '@' && t.byteAt(s.Pos+1) == '@' {
		s.IsIterator = true
		t.readWord()
		return
	}
	if t.opts.JSX && !s.InPropertyName {
		switch ctx := s.CurContext(); {
		case ctx == JSXExpr:
			t.jsxReadToken()
			return
		case ctx == JSXOpenTag || ctx == JSXCloseTag:
			if isIdentifierStart(code) {
				t.jsxReadWord()
				return
			}
			if code == '>' {
				s.Pos++
				t.finishToken(JSX_TAG_END, "")
				return
			}
			if (code == '"' || code == '\'') && ctx == JSXOpenTag {
				t.jsxReadString(byte(code))
				return
			}
		}
		if code == '<' && s.ExprAllowed {
			s.Pos++
			t.finishToken(JSX_TAG_START, "")
			return
		}
	}
	if isIdentifierStart(code) || code == '\\' {
		t.readWord()
		return
	}
	t.getTokenFromCode(code)
}

func (t *Tokenizer) getTokenFromCode(code rune) {
	s := t.state
	next := t.byteAt(s.Pos + 1)
	switch code {
	case '#':
		s.Pos++
		t.finishToken(HASH, "#")
	case '.':
		switch {
		case next >= '0' && next <= '9':
			t.readNumber(true)
		case next == '.' && t.byteAt(s.Pos+2) == '.':
			t.finishOp(ELLIPSIS, 3)
		default:
			t.finishOp(DOT, 1)
		}
	case '(':
		t.finishOp(PAREN_L, 1)
	case ')':
		t.finishOp(PAREN_R, 1)
	case ';':
		t.finishOp(SEMI, 1)
	case ',':
		t.finishOp(COMMA, 1)
	case '[':
		t.finishOp(BRACKET_L, 1)
	case ']':
		t.finishOp(BRACKET_R, 1)
	case '{':
		if t.opts.Flow && next == '|' {
			t.finishOp(BRACE_BAR_L, 2)
		} else {
			t.finishOp(BRACE_L, 1)
		}
	case '}':
		t.finishOp(BRACE_R, 1)
	case ':':
		if t.opts.FunctionBind && next == ':' {
			t.finishOp(DOUBLE_COLON, 2)
		} else {
			t.finishOp(COLON, 1)
		}
	case '?':
		t.readQuestion()
	case '@':
		t.finishOp(AT, 1)
	case '`':
		s.Pos++
		t.finishToken(BACK_QUOTE, "`")
	case '0':
		switch next {
		case 'x', 'X':
			t.readRadixNumber(16)
			return
		case 'o', 'O':
			t.readRadixNumber(8)
			return
		case 'b', 'B':
			t.readRadixNumber(2)
			return
		}
		t.readNumber(false)
	case '1', '2', '3', '4', '5', '6', '7', '8', '9':
		t.readNumber(false)
	case '"', '\'':
		t.readString(byte(code))
	case '/':
		if s.ExprAllowed {
			s.Pos++
			t.readRegexp()
		} else if next == '=' {
			t.finishOp(ASSIGN, 2)
		} else {
			t.finishOp(SLASH, 1)
		}
	case '%', '*':
		t.readMultModulo(byte(code))
	case '|', '&':
		t.readPipeAmp(byte(code))
	case '^':
		if next == '=' {
			t.finishOp(ASSIGN, 2)
		} else {
			t.finishOp(BITWISE_XOR, 1)
		}
	case '+', '-':
		switch {
		case next == byte(code):
			t.finishOp(INC_DEC, 2)
		case next == '=':
			t.finishOp(ASSIGN, 2)
		default:
			t.finishOp(PLUS_MIN, 1)
		}
	case '<', '>':
		t.readLtGt(byte(code))
	case '=', '!':
		switch {
		case next == '=':
			size := 2
			if t.byteAt(s.Pos+2) == '=' {
				size = 3
			}
			t.finishOp(EQUALITY, size)
		case code == '=' && next == '>':
			t.finishOp(ARROW, 2)
		case code == '=':
			t.finishOp(EQ, 1)
		default:
			t.finishOp(PREFIX, 1)
		}
	case '~':
		t.finishOp(PREFIX, 1)
	default:
		t.Raise(s.Pos, "Unexpected character '%c'", code)
	}
}

func (t *Tokenizer) readQuestion() {
	s := t.state
	next := t.byteAt(s.Pos + 1)
	switch {
	case next == '?' && s.InType:
		// `??T` is a nullable nullable type.
		t.finishOp(QUESTION, 1)
	case next == '?':
		if t.byteAt(s.Pos+2) == '=' {
			t.finishOp(ASSIGN, 3)
		} else {
			t.finishOp(NULLISH, 2)
		}
	case next == '.' && !isDigit(t.byteAt(s.Pos+2)):
		t.finishOp(QUESTION_DOT, 2)
	default:
		t.finishOp(QUESTION, 1)
	}
}

func (t *Tokenizer) readMultModulo(code byte) {
	s := t.state
	next := t.byteAt(s.Pos + 1)
	if code == '*' && next == '/' && s.HasFlowComment {
		s.HasFlowComment = false
		s.Pos += 2
		t.NextToken()
		return
	}
	typ, width := MODULO, 1
	if code == '*' {
		typ = STAR
		if next == '*' {
			typ, width = EXPONENT, 2
			next = t.byteAt(s.Pos + 2)
		}
	}
	if next == '=' {
		typ, width = ASSIGN, width+1
	}
	t.finishOp(typ, width)
}

func (t *Tokenizer) readPipeAmp(code byte) {
	s := t.state
	next := t.byteAt(s.Pos + 1)
	switch {
	case next == code:
		if t.byteAt(s.Pos+2) == '=' {
			t.finishOp(ASSIGN, 3)
		} else if code == '|' {
			t.finishOp(LOGICAL_OR, 2)
		} else {
			t.finishOp(LOGICAL_AND, 2)
		}
	case code == '|' && next == '>':
		t.finishOp(PIPELINE, 2)
	case code == '|' && next == '}' && t.opts.Flow:
		t.finishOp(BRACE_BAR_R, 2)
	case next == '=':
		t.finishOp(ASSIGN, 2)
	case code == '|':
		t.finishOp(BITWISE_OR, 1)
	default:
		t.finishOp(BITWISE_AND, 1)
	}
}

func (t *Tokenizer) readLtGt(code byte) {
	s := t.state
	next := t.byteAt(s.Pos + 1)
	if next == code {
		size := 2
		if code == '>' && t.byteAt(s.Pos+2) == '>' {
			size = 3
		}
		if t.byteAt(s.Pos+size) == '=' {
			t.finishOp(ASSIGN, size+1)
			return
		}
		t.finishOp(BIT_SHIFT, size)
		return
	}
	if next == '=' {
		t.finishOp(RELATIONAL, 2)
		return
	}
	t.finishOp(RELATIONAL, 1)
}

// --- Words ---

func (t *Tokenizer) readWord() {
	s := t.state
	word := t.readWord1()
	typ := NAME
	if IsKeyword(word) && !(t.opts.Flow && s.InType && word == "void") {
		if s.ContainsEsc {
			t.Raise(s.Pos, "Escape sequence in keyword %s", word)
		}
		typ = LookupKeyword(word)
	}
	if s.IsIterator && word != "@@iterator" && word != "@@asyncIterator" {
		t.Raise(s.Start, "Invalid identifier %s", word)
	}
	t.finishToken(typ, word)
}

func (t *Tokenizer) readWord1() string {
	s := t.state
	s.ContainsEsc = false
	var word []byte
	first := true
	chunkStart := s.Pos
	for s.Pos < len(t.input) {
		r, size := t.runeAt(s.Pos)
		switch {
		case isIdentifierChar(r):
			s.Pos += size
		case s.IsIterator && r == '@':
			s.Pos++
		case r == '\\':
			s.ContainsEsc = true
			word = append(word, t.input[chunkStart:s.Pos]...)
			escStart := s.Pos
			s.Pos++
			if t.byteAt(s.Pos) != 'u' {
				t.Raise(s.Pos, "Expecting Unicode escape sequence \\uXXXX")
			}
			s.Pos++
			esc := t.readCodePoint(true)
			valid := isIdentifierChar(esc)
			if first {
				valid = isIdentifierStart(esc)
			}
			if !valid {
				t.Raise(escStart, "Invalid Unicode escape")
			}
			word = utf8.AppendRune(word, esc)
			chunkStart = s.Pos
		default:
			return string(append(word, t.input[chunkStart:s.Pos]...))
		}
		first = false
	}
	return string(append(word, t.input[chunkStart:s.Pos]...))
}

// --- Context tracking ---

func (t *Tokenizer) updateContext(prev TokenType) {
	s := t.state
	typ := s.Type

	if t.opts.JSX {
		if typ == BRACE_L {
			switch s.CurContext() {
			case JSXOpenTag:
				s.pushContext(BraceExpression)
				s.ExprAllowed = true
				return
			case JSXExpr:
				s.pushContext(TemplateQuasi)
				s.ExprAllowed = true
				return
			}
		} else if typ == SLASH && prev == JSX_TAG_START {
			s.Context = s.Context[:len(s.Context)-2]
			s.pushContext(JSXCloseTag)
			s.ExprAllowed = false
			return
		}
	}

	if typ.IsKeyword() && (prev == DOT || prev == QUESTION_DOT) {
		s.ExprAllowed = false
		return
	}

	switch typ {
	case PAREN_R, BRACE_R:
		if len(s.Context) == 1 {
			s.ExprAllowed = true
			return
		}
		out := s.popContext()
		if out == BraceStatement && s.CurContext() != nil && s.CurContext().Token == "function" {
			out = s.popContext()
		}
		s.ExprAllowed = !out.IsExpr
	case NAME:
		allowed := false
		if prev != DOT {
			if (s.Value == "of" && !s.ExprAllowed) || (s.Value == "yield" && s.InGenerator) {
				allowed = true
			}
		}
		s.ExprAllowed = allowed
		if s.IsIterator {
			s.IsIterator = false
		}
	case BRACE_L:
		if t.braceIsBlock(prev) {
			s.pushContext(BraceStatement)
		} else {
			s.pushContext(BraceExpression)
		}
		s.ExprAllowed = true
	case DOLLAR_BRACE_L:
		s.pushContext(TemplateQuasi)
		s.ExprAllowed = true
	case PAREN_L:
		if prev == IF || prev == FOR || prev == WITH || prev == WHILE {
			s.pushContext(ParenStatement)
		} else {
			s.pushContext(ParenExpression)
		}
		s.ExprAllowed = true
	case INC_DEC:
	case FUNCTION, CLASS:
		if s.ExprAllowed && prev != DOT &&
			!(prev == SEMI && s.CurContext() != ParenStatement) &&
			!(prev == RETURN && t.HasLineBreak(s.LastTokEnd, s.Start)) {
			s.pushContext(FunctionExpression)
		} else {
			s.pushContext(FunctionStatement)
		}
		s.ExprAllowed = false
	case BACK_QUOTE:
		if s.CurContext() == Template {
			s.popContext()
		} else {
			s.pushContext(Template)
		}
		s.ExprAllowed = false
	case JSX_TAG_START:
		s.pushContext(JSXExpr)
		s.pushContext(JSXOpenTag)
		s.ExprAllowed = false
	case JSX_TAG_END:
		out := s.popContext()
		if (out == JSXOpenTag && prev == SLASH) || out == JSXCloseTag {
			s.popContext()
			s.ExprAllowed = s.CurContext() == JSXExpr
		} else {
			s.ExprAllowed = true
		}
	default:
		s.ExprAllowed = typ.BeforeExpr()
	}
}

func (t *Tokenizer) braceIsBlock(prev TokenType) bool {
	s := t.state
	parent := s.CurContext()
	if parent == FunctionExpression || parent == FunctionStatement {
		return true
	}
	if prev == COLON && (parent == BraceStatement || parent == BraceExpression) {
		return !parent.IsExpr
	}
	if prev == RETURN || (prev == NAME && s.ExprAllowed) {
		return t.HasLineBreak(s.LastTokEnd, s.Start)
	}
	switch prev {
	case ELSE, SEMI, EOF, PAREN_R, ARROW:
		return true
	case BRACE_L:
		return parent == BraceStatement
	case VAR, CONST, NAME:
		return false
	case RELATIONAL:
		return true
	}
	return !s.ExprAllowed
}
