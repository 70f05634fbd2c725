package lexer

// TokenType represents the type of a token.
type TokenType string

// --- Token Types ---
const (
	// Special
	EOF TokenType = "eof"

	// Identifiers + Literals
	NAME     TokenType = "name"
	NUM      TokenType = "num"
	BIGINT   TokenType = "bigint"
	STRING   TokenType = "string"
	REGEXP   TokenType = "regexp"
	TEMPLATE TokenType = "template"

	// Punctuation
	BRACKET_L      TokenType = "["
	BRACKET_R      TokenType = "]"
	BRACE_L        TokenType = "{"
	BRACE_BAR_L    TokenType = "{|"
	BRACE_R        TokenType = "}"
	BRACE_BAR_R    TokenType = "|}"
	PAREN_L        TokenType = "("
	PAREN_R        TokenType = ")"
	COMMA          TokenType = ","
	SEMI           TokenType = ";"
	COLON          TokenType = ":"
	DOUBLE_COLON   TokenType = "::"
	DOT            TokenType = "."
	QUESTION       TokenType = "?"
	QUESTION_DOT   TokenType = "?."
	ARROW          TokenType = "=>"
	ELLIPSIS       TokenType = "..."
	BACK_QUOTE     TokenType = "`"
	DOLLAR_BRACE_L TokenType = "${"
	AT             TokenType = "@"
	HASH           TokenType = "#"

	// Operators. Grouped types carry the concrete operator in State.Value.
	EQ          TokenType = "="
	ASSIGN      TokenType = "_="  // +=, -=, ||=, ...
	INC_DEC     TokenType = "++/--"
	PREFIX      TokenType = "!/~"
	PIPELINE    TokenType = "|>"
	NULLISH     TokenType = "??"
	LOGICAL_OR  TokenType = "||"
	LOGICAL_AND TokenType = "&&"
	BITWISE_OR  TokenType = "|"
	BITWISE_XOR TokenType = "^"
	BITWISE_AND TokenType = "&"
	EQUALITY    TokenType = "==/!="
	RELATIONAL  TokenType = "</>"
	BIT_SHIFT   TokenType = "<</>>"
	PLUS_MIN    TokenType = "+/-"
	MODULO      TokenType = "%"
	STAR        TokenType = "*"
	SLASH       TokenType = "/"
	EXPONENT    TokenType = "**"

	// Markup
	JSX_NAME      TokenType = "jsxName"
	JSX_TEXT      TokenType = "jsxText"
	JSX_TAG_START TokenType = "jsxTagStart"
	JSX_TAG_END   TokenType = "jsxTagEnd"

	// Keywords
	BREAK      TokenType = "break"
	CASE       TokenType = "case"
	CATCH      TokenType = "catch"
	CONTINUE   TokenType = "continue"
	DEBUGGER   TokenType = "debugger"
	DEFAULT    TokenType = "default"
	DO         TokenType = "do"
	ELSE       TokenType = "else"
	FINALLY    TokenType = "finally"
	FOR        TokenType = "for"
	FUNCTION   TokenType = "function"
	IF         TokenType = "if"
	RETURN     TokenType = "return"
	SWITCH     TokenType = "switch"
	THROW      TokenType = "throw"
	TRY        TokenType = "try"
	VAR        TokenType = "var"
	CONST      TokenType = "const"
	WHILE      TokenType = "while"
	WITH       TokenType = "with"
	NEW        TokenType = "new"
	THIS       TokenType = "this"
	SUPER      TokenType = "super"
	CLASS      TokenType = "class"
	EXTENDS    TokenType = "extends"
	EXPORT     TokenType = "export"
	IMPORT     TokenType = "import"
	NULL       TokenType = "null"
	TRUE       TokenType = "true"
	FALSE      TokenType = "false"
	IN         TokenType = "in"
	INSTANCEOF TokenType = "instanceof"
	TYPEOF     TokenType = "typeof"
	VOID       TokenType = "void"
	DELETE     TokenType = "delete"
)

type tokenInfo struct {
	beforeExpr       bool
	startsExpr       bool
	rightAssociative bool
	isLoop           bool
	isAssign         bool
	prefix           bool
	postfix          bool
	keyword          bool
	binop            int // 0 when the token is not a binary operator
}

// Binary precedences are stored off by one so the zero value means "none".
var tokens = map[TokenType]tokenInfo{
	NUM:      {startsExpr: true},
	BIGINT:   {startsExpr: true},
	STRING:   {startsExpr: true},
	REGEXP:   {startsExpr: true},
	NAME:     {startsExpr: true},
	TEMPLATE: {},
	EOF:      {},

	BRACKET_L:      {beforeExpr: true, startsExpr: true},
	BRACKET_R:      {},
	BRACE_L:        {beforeExpr: true, startsExpr: true},
	BRACE_BAR_L:    {beforeExpr: true, startsExpr: true},
	BRACE_R:        {},
	BRACE_BAR_R:    {},
	PAREN_L:        {beforeExpr: true, startsExpr: true},
	PAREN_R:        {},
	COMMA:          {beforeExpr: true},
	SEMI:           {beforeExpr: true},
	COLON:          {beforeExpr: true},
	DOUBLE_COLON:   {beforeExpr: true},
	DOT:            {},
	QUESTION:       {beforeExpr: true},
	QUESTION_DOT:   {},
	ARROW:          {beforeExpr: true},
	ELLIPSIS:       {beforeExpr: true},
	BACK_QUOTE:     {startsExpr: true},
	DOLLAR_BRACE_L: {beforeExpr: true, startsExpr: true},
	AT:             {},
	HASH:           {},

	EQ:          {beforeExpr: true, isAssign: true},
	ASSIGN:      {beforeExpr: true, isAssign: true},
	INC_DEC:     {prefix: true, postfix: true, startsExpr: true},
	PREFIX:      {beforeExpr: true, prefix: true, startsExpr: true},
	PIPELINE:    {beforeExpr: true, binop: 1},
	NULLISH:     {beforeExpr: true, binop: 2},
	LOGICAL_OR:  {beforeExpr: true, binop: 2},
	LOGICAL_AND: {beforeExpr: true, binop: 3},
	BITWISE_OR:  {beforeExpr: true, binop: 4},
	BITWISE_XOR: {beforeExpr: true, binop: 5},
	BITWISE_AND: {beforeExpr: true, binop: 6},
	EQUALITY:    {beforeExpr: true, binop: 7},
	RELATIONAL:  {beforeExpr: true, binop: 8},
	BIT_SHIFT:   {beforeExpr: true, binop: 9},
	PLUS_MIN:    {beforeExpr: true, binop: 10, prefix: true, startsExpr: true},
	MODULO:      {beforeExpr: true, binop: 11},
	STAR:        {beforeExpr: true, binop: 11},
	SLASH:       {beforeExpr: true, binop: 11},
	EXPONENT:    {beforeExpr: true, binop: 12, rightAssociative: true},

	JSX_NAME:      {},
	JSX_TEXT:      {beforeExpr: true},
	JSX_TAG_START: {startsExpr: true},
	JSX_TAG_END:   {},

	BREAK:      {keyword: true},
	CASE:       {keyword: true, beforeExpr: true},
	CATCH:      {keyword: true},
	CONTINUE:   {keyword: true},
	DEBUGGER:   {keyword: true},
	DEFAULT:    {keyword: true, beforeExpr: true},
	DO:         {keyword: true, isLoop: true, beforeExpr: true},
	ELSE:       {keyword: true, beforeExpr: true},
	FINALLY:    {keyword: true},
	FOR:        {keyword: true, isLoop: true},
	FUNCTION:   {keyword: true, startsExpr: true},
	IF:         {keyword: true},
	RETURN:     {keyword: true, beforeExpr: true},
	SWITCH:     {keyword: true},
	THROW:      {keyword: true, beforeExpr: true, prefix: true, startsExpr: true},
	TRY:        {keyword: true},
	VAR:        {keyword: true},
	CONST:      {keyword: true},
	WHILE:      {keyword: true, isLoop: true},
	WITH:       {keyword: true},
	NEW:        {keyword: true, beforeExpr: true, startsExpr: true},
	THIS:       {keyword: true, startsExpr: true},
	SUPER:      {keyword: true, startsExpr: true},
	CLASS:      {keyword: true, startsExpr: true},
	EXTENDS:    {keyword: true, beforeExpr: true},
	EXPORT:     {keyword: true},
	IMPORT:     {keyword: true, startsExpr: true},
	NULL:       {keyword: true, startsExpr: true},
	TRUE:       {keyword: true, startsExpr: true},
	FALSE:      {keyword: true, startsExpr: true},
	IN:         {keyword: true, beforeExpr: true, binop: 8},
	INSTANCEOF: {keyword: true, beforeExpr: true, binop: 8},
	TYPEOF:     {keyword: true, beforeExpr: true, prefix: true, startsExpr: true},
	VOID:       {keyword: true, beforeExpr: true, prefix: true, startsExpr: true},
	DELETE:     {keyword: true, beforeExpr: true, prefix: true, startsExpr: true},
}

var keywords = map[string]TokenType{}

func init() {
	for t, info := range tokens {
		if info.keyword {
			keywords[string(t)] = t
		}
	}
}

// LookupKeyword returns the keyword token for word, or NAME.
func LookupKeyword(word string) TokenType {
	if t, ok := keywords[word]; ok {
		return t
	}
	return NAME
}

// IsKeyword reports whether word is tokenized as a keyword.
func IsKeyword(word string) bool {
	_, ok := keywords[word]
	return ok
}

// BeforeExpr reports whether an expression may follow the token.
func (t TokenType) BeforeExpr() bool { return tokens[t].beforeExpr }

// StartsExpr reports whether the token may begin an expression.
func (t TokenType) StartsExpr() bool { return tokens[t].startsExpr }

// RightAssociative is true for `**`.
func (t TokenType) RightAssociative() bool { return tokens[t].rightAssociative }

// IsLoop is true for the loop keywords.
func (t TokenType) IsLoop() bool { return tokens[t].isLoop }

// IsAssign is true for `=` and the compound assignments.
func (t TokenType) IsAssign() bool { return tokens[t].isAssign }

// IsPrefix is true for tokens usable as a unary prefix.
func (t TokenType) IsPrefix() bool { return tokens[t].prefix }

// IsPostfix is true for `++` and `--`.
func (t TokenType) IsPostfix() bool { return tokens[t].postfix }

// IsKeyword is true for reserved-word tokens.
func (t TokenType) IsKeyword() bool { return tokens[t].keyword }

// Binop returns the binary precedence of the token and whether it has one.
func (t TokenType) Binop() (int, bool) {
	b := tokens[t].binop
	return b - 1, b != 0
}
