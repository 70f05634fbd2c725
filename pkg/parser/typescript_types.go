package parser

import (
	"github.com/nooga/esparse/pkg/ast"
	"github.com/nooga/esparse/pkg/lexer"
)

// keywordTypes maps the predefined type names to their node kinds. `void`
// and `null` are keywords and handled separately.
var keywordTypes = map[string]string{
	"any":       "TSAnyKeyword",
	"bigint":    "TSBigIntKeyword",
	"boolean":   "TSBooleanKeyword",
	"never":     "TSNeverKeyword",
	"number":    "TSNumberKeyword",
	"object":    "TSObjectKeyword",
	"string":    "TSStringKeyword",
	"symbol":    "TSSymbolKeyword",
	"undefined": "TSUndefinedKeyword",
	"unknown":   "TSUnknownKeyword",
}

// tsListKind selects the terminator of a bracketed or delimited list.
type tsListKind int

const (
	tsEnumMembers tsListKind = iota
	tsTypeMembers
	tsHeritageClauseElement
	tsTupleElementTypes
	tsTypeParametersOrArguments
)

// --- Context helpers ---

// tsInType runs fn with `<` and `>` read as single characters. Call it one
// token before the first type token so that the next() moving onto it
// already runs in type context.
func (l *typeScriptLayer) tsInType(fn func() *ast.Node) *ast.Node {
	p := l.p
	old := p.state.InType
	p.state.InType = true
	defer func() { p.state.InType = old }()
	return fn()
}

// tsInNoContext runs fn with only the outermost tokenizer context, so that
// type arguments inside markup are not read as markup.
func (l *typeScriptLayer) tsInNoContext(fn func() []*ast.Node) []*ast.Node {
	p := l.p
	old := p.state.Context
	p.state.Context = old[:1:1]
	defer func() { p.state.Context = old }()
	return fn()
}

// tsParseModifier consumes the current word when it is one of allowed and
// used as a modifier rather than as a member name.
func (l *typeScriptLayer) tsParseModifier(allowed ...string) string {
	p := l.p
	if !p.match(lexer.NAME) {
		return ""
	}
	modifier := p.state.Value
	found := false
	for _, a := range allowed {
		if a == modifier {
			found = true
			break
		}
	}
	if !found {
		return ""
	}

	snap := p.state.clone()
	p.next()
	switch p.state.Type {
	case lexer.PAREN_L, lexer.PAREN_R, lexer.COLON, lexer.EQ, lexer.QUESTION,
		lexer.SEMI, lexer.COMMA, lexer.BRACE_R, lexer.EOF:
	default:
		if !p.hasPrecedingLineBreak() && !l.isBang() {
			return modifier
		}
	}
	p.state = snap
	return ""
}

// --- Lists ---

func (l *typeScriptLayer) tsIsListTerminator(kind tsListKind) bool {
	p := l.p
	switch kind {
	case tsEnumMembers, tsTypeMembers:
		return p.match(lexer.BRACE_R)
	case tsHeritageClauseElement:
		return p.match(lexer.BRACE_L)
	case tsTupleElementTypes:
		return p.match(lexer.BRACKET_R)
	}
	return p.isRelational(">")
}

func (l *typeScriptLayer) tsParseList(kind tsListKind, parseElement func() *ast.Node) []*ast.Node {
	result := []*ast.Node{}
	for !l.tsIsListTerminator(kind) {
		result = append(result, parseElement())
	}
	return result
}

// tsParseDelimitedList reads comma separated elements up to the list
// terminator. A trailing comma is allowed.
func (l *typeScriptLayer) tsParseDelimitedList(kind tsListKind, parseElement func() *ast.Node) []*ast.Node {
	p := l.p
	result := []*ast.Node{}
	for !l.tsIsListTerminator(kind) {
		result = append(result, parseElement())
		if p.eat(lexer.COMMA) {
			continue
		}
		if l.tsIsListTerminator(kind) {
			break
		}
		p.expect(lexer.COMMA)
	}
	return result
}

func (l *typeScriptLayer) tsParseBracketedList(kind tsListKind, parseElement func() *ast.Node, bracket, skipFirstToken bool) []*ast.Node {
	p := l.p
	if !skipFirstToken {
		if bracket {
			p.expect(lexer.BRACKET_L)
		} else {
			p.expectRelational("<")
		}
	}
	result := l.tsParseDelimitedList(kind, parseElement)
	if bracket {
		p.expect(lexer.BRACKET_R)
	} else {
		p.expectRelational(">")
	}
	return result
}

// --- Names and references ---

// Syntax: A.B.C
func (l *typeScriptLayer) tsParseEntityName(allowReservedWords bool) *ast.Node {
	p := l.p
	entity := p.parseIdentifier(false)
	for p.eat(lexer.DOT) {
		node := p.startNodeAtNode(entity)
		node.Left = entity
		node.Right = p.parseIdentifier(allowReservedWords)
		entity = p.finishNode(node, "TSQualifiedName")
	}
	return entity
}

func (l *typeScriptLayer) tsParseTypeReference() *ast.Node {
	p := l.p
	node := p.startNode()
	node.TypeName = l.tsParseEntityName(false)
	if !p.hasPrecedingLineBreak() && p.isRelational("<") {
		node.TypeParameters = l.tsParseTypeArguments()
	}
	return p.finishNode(node, "TSTypeReference")
}

// Syntax: this is Type
func (l *typeScriptLayer) tsParseThisTypePredicate(lhs *ast.Node) *ast.Node {
	p := l.p
	p.next()
	node := p.startNodeAtNode(lhs)
	node.ParameterName = lhs
	node.TypeAnnotation = l.tsParseTypeAnnotation(false, nil)
	return p.finishNode(node, "TSTypePredicate")
}

func (l *typeScriptLayer) tsParseThisTypeNode() *ast.Node {
	p := l.p
	node := p.startNode()
	p.next()
	return p.finishNode(node, "TSThisType")
}

// Syntax: typeof a.b
func (l *typeScriptLayer) tsParseTypeQuery() *ast.Node {
	p := l.p
	node := p.startNode()
	p.expect(lexer.TYPEOF)
	node.ExprName = l.tsParseEntityName(true)
	return p.finishNode(node, "TSTypeQuery")
}

// --- Type parameters and arguments ---

// Syntax: T extends Constraint = Default
func (l *typeScriptLayer) tsParseTypeParameter() *ast.Node {
	p := l.p
	node := p.startNode()
	node.Name = p.parseIdentifierName(node.Start, false)
	node.Constraint = l.tsEatThenParseType(lexer.EXTENDS)
	node.Default = l.tsEatThenParseType(lexer.EQ)
	return p.finishNode(node, "TSTypeParameter")
}

func (l *typeScriptLayer) tsTryParseTypeParameters() *ast.Node {
	if l.p.isRelational("<") {
		return l.tsParseTypeParameters()
	}
	return nil
}

func (l *typeScriptLayer) tsParseTypeParameters() *ast.Node {
	p := l.p
	node := p.startNode()
	if p.isRelational("<") || p.match(lexer.JSX_TAG_START) {
		p.next()
	} else {
		p.unexpected()
	}
	node.Params = l.tsParseBracketedList(tsTypeParametersOrArguments, l.tsParseTypeParameter, false, true)
	return p.finishNode(node, "TSTypeParameterDeclaration")
}

// tsParseTypeArguments reads `<T, U>`. The token after `>` is read in the
// enclosing context with expressions disallowed, so `<C<T> />` does not
// start a regular expression.
func (l *typeScriptLayer) tsParseTypeArguments() *ast.Node {
	p := l.p
	node := p.startNode()
	l.tsInType(func() *ast.Node {
		node.Params = l.tsInNoContext(func() []*ast.Node {
			p.expectRelational("<")
			return l.tsParseDelimitedList(tsTypeParametersOrArguments, l.tsParseType)
		})
		return nil
	})
	p.state.ExprAllowed = false
	p.expectRelational(">")
	return p.finishNode(node, "TSTypeParameterInstantiation")
}

// --- Signatures ---

// tsFillSignature reads type parameters, parameters and the return type of
// a signature. Function types require the `=>`; elsewhere the return type
// is optional.
func (l *typeScriptLayer) tsFillSignature(returnToken lexer.TokenType, signature *ast.Node) {
	p := l.p
	signature.TypeParameters = l.tsTryParseTypeParameters()
	p.expect(lexer.PAREN_L)
	signature.Parameters = l.tsParseBindingListForSignature()
	if returnToken == lexer.ARROW || p.match(returnToken) {
		signature.TypeAnnotation = l.tsParseTypeOrTypePredicateAnnotation(returnToken)
	}
}

func (l *typeScriptLayer) tsParseBindingListForSignature() []*ast.Node {
	p := l.p
	params := p.parseBindingList(lexer.PAREN_R, false, false)
	for _, param := range params {
		switch param.Type {
		case "Identifier", "RestElement", "ObjectPattern", "ArrayPattern":
		default:
			p.raise(param.Start, "Name in a signature must be an Identifier, ObjectPattern or ArrayPattern, instead got %s", param.Type)
		}
	}
	return params
}

func (l *typeScriptLayer) tsParseTypeMemberSemicolon() {
	if !l.p.eat(lexer.COMMA) {
		l.p.semicolon()
	}
}

// Syntax: (params): T | new (params): T
func (l *typeScriptLayer) tsParseSignatureMember(kind string) *ast.Node {
	p := l.p
	node := p.startNode()
	if kind == "TSConstructSignatureDeclaration" {
		p.expect(lexer.NEW)
	}
	l.tsFillSignature(lexer.COLON, node)
	l.tsParseTypeMemberSemicolon()
	return p.finishNode(node, kind)
}

func (l *typeScriptLayer) tsIsUnambiguouslyIndexSignature() bool {
	p := l.p
	p.next()
	return p.eat(lexer.NAME) && p.match(lexer.COLON)
}

// tsTryParseIndexSignature reads `[key: K]: T` into node, or returns nil
// without consuming anything.
func (l *typeScriptLayer) tsTryParseIndexSignature(node *ast.Node) *ast.Node {
	p := l.p
	if !p.match(lexer.BRACKET_L) || !p.lookahead(l.tsIsUnambiguouslyIndexSignature) {
		return nil
	}

	p.expect(lexer.BRACKET_L)
	id := p.parseIdentifier(false)
	p.expect(lexer.COLON)
	id.TypeAnnotation = l.tsParseTypeAnnotation(false, nil)
	p.finishNodeAt(id, "Identifier", id.TypeAnnotation.End, id.TypeAnnotation.Loc.End)
	p.expect(lexer.BRACKET_R)
	node.Parameters = []*ast.Node{id}

	node.TypeAnnotation = l.tsTryParseTypeAnnotation()
	l.tsParseTypeMemberSemicolon()
	return p.finishNode(node, "TSIndexSignature")
}

func (l *typeScriptLayer) tsParsePropertyOrMethodSignature(node *ast.Node, readonly bool) *ast.Node {
	p := l.p
	p.g.parsePropertyName(node)
	if p.eat(lexer.QUESTION) {
		node.Optional = true
	}

	if !readonly && (p.match(lexer.PAREN_L) || p.isRelational("<")) {
		l.tsFillSignature(lexer.COLON, node)
		l.tsParseTypeMemberSemicolon()
		return p.finishNode(node, "TSMethodSignature")
	}

	node.Readonly = readonly
	node.TypeAnnotation = l.tsTryParseTypeAnnotation()
	l.tsParseTypeMemberSemicolon()
	return p.finishNode(node, "TSPropertySignature")
}

func (l *typeScriptLayer) tsParseTypeMember() *ast.Node {
	p := l.p
	if p.match(lexer.PAREN_L) || p.isRelational("<") {
		return l.tsParseSignatureMember("TSCallSignatureDeclaration")
	}
	if p.match(lexer.NEW) && p.lookahead(l.tsIsStartOfConstructSignature) {
		return l.tsParseSignatureMember("TSConstructSignatureDeclaration")
	}

	node := p.startNode()
	readonly := l.tsParseModifier("readonly") != ""
	if idx := l.tsTryParseIndexSignature(node); idx != nil {
		idx.Readonly = readonly
		return idx
	}
	return l.tsParsePropertyOrMethodSignature(node, readonly)
}

func (l *typeScriptLayer) tsIsStartOfConstructSignature() bool {
	p := l.p
	p.next()
	return p.match(lexer.PAREN_L) || p.isRelational("<")
}

func (l *typeScriptLayer) tsParseTypeLiteral() *ast.Node {
	p := l.p
	node := p.startNode()
	node.Members = l.tsParseObjectTypeMembers()
	return p.finishNode(node, "TSTypeLiteral")
}

func (l *typeScriptLayer) tsParseObjectTypeMembers() []*ast.Node {
	p := l.p
	p.expect(lexer.BRACE_L)
	members := l.tsParseList(tsTypeMembers, l.tsParseTypeMember)
	p.expect(lexer.BRACE_R)
	return members
}

// --- Mapped types ---

// tsIsStartOfMappedType looks past `{`, an optional readonly modifier and
// `[` for `K in`.
func (l *typeScriptLayer) tsIsStartOfMappedType() bool {
	p := l.p
	p.next()
	if p.eat(lexer.PLUS_MIN) {
		return p.isContextual("readonly")
	}
	if p.isContextual("readonly") {
		p.next()
	}
	if !p.match(lexer.BRACKET_L) {
		return false
	}
	p.next()
	if !p.match(lexer.NAME) {
		return false
	}
	p.next()
	return p.match(lexer.IN)
}

func (l *typeScriptLayer) tsParseMappedTypeParameter() *ast.Node {
	p := l.p
	node := p.startNode()
	node.Name = p.parseIdentifierName(node.Start, false)
	node.Constraint = l.tsExpectThenParseType(lexer.IN)
	return p.finishNode(node, "TSTypeParameter")
}

// Syntax: { [+|-]readonly [K in T][+|-]?: Type }
func (l *typeScriptLayer) tsParseMappedType() *ast.Node {
	p := l.p
	node := p.startNode()
	p.expect(lexer.BRACE_L)

	if p.match(lexer.PLUS_MIN) {
		node.ReadonlyMod = p.state.Value
		p.next()
		p.expectContextual("readonly")
	} else if p.eatContextual("readonly") {
		node.Readonly = true
	}

	p.expect(lexer.BRACKET_L)
	node.TypeParameter = l.tsParseMappedTypeParameter()
	p.expect(lexer.BRACKET_R)

	if p.match(lexer.PLUS_MIN) {
		node.OptionalMod = p.state.Value
		p.next()
		p.expect(lexer.QUESTION)
	} else if p.eat(lexer.QUESTION) {
		node.Optional = true
	}

	node.TypeAnnotation = l.tsTryParseType()
	p.semicolon()
	p.expect(lexer.BRACE_R)
	return p.finishNode(node, "TSMappedType")
}

// --- Primary types ---

// Syntax: [A, B?, ...C[]]
func (l *typeScriptLayer) tsParseTupleType() *ast.Node {
	p := l.p
	node := p.startNode()
	node.ElementTypes = l.tsParseBracketedList(tsTupleElementTypes, l.tsParseTupleElementType, true, false)

	seenOptional := false
	for i, el := range node.ElementTypes {
		switch el.Type {
		case "TSOptionalType":
			seenOptional = true
		case "TSRestType":
			if i != len(node.ElementTypes)-1 {
				p.raise(el.Start, "A rest element must be last in a tuple type.")
			}
		default:
			if seenOptional {
				p.raise(el.Start, "A required element cannot follow an optional element.")
			}
		}
	}
	return p.finishNode(node, "TSTupleType")
}

func (l *typeScriptLayer) tsParseTupleElementType() *ast.Node {
	p := l.p
	if p.match(lexer.ELLIPSIS) {
		rest := p.startNode()
		p.next()
		rest.TypeAnnotation = l.tsParseType()
		return p.finishNode(rest, "TSRestType")
	}
	typ := l.tsParseType()
	if p.eat(lexer.QUESTION) {
		optional := p.startNodeAtNode(typ)
		optional.TypeAnnotation = typ
		return p.finishNode(optional, "TSOptionalType")
	}
	return typ
}

func (l *typeScriptLayer) tsParseParenthesizedType() *ast.Node {
	p := l.p
	node := p.startNode()
	p.expect(lexer.PAREN_L)
	node.TypeAnnotation = l.tsParseType()
	p.expect(lexer.PAREN_R)
	return p.finishNode(node, "TSParenthesizedType")
}

// Syntax: <T>(params) => R | new (params) => R
func (l *typeScriptLayer) tsParseFunctionOrConstructorType(kind string) *ast.Node {
	p := l.p
	node := p.startNode()
	if kind == "TSConstructorType" {
		p.expect(lexer.NEW)
	}
	l.tsFillSignature(lexer.ARROW, node)
	return p.finishNode(node, kind)
}

func (l *typeScriptLayer) tsParseLiteralTypeNode() *ast.Node {
	p := l.p
	node := p.startNode()
	switch p.state.Type {
	case lexer.NUM, lexer.STRING, lexer.TRUE, lexer.FALSE:
		node.Literal = p.g.parseExprAtom(nil)
	default:
		p.unexpected()
	}
	return p.finishNode(node, "TSLiteralType")
}

// tsParseNegativeLiteralType reads `-1`. The literal spans the sign.
func (l *typeScriptLayer) tsParseNegativeLiteralType() *ast.Node {
	p := l.p
	node := p.startNode()
	p.next()
	if !p.match(lexer.NUM) {
		p.unexpected()
	}
	value := -p.state.Num
	lit := p.g.parseExprAtom(nil)
	lit.LitValue = value
	raw := p.input[node.Start:lit.End]
	if lit.Raw != "" {
		lit.Raw = raw
	} else {
		lit.SetExtra("rawValue", value)
		lit.SetExtra("raw", raw)
	}
	p.resetStartLocationFromNode(lit, node)
	node.Literal = lit
	return p.finishNode(node, "TSLiteralType")
}

func (l *typeScriptLayer) tsParseNonArrayType() *ast.Node {
	p := l.p
	switch p.state.Type {
	case lexer.NAME, lexer.VOID, lexer.NULL:
		kind := ""
		switch {
		case p.match(lexer.VOID):
			kind = "TSVoidKeyword"
		case p.match(lexer.NULL):
			kind = "TSNullKeyword"
		default:
			kind = keywordTypes[p.state.Value]
		}
		if kind != "" && p.peek().Type != lexer.DOT {
			node := p.startNode()
			p.next()
			return p.finishNode(node, kind)
		}
		return l.tsParseTypeReference()

	case lexer.STRING, lexer.NUM, lexer.TRUE, lexer.FALSE:
		return l.tsParseLiteralTypeNode()

	case lexer.PLUS_MIN:
		if p.state.Value == "-" {
			return l.tsParseNegativeLiteralType()
		}

	case lexer.THIS:
		thisKeyword := l.tsParseThisTypeNode()
		if p.isContextual("is") && !p.hasPrecedingLineBreak() {
			return l.tsParseThisTypePredicate(thisKeyword)
		}
		return thisKeyword

	case lexer.TYPEOF:
		return l.tsParseTypeQuery()

	case lexer.BRACE_L:
		if p.lookahead(l.tsIsStartOfMappedType) {
			return l.tsParseMappedType()
		}
		return l.tsParseTypeLiteral()

	case lexer.BRACKET_L:
		return l.tsParseTupleType()

	case lexer.PAREN_L:
		return l.tsParseParenthesizedType()
	}

	p.unexpected()
	return nil
}

// Syntax: T[] | T[K]
func (l *typeScriptLayer) tsParseArrayTypeOrHigher() *ast.Node {
	p := l.p
	typ := l.tsParseNonArrayType()
	for !p.hasPrecedingLineBreak() && p.eat(lexer.BRACKET_L) {
		node := p.startNodeAtNode(typ)
		if p.match(lexer.BRACKET_R) {
			node.ElementType = typ
			p.expect(lexer.BRACKET_R)
			typ = p.finishNode(node, "TSArrayType")
			continue
		}
		node.ObjectType = typ
		node.IndexType = l.tsParseType()
		p.expect(lexer.BRACKET_R)
		typ = p.finishNode(node, "TSIndexedAccessType")
	}
	return typ
}

// --- Operators ---

// Syntax: keyof T | unique symbol
func (l *typeScriptLayer) tsParseTypeOperator(operator string) *ast.Node {
	p := l.p
	p.enter()
	defer p.leave()

	node := p.startNode()
	p.expectContextual(operator)
	node.Operator = operator
	node.TypeAnnotation = l.tsParseTypeOperatorOrHigher()
	return p.finishNode(node, "TSTypeOperator")
}

// Syntax: infer U
func (l *typeScriptLayer) tsParseInferType() *ast.Node {
	p := l.p
	node := p.startNode()
	p.expectContextual("infer")
	typeParameter := p.startNode()
	typeParameter.Name = p.parseIdentifierName(typeParameter.Start, false)
	node.TypeParameter = p.finishNode(typeParameter, "TSTypeParameter")
	return p.finishNode(node, "TSInferType")
}

func (l *typeScriptLayer) tsParseTypeOperatorOrHigher() *ast.Node {
	p := l.p
	switch {
	case p.isContextual("keyof"):
		return l.tsParseTypeOperator("keyof")
	case p.isContextual("unique"):
		return l.tsParseTypeOperator("unique")
	case p.isContextual("infer"):
		return l.tsParseInferType()
	}
	return l.tsParseArrayTypeOrHigher()
}

// tsParseUnionOrIntersectionType accepts a leading operator, as in
// `| A | B`.
func (l *typeScriptLayer) tsParseUnionOrIntersectionType(kind string, parseConstituentType func() *ast.Node, operator lexer.TokenType) *ast.Node {
	p := l.p
	p.eat(operator)
	typ := parseConstituentType()
	if !p.match(operator) {
		return typ
	}
	types := []*ast.Node{typ}
	for p.eat(operator) {
		types = append(types, parseConstituentType())
	}
	node := p.startNodeAtNode(typ)
	node.Types = types
	return p.finishNode(node, kind)
}

func (l *typeScriptLayer) tsParseIntersectionTypeOrHigher() *ast.Node {
	return l.tsParseUnionOrIntersectionType("TSIntersectionType", l.tsParseTypeOperatorOrHigher, lexer.BITWISE_AND)
}

func (l *typeScriptLayer) tsParseUnionTypeOrHigher() *ast.Node {
	return l.tsParseUnionOrIntersectionType("TSUnionType", l.tsParseIntersectionTypeOrHigher, lexer.BITWISE_OR)
}

// --- Function types ---

func (l *typeScriptLayer) tsIsStartOfFunctionType() bool {
	p := l.p
	if p.isRelational("<") {
		return true
	}
	return p.match(lexer.PAREN_L) && p.lookahead(l.tsIsUnambiguouslyStartOfFunctionType)
}

// tsSkipParameterStart skips a parameter name or a whole binding pattern.
func (l *typeScriptLayer) tsSkipParameterStart() bool {
	p := l.p
	if p.match(lexer.NAME) || p.match(lexer.THIS) {
		p.next()
		return true
	}
	var open, close lexer.TokenType
	switch {
	case p.match(lexer.BRACE_L):
		open, close = lexer.BRACE_L, lexer.BRACE_R
	case p.match(lexer.BRACKET_L):
		open, close = lexer.BRACKET_L, lexer.BRACKET_R
	default:
		return false
	}
	depth := 1
	p.next()
	for depth > 0 {
		switch {
		case p.match(lexer.EOF):
			return false
		case p.match(open):
			depth++
		case p.match(close):
			depth--
		}
		p.next()
	}
	return true
}

// tsIsUnambiguouslyStartOfFunctionType tells `(a: T) => R` from a
// parenthesized type by the tokens after `(`.
func (l *typeScriptLayer) tsIsUnambiguouslyStartOfFunctionType() bool {
	p := l.p
	p.next()
	if p.match(lexer.PAREN_R) || p.match(lexer.ELLIPSIS) {
		return true
	}
	if !l.tsSkipParameterStart() {
		return false
	}
	if p.match(lexer.COLON) || p.match(lexer.COMMA) || p.match(lexer.QUESTION) || p.match(lexer.EQ) {
		return true
	}
	if p.match(lexer.PAREN_R) {
		p.next()
		return p.match(lexer.ARROW)
	}
	return false
}

// --- Annotations ---

// tsParseTypeOrTypePredicateAnnotation reads a return type after
// returnToken, which may be a predicate `x is T`.
func (l *typeScriptLayer) tsParseTypeOrTypePredicateAnnotation(returnToken lexer.TokenType) *ast.Node {
	p := l.p
	return l.tsInType(func() *ast.Node {
		t := p.startNode()
		p.expect(returnToken)

		var predicateVariable *ast.Node
		if p.match(lexer.NAME) {
			predicateVariable, _ = p.tryParseIf(l.tsParseTypePredicatePrefix, isNode)
		}
		if predicateVariable == nil {
			return l.tsParseTypeAnnotation(false, t)
		}

		typ := l.tsParseTypeAnnotation(false, nil)
		node := p.startNodeAtNode(predicateVariable)
		node.ParameterName = predicateVariable
		node.TypeAnnotation = typ
		t.TypeAnnotation = p.finishNode(node, "TSTypePredicate")
		return p.finishNode(t, "TSTypeAnnotation")
	})
}

func (l *typeScriptLayer) tsTryParseTypeOrTypePredicateAnnotation() *ast.Node {
	if l.p.match(lexer.COLON) {
		return l.tsParseTypeOrTypePredicateAnnotation(lexer.COLON)
	}
	return nil
}

func (l *typeScriptLayer) tsTryParseTypeAnnotation() *ast.Node {
	if l.p.match(lexer.COLON) {
		return l.tsParseTypeAnnotation(true, nil)
	}
	return nil
}

func (l *typeScriptLayer) tsTryParseType() *ast.Node {
	return l.tsEatThenParseType(lexer.COLON)
}

func (l *typeScriptLayer) tsParseTypePredicatePrefix() *ast.Node {
	p := l.p
	id := p.parseIdentifier(false)
	if p.isContextual("is") && !p.hasPrecedingLineBreak() {
		p.next()
		return id
	}
	return nil
}

// tsParseTypeAnnotation fills t, or a new node at the current token, with
// the type after an optional colon.
func (l *typeScriptLayer) tsParseTypeAnnotation(eatColon bool, t *ast.Node) *ast.Node {
	p := l.p
	if t == nil {
		t = p.startNode()
	}
	l.tsInType(func() *ast.Node {
		if eatColon {
			p.expect(lexer.COLON)
		}
		t.TypeAnnotation = l.tsParseType()
		return nil
	})
	return p.finishNode(t, "TSTypeAnnotation")
}

// --- Types ---

// tsParseType must run in type context.
// Syntax: A extends B ? C : D
func (l *typeScriptLayer) tsParseType() *ast.Node {
	p := l.p
	p.enter()
	defer p.leave()

	typ := l.tsParseNonConditionalType()
	if p.hasPrecedingLineBreak() || !p.eat(lexer.EXTENDS) {
		return typ
	}
	node := p.startNodeAtNode(typ)
	node.CheckType = typ
	node.ExtendsType = l.tsParseNonConditionalType()
	p.expect(lexer.QUESTION)
	node.TrueType = l.tsParseType()
	p.expect(lexer.COLON)
	node.FalseType = l.tsParseType()
	return p.finishNode(node, "TSConditionalType")
}

func (l *typeScriptLayer) tsParseNonConditionalType() *ast.Node {
	p := l.p
	if l.tsIsStartOfFunctionType() {
		return l.tsParseFunctionOrConstructorType("TSFunctionType")
	}
	if p.match(lexer.NEW) {
		return l.tsParseFunctionOrConstructorType("TSConstructorType")
	}
	return l.tsParseUnionTypeOrHigher()
}

// Syntax: <T>expr
func (l *typeScriptLayer) tsParseTypeAssertion() *ast.Node {
	p := l.p
	node := p.startNode()
	node.TypeAnnotation = l.tsInType(func() *ast.Node {
		p.next()
		return l.tsParseType()
	})
	p.expectRelational(">")
	node.Expression = p.g.parseMaybeUnary(nil)
	return p.finishNode(node, "TSTypeAssertion")
}

func (l *typeScriptLayer) tsEatThenParseType(tok lexer.TokenType) *ast.Node {
	if !l.p.match(tok) {
		return nil
	}
	return l.tsNextThenParseType()
}

func (l *typeScriptLayer) tsExpectThenParseType(tok lexer.TokenType) *ast.Node {
	return l.tsInType(func() *ast.Node {
		l.p.expect(tok)
		return l.tsParseType()
	})
}

func (l *typeScriptLayer) tsNextThenParseType() *ast.Node {
	return l.tsInType(func() *ast.Node {
		l.p.next()
		return l.tsParseType()
	})
}

func isNode(n *ast.Node) bool { return n != nil }
