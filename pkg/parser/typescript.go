package parser

import (
	"github.com/nooga/esparse/pkg/ast"
	"github.com/nooga/esparse/pkg/errors"
	"github.com/nooga/esparse/pkg/lexer"
)

// typeScriptLayer adds the TypeScript dialect: type annotations, type
// declarations, namespaces, modifiers and the `as`, `!` and `<T>`
// expression forms.
type typeScriptLayer struct {
	grammar
	p *Parser
}

func newTypeScriptLayer(p *Parser, next grammar) grammar {
	return &typeScriptLayer{grammar: next, p: p}
}

func (l *typeScriptLayer) isBang() bool {
	return l.p.match(lexer.PREFIX) && l.p.state.Value == "!"
}

func (l *typeScriptLayer) parseAccessModifier() string {
	return l.tsParseModifier("public", "protected", "private")
}

func (l *typeScriptLayer) tsIsDeclarationStart() bool {
	if !l.p.match(lexer.NAME) {
		return false
	}
	switch l.p.state.Value {
	case "abstract", "declare", "enum", "interface", "module", "namespace", "type":
		return true
	}
	return false
}

func (l *typeScriptLayer) isAbstractClass() bool {
	return l.p.isContextual("abstract") && l.p.peek().Type == lexer.CLASS
}

// typeCastToParameter turns `(x: T)` into the parameter `x: T`.
func (l *typeScriptLayer) typeCastToParameter(node *ast.Node) *ast.Node {
	expr := node.Expression
	expr.TypeAnnotation = node.TypeAnnotation
	return l.p.finishNodeAt(expr, expr.Type, node.TypeAnnotation.End, node.TypeAnnotation.Loc.End)
}

// --- Declarations ---

// Syntax: interface Name<T> extends A, B { members }
func (l *typeScriptLayer) tsParseInterfaceDeclaration(node *ast.Node) *ast.Node {
	p := l.p
	node.Id = p.parseIdentifier(false)
	node.TypeParameters = l.tsTryParseTypeParameters()
	if p.eat(lexer.EXTENDS) {
		node.Extends = l.tsParseHeritageClause()
	}
	body := p.startNode()
	body.BodyList = l.tsParseObjectTypeMembers()
	node.Body = p.finishNode(body, "TSInterfaceBody")
	return p.finishNode(node, "TSInterfaceDeclaration")
}

func (l *typeScriptLayer) tsParseHeritageClause() []*ast.Node {
	return l.tsParseDelimitedList(tsHeritageClauseElement, l.tsParseExpressionWithTypeArguments)
}

func (l *typeScriptLayer) tsParseExpressionWithTypeArguments() *ast.Node {
	p := l.p
	node := p.startNode()
	node.Expression = l.tsParseEntityName(false)
	if p.isRelational("<") {
		node.TypeParameters = l.tsParseTypeArguments()
	}
	return p.finishNode(node, "TSExpressionWithTypeArguments")
}

// Syntax: type Name<T> = Type;
func (l *typeScriptLayer) tsParseTypeAliasDeclaration(node *ast.Node) *ast.Node {
	p := l.p
	node.Id = p.parseIdentifier(false)
	node.TypeParameters = l.tsTryParseTypeParameters()
	node.TypeAnnotation = l.tsExpectThenParseType(lexer.EQ)
	p.semicolon()
	return p.finishNode(node, "TSTypeAliasDeclaration")
}

func (l *typeScriptLayer) tsParseModuleBlock() *ast.Node {
	p := l.p
	node := p.startNode()
	p.expect(lexer.BRACE_L)
	node.BodyList, _ = p.parseBlockOrModuleBlockBody(false, true, lexer.BRACE_R)
	return p.finishNode(node, "TSModuleBlock")
}

// Syntax: namespace A.B.C { body }
func (l *typeScriptLayer) tsParseModuleOrNamespaceDeclaration(node *ast.Node) *ast.Node {
	p := l.p
	node.Id = p.parseIdentifier(false)
	if p.eat(lexer.DOT) {
		node.Body = l.tsParseModuleOrNamespaceDeclaration(p.startNode())
	} else {
		node.Body = l.tsParseModuleBlock()
	}
	return p.finishNode(node, "TSModuleDeclaration")
}

// Syntax: module "name" [{ body }] | global { body }
func (l *typeScriptLayer) tsParseAmbientExternalModuleDeclaration(node *ast.Node) *ast.Node {
	p := l.p
	switch {
	case p.isContextual("global"):
		node.Global = true
		node.Id = p.parseIdentifier(false)
	case p.match(lexer.STRING):
		node.Id = p.g.parseExprAtom(nil)
	default:
		p.unexpected()
	}
	if p.match(lexer.BRACE_L) {
		node.Body = l.tsParseModuleBlock()
	} else {
		p.semicolon()
	}
	return p.finishNode(node, "TSModuleDeclaration")
}

// Syntax: import A = B.C; | import A = require("m");
func (l *typeScriptLayer) tsParseImportEqualsDeclaration(node *ast.Node, isExport bool) *ast.Node {
	p := l.p
	node.IsExport = isExport
	node.Id = p.parseIdentifier(false)
	p.expect(lexer.EQ)
	node.ModuleReference = l.tsParseModuleReference()
	p.semicolon()
	return p.finishNode(node, "TSImportEqualsDeclaration")
}

func (l *typeScriptLayer) tsIsExternalModuleReference() bool {
	return l.p.isContextual("require") && l.p.peek().Type == lexer.PAREN_L
}

func (l *typeScriptLayer) tsParseModuleReference() *ast.Node {
	if l.tsIsExternalModuleReference() {
		return l.tsParseExternalModuleReference()
	}
	return l.tsParseEntityName(false)
}

func (l *typeScriptLayer) tsParseExternalModuleReference() *ast.Node {
	p := l.p
	node := p.startNode()
	p.expectContextual("require")
	p.expect(lexer.PAREN_L)
	if !p.match(lexer.STRING) {
		p.unexpected()
	}
	node.Expression = p.g.parseExprAtom(nil)
	p.expect(lexer.PAREN_R)
	return p.finishNode(node, "TSExternalModuleReference")
}

// tsTryParseDeclare parses the declaration after `declare`, or returns nil
// when the next token cannot start one.
func (l *typeScriptLayer) tsTryParseDeclare(node *ast.Node) *ast.Node {
	p := l.p
	switch p.state.Type {
	case lexer.FUNCTION:
		p.next()
		return p.parseFunction(node, true, false, false, false)
	case lexer.CLASS:
		return p.parseClass(node, true, false)
	case lexer.CONST:
		if p.isLookaheadContextual("enum") {
			p.expect(lexer.CONST)
			p.expectContextual("enum")
			return l.tsParseEnumDeclaration(node, true)
		}
		return p.parseVarStatement(node, "const")
	case lexer.VAR:
		return p.parseVarStatement(node, "var")
	case lexer.NAME:
		switch value := p.state.Value; value {
		case "let":
			return p.parseVarStatement(node, "let")
		case "global":
			return l.tsParseAmbientExternalModuleDeclaration(node)
		default:
			return l.tsParseDeclaration(node, value, true)
		}
	}
	return nil
}

// tsParseExpressionStatement handles statements that start with a
// contextual keyword already parsed as the identifier expr.
func (l *typeScriptLayer) tsParseExpressionStatement(node, expr *ast.Node) *ast.Node {
	p := l.p
	switch expr.Name {
	case "declare":
		if p.hasPrecedingLineBreak() {
			return nil
		}
		declaration := l.tsTryParseDeclare(node)
		if declaration != nil {
			declaration.Declare = true
		}
		return declaration
	case "global":
		if p.match(lexer.BRACE_L) {
			node.Global = true
			node.Id = expr
			node.Body = l.tsParseModuleBlock()
			return p.finishNode(node, "TSModuleDeclaration")
		}
		return nil
	}
	return l.tsParseDeclaration(node, expr.Name, false)
}

// tsParseDeclaration parses the declaration introduced by the contextual
// keyword value. With next set the keyword is the current token and gets
// consumed; otherwise it was already consumed and must not be followed by
// a line break.
func (l *typeScriptLayer) tsParseDeclaration(node *ast.Node, value string, next bool) *ast.Node {
	p := l.p
	matches := func(t lexer.TokenType) bool {
		return next || (p.match(t) && !p.hasPrecedingLineBreak())
	}
	switch value {
	case "abstract":
		if matches(lexer.CLASS) {
			node.Abstract = true
			if next {
				p.next()
			}
			return p.parseClass(node, true, false)
		}
	case "enum":
		if matches(lexer.NAME) {
			if next {
				p.next()
			}
			return l.tsParseEnumDeclaration(node, false)
		}
	case "interface":
		if matches(lexer.NAME) {
			if next {
				p.next()
			}
			return l.tsParseInterfaceDeclaration(node)
		}
	case "module":
		if next {
			p.next()
		}
		if p.match(lexer.STRING) {
			return l.tsParseAmbientExternalModuleDeclaration(node)
		}
		if matches(lexer.NAME) {
			return l.tsParseModuleOrNamespaceDeclaration(node)
		}
	case "namespace":
		if matches(lexer.NAME) {
			if next {
				p.next()
			}
			return l.tsParseModuleOrNamespaceDeclaration(node)
		}
	case "type":
		if matches(lexer.NAME) {
			if next {
				p.next()
			}
			return l.tsParseTypeAliasDeclaration(node)
		}
	}
	return nil
}

// tsTryParseGenericAsyncArrowFunction parses `async <T>(params): R =>`.
func (l *typeScriptLayer) tsTryParseGenericAsyncArrowFunction(start int, startLoc ast.Position) *ast.Node {
	p := l.p
	if !p.isRelational("<") {
		return nil
	}
	node, _ := p.tryParse(func() *ast.Node {
		node := p.startNodeAt(start, startLoc)
		node.TypeParameters = l.tsParseTypeParameters()
		l.grammar.parseFunctionParams(node, false)
		node.ReturnType = l.tsTryParseTypeOrTypePredicateAnnotation()
		p.expect(lexer.ARROW)
		return node
	})
	if node == nil {
		return nil
	}
	return p.parseArrowExpression(node, nil, true)
}

// --- Statements ---

func (l *typeScriptLayer) parseStatementContent(declaration, topLevel bool) *ast.Node {
	p := l.p
	if p.match(lexer.CONST) && p.isLookaheadContextual("enum") {
		node := p.startNode()
		p.expect(lexer.CONST)
		p.expectContextual("enum")
		return l.tsParseEnumDeclaration(node, true)
	}
	return l.grammar.parseStatementContent(declaration, topLevel)
}

func (l *typeScriptLayer) parseExpressionStatement(node, expr *ast.Node) *ast.Node {
	if expr.Type == "Identifier" && !expr.Parenthesized() {
		if decl := l.tsParseExpressionStatement(node, expr); decl != nil {
			return decl
		}
	}
	return l.grammar.parseExpressionStatement(node, expr)
}

func (l *typeScriptLayer) parseVarHead(decl *ast.Node) {
	p := l.p
	l.grammar.parseVarHead(decl)
	if decl.Id.Type == "Identifier" && !p.hasPrecedingLineBreak() && l.isBang() {
		p.next()
		decl.Definite = true
	}
	if t := l.tsTryParseTypeAnnotation(); t != nil {
		decl.Id.TypeAnnotation = t
		p.finishNode(decl.Id, decl.Id.Type)
	}
}

func (l *typeScriptLayer) canHaveLeadingDecorator() bool {
	return l.grammar.canHaveLeadingDecorator() || l.isAbstractClass()
}

// --- Functions ---

func (l *typeScriptLayer) parseFunctionParams(node *ast.Node, allowModifiers bool) {
	if tp := l.tsTryParseTypeParameters(); tp != nil {
		node.TypeParameters = tp
	}
	l.grammar.parseFunctionParams(node, allowModifiers)
}

// parseFunctionBodyAndFinish reads the return type. A function declaration
// or class method without a body becomes an overload signature.
func (l *typeScriptLayer) parseFunctionBodyAndFinish(node *ast.Node, kind string, allowExpressionBody bool) *ast.Node {
	p := l.p
	if p.match(lexer.COLON) {
		node.ReturnType = l.tsParseTypeOrTypePredicateAnnotation(lexer.COLON)
	}
	bodilessKind := ""
	switch kind {
	case "FunctionDeclaration":
		bodilessKind = "TSDeclareFunction"
	case "ClassMethod":
		bodilessKind = "TSDeclareMethod"
	}
	if bodilessKind != "" && !p.match(lexer.BRACE_L) && p.isLineTerminator() {
		return p.finishNode(node, bodilessKind)
	}
	return l.grammar.parseFunctionBodyAndFinish(node, kind, allowExpressionBody)
}

// --- Modules ---

func (l *typeScriptLayer) parseImport(node *ast.Node) *ast.Node {
	p := l.p
	if p.isContextual("type") {
		next := p.peek()
		if next.Type != lexer.COMMA && next.Type != lexer.EQ && !(next.Type == lexer.NAME && next.Value == "from") {
			p.next()
			node.ImportKind = "type"
		}
	}
	if p.match(lexer.NAME) && p.peek().Type == lexer.EQ {
		return l.tsParseImportEqualsDeclaration(node, false)
	}
	if node.ImportKind == "" {
		node.ImportKind = "value"
	}
	return l.grammar.parseImport(node)
}

func (l *typeScriptLayer) parseExport(node *ast.Node) *ast.Node {
	p := l.p
	switch {
	case p.match(lexer.IMPORT):
		// export import A = B
		p.expect(lexer.IMPORT)
		return l.tsParseImportEqualsDeclaration(node, true)

	case p.eat(lexer.EQ):
		// export = x
		node.Expression = p.parseExpression(false, nil)
		p.semicolon()
		return p.finishNode(node, "TSExportAssignment")

	case p.eatContextual("as"):
		// export as namespace A
		p.expectContextual("namespace")
		node.Id = p.parseIdentifier(false)
		p.semicolon()
		return p.finishNode(node, "TSNamespaceExportDeclaration")
	}

	result := l.grammar.parseExport(node)
	switch result.Type {
	case "ExportNamedDeclaration", "ExportAllDeclaration":
		if result.ExportKind == "" {
			result.ExportKind = "value"
		}
	}
	return result
}

func (l *typeScriptLayer) isExportDefaultSpecifier() bool {
	if l.tsIsDeclarationStart() {
		return false
	}
	return l.grammar.isExportDefaultSpecifier()
}

func (l *typeScriptLayer) shouldParseExportDeclaration() bool {
	if l.tsIsDeclarationStart() {
		return true
	}
	return l.grammar.shouldParseExportDeclaration()
}

// parseExportDeclaration also handles `export type { A }`, which has
// specifiers instead of a declaration.
func (l *typeScriptLayer) parseExportDeclaration(node *ast.Node) *ast.Node {
	p := l.p
	if p.isContextual("type") && p.peek().Type == lexer.BRACE_L {
		p.next()
		node.ExportKind = "type"
		node.Specifiers = p.parseExportSpecifiers()
		p.parseExportFrom(node, false)
		return nil
	}

	start, startLoc := p.state.Start, p.state.StartLoc
	isDeclare := p.eatContextual("declare")

	var declaration *ast.Node
	if p.match(lexer.NAME) {
		declaration = l.tsParseDeclaration(p.startNode(), p.state.Value, true)
	}
	if declaration == nil {
		declaration = l.grammar.parseExportDeclaration(node)
	}
	if declaration != nil && isDeclare {
		declaration.ResetStart(start, startLoc)
		declaration.Declare = true
	}
	return declaration
}

func (l *typeScriptLayer) parseExportDefaultExpression() *ast.Node {
	p := l.p
	if l.isAbstractClass() {
		cls := p.startNode()
		p.next()
		cls.Abstract = true
		return p.parseClass(cls, true, true)
	}
	if p.isContextual("interface") {
		if decl := l.tsParseDeclaration(p.startNode(), "interface", true); decl != nil {
			return decl
		}
	}
	return l.grammar.parseExportDefaultExpression()
}

// checkDuplicateExports accepts repeated names; declarations merge.
func (l *typeScriptLayer) checkDuplicateExports(node *ast.Node, name string) {}

// checkReservedWord only rejects keywords. Words reserved in strict mode
// name declarations here.
func (l *typeScriptLayer) checkReservedWord(word string, start int, checkKeywords, isBinding bool) {
	if checkKeywords && lexer.IsKeyword(word) {
		l.p.raise(start, "%s is a reserved word", word)
	}
}

// --- Classes ---

func (l *typeScriptLayer) parseClassId(node *ast.Node, isStatement, optionalID bool) {
	p := l.p
	if (!isStatement || optionalID) && p.isContextual("implements") {
		return
	}
	l.grammar.parseClassId(node, isStatement, optionalID)
	if tp := l.tsTryParseTypeParameters(); tp != nil {
		node.TypeParameters = tp
	}
}

func (l *typeScriptLayer) parseClassSuper(node *ast.Node) {
	p := l.p
	l.grammar.parseClassSuper(node)
	if node.SuperClass != nil && p.isRelational("<") {
		node.SuperTypeParameters = l.tsParseTypeArguments()
	}
	if p.eatContextual("implements") {
		node.Implements = l.tsParseHeritageClause()
	}
}

func (l *typeScriptLayer) parseClassMember(classBody, member *ast.Node, st *classState) {
	if accessibility := l.parseAccessModifier(); accessibility != "" {
		member.Accessibility = accessibility
		if l.parseAccessModifier() != "" {
			l.p.raise(l.p.state.LastTokStart, "Accessibility modifier already seen.")
		}
	}
	l.grammar.parseClassMember(classBody, member, st)
}

func (l *typeScriptLayer) parseClassMemberWithIsStatic(classBody, member *ast.Node, st *classState, isStatic bool) {
	p := l.p
	for {
		mod := l.tsParseModifier("abstract", "readonly", "declare")
		if mod == "" {
			break
		}
		switch mod {
		case "abstract":
			if member.Abstract {
				p.raise(p.state.LastTokStart, "'abstract' modifier already seen.")
			}
			member.Abstract = true
		case "readonly":
			if member.Readonly {
				p.raise(p.state.LastTokStart, "'readonly' modifier already seen.")
			}
			member.Readonly = true
		case "declare":
			if member.Declare {
				p.raise(p.state.LastTokStart, "'declare' modifier already seen.")
			}
			member.Declare = true
		}
	}

	if !member.Abstract && !isStatic && member.Accessibility == "" {
		if idx := l.tsTryParseIndexSignature(member); idx != nil {
			classBody.BodyList = append(classBody.BodyList, idx)
			return
		}
	}

	if member.Readonly || member.Declare {
		member.Static = isStatic
		key := p.parseClassPropertyName(member)
		p.g.parsePostMemberNameModifiers(member)
		if key.Type == "PrivateName" {
			p.pushClassPrivateProperty(classBody, member)
		} else {
			p.pushClassProperty(classBody, member)
		}
		return
	}
	l.grammar.parseClassMemberWithIsStatic(classBody, member, st, isStatic)
}

func (l *typeScriptLayer) parsePostMemberNameModifiers(member *ast.Node) {
	if l.p.eat(lexer.QUESTION) {
		member.Optional = true
	}
}

func (l *typeScriptLayer) isClassMethod() bool {
	return l.p.isRelational("<") || l.grammar.isClassMethod()
}

func (l *typeScriptLayer) isClassProperty() bool {
	return l.isBang() || l.p.match(lexer.COLON) || l.grammar.isClassProperty()
}

func (l *typeScriptLayer) pushClassMethod(classBody, method *ast.Node, isGenerator, isAsync, isConstructor bool) {
	if tp := l.tsTryParseTypeParameters(); tp != nil {
		method.TypeParameters = tp
	}
	l.grammar.pushClassMethod(classBody, method, isGenerator, isAsync, isConstructor)
}

func (l *typeScriptLayer) pushClassPrivateMethod(classBody, method *ast.Node, isGenerator, isAsync bool) {
	if tp := l.tsTryParseTypeParameters(); tp != nil {
		method.TypeParameters = tp
	}
	l.grammar.pushClassPrivateMethod(classBody, method, isGenerator, isAsync)
}

// parseClassPropertyAnnotation reads the `!` and type after a field name.
func (l *typeScriptLayer) parseClassPropertyAnnotation(node *ast.Node) {
	p := l.p
	if !node.Optional && l.isBang() {
		p.next()
		node.Definite = true
	}
	if t := l.tsTryParseTypeAnnotation(); t != nil {
		node.TypeAnnotation = t
	}
}

func (l *typeScriptLayer) parseClassProperty(node *ast.Node) *ast.Node {
	l.parseClassPropertyAnnotation(node)
	return l.grammar.parseClassProperty(node)
}

func (l *typeScriptLayer) parseClassPrivateProperty(node *ast.Node) *ast.Node {
	if node.Abstract {
		l.p.raise(node.Start, "Private elements cannot have the 'abstract' modifier.")
	}
	if node.Accessibility != "" {
		l.p.raise(node.Start, "Private elements cannot have an accessibility modifier ('%s').", node.Accessibility)
	}
	l.parseClassPropertyAnnotation(node)
	return l.grammar.parseClassPrivateProperty(node)
}

// --- Objects ---

func (l *typeScriptLayer) parseObjPropValue(prop *ast.Node, start int, startLoc ast.Position, isGenerator, isAsync, isPattern bool, refShorthandDefaultPos *int, containsEsc bool) *ast.Node {
	if tp := l.tsTryParseTypeParameters(); tp != nil {
		prop.TypeParameters = tp
	}
	return l.grammar.parseObjPropValue(prop, start, startLoc, isGenerator, isAsync, isPattern, refShorthandDefaultPos, containsEsc)
}

// --- Expressions ---

// parseMaybeAssign tries a markup element first when one starts here, then
// a generic arrow function `<T>(x) => x`.
func (l *typeScriptLayer) parseMaybeAssign(noIn bool, refShorthandDefaultPos *int, afterLeftParse parenItemFunc, refNeedsArrowPos *int) *ast.Node {
	p := l.p
	var jsxErr *errors.SyntaxError
	if p.match(lexer.JSX_TAG_START) {
		node, err := p.tryParse(func() *ast.Node {
			return l.grammar.parseMaybeAssign(noIn, refShorthandDefaultPos, afterLeftParse, refNeedsArrowPos)
		})
		if err == nil {
			return node
		}
		p.state.Context = p.state.Context[:len(p.state.Context)-2]
		jsxErr = err
	}

	if jsxErr == nil && !p.isRelational("<") {
		return l.grammar.parseMaybeAssign(noIn, refShorthandDefaultPos, afterLeftParse, refNeedsArrowPos)
	}

	arrow, err := p.tryParse(func() *ast.Node {
		typeParameters := l.tsParseTypeParameters()
		expr := l.grammar.parseMaybeAssign(noIn, refShorthandDefaultPos, afterLeftParse, refNeedsArrowPos)
		if expr.Type != "ArrowFunctionExpression" {
			p.unexpected()
		}
		if len(typeParameters.Params) > 0 {
			p.resetStartLocationFromNode(expr, typeParameters)
		}
		expr.TypeParameters = typeParameters
		return expr
	})
	if err == nil {
		return arrow
	}
	if jsxErr != nil {
		panic(jsxErr)
	}
	return l.grammar.parseMaybeAssign(noIn, refShorthandDefaultPos, afterLeftParse, refNeedsArrowPos)
}

// parseConditional keeps `(a ? (b) : c => d)` parseable as arrow params: a
// failed conditional inside parentheses records its position instead.
func (l *typeScriptLayer) parseConditional(expr *ast.Node, noIn bool, start int, startLoc ast.Position, refNeedsArrowPos *int) *ast.Node {
	p := l.p
	if refNeedsArrowPos == nil || !p.match(lexer.QUESTION) {
		return l.grammar.parseConditional(expr, noIn, start, startLoc, refNeedsArrowPos)
	}
	node, err := p.tryParse(func() *ast.Node {
		return l.grammar.parseConditional(expr, noIn, start, startLoc, nil)
	})
	if err != nil {
		*refNeedsArrowPos = err.StartPos
		return expr
	}
	return node
}

// parseExprOp adds `x as T` at relational precedence.
func (l *typeScriptLayer) parseExprOp(left *ast.Node, leftStart int, leftStartLoc ast.Position, minPrec int, noIn bool) *ast.Node {
	p := l.p
	if prec, _ := lexer.IN.Binop(); prec > minPrec && !p.hasPrecedingLineBreak() && p.isContextual("as") {
		node := p.startNodeAt(leftStart, leftStartLoc)
		node.Expression = left
		if p.peek().Type == lexer.CONST {
			// x as const
			p.next()
			ref := p.startNode()
			ref.TypeName = p.parseIdentifier(true)
			node.TypeAnnotation = p.finishNode(ref, "TSTypeReference")
		} else {
			node.TypeAnnotation = l.tsNextThenParseType()
		}
		p.finishNode(node, "TSAsExpression")
		return p.g.parseExprOp(node, leftStart, leftStartLoc, minPrec, noIn)
	}
	return l.grammar.parseExprOp(left, leftStart, leftStartLoc, minPrec, noIn)
}

// parseMaybeUnary reads `<T>x` type assertions. With markup enabled `<`
// starts an element instead.
func (l *typeScriptLayer) parseMaybeUnary(refShorthandDefaultPos *int) *ast.Node {
	if !l.p.hasPlugin("jsx") && l.p.isRelational("<") {
		return l.tsParseTypeAssertion()
	}
	return l.grammar.parseMaybeUnary(refShorthandDefaultPos)
}

// parseSubscript adds `x!` and type arguments on calls and tagged
// templates. `<` after a line break is always a comparison.
func (l *typeScriptLayer) parseSubscript(base *ast.Node, start int, startLoc ast.Position, noCalls bool, st *subscriptState) *ast.Node {
	p := l.p
	if !p.hasPrecedingLineBreak() && l.isBang() {
		p.state.ExprAllowed = false
		p.next()
		node := p.startNodeAt(start, startLoc)
		node.Expression = base
		return p.finishNode(node, "TSNonNullExpression")
	}

	if !p.hasPrecedingLineBreak() && p.isRelational("<") {
		result, _ := p.tryParse(func() *ast.Node {
			if !noCalls && p.atPossibleAsync(base) {
				if arrow := l.tsTryParseGenericAsyncArrowFunction(start, startLoc); arrow != nil {
					st.stop = true
					return arrow
				}
			}

			node := p.startNodeAt(start, startLoc)
			typeArguments := l.tsParseTypeArguments()
			if !noCalls && p.eat(lexer.PAREN_L) {
				node.Callee = base
				node.Arguments = p.parseCallExpressionArguments(lexer.PAREN_R, false)
				node.TypeParameters = typeArguments
				if st.optionalChainMember {
					node.Optional = false
					return p.finishNode(node, "OptionalCallExpression")
				}
				return p.finishCallExpression(node)
			}
			if p.match(lexer.BACK_QUOTE) {
				node.Tag = base
				node.TypeParameters = typeArguments
				node.Quasi = p.parseTemplate(true)
				if st.optionalChainMember {
					p.raise(start, "Tagged Template Literals are not allowed in optionalChain")
				}
				return p.finishNode(node, "TaggedTemplateExpression")
			}
			p.unexpected()
			return nil
		})
		if result != nil {
			return result
		}
	}
	return l.grammar.parseSubscript(base, start, startLoc, noCalls, st)
}

func (l *typeScriptLayer) parseNewArguments(node *ast.Node) {
	p := l.p
	if p.isRelational("<") {
		typeArguments, _ := p.tryParse(func() *ast.Node {
			args := l.tsParseTypeArguments()
			if !p.match(lexer.PAREN_L) {
				p.unexpected()
			}
			return args
		})
		if typeArguments != nil {
			node.TypeParameters = typeArguments
		}
	}
	l.grammar.parseNewArguments(node)
}

func (l *typeScriptLayer) shouldParseAsyncArrow() bool {
	return l.p.match(lexer.COLON) || l.grammar.shouldParseAsyncArrow()
}

func (l *typeScriptLayer) parseAsyncArrowFromCallExpression(node, call *ast.Node) *ast.Node {
	if l.p.match(lexer.COLON) {
		node.ReturnType = l.tsParseTypeAnnotation(true, nil)
	}
	return l.grammar.parseAsyncArrowFromCallExpression(node, call)
}

func (l *typeScriptLayer) shouldParseArrow() bool {
	return l.p.match(lexer.COLON) || l.grammar.shouldParseArrow()
}

// parseArrow reads an arrow return type; a colon not followed by `=>` is
// left for the conditional expression that owns it.
func (l *typeScriptLayer) parseArrow(node *ast.Node) *ast.Node {
	p := l.p
	if p.match(lexer.COLON) {
		returnType, _ := p.tryParse(func() *ast.Node {
			t := l.tsParseTypeOrTypePredicateAnnotation(lexer.COLON)
			if p.canInsertSemicolon() || !p.match(lexer.ARROW) {
				p.unexpected()
			}
			return t
		})
		if returnType != nil {
			node.ReturnType = returnType
		}
	}
	return l.grammar.parseArrow(node)
}

// parseParenItem reads `(x?: T)` inside parentheses as a type cast that
// becomes a parameter if an arrow follows.
func (l *typeScriptLayer) parseParenItem(node *ast.Node, start int, startLoc ast.Position) *ast.Node {
	p := l.p
	node = l.grammar.parseParenItem(node, start, startLoc)
	if p.eat(lexer.QUESTION) {
		node.Optional = true
	}
	if p.match(lexer.COLON) {
		typeCast := p.startNodeAt(start, startLoc)
		typeCast.Expression = node
		typeCast.TypeAnnotation = l.tsParseTypeAnnotation(true, nil)
		return p.finishNode(typeCast, "TSTypeCastExpression")
	}
	return node
}

func (l *typeScriptLayer) parseParenAndDistinguishExpression(canBeArrow bool) *ast.Node {
	node := l.grammar.parseParenAndDistinguishExpression(canBeArrow)
	if node.Type == "TSTypeCastExpression" {
		l.p.raise(node.Start, "Did not expect a type annotation here.")
	}
	return node
}

// --- Patterns ---

// parseAssignableListItem adds constructor parameter properties such as
// `private readonly x = 1`.
func (l *typeScriptLayer) parseAssignableListItem(allowModifiers bool, decorators []*ast.Node) *ast.Node {
	p := l.p
	start, startLoc := p.state.Start, p.state.StartLoc
	accessibility := ""
	readonly := false
	if allowModifiers {
		accessibility = l.parseAccessModifier()
		readonly = l.tsParseModifier("readonly") != ""
	}

	left := p.g.parseMaybeDefault(p.state.Start, p.state.StartLoc, nil)
	p.g.parseAssignableListItemTypes(left)
	elt := p.g.parseMaybeDefault(left.Start, left.Loc.Start, left)

	if accessibility == "" && !readonly {
		if len(decorators) > 0 {
			left.Decorators = decorators
		}
		return elt
	}

	pp := p.startNodeAt(start, startLoc)
	if len(decorators) > 0 {
		pp.Decorators = decorators
	}
	pp.Accessibility = accessibility
	pp.Readonly = readonly
	if elt.Type != "Identifier" && elt.Type != "AssignmentPattern" {
		p.raise(pp.Start, "A parameter property may only be declared using an identifier or assignment pattern.")
	}
	pp.Parameter = elt
	return p.finishNode(pp, "TSParameterProperty")
}

func (l *typeScriptLayer) parseAssignableListItemTypes(param *ast.Node) *ast.Node {
	p := l.p
	if p.eat(lexer.QUESTION) {
		if param.Type != "Identifier" {
			p.raise(param.Start, "A binding pattern parameter cannot be optional in an implementation signature.")
		}
		param.Optional = true
	}
	if t := l.tsTryParseTypeAnnotation(); t != nil {
		param.TypeAnnotation = t
	}
	return p.finishNode(param, param.Type)
}

func (l *typeScriptLayer) parseBindingAtom() *ast.Node {
	if l.p.match(lexer.THIS) {
		return l.p.parseIdentifier(true)
	}
	return l.grammar.parseBindingAtom()
}

func (l *typeScriptLayer) parseMaybeDefault(start int, startLoc ast.Position, left *ast.Node) *ast.Node {
	node := l.grammar.parseMaybeDefault(start, startLoc, left)
	if node.Type == "AssignmentPattern" && node.TypeAnnotation != nil && node.Right.Start < node.TypeAnnotation.Start {
		l.p.raise(node.TypeAnnotation.Start, "Type annotations must come before default assignments, "+
			"e.g. instead of `age = 25: number` use `age: number = 25`")
	}
	return node
}

func (l *typeScriptLayer) toAssignable(node *ast.Node, isBinding bool, contextDescription string) *ast.Node {
	if node == nil {
		return nil
	}
	switch node.Type {
	case "TSTypeCastExpression":
		return l.grammar.toAssignable(l.typeCastToParameter(node), isBinding, contextDescription)
	case "TSParameterProperty":
		return node
	case "TSAsExpression", "TSNonNullExpression", "TSTypeAssertion":
		node.Expression = l.p.g.toAssignable(node.Expression, isBinding, contextDescription)
		return node
	}
	return l.grammar.toAssignable(node, isBinding, contextDescription)
}

func (l *typeScriptLayer) toAssignableList(exprList []*ast.Node, isBinding bool, contextDescription string) []*ast.Node {
	for i, expr := range exprList {
		if expr != nil && expr.Type == "TSTypeCastExpression" {
			exprList[i] = l.typeCastToParameter(expr)
		}
	}
	return l.grammar.toAssignableList(exprList, isBinding, contextDescription)
}

func (l *typeScriptLayer) toReferencedList(exprList []*ast.Node, isParenthesizedExpr bool) []*ast.Node {
	for _, expr := range exprList {
		if expr != nil && expr.Type == "TSTypeCastExpression" {
			l.p.raise(expr.TypeAnnotation.Start, "Did not expect a type annotation here.")
		}
	}
	return exprList
}

func (l *typeScriptLayer) checkLVal(expr *ast.Node, isBinding bool, checkClashes map[string]bool, contextDescription string) {
	switch expr.Type {
	case "TSTypeCastExpression":
		return
	case "TSParameterProperty":
		l.p.g.checkLVal(expr.Parameter, isBinding, checkClashes, "parameter property")
		return
	case "TSAsExpression", "TSNonNullExpression", "TSTypeAssertion":
		l.p.g.checkLVal(expr.Expression, isBinding, checkClashes, contextDescription)
		return
	}
	l.grammar.checkLVal(expr, isBinding, checkClashes, contextDescription)
}

// --- Markup ---

// jsxParseOpeningElementAfterName reads type arguments on an element,
// as in `<C<T> />`.
func (l *typeScriptLayer) jsxParseOpeningElementAfterName(node *ast.Node) *ast.Node {
	p := l.p
	if p.isRelational("<") {
		typeArguments, _ := p.tryParse(l.tsParseTypeArguments)
		if typeArguments != nil {
			node.TypeParameters = typeArguments
		}
	}
	return l.grammar.jsxParseOpeningElementAfterName(node)
}
