package parser

import (
	"github.com/dlclark/regexp2"

	"github.com/nooga/esparse/pkg/ast"
	"github.com/nooga/esparse/pkg/errors"
	"github.com/nooga/esparse/pkg/lexer"
)

var flowPragmaPattern = regexp2.MustCompile(`\*?\s*@((?:no)?flow)\b`, regexp2.None)

const ambiguousArrowsMsg = "Ambiguous expression: wrap the arrow functions in parentheses to disambiguate."

// flowLayer adds Flow type annotations and declarations.
type flowLayer struct {
	grammar
	p *Parser
}

func newFlowLayer(p *Parser, next grammar) grammar {
	return &flowLayer{grammar: next, p: p}
}

// shouldParseTypes reports whether `f<T>(x)` and `new C<T>` are read as
// type arguments rather than comparisons.
func (l *flowLayer) shouldParseTypes() bool {
	return l.p.pluginFlag("flow", "all") || l.p.state.FlowPragma == pragmaFlow
}

func hasTypeImportKind(node *ast.Node) bool {
	return node.ImportKind == "type" || node.ImportKind == "typeof"
}

func isMaybeDefaultImport(typ lexer.TokenType, value string) bool {
	return (typ == lexer.NAME || typ.IsKeyword()) && value != "from"
}

// --- Pragma ---

func (l *flowLayer) addComment(c *ast.Comment) {
	p := l.p
	// Only the first comment can carry the pragma.
	if p.state.FlowPragma == pragmaUnknown {
		m, err := flowPragmaPattern.FindStringMatch(c.Value)
		switch {
		case err != nil || m == nil:
			p.state.FlowPragma = pragmaNone
		case m.GroupByNumber(1).String() == "flow":
			p.state.FlowPragma = pragmaFlow
		default:
			p.state.FlowPragma = pragmaNoFlow
		}
		if m != nil {
			logger.Debugf("flow pragma @%s at %d", m.GroupByNumber(1).String(), c.Start)
		}
	}
	l.grammar.addComment(c)
}

// --- Statements ---

func (l *flowLayer) parseStatement(declaration, topLevel bool) *ast.Node {
	p := l.p
	// `interface` is reserved in strict mode and never reaches the
	// expression statement path.
	if p.state.Strict && p.isContextual("interface") {
		node := p.startNode()
		p.next()
		return l.flowParseInterface(node)
	}
	stmt := l.grammar.parseStatement(declaration, topLevel)
	if p.state.FlowPragma == pragmaUnknown && !p.g.isValidDirective(stmt) {
		p.state.FlowPragma = pragmaNone
	}
	return stmt
}

// parseExpressionStatement turns `declare ...`, `interface ...`, `type ...`
// and `opaque type ...` into declarations once their leading word was read
// as an identifier.
func (l *flowLayer) parseExpressionStatement(node, expr *ast.Node) *ast.Node {
	p := l.p
	if expr.Type == "Identifier" {
		if expr.Name == "declare" {
			if p.match(lexer.CLASS) || p.match(lexer.NAME) || p.match(lexer.FUNCTION) ||
				p.match(lexer.VAR) || p.match(lexer.EXPORT) {
				return l.flowParseDeclare(node, false)
			}
		} else if p.match(lexer.NAME) {
			switch expr.Name {
			case "interface":
				return l.flowParseInterface(node)
			case "type":
				return l.flowParseTypeAlias(node)
			case "opaque":
				return l.flowParseOpaqueType(node, false)
			}
		}
	}
	return l.grammar.parseExpressionStatement(node, expr)
}

func (l *flowLayer) parseVarHead(decl *ast.Node) {
	p := l.p
	l.grammar.parseVarHead(decl)
	if p.match(lexer.COLON) {
		decl.Id.TypeAnnotation = l.flowParseTypeAnnotation()
		p.finishNode(decl.Id, decl.Id.Type)
	}
}

// --- Functions ---

func (l *flowLayer) forwardNoArrowParamsConversionAt(node *ast.Node, parse func() *ast.Node) *ast.Node {
	p := l.p
	if !containsInt(p.state.NoArrowParamsConversionAt, node.Start) {
		return parse()
	}
	p.state.NoArrowParamsConversionAt = append(p.state.NoArrowParamsConversionAt, p.state.Start)
	result := parse()
	p.state.NoArrowParamsConversionAt = p.state.NoArrowParamsConversionAt[:len(p.state.NoArrowParamsConversionAt)-1]
	return result
}

func (l *flowLayer) parseFunctionBody(node *ast.Node, allowExpression bool) {
	if !allowExpression {
		l.grammar.parseFunctionBody(node, false)
		return
	}
	l.forwardNoArrowParamsConversionAt(node, func() *ast.Node {
		l.grammar.parseFunctionBody(node, true)
		return nil
	})
}

// parseFunctionBodyAndFinish reads the return type of a function that is
// not an arrow; parseArrow handles those.
func (l *flowLayer) parseFunctionBodyAndFinish(node *ast.Node, kind string, allowExpressionBody bool) *ast.Node {
	p := l.p
	if !allowExpressionBody && p.match(lexer.COLON) {
		typeNode := p.startNode()
		typ, predicate := l.flowParseTypeAndPredicateInitialiser()
		node.Predicate = predicate
		if typ != nil {
			typeNode.TypeAnnotation = typ
			node.ReturnType = p.finishNode(typeNode, "TypeAnnotation")
		}
	}
	return l.grammar.parseFunctionBodyAndFinish(node, kind, allowExpressionBody)
}

func (l *flowLayer) parseFunctionParams(node *ast.Node, allowModifiers bool) {
	p := l.p
	if node.Kind != "get" && node.Kind != "set" && p.isRelational("<") {
		node.TypeParameters = l.flowParseTypeParameterDeclaration(false)
	}
	l.grammar.parseFunctionParams(node, allowModifiers)
}

func (l *flowLayer) checkFunctionNameAndParams(node *ast.Node, isArrowFunction bool) {
	if isArrowFunction && containsInt(l.p.state.NoArrowParamsConversionAt, node.Start) {
		return
	}
	l.grammar.checkFunctionNameAndParams(node, isArrowFunction)
}

// --- Modules ---

func (l *flowLayer) shouldParseExportDeclaration() bool {
	p := l.p
	return p.isContextual("type") || p.isContextual("interface") || p.isContextual("opaque") ||
		l.grammar.shouldParseExportDeclaration()
}

func (l *flowLayer) isExportDefaultSpecifier() bool {
	p := l.p
	if p.match(lexer.NAME) {
		switch p.state.Value {
		case "type", "interface", "opaque":
			return false
		}
	}
	return l.grammar.isExportDefaultSpecifier()
}

// assertModuleNodeAllowed lets type-only imports and exports through in
// scripts.
func (l *flowLayer) assertModuleNodeAllowed(node *ast.Node) {
	switch {
	case node.Type == "ImportDeclaration" && hasTypeImportKind(node):
		return
	case (node.Type == "ExportNamedDeclaration" || node.Type == "ExportAllDeclaration") && node.ExportKind == "type":
		return
	}
	l.grammar.assertModuleNodeAllowed(node)
}

func (l *flowLayer) parseExport(node *ast.Node) *ast.Node {
	node = l.grammar.parseExport(node)
	if (node.Type == "ExportNamedDeclaration" || node.Type == "ExportAllDeclaration") && node.ExportKind == "" {
		node.ExportKind = "value"
	}
	return node
}

// parseExportDeclaration handles `export type`, `export opaque type` and
// `export interface`. `export type { a, b }` has no declaration.
func (l *flowLayer) parseExportDeclaration(node *ast.Node) *ast.Node {
	p := l.p
	switch {
	case p.isContextual("type"):
		node.ExportKind = "type"
		decl := p.startNode()
		p.next()
		if p.match(lexer.BRACE_L) {
			node.Specifiers = p.parseExportSpecifiers()
			p.parseExportFrom(node, false)
			return nil
		}
		return l.flowParseTypeAlias(decl)

	case p.isContextual("opaque"):
		node.ExportKind = "type"
		decl := p.startNode()
		p.next()
		return l.flowParseOpaqueType(decl, false)

	case p.isContextual("interface"):
		node.ExportKind = "type"
		decl := p.startNode()
		p.next()
		return l.flowParseInterface(decl)
	}
	return l.grammar.parseExportDeclaration(node)
}

func (l *flowLayer) shouldParseExportStar() bool {
	p := l.p
	return l.grammar.shouldParseExportStar() || (p.isContextual("type") && p.peek().Type == lexer.STAR)
}

func (l *flowLayer) parseExportStar(node *ast.Node) {
	if l.p.eatContextual("type") {
		node.ExportKind = "type"
	}
	l.grammar.parseExportStar(node)
}

func (l *flowLayer) parseExportNamespace(node *ast.Node) {
	if node.ExportKind == "type" {
		l.p.unexpected()
	}
	l.grammar.parseExportNamespace(node)
}

func (l *flowLayer) shouldParseDefaultImport(node *ast.Node) bool {
	if !hasTypeImportKind(node) {
		return l.grammar.shouldParseDefaultImport(node)
	}
	return isMaybeDefaultImport(l.p.state.Type, l.p.state.Value)
}

func (l *flowLayer) parseImportSpecifierLocal(node, specifier *ast.Node, kind, contextDescription string) {
	p := l.p
	if hasTypeImportKind(node) {
		specifier.Local = l.flowParseRestrictedIdentifier(true)
	} else {
		specifier.Local = p.parseIdentifier(false)
	}
	p.g.checkLVal(specifier.Local, true, nil, contextDescription)
	node.Specifiers = append(node.Specifiers, p.finishNode(specifier, kind))
}

// Syntax: import type ... | import typeof ...
func (l *flowLayer) parseImportSpecifiers(node *ast.Node) {
	p := l.p
	node.ImportKind = "value"

	kind := ""
	if p.match(lexer.TYPEOF) {
		kind = "typeof"
	} else if p.isContextual("type") {
		kind = "type"
	}
	if kind != "" {
		next := p.peek()
		if kind == "type" && next.Type == lexer.STAR {
			p.unexpectedAt(next.Start, "")
		}
		if isMaybeDefaultImport(next.Type, next.Value) || next.Type == lexer.BRACE_L || next.Type == lexer.STAR {
			p.next()
			node.ImportKind = kind
		}
	}
	l.grammar.parseImportSpecifiers(node)
}

// parseImportSpecifier also accepts `type` and `typeof` on a single named
// import.
func (l *flowLayer) parseImportSpecifier(node *ast.Node) {
	p := l.p
	specifier := p.startNode()
	firstIdentStart := p.state.Start
	firstIdent := p.parseIdentifier(true)

	specifierTypeKind := ""
	switch firstIdent.Name {
	case "type", "typeof":
		specifierTypeKind = firstIdent.Name
	}

	isBinding := false
	atName := func() bool { return p.match(lexer.NAME) || p.state.Type.IsKeyword() }
	switch {
	case p.isContextual("as") && !p.isLookaheadContextual("as"):
		asIdent := p.parseIdentifier(true)
		if specifierTypeKind != "" && !atName() {
			// import {type as}
			specifier.Imported = asIdent
			specifier.ImportKind = specifierTypeKind
			specifier.Local = asIdent.Clone()
		} else {
			// import {type as foo}
			specifier.Imported = firstIdent
			specifier.Local = p.parseIdentifier(false)
		}

	case specifierTypeKind != "" && atName():
		// import {type foo}
		specifier.Imported = p.parseIdentifier(true)
		specifier.ImportKind = specifierTypeKind
		if p.eatContextual("as") {
			specifier.Local = p.parseIdentifier(false)
		} else {
			isBinding = true
			specifier.Local = specifier.Imported.Clone()
		}

	default:
		isBinding = true
		specifier.Imported = firstIdent
		specifier.Local = firstIdent.Clone()
	}

	nodeIsTypeImport := hasTypeImportKind(node)
	specifierIsTypeImport := hasTypeImportKind(specifier)
	if nodeIsTypeImport && specifierIsTypeImport {
		p.raise(firstIdentStart, "The `type` and `typeof` keywords on named imports can only be used on regular "+
			"`import` statements. It cannot be used with `import type` or `import typeof` statements")
	}
	if nodeIsTypeImport || specifierIsTypeImport {
		l.checkReservedType(specifier.Local.Name, specifier.Local.Start)
	}
	if isBinding && !nodeIsTypeImport && !specifierIsTypeImport {
		p.g.checkReservedWord(specifier.Local.Name, specifier.Start, true, true)
	}

	p.g.checkLVal(specifier.Local, true, nil, "import specifier")
	node.Specifiers = append(node.Specifiers, p.finishNode(specifier, "ImportSpecifier"))
}

// --- Classes ---

func (l *flowLayer) parseClassId(node *ast.Node, isStatement, optionalID bool) {
	l.grammar.parseClassId(node, isStatement, optionalID)
	if l.p.isRelational("<") {
		node.TypeParameters = l.flowParseTypeParameterDeclaration(true)
	}
}

// Syntax: extends Super<T> implements A<T>, B
func (l *flowLayer) parseClassSuper(node *ast.Node) {
	p := l.p
	l.grammar.parseClassSuper(node)
	if node.SuperClass != nil && p.isRelational("<") {
		node.SuperTypeParameters = l.flowParseTypeParameterInstantiation()
	}
	if !p.eatContextual("implements") {
		return
	}
	node.Implements = []*ast.Node{}
	for {
		impl := p.startNode()
		impl.Id = l.flowParseRestrictedIdentifier(true)
		if p.isRelational("<") {
			impl.TypeParameters = l.flowParseTypeParameterInstantiation()
		}
		node.Implements = append(node.Implements, p.finishNode(impl, "ClassImplements"))
		if !p.eat(lexer.COMMA) {
			break
		}
	}
}

func (l *flowLayer) parseClassProperty(node *ast.Node) *ast.Node {
	if l.p.match(lexer.COLON) {
		node.TypeAnnotation = l.flowParseTypeAnnotation()
	}
	return l.grammar.parseClassProperty(node)
}

func (l *flowLayer) parseClassPrivateProperty(node *ast.Node) *ast.Node {
	if l.p.match(lexer.COLON) {
		node.TypeAnnotation = l.flowParseTypeAnnotation()
	}
	return l.grammar.parseClassPrivateProperty(node)
}

func (l *flowLayer) isClassMethod() bool {
	return l.p.isRelational("<") || l.grammar.isClassMethod()
}

func (l *flowLayer) isClassProperty() bool {
	return l.p.match(lexer.COLON) || l.grammar.isClassProperty()
}

func (l *flowLayer) isNonstaticConstructor(method *ast.Node) bool {
	return !l.p.match(lexer.COLON) && l.grammar.isNonstaticConstructor(method)
}

func (l *flowLayer) pushClassMethod(classBody, method *ast.Node, isGenerator, isAsync, isConstructor bool) {
	p := l.p
	if method.Variance != nil {
		p.unexpectedAt(method.Variance.Start, "")
	}
	if p.isRelational("<") {
		method.TypeParameters = l.flowParseTypeParameterDeclaration(false)
	}
	l.grammar.pushClassMethod(classBody, method, isGenerator, isAsync, isConstructor)
}

func (l *flowLayer) pushClassPrivateMethod(classBody, method *ast.Node, isGenerator, isAsync bool) {
	p := l.p
	if method.Variance != nil {
		p.unexpectedAt(method.Variance.Start, "")
	}
	if p.isRelational("<") {
		method.TypeParameters = l.flowParseTypeParameterDeclaration(true)
	}
	l.grammar.pushClassPrivateMethod(classBody, method, isGenerator, isAsync)
}

// --- Objects ---

func (l *flowLayer) parsePropertyName(prop *ast.Node) *ast.Node {
	variance := l.flowParseVariance()
	key := l.grammar.parsePropertyName(prop)
	prop.Variance = variance
	return key
}

func (l *flowLayer) parseObjPropValue(prop *ast.Node, start int, startLoc ast.Position, isGenerator, isAsync, isPattern bool, refShorthandDefaultPos *int, containsEsc bool) *ast.Node {
	p := l.p
	if prop.Variance != nil {
		p.unexpectedAt(prop.Variance.Start, "")
	}
	prop.Variance = nil

	var typeParameters *ast.Node
	if p.isRelational("<") {
		typeParameters = l.flowParseTypeParameterDeclaration(false)
		if !p.match(lexer.PAREN_L) {
			p.unexpected()
		}
	}

	node := l.grammar.parseObjPropValue(prop, start, startLoc, isGenerator, isAsync, isPattern, refShorthandDefaultPos, containsEsc)
	if typeParameters != nil {
		if node.Value != nil {
			node.Value.TypeParameters = typeParameters
		} else {
			node.TypeParameters = typeParameters
		}
	}
	return node
}

// --- Expressions ---

// parseMaybeAssign handles a leading `<`: JSX is tried first, then a
// generic arrow function. When both fail the JSX error wins.
func (l *flowLayer) parseMaybeAssign(noIn bool, refShorthandDefaultPos *int, afterLeftParse parenItemFunc, refNeedsArrowPos *int) *ast.Node {
	p := l.p
	var jsxErr *errors.SyntaxError
	if p.match(lexer.JSX_TAG_START) {
		node, err := p.tryParse(func() *ast.Node {
			return l.grammar.parseMaybeAssign(noIn, refShorthandDefaultPos, afterLeftParse, refNeedsArrowPos)
		})
		if err == nil {
			return node
		}
		// Drop the tag contexts pushed for the `<` so the type parameters
		// are tokenized as code.
		p.state.Context = p.state.Context[:len(p.state.Context)-2]
		jsxErr = err
	}

	if jsxErr == nil && !p.isRelational("<") {
		return l.grammar.parseMaybeAssign(noIn, refShorthandDefaultPos, afterLeftParse, refNeedsArrowPos)
	}

	var typeParameters *ast.Node
	arrow, err := p.tryParse(func() *ast.Node {
		typeParameters = l.flowParseTypeParameterDeclaration(true)
		expr := l.forwardNoArrowParamsConversionAt(typeParameters, func() *ast.Node {
			return l.grammar.parseMaybeAssign(noIn, refShorthandDefaultPos, afterLeftParse, refNeedsArrowPos)
		})
		expr.TypeParameters = typeParameters
		p.resetStartLocationFromNode(expr, typeParameters)
		return expr
	})
	switch {
	case err != nil && jsxErr != nil:
		panic(jsxErr)
	case err != nil:
		panic(err)
	case arrow.Type == "ArrowFunctionExpression":
		return arrow
	case jsxErr != nil:
		panic(jsxErr)
	}
	p.raise(typeParameters.Start, "Expected an arrow function after this type parameter declaration")
	return nil
}

// parseConditional resolves `a ? (b): c => d` style ambiguities where the
// consequent may contain arrow functions with return types.
func (l *flowLayer) parseConditional(expr *ast.Node, noIn bool, start int, startLoc ast.Position, refNeedsArrowPos *int) *ast.Node {
	p := l.p
	if !p.match(lexer.QUESTION) {
		return expr
	}

	// Inside parentheses this may be an optional parameter, `(x?: T) => x`.
	if refNeedsArrowPos != nil {
		node, err := p.tryParse(func() *ast.Node {
			return l.grammar.parseConditional(expr, noIn, start, startLoc, nil)
		})
		if err != nil {
			*refNeedsArrowPos = err.StartPos
			return expr
		}
		return node
	}

	p.expect(lexer.QUESTION)
	snap := p.state.clone()
	originalNoArrowAt := p.state.NoArrowAt
	node := p.startNodeAt(start, startLoc)

	consequent, failed := l.tryParseConditionalConsequent()
	valid, invalid := l.getArrowLikeExpressions(consequent, false)

	if failed || len(invalid) > 0 {
		noArrowAt := cloneInts(originalNoArrowAt)

		if len(invalid) > 0 {
			for _, arrow := range invalid {
				noArrowAt = append(noArrowAt, arrow.Start)
			}
			p.state = snap.clone()
			p.state.NoArrowAt = cloneInts(noArrowAt)
			consequent, failed = l.tryParseConditionalConsequent()
			valid, _ = l.getArrowLikeExpressions(consequent, false)
		}

		if failed && len(valid) > 1 {
			starts := make([]int, len(valid))
			for i, arrow := range valid {
				starts[i] = arrow.Start
			}
			p.raiseAmbiguity(snap.Start, ambiguousArrowsMsg, starts...)
		}

		if failed && len(valid) == 1 {
			p.state = snap.clone()
			p.state.NoArrowAt = append(cloneInts(noArrowAt), valid[0].Start)
			consequent, _ = l.tryParseConditionalConsequent()
		}

		l.getArrowLikeExpressions(consequent, true)
	}

	p.state.NoArrowAt = originalNoArrowAt
	p.expect(lexer.COLON)

	node.Test = expr
	node.Consequent = consequent
	node.Alternate = l.forwardNoArrowParamsConversionAt(node, func() *ast.Node {
		return p.g.parseMaybeAssign(noIn, nil, nil, nil)
	})
	return p.finishNode(node, "ConditionalExpression")
}

func (l *flowLayer) tryParseConditionalConsequent() (consequent *ast.Node, failed bool) {
	p := l.p
	p.state.NoArrowParamsConversionAt = append(p.state.NoArrowParamsConversionAt, p.state.Start)
	consequent = p.g.parseMaybeAssign(false, nil, nil, nil)
	failed = !p.match(lexer.COLON)
	p.state.NoArrowParamsConversionAt = p.state.NoArrowParamsConversionAt[:len(p.state.NoArrowParamsConversionAt)-1]
	return consequent, failed
}

// getArrowLikeExpressions walks the arrow functions with expression bodies
// and the conditionals inside node. Arrows that cannot be anything else are
// checked right away; the ones with a return type that might instead be a
// parenthesized expression are split by whether their parameters convert
// to patterns. With disallowInvalid every such arrow is converted.
func (l *flowLayer) getArrowLikeExpressions(node *ast.Node, disallowInvalid bool) (valid, invalid []*ast.Node) {
	p := l.p
	stack := []*ast.Node{node}
	var arrows []*ast.Node

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil {
			continue
		}
		switch n.Type {
		case "ArrowFunctionExpression":
			if n.TypeParameters != nil || n.ReturnType == nil {
				l.finishArrowParams(n)
			} else {
				arrows = append(arrows, n)
			}
			stack = append(stack, n.Body)
		case "ConditionalExpression":
			stack = append(stack, n.Consequent, n.Alternate)
		}
	}

	if disallowInvalid {
		for _, arrow := range arrows {
			l.finishArrowParams(arrow)
		}
		return arrows, nil
	}

	for _, arrow := range arrows {
		arrow := arrow
		if p.succeeds(func() { p.g.toAssignableList(arrow.Params, true, "arrow function parameters") }) {
			valid = append(valid, arrow)
		} else {
			invalid = append(invalid, arrow)
		}
	}
	return valid, invalid
}

// finishArrowParams does the parameter conversion and checks that were
// deferred while the arrow was parsed inside a conditional.
func (l *flowLayer) finishArrowParams(arrow *ast.Node) {
	arrow.Params = l.p.g.toAssignableList(arrow.Params, true, "arrow function parameters")
	l.grammar.checkFunctionNameAndParams(arrow, true)
}

// parseParenItem reads `x?` and `x: T` inside parentheses.
func (l *flowLayer) parseParenItem(node *ast.Node, start int, startLoc ast.Position) *ast.Node {
	p := l.p
	node = l.grammar.parseParenItem(node, start, startLoc)
	if p.eat(lexer.QUESTION) {
		node.Optional = true
	}
	if p.match(lexer.COLON) {
		typeCast := p.startNodeAt(start, startLoc)
		typeCast.Expression = node
		typeCast.TypeAnnotation = l.flowParseTypeAnnotation()
		return p.finishNode(typeCast, "TypeCastExpression")
	}
	return node
}

func (l *flowLayer) parseExprListItem(allowEmpty bool, refShorthandDefaultPos, refNeedsArrowPos *int) *ast.Node {
	p := l.p
	container := p.startNode()
	node := l.grammar.parseExprListItem(allowEmpty, refShorthandDefaultPos, refNeedsArrowPos)
	if p.match(lexer.COLON) {
		container.Expression = node
		container.TypeAnnotation = l.flowParseTypeAnnotation()
		// Only valid if the list becomes arrow parameters.
		container.SetExtra("exprListItem", true)
		return p.finishNode(container, "TypeCastExpression")
	}
	return node
}

// parseArrow reads the return type of an arrow function. When what
// follows the colon is not a type and an arrow, the colon belongs to
// something else and nothing is consumed.
func (l *flowLayer) parseArrow(node *ast.Node) *ast.Node {
	p := l.p
	if p.match(lexer.COLON) {
		p.tryParse(func() *ast.Node {
			old := p.state.NoAnonFunctionType
			p.state.NoAnonFunctionType = true
			typeNode := p.startNode()
			typ, predicate := l.flowParseTypeAndPredicateInitialiser()
			p.state.NoAnonFunctionType = old

			if p.canInsertSemicolon() || !p.match(lexer.ARROW) {
				p.unexpected()
			}
			node.Predicate = predicate
			if typ != nil {
				typeNode.TypeAnnotation = typ
				node.ReturnType = p.finishNode(typeNode, "TypeAnnotation")
			}
			return nil
		})
	}
	return l.grammar.parseArrow(node)
}

func (l *flowLayer) shouldParseArrow() bool {
	return l.p.match(lexer.COLON) || l.grammar.shouldParseArrow()
}

func (l *flowLayer) setArrowFunctionParameters(node *ast.Node, params []*ast.Node) {
	if containsInt(l.p.state.NoArrowParamsConversionAt, node.Start) {
		node.Params = params
		return
	}
	l.grammar.setArrowFunctionParameters(node, params)
}

func (l *flowLayer) parseParenAndDistinguishExpression(canBeArrow bool) *ast.Node {
	p := l.p
	return l.grammar.parseParenAndDistinguishExpression(canBeArrow && !containsInt(p.state.NoArrowAt, p.state.Start))
}

func (l *flowLayer) shouldParseAsyncArrow() bool {
	return l.p.match(lexer.COLON) || l.grammar.shouldParseAsyncArrow()
}

func (l *flowLayer) parseAsyncArrowFromCallExpression(node, call *ast.Node) *ast.Node {
	p := l.p
	if p.match(lexer.COLON) {
		old := p.state.NoAnonFunctionType
		p.state.NoAnonFunctionType = true
		node.ReturnType = l.flowParseTypeAnnotation()
		p.state.NoAnonFunctionType = old
	}
	return l.grammar.parseAsyncArrowFromCallExpression(node, call)
}

// parseSubscripts handles `async` calls that must not become arrows and
// `async <T>(x) => y`.
func (l *flowLayer) parseSubscripts(base *ast.Node, start int, startLoc ast.Position, noCalls bool) *ast.Node {
	p := l.p
	isAsync := base.Type == "Identifier" && base.Name == "async"

	switch {
	case isAsync && containsInt(p.state.NoArrowAt, start):
		p.next()
		node := p.startNodeAt(start, startLoc)
		node.Callee = base
		node.Arguments = p.parseCallExpressionArguments(lexer.PAREN_R, false)
		base = p.finishNode(node, "CallExpression")

	case isAsync && p.isRelational("<"):
		arrow, arrowErr := p.tryParseIf(func() *ast.Node {
			return l.parseAsyncArrowWithTypeParameters(start, startLoc)
		}, func(n *ast.Node) bool { return n != nil })
		if arrow != nil {
			return arrow
		}
		node, err := p.tryParse(func() *ast.Node {
			return l.grammar.parseSubscripts(base, start, startLoc, noCalls)
		})
		if err != nil {
			if arrowErr != nil {
				panic(arrowErr)
			}
			panic(err)
		}
		return node
	}
	return l.grammar.parseSubscripts(base, start, startLoc, noCalls)
}

func (l *flowLayer) parseAsyncArrowWithTypeParameters(start int, startLoc ast.Position) *ast.Node {
	p := l.p
	node := p.startNodeAt(start, startLoc)
	p.g.parseFunctionParams(node, false)
	if p.g.parseArrow(node) == nil {
		return nil
	}
	return p.parseArrowExpression(node, nil, true)
}

// parseSubscript reads explicit type arguments on calls: `f<T>(x)` and
// `f?.<T>(x)`.
func (l *flowLayer) parseSubscript(base *ast.Node, start int, startLoc ast.Position, noCalls bool, st *subscriptState) *ast.Node {
	p := l.p
	if p.match(lexer.QUESTION_DOT) {
		if next := p.peek(); next.Type == lexer.RELATIONAL && next.Value == "<" {
			st.optionalChainMember = true
			if noCalls {
				st.stop = true
				return base
			}
			p.next()
			node := p.startNodeAt(start, startLoc)
			node.Callee = base
			node.TypeArguments = l.flowParseTypeParameterInstantiation()
			p.expect(lexer.PAREN_L)
			node.Arguments = p.parseCallExpressionArguments(lexer.PAREN_R, false)
			node.Optional = true
			return p.finishNode(node, "OptionalCallExpression")
		}
	}

	if !noCalls && l.shouldParseTypes() && p.isRelational("<") {
		call, err := p.tryParse(func() *ast.Node {
			node := p.startNodeAt(start, startLoc)
			node.Callee = base
			node.TypeArguments = l.flowParseTypeParameterInstantiation()
			p.expect(lexer.PAREN_L)
			node.Arguments = p.parseCallExpressionArguments(lexer.PAREN_R, false)
			if st.optionalChainMember {
				node.Optional = false
				return p.finishNode(node, "OptionalCallExpression")
			}
			return p.finishNode(node, "CallExpression")
		})
		if err == nil {
			return call
		}
	}
	return l.grammar.parseSubscript(base, start, startLoc, noCalls, st)
}

func (l *flowLayer) parseNewArguments(node *ast.Node) {
	p := l.p
	if l.shouldParseTypes() && p.isRelational("<") {
		node.TypeArguments, _ = p.tryParse(l.flowParseTypeParameterInstantiation)
	}
	l.grammar.parseNewArguments(node)
}

// --- Patterns ---

func (l *flowLayer) toAssignable(node *ast.Node, isBinding bool, contextDescription string) *ast.Node {
	if node != nil && node.Type == "TypeCastExpression" {
		return l.grammar.toAssignable(l.typeCastToParameter(node), isBinding, contextDescription)
	}
	return l.grammar.toAssignable(node, isBinding, contextDescription)
}

// toAssignableList turns type casts in a parameter head into annotated
// parameters.
func (l *flowLayer) toAssignableList(exprList []*ast.Node, isBinding bool, contextDescription string) []*ast.Node {
	for i, expr := range exprList {
		if expr != nil && expr.Type == "TypeCastExpression" {
			exprList[i] = l.typeCastToParameter(expr)
		}
	}
	return l.grammar.toAssignableList(exprList, isBinding, contextDescription)
}

// toReferencedList rejects list item type casts in lists that stayed
// expressions.
func (l *flowLayer) toReferencedList(exprList []*ast.Node, isParenthesizedExpr bool) []*ast.Node {
	for _, expr := range exprList {
		if expr != nil && expr.Type == "TypeCastExpression" && expr.ExtraBool("exprListItem") {
			l.p.raise(expr.Start, "Unexpected type cast")
		}
	}
	return l.grammar.toReferencedList(exprList, isParenthesizedExpr)
}

func (l *flowLayer) checkLVal(expr *ast.Node, isBinding bool, checkClashes map[string]bool, contextDescription string) {
	if expr.Type == "TypeCastExpression" {
		return
	}
	l.grammar.checkLVal(expr, isBinding, checkClashes, contextDescription)
}

// Syntax: param?: Type
func (l *flowLayer) parseAssignableListItemTypes(param *ast.Node) *ast.Node {
	p := l.p
	if p.eat(lexer.QUESTION) {
		if param.Type != "Identifier" {
			p.raise(param.Start, "A binding pattern parameter cannot be optional in an implementation signature.")
		}
		param.Optional = true
	}
	if p.match(lexer.COLON) {
		param.TypeAnnotation = l.flowParseTypeAnnotation()
	}
	p.finishNode(param, param.Type)
	return l.grammar.parseAssignableListItemTypes(param)
}

func (l *flowLayer) parseMaybeDefault(start int, startLoc ast.Position, left *ast.Node) *ast.Node {
	node := l.grammar.parseMaybeDefault(start, startLoc, left)
	if node.Type == "AssignmentPattern" && node.TypeAnnotation != nil && node.Right.Start < node.TypeAnnotation.Start {
		l.p.raise(node.TypeAnnotation.Start, "Type annotations must come before default assignments, "+
			"e.g. instead of `age = 25: number` use `age: number = 25`")
	}
	return node
}
