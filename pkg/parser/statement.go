package parser

import (
	"github.com/nooga/esparse/pkg/ast"
	"github.com/nooga/esparse/pkg/lexer"
)

var (
	loopLabel   = label{Kind: "loop"}
	switchLabel = label{Kind: "switch"}
)

// --- Statements ---

func (p *Parser) parseStatement(declaration, topLevel bool) *ast.Node {
	p.enter()
	defer p.leave()
	if p.match(lexer.AT) {
		p.parseDecorators(true)
	}
	return p.g.parseStatementContent(declaration, topLevel)
}

func (p *Parser) parseStatementContent(declaration, topLevel bool) *ast.Node {
	starttype := p.state.Type
	node := p.startNode()

	switch starttype {
	case lexer.BREAK, lexer.CONTINUE:
		return p.parseBreakContinueStatement(node, starttype == lexer.BREAK)
	case lexer.DEBUGGER:
		return p.parseDebuggerStatement(node)
	case lexer.DO:
		return p.parseDoStatement(node)
	case lexer.FOR:
		return p.parseForStatement(node)
	case lexer.FUNCTION:
		if p.peek().Type == lexer.DOT {
			break
		}
		if !declaration {
			p.unexpected()
		}
		return p.parseFunctionStatement(node)
	case lexer.CLASS:
		if !declaration {
			p.unexpected()
		}
		return p.parseClass(node, true, false)
	case lexer.IF:
		return p.parseIfStatement(node)
	case lexer.RETURN:
		return p.parseReturnStatement(node)
	case lexer.SWITCH:
		return p.parseSwitchStatement(node)
	case lexer.THROW:
		return p.parseThrowStatement(node)
	case lexer.TRY:
		return p.parseTryStatement(node)
	case lexer.CONST:
		if !declaration {
			p.unexpected()
		}
		return p.parseVarStatement(node, "const")
	case lexer.VAR:
		return p.parseVarStatement(node, "var")
	case lexer.WHILE:
		return p.parseWhileStatement(node)
	case lexer.WITH:
		return p.parseWithStatement(node)
	case lexer.BRACE_L:
		return p.parseBlock(false)
	case lexer.SEMI:
		return p.parseEmptyStatement(node)
	case lexer.EXPORT, lexer.IMPORT:
		next := p.peek()
		if next.Type == lexer.PAREN_L || next.Type == lexer.DOT {
			break
		}
		if !p.opts.AllowImportExportEverywhere && !topLevel {
			p.raise(p.state.Start, "'import' and 'export' may only appear at the top level")
		}
		p.next()
		var result *ast.Node
		if starttype == lexer.IMPORT {
			result = p.g.parseImport(node)
			if result.Type == "ImportDeclaration" && (result.ImportKind == "" || result.ImportKind == "value") {
				p.sawUnambiguousESM = true
			}
		} else {
			result = p.g.parseExport(node)
			switch result.Type {
			case "ExportNamedDeclaration", "ExportAllDeclaration":
				if result.ExportKind == "" || result.ExportKind == "value" {
					p.sawUnambiguousESM = true
				}
			case "ExportDefaultDeclaration":
				p.sawUnambiguousESM = true
			}
		}
		p.g.assertModuleNodeAllowed(node)
		return result
	case lexer.NAME:
		if p.isLet() {
			if !declaration {
				p.raise(p.state.Start, "Lexical declaration cannot appear in a single-statement context")
			}
			return p.parseVarStatement(node, "let")
		}
		if p.isContextual("async") {
			next := p.peek()
			if next.Type == lexer.FUNCTION && !p.tok.HasLineBreak(p.state.End, next.Start) {
				p.next()
				p.expect(lexer.FUNCTION)
				return p.parseFunction(node, true, false, true, false)
			}
		}
	}

	maybeName := p.state.Value
	expr := p.parseExpression(false, nil)
	if starttype == lexer.NAME && expr.Type == "Identifier" && p.eat(lexer.COLON) {
		return p.parseLabeledStatement(node, maybeName, expr)
	}
	return p.g.parseExpressionStatement(node, expr)
}

// isLet reports whether a `let` starts a lexical declaration here.
func (p *Parser) isLet() bool {
	if !p.isContextual("let") {
		return false
	}
	switch p.peek().Type {
	case lexer.NAME, lexer.BRACKET_L, lexer.BRACE_L:
		return true
	}
	return false
}

func (p *Parser) assertModuleNodeAllowed(node *ast.Node) {
	if !p.opts.AllowImportExportEverywhere && !p.inModule {
		p.raise(node.Start, `'import' and 'export' may appear only with 'sourceType: "module"'`)
	}
}

// --- Decorators ---

func (p *Parser) takeDecorators(node *ast.Node) {
	top := len(p.state.DecoratorStack) - 1
	current := p.state.DecoratorStack[top]
	if len(current) > 0 {
		node.Decorators = current
		p.resetStartLocationFromNode(node, current[0])
		p.state.DecoratorStack[top] = []*ast.Node{}
	}
}

func (p *Parser) parseDecorators(allowExport bool) {
	top := len(p.state.DecoratorStack) - 1
	for p.match(lexer.AT) {
		d := p.parseDecorator()
		p.state.DecoratorStack[top] = append(p.state.DecoratorStack[top], d)
	}
	if p.match(lexer.EXPORT) {
		if !allowExport {
			p.unexpected()
		}
		if p.hasPlugin("decorators") && !p.pluginFlag("decorators", "decoratorsBeforeExport") {
			p.raise(p.state.Start, "Using the export keyword between a decorator and a class is not allowed. Please use `export @dec class` instead.")
		}
		return
	}
	if !p.g.canHaveLeadingDecorator() {
		p.raise(p.state.Start, "Leading decorators must be attached to a class declaration")
	}
}

func (p *Parser) canHaveLeadingDecorator() bool {
	return p.match(lexer.CLASS)
}

func (p *Parser) parseDecorator() *ast.Node {
	p.expectOnePlugin("decorators-legacy", "decorators")
	node := p.startNode()
	p.next()

	if !p.hasPlugin("decorators") {
		node.Expression = p.parseAssignExpr()
		return p.finishNode(node, "Decorator")
	}

	p.state.DecoratorStack = append(p.state.DecoratorStack, []*ast.Node{})
	start, startLoc := p.state.Start, p.state.StartLoc
	var expr *ast.Node
	if p.eat(lexer.PAREN_L) {
		expr = p.parseExpression(false, nil)
		p.expect(lexer.PAREN_R)
	} else {
		expr = p.parseIdentifier(false)
		for p.eat(lexer.DOT) {
			member := p.startNodeAt(start, startLoc)
			member.Object = expr
			member.Property = p.parseIdentifier(true)
			expr = p.finishNode(member, "MemberExpression")
		}
	}
	node.Expression = p.parseMaybeDecoratorArguments(expr)
	p.state.DecoratorStack = p.state.DecoratorStack[:len(p.state.DecoratorStack)-1]
	return p.finishNode(node, "Decorator")
}

func (p *Parser) parseMaybeDecoratorArguments(expr *ast.Node) *ast.Node {
	if p.eat(lexer.PAREN_L) {
		node := p.startNodeAtNode(expr)
		node.Callee = expr
		node.Arguments = p.parseCallExpressionArguments(lexer.PAREN_R, false)
		p.g.toReferencedList(node.Arguments, false)
		return p.finishNode(node, "CallExpression")
	}
	return expr
}

// --- Simple statements ---

func (p *Parser) parseBreakContinueStatement(node *ast.Node, isBreak bool) *ast.Node {
	keyword := "continue"
	if isBreak {
		keyword = "break"
	}
	p.next()
	if !p.isLineTerminator() {
		if !p.match(lexer.NAME) {
			p.unexpected()
		}
		node.Label = p.parseIdentifier(false)
		p.semicolon()
	}

	i := 0
	for ; i < len(p.state.Labels); i++ {
		lab := p.state.Labels[i]
		if node.Label == nil || lab.Name == node.Label.Name {
			if lab.Kind != "" && (isBreak || lab.Kind == "loop") {
				break
			}
			if node.Label != nil && isBreak {
				break
			}
		}
	}
	if i == len(p.state.Labels) {
		p.raise(node.Start, "Unsyntactic %s", keyword)
	}
	if isBreak {
		return p.finishNode(node, "BreakStatement")
	}
	return p.finishNode(node, "ContinueStatement")
}

func (p *Parser) parseDebuggerStatement(node *ast.Node) *ast.Node {
	p.next()
	p.semicolon()
	return p.finishNode(node, "DebuggerStatement")
}

func (p *Parser) parseDoStatement(node *ast.Node) *ast.Node {
	p.next()
	p.state.Labels = append(p.state.Labels, loopLabel)
	node.Body = p.g.parseStatement(false, false)
	p.state.Labels = p.state.Labels[:len(p.state.Labels)-1]
	p.expect(lexer.WHILE)
	node.Test = p.parseParenExpression()
	p.eat(lexer.SEMI)
	return p.finishNode(node, "DoWhileStatement")
}

func (p *Parser) parseForStatement(node *ast.Node) *ast.Node {
	p.next()
	p.state.Labels = append(p.state.Labels, loopLabel)

	forAwait := false
	if p.state.InAsync && p.isContextual("await") {
		forAwait = true
		p.next()
	}
	p.expect(lexer.PAREN_L)

	if p.match(lexer.SEMI) {
		if forAwait {
			p.unexpected()
		}
		return p.parseFor(node, nil)
	}

	if p.match(lexer.VAR) || p.match(lexer.CONST) || p.isLet() {
		init := p.startNode()
		kind := p.state.Value
		p.next()
		p.parseVar(init, true, kind)
		p.finishNode(init, "VariableDeclaration")
		if (p.match(lexer.IN) || p.isContextual("of")) && len(init.Declarations) == 1 && init.Declarations[0].Init == nil {
			return p.parseForIn(node, init, forAwait)
		}
		if forAwait {
			p.unexpected()
		}
		return p.parseFor(node, init)
	}

	refShorthandDefaultPos := 0
	init := p.parseExpression(true, &refShorthandDefaultPos)
	if p.match(lexer.IN) || p.isContextual("of") {
		description := "for-in statement"
		if p.isContextual("of") {
			description = "for-of statement"
		}
		p.g.toAssignable(init, false, description)
		p.g.checkLVal(init, false, nil, description)
		return p.parseForIn(node, init, forAwait)
	}
	if refShorthandDefaultPos != 0 {
		p.unexpectedAt(refShorthandDefaultPos, "")
	}
	if forAwait {
		p.unexpected()
	}
	return p.parseFor(node, init)
}

func (p *Parser) parseFor(node, init *ast.Node) *ast.Node {
	node.Init = init
	p.expect(lexer.SEMI)
	if !p.match(lexer.SEMI) {
		node.Test = p.parseExpression(false, nil)
	}
	p.expect(lexer.SEMI)
	if !p.match(lexer.PAREN_R) {
		node.Update = p.parseExpression(false, nil)
	}
	p.expect(lexer.PAREN_R)
	node.Body = p.g.parseStatement(false, false)
	p.state.Labels = p.state.Labels[:len(p.state.Labels)-1]
	return p.finishNode(node, "ForStatement")
}

func (p *Parser) parseForIn(node, init *ast.Node, forAwait bool) *ast.Node {
	kind := "ForOfStatement"
	if p.match(lexer.IN) {
		kind = "ForInStatement"
	}
	if forAwait {
		p.expectContextual("of")
	} else {
		p.next()
	}
	if kind == "ForOfStatement" {
		node.Await = forAwait
	}
	node.Left = init
	if kind == "ForOfStatement" {
		node.Right = p.parseAssignExpr()
	} else {
		node.Right = p.parseExpression(false, nil)
	}
	p.expect(lexer.PAREN_R)
	node.Body = p.g.parseStatement(false, false)
	p.state.Labels = p.state.Labels[:len(p.state.Labels)-1]
	return p.finishNode(node, kind)
}

func (p *Parser) parseFunctionStatement(node *ast.Node) *ast.Node {
	p.next()
	return p.parseFunction(node, true, false, false, false)
}

func (p *Parser) parseIfStatement(node *ast.Node) *ast.Node {
	p.next()
	node.Test = p.parseParenExpression()
	node.Consequent = p.g.parseStatement(false, false)
	if p.eat(lexer.ELSE) {
		node.Alternate = p.g.parseStatement(false, false)
	}
	return p.finishNode(node, "IfStatement")
}

func (p *Parser) parseReturnStatement(node *ast.Node) *ast.Node {
	if !p.state.InFunction && !p.opts.AllowReturnOutsideFunction {
		p.raise(p.state.Start, "'return' outside of function")
	}
	p.next()
	if !p.isLineTerminator() {
		node.Argument = p.parseExpression(false, nil)
		p.semicolon()
	}
	return p.finishNode(node, "ReturnStatement")
}

func (p *Parser) parseSwitchStatement(node *ast.Node) *ast.Node {
	p.next()
	node.Discriminant = p.parseParenExpression()
	node.Cases = []*ast.Node{}
	p.expect(lexer.BRACE_L)
	p.state.Labels = append(p.state.Labels, switchLabel)

	var cur *ast.Node
	sawDefault := false
	for !p.match(lexer.BRACE_R) {
		if p.match(lexer.CASE) || p.match(lexer.DEFAULT) {
			isCase := p.match(lexer.CASE)
			if cur != nil {
				p.finishNode(cur, "SwitchCase")
			}
			cur = p.startNode()
			cur.ConsequentList = []*ast.Node{}
			node.Cases = append(node.Cases, cur)
			p.next()
			if isCase {
				cur.Test = p.parseExpression(false, nil)
			} else {
				if sawDefault {
					p.raise(p.state.LastTokStart, "Multiple default clauses")
				}
				sawDefault = true
			}
			p.expect(lexer.COLON)
		} else {
			if cur == nil {
				p.unexpected()
			}
			cur.ConsequentList = append(cur.ConsequentList, p.g.parseStatement(true, false))
		}
	}
	if cur != nil {
		p.finishNode(cur, "SwitchCase")
	}
	p.next()
	p.state.Labels = p.state.Labels[:len(p.state.Labels)-1]
	return p.finishNode(node, "SwitchStatement")
}

func (p *Parser) parseThrowStatement(node *ast.Node) *ast.Node {
	p.next()
	if p.hasPrecedingLineBreak() {
		p.raise(p.state.LastTokEnd, "Illegal newline after throw")
	}
	node.Argument = p.parseExpression(false, nil)
	p.semicolon()
	return p.finishNode(node, "ThrowStatement")
}

func (p *Parser) parseTryStatement(node *ast.Node) *ast.Node {
	p.next()
	node.Block = p.parseBlock(false)
	if p.match(lexer.CATCH) {
		clause := p.startNode()
		p.next()
		if p.eat(lexer.PAREN_L) {
			clause.Param = p.g.parseBindingAtom()
			p.g.checkLVal(clause.Param, true, map[string]bool{}, "catch clause")
			p.expect(lexer.PAREN_R)
		}
		clause.Body = p.parseBlock(false)
		node.Handler = p.finishNode(clause, "CatchClause")
	}
	if p.eat(lexer.FINALLY) {
		node.Finalizer = p.parseBlock(false)
	}
	if node.Handler == nil && node.Finalizer == nil {
		p.raise(node.Start, "Missing catch or finally clause")
	}
	return p.finishNode(node, "TryStatement")
}

func (p *Parser) parseVarStatement(node *ast.Node, kind string) *ast.Node {
	p.next()
	p.parseVar(node, false, kind)
	p.semicolon()
	return p.finishNode(node, "VariableDeclaration")
}

func (p *Parser) parseWhileStatement(node *ast.Node) *ast.Node {
	p.next()
	node.Test = p.parseParenExpression()
	p.state.Labels = append(p.state.Labels, loopLabel)
	node.Body = p.g.parseStatement(false, false)
	p.state.Labels = p.state.Labels[:len(p.state.Labels)-1]
	return p.finishNode(node, "WhileStatement")
}

func (p *Parser) parseWithStatement(node *ast.Node) *ast.Node {
	if p.state.Strict {
		p.raise(p.state.Start, "'with' in strict mode")
	}
	p.next()
	node.Object = p.parseParenExpression()
	node.Body = p.g.parseStatement(false, false)
	return p.finishNode(node, "WithStatement")
}

func (p *Parser) parseEmptyStatement(node *ast.Node) *ast.Node {
	p.next()
	return p.finishNode(node, "EmptyStatement")
}

func (p *Parser) parseLabeledStatement(node *ast.Node, maybeName string, expr *ast.Node) *ast.Node {
	for _, l := range p.state.Labels {
		if l.Name == maybeName {
			p.raise(expr.Start, "Label '%s' is already declared", maybeName)
		}
	}
	kind := ""
	if p.state.Type.IsLoop() {
		kind = "loop"
	} else if p.match(lexer.SWITCH) {
		kind = "switch"
	}
	for i := len(p.state.Labels) - 1; i >= 0; i-- {
		l := &p.state.Labels[i]
		if l.StatementStart != node.Start {
			break
		}
		l.StatementStart = p.state.Start
		l.Kind = kind
	}
	p.state.Labels = append(p.state.Labels, label{Name: maybeName, Kind: kind, StatementStart: p.state.Start})
	node.Body = p.g.parseStatement(true, false)

	body := node.Body
	if body.Type == "ClassDeclaration" ||
		(body.Type == "VariableDeclaration" && body.Kind != "var") ||
		(body.Type == "FunctionDeclaration" && (p.state.Strict || body.Generator || body.Async)) {
		p.raise(body.Start, "Invalid labeled declaration")
	}
	p.state.Labels = p.state.Labels[:len(p.state.Labels)-1]
	node.Label = expr
	return p.finishNode(node, "LabeledStatement")
}

func (p *Parser) parseExpressionStatement(node, expr *ast.Node) *ast.Node {
	node.Expression = expr
	p.semicolon()
	return p.finishNode(node, "ExpressionStatement")
}

// --- Blocks and directives ---

func (p *Parser) parseBlock(allowDirectives bool) *ast.Node {
	node := p.startNode()
	p.expect(lexer.BRACE_L)
	p.g.parseBlockBody(node, allowDirectives, false, lexer.BRACE_R)
	return p.finishNode(node, "BlockStatement")
}

func (p *Parser) parseBlockBody(node *ast.Node, allowDirectives, topLevel bool, end lexer.TokenType) {
	node.BodyList = []*ast.Node{}
	node.Directives = []*ast.Node{}
	node.BodyList, node.Directives = p.parseBlockOrModuleBlockBody(allowDirectives, topLevel, end)
}

// parseBlockOrModuleBlockBody reads statements up to end. Leading string
// literal statements become directives when allowDirectives is set; a
// "use strict" directive switches strict mode on for the rest of the block.
func (p *Parser) parseBlockOrModuleBlockBody(allowDirectives, topLevel bool, end lexer.TokenType) (body, directives []*ast.Node) {
	body = []*ast.Node{}
	directives = []*ast.Node{}
	parsedNonDirective := false
	strictSet := false
	oldStrict := p.state.Strict
	octalPosition := -1

	for !p.eat(end) {
		if !parsedNonDirective && p.state.ContainsOctal && octalPosition < 0 {
			octalPosition = p.state.OctalPosition
		}
		stmt := p.g.parseStatement(true, topLevel)

		if allowDirectives && !parsedNonDirective && p.g.isValidDirective(stmt) {
			directive := p.g.stmtToDirective(stmt)
			directives = append(directives, directive)
			if !strictSet && directiveValue(directive) == "use strict" {
				strictSet = true
				p.setStrict(true)
				if octalPosition >= 0 {
					p.raise(octalPosition, "Octal literal in strict mode")
				}
			}
			continue
		}
		parsedNonDirective = true
		body = append(body, stmt)
	}
	if strictSet && !oldStrict {
		p.setStrict(false)
	}
	return body, directives
}

// directiveValue reads the text of a directive in either node shape.
func directiveValue(d *ast.Node) string {
	if d.Type == "Directive" && d.Value != nil {
		s, _ := d.Value.LitValue.(string)
		return s
	}
	return d.Directive
}

func (p *Parser) isValidDirective(stmt *ast.Node) bool {
	return stmt.Type == "ExpressionStatement" &&
		stmt.Expression.Type == "StringLiteral" &&
		!stmt.Expression.Parenthesized()
}

func (p *Parser) stmtToDirective(stmt *ast.Node) *ast.Node {
	expr := stmt.Expression
	lit := p.startNodeAt(expr.Start, expr.Loc.Start)
	directive := p.startNodeAt(stmt.Start, stmt.Loc.Start)
	raw := p.input[expr.Start:expr.End]
	val := raw[1 : len(raw)-1]
	lit.LitValue = val
	lit.SetExtra("raw", raw)
	lit.SetExtra("rawValue", val)
	directive.Value = p.finishNodeAt(lit, "DirectiveLiteral", expr.End, expr.Loc.End)
	return p.finishNodeAt(directive, "Directive", stmt.End, stmt.Loc.End)
}

// setStrict switches strict mode and re-reads a literal token that was
// already scanned under the old mode.
func (p *Parser) setStrict(strict bool) {
	p.state.Strict = strict
	if p.match(lexer.NUM) || p.match(lexer.STRING) {
		p.tok.Rescan()
	}
}

func (p *Parser) isStrictBody(node *ast.Node) bool {
	if node.Body == nil || node.Body.Type != "BlockStatement" {
		return false
	}
	for _, d := range node.Body.Directives {
		if directiveValue(d) == "use strict" {
			return true
		}
	}
	return false
}

func (p *Parser) parseParenExpression() *ast.Node {
	p.expect(lexer.PAREN_L)
	val := p.parseExpression(false, nil)
	p.expect(lexer.PAREN_R)
	return val
}

// --- Variable declarations ---

func (p *Parser) parseVar(node *ast.Node, isFor bool, kind string) *ast.Node {
	node.Declarations = []*ast.Node{}
	node.Kind = kind
	for {
		decl := p.startNode()
		p.g.parseVarHead(decl)
		if p.eat(lexer.EQ) {
			decl.Init = p.g.parseMaybeAssign(isFor, nil, nil, nil)
		} else {
			forIn := isFor && (p.match(lexer.IN) || p.isContextual("of"))
			if kind == "const" && !forIn {
				if !p.hasPlugin("typescript") {
					p.unexpected()
				}
			} else if decl.Id.Type != "Identifier" && !forIn {
				p.raise(p.state.LastTokEnd, "Complex binding patterns require an initialization value")
			}
		}
		node.Declarations = append(node.Declarations, p.finishNode(decl, "VariableDeclarator"))
		if !p.eat(lexer.COMMA) {
			break
		}
	}
	return node
}

func (p *Parser) parseVarHead(decl *ast.Node) {
	decl.Id = p.g.parseBindingAtom()
	p.g.checkLVal(decl.Id, true, nil, "variable declaration")
}

// --- Functions ---

// saveFunctionContext records the function context flags and returns a
// func that puts them back.
func (p *Parser) saveFunctionContext() func() {
	s := &p.state
	inFunction, inAsync, inGenerator := s.InFunction, s.InAsync, s.InGenerator
	inMethod, inClassProperty, inParameters := s.InMethod, s.InClassProperty, s.InParameters
	inArrowParams := s.InPossibleArrowParams
	labels := s.Labels
	return func() {
		s.InFunction, s.InAsync, s.InGenerator = inFunction, inAsync, inGenerator
		s.InMethod, s.InClassProperty, s.InParameters = inMethod, inClassProperty, inParameters
		s.InPossibleArrowParams = inArrowParams
		s.Labels = labels
	}
}

func (p *Parser) initFunction(node *ast.Node, isAsync bool) {
	node.Id = nil
	node.Generator = false
	node.Async = isAsync
}

// parseFunction parses a function declaration or expression after the
// `function` keyword.
func (p *Parser) parseFunction(node *ast.Node, isStatement, allowExpressionBody, isAsync, optionalID bool) *ast.Node {
	defer p.saveFunctionContext()()
	p.state.InFunction = true
	p.state.InMethod = ""
	p.state.InClassProperty = false

	p.initFunction(node, isAsync)
	if p.eat(lexer.STAR) {
		node.Generator = true
	}
	if isStatement && !optionalID && !p.match(lexer.NAME) {
		p.unexpected()
	}
	if !isStatement {
		p.state.InGenerator = node.Generator
	}
	if p.match(lexer.NAME) {
		node.Id = p.parseBindingIdentifier()
	}
	if isStatement {
		p.state.InGenerator = node.Generator
	}

	p.g.parseFunctionParams(node, false)
	kind := "FunctionExpression"
	if isStatement {
		kind = "FunctionDeclaration"
	}
	return p.g.parseFunctionBodyAndFinish(node, kind, allowExpressionBody)
}

func (p *Parser) parseFunctionParams(node *ast.Node, allowModifiers bool) {
	old := p.state.InParameters
	p.state.InParameters = true
	p.expect(lexer.PAREN_L)
	node.Params = p.parseBindingList(lexer.PAREN_R, false, allowModifiers)
	p.state.InParameters = old
}

func (p *Parser) parseFunctionBodyAndFinish(node *ast.Node, kind string, allowExpressionBody bool) *ast.Node {
	p.g.parseFunctionBody(node, allowExpressionBody)
	return p.finishNode(node, kind)
}

func (p *Parser) parseFunctionBody(node *ast.Node, allowExpression bool) {
	isExpression := allowExpression && !p.match(lexer.BRACE_L)
	restore := p.saveFunctionContext()
	p.state.InParameters = false
	p.state.InAsync = node.Async

	if isExpression {
		node.Body = p.parseAssignExpr()
	} else {
		p.state.InGenerator = node.Generator
		p.state.InFunction = true
		p.state.Labels = nil
		node.Body = p.parseBlock(true)
	}
	restore()

	old := p.state.InParameters
	p.g.checkFunctionNameAndParams(node, allowExpression)
	p.state.InParameters = old
}

func (p *Parser) checkFunctionNameAndParams(node *ast.Node, isArrowFunction bool) {
	isStrict := p.g.isStrictBody(node)
	checkLVal := p.state.Strict || isStrict || isArrowFunction
	oldStrict := p.state.Strict
	if isStrict {
		p.state.Strict = true
	}
	if checkLVal {
		nameHash := map[string]bool{}
		if node.Id != nil {
			p.g.checkLVal(node.Id, true, nil, "function name")
		}
		for _, param := range node.Params {
			if isStrict && param.Type != "Identifier" {
				p.raise(param.Start, "Non-simple parameter in strict mode")
			}
			p.g.checkLVal(param, true, nameHash, "function parameter list")
		}
	}
	p.state.Strict = oldStrict
}
