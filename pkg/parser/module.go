package parser

import (
	"github.com/nooga/esparse/pkg/ast"
	"github.com/nooga/esparse/pkg/lexer"
)

const decoratorsBeforeExportMsg = "Decorators must be placed *before* the 'export' keyword." +
	" You can set the 'decoratorsBeforeExport' option to false to use" +
	" the 'export @decorator class {}' syntax"

// --- Exports ---

// parseExport parses everything after the `export` keyword.
func (p *Parser) parseExport(node *ast.Node) *ast.Node {
	switch {
	case p.g.shouldParseExportStar():
		p.g.parseExportStar(node)
		if node.Type == "ExportAllDeclaration" {
			return node
		}

	case p.g.isExportDefaultSpecifier():
		p.expectPlugin("exportDefaultFrom")
		specifier := p.startNode()
		specifier.Exported = p.parseIdentifier(true)
		node.Specifiers = []*ast.Node{p.finishNode(specifier, "ExportDefaultSpecifier")}
		if p.match(lexer.COMMA) && p.peek().Type == lexer.STAR {
			p.expect(lexer.COMMA)
			ns := p.startNode()
			p.expect(lexer.STAR)
			p.expectContextual("as")
			ns.Exported = p.parseIdentifier(false)
			node.Specifiers = append(node.Specifiers, p.finishNode(ns, "ExportNamespaceSpecifier"))
		} else {
			p.parseExportSpecifiersMaybe(node)
		}
		p.parseExportFrom(node, true)

	case p.eat(lexer.DEFAULT):
		node.Declaration = p.g.parseExportDefaultExpression()
		p.checkExport(node, true, true)
		return p.finishNode(node, "ExportDefaultDeclaration")

	case p.g.shouldParseExportDeclaration():
		if p.isContextual("async") {
			next := p.peek()
			if next.Type != lexer.FUNCTION {
				p.unexpectedAt(next.Start, lexer.FUNCTION)
			}
		}
		node.Specifiers = []*ast.Node{}
		node.Declaration = p.g.parseExportDeclaration(node)

	default:
		node.Specifiers = p.parseExportSpecifiers()
		p.parseExportFrom(node, false)
	}
	p.checkExport(node, true, false)
	return p.finishNode(node, "ExportNamedDeclaration")
}

func (p *Parser) parseExportDefaultExpression() *ast.Node {
	expr := p.startNode()
	isAsync := p.isAsyncFunction()
	switch {
	case p.match(lexer.FUNCTION) || isAsync:
		if isAsync {
			p.next()
		}
		p.expect(lexer.FUNCTION)
		return p.parseFunction(expr, true, false, isAsync, true)
	case p.match(lexer.CLASS):
		return p.parseClass(expr, true, true)
	case p.match(lexer.AT):
		if p.hasPlugin("decorators") && p.pluginFlag("decorators", "decoratorsBeforeExport") {
			p.raise(p.state.Start, decoratorsBeforeExportMsg)
		}
		p.parseDecorators(false)
		return p.parseClass(expr, true, true)
	case p.match(lexer.CONST) || p.match(lexer.VAR) || p.isLet():
		p.raise(p.state.Start, "Only expressions, functions or classes are allowed as the `default` export.")
	}
	res := p.parseAssignExpr()
	p.semicolon()
	return res
}

func (p *Parser) parseExportDeclaration(node *ast.Node) *ast.Node {
	return p.g.parseStatement(true, false)
}

// isAsyncFunction reports `async function` without a line break between.
func (p *Parser) isAsyncFunction() bool {
	if !p.isContextual("async") {
		return false
	}
	next := p.peek()
	return next.Type == lexer.FUNCTION && !p.tok.HasLineBreak(p.state.End, next.Start)
}

func (p *Parser) isExportDefaultSpecifier() bool {
	if p.match(lexer.NAME) {
		return p.state.Value != "async" && p.state.Value != "let"
	}
	if !p.match(lexer.DEFAULT) {
		return false
	}
	next := p.peek()
	return next.Type == lexer.COMMA || (next.Type == lexer.NAME && next.Value == "from")
}

func (p *Parser) parseExportSpecifiersMaybe(node *ast.Node) {
	if p.eat(lexer.COMMA) {
		node.Specifiers = append(node.Specifiers, p.parseExportSpecifiers()...)
	}
}

func (p *Parser) parseExportFrom(node *ast.Node, expect bool) {
	if p.eatContextual("from") {
		node.Source = p.parseImportSource()
		p.checkExport(node, false, false)
	} else if expect {
		p.unexpected()
	}
	p.semicolon()
}

func (p *Parser) shouldParseExportStar() bool {
	return p.match(lexer.STAR)
}

func (p *Parser) parseExportStar(node *ast.Node) {
	p.expect(lexer.STAR)
	if p.isContextual("as") {
		p.g.parseExportNamespace(node)
		return
	}
	p.parseExportFrom(node, true)
	p.finishNode(node, "ExportAllDeclaration")
}

func (p *Parser) parseExportNamespace(node *ast.Node) {
	specifier := p.startNodeAt(p.state.LastTokStart, p.state.LastTokStartLoc)
	p.next()
	specifier.Exported = p.parseIdentifier(true)
	node.Specifiers = []*ast.Node{p.finishNode(specifier, "ExportNamespaceSpecifier")}
	p.parseExportSpecifiersMaybe(node)
	p.parseExportFrom(node, true)
}

func (p *Parser) shouldParseExportDeclaration() bool {
	if p.match(lexer.AT) {
		p.expectOnePlugin("decorators", "decorators-legacy")
		if p.hasPlugin("decorators") {
			if p.pluginFlag("decorators", "decoratorsBeforeExport") {
				p.raise(p.state.Start, decoratorsBeforeExportMsg)
			}
			return true
		}
	}
	switch p.state.Type {
	case lexer.VAR, lexer.CONST, lexer.FUNCTION, lexer.CLASS:
		return true
	}
	return p.isLet() || p.isAsyncFunction()
}

// checkExport records the exported names of node and moves pending
// decorators onto an exported class.
func (p *Parser) checkExport(node *ast.Node, checkNames, isDefault bool) {
	if checkNames {
		switch {
		case isDefault:
			p.g.checkDuplicateExports(node, "default")
		case len(node.Specifiers) > 0:
			for _, s := range node.Specifiers {
				p.g.checkDuplicateExports(s, s.Exported.Name)
			}
		case node.Declaration != nil:
			decl := node.Declaration
			switch decl.Type {
			case "FunctionDeclaration", "ClassDeclaration":
				if decl.Id != nil {
					p.g.checkDuplicateExports(node, decl.Id.Name)
				}
			case "VariableDeclaration":
				for _, d := range decl.Declarations {
					p.g.checkDeclaration(d.Id)
				}
			}
		}
	}

	top := p.state.DecoratorStack[len(p.state.DecoratorStack)-1]
	if len(top) > 0 {
		decl := node.Declaration
		if decl == nil || (decl.Type != "ClassDeclaration" && decl.Type != "ClassExpression") {
			p.raise(node.Start, "You can only use decorators on an export when exporting a class")
		}
		p.takeDecorators(decl)
	}
}

func (p *Parser) checkDeclaration(node *ast.Node) {
	switch node.Type {
	case "ObjectPattern":
		for _, prop := range node.Properties {
			p.g.checkDeclaration(prop)
		}
	case "ArrayPattern":
		for _, elem := range node.Elements {
			if elem != nil {
				p.g.checkDeclaration(elem)
			}
		}
	case "ObjectProperty":
		p.g.checkDeclaration(node.Value)
	case "RestElement":
		p.g.checkDeclaration(node.Argument)
	case "AssignmentPattern":
		p.g.checkDeclaration(node.Left)
	case "Identifier":
		p.g.checkDuplicateExports(node, node.Name)
	}
}

func (p *Parser) checkDuplicateExports(node *ast.Node, name string) {
	for _, seen := range p.state.ExportedIdentifiers {
		if seen != name {
			continue
		}
		if name == "default" {
			p.raise(node.Start, "Only one default export allowed per module.")
		}
		p.raise(node.Start, "`%s` has already been exported. Exported identifiers must be unique.", name)
	}
	p.state.ExportedIdentifiers = append(p.state.ExportedIdentifiers, name)
}

// parseExportSpecifiers parses { a, b as c }.
func (p *Parser) parseExportSpecifiers() []*ast.Node {
	nodes := []*ast.Node{}
	first := true
	needsFrom := false

	p.expect(lexer.BRACE_L)
	for !p.eat(lexer.BRACE_R) {
		if first {
			first = false
		} else {
			p.expect(lexer.COMMA)
			if p.eat(lexer.BRACE_R) {
				break
			}
		}
		isDefault := p.match(lexer.DEFAULT)
		needsFrom = needsFrom || isDefault

		node := p.startNode()
		node.Local = p.parseIdentifier(isDefault)
		if p.eatContextual("as") {
			node.Exported = p.parseIdentifier(true)
		} else {
			node.Exported = node.Local.Clone()
		}
		nodes = append(nodes, p.finishNode(node, "ExportSpecifier"))
	}
	if needsFrom && !p.isContextual("from") {
		p.unexpected()
	}
	return nodes
}

// --- Imports ---

// parseImport parses everything after the `import` keyword.
func (p *Parser) parseImport(node *ast.Node) *ast.Node {
	node.Specifiers = []*ast.Node{}
	if !p.match(lexer.STRING) {
		p.g.parseImportSpecifiers(node)
		p.expectContextual("from")
	}
	node.Source = p.parseImportSource()
	p.semicolon()
	return p.finishNode(node, "ImportDeclaration")
}

func (p *Parser) parseImportSource() *ast.Node {
	if !p.match(lexer.STRING) {
		p.unexpected()
	}
	return p.g.parseExprAtom(nil)
}

func (p *Parser) shouldParseDefaultImport(node *ast.Node) bool {
	return p.match(lexer.NAME)
}

func (p *Parser) parseImportSpecifierLocal(node, specifier *ast.Node, kind, contextDescription string) {
	specifier.Local = p.parseIdentifier(false)
	p.g.checkLVal(specifier.Local, true, nil, contextDescription)
	node.Specifiers = append(node.Specifiers, p.finishNode(specifier, kind))
}

func (p *Parser) parseImportSpecifiers(node *ast.Node) {
	if p.g.shouldParseDefaultImport(node) {
		p.g.parseImportSpecifierLocal(node, p.startNode(), "ImportDefaultSpecifier", "default import specifier")
		if !p.eat(lexer.COMMA) {
			return
		}
	}

	if p.match(lexer.STAR) {
		specifier := p.startNode()
		p.next()
		p.expectContextual("as")
		p.g.parseImportSpecifierLocal(node, specifier, "ImportNamespaceSpecifier", "import namespace specifier")
		return
	}

	first := true
	p.expect(lexer.BRACE_L)
	for !p.eat(lexer.BRACE_R) {
		if first {
			first = false
		} else {
			if p.eat(lexer.COLON) {
				p.raise(p.state.LastTokStart, "ES2015 named imports do not destructure. Use another statement for destructuring after the import.")
			}
			p.expect(lexer.COMMA)
			if p.eat(lexer.BRACE_R) {
				break
			}
		}
		p.g.parseImportSpecifier(node)
	}
}

func (p *Parser) parseImportSpecifier(node *ast.Node) {
	specifier := p.startNode()
	specifier.Imported = p.parseIdentifier(true)
	if p.eatContextual("as") {
		specifier.Local = p.parseIdentifier(false)
	} else {
		p.g.checkReservedWord(specifier.Imported.Name, specifier.Start, true, true)
		specifier.Local = specifier.Imported.Clone()
	}
	p.g.checkLVal(specifier.Local, true, nil, "import specifier")
	node.Specifiers = append(node.Specifiers, p.finishNode(specifier, "ImportSpecifier"))
}
