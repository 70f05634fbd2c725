package parser

import (
	"github.com/nooga/esparse/pkg/ast"
	"github.com/nooga/esparse/pkg/lexer"
)

// jsxLayer adds markup elements and fragments as primary expressions.
type jsxLayer struct {
	grammar
	p *Parser
}

func newJSXLayer(p *Parser, next grammar) grammar {
	return &jsxLayer{grammar: next, p: p}
}

func (l *jsxLayer) parseExprAtom(refShorthandDefaultPos *int) *ast.Node {
	p := l.p
	switch p.state.Type {
	case lexer.JSX_TEXT:
		node := p.parseLiteral(p.state.Value, "JSXText")
		if p.hasPlugin("estree") {
			node.Raw, _ = node.Extra["raw"].(string)
			delete(node.Extra, "raw")
		}
		return node
	case lexer.JSX_TAG_START:
		return p.jsxParseElement()
	}
	return l.grammar.parseExprAtom(refShorthandDefaultPos)
}

// --- Names ---

// qualifiedJSXName renders an element name the way it was written, for
// matching opening and closing tags.
func qualifiedJSXName(n *ast.Node) string {
	if n == nil {
		return ""
	}
	switch n.Type {
	case "JSXIdentifier":
		return n.Name
	case "JSXNamespacedName":
		return n.Namespace.Name + ":" + n.NameNode.Name
	case "JSXMemberExpression":
		return qualifiedJSXName(n.Object) + "." + qualifiedJSXName(n.Property)
	}
	return ""
}

func isFragment(n *ast.Node) bool {
	return n != nil && (n.Type == "JSXOpeningFragment" || n.Type == "JSXClosingFragment")
}

func (p *Parser) jsxParseIdentifier() *ast.Node {
	node := p.startNode()
	switch {
	case p.match(lexer.JSX_NAME):
		node.Name = p.state.Value
	case p.state.Type.IsKeyword():
		node.Name = string(p.state.Type)
	default:
		p.unexpected()
	}
	p.next()
	return p.finishNode(node, "JSXIdentifier")
}

// Syntax: name | namespace:name
func (p *Parser) jsxParseNamespacedName() *ast.Node {
	start, startLoc := p.state.Start, p.state.StartLoc
	name := p.jsxParseIdentifier()
	if !p.eat(lexer.COLON) {
		return name
	}
	node := p.startNodeAt(start, startLoc)
	node.Namespace = name
	node.NameNode = p.jsxParseIdentifier()
	return p.finishNode(node, "JSXNamespacedName")
}

// Syntax: name | namespace:name | object.property...
func (p *Parser) jsxParseElementName() *ast.Node {
	start, startLoc := p.state.Start, p.state.StartLoc
	node := p.jsxParseNamespacedName()
	for p.eat(lexer.DOT) {
		member := p.startNodeAt(start, startLoc)
		member.Object = node
		member.Property = p.jsxParseIdentifier()
		node = p.finishNode(member, "JSXMemberExpression")
	}
	return node
}

// --- Attributes and children ---

func (p *Parser) jsxParseAttributeValue() *ast.Node {
	switch p.state.Type {
	case lexer.BRACE_L:
		node := p.jsxParseExpressionContainer()
		if node.Expression.Type == "JSXEmptyExpression" {
			p.raise(node.Start, "JSX attributes must only be assigned a non-empty expression")
		}
		return node
	case lexer.JSX_TAG_START, lexer.STRING:
		return p.g.parseExprAtom(nil)
	}
	p.raise(p.state.Start, "JSX value should be either an expression or a quoted JSX text")
	return nil
}

// jsxParseEmptyExpression spans the gap between `{` and `}`.
func (p *Parser) jsxParseEmptyExpression() *ast.Node {
	node := p.startNodeAt(p.state.LastTokEnd, p.state.LastTokEndLoc)
	return p.finishNodeAt(node, "JSXEmptyExpression", p.state.Start, p.state.StartLoc)
}

func (p *Parser) jsxParseSpreadChild() *ast.Node {
	node := p.startNode()
	p.expect(lexer.BRACE_L)
	p.expect(lexer.ELLIPSIS)
	node.Expression = p.parseExpression(false, nil)
	p.expect(lexer.BRACE_R)
	return p.finishNode(node, "JSXSpreadChild")
}

func (p *Parser) jsxParseExpressionContainer() *ast.Node {
	node := p.startNode()
	p.next()
	if p.match(lexer.BRACE_R) {
		node.Expression = p.jsxParseEmptyExpression()
	} else {
		node.Expression = p.parseExpression(false, nil)
	}
	p.expect(lexer.BRACE_R)
	return p.finishNode(node, "JSXExpressionContainer")
}

// Syntax: {...expr} | name | name=value
func (p *Parser) jsxParseAttribute() *ast.Node {
	node := p.startNode()
	if p.eat(lexer.BRACE_L) {
		p.expect(lexer.ELLIPSIS)
		node.Argument = p.parseAssignExpr()
		p.expect(lexer.BRACE_R)
		return p.finishNode(node, "JSXSpreadAttribute")
	}
	node.NameNode = p.jsxParseNamespacedName()
	if p.eat(lexer.EQ) {
		node.Value = p.jsxParseAttributeValue()
	}
	return p.finishNode(node, "JSXAttribute")
}

// --- Elements ---

func (p *Parser) jsxParseOpeningElementAt(start int, startLoc ast.Position) *ast.Node {
	node := p.startNodeAt(start, startLoc)
	if p.match(lexer.JSX_TAG_END) {
		p.expect(lexer.JSX_TAG_END)
		return p.finishNode(node, "JSXOpeningFragment")
	}
	node.NameNode = p.jsxParseElementName()
	return p.g.jsxParseOpeningElementAfterName(node)
}

func (p *Parser) jsxParseOpeningElementAfterName(node *ast.Node) *ast.Node {
	attributes := []*ast.Node{}
	for !p.match(lexer.SLASH) && !p.match(lexer.JSX_TAG_END) {
		attributes = append(attributes, p.jsxParseAttribute())
	}
	node.Attributes = attributes
	node.SelfClosing = p.eat(lexer.SLASH)
	p.expect(lexer.JSX_TAG_END)
	return p.finishNode(node, "JSXOpeningElement")
}

func (p *Parser) jsxParseClosingElementAt(start int, startLoc ast.Position) *ast.Node {
	node := p.startNodeAt(start, startLoc)
	if p.match(lexer.JSX_TAG_END) {
		p.expect(lexer.JSX_TAG_END)
		return p.finishNode(node, "JSXClosingFragment")
	}
	node.NameNode = p.jsxParseElementName()
	p.expect(lexer.JSX_TAG_END)
	return p.finishNode(node, "JSXClosingElement")
}

// jsxParseElementAt parses an element or fragment whose `<` was already
// consumed at start.
func (p *Parser) jsxParseElementAt(start int, startLoc ast.Position) *ast.Node {
	p.enter()
	defer p.leave()

	node := p.startNodeAt(start, startLoc)
	children := []*ast.Node{}
	opening := p.jsxParseOpeningElementAt(start, startLoc)
	var closing *ast.Node

	if !opening.SelfClosing {
	contents:
		for {
			switch p.state.Type {
			case lexer.JSX_TAG_START:
				childStart, childLoc := p.state.Start, p.state.StartLoc
				p.next()
				if p.eat(lexer.SLASH) {
					closing = p.jsxParseClosingElementAt(childStart, childLoc)
					break contents
				}
				children = append(children, p.jsxParseElementAt(childStart, childLoc))
			case lexer.JSX_TEXT:
				children = append(children, p.g.parseExprAtom(nil))
			case lexer.BRACE_L:
				if p.peek().Type == lexer.ELLIPSIS {
					children = append(children, p.jsxParseSpreadChild())
				} else {
					children = append(children, p.jsxParseExpressionContainer())
				}
			default:
				p.unexpected()
			}
		}

		switch {
		case isFragment(opening) && !isFragment(closing):
			p.raise(closing.Start, "Expected corresponding JSX closing tag for <>")
		case !isFragment(opening) && isFragment(closing):
			p.raise(closing.Start, "Expected corresponding JSX closing tag for <%s>", qualifiedJSXName(opening.NameNode))
		case !isFragment(opening) && qualifiedJSXName(closing.NameNode) != qualifiedJSXName(opening.NameNode):
			p.raise(closing.Start, "Expected corresponding JSX closing tag for <%s>", qualifiedJSXName(opening.NameNode))
		}
	}

	node.Children = children
	if p.isRelational("<") {
		p.raise(p.state.Start, "Adjacent JSX elements must be wrapped in an enclosing tag. Did you want a JSX fragment <>...</>?")
	}
	if isFragment(opening) {
		node.OpeningFragment = opening
		node.ClosingFragment = closing
		return p.finishNode(node, "JSXFragment")
	}
	node.OpeningElement = opening
	node.ClosingElement = closing
	return p.finishNode(node, "JSXElement")
}

func (p *Parser) jsxParseElement() *ast.Node {
	start, startLoc := p.state.Start, p.state.StartLoc
	p.next()
	return p.jsxParseElementAt(start, startLoc)
}
