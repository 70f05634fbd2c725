package parser

import (
	"github.com/nooga/esparse/pkg/ast"
	"github.com/nooga/esparse/pkg/lexer"
)

// --- Converting expressions to patterns ---

func invalidLHS(prefix, contextDescription string) string {
	if contextDescription == "" {
		return prefix + " left-hand side expression"
	}
	return prefix + " left-hand side in " + contextDescription
}

// toAssignable rewrites an expression that turned out to be an assignment
// target into the matching pattern node, in place.
func (p *Parser) toAssignable(node *ast.Node, isBinding bool, contextDescription string) *ast.Node {
	if node == nil {
		return nil
	}
	switch node.Type {
	case "Identifier", "ObjectPattern", "ArrayPattern", "AssignmentPattern":

	case "ObjectExpression":
		node.Type = "ObjectPattern"
		for i, prop := range node.Properties {
			p.g.toAssignableObjectExpressionProp(prop, isBinding, i == len(node.Properties)-1)
		}

	case "ObjectProperty":
		p.g.toAssignable(node.Value, isBinding, contextDescription)

	case "SpreadElement":
		p.checkToRestConversion(node)
		node.Type = "RestElement"
		p.g.toAssignable(node.Argument, isBinding, contextDescription)

	case "ArrayExpression":
		node.Type = "ArrayPattern"
		p.g.toAssignableList(node.Elements, isBinding, contextDescription)

	case "AssignmentExpression":
		if node.Operator != "=" {
			p.raise(node.Left.End, "Only '=' operator can be used for specifying default value.")
		}
		node.Type = "AssignmentPattern"
		node.Operator = ""

	case "MemberExpression":
		if !isBinding {
			break
		}
		p.raise(node.Start, "%s", invalidLHS("Invalid", contextDescription))

	default:
		p.raise(node.Start, "%s", invalidLHS("Invalid", contextDescription))
	}
	return node
}

func (p *Parser) toAssignableObjectExpressionProp(prop *ast.Node, isBinding, isLast bool) {
	switch {
	case prop.Type == "ObjectMethod":
		if prop.Kind == "get" || prop.Kind == "set" {
			p.raise(prop.Key.Start, "Object pattern can't contain getter or setter")
		}
		p.raise(prop.Key.Start, "Object pattern can't contain methods")
	case prop.Type == "SpreadElement" && !isLast:
		p.raise(prop.Start, "The rest element has to be the last element when destructuring")
	default:
		p.g.toAssignable(prop, isBinding, "object destructuring pattern")
	}
}

// toAssignableList converts list elements in place; a trailing spread
// becomes the rest element.
func (p *Parser) toAssignableList(exprList []*ast.Node, isBinding bool, contextDescription string) []*ast.Node {
	end := len(exprList)
	if end > 0 {
		last := exprList[end-1]
		switch {
		case last != nil && last.Type == "RestElement":
			end--
		case last != nil && last.Type == "SpreadElement":
			last.Type = "RestElement"
			arg := last.Argument
			p.g.toAssignable(arg, isBinding, contextDescription)
			switch arg.Type {
			case "Identifier", "MemberExpression", "ArrayPattern", "ObjectPattern":
			default:
				p.unexpectedAt(arg.Start, "")
			}
			end--
		}
	}
	for _, elt := range exprList[:end] {
		if elt == nil {
			continue
		}
		if elt.Type == "SpreadElement" {
			p.raise(elt.Start, "The rest element has to be the last element when destructuring")
		}
		p.g.toAssignable(elt, isBinding, contextDescription)
	}
	return exprList
}

func (p *Parser) toReferencedList(exprList []*ast.Node, isParenthesizedExpr bool) []*ast.Node {
	return exprList
}

func (p *Parser) checkToRestConversion(node *ast.Node) {
	switch node.Argument.Type {
	case "Identifier", "MemberExpression":
		return
	}
	p.raise(node.Argument.Start, "Invalid rest operator's argument")
}

// --- Binding patterns ---

func (p *Parser) parseBindingIdentifier() *ast.Node {
	return p.parseIdentifier(false)
}

func (p *Parser) parseRest() *ast.Node {
	node := p.startNode()
	p.next()
	node.Argument = p.g.parseBindingAtom()
	return p.finishNode(node, "RestElement")
}

func (p *Parser) parseBindingAtom() *ast.Node {
	switch p.state.Type {
	case lexer.NAME:
		return p.parseBindingIdentifier()
	case lexer.BRACKET_L:
		node := p.startNode()
		p.next()
		node.Elements = p.parseBindingList(lexer.BRACKET_R, true, false)
		return p.finishNode(node, "ArrayPattern")
	case lexer.BRACE_L:
		return p.parseObj(true, nil)
	}
	p.unexpected()
	return nil
}

// parseBindingList parses the elements of an array pattern or a parameter
// list up to close.
func (p *Parser) parseBindingList(close lexer.TokenType, allowEmpty, allowModifiers bool) []*ast.Node {
	elts := []*ast.Node{}
	first := true
	for !p.eat(close) {
		if first {
			first = false
		} else {
			p.expect(lexer.COMMA)
		}
		switch {
		case allowEmpty && p.match(lexer.COMMA):
			elts = append(elts, nil)
		case p.eat(close):
			return elts
		case p.match(lexer.ELLIPSIS):
			elts = append(elts, p.g.parseAssignableListItemTypes(p.parseRest()))
			p.expect(close)
			return elts
		default:
			var decorators []*ast.Node
			if p.match(lexer.AT) && p.hasPlugin("decorators") {
				p.raise(p.state.Start, "Stage 2 decorators cannot be used to decorate parameters")
			}
			for p.match(lexer.AT) {
				decorators = append(decorators, p.parseDecorator())
			}
			elts = append(elts, p.g.parseAssignableListItem(allowModifiers, decorators))
		}
	}
	return elts
}

func (p *Parser) parseAssignableListItem(allowModifiers bool, decorators []*ast.Node) *ast.Node {
	left := p.g.parseMaybeDefault(p.state.Start, p.state.StartLoc, nil)
	p.g.parseAssignableListItemTypes(left)
	elt := p.g.parseMaybeDefault(left.Start, left.Loc.Start, left)
	if len(decorators) > 0 {
		left.Decorators = decorators
	}
	return elt
}

func (p *Parser) parseAssignableListItemTypes(param *ast.Node) *ast.Node {
	return param
}

// parseMaybeDefault parses `left = default`. A nil left is read as a
// binding atom at the current token.
func (p *Parser) parseMaybeDefault(start int, startLoc ast.Position, left *ast.Node) *ast.Node {
	if left == nil {
		left = p.g.parseBindingAtom()
	}
	if !p.eat(lexer.EQ) {
		return left
	}
	node := p.startNodeAt(start, startLoc)
	node.Left = left
	node.Right = p.parseAssignExpr()
	return p.finishNode(node, "AssignmentPattern")
}

// --- Validation ---

// checkLVal verifies that expr is a valid assignment or binding target.
// checkClashes, when non-nil, collects bound names and rejects repeats.
func (p *Parser) checkLVal(expr *ast.Node, isBinding bool, checkClashes map[string]bool, contextDescription string) {
	switch expr.Type {
	case "Identifier":
		if p.state.Strict && (isStrictBindReservedWord(expr.Name) || (isBinding && isStrictReservedWord(expr.Name))) {
			if isBinding {
				p.raise(expr.Start, "Binding %s in strict mode", expr.Name)
			}
			p.raise(expr.Start, "Assigning to %s in strict mode", expr.Name)
		}
		if checkClashes != nil {
			if checkClashes[expr.Name] {
				p.raise(expr.Start, "Argument name clash")
			}
			checkClashes[expr.Name] = true
		}

	case "MemberExpression":
		if isBinding {
			p.raise(expr.Start, "Binding member expression")
		}

	case "ObjectPattern":
		for _, prop := range expr.Properties {
			if prop.Type == "ObjectProperty" {
				prop = prop.Value
			}
			p.g.checkLVal(prop, isBinding, checkClashes, "object destructuring pattern")
		}

	case "ArrayPattern":
		for _, elem := range expr.Elements {
			if elem != nil {
				p.g.checkLVal(elem, isBinding, checkClashes, "array destructuring pattern")
			}
		}

	case "AssignmentPattern":
		p.g.checkLVal(expr.Left, isBinding, checkClashes, "assignment pattern")

	case "RestElement":
		p.g.checkLVal(expr.Argument, isBinding, checkClashes, "rest element")

	default:
		prefix := "Invalid"
		if isBinding {
			prefix = "Binding invalid"
		}
		p.raise(expr.Start, "%s", invalidLHS(prefix, contextDescription))
	}
}
