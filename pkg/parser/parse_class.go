package parser

import (
	"github.com/nooga/esparse/pkg/ast"
	"github.com/nooga/esparse/pkg/lexer"
)

// classState is shared by the members of one class body.
type classState struct {
	hadConstructor bool
}

// parseClass parses a class declaration or expression.
// Syntax: class [Name] [extends Expr] { ClassBody }
func (p *Parser) parseClass(node *ast.Node, isStatement, optionalID bool) *ast.Node {
	p.next()
	p.takeDecorators(node)
	p.g.parseClassId(node, isStatement, optionalID)
	p.g.parseClassSuper(node)
	p.parseClassBody(node)
	if isStatement {
		return p.finishNode(node, "ClassDeclaration")
	}
	return p.finishNode(node, "ClassExpression")
}

func (p *Parser) parseClassId(node *ast.Node, isStatement, optionalID bool) {
	if p.match(lexer.NAME) {
		node.Id = p.parseBindingIdentifier()
		return
	}
	if optionalID || !isStatement {
		node.Id = nil
		return
	}
	p.raise(p.state.Start, "A class name is required")
}

func (p *Parser) parseClassSuper(node *ast.Node) {
	if p.eat(lexer.EXTENDS) {
		node.SuperClass = p.parseExprSubscripts()
	}
}

func (p *Parser) isClassProperty() bool {
	return p.match(lexer.EQ) || p.match(lexer.SEMI) || p.match(lexer.BRACE_R)
}

func (p *Parser) isClassMethod() bool {
	return p.match(lexer.PAREN_L)
}

func (p *Parser) isNonstaticConstructor(method *ast.Node) bool {
	if method.Computed || method.Static || method.Key == nil {
		return false
	}
	if method.Key.Name == "constructor" {
		return true
	}
	s, _ := method.Key.LitValue.(string)
	return s == "constructor"
}

func (p *Parser) parseClassBody(node *ast.Node) {
	oldStrict := p.state.Strict
	p.state.Strict = true
	p.state.ClassLevel++

	st := &classState{}
	var decorators []*ast.Node
	classBody := p.startNode()
	classBody.BodyList = []*ast.Node{}

	p.expect(lexer.BRACE_L)
	for !p.eat(lexer.BRACE_R) {
		if p.eat(lexer.SEMI) {
			if len(decorators) > 0 {
				p.raise(p.state.LastTokEnd, "Decorators must not be followed by a semicolon")
			}
			continue
		}
		if p.match(lexer.AT) {
			decorators = append(decorators, p.parseDecorator())
			continue
		}

		member := p.startNode()
		if len(decorators) > 0 {
			member.Decorators = decorators
			p.resetStartLocationFromNode(member, decorators[0])
			decorators = nil
		}
		p.g.parseClassMember(classBody, member, st)

		if member.Kind == "constructor" && len(member.Decorators) > 0 {
			p.raise(member.Start, "Decorators can't be used with a constructor. Did you mean '@dec class { ... }'?")
		}
	}
	if len(decorators) > 0 {
		p.raise(p.state.Start, "You have trailing decorators with no method")
	}

	node.Body = p.finishNode(classBody, "ClassBody")
	p.state.ClassLevel--
	p.state.Strict = oldStrict
}

func (p *Parser) parseClassMember(classBody, member *ast.Node, st *classState) {
	containsEsc := p.state.ContainsEsc
	if p.match(lexer.NAME) && p.state.Value == "static" {
		key := p.parseIdentifier(true)
		if p.g.isClassMethod() {
			member.Kind = "method"
			member.Key = key
			p.g.pushClassMethod(classBody, member, false, false, false)
			return
		}
		if p.g.isClassProperty() {
			member.Key = key
			classBody.BodyList = append(classBody.BodyList, p.g.parseClassProperty(member))
			return
		}
		if containsEsc {
			p.unexpected()
		}
		p.g.parseClassMemberWithIsStatic(classBody, member, st, true)
		return
	}
	p.g.parseClassMemberWithIsStatic(classBody, member, st, false)
}

func (p *Parser) parseClassMemberWithIsStatic(classBody, member *ast.Node, st *classState, isStatic bool) {
	member.Static = isStatic

	if p.eat(lexer.STAR) {
		member.Kind = "method"
		p.parseClassPropertyName(member)
		if member.Key.Type == "PrivateName" {
			p.g.pushClassPrivateMethod(classBody, member, true, false)
			return
		}
		if p.g.isNonstaticConstructor(member) {
			p.raise(member.Key.Start, "Constructor can't be a generator")
		}
		p.g.pushClassMethod(classBody, member, true, false, false)
		return
	}

	key := p.parseClassPropertyName(member)
	isPrivate := key.Type == "PrivateName"
	isSimple := key.Type == "Identifier"
	p.g.parsePostMemberNameModifiers(member)

	switch {
	case p.g.isClassMethod():
		member.Kind = "method"
		if isPrivate {
			p.g.pushClassPrivateMethod(classBody, member, false, false)
			return
		}
		isConstructor := p.g.isNonstaticConstructor(member)
		if isConstructor {
			member.Kind = "constructor"
			if len(member.Decorators) > 0 {
				p.raise(member.Start, "You can't attach decorators to a class constructor")
			}
			if st.hadConstructor && !p.hasPlugin("typescript") {
				p.raise(key.Start, "Duplicate constructor in the same class")
			}
			st.hadConstructor = true
		}
		p.g.pushClassMethod(classBody, member, false, false, isConstructor)

	case p.g.isClassProperty():
		if isPrivate {
			p.pushClassPrivateProperty(classBody, member)
		} else {
			p.pushClassProperty(classBody, member)
		}

	case isSimple && key.Name == "async" && !p.atLineTerminator():
		isGenerator := p.eat(lexer.STAR)
		member.Kind = "method"
		p.parseClassPropertyName(member)
		if member.Key.Type == "PrivateName" {
			p.g.pushClassPrivateMethod(classBody, member, isGenerator, true)
			return
		}
		if p.g.isNonstaticConstructor(member) {
			p.raise(member.Key.Start, "Constructor can't be an async function")
		}
		p.g.pushClassMethod(classBody, member, isGenerator, true, false)

	case isSimple && (key.Name == "get" || key.Name == "set") && !(p.atLineTerminator() && p.match(lexer.STAR)):
		member.Kind = key.Name
		p.parseClassPropertyName(member)
		if member.Key.Type == "PrivateName" {
			p.g.pushClassPrivateMethod(classBody, member, false, false)
		} else {
			if p.g.isNonstaticConstructor(member) {
				p.raise(member.Key.Start, "Constructor can't have get/set modifier")
			}
			p.g.pushClassMethod(classBody, member, false, false, false)
		}
		p.g.checkGetterSetterParams(member)

	case p.atLineTerminator():
		if isPrivate {
			p.pushClassPrivateProperty(classBody, member)
		} else {
			p.pushClassProperty(classBody, member)
		}

	default:
		p.unexpected()
	}
}

func (p *Parser) parseClassPropertyName(member *ast.Node) *ast.Node {
	key := p.g.parsePropertyName(member)
	if !member.Computed && member.Static {
		s, _ := key.LitValue.(string)
		if key.Name == "prototype" || s == "prototype" {
			p.raise(key.Start, "Classes may not have static property named prototype")
		}
	}
	if key.Type == "PrivateName" && key.Id != nil && key.Id.Name == "constructor" {
		p.raise(key.Start, "Classes may not have a private field named '#constructor'")
	}
	return key
}

func (p *Parser) parsePostMemberNameModifiers(member *ast.Node) {}

func (p *Parser) pushClassMethod(classBody, method *ast.Node, isGenerator, isAsync, isConstructor bool) {
	classBody.BodyList = append(classBody.BodyList, p.g.parseMethod(method, isGenerator, isAsync, isConstructor, "ClassMethod"))
}

func (p *Parser) pushClassProperty(classBody, prop *ast.Node) {
	if p.g.isNonstaticConstructor(prop) {
		p.raise(prop.Key.Start, "Classes may not have a non-static field named 'constructor'")
	}
	classBody.BodyList = append(classBody.BodyList, p.g.parseClassProperty(prop))
}

func (p *Parser) pushClassPrivateProperty(classBody, prop *ast.Node) {
	classBody.BodyList = append(classBody.BodyList, p.g.parseClassPrivateProperty(prop))
}

func (p *Parser) parseClassProperty(node *ast.Node) *ast.Node {
	node.Value = p.parseClassPropertyValue()
	return p.finishNode(node, "ClassProperty")
}

func (p *Parser) parseClassPrivateProperty(node *ast.Node) *ast.Node {
	node.Value = p.parseClassPropertyValue()
	return p.finishNode(node, "ClassPrivateProperty")
}

// parseClassPropertyValue reads an optional initializer and the
// terminating semicolon of a field.
func (p *Parser) parseClassPropertyValue() *ast.Node {
	old := p.state.InClassProperty
	p.state.InClassProperty = true
	defer func() { p.state.InClassProperty = old }()

	var value *ast.Node
	if p.eat(lexer.EQ) {
		value = p.parseAssignExpr()
	}
	p.semicolon()
	return value
}

func (p *Parser) checkGetterSetterParams(method *ast.Node) {
	paramCount := 0
	if method.Kind == "set" {
		paramCount = 1
	}
	start := method.Start
	if len(method.Params) != paramCount {
		if method.Kind == "get" {
			p.raise(start, "getter must not have any formal parameters")
		}
		p.raise(start, "setter must have exactly one formal parameter")
	}
	if method.Kind == "set" && method.Params[0].Type == "RestElement" {
		p.raise(start, "setter function argument must not be a rest parameter")
	}
}
