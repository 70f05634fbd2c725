package parser

import (
	"github.com/nooga/esparse/pkg/ast"
	"github.com/nooga/esparse/pkg/lexer"
)

// parseMaybePrivateName parses `#name` as a PrivateName, or a plain
// identifier name (reserved words allowed) otherwise.
func (p *Parser) parseMaybePrivateName() *ast.Node {
	if !p.match(lexer.HASH) {
		return p.parseIdentifier(true)
	}
	if p.state.ClassLevel == 0 {
		p.raise(p.state.Start, "Private names are only allowed inside class bodies")
	}
	node := p.startNode()
	hashEnd := p.state.End
	p.next()
	if p.state.Start != hashEnd {
		p.raise(p.state.Start, "Unexpected space between # and identifier")
	}
	node.Id = p.parseIdentifier(true)
	return p.finishNode(node, "PrivateName")
}

// pushClassPrivateMethod parses a method whose key is a private name.
// Syntax: [static] [async] [*] #name(params) { body }
func (p *Parser) pushClassPrivateMethod(classBody, method *ast.Node, isGenerator, isAsync bool) {
	classBody.BodyList = append(classBody.BodyList, p.g.parseMethod(method, isGenerator, isAsync, false, "ClassPrivateMethod"))
}
