package parser

import (
	"github.com/nooga/esparse/pkg/ast"
	"github.com/nooga/esparse/pkg/lexer"
)

// tsParseEnumDeclaration parses an enum after the `enum` keyword.
// Syntax: [const] enum Name { Member [= Initializer], ... }
func (l *typeScriptLayer) tsParseEnumDeclaration(node *ast.Node, isConst bool) *ast.Node {
	p := l.p
	if isConst {
		node.Const = true
	}
	node.Id = p.parseIdentifier(false)
	p.expect(lexer.BRACE_L)
	node.Members = l.tsParseDelimitedList(tsEnumMembers, l.tsParseEnumMember)
	p.expect(lexer.BRACE_R)
	return p.finishNode(node, "TSEnumDeclaration")
}

// tsParseEnumMember parses one member. String literal names are allowed;
// computed names are not.
func (l *typeScriptLayer) tsParseEnumMember() *ast.Node {
	p := l.p
	node := p.startNode()
	if p.match(lexer.STRING) {
		node.Id = p.g.parseExprAtom(nil)
	} else {
		node.Id = p.parseIdentifier(true)
	}
	if p.eat(lexer.EQ) {
		node.Initializer = p.g.parseMaybeAssign(false, nil, nil, nil)
	}
	return p.finishNode(node, "TSEnumMember")
}
