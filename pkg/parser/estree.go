package parser

import (
	"github.com/nooga/esparse/pkg/ast"
	"github.com/nooga/esparse/pkg/lexer"
)

// estreeLayer produces ESTree node shapes: Literal instead of the typed
// literal kinds, Property and MethodDefinition wrapping a FunctionExpression,
// and directives kept as expression statements.
type estreeLayer struct {
	grammar
	p *Parser
}

func newEstreeLayer(p *Parser, next grammar) grammar {
	return &estreeLayer{grammar: next, p: p}
}

func isSimpleProperty(node *ast.Node) bool {
	return node != nil && node.Type == "Property" && node.Kind == "init" && !node.Method
}

// --- Literals ---

func (l *estreeLayer) parseLiteral(value any) *ast.Node {
	p := l.p
	node := p.parseLiteral(value, "Literal")
	node.Raw, _ = node.Extra["raw"].(string)
	delete(node.Extra, "raw")
	return node
}

func (l *estreeLayer) parseExprAtom(refShorthandDefaultPos *int) *ast.Node {
	p := l.p
	switch p.state.Type {
	case lexer.REGEXP:
		regex := &ast.RegExp{Pattern: p.state.Value, Flags: p.state.Flags}
		node := l.parseLiteral(ast.Null)
		node.Regex = regex
		return node
	case lexer.BIGINT:
		digits := p.state.Value
		node := l.parseLiteral(ast.Null)
		node.Bigint = digits
		return node
	case lexer.NUM:
		return l.parseLiteral(p.state.Num)
	case lexer.STRING:
		return l.parseLiteral(p.state.Value)
	case lexer.NULL:
		return l.parseLiteral(ast.Null)
	case lexer.TRUE:
		return l.parseLiteral(true)
	case lexer.FALSE:
		return l.parseLiteral(false)
	}
	return l.grammar.parseExprAtom(refShorthandDefaultPos)
}

// --- Directives ---

func (l *estreeLayer) isValidDirective(stmt *ast.Node) bool {
	if stmt.Type != "ExpressionStatement" || stmt.Expression.Type != "Literal" {
		return false
	}
	_, isString := stmt.Expression.LitValue.(string)
	return isString && !stmt.Expression.Parenthesized()
}

func (l *estreeLayer) stmtToDirective(stmt *ast.Node) *ast.Node {
	directive := l.grammar.stmtToDirective(stmt)
	directive.Value.LitValue = stmt.Expression.LitValue
	return directive
}

func (l *estreeLayer) isStrictBody(node *ast.Node) bool {
	if node.Body == nil || node.Body.Type != "BlockStatement" {
		return false
	}
	for _, stmt := range node.Body.BodyList {
		if stmt.Type != "ExpressionStatement" || stmt.Expression.Type != "Literal" {
			break
		}
		if s, _ := stmt.Expression.LitValue.(string); s == "use strict" {
			return true
		}
	}
	return false
}

// parseBlockBody moves directives back into the body as expression
// statements carrying a `directive` field.
func (l *estreeLayer) parseBlockBody(node *ast.Node, allowDirectives, topLevel bool, end lexer.TokenType) {
	l.grammar.parseBlockBody(node, allowDirectives, topLevel, end)
	if len(node.Directives) > 0 {
		body := make([]*ast.Node, 0, len(node.Directives)+len(node.BodyList))
		for _, d := range node.Directives {
			body = append(body, l.directiveToStmt(d))
		}
		node.BodyList = append(body, node.BodyList...)
	}
	node.Directives = nil
}

func (l *estreeLayer) directiveToStmt(directive *ast.Node) *ast.Node {
	p := l.p
	lit := directive.Value
	raw, _ := lit.Extra["raw"].(string)

	stmt := p.startNodeAt(directive.Start, directive.Loc.Start)
	expr := p.startNodeAt(lit.Start, lit.Loc.Start)
	expr.LitValue = lit.LitValue
	expr.Raw = raw
	stmt.Expression = p.finishNodeAt(expr, "Literal", lit.End, lit.Loc.End)
	stmt.Directive = raw[1 : len(raw)-1]
	return p.finishNodeAt(stmt, "ExpressionStatement", directive.End, directive.Loc.End)
}

// --- Functions and methods ---

func (l *estreeLayer) parseFunctionBody(node *ast.Node, allowExpression bool) {
	l.grammar.parseFunctionBody(node, allowExpression)
	node.IsExpression = node.Body.Type != "BlockStatement"
}

// parseMethod wraps the parameters and body in a FunctionExpression stored
// as the member's value.
func (l *estreeLayer) parseMethod(node *ast.Node, isGenerator, isAsync, isConstructor bool, kind string) *ast.Node {
	p := l.p
	fn := p.startNode()
	fn.Kind = node.Kind
	fn = l.grammar.parseMethod(fn, isGenerator, isAsync, isConstructor, "FunctionExpression")
	fn.Kind = ""
	node.Value = fn
	return p.finishNode(node, kind)
}

func (l *estreeLayer) pushClassMethod(classBody, method *ast.Node, isGenerator, isAsync, isConstructor bool) {
	l.p.g.parseMethod(method, isGenerator, isAsync, isConstructor, "MethodDefinition")
	if method.TypeParameters != nil {
		method.Value.TypeParameters = method.TypeParameters
		method.TypeParameters = nil
	}
	classBody.BodyList = append(classBody.BodyList, method)
}

func (l *estreeLayer) checkGetterSetterParams(method *ast.Node) {
	p := l.p
	paramCount := 0
	if method.Kind == "set" {
		paramCount = 1
	}
	params := method.Value.Params
	if len(params) != paramCount {
		if method.Kind == "get" {
			p.raise(method.Start, "getter must not have any formal parameters")
		}
		p.raise(method.Start, "setter must have exactly one formal parameter")
	}
	if method.Kind == "set" && params[0].Type == "RestElement" {
		p.raise(method.Start, "setter function argument must not be a rest parameter")
	}
}

// --- Object members ---

func (l *estreeLayer) parseObjectMethod(prop *ast.Node, isGenerator, isAsync, isPattern, containsEsc bool) *ast.Node {
	node := l.grammar.parseObjectMethod(prop, isGenerator, isAsync, isPattern, containsEsc)
	if node != nil {
		node.Type = "Property"
		if node.Kind == "method" {
			node.Kind = "init"
		}
		node.Shorthand = false
	}
	return node
}

func (l *estreeLayer) parseObjectProperty(prop *ast.Node, start int, startLoc ast.Position, isPattern bool, refShorthandDefaultPos *int) *ast.Node {
	node := l.grammar.parseObjectProperty(prop, start, startLoc, isPattern, refShorthandDefaultPos)
	if node != nil {
		node.Kind = "init"
		node.Type = "Property"
	}
	return node
}

func (l *estreeLayer) checkPropClash(prop *ast.Node, seen map[string]bool) {
	if prop.Computed || prop.Shorthand || !isSimpleProperty(prop) {
		return
	}
	key := prop.Key
	name := key.Name
	if key.Type != "Identifier" {
		name, _ = key.LitValue.(string)
	}
	if name == "__proto__" {
		if seen["__proto__"] {
			l.p.raise(key.Start, "Redefinition of __proto__ property")
		}
		seen["__proto__"] = true
	}
}

// --- Patterns ---

func (l *estreeLayer) toAssignable(node *ast.Node, isBinding bool, contextDescription string) *ast.Node {
	if isSimpleProperty(node) {
		l.p.g.toAssignable(node.Value, isBinding, contextDescription)
		return node
	}
	return l.grammar.toAssignable(node, isBinding, contextDescription)
}

func (l *estreeLayer) toAssignableObjectExpressionProp(prop *ast.Node, isBinding, isLast bool) {
	switch {
	case prop.Kind == "get" || prop.Kind == "set":
		l.p.raise(prop.Key.Start, "Object pattern can't contain getter or setter")
	case prop.Method:
		l.p.raise(prop.Key.Start, "Object pattern can't contain methods")
	}
	l.grammar.toAssignableObjectExpressionProp(prop, isBinding, isLast)
}

func (l *estreeLayer) checkLVal(expr *ast.Node, isBinding bool, checkClashes map[string]bool, contextDescription string) {
	if expr.Type != "ObjectPattern" {
		l.grammar.checkLVal(expr, isBinding, checkClashes, contextDescription)
		return
	}
	for _, prop := range expr.Properties {
		if prop.Type == "Property" {
			prop = prop.Value
		}
		l.p.g.checkLVal(prop, isBinding, checkClashes, "object destructuring pattern")
	}
}

func (l *estreeLayer) checkDeclaration(node *ast.Node) {
	if isSimpleProperty(node) {
		l.p.g.checkDeclaration(node.Value)
		return
	}
	l.grammar.checkDeclaration(node)
}
