package parser

import (
	"strings"

	"github.com/nooga/esparse/pkg/ast"
	"github.com/nooga/esparse/pkg/lexer"
)

// subscriptState is threaded through one run of parseSubscripts.
type subscriptState struct {
	stop                bool
	optionalChainMember bool
}

// --- Sequence and assignment ---

// parseExpression parses a comma separated expression.
func (p *Parser) parseExpression(noIn bool, refShorthandDefaultPos *int) *ast.Node {
	start, startLoc := p.state.Start, p.state.StartLoc
	expr := p.g.parseMaybeAssign(noIn, refShorthandDefaultPos, nil, nil)
	if !p.match(lexer.COMMA) {
		return expr
	}
	node := p.startNodeAt(start, startLoc)
	node.Expressions = []*ast.Node{expr}
	for p.eat(lexer.COMMA) {
		node.Expressions = append(node.Expressions, p.g.parseMaybeAssign(noIn, refShorthandDefaultPos, nil, nil))
	}
	p.g.toReferencedList(node.Expressions, false)
	return p.finishNode(node, "SequenceExpression")
}

func (p *Parser) parseAssignExpr() *ast.Node {
	return p.g.parseMaybeAssign(false, nil, nil, nil)
}

// parseMaybeAssign parses an assignment or anything of higher precedence.
// refShorthandDefaultPos records the first `{a = 1}` shorthand default,
// which is only valid when the expression becomes a pattern; without a ref
// such a default is an error here.
func (p *Parser) parseMaybeAssign(noIn bool, refShorthandDefaultPos *int, afterLeftParse parenItemFunc, refNeedsArrowPos *int) *ast.Node {
	p.enter()
	defer p.leave()

	start, startLoc := p.state.Start, p.state.StartLoc
	if p.isContextual("yield") && p.state.InGenerator {
		left := p.parseYield()
		if afterLeftParse != nil {
			left = afterLeftParse(left, start, startLoc)
		}
		return left
	}

	failOnShorthandAssign := false
	if refShorthandDefaultPos == nil {
		refShorthandDefaultPos = new(int)
		failOnShorthandAssign = true
	}
	if p.match(lexer.PAREN_L) || p.match(lexer.NAME) {
		p.state.PotentialArrowAt = p.state.Start
	}

	left := p.parseMaybeConditional(noIn, refShorthandDefaultPos, refNeedsArrowPos)
	if afterLeftParse != nil {
		left = afterLeftParse(left, start, startLoc)
	}

	if p.state.Type.IsAssign() {
		node := p.startNodeAt(start, startLoc)
		op := p.state.Value
		node.Operator = op
		if p.match(lexer.EQ) {
			node.Left = p.g.toAssignable(left, false, "assignment expression")
		} else {
			node.Left = left
		}
		*refShorthandDefaultPos = 0
		p.g.checkLVal(left, false, nil, "assignment expression")

		if left.Parenthesized() {
			switch left.Type {
			case "ObjectPattern":
				p.raise(left.Start, "You're trying to assign to a parenthesized expression, eg. instead of `({a}) = 0` use `({a} = 0)`")
			case "ArrayPattern":
				p.raise(left.Start, "You're trying to assign to a parenthesized expression, eg. instead of `([a]) = 0` use `([a] = 0)`")
			}
		}

		p.next()
		node.Right = p.g.parseMaybeAssign(noIn, nil, nil, nil)
		return p.finishNode(node, "AssignmentExpression")
	}
	if failOnShorthandAssign && *refShorthandDefaultPos != 0 {
		p.unexpectedAt(*refShorthandDefaultPos, "")
	}
	return left
}

func (p *Parser) parseMaybeConditional(noIn bool, refShorthandDefaultPos, refNeedsArrowPos *int) *ast.Node {
	start, startLoc := p.state.Start, p.state.StartLoc
	potentialArrowAt := p.state.PotentialArrowAt
	expr := p.parseExprOps(noIn, refShorthandDefaultPos)
	if expr.Type == "ArrowFunctionExpression" && expr.Start == potentialArrowAt {
		return expr
	}
	if refShorthandDefaultPos != nil && *refShorthandDefaultPos != 0 {
		return expr
	}
	return p.g.parseConditional(expr, noIn, start, startLoc, refNeedsArrowPos)
}

func (p *Parser) parseConditional(expr *ast.Node, noIn bool, start int, startLoc ast.Position, refNeedsArrowPos *int) *ast.Node {
	if !p.eat(lexer.QUESTION) {
		return expr
	}
	node := p.startNodeAt(start, startLoc)
	node.Test = expr
	node.Consequent = p.parseAssignExpr()
	p.expect(lexer.COLON)
	node.Alternate = p.g.parseMaybeAssign(noIn, nil, nil, nil)
	return p.finishNode(node, "ConditionalExpression")
}

// --- Operators ---

func (p *Parser) parseExprOps(noIn bool, refShorthandDefaultPos *int) *ast.Node {
	start, startLoc := p.state.Start, p.state.StartLoc
	potentialArrowAt := p.state.PotentialArrowAt
	expr := p.g.parseMaybeUnary(refShorthandDefaultPos)
	if expr.Type == "ArrowFunctionExpression" && expr.Start == potentialArrowAt {
		return expr
	}
	if refShorthandDefaultPos != nil && *refShorthandDefaultPos != 0 {
		return expr
	}
	return p.g.parseExprOp(expr, start, startLoc, -1, noIn)
}

// parseExprOp climbs binary operator precedence starting above minPrec.
func (p *Parser) parseExprOp(left *ast.Node, leftStart int, leftStartLoc ast.Position, minPrec int, noIn bool) *ast.Node {
	prec, ok := p.state.Type.Binop()
	if !ok || (noIn && p.match(lexer.IN)) || prec <= minPrec {
		return left
	}

	node := p.startNodeAt(leftStart, leftStartLoc)
	op := p.state.Type
	node.Left = left
	node.Operator = p.state.Value
	if node.Operator == "**" && left.Type == "UnaryExpression" && !left.ExtraBool("parenthesizedArgument") && !left.Parenthesized() {
		p.raise(left.Argument.Start, "Illegal expression. Wrap left hand side or entire exponentiation in parentheses.")
	}
	if op == lexer.PIPELINE {
		p.expectPlugin("pipelineOperator")
	}
	p.next()

	start, startLoc := p.state.Start, p.state.StartLoc
	if op == lexer.PIPELINE && p.isContextual("await") && p.state.InAsync {
		p.raise(p.state.Start, `Unexpected "await" after pipeline body; await must have parentheses in minimal proposal`)
	}
	nextPrec := prec
	if op.RightAssociative() {
		nextPrec = prec - 1
	}
	node.Right = p.g.parseExprOp(p.g.parseMaybeUnary(nil), start, startLoc, nextPrec, noIn)

	kind := "BinaryExpression"
	if op == lexer.LOGICAL_OR || op == lexer.LOGICAL_AND || op == lexer.NULLISH {
		kind = "LogicalExpression"
	}
	p.finishNode(node, kind)
	return p.g.parseExprOp(node, leftStart, leftStartLoc, minPrec, noIn)
}

func (p *Parser) parseMaybeUnary(refShorthandDefaultPos *int) *ast.Node {
	p.enter()
	defer p.leave()

	if p.isContextual("await") && p.state.InAsync {
		return p.parseAwait()
	}
	if p.state.Type.IsPrefix() {
		node := p.startNode()
		update := p.match(lexer.INC_DEC)
		node.Operator = p.state.Value
		node.Prefix = true
		if p.match(lexer.THROW) {
			p.expectPlugin("throwExpressions")
		}
		p.next()

		argType := p.state.Type
		node.Argument = p.g.parseMaybeUnary(nil)
		node.SetExtra("parenthesizedArgument", argType == lexer.PAREN_L && !node.Argument.Parenthesized())
		if refShorthandDefaultPos != nil && *refShorthandDefaultPos != 0 {
			p.unexpectedAt(*refShorthandDefaultPos, "")
		}

		if update {
			p.g.checkLVal(node.Argument, false, nil, "prefix operation")
		} else if p.state.Strict && node.Operator == "delete" {
			arg := node.Argument
			if arg.Type == "Identifier" {
				p.raise(node.Start, "Deleting local variable in strict mode")
			} else if arg.Type == "MemberExpression" && arg.Property.Type == "PrivateName" {
				p.raise(node.Start, "Deleting a private field is not allowed")
			}
		}
		if update {
			return p.finishNode(node, "UpdateExpression")
		}
		return p.finishNode(node, "UnaryExpression")
	}

	start, startLoc := p.state.Start, p.state.StartLoc
	expr := p.parseExprSubscriptsRef(refShorthandDefaultPos)
	if refShorthandDefaultPos != nil && *refShorthandDefaultPos != 0 {
		return expr
	}
	for p.state.Type.IsPostfix() && !p.canInsertSemicolon() {
		node := p.startNodeAt(start, startLoc)
		node.Operator = p.state.Value
		node.Prefix = false
		node.Argument = expr
		p.g.checkLVal(expr, false, nil, "postfix operation")
		p.next()
		expr = p.finishNode(node, "UpdateExpression")
	}
	return expr
}

// --- Subscripts ---

func (p *Parser) parseExprSubscripts() *ast.Node {
	return p.parseExprSubscriptsRef(nil)
}

func (p *Parser) parseExprSubscriptsRef(refShorthandDefaultPos *int) *ast.Node {
	start, startLoc := p.state.Start, p.state.StartLoc
	potentialArrowAt := p.state.PotentialArrowAt
	expr := p.g.parseExprAtom(refShorthandDefaultPos)
	if expr.Type == "ArrowFunctionExpression" && expr.Start == potentialArrowAt {
		return expr
	}
	if refShorthandDefaultPos != nil && *refShorthandDefaultPos != 0 {
		return expr
	}
	return p.g.parseSubscripts(expr, start, startLoc, false)
}

func (p *Parser) parseSubscripts(base *ast.Node, start int, startLoc ast.Position, noCalls bool) *ast.Node {
	st := &subscriptState{}
	for !st.stop {
		base = p.g.parseSubscript(base, start, startLoc, noCalls, st)
	}
	return base
}

// parseSubscript parses one member access, call, tagged template or bind
// after base, or sets st.stop.
func (p *Parser) parseSubscript(base *ast.Node, start int, startLoc ast.Position, noCalls bool, st *subscriptState) *ast.Node {
	switch {
	case !noCalls && p.match(lexer.DOUBLE_COLON):
		p.expectPlugin("functionBind")
		p.next()
		node := p.startNodeAt(start, startLoc)
		node.Object = base
		node.Callee = p.parseNoCallExpr()
		st.stop = true
		return p.g.parseSubscripts(p.finishNode(node, "BindExpression"), start, startLoc, noCalls)

	case p.match(lexer.QUESTION_DOT):
		st.optionalChainMember = true
		if noCalls && p.peek().Type == lexer.PAREN_L {
			st.stop = true
			return base
		}
		p.next()
		node := p.startNodeAt(start, startLoc)
		switch {
		case p.eat(lexer.BRACKET_L):
			node.Object = base
			node.Property = p.parseExpression(false, nil)
			node.Computed = true
			node.Optional = true
			p.expect(lexer.BRACKET_R)
			return p.finishNode(node, "OptionalMemberExpression")
		case p.eat(lexer.PAREN_L):
			possibleAsync := p.atPossibleAsync(base)
			node.Callee = base
			node.Arguments = p.parseCallExpressionArguments(lexer.PAREN_R, possibleAsync)
			node.Optional = true
			return p.finishNode(node, "OptionalCallExpression")
		default:
			node.Object = base
			node.Property = p.parseIdentifier(true)
			node.Optional = true
			return p.finishNode(node, "OptionalMemberExpression")
		}

	case p.eat(lexer.DOT):
		node := p.startNodeAt(start, startLoc)
		node.Object = base
		node.Property = p.parseMaybePrivateName()
		if st.optionalChainMember {
			return p.finishNode(node, "OptionalMemberExpression")
		}
		return p.finishNode(node, "MemberExpression")

	case p.eat(lexer.BRACKET_L):
		node := p.startNodeAt(start, startLoc)
		node.Object = base
		node.Property = p.parseExpression(false, nil)
		node.Computed = true
		p.expect(lexer.BRACKET_R)
		if st.optionalChainMember {
			return p.finishNode(node, "OptionalMemberExpression")
		}
		return p.finishNode(node, "MemberExpression")

	case !noCalls && p.match(lexer.PAREN_L):
		possibleAsync := p.atPossibleAsync(base)
		p.next()
		node := p.startNodeAt(start, startLoc)
		node.Callee = base

		oldYield := p.state.YieldInArrowParams
		p.state.YieldInArrowParams = -1
		node.Arguments = p.parseCallExpressionArguments(lexer.PAREN_R, possibleAsync)
		if st.optionalChainMember {
			p.finishNode(node, "OptionalCallExpression")
		} else {
			p.finishCallExpression(node)
		}

		if possibleAsync && p.g.shouldParseAsyncArrow() {
			st.stop = true
			return p.g.parseAsyncArrowFromCallExpression(p.startNodeAt(start, startLoc), node)
		}
		p.g.toReferencedList(node.Arguments, false)
		p.state.YieldInArrowParams = oldYield
		return node

	case p.match(lexer.BACK_QUOTE):
		node := p.startNodeAt(start, startLoc)
		node.Tag = base
		node.Quasi = p.parseTemplate(true)
		if st.optionalChainMember {
			p.raise(start, "Tagged Template Literals are not allowed in optionalChain")
		}
		return p.finishNode(node, "TaggedTemplateExpression")
	}

	st.stop = true
	return base
}

// atPossibleAsync reports whether base is an `async` that may start an
// async arrow function.
func (p *Parser) atPossibleAsync(base *ast.Node) bool {
	return p.state.PotentialArrowAt == base.Start &&
		base.Type == "Identifier" && base.Name == "async" &&
		!p.canInsertSemicolon()
}

func (p *Parser) finishCallExpression(node *ast.Node) *ast.Node {
	if node.Callee.Type == "Import" {
		if len(node.Arguments) != 1 {
			p.raise(node.Start, "import() requires exactly one argument")
		}
		if arg := node.Arguments[0]; arg != nil && arg.Type == "SpreadElement" {
			p.raise(arg.Start, "... is not allowed in import()")
		}
	}
	return p.finishNode(node, "CallExpression")
}

func (p *Parser) parseCallExpressionArguments(close lexer.TokenType, possibleAsyncArrow bool) []*ast.Node {
	elts := []*ast.Node{}
	innerParenStart := -1
	first := true
	for !p.eat(close) {
		if first {
			first = false
		} else {
			p.expect(lexer.COMMA)
			if p.eat(close) {
				break
			}
		}
		if p.match(lexer.PAREN_L) && innerParenStart < 0 {
			innerParenStart = p.state.Start
		}
		var ref, refArrow *int
		if possibleAsyncArrow {
			ref, refArrow = new(int), new(int)
		}
		elts = append(elts, p.g.parseExprListItem(false, ref, refArrow))
	}
	if possibleAsyncArrow && innerParenStart >= 0 && p.g.shouldParseAsyncArrow() {
		p.unexpected()
	}
	return elts
}

func (p *Parser) shouldParseAsyncArrow() bool {
	return p.match(lexer.ARROW)
}

func (p *Parser) parseAsyncArrowFromCallExpression(node, call *ast.Node) *ast.Node {
	oldYield := p.state.YieldInArrowParams
	p.state.YieldInArrowParams = -1
	p.expect(lexer.ARROW)
	p.parseArrowExpression(node, call.Arguments, true)
	p.state.YieldInArrowParams = oldYield
	return node
}

// parseNoCallExpr parses an atom with member accesses but no calls.
func (p *Parser) parseNoCallExpr() *ast.Node {
	start, startLoc := p.state.Start, p.state.StartLoc
	return p.g.parseSubscripts(p.g.parseExprAtom(nil), start, startLoc, true)
}

// --- Atoms ---

func (p *Parser) parseExprAtom(refShorthandDefaultPos *int) *ast.Node {
	canBeArrow := p.state.PotentialArrowAt == p.state.Start

	switch p.state.Type {
	case lexer.SUPER:
		if p.state.InMethod == "" && !p.state.InClassProperty {
			p.raise(p.state.Start, "super is only allowed in object methods and classes")
		}
		node := p.startNode()
		p.next()
		if !p.match(lexer.PAREN_L) && !p.match(lexer.BRACKET_L) && !p.match(lexer.DOT) {
			p.unexpected()
		}
		if p.match(lexer.PAREN_L) && p.state.InMethod != "constructor" {
			p.raise(node.Start, "super() is only valid inside a class constructor. Make sure the method name is spelled exactly as 'constructor'.")
		}
		return p.finishNode(node, "Super")

	case lexer.IMPORT:
		if p.peek().Type == lexer.DOT {
			return p.parseImportMetaProperty()
		}
		node := p.startNode()
		p.next()
		if !p.match(lexer.PAREN_L) {
			p.unexpectedAt(p.state.Start, lexer.PAREN_L)
		}
		return p.finishNode(node, "Import")

	case lexer.THIS:
		node := p.startNode()
		p.next()
		return p.finishNode(node, "ThisExpression")

	case lexer.NAME:
		node := p.startNode()
		containsEsc := p.state.ContainsEsc
		id := p.parseIdentifier(false)
		switch {
		case !containsEsc && id.Name == "async" && p.match(lexer.FUNCTION) && !p.canInsertSemicolon():
			p.next()
			return p.parseFunction(node, false, false, true, false)
		case canBeArrow && id.Name == "async" && p.match(lexer.NAME):
			oldYield := p.state.YieldInArrowParams
			p.state.YieldInArrowParams = -1
			params := []*ast.Node{p.parseIdentifier(false)}
			p.expect(lexer.ARROW)
			p.parseArrowExpression(node, params, true)
			p.state.YieldInArrowParams = oldYield
			return node
		case canBeArrow && !p.canInsertSemicolon() && p.eat(lexer.ARROW):
			oldYield := p.state.YieldInArrowParams
			p.state.YieldInArrowParams = -1
			p.parseArrowExpression(node, []*ast.Node{id}, false)
			p.state.YieldInArrowParams = oldYield
			return node
		}
		return id

	case lexer.DO:
		p.expectPlugin("doExpressions")
		node := p.startNode()
		p.next()
		oldInFunction, oldLabels := p.state.InFunction, p.state.Labels
		p.state.Labels = nil
		p.state.InFunction = false
		node.Body = p.parseBlock(false)
		p.state.InFunction, p.state.Labels = oldInFunction, oldLabels
		return p.finishNode(node, "DoExpression")

	case lexer.REGEXP:
		node := p.startNode()
		node.Pattern = p.state.Value
		node.Flags = p.state.Flags
		node.SetExtra("raw", p.input[p.state.Start:p.state.End])
		p.next()
		return p.finishNode(node, "RegExpLiteral")

	case lexer.NUM:
		return p.parseLiteral(p.state.Num, "NumericLiteral")

	case lexer.BIGINT:
		return p.parseLiteral(p.state.Value, "BigIntLiteral")

	case lexer.STRING:
		return p.parseLiteral(p.state.Value, "StringLiteral")

	case lexer.NULL:
		node := p.startNode()
		p.next()
		return p.finishNode(node, "NullLiteral")

	case lexer.TRUE, lexer.FALSE:
		return p.parseBooleanLiteral()

	case lexer.PAREN_L:
		return p.g.parseParenAndDistinguishExpression(canBeArrow)

	case lexer.BRACKET_L:
		node := p.startNode()
		p.next()
		node.Elements = p.parseExprList(lexer.BRACKET_R, true, refShorthandDefaultPos)
		p.g.toReferencedList(node.Elements, false)
		return p.finishNode(node, "ArrayExpression")

	case lexer.BRACE_L:
		return p.parseObj(false, refShorthandDefaultPos)

	case lexer.FUNCTION:
		return p.parseFunctionExpression()

	case lexer.AT:
		p.parseDecorators(false)
		fallthrough
	case lexer.CLASS:
		node := p.startNode()
		p.takeDecorators(node)
		return p.parseClass(node, false, false)

	case lexer.NEW:
		return p.parseNew()

	case lexer.BACK_QUOTE:
		return p.parseTemplate(false)

	case lexer.DOUBLE_COLON:
		p.expectPlugin("functionBind")
		node := p.startNode()
		p.next()
		node.Callee = p.parseNoCallExpr()
		if node.Callee.Type != "MemberExpression" {
			p.raise(node.Callee.Start, "Binding should be performed on object property.")
		}
		return p.finishNode(node, "BindExpression")
	}

	p.unexpected()
	return nil
}

// parseLiteral finishes the current literal token as a node of kind.
func (p *Parser) parseLiteral(value any, kind string) *ast.Node {
	node := p.startNode()
	node.SetExtra("rawValue", value)
	node.SetExtra("raw", p.input[p.state.Start:p.state.End])
	node.LitValue = value
	p.next()
	return p.finishNode(node, kind)
}

func (p *Parser) parseBooleanLiteral() *ast.Node {
	node := p.startNode()
	node.LitValue = p.match(lexer.TRUE)
	p.next()
	return p.finishNode(node, "BooleanLiteral")
}

// --- Identifiers ---

func (p *Parser) parseIdentifier(liberal bool) *ast.Node {
	node := p.startNode()
	node.Name = p.parseIdentifierName(node.Start, liberal)
	return p.finishNode(node, "Identifier")
}

// parseIdentifierName reads a name; liberal accepts reserved words, as in
// property names.
func (p *Parser) parseIdentifierName(pos int, liberal bool) string {
	var name string
	switch {
	case p.match(lexer.NAME):
		name = p.state.Value
	case p.state.Type.IsKeyword():
		name = string(p.state.Type)
	default:
		p.unexpected()
	}
	if !liberal {
		p.g.checkReservedWord(name, p.state.Start, p.state.Type.IsKeyword(), false)
		if name == "await" && p.state.InAsync {
			p.raise(pos, "invalid use of await inside of an async function")
		}
	}
	p.next()
	return name
}

func (p *Parser) createIdentifier(node *ast.Node, name string) *ast.Node {
	node.Name = name
	return p.finishNode(node, "Identifier")
}

// --- Meta properties ---

func (p *Parser) parseFunctionExpression() *ast.Node {
	node := p.startNode()
	meta := p.startNode()
	p.next()
	meta = p.createIdentifier(meta, "function")
	if p.state.InGenerator && p.eat(lexer.DOT) {
		return p.parseMetaProperty(node, meta, "sent")
	}
	return p.parseFunction(node, false, false, false, false)
}

func (p *Parser) parseMetaProperty(node, meta *ast.Node, propertyName string) *ast.Node {
	node.Meta = meta
	if meta.Name == "function" && propertyName == "sent" {
		if p.isContextual(propertyName) {
			p.expectPlugin("functionSent")
		} else if !p.hasPlugin("functionSent") {
			p.unexpected()
		}
	}
	containsEsc := p.state.ContainsEsc
	node.Property = p.parseIdentifier(true)
	if node.Property.Name != propertyName || containsEsc {
		p.raise(node.Property.Start, "The only valid meta property for %s is %s.%s", meta.Name, meta.Name, propertyName)
	}
	return p.finishNode(node, "MetaProperty")
}

func (p *Parser) parseImportMetaProperty() *ast.Node {
	node := p.startNode()
	id := p.parseIdentifier(true)
	p.expect(lexer.DOT)
	if !p.isContextual("meta") {
		p.raise(id.Start, "Dynamic imports require a parameter: import('a.js')")
	}
	if !p.inModule {
		p.raise(id.Start, `import.meta may appear only with 'sourceType: "module"'`)
	}
	p.sawUnambiguousESM = true
	return p.parseMetaProperty(node, id, "meta")
}

func (p *Parser) parseNew() *ast.Node {
	node := p.startNode()
	meta := p.parseIdentifier(true)

	if p.eat(lexer.DOT) {
		metaProp := p.parseMetaProperty(node, meta, "target")
		if !p.state.InFunction && !p.state.InClassProperty {
			p.raise(metaProp.Start, "new.target can only be used in functions or class properties")
		}
		return metaProp
	}

	node.Callee = p.parseNoCallExpr()
	if node.Callee.Type == "OptionalMemberExpression" || node.Callee.Type == "OptionalCallExpression" {
		p.raise(p.state.LastTokEnd, "constructors in/after an Optional Chain are not allowed")
	}
	if p.match(lexer.QUESTION_DOT) {
		p.raise(p.state.Start, "constructors in/after an Optional Chain are not allowed")
	}
	p.g.parseNewArguments(node)
	return p.finishNode(node, "NewExpression")
}

func (p *Parser) parseNewArguments(node *ast.Node) {
	if p.eat(lexer.PAREN_L) {
		args := p.parseExprList(lexer.PAREN_R, false, nil)
		p.g.toReferencedList(args, false)
		node.Arguments = args
		return
	}
	node.Arguments = []*ast.Node{}
}

// --- Templates ---

func (p *Parser) parseTemplateElement(isTagged bool) *ast.Node {
	elem := p.startNode()
	raw := p.input[p.state.Start:p.state.End]
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	tv := &ast.TemplateValue{Raw: raw}
	if p.state.Invalid {
		if !isTagged {
			p.raise(p.state.Start, "Invalid escape sequence in template")
		}
	} else {
		cooked := p.state.Value
		tv.Cooked = &cooked
	}
	elem.TemplateValue = tv
	p.next()
	elem.Tail = p.match(lexer.BACK_QUOTE)
	return p.finishNode(elem, "TemplateElement")
}

func (p *Parser) parseTemplate(isTagged bool) *ast.Node {
	node := p.startNode()
	p.next()
	node.Expressions = []*ast.Node{}
	cur := p.parseTemplateElement(isTagged)
	node.Quasis = []*ast.Node{cur}
	for !cur.Tail {
		p.expect(lexer.DOLLAR_BRACE_L)
		node.Expressions = append(node.Expressions, p.parseExpression(false, nil))
		p.expect(lexer.BRACE_R)
		cur = p.parseTemplateElement(isTagged)
		node.Quasis = append(node.Quasis, cur)
	}
	p.next()
	return p.finishNode(node, "TemplateLiteral")
}

// --- Objects ---

// parseObj parses an object literal, or an object pattern when isPattern.
func (p *Parser) parseObj(isPattern bool, refShorthandDefaultPos *int) *ast.Node {
	var decorators []*ast.Node
	propHash := map[string]bool{}
	first := true
	node := p.startNode()
	node.Properties = []*ast.Node{}
	p.next()
	firstRestLocation := -1

	for !p.eat(lexer.BRACE_R) {
		if first {
			first = false
		} else {
			p.expect(lexer.COMMA)
			if p.eat(lexer.BRACE_R) {
				break
			}
		}

		if p.match(lexer.AT) {
			if p.hasPlugin("decorators") {
				p.raise(p.state.Start, "Stage 2 decorators disallow object literal property decorators")
			}
			for p.match(lexer.AT) {
				decorators = append(decorators, p.parseDecorator())
			}
		}

		prop := p.startNode()
		if len(decorators) > 0 {
			prop.Decorators = decorators
			decorators = nil
		}

		if p.match(lexer.ELLIPSIS) {
			var ref *int
			if isPattern {
				ref = new(int)
			}
			prop = p.parseSpread(ref)
			if isPattern {
				p.g.toAssignable(prop, true, "object pattern")
			}
			node.Properties = append(node.Properties, prop)
			if !isPattern {
				continue
			}
			position := p.state.Start
			switch {
			case firstRestLocation >= 0:
				p.raise(firstRestLocation, "Cannot have multiple rest elements when destructuring")
			case p.eat(lexer.BRACE_R):
				return p.finishNode(node, "ObjectPattern")
			case p.match(lexer.COMMA) && p.peek().Type == lexer.BRACE_R:
				p.raise(position, "A trailing comma is not permitted after the rest element")
			}
			firstRestLocation = position
			continue
		}

		start, startLoc := p.state.Start, p.state.StartLoc
		isGenerator, isAsync := false, false
		if !isPattern {
			isGenerator = p.eat(lexer.STAR)
		}
		containsEsc := p.state.ContainsEsc

		if !isPattern && p.isContextual("async") {
			if isGenerator {
				p.unexpected()
			}
			asyncID := p.parseIdentifier(false)
			if p.match(lexer.COLON) || p.match(lexer.PAREN_L) || p.match(lexer.BRACE_R) || p.match(lexer.EQ) || p.match(lexer.COMMA) {
				prop.Key = asyncID
				prop.Computed = false
			} else {
				isAsync = true
				isGenerator = p.eat(lexer.STAR)
				p.g.parsePropertyName(prop)
			}
		} else {
			p.g.parsePropertyName(prop)
		}

		prop = p.g.parseObjPropValue(prop, start, startLoc, isGenerator, isAsync, isPattern, refShorthandDefaultPos, containsEsc)
		p.g.checkPropClash(prop, propHash)
		if prop.Shorthand {
			prop.SetExtra("shorthand", true)
		}
		node.Properties = append(node.Properties, prop)
	}

	if firstRestLocation >= 0 {
		p.raise(firstRestLocation, "The rest element has to be the last element when destructuring")
	}
	if len(decorators) > 0 {
		p.raise(p.state.Start, "You have trailing decorators with no property")
	}
	if isPattern {
		return p.finishNode(node, "ObjectPattern")
	}
	return p.finishNode(node, "ObjectExpression")
}

func (p *Parser) isGetterOrSetterMethod(prop *ast.Node, isPattern bool) bool {
	if isPattern || prop.Computed || prop.Key.Type != "Identifier" {
		return false
	}
	if prop.Key.Name != "get" && prop.Key.Name != "set" {
		return false
	}
	return p.match(lexer.STRING) || p.match(lexer.NUM) || p.match(lexer.BRACKET_L) ||
		p.match(lexer.NAME) || p.state.Type.IsKeyword()
}

func (p *Parser) parseObjectMethod(prop *ast.Node, isGenerator, isAsync, isPattern, containsEsc bool) *ast.Node {
	if isAsync || isGenerator || p.match(lexer.PAREN_L) {
		if isPattern {
			p.unexpected()
		}
		prop.Kind = "method"
		prop.Method = true
		return p.g.parseMethod(prop, isGenerator, isAsync, false, "ObjectMethod")
	}
	if !containsEsc && p.isGetterOrSetterMethod(prop, isPattern) {
		prop.Kind = prop.Key.Name
		p.g.parsePropertyName(prop)
		p.g.parseMethod(prop, false, false, false, "ObjectMethod")
		p.g.checkGetterSetterParams(prop)
		return prop
	}
	return nil
}

func (p *Parser) parseObjectProperty(prop *ast.Node, start int, startLoc ast.Position, isPattern bool, refShorthandDefaultPos *int) *ast.Node {
	prop.Shorthand = false
	if p.eat(lexer.COLON) {
		if isPattern {
			prop.Value = p.g.parseMaybeDefault(p.state.Start, p.state.StartLoc, nil)
		} else {
			prop.Value = p.g.parseMaybeAssign(false, refShorthandDefaultPos, nil, nil)
		}
		return p.finishNode(prop, "ObjectProperty")
	}

	if prop.Computed || prop.Key.Type != "Identifier" {
		return nil
	}
	p.g.checkReservedWord(prop.Key.Name, prop.Key.Start, true, true)
	switch {
	case isPattern:
		prop.Value = p.g.parseMaybeDefault(start, startLoc, prop.Key.Clone())
	case p.match(lexer.EQ) && refShorthandDefaultPos != nil:
		if *refShorthandDefaultPos == 0 {
			*refShorthandDefaultPos = p.state.Start
		}
		prop.Value = p.g.parseMaybeDefault(start, startLoc, prop.Key.Clone())
	default:
		prop.Value = prop.Key.Clone()
	}
	prop.Shorthand = true
	return p.finishNode(prop, "ObjectProperty")
}

func (p *Parser) parseObjPropValue(prop *ast.Node, start int, startLoc ast.Position, isGenerator, isAsync, isPattern bool, refShorthandDefaultPos *int, containsEsc bool) *ast.Node {
	node := p.g.parseObjectMethod(prop, isGenerator, isAsync, isPattern, containsEsc)
	if node == nil {
		node = p.g.parseObjectProperty(prop, start, startLoc, isPattern, refShorthandDefaultPos)
	}
	if node == nil {
		p.unexpected()
	}
	return node
}

func (p *Parser) parsePropertyName(prop *ast.Node) *ast.Node {
	if p.eat(lexer.BRACKET_L) {
		prop.Computed = true
		prop.Key = p.parseAssignExpr()
		p.expect(lexer.BRACKET_R)
		return prop.Key
	}
	old := p.state.InPropertyName
	p.state.InPropertyName = true
	if p.match(lexer.NUM) || p.match(lexer.STRING) {
		prop.Key = p.g.parseExprAtom(nil)
	} else {
		prop.Key = p.parseMaybePrivateName()
	}
	if prop.Key.Type != "PrivateName" {
		prop.Computed = false
	}
	p.state.InPropertyName = old
	return prop.Key
}

func (p *Parser) checkPropClash(prop *ast.Node, seen map[string]bool) {
	if prop.Computed || prop.Kind != "" || prop.Shorthand {
		return
	}
	key := prop.Key
	name := key.Name
	if key.Type != "Identifier" {
		name, _ = key.LitValue.(string)
	}
	if name == "__proto__" {
		if seen["__proto__"] {
			p.raise(key.Start, "Redefinition of __proto__ property")
		}
		seen["__proto__"] = true
	}
}

// parseMethod parses the parameters and body of an object or class method.
func (p *Parser) parseMethod(node *ast.Node, isGenerator, isAsync, isConstructor bool, kind string) *ast.Node {
	defer p.saveFunctionContext()()
	p.state.InFunction = true
	p.state.InMethod = node.Kind
	if p.state.InMethod == "" {
		p.state.InMethod = "method"
	}
	p.state.InGenerator = isGenerator
	p.state.InClassProperty = false

	p.initFunction(node, isAsync)
	node.Generator = isGenerator
	p.g.parseFunctionParams(node, isConstructor)
	return p.g.parseFunctionBodyAndFinish(node, kind, false)
}

// --- Arrays and lists ---

func (p *Parser) parseExprList(close lexer.TokenType, allowEmpty bool, refShorthandDefaultPos *int) []*ast.Node {
	elts := []*ast.Node{}
	first := true
	for !p.eat(close) {
		if first {
			first = false
		} else {
			p.expect(lexer.COMMA)
			if p.eat(close) {
				break
			}
		}
		elts = append(elts, p.g.parseExprListItem(allowEmpty, refShorthandDefaultPos, nil))
	}
	return elts
}

func (p *Parser) parseExprListItem(allowEmpty bool, refShorthandDefaultPos, refNeedsArrowPos *int) *ast.Node {
	switch {
	case allowEmpty && p.match(lexer.COMMA):
		return nil
	case p.match(lexer.ELLIPSIS):
		return p.parseSpread(refShorthandDefaultPos)
	}
	return p.g.parseMaybeAssign(false, refShorthandDefaultPos, p.g.parseParenItem, refNeedsArrowPos)
}

func (p *Parser) parseSpread(refShorthandDefaultPos *int) *ast.Node {
	node := p.startNode()
	p.next()
	node.Argument = p.g.parseMaybeAssign(false, refShorthandDefaultPos, nil, nil)
	return p.finishNode(node, "SpreadElement")
}

// --- Parentheses and arrows ---

// parseParenAndDistinguishExpression parses `( ... )` as either a
// parenthesized expression or the parameter list of an arrow function.
func (p *Parser) parseParenAndDistinguishExpression(canBeArrow bool) *ast.Node {
	start, startLoc := p.state.Start, p.state.StartLoc
	p.expect(lexer.PAREN_L)

	oldInArrowParams := p.state.InPossibleArrowParams
	oldYield := p.state.YieldInArrowParams
	p.state.InPossibleArrowParams = true
	p.state.YieldInArrowParams = -1

	innerStart, innerStartLoc := p.state.Start, p.state.StartLoc
	exprList := []*ast.Node{}
	refShorthandDefaultPos := 0
	refNeedsArrowPos := 0
	first := true
	spreadStart, optionalCommaStart := -1, -1

	for !p.match(lexer.PAREN_R) {
		if first {
			first = false
		} else {
			if !p.eat(lexer.COMMA) {
				pos := p.state.Start
				if refNeedsArrowPos != 0 {
					pos = refNeedsArrowPos
				}
				p.unexpectedAt(pos, lexer.COMMA)
			}
			if p.match(lexer.PAREN_R) {
				optionalCommaStart = p.state.Start
				break
			}
		}

		if p.match(lexer.ELLIPSIS) {
			spreadStart = p.state.Start
			spreadLoc := p.state.StartLoc
			exprList = append(exprList, p.g.parseParenItem(p.parseRest(), spreadStart, spreadLoc))
			if p.match(lexer.COMMA) && p.peek().Type == lexer.PAREN_R {
				p.raise(p.state.Start, "A trailing comma is not permitted after the rest element")
			}
			break
		}
		exprList = append(exprList, p.g.parseMaybeAssign(false, &refShorthandDefaultPos, p.g.parseParenItem, &refNeedsArrowPos))
	}

	innerEnd, innerEndLoc := p.state.Start, p.state.StartLoc
	p.expect(lexer.PAREN_R)
	p.state.InPossibleArrowParams = oldInArrowParams

	arrowNode := p.startNodeAt(start, startLoc)
	if canBeArrow && p.g.shouldParseArrow() {
		if arrowNode = p.g.parseArrow(arrowNode); arrowNode != nil {
			for _, param := range exprList {
				if param.Parenthesized() {
					parenStart, _ := param.Extra["parenStart"].(int)
					p.unexpectedAt(parenStart, "")
				}
			}
			p.parseArrowExpression(arrowNode, exprList, false)
			p.state.YieldInArrowParams = oldYield
			return arrowNode
		}
	}
	p.state.YieldInArrowParams = oldYield

	switch {
	case len(exprList) == 0:
		p.unexpectedAt(p.state.LastTokStart, "")
	case optionalCommaStart >= 0:
		p.unexpectedAt(optionalCommaStart, "")
	case spreadStart >= 0:
		p.unexpectedAt(spreadStart, "")
	case refShorthandDefaultPos != 0:
		p.unexpectedAt(refShorthandDefaultPos, "")
	case refNeedsArrowPos != 0:
		p.unexpectedAt(refNeedsArrowPos, "")
	}

	var val *ast.Node
	if len(exprList) > 1 {
		val = p.startNodeAt(innerStart, innerStartLoc)
		val.Expressions = exprList
		p.g.toReferencedList(val.Expressions, true)
		p.finishNodeAt(val, "SequenceExpression", innerEnd, innerEndLoc)
	} else {
		val = exprList[0]
	}
	val.SetExtra("parenthesized", true)
	val.SetExtra("parenStart", start)
	return val
}

func (p *Parser) shouldParseArrow() bool {
	return p.match(lexer.ARROW) && !p.canInsertSemicolon()
}

func (p *Parser) parseArrow(node *ast.Node) *ast.Node {
	if p.eat(lexer.ARROW) {
		return node
	}
	return nil
}

func (p *Parser) parseParenItem(node *ast.Node, start int, startLoc ast.Position) *ast.Node {
	return node
}

// parseArrowExpression finishes an arrow function whose parameters were
// already parsed as expressions.
func (p *Parser) parseArrowExpression(node *ast.Node, params []*ast.Node, isAsync bool) *ast.Node {
	if p.state.YieldInArrowParams >= 0 {
		p.raise(p.state.YieldInArrowParams, "yield is not allowed in the parameters of an arrow function inside a generator")
	}
	restore := p.saveFunctionContext()
	p.state.InFunction = true
	p.initFunction(node, isAsync)
	if params != nil {
		p.g.setArrowFunctionParameters(node, params)
	}
	p.state.InGenerator = false
	p.g.parseFunctionBody(node, true)
	restore()
	return p.finishNode(node, "ArrowFunctionExpression")
}

func (p *Parser) setArrowFunctionParameters(node *ast.Node, params []*ast.Node) {
	node.Params = p.g.toAssignableList(params, true, "arrow function parameters")
}

// --- await / yield ---

func (p *Parser) parseAwait() *ast.Node {
	node := p.startNode()
	p.next()
	if p.state.InParameters {
		p.raise(node.Start, "await is not allowed in async function parameters")
	}
	if p.match(lexer.STAR) {
		p.raise(node.Start, "await* has been removed from the async functions proposal. Use Promise.all() instead.")
	}
	node.Argument = p.g.parseMaybeUnary(nil)
	return p.finishNode(node, "AwaitExpression")
}

func (p *Parser) parseYield() *ast.Node {
	node := p.startNode()
	if p.state.InParameters {
		p.raise(node.Start, "yield is not allowed in generator parameters")
	}
	if p.state.InPossibleArrowParams && p.state.YieldInArrowParams < 0 {
		p.state.YieldInArrowParams = node.Start
	}
	p.next()
	if p.match(lexer.SEMI) || p.canInsertSemicolon() || (!p.match(lexer.STAR) && !p.state.Type.StartsExpr()) {
		node.Delegate = false
		node.Argument = nil
	} else {
		node.Delegate = p.eat(lexer.STAR)
		node.Argument = p.parseAssignExpr()
	}
	return p.finishNode(node, "YieldExpression")
}
