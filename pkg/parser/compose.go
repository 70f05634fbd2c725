package parser

import (
	"strings"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/nooga/esparse/pkg/ast"
	"github.com/nooga/esparse/pkg/lexer"
)

var logger = commonlog.GetLogger("esparse.parser")

// grammar is the set of productions an extension layer may replace. The
// base Parser implements all of them. Internal code always calls these
// through p.g so the outermost layer sees every call; a layer reaches the
// behaviour beneath it through its embedded grammar.
type grammar interface {
	addComment(c *ast.Comment)

	// Statements
	parseStatement(declaration, topLevel bool) *ast.Node
	parseStatementContent(declaration, topLevel bool) *ast.Node
	parseExpressionStatement(node, expr *ast.Node) *ast.Node
	parseBlockBody(node *ast.Node, allowDirectives, topLevel bool, end lexer.TokenType)
	isValidDirective(stmt *ast.Node) bool
	stmtToDirective(stmt *ast.Node) *ast.Node
	isStrictBody(node *ast.Node) bool
	parseVarHead(decl *ast.Node)
	canHaveLeadingDecorator() bool

	// Functions
	parseFunctionParams(node *ast.Node, allowModifiers bool)
	parseFunctionBodyAndFinish(node *ast.Node, kind string, allowExpressionBody bool) *ast.Node
	parseFunctionBody(node *ast.Node, allowExpressionBody bool)
	checkFunctionNameAndParams(node *ast.Node, isArrowFunction bool)
	parseMethod(node *ast.Node, isGenerator, isAsync, isConstructor bool, kind string) *ast.Node

	// Classes
	parseClassId(node *ast.Node, isStatement, optionalID bool)
	parseClassSuper(node *ast.Node)
	parseClassMember(classBody, member *ast.Node, st *classState)
	parseClassMemberWithIsStatic(classBody, member *ast.Node, st *classState, isStatic bool)
	parsePostMemberNameModifiers(member *ast.Node)
	isClassMethod() bool
	isClassProperty() bool
	isNonstaticConstructor(method *ast.Node) bool
	pushClassMethod(classBody, method *ast.Node, isGenerator, isAsync, isConstructor bool)
	pushClassPrivateMethod(classBody, method *ast.Node, isGenerator, isAsync bool)
	parseClassProperty(node *ast.Node) *ast.Node
	parseClassPrivateProperty(node *ast.Node) *ast.Node
	checkGetterSetterParams(method *ast.Node)

	// Modules
	parseImport(node *ast.Node) *ast.Node
	shouldParseDefaultImport(node *ast.Node) bool
	parseImportSpecifiers(node *ast.Node)
	parseImportSpecifier(node *ast.Node)
	parseImportSpecifierLocal(node, specifier *ast.Node, kind, contextDescription string)
	parseExport(node *ast.Node) *ast.Node
	parseExportDeclaration(node *ast.Node) *ast.Node
	parseExportDefaultExpression() *ast.Node
	shouldParseExportDeclaration() bool
	isExportDefaultSpecifier() bool
	shouldParseExportStar() bool
	parseExportStar(node *ast.Node)
	parseExportNamespace(node *ast.Node)
	assertModuleNodeAllowed(node *ast.Node)
	checkDeclaration(node *ast.Node)
	checkDuplicateExports(node *ast.Node, name string)

	// Expressions
	parseMaybeAssign(noIn bool, refShorthandDefaultPos *int, afterLeftParse parenItemFunc, refNeedsArrowPos *int) *ast.Node
	parseConditional(expr *ast.Node, noIn bool, start int, startLoc ast.Position, refNeedsArrowPos *int) *ast.Node
	parseExprOp(left *ast.Node, leftStart int, leftStartLoc ast.Position, minPrec int, noIn bool) *ast.Node
	parseMaybeUnary(refShorthandDefaultPos *int) *ast.Node
	parseSubscripts(base *ast.Node, start int, startLoc ast.Position, noCalls bool) *ast.Node
	parseSubscript(base *ast.Node, start int, startLoc ast.Position, noCalls bool, st *subscriptState) *ast.Node
	shouldParseAsyncArrow() bool
	parseAsyncArrowFromCallExpression(node, call *ast.Node) *ast.Node
	parseNewArguments(node *ast.Node)
	parseExprAtom(refShorthandDefaultPos *int) *ast.Node
	parseParenAndDistinguishExpression(canBeArrow bool) *ast.Node
	parseParenItem(node *ast.Node, start int, startLoc ast.Position) *ast.Node
	shouldParseArrow() bool
	parseArrow(node *ast.Node) *ast.Node
	setArrowFunctionParameters(node *ast.Node, params []*ast.Node)
	parseExprListItem(allowEmpty bool, refShorthandDefaultPos, refNeedsArrowPos *int) *ast.Node
	parsePropertyName(prop *ast.Node) *ast.Node
	parseObjPropValue(prop *ast.Node, start int, startLoc ast.Position, isGenerator, isAsync, isPattern bool, refShorthandDefaultPos *int, containsEsc bool) *ast.Node
	parseObjectMethod(prop *ast.Node, isGenerator, isAsync, isPattern, containsEsc bool) *ast.Node
	parseObjectProperty(prop *ast.Node, start int, startLoc ast.Position, isPattern bool, refShorthandDefaultPos *int) *ast.Node
	checkPropClash(prop *ast.Node, seen map[string]bool)

	// Patterns
	toAssignable(node *ast.Node, isBinding bool, contextDescription string) *ast.Node
	toAssignableList(exprList []*ast.Node, isBinding bool, contextDescription string) []*ast.Node
	toAssignableObjectExpressionProp(prop *ast.Node, isBinding, isLast bool)
	toReferencedList(exprList []*ast.Node, isParenthesizedExpr bool) []*ast.Node
	checkLVal(expr *ast.Node, isBinding bool, checkClashes map[string]bool, contextDescription string)
	parseBindingAtom() *ast.Node
	parseMaybeDefault(start int, startLoc ast.Position, left *ast.Node) *ast.Node
	parseAssignableListItem(allowModifiers bool, decorators []*ast.Node) *ast.Node
	parseAssignableListItemTypes(param *ast.Node) *ast.Node
	checkReservedWord(word string, start int, checkKeywords, isBinding bool)

	// Markup
	jsxParseOpeningElementAfterName(node *ast.Node) *ast.Node
}

// parenItemFunc is called on the left side of an assignment right after it
// was parsed.
type parenItemFunc func(left *ast.Node, start int, startLoc ast.Position) *ast.Node

// layerFunc wraps next with one extension layer bound to p.
type layerFunc func(p *Parser, next grammar) grammar

// layerOrder is the fixed composition order, innermost first.
var layerOrder = []struct {
	name  string
	build layerFunc
}{
	{"estree", newEstreeLayer},
	{"jsx", newJSXLayer},
	{"flow", newFlowLayer},
	{"typescript", newTypeScriptLayer},
}

// composition is the resolved layer stack for one plugin name set. It is
// immutable and shared by every parser built from the same set.
type composition struct {
	key    string
	layers []layerFunc
	lexer  lexer.Options
}

var compositions sync.Map // key -> *composition

// compose returns the memoized composition for the plugin set.
func compose(ps Plugins) *composition {
	names := ps.Names()
	key := strings.Join(names, "+")
	if c, ok := compositions.Load(key); ok {
		logger.Debugf("composition cache hit: %q", key)
		return c.(*composition)
	}
	c := &composition{
		key: key,
		lexer: lexer.Options{
			JSX:          ps.Has("jsx"),
			Flow:         ps.Has("flow"),
			FlowComments: ps.Has("flow") && ps.Has("flowComments"),
			FunctionBind: ps.Has("functionBind"),
		},
	}
	for _, l := range layerOrder {
		if ps.Has(l.name) {
			c.layers = append(c.layers, l.build)
		}
	}
	actual, loaded := compositions.LoadOrStore(key, c)
	if !loaded {
		logger.Debugf("composed grammar %q with %d layers", key, len(c.layers))
	}
	return actual.(*composition)
}

// bind stacks the layers of c on top of p.
func (c *composition) bind(p *Parser) grammar {
	var g grammar = p
	for _, build := range c.layers {
		g = build(p, g)
	}
	return g
}
