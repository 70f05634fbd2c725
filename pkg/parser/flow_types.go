package parser

import (
	"github.com/nooga/esparse/pkg/ast"
	"github.com/nooga/esparse/pkg/lexer"
)

var primitiveTypes = map[string]bool{
	"any": true, "bool": true, "boolean": true, "empty": true, "false": true,
	"mixed": true, "null": true, "number": true, "static": true, "string": true,
	"true": true, "typeof": true, "void": true,
}

var exportSuggestions = map[string]string{
	"const":     "declare export var",
	"let":       "declare export var",
	"type":      "export type",
	"interface": "export interface",
}

// --- Annotations ---

// flowParseTypeInitialiser consumes tok and parses the type after it.
func (l *flowLayer) flowParseTypeInitialiser(tok lexer.TokenType) *ast.Node {
	p := l.p
	old := p.state.InType
	p.state.InType = true
	p.expect(tok)
	typ := l.flowParseType()
	p.state.InType = old
	return typ
}

// Syntax: %checks | %checks(expr)
func (l *flowLayer) flowParsePredicate() *ast.Node {
	p := l.p
	node := p.startNode()
	moduloLoc, moduloPos := p.state.StartLoc, p.state.Start
	p.expect(lexer.MODULO)
	checksLoc := p.state.StartLoc
	p.expectContextual("checks")
	if moduloLoc.Line != checksLoc.Line || moduloLoc.Column != checksLoc.Column-1 {
		p.raise(moduloPos, "Spaces between ´%%´ and ´checks´ are not allowed here.")
	}
	if p.eat(lexer.PAREN_L) {
		node.Value = p.parseExpression(false, nil)
		p.expect(lexer.PAREN_R)
		return p.finishNode(node, "DeclaredPredicate")
	}
	return p.finishNode(node, "InferredPredicate")
}

// flowParseTypeAndPredicateInitialiser parses `: Type`, `: %checks` or
// `: Type %checks`.
func (l *flowLayer) flowParseTypeAndPredicateInitialiser() (typ, predicate *ast.Node) {
	p := l.p
	old := p.state.InType
	p.state.InType = true
	p.expect(lexer.COLON)
	if p.match(lexer.MODULO) {
		p.state.InType = old
		return nil, l.flowParsePredicate()
	}
	typ = l.flowParseType()
	p.state.InType = old
	if p.match(lexer.MODULO) {
		predicate = l.flowParsePredicate()
	}
	return typ, predicate
}

func (l *flowLayer) flowParseTypeAnnotation() *ast.Node {
	p := l.p
	node := p.startNode()
	node.TypeAnnotation = l.flowParseTypeInitialiser(lexer.COLON)
	return p.finishNode(node, "TypeAnnotation")
}

func (l *flowLayer) flowParseTypeAnnotatableIdentifier(allowPrimitiveOverride bool) *ast.Node {
	p := l.p
	var ident *ast.Node
	if allowPrimitiveOverride {
		ident = p.parseIdentifier(false)
	} else {
		ident = l.flowParseRestrictedIdentifier(false)
	}
	if p.match(lexer.COLON) {
		ident.TypeAnnotation = l.flowParseTypeAnnotation()
		p.finishNode(ident, ident.Type)
	}
	return ident
}

// typeCastToParameter turns `(x: T)` into the annotated binding x.
func (l *flowLayer) typeCastToParameter(node *ast.Node) *ast.Node {
	expr := node.Expression
	expr.TypeAnnotation = node.TypeAnnotation
	return l.p.finishNodeAt(expr, expr.Type, node.TypeAnnotation.End, node.TypeAnnotation.Loc.End)
}

// Syntax: + | -
func (l *flowLayer) flowParseVariance() *ast.Node {
	p := l.p
	if !p.match(lexer.PLUS_MIN) {
		return nil
	}
	variance := p.startNode()
	if p.state.Value == "+" {
		variance.Kind = "plus"
	} else {
		variance.Kind = "minus"
	}
	p.next()
	return p.finishNode(variance, "Variance")
}

func (l *flowLayer) checkReservedType(word string, start int) {
	if primitiveTypes[word] {
		l.p.raise(start, "Cannot overwrite primitive type %s", word)
	}
}

func (l *flowLayer) flowParseRestrictedIdentifier(liberal bool) *ast.Node {
	p := l.p
	l.checkReservedType(p.state.Value, p.state.Start)
	return p.parseIdentifier(liberal)
}

// --- Declarations ---

// flowParseDeclare dispatches on the word after `declare`.
func (l *flowLayer) flowParseDeclare(node *ast.Node, insideModule bool) *ast.Node {
	p := l.p
	switch {
	case p.match(lexer.CLASS):
		return l.flowParseDeclareClass(node)
	case p.match(lexer.FUNCTION):
		return l.flowParseDeclareFunction(node)
	case p.match(lexer.VAR):
		return l.flowParseDeclareVariable(node)
	case p.isContextual("module"):
		if p.peek().Type == lexer.DOT {
			return l.flowParseDeclareModuleExports(node)
		}
		if insideModule {
			p.raise(p.state.Start, "`declare module` cannot be used inside another `declare module`")
		}
		return l.flowParseDeclareModule(node)
	case p.isContextual("type"):
		return l.flowParseDeclareTypeAlias(node)
	case p.isContextual("opaque"):
		return l.flowParseDeclareOpaqueType(node)
	case p.isContextual("interface"):
		return l.flowParseDeclareInterface(node)
	case p.match(lexer.EXPORT):
		return l.flowParseDeclareExportDeclaration(node, insideModule)
	}
	p.unexpected()
	return nil
}

func (l *flowLayer) flowParseDeclareClass(node *ast.Node) *ast.Node {
	l.p.next()
	l.flowParseInterfaceish(node, true)
	return l.p.finishNode(node, "DeclareClass")
}

// Syntax: declare function name<T>(params): Return [%checks];
func (l *flowLayer) flowParseDeclareFunction(node *ast.Node) *ast.Node {
	p := l.p
	p.next()

	id := p.parseIdentifier(false)
	node.Id = id
	typeNode := p.startNode()
	typeContainer := p.startNode()

	if p.isRelational("<") {
		typeNode.TypeParameters = l.flowParseTypeParameterDeclaration(true)
	}
	p.expect(lexer.PAREN_L)
	typeNode.Params, typeNode.Rest = l.flowParseFunctionTypeParams(nil)
	p.expect(lexer.PAREN_R)
	typeNode.ReturnType, node.Predicate = l.flowParseTypeAndPredicateInitialiser()

	typeContainer.TypeAnnotation = p.finishNode(typeNode, "FunctionTypeAnnotation")
	id.TypeAnnotation = p.finishNode(typeContainer, "TypeAnnotation")
	p.finishNode(id, id.Type)

	p.semicolon()
	return p.finishNode(node, "DeclareFunction")
}

func (l *flowLayer) flowParseDeclareVariable(node *ast.Node) *ast.Node {
	p := l.p
	p.next()
	node.Id = l.flowParseTypeAnnotatableIdentifier(true)
	p.semicolon()
	return p.finishNode(node, "DeclareVariable")
}

// Syntax: declare module Name|"name" { declarations }
func (l *flowLayer) flowParseDeclareModule(node *ast.Node) *ast.Node {
	p := l.p
	p.next()

	if p.match(lexer.STRING) {
		node.Id = p.g.parseExprAtom(nil)
	} else {
		node.Id = p.parseIdentifier(false)
	}

	block := p.startNode()
	body := []*ast.Node{}
	p.expect(lexer.BRACE_L)
	for !p.match(lexer.BRACE_R) {
		stmt := p.startNode()
		if p.match(lexer.IMPORT) {
			next := p.peek()
			if next.Value != "type" && next.Value != "typeof" {
				p.raise(p.state.Start, "Imports within a `declare module` body must always be `import type` or `import typeof`")
			}
			p.next()
			p.g.parseImport(stmt)
		} else {
			if !p.eatContextual("declare") {
				p.raise(p.state.Start, "Only declares and type imports are allowed inside declare module")
			}
			stmt = l.flowParseDeclare(stmt, true)
		}
		body = append(body, stmt)
	}
	p.expect(lexer.BRACE_R)
	block.BodyList = body
	node.Body = p.finishNode(block, "BlockStatement")

	const mixedExports = "Found both `declare module.exports` and `declare export` in the same module. " +
		"Modules can only have 1 since they are either an ES module or they are a CommonJS module"
	kind := ""
	hasModuleExport := false
	for _, elem := range body {
		switch {
		case isEsModuleType(elem):
			if kind == "CommonJS" {
				p.raise(elem.Start, mixedExports)
			}
			kind = "ES"
		case elem.Type == "DeclareModuleExports":
			if hasModuleExport {
				p.raise(elem.Start, "Duplicate `declare module.exports` statement")
			}
			if kind == "ES" {
				p.raise(elem.Start, mixedExports)
			}
			kind = "CommonJS"
			hasModuleExport = true
		}
	}
	if kind == "" {
		kind = "CommonJS"
	}
	node.Kind = kind
	return p.finishNode(node, "DeclareModule")
}

func isEsModuleType(n *ast.Node) bool {
	if n.Type == "DeclareExportAllDeclaration" {
		return true
	}
	return n.Type == "DeclareExportDeclaration" &&
		(n.Declaration == nil || (n.Declaration.Type != "TypeAlias" && n.Declaration.Type != "InterfaceDeclaration"))
}

func (l *flowLayer) flowParseDeclareExportDeclaration(node *ast.Node, insideModule bool) *ast.Node {
	p := l.p
	p.expect(lexer.EXPORT)

	if p.eat(lexer.DEFAULT) {
		if p.match(lexer.FUNCTION) || p.match(lexer.CLASS) {
			node.Declaration = l.flowParseDeclare(p.startNode(), false)
		} else {
			node.Declaration = l.flowParseType()
			p.semicolon()
		}
		node.IsDefault = true
		return p.finishNode(node, "DeclareExportDeclaration")
	}

	if p.match(lexer.CONST) || p.isLet() ||
		((p.isContextual("type") || p.isContextual("interface")) && !insideModule) {
		word := p.state.Value
		p.raise(p.state.Start, "`declare export %s` is not supported. Use `%s` instead", word, exportSuggestions[word])
	}

	switch {
	case p.match(lexer.VAR) || p.match(lexer.FUNCTION) || p.match(lexer.CLASS) || p.isContextual("opaque"):
		node.Declaration = l.flowParseDeclare(p.startNode(), false)
		node.IsDefault = false
		return p.finishNode(node, "DeclareExportDeclaration")

	case p.match(lexer.STAR) || p.match(lexer.BRACE_L) || p.isContextual("interface") || p.isContextual("type"):
		node = p.g.parseExport(node)
		if node.Type == "ExportNamedDeclaration" {
			node.Type = "ExportDeclaration"
			node.IsDefault = false
			node.ExportKind = ""
		}
		node.Type = "Declare" + node.Type
		return node
	}
	p.unexpected()
	return nil
}

// Syntax: declare module.exports: Type;
func (l *flowLayer) flowParseDeclareModuleExports(node *ast.Node) *ast.Node {
	p := l.p
	p.expectContextual("module")
	p.expect(lexer.DOT)
	p.expectContextual("exports")
	node.TypeAnnotation = l.flowParseTypeAnnotation()
	p.semicolon()
	return p.finishNode(node, "DeclareModuleExports")
}

func (l *flowLayer) flowParseDeclareTypeAlias(node *ast.Node) *ast.Node {
	l.p.next()
	l.flowParseTypeAlias(node)
	return l.p.finishNode(node, "DeclareTypeAlias")
}

func (l *flowLayer) flowParseDeclareOpaqueType(node *ast.Node) *ast.Node {
	l.p.next()
	l.flowParseOpaqueType(node, true)
	return l.p.finishNode(node, "DeclareOpaqueType")
}

func (l *flowLayer) flowParseDeclareInterface(node *ast.Node) *ast.Node {
	l.p.next()
	l.flowParseInterfaceish(node, false)
	return l.p.finishNode(node, "DeclareInterface")
}

// --- Interfaces and aliases ---

// flowParseInterfaceish parses the part shared by interfaces and declared
// classes. A class may extend only one type.
func (l *flowLayer) flowParseInterfaceish(node *ast.Node, isClass bool) {
	p := l.p
	node.Id = l.flowParseRestrictedIdentifier(!isClass)
	if p.isRelational("<") {
		node.TypeParameters = l.flowParseTypeParameterDeclaration(true)
	}

	node.Extends = []*ast.Node{}
	node.Implements = []*ast.Node{}
	node.Mixins = []*ast.Node{}

	if p.eat(lexer.EXTENDS) {
		for {
			node.Extends = append(node.Extends, l.flowParseInterfaceExtends())
			if isClass || !p.eat(lexer.COMMA) {
				break
			}
		}
	}
	if p.eatContextual("mixins") {
		for {
			node.Mixins = append(node.Mixins, l.flowParseInterfaceExtends())
			if !p.eat(lexer.COMMA) {
				break
			}
		}
	}
	if p.eatContextual("implements") {
		for {
			node.Implements = append(node.Implements, l.flowParseInterfaceExtends())
			if !p.eat(lexer.COMMA) {
				break
			}
		}
	}
	node.Body = l.flowParseObjectType(isClass, false, false, isClass)
}

func (l *flowLayer) flowParseInterfaceExtends() *ast.Node {
	p := l.p
	node := p.startNode()
	node.Id = l.flowParseQualifiedTypeIdentifier(p.state.Start, p.state.StartLoc, nil)
	if p.isRelational("<") {
		node.TypeParameters = l.flowParseTypeParameterInstantiation()
	}
	return p.finishNode(node, "InterfaceExtends")
}

func (l *flowLayer) flowParseInterface(node *ast.Node) *ast.Node {
	l.flowParseInterfaceish(node, false)
	return l.p.finishNode(node, "InterfaceDeclaration")
}

// Syntax: type Name<T> = Type;
func (l *flowLayer) flowParseTypeAlias(node *ast.Node) *ast.Node {
	p := l.p
	node.Id = l.flowParseRestrictedIdentifier(false)
	if p.isRelational("<") {
		node.TypeParameters = l.flowParseTypeParameterDeclaration(true)
	}
	node.Right = l.flowParseTypeInitialiser(lexer.EQ)
	p.semicolon()
	return p.finishNode(node, "TypeAlias")
}

// Syntax: opaque type Name<T> [: Super] = Impl;
// A declared opaque type has no implementation type.
func (l *flowLayer) flowParseOpaqueType(node *ast.Node, declare bool) *ast.Node {
	p := l.p
	p.expectContextual("type")
	node.Id = l.flowParseRestrictedIdentifier(true)
	if p.isRelational("<") {
		node.TypeParameters = l.flowParseTypeParameterDeclaration(true)
	}
	if p.match(lexer.COLON) {
		node.Supertype = l.flowParseTypeInitialiser(lexer.COLON)
	}
	if !declare {
		node.Impltype = l.flowParseTypeInitialiser(lexer.EQ)
	}
	p.semicolon()
	return p.finishNode(node, "OpaqueType")
}

// --- Type parameters ---

func (l *flowLayer) flowParseTypeParameter(allowDefault, requireDefault bool) *ast.Node {
	p := l.p
	nodeStart := p.state.Start
	node := p.startNode()

	variance := l.flowParseVariance()
	ident := l.flowParseTypeAnnotatableIdentifier(false)
	node.Name = ident.Name
	node.Variance = variance
	node.Bound = ident.TypeAnnotation

	if p.match(lexer.EQ) {
		if !allowDefault {
			p.unexpected()
		}
		p.next()
		node.Default = l.flowParseType()
	} else if requireDefault {
		p.raise(nodeStart, "Type parameter declaration needs a default, since a preceding type parameter declaration has a default.")
	}
	return p.finishNode(node, "TypeParameter")
}

// Syntax: <+T: Bound = Default, ...>
func (l *flowLayer) flowParseTypeParameterDeclaration(allowDefault bool) *ast.Node {
	p := l.p
	old := p.state.InType
	node := p.startNode()
	node.Params = []*ast.Node{}
	p.state.InType = true

	if p.isRelational("<") || p.match(lexer.JSX_TAG_START) {
		p.next()
	} else {
		p.unexpected()
	}

	defaultRequired := false
	for {
		param := l.flowParseTypeParameter(allowDefault, defaultRequired)
		node.Params = append(node.Params, param)
		if param.Default != nil {
			defaultRequired = true
		}
		if !p.isRelational(">") {
			p.expect(lexer.COMMA)
		}
		if p.isRelational(">") {
			break
		}
	}
	p.expectRelational(">")
	p.state.InType = old
	return p.finishNode(node, "TypeParameterDeclaration")
}

// Syntax: <Type, ...>
func (l *flowLayer) flowParseTypeParameterInstantiation() *ast.Node {
	p := l.p
	node := p.startNode()
	old := p.state.InType
	node.Params = []*ast.Node{}
	p.state.InType = true

	p.expectRelational("<")
	for !p.isRelational(">") {
		node.Params = append(node.Params, l.flowParseType())
		if !p.isRelational(">") {
			p.expect(lexer.COMMA)
		}
	}
	p.expectRelational(">")
	p.state.InType = old
	return p.finishNode(node, "TypeParameterInstantiation")
}

// --- Object types ---

func (l *flowLayer) flowParseInterfaceType() *ast.Node {
	p := l.p
	node := p.startNode()
	p.expectContextual("interface")
	node.Extends = []*ast.Node{}
	if p.eat(lexer.EXTENDS) {
		for {
			node.Extends = append(node.Extends, l.flowParseInterfaceExtends())
			if !p.eat(lexer.COMMA) {
				break
			}
		}
	}
	node.Body = l.flowParseObjectType(false, false, false, false)
	return p.finishNode(node, "InterfaceTypeAnnotation")
}

func (l *flowLayer) flowParseObjectPropertyKey() *ast.Node {
	p := l.p
	if p.match(lexer.NUM) || p.match(lexer.STRING) {
		return p.g.parseExprAtom(nil)
	}
	return p.parseIdentifier(true)
}

// Syntax: [name: Key]: Value | [Key]: Value, after the `[`.
func (l *flowLayer) flowParseObjectTypeIndexer(node *ast.Node, isStatic bool, variance *ast.Node) *ast.Node {
	p := l.p
	node.Static = isStatic
	if p.peek().Type == lexer.COLON {
		node.Id = l.flowParseObjectPropertyKey()
		node.Key = l.flowParseTypeInitialiser(lexer.COLON)
	} else {
		node.Key = l.flowParseType()
	}
	p.expect(lexer.BRACKET_R)
	node.Value = l.flowParseTypeInitialiser(lexer.COLON)
	node.Variance = variance
	return p.finishNode(node, "ObjectTypeIndexer")
}

// Syntax: [[name]]: Type | [[name]](params): Type, after the `[[`.
func (l *flowLayer) flowParseObjectTypeInternalSlot(node *ast.Node, isStatic bool) *ast.Node {
	p := l.p
	node.Static = isStatic
	node.Id = l.flowParseObjectPropertyKey()
	p.expect(lexer.BRACKET_R)
	p.expect(lexer.BRACKET_R)
	if p.isRelational("<") || p.match(lexer.PAREN_L) {
		node.Method = true
		node.Optional = false
		node.Value = l.flowParseObjectTypeMethodish(p.startNodeAt(node.Start, node.Loc.Start))
	} else {
		node.Method = false
		if p.eat(lexer.QUESTION) {
			node.Optional = true
		}
		node.Value = l.flowParseTypeInitialiser(lexer.COLON)
	}
	return p.finishNode(node, "ObjectTypeInternalSlot")
}

func (l *flowLayer) flowParseObjectTypeMethodish(node *ast.Node) *ast.Node {
	p := l.p
	node.Params = []*ast.Node{}
	if p.isRelational("<") {
		node.TypeParameters = l.flowParseTypeParameterDeclaration(false)
	}
	p.expect(lexer.PAREN_L)
	for !p.match(lexer.PAREN_R) && !p.match(lexer.ELLIPSIS) {
		node.Params = append(node.Params, l.flowParseFunctionTypeParam())
		if !p.match(lexer.PAREN_R) {
			p.expect(lexer.COMMA)
		}
	}
	if p.eat(lexer.ELLIPSIS) {
		node.Rest = l.flowParseFunctionTypeParam()
	}
	p.expect(lexer.PAREN_R)
	node.ReturnType = l.flowParseTypeInitialiser(lexer.COLON)
	return p.finishNode(node, "FunctionTypeAnnotation")
}

func (l *flowLayer) flowParseObjectTypeCallProperty(node *ast.Node, isStatic bool) *ast.Node {
	p := l.p
	value := p.startNode()
	node.Static = isStatic
	node.Value = l.flowParseObjectTypeMethodish(value)
	return p.finishNode(node, "ObjectTypeCallProperty")
}

// flowParseObjectType parses `{ ... }`, or `{| ... |}` when allowExact.
func (l *flowLayer) flowParseObjectType(allowStatic, allowExact, allowSpread, allowProto bool) *ast.Node {
	p := l.p
	old := p.state.InType
	p.state.InType = true

	obj := p.startNode()
	obj.CallProperties = []*ast.Node{}
	obj.Properties = []*ast.Node{}
	obj.Indexers = []*ast.Node{}
	obj.InternalSlots = []*ast.Node{}

	endDelim := lexer.BRACE_R
	if allowExact && p.match(lexer.BRACE_BAR_L) {
		p.expect(lexer.BRACE_BAR_L)
		endDelim = lexer.BRACE_BAR_R
		obj.Exact = true
	} else {
		p.expect(lexer.BRACE_L)
	}

	for !p.match(endDelim) {
		isStatic := false
		protoStart := -1
		node := p.startNode()

		if allowProto && p.isContextual("proto") {
			if next := p.peek(); next.Type != lexer.COLON && next.Type != lexer.QUESTION {
				p.next()
				protoStart = p.state.Start
				allowStatic = false
			}
		}
		if allowStatic && p.isContextual("static") {
			if next := p.peek(); next.Type != lexer.COLON && next.Type != lexer.QUESTION {
				p.next()
				isStatic = true
			}
		}

		variance := l.flowParseVariance()

		switch {
		case p.eat(lexer.BRACKET_L):
			if protoStart >= 0 {
				p.unexpectedAt(protoStart, "")
			}
			if p.eat(lexer.BRACKET_L) {
				if variance != nil {
					p.unexpectedAt(variance.Start, "")
				}
				obj.InternalSlots = append(obj.InternalSlots, l.flowParseObjectTypeInternalSlot(node, isStatic))
			} else {
				obj.Indexers = append(obj.Indexers, l.flowParseObjectTypeIndexer(node, isStatic, variance))
			}

		case p.match(lexer.PAREN_L) || p.isRelational("<"):
			if protoStart >= 0 {
				p.unexpectedAt(protoStart, "")
			}
			if variance != nil {
				p.unexpectedAt(variance.Start, "")
			}
			obj.CallProperties = append(obj.CallProperties, l.flowParseObjectTypeCallProperty(node, isStatic))

		default:
			kind := "init"
			if p.isContextual("get") || p.isContextual("set") {
				switch p.peek().Type {
				case lexer.NAME, lexer.STRING, lexer.NUM:
					kind = p.state.Value
					p.next()
				}
			}
			obj.Properties = append(obj.Properties, l.flowParseObjectTypeProperty(node, isStatic, protoStart, variance, kind, allowSpread))
		}

		l.flowObjectTypeSemicolon()
	}

	p.expect(endDelim)
	out := p.finishNode(obj, "ObjectTypeAnnotation")
	p.state.InType = old
	return out
}

func (l *flowLayer) flowParseObjectTypeProperty(node *ast.Node, isStatic bool, protoStart int, variance *ast.Node, kind string, allowSpread bool) *ast.Node {
	p := l.p
	if p.match(lexer.ELLIPSIS) {
		if !allowSpread {
			p.raise(p.state.Start, "Spread operator cannot appear in class or interface definitions")
		}
		if protoStart >= 0 {
			p.unexpectedAt(protoStart, "")
		}
		if variance != nil {
			p.raise(variance.Start, "Spread properties cannot have variance")
		}
		p.expect(lexer.ELLIPSIS)
		node.Argument = l.flowParseType()
		return p.finishNode(node, "ObjectTypeSpreadProperty")
	}

	node.Key = l.flowParseObjectPropertyKey()
	node.Static = isStatic
	node.Proto = protoStart >= 0
	node.Kind = kind

	optional := false
	if p.isRelational("<") || p.match(lexer.PAREN_L) {
		node.Method = true
		if protoStart >= 0 {
			p.unexpectedAt(protoStart, "")
		}
		if variance != nil {
			p.unexpectedAt(variance.Start, "")
		}
		node.Value = l.flowParseObjectTypeMethodish(p.startNodeAt(node.Start, node.Loc.Start))
		if kind == "get" || kind == "set" {
			l.flowCheckGetterSetterParams(node)
		}
	} else {
		if kind != "init" {
			p.unexpected()
		}
		node.Method = false
		if p.eat(lexer.QUESTION) {
			optional = true
		}
		node.Value = l.flowParseTypeInitialiser(lexer.COLON)
		node.Variance = variance
	}
	node.Optional = optional
	return p.finishNode(node, "ObjectTypeProperty")
}

func (l *flowLayer) flowCheckGetterSetterParams(property *ast.Node) {
	p := l.p
	paramCount := 0
	if property.Kind == "set" {
		paramCount = 1
	}
	length := len(property.Value.Params)
	if property.Value.Rest != nil {
		length++
	}
	if length != paramCount {
		if property.Kind == "get" {
			p.raise(property.Start, "getter must not have any formal parameters")
		}
		p.raise(property.Start, "setter must have exactly one formal parameter")
	}
	if property.Kind == "set" && property.Value.Rest != nil {
		p.raise(property.Start, "setter function argument must not be a rest parameter")
	}
}

func (l *flowLayer) flowObjectTypeSemicolon() {
	p := l.p
	if !p.eat(lexer.SEMI) && !p.eat(lexer.COMMA) && !p.match(lexer.BRACE_R) && !p.match(lexer.BRACE_BAR_R) {
		p.unexpected()
	}
}

// --- Type expressions ---

// flowParseQualifiedTypeIdentifier parses a.b.c starting from id, or from a
// fresh identifier when id is nil.
func (l *flowLayer) flowParseQualifiedTypeIdentifier(start int, startLoc ast.Position, id *ast.Node) *ast.Node {
	p := l.p
	node := id
	if node == nil {
		node = p.parseIdentifier(false)
	}
	for p.eat(lexer.DOT) {
		q := p.startNodeAt(start, startLoc)
		q.Qualification = node
		q.Id = p.parseIdentifier(false)
		node = p.finishNode(q, "QualifiedTypeIdentifier")
	}
	return node
}

func (l *flowLayer) flowParseGenericType(start int, startLoc ast.Position, id *ast.Node) *ast.Node {
	p := l.p
	node := p.startNodeAt(start, startLoc)
	node.Id = l.flowParseQualifiedTypeIdentifier(start, startLoc, id)
	if p.isRelational("<") {
		node.TypeParameters = l.flowParseTypeParameterInstantiation()
	}
	return p.finishNode(node, "GenericTypeAnnotation")
}

func (l *flowLayer) flowParseTypeofType() *ast.Node {
	p := l.p
	node := p.startNode()
	p.expect(lexer.TYPEOF)
	node.Argument = l.flowParsePrimaryType()
	return p.finishNode(node, "TypeofTypeAnnotation")
}

// Syntax: [Type, Type,]
func (l *flowLayer) flowParseTupleType() *ast.Node {
	p := l.p
	node := p.startNode()
	node.Types = []*ast.Node{}
	p.expect(lexer.BRACKET_L)
	for p.state.Pos < len(p.input) && !p.match(lexer.BRACKET_R) {
		node.Types = append(node.Types, l.flowParseType())
		if p.match(lexer.BRACKET_R) {
			break
		}
		p.expect(lexer.COMMA)
	}
	p.expect(lexer.BRACKET_R)
	return p.finishNode(node, "TupleTypeAnnotation")
}

// Syntax: name[?]: Type | Type
func (l *flowLayer) flowParseFunctionTypeParam() *ast.Node {
	p := l.p
	node := p.startNode()
	next := p.peek()
	if next.Type == lexer.COLON || next.Type == lexer.QUESTION {
		node.NameNode = p.parseIdentifier(false)
		if p.eat(lexer.QUESTION) {
			node.Optional = true
		}
		node.TypeAnnotation = l.flowParseTypeInitialiser(lexer.COLON)
	} else {
		node.TypeAnnotation = l.flowParseType()
	}
	return p.finishNode(node, "FunctionTypeParam")
}

func (l *flowLayer) reinterpretTypeAsFunctionTypeParam(typ *ast.Node) *ast.Node {
	p := l.p
	node := p.startNodeAt(typ.Start, typ.Loc.Start)
	node.TypeAnnotation = typ
	return p.finishNode(node, "FunctionTypeParam")
}

// flowParseFunctionTypeParams parses parameters up to `)`, appending to
// params.
func (l *flowLayer) flowParseFunctionTypeParams(params []*ast.Node) (list []*ast.Node, rest *ast.Node) {
	p := l.p
	if params == nil {
		params = []*ast.Node{}
	}
	for !p.match(lexer.PAREN_R) && !p.match(lexer.ELLIPSIS) {
		params = append(params, l.flowParseFunctionTypeParam())
		if !p.match(lexer.PAREN_R) {
			p.expect(lexer.COMMA)
		}
	}
	if p.eat(lexer.ELLIPSIS) {
		rest = l.flowParseFunctionTypeParam()
	}
	return params, rest
}

func (l *flowLayer) flowIdentToTypeAnnotation(start int, startLoc ast.Position, node, id *ast.Node) *ast.Node {
	p := l.p
	switch id.Name {
	case "any":
		return p.finishNode(node, "AnyTypeAnnotation")
	case "void":
		return p.finishNode(node, "VoidTypeAnnotation")
	case "bool", "boolean":
		return p.finishNode(node, "BooleanTypeAnnotation")
	case "mixed":
		return p.finishNode(node, "MixedTypeAnnotation")
	case "empty":
		return p.finishNode(node, "EmptyTypeAnnotation")
	case "number":
		return p.finishNode(node, "NumberTypeAnnotation")
	case "string":
		return p.finishNode(node, "StringTypeAnnotation")
	}
	return l.flowParseGenericType(start, startLoc, id)
}

func (l *flowLayer) flowParsePrimaryType() *ast.Node {
	p := l.p
	start, startLoc := p.state.Start, p.state.StartLoc
	node := p.startNode()
	oldNoAnonFunctionType := p.state.NoAnonFunctionType

	switch p.state.Type {
	case lexer.NAME:
		if p.isContextual("interface") {
			return l.flowParseInterfaceType()
		}
		return l.flowIdentToTypeAnnotation(start, startLoc, node, p.parseIdentifier(false))

	case lexer.BRACE_L:
		return l.flowParseObjectType(false, false, true, false)

	case lexer.BRACE_BAR_L:
		return l.flowParseObjectType(false, true, true, false)

	case lexer.BRACKET_L:
		return l.flowParseTupleType()

	case lexer.RELATIONAL:
		if p.state.Value != "<" {
			break
		}
		node.TypeParameters = l.flowParseTypeParameterDeclaration(false)
		p.expect(lexer.PAREN_L)
		node.Params, node.Rest = l.flowParseFunctionTypeParams(nil)
		p.expect(lexer.PAREN_R)
		p.expect(lexer.ARROW)
		node.ReturnType = l.flowParseType()
		return p.finishNode(node, "FunctionTypeAnnotation")

	case lexer.PAREN_L:
		p.next()

		// A leading `name:` or `name?` means a parameter list.
		isGroupedType := false
		if !p.match(lexer.PAREN_R) && !p.match(lexer.ELLIPSIS) {
			if p.match(lexer.NAME) {
				next := p.peek().Type
				isGroupedType = next != lexer.QUESTION && next != lexer.COLON
			} else {
				isGroupedType = true
			}
		}

		var typ *ast.Node
		if isGroupedType {
			p.state.NoAnonFunctionType = false
			typ = l.flowParseType()
			p.state.NoAnonFunctionType = oldNoAnonFunctionType

			if p.state.NoAnonFunctionType ||
				!(p.match(lexer.COMMA) || (p.match(lexer.PAREN_R) && p.peek().Type == lexer.ARROW)) {
				p.expect(lexer.PAREN_R)
				return typ
			}
			p.eat(lexer.COMMA)
		}

		if typ != nil {
			node.Params, node.Rest = l.flowParseFunctionTypeParams([]*ast.Node{l.reinterpretTypeAsFunctionTypeParam(typ)})
		} else {
			node.Params, node.Rest = l.flowParseFunctionTypeParams(nil)
		}
		p.expect(lexer.PAREN_R)
		p.expect(lexer.ARROW)
		node.ReturnType = l.flowParseType()
		return p.finishNode(node, "FunctionTypeAnnotation")

	case lexer.STRING:
		return p.parseLiteral(p.state.Value, "StringLiteralTypeAnnotation")

	case lexer.TRUE, lexer.FALSE:
		node.LitValue = p.match(lexer.TRUE)
		p.next()
		return p.finishNode(node, "BooleanLiteralTypeAnnotation")

	case lexer.PLUS_MIN:
		if p.state.Value != "-" {
			p.unexpected()
		}
		p.next()
		if !p.match(lexer.NUM) {
			p.raise(p.state.Start, `Unexpected token, expected "number"`)
		}
		value := -p.state.Num
		node.SetExtra("rawValue", value)
		node.SetExtra("raw", p.input[node.Start:p.state.End])
		node.LitValue = value
		p.next()
		return p.finishNode(node, "NumberLiteralTypeAnnotation")

	case lexer.NUM:
		return p.parseLiteral(p.state.Num, "NumberLiteralTypeAnnotation")

	case lexer.NULL:
		p.next()
		return p.finishNode(node, "NullLiteralTypeAnnotation")

	case lexer.THIS:
		p.next()
		return p.finishNode(node, "ThisTypeAnnotation")

	case lexer.STAR:
		p.next()
		return p.finishNode(node, "ExistsTypeAnnotation")

	case lexer.TYPEOF:
		return l.flowParseTypeofType()
	}

	p.unexpected()
	return nil
}

// Syntax: Type[] ...
func (l *flowLayer) flowParsePostfixType() *ast.Node {
	p := l.p
	start, startLoc := p.state.Start, p.state.StartLoc
	typ := l.flowParsePrimaryType()
	for !p.canInsertSemicolon() && p.match(lexer.BRACKET_L) {
		node := p.startNodeAt(start, startLoc)
		node.ElementType = typ
		p.expect(lexer.BRACKET_L)
		p.expect(lexer.BRACKET_R)
		typ = p.finishNode(node, "ArrayTypeAnnotation")
	}
	return typ
}

// Syntax: ?Type
func (l *flowLayer) flowParsePrefixType() *ast.Node {
	p := l.p
	p.enter()
	defer p.leave()

	node := p.startNode()
	if p.eat(lexer.QUESTION) {
		node.TypeAnnotation = l.flowParsePrefixType()
		return p.finishNode(node, "NullableTypeAnnotation")
	}
	return l.flowParsePostfixType()
}

// Syntax: Param => Return, a function type with a single unparenthesized
// parameter type.
func (l *flowLayer) flowParseAnonFunctionWithoutParens() *ast.Node {
	p := l.p
	param := l.flowParsePrefixType()
	if !p.state.NoAnonFunctionType && p.eat(lexer.ARROW) {
		node := p.startNodeAt(param.Start, param.Loc.Start)
		node.Params = []*ast.Node{l.reinterpretTypeAsFunctionTypeParam(param)}
		node.ReturnType = l.flowParseType()
		return p.finishNode(node, "FunctionTypeAnnotation")
	}
	return param
}

func (l *flowLayer) flowParseIntersectionType() *ast.Node {
	p := l.p
	node := p.startNode()
	p.eat(lexer.BITWISE_AND)
	typ := l.flowParseAnonFunctionWithoutParens()
	node.Types = []*ast.Node{typ}
	for p.eat(lexer.BITWISE_AND) {
		node.Types = append(node.Types, l.flowParseAnonFunctionWithoutParens())
	}
	if len(node.Types) == 1 {
		return typ
	}
	return p.finishNode(node, "IntersectionTypeAnnotation")
}

func (l *flowLayer) flowParseUnionType() *ast.Node {
	p := l.p
	node := p.startNode()
	p.eat(lexer.BITWISE_OR)
	typ := l.flowParseIntersectionType()
	node.Types = []*ast.Node{typ}
	for p.eat(lexer.BITWISE_OR) {
		node.Types = append(node.Types, l.flowParseIntersectionType())
	}
	if len(node.Types) == 1 {
		return typ
	}
	return p.finishNode(node, "UnionTypeAnnotation")
}

func (l *flowLayer) flowParseType() *ast.Node {
	p := l.p
	p.enter()
	defer p.leave()

	old := p.state.InType
	p.state.InType = true
	typ := l.flowParseUnionType()
	p.state.InType = old
	// A brace after a generic function type is a block, except in arrow
	// return types.
	p.state.ExprAllowed = p.state.ExprAllowed || p.state.NoAnonFunctionType
	return typ
}
