package parser

import (
	"fmt"
	"strings"

	"github.com/nooga/esparse/pkg/errors"
	"github.com/nooga/esparse/pkg/lexer"
)

// --- Token helpers ---

func (p *Parser) next() {
	p.tok.Next()
}

func (p *Parser) match(t lexer.TokenType) bool {
	return p.state.Type == t
}

func (p *Parser) eat(t lexer.TokenType) bool {
	if p.match(t) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) expect(t lexer.TokenType) {
	if !p.eat(t) {
		p.unexpectedAt(p.state.Start, t)
	}
}

// isContextual reports whether the current token is the unescaped word name.
func (p *Parser) isContextual(name string) bool {
	return p.match(lexer.NAME) && p.state.Value == name && !p.state.ContainsEsc
}

func (p *Parser) isLookaheadContextual(name string) bool {
	next := p.peek()
	return next.Type == lexer.NAME && next.Value == name
}

func (p *Parser) eatContextual(name string) bool {
	if p.isContextual(name) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) expectContextual(name string) {
	if !p.eatContextual(name) {
		p.raise(p.state.Start, "Unexpected token, expected %q", name)
	}
}

// isRelational matches a `<`, `>`, `<=` or `>=` token by its text.
func (p *Parser) isRelational(op string) bool {
	return p.match(lexer.RELATIONAL) && p.state.Value == op
}

func (p *Parser) expectRelational(op string) {
	if !p.eatRelational(op) {
		p.raise(p.state.Start, "Unexpected token, expected %q", op)
	}
}

func (p *Parser) eatRelational(op string) bool {
	if p.isRelational(op) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) hasPrecedingLineBreak() bool {
	return p.tok.HasLineBreak(p.state.LastTokEnd, p.state.Start)
}

func (p *Parser) canInsertSemicolon() bool {
	return p.match(lexer.EOF) || p.match(lexer.BRACE_R) || p.hasPrecedingLineBreak()
}

// atLineTerminator is isLineTerminator without consuming a semicolon.
func (p *Parser) atLineTerminator() bool {
	return p.match(lexer.SEMI) || p.canInsertSemicolon()
}

func (p *Parser) isLineTerminator() bool {
	return p.eat(lexer.SEMI) || p.canInsertSemicolon()
}

func (p *Parser) semicolon() {
	if !p.isLineTerminator() {
		p.unexpectedAt(p.state.Start, lexer.SEMI)
	}
}

// keyword returns the keyword text of the current token, or "".
func (p *Parser) keyword() string {
	if p.state.Type.IsKeyword() {
		return string(p.state.Type)
	}
	return ""
}

// --- Errors ---

// raise aborts the current production with a syntax error at pos.
func (p *Parser) raise(pos int, format string, args ...any) {
	loc := p.tok.PositionAt(pos)
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	panic(&errors.SyntaxError{
		Position: errors.Position{Line: loc.Line, Column: loc.Column, StartPos: pos, EndPos: pos, Source: p.src},
		Msg:      msg,
	})
}

func (p *Parser) unexpected() {
	p.unexpectedAt(p.state.Start, "")
}

func (p *Parser) unexpectedAt(pos int, expected lexer.TokenType) {
	if expected != "" {
		p.raise(pos, "Unexpected token, expected %q", string(expected))
	}
	p.raise(pos, "Unexpected token")
}

// --- Plugins ---

func (p *Parser) hasPlugin(name string) bool {
	return isBuiltinPlugin(name) || p.opts.Plugins.Has(name)
}

func (p *Parser) pluginOption(plugin, key string) any {
	v, _ := p.opts.Plugins.Option(plugin, key)
	return v
}

func (p *Parser) pluginFlag(plugin, key string) bool {
	b, _ := p.pluginOption(plugin, key).(bool)
	return b
}

func (p *Parser) expectPlugin(name string) {
	p.expectPluginAt(name, p.state.Start)
}

func (p *Parser) expectPluginAt(name string, pos int) {
	if !p.hasPlugin(name) {
		p.raise(pos, "This experimental syntax requires enabling the parser plugin: '%s'", name)
	}
}

func (p *Parser) expectOnePlugin(names ...string) {
	for _, n := range names {
		if p.hasPlugin(n) {
			return
		}
	}
	p.raise(p.state.Start, "This experimental syntax requires enabling one of the following parser plugin(s): '%s'", strings.Join(names, ", "))
}

// --- Reserved words ---

var strictReservedWords = map[string]bool{
	"implements": true, "interface": true, "let": true, "package": true,
	"private": true, "protected": true, "public": true, "static": true, "yield": true,
}

func (p *Parser) isReservedWord(word string) bool {
	if word == "await" {
		return p.inModule
	}
	return word == "enum"
}

func isStrictReservedWord(word string) bool {
	return strictReservedWords[word]
}

func isStrictBindReservedWord(word string) bool {
	return word == "eval" || word == "arguments"
}

func (p *Parser) checkReservedWord(word string, start int, checkKeywords, isBinding bool) {
	if p.state.Strict && (isStrictReservedWord(word) || (isBinding && isStrictBindReservedWord(word))) {
		p.raise(start, "%s is a reserved word in strict mode", word)
	}
	if p.state.InGenerator && word == "yield" {
		p.raise(start, "yield is a reserved word inside generator functions")
	}
	if p.state.InClassProperty && word == "arguments" {
		p.raise(start, "'arguments' is not allowed in class field initializer")
	}
	if p.isReservedWord(word) || (checkKeywords && lexer.IsKeyword(word)) {
		p.raise(start, "%s is a reserved word", word)
	}
}
