package parser

import (
	"github.com/tliron/commonlog"

	"github.com/nooga/esparse/pkg/ast"
	"github.com/nooga/esparse/pkg/errors"
	"github.com/nooga/esparse/pkg/lexer"
)

// --- Speculative parsing ---
//
// Productions report syntax errors by panicking with *errors.SyntaxError.
// A trial snapshots the whole parser state, runs a production and, when it
// fails with a syntax error, restores the snapshot so the caller can try a
// different reading. Any other panic value passes through untouched.

// tryParse runs fn speculatively. On success the state fn left behind is
// kept. On a syntax error the state is rolled back and the error returned.
func (p *Parser) tryParse(fn func() *ast.Node) (node *ast.Node, failure *errors.SyntaxError) {
	snap := p.state.clone()
	defer func() {
		if r := recover(); r != nil {
			se, ok := r.(*errors.SyntaxError)
			if !ok {
				panic(r)
			}
			p.state = snap
			if logger.AllowLevel(commonlog.Debug) {
				logger.Debugf("trial at %d rolled back: %s", snap.Start, se.Msg)
			}
			node, failure = nil, se
		}
	}()
	return fn(), nil
}

// tryParseIf runs fn speculatively and keeps its effects only when it
// succeeds and accept approves the result. A rejected result rolls back
// like a failure and reports a nil error.
func (p *Parser) tryParseIf(fn func() *ast.Node, accept func(*ast.Node) bool) (*ast.Node, *errors.SyntaxError) {
	snap := p.state.clone()
	node, err := p.tryParse(fn)
	if err != nil {
		return nil, err
	}
	if !accept(node) {
		p.state = snap
		return nil, nil
	}
	return node, nil
}

// lookahead runs fn and always restores the state afterwards. It reports
// fn's result and whether fn completed without a syntax error.
func (p *Parser) lookahead(fn func() bool) (result bool) {
	snap := p.state.clone()
	defer func() {
		p.state = snap
		if r := recover(); r != nil {
			if _, ok := r.(*errors.SyntaxError); !ok {
				panic(r)
			}
			result = false
		}
	}()
	return fn()
}

// peek returns the token after the current one without consuming anything.
func (p *Parser) peek() lexer.State {
	return p.tok.Lookahead()
}

// --- Depth guard ---

func (p *Parser) enter() {
	p.state.Depth++
	if p.state.Depth > p.maxDepth {
		loc := p.state.StartLoc
		panic(&errors.NestingError{
			Position: errors.Position{Line: loc.Line, Column: loc.Column, StartPos: p.state.Start, EndPos: p.state.Start, Source: p.src},
			Limit:    p.maxDepth,
		})
	}
}

func (p *Parser) leave() {
	p.state.Depth--
}

// raiseAmbiguity aborts the whole parse; trials never catch it.
func (p *Parser) raiseAmbiguity(pos int, msg string, candidates ...int) {
	loc := p.tok.PositionAt(pos)
	panic(&errors.AmbiguityError{
		Position:   errors.Position{Line: loc.Line, Column: loc.Column, StartPos: pos, EndPos: pos, Source: p.src},
		Msg:        msg,
		Candidates: candidates,
	})
}

// succeeds runs fn speculatively and reports whether it completed. Its
// effects are kept only when it did.
func (p *Parser) succeeds(fn func()) bool {
	_, err := p.tryParse(func() *ast.Node {
		fn()
		return nil
	})
	return err == nil
}
