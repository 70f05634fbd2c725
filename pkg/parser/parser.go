package parser

import (
	"github.com/tliron/commonlog"

	"github.com/nooga/esparse/pkg/ast"
	"github.com/nooga/esparse/pkg/errors"
	"github.com/nooga/esparse/pkg/lexer"
	"github.com/nooga/esparse/pkg/source"
)

// Parser turns one source text into a syntax tree. A Parser is used for a
// single Parse or ParseExpression call.
type Parser struct {
	g    grammar // outermost layer of the composed grammar
	opts Options
	comp *composition

	tok   *lexer.Tokenizer
	state State
	input string
	src   *source.SourceFile
	arena nodeArena

	inModule          bool
	sawUnambiguousESM bool
	maxDepth          int
}

// New validates opts and prepares a parser over src.
func New(src *source.SourceFile, opts Options) (*Parser, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.SourceType == SourceUnambiguous {
		opts.SourceType = SourceModule
	}
	return newParser(src, opts), nil
}

func newParser(src *source.SourceFile, opts Options) *Parser {
	comp := compose(opts.Plugins)
	p := &Parser{
		opts:     opts,
		comp:     comp,
		input:    src.Content,
		src:      src,
		inModule: opts.SourceType == SourceModule,
		maxDepth: opts.maxDepth(),
	}
	p.state = newState(opts.StartLine, opts.strict())
	lexOpts := comp.lexer
	lexOpts.ValidateRegExp = opts.ValidateRegExp
	p.tok = lexer.New(p.input, lexOpts, &p.state.State)
	p.g = comp.bind(p)
	p.tok.OnComment = func(c *ast.Comment) { p.g.addComment(c) }
	return p
}

// --- Entry points ---

// Parse parses input as a program and returns its File node.
func Parse(input string, opts Options) (*ast.Node, error) {
	return ParseSource(source.NewEvalSource(input), opts)
}

// ParseSource parses src as a program. With SourceUnambiguous the input is
// read as a module; when it uses no module syntax the result is marked as a
// script, and when it does not parse as a module it is parsed again as a
// script. If both fail the module error is returned.
func ParseSource(src *source.SourceFile, opts Options) (*ast.Node, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.SourceType != SourceUnambiguous {
		return newParser(src, opts).Parse()
	}

	moduleOpts := opts
	moduleOpts.SourceType = SourceModule
	mp := newParser(src, moduleOpts)
	file, moduleErr := mp.Parse()
	if moduleErr == nil {
		if !mp.sawUnambiguousESM {
			file.Program.SourceType = string(SourceScript)
		}
		return file, nil
	}
	if _, ok := moduleErr.(*errors.SyntaxError); !ok {
		return nil, moduleErr
	}

	if logger.AllowLevel(commonlog.Debug) {
		logger.Debugf("%s: not a module (%s), retrying as script", src.DisplayPath(), moduleErr)
	}
	scriptOpts := opts
	scriptOpts.SourceType = SourceScript
	if file, err := newParser(src, scriptOpts).Parse(); err == nil {
		return file, nil
	}
	return nil, moduleErr
}

// ParseExpression parses input as a single expression.
func ParseExpression(input string, opts Options) (*ast.Node, error) {
	p, err := New(source.NewEvalSource(input), opts)
	if err != nil {
		return nil, err
	}
	return p.ParseExpression()
}

// Parse parses the whole input as a program.
func (p *Parser) Parse() (*ast.Node, error) {
	return p.run(p.parseTopLevel)
}

// ParseExpression parses the whole input as one expression.
func (p *Parser) ParseExpression() (*ast.Node, error) {
	return p.run(p.getExpression)
}

// SawModuleSyntax reports whether the last parse met import or export.
func (p *Parser) SawModuleSyntax() bool {
	return p.sawUnambiguousESM
}

// run converts the error panics of the productions into an error result.
func (p *Parser) run(fn func() *ast.Node) (node *ast.Node, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		node = nil
		switch e := r.(type) {
		case *errors.SyntaxError:
			if e.Source == nil {
				e.Source = p.src
			}
			err = e
		case *errors.AmbiguityError:
			err = e
		case *errors.NestingError:
			err = e
		case *errors.ConfigError:
			err = e
		default:
			panic(r)
		}
	}()
	return fn(), nil
}

func (p *Parser) parseTopLevel() *ast.Node {
	file := p.startNode()
	program := p.startNode()
	p.tok.NextToken()

	program.SourceType = string(p.opts.SourceType)
	program.Interpreter = p.parseInterpreterDirective()
	p.g.parseBlockBody(program, true, true, lexer.EOF)
	file.Program = p.finishNode(program, "Program")
	file.Comments = p.state.Comments
	if file.Comments == nil {
		file.Comments = []*ast.Comment{}
	}
	if logger.AllowLevel(commonlog.Debug) {
		logger.Debugf("%s: %d nodes allocated", p.src.DisplayPath(), p.arena.count)
	}
	return p.finishNode(file, "File")
}

func (p *Parser) parseInterpreterDirective() *ast.Node {
	value, end := p.tok.Interpreter()
	if end < 0 {
		return nil
	}
	node := p.startNodeAt(0, p.tok.PositionAt(0))
	node.LitValue = value
	return node.Finish("InterpreterDirective", end, p.tok.PositionAt(end))
}

func (p *Parser) getExpression() *ast.Node {
	p.tok.NextToken()
	expr := p.parseExpression(false, nil)
	if !p.match(lexer.EOF) {
		p.unexpected()
	}
	expr.Comments = p.state.Comments
	return expr
}

// --- Node factory ---

func (p *Parser) startNode() *ast.Node {
	return p.arena.alloc(p.state.Start, p.state.StartLoc, p.opts.SourceFilename)
}

func (p *Parser) startNodeAt(start int, loc ast.Position) *ast.Node {
	return p.arena.alloc(start, loc, p.opts.SourceFilename)
}

func (p *Parser) startNodeAtNode(n *ast.Node) *ast.Node {
	return p.startNodeAt(n.Start, n.Loc.Start)
}

// finishNode closes n at the end of the previous token.
func (p *Parser) finishNode(n *ast.Node, kind string) *ast.Node {
	return n.Finish(kind, p.state.LastTokEnd, p.state.LastTokEndLoc)
}

func (p *Parser) finishNodeAt(n *ast.Node, kind string, end int, endLoc ast.Position) *ast.Node {
	return n.Finish(kind, end, endLoc)
}

func (p *Parser) resetStartLocationFromNode(n, from *ast.Node) {
	n.ResetStart(from.Start, from.Loc.Start)
}

// addComment is the hook every collected comment passes through.
func (p *Parser) addComment(c *ast.Comment) {}
