// Package parser builds the arena AST for LPS source code.
//
// Two entry points exist: ParseExpr parses a single expression (expression
// mode) and Parse parses a script made of function definitions and top-level
// statements (script mode). Parsing stops at the first error, which is always
// a *SyntaxError.
package parser

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/lightplayer/lps/ast"
	"github.com/lightplayer/lps/errors"
	"github.com/lightplayer/lps/internal/lexer"
	"github.com/lightplayer/lps/internal/token"
	"github.com/lightplayer/lps/types"
)

type (
	prefixParseFn func() ast.ExprID
	infixParseFn  func(ast.ExprID) ast.ExprID
)

// DefaultMaxDepth is the default maximum nesting depth for parsing.
const DefaultMaxDepth = 500

// Option is a configuration function for a Parser.
type Option func(*Parser)

// WithFilename sets the file name used in positions and error messages.
func WithFilename(filename string) Option {
	return func(p *Parser) {
		p.filename = filename
	}
}

// WithMaxDepth sets the maximum nesting depth for the parser.
// This prevents stack overflow on deeply nested input.
// The default is 500.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		p.maxDepth = depth
	}
}

// WithStrictLexing reports unknown characters as errors. By default the lexer
// treats an unknown character as the end of input.
func WithStrictLexing() Option {
	return func(p *Parser) {
		p.strict = true
	}
}

// Parser turns a token stream into nodes stored in an ast.Pool.
type Parser struct {
	ctx      context.Context
	source   string
	filename string
	strict   bool
	maxDepth int
	depth    int

	tokens []token.Token
	pos    int

	pool *ast.Pool
	err  *SyntaxError

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn
}

// New returns a Parser for the given input. Lexing happens eagerly; a strict
// mode lexing error is reported by the first parse call.
func New(input string, options ...Option) *Parser {
	p := &Parser{
		ctx:            context.Background(),
		source:         input,
		maxDepth:       DefaultMaxDepth,
		pool:           ast.NewPool(),
		prefixParseFns: map[token.Type]prefixParseFn{},
		infixParseFns:  map[token.Type]infixParseFn{},
	}
	for _, opt := range options {
		opt(p)
	}

	lexOpts := []lexer.Option{lexer.WithFile(p.filename)}
	if p.strict {
		lexOpts = append(lexOpts, lexer.WithStrict())
	}
	tokens, err := lexer.Tokenize(input, lexOpts...)
	p.tokens = tokens
	if err != nil {
		var illegal *lexer.IllegalCharError
		if stderrors.As(err, &illegal) {
			span := token.Span{Start: illegal.Position, End: illegal.Position.Advance(1)}
			p.fail(errors.E1002, span, "illegal character %q", illegal.Char)
		} else {
			p.fail(errors.E1003, tokens[len(tokens)-1].Span(), "%s", err.Error())
		}
		p.err.Cause = err
	}

	p.registerPrefix(token.INT, p.parseInt)
	p.registerPrefix(token.FLOAT, p.parseFloat)
	p.registerPrefix(token.TRUE, p.parseBoolean)
	p.registerPrefix(token.FALSE, p.parseBoolean)
	p.registerPrefix(token.IDENT, p.parseIdent)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpr)
	p.registerPrefix(token.MINUS, p.parsePrefixExpr)
	p.registerPrefix(token.BANG, p.parsePrefixExpr)
	p.registerPrefix(token.TILDE, p.parsePrefixExpr)
	p.registerPrefix(token.PLUS_PLUS, p.parsePrefixIncDec)
	p.registerPrefix(token.MINUS_MINUS, p.parsePrefixIncDec)
	p.registerPrefix(token.VEC2, p.parseConstructor)
	p.registerPrefix(token.VEC3, p.parseConstructor)
	p.registerPrefix(token.VEC4, p.parseConstructor)
	p.registerPrefix(token.MAT3, p.parseConstructor)
	p.registerPrefix(token.ILLEGAL, p.illegalToken)

	for tt := range precedences {
		switch {
		case token.IsAssignment(tt):
			p.registerInfix(tt, p.parseAssign)
		case tt == token.QUESTION:
			p.registerInfix(tt, p.parseTernary)
		case tt == token.PERIOD:
			p.registerInfix(tt, p.parseSwizzle)
		case tt == token.PLUS_PLUS, tt == token.MINUS_MINUS:
			p.registerInfix(tt, p.parsePostfixIncDec)
		case tt == token.LPAREN:
			p.registerInfix(tt, p.parseCall)
		default:
			p.registerInfix(tt, p.parseInfixExpr)
		}
	}
	return p
}

// Parse the provided input as an LPS script.
func Parse(ctx context.Context, input string, options ...Option) (*ast.Pool, *ast.Program, error) {
	p := New(input, options...)
	prog, err := p.ParseProgram(ctx)
	if err != nil {
		return nil, nil, err
	}
	return p.pool, prog, nil
}

// ParseExpr parses the input as a single expression. A trailing semicolon is
// allowed.
func ParseExpr(ctx context.Context, input string, options ...Option) (*ast.Pool, ast.ExprID, error) {
	p := New(input, options...)
	id, err := p.ParseExpression(ctx)
	if err != nil {
		return nil, ast.NoExpr, err
	}
	return p.pool, id, nil
}

// Pool returns the node pool populated by this parser.
func (p *Parser) Pool() *ast.Pool {
	return p.pool
}

// ParseProgram parses function definitions and top-level statements until
// the end of input.
func (p *Parser) ParseProgram(ctx context.Context) (*ast.Program, error) {
	p.ctx = ctx
	prog := &ast.Program{}
	for p.err == nil && !p.curIs(token.EOF) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p.atFunctionDefinition() {
			fn, ok := p.parseFunction()
			if ok {
				prog.Functions = append(prog.Functions, fn)
			}
			continue
		}
		if id := p.parseStatement(); id.Valid() {
			prog.Stmts = append(prog.Stmts, id)
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return prog, nil
}

// ParseExpression parses exactly one expression followed by the end of input.
func (p *Parser) ParseExpression(ctx context.Context) (ast.ExprID, error) {
	p.ctx = ctx
	if err := ctx.Err(); err != nil {
		return ast.NoExpr, err
	}
	if p.err != nil {
		return ast.NoExpr, p.err
	}
	id := p.parseExpr(LOWEST)
	if p.err == nil {
		p.accept(token.SEMICOLON)
		if !p.curIs(token.EOF) {
			p.unexpected("end of input")
		}
	}
	if p.err != nil {
		return ast.NoExpr, p.err
	}
	return id, nil
}

func (p *Parser) registerPrefix(tokenType token.Type, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.Type, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) cur() token.Token {
	return p.tokens[p.pos]
}

// peek returns the token n positions after the current one.
func (p *Parser) peek(n int) token.Token {
	i := p.pos + n
	if i >= len(p.tokens) {
		i = len(p.tokens) - 1
	}
	return p.tokens[i]
}

// prev returns the most recently consumed token.
func (p *Parser) prev() token.Token {
	if p.pos == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.pos-1]
}

func (p *Parser) advance() token.Token {
	tok := p.tokens[p.pos]
	if tok.Type != token.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) curIs(t token.Type) bool {
	return p.cur().Type == t
}

func (p *Parser) accept(t token.Type) bool {
	if p.curIs(t) {
		p.advance()
		return true
	}
	return false
}

// expect consumes a token of the given type or records an error.
func (p *Parser) expect(t token.Type, what string) (token.Token, bool) {
	if p.err != nil {
		return p.cur(), false
	}
	if !p.curIs(t) {
		p.unexpected(what)
		return p.cur(), false
	}
	return p.advance(), true
}

// spanFrom returns the span from start to the end of the last consumed token.
func (p *Parser) spanFrom(start token.Position) token.Span {
	end := p.prev().EndPosition
	if end.Char < start.Char {
		end = start
	}
	return token.Span{Start: start, End: end}
}

func (p *Parser) fail(code errors.ErrorCode, span token.Span, format string, args ...any) {
	if p.err != nil {
		return
	}
	p.err = &SyntaxError{
		Code:       code,
		Message:    fmt.Sprintf(format, args...),
		Span:       span,
		Filename:   p.filename,
		SourceLine: errors.SourceLine(p.source, span.Start.LineNumber()),
	}
}

func (p *Parser) unexpected(expected string) {
	tok := p.cur()
	code := errors.E1001
	if tok.Type == token.EOF && (expected == "')'" || expected == "'}'") {
		code = errors.E1007
	}
	p.fail(code, tok.Span(), "expected %s, found %s", expected, tokenDescription(tok))
}

func (p *Parser) enter() bool {
	p.depth++
	if p.depth > p.maxDepth {
		p.fail(errors.E1009, p.cur().Span(), "maximum nesting depth of %d exceeded", p.maxDepth)
		return false
	}
	return true
}

func (p *Parser) leave() {
	p.depth--
}

// atFunctionDefinition reports whether the upcoming tokens look like
// "type name (".
func (p *Parser) atFunctionDefinition() bool {
	return token.IsTypeKeyword(p.cur().Type) &&
		p.peek(1).Type == token.IDENT &&
		p.peek(2).Type == token.LPAREN
}

// parseType consumes a type keyword.
func (p *Parser) parseType(allowVoid bool) (types.Type, bool) {
	tok := p.cur()
	if !token.IsTypeKeyword(tok.Type) || (tok.Type == token.VOID && !allowVoid) {
		p.fail(errors.E1010, tok.Span(), "expected a type, found %s", tokenDescription(tok))
		return types.None, false
	}
	p.advance()
	t, ok := types.FromName(tok.Literal)
	if !ok {
		p.fail(errors.E1010, tok.Span(), "unknown type %q", tok.Literal)
	}
	return t, ok
}

func (p *Parser) parseFunction() (ast.FuncDecl, bool) {
	start := p.cur().StartPosition
	ret, ok := p.parseType(true)
	if !ok {
		return ast.FuncDecl{}, false
	}
	name, _ := p.expect(token.IDENT, "function name")
	p.expect(token.LPAREN, "'('")

	var params []ast.Param
	for p.err == nil && !p.curIs(token.RPAREN) {
		if len(params) > 0 {
			if _, ok := p.expect(token.COMMA, "',' or ')'"); !ok {
				break
			}
		}
		pstart := p.cur().StartPosition
		ptype, ok := p.parseType(false)
		if !ok {
			break
		}
		pname, ok := p.expect(token.IDENT, "parameter name")
		if !ok {
			break
		}
		params = append(params, ast.Param{Name: pname.Literal, Type: ptype, Span: p.spanFrom(pstart)})
	}
	p.expect(token.RPAREN, "')'")
	if !p.curIs(token.LBRACE) {
		p.unexpected("'{'")
	}
	body := p.parseBlockBody()
	if p.err != nil {
		return ast.FuncDecl{}, false
	}
	return ast.FuncDecl{
		Name:       name.Literal,
		Params:     params,
		ReturnType: ret,
		Body:       body,
		Span:       p.spanFrom(start),
	}, true
}
