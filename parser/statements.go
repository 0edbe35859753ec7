package parser

import (
	"github.com/lightplayer/lps/ast"
	"github.com/lightplayer/lps/internal/token"
)

func (p *Parser) parseStatement() ast.StmtID {
	if p.err != nil {
		return ast.NoStmt
	}
	if !p.enter() {
		return ast.NoStmt
	}
	defer p.leave()

	switch tok := p.cur(); {
	case tok.Type == token.LBRACE:
		return p.parseBlock()
	case tok.Type == token.IF:
		return p.parseIf()
	case tok.Type == token.WHILE:
		return p.parseWhile()
	case tok.Type == token.FOR:
		return p.parseFor()
	case tok.Type == token.RETURN:
		return p.parseReturn()
	case tok.Type == token.SEMICOLON:
		p.advance()
		return p.pool.AddStmt(ast.NewBlock(tok.Span(), nil))
	case p.atDeclaration():
		return p.parseVarDecl()
	default:
		return p.parseExprStatement()
	}
}

// atDeclaration reports whether the upcoming tokens are "type name".
func (p *Parser) atDeclaration() bool {
	return token.IsTypeKeyword(p.cur().Type) && p.peek(1).Type == token.IDENT
}

func (p *Parser) parseBlock() ast.StmtID {
	start := p.cur().StartPosition
	body := p.parseBlockBody()
	if p.err != nil {
		return ast.NoStmt
	}
	return p.pool.AddStmt(ast.NewBlock(p.spanFrom(start), body))
}

// parseBlockBody parses "{ stmt* }" and returns the statements.
func (p *Parser) parseBlockBody() []ast.StmtID {
	if _, ok := p.expect(token.LBRACE, "'{'"); !ok {
		return nil
	}
	var body []ast.StmtID
	for p.err == nil && !p.curIs(token.RBRACE) {
		if p.curIs(token.EOF) {
			p.unexpected("'}'")
			return nil
		}
		if id := p.parseStatement(); id.Valid() {
			body = append(body, id)
		}
	}
	p.expect(token.RBRACE, "'}'")
	return body
}

func (p *Parser) parseVarDecl() ast.StmtID {
	start := p.cur().StartPosition
	id := p.parseVarDeclNoSemi()
	if _, ok := p.expect(token.SEMICOLON, "';'"); !ok {
		return ast.NoStmt
	}
	if id.Valid() {
		p.pool.Stmt(id).Span = p.spanFrom(start)
	}
	return id
}

func (p *Parser) parseVarDeclNoSemi() ast.StmtID {
	start := p.cur().StartPosition
	typ, ok := p.parseType(false)
	if !ok {
		return ast.NoStmt
	}
	name, ok := p.expect(token.IDENT, "variable name")
	if !ok {
		return ast.NoStmt
	}
	init := ast.NoExpr
	if p.accept(token.ASSIGN) {
		init = p.parseExpr(LOWEST)
	}
	if p.err != nil {
		return ast.NoStmt
	}
	return p.pool.AddStmt(ast.NewVarDecl(p.spanFrom(start), typ, name.Literal, init))
}

func (p *Parser) parseExprStatement() ast.StmtID {
	start := p.cur().StartPosition
	expr := p.parseExpr(LOWEST)
	if _, ok := p.expect(token.SEMICOLON, "';'"); !ok {
		return ast.NoStmt
	}
	return p.pool.AddStmt(ast.NewExprStmt(p.spanFrom(start), expr))
}

func (p *Parser) parseReturn() ast.StmtID {
	start := p.advance().StartPosition
	value := ast.NoExpr
	if !p.curIs(token.SEMICOLON) {
		value = p.parseExpr(LOWEST)
	}
	if _, ok := p.expect(token.SEMICOLON, "';'"); !ok {
		return ast.NoStmt
	}
	return p.pool.AddStmt(ast.NewReturn(p.spanFrom(start), value))
}

func (p *Parser) parseCondition() ast.ExprID {
	if _, ok := p.expect(token.LPAREN, "'('"); !ok {
		return ast.NoExpr
	}
	cond := p.parseExpr(LOWEST)
	if _, ok := p.expect(token.RPAREN, "')'"); !ok {
		return ast.NoExpr
	}
	return cond
}

func (p *Parser) parseIf() ast.StmtID {
	start := p.advance().StartPosition
	cond := p.parseCondition()
	then := p.parseStatement()
	els := ast.NoStmt
	if p.err == nil && p.accept(token.ELSE) {
		els = p.parseStatement()
	}
	if p.err != nil {
		return ast.NoStmt
	}
	return p.pool.AddStmt(ast.NewIf(p.spanFrom(start), cond, then, els))
}

func (p *Parser) parseWhile() ast.StmtID {
	start := p.advance().StartPosition
	cond := p.parseCondition()
	body := p.parseStatement()
	if p.err != nil {
		return ast.NoStmt
	}
	return p.pool.AddStmt(ast.NewWhile(p.spanFrom(start), cond, body))
}

// parseFor parses "for (init; cond; step) body" where each clause is optional.
func (p *Parser) parseFor() ast.StmtID {
	start := p.advance().StartPosition
	if _, ok := p.expect(token.LPAREN, "'('"); !ok {
		return ast.NoStmt
	}

	init := ast.NoStmt
	switch {
	case p.curIs(token.SEMICOLON):
	case p.atDeclaration():
		init = p.parseVarDeclNoSemi()
	default:
		istart := p.cur().StartPosition
		expr := p.parseExpr(LOWEST)
		if p.err == nil {
			init = p.pool.AddStmt(ast.NewExprStmt(p.spanFrom(istart), expr))
		}
	}
	p.expect(token.SEMICOLON, "';'")

	cond := ast.NoExpr
	if p.err == nil && !p.curIs(token.SEMICOLON) {
		cond = p.parseExpr(LOWEST)
	}
	p.expect(token.SEMICOLON, "';'")

	step := ast.NoExpr
	if p.err == nil && !p.curIs(token.RPAREN) {
		step = p.parseExpr(LOWEST)
	}
	p.expect(token.RPAREN, "')'")

	body := p.parseStatement()
	if p.err != nil {
		return ast.NoStmt
	}
	return p.pool.AddStmt(ast.NewFor(p.spanFrom(start), init, cond, step, body))
}

