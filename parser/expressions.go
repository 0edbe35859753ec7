package parser

import (
	"strconv"

	"github.com/lightplayer/lps/ast"
	"github.com/lightplayer/lps/errors"
	"github.com/lightplayer/lps/fixed"
	"github.com/lightplayer/lps/internal/token"
	"github.com/lightplayer/lps/types"
)

var binaryOperators = map[token.Type]ast.Operator{
	token.PLUS:      ast.OpAdd,
	token.MINUS:     ast.OpSub,
	token.ASTERISK:  ast.OpMul,
	token.SLASH:     ast.OpDiv,
	token.MOD:       ast.OpMod,
	token.LT:        ast.OpLess,
	token.GT:        ast.OpGreater,
	token.LT_EQUALS: ast.OpLessEq,
	token.GT_EQUALS: ast.OpGreaterEq,
	token.EQ:        ast.OpEq,
	token.NOT_EQ:    ast.OpNotEq,
	token.AND:       ast.OpAnd,
	token.OR:        ast.OpOr,
	token.AMPERSAND: ast.OpBitAnd,
	token.BITOR:     ast.OpBitOr,
	token.CARET:     ast.OpBitXor,
	token.LT_LT:     ast.OpShl,
	token.GT_GT:     ast.OpShr,
}

// compoundOperators maps compound assignment tokens to their binary operator.
// Plain "=" maps to OpNone.
var compoundOperators = map[token.Type]ast.Operator{
	token.ASSIGN:           ast.OpNone,
	token.PLUS_EQUALS:      ast.OpAdd,
	token.MINUS_EQUALS:     ast.OpSub,
	token.ASTERISK_EQUALS:  ast.OpMul,
	token.SLASH_EQUALS:     ast.OpDiv,
	token.MOD_EQUALS:       ast.OpMod,
	token.AMPERSAND_EQUALS: ast.OpBitAnd,
	token.BITOR_EQUALS:     ast.OpBitOr,
	token.CARET_EQUALS:     ast.OpBitXor,
	token.LT_LT_EQUALS:     ast.OpShl,
	token.GT_GT_EQUALS:     ast.OpShr,
}

var constructorTypes = map[token.Type]types.Type{
	token.VEC2: types.Vec2,
	token.VEC3: types.Vec3,
	token.VEC4: types.Vec4,
	token.MAT3: types.Mat3,
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.cur().Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) parseExpr(precedence int) ast.ExprID {
	if p.err != nil {
		return ast.NoExpr
	}
	if !p.enter() {
		return ast.NoExpr
	}
	defer p.leave()

	prefix := p.prefixParseFns[p.cur().Type]
	if prefix == nil {
		p.noPrefixParseFnError()
		return ast.NoExpr
	}
	left := prefix()
	for p.err == nil && precedence < p.curPrecedence() {
		infix := p.infixParseFns[p.cur().Type]
		if infix == nil {
			return left
		}
		left = infix(left)
	}
	if p.err != nil {
		return ast.NoExpr
	}
	return left
}

func (p *Parser) noPrefixParseFnError() {
	tok := p.cur()
	if tok.Type == token.EOF {
		p.fail(errors.E1004, tok.Span(), "expected an expression, found end of input")
		return
	}
	p.fail(errors.E1004, tok.Span(), "expected an expression, found %s", tokenDescription(tok))
}

func (p *Parser) illegalToken() ast.ExprID {
	tok := p.cur()
	p.fail(errors.E1002, tok.Span(), "illegal character %q", tok.Literal)
	return ast.NoExpr
}

func (p *Parser) parseInt() ast.ExprID {
	tok := p.advance()
	return p.pool.AddExpr(ast.NewInt(tok.Span(), parseIntLiteral(tok.Literal)))
}

func (p *Parser) parseFloat() ast.ExprID {
	tok := p.advance()
	return p.pool.AddExpr(ast.NewFloat(tok.Span(), parseFloatLiteral(tok.Literal)))
}

// parseIntLiteral converts a decimal or hex literal. Malformed literals
// produce 0; hex literals wrap to 32 bits.
func parseIntLiteral(lit string) int32 {
	if len(lit) > 1 && lit[0] == '0' && (lit[1] == 'x' || lit[1] == 'X') {
		v, err := strconv.ParseUint(lit[2:], 16, 32)
		if err != nil {
			return 0
		}
		return int32(uint32(v))
	}
	v, err := strconv.ParseInt(lit, 10, 32)
	if err != nil {
		return 0
	}
	return int32(v)
}

func parseFloatLiteral(lit string) fixed.Fixed {
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return 0
	}
	return fixed.FromFloat(v)
}

func (p *Parser) parseBoolean() ast.ExprID {
	tok := p.advance()
	return p.pool.AddExpr(ast.NewBool(tok.Span(), tok.Type == token.TRUE))
}

func (p *Parser) parseIdent() ast.ExprID {
	tok := p.advance()
	return p.pool.AddExpr(ast.NewVariable(tok.Span(), tok.Literal))
}

func (p *Parser) parseGroupedExpr() ast.ExprID {
	p.advance()
	expr := p.parseExpr(LOWEST)
	if _, ok := p.expect(token.RPAREN, "')'"); !ok {
		return ast.NoExpr
	}
	return expr
}

func (p *Parser) parsePrefixExpr() ast.ExprID {
	opTok := p.advance()
	operand := p.parseExpr(PREFIX)
	if p.err != nil {
		return ast.NoExpr
	}
	span := opTok.Span().Merge(p.pool.Expr(operand).Span)

	var op ast.Operator
	switch opTok.Type {
	case token.MINUS:
		op = ast.OpNeg
		// Fold negative literals so that "-1" is a single IntLit.
		if e := p.pool.Expr(operand); e.Kind == ast.IntLit || e.Kind == ast.FloatLit {
			e.Int = -e.Int
			e.Value = fixed.Neg(e.Value)
			e.Span = span
			return operand
		}
	case token.BANG:
		op = ast.OpNot
	case token.TILDE:
		op = ast.OpBitNot
	}
	return p.pool.AddExpr(ast.NewUnary(span, op, operand))
}

func (p *Parser) parsePrefixIncDec() ast.ExprID {
	opTok := p.advance()
	op := ast.OpPreInc
	if opTok.Type == token.MINUS_MINUS {
		op = ast.OpPreDec
	}
	target := p.cur()
	if target.Type != token.IDENT {
		p.fail(errors.E1005, target.Span(), "%s requires a variable, found %s",
			opTok.Literal, tokenDescription(target))
		return ast.NoExpr
	}
	p.advance()
	return p.pool.AddExpr(ast.NewIncDec(opTok.Span().Merge(target.Span()), op, target.Literal))
}

func (p *Parser) parsePostfixIncDec(left ast.ExprID) ast.ExprID {
	opTok := p.advance()
	e := p.pool.Expr(left)
	if e.Kind != ast.Variable {
		p.fail(errors.E1005, e.Span, "%s requires a variable", opTok.Literal)
		return ast.NoExpr
	}
	op := ast.OpPostInc
	if opTok.Type == token.MINUS_MINUS {
		op = ast.OpPostDec
	}
	name := e.Name
	return p.pool.AddExpr(ast.NewIncDec(e.Span.Merge(opTok.Span()), op, name))
}

func (p *Parser) parseInfixExpr(left ast.ExprID) ast.ExprID {
	opTok := p.advance()
	precedence := precedences[opTok.Type]
	right := p.parseExpr(precedence)
	if p.err != nil {
		return ast.NoExpr
	}
	span := p.pool.Expr(left).Span.Merge(p.pool.Expr(right).Span)
	return p.pool.AddExpr(ast.NewBinary(span, binaryOperators[opTok.Type], left, right))
}

// parseAssign handles "=" and compound assignment. Assignment is right
// associative and its target must be a plain variable.
func (p *Parser) parseAssign(left ast.ExprID) ast.ExprID {
	opTok := p.advance()
	target := p.pool.Expr(left)
	if target.Kind != ast.Variable {
		p.fail(errors.E1005, target.Span, "cannot assign to %s", target.Kind)
		return ast.NoExpr
	}
	name, targetSpan := target.Name, target.Span
	value := p.parseExpr(ASSIGN - 1)
	if p.err != nil {
		return ast.NoExpr
	}
	span := targetSpan.Merge(p.pool.Expr(value).Span)
	return p.pool.AddExpr(ast.NewAssign(span, compoundOperators[opTok.Type], name, value))
}

func (p *Parser) parseTernary(cond ast.ExprID) ast.ExprID {
	p.advance()
	ifTrue := p.parseExpr(LOWEST)
	if _, ok := p.expect(token.COLON, "':'"); !ok {
		return ast.NoExpr
	}
	ifFalse := p.parseExpr(TERNARY - 1)
	if p.err != nil {
		return ast.NoExpr
	}
	span := p.pool.Expr(cond).Span.Merge(p.pool.Expr(ifFalse).Span)
	return p.pool.AddExpr(ast.NewTernary(span, cond, ifTrue, ifFalse))
}

func (p *Parser) parseSwizzle(base ast.ExprID) ast.ExprID {
	p.advance()
	field, ok := p.expect(token.IDENT, "swizzle components")
	if !ok {
		return ast.NoExpr
	}
	span := p.pool.Expr(base).Span.Merge(field.Span())
	return p.pool.AddExpr(ast.NewSwizzle(span, base, field.Literal))
}

func (p *Parser) parseCall(fn ast.ExprID) ast.ExprID {
	callee := p.pool.Expr(fn)
	if callee.Kind != ast.Variable {
		p.fail(errors.E1006, callee.Span, "only named functions can be called")
		return ast.NoExpr
	}
	name, start := callee.Name, callee.Span.Start
	args := p.parseArgs()
	if p.err != nil {
		return ast.NoExpr
	}
	return p.pool.AddExpr(ast.NewCall(p.spanFrom(start), name, args))
}

func (p *Parser) parseConstructor() ast.ExprID {
	tok := p.advance()
	if !p.curIs(token.LPAREN) {
		p.unexpected("'(' after " + tok.Literal)
		return ast.NoExpr
	}
	args := p.parseArgs()
	if p.err != nil {
		return ast.NoExpr
	}
	return p.pool.AddExpr(ast.NewConstructor(p.spanFrom(tok.StartPosition), constructorTypes[tok.Type], args))
}

// parseArgs parses "( expr, ... )" starting at the opening parenthesis.
func (p *Parser) parseArgs() []ast.ExprID {
	p.advance()
	var args []ast.ExprID
	if p.accept(token.RPAREN) {
		return args
	}
	for p.err == nil {
		args = append(args, p.parseExpr(LOWEST))
		if p.accept(token.COMMA) {
			continue
		}
		p.expect(token.RPAREN, "')'")
		break
	}
	return args
}
