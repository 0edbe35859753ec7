package compiler

import (
	"github.com/lightplayer/lps/ast"
	"github.com/lightplayer/lps/op"
)

func (g *generator) stmt(id ast.StmtID) {
	if !id.Valid() {
		return
	}
	s := g.pool.Stmt(id)
	span := s.Span
	switch s.Kind {
	case ast.VarDecl:
		slot, ok := g.table.DeclSlot(id)
		if !ok {
			internalError(span, "no local slot for %s", s.Name)
		}
		if s.Value.Valid() {
			g.expr(s.Value)
		} else {
			g.pushZero(span, s.DeclType)
		}
		g.storeLocal(span, slot)

	case ast.ExprStmt:
		g.expr(s.Value)
		g.drop(span, g.pool.TypeOf(s.Value).Size())

	case ast.Return:
		if s.Value.Valid() {
			g.expr(s.Value)
		}
		g.emit(span, op.Return, 0)

	case ast.Block:
		for _, child := range s.Body {
			g.stmt(child)
		}

	case ast.If:
		g.expr(s.Cond)
		toElse := g.emitJump(span, op.JumpIfZero)
		g.stmt(s.Then)
		if s.Else.Valid() {
			toEnd := g.emitJump(span, op.Jump)
			g.patch(toElse)
			g.stmt(s.Else)
			g.patch(toEnd)
		} else {
			g.patch(toElse)
		}

	case ast.While:
		top := len(g.code)
		g.expr(s.Cond)
		exit := g.emitJump(span, op.JumpIfZero)
		g.stmt(s.Then)
		g.emitJumpBack(span, op.Jump, top)
		g.patch(exit)

	case ast.For:
		g.stmt(s.Init)
		top := len(g.code)
		exit := -1
		if s.Cond.Valid() {
			g.expr(s.Cond)
			exit = g.emitJump(span, op.JumpIfZero)
		}
		g.stmt(s.Then)
		if s.Step.Valid() {
			g.expr(s.Step)
			g.drop(span, g.pool.TypeOf(s.Step).Size())
		}
		g.emitJumpBack(span, op.Jump, top)
		if exit >= 0 {
			g.patch(exit)
		}

	default:
		internalError(span, "unknown statement kind %s", s.Kind)
	}
}
