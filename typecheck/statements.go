package typecheck

import (
	"github.com/lightplayer/lps/ast"
	"github.com/lightplayer/lps/types"
)

func (c *Checker) checkStmt(id ast.StmtID) error {
	if !id.Valid() {
		return nil
	}
	s := c.pool.Stmt(id)
	switch s.Kind {
	case ast.VarDecl:
		if s.Value.Valid() {
			vt, err := c.check(s.Value)
			if err != nil {
				return err
			}
			if err := c.coerce(s.Value, s.DeclType, vt); err != nil {
				return err
			}
		}
		return c.declare(s.Name, s.DeclType, s.Span)

	case ast.ExprStmt:
		_, err := c.check(s.Value)
		return err

	case ast.Return:
		return c.checkReturn(s)

	case ast.Block:
		c.push()
		defer c.pop()
		for _, child := range s.Body {
			if err := c.checkStmt(child); err != nil {
				return err
			}
		}
		return nil

	case ast.If:
		if err := c.checkCondition(s.Cond); err != nil {
			return err
		}
		if err := c.checkScoped(s.Then); err != nil {
			return err
		}
		return c.checkScoped(s.Else)

	case ast.While:
		if err := c.checkCondition(s.Cond); err != nil {
			return err
		}
		return c.checkScoped(s.Then)

	case ast.For:
		c.push()
		defer c.pop()
		if err := c.checkStmt(s.Init); err != nil {
			return err
		}
		if s.Cond.Valid() {
			if err := c.checkCondition(s.Cond); err != nil {
				return err
			}
		}
		if s.Step.Valid() {
			if _, err := c.check(s.Step); err != nil {
				return err
			}
		}
		return c.checkScoped(s.Then)
	}
	return c.fail(InvalidOperation, s.Span, "unknown statement kind %s", s.Kind)
}

// checkScoped checks a branch or loop body in its own scope, so a single
// declaration used as a body does not leak.
func (c *Checker) checkScoped(id ast.StmtID) error {
	c.push()
	defer c.pop()
	return c.checkStmt(id)
}

func (c *Checker) checkReturn(s *ast.Stmt) error {
	span, value := s.Span, s.Value
	if c.inferReturn && c.ret == types.None {
		c.ret = types.Void
		if value.Valid() {
			vt, err := c.check(value)
			if err != nil {
				return err
			}
			if vt == types.Void {
				return c.fail(InvalidReturn, span, "cannot return the result of a void function")
			}
			c.ret = vt
		}
		return nil
	}

	if !value.Valid() {
		if c.ret != types.Void {
			return c.fail(InvalidReturn, span, "missing return value, expected %s", c.ret)
		}
		return nil
	}
	vt, err := c.check(value)
	if err != nil {
		return err
	}
	if c.ret == types.Void {
		return c.fail(InvalidReturn, span, "void function cannot return a value")
	}
	return c.coerce(value, c.ret, vt)
}
