package optimize

import (
	"github.com/lightplayer/lps/ast"
	"github.com/lightplayer/lps/fixed"
	"github.com/lightplayer/lps/types"
)

// isValue reports whether e is a numeric literal equal to n.
func isValue(e *ast.Expr, n int32) bool {
	switch e.Kind {
	case ast.IntLit:
		return e.Int == n
	case ast.FloatLit:
		return e.Value == fixed.FromInt(n)
	}
	return false
}

// simplify replaces a scalar identity operation with its other operand.
func (o *optimizer) simplify(id ast.ExprID) bool {
	e := o.pool.Expr(id)
	if e.Kind != ast.Binary || !isScalar(e.Type) {
		return false
	}
	left, right := o.pool.Expr(e.Left), o.pool.Expr(e.Right)
	keep := ast.NoExpr
	switch e.Op {
	case ast.OpAdd:
		if isValue(right, 0) {
			keep = e.Left
		} else if isValue(left, 0) {
			keep = e.Right
		}
	case ast.OpSub:
		if isValue(right, 0) {
			keep = e.Left
		}
	case ast.OpMul:
		if isValue(right, 1) {
			keep = e.Left
		} else if isValue(left, 1) {
			keep = e.Right
		}
	case ast.OpDiv:
		if isValue(right, 1) {
			keep = e.Left
		}
	}
	if !keep.Valid() || !isScalar(o.pool.TypeOf(keep)) {
		return false
	}

	// The operand takes over the node, including any pending promotion.
	node := *o.pool.Expr(keep)
	node.Span = e.Span
	node.Promoted = node.Promoted || e.Promoted
	node.Type = e.Type
	*e = node
	return true
}

func isScalar(t types.Type) bool {
	return t == types.Fixed || t == types.Int32
}
