package compiler

import (
	"github.com/lightplayer/lps/ast"
	"github.com/lightplayer/lps/internal/token"
	"github.com/lightplayer/lps/op"
)

var swizzleOps = map[[2]int]op.Code{
	{3, 1}: op.Swizzle3to1,
	{3, 2}: op.Swizzle3to2,
	{3, 3}: op.Swizzle3to3,
	{4, 1}: op.Swizzle4to1,
	{4, 2}: op.Swizzle4to2,
	{4, 3}: op.Swizzle4to3,
	{4, 4}: op.Swizzle4to4,
}

func (g *generator) swizzle(id ast.ExprID) {
	e := g.pool.Expr(id)
	base, comps, span := e.Left, e.Components, e.Span
	g.expr(base)
	g.lowerSwizzle(span, g.pool.TypeOf(base).Size(), comps)
}

// lowerSwizzle rearranges the width words on top of the stack into the
// selected components.
func (g *generator) lowerSwizzle(span token.Span, width int, comps []uint8) {
	if isIdentity(width, comps) {
		return
	}
	if width == 2 && len(comps) <= 2 {
		g.swizzle2(span, comps)
		return
	}
	switch width {
	case 2:
		// Widen to four lanes so the general opcodes apply.
		g.emit(span, op.Dup2, 0)
		width = 4
	case 3:
		if len(comps) == 4 {
			g.emit(span, op.Push, 0)
			width = 4
		}
	}
	code, ok := swizzleOps[[2]int{width, len(comps)}]
	if !ok {
		internalError(span, "no swizzle from %d to %d lanes", width, len(comps))
	}
	g.emit(span, code, op.PackLanes(comps...))
}

// swizzle2 handles one or two lanes taken from a vec2 with stack
// primitives.
func (g *generator) swizzle2(span token.Span, comps []uint8) {
	switch {
	case len(comps) == 1 && comps[0] == 0:
		g.emit(span, op.Drop1, 0)
	case len(comps) == 1:
		g.emit(span, op.Swap, 0)
		g.emit(span, op.Drop1, 0)
	case comps[0] == 1 && comps[1] == 0:
		g.emit(span, op.Swap, 0)
	case comps[0] == 0:
		// .xx
		g.emit(span, op.Drop1, 0)
		g.emit(span, op.Dup1, 0)
	default:
		// .yy
		g.emit(span, op.Swap, 0)
		g.emit(span, op.Drop1, 0)
		g.emit(span, op.Dup1, 0)
	}
}

func isIdentity(width int, comps []uint8) bool {
	if len(comps) != width {
		return false
	}
	for i, c := range comps {
		if int(c) != i {
			return false
		}
	}
	return true
}
