package compiler

import (
	"github.com/lightplayer/lps/ast"
	"github.com/lightplayer/lps/fixed"
	"github.com/lightplayer/lps/internal/token"
	"github.com/lightplayer/lps/op"
	"github.com/lightplayer/lps/typecheck"
	"github.com/lightplayer/lps/types"
)

// arithOps is indexed by operator - OpAdd: + - * / %.
var arithOps = map[types.Type][5]op.Code{
	types.Fixed: {op.AddFixed, op.SubFixed, op.MulFixed, op.DivFixed, op.ModFixed},
	types.Int32: {op.AddInt32, op.SubInt32, op.MulInt32, op.DivInt32, op.ModInt32},
	types.Vec2:  {op.AddVec2, op.SubVec2, op.MulVec2, op.DivVec2, op.ModVec2},
	types.Vec3:  {op.AddVec3, op.SubVec3, op.MulVec3, op.DivVec3, op.ModVec3},
	types.Vec4:  {op.AddVec4, op.SubVec4, op.MulVec4, op.DivVec4, op.ModVec4},
	types.Mat3:  {op.AddMat3, op.SubMat3, op.MulMat3, op.Invalid, op.Invalid},
}

// scaleOps holds the vector-by-scalar forms of * and /.
var scaleOps = map[types.Type][2]op.Code{
	types.Vec2: {op.MulVec2Scalar, op.DivVec2Scalar},
	types.Vec3: {op.MulVec3Scalar, op.DivVec3Scalar},
	types.Vec4: {op.MulVec4Scalar, op.DivVec4Scalar},
	types.Mat3: {op.MulMat3Scalar, op.DivMat3Scalar},
}

var negOps = map[types.Type]op.Code{
	types.Fixed: op.NegFixed,
	types.Int32: op.NegInt32,
	types.Vec2:  op.NegVec2,
	types.Vec3:  op.NegVec3,
	types.Vec4:  op.NegVec4,
	types.Mat3:  op.NegMat3,
}

var fixedCompare = map[ast.Operator]op.Code{
	ast.OpLess:      op.LessFixed,
	ast.OpGreater:   op.GreaterFixed,
	ast.OpLessEq:    op.LessEqFixed,
	ast.OpGreaterEq: op.GreaterEqFixed,
	ast.OpEq:        op.EqFixed,
	ast.OpNotEq:     op.NotEqFixed,
}

var int32Compare = map[ast.Operator]op.Code{
	ast.OpLess:      op.LessInt32,
	ast.OpGreater:   op.GreaterInt32,
	ast.OpLessEq:    op.LessEqInt32,
	ast.OpGreaterEq: op.GreaterEqInt32,
	ast.OpEq:        op.EqInt32,
	ast.OpNotEq:     op.NotEqInt32,
}

var bitwiseOps = map[ast.Operator]op.Code{
	ast.OpBitAnd: op.BitAndInt32,
	ast.OpBitOr:  op.BitOrInt32,
	ast.OpBitXor: op.BitXorInt32,
	ast.OpShl:    op.ShlInt32,
	ast.OpShr:    op.ShrInt32,
}

func scalarType(t types.Type) types.Type {
	if t == types.Bool {
		return types.Fixed
	}
	return t
}

// expr emits code leaving the value of id on the stack, converted to the
// node's checked type.
func (g *generator) expr(id ast.ExprID) {
	e := g.pool.Expr(id)
	if e.Type == types.None {
		internalError(e.Span, "untyped %s expression", e.Kind)
	}
	span, promoted := e.Span, e.Promoted
	g.exprValue(id)
	if promoted {
		g.emit(span, op.Int32ToFixed, 0)
	}
}

func (g *generator) exprValue(id ast.ExprID) {
	e := g.pool.Expr(id)
	span := e.Span
	switch e.Kind {
	case ast.IntLit:
		g.emit(span, op.PushInt32, e.Int)
	case ast.FloatLit:
		g.emit(span, op.Push, e.Value.Raw())
	case ast.BoolLit:
		g.emit(span, op.Push, fixed.Bool(e.Int != 0).Raw())
	case ast.Variable:
		g.variable(id)
	case ast.Binary:
		g.binary(id)
	case ast.Unary:
		g.unary(id)
	case ast.Ternary:
		g.ternary(id)
	case ast.Assign:
		g.assign(id)
	case ast.IncDec:
		g.incDec(id)
	case ast.Call:
		g.call(id)
	case ast.Constructor:
		g.constructor(id)
	case ast.Swizzle:
		g.swizzle(id)
	default:
		internalError(span, "unknown expression kind %s", e.Kind)
	}
}

func (g *generator) variable(id ast.ExprID) {
	e := g.pool.Expr(id)
	if slot, ok := g.table.Slot(id); ok {
		g.loadLocal(e.Span, slot)
		return
	}
	v, ok := typecheck.LookupVariable(e.Name)
	if !ok {
		internalError(e.Span, "unresolved variable %s", e.Name)
	}
	for _, src := range v.Sources {
		g.emit(e.Span, op.Load, int32(src))
	}
}

func (g *generator) binary(id ast.ExprID) {
	e := g.pool.Expr(id)
	o, left, right, span := e.Op, e.Left, e.Right, e.Span
	lt, rt := g.pool.TypeOf(left), g.pool.TypeOf(right)

	switch {
	case o.IsArithmetic():
		g.arith(span, o, lt, rt, func() { g.expr(left) }, func() { g.expr(right) })
	case o.IsComparison():
		g.expr(left)
		g.expr(right)
		if lt == types.Int32 && rt == types.Int32 {
			g.emit(span, int32Compare[o], 0)
		} else {
			g.emit(span, fixedCompare[o], 0)
		}
	case o == ast.OpAnd:
		g.expr(left)
		g.expr(right)
		g.emit(span, op.And, 0)
	case o == ast.OpOr:
		g.expr(left)
		g.expr(right)
		g.emit(span, op.Or, 0)
	case o.IsBitwise():
		g.expr(left)
		g.expr(right)
		g.emit(span, bitwiseOps[o], 0)
	default:
		internalError(span, "unknown binary operator %s", o)
	}
}

// arith emits an arithmetic operation on operands of types lt and rt.
// Scalars meeting a vector or matrix are broadcast, except for * and /,
// which use the scalar forms with the vector emitted first.
func (g *generator) arith(span token.Span, o ast.Operator, lt, rt types.Type, left, right func()) {
	l, r := scalarType(lt), scalarType(rt)
	idx := int(o - ast.OpAdd)
	switch {
	case l == r:
		left()
		right()
		code := arithOps[l][idx]
		if code == op.Invalid {
			internalError(span, "operator %s on %s", o, l)
		}
		g.emit(span, code, 0)
	case l == types.Mat3 && r == types.Vec3 && o == ast.OpMul:
		left()
		right()
		g.emit(span, op.MulMat3Vec3, 0)
	case r == types.Fixed && (l.IsVector() || l == types.Mat3):
		left()
		right()
		if o == ast.OpMul || o == ast.OpDiv {
			g.emit(span, scaleOps[l][idx-2], 0)
			return
		}
		g.broadcast(span, l.Size())
		g.emit(span, arithOps[l][idx], 0)
	case l == types.Fixed && (r.IsVector() || r == types.Mat3):
		if o == ast.OpMul {
			right()
			left()
			g.emit(span, scaleOps[r][0], 0)
			return
		}
		left()
		g.broadcast(span, r.Size())
		right()
		code := arithOps[r][idx]
		if code == op.Invalid {
			internalError(span, "operator %s on %s", o, r)
		}
		g.emit(span, code, 0)
	default:
		internalError(span, "operator %s on %s and %s", o, lt, rt)
	}
}

func (g *generator) unary(id ast.ExprID) {
	e := g.pool.Expr(id)
	o, operand, span := e.Op, e.Left, e.Span
	g.expr(operand)
	switch o {
	case ast.OpNeg:
		t := scalarType(g.pool.TypeOf(operand))
		code, ok := negOps[t]
		if !ok {
			internalError(span, "cannot negate %s", t)
		}
		g.emit(span, code, 0)
	case ast.OpNot:
		g.emit(span, op.Not, 0)
	case ast.OpBitNot:
		g.emit(span, op.BitNotInt32, 0)
	default:
		internalError(span, "unknown unary operator %s", o)
	}
}

func (g *generator) ternary(id ast.ExprID) {
	e := g.pool.Expr(id)
	cond, ifTrue, ifFalse, span := e.Cond, e.Left, e.Right, e.Span
	g.expr(cond)
	toElse := g.emitJump(span, op.JumpIfZero)
	g.expr(ifTrue)
	toEnd := g.emitJump(span, op.Jump)
	g.patch(toElse)
	g.expr(ifFalse)
	g.patch(toEnd)
}

func (g *generator) slot(id ast.ExprID) int {
	slot, ok := g.table.Slot(id)
	if !ok {
		e := g.pool.Expr(id)
		internalError(e.Span, "no local slot for %s", e.Name)
	}
	return slot
}

// assign stores into a local and leaves the stored value on the stack.
func (g *generator) assign(id ast.ExprID) {
	e := g.pool.Expr(id)
	o, value, span := e.Op, e.Right, e.Span
	slot := g.slot(id)
	target := localType(g.fn, slot)

	switch {
	case o == ast.OpNone:
		g.expr(value)
	case o.IsBitwise():
		g.loadLocal(span, slot)
		g.expr(value)
		g.emit(span, bitwiseOps[o], 0)
	default:
		g.arith(span, o, target, g.pool.TypeOf(value),
			func() { g.loadLocal(span, slot) },
			func() { g.expr(value) })
	}
	g.dup(span, target.Size())
	g.storeLocal(span, slot)
}

func (g *generator) incDec(id ast.ExprID) {
	e := g.pool.Expr(id)
	o, span := e.Op, e.Span
	slot := g.slot(id)
	t := localType(g.fn, slot)

	add, sub, one := op.AddFixed, op.SubFixed, fixed.One.Raw()
	push := op.Push
	if t == types.Int32 {
		add, sub, one, push = op.AddInt32, op.SubInt32, 1, op.PushInt32
	}
	step := add
	if !o.IsIncrement() {
		step = sub
	}

	g.loadLocal(span, slot)
	if o.IsPostfix() {
		g.emit(span, op.Dup1, 0)
	}
	g.emit(span, push, one)
	g.emit(span, step, 0)
	if !o.IsPostfix() {
		g.emit(span, op.Dup1, 0)
	}
	g.storeLocal(span, slot)
}

func (g *generator) constructor(id ast.ExprID) {
	e := g.pool.Expr(id)
	target, args, span := e.Target, e.Args, e.Span
	lanes := 0
	for _, arg := range args {
		g.expr(arg)
		lanes += g.pool.TypeOf(arg).Size()
	}
	if lanes == 1 && target.Size() > 1 {
		g.broadcast(span, target.Size())
	}
}

func (g *generator) call(id ast.ExprID) {
	e := g.pool.Expr(id)
	name, args, span := e.Name, e.Args, e.Span

	if idx, ok := g.userFunction(name); ok {
		for _, arg := range args {
			g.expr(arg)
		}
		g.emit(span, op.Call, int32(idx))
		return
	}

	b, ok := typecheck.LookupFunction(name)
	if !ok {
		internalError(span, "unresolved function %s", name)
	}
	switch b.Kind {
	case typecheck.NoiseBuiltin:
		g.expr(args[0])
		octaves := int32(fixed.DefaultOctaves)
		if len(args) > 1 {
			octaves = g.pool.Expr(args[1]).Int
		}
		g.emit(span, op.Perlin3, octaves)
	case typecheck.TextureBuiltin:
		index := g.pool.Expr(args[0]).Int
		g.expr(args[1])
		g.emit(span, b.Ops[0], index)
	default:
		for _, arg := range args {
			g.expr(arg)
		}
		code := b.Opcode(len(args), g.pool.TypeOf(args[0]))
		if code == op.Invalid {
			internalError(span, "no opcode for %s with %d arguments", name, len(args))
		}
		g.emit(span, code, 0)
	}
}

// userFunction returns the function table index of a user function.
func (g *generator) userFunction(name string) (int, bool) {
	for i := 1; i < len(g.table.Functions); i++ {
		if g.table.Functions[i].Name == name {
			return i, true
		}
	}
	return -1, false
}
