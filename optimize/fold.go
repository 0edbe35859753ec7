package optimize

import (
	"github.com/lightplayer/lps/ast"
	"github.com/lightplayer/lps/fixed"
	"github.com/lightplayer/lps/op"
	"github.com/lightplayer/lps/typecheck"
	"github.com/lightplayer/lps/types"
)

// constant is the value of a literal operand as the VM would see it on the
// stack.
type constant struct {
	isInt bool
	i     int32
	f     fixed.Fixed
}

func (c constant) raw() int32 {
	if c.isInt {
		return c.i
	}
	return c.f.Raw()
}

func constantOf(e *ast.Expr) (constant, bool) {
	switch e.Kind {
	case ast.IntLit:
		if e.Promoted {
			return constant{f: fixed.FromInt(e.Int)}, true
		}
		return constant{isInt: true, i: e.Int}, true
	case ast.FloatLit:
		return constant{f: e.Value}, true
	case ast.BoolLit:
		return constant{f: fixed.Bool(e.Int != 0)}, true
	}
	return constant{}, false
}

// scalarFolds evaluates the fixed-point built-ins by opcode.
var scalarFolds = map[op.Code]func(a []fixed.Fixed) fixed.Fixed{
	op.SinFixed:        func(a []fixed.Fixed) fixed.Fixed { return fixed.Sin(a[0]) },
	op.CosFixed:        func(a []fixed.Fixed) fixed.Fixed { return fixed.Cos(a[0]) },
	op.TanFixed:        func(a []fixed.Fixed) fixed.Fixed { return fixed.Tan(a[0]) },
	op.AbsFixed:        func(a []fixed.Fixed) fixed.Fixed { return fixed.Abs(a[0]) },
	op.FloorFixed:      func(a []fixed.Fixed) fixed.Fixed { return fixed.Floor(a[0]) },
	op.CeilFixed:       func(a []fixed.Fixed) fixed.Fixed { return fixed.Ceil(a[0]) },
	op.SqrtFixed:       func(a []fixed.Fixed) fixed.Fixed { return fixed.Sqrt(a[0]) },
	op.SignFixed:       func(a []fixed.Fixed) fixed.Fixed { return fixed.Sign(a[0]) },
	op.FractFixed:      func(a []fixed.Fixed) fixed.Fixed { return a[0].Frac() },
	op.SaturateFixed:   func(a []fixed.Fixed) fixed.Fixed { return fixed.Saturate(a[0]) },
	op.AtanFixed:       func(a []fixed.Fixed) fixed.Fixed { return fixed.Atan(a[0]) },
	op.Atan2Fixed:      func(a []fixed.Fixed) fixed.Fixed { return fixed.Atan2(a[0], a[1]) },
	op.PowFixed:        func(a []fixed.Fixed) fixed.Fixed { return fixed.Pow(a[0], a[1]) },
	op.ModFixed:        func(a []fixed.Fixed) fixed.Fixed { return fixed.Mod(a[0], a[1]) },
	op.MinFixed:        func(a []fixed.Fixed) fixed.Fixed { return fixed.Min(a[0], a[1]) },
	op.MaxFixed:        func(a []fixed.Fixed) fixed.Fixed { return fixed.Max(a[0], a[1]) },
	op.StepFixed:       func(a []fixed.Fixed) fixed.Fixed { return fixed.Step(a[0], a[1]) },
	op.ClampFixed:      func(a []fixed.Fixed) fixed.Fixed { return fixed.Clamp(a[0], a[1], a[2]) },
	op.LerpFixed:       func(a []fixed.Fixed) fixed.Fixed { return fixed.Lerp(a[0], a[1], a[2]) },
	op.SmoothstepFixed: func(a []fixed.Fixed) fixed.Fixed { return fixed.Smoothstep(a[0], a[1], a[2]) },
}

// fold replaces id with a literal when its value is known at compile time.
func (o *optimizer) fold(id ast.ExprID) bool {
	e := o.pool.Expr(id)
	switch e.Kind {
	case ast.Binary:
		l, lok := constantOf(o.pool.Expr(e.Left))
		r, rok := constantOf(o.pool.Expr(e.Right))
		if !lok || !rok {
			return false
		}
		return foldBinary(e, l, r)
	case ast.Unary:
		v, ok := constantOf(o.pool.Expr(e.Left))
		if !ok {
			return false
		}
		return foldUnary(e, v)
	case ast.Call:
		return o.foldCall(e)
	}
	return false
}

func foldBinary(e *ast.Expr, l, r constant) bool {
	o := e.Op
	switch {
	case o.IsArithmetic() && l.isInt && r.isInt:
		v, ok := intArith(o, l.i, r.i)
		if !ok {
			return false
		}
		setInt(e, v)
	case o.IsArithmetic():
		setFixed(e, fixedArith(o, l.f, r.f))
	case o.IsComparison() && l.isInt && r.isInt:
		setBool(e, compare(o, l.i, r.i))
	case o.IsComparison():
		setBool(e, compare(o, l.f.Raw(), r.f.Raw()))
	case o == ast.OpAnd:
		setBool(e, l.raw() != 0 && r.raw() != 0)
	case o == ast.OpOr:
		setBool(e, l.raw() != 0 || r.raw() != 0)
	case o.IsBitwise() && l.isInt && r.isInt:
		setInt(e, bitwise(o, l.i, r.i))
	default:
		return false
	}
	return true
}

func foldUnary(e *ast.Expr, v constant) bool {
	switch {
	case e.Op == ast.OpNeg && v.isInt:
		setInt(e, -v.i)
	case e.Op == ast.OpNeg:
		setFixed(e, fixed.Neg(v.f))
	case e.Op == ast.OpNot:
		setBool(e, v.raw() == 0)
	case e.Op == ast.OpBitNot && v.isInt:
		setInt(e, ^v.i)
	default:
		return false
	}
	return true
}

func (o *optimizer) foldCall(e *ast.Expr) bool {
	b, ok := typecheck.LookupFunction(e.Name)
	if !ok || b.Kind != typecheck.ScalarBuiltin || e.Type != types.Fixed {
		return false
	}
	eval, ok := scalarFolds[b.Opcode(len(e.Args), types.Fixed)]
	if !ok {
		return false
	}
	args := make([]fixed.Fixed, len(e.Args))
	for i, arg := range e.Args {
		c, ok := constantOf(o.pool.Expr(arg))
		if !ok || c.isInt {
			return false
		}
		args[i] = c.f
	}
	setFixed(e, eval(args))
	return true
}

// intArith mirrors the Int32 opcodes. Division by zero is left to the VM,
// which reports it.
func intArith(o ast.Operator, a, b int32) (int32, bool) {
	switch o {
	case ast.OpAdd:
		return a + b, true
	case ast.OpSub:
		return a - b, true
	case ast.OpMul:
		return a * b, true
	case ast.OpDiv:
		if b == 0 {
			return 0, false
		}
		return a / b, true
	case ast.OpMod:
		if b == 0 {
			return 0, false
		}
		return a % b, true
	}
	return 0, false
}

func fixedArith(o ast.Operator, a, b fixed.Fixed) fixed.Fixed {
	switch o {
	case ast.OpAdd:
		return a + b
	case ast.OpSub:
		return a - b
	case ast.OpMul:
		return fixed.Mul(a, b)
	case ast.OpDiv:
		return fixed.Div(a, b)
	default:
		return fixed.Mod(a, b)
	}
}

func compare(o ast.Operator, a, b int32) bool {
	switch o {
	case ast.OpLess:
		return a < b
	case ast.OpGreater:
		return a > b
	case ast.OpLessEq:
		return a <= b
	case ast.OpGreaterEq:
		return a >= b
	case ast.OpEq:
		return a == b
	default:
		return a != b
	}
}

// bitwise mirrors the VM: shift counts use their low five bits.
func bitwise(o ast.Operator, a, b int32) int32 {
	switch o {
	case ast.OpBitAnd:
		return a & b
	case ast.OpBitOr:
		return a | b
	case ast.OpBitXor:
		return a ^ b
	case ast.OpShl:
		return a << (uint32(b) & 31)
	default:
		return a >> (uint32(b) & 31)
	}
}

func clearOperands(e *ast.Expr) {
	e.Op = ast.OpNone
	e.Left, e.Right, e.Cond = ast.NoExpr, ast.NoExpr, ast.NoExpr
	e.Args = nil
	e.Name = ""
	e.Components = nil
}

// setInt turns e into an integer literal. A promoted node becomes the
// equivalent float literal.
func setInt(e *ast.Expr, v int32) {
	if e.Promoted {
		setFixed(e, fixed.FromInt(v))
		return
	}
	clearOperands(e)
	e.Kind = ast.IntLit
	e.Int = v
	e.Type = types.Int32
}

func setFixed(e *ast.Expr, v fixed.Fixed) {
	clearOperands(e)
	e.Kind = ast.FloatLit
	e.Value = v
	e.Type = types.Fixed
	e.Promoted = false
}

func setBool(e *ast.Expr, v bool) {
	clearOperands(e)
	e.Kind = ast.BoolLit
	e.Int = 0
	if v {
		e.Int = 1
	}
	e.Type = types.Bool
}
