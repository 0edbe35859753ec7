package compiler

import (
	"context"
	"testing"

	"github.com/lightplayer/lps/ast"
	"github.com/lightplayer/lps/bytecode"
	"github.com/lightplayer/lps/fixed"
	"github.com/lightplayer/lps/op"
	"github.com/lightplayer/lps/parser"
	"github.com/lightplayer/lps/typecheck"
	"github.com/lightplayer/lps/types"
	"github.com/stretchr/testify/require"
)

const one = int32(65536)

func ins(code op.Code, arg ...int32) bytecode.Instruction {
	i := bytecode.Instruction{Op: code}
	if len(arg) > 0 {
		i.Arg = arg[0]
	}
	return i
}

func compileExpr(t *testing.T, src string) *bytecode.Program {
	t.Helper()
	pool, id, err := parser.ParseExpr(context.Background(), src)
	require.NoError(t, err)
	_, err = typecheck.CheckExpr(pool, id)
	require.NoError(t, err)
	p := GenerateExpr(pool, id)
	require.NoError(t, p.Validate())
	return p
}

func compileProgram(t *testing.T, src string) *bytecode.Program {
	t.Helper()
	pool, prog, err := parser.Parse(context.Background(), src)
	require.NoError(t, err)
	res, err := typecheck.CheckProgram(pool, prog)
	require.NoError(t, err)
	p := GenerateProgram(pool, prog, Analyze(pool, prog, res))
	require.NoError(t, p.Validate())
	return p
}

func TestExpressions(t *testing.T) {
	xnorm, ynorm := int32(op.XNorm), int32(op.YNorm)
	tests := []struct {
		input string
		want  []bytecode.Instruction
	}{
		{"1 + 2.0", []bytecode.Instruction{
			ins(op.PushInt32, 1), ins(op.Int32ToFixed), ins(op.Push, 2*one), ins(op.AddFixed), ins(op.Return),
		}},
		{"7 % 2", []bytecode.Instruction{
			ins(op.PushInt32, 7), ins(op.PushInt32, 2), ins(op.ModInt32), ins(op.Return),
		}},
		{"true", []bytecode.Instruction{ins(op.Push, one), ins(op.Return)}},
		{"uv.yx", []bytecode.Instruction{
			ins(op.Load, xnorm), ins(op.Load, ynorm), ins(op.Swap), ins(op.Return),
		}},
		{"uv.y", []bytecode.Instruction{
			ins(op.Load, xnorm), ins(op.Load, ynorm), ins(op.Swap), ins(op.Drop1), ins(op.Return),
		}},
		{"uv.xx", []bytecode.Instruction{
			ins(op.Load, xnorm), ins(op.Load, ynorm), ins(op.Drop1), ins(op.Dup1), ins(op.Return),
		}},
		{"uv.xy", []bytecode.Instruction{
			ins(op.Load, xnorm), ins(op.Load, ynorm), ins(op.Return),
		}},
		{"uv.xyx", []bytecode.Instruction{
			ins(op.Load, xnorm), ins(op.Load, ynorm), ins(op.Dup2), ins(op.Swizzle4to3, op.PackLanes(0, 1, 0)), ins(op.Return),
		}},
		{"vec4(1.0).wzyx", []bytecode.Instruction{
			ins(op.Push, one), ins(op.Dup1), ins(op.Dup1), ins(op.Dup1),
			ins(op.Swizzle4to4, op.PackLanes(3, 2, 1, 0)), ins(op.Return),
		}},
		{"vec3(1.0).zyxz", []bytecode.Instruction{
			ins(op.Push, one), ins(op.Dup1), ins(op.Dup1), ins(op.Push, 0),
			ins(op.Swizzle4to4, op.PackLanes(2, 1, 0, 2)), ins(op.Return),
		}},
		{"vec3(1.0) * 2.0", []bytecode.Instruction{
			ins(op.Push, one), ins(op.Dup1), ins(op.Dup1), ins(op.Push, 2*one), ins(op.MulVec3Scalar), ins(op.Return),
		}},
		{"2.0 * vec3(1.0)", []bytecode.Instruction{
			ins(op.Push, one), ins(op.Dup1), ins(op.Dup1), ins(op.Push, 2*one), ins(op.MulVec3Scalar), ins(op.Return),
		}},
		{"uv / 2", []bytecode.Instruction{
			ins(op.Load, xnorm), ins(op.Load, ynorm), ins(op.PushInt32, 2), ins(op.Int32ToFixed), ins(op.DivVec2Scalar), ins(op.Return),
		}},
		{"uv - 0.5", []bytecode.Instruction{
			ins(op.Load, xnorm), ins(op.Load, ynorm), ins(op.Push, one/2), ins(op.Dup1), ins(op.SubVec2), ins(op.Return),
		}},
		{"1.0 - uv", []bytecode.Instruction{
			ins(op.Push, one), ins(op.Dup1), ins(op.Load, xnorm), ins(op.Load, ynorm), ins(op.SubVec2), ins(op.Return),
		}},
		{"-uv", []bytecode.Instruction{
			ins(op.Load, xnorm), ins(op.Load, ynorm), ins(op.NegVec2), ins(op.Return),
		}},
		{"x > 0.5 ? 1.0 : 0.0", []bytecode.Instruction{
			ins(op.Load, xnorm), ins(op.Push, one/2), ins(op.GreaterFixed),
			ins(op.JumpIfZero, 2), ins(op.Push, one), ins(op.Jump, 1), ins(op.Push, 0), ins(op.Return),
		}},
		{"3 < 4", []bytecode.Instruction{
			ins(op.PushInt32, 3), ins(op.PushInt32, 4), ins(op.LessInt32), ins(op.Return),
		}},
		{"x && y", []bytecode.Instruction{
			ins(op.Load, xnorm), ins(op.Load, ynorm), ins(op.And), ins(op.Return),
		}},
		{"~5 << 1", []bytecode.Instruction{
			ins(op.PushInt32, 5), ins(op.BitNotInt32), ins(op.PushInt32, 1), ins(op.ShlInt32), ins(op.Return),
		}},
		{"sin(uv)", []bytecode.Instruction{
			ins(op.Load, xnorm), ins(op.Load, ynorm), ins(op.Drop1), ins(op.SinFixed),
			ins(op.Load, xnorm), ins(op.Load, ynorm), ins(op.Swap), ins(op.Drop1), ins(op.SinFixed),
			ins(op.Return),
		}},
		{"atan(y, x)", []bytecode.Instruction{
			ins(op.Load, ynorm), ins(op.Load, xnorm), ins(op.Atan2Fixed), ins(op.Return),
		}},
		{"length(uv)", []bytecode.Instruction{
			ins(op.Load, xnorm), ins(op.Load, ynorm), ins(op.Length2), ins(op.Return),
		}},
		{"perlin3(vec3(uv, t))", []bytecode.Instruction{
			ins(op.Load, xnorm), ins(op.Load, ynorm), ins(op.Load, int32(op.Time)), ins(op.Perlin3, fixed.DefaultOctaves), ins(op.Return),
		}},
		{"perlin3(vec3(uv, t), 5)", []bytecode.Instruction{
			ins(op.Load, xnorm), ins(op.Load, ynorm), ins(op.Load, int32(op.Time)), ins(op.Perlin3, 5), ins(op.Return),
		}},
		{"texture(2, uv)", []bytecode.Instruction{
			ins(op.Load, xnorm), ins(op.Load, ynorm), ins(op.TextureSampleRGBA, 2), ins(op.Return),
		}},
		{"coord", []bytecode.Instruction{
			ins(op.Load, int32(op.XInt)), ins(op.Load, int32(op.YInt)), ins(op.Return),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := compileExpr(t, tt.input)
			require.Equal(t, tt.want, p.Code)
			require.Len(t, p.SourceMap, len(p.Code))
			require.Equal(t, len(p.Code), p.MainFunction().Length)
		})
	}
}

func TestExpressionResultType(t *testing.T) {
	require.Equal(t, types.Vec3, compileExpr(t, "vec3(x, y, t)").ResultType())
	require.Equal(t, types.Fixed, compileExpr(t, "1 + 2.0").ResultType())
	require.Equal(t, types.Bool, compileExpr(t, "x < y").ResultType())
}

func TestForLoop(t *testing.T) {
	p := compileProgram(t, "int n = 0; for (int i = 0; i < 3; i++) { n += i; } return n;")
	want := []bytecode.Instruction{
		ins(op.PushInt32, 0),       // 0
		ins(op.StoreLocalInt32, 0), // 1
		ins(op.PushInt32, 0),       // 2
		ins(op.StoreLocalInt32, 1), // 3
		ins(op.LoadLocalInt32, 1),  // 4 loop top
		ins(op.PushInt32, 3),       // 5
		ins(op.LessInt32),          // 6
		ins(op.JumpIfZero, 13),     // 7 -> 21
		ins(op.LoadLocalInt32, 0),  // 8
		ins(op.LoadLocalInt32, 1),  // 9
		ins(op.AddInt32),           // 10
		ins(op.Dup1),               // 11
		ins(op.StoreLocalInt32, 0), // 12
		ins(op.Drop1),              // 13
		ins(op.LoadLocalInt32, 1),  // 14
		ins(op.Dup1),               // 15
		ins(op.PushInt32, 1),       // 16
		ins(op.AddInt32),           // 17
		ins(op.StoreLocalInt32, 1), // 18
		ins(op.Drop1),              // 19
		ins(op.Jump, -17),          // 20 -> 4
		ins(op.LoadLocalInt32, 0),  // 21
		ins(op.Return),             // 22
	}
	require.Equal(t, want, p.Code)

	main := p.MainFunction()
	require.Equal(t, types.Int32, main.ReturnType)
	require.Equal(t, []bytecode.LocalVarDef{
		{Name: "n", Type: types.Int32},
		{Name: "i", Type: types.Int32},
	}, main.Locals)
}

func TestWhileAndIf(t *testing.T) {
	p := compileProgram(t, "float a = 0.0; while (a < 2.0) { if (a > 1.0) a = 5.0; else a += 1.0; } return a;")
	want := []bytecode.Instruction{
		ins(op.Push, 0),            // 0
		ins(op.StoreLocalFixed, 0), // 1
		ins(op.LoadLocalFixed, 0),  // 2 loop top
		ins(op.Push, 2*one),        // 3
		ins(op.LessFixed),          // 4
		ins(op.JumpIfZero, 16),     // 5 -> 22
		ins(op.LoadLocalFixed, 0),  // 6
		ins(op.Push, one),          // 7
		ins(op.GreaterFixed),       // 8
		ins(op.JumpIfZero, 5),      // 9 -> 15
		ins(op.Push, 5*one),        // 10
		ins(op.Dup1),               // 11
		ins(op.StoreLocalFixed, 0), // 12
		ins(op.Drop1),              // 13
		ins(op.Jump, 6),            // 14 -> 21
		ins(op.LoadLocalFixed, 0),  // 15
		ins(op.Push, one),          // 16
		ins(op.AddFixed),           // 17
		ins(op.Dup1),               // 18
		ins(op.StoreLocalFixed, 0), // 19
		ins(op.Drop1),              // 20
		ins(op.Jump, -20),          // 21 -> 2
		ins(op.LoadLocalFixed, 0),  // 22
		ins(op.Return),             // 23
	}
	require.Equal(t, want, p.Code)
}

func TestFunctions(t *testing.T) {
	p := compileProgram(t, "float sq(float v) { return v * v; } return sq(3);")
	want := []bytecode.Instruction{
		ins(op.PushInt32, 3),
		ins(op.Int32ToFixed),
		ins(op.Call, 1),
		ins(op.Return),
		ins(op.LoadLocalFixed, 0),
		ins(op.LoadLocalFixed, 0),
		ins(op.MulFixed),
		ins(op.Return),
	}
	require.Equal(t, want, p.Code)
	require.Len(t, p.Functions, 2)

	sq := p.Function(1)
	require.Equal(t, "sq", sq.Name)
	require.Equal(t, 4, sq.Offset)
	require.Equal(t, 4, sq.Length)
	require.Equal(t, []bytecode.ParamDef{{Name: "v", Type: types.Fixed}}, sq.Params)
	require.Equal(t, []bytecode.LocalVarDef{{Name: "v", Type: types.Fixed}}, sq.Locals)
}

func TestImplicitReturn(t *testing.T) {
	p := compileProgram(t, "void f() { } f();")
	require.Equal(t, []bytecode.Instruction{
		ins(op.Call, 1),
		ins(op.Return),
		ins(op.Return),
	}, p.Code)
	require.Equal(t, types.Void, p.ResultType())

	p = compileProgram(t, "vec2 f() { float a = 1.0; } return f();")
	require.Equal(t, []bytecode.Instruction{
		ins(op.Call, 1),
		ins(op.Return),
		ins(op.Push, one),
		ins(op.StoreLocalFixed, 0),
		ins(op.Push, 0),
		ins(op.Push, 0),
		ins(op.Return),
	}, p.Code)
}

func TestIfElseBothReturn(t *testing.T) {
	p := compileProgram(t, "float f(float v) { if (v > 0.0) { return 1.0; } else { return 2.0; } } return f(x);")
	fn := p.Function(1)
	code := p.Instructions(1)
	// The jump over the else branch must land inside the function.
	for i, in := range code {
		if in.Op.IsJump() {
			target := fn.Offset + i + 1 + int(in.Arg)
			require.True(t, fn.Contains(target))
		}
	}
	require.Equal(t, op.Return, code[len(code)-1].Op)
}

func TestIncrementDecrement(t *testing.T) {
	p := compileProgram(t, "float a = 0.0; ++a; a--;")
	require.Equal(t, []bytecode.Instruction{
		ins(op.Push, 0),
		ins(op.StoreLocalFixed, 0),
		ins(op.LoadLocalFixed, 0),
		ins(op.Push, one),
		ins(op.AddFixed),
		ins(op.Dup1),
		ins(op.StoreLocalFixed, 0),
		ins(op.Drop1),
		ins(op.LoadLocalFixed, 0),
		ins(op.Dup1),
		ins(op.Push, one),
		ins(op.SubFixed),
		ins(op.StoreLocalFixed, 0),
		ins(op.Drop1),
		ins(op.Return),
	}, p.Code)
}

func TestVectorLocals(t *testing.T) {
	p := compileProgram(t, "vec3 c; c = vec3(uv, 1.0) * 0.5; c += 1; return c.zyx;")
	main := p.MainFunction()
	require.Equal(t, []bytecode.LocalVarDef{{Name: "c", Type: types.Vec3}}, main.Locals)
	require.Equal(t, []bytecode.Instruction{
		ins(op.Push, 0), ins(op.Push, 0), ins(op.Push, 0),
		ins(op.StoreLocalVec3, 0),
		ins(op.Load, int32(op.XNorm)), ins(op.Load, int32(op.YNorm)), ins(op.Push, one),
		ins(op.Push, one/2), ins(op.MulVec3Scalar),
		ins(op.Dup3), ins(op.StoreLocalVec3, 0), ins(op.Drop3),
		ins(op.LoadLocalVec3, 0), ins(op.PushInt32, 1), ins(op.Int32ToFixed),
		ins(op.Dup1), ins(op.Dup1), ins(op.AddVec3),
		ins(op.Dup3), ins(op.StoreLocalVec3, 0), ins(op.Drop3),
		ins(op.LoadLocalVec3, 0), ins(op.Swizzle3to3, op.PackLanes(2, 1, 0)),
		ins(op.Return),
	}, p.Code)
}

func TestShadowing(t *testing.T) {
	p := compileProgram(t, "float a = 1.0; { float a = 2.0; vec2 b = uv; } int c = 0; float x = a; return x;")
	require.Equal(t, []bytecode.LocalVarDef{
		{Name: "a", Type: types.Fixed},
		{Name: "a", Type: types.Fixed},
		{Name: "b", Type: types.Vec2},
		{Name: "c", Type: types.Int32},
		{Name: "x", Type: types.Fixed},
	}, p.MainFunction().Locals)
	code := p.Code
	// float x = a reads slot 0, not the inner a.
	require.Equal(t, ins(op.LoadLocalFixed, 0), code[len(code)-4])
	require.Equal(t, ins(op.StoreLocalFixed, 4), code[len(code)-3])
}

func TestSourceMap(t *testing.T) {
	p := compileProgram(t, "float a = 1.0;\nreturn a * x;")
	require.Len(t, p.SourceMap, len(p.Code))
	span, ok := p.SpanAt(3) // Load XNorm
	require.True(t, ok)
	require.Equal(t, 2, span.Line)
	require.Equal(t, 12, span.Column)
}

func TestLocalAllocator(t *testing.T) {
	a := NewLocalAllocator()
	require.Equal(t, 0, a.Declare("p", types.Fixed))
	a.Push()
	require.Equal(t, 1, a.Declare("p", types.Vec2))
	slot, ok := a.Resolve("p")
	require.True(t, ok)
	require.Equal(t, 1, slot)
	a.Pop()
	slot, ok = a.Resolve("p")
	require.True(t, ok)
	require.Equal(t, 0, slot)
	_, ok = a.Resolve("q")
	require.False(t, ok)
	require.Len(t, a.Locals(), 2)
}

func TestUntypedExpressionPanics(t *testing.T) {
	pool, id, err := parser.ParseExpr(context.Background(), "1 + 2")
	require.NoError(t, err)
	defer func() {
		r := recover()
		require.NotNil(t, r)
		ie, ok := r.(*InternalError)
		require.True(t, ok)
		require.Contains(t, ie.Error(), "untyped Binary expression")
	}()
	GenerateExpr(pool, id)
}

func TestAnalyzeSlots(t *testing.T) {
	pool, prog, err := parser.Parse(context.Background(), "float a = 1.0; a = a + x;")
	require.NoError(t, err)
	res, err := typecheck.CheckProgram(pool, prog)
	require.NoError(t, err)
	table := Analyze(pool, prog, res)

	slot, ok := table.DeclSlot(prog.Stmts[0])
	require.True(t, ok)
	require.Equal(t, 0, slot)

	assign := pool.Stmt(prog.Stmts[1]).Value
	slot, ok = table.Slot(assign)
	require.True(t, ok)
	require.Equal(t, 0, slot)

	var builtin ast.ExprID = ast.NoExpr
	ast.WalkExpr(ast.Inspector{Expr: func(p *ast.Pool, id ast.ExprID) bool {
		if p.Expr(id).Name == "x" {
			builtin = id
		}
		return true
	}}, pool, assign)
	require.True(t, builtin.Valid())
	_, ok = table.Slot(builtin)
	require.False(t, ok)
}
