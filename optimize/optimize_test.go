package optimize

import (
	"context"
	"testing"

	"github.com/lightplayer/lps/ast"
	"github.com/lightplayer/lps/bytecode"
	"github.com/lightplayer/lps/compiler"
	"github.com/lightplayer/lps/fixed"
	"github.com/lightplayer/lps/op"
	"github.com/lightplayer/lps/parser"
	"github.com/lightplayer/lps/typecheck"
	"github.com/lightplayer/lps/types"
	"github.com/stretchr/testify/require"
)

func optimizeExpr(t *testing.T, src string, opts Options) (*ast.Pool, ast.ExprID, Stats) {
	t.Helper()
	pool, id, err := parser.ParseExpr(context.Background(), src)
	require.NoError(t, err)
	_, err = typecheck.CheckExpr(pool, id)
	require.NoError(t, err)
	stats := Expr(pool, id, opts)
	return pool, id, stats
}

func TestConstantFolding(t *testing.T) {
	tests := []struct {
		input string
		kind  ast.ExprKind
		typ   types.Type
		value float64
	}{
		{"2.0 + 3.0", ast.FloatLit, types.Fixed, 5},
		{"(1 + 2) * 0.5", ast.FloatLit, types.Fixed, 1.5},
		{"10.0 / 4.0", ast.FloatLit, types.Fixed, 2.5},
		{"1.0 / 0.0", ast.FloatLit, types.Fixed, 0},
		{"-(2.0 * 3.0)", ast.FloatLit, types.Fixed, -6},
		{"sin(0.0)", ast.FloatLit, types.Fixed, 0},
		{"max(2.0, 3)", ast.FloatLit, types.Fixed, 3},
		{"clamp(5.0, 0.0, 1.0)", ast.FloatLit, types.Fixed, 1},
		{"abs(-1.5) + floor(2.7)", ast.FloatLit, types.Fixed, 3.5},
		{"sqrt(16.0)", ast.FloatLit, types.Fixed, 4},
		{"1 + 2.5", ast.FloatLit, types.Fixed, 3.5},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			pool, id, stats := optimizeExpr(t, tt.input, All())
			e := pool.Expr(id)
			require.Equal(t, tt.kind, e.Kind)
			require.Equal(t, tt.typ, e.Type)
			require.InDelta(t, tt.value, e.Value.Float(), 0.01)
			require.Greater(t, stats.Folded, 0)
		})
	}
}

func TestIntegerFolding(t *testing.T) {
	tests := []struct {
		input string
		want  int32
	}{
		{"1 + 2", 3},
		{"7 % 3", 1},
		{"-7 / 2", -3},
		{"~0", -1},
		{"1 << 4", 16},
		{"0xF0 & 0x3C", 0x30},
		{"6 ^ 3", 5},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			pool, id, _ := optimizeExpr(t, tt.input, All())
			e := pool.Expr(id)
			require.Equal(t, ast.IntLit, e.Kind)
			require.Equal(t, types.Int32, e.Type)
			require.Equal(t, tt.want, e.Int)
		})
	}
}

func TestBooleanFolding(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"3 < 4", true},
		{"2.0 >= 2.5", false},
		{"1.0 == 1", true},
		{"!true", false},
		{"true && false", false},
		{"false || 1.0", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			pool, id, _ := optimizeExpr(t, tt.input, All())
			e := pool.Expr(id)
			require.Equal(t, ast.BoolLit, e.Kind)
			require.Equal(t, types.Bool, e.Type)
			require.Equal(t, tt.want, e.Int != 0)
		})
	}
}

func TestNotFolded(t *testing.T) {
	for _, input := range []string{
		"7 / 0",
		"5 % 0",
		"x + 1.0",
		"sin(time)",
		"vec2(1.0, 2.0) * 2.0",
		"perlin3(vec3(1.0, 2.0, 3.0))",
	} {
		t.Run(input, func(t *testing.T) {
			pool, id, _ := optimizeExpr(t, input, All())
			e := pool.Expr(id)
			require.NotEqual(t, ast.FloatLit, e.Kind)
			require.NotEqual(t, ast.IntLit, e.Kind)
		})
	}
}

func TestAlgebraicSimplification(t *testing.T) {
	tests := []struct {
		input    string
		variable string
		typ      types.Type
		promoted bool
	}{
		{"time + 0.0", "time", types.Fixed, false},
		{"0.0 + time", "time", types.Fixed, false},
		{"time - 0", "time", types.Fixed, false},
		{"time * 1.0", "time", types.Fixed, false},
		{"1 * time", "time", types.Fixed, false},
		{"time / 1.0", "time", types.Fixed, false},
		{"x * (2.0 - 1.0)", "x", types.Fixed, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			pool, id, stats := optimizeExpr(t, tt.input, All())
			e := pool.Expr(id)
			require.Equal(t, ast.Variable, e.Kind)
			require.Equal(t, tt.variable, e.Name)
			require.Equal(t, tt.typ, e.Type)
			require.Equal(t, tt.promoted, e.Promoted)
			require.Equal(t, 1, stats.Simplified)
		})
	}
}

func TestSimplificationKeepsNonIdentities(t *testing.T) {
	for _, input := range []string{
		"1.0 - x",
		"1.0 / x",
		"x * 2.0",
		"uv * 1.0",
		"uv + 0.0",
	} {
		t.Run(input, func(t *testing.T) {
			pool, id, stats := optimizeExpr(t, input, All())
			require.Equal(t, ast.Binary, pool.Expr(id).Kind)
			require.Equal(t, 0, stats.Simplified)
		})
	}
}

func TestPassesCanBeDisabled(t *testing.T) {
	pool, id, stats := optimizeExpr(t, "2.0 + 3.0", None())
	require.Equal(t, ast.Binary, pool.Expr(id).Kind)
	require.Equal(t, Stats{}, stats)

	pool, id, _ = optimizeExpr(t, "x * 1.0", Options{ConstantFolding: true})
	require.Equal(t, ast.Binary, pool.Expr(id).Kind)

	pool, id, _ = optimizeExpr(t, "1.0 + 1.0", Options{AlgebraicSimplification: true})
	require.Equal(t, ast.Binary, pool.Expr(id).Kind)
}

func TestProgramPromotedSimplification(t *testing.T) {
	src := "int i = 2; float a = i * 1 + 0.5; return a;"
	pool, prog, err := parser.Parse(context.Background(), src)
	require.NoError(t, err)
	res, err := typecheck.CheckProgram(pool, prog)
	require.NoError(t, err)
	stats := Program(pool, prog, All())
	require.Equal(t, 1, stats.Simplified)

	p := compiler.GenerateProgram(pool, prog, compiler.Analyze(pool, prog, res))
	require.NoError(t, p.Validate())
	require.Equal(t, []bytecode.Instruction{
		{Op: op.PushInt32, Arg: 2},
		{Op: op.StoreLocalInt32, Arg: 0},
		{Op: op.LoadLocalInt32, Arg: 0},
		{Op: op.Int32ToFixed},
		{Op: op.Push, Arg: fixed.Half.Raw()},
		{Op: op.AddFixed},
		{Op: op.StoreLocalFixed, Arg: 1},
		{Op: op.LoadLocalFixed, Arg: 1},
		{Op: op.Return},
	}, p.Code)
}

func program(code ...bytecode.Instruction) *bytecode.Program {
	return &bytecode.Program{
		Code:      code,
		Functions: []bytecode.Function{{Name: "main", Length: len(code), ReturnType: types.Fixed}},
	}
}

func TestPeepholePatterns(t *testing.T) {
	p := program(
		bytecode.Instruction{Op: op.Push, Arg: fixed.One.Raw()},
		bytecode.Instruction{Op: op.Drop1},
		bytecode.Instruction{Op: op.Load, Arg: int32(op.XNorm)},
		bytecode.Instruction{Op: op.Swap},
		bytecode.Instruction{Op: op.Swap},
		bytecode.Instruction{Op: op.Jump, Arg: 0},
		bytecode.Instruction{Op: op.NegFixed},
		bytecode.Instruction{Op: op.NegFixed},
		bytecode.Instruction{Op: op.Dup1},
		bytecode.Instruction{Op: op.Drop1},
		bytecode.Instruction{Op: op.Return},
	)
	out, removed := Bytecode(p, All())
	require.Equal(t, 9, removed)
	require.Equal(t, []bytecode.Instruction{
		{Op: op.Load, Arg: int32(op.XNorm)},
		{Op: op.Return},
	}, out.Code)
	require.Equal(t, 2, out.MainFunction().Length)
	// The input program is untouched.
	require.Len(t, p.Code, 11)
}

func TestPeepholeRepeatsUntilStable(t *testing.T) {
	p := program(
		bytecode.Instruction{Op: op.Swap},
		bytecode.Instruction{Op: op.Dup1},
		bytecode.Instruction{Op: op.Drop1},
		bytecode.Instruction{Op: op.Swap},
		bytecode.Instruction{Op: op.Return},
	)
	out, removed := Bytecode(p, All())
	require.Equal(t, 4, removed)
	require.Equal(t, []bytecode.Instruction{{Op: op.Return}}, out.Code)
}

func TestPeepholeKeepsJumpTargets(t *testing.T) {
	p := program(
		bytecode.Instruction{Op: op.Load, Arg: int32(op.XNorm)},
		bytecode.Instruction{Op: op.JumpIfZero, Arg: 1},
		bytecode.Instruction{Op: op.Push, Arg: fixed.One.Raw()},
		bytecode.Instruction{Op: op.Drop1},
		bytecode.Instruction{Op: op.Push, Arg: 0},
		bytecode.Instruction{Op: op.Return},
	)
	out, removed := Bytecode(p, All())
	require.Equal(t, 0, removed)
	require.Equal(t, p.Code, out.Code)
}

func TestPeepholeRemapsJumps(t *testing.T) {
	p := program(
		bytecode.Instruction{Op: op.Load, Arg: int32(op.XNorm)}, // 0
		bytecode.Instruction{Op: op.JumpIfZero, Arg: 3},         // 1 -> 5
		bytecode.Instruction{Op: op.Push, Arg: 0},               // 2
		bytecode.Instruction{Op: op.Drop1},                      // 3
		bytecode.Instruction{Op: op.Load, Arg: int32(op.YNorm)}, // 4
		bytecode.Instruction{Op: op.Dup1},                       // 5
		bytecode.Instruction{Op: op.JumpIfNonZero, Arg: -7},     // 6 -> 0
		bytecode.Instruction{Op: op.Return},                     // 7
	)
	out, removed := Bytecode(p, All())
	require.Equal(t, 2, removed)
	require.Equal(t, []bytecode.Instruction{
		{Op: op.Load, Arg: int32(op.XNorm)},
		{Op: op.JumpIfZero, Arg: 1},
		{Op: op.Load, Arg: int32(op.YNorm)},
		{Op: op.Dup1},
		{Op: op.JumpIfNonZero, Arg: -5},
		{Op: op.Return},
	}, out.Code)
}

func TestPeepholeFunctionBounds(t *testing.T) {
	p := &bytecode.Program{
		Code: []bytecode.Instruction{
			{Op: op.Call, Arg: 1},
			{Op: op.Swap},
			{Op: op.Swap},
			{Op: op.Return},
			{Op: op.Push, Arg: 0},
			{Op: op.Drop1},
			{Op: op.Push, Arg: fixed.One.Raw()},
			{Op: op.Return},
		},
		Functions: []bytecode.Function{
			{Name: "main", Offset: 0, Length: 4, ReturnType: types.Fixed},
			{Name: "one", Offset: 4, Length: 4, ReturnType: types.Fixed},
		},
		SourceMap: make(bytecode.SourceMap, 8),
	}
	out, removed := Bytecode(p, All())
	require.Equal(t, 4, removed)
	require.Equal(t, 0, out.Functions[0].Offset)
	require.Equal(t, 2, out.Functions[0].Length)
	require.Equal(t, 2, out.Functions[1].Offset)
	require.Equal(t, 2, out.Functions[1].Length)
	require.Len(t, out.SourceMap, 4)
	require.NoError(t, out.Validate())
}

func TestPeepholeDisabled(t *testing.T) {
	p := program(bytecode.Instruction{Op: op.Swap}, bytecode.Instruction{Op: op.Swap}, bytecode.Instruction{Op: op.Return})
	out, removed := Bytecode(p, None())
	require.Same(t, p, out)
	require.Equal(t, 0, removed)
}
