package typecheck

import (
	"context"
	"testing"

	"github.com/lightplayer/lps/ast"
	"github.com/lightplayer/lps/errors"
	"github.com/lightplayer/lps/parser"
	"github.com/lightplayer/lps/types"
	"github.com/stretchr/testify/require"
)

const identity = "mat3(1.0, 0.0, 0.0, 0.0, 1.0, 0.0, 0.0, 0.0, 1.0)"

func checkExpr(t *testing.T, input string) (*ast.Pool, ast.ExprID, types.Type, error) {
	t.Helper()
	pool, id, err := parser.ParseExpr(context.Background(), input)
	require.NoError(t, err)
	typ, err := CheckExpr(pool, id)
	return pool, id, typ, err
}

func checkProgram(t *testing.T, input string) (*ast.Pool, *ast.Program, *Result, error) {
	t.Helper()
	pool, prog, err := parser.Parse(context.Background(), input)
	require.NoError(t, err)
	res, err := CheckProgram(pool, prog, WithFilename("test.lps"), WithSource(input))
	return pool, prog, res, err
}

func TestExpressionTypes(t *testing.T) {
	tests := []struct {
		input string
		want  types.Type
	}{
		{"1 + 2", types.Int32},
		{"1 + 2.0", types.Fixed},
		{"true", types.Bool},
		{"x", types.Fixed},
		{"t * 2", types.Fixed},
		{"uv", types.Vec2},
		{"coord.x", types.Fixed},
		{"uv.yx", types.Vec2},
		{"uv.xyxy", types.Vec4},
		{"vec4(uv, 1.0, 0.0)", types.Vec4},
		{"vec3(1)", types.Vec3},
		{"vec3(1.0) * 2", types.Vec3},
		{"2 * vec3(1.0)", types.Vec3},
		{"uv - 0.5", types.Vec2},
		{"-uv", types.Vec2},
		{identity + " * vec3(1.0)", types.Vec3},
		{identity + " * 2.0", types.Mat3},
		{identity + " / 2.0", types.Mat3},
		{identity + " + " + identity, types.Mat3},
		{"x < 1", types.Bool},
		{"x && 1", types.Bool},
		{"!x", types.Bool},
		{"3 & 1", types.Int32},
		{"~7", types.Int32},
		{"1 << 4", types.Int32},
		{"x > 0.5 ? 1 : 2", types.Int32},
		{"x > 0.5 ? 1.0 : 2.0", types.Fixed},
		{"x > 0.5 ? x < 1.0 : x > 2.0", types.Bool},
		{"x > 0.5 ? uv : vec2(0.0)", types.Vec2},
		{"sin(x)", types.Fixed},
		{"atan(x)", types.Fixed},
		{"atan(y, x)", types.Fixed},
		{"clamp(x, 0, 1)", types.Fixed},
		{"sin(uv)", types.Vec2},
		{"max(uv, 0.5)", types.Vec2},
		{"length(uv)", types.Fixed},
		{"normalize(vec3(1.0))", types.Vec3},
		{"dot(uv, uv)", types.Fixed},
		{"cross(vec3(1.0), vec3(0.0, 1.0, 0.0))", types.Vec3},
		{"determinant(" + identity + ")", types.Fixed},
		{"transpose(" + identity + ")", types.Mat3},
		{"perlin3(vec3(uv, t))", types.Fixed},
		{"perlin3(vec3(uv, t), 4)", types.Fixed},
		{"texture(0, uv)", types.Vec4},
		{"textureR(1, uv)", types.Fixed},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, _, typ, err := checkExpr(t, tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.want, typ)
		})
	}
}

func TestPromotion(t *testing.T) {
	pool, id, typ, err := checkExpr(t, "1 + 2.0")
	require.NoError(t, err)
	require.Equal(t, types.Fixed, typ)
	left := pool.Expr(pool.Expr(id).Left)
	require.True(t, left.Promoted)
	require.Equal(t, types.Fixed, left.Type)
	require.False(t, pool.Expr(pool.Expr(id).Right).Promoted)

	pool, id, _, err = checkExpr(t, "1 + 2")
	require.NoError(t, err)
	require.False(t, pool.Expr(pool.Expr(id).Left).Promoted)
	require.Equal(t, types.Int32, pool.Expr(pool.Expr(id).Left).Type)
}

func TestSwizzleComponents(t *testing.T) {
	pool, id, _, err := checkExpr(t, "vec4(1.0).wzyx")
	require.NoError(t, err)
	require.Equal(t, []uint8{3, 2, 1, 0}, pool.Expr(id).Components)

	pool, id, _, err = checkExpr(t, "vec3(1.0).bgr")
	require.NoError(t, err)
	require.Equal(t, []uint8{2, 1, 0}, pool.Expr(id).Components)
}

func TestLaneExpansion(t *testing.T) {
	pool, id, typ, err := checkExpr(t, "pow(vec3(x), 2)")
	require.NoError(t, err)
	require.Equal(t, types.Vec3, typ)

	e := pool.Expr(id)
	require.Equal(t, ast.Constructor, e.Kind)
	require.Equal(t, types.Vec3, e.Target)
	require.Len(t, e.Args, 3)
	for i, lane := range e.Args {
		call := pool.Expr(lane)
		require.Equal(t, ast.Call, call.Kind)
		require.Equal(t, "pow", call.Name)
		require.Equal(t, types.Fixed, call.Type)
		sw := pool.Expr(call.Args[0])
		require.Equal(t, ast.Swizzle, sw.Kind)
		require.Equal(t, []uint8{uint8(i)}, sw.Components)
		exp := pool.Expr(call.Args[1])
		require.Equal(t, ast.IntLit, exp.Kind)
		require.True(t, exp.Promoted)
	}
	// The scalar argument is shared by every lane.
	require.Equal(t, pool.Expr(e.Args[0]).Args[1], pool.Expr(e.Args[2]).Args[1])
}

func TestExpressionErrors(t *testing.T) {
	tests := []struct {
		input   string
		kind    ErrorKind
		message string
	}{
		{"foo", UndefinedVariable, "undefined variable foo"},
		{"sinn(x)", UndefinedFunction, "undefined function sinn"},
		{"sin(1.0, 2.0)", InvalidArgumentCount, "sin expects 1 argument, found 2"},
		{"clamp(x)", InvalidArgumentCount, "clamp expects 3 arguments, found 1"},
		{"atan()", InvalidArgumentCount, "atan expects 1 to 2 arguments, found 0"},
		{"vec3(1.0, 2.0)", InvalidArgumentCount, "vec3 constructor expects 3 components, found 2"},
		{"uv.xz", InvalidSwizzle, "component z is out of range for vec2"},
		{"uv.xg", InvalidSwizzle, "swizzle .xg mixes component sets"},
		{"x.x", InvalidSwizzle, "cannot swizzle a value of type float"},
		{"uv.xyzwx", InvalidSwizzle, "swizzle .xyzwx must select 1 to 4 components"},
		{"1.0 & 1", Mismatch, "type mismatch: expected int, found float"},
		{"~1.0", Mismatch, "type mismatch: expected int, found float"},
		{"uv + vec3(1.0)", Mismatch, "type mismatch: expected vec2, found vec3"},
		{"uv < 1.0", InvalidOperation, "operator < requires scalar operands, found vec2 and float"},
		{identity + " / " + identity, InvalidOperation, "operator / is not defined for mat3 and mat3"},
		{"x > 0.0 ? uv : 1.0", Mismatch, "type mismatch: expected vec2, found float"},
		{"uv ? 1.0 : 0.0", Mismatch, "condition must be a scalar, found vec2"},
		{"x > 0.5 ? 1 : 2.0", Mismatch, "type mismatch: expected int, found float"},
		{"x > 0.5 ? 1.0 : 2", Mismatch, "type mismatch: expected float, found int"},
		{"x > 0.5 ? x < 1.0 : 0.0", Mismatch, "type mismatch: expected bool, found float"},
		{"true + 1.0", Mismatch, "type mismatch: expected bool, found float"},
		{"x * (x > 0.5)", Mismatch, "type mismatch: expected float, found bool"},
		{"uv * true", Mismatch, "type mismatch: expected vec2, found bool"},
		{"-(x > 0.5)", InvalidOperation, "cannot negate bool"},
		{"x = 1.0", InvalidOperation, "cannot assign to built-in variable x"},
		{"t++", InvalidOperation, "cannot assign to built-in variable t"},
		{"dot(uv, vec3(1.0))", Mismatch, "type mismatch: expected vec2, found vec3"},
		{"length(x)", Mismatch, "length expects a vector argument, found float"},
		{"cross(uv, uv)", Mismatch, "type mismatch: expected vec3, found vec2"},
		{"sin(uv, vec3(1.0))", InvalidArgumentCount, "sin expects 1 argument, found 2"},
		{"min(uv, vec3(1.0))", Mismatch, "type mismatch: expected vec2, found vec3"},
		{"perlin3(vec3(x), 9)", InvalidOperation, "perlin3 octave count must be between 1 and 8, found 9"},
		{"perlin3(vec3(x), t)", InvalidOperation, "perlin3 octave count must be an integer literal"},
		{"texture(x, uv)", InvalidOperation, "texture texture index must be an integer literal"},
		{"texture(-1, uv)", InvalidOperation, "texture texture index must be at least 0, found -1"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, _, _, err := checkExpr(t, tt.input)
			require.Error(t, err)
			var te *TypeError
			require.ErrorAs(t, err, &te)
			require.Equal(t, tt.kind, te.Kind, te.Message)
			require.Equal(t, tt.message, te.Message)
		})
	}
}

func TestUndefinedSuggestions(t *testing.T) {
	_, _, _, err := checkExpr(t, "sinn(x)")
	var te *TypeError
	require.ErrorAs(t, err, &te)
	require.Contains(t, errors.SuggestionValues(te.Suggestions), "sin")

	_, _, _, err = checkExpr(t, "xnorm")
	require.ErrorAs(t, err, &te)
	require.Equal(t, "xNorm", te.Suggestions[0].Value)
	require.Equal(t, "xnorm", te.Name)
}

func TestProgram(t *testing.T) {
	src := `
float sq(float v) {
	return v * v;
}

void noop() {
}

float x = 2.0;
return sq(2) * x;
`
	pool, prog, res, err := checkProgram(t, src)
	require.NoError(t, err)
	require.Equal(t, types.Fixed, res.Main.Return)
	require.Equal(t, 0, res.Main.Index)
	require.Len(t, res.Functions, 2)

	sq, ok := res.Lookup("sq")
	require.True(t, ok)
	require.Equal(t, 1, sq.Index)
	require.Equal(t, []types.Type{types.Fixed}, sq.Params)
	require.Equal(t, []string{"v"}, sq.ParamNames)
	require.Equal(t, types.Fixed, sq.Return)

	noop, ok := res.Lookup("noop")
	require.True(t, ok)
	require.Equal(t, 2, noop.Index)
	require.Equal(t, types.Void, noop.Return)

	// sq(2): the literal argument is widened to float.
	ret := pool.Stmt(prog.Stmts[1])
	call := pool.Expr(pool.Expr(ret.Value).Left)
	require.Equal(t, ast.Call, call.Kind)
	require.True(t, pool.Expr(call.Args[0]).Promoted)
}

func TestMainReturnInference(t *testing.T) {
	tests := []struct {
		input string
		want  types.Type
	}{
		{"float a = 1.0;", types.Void},
		{"return;", types.Void},
		{"return 1;", types.Int32},
		{"return uv;", types.Vec2},
		{"if (x > 0.5) { return vec3(1.0); } return vec3(0.0);", types.Vec3},
		{"return x > 0.5;", types.Bool},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, _, res, err := checkProgram(t, tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.want, res.Main.Return)
		})
	}
}

func TestStatements(t *testing.T) {
	valid := []string{
		"int n = 0; for (int i = 0; i < 10; i++) { n += i; } return n;",
		"float f = 0.0; f += 1; f *= 2; return f;",
		"int i = 7; i <<= 1; i |= 1; return i;",
		"vec3 c = vec3(0.0); c *= 0.5; c += vec3(1.0); return c;",
		"float x = 2.0; return x * uv.x;",
		"float a = 1.0; { float a = 2.0; } return a;",
		"bool b = x > 0.5; float f = b; return f;",
		"float i = 0.0; while (i < 3) i = i + 1; return i;",
		"for (;;) { return 1.0; }",
		"int f(int a) { return a; } return f(3);",
		"float fact(float n) { return n <= 1.0 ? 1.0 : n * fact(n - 1.0); } return fact(5.0);",
		"float later() { return helper(); } float helper() { return 1.0; } return later();",
	}
	for _, input := range valid {
		t.Run(input, func(t *testing.T) {
			_, _, _, err := checkProgram(t, input)
			require.NoError(t, err)
		})
	}
}

func TestStatementErrors(t *testing.T) {
	tests := []struct {
		input   string
		kind    ErrorKind
		message string
	}{
		{"float uv = 1.0;", Redeclared, "cannot declare a variable named uv: it is a built-in"},
		{"float a = 1.0; float a = 2.0;", Redeclared, "variable a is already declared in this scope"},
		{"float f(float a, float a) { return a; }", Redeclared, "variable a is already declared in this scope"},
		{"{ float a = 1.0; } return a;", UndefinedVariable, "undefined variable a"},
		{"for (int i = 0; i < 3; i++) { } return i;", UndefinedVariable, "undefined variable i"},
		{"if (x > 0.5) float q = 1.0; return q;", UndefinedVariable, "undefined variable q"},
		{"float sin(float v) { return v; }", DuplicateFunction, "function sin conflicts with a built-in function"},
		{"float f() { return 1.0; } float f() { return 2.0; }", DuplicateFunction, "function f is already defined"},
		{"void f() { return 1.0; }", InvalidReturn, "void function cannot return a value"},
		{"float f() { return; }", InvalidReturn, "missing return value, expected float"},
		{"int f() { return 1.5; }", Mismatch, "type mismatch: expected int, found float"},
		{"int f(int a) { return a; } return f(1.5);", Mismatch, "type mismatch: expected int, found float"},
		{"float f(float a) { return a; } return f();", InvalidArgumentCount, "f expects 1 argument, found 0"},
		{"int i = 0; i += 1.5;", Mismatch, "type mismatch: expected int, found float"},
		{"float f = 0.0; f &= 1;", Mismatch, "type mismatch: expected int, found float"},
		{"vec2 p = uv; p++;", InvalidOperation, "++ requires an int or float variable, found vec2"},
		{"vec2 p = 1.0;", Mismatch, "type mismatch: expected vec2, found float"},
		{"int i = 1.0;", Mismatch, "type mismatch: expected int, found float"},
		{"while (uv) { }", Mismatch, "condition must be a scalar, found vec2"},
		{"return uv; return 1.0;", Mismatch, "type mismatch: expected vec2, found float"},
		{"void f() { } return f();", InvalidReturn, "cannot return the result of a void function"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, _, _, err := checkProgram(t, tt.input)
			require.Error(t, err)
			var te *TypeError
			require.ErrorAs(t, err, &te)
			require.Equal(t, tt.kind, te.Kind, te.Message)
			require.Equal(t, tt.message, te.Message)
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	_, _, _, err := checkProgram(t, "float a = 1.0;\nreturn foo;")
	require.Error(t, err)
	require.Equal(t, "type error at test.lps:2:8: undefined variable foo", err.Error())

	var te *TypeError
	require.ErrorAs(t, err, &te)
	require.Equal(t, errors.E2001, te.Kind.Code())
	fe := te.ToFormatted()
	require.Equal(t, "return foo;", fe.SourceLines[0].Text)
	require.Equal(t, 8, fe.Column)
	require.Equal(t, 11, fe.EndColumn)
}

func TestErrorKindStrings(t *testing.T) {
	require.Equal(t, "Mismatch", Mismatch.String())
	require.Equal(t, "DuplicateFunction", DuplicateFunction.String())
	require.Equal(t, "Unknown", ErrorKind(99).String())
	require.Equal(t, errors.E2099, ErrorKind(99).Code())
	require.Equal(t, errors.E2005, InvalidSwizzle.Code())
}

func TestBuiltinTables(t *testing.T) {
	v, ok := LookupVariable("angle")
	require.True(t, ok)
	require.Equal(t, types.Fixed, v.Type)
	require.True(t, IsReservedVariable("uv"))
	require.True(t, IsReservedVariable("coord"))
	require.False(t, IsReservedVariable("x"))
	require.Contains(t, BuiltinVariables(), "timeNorm")

	b, ok := LookupFunction("length")
	require.True(t, ok)
	require.Equal(t, "Length3", b.Opcode(1, types.Vec3).String())
	atan, _ := LookupFunction("atan")
	require.Equal(t, "Atan2Fixed", atan.Opcode(2, types.Fixed).String())
	require.Equal(t, "AtanFixed", atan.Opcode(1, types.Fixed).String())
	require.Contains(t, BuiltinFunctions(), "smoothstep")
}
