package ast

import (
	"testing"

	"github.com/lightplayer/lps/fixed"
	"github.com/lightplayer/lps/internal/token"
	"github.com/lightplayer/lps/types"
	"github.com/stretchr/testify/require"
)

var noSpan token.Span

func TestPoolHandles(t *testing.T) {
	p := NewPool()
	one := p.AddExpr(NewInt(noSpan, 1))
	half := p.AddExpr(NewFloat(noSpan, fixed.Half))
	sum := p.AddExpr(NewBinary(noSpan, OpAdd, one, half))
	require.Equal(t, ExprID(2), sum)
	require.Equal(t, Binary, p.Expr(sum).Kind)
	require.Equal(t, NoExpr, p.Expr(sum).Cond)
	require.Equal(t, "(1 + 0.5)", FormatExpr(p, sum))

	p.Expr(sum).Type = types.Fixed
	require.Equal(t, types.Fixed, p.TypeOf(sum))
}

func TestFormatProgram(t *testing.T) {
	p := NewPool()
	uv := p.AddExpr(NewVariable(noSpan, "uv"))
	sw := p.AddExpr(NewSwizzle(noSpan, uv, "yx"))
	decl := p.AddStmt(NewVarDecl(noSpan, types.Vec2, "q", sw))
	val := p.AddExpr(NewFloat(noSpan, fixed.One))
	ret := p.AddStmt(NewReturn(noSpan, val))
	block := p.AddStmt(NewBlock(noSpan, []StmtID{ret}))
	cond := p.AddExpr(NewBool(noSpan, true))
	ifs := p.AddStmt(NewIf(noSpan, cond, block, NoStmt))
	prog := &Program{
		Functions: []FuncDecl{{
			Name:       "f",
			ReturnType: types.Fixed,
			Params:     []Param{{Name: "a", Type: types.Int32}},
			Body:       []StmtID{ret},
		}},
		Stmts: []StmtID{decl, ifs},
	}
	expected := "float f(int a) {\n    return 1.0;\n}\n" +
		"vec2 q = uv.yx;\n" +
		"if (true)\n    {\n        return 1.0;\n    }\n"
	require.Equal(t, expected, Format(p, prog))

	fn, ok := prog.Function("f")
	require.True(t, ok)
	require.Len(t, fn.Params, 1)
	_, ok = prog.Function("g")
	require.False(t, ok)
}

func TestWalk(t *testing.T) {
	p := NewPool()
	a := p.AddExpr(NewVariable(noSpan, "a"))
	b := p.AddExpr(NewVariable(noSpan, "b"))
	call := p.AddExpr(NewCall(noSpan, "max", []ExprID{a, b}))
	stmt := p.AddStmt(NewExprStmt(noSpan, call))
	loop := p.AddStmt(NewWhile(noSpan, a, stmt))

	var names []string
	var kinds []StmtKind
	WalkStmt(Inspector{
		Stmt: func(p *Pool, id StmtID) bool {
			kinds = append(kinds, p.Stmt(id).Kind)
			return true
		},
		Expr: func(p *Pool, id ExprID) bool {
			if e := p.Expr(id); e.Kind == Variable {
				names = append(names, e.Name)
			}
			return true
		},
	}, p, loop)
	require.Equal(t, []StmtKind{While, ExprStmt}, kinds)
	require.Equal(t, []string{"a", "a", "b"}, names)
}

func TestDump(t *testing.T) {
	p := NewPool()
	x := p.AddExpr(NewInt(noSpan, 2))
	neg := p.AddExpr(NewUnary(noSpan, OpNeg, x))
	p.Expr(x).Type = types.Fixed
	p.Expr(x).Promoted = true
	require.Equal(t, "Unary(-)\n  IntLit(2) : float (promoted)\n", Dump(p, neg))
}
