// Package compiler turns a type-checked LPS syntax tree into a
// bytecode.Program.
//
// Compilation happens in two steps. Analyze walks every function once to lay
// out local slots: parameters first, then each declaration in source order,
// with no slot reuse. GenerateProgram then emits type-specialized opcodes
// for main followed by each user function into one shared instruction array.
//
// Forward jumps are emitted with a placeholder offset and patched once the
// target is known. Offsets are relative to the instruction that follows the
// jump:
//
//	target = jumpPC + 1 + Arg
//
// The generator trusts the type checker. Reaching a node without a type, or
// an operator the checker should have rejected, is a pipeline bug and panics
// with an *InternalError.
package compiler

import (
	"fmt"

	"github.com/lightplayer/lps/ast"
	"github.com/lightplayer/lps/bytecode"
	"github.com/lightplayer/lps/internal/token"
	"github.com/lightplayer/lps/op"
	"github.com/lightplayer/lps/types"
)

// Placeholder is the argument of a forward jump until it is patched.
const Placeholder = int32(-1 << 31)

// InternalError reports a generator inconsistency. It is raised with panic.
type InternalError struct {
	Message string
	Span    token.Span
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal compiler error: %s", e.Message)
}

func internalError(span token.Span, format string, args ...any) {
	panic(&InternalError{Message: fmt.Sprintf(format, args...), Span: span})
}

type generator struct {
	pool  *ast.Pool
	table *Table
	code  []bytecode.Instruction
	spans bytecode.SourceMap
	fn    *bytecode.Function
}

// GenerateProgram emits code for every function in the table. The table's
// function entries are completed with their offsets and lengths.
func GenerateProgram(pool *ast.Pool, prog *ast.Program, table *Table) *bytecode.Program {
	g := &generator{pool: pool, table: table}

	g.function(&table.Functions[0], prog.Stmts, token.Span{})
	for i := range prog.Functions {
		decl := &prog.Functions[i]
		g.function(&table.Functions[i+1], decl.Body, decl.Span)
	}

	return &bytecode.Program{
		ID:        bytecode.NewID(),
		Code:      g.code,
		Functions: table.Functions,
		SourceMap: g.spans,
	}
}

// GenerateExpr compiles a checked standalone expression into a program whose
// main function evaluates and returns it.
func GenerateExpr(pool *ast.Pool, id ast.ExprID) *bytecode.Program {
	e := pool.Expr(id)
	t := &Table{
		Functions: []bytecode.Function{{Name: "main", ReturnType: e.Type}},
		decls:     map[ast.StmtID]int{},
		refs:      map[ast.ExprID]int{},
	}
	g := &generator{pool: pool, table: t, fn: &t.Functions[0]}
	g.expr(id)
	g.emit(e.Span, op.Return, 0)
	g.fn.Length = len(g.code)
	return &bytecode.Program{
		ID:        bytecode.NewID(),
		Code:      g.code,
		Functions: t.Functions,
		SourceMap: g.spans,
	}
}

func (g *generator) function(fn *bytecode.Function, body []ast.StmtID, span token.Span) {
	g.fn = fn
	fn.Offset = len(g.code)
	for _, id := range body {
		g.stmt(id)
	}
	if n := len(body); n == 0 || g.pool.Stmt(body[n-1]).Kind != ast.Return {
		// Falling off the end returns a zero value of the declared type.
		end := span
		if n > 0 {
			end = g.pool.Stmt(body[n-1]).Span
		}
		g.pushZero(end, fn.ReturnType)
		g.emit(end, op.Return, 0)
	}
	fn.Length = len(g.code) - fn.Offset
}

func (g *generator) emit(span token.Span, code op.Code, arg int32) int {
	pc := len(g.code)
	g.code = append(g.code, bytecode.Instruction{Op: code, Arg: arg})
	g.spans = append(g.spans, toSpan(span))
	return pc
}

// emitJump emits a forward jump to be completed with patch.
func (g *generator) emitJump(span token.Span, code op.Code) int {
	return g.emit(span, code, Placeholder)
}

// patch points the jump at pc to the next instruction to be emitted.
func (g *generator) patch(pc int) {
	g.code[pc].Arg = int32(len(g.code) - pc - 1)
}

// emitJumpBack emits a jump to an already emitted instruction.
func (g *generator) emitJumpBack(span token.Span, code op.Code, target int) {
	pc := len(g.code)
	g.emit(span, code, int32(target-pc-1))
}

func toSpan(s token.Span) bytecode.Span {
	if s == (token.Span{}) {
		return bytecode.Span{}
	}
	return bytecode.Span{
		Start:  s.Start.Char,
		End:    s.End.Char,
		Line:   s.Start.LineNumber(),
		Column: s.Start.ColumnNumber(),
	}
}

var dupOps = map[int]op.Code{1: op.Dup1, 2: op.Dup2, 3: op.Dup3, 4: op.Dup4, 9: op.Dup9}
var dropOps = map[int]op.Code{1: op.Drop1, 2: op.Drop2, 3: op.Drop3, 4: op.Drop4, 9: op.Drop9}

func (g *generator) dup(span token.Span, words int) {
	if words == 0 {
		return
	}
	code, ok := dupOps[words]
	if !ok {
		internalError(span, "no dup opcode for %d words", words)
	}
	g.emit(span, code, 0)
}

func (g *generator) drop(span token.Span, words int) {
	if words == 0 {
		return
	}
	code, ok := dropOps[words]
	if !ok {
		internalError(span, "no drop opcode for %d words", words)
	}
	g.emit(span, code, 0)
}

// broadcast turns the scalar on top of the stack into n copies.
func (g *generator) broadcast(span token.Span, n int) {
	for i := 1; i < n; i++ {
		g.emit(span, op.Dup1, 0)
	}
}

func (g *generator) pushZero(span token.Span, t types.Type) {
	for i := 0; i < t.Size(); i++ {
		if t == types.Int32 {
			g.emit(span, op.PushInt32, 0)
		} else {
			g.emit(span, op.Push, 0)
		}
	}
}

var loadOps = map[types.Type]op.Code{
	types.Bool:  op.LoadLocalFixed,
	types.Fixed: op.LoadLocalFixed,
	types.Int32: op.LoadLocalInt32,
	types.Vec2:  op.LoadLocalVec2,
	types.Vec3:  op.LoadLocalVec3,
	types.Vec4:  op.LoadLocalVec4,
	types.Mat3:  op.LoadLocalMat3,
}

var storeOps = map[types.Type]op.Code{
	types.Bool:  op.StoreLocalFixed,
	types.Fixed: op.StoreLocalFixed,
	types.Int32: op.StoreLocalInt32,
	types.Vec2:  op.StoreLocalVec2,
	types.Vec3:  op.StoreLocalVec3,
	types.Vec4:  op.StoreLocalVec4,
	types.Mat3:  op.StoreLocalMat3,
}

func (g *generator) loadLocal(span token.Span, slot int) {
	t := localType(g.fn, slot)
	code, ok := loadOps[t]
	if !ok {
		internalError(span, "cannot load local of type %s", t)
	}
	g.emit(span, code, int32(slot))
}

func (g *generator) storeLocal(span token.Span, slot int) {
	t := localType(g.fn, slot)
	code, ok := storeOps[t]
	if !ok {
		internalError(span, "cannot store local of type %s", t)
	}
	g.emit(span, code, int32(slot))
}
