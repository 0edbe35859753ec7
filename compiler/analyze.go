package compiler

import (
	"github.com/lightplayer/lps/ast"
	"github.com/lightplayer/lps/bytecode"
	"github.com/lightplayer/lps/typecheck"
	"github.com/lightplayer/lps/types"
)

// Table is the function table of a checked program together with the local
// slot of every declaration and variable reference.
type Table struct {
	// Functions holds main at index 0 followed by user functions in
	// declaration order. Offset and Length are filled in by GenerateProgram.
	Functions []bytecode.Function

	decls map[ast.StmtID]int
	refs  map[ast.ExprID]int
}

// DeclSlot returns the slot assigned to a variable declaration.
func (t *Table) DeclSlot(id ast.StmtID) (int, bool) {
	slot, ok := t.decls[id]
	return slot, ok
}

// Slot returns the local slot a Variable, Assign or IncDec expression refers
// to. Built-in variables have no slot.
func (t *Table) Slot(id ast.ExprID) (int, bool) {
	slot, ok := t.refs[id]
	return slot, ok
}

// Analyze lays out the locals of every function of a checked program. Name
// resolution follows the same scoping rules as the type checker.
func Analyze(pool *ast.Pool, prog *ast.Program, res *typecheck.Result) *Table {
	t := &Table{
		decls: map[ast.StmtID]int{},
		refs:  map[ast.ExprID]int{},
	}

	main := bytecode.Function{Name: "main", ReturnType: res.Main.Return}
	a := &analyzer{pool: pool, table: t, alloc: NewLocalAllocator()}
	for _, id := range prog.Stmts {
		a.stmt(id)
	}
	main.Locals = a.alloc.Locals()
	t.Functions = append(t.Functions, main)

	for _, decl := range prog.Functions {
		fn := bytecode.Function{Name: decl.Name, ReturnType: decl.ReturnType}
		a.alloc = NewLocalAllocator()
		for _, p := range decl.Params {
			fn.Params = append(fn.Params, bytecode.ParamDef{Name: p.Name, Type: p.Type})
			a.alloc.Declare(p.Name, p.Type)
		}
		for _, id := range decl.Body {
			a.stmt(id)
		}
		fn.Locals = a.alloc.Locals()
		t.Functions = append(t.Functions, fn)
	}
	return t
}

type analyzer struct {
	pool  *ast.Pool
	table *Table
	alloc *LocalAllocator
}

func (a *analyzer) stmt(id ast.StmtID) {
	if !id.Valid() {
		return
	}
	s := a.pool.Stmt(id)
	switch s.Kind {
	case ast.VarDecl:
		a.expr(s.Value)
		a.table.decls[id] = a.alloc.Declare(s.Name, s.DeclType)
	case ast.ExprStmt, ast.Return:
		a.expr(s.Value)
	case ast.Block:
		a.alloc.Push()
		for _, child := range s.Body {
			a.stmt(child)
		}
		a.alloc.Pop()
	case ast.If:
		a.expr(s.Cond)
		a.scoped(s.Then)
		a.scoped(s.Else)
	case ast.While:
		a.expr(s.Cond)
		a.scoped(s.Then)
	case ast.For:
		a.alloc.Push()
		a.stmt(s.Init)
		a.expr(s.Cond)
		a.expr(s.Step)
		a.scoped(s.Then)
		a.alloc.Pop()
	}
}

func (a *analyzer) scoped(id ast.StmtID) {
	a.alloc.Push()
	a.stmt(id)
	a.alloc.Pop()
}

func (a *analyzer) expr(id ast.ExprID) {
	ast.WalkExpr(ast.Inspector{Expr: func(p *ast.Pool, id ast.ExprID) bool {
		e := p.Expr(id)
		switch e.Kind {
		case ast.Variable, ast.Assign, ast.IncDec:
			if slot, ok := a.alloc.Resolve(e.Name); ok {
				a.table.refs[id] = slot
			}
		}
		return true
	}}, a.pool, id)
}

// localType returns the declared type of a slot in fn.
func localType(fn *bytecode.Function, slot int) types.Type {
	return fn.Locals[slot].Type
}
