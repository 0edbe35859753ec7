// Package ast defines the abstract syntax tree representation of LPS code.
//
// Nodes live in a Pool and refer to each other through integer handles, so a
// tree never contains pointers between nodes and can be copied or serialized
// as plain data.
package ast

import (
	"github.com/lightplayer/lps/internal/token"
	"github.com/lightplayer/lps/types"
)

// ExprID is a handle to an expression stored in a Pool.
type ExprID int32

// StmtID is a handle to a statement stored in a Pool.
type StmtID int32

const (
	NoExpr ExprID = -1
	NoStmt StmtID = -1
)

// Valid reports whether the handle refers to a node.
func (id ExprID) Valid() bool { return id >= 0 }

// Valid reports whether the handle refers to a node.
func (id StmtID) Valid() bool { return id >= 0 }

// Pool owns every node of one parsed source.
type Pool struct {
	Exprs []Expr
	Stmts []Stmt
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{}
}

// AddExpr stores e and returns its handle.
func (p *Pool) AddExpr(e Expr) ExprID {
	p.Exprs = append(p.Exprs, e)
	return ExprID(len(p.Exprs) - 1)
}

// AddStmt stores s and returns its handle.
func (p *Pool) AddStmt(s Stmt) StmtID {
	p.Stmts = append(p.Stmts, s)
	return StmtID(len(p.Stmts) - 1)
}

// Expr returns a pointer to the expression with the given handle. The pointer
// is invalidated by the next AddExpr call.
func (p *Pool) Expr(id ExprID) *Expr {
	return &p.Exprs[id]
}

// Stmt returns a pointer to the statement with the given handle. The pointer
// is invalidated by the next AddStmt call.
func (p *Pool) Stmt(id StmtID) *Stmt {
	return &p.Stmts[id]
}

// TypeOf returns the resolved type of an expression.
func (p *Pool) TypeOf(id ExprID) types.Type {
	return p.Exprs[id].Type
}

// Param is a function parameter.
type Param struct {
	Name string
	Type types.Type
	Span token.Span
}

// FuncDecl is a user-defined function.
type FuncDecl struct {
	Name       string
	Params     []Param
	ReturnType types.Type
	Body       []StmtID
	Span       token.Span
}

// Program is the result of parsing a script: function definitions and the
// top-level statements that form the implicit main function.
type Program struct {
	Functions []FuncDecl
	Stmts     []StmtID
}

// Function returns the declaration with the given name.
func (p *Program) Function(name string) (*FuncDecl, bool) {
	for i := range p.Functions {
		if p.Functions[i].Name == name {
			return &p.Functions[i], true
		}
	}
	return nil, false
}
