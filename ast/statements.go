package ast

import (
	"github.com/lightplayer/lps/internal/token"
	"github.com/lightplayer/lps/types"
)

// StmtKind identifies the variant of a statement node.
type StmtKind uint8

const (
	VarDecl StmtKind = iota
	ExprStmt
	Return
	Block
	If
	While
	For
)

var stmtKindNames = [...]string{
	VarDecl:  "VarDecl",
	ExprStmt: "ExprStmt",
	Return:   "Return",
	Block:    "Block",
	If:       "If",
	While:    "While",
	For:      "For",
}

func (k StmtKind) String() string {
	if int(k) < len(stmtKindNames) {
		return stmtKindNames[k]
	}
	return "Unknown"
}

// Stmt is a statement node. Field use by Kind:
//
//	VarDecl   Name, DeclType, Value (optional initializer)
//	ExprStmt  Value
//	Return    Value (NoExpr for a bare return)
//	Block     Body
//	If        Cond, Then, Else (optional)
//	While     Cond, Then (loop body)
//	For       Init (optional), Cond (optional), Step (optional), Then (loop body)
type Stmt struct {
	Kind     StmtKind
	Span     token.Span
	Name     string
	DeclType types.Type
	Value    ExprID
	Cond     ExprID
	Step     ExprID
	Init     StmtID
	Then     StmtID
	Else     StmtID
	Body     []StmtID
}

func newStmt(kind StmtKind, span token.Span) Stmt {
	return Stmt{
		Kind:  kind,
		Span:  span,
		Value: NoExpr,
		Cond:  NoExpr,
		Step:  NoExpr,
		Init:  NoStmt,
		Then:  NoStmt,
		Else:  NoStmt,
	}
}

func NewVarDecl(span token.Span, typ types.Type, name string, init ExprID) Stmt {
	s := newStmt(VarDecl, span)
	s.DeclType = typ
	s.Name = name
	s.Value = init
	return s
}

func NewExprStmt(span token.Span, expr ExprID) Stmt {
	s := newStmt(ExprStmt, span)
	s.Value = expr
	return s
}

func NewReturn(span token.Span, value ExprID) Stmt {
	s := newStmt(Return, span)
	s.Value = value
	return s
}

func NewBlock(span token.Span, body []StmtID) Stmt {
	s := newStmt(Block, span)
	s.Body = body
	return s
}

func NewIf(span token.Span, cond ExprID, then, els StmtID) Stmt {
	s := newStmt(If, span)
	s.Cond = cond
	s.Then = then
	s.Else = els
	return s
}

func NewWhile(span token.Span, cond ExprID, body StmtID) Stmt {
	s := newStmt(While, span)
	s.Cond = cond
	s.Then = body
	return s
}

func NewFor(span token.Span, init StmtID, cond, step ExprID, body StmtID) Stmt {
	s := newStmt(For, span)
	s.Init = init
	s.Cond = cond
	s.Step = step
	s.Then = body
	return s
}
