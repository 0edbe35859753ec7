package ast

// Visitor receives nodes during a traversal. Returning false from either
// method skips the children of that node.
type Visitor interface {
	VisitStmt(p *Pool, id StmtID) bool
	VisitExpr(p *Pool, id ExprID) bool
}

// WalkExpr traverses an expression tree in depth-first order.
func WalkExpr(v Visitor, p *Pool, id ExprID) {
	if !id.Valid() || !v.VisitExpr(p, id) {
		return
	}
	e := p.Expr(id)
	cond, left, right, args := e.Cond, e.Left, e.Right, e.Args
	WalkExpr(v, p, cond)
	WalkExpr(v, p, left)
	WalkExpr(v, p, right)
	for _, arg := range args {
		WalkExpr(v, p, arg)
	}
}

// WalkStmt traverses a statement and every nested statement and expression.
func WalkStmt(v Visitor, p *Pool, id StmtID) {
	if !id.Valid() || !v.VisitStmt(p, id) {
		return
	}
	s := p.Stmt(id)
	WalkStmt(v, p, s.Init)
	WalkExpr(v, p, s.Cond)
	WalkExpr(v, p, s.Value)
	WalkExpr(v, p, s.Step)
	WalkStmt(v, p, s.Then)
	WalkStmt(v, p, s.Else)
	for _, child := range s.Body {
		WalkStmt(v, p, child)
	}
}

// WalkProgram traverses every function body and top-level statement.
func WalkProgram(v Visitor, p *Pool, prog *Program) {
	for _, fn := range prog.Functions {
		for _, s := range fn.Body {
			WalkStmt(v, p, s)
		}
	}
	for _, s := range prog.Stmts {
		WalkStmt(v, p, s)
	}
}

// Inspector adapts plain functions to the Visitor interface. A nil field
// visits everything.
type Inspector struct {
	Stmt func(p *Pool, id StmtID) bool
	Expr func(p *Pool, id ExprID) bool
}

func (i Inspector) VisitStmt(p *Pool, id StmtID) bool {
	if i.Stmt == nil {
		return true
	}
	return i.Stmt(p, id)
}

func (i Inspector) VisitExpr(p *Pool, id ExprID) bool {
	if i.Expr == nil {
		return true
	}
	return i.Expr(p, id)
}
