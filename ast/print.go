package ast

import (
	"fmt"
	"strings"

	"github.com/lightplayer/lps/types"
)

// FormatExpr renders an expression as source text. Binary and ternary
// expressions are fully parenthesized.
func FormatExpr(p *Pool, id ExprID) string {
	var b strings.Builder
	writeExpr(&b, p, id)
	return b.String()
}

func writeExpr(b *strings.Builder, p *Pool, id ExprID) {
	if !id.Valid() {
		return
	}
	e := p.Expr(id)
	switch e.Kind {
	case IntLit:
		fmt.Fprintf(b, "%d", e.Int)
	case FloatLit:
		s := e.Value.String()
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		b.WriteString(s)
	case BoolLit:
		if e.Int != 0 {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case Variable:
		b.WriteString(e.Name)
	case Binary:
		b.WriteString("(")
		writeExpr(b, p, e.Left)
		fmt.Fprintf(b, " %s ", e.Op)
		writeExpr(b, p, e.Right)
		b.WriteString(")")
	case Unary:
		b.WriteString(e.Op.String())
		writeExpr(b, p, e.Left)
	case Ternary:
		b.WriteString("(")
		writeExpr(b, p, e.Cond)
		b.WriteString(" ? ")
		writeExpr(b, p, e.Left)
		b.WriteString(" : ")
		writeExpr(b, p, e.Right)
		b.WriteString(")")
	case Assign:
		fmt.Fprintf(b, "%s %s= ", e.Name, e.Op)
		writeExpr(b, p, e.Right)
	case Call:
		b.WriteString(e.Name)
		writeArgs(b, p, e.Args)
	case Constructor:
		b.WriteString(e.Target.String())
		writeArgs(b, p, e.Args)
	case Swizzle:
		writeExpr(b, p, e.Left)
		b.WriteString(".")
		b.WriteString(e.Name)
	case IncDec:
		if e.Op.IsPostfix() {
			b.WriteString(e.Name)
			b.WriteString(e.Op.String())
		} else {
			b.WriteString(e.Op.String())
			b.WriteString(e.Name)
		}
	}
}

func writeArgs(b *strings.Builder, p *Pool, args []ExprID) {
	b.WriteString("(")
	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		writeExpr(b, p, arg)
	}
	b.WriteString(")")
}

// Format renders a whole program as source text.
func Format(p *Pool, prog *Program) string {
	var b strings.Builder
	for _, fn := range prog.Functions {
		fmt.Fprintf(&b, "%s %s(", fn.ReturnType, fn.Name)
		for i, param := range fn.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s %s", param.Type, param.Name)
		}
		b.WriteString(") {\n")
		for _, s := range fn.Body {
			writeStmt(&b, p, s, 1)
		}
		b.WriteString("}\n")
	}
	for _, s := range prog.Stmts {
		writeStmt(&b, p, s, 0)
	}
	return b.String()
}

func writeStmt(b *strings.Builder, p *Pool, id StmtID, depth int) {
	if !id.Valid() {
		return
	}
	indent := strings.Repeat("    ", depth)
	s := p.Stmt(id)
	switch s.Kind {
	case VarDecl:
		fmt.Fprintf(b, "%s%s %s", indent, s.DeclType, s.Name)
		if s.Value.Valid() {
			b.WriteString(" = ")
			writeExpr(b, p, s.Value)
		}
		b.WriteString(";\n")
	case ExprStmt:
		b.WriteString(indent)
		writeExpr(b, p, s.Value)
		b.WriteString(";\n")
	case Return:
		b.WriteString(indent + "return")
		if s.Value.Valid() {
			b.WriteString(" ")
			writeExpr(b, p, s.Value)
		}
		b.WriteString(";\n")
	case Block:
		b.WriteString(indent + "{\n")
		for _, child := range s.Body {
			writeStmt(b, p, child, depth+1)
		}
		b.WriteString(indent + "}\n")
	case If:
		b.WriteString(indent + "if (")
		writeExpr(b, p, s.Cond)
		b.WriteString(")\n")
		writeStmt(b, p, s.Then, depth+1)
		if s.Else.Valid() {
			b.WriteString(indent + "else\n")
			writeStmt(b, p, s.Else, depth+1)
		}
	case While:
		b.WriteString(indent + "while (")
		writeExpr(b, p, s.Cond)
		b.WriteString(")\n")
		writeStmt(b, p, s.Then, depth+1)
	case For:
		b.WriteString(indent + "for (")
		if s.Init.Valid() {
			init := strings.TrimSpace(stmtString(p, s.Init))
			b.WriteString(strings.TrimSuffix(init, ";"))
		}
		b.WriteString("; ")
		writeExpr(b, p, s.Cond)
		b.WriteString("; ")
		writeExpr(b, p, s.Step)
		b.WriteString(")\n")
		writeStmt(b, p, s.Then, depth+1)
	}
}

func stmtString(p *Pool, id StmtID) string {
	var b strings.Builder
	writeStmt(&b, p, id, 0)
	return b.String()
}

// Dump renders an expression tree one node per line with resolved types.
func Dump(p *Pool, id ExprID) string {
	var b strings.Builder
	dumpExpr(&b, p, id, 0)
	return b.String()
}

func dumpExpr(b *strings.Builder, p *Pool, id ExprID, depth int) {
	if !id.Valid() {
		return
	}
	e := p.Expr(id)
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(e.Kind.String())
	switch {
	case e.Op != OpNone:
		fmt.Fprintf(b, "(%s)", e.Op)
	case e.Kind == FloatLit:
		fmt.Fprintf(b, "(%v)", e.Value)
	case e.Kind == IntLit || e.Kind == BoolLit:
		fmt.Fprintf(b, "(%d)", e.Int)
	}
	if e.Name != "" {
		fmt.Fprintf(b, " %s", e.Name)
	}
	if e.Type != types.None {
		fmt.Fprintf(b, " : %s", e.Type)
	}
	if e.Promoted {
		b.WriteString(" (promoted)")
	}
	b.WriteString("\n")
	dumpExpr(b, p, e.Cond, depth+1)
	dumpExpr(b, p, e.Left, depth+1)
	dumpExpr(b, p, e.Right, depth+1)
	for _, arg := range e.Args {
		dumpExpr(b, p, arg, depth+1)
	}
}
