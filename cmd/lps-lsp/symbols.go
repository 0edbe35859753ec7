package main

import (
	"fmt"
	"strings"

	"github.com/jdbaldry/go-language-server-protocol/lsp/protocol"
	"github.com/lightplayer/lps/ast"
	"github.com/lightplayer/lps/internal/lexer"
	"github.com/lightplayer/lps/internal/token"
	"github.com/lightplayer/lps/types"
)

// symbol is a name declared in a document.
type symbol struct {
	name     string
	typ      types.Type
	function *ast.FuncDecl // set for user functions
	span     token.Span
	scope    string // enclosing function name, "main" at the top level
}

func (s symbol) detail() string {
	if s.function != nil {
		return signature(s.function)
	}
	return fmt.Sprintf("%s %s", s.typ, s.name)
}

func signature(fn *ast.FuncDecl) string {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = fmt.Sprintf("%s %s", p.Type, p.Name)
	}
	return fmt.Sprintf("%s %s(%s)", fn.ReturnType, fn.Name, strings.Join(params, ", "))
}

// collectSymbols lists functions, parameters and local declarations in
// source order.
func collectSymbols(pool *ast.Pool, prog *ast.Program) []symbol {
	var out []symbol
	declarations := func(scope string) ast.Inspector {
		return ast.Inspector{Stmt: func(p *ast.Pool, id ast.StmtID) bool {
			s := p.Stmt(id)
			if s.Kind == ast.VarDecl {
				out = append(out, symbol{name: s.Name, typ: s.DeclType, span: s.Span, scope: scope})
			}
			return true
		}}
	}
	for i := range prog.Functions {
		fn := &prog.Functions[i]
		out = append(out, symbol{name: fn.Name, typ: fn.ReturnType, function: fn, span: fn.Span, scope: "main"})
		for _, p := range fn.Params {
			out = append(out, symbol{name: p.Name, typ: p.Type, span: p.Span, scope: fn.Name})
		}
		v := declarations(fn.Name)
		for _, id := range fn.Body {
			ast.WalkStmt(v, pool, id)
		}
	}
	v := declarations("main")
	for _, id := range prog.Stmts {
		ast.WalkStmt(v, pool, id)
	}
	return out
}

// enclosingFunction returns the name of the function whose body contains
// the position, or "main".
func enclosingFunction(prog *ast.Program, line, char int) string {
	for _, fn := range prog.Functions {
		if contains(fn.Span, line, char) {
			return fn.Name
		}
	}
	return "main"
}

// lookupSymbol finds the declaration of name visible at the position: the
// last one declared before it in the same function, else a function.
func lookupSymbol(symbols []symbol, scope, name string, line, char int) (symbol, bool) {
	var found symbol
	ok := false
	for _, s := range symbols {
		if s.name != name {
			continue
		}
		if s.function != nil && !ok {
			found, ok = s, true
			continue
		}
		if s.function == nil && s.scope == scope && before(s.span.Start, line, char) {
			found, ok = s, true
		}
	}
	return found, ok
}

func before(p token.Position, line, char int) bool {
	return p.Line < line || (p.Line == line && p.Column <= char)
}

func contains(span token.Span, line, char int) bool {
	if line < span.Start.Line || line > span.End.Line {
		return false
	}
	if line == span.Start.Line && char < span.Start.Column {
		return false
	}
	if line == span.End.Line && char > span.End.Column {
		return false
	}
	return true
}

// tokenAt returns the token under a 0-based line and character.
func tokenAt(text string, line, char int) (token.Token, bool) {
	tokens, _ := lexer.Tokenize(text)
	for _, tok := range tokens {
		if tok.Type == token.EOF {
			break
		}
		start, end := tok.StartPosition, tok.EndPosition
		if start.Line == line && start.Column <= char && char < start.Column+(end.Char-start.Char) {
			return tok, true
		}
	}
	return token.Token{}, false
}

func toRange(span token.Span) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: uint32(span.Start.Line), Character: uint32(span.Start.Column)},
		End:   protocol.Position{Line: uint32(span.End.Line), Character: uint32(span.End.Column)},
	}
}
