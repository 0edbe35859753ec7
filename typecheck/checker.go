// Package typecheck resolves and validates the static type of every LPS
// expression. It runs in a single pass over the arena AST, writes the result
// into each node's Type field and marks Int32 nodes that are widened to Fixed.
// Checking stops at the first error.
package typecheck

import (
	"github.com/lightplayer/lps/ast"
	"github.com/lightplayer/lps/errors"
	"github.com/lightplayer/lps/types"
)

// Signature describes a function known to the checker.
type Signature struct {
	Name       string
	Index      int // position in the function table; main is 0
	Params     []types.Type
	ParamNames []string
	Return     types.Type
}

// Result is the outcome of checking a script.
type Result struct {
	// Main is the implicit function formed by the top-level statements. Its
	// return type is taken from the first return statement, or Void.
	Main Signature
	// Functions lists user functions in declaration order, starting at
	// index 1.
	Functions []Signature
}

// Lookup returns the signature of a user function.
func (r *Result) Lookup(name string) (*Signature, bool) {
	for i := range r.Functions {
		if r.Functions[i].Name == name {
			return &r.Functions[i], true
		}
	}
	return nil, false
}

// Option configures a Checker.
type Option func(*Checker)

// WithFilename sets the filename reported in errors.
func WithFilename(name string) Option {
	return func(c *Checker) {
		c.filename = name
	}
}

// WithSource provides the source text so errors can show the offending line.
func WithSource(source string) Option {
	return func(c *Checker) {
		c.source = source
	}
}

// Checker holds the state of one type checking pass.
type Checker struct {
	pool     *ast.Pool
	funcs    map[string]*Signature
	scopes   []scope
	filename string
	source   string

	// ret is the return type of the function being checked. When
	// inferReturn is set, the first return statement decides it.
	ret         types.Type
	inferReturn bool
}

func newChecker(pool *ast.Pool, opts []Option) *Checker {
	c := &Checker{pool: pool, funcs: map[string]*Signature{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckExpr checks a standalone expression and returns its type. Only
// built-in variables and functions are visible.
func CheckExpr(pool *ast.Pool, id ast.ExprID, opts ...Option) (types.Type, error) {
	c := newChecker(pool, opts)
	c.push()
	defer c.pop()
	t, err := c.check(id)
	if err != nil {
		return types.None, err
	}
	return t, nil
}

// CheckProgram checks every function and the top-level statements.
func CheckProgram(pool *ast.Pool, prog *ast.Program, opts ...Option) (*Result, error) {
	c := newChecker(pool, opts)
	res := &Result{Main: Signature{Name: "main"}}

	for i, fn := range prog.Functions {
		if _, ok := LookupFunction(fn.Name); ok || fn.Name == "main" {
			err := c.fail(DuplicateFunction, fn.Span, "function %s conflicts with a built-in function", fn.Name)
			err.Name = fn.Name
			return nil, err
		}
		if _, ok := res.Lookup(fn.Name); ok {
			err := c.fail(DuplicateFunction, fn.Span, "function %s is already defined", fn.Name)
			err.Name = fn.Name
			return nil, err
		}
		sig := Signature{Name: fn.Name, Index: i + 1, Return: fn.ReturnType}
		for _, p := range fn.Params {
			sig.Params = append(sig.Params, p.Type)
			sig.ParamNames = append(sig.ParamNames, p.Name)
		}
		res.Functions = append(res.Functions, sig)
	}
	for i := range res.Functions {
		c.funcs[res.Functions[i].Name] = &res.Functions[i]
	}

	for i := range prog.Functions {
		if err := c.checkFunction(&prog.Functions[i]); err != nil {
			return nil, err
		}
	}

	c.ret = types.None
	c.inferReturn = true
	c.push()
	for _, id := range prog.Stmts {
		if err := c.checkStmt(id); err != nil {
			return nil, err
		}
	}
	c.pop()
	res.Main.Return = c.ret
	if res.Main.Return == types.None {
		res.Main.Return = types.Void
	}
	return res, nil
}

func (c *Checker) checkFunction(fn *ast.FuncDecl) error {
	c.ret = fn.ReturnType
	c.inferReturn = false
	c.push()
	defer c.pop()
	for _, p := range fn.Params {
		if err := c.declare(p.Name, p.Type, p.Span); err != nil {
			return err
		}
	}
	for _, id := range fn.Body {
		if err := c.checkStmt(id); err != nil {
			return err
		}
	}
	return nil
}

// visibleNames lists every variable name that could be referenced from the
// current scope, for suggestions.
func (c *Checker) visibleNames() []string {
	names := BuiltinVariables()
	for i := len(c.scopes) - 1; i >= 0; i-- {
		for name := range c.scopes[i].vars {
			names = append(names, name)
		}
	}
	return names
}

func (c *Checker) functionNames() []string {
	names := BuiltinFunctions()
	for name := range c.funcs {
		names = append(names, name)
	}
	return names
}

func (c *Checker) suggest(name string, candidates []string) []errors.Suggestion {
	return errors.SuggestSimilar(name, candidates)
}
