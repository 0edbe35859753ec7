// Package optimize rewrites checked syntax trees and generated bytecode
// without changing what a program computes.
//
// Tree passes run after type checking and before code generation, and
// rewrite nodes in place:
//
//   - constant folding evaluates operators and pure scalar built-ins whose
//     operands are literals, using the same fixed-point routines as the VM
//   - algebraic simplification drops scalar identities (x*1, 1*x, x+0, 0+x,
//     x-0, x/1)
//
// The peephole pass runs on the finished program and removes instruction
// pairs that cancel out. Jump offsets and function bounds are recomputed
// after every round.
package optimize

import (
	"github.com/lightplayer/lps/ast"
	"github.com/lightplayer/lps/bytecode"
)

// Options selects the passes to run.
type Options struct {
	ConstantFolding         bool
	AlgebraicSimplification bool
	Peephole                bool
}

// All enables every pass.
func All() Options {
	return Options{ConstantFolding: true, AlgebraicSimplification: true, Peephole: true}
}

// None disables every pass.
func None() Options {
	return Options{}
}

// Tree reports whether any tree pass is enabled.
func (o Options) Tree() bool {
	return o.ConstantFolding || o.AlgebraicSimplification
}

// Stats counts the rewrites made by the tree passes.
type Stats struct {
	Folded     int
	Simplified int
}

type optimizer struct {
	pool  *ast.Pool
	opts  Options
	seen  []bool
	stats Stats
}

func newOptimizer(pool *ast.Pool, opts Options) *optimizer {
	return &optimizer{pool: pool, opts: opts, seen: make([]bool, len(pool.Exprs))}
}

// Expr optimizes the expression rooted at id in place.
func Expr(pool *ast.Pool, id ast.ExprID, opts Options) Stats {
	if !opts.Tree() {
		return Stats{}
	}
	o := newOptimizer(pool, opts)
	o.expr(id)
	return o.stats
}

// Program optimizes every expression of prog in place.
func Program(pool *ast.Pool, prog *ast.Program, opts Options) Stats {
	if !opts.Tree() {
		return Stats{}
	}
	o := newOptimizer(pool, opts)
	visit := ast.Inspector{Expr: func(_ *ast.Pool, id ast.ExprID) bool {
		o.expr(id)
		return false
	}}
	ast.WalkProgram(visit, pool, prog)
	return o.stats
}

// expr rewrites children before their parent. Lane expansion can share
// nodes, so each node is visited once.
func (o *optimizer) expr(id ast.ExprID) {
	if !id.Valid() || o.seen[id] {
		return
	}
	o.seen[id] = true
	e := o.pool.Expr(id)
	cond, left, right, args := e.Cond, e.Left, e.Right, e.Args
	o.expr(cond)
	o.expr(left)
	o.expr(right)
	for _, arg := range args {
		o.expr(arg)
	}
	if o.opts.ConstantFolding && o.fold(id) {
		o.stats.Folded++
		return
	}
	if o.opts.AlgebraicSimplification && o.simplify(id) {
		o.stats.Simplified++
	}
}

// Bytecode runs the peephole pass on a copy of p and returns it with the
// number of instructions removed. p is returned unchanged when the pass is
// disabled.
func Bytecode(p *bytecode.Program, opts Options) (*bytecode.Program, int) {
	if !opts.Peephole {
		return p, 0
	}
	out := p.Clone()
	removed := 0
	for {
		n := peephole(out)
		if n == 0 {
			break
		}
		removed += n
	}
	return out, removed
}
