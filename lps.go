// Package lps compiles and evaluates LPS pixel scripts.
//
// A source string goes through the parser, the type checker, the tree
// optimizer, code generation and the peephole optimizer, producing an
// immutable *bytecode.Program. Programs are safe to share: each goroutine
// should create its own vm.VirtualMachine to run one.
//
//	p, err := lps.Compile(ctx, "return vec3(uv, sin(time));")
//	machine, err := vm.New(p, vm.WithSize(64, 32))
//	rgb, err := machine.RunVec3Pixel(3, 7, fixed.FromFloat(1.5))
//
// Compile errors implement FriendlyErrorMessage and ToFormatted, so they
// can be rendered with a source snippet by errors.Formatter.
package lps

import (
	"context"

	"github.com/lightplayer/lps/bytecode"
	"github.com/lightplayer/lps/compiler"
	"github.com/lightplayer/lps/errors"
	"github.com/lightplayer/lps/fixed"
	"github.com/lightplayer/lps/optimize"
	"github.com/lightplayer/lps/parser"
	"github.com/lightplayer/lps/typecheck"
	"github.com/lightplayer/lps/vm"
)

// FriendlyError is implemented by every compile error.
type FriendlyError interface {
	error
	FriendlyErrorMessage() string
	ToFormatted() *errors.FormattedError
}

var (
	_ FriendlyError = (*parser.SyntaxError)(nil)
	_ FriendlyError = (*typecheck.TypeError)(nil)
	_ FriendlyError = (*errors.CompileError)(nil)
)

// Compile compiles a script. With WithExpressionMode it behaves like
// CompileExpr.
func Compile(ctx context.Context, source string, opts ...Option) (*bytecode.Program, error) {
	cfg := newConfig(opts...)
	if cfg.expression {
		return compileExpr(ctx, source, cfg)
	}
	return compileScript(ctx, source, cfg)
}

// CompileExpr compiles a single expression into a program whose main
// function returns its value.
func CompileExpr(ctx context.Context, source string, opts ...Option) (*bytecode.Program, error) {
	return compileExpr(ctx, source, newConfig(opts...))
}

// Eval compiles source and runs it once with the inputs given by WithInput.
// It returns a copy of the result words.
func Eval(ctx context.Context, source string, opts ...Option) ([]fixed.Fixed, error) {
	cfg := newConfig(opts...)
	var (
		p   *bytecode.Program
		err error
	)
	if cfg.expression {
		p, err = compileExpr(ctx, source, cfg)
	} else {
		p, err = compileScript(ctx, source, cfg)
	}
	if err != nil {
		return nil, err
	}
	return vm.Eval(p, cfg.x, cfg.y, cfg.t, cfg.vmOpts()...)
}

func (cfg *config) parserOpts() []parser.Option {
	var opts []parser.Option
	if cfg.filename != "" {
		opts = append(opts, parser.WithFilename(cfg.filename))
	}
	if cfg.strict {
		opts = append(opts, parser.WithStrictLexing())
	}
	return opts
}

func (cfg *config) checkerOpts(source string) []typecheck.Option {
	return []typecheck.Option{
		typecheck.WithFilename(cfg.filename),
		typecheck.WithSource(source),
	}
}

func compileScript(ctx context.Context, source string, cfg *config) (p *bytecode.Program, err error) {
	log := cfg.logger
	pool, prog, err := parser.Parse(ctx, source, cfg.parserOpts()...)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Int("functions", len(prog.Functions)).
		Int("statements", len(prog.Stmts)).
		Int("nodes", len(pool.Exprs)+len(pool.Stmts)).
		Msg("parsed script")

	res, err := typecheck.CheckProgram(pool, prog, cfg.checkerOpts(source)...)
	if err != nil {
		return nil, err
	}
	log.Debug().Stringer("result", res.Main.Return).Msg("type checked script")

	stats := optimize.Program(pool, prog, cfg.optimize)
	log.Debug().Int("folded", stats.Folded).Int("simplified", stats.Simplified).Msg("optimized tree")

	defer recoverInternal(cfg, source, &err)
	p = compiler.GenerateProgram(pool, prog, compiler.Analyze(pool, prog, res))
	return finish(p, source, cfg), nil
}

func compileExpr(ctx context.Context, source string, cfg *config) (p *bytecode.Program, err error) {
	log := cfg.logger
	pool, id, err := parser.ParseExpr(ctx, source, cfg.parserOpts()...)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("nodes", len(pool.Exprs)).Msg("parsed expression")

	t, err := typecheck.CheckExpr(pool, id, cfg.checkerOpts(source)...)
	if err != nil {
		return nil, err
	}
	log.Debug().Stringer("result", t).Msg("type checked expression")

	stats := optimize.Expr(pool, id, cfg.optimize)
	log.Debug().Int("folded", stats.Folded).Int("simplified", stats.Simplified).Msg("optimized tree")

	defer recoverInternal(cfg, source, &err)
	p = compiler.GenerateExpr(pool, id)
	return finish(p, source, cfg), nil
}

func finish(p *bytecode.Program, source string, cfg *config) *bytecode.Program {
	generated := len(p.Code)
	p, removed := optimize.Bytecode(p, cfg.optimize)
	p.Name = cfg.programName()
	p.Source = source
	cfg.logger.Debug().
		Stringer("id", p.ID).
		Int("functions", len(p.Functions)).
		Int("instructions", len(p.Code)).
		Int("generated", generated).
		Int("peephole", removed).
		Msg("generated bytecode")
	return p
}

// recoverInternal turns a code generator panic into an E2099 error.
func recoverInternal(cfg *config, source string, err *error) {
	r := recover()
	if r == nil {
		return
	}
	ie, ok := r.(*compiler.InternalError)
	if !ok {
		panic(r)
	}
	cfg.logger.Error().Str("error", ie.Message).Msg("internal compiler error")
	start := ie.Span.Start
	*err = &errors.CompileError{
		Code:       errors.E2099,
		Kind:       "internal error",
		Message:    ie.Message,
		Filename:   cfg.filename,
		Line:       start.LineNumber(),
		Column:     start.ColumnNumber(),
		SourceLine: errors.SourceLine(source, start.LineNumber()),
	}
}
