package lps

import (
	"github.com/lightplayer/lps/fixed"
	"github.com/lightplayer/lps/optimize"
	"github.com/lightplayer/lps/vm"
	"github.com/rs/zerolog"
)

// Option describes a function used to configure an LPS compilation or
// evaluation.
type Option func(*config)

type config struct {
	filename   string
	name       string
	strict     bool
	expression bool
	optimize   optimize.Options
	limits     vm.Limits
	x, y, t    fixed.Fixed
	vmOptions  []vm.Option
	logger     zerolog.Logger
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		optimize: optimize.All(),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

func (cfg *config) programName() string {
	if cfg.name != "" {
		return cfg.name
	}
	return cfg.filename
}

func (cfg *config) vmOpts() []vm.Option {
	opts := []vm.Option{vm.WithLimits(cfg.limits)}
	return append(opts, cfg.vmOptions...)
}

// WithFilename sets the filename for the source code being compiled.
// It appears in error messages and names the program when WithName is not
// given.
func WithFilename(filename string) Option {
	return func(cfg *config) {
		cfg.filename = filename
	}
}

// WithName sets the name stored in the compiled program.
func WithName(name string) Option {
	return func(cfg *config) {
		cfg.name = name
	}
}

// WithOptimize selects the optimizer passes. All passes run by default.
func WithOptimize(opts optimize.Options) Option {
	return func(cfg *config) {
		cfg.optimize = opts
	}
}

// WithStrictLexing reports unknown characters as syntax errors instead of
// treating them as the end of input.
func WithStrictLexing() Option {
	return func(cfg *config) {
		cfg.strict = true
	}
}

// WithExpressionMode compiles the source as a single expression rather than
// a script.
func WithExpressionMode() Option {
	return func(cfg *config) {
		cfg.expression = true
	}
}

// WithLimits sets the VM limits used by Eval.
func WithLimits(limits vm.Limits) Option {
	return func(cfg *config) {
		cfg.limits = limits
	}
}

// WithInput sets the normalized coordinates and time used by Eval.
func WithInput(x, y, t fixed.Fixed) Option {
	return func(cfg *config) {
		cfg.x, cfg.y, cfg.t = x, y, t
	}
}

// WithVMOptions passes additional options to the VM created by Eval, such
// as a sampler, a canvas size or an observer.
func WithVMOptions(opts ...vm.Option) Option {
	return func(cfg *config) {
		cfg.vmOptions = append(cfg.vmOptions, opts...)
	}
}

// WithLogger sets the logger that receives debug events for each
// compilation stage. Nothing is logged by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}
