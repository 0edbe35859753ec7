package vm

// Option is a configuration function for a Virtual Machine.
type Option func(*VirtualMachine)

// Limits bounds the resources a single run may use. Zero fields take their
// default.
type Limits struct {
	MaxCallDepth    int
	MaxStackSize    int
	MaxInstructions int
}

const (
	DefaultMaxCallDepth    = 64
	DefaultMaxStackSize    = 256
	DefaultMaxInstructions = 10_000
)

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxCallDepth:    DefaultMaxCallDepth,
		MaxStackSize:    DefaultMaxStackSize,
		MaxInstructions: DefaultMaxInstructions,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxCallDepth <= 0 {
		l.MaxCallDepth = d.MaxCallDepth
	}
	if l.MaxStackSize <= 0 {
		l.MaxStackSize = d.MaxStackSize
	}
	if l.MaxInstructions <= 0 {
		l.MaxInstructions = d.MaxInstructions
	}
	return l
}

// WithLimits sets the call depth, stack size and instruction budget.
func WithLimits(limits Limits) Option {
	return func(vm *VirtualMachine) {
		vm.limits = limits
	}
}

// WithInitialLocals overrides the starting values of main's locals by name.
// Values are raw lane words. Each run, and ResetLocals, restores them.
func WithInitialLocals(locals map[string][]int32) Option {
	return func(vm *VirtualMachine) {
		for name, values := range locals {
			vm.inputLocals[name] = values
		}
	}
}

// WithSampler provides the textures read by texture and textureR.
func WithSampler(sampler Sampler) Option {
	return func(vm *VirtualMachine) {
		vm.sampler = sampler
	}
}

// WithObserver sets an observer for VM execution events.
// The observer receives callbacks for instruction steps, function calls,
// and function returns. This enables profilers, debuggers, code coverage
// tools, and execution tracers.
//
// Observer methods are called synchronously during execution, so
// implementations should be fast to avoid impacting performance.
// Returning false from any observer method halts execution immediately.
func WithObserver(observer Observer) Option {
	return func(vm *VirtualMachine) {
		vm.observer = observer
	}
}

// WithSize sets the canvas size used for pixel coordinates and the
// centerDist and centerAngle inputs.
func WithSize(width, height int) Option {
	return func(vm *VirtualMachine) {
		vm.width = width
		vm.height = height
	}
}
