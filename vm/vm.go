// Package vm provides a VirtualMachine that executes compiled LPS programs.
//
// A VirtualMachine is created once per program and then run once per pixel.
// Every buffer it needs (value stack, local store, call frames) is sized at
// construction from the program and the configured Limits, so a successful
// run performs no heap allocation. The slice returned by Run aliases the
// value stack and is only valid until the next run.
//
// A VirtualMachine is not safe for concurrent use. Several machines may
// share one Program.
package vm

import (
	"fmt"

	"github.com/lightplayer/lps/bytecode"
	"github.com/lightplayer/lps/fixed"
)

type VirtualMachine struct {
	program  *bytecode.Program
	limits   Limits
	sampler  Sampler
	observer Observer
	width    int
	height   int

	observerConfig ObserverConfig
	inputLocals    map[string][]int32
	initial        [][]int32 // per main local, nil when not overridden
	paramWords     []int

	stack  []fixed.Fixed
	sp     int
	locals localStore
	frames []frame
	depth  int

	pc       int
	fn       int
	base     int
	in       inputs
	executed int
	lastLine int
}

// New creates a Virtual Machine for the given program.
func New(program *bytecode.Program, options ...Option) (*VirtualMachine, error) {
	if program == nil {
		return nil, fmt.Errorf("vm: nil program")
	}
	if err := program.Validate(); err != nil {
		return nil, err
	}
	vm := &VirtualMachine{
		program:     program,
		inputLocals: map[string][]int32{},
	}
	for _, opt := range options {
		opt(vm)
	}
	vm.limits = vm.limits.withDefaults()
	if vm.width < 0 || vm.height < 0 {
		return nil, fmt.Errorf("vm: invalid size %dx%d", vm.width, vm.height)
	}
	if vm.observer != nil {
		vm.observerConfig = NormalizeConfig(vm.observer.Config())
	}

	main := program.MainFunction()
	if len(vm.inputLocals) > 0 {
		vm.initial = make([][]int32, len(main.Locals))
		for name, values := range vm.inputLocals {
			idx := main.LocalIndex(name)
			if idx < 0 {
				return nil, fmt.Errorf("vm: main has no local named %q", name)
			}
			if size := main.Locals[idx].Type.Size(); len(values) > size {
				return nil, fmt.Errorf("vm: local %q holds %d words, got %d", name, size, len(values))
			}
			vm.initial[idx] = values
		}
	}

	// Size the local store for main plus the deepest possible chain of
	// the largest function.
	maxWords, maxSlots := 0, 0
	vm.paramWords = make([]int, len(program.Functions))
	for i := range program.Functions {
		fn := &program.Functions[i]
		vm.paramWords[i] = fn.ParamWords()
		if i == 0 {
			continue
		}
		if w := fn.LocalWords(); w > maxWords {
			maxWords = w
		}
		if n := len(fn.Locals); n > maxSlots {
			maxSlots = n
		}
	}
	depth := vm.limits.MaxCallDepth
	vm.locals = newLocalStore(main.LocalWords()+depth*maxWords, len(main.Locals)+depth*maxSlots)
	if _, ok := vm.locals.allocate(main.Locals); !ok {
		return nil, fmt.Errorf("vm: cannot allocate locals for main")
	}
	vm.locals.reset(len(main.Locals), main.Locals, vm.initial)

	vm.stack = make([]fixed.Fixed, vm.limits.MaxStackSize)
	vm.frames = make([]frame, depth)
	return vm, nil
}

// Program returns the program the VM executes.
func (vm *VirtualMachine) Program() *bytecode.Program {
	return vm.program
}

// Limits returns the effective limits.
func (vm *VirtualMachine) Limits() Limits {
	return vm.limits
}

// Size returns the configured canvas size.
func (vm *VirtualMachine) Size() (int, int) {
	return vm.width, vm.height
}

// Run executes the program with normalized coordinates x and y at time t
// and returns the words left on the value stack. When a size is
// configured the pixel coordinates are derived from x and y.
func (vm *VirtualMachine) Run(x, y, t fixed.Fixed) ([]fixed.Fixed, error) {
	vm.in = inputs{xNorm: x, yNorm: y, time: t}
	if vm.width > 0 && vm.height > 0 {
		vm.in.xInt = fixed.Mul(x, fixed.FromInt(int32(vm.width)))
		vm.in.yInt = fixed.Mul(y, fixed.FromInt(int32(vm.height)))
	}
	return vm.run()
}

// RunPixel executes the program for the pixel at column px and row py. The
// coordinates are taken at the pixel center.
func (vm *VirtualMachine) RunPixel(px, py int, t fixed.Fixed) ([]fixed.Fixed, error) {
	if vm.width <= 0 || vm.height <= 0 {
		return nil, ErrNoSize
	}
	xi := fixed.FromInt(int32(px)) + fixed.Half
	yi := fixed.FromInt(int32(py)) + fixed.Half
	vm.in = inputs{
		xInt:  xi,
		yInt:  yi,
		xNorm: fixed.Div(xi, fixed.FromInt(int32(vm.width))),
		yNorm: fixed.Div(yi, fixed.FromInt(int32(vm.height))),
		time:  t,
	}
	return vm.run()
}

func (vm *VirtualMachine) expect(out []fixed.Fixed, err error, words int) ([]fixed.Fixed, error) {
	if err != nil {
		return nil, err
	}
	if len(out) != words {
		e := vm.fail(TypeMismatch)
		e.Required, e.Actual = words, len(out)
		return nil, e
	}
	return out, nil
}

// RunScalar runs the program and requires a single-word result.
func (vm *VirtualMachine) RunScalar(x, y, t fixed.Fixed) (fixed.Fixed, error) {
	out, err := vm.Run(x, y, t)
	out, err = vm.expect(out, err, 1)
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

// RunVec2 runs the program and requires a vec2 result.
func (vm *VirtualMachine) RunVec2(x, y, t fixed.Fixed) ([2]fixed.Fixed, error) {
	var v [2]fixed.Fixed
	out, err := vm.Run(x, y, t)
	out, err = vm.expect(out, err, 2)
	copy(v[:], out)
	return v, err
}

// RunVec3 runs the program and requires a vec3 result.
func (vm *VirtualMachine) RunVec3(x, y, t fixed.Fixed) ([3]fixed.Fixed, error) {
	var v [3]fixed.Fixed
	out, err := vm.Run(x, y, t)
	out, err = vm.expect(out, err, 3)
	copy(v[:], out)
	return v, err
}

// RunVec4 runs the program and requires a vec4 result.
func (vm *VirtualMachine) RunVec4(x, y, t fixed.Fixed) ([4]fixed.Fixed, error) {
	var v [4]fixed.Fixed
	out, err := vm.Run(x, y, t)
	out, err = vm.expect(out, err, 4)
	copy(v[:], out)
	return v, err
}

// RunScalarPixel is RunScalar for pixel coordinates.
func (vm *VirtualMachine) RunScalarPixel(px, py int, t fixed.Fixed) (fixed.Fixed, error) {
	out, err := vm.RunPixel(px, py, t)
	out, err = vm.expect(out, err, 1)
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

// RunVec3Pixel is RunVec3 for pixel coordinates.
func (vm *VirtualMachine) RunVec3Pixel(px, py int, t fixed.Fixed) ([3]fixed.Fixed, error) {
	var v [3]fixed.Fixed
	out, err := vm.RunPixel(px, py, t)
	out, err = vm.expect(out, err, 3)
	copy(v[:], out)
	return v, err
}

// RunVec4Pixel is RunVec4 for pixel coordinates.
func (vm *VirtualMachine) RunVec4Pixel(px, py int, t fixed.Fixed) ([4]fixed.Fixed, error) {
	var v [4]fixed.Fixed
	out, err := vm.RunPixel(px, py, t)
	out, err = vm.expect(out, err, 4)
	copy(v[:], out)
	return v, err
}

// ResetLocals restores main's locals to their initial values and drops any
// frames left by a failed run.
func (vm *VirtualMachine) ResetLocals() {
	main := vm.program.MainFunction()
	vm.locals.reset(len(main.Locals), main.Locals, vm.initial)
}

// Locals returns a copy of main's locals by name, as left by the last run.
func (vm *VirtualMachine) Locals() map[string][]fixed.Fixed {
	main := vm.program.MainFunction()
	out := make(map[string][]fixed.Fixed, len(main.Locals))
	for i, def := range main.Locals {
		if i >= len(vm.locals.slots) {
			break
		}
		out[def.Name] = append([]fixed.Fixed(nil), vm.locals.lane(i)...)
	}
	return out
}

// Executed returns the number of instructions executed by the last run.
func (vm *VirtualMachine) Executed() int {
	return vm.executed
}

func (vm *VirtualMachine) run() (out []fixed.Fixed, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("panic: %v", r)
		}
		// Leave the machine idle: out may still alias the stack, but sp and
		// the call chain start over. Frames left by a failed call are freed.
		vm.sp, vm.depth, vm.fn, vm.base = 0, 0, 0, 0
		vm.locals.release(len(vm.program.MainFunction().Locals))
	}()
	vm.sp = 0
	vm.pc = vm.program.MainFunction().Offset
	vm.fn = 0
	vm.base = 0
	vm.depth = 0
	vm.executed = 0
	vm.lastLine = -1
	vm.ResetLocals()
	return vm.eval()
}
