package vm

import (
	"github.com/lightplayer/lps/bytecode"
	"github.com/lightplayer/lps/op"
)

// StepMode controls when OnStep callbacks are triggered.
type StepMode uint8

const (
	// StepAll calls OnStep for every instruction.
	// Use for: detailed tracing, instruction-level debugging.
	StepAll StepMode = iota

	// StepNone never calls OnStep.
	// Use for: profilers that only need Call/Return events.
	StepNone

	// StepSampled calls OnStep every N instructions.
	// Use for: statistical profiling of hot scripts.
	StepSampled

	// StepOnLine calls OnStep when the source line changes.
	// Use for: coverage tools and line-level debugging.
	StepOnLine
)

// ObserverConfig specifies what events an observer wants to receive.
// Use NewObserverConfig() to create configs with safe defaults.
type ObserverConfig struct {
	// StepMode controls OnStep callback frequency.
	StepMode StepMode

	// SampleInterval is the number of instructions between OnStep calls
	// when StepMode is StepSampled. Values <= 0 are treated as 1.
	SampleInterval int

	// ObserveCalls enables OnCall callbacks.
	ObserveCalls bool

	// ObserveReturns enables OnReturn callbacks.
	ObserveReturns bool
}

// NewObserverConfig creates a config with safe defaults.
// ObserveCalls and ObserveReturns default to true.
func NewObserverConfig(mode StepMode) ObserverConfig {
	return ObserverConfig{
		StepMode:       mode,
		SampleInterval: 100,
		ObserveCalls:   true,
		ObserveReturns: true,
	}
}

// NormalizeConfig validates and clamps config values.
func NormalizeConfig(cfg ObserverConfig) ObserverConfig {
	if cfg.StepMode == StepSampled && cfg.SampleInterval <= 0 {
		cfg.SampleInterval = 1
	}
	return cfg
}

// Observer is an interface for observing VM execution events.
// Implementations can embed NoOpObserver to provide default no-op
// implementations for methods they don't need.
//
// Observer methods are called synchronously during VM execution.
type Observer interface {
	// Config returns the observer's configuration.
	// Called once when the VM is created.
	Config() ObserverConfig

	// OnStep is called based on the StepMode in the observer's config.
	// Returns false to halt execution immediately.
	OnStep(event StepEvent) bool

	// OnCall is called when a user function is invoked.
	// Returns false to halt execution immediately.
	OnCall(event CallEvent) bool

	// OnReturn is called when a user function returns to its caller.
	// Returns false to halt execution immediately.
	OnReturn(event ReturnEvent) bool
}

// StepEvent describes the instruction about to execute.
type StepEvent struct {
	// PC is the index of the instruction in the program's code.
	PC int

	// Opcode is the operation being executed.
	Opcode op.Code

	// Arg is the instruction's immediate.
	Arg int32

	// Span is the source span of the instruction.
	Span bytecode.Span

	// StackDepth is the number of words on the value stack.
	StackDepth int

	// FrameDepth is the current depth of the call stack; 0 in main.
	FrameDepth int
}

// CallEvent describes a call to a user function.
type CallEvent struct {
	// FunctionName is the name of the function being called.
	FunctionName string

	// FunctionIndex is the index in the program's function table.
	FunctionIndex int

	// ArgWords is the number of stack words passed as arguments.
	ArgWords int

	// Span is the source span of the call site.
	Span bytecode.Span

	// FrameDepth is the call stack depth after the call.
	FrameDepth int
}

// ReturnEvent describes a return from a user function.
type ReturnEvent struct {
	// FunctionName is the name of the function returning.
	FunctionName string

	// Span is the source span of the return.
	Span bytecode.Span

	// FrameDepth is the call stack depth after returning.
	FrameDepth int
}

// NoOpObserver is an Observer implementation that does nothing.
// Embed this in your observer to provide default implementations
// for methods you don't need.
//
// NoOpObserver uses StepAll mode with ObserveCalls and ObserveReturns
// enabled. Override Config() to use a different mode.
type NoOpObserver struct{}

func (NoOpObserver) Config() ObserverConfig {
	return NewObserverConfig(StepAll)
}

func (NoOpObserver) OnStep(StepEvent) bool     { return true }
func (NoOpObserver) OnCall(CallEvent) bool     { return true }
func (NoOpObserver) OnReturn(ReturnEvent) bool { return true }

var _ Observer = NoOpObserver{}

// observeStep reports whether execution may continue.
func (vm *VirtualMachine) observeStep(in bytecode.Instruction) bool {
	cfg := &vm.observerConfig
	span, _ := vm.program.SpanAt(vm.pc)
	switch cfg.StepMode {
	case StepNone:
		return true
	case StepSampled:
		if vm.executed%cfg.SampleInterval != 0 {
			return true
		}
	case StepOnLine:
		if span.Line == vm.lastLine {
			return true
		}
		vm.lastLine = span.Line
	}
	return vm.observer.OnStep(StepEvent{
		PC:         vm.pc,
		Opcode:     in.Op,
		Arg:        in.Arg,
		Span:       span,
		StackDepth: vm.sp,
		FrameDepth: vm.depth,
	})
}
