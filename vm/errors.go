package vm

import (
	"errors"
	"fmt"
	"strings"

	lpserrors "github.com/lightplayer/lps/errors"
	"github.com/lightplayer/lps/bytecode"
	"github.com/lightplayer/lps/fixed"
	"github.com/lightplayer/lps/op"
	"github.com/lightplayer/lps/types"
)

// ErrNoSize is returned by the pixel entry points when the VM was created
// without WithSize.
var ErrNoSize = errors.New("vm: pixel coordinates require WithSize")

// ErrorKind classifies a RuntimeError.
type ErrorKind uint8

const (
	StackOverflow ErrorKind = iota + 1
	StackUnderflow
	LocalOutOfBounds
	LocalTypeMismatch
	TypeMismatch
	ProgramCounterOutOfBounds
	CallStackOverflow
	InstructionLimitExceeded
	DivisionByZero
	InvalidFunctionIndex
	InvalidTextureIndex
	UnsupportedOpCode
	ObserverHalt
)

var kindNames = map[ErrorKind]string{
	StackOverflow:             "StackOverflow",
	StackUnderflow:            "StackUnderflow",
	LocalOutOfBounds:          "LocalOutOfBounds",
	LocalTypeMismatch:         "LocalTypeMismatch",
	TypeMismatch:              "TypeMismatch",
	ProgramCounterOutOfBounds: "ProgramCounterOutOfBounds",
	CallStackOverflow:         "CallStackOverflow",
	InstructionLimitExceeded:  "InstructionLimitExceeded",
	DivisionByZero:            "DivisionByZero",
	InvalidFunctionIndex:      "InvalidFunctionIndex",
	InvalidTextureIndex:       "InvalidTextureIndex",
	UnsupportedOpCode:         "UnsupportedOpCode",
	ObserverHalt:              "ObserverHalt",
}

var kindCodes = map[ErrorKind]lpserrors.ErrorCode{
	StackOverflow:             lpserrors.E3001,
	StackUnderflow:            lpserrors.E3002,
	LocalOutOfBounds:          lpserrors.E3003,
	LocalTypeMismatch:         lpserrors.E3004,
	TypeMismatch:              lpserrors.E3005,
	ProgramCounterOutOfBounds: lpserrors.E3006,
	CallStackOverflow:         lpserrors.E3007,
	InstructionLimitExceeded:  lpserrors.E3008,
	DivisionByZero:            lpserrors.E3009,
	InvalidFunctionIndex:      lpserrors.E3010,
	InvalidTextureIndex:       lpserrors.E3011,
	UnsupportedOpCode:         lpserrors.E3012,
	ObserverHalt:              lpserrors.E3013,
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Code returns the E3xxx error code for the kind.
func (k ErrorKind) Code() lpserrors.ErrorCode {
	return kindCodes[k]
}

// RuntimeError is returned by every failing run. Which detail fields are set
// depends on Kind.
type RuntimeError struct {
	Kind     ErrorKind
	PC       int
	Function string
	Opcode   op.Code

	Required int // StackUnderflow, TypeMismatch
	Actual   int // StackUnderflow, TypeMismatch
	Index    int // LocalOutOfBounds, LocalTypeMismatch, InvalidFunctionIndex, InvalidTextureIndex
	Max      int // LocalOutOfBounds, ProgramCounterOutOfBounds, InstructionLimitExceeded
	Depth    int // CallStackOverflow
	SP       int // stack pointer when the error was raised

	// StackTop holds up to five words below SP, deepest first.
	StackTop []fixed.Fixed

	Name     string     // LocalTypeMismatch
	Expected types.Type // LocalTypeMismatch
	Found    types.Type // LocalTypeMismatch

	Span     bytecode.Span
	Filename string
	Source   string
	Stack    []lpserrors.StackFrame
}

func (e *RuntimeError) detail() string {
	switch e.Kind {
	case StackOverflow:
		return fmt.Sprintf("stack overflow at sp %d", e.SP)
	case StackUnderflow:
		return fmt.Sprintf("stack underflow: required %d, actual %d", e.Required, e.Actual)
	case LocalOutOfBounds:
		return fmt.Sprintf("local %d out of bounds (max %d)", e.Index, e.Max)
	case LocalTypeMismatch:
		return fmt.Sprintf("local %d (%s) has type %s, expected %s", e.Index, e.Name, e.Found, e.Expected)
	case TypeMismatch:
		return fmt.Sprintf("result has %d words, expected %d", e.Actual, e.Required)
	case ProgramCounterOutOfBounds:
		return fmt.Sprintf("program counter %d out of bounds (max %d)", e.PC, e.Max)
	case CallStackOverflow:
		return fmt.Sprintf("call stack overflow at depth %d", e.Depth)
	case InstructionLimitExceeded:
		return fmt.Sprintf("instruction limit of %d exceeded", e.Max)
	case DivisionByZero:
		return "integer division by zero"
	case InvalidFunctionIndex:
		return fmt.Sprintf("invalid function index %d", e.Index)
	case InvalidTextureIndex:
		return fmt.Sprintf("invalid texture index %d", e.Index)
	case UnsupportedOpCode:
		return fmt.Sprintf("unsupported opcode %s", e.Opcode)
	case ObserverHalt:
		return "execution halted by observer"
	}
	return "unknown runtime error"
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString("runtime error")
	if e.Function != "" {
		fmt.Fprintf(&b, " in %s", e.Function)
	}
	fmt.Fprintf(&b, " at pc %d", e.PC)
	if e.Opcode != op.Invalid {
		fmt.Fprintf(&b, " (%s)", e.Opcode)
	}
	b.WriteString(": ")
	b.WriteString(e.detail())
	return b.String()
}

// FriendlyErrorMessage returns the uncolored, multi-line rendering.
func (e *RuntimeError) FriendlyErrorMessage() string {
	return lpserrors.NewFormatter(false).Format(e.ToFormatted())
}

// ToFormatted converts to the FormattedError type for display.
func (e *RuntimeError) ToFormatted() *lpserrors.FormattedError {
	fe := &lpserrors.FormattedError{
		Code:     e.Kind.Code(),
		Kind:     "runtime error",
		Message:  e.detail(),
		Filename: e.Filename,
		Line:     e.Span.Line,
		Column:   e.Span.Column,
		Stack:    e.Stack,
	}
	if !e.Span.IsZero() {
		if n := e.Span.End - e.Span.Start; n > 1 {
			fe.EndColumn = e.Span.Column + n
		}
		if line := lpserrors.SourceLine(e.Source, e.Span.Line); line != "" {
			fe.SourceLines = []lpserrors.SourceLineEntry{{Number: e.Span.Line, Text: line, IsMain: true}}
		}
	}
	return fe
}

// fail builds a RuntimeError for the instruction at the current pc.
func (vm *VirtualMachine) fail(kind ErrorKind) *RuntimeError {
	p := vm.program
	err := &RuntimeError{
		Kind:     kind,
		PC:       vm.pc,
		Filename: p.Name,
		Source:   p.Source,
	}
	if vm.pc >= 0 && vm.pc < len(p.Code) {
		err.Opcode = p.Code[vm.pc].Op
	}
	if fn := p.Function(vm.fn); fn != nil {
		err.Function = fn.Name
	}
	err.Span, _ = p.SpanAt(vm.pc)
	err.Stack = vm.captureStack()
	err.SP = vm.sp
	if vm.sp > 0 {
		start := max(vm.sp-5, 0)
		err.StackTop = append([]fixed.Fixed(nil), vm.stack[start:vm.sp]...)
	}
	return err
}

// captureStack lists the active calls, innermost first.
func (vm *VirtualMachine) captureStack() []lpserrors.StackFrame {
	frames := make([]lpserrors.StackFrame, 0, vm.depth+1)
	pc, fn := vm.pc, vm.fn
	for i := vm.depth; i >= 0; i-- {
		frames = append(frames, vm.stackFrame(fn, pc))
		if i > 0 {
			f := vm.frames[i-1]
			pc, fn = f.returnPC-1, f.fn
		}
	}
	return frames
}

func (vm *VirtualMachine) stackFrame(fn, pc int) lpserrors.StackFrame {
	p := vm.program
	frame := lpserrors.StackFrame{PC: pc}
	if f := p.Function(fn); f != nil {
		frame.Function = f.Name
	}
	if span, ok := p.SpanAt(pc); ok && !span.IsZero() {
		frame.Location = lpserrors.SourceLocation{
			Filename: p.Name,
			Line:     span.Line,
			Column:   span.Column,
			Source:   lpserrors.SourceLine(p.Source, span.Line),
		}
	}
	return frame
}

// FormatError renders err with the VM state captured when it was raised:
// the program counter, the top of the value stack and the source line.
func (vm *VirtualMachine) FormatError(err error) string {
	var rerr *RuntimeError
	if !errors.As(err, &rerr) {
		return err.Error()
	}
	var b strings.Builder
	b.WriteString(rerr.Error())
	b.WriteString("\n")
	fmt.Fprintf(&b, "  at PC %d (%s)\n", rerr.PC, rerr.Opcode)
	fmt.Fprintf(&b, "  stack pointer: %d\n", rerr.SP)
	if len(rerr.StackTop) > 0 {
		b.WriteString("  stack (top 5): [")
		for i, v := range rerr.StackTop {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%g", v.Float())
		}
		b.WriteString("]\n")
	}
	if line := lpserrors.SourceLine(rerr.Source, rerr.Span.Line); line != "" && !rerr.Span.IsZero() {
		fmt.Fprintf(&b, "  %d | %s\n", rerr.Span.Line, line)
		pad := len(fmt.Sprint(rerr.Span.Line))
		width := rerr.Span.End - rerr.Span.Start
		if width < 1 {
			width = 1
		}
		fmt.Fprintf(&b, "  %s | %s%s\n", strings.Repeat(" ", pad),
			strings.Repeat(" ", rerr.Span.Column-1), strings.Repeat("^", width))
	}
	return b.String()
}
