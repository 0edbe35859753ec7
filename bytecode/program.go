package bytecode

import (
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/lightplayer/lps/op"
	"github.com/lightplayer/lps/types"
)

// ErrInvalidProgram is wrapped by every error returned from Validate.
var ErrInvalidProgram = errors.New("invalid program")

// Instruction is one opcode and its argument.
type Instruction struct {
	Op  op.Code
	Arg int32
}

func (i Instruction) String() string {
	if op.GetInfo(i.Op).Operand == op.NoOperand {
		return i.Op.String()
	}
	return fmt.Sprintf("%s %d", i.Op, i.Arg)
}

// Program is a compiled script.
type Program struct {
	ID        uuid.UUID
	Name      string
	Code      []Instruction
	Functions []Function
	Source    string
	SourceMap SourceMap
}

// NewID returns a fresh random program identifier.
func NewID() uuid.UUID {
	return uuid.Must(uuid.NewV4())
}

// MainFunction returns function 0.
func (p *Program) MainFunction() *Function {
	return &p.Functions[0]
}

// Function returns the function at index i, or nil.
func (p *Program) Function(i int) *Function {
	if i < 0 || i >= len(p.Functions) {
		return nil
	}
	return &p.Functions[i]
}

// FunctionByName returns the named function and its index.
func (p *Program) FunctionByName(name string) (*Function, int, bool) {
	for i := range p.Functions {
		if p.Functions[i].Name == name {
			return &p.Functions[i], i, true
		}
	}
	return nil, -1, false
}

// FunctionAt returns the index of the function containing pc, or -1.
func (p *Program) FunctionAt(pc int) int {
	for i := range p.Functions {
		if p.Functions[i].Contains(pc) {
			return i
		}
	}
	return -1
}

// Instructions returns the code of function i. The slice aliases the
// program and must not be modified.
func (p *Program) Instructions(i int) []Instruction {
	fn := p.Function(i)
	if fn == nil {
		return nil
	}
	return p.Code[fn.Offset:fn.End()]
}

// ResultType returns the return type of main.
func (p *Program) ResultType() types.Type {
	if len(p.Functions) == 0 {
		return types.None
	}
	return p.Functions[0].ReturnType
}

// SpanAt returns the source span of the instruction at pc.
func (p *Program) SpanAt(pc int) (Span, bool) {
	return p.SourceMap.At(pc)
}

// Clone returns a deep copy of the program that shares nothing with p.
func (p *Program) Clone() *Program {
	return &Program{
		ID:        p.ID,
		Name:      p.Name,
		Code:      copyInstructions(p.Code),
		Functions: copyFunctions(p.Functions),
		Source:    p.Source,
		SourceMap: copySpans(p.SourceMap),
	}
}

var localTypes = map[op.Code]types.Type{
	op.LoadLocalFixed:  types.Fixed,
	op.StoreLocalFixed: types.Fixed,
	op.LoadLocalInt32:  types.Int32,
	op.StoreLocalInt32: types.Int32,
	op.LoadLocalVec2:   types.Vec2,
	op.StoreLocalVec2:  types.Vec2,
	op.LoadLocalVec3:   types.Vec3,
	op.StoreLocalVec3:  types.Vec3,
	op.LoadLocalVec4:   types.Vec4,
	op.StoreLocalVec4:  types.Vec4,
	op.LoadLocalMat3:   types.Mat3,
	op.StoreLocalMat3:  types.Mat3,
}

// LocalType returns the local type a load or store opcode operates on.
func LocalType(c op.Code) (types.Type, bool) {
	t, ok := localTypes[c]
	return t, ok
}

// Validate checks the structural consistency of the program: function
// bounds, opcodes, jump targets, call indices, local slots and load sources.
func (p *Program) Validate() error {
	if len(p.Functions) == 0 {
		return fmt.Errorf("%w: no functions", ErrInvalidProgram)
	}
	if p.SourceMap != nil && len(p.SourceMap) != len(p.Code) {
		return fmt.Errorf("%w: source map has %d entries for %d instructions",
			ErrInvalidProgram, len(p.SourceMap), len(p.Code))
	}
	for fi := range p.Functions {
		fn := &p.Functions[fi]
		if fn.Offset < 0 || fn.Length <= 0 || fn.End() > len(p.Code) {
			return fmt.Errorf("%w: function %s spans [%d, %d) outside code of length %d",
				ErrInvalidProgram, fn.Name, fn.Offset, fn.End(), len(p.Code))
		}
		if len(fn.Params) > len(fn.Locals) {
			return fmt.Errorf("%w: function %s has fewer locals than parameters", ErrInvalidProgram, fn.Name)
		}
		for i, param := range fn.Params {
			if !types.Compatible(fn.Locals[i].Type, param.Type) {
				return fmt.Errorf("%w: function %s parameter %s does not match local slot %d",
					ErrInvalidProgram, fn.Name, param.Name, i)
			}
		}
		for pc := fn.Offset; pc < fn.End(); pc++ {
			if err := p.validateInstruction(fn, pc); err != nil {
				return fmt.Errorf("%w: %s at pc %d: %v", ErrInvalidProgram, fn.Name, pc, err)
			}
		}
	}
	return nil
}

func (p *Program) validateInstruction(fn *Function, pc int) error {
	ins := p.Code[pc]
	if ins.Op == op.Invalid || int(ins.Op) >= op.Count() {
		return fmt.Errorf("unknown opcode %d", ins.Op)
	}
	switch op.GetInfo(ins.Op).Operand {
	case op.JumpOperand:
		target := pc + 1 + int(ins.Arg)
		if !fn.Contains(target) {
			return fmt.Errorf("%s target %d outside function", ins.Op, target)
		}
	case op.FunctionOperand:
		if ins.Arg < 0 || int(ins.Arg) >= len(p.Functions) {
			return fmt.Errorf("call to unknown function %d", ins.Arg)
		}
	case op.LocalOperand:
		if ins.Arg < 0 || int(ins.Arg) >= len(fn.Locals) {
			return fmt.Errorf("local %d out of range", ins.Arg)
		}
		want := localTypes[ins.Op]
		if got := fn.Locals[ins.Arg].Type; !types.Compatible(want, got) {
			return fmt.Errorf("%s on local %s of type %s", ins.Op, fn.Locals[ins.Arg].Name, got)
		}
	case op.SourceOperand:
		if !op.LoadSource(ins.Arg).Valid() {
			return fmt.Errorf("unknown load source %d", ins.Arg)
		}
	case op.TextureOperand:
		if ins.Arg < 0 {
			return fmt.Errorf("negative texture index %d", ins.Arg)
		}
	case op.OctavesOperand:
		if ins.Arg < 1 || ins.Arg > 8 {
			return fmt.Errorf("octave count %d out of range", ins.Arg)
		}
	}
	return nil
}
