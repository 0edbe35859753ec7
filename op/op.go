// Package op defines the typed opcodes executed by the LPS virtual machine.
//
// Opcodes are specialized by operand type: there is no generic "add", only
// AddFixed, AddInt32, AddVec2 and so on. The code generator picks the variant
// from the statically resolved types.
package op

// Code is an opcode that indicates an operation to execute.
type Code uint8

const (
	Invalid Code = iota

	// Stack
	Push      // push the Fixed immediate in Arg
	PushInt32 // push the Int32 immediate in Arg
	Dup1
	Dup2
	Dup3
	Dup4
	Dup9
	Drop1
	Drop2
	Drop3
	Drop4
	Drop9
	Swap

	// Fixed arithmetic
	AddFixed
	SubFixed
	MulFixed
	DivFixed
	ModFixed
	NegFixed
	AbsFixed
	MinFixed
	MaxFixed
	SinFixed
	CosFixed
	TanFixed
	AtanFixed
	Atan2Fixed
	SqrtFixed
	FloorFixed
	CeilFixed
	FractFixed
	PowFixed
	SignFixed
	SaturateFixed
	ClampFixed
	StepFixed
	LerpFixed
	SmoothstepFixed
	Perlin3 // Arg holds the octave count

	// Fixed comparisons and logic, results are One or 0
	GreaterFixed
	LessFixed
	GreaterEqFixed
	LessEqFixed
	EqFixed
	NotEqFixed
	And
	Or
	Not

	// Int32 arithmetic
	AddInt32
	SubInt32
	MulInt32
	DivInt32
	ModInt32
	NegInt32

	// Int32 comparisons, results are One or 0
	GreaterInt32
	LessInt32
	GreaterEqInt32
	LessEqInt32
	EqInt32
	NotEqInt32

	// Int32 bitwise
	BitAndInt32
	BitOrInt32
	BitXorInt32
	BitNotInt32
	ShlInt32
	ShrInt32

	// Conversion
	Int32ToFixed

	// Vec2
	AddVec2
	SubVec2
	MulVec2
	DivVec2
	ModVec2
	NegVec2
	MulVec2Scalar
	DivVec2Scalar
	Dot2
	Length2
	Normalize2
	Distance2

	// Vec3
	AddVec3
	SubVec3
	MulVec3
	DivVec3
	ModVec3
	NegVec3
	MulVec3Scalar
	DivVec3Scalar
	Dot3
	Cross3
	Length3
	Normalize3
	Distance3

	// Vec4
	AddVec4
	SubVec4
	MulVec4
	DivVec4
	ModVec4
	NegVec4
	MulVec4Scalar
	DivVec4Scalar
	Dot4
	Length4
	Normalize4
	Distance4

	// Mat3
	AddMat3
	SubMat3
	NegMat3
	MulMat3
	MulMat3Scalar
	DivMat3Scalar
	MulMat3Vec3
	TransposeMat3
	DeterminantMat3
	InverseMat3

	// Swizzles, Arg holds packed lane indices
	Swizzle3to1
	Swizzle3to2
	Swizzle3to3
	Swizzle4to1
	Swizzle4to2
	Swizzle4to3
	Swizzle4to4

	// Textures, Arg holds the texture index
	TextureSampleR
	TextureSampleRGBA

	// Locals, Arg holds the slot index
	LoadLocalFixed
	StoreLocalFixed
	LoadLocalInt32
	StoreLocalInt32
	LoadLocalVec2
	StoreLocalVec2
	LoadLocalVec3
	StoreLocalVec3
	LoadLocalVec4
	StoreLocalVec4
	LoadLocalMat3
	StoreLocalMat3

	// Control flow
	Jump       // relative: target = pc + Arg + 1
	JumpIfZero // pops the condition
	JumpIfNonZero
	Call // Arg holds the function index
	Return

	// Built-in inputs, Arg holds a LoadSource
	Load

	numCodes
)

// OperandKind describes how the Arg field of an instruction is interpreted.
type OperandKind uint8

const (
	NoOperand OperandKind = iota
	FixedOperand
	Int32Operand
	JumpOperand
	LocalOperand
	FunctionOperand
	LanesOperand
	TextureOperand
	SourceOperand
	OctavesOperand
)

// Variable marks a stack effect that depends on the called function.
const Variable = -1

// Info contains information about an opcode.
type Info struct {
	Name    string
	Code    Code
	Operand OperandKind
	// Pops and Pushes give the number of stack words consumed and produced.
	Pops   int
	Pushes int
}

var (
	infos  [numCodes]Info
	byName = map[string]Code{}
)

func init() {
	type opInfo struct {
		op      Code
		name    string
		operand OperandKind
		pops    int
		pushes  int
	}
	ops := []opInfo{
		{Push, "Push", FixedOperand, 0, 1},
		{PushInt32, "PushInt32", Int32Operand, 0, 1},
		{Dup1, "Dup1", NoOperand, 1, 2},
		{Dup2, "Dup2", NoOperand, 2, 4},
		{Dup3, "Dup3", NoOperand, 3, 6},
		{Dup4, "Dup4", NoOperand, 4, 8},
		{Dup9, "Dup9", NoOperand, 9, 18},
		{Drop1, "Drop1", NoOperand, 1, 0},
		{Drop2, "Drop2", NoOperand, 2, 0},
		{Drop3, "Drop3", NoOperand, 3, 0},
		{Drop4, "Drop4", NoOperand, 4, 0},
		{Drop9, "Drop9", NoOperand, 9, 0},
		{Swap, "Swap", NoOperand, 2, 2},

		{AddFixed, "AddFixed", NoOperand, 2, 1},
		{SubFixed, "SubFixed", NoOperand, 2, 1},
		{MulFixed, "MulFixed", NoOperand, 2, 1},
		{DivFixed, "DivFixed", NoOperand, 2, 1},
		{ModFixed, "ModFixed", NoOperand, 2, 1},
		{NegFixed, "NegFixed", NoOperand, 1, 1},
		{AbsFixed, "AbsFixed", NoOperand, 1, 1},
		{MinFixed, "MinFixed", NoOperand, 2, 1},
		{MaxFixed, "MaxFixed", NoOperand, 2, 1},
		{SinFixed, "SinFixed", NoOperand, 1, 1},
		{CosFixed, "CosFixed", NoOperand, 1, 1},
		{TanFixed, "TanFixed", NoOperand, 1, 1},
		{AtanFixed, "AtanFixed", NoOperand, 1, 1},
		{Atan2Fixed, "Atan2Fixed", NoOperand, 2, 1},
		{SqrtFixed, "SqrtFixed", NoOperand, 1, 1},
		{FloorFixed, "FloorFixed", NoOperand, 1, 1},
		{CeilFixed, "CeilFixed", NoOperand, 1, 1},
		{FractFixed, "FractFixed", NoOperand, 1, 1},
		{PowFixed, "PowFixed", NoOperand, 2, 1},
		{SignFixed, "SignFixed", NoOperand, 1, 1},
		{SaturateFixed, "SaturateFixed", NoOperand, 1, 1},
		{ClampFixed, "ClampFixed", NoOperand, 3, 1},
		{StepFixed, "StepFixed", NoOperand, 2, 1},
		{LerpFixed, "LerpFixed", NoOperand, 3, 1},
		{SmoothstepFixed, "SmoothstepFixed", NoOperand, 3, 1},
		{Perlin3, "Perlin3", OctavesOperand, 3, 1},

		{GreaterFixed, "GreaterFixed", NoOperand, 2, 1},
		{LessFixed, "LessFixed", NoOperand, 2, 1},
		{GreaterEqFixed, "GreaterEqFixed", NoOperand, 2, 1},
		{LessEqFixed, "LessEqFixed", NoOperand, 2, 1},
		{EqFixed, "EqFixed", NoOperand, 2, 1},
		{NotEqFixed, "NotEqFixed", NoOperand, 2, 1},
		{And, "And", NoOperand, 2, 1},
		{Or, "Or", NoOperand, 2, 1},
		{Not, "Not", NoOperand, 1, 1},

		{AddInt32, "AddInt32", NoOperand, 2, 1},
		{SubInt32, "SubInt32", NoOperand, 2, 1},
		{MulInt32, "MulInt32", NoOperand, 2, 1},
		{DivInt32, "DivInt32", NoOperand, 2, 1},
		{ModInt32, "ModInt32", NoOperand, 2, 1},
		{NegInt32, "NegInt32", NoOperand, 1, 1},
		{GreaterInt32, "GreaterInt32", NoOperand, 2, 1},
		{LessInt32, "LessInt32", NoOperand, 2, 1},
		{GreaterEqInt32, "GreaterEqInt32", NoOperand, 2, 1},
		{LessEqInt32, "LessEqInt32", NoOperand, 2, 1},
		{EqInt32, "EqInt32", NoOperand, 2, 1},
		{NotEqInt32, "NotEqInt32", NoOperand, 2, 1},
		{BitAndInt32, "BitAndInt32", NoOperand, 2, 1},
		{BitOrInt32, "BitOrInt32", NoOperand, 2, 1},
		{BitXorInt32, "BitXorInt32", NoOperand, 2, 1},
		{BitNotInt32, "BitNotInt32", NoOperand, 1, 1},
		{ShlInt32, "ShlInt32", NoOperand, 2, 1},
		{ShrInt32, "ShrInt32", NoOperand, 2, 1},
		{Int32ToFixed, "Int32ToFixed", NoOperand, 1, 1},

		{AddVec2, "AddVec2", NoOperand, 4, 2},
		{SubVec2, "SubVec2", NoOperand, 4, 2},
		{MulVec2, "MulVec2", NoOperand, 4, 2},
		{DivVec2, "DivVec2", NoOperand, 4, 2},
		{ModVec2, "ModVec2", NoOperand, 4, 2},
		{NegVec2, "NegVec2", NoOperand, 2, 2},
		{MulVec2Scalar, "MulVec2Scalar", NoOperand, 3, 2},
		{DivVec2Scalar, "DivVec2Scalar", NoOperand, 3, 2},
		{Dot2, "Dot2", NoOperand, 4, 1},
		{Length2, "Length2", NoOperand, 2, 1},
		{Normalize2, "Normalize2", NoOperand, 2, 2},
		{Distance2, "Distance2", NoOperand, 4, 1},

		{AddVec3, "AddVec3", NoOperand, 6, 3},
		{SubVec3, "SubVec3", NoOperand, 6, 3},
		{MulVec3, "MulVec3", NoOperand, 6, 3},
		{DivVec3, "DivVec3", NoOperand, 6, 3},
		{ModVec3, "ModVec3", NoOperand, 6, 3},
		{NegVec3, "NegVec3", NoOperand, 3, 3},
		{MulVec3Scalar, "MulVec3Scalar", NoOperand, 4, 3},
		{DivVec3Scalar, "DivVec3Scalar", NoOperand, 4, 3},
		{Dot3, "Dot3", NoOperand, 6, 1},
		{Cross3, "Cross3", NoOperand, 6, 3},
		{Length3, "Length3", NoOperand, 3, 1},
		{Normalize3, "Normalize3", NoOperand, 3, 3},
		{Distance3, "Distance3", NoOperand, 6, 1},

		{AddVec4, "AddVec4", NoOperand, 8, 4},
		{SubVec4, "SubVec4", NoOperand, 8, 4},
		{MulVec4, "MulVec4", NoOperand, 8, 4},
		{DivVec4, "DivVec4", NoOperand, 8, 4},
		{ModVec4, "ModVec4", NoOperand, 8, 4},
		{NegVec4, "NegVec4", NoOperand, 4, 4},
		{MulVec4Scalar, "MulVec4Scalar", NoOperand, 5, 4},
		{DivVec4Scalar, "DivVec4Scalar", NoOperand, 5, 4},
		{Dot4, "Dot4", NoOperand, 8, 1},
		{Length4, "Length4", NoOperand, 4, 1},
		{Normalize4, "Normalize4", NoOperand, 4, 4},
		{Distance4, "Distance4", NoOperand, 8, 1},

		{AddMat3, "AddMat3", NoOperand, 18, 9},
		{SubMat3, "SubMat3", NoOperand, 18, 9},
		{NegMat3, "NegMat3", NoOperand, 9, 9},
		{MulMat3, "MulMat3", NoOperand, 18, 9},
		{MulMat3Scalar, "MulMat3Scalar", NoOperand, 10, 9},
		{DivMat3Scalar, "DivMat3Scalar", NoOperand, 10, 9},
		{MulMat3Vec3, "MulMat3Vec3", NoOperand, 12, 3},
		{TransposeMat3, "TransposeMat3", NoOperand, 9, 9},
		{DeterminantMat3, "DeterminantMat3", NoOperand, 9, 1},
		{InverseMat3, "InverseMat3", NoOperand, 9, 9},

		{Swizzle3to1, "Swizzle3to1", LanesOperand, 3, 1},
		{Swizzle3to2, "Swizzle3to2", LanesOperand, 3, 2},
		{Swizzle3to3, "Swizzle3to3", LanesOperand, 3, 3},
		{Swizzle4to1, "Swizzle4to1", LanesOperand, 4, 1},
		{Swizzle4to2, "Swizzle4to2", LanesOperand, 4, 2},
		{Swizzle4to3, "Swizzle4to3", LanesOperand, 4, 3},
		{Swizzle4to4, "Swizzle4to4", LanesOperand, 4, 4},

		{TextureSampleR, "TextureSampleR", TextureOperand, 2, 1},
		{TextureSampleRGBA, "TextureSampleRGBA", TextureOperand, 2, 4},

		{LoadLocalFixed, "LoadLocalFixed", LocalOperand, 0, 1},
		{StoreLocalFixed, "StoreLocalFixed", LocalOperand, 1, 0},
		{LoadLocalInt32, "LoadLocalInt32", LocalOperand, 0, 1},
		{StoreLocalInt32, "StoreLocalInt32", LocalOperand, 1, 0},
		{LoadLocalVec2, "LoadLocalVec2", LocalOperand, 0, 2},
		{StoreLocalVec2, "StoreLocalVec2", LocalOperand, 2, 0},
		{LoadLocalVec3, "LoadLocalVec3", LocalOperand, 0, 3},
		{StoreLocalVec3, "StoreLocalVec3", LocalOperand, 3, 0},
		{LoadLocalVec4, "LoadLocalVec4", LocalOperand, 0, 4},
		{StoreLocalVec4, "StoreLocalVec4", LocalOperand, 4, 0},
		{LoadLocalMat3, "LoadLocalMat3", LocalOperand, 0, 9},
		{StoreLocalMat3, "StoreLocalMat3", LocalOperand, 9, 0},

		{Jump, "Jump", JumpOperand, 0, 0},
		{JumpIfZero, "JumpIfZero", JumpOperand, 1, 0},
		{JumpIfNonZero, "JumpIfNonZero", JumpOperand, 1, 0},
		{Call, "Call", FunctionOperand, Variable, Variable},
		{Return, "Return", NoOperand, Variable, Variable},

		{Load, "Load", SourceOperand, 0, 1},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Name:    o.name,
			Code:    o.op,
			Operand: o.operand,
			Pops:    o.pops,
			Pushes:  o.pushes,
		}
		byName[o.name] = o.op
	}
	infos[Invalid] = Info{Name: "Invalid"}
}

// GetInfo returns information about the given opcode.
func GetInfo(op Code) Info {
	if op >= numCodes {
		return infos[Invalid]
	}
	return infos[op]
}

// Lookup returns the opcode with the given name.
func Lookup(name string) (Code, bool) {
	code, ok := byName[name]
	return code, ok
}

// Count returns the number of defined opcodes, including Invalid.
func Count() int {
	return int(numCodes)
}

func (c Code) String() string {
	return GetInfo(c).Name
}

// IsJump reports whether the opcode carries a relative jump offset.
func (c Code) IsJump() bool {
	return c == Jump || c == JumpIfZero || c == JumpIfNonZero
}
