package op

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetInfo(t *testing.T) {
	tests := []struct {
		code    Code
		name    string
		operand OperandKind
		pops    int
		pushes  int
	}{
		{Push, "Push", FixedOperand, 0, 1},
		{PushInt32, "PushInt32", Int32Operand, 0, 1},
		{Dup9, "Dup9", NoOperand, 9, 18},
		{AddVec3, "AddVec3", NoOperand, 6, 3},
		{MulVec4Scalar, "MulVec4Scalar", NoOperand, 5, 4},
		{MulMat3Vec3, "MulMat3Vec3", NoOperand, 12, 3},
		{Swizzle4to2, "Swizzle4to2", LanesOperand, 4, 2},
		{Perlin3, "Perlin3", OctavesOperand, 3, 1},
		{TextureSampleRGBA, "TextureSampleRGBA", TextureOperand, 2, 4},
		{StoreLocalMat3, "StoreLocalMat3", LocalOperand, 9, 0},
		{JumpIfZero, "JumpIfZero", JumpOperand, 1, 0},
		{Call, "Call", FunctionOperand, Variable, Variable},
		{Load, "Load", SourceOperand, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := GetInfo(tt.code)
			require.Equal(t, tt.name, info.Name)
			require.Equal(t, tt.code, info.Code)
			require.Equal(t, tt.operand, info.Operand)
			require.Equal(t, tt.pops, info.Pops)
			require.Equal(t, tt.pushes, info.Pushes)
		})
	}
}

func TestEveryOpcodeHasInfo(t *testing.T) {
	for c := Code(1); int(c) < Count(); c++ {
		info := GetInfo(c)
		require.NotEmpty(t, info.Name, "opcode %d has no info", c)
		require.Equal(t, c, info.Code)
		found, ok := Lookup(info.Name)
		require.True(t, ok)
		require.Equal(t, c, found)
	}
}

func TestUnknownOpcode(t *testing.T) {
	require.Equal(t, "Invalid", GetInfo(Code(250)).Name)
	require.Equal(t, "Invalid", Invalid.String())
	_, ok := Lookup("Bogus")
	require.False(t, ok)
}

func TestIsJump(t *testing.T) {
	require.True(t, Jump.IsJump())
	require.True(t, JumpIfZero.IsJump())
	require.True(t, JumpIfNonZero.IsJump())
	require.False(t, Call.IsJump())
}

func TestLoadSource(t *testing.T) {
	require.Equal(t, "CenterAngle", CenterAngle.String())
	require.True(t, TimeNorm.Valid())
	require.False(t, LoadSource(99).Valid())
	require.Equal(t, "Unknown", LoadSource(-1).String())
}

func TestPackLanes(t *testing.T) {
	arg := PackLanes(2, 0, 3, 1)
	require.Equal(t, 2, Lane(arg, 0))
	require.Equal(t, 0, Lane(arg, 1))
	require.Equal(t, 3, Lane(arg, 2))
	require.Equal(t, 1, Lane(arg, 3))
	require.Equal(t, int32(0x01030002), arg)
}
