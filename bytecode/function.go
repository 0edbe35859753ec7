package bytecode

import (
	"fmt"
	"strings"

	"github.com/lightplayer/lps/types"
)

// ParamDef is a function parameter. Parameters occupy the first local slots
// of their function, in order.
type ParamDef struct {
	Name string
	Type types.Type
}

// LocalVarDef describes one local slot. Initial holds the raw lane values
// the slot starts with; nil means all zero.
type LocalVarDef struct {
	Name    string
	Type    types.Type
	Initial []int32
}

// Function is an entry of the function table. Its code is
// Code[Offset : Offset+Length] of the owning program.
type Function struct {
	Name       string
	Offset     int
	Length     int
	Params     []ParamDef
	ReturnType types.Type
	Locals     []LocalVarDef
}

// End returns the index one past the function's last instruction.
func (f *Function) End() int {
	return f.Offset + f.Length
}

// Contains reports whether pc lies inside the function.
func (f *Function) Contains(pc int) bool {
	return pc >= f.Offset && pc < f.End()
}

// LocalIndex returns the slot of the named local, or -1.
func (f *Function) LocalIndex(name string) int {
	for i, l := range f.Locals {
		if l.Name == name {
			return i
		}
	}
	return -1
}

// ParamWords returns the number of stack words taken by the arguments.
func (f *Function) ParamWords() int {
	n := 0
	for _, p := range f.Params {
		n += p.Type.Size()
	}
	return n
}

// LocalWords returns the number of words needed to store every local.
func (f *Function) LocalWords() int {
	n := 0
	for _, l := range f.Locals {
		n += l.Type.Size()
	}
	return n
}

// Signature returns the function's declaration, for example
// "float wave(float x, vec2 p)".
func (f *Function) Signature() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s(", f.ReturnType, f.Name)
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %s", p.Type, p.Name)
	}
	b.WriteString(")")
	return b.String()
}
