package vm

import (
	"github.com/lightplayer/lps/bytecode"
	"github.com/lightplayer/lps/fixed"
)

// Eval runs the given program once in a new Virtual Machine and returns a
// copy of the result words.
func Eval(program *bytecode.Program, x, y, t fixed.Fixed, options ...Option) ([]fixed.Fixed, error) {
	machine, err := New(program, options...)
	if err != nil {
		return nil, err
	}
	out, err := machine.Run(x, y, t)
	if err != nil {
		return nil, err
	}
	return append([]fixed.Fixed(nil), out...), nil
}
