// Package bytecode defines the compiled form of an LPS script.
//
// A [Program] is a flat instruction array shared by every function, a
// function table whose entry 0 is main, the local variable layout of each
// function, and an optional source map with one [Span] per instruction.
// Programs are produced by the compiler, are read-only afterwards and may be
// shared by any number of virtual machines.
//
// # Instructions
//
// Each [Instruction] pairs an opcode with a single int32 argument. Depending
// on the opcode the argument is a Q16.16 constant, an integer constant, a
// jump offset relative to the instruction after the jump, a local slot, a
// function index, packed swizzle lanes, a texture index, a load source or a
// noise octave count. See package op for the operand kind of each opcode.
//
// # Serialization
//
// Programs serialize to JSON (human readable, opcodes by name) and to
// canonical CBOR. [WriteFile] and [ReadFile] pick the encoding from the file
// extension:
//
//	prog, err := lps.Compile(ctx, source)
//	if err != nil {
//		return err
//	}
//	if err := bytecode.WriteFile("plasma.lpsc", prog); err != nil {
//		return err
//	}
package bytecode
