package bytecode

// Stats contains statistics about a compiled program.
// This is useful for auditing scripts before execution.
type Stats struct {
	// InstructionCount is the total number of instructions.
	InstructionCount int

	// FunctionCount is the number of functions, main included.
	FunctionCount int

	// LocalCount is the number of local slots across all functions.
	LocalCount int

	// LocalWords is the number of words those slots occupy.
	LocalWords int

	// SourceBytes is the size of the original source code in bytes.
	SourceBytes int
}

// Stats returns statistics about the program.
func (p *Program) Stats() Stats {
	s := Stats{
		InstructionCount: len(p.Code),
		FunctionCount:    len(p.Functions),
		SourceBytes:      len(p.Source),
	}
	for i := range p.Functions {
		s.LocalCount += len(p.Functions[i].Locals)
		s.LocalWords += p.Functions[i].LocalWords()
	}
	return s
}
