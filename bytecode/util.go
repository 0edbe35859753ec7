package bytecode

// copyInstructions returns a copy of the given instruction slice.
func copyInstructions(src []Instruction) []Instruction {
	if src == nil {
		return nil
	}
	dst := make([]Instruction, len(src))
	copy(dst, src)
	return dst
}

// copySpans returns a copy of the given source map.
func copySpans(src SourceMap) SourceMap {
	if src == nil {
		return nil
	}
	dst := make(SourceMap, len(src))
	copy(dst, src)
	return dst
}

// copyFunctions returns a deep copy of the function table.
func copyFunctions(src []Function) []Function {
	if src == nil {
		return nil
	}
	dst := make([]Function, len(src))
	for i, fn := range src {
		dst[i] = fn
		if fn.Params != nil {
			dst[i].Params = append([]ParamDef(nil), fn.Params...)
		}
		if fn.Locals != nil {
			dst[i].Locals = make([]LocalVarDef, len(fn.Locals))
			for j, l := range fn.Locals {
				dst[i].Locals[j] = l
				if l.Initial != nil {
					dst[i].Locals[j].Initial = append([]int32(nil), l.Initial...)
				}
			}
		}
	}
	return dst
}
