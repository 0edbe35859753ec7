package optimize

import (
	"github.com/lightplayer/lps/bytecode"
	"github.com/lightplayer/lps/op"
)

var selfInverse = map[op.Code]bool{
	op.Swap:     true,
	op.NegFixed: true,
	op.NegInt32: true,
	op.NegVec2:  true,
	op.NegVec3:  true,
	op.NegVec4:  true,
	op.NegMat3:  true,
}

// redundantPair reports whether a followed by b leaves the stack as it was.
func redundantPair(a, b bytecode.Instruction) bool {
	switch {
	case selfInverse[a.Op] && a.Op == b.Op:
		return true
	case b.Op == op.Drop1:
		return a.Op == op.Push || a.Op == op.PushInt32 || a.Op == op.Dup1
	}
	return false
}

func jumpTargets(code []bytecode.Instruction) []bool {
	targets := make([]bool, len(code)+1)
	for pc, in := range code {
		if !in.Op.IsJump() {
			continue
		}
		if t := pc + 1 + int(in.Arg); t >= 0 && t <= len(code) {
			targets[t] = true
		}
	}
	return targets
}

// peephole removes one round of redundant instructions from p and returns
// the number removed. A pair whose second instruction is a jump target is
// kept, since control can enter between the two.
func peephole(p *bytecode.Program) int {
	code := p.Code
	targets := jumpTargets(code)
	remove := make([]bool, len(code))
	removed := 0
	for pc := 0; pc < len(code); pc++ {
		in := code[pc]
		if in.Op == op.Jump && in.Arg == 0 {
			remove[pc] = true
			removed++
			continue
		}
		if pc+1 < len(code) && !targets[pc+1] && redundantPair(in, code[pc+1]) {
			remove[pc], remove[pc+1] = true, true
			removed += 2
			pc++
		}
	}
	if removed == 0 {
		return 0
	}

	// remap[pc] is the new index of pc, or of the next kept instruction.
	remap := make([]int, len(code)+1)
	kept := 0
	for pc := range code {
		remap[pc] = kept
		if !remove[pc] {
			kept++
		}
	}
	remap[len(code)] = kept

	out := make([]bytecode.Instruction, 0, kept)
	var spans bytecode.SourceMap
	if len(p.SourceMap) == len(code) {
		spans = make(bytecode.SourceMap, 0, kept)
	}
	for pc, in := range code {
		if remove[pc] {
			continue
		}
		if in.Op.IsJump() {
			target := pc + 1 + int(in.Arg)
			in.Arg = int32(remap[target] - remap[pc] - 1)
		}
		out = append(out, in)
		if spans != nil {
			spans = append(spans, p.SourceMap[pc])
		}
	}
	for i := range p.Functions {
		fn := &p.Functions[i]
		end := fn.Offset + fn.Length
		fn.Offset = remap[fn.Offset]
		fn.Length = remap[end] - fn.Offset
	}
	p.Code = out
	if spans != nil {
		p.SourceMap = spans
	}
	return removed
}
