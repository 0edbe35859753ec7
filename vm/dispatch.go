package vm

import (
	"github.com/lightplayer/lps/fixed"
	"github.com/lightplayer/lps/op"
	"github.com/lightplayer/lps/types"
)

func add(a, b fixed.Fixed) fixed.Fixed { return a + b }
func sub(a, b fixed.Fixed) fixed.Fixed { return a - b }

// eval runs the fetch/dispatch loop until main returns or an error occurs.
func (vm *VirtualMachine) eval() ([]fixed.Fixed, error) {
	p := vm.program
	code := p.Code
	observe := vm.observer != nil
	s := vm.stack

	for {
		fn := &p.Functions[vm.fn]
		if !fn.Contains(vm.pc) {
			err := vm.fail(ProgramCounterOutOfBounds)
			err.Max = fn.End()
			return nil, err
		}
		if vm.executed >= vm.limits.MaxInstructions {
			err := vm.fail(InstructionLimitExceeded)
			err.Max = vm.limits.MaxInstructions
			return nil, err
		}
		in := code[vm.pc]
		if observe && !vm.observeStep(in) {
			return nil, vm.fail(ObserverHalt)
		}
		vm.executed++

		info := op.GetInfo(in.Op)
		if info.Pops != op.Variable {
			if vm.sp < info.Pops {
				err := vm.fail(StackUnderflow)
				err.Required, err.Actual = info.Pops, vm.sp
				return nil, err
			}
			if vm.sp-info.Pops+info.Pushes > len(s) {
				return nil, vm.fail(StackOverflow)
			}
		}

		sp := vm.sp
		next := vm.pc + 1

		switch in.Op {
		case op.Push, op.PushInt32:
			s[sp] = fixed.Fixed(in.Arg)
			sp++
		case op.Dup1:
			s[sp] = s[sp-1]
			sp++
		case op.Dup2:
			sp += copy(s[sp:], s[sp-2:sp])
		case op.Dup3:
			sp += copy(s[sp:], s[sp-3:sp])
		case op.Dup4:
			sp += copy(s[sp:], s[sp-4:sp])
		case op.Dup9:
			sp += copy(s[sp:], s[sp-9:sp])
		case op.Drop1:
			sp--
		case op.Drop2:
			sp -= 2
		case op.Drop3:
			sp -= 3
		case op.Drop4:
			sp -= 4
		case op.Drop9:
			sp -= 9
		case op.Swap:
			s[sp-1], s[sp-2] = s[sp-2], s[sp-1]

		case op.AddFixed:
			s[sp-2] += s[sp-1]
			sp--
		case op.SubFixed:
			s[sp-2] -= s[sp-1]
			sp--
		case op.MulFixed:
			s[sp-2] = fixed.Mul(s[sp-2], s[sp-1])
			sp--
		case op.DivFixed:
			s[sp-2] = fixed.Div(s[sp-2], s[sp-1])
			sp--
		case op.ModFixed:
			s[sp-2] = fixed.Mod(s[sp-2], s[sp-1])
			sp--
		case op.NegFixed:
			s[sp-1] = fixed.Neg(s[sp-1])
		case op.AbsFixed:
			s[sp-1] = fixed.Abs(s[sp-1])
		case op.MinFixed:
			s[sp-2] = fixed.Min(s[sp-2], s[sp-1])
			sp--
		case op.MaxFixed:
			s[sp-2] = fixed.Max(s[sp-2], s[sp-1])
			sp--
		case op.SinFixed:
			s[sp-1] = fixed.Sin(s[sp-1])
		case op.CosFixed:
			s[sp-1] = fixed.Cos(s[sp-1])
		case op.TanFixed:
			s[sp-1] = fixed.Tan(s[sp-1])
		case op.AtanFixed:
			s[sp-1] = fixed.Atan(s[sp-1])
		case op.Atan2Fixed:
			s[sp-2] = fixed.Atan2(s[sp-2], s[sp-1])
			sp--
		case op.SqrtFixed:
			s[sp-1] = fixed.Sqrt(s[sp-1])
		case op.FloorFixed:
			s[sp-1] = fixed.Floor(s[sp-1])
		case op.CeilFixed:
			s[sp-1] = fixed.Ceil(s[sp-1])
		case op.FractFixed:
			s[sp-1] = s[sp-1].Frac()
		case op.PowFixed:
			s[sp-2] = fixed.Pow(s[sp-2], s[sp-1])
			sp--
		case op.SignFixed:
			s[sp-1] = fixed.Sign(s[sp-1])
		case op.SaturateFixed:
			s[sp-1] = fixed.Saturate(s[sp-1])
		case op.ClampFixed:
			s[sp-3] = fixed.Clamp(s[sp-3], s[sp-2], s[sp-1])
			sp -= 2
		case op.StepFixed:
			s[sp-2] = fixed.Step(s[sp-2], s[sp-1])
			sp--
		case op.LerpFixed:
			s[sp-3] = fixed.Lerp(s[sp-3], s[sp-2], s[sp-1])
			sp -= 2
		case op.SmoothstepFixed:
			s[sp-3] = fixed.Smoothstep(s[sp-3], s[sp-2], s[sp-1])
			sp -= 2
		case op.Perlin3:
			s[sp-3] = fixed.Perlin3(s[sp-3], s[sp-2], s[sp-1], int(in.Arg))
			sp -= 2

		// Comparisons use the raw words, which order Fixed and Int32 alike.
		case op.GreaterFixed, op.GreaterInt32:
			s[sp-2] = fixed.Bool(s[sp-2] > s[sp-1])
			sp--
		case op.LessFixed, op.LessInt32:
			s[sp-2] = fixed.Bool(s[sp-2] < s[sp-1])
			sp--
		case op.GreaterEqFixed, op.GreaterEqInt32:
			s[sp-2] = fixed.Bool(s[sp-2] >= s[sp-1])
			sp--
		case op.LessEqFixed, op.LessEqInt32:
			s[sp-2] = fixed.Bool(s[sp-2] <= s[sp-1])
			sp--
		case op.EqFixed, op.EqInt32:
			s[sp-2] = fixed.Bool(s[sp-2] == s[sp-1])
			sp--
		case op.NotEqFixed, op.NotEqInt32:
			s[sp-2] = fixed.Bool(s[sp-2] != s[sp-1])
			sp--
		case op.And:
			s[sp-2] = fixed.Bool(s[sp-2] != 0 && s[sp-1] != 0)
			sp--
		case op.Or:
			s[sp-2] = fixed.Bool(s[sp-2] != 0 || s[sp-1] != 0)
			sp--
		case op.Not:
			s[sp-1] = fixed.Bool(s[sp-1] == 0)

		case op.AddInt32:
			s[sp-2] += s[sp-1]
			sp--
		case op.SubInt32:
			s[sp-2] -= s[sp-1]
			sp--
		case op.MulInt32:
			s[sp-2] *= s[sp-1]
			sp--
		case op.DivInt32, op.ModInt32:
			if s[sp-1] == 0 {
				return nil, vm.fail(DivisionByZero)
			}
			if in.Op == op.DivInt32 {
				s[sp-2] /= s[sp-1]
			} else {
				s[sp-2] %= s[sp-1]
			}
			sp--
		case op.NegInt32:
			s[sp-1] = -s[sp-1]
		case op.BitAndInt32:
			s[sp-2] &= s[sp-1]
			sp--
		case op.BitOrInt32:
			s[sp-2] |= s[sp-1]
			sp--
		case op.BitXorInt32:
			s[sp-2] ^= s[sp-1]
			sp--
		case op.BitNotInt32:
			s[sp-1] = ^s[sp-1]
		case op.ShlInt32:
			s[sp-2] <<= uint32(s[sp-1]) & 31
			sp--
		case op.ShrInt32:
			s[sp-2] >>= uint32(s[sp-1]) & 31
			sp--
		case op.Int32ToFixed:
			s[sp-1] = fixed.FromInt(int32(s[sp-1]))

		case op.AddVec2, op.AddVec3, op.AddVec4, op.AddMat3:
			sp = lanes(s, sp, info.Pushes, add)
		case op.SubVec2, op.SubVec3, op.SubVec4, op.SubMat3:
			sp = lanes(s, sp, info.Pushes, sub)
		case op.MulVec2, op.MulVec3, op.MulVec4:
			sp = lanes(s, sp, info.Pushes, fixed.Mul)
		case op.DivVec2, op.DivVec3, op.DivVec4:
			sp = lanes(s, sp, info.Pushes, fixed.Div)
		case op.ModVec2, op.ModVec3, op.ModVec4:
			sp = lanes(s, sp, info.Pushes, fixed.Mod)
		case op.NegVec2, op.NegVec3, op.NegVec4, op.NegMat3:
			for i := sp - info.Pushes; i < sp; i++ {
				s[i] = fixed.Neg(s[i])
			}
		case op.MulVec2Scalar, op.MulVec3Scalar, op.MulVec4Scalar, op.MulMat3Scalar:
			sp = scale(s, sp, info.Pushes, fixed.Mul)
		case op.DivVec2Scalar, op.DivVec3Scalar, op.DivVec4Scalar, op.DivMat3Scalar:
			sp = scale(s, sp, info.Pushes, fixed.Div)
		case op.Dot2, op.Dot3, op.Dot4:
			n := info.Pops / 2
			s[sp-2*n] = fixed.Dot(s[sp-2*n:sp-n], s[sp-n:sp])
			sp -= 2*n - 1
		case op.Distance2, op.Distance3, op.Distance4:
			n := info.Pops / 2
			s[sp-2*n] = fixed.Distance(s[sp-2*n:sp-n], s[sp-n:sp])
			sp -= 2*n - 1
		case op.Length2, op.Length3, op.Length4:
			n := info.Pops
			s[sp-n] = fixed.Length(s[sp-n : sp])
			sp -= n - 1
		case op.Normalize2, op.Normalize3, op.Normalize4:
			fixed.Normalize(s[sp-info.Pops : sp])
		case op.Cross3:
			var a, b [3]fixed.Fixed
			copy(a[:], s[sp-6:sp-3])
			copy(b[:], s[sp-3:sp])
			r := fixed.Cross(a, b)
			copy(s[sp-6:], r[:])
			sp -= 3

		case op.MulMat3:
			var a, b fixed.Mat3
			copy(a[:], s[sp-18:sp-9])
			copy(b[:], s[sp-9:sp])
			r := fixed.MulMat3(a, b)
			copy(s[sp-18:], r[:])
			sp -= 9
		case op.MulMat3Vec3:
			var m fixed.Mat3
			var v [3]fixed.Fixed
			copy(m[:], s[sp-12:sp-3])
			copy(v[:], s[sp-3:sp])
			r := fixed.MulVec3(m, v)
			copy(s[sp-12:], r[:])
			sp -= 9
		case op.TransposeMat3:
			var m fixed.Mat3
			copy(m[:], s[sp-9:sp])
			m = fixed.Transpose(m)
			copy(s[sp-9:], m[:])
		case op.DeterminantMat3:
			var m fixed.Mat3
			copy(m[:], s[sp-9:sp])
			s[sp-9] = fixed.Determinant(m)
			sp -= 8
		case op.InverseMat3:
			var m fixed.Mat3
			copy(m[:], s[sp-9:sp])
			inv, ok := fixed.Inverse(m)
			if !ok {
				inv = fixed.Identity()
			}
			copy(s[sp-9:], inv[:])

		case op.Swizzle3to1, op.Swizzle3to2, op.Swizzle3to3,
			op.Swizzle4to1, op.Swizzle4to2, op.Swizzle4to3, op.Swizzle4to4:
			sp = swizzle(s, sp, info.Pops, info.Pushes, in.Arg)

		case op.TextureSampleR, op.TextureSampleRGBA:
			if vm.sampler == nil {
				err := vm.fail(InvalidTextureIndex)
				err.Index = int(in.Arg)
				return nil, err
			}
			rgba, ok := vm.sampler.Sample(int(in.Arg), s[sp-2], s[sp-1])
			if !ok {
				err := vm.fail(InvalidTextureIndex)
				err.Index = int(in.Arg)
				return nil, err
			}
			sp -= 2
			sp += copy(s[sp:sp+info.Pushes], rgba[:])

		case op.LoadLocalFixed, op.LoadLocalInt32, op.LoadLocalVec2,
			op.LoadLocalVec3, op.LoadLocalVec4, op.LoadLocalMat3:
			words, err := vm.local(int(in.Arg), localTypes[in.Op])
			if err != nil {
				return nil, err
			}
			sp += copy(s[sp:], words)
		case op.StoreLocalFixed, op.StoreLocalInt32, op.StoreLocalVec2,
			op.StoreLocalVec3, op.StoreLocalVec4, op.StoreLocalMat3:
			words, err := vm.local(int(in.Arg), localTypes[in.Op])
			if err != nil {
				return nil, err
			}
			sp -= len(words)
			copy(words, s[sp:])

		case op.Jump:
			next += int(in.Arg)
		case op.JumpIfZero:
			sp--
			if s[sp] == 0 {
				next += int(in.Arg)
			}
		case op.JumpIfNonZero:
			sp--
			if s[sp] != 0 {
				next += int(in.Arg)
			}

		case op.Call:
			target, err := vm.call(int(in.Arg), next)
			if err != nil {
				return nil, err
			}
			sp, next = vm.sp, target
		case op.Return:
			if vm.depth == 0 {
				return s[:sp], nil
			}
			if err := vm.ret(); err != nil {
				return nil, err
			}
			next = vm.pc

		case op.Load:
			v, ok := vm.load(op.LoadSource(in.Arg))
			if !ok {
				return nil, vm.fail(UnsupportedOpCode)
			}
			s[sp] = v
			sp++

		default:
			return nil, vm.fail(UnsupportedOpCode)
		}

		vm.sp = sp
		vm.pc = next
	}
}

// localTypes maps each local opcode to the slot type it expects. The table
// is an array so the lookup stays off the heap in the dispatch loop.
var localTypes [256]types.Type

func init() {
	for code, typ := range map[op.Code]types.Type{
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
	} {
		localTypes[code] = typ
	}
}

// local returns the words of local i of the running function after checking
// its bounds and type.
func (vm *VirtualMachine) local(i int, want types.Type) ([]fixed.Fixed, *RuntimeError) {
	fn := &vm.program.Functions[vm.fn]
	slot := vm.base + i
	if i < 0 || i >= len(fn.Locals) || slot >= len(vm.locals.slots) {
		err := vm.fail(LocalOutOfBounds)
		err.Index, err.Max = i, len(fn.Locals)
		return nil, err
	}
	sl := vm.locals.slots[slot]
	if !types.Compatible(want, sl.typ) {
		err := vm.fail(LocalTypeMismatch)
		err.Index, err.Name = i, sl.name
		err.Expected, err.Found = want, sl.typ
		return nil, err
	}
	return vm.locals.words[sl.offset : sl.offset+sl.size], nil
}

// call enters function idx. The arguments on the stack move into the
// callee's parameter slots. It returns the callee's entry pc.
func (vm *VirtualMachine) call(idx, returnPC int) (int, error) {
	p := vm.program
	if idx <= 0 || idx >= len(p.Functions) {
		err := vm.fail(InvalidFunctionIndex)
		err.Index = idx
		return 0, err
	}
	if vm.depth >= vm.limits.MaxCallDepth {
		err := vm.fail(CallStackOverflow)
		err.Depth = vm.depth
		return 0, err
	}
	fn := &p.Functions[idx]
	n := vm.paramWords[idx]
	if vm.sp < n {
		err := vm.fail(StackUnderflow)
		err.Required, err.Actual = n, vm.sp
		return 0, err
	}
	base, ok := vm.locals.allocate(fn.Locals)
	if !ok {
		err := vm.fail(CallStackOverflow)
		err.Depth = vm.depth
		return 0, err
	}
	if n > 0 {
		start := vm.locals.slots[base].offset
		copy(vm.locals.words[start:start+n], vm.stack[vm.sp-n:vm.sp])
		vm.sp -= n
	}
	vm.frames[vm.depth] = frame{returnPC: returnPC, fn: vm.fn, base: vm.base}
	vm.depth++
	vm.fn, vm.base = idx, base

	if vm.observer != nil && vm.observerConfig.ObserveCalls {
		span, _ := p.SpanAt(vm.pc)
		if !vm.observer.OnCall(CallEvent{
			FunctionName:  fn.Name,
			FunctionIndex: idx,
			ArgWords:      n,
			Span:          span,
			FrameDepth:    vm.depth,
		}) {
			return 0, vm.fail(ObserverHalt)
		}
	}
	return fn.Offset, nil
}

// ret leaves the running function, keeping its result on the stack, and
// sets pc to the caller's resume point.
func (vm *VirtualMachine) ret() error {
	name := vm.program.Functions[vm.fn].Name
	span, _ := vm.program.SpanAt(vm.pc)

	vm.locals.release(vm.base)
	vm.depth--
	f := vm.frames[vm.depth]
	vm.pc, vm.fn, vm.base = f.returnPC, f.fn, f.base

	if vm.observer != nil && vm.observerConfig.ObserveReturns {
		if !vm.observer.OnReturn(ReturnEvent{
			FunctionName: name,
			Span:         span,
			FrameDepth:   vm.depth,
		}) {
			return vm.fail(ObserverHalt)
		}
	}
	return nil
}

// lanes applies f lane by lane to the two n-word operands on top of the
// stack.
func lanes(s []fixed.Fixed, sp, n int, f func(a, b fixed.Fixed) fixed.Fixed) int {
	a, b := s[sp-2*n:sp-n], s[sp-n:sp]
	for i := range a {
		a[i] = f(a[i], b[i])
	}
	return sp - n
}

// scale applies f to every lane of the n-word operand below the scalar on
// top of the stack.
func scale(s []fixed.Fixed, sp, n int, f func(a, b fixed.Fixed) fixed.Fixed) int {
	k := s[sp-1]
	v := s[sp-1-n : sp-1]
	for i := range v {
		v[i] = f(v[i], k)
	}
	return sp - 1
}

// swizzle replaces the width words on top of the stack with the n lanes
// selected by the packed argument.
func swizzle(s []fixed.Fixed, sp, width, n int, arg int32) int {
	var src [4]fixed.Fixed
	base := sp - width
	copy(src[:], s[base:sp])
	for i := 0; i < n; i++ {
		s[base+i] = src[op.Lane(arg, i)&3]
	}
	return base + n
}
