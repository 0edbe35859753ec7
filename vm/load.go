package vm

import (
	"github.com/lightplayer/lps/fixed"
	"github.com/lightplayer/lps/op"
)

// inputs are the per-run values behind the Load opcode.
type inputs struct {
	xNorm, yNorm fixed.Fixed
	xInt, yInt   fixed.Fixed
	time         fixed.Fixed
}

func (vm *VirtualMachine) load(src op.LoadSource) (fixed.Fixed, bool) {
	in := &vm.in
	switch src {
	case op.XNorm:
		return in.xNorm, true
	case op.YNorm:
		return in.yNorm, true
	case op.XInt:
		return in.xInt, true
	case op.YInt:
		return in.yInt, true
	case op.Time:
		return in.time, true
	case op.TimeNorm:
		return fixed.Mod(in.time, fixed.One), true
	case op.CenterDist:
		return centerDist(in.xInt, in.yInt, vm.width, vm.height), true
	case op.CenterAngle:
		return centerAngle(in.xInt, in.yInt, vm.width, vm.height), true
	}
	return 0, false
}

func center(width, height int) (fixed.Fixed, fixed.Fixed) {
	return fixed.FromInt(int32(width / 2)), fixed.FromInt(int32(height / 2))
}

// centerDist is the Manhattan distance from the canvas center, scaled so a
// corner is 1.
func centerDist(x, y fixed.Fixed, width, height int) fixed.Fixed {
	cx, cy := center(width, height)
	limit := cx + cy
	if limit == 0 {
		return 0
	}
	return fixed.Div(fixed.Abs(x-cx)+fixed.Abs(y-cy), limit)
}

// centerAngle approximates the angle from the canvas center in -π..π by
// interpolating within octants. The center itself has angle 0.
func centerAngle(x, y fixed.Fixed, width, height int) fixed.Fixed {
	cx, cy := center(width, height)
	dx, dy := x-cx, y-cy
	if dx == 0 && dy == 0 {
		return 0
	}
	adx, ady := fixed.Abs(dx), fixed.Abs(dy)
	eighth := fixed.FromInt(8)
	var angle fixed.Fixed
	if adx > ady {
		angle = fixed.Div(fixed.Div(ady, adx), eighth)
	} else {
		angle = fixed.Half/2 - fixed.Div(fixed.Div(adx, ady), eighth)
	}

	var turn fixed.Fixed
	switch {
	case dx >= 0 && dy >= 0:
		turn = angle
	case dx < 0 && dy >= 0:
		turn = fixed.Half - angle
	case dx < 0:
		turn = fixed.Half + angle
	default:
		turn = fixed.One - angle
	}
	return fixed.Mul(turn, fixed.Tau) - fixed.Pi
}
