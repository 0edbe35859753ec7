package fixed

// Sqrt computes the square root with an integer bit-by-bit algorithm.
// Non-positive input yields zero.
func Sqrt(a Fixed) Fixed {
	if a <= 0 {
		return 0
	}
	x := int64(a) << Shift
	var result int64
	bit := int64(1) << 46
	for bit > x {
		bit >>= 2
	}
	for bit != 0 {
		if x >= result+bit {
			x -= result + bit
			result = (result >> 1) + bit
		} else {
			result >>= 1
		}
		bit >>= 2
	}
	return Fixed(int32(result))
}

// PowInt raises base to an integer power by repeated squaring. Negative
// exponents return the reciprocal.
func PowInt(base Fixed, exp int32) Fixed {
	if exp < 0 {
		positive := PowInt(base, -exp)
		if positive == 0 {
			return 0
		}
		return Div(One, positive)
	}
	switch exp {
	case 0:
		return One
	case 1:
		return base
	}
	result := One
	power := base
	for exp > 0 {
		if exp&1 == 1 {
			result = Mul(result, power)
		}
		power = Mul(power, power)
		exp >>= 1
	}
	return result
}

// Pow raises base to exp. The exponent is truncated to an integer.
func Pow(base, exp Fixed) Fixed {
	return PowInt(base, exp.Int())
}

// Mod returns x - floor(x/y)*y, GLSL style. Integral operands take an
// exact integer path that truncates, so Mod(-7, 3) is -1.
func Mod(x, y Fixed) Fixed {
	if x.Frac() == 0 && y.Frac() == 0 {
		if yi := y.Int(); yi != 0 {
			return FromInt(x.Int() % yi)
		}
	}
	floored := Floor(Div(x, y))
	return x - Mul(floored, y)
}

// Lerp linearly interpolates between a and b.
func Lerp(a, b, t Fixed) Fixed {
	return a + Mul(b-a, t)
}

// Step returns 0 when x < edge and 1 otherwise.
func Step(edge, x Fixed) Fixed {
	if x < edge {
		return 0
	}
	return One
}

// Smoothstep performs Hermite interpolation between edge0 and edge1.
func Smoothstep(edge0, edge1, x Fixed) Fixed {
	t := Clamp(Div(x-edge0, edge1-edge0), 0, One)
	t2 := Mul(t, t)
	t3 := Mul(t2, t)
	return MulInt(t2, 3) - MulInt(t3, 2)
}
