package fixed

import "math"

// SinTableSize is the number of entries in the sine lookup table.
const SinTableSize = 256

var sinTable [SinTableSize]int32

func init() {
	for i := range sinTable {
		angle := 2 * math.Pi * float64(i) / SinTableSize
		sinTable[i] = int32(math.Round(math.Sin(angle) * float64(One)))
	}
}

// Sin returns the sine of x (radians) from the lookup table.
func Sin(x Fixed) Fixed {
	normalized := Div(x, Tau).Frac()
	idx := MulInt(normalized, SinTableSize).Int()
	if idx >= SinTableSize {
		idx = SinTableSize - 1
	}
	return Fixed(sinTable[idx])
}

// Cos returns the cosine of x (radians).
func Cos(x Fixed) Fixed {
	return Sin(x + Div(Pi, FromInt(2)))
}

// Tan returns the tangent of x. Near the asymptotes the result is clamped
// to +/-100.
func Tan(x Fixed) Fixed {
	s := Sin(x)
	c := Cos(x)
	if Abs(c) < 100 {
		if s >= 0 {
			return FromInt(100)
		}
		return -FromInt(100)
	}
	return Div(s, c)
}

// Atan returns the arctangent of y using a short Taylor series, folded
// through the reciprocal identity outside [-1, 1].
func Atan(y Fixed) Fixed {
	if Abs(y) > One {
		result := Div(Pi, FromInt(2)) - atanApprox(Div(One, Abs(y)))
		if y < 0 {
			return -result
		}
		return result
	}
	return atanApprox(y)
}

func atanApprox(x Fixed) Fixed {
	x2 := Mul(x, x)
	x3 := Mul(x2, x)
	x5 := Mul(x3, x2)
	x7 := Mul(x5, x2)
	return x - Div(x3, FromInt(3)) + Div(x5, FromInt(5)) - Div(x7, FromInt(7))
}

// Atan2 returns the angle of (x, y) in radians.
func Atan2(y, x Fixed) Fixed {
	halfPi := Div(Pi, FromInt(2))
	if x == 0 {
		if y >= 0 {
			return halfPi
		}
		return -halfPi
	}
	if y == 0 {
		if x >= 0 {
			return 0
		}
		return Pi
	}
	angle := Atan(Div(y, x))
	switch {
	case x > 0:
		return angle
	case y >= 0:
		return angle + Pi
	default:
		return angle - Pi
	}
}
