// Package fixed implements Q16.16 fixed-point arithmetic.
//
// Every scalar the LPS virtual machine touches is a Fixed. Results are
// bit-identical across platforms because no floating point is involved once a
// value has been converted at the host boundary.
package fixed

import (
	"fmt"
	"math"
	"strconv"
)

// Fixed is a signed Q16.16 fixed-point number.
type Fixed int32

const (
	Shift = 16

	Zero Fixed = 0
	One  Fixed = 1 << Shift
	Half Fixed = One >> 1

	Pi  Fixed = 205887
	Tau Fixed = 411774
	E   Fixed = 178145
	Phi Fixed = 106039

	fracMask = int32(One - 1)
)

// FromInt converts an integer to fixed point.
func FromInt(i int32) Fixed {
	return Fixed(i << Shift)
}

// FromFloat converts a float to fixed point, truncating toward zero.
// Values outside the representable range saturate.
func FromFloat(f float64) Fixed {
	scaled := f * float64(One)
	switch {
	case math.IsNaN(scaled):
		return 0
	case scaled >= math.MaxInt32:
		return math.MaxInt32
	case scaled <= math.MinInt32:
		return math.MinInt32
	}
	return Fixed(int32(scaled))
}

// Raw returns the underlying word.
func (v Fixed) Raw() int32 {
	return int32(v)
}

// Float converts to float64. Intended for host-side display only.
func (v Fixed) Float() float64 {
	return float64(v) / float64(One)
}

// Int returns the integer part, rounding toward negative infinity.
func (v Fixed) Int() int32 {
	return int32(v) >> Shift
}

// Frac returns the fractional part in [0, 1).
func (v Fixed) Frac() Fixed {
	return Fixed(int32(v) & fracMask)
}

func (v Fixed) String() string {
	return strconv.FormatFloat(v.Float(), 'f', -1, 64)
}

// Format implements fmt.Formatter so that %v and %f print the decimal value.
func (v Fixed) Format(f fmt.State, verb rune) {
	switch verb {
	case 'd':
		fmt.Fprintf(f, "%d", int32(v))
	default:
		prec, ok := f.Precision()
		if !ok {
			prec = -1
		}
		fmt.Fprint(f, strconv.FormatFloat(v.Float(), 'f', prec, 64))
	}
}

// IsZero reports whether v is exactly zero.
func (v Fixed) IsZero() bool {
	return v == 0
}

// Mul multiplies two fixed-point values.
func Mul(a, b Fixed) Fixed {
	return Fixed((int64(a) * int64(b)) >> Shift)
}

// Div divides a by b. Division by zero yields zero.
func Div(a, b Fixed) Fixed {
	if b == 0 {
		return 0
	}
	return Fixed((int64(a) << Shift) / int64(b))
}

// MulInt multiplies by a plain integer without rescaling.
func MulInt(a Fixed, n int32) Fixed {
	return Fixed(int32(a) * n)
}

// Rem returns the truncated remainder of a / b. A zero divisor yields zero.
func Rem(a, b Fixed) Fixed {
	if b == 0 {
		return 0
	}
	return a % b
}

func Neg(a Fixed) Fixed {
	return -a
}

func Abs(a Fixed) Fixed {
	if a < 0 {
		return -a
	}
	return a
}

func Min(a, b Fixed) Fixed {
	if a < b {
		return a
	}
	return b
}

func Max(a, b Fixed) Fixed {
	if a > b {
		return a
	}
	return b
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi Fixed) Fixed {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Saturate clamps v to [0, 1].
func Saturate(v Fixed) Fixed {
	return Clamp(v, 0, One)
}

// Floor rounds toward negative infinity.
func Floor(v Fixed) Fixed {
	return FromInt(v.Int())
}

// Ceil rounds toward positive infinity.
func Ceil(v Fixed) Fixed {
	if v.Frac() == 0 {
		return v
	}
	return Floor(v) + One
}

// Sign returns -1, 0 or 1.
func Sign(v Fixed) Fixed {
	switch {
	case v > 0:
		return One
	case v < 0:
		return -One
	}
	return 0
}

// Bool converts a truth value to 0 or 1.
func Bool(b bool) Fixed {
	if b {
		return One
	}
	return 0
}
