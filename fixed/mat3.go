package fixed

// Mat3 is a 3x3 matrix stored column-major: element (row, col) lives at
// index col*3+row.
type Mat3 [9]Fixed

// Identity returns the identity matrix.
func Identity() Mat3 {
	return Mat3{One, 0, 0, 0, One, 0, 0, 0, One}
}

// At returns the element at (row, col).
func (m Mat3) At(row, col int) Fixed {
	return m[col*3+row]
}

// MulMat3 returns a * b.
func MulMat3(a, b Mat3) Mat3 {
	var r Mat3
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			r[col*3+row] = Mul(a[row], b[col*3]) +
				Mul(a[3+row], b[col*3+1]) +
				Mul(a[6+row], b[col*3+2])
		}
	}
	return r
}

// MulVec3 returns m * v.
func MulVec3(m Mat3, v [3]Fixed) [3]Fixed {
	return [3]Fixed{
		Mul(m[0], v[0]) + Mul(m[3], v[1]) + Mul(m[6], v[2]),
		Mul(m[1], v[0]) + Mul(m[4], v[1]) + Mul(m[7], v[2]),
		Mul(m[2], v[0]) + Mul(m[5], v[1]) + Mul(m[8], v[2]),
	}
}

// Transpose returns the transpose of m.
func Transpose(m Mat3) Mat3 {
	return Mat3{m[0], m[3], m[6], m[1], m[4], m[7], m[2], m[5], m[8]}
}

// Determinant computes the determinant using Sarrus' rule.
func Determinant(m Mat3) Fixed {
	a := Mul(Mul(m[0], m[4]), m[8])
	b := Mul(Mul(m[1], m[5]), m[6])
	c := Mul(Mul(m[2], m[3]), m[7])
	d := Mul(Mul(m[2], m[4]), m[6])
	e := Mul(Mul(m[0], m[5]), m[7])
	f := Mul(Mul(m[1], m[3]), m[8])
	return (a + b + c) - (d + e + f)
}

// Inverse returns the inverse of m, or false when m is singular.
func Inverse(m Mat3) (Mat3, bool) {
	det := Determinant(m)
	if det == 0 {
		return Mat3{}, false
	}
	c00 := Mul(m[4], m[8]) - Mul(m[5], m[7])
	c01 := -(Mul(m[1], m[8]) - Mul(m[2], m[7]))
	c02 := Mul(m[1], m[5]) - Mul(m[2], m[4])
	c10 := -(Mul(m[3], m[8]) - Mul(m[5], m[6]))
	c11 := Mul(m[0], m[8]) - Mul(m[2], m[6])
	c12 := -(Mul(m[0], m[5]) - Mul(m[2], m[3]))
	c20 := Mul(m[3], m[7]) - Mul(m[4], m[6])
	c21 := -(Mul(m[0], m[7]) - Mul(m[1], m[6]))
	c22 := Mul(m[0], m[4]) - Mul(m[1], m[3])

	inv := Div(One, det)
	return Mat3{
		Mul(c00, inv), Mul(c01, inv), Mul(c02, inv),
		Mul(c10, inv), Mul(c11, inv), Mul(c12, inv),
		Mul(c20, inv), Mul(c21, inv), Mul(c22, inv),
	}, true
}
