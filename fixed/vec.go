package fixed

// Vector helpers operate on lane slices so the VM can apply them directly to
// regions of its value stack.

// Dot returns the dot product of two equally sized vectors.
func Dot(a, b []Fixed) Fixed {
	var sum Fixed
	for i := range a {
		sum += Mul(a[i], b[i])
	}
	return sum
}

// Length returns the Euclidean length of v.
func Length(v []Fixed) Fixed {
	return Sqrt(Dot(v, v))
}

// Normalize scales v to unit length in place. A zero vector is left as is.
func Normalize(v []Fixed) {
	l := Length(v)
	if l == 0 {
		return
	}
	for i := range v {
		v[i] = Div(v[i], l)
	}
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b []Fixed) Fixed {
	var sum Fixed
	for i := range a {
		d := a[i] - b[i]
		sum += Mul(d, d)
	}
	return Sqrt(sum)
}

// Cross returns the cross product of two 3-lane vectors.
func Cross(a, b [3]Fixed) [3]Fixed {
	return [3]Fixed{
		Mul(a[1], b[2]) - Mul(a[2], b[1]),
		Mul(a[2], b[0]) - Mul(a[0], b[2]),
		Mul(a[0], b[1]) - Mul(a[1], b[0]),
	}
}
