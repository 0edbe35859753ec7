// Package types defines the closed set of static types used by the LPS
// compiler and virtual machine.
package types

// Type is a static LPS type. Vector and matrix types decompose into
// consecutive fixed-point lanes.
type Type uint8

const (
	None Type = iota
	Bool
	Int32
	Fixed
	Vec2
	Vec3
	Vec4
	Mat3
	Void
)

var names = [...]string{
	None:  "none",
	Bool:  "bool",
	Int32: "int",
	Fixed: "float",
	Vec2:  "vec2",
	Vec3:  "vec3",
	Vec4:  "vec4",
	Mat3:  "mat3",
	Void:  "void",
}

func (t Type) String() string {
	if int(t) < len(names) {
		return names[t]
	}
	return "unknown"
}

// Size returns the number of stack words a value of this type occupies.
func (t Type) Size() int {
	switch t {
	case Bool, Int32, Fixed:
		return 1
	case Vec2:
		return 2
	case Vec3:
		return 3
	case Vec4:
		return 4
	case Mat3:
		return 9
	}
	return 0
}

// IsVector reports whether t is vec2, vec3 or vec4.
func (t Type) IsVector() bool {
	return t == Vec2 || t == Vec3 || t == Vec4
}

// IsScalar reports whether t is a single-lane numeric type.
func (t Type) IsScalar() bool {
	return t == Bool || t == Int32 || t == Fixed
}

// IsNumeric reports whether arithmetic is defined on t.
func (t Type) IsNumeric() bool {
	return t.IsScalar() || t.IsVector() || t == Mat3
}

// Compatible reports whether a value of type src can be stored where dst
// is expected without conversion. Bool and Fixed share a representation.
func Compatible(dst, src Type) bool {
	if dst == src {
		return true
	}
	return (dst == Fixed && src == Bool) || (dst == Bool && src == Fixed)
}

// VectorOf returns the vector type with n lanes, Fixed for n == 1, or None.
func VectorOf(n int) Type {
	switch n {
	case 1:
		return Fixed
	case 2:
		return Vec2
	case 3:
		return Vec3
	case 4:
		return Vec4
	}
	return None
}

// FromName maps a type keyword to its Type.
func FromName(name string) (Type, bool) {
	for i, n := range names {
		if n == name && Type(i) != None {
			return Type(i), true
		}
	}
	return None, false
}
