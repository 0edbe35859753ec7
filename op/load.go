package op

// LoadSource selects the built-in input read by the Load opcode.
type LoadSource int32

const (
	XNorm LoadSource = iota
	YNorm
	XInt
	YInt
	Time
	TimeNorm
	CenterDist
	CenterAngle

	numSources
)

var sourceNames = [numSources]string{
	XNorm:       "XNorm",
	YNorm:       "YNorm",
	XInt:        "XInt",
	YInt:        "YInt",
	Time:        "Time",
	TimeNorm:    "TimeNorm",
	CenterDist:  "CenterDist",
	CenterAngle: "CenterAngle",
}

func (s LoadSource) String() string {
	if s.Valid() {
		return sourceNames[s]
	}
	return "Unknown"
}

// Valid reports whether s names a known source.
func (s LoadSource) Valid() bool {
	return s >= 0 && s < numSources
}

// PackLanes packs up to four swizzle lane indices into an instruction
// argument, one byte per lane, first lane in the low byte.
func PackLanes(lanes ...uint8) int32 {
	var arg int32
	for i, lane := range lanes {
		arg |= int32(lane) << (8 * i)
	}
	return arg
}

// Lane returns lane i of a packed swizzle argument.
func Lane(arg int32, i int) int {
	return int((arg >> (8 * i)) & 0xFF)
}
