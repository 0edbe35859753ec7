package typecheck

import (
	"sort"

	"github.com/lightplayer/lps/op"
	"github.com/lightplayer/lps/types"
)

// BuiltinVar is an input that scripts can read without declaring it. Each
// lane is produced by one Load opcode.
type BuiltinVar struct {
	Name    string
	Type    types.Type
	Sources []op.LoadSource
}

func scalarVar(name string, src op.LoadSource) BuiltinVar {
	return BuiltinVar{Name: name, Type: types.Fixed, Sources: []op.LoadSource{src}}
}

var builtinVars = map[string]BuiltinVar{
	"x":           scalarVar("x", op.XNorm),
	"xNorm":       scalarVar("xNorm", op.XNorm),
	"y":           scalarVar("y", op.YNorm),
	"yNorm":       scalarVar("yNorm", op.YNorm),
	"time":        scalarVar("time", op.Time),
	"t":           scalarVar("t", op.Time),
	"timeNorm":    scalarVar("timeNorm", op.TimeNorm),
	"centerAngle": scalarVar("centerAngle", op.CenterAngle),
	"angle":       scalarVar("angle", op.CenterAngle),
	"centerDist":  scalarVar("centerDist", op.CenterDist),
	"dist":        scalarVar("dist", op.CenterDist),
	"uv":          {Name: "uv", Type: types.Vec2, Sources: []op.LoadSource{op.XNorm, op.YNorm}},
	"coord":       {Name: "coord", Type: types.Vec2, Sources: []op.LoadSource{op.XInt, op.YInt}},
}

// LookupVariable returns the built-in variable with the given name.
func LookupVariable(name string) (BuiltinVar, bool) {
	v, ok := builtinVars[name]
	return v, ok
}

// IsReservedVariable reports whether name cannot be used for a local.
func IsReservedVariable(name string) bool {
	v, ok := builtinVars[name]
	return ok && v.Type.IsVector()
}

// BuiltinVariables returns the names of all built-in variables, sorted.
func BuiltinVariables() []string {
	return sortedKeys(builtinVars)
}

// BuiltinKind groups built-in functions by how their arguments are checked.
type BuiltinKind uint8

const (
	// ScalarBuiltin takes only scalars and returns Fixed. Called with vectors
	// it is expanded lane by lane.
	ScalarBuiltin BuiltinKind = iota
	// VectorBuiltin takes one vector (length, normalize).
	VectorBuiltin
	// PairBuiltin takes two vectors of the same width (dot, distance).
	PairBuiltin
	// CrossBuiltin takes two vec3 values.
	CrossBuiltin
	// MatrixBuiltin takes one mat3.
	MatrixBuiltin
	// NoiseBuiltin takes a vec3 and an optional octave count literal.
	NoiseBuiltin
	// TextureBuiltin takes a texture index literal and a vec2 coordinate.
	TextureBuiltin
)

// Builtin describes a built-in function.
type Builtin struct {
	Name    string
	Kind    BuiltinKind
	MinArgs int
	MaxArgs int
	// Ops holds the opcode per argument count for scalar builtins, or per
	// vector width (vec2, vec3, vec4) for vector builtins. Other kinds use
	// Ops[0].
	Ops []op.Code
	// Result is fixed for most kinds; VectorBuiltin results follow the
	// argument type when ResultFollowsArg is set.
	Result           types.Type
	ResultFollowsArg bool
}

func scalarFn(name string, args int, code op.Code) *Builtin {
	ops := make([]op.Code, args+1)
	ops[args] = code
	return &Builtin{Name: name, Kind: ScalarBuiltin, MinArgs: args, MaxArgs: args, Ops: ops, Result: types.Fixed}
}

var builtinFuncs = map[string]*Builtin{
	"sin":      scalarFn("sin", 1, op.SinFixed),
	"cos":      scalarFn("cos", 1, op.CosFixed),
	"tan":      scalarFn("tan", 1, op.TanFixed),
	"abs":      scalarFn("abs", 1, op.AbsFixed),
	"floor":    scalarFn("floor", 1, op.FloorFixed),
	"ceil":     scalarFn("ceil", 1, op.CeilFixed),
	"sqrt":     scalarFn("sqrt", 1, op.SqrtFixed),
	"sign":     scalarFn("sign", 1, op.SignFixed),
	"frac":     scalarFn("frac", 1, op.FractFixed),
	"fract":    scalarFn("fract", 1, op.FractFixed),
	"saturate": scalarFn("saturate", 1, op.SaturateFixed),
	"atan": {
		Name: "atan", Kind: ScalarBuiltin, MinArgs: 1, MaxArgs: 2,
		Ops:    []op.Code{op.Invalid, op.AtanFixed, op.Atan2Fixed},
		Result: types.Fixed,
	},
	"pow":        scalarFn("pow", 2, op.PowFixed),
	"mod":        scalarFn("mod", 2, op.ModFixed),
	"min":        scalarFn("min", 2, op.MinFixed),
	"max":        scalarFn("max", 2, op.MaxFixed),
	"step":       scalarFn("step", 2, op.StepFixed),
	"clamp":      scalarFn("clamp", 3, op.ClampFixed),
	"lerp":       scalarFn("lerp", 3, op.LerpFixed),
	"mix":        scalarFn("mix", 3, op.LerpFixed),
	"smoothstep": scalarFn("smoothstep", 3, op.SmoothstepFixed),

	"length": {
		Name: "length", Kind: VectorBuiltin, MinArgs: 1, MaxArgs: 1,
		Ops:    []op.Code{op.Length2, op.Length3, op.Length4},
		Result: types.Fixed,
	},
	"normalize": {
		Name: "normalize", Kind: VectorBuiltin, MinArgs: 1, MaxArgs: 1,
		Ops:              []op.Code{op.Normalize2, op.Normalize3, op.Normalize4},
		ResultFollowsArg: true,
	},
	"dot": {
		Name: "dot", Kind: PairBuiltin, MinArgs: 2, MaxArgs: 2,
		Ops:    []op.Code{op.Dot2, op.Dot3, op.Dot4},
		Result: types.Fixed,
	},
	"distance": {
		Name: "distance", Kind: PairBuiltin, MinArgs: 2, MaxArgs: 2,
		Ops:    []op.Code{op.Distance2, op.Distance3, op.Distance4},
		Result: types.Fixed,
	},
	"cross": {
		Name: "cross", Kind: CrossBuiltin, MinArgs: 2, MaxArgs: 2,
		Ops: []op.Code{op.Cross3}, Result: types.Vec3,
	},
	"transpose": {
		Name: "transpose", Kind: MatrixBuiltin, MinArgs: 1, MaxArgs: 1,
		Ops: []op.Code{op.TransposeMat3}, Result: types.Mat3,
	},
	"inverse": {
		Name: "inverse", Kind: MatrixBuiltin, MinArgs: 1, MaxArgs: 1,
		Ops: []op.Code{op.InverseMat3}, Result: types.Mat3,
	},
	"determinant": {
		Name: "determinant", Kind: MatrixBuiltin, MinArgs: 1, MaxArgs: 1,
		Ops: []op.Code{op.DeterminantMat3}, Result: types.Fixed,
	},
	"perlin3": {
		Name: "perlin3", Kind: NoiseBuiltin, MinArgs: 1, MaxArgs: 2,
		Ops: []op.Code{op.Perlin3}, Result: types.Fixed,
	},
	"texture": {
		Name: "texture", Kind: TextureBuiltin, MinArgs: 2, MaxArgs: 2,
		Ops: []op.Code{op.TextureSampleRGBA}, Result: types.Vec4,
	},
	"textureR": {
		Name: "textureR", Kind: TextureBuiltin, MinArgs: 2, MaxArgs: 2,
		Ops: []op.Code{op.TextureSampleR}, Result: types.Fixed,
	},
}

// LookupFunction returns the built-in function with the given name.
func LookupFunction(name string) (*Builtin, bool) {
	b, ok := builtinFuncs[name]
	return b, ok
}

// BuiltinFunctions returns the names of all built-in functions, sorted.
func BuiltinFunctions() []string {
	return sortedKeys(builtinFuncs)
}

// Opcode returns the opcode implementing a call with argc arguments whose
// first argument has type arg.
func (b *Builtin) Opcode(argc int, arg types.Type) op.Code {
	switch b.Kind {
	case ScalarBuiltin:
		if argc < len(b.Ops) {
			return b.Ops[argc]
		}
		return op.Invalid
	case VectorBuiltin, PairBuiltin:
		i := arg.Size() - 2
		if i < 0 || i >= len(b.Ops) {
			return op.Invalid
		}
		return b.Ops[i]
	}
	return b.Ops[0]
}

// MaxOctaves is the largest accepted octave count.
const MaxOctaves = 8

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
