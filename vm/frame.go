package vm

import "github.com/lightplayer/lps/fixed"

// frame records the caller of an active user function call.
type frame struct {
	returnPC int // instruction following the Call
	fn       int // index of the calling function
	base     int // first local slot of the caller
}

// Sampler supplies texture lookups for the texture built-ins. Coordinates
// are normalized; implementations choose their own wrapping. ok is false
// for an unknown texture index.
type Sampler interface {
	Sample(texture int, u, v fixed.Fixed) (rgba [4]fixed.Fixed, ok bool)
}

// SamplerFunc adapts a function to the Sampler interface.
type SamplerFunc func(texture int, u, v fixed.Fixed) ([4]fixed.Fixed, bool)

func (f SamplerFunc) Sample(texture int, u, v fixed.Fixed) ([4]fixed.Fixed, bool) {
	return f(texture, u, v)
}
