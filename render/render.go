// Package render runs LPS programs over pixel grids and turns the results
// into images.
//
// Every entry point builds one VM and reuses it for every pixel of a frame.
// Pixels are evaluated at their centers, so pixel (px, py) of a w×h canvas
// sees x = (px+0.5)/w and y = (py+0.5)/h.
package render

import (
	"fmt"
	"image"

	"github.com/lightplayer/lps/bytecode"
	"github.com/lightplayer/lps/fixed"
	"github.com/lightplayer/lps/types"
	"github.com/lightplayer/lps/vm"
)

// Option configures rendering.
type Option func(*config)

type config struct {
	vmOptions []vm.Option
}

// WithSampler provides textures to the program.
func WithSampler(sampler vm.Sampler) Option {
	return func(c *config) {
		c.vmOptions = append(c.vmOptions, vm.WithSampler(sampler))
	}
}

// WithLimits overrides the VM limits.
func WithLimits(limits vm.Limits) Option {
	return func(c *config) {
		c.vmOptions = append(c.vmOptions, vm.WithLimits(limits))
	}
}

// WithVMOptions passes options straight to the VM.
func WithVMOptions(options ...vm.Option) Option {
	return func(c *config) {
		c.vmOptions = append(c.vmOptions, options...)
	}
}

// PixelError reports the pixel whose evaluation failed.
type PixelError struct {
	X, Y int
	Err  error
}

func (e *PixelError) Error() string {
	return fmt.Sprintf("pixel (%d, %d): %v", e.X, e.Y, e.Err)
}

func (e *PixelError) Unwrap() error {
	return e.Err
}

func newVM(p *bytecode.Program, width, height int, options []Option) (*vm.VirtualMachine, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("render: invalid size %dx%d", width, height)
	}
	var cfg config
	for _, opt := range options {
		opt(&cfg)
	}
	return vm.New(p, append(cfg.vmOptions, vm.WithSize(width, height))...)
}

func checkLen(n, width, height int) error {
	if n < width*height {
		return fmt.Errorf("render: output holds %d pixels, need %d", n, width*height)
	}
	return nil
}

// Scalar evaluates a scalar program for every pixel, row by row, into out.
func Scalar(p *bytecode.Program, out []fixed.Fixed, width, height int, t fixed.Fixed, options ...Option) error {
	if err := checkLen(len(out), width, height); err != nil {
		return err
	}
	machine, err := newVM(p, width, height, options)
	if err != nil {
		return err
	}
	for py := 0; py < height; py++ {
		for px := 0; px < width; px++ {
			v, err := machine.RunScalarPixel(px, py, t)
			if err != nil {
				return &PixelError{X: px, Y: py, Err: err}
			}
			out[py*width+px] = v
		}
	}
	return nil
}

// Vec3 evaluates a vec3 program for every pixel into out.
func Vec3(p *bytecode.Program, out [][3]fixed.Fixed, width, height int, t fixed.Fixed, options ...Option) error {
	if err := checkLen(len(out), width, height); err != nil {
		return err
	}
	machine, err := newVM(p, width, height, options)
	if err != nil {
		return err
	}
	for py := 0; py < height; py++ {
		for px := 0; px < width; px++ {
			v, err := machine.RunVec3Pixel(px, py, t)
			if err != nil {
				return &PixelError{X: px, Y: py, Err: err}
			}
			out[py*width+px] = v
		}
	}
	return nil
}

// Vec4 evaluates a vec4 program for every pixel into out.
func Vec4(p *bytecode.Program, out [][4]fixed.Fixed, width, height int, t fixed.Fixed, options ...Option) error {
	if err := checkLen(len(out), width, height); err != nil {
		return err
	}
	machine, err := newVM(p, width, height, options)
	if err != nil {
		return err
	}
	for py := 0; py < height; py++ {
		for px := 0; px < width; px++ {
			v, err := machine.RunVec4Pixel(px, py, t)
			if err != nil {
				return &PixelError{X: px, Y: py, Err: err}
			}
			out[py*width+px] = v
		}
	}
	return nil
}

// Renderer draws successive frames of one program with a single VM.
type Renderer struct {
	machine *vm.VirtualMachine
	width   int
	height  int
	result  types.Type
}

// NewRenderer prepares p for rendering at the given size. The program must
// produce a scalar, vec2, vec3 or vec4.
func NewRenderer(p *bytecode.Program, width, height int, options ...Option) (*Renderer, error) {
	result := p.ResultType()
	switch result {
	case types.Fixed, types.Bool, types.Int32, types.Vec2, types.Vec3, types.Vec4:
	default:
		return nil, fmt.Errorf("render: cannot draw a %s result", result)
	}
	machine, err := newVM(p, width, height, options)
	if err != nil {
		return nil, err
	}
	return &Renderer{machine: machine, width: width, height: height, result: result}, nil
}

// Bounds returns the canvas rectangle.
func (r *Renderer) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.width, r.height)
}

// Frame draws the frame at time t into a new image.
func (r *Renderer) Frame(t fixed.Fixed) (*image.RGBA, error) {
	img := image.NewRGBA(r.Bounds())
	if err := r.Draw(img, t); err != nil {
		return nil, err
	}
	return img, nil
}

// Draw renders the frame at time t into img, which must match Bounds.
// Scalars become gray levels, vec2 fills red and green, vec3 is opaque RGB
// and vec4 is RGBA. Channels are clamped to 0..1.
func (r *Renderer) Draw(img *image.RGBA, t fixed.Fixed) error {
	if img.Bounds() != r.Bounds() {
		return fmt.Errorf("render: image bounds %v, want %v", img.Bounds(), r.Bounds())
	}
	for py := 0; py < r.height; py++ {
		for px := 0; px < r.width; px++ {
			out, err := r.machine.RunPixel(px, py, t)
			if err != nil {
				return &PixelError{X: px, Y: py, Err: err}
			}
			i := img.PixOffset(px, py)
			pix := img.Pix[i : i+4 : i+4]
			switch len(out) {
			case 1:
				v := r.scalar(out[0])
				pix[0], pix[1], pix[2], pix[3] = v, v, v, 0xff
			case 2:
				pix[0], pix[1], pix[2], pix[3] = channel(out[0]), channel(out[1]), 0, 0xff
			case 3:
				pix[0], pix[1], pix[2], pix[3] = channel(out[0]), channel(out[1]), channel(out[2]), 0xff
			case 4:
				pix[0], pix[1], pix[2], pix[3] = channel(out[0]), channel(out[1]), channel(out[2]), channel(out[3])
			default:
				return &PixelError{X: px, Y: py, Err: fmt.Errorf("result has %d words", len(out))}
			}
		}
	}
	return nil
}

func (r *Renderer) scalar(v fixed.Fixed) uint8 {
	if r.result == types.Int32 {
		return channel(fixed.FromInt(int32(v)))
	}
	return channel(v)
}

// Image renders a single frame of p.
func Image(p *bytecode.Program, width, height int, t fixed.Fixed, options ...Option) (*image.RGBA, error) {
	r, err := NewRenderer(p, width, height, options...)
	if err != nil {
		return nil, err
	}
	return r.Frame(t)
}

// channel maps 0..1 to 0..255.
func channel(v fixed.Fixed) uint8 {
	v = fixed.Saturate(v)
	return uint8((int64(v)*255 + int64(fixed.Half)) >> fixed.Shift)
}
