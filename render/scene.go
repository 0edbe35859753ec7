package render

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"github.com/lightplayer/lps/bytecode"
	"github.com/lightplayer/lps/fixed"
)

// Scene describes an animation: a script, a canvas and a frame range.
//
//	script   = "plasma.lps"
//	width    = 64
//	height   = 32
//	frames   = 120
//	fps      = 30
//	scale    = 8
//	output   = "out/plasma-%03d.png"
//	textures = ["noise.png"]
type Scene struct {
	Name        string   `toml:"name"`
	Script      string   `toml:"script"`
	Source      string   `toml:"source"`
	Width       int      `toml:"width"`
	Height      int      `toml:"height"`
	Frames      int      `toml:"frames"`
	FPS         float64  `toml:"fps"`
	Start       float64  `toml:"start"`
	Scale       int      `toml:"scale"`
	Output      string   `toml:"output"`
	Textures    []string `toml:"textures"`
	TextureSize int      `toml:"texture_size"`

	// Dir resolves the relative paths in the scene. LoadScene sets it to
	// the directory of the scene file.
	Dir string `toml:"-"`
}

const (
	DefaultSize   = 32
	DefaultFPS    = 30
	DefaultOutput = "frame-%03d.png"
)

// LoadScene reads a TOML scene file.
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := ParseScene(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Dir = filepath.Dir(path)
	return s, nil
}

// ParseScene decodes a TOML scene and applies defaults. Unknown keys are an
// error.
func ParseScene(data string) (*Scene, error) {
	var s Scene
	meta, err := toml.Decode(data, &s)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("scene: unknown keys: %s", strings.Join(keys, ", "))
	}
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scene) applyDefaults() {
	if s.Width == 0 {
		s.Width = DefaultSize
	}
	if s.Height == 0 {
		s.Height = DefaultSize
	}
	if s.Frames == 0 {
		s.Frames = 1
	}
	if s.FPS == 0 {
		s.FPS = DefaultFPS
	}
	if s.Scale == 0 {
		s.Scale = 1
	}
	if s.Output == "" {
		s.Output = DefaultOutput
	}
}

// Validate checks the scene for values that cannot be rendered.
func (s *Scene) Validate() error {
	switch {
	case s.Script == "" && s.Source == "":
		return fmt.Errorf("scene: one of script or source is required")
	case s.Script != "" && s.Source != "":
		return fmt.Errorf("scene: script and source are mutually exclusive")
	case s.Width < 0 || s.Height < 0:
		return fmt.Errorf("scene: invalid size %dx%d", s.Width, s.Height)
	case s.Frames < 0:
		return fmt.Errorf("scene: invalid frame count %d", s.Frames)
	case s.FPS < 0:
		return fmt.Errorf("scene: invalid fps %g", s.FPS)
	case s.Scale < 0:
		return fmt.Errorf("scene: invalid scale %d", s.Scale)
	}
	return nil
}

func (s *Scene) path(p string) string {
	if filepath.IsAbs(p) || s.Dir == "" {
		return p
	}
	return filepath.Join(s.Dir, p)
}

// ScriptSource returns the scene's script text.
func (s *Scene) ScriptSource() (string, error) {
	if s.Source != "" {
		return s.Source, nil
	}
	data, err := os.ReadFile(s.path(s.Script))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ScriptName names the script for error messages.
func (s *Scene) ScriptName() string {
	if s.Script != "" {
		return s.Script
	}
	if s.Name != "" {
		return s.Name
	}
	return "scene"
}

// Time returns the animation time of frame i.
func (s *Scene) Time(i int) fixed.Fixed {
	return fixed.FromFloat(s.Start + float64(i)/s.FPS)
}

// OutputPath returns the file name for frame i.
func (s *Scene) OutputPath(i int) string {
	name := s.Output
	if strings.Contains(name, "%") {
		name = fmt.Sprintf(name, i)
	}
	return s.path(name)
}

// Sampler loads the scene's textures. It returns nil when there are none.
func (s *Scene) Sampler() (*ImageSampler, error) {
	if len(s.Textures) == 0 {
		return nil, nil
	}
	paths := make([]string, len(s.Textures))
	for i, t := range s.Textures {
		paths[i] = s.path(t)
	}
	return LoadTextures(paths, s.TextureSize)
}

// FrameFunc receives each rendered frame. The image is reused between
// calls.
type FrameFunc func(frame int, t fixed.Fixed, img *image.RGBA) error

// Frames renders every frame of the scene with p and passes it to fn. The
// context is checked between frames.
func Frames(ctx context.Context, p *bytecode.Program, scene *Scene, fn FrameFunc, options ...Option) error {
	sampler, err := scene.Sampler()
	if err != nil {
		return err
	}
	if sampler != nil {
		options = append([]Option{WithSampler(sampler)}, options...)
	}
	r, err := NewRenderer(p, scene.Width, scene.Height, options...)
	if err != nil {
		return err
	}
	img := image.NewRGBA(r.Bounds())
	for i := 0; i < scene.Frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		t := scene.Time(i)
		if err := r.Draw(img, t); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if err := fn(i, t, img); err != nil {
			return err
		}
	}
	return nil
}

// SavePNG writes img to path, enlarged by scale with nearest-neighbor
// sampling so pixels stay sharp.
func SavePNG(path string, img image.Image, scale int) error {
	if scale > 1 {
		b := img.Bounds()
		img = transform.Resize(img, b.Dx()*scale, b.Dy()*scale, transform.NearestNeighbor)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return imgio.Save(path, img, imgio.PNGEncoder())
}
