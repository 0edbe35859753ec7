package render

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/lightplayer/lps/bytecode"
	"github.com/lightplayer/lps/compiler"
	"github.com/lightplayer/lps/fixed"
	"github.com/lightplayer/lps/parser"
	"github.com/lightplayer/lps/typecheck"
	"github.com/lightplayer/lps/vm"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) *bytecode.Program {
	t.Helper()
	pool, prog, err := parser.Parse(context.Background(), src)
	require.NoError(t, err)
	res, err := typecheck.CheckProgram(pool, prog)
	require.NoError(t, err)
	return compiler.GenerateProgram(pool, prog, compiler.Analyze(pool, prog, res))
}

func TestScalar(t *testing.T) {
	out := make([]fixed.Fixed, 8)
	require.NoError(t, Scalar(compile(t, "return x + y;"), out, 4, 2, 0))
	for py := 0; py < 2; py++ {
		for px := 0; px < 4; px++ {
			want := (float64(px)+0.5)/4 + (float64(py)+0.5)/2
			require.InDelta(t, want, out[py*4+px].Float(), 0.001)
		}
	}

	require.Error(t, Scalar(compile(t, "return x;"), out[:3], 4, 2, 0))
	require.Error(t, Scalar(compile(t, "return x;"), out, 0, 2, 0))
}

func TestVectors(t *testing.T) {
	out3 := make([][3]fixed.Fixed, 4)
	require.NoError(t, Vec3(compile(t, "return vec3(uv, time);"), out3, 2, 2, fixed.One))
	require.Equal(t, [3]fixed.Fixed{fixed.FromFloat(0.75), fixed.FromFloat(0.25), fixed.One}, out3[1])

	out4 := make([][4]fixed.Fixed, 4)
	require.NoError(t, Vec4(compile(t, "return vec4(coord, 0.0, 1.0);"), out4, 2, 2, 0))
	require.Equal(t, [4]fixed.Fixed{fixed.FromFloat(0.5), fixed.FromFloat(1.5), 0, fixed.One}, out4[2])

	err := Vec4(compile(t, "return vec3(1.0);"), out4, 2, 2, 0)
	var rerr *vm.RuntimeError
	require.True(t, errors.As(err, &rerr))
	require.Equal(t, vm.TypeMismatch, rerr.Kind)
}

func TestPixelError(t *testing.T) {
	out := make([]fixed.Fixed, 4)
	err := Scalar(compile(t, "float v = 0.0; if (x > 0.5 && y > 0.5) { v = textureR(0, uv); } return v;"), out, 2, 2, 0)
	var perr *PixelError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, 1, perr.X)
	require.Equal(t, 1, perr.Y)
	require.Contains(t, err.Error(), "pixel (1, 1)")

	var rerr *vm.RuntimeError
	require.True(t, errors.As(err, &rerr))
	require.Equal(t, vm.InvalidTextureIndex, rerr.Kind)
}

func TestImage(t *testing.T) {
	img, err := Image(compile(t, "return x;"), 2, 1, 0)
	require.NoError(t, err)
	require.Equal(t, color.RGBA{64, 64, 64, 255}, img.RGBAAt(0, 0))
	require.Equal(t, color.RGBA{191, 191, 191, 255}, img.RGBAAt(1, 0))

	img, err = Image(compile(t, "return vec3(1.0, -1.0, 0.5);"), 1, 1, 0)
	require.NoError(t, err)
	require.Equal(t, color.RGBA{255, 0, 128, 255}, img.RGBAAt(0, 0))

	img, err = Image(compile(t, "return vec2(2.0, 0.0);"), 1, 1, 0)
	require.NoError(t, err)
	require.Equal(t, color.RGBA{255, 0, 0, 255}, img.RGBAAt(0, 0))

	img, err = Image(compile(t, "return vec4(0.0, 0.0, 1.0, 0.0);"), 1, 1, 0)
	require.NoError(t, err)
	require.Equal(t, color.RGBA{0, 0, 255, 0}, img.RGBAAt(0, 0))

	img, err = Image(compile(t, "return 1;"), 1, 1, 0)
	require.NoError(t, err)
	require.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(0, 0))

	_, err = Image(compile(t, "return mat3(1.0, 0.0, 0.0, 0.0, 1.0, 0.0, 0.0, 0.0, 1.0);"), 1, 1, 0)
	require.Error(t, err)
}

func TestRendererReuse(t *testing.T) {
	r, err := NewRenderer(compile(t, "return vec3(timeNorm);"), 2, 2)
	require.NoError(t, err)
	img := image.NewRGBA(r.Bounds())
	require.NoError(t, r.Draw(img, fixed.Half))
	require.Equal(t, color.RGBA{128, 128, 128, 255}, img.RGBAAt(1, 1))
	require.NoError(t, r.Draw(img, 0))
	require.Equal(t, color.RGBA{0, 0, 0, 255}, img.RGBAAt(1, 1))

	require.Error(t, r.Draw(image.NewRGBA(image.Rect(0, 0, 3, 3)), 0))
}

func texture() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255})
	img.SetRGBA(1, 0, color.RGBA{0, 255, 0, 255})
	img.SetRGBA(0, 1, color.RGBA{0, 0, 255, 255})
	img.SetRGBA(1, 1, color.RGBA{255, 255, 255, 128})
	return img
}

func TestImageSampler(t *testing.T) {
	s := NewImageSampler(texture())
	require.Equal(t, 1, s.Len())
	q := fixed.FromFloat(0.25)
	tq := fixed.FromFloat(0.75)

	rgba, ok := s.Sample(0, q, q)
	require.True(t, ok)
	require.Equal(t, [4]fixed.Fixed{fixed.One, 0, 0, fixed.One}, rgba)

	rgba, ok = s.Sample(0, tq, q)
	require.True(t, ok)
	require.Equal(t, [4]fixed.Fixed{0, fixed.One, 0, fixed.One}, rgba)

	// Coordinates wrap in both directions.
	wrapped, ok := s.Sample(0, fixed.FromFloat(1.25), fixed.FromFloat(-0.25))
	require.True(t, ok)
	direct, _ := s.Sample(0, q, tq)
	require.Equal(t, direct, wrapped)

	_, ok = s.Sample(1, q, q)
	require.False(t, ok)
	_, ok = s.Sample(-1, q, q)
	require.False(t, ok)
}

func TestTextureRoundTrip(t *testing.T) {
	tex := texture()
	img, err := Image(compile(t, "return texture(0, uv);"), 2, 2, 0, WithSampler(NewImageSampler(tex)))
	require.NoError(t, err)
	require.Equal(t, tex.Pix, img.Pix)
}

func TestSavePNGAndLoadTextures(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "tex.png")
	require.NoError(t, SavePNG(path, texture(), 3))

	img, err := imgio.Open(path)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 6, 6), img.Bounds())

	s, err := LoadTextures([]string{path}, 0)
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())
	rgba, ok := s.Sample(0, fixed.FromFloat(0.1), fixed.FromFloat(0.1))
	require.True(t, ok)
	require.Equal(t, [4]fixed.Fixed{fixed.One, 0, 0, fixed.One}, rgba)

	s, err = LoadTextures([]string{path}, 4)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 4, 4), s.textures[0].Rect)

	_, err = LoadTextures([]string{filepath.Join(dir, "missing.png")}, 0)
	require.Error(t, err)
}

func TestParseScene(t *testing.T) {
	s, err := ParseScene(`
source = "return vec3(uv, timeNorm);"
width = 8
frames = 4
fps = 2.0
start = 1.0
`)
	require.NoError(t, err)
	require.Equal(t, 8, s.Width)
	require.Equal(t, DefaultSize, s.Height)
	require.Equal(t, 1, s.Scale)
	require.Equal(t, DefaultOutput, s.Output)
	require.Equal(t, fixed.FromFloat(2.5), s.Time(3))
	require.Equal(t, "frame-007.png", s.OutputPath(7))
	require.Equal(t, "scene", s.ScriptName())

	src, err := s.ScriptSource()
	require.NoError(t, err)
	require.Equal(t, "return vec3(uv, timeNorm);", src)

	sampler, err := s.Sampler()
	require.NoError(t, err)
	require.Nil(t, sampler)

	tests := []struct {
		name  string
		input string
	}{
		{"unknown key", "source = \"return x;\"\ncolour = 3"},
		{"no script", "width = 4"},
		{"both scripts", "source = \"return x;\"\nscript = \"a.lps\""},
		{"bad size", "source = \"return x;\"\nwidth = -2"},
		{"bad toml", "source = "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScene(tt.input)
			require.Error(t, err)
		})
	}
}

func TestLoadScene(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "glow.lps"), []byte("return vec3(dist);"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "glow.toml"), []byte(`
name = "glow"
script = "glow.lps"
width = 4
height = 4
output = "out/glow-%02d.png"
`), 0o644))

	s, err := LoadScene(filepath.Join(dir, "glow.toml"))
	require.NoError(t, err)
	require.Equal(t, dir, s.Dir)
	require.Equal(t, "glow.lps", s.ScriptName())
	require.Equal(t, filepath.Join(dir, "out", "glow-03.png"), s.OutputPath(3))

	src, err := s.ScriptSource()
	require.NoError(t, err)
	require.Equal(t, "return vec3(dist);", src)

	_, err = LoadScene(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
}

func TestFrames(t *testing.T) {
	scene := &Scene{Source: "return vec3(timeNorm);", Width: 2, Height: 2, Frames: 3, FPS: 4}
	p := compile(t, scene.Source)

	var levels []uint8
	var times []fixed.Fixed
	err := Frames(context.Background(), p, scene, func(frame int, t fixed.Fixed, img *image.RGBA) error {
		levels = append(levels, img.RGBAAt(0, 0).R)
		times = append(times, t)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []uint8{0, 64, 128}, levels)
	require.Equal(t, []fixed.Fixed{0, fixed.FromFloat(0.25), fixed.Half}, times)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err = Frames(ctx, p, scene, func(frame int, t fixed.Fixed, img *image.RGBA) error {
		calls++
		cancel()
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)

	stop := errors.New("stop")
	err = Frames(context.Background(), p, scene, func(int, fixed.Fixed, *image.RGBA) error { return stop })
	require.ErrorIs(t, err, stop)
}
