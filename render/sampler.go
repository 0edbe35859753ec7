package render

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"github.com/lightplayer/lps/fixed"
	"github.com/lightplayer/lps/vm"
)

// ImageSampler serves texture lookups from images. Coordinates wrap around
// and are resolved to the nearest texel. Texture i is the i-th image.
type ImageSampler struct {
	textures []*image.RGBA
}

var _ vm.Sampler = (*ImageSampler)(nil)

// NewImageSampler creates a sampler over the given images.
func NewImageSampler(images ...image.Image) *ImageSampler {
	s := &ImageSampler{textures: make([]*image.RGBA, len(images))}
	for i, img := range images {
		if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
			s.textures[i] = rgba
			continue
		}
		s.textures[i] = clone.AsRGBA(img)
	}
	return s
}

// LoadTextures opens the image files at paths. When size is positive every
// texture is resized to size×size.
func LoadTextures(paths []string, size int) (*ImageSampler, error) {
	images := make([]image.Image, 0, len(paths))
	for _, path := range paths {
		img, err := imgio.Open(path)
		if err != nil {
			return nil, fmt.Errorf("render: texture %s: %w", path, err)
		}
		if size > 0 {
			img = transform.Resize(img, size, size, transform.Linear)
		}
		images = append(images, img)
	}
	return NewImageSampler(images...), nil
}

// Len returns the number of textures.
func (s *ImageSampler) Len() int {
	return len(s.textures)
}

// Sample returns the texel under (u, v) as normalized RGBA.
func (s *ImageSampler) Sample(texture int, u, v fixed.Fixed) ([4]fixed.Fixed, bool) {
	if texture < 0 || texture >= len(s.textures) {
		return [4]fixed.Fixed{}, false
	}
	img := s.textures[texture]
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return [4]fixed.Fixed{}, true
	}
	x := texel(u, w)
	y := texel(v, h)
	i := img.PixOffset(img.Rect.Min.X+x, img.Rect.Min.Y+y)
	pix := img.Pix[i : i+4 : i+4]
	return [4]fixed.Fixed{unit(pix[0]), unit(pix[1]), unit(pix[2]), unit(pix[3])}, true
}

// texel wraps c into 0..1 and scales it to an index below n.
func texel(c fixed.Fixed, n int) int {
	c = fixed.Mod(c, fixed.One)
	if c < 0 {
		c += fixed.One
	}
	i := int(fixed.Mul(c, fixed.FromInt(int32(n))).Int())
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// unit maps 0..255 to 0..1 with 255 landing exactly on One.
func unit(b uint8) fixed.Fixed {
	return fixed.Div(fixed.FromInt(int32(b)), fixed.FromInt(255))
}
