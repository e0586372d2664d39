package material

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Texture is a 2D grid of 8-bit RGB texels sampled without filtering
type Texture interface {
	Width() int
	Height() int
	// Texel returns the channels at column x, row y. Row 0 is the top of the image.
	Texel(x, y int) [3]uint8
}

// ImageTexture stores texels row-major: Pixels[(y*Width + x)*3 + channel]
type ImageTexture struct {
	width  int
	height int
	pixels []uint8
}

// NewImageTexture creates a new image texture. pixels must hold width*height*3 bytes.
func NewImageTexture(width, height int, pixels []uint8) *ImageTexture {
	return &ImageTexture{
		width:  width,
		height: height,
		pixels: pixels,
	}
}

func (t *ImageTexture) Width() int  { return t.width }
func (t *ImageTexture) Height() int { return t.height }

// Texel returns the texel at (x, y), clamping the coordinates into the image
func (t *ImageTexture) Texel(x, y int) [3]uint8 {
	x = max(0, min(t.width-1, x))
	y = max(0, min(t.height-1, y))
	i := (y*t.width + x) * 3
	return [3]uint8{t.pixels[i], t.pixels[i+1], t.pixels[i+2]}
}

// Sample looks up the nearest texel for uv. Both coordinates are clamped to
// [0, 1]; u runs left to right and v top to bottom.
func Sample(t Texture, uv core.Vec2) core.Color {
	w, h := t.Width(), t.Height()
	if w <= 0 || h <= 0 {
		return core.Black
	}

	u := clampUnit(uv.X)
	v := clampUnit(uv.Y)

	x := int(math.Round(u * float64(w-1)))
	y := int(math.Round(v * float64(h-1)))
	x = max(0, min(w-1, x))
	y = max(0, min(h-1, y))

	texel := t.Texel(x, y)
	return core.NewColor(
		float64(texel[0])/255.0,
		float64(texel[1])/255.0,
		float64(texel[2])/255.0,
	)
}

func clampUnit(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
