package material

import (
	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// NewCheckerboardTexture creates a procedural checkerboard pattern texture
func NewCheckerboardTexture(width, height, checkSize int, color1, color2 core.Color) *ImageTexture {
	pixels := make([]uint8, width*height*3)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// Alternate colors based on check position
			color := color2
			if (x/checkSize+y/checkSize)%2 == 0 {
				color = color1
			}
			putTexel(pixels, y*width+x, color)
		}
	}

	return NewImageTexture(width, height, pixels)
}

// NewUVDebugTexture creates a texture showing UV coordinates as colors.
// U maps to the red channel, V to green.
func NewUVDebugTexture(width, height int) *ImageTexture {
	pixels := make([]uint8, width*height*3)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			u := float64(x) / float64(width-1)
			v := float64(y) / float64(height-1)
			putTexel(pixels, y*width+x, core.NewColor(u, v, 0))
		}
	}

	return NewImageTexture(width, height, pixels)
}

// NewGradientTexture creates a vertical gradient from color1 (top) to color2 (bottom)
func NewGradientTexture(width, height int, color1, color2 core.Color) *ImageTexture {
	pixels := make([]uint8, width*height*3)

	for y := 0; y < height; y++ {
		t := float64(y) / float64(height-1)
		color := color1.Multiply(1.0 - t).Add(color2.Multiply(t))

		for x := 0; x < width; x++ {
			putTexel(pixels, y*width+x, color)
		}
	}

	return NewImageTexture(width, height, pixels)
}

func putTexel(pixels []uint8, index int, c core.Color) {
	r, g, b := c.Quantize()
	pixels[index*3] = r
	pixels[index*3+1] = g
	pixels[index*3+2] = b
}
