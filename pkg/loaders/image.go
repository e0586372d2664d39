package loaders

import (
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// LoadTexture loads a PPM, PNG or JPEG file as a texture, choosing the
// decoder from the file extension
func LoadTexture(filename string) (*material.ImageTexture, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".ppm":
		return LoadPPM(filename)
	case ".png", ".jpg", ".jpeg":
		return LoadImage(filename)
	default:
		return nil, fmt.Errorf("texture %s: %w", filename, ErrUnsupportedFormat)
	}
}

// LoadImage loads a PNG or JPEG image as a texture
func LoadImage(filename string) (*material.ImageTexture, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	// Decode image (auto-detects PNG/JPEG from file header)
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return TextureFromImage(img), nil
}

// TextureFromImage converts any image to 8-bit RGB texels, dropping alpha
func TextureFromImage(img image.Image) *material.ImageTexture {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	pixels := make([]uint8, width*height*3)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// RGBA returns uint32 in [0, 65535]
			i := (y*width + x) * 3
			pixels[i] = uint8(r >> 8)
			pixels[i+1] = uint8(g >> 8)
			pixels[i+2] = uint8(b >> 8)
		}
	}

	return material.NewImageTexture(width, height, pixels)
}
