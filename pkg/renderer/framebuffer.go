package renderer

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Output formats understood by Framebuffer.Save
const (
	FormatPPM = "ppm"
	FormatPNG = "png"
)

// Framebuffer holds the linear color of every pixel, row-major from the
// upper-left corner
type Framebuffer struct {
	Width, Height int
	Pixels        []core.Color
}

// NewFramebuffer creates a black framebuffer
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]core.Color, width*height),
	}
}

// Bounds returns the pixel rectangle covered by the framebuffer
func (fb *Framebuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, fb.Width, fb.Height)
}

// Set stores the color at (x, y). Out of range writes are ignored.
func (fb *Framebuffer) Set(x, y int, c core.Color) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// At returns the color at (x, y), black outside the framebuffer
func (fb *Framebuffer) At(x, y int) core.Color {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return core.Black
	}
	return fb.Pixels[y*fb.Width+x]
}

// RGBA returns the quantized color at (x, y)
func (fb *Framebuffer) RGBA(x, y int) color.RGBA {
	r, g, b := fb.At(x, y).Quantize()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// ToRGBA converts the framebuffer to an 8-bit image
func (fb *Framebuffer) ToRGBA() *image.RGBA {
	img := image.NewRGBA(fb.Bounds())
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			img.SetRGBA(x, y, fb.RGBA(x, y))
		}
	}
	return img
}

// Resize returns a nearest-neighbor resampled copy
func (fb *Framebuffer) Resize(width, height int) *Framebuffer {
	out := NewFramebuffer(width, height)
	if fb.Width == 0 || fb.Height == 0 {
		return out
	}
	for y := 0; y < height; y++ {
		sy := y * fb.Height / height
		for x := 0; x < width; x++ {
			out.Pixels[y*width+x] = fb.At(x*fb.Width/width, sy)
		}
	}
	return out
}

// WritePPM writes an ASCII (P3) PPM with a maximum value of 255
func (fb *Framebuffer) WritePPM(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "P3\n%d %d\n255\n", fb.Width, fb.Height)
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			r, g, b := fb.At(x, y).Quantize()
			fmt.Fprintf(bw, "%d %d %d\n", r, g, b)
		}
	}
	return bw.Flush()
}

// WritePNG encodes the framebuffer as PNG
func (fb *Framebuffer) WritePNG(w io.Writer) error {
	return png.Encode(w, fb.ToRGBA())
}

// Save writes the framebuffer to path. An empty format is inferred from the
// file extension.
func (fb *Framebuffer) Save(path, format string) error {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}

	var write func(io.Writer) error
	switch format {
	case FormatPPM:
		write = fb.WritePPM
	case FormatPNG:
		write = fb.WritePNG
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", format, err)
	}
	return file.Close()
}
