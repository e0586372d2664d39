package core

import colorful "github.com/lucasb-eyer/go-colorful"

// Color is a linear RGB triple. Every arithmetic operation clamps each
// channel to [0, 1], so a Color produced by these methods is always in range.
type Color struct {
	R, G, B float64
}

// Black is the zero color
var Black = Color{}

// NewColor creates a color, clamping each channel into [0, 1]
func NewColor(r, g, b float64) Color {
	return Color{R: clamp01(r), G: clamp01(g), B: clamp01(b)}
}

// Add returns the clamped channel-wise sum
func (c Color) Add(other Color) Color {
	return NewColor(c.R+other.R, c.G+other.G, c.B+other.B)
}

// Multiply returns the clamped color scaled by a scalar
func (c Color) Multiply(scalar float64) Color {
	return NewColor(c.R*scalar, c.G*scalar, c.B*scalar)
}

// MultiplyColor returns the clamped channel-wise product
func (c Color) MultiplyColor(other Color) Color {
	return NewColor(c.R*other.R, c.G*other.G, c.B*other.B)
}

// IsBlack reports whether every channel is zero
func (c Color) IsBlack() bool {
	return c.R == 0 && c.G == 0 && c.B == 0
}

// Quantize maps each channel from [0, 1] to [0, 255] by truncation
func (c Color) Quantize() (r, g, b uint8) {
	c = NewColor(c.R, c.G, c.B)
	return uint8(c.R * 255), uint8(c.G * 255), uint8(c.B * 255)
}

// Colorful converts to a go-colorful color
func (c Color) Colorful() colorful.Color {
	return colorful.Color{R: c.R, G: c.G, B: c.B}
}

// ColorFromColorful converts a go-colorful color, clamping out-of-gamut values
func ColorFromColorful(c colorful.Color) Color {
	return NewColor(c.R, c.G, c.B)
}

// ParseHexColor parses "#rrggbb" into a Color
func ParseHexColor(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, err
	}
	return ColorFromColorful(c), nil
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
