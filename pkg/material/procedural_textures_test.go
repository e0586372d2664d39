package material

import (
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

func TestCheckerboardTexture(t *testing.T) {
	white := core.NewColor(1, 1, 1)
	blue := core.NewColor(0, 0, 1)
	texture := NewCheckerboardTexture(8, 8, 4, white, blue)

	tests := []struct {
		x, y     int
		expected [3]uint8
	}{
		{0, 0, [3]uint8{255, 255, 255}},
		{3, 3, [3]uint8{255, 255, 255}},
		{4, 0, [3]uint8{0, 0, 255}},
		{0, 4, [3]uint8{0, 0, 255}},
		{7, 7, [3]uint8{255, 255, 255}},
	}

	for _, tt := range tests {
		if got := texture.Texel(tt.x, tt.y); got != tt.expected {
			t.Errorf("Texel(%d, %d): expected %v, got %v", tt.x, tt.y, tt.expected, got)
		}
	}
}

func TestGradientTexture(t *testing.T) {
	texture := NewGradientTexture(2, 3, core.NewColor(1, 0, 0), core.NewColor(0, 0, 1))

	if got := texture.Texel(1, 0); got != [3]uint8{255, 0, 0} {
		t.Errorf("Expected top row to be color1, got %v", got)
	}
	if got := texture.Texel(0, 2); got != [3]uint8{0, 0, 255} {
		t.Errorf("Expected bottom row to be color2, got %v", got)
	}
}

func TestUVDebugTexture(t *testing.T) {
	texture := NewUVDebugTexture(4, 4)

	if got := texture.Texel(3, 0); got != [3]uint8{255, 0, 0} {
		t.Errorf("Expected u=1, v=0 to be red, got %v", got)
	}
	if got := texture.Texel(0, 3); got != [3]uint8{0, 255, 0} {
		t.Errorf("Expected u=0, v=1 to be green, got %v", got)
	}
}
