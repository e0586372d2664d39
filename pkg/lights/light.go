package lights

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Light is a directional (W == 0) or positional (W == 1) light. For a
// directional light Vector is the direction light travels; for a positional
// light it is the light's location.
type Light struct {
	Vector core.Vec3
	W      float64
	Color  core.Color
}

// NewDirectional creates a light travelling along direction
func NewDirectional(direction core.Vec3, color core.Color) Light {
	return Light{Vector: direction, W: 0, Color: color}
}

// NewPositional creates a point light at position
func NewPositional(position core.Vec3, color core.Color) Light {
	return Light{Vector: position, W: 1, Color: color}
}

func (l Light) Type() LightType {
	if l.IsDirectional() {
		return LightTypeDirectional
	}
	return LightTypePositional
}

// IsDirectional reports whether the light is infinitely far away
func (l Light) IsDirectional() bool {
	return l.W == 0
}

// Sample returns the direction and distance from point to the light.
// Shadow rays toward a directional light are unbounded.
func (l Light) Sample(point core.Vec3) LightSample {
	if l.IsDirectional() {
		return LightSample{
			Direction: l.Vector.Negate().Normalize(),
			Distance:  math.Inf(1),
			Color:     l.Color,
		}
	}

	toLight := l.Vector.Subtract(point)
	return LightSample{
		Direction: toLight.Normalize(),
		Distance:  toLight.Length(),
		Color:     l.Color,
	}
}
