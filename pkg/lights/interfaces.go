package lights

import "github.com/df07/go-whitted-raytracer/pkg/core"

type LightType string

const (
	LightTypeDirectional LightType = "directional"
	LightTypePositional  LightType = "positional"
)

// LightSample describes a light as seen from a shading point
type LightSample struct {
	Direction core.Vec3 // Unit direction FROM the shading point TO the light
	Distance  float64   // Distance to the light, +Inf for directional lights
	Color     core.Color
}
