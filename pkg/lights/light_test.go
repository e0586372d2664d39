package lights

import (
	"math"
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

func TestLight_Sample(t *testing.T) {
	white := core.NewColor(1, 1, 1)

	tests := []struct {
		name      string
		light     Light
		point     core.Vec3
		direction core.Vec3
		distance  float64
		lightType LightType
	}{
		{
			name:      "directional points against travel direction",
			light:     NewDirectional(core.NewVec3(0, -2, 0), white),
			point:     core.NewVec3(5, 5, 5),
			direction: core.NewVec3(0, 1, 0),
			distance:  math.Inf(1),
			lightType: LightTypeDirectional,
		},
		{
			name:      "positional points at the light",
			light:     NewPositional(core.NewVec3(0, 4, 0), white),
			point:     core.NewVec3(0, 1, 0),
			direction: core.NewVec3(0, 1, 0),
			distance:  3,
			lightType: LightTypePositional,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample := tt.light.Sample(tt.point)
			if sample.Direction.Subtract(tt.direction).Length() > 1e-9 {
				t.Errorf("Expected direction %v, got %v", tt.direction, sample.Direction)
			}
			if sample.Distance != tt.distance {
				t.Errorf("Expected distance %v, got %v", tt.distance, sample.Distance)
			}
			if sample.Color != white {
				t.Errorf("Expected color %v, got %v", white, sample.Color)
			}
			if tt.light.Type() != tt.lightType {
				t.Errorf("Expected type %v, got %v", tt.lightType, tt.light.Type())
			}
		})
	}
}
