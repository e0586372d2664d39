package scene

import (
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

func TestBuilder_AssignsMonotonicIDs(t *testing.T) {
	white := core.NewColor(1, 1, 1)
	mat := material.NewPhong(white, white, 0.1, 0.8, 0.1, 10)

	b := NewBuilder()
	b.AddSphere(core.NewVec3(0, 0, 0), 1, mat, nil)
	b.AddTriangle(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), mat, nil)
	_, err := b.AddMesh(&geometry.TriangleMesh{
		Positions: []core.Vec3{core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), core.NewVec3(1, 1, 0)},
		Faces:     [][3]int{{0, 1, 2}, {1, 3, 2}},
	}, mat, nil)
	if err != nil {
		t.Fatalf("AddMesh() error: %v", err)
	}
	s := b.Build()

	if len(s.Objects) != 4 {
		t.Fatalf("Expected 4 objects, got %d", len(s.Objects))
	}
	for i, obj := range s.Objects {
		if obj.Info().ID != i+1 {
			t.Errorf("Object %d: expected id %d, got %d", i, i+1, obj.Info().ID)
		}
	}

	spheres, triangles := s.GetPrimitiveCount()
	if spheres != 1 || triangles != 3 {
		t.Errorf("Expected 1 sphere and 3 triangles, got %d and %d", spheres, triangles)
	}
	if s.Objects[0].Info().Kind != geometry.KindSphere || s.Objects[3].Info().Kind != geometry.KindTriangle {
		t.Error("Expected kinds to be tagged by the constructors")
	}
}

func TestBuilder_Defaults(t *testing.T) {
	s := NewBuilder().Build()
	if s.BackgroundIndex != 1.0 {
		t.Errorf("Expected vacuum background index, got %v", s.BackgroundIndex)
	}
	if s.Background != core.Black {
		t.Errorf("Expected black background, got %v", s.Background)
	}
}

func TestBuiltins(t *testing.T) {
	for _, b := range Builtins() {
		t.Run(b.ID, func(t *testing.T) {
			s, err := NewBuiltin(b.ID)
			if err != nil {
				t.Fatalf("NewBuiltin() error: %v", err)
			}
			if len(s.Objects) == 0 {
				t.Error("Expected objects")
			}
			if len(s.Lights) == 0 {
				t.Error("Expected lights")
			}
			if s.Viewport.Width < 2 || s.Viewport.Height < 2 {
				t.Errorf("Expected usable resolution, got %dx%d", s.Viewport.Width, s.Viewport.Height)
			}
		})
	}

	if _, err := NewBuiltin("no-such-scene"); err == nil {
		t.Error("Expected error for unknown scene")
	}
}
