package scene

import (
	"fmt"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/lights"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// BuiltinScene is a scene constructed in code rather than read from a file
type BuiltinScene struct {
	ID          string
	Name        string
	Description string
	New         func() *Scene
}

var builtins = []BuiltinScene{
	{"diffuse-sphere", "Diffuse Sphere", "Unit sphere lit head-on by a directional light", NewDiffuseSphereScene},
	{"refraction", "Refraction", "Clear glass sphere in front of an opaque sphere", NewRefractionScene},
	{"nested-glass", "Nested Glass", "Two concentric transparent spheres", NewNestedGlassScene},
	{"textured", "Textured", "Checkerboard sphere on a textured floor", NewTexturedScene},
	{"showcase", "Showcase", "Glass, mirror and textured objects under two lights", NewShowcaseScene},
}

// Builtins lists the scenes available without a scene file
func Builtins() []BuiltinScene {
	return builtins
}

// NewBuiltin constructs the built-in scene with the given id
func NewBuiltin(id string) (*Scene, error) {
	for _, b := range builtins {
		if b.ID == id {
			return b.New(), nil
		}
	}
	return nil, fmt.Errorf("unknown built-in scene %q", id)
}

func defaultViewport() Viewport {
	return Viewport{
		Eye:     core.NewVec3(0, 0, 5),
		ViewDir: core.NewVec3(0, 0, -1),
		UpDir:   core.NewVec3(0, 1, 0),
		HFov:    60,
		Width:   400,
		Height:  300,
	}
}

// NewDiffuseSphereScene creates a diffuse-only unit sphere at the origin lit by
// a directional light travelling along -Z, seen from +Z
func NewDiffuseSphereScene() *Scene {
	b := NewBuilder().
		SetViewport(defaultViewport()).
		SetBackground(core.NewColor(0.1, 0.1, 0.1), 1.0)

	white := core.NewColor(1, 1, 1)
	diffuse := material.NewPhong(core.NewColor(0.9, 0.4, 0.2), white, 0.2, 0.8, 0, 1)
	b.AddSphere(core.NewVec3(0, 0, 0), 1, diffuse, nil)
	b.AddLight(lights.NewDirectional(core.NewVec3(0, 0, -1), white))

	return b.Build()
}

// NewRefractionScene places a fully transparent sphere (eta 1.5) between the
// viewer and an opaque red sphere
func NewRefractionScene() *Scene {
	b := NewBuilder().
		SetViewport(defaultViewport()).
		SetBackground(core.NewColor(0.1, 0.1, 0.1), 1.0)

	white := core.NewColor(1, 1, 1)
	glass := material.NewPhong(core.NewColor(0, 0, 1), white, 0.1, 0.1, 0, 1).WithTransparency(0, 1.5)
	red := material.NewPhong(core.NewColor(1, 0, 0), white, 0.2, 0.8, 0, 1)

	b.AddSphere(core.NewVec3(0, 0, 0), 1, glass, nil)
	b.AddSphere(core.NewVec3(0, 0, -4), 1.5, red, nil)
	b.AddLight(lights.NewDirectional(core.NewVec3(0, 0, -1), white))

	return b.Build()
}

// NewNestedGlassScene creates two concentric transparent spheres, eta 1.0
// outside and 1.3 inside, over a checkered floor
func NewNestedGlassScene() *Scene {
	b := NewBuilder().
		SetViewport(defaultViewport()).
		SetBackground(core.NewColor(0.2, 0.3, 0.5), 1.0)

	white := core.NewColor(1, 1, 1)
	outer := material.NewPhong(core.NewColor(0.9, 0.9, 1), white, 0.05, 0.1, 0.5, 60).WithTransparency(0.1, 1.0)
	inner := material.NewPhong(core.NewColor(0.2, 0.9, 0.3), white, 0.05, 0.2, 0.5, 60).WithTransparency(0.3, 1.3)

	b.AddSphere(core.NewVec3(0, 0, 0), 2, outer, nil)
	b.AddSphere(core.NewVec3(0, 0, 0), 1, inner, nil)
	addFloor(b, -2.5, 8, checker())
	b.AddLight(lights.NewPositional(core.NewVec3(4, 6, 6), white))

	return b.Build()
}

// NewTexturedScene demonstrates sphere and triangle texture mapping
func NewTexturedScene() *Scene {
	b := NewBuilder().
		SetViewport(Viewport{
			Eye:     core.NewVec3(0, 1.5, 6),
			ViewDir: core.NewVec3(0, -0.25, -1),
			UpDir:   core.NewVec3(0, 1, 0),
			HFov:    55,
			Width:   400,
			Height:  300,
		}).
		SetBackground(core.NewColor(0.05, 0.05, 0.1), 1.0)

	white := core.NewColor(1, 1, 1)
	shiny := material.NewPhong(white, white, 0.2, 0.7, 0.3, 40)
	b.AddSphere(core.NewVec3(-1.2, 0, 0), 1, shiny, material.NewUVDebugTexture(128, 128))
	b.AddSphere(core.NewVec3(1.2, 0, 0), 1, shiny,
		material.NewGradientTexture(64, 64, core.NewColor(1, 0.2, 0.2), core.NewColor(0.2, 1, 0.2)))
	addFloor(b, -1, 10, checker())
	b.AddLight(lights.NewPositional(core.NewVec3(-3, 5, 4), core.NewColor(0.8, 0.8, 0.8)))
	b.AddLight(lights.NewDirectional(core.NewVec3(1, -1, -1), core.NewColor(0.3, 0.3, 0.3)))

	return b.Build()
}

// NewShowcaseScene combines reflection, refraction, shadows and textures
func NewShowcaseScene() *Scene {
	b := NewBuilder().
		SetViewport(Viewport{
			Eye:     core.NewVec3(0, 2, 8),
			ViewDir: core.NewVec3(0, -0.2, -1),
			UpDir:   core.NewVec3(0, 1, 0),
			HFov:    60,
			Width:   640,
			Height:  360,
		}).
		SetBackground(core.NewColor(0.55, 0.7, 0.9), 1.0)

	white := core.NewColor(1, 1, 1)
	// Opaque; the high index only raises the Fresnel reflectance
	mirror := material.NewPhong(core.NewColor(0.1, 0.1, 0.1), white, 0.05, 0.1, 0.9, 200).WithTransparency(1, 8.0)
	glass := material.NewPhong(core.NewColor(0.9, 0.95, 1), white, 0.02, 0.05, 0.6, 120).WithTransparency(0.05, 1.5)
	matte := material.NewPhong(core.NewColor(0.8, 0.3, 0.2), white, 0.2, 0.7, 0.2, 20)

	b.AddSphere(core.NewVec3(-2.2, 0, -1), 1, mirror, nil)
	b.AddSphere(core.NewVec3(0, 0, 0.5), 1, glass, nil)
	b.AddSphere(core.NewVec3(2.2, 0, -1), 1, matte, nil)
	addFloor(b, -1, 12, checker())
	b.AddLight(lights.NewPositional(core.NewVec3(-4, 6, 5), core.NewColor(0.7, 0.7, 0.7)))
	b.AddLight(lights.NewDirectional(core.NewVec3(0.5, -1, -0.5), core.NewColor(0.4, 0.4, 0.4)))

	return b.Build()
}

func checker() material.Texture {
	return material.NewCheckerboardTexture(256, 256, 32, core.NewColor(0.9, 0.9, 0.9), core.NewColor(0.2, 0.2, 0.25))
}

// addFloor adds a textured square at height y made of two triangles
func addFloor(b *Builder, y, size float64, tex material.Texture) {
	h := size / 2
	mesh := &geometry.TriangleMesh{
		Positions: []core.Vec3{
			core.NewVec3(-h, y, h),
			core.NewVec3(h, y, h),
			core.NewVec3(h, y, -h),
			core.NewVec3(-h, y, -h),
		},
		UVs: []core.Vec2{
			core.NewVec2(0, 1),
			core.NewVec2(1, 1),
			core.NewVec2(1, 0),
			core.NewVec2(0, 0),
		},
		Faces: [][3]int{{0, 1, 2}, {0, 2, 3}},
	}

	white := core.NewColor(1, 1, 1)
	floor := material.NewPhong(white, white, 0.2, 0.8, 0.1, 10)
	if _, err := b.AddMesh(mesh, floor, tex); err != nil {
		panic(err) // Indices above are constant
	}
}
