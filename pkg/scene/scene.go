package scene

import (
	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/lights"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// Viewport describes the camera: eye position, view and up directions,
// horizontal field of view in degrees, and image resolution in pixels.
type Viewport struct {
	Eye     core.Vec3
	ViewDir core.Vec3
	UpDir   core.Vec3
	HFov    float64
	Width   int
	Height  int
}

// Scene contains all the elements needed for rendering. It is immutable
// once built; the renderer reads it from many goroutines.
type Scene struct {
	Viewport        Viewport
	Objects         []geometry.Primitive // Spheres and triangles, tested brute force
	Lights          []lights.Light
	Background      core.Color
	BackgroundIndex float64 // Refraction index of the space between objects
}

// GetPrimitiveCount returns the number of spheres and triangles in the scene
func (s *Scene) GetPrimitiveCount() (spheres, triangles int) {
	for _, obj := range s.Objects {
		switch obj.(type) {
		case *geometry.Sphere:
			spheres++
		case *geometry.Triangle:
			triangles++
		}
	}
	return spheres, triangles
}

// Builder assembles a Scene, handing out object ids in creation order
type Builder struct {
	scene  *Scene
	nextID int
}

// NewBuilder creates a builder with a black background in vacuum
func NewBuilder() *Builder {
	return &Builder{
		scene: &Scene{
			Background:      core.Black,
			BackgroundIndex: 1.0,
		},
	}
}

// SetViewport sets the camera description
func (b *Builder) SetViewport(v Viewport) *Builder {
	b.scene.Viewport = v
	return b
}

// SetBackground sets the background color and refraction index
func (b *Builder) SetBackground(color core.Color, refractionIndex float64) *Builder {
	b.scene.Background = color
	b.scene.BackgroundIndex = refractionIndex
	return b
}

// SetBackgroundIndex overrides only the background refraction index
func (b *Builder) SetBackgroundIndex(refractionIndex float64) *Builder {
	b.scene.BackgroundIndex = refractionIndex
	return b
}

func (b *Builder) newInfo(mat material.Material, tex material.Texture) *geometry.ObjectInfo {
	b.nextID++
	return &geometry.ObjectInfo{ID: b.nextID, Material: mat, Texture: tex}
}

// AddSphere adds a sphere. tex may be nil.
func (b *Builder) AddSphere(center core.Vec3, radius float64, mat material.Material, tex material.Texture) *geometry.Sphere {
	sphere := geometry.NewSphere(center, radius, b.newInfo(mat, tex))
	b.scene.Objects = append(b.scene.Objects, sphere)
	return sphere
}

// AddTriangle adds a flat triangle. Vertex normals and texture coordinates
// can be attached to the returned triangle before Build.
func (b *Builder) AddTriangle(v0, v1, v2 core.Vec3, mat material.Material, tex material.Texture) *geometry.Triangle {
	tri := geometry.NewTriangle(v0, v1, v2, b.newInfo(mat, tex))
	b.scene.Objects = append(b.scene.Objects, tri)
	return tri
}

// AddMesh flattens mesh into triangles that share mat and tex
func (b *Builder) AddMesh(mesh *geometry.TriangleMesh, mat material.Material, tex material.Texture) ([]*geometry.Triangle, error) {
	triangles, err := mesh.Triangles(func() *geometry.ObjectInfo {
		return b.newInfo(mat, tex)
	})
	if err != nil {
		return nil, err
	}
	for _, tri := range triangles {
		b.scene.Objects = append(b.scene.Objects, tri)
	}
	return triangles, nil
}

// AddLight adds a light
func (b *Builder) AddLight(light lights.Light) *Builder {
	b.scene.Lights = append(b.scene.Lights, light)
	return b
}

// Build returns the assembled scene. The builder must not be used afterwards.
func (b *Builder) Build() *Scene {
	s := b.scene
	b.scene = nil
	return s
}
