package renderer

import (
	"image"

	"github.com/df07/go-whitted-raytracer/pkg/integrator"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// TileRenderer handles the actual rendering of individual tiles using an integrator
type TileRenderer struct {
	scene      *scene.Scene
	camera     *Camera
	integrator integrator.Integrator
}

// NewTileRenderer creates a new tile renderer with the given scene, camera and integrator
func NewTileRenderer(s *scene.Scene, camera *Camera, integratorInst integrator.Integrator) *TileRenderer {
	return &TileRenderer{
		scene:      s,
		camera:     camera,
		integrator: integratorInst,
	}
}

// RenderTileBounds traces one primary ray per pixel inside bounds and writes
// the results into fb. Concurrent calls are safe as long as the bounds are
// disjoint. Returns the number of pixels written.
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, fb *Framebuffer) int {
	bounds = bounds.Intersect(fb.Bounds())
	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			ray := tr.camera.GetRay(i, j)
			fb.Set(i, j, tr.integrator.RayColor(ray, tr.scene))
		}
	}
	return bounds.Dx() * bounds.Dy()
}
