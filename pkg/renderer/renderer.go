package renderer

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/integrator"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// NopLogger discards everything
type NopLogger struct{}

func (NopLogger) Printf(string, ...interface{}) {}

// Config controls how the image is divided and scheduled
type Config struct {
	TileSize   int // Edge length of square tiles in pixels
	NumWorkers int // Tiles rendered at once (0 = use CPU count, 1 = sequential)
}

// DefaultConfig returns 32 pixel tiles on every CPU
func DefaultConfig() Config {
	return Config{
		TileSize:   32,
		NumWorkers: 0,
	}
}

// Raytracer renders a scene one primary ray per pixel
type Raytracer struct {
	scene  *scene.Scene
	camera *Camera
	tiles  *TileRenderer
	config Config
	logger core.Logger
}

// NewRaytracer creates a raytracer for s. It fails when the scene's
// viewport cannot produce a camera.
func NewRaytracer(s *scene.Scene, integratorInst integrator.Integrator, config Config, logger core.Logger) (*Raytracer, error) {
	camera, err := NewCamera(s.Viewport)
	if err != nil {
		return nil, fmt.Errorf("invalid viewport: %w", err)
	}
	if config.TileSize <= 0 {
		config.TileSize = DefaultConfig().TileSize
	}
	if config.NumWorkers <= 0 {
		config.NumWorkers = runtime.NumCPU()
	}
	if logger == nil {
		logger = NopLogger{}
	}

	return &Raytracer{
		scene:  s,
		camera: camera,
		tiles:  NewTileRenderer(s, camera, integratorInst),
		config: config,
		logger: logger,
	}, nil
}

// Render traces every pixel. Tiles are scheduled on at most NumWorkers
// goroutines; each tile owns its pixels, so the framebuffer needs no locking.
// Cancellation is observed between tiles.
func (rt *Raytracer) Render(ctx context.Context) (*Framebuffer, RenderStats, error) {
	width, height := rt.camera.Resolution()
	fb := NewFramebuffer(width, height)
	tiles := NewTileGrid(width, height, rt.config.TileSize)

	stats := RenderStats{
		Width:       width,
		Height:      height,
		TotalPixels: width * height,
		Tiles:       len(tiles),
		Workers:     min(rt.config.NumWorkers, len(tiles)),
	}

	spheres, triangles := rt.scene.GetPrimitiveCount()
	rt.logger.Printf("Rendering %dx%d: %d spheres, %d triangles, %d lights\n",
		width, height, spheres, triangles, len(rt.scene.Lights))
	rt.logger.Printf("Using %d tiles of %dpx on %d workers...\n", len(tiles), rt.config.TileSize, stats.Workers)

	startTime := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rt.config.NumWorkers)
	for _, tile := range tiles {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rt.tiles.RenderTileBounds(tile.Bounds, fb)
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		rt.logger.Printf("Rendering cancelled: %v\n", err)
		return nil, stats, err
	}

	stats.Duration = time.Since(startTime)
	rt.logger.Printf("Render completed in %v (%.0f pixels/s)\n", stats.Duration, stats.PixelsPerSecond())
	return fb, stats, nil
}
