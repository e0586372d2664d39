package renderer

import "time"

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	Width, Height int
	TotalPixels   int           // Total number of pixels rendered
	Tiles         int           // Number of tiles the image was split into
	Workers       int           // Maximum number of tiles rendered at once
	Duration      time.Duration // Wall time of the render
}

// PixelsPerSecond returns the render throughput
func (s RenderStats) PixelsPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.TotalPixels) / s.Duration.Seconds()
}
