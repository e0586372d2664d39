package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/df07/go-whitted-raytracer/pkg/integrator"
	"github.com/df07/go-whitted-raytracer/pkg/loaders"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

var renderCounter atomic.Int64

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene   string  `json:"scene"`   // Built-in id or "file:<name>"
	Width   int     `json:"width"`   // Image width, 0 keeps the scene's
	Height  int     `json:"height"`  // Image height, 0 keeps the scene's
	Depth   int     `json:"depth"`   // Recursion depth
	Epsilon float64 `json:"epsilon"` // Secondary ray bias
}

// RenderResult is the payload of the final "complete" event
type RenderResult struct {
	ImageData   string `json:"imageData"` // Base64 encoded PNG
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Tiles       int    `json:"tiles"`
	Workers     int    `json:"workers"`
	ElapsedMs   int64  `json:"elapsedMs"`
	Spheres     int    `json:"spheres"`
	Triangles   int    `json:"triangles"`
	LightsCount int    `json:"lights"`
}

// SSEEvent is one server-sent event
type SSEEvent struct {
	Event string
	Data  string
}

// handleRender renders a scene and streams console messages followed by the
// finished image as server-sent events
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)

	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.sendSSEEvent(w, SSEEvent{Event: "error", Data: fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	sceneObj, err := s.createScene(req)
	if err != nil {
		s.sendSSEEvent(w, SSEEvent{Event: "error", Data: err.Error()})
		return
	}

	renderID := "render-" + strconv.FormatInt(renderCounter.Add(1), 10)
	consoleChan := make(chan ConsoleMessage, 100)
	logger := NewWebLogger(renderID, consoleChan)

	raytracer, err := renderer.NewRaytracer(sceneObj,
		integrator.NewWhittedIntegrator(integrator.Config{MaxDepth: req.Depth, Epsilon: req.Epsilon}),
		renderer.Config{TileSize: s.config.Render.TileSize, NumWorkers: s.config.Render.Workers},
		logger)
	if err != nil {
		s.sendSSEEvent(w, SSEEvent{Event: "error", Data: err.Error()})
		return
	}

	type outcome struct {
		fb    *renderer.Framebuffer
		stats renderer.RenderStats
		err   error
	}
	done := make(chan outcome, 1)
	ctx := r.Context()
	go func() {
		fb, stats, err := raytracer.Render(ctx)
		done <- outcome{fb, stats, err}
	}()

	for {
		select {
		case msg := <-consoleChan:
			s.sendConsole(w, msg)
		case result := <-done:
			s.drainConsole(w, consoleChan)
			if result.err != nil {
				s.sendSSEEvent(w, SSEEvent{Event: "error", Data: fmt.Sprintf("Render error: %v", result.err)})
				return
			}
			if err := s.sendResult(w, sceneObj, result.fb, result.stats); err != nil {
				s.sendSSEEvent(w, SSEEvent{Event: "error", Data: err.Error()})
			}
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

func (s *Server) drainConsole(w http.ResponseWriter, consoleChan chan ConsoleMessage) {
	for {
		select {
		case msg := <-consoleChan:
			s.sendConsole(w, msg)
		default:
			return
		}
	}
}

func (s *Server) sendConsole(w http.ResponseWriter, msg ConsoleMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	s.sendSSEEvent(w, SSEEvent{Event: "console", Data: string(data)})
}

func (s *Server) sendResult(w http.ResponseWriter, sceneObj *scene.Scene, fb *renderer.Framebuffer, stats renderer.RenderStats) error {
	imageData, err := imageToBase64PNG(fb)
	if err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}

	spheres, triangles := sceneObj.GetPrimitiveCount()
	data, err := json.Marshal(RenderResult{
		ImageData:   imageData,
		Width:       stats.Width,
		Height:      stats.Height,
		Tiles:       stats.Tiles,
		Workers:     stats.Workers,
		ElapsedMs:   stats.Duration.Milliseconds(),
		Spheres:     spheres,
		Triangles:   triangles,
		LightsCount: len(sceneObj.Lights),
	})
	if err != nil {
		return err
	}
	return s.sendSSEEvent(w, SSEEvent{Event: "complete", Data: string(data)})
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: query.Get("scene")}
	if req.Scene == "" {
		req.Scene = "showcase" // Default scene
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 0, 2, 2000); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(query, "height", 0, 2, 2000); err != nil {
		return nil, err
	}
	if req.Depth, err = parseIntParam(query, "depth", s.config.Render.RecursionDepth, 0, 64); err != nil {
		return nil, err
	}
	if req.Epsilon, err = parseFloatParam(query, "epsilon", s.config.Render.Epsilon, 1e-9, 1); err != nil {
		return nil, err
	}
	return req, nil
}

// createScene opens the requested scene and applies the requested resolution
func (s *Server) createScene(req *RenderRequest) (*scene.Scene, error) {
	sceneObj, err := loaders.OpenScene(req.Scene, s.sceneDir, s.config.Render.BackgroundRefractionIndex)
	if err != nil {
		return nil, fmt.Errorf("unknown scene %q: %w", req.Scene, err)
	}
	if req.Width > 0 {
		sceneObj.Viewport.Width = req.Width
	}
	if req.Height > 0 {
		sceneObj.Viewport.Height = req.Height
	}
	return sceneObj, nil
}

// imageToBase64PNG converts a framebuffer to base64-encoded PNG
func imageToBase64PNG(fb *renderer.Framebuffer) (string, error) {
	var buf bytes.Buffer
	if err := fb.WritePNG(&buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// sendSSEEvent sends a generic SSE event
func (s *Server) sendSSEEvent(w http.ResponseWriter, event SSEEvent) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming not supported")
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, event.Data)
	flusher.Flush()
	return nil
}
