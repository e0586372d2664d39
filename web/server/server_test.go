package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

func TestHandleHealth(t *testing.T) {
	srv := httptest.NewServer(NewServer(0, t.TempDir(), nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}

func TestHandleScenes(t *testing.T) {
	rec := httptest.NewRecorder()
	NewServer(0, t.TempDir(), nil).Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/scenes", nil))

	var groups []scene.SceneGroup
	if err := json.Unmarshal(rec.Body.Bytes(), &groups); err != nil {
		t.Fatalf("Failed to decode scenes: %v", err)
	}
	if len(groups) == 0 || len(groups[0].Scenes) != len(scene.Builtins()) {
		t.Errorf("Expected the built-in group first, got %+v", groups)
	}
}

// parseSSE splits a recorded event stream into event name / data pairs
func parseSSE(body string) [][2]string {
	var events [][2]string
	for _, block := range strings.Split(body, "\n\n") {
		var event, data string
		for _, line := range strings.Split(block, "\n") {
			if v, ok := strings.CutPrefix(line, "event: "); ok {
				event = v
			}
			if v, ok := strings.CutPrefix(line, "data: "); ok {
				data = v
			}
		}
		if event != "" {
			events = append(events, [2]string{event, data})
		}
	}
	return events
}

func TestHandleRender(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/render?scene=diffuse-sphere&width=16&height=12", nil)
	NewServer(0, t.TempDir(), nil).Handler().ServeHTTP(rec, req)

	events := parseSSE(rec.Body.String())
	if len(events) == 0 {
		t.Fatal("Expected server-sent events")
	}
	last := events[len(events)-1]
	if last[0] != "complete" {
		t.Fatalf("Expected final complete event, got %q: %s", last[0], last[1])
	}

	var result RenderResult
	if err := json.Unmarshal([]byte(last[1]), &result); err != nil {
		t.Fatalf("Failed to decode result: %v", err)
	}
	if result.Width != 16 || result.Height != 12 || result.Spheres != 1 {
		t.Errorf("Unexpected result %+v", result)
	}

	data, err := base64.StdEncoding.DecodeString(result.ImageData)
	if err != nil {
		t.Fatalf("Invalid base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Invalid PNG: %v", err)
	}
	if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 12 {
		t.Errorf("Expected 16x12 image, got %v", img.Bounds())
	}
}

func TestHandleRenderErrors(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"unknown scene", "scene=nonexistent"},
		{"width too small", "scene=diffuse-sphere&width=1"},
		{"bad depth", "scene=diffuse-sphere&depth=abc"},
		{"non-numeric width", "scene=diffuse-sphere&width=abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewServer(0, t.TempDir(), nil).Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/render?"+tt.query, nil))
			// Errors arrive on the event stream, not as an HTTP status
			if rec.Code != http.StatusOK {
				t.Errorf("Expected status 200, got %d", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
				t.Errorf("Expected text/event-stream, got %q", ct)
			}
			events := parseSSE(rec.Body.String())
			if len(events) != 1 || events[0][0] != "error" {
				t.Errorf("Expected a single error event, got %v", events)
			}
		})
	}
}

func TestHandleInspect(t *testing.T) {
	handler := NewServer(0, t.TempDir(), nil).Handler()

	tests := []struct {
		name   string
		query  string
		status int
		hit    bool
	}{
		{"center hits the sphere", "scene=diffuse-sphere&width=21&height=21&x=10&y=10", http.StatusOK, true},
		{"corner misses", "scene=diffuse-sphere&width=21&height=21&x=0&y=0", http.StatusOK, false},
		{"outside the image", "scene=diffuse-sphere&width=21&height=21&x=21&y=0", http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/inspect?"+tt.query, nil))
			if rec.Code != tt.status {
				t.Fatalf("Expected status %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if tt.status != http.StatusOK {
				return
			}

			var resp InspectResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Hit != tt.hit {
				t.Errorf("Expected hit=%v, got %+v", tt.hit, resp)
			}
			if tt.hit && (resp.GeometryType != "sphere" || resp.Material["kd"] != 0.8) {
				t.Errorf("Unexpected inspection %+v", resp)
			}
		})
	}
}
