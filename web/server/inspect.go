package server

import (
	"fmt"
	"net/http"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/integrator"
	"github.com/df07/go-whitted-raytracer/pkg/material"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	ObjectID     int                    `json:"objectId,omitempty"`
	GeometryType string                 `json:"geometryType,omitempty"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	Color        string                 `json:"color"` // Shaded pixel color as #rrggbb
	Material     map[string]interface{} `json:"material,omitempty"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

// extractMaterialInfo describes a Phong material
func extractMaterialInfo(mat material.Material, textured bool) map[string]interface{} {
	return map[string]interface{}{
		"diffuse":         mat.Diffuse.Colorful().Hex(),
		"specular":        mat.Specular.Colorful().Hex(),
		"ka":              mat.Ka,
		"kd":              mat.Kd,
		"ks":              mat.Ks,
		"n":               mat.N,
		"opacity":         mat.Opacity,
		"refractionIndex": mat.RefractionIndex,
		"textured":        textured,
	}
}

// extractGeometryInfo extracts detailed geometry information
func extractGeometryInfo(hit geometry.Hit) map[string]interface{} {
	properties := make(map[string]interface{})

	switch geom := hit.Primitive.(type) {
	case *geometry.Sphere:
		properties["center"] = vecArray(geom.Center)
		properties["radius"] = geom.Radius
	case *geometry.Triangle:
		properties["v0"] = vecArray(geom.V[0])
		properties["v1"] = vecArray(geom.V[1])
		properties["v2"] = vecArray(geom.V[2])
		properties["weights"] = hit.Intersection.Weights
		properties["smooth"] = geom.Smooth
	}
	return properties
}

// inspectPixel casts the primary ray through a pixel and describes the
// nearest surface it strikes
func inspectPixel(sceneObj *scene.Scene, integ integrator.Integrator, pixelX, pixelY int) (InspectResponse, error) {
	camera, err := renderer.NewCamera(sceneObj.Viewport)
	if err != nil {
		return InspectResponse{}, err
	}
	ray := camera.GetRay(pixelX, pixelY)

	response := InspectResponse{Color: integ.RayColor(ray, sceneObj).Colorful().Hex()}

	hit, ok := geometry.Trace(sceneObj.Objects, ray, 0)
	if !ok {
		return response, nil
	}

	info := hit.Primitive.Info()
	response.Hit = true
	response.ObjectID = info.ID
	response.GeometryType = info.Kind.String()
	response.Point = vecArray(hit.Intersection.Point)
	response.Normal = vecArray(hit.Intersection.Normal)
	response.Distance = hit.Intersection.T
	response.Material = extractMaterialInfo(info.Material, info.Texture != nil)
	response.Properties = extractGeometryInfo(hit)
	return response, nil
}

// handleInspect reports what the primary ray through ?x=&y= hits
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	sceneObj, err := s.createScene(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	vp := sceneObj.Viewport
	x, errX := parseIntParam(r.URL.Query(), "x", vp.Width/2, 0, vp.Width-1)
	y, errY := parseIntParam(r.URL.Query(), "y", vp.Height/2, 0, vp.Height-1)
	if errX != nil || errY != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("pixel must lie inside %dx%d", vp.Width, vp.Height),
		})
		return
	}

	integ := integrator.NewWhittedIntegrator(integrator.Config{MaxDepth: req.Depth, Epsilon: req.Epsilon})
	response, err := inspectPixel(sceneObj, integ, x, y)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func vecArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
