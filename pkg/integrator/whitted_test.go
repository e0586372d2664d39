package integrator

import (
	"math"
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/lights"
	"github.com/df07/go-whitted-raytracer/pkg/material"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

var white = core.NewColor(1, 1, 1)

func brightness(c core.Color) float64 {
	return c.R + c.G + c.B
}

func colorsClose(a, b core.Color, tolerance float64) bool {
	return math.Abs(a.R-b.R) <= tolerance && math.Abs(a.G-b.G) <= tolerance && math.Abs(a.B-b.B) <= tolerance
}

// pathAt builds the state for a primary ray travelling along -Z that struck
// prim at point with the given outward normal
func pathAt(prim geometry.Primitive, point, normal core.Vec3, depth int) Path {
	medium, etaI, etaT := InitialMediumState().Transition(nil, prim.Info(), 1.0, 1.0)
	return Path{
		Incident: core.NewVec3(0, 0, -1),
		Hit: geometry.Hit{
			Primitive:    prim,
			Intersection: geometry.Intersection{T: 1, Point: point, Normal: normal},
		},
		EtaI:   etaI,
		EtaT:   etaT,
		Medium: medium,
		Depth:  depth,
	}
}

func TestShade_Shadows(t *testing.T) {
	diffuseOnly := material.NewPhong(white, white, 0, 1, 0, 1)
	opaque := material.NewPhong(white, white, 0.2, 0.8, 0, 1)

	tests := []struct {
		name      string
		light     lights.Light
		occluders []material.Material
		expected  core.Color
	}{
		{
			name:     "unoccluded",
			light:    lights.NewPositional(core.NewVec3(0, 0, 10), white),
			expected: white,
		},
		{
			name:      "opaque occluder before the light",
			light:     lights.NewPositional(core.NewVec3(0, 0, 10), white),
			occluders: []material.Material{opaque},
			expected:  core.Black,
		},
		{
			name:      "opaque occluder beyond the light",
			light:     lights.NewPositional(core.NewVec3(0, 0, 3), white),
			occluders: []material.Material{opaque},
			expected:  white,
		},
		{
			name:      "opaque occluder blocks directional light",
			light:     lights.NewDirectional(core.NewVec3(0, 0, -1), white),
			occluders: []material.Material{opaque},
			expected:  core.Black,
		},
		{
			name:      "half transparent occluder",
			light:     lights.NewPositional(core.NewVec3(0, 0, 20), white),
			occluders: []material.Material{opaque.WithTransparency(0.5, 1.0)},
			expected:  core.NewColor(0.5, 0.5, 0.5),
		},
		{
			name:  "partial occluders compound",
			light: lights.NewPositional(core.NewVec3(0, 0, 20), white),
			occluders: []material.Material{
				opaque.WithTransparency(0.5, 1.0),
				opaque.WithTransparency(0.5, 1.0),
			},
			expected: core.NewColor(0.25, 0.25, 0.25),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := scene.NewBuilder()
			target := b.AddSphere(core.NewVec3(0, 0, 0), 1, diffuseOnly, nil)
			for i, occluder := range tt.occluders {
				b.AddSphere(core.NewVec3(0, 0, 5+3*float64(i)), 1, occluder, nil)
			}
			b.AddLight(tt.light)
			s := b.Build()

			wi := NewWhittedIntegrator(DefaultConfig())
			got := wi.Shade(s, pathAt(target, core.NewVec3(0, 0, 1), core.NewVec3(0, 0, 1), 0))
			if !colorsClose(got, tt.expected, 1e-9) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestShade_ZeroDepthDisablesRecursion(t *testing.T) {
	mirror := material.NewPhong(core.Black, white, 0, 0, 1, 10).WithTransparency(1, 8.0)
	glass := material.NewPhong(core.Black, white, 0, 0, 1, 10).WithTransparency(0, 1.5)

	for name, mat := range map[string]material.Material{"mirror": mirror, "glass": glass} {
		t.Run(name, func(t *testing.T) {
			b := scene.NewBuilder().SetBackground(white, 1.0)
			sphere := b.AddSphere(core.NewVec3(0, 0, 0), 1, mat, nil)
			s := b.Build()

			wi := NewWhittedIntegrator(DefaultConfig())
			path := pathAt(sphere, core.NewVec3(0, 0, 1), core.NewVec3(0, 0, 1), 0)
			if got := wi.Shade(s, path); got != core.Black {
				t.Errorf("Depth 0: expected black, got %v", got)
			}

			path.Depth = 1
			if got := wi.Shade(s, path); got.IsBlack() {
				t.Error("Depth 1: expected background to be reflected or transmitted")
			}
		})
	}
}

func TestTransmission_TotalInternalReflection(t *testing.T) {
	glass := material.NewPhong(core.Black, white, 0, 0, 0, 1).WithTransparency(0, 1.5)
	b := scene.NewBuilder().SetBackground(white, 1.0)
	sphere := b.AddSphere(core.NewVec3(0, 0, 0), 1, glass, nil)
	s := b.Build()
	wi := NewWhittedIntegrator(DefaultConfig())

	inside := MediumState{Phase: Entering, Stack: NewMediumStack(Medium{ID: sphere.Info().ID, RefractionIndex: 1.5})}
	point := core.NewVec3(0, 0, 1)
	// Normal after the interior flip, facing back into the sphere
	normal := core.NewVec3(0, 0, -1)

	tests := []struct {
		name      string
		angle     float64 // Between the ray and the outward normal, degrees
		expectTIR bool
	}{
		{"normal incidence", 0, false},
		{"below critical angle", 30, false},
		{"above critical angle", 60, true},
		{"near grazing", 89, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rad := tt.angle * math.Pi / 180
			incident := core.NewVec3(math.Sin(rad), 0, math.Cos(rad))
			view := incident.Negate()

			path := Path{
				Incident: incident,
				Hit: geometry.Hit{
					Primitive:    sphere,
					Intersection: geometry.Intersection{T: 1, Point: point, Normal: point},
				},
				EtaI:   1.5,
				EtaT:   1.0,
				Medium: inside,
				Depth:  1,
			}
			fresnel := material.Reflectance(normal.Dot(view), 1.5)

			got := wi.transmission(s, path, normal, view, fresnel)
			if tt.expectTIR && got != core.Black {
				t.Errorf("Expected zero transmission past the critical angle, got %v", got)
			}
			if !tt.expectTIR && got.IsBlack() {
				t.Error("Expected the background to be transmitted")
			}
		})
	}
}

func TestTransmission_TriangleGuard(t *testing.T) {
	pane := material.NewPhong(core.Black, white, 0, 0, 0, 1).WithTransparency(0, 1.0)
	red := material.NewPhong(core.NewColor(1, 0, 0), white, 1, 0, 0, 1)

	b := scene.NewBuilder().SetBackground(white, 1.0)
	tri := b.AddTriangle(core.NewVec3(-1, -1, 0), core.NewVec3(1, -1, 0), core.NewVec3(0, 1, 0), pane, nil)
	s := b.Build()

	wi := NewWhittedIntegrator(DefaultConfig())
	point := core.NewVec3(0, 0, 0)
	normal := core.NewVec3(0, 0, 1)
	view := normal

	// Nothing behind the pane: the background shows through
	path := pathAt(tri, point, normal, 1)
	if got := wi.transmission(s, path, normal, view, 0); got != white {
		t.Errorf("Expected background through the pane, got %v", got)
	}

	// An object behind the pane that is not the innermost medium is skipped
	b = scene.NewBuilder().SetBackground(white, 1.0)
	tri = b.AddTriangle(core.NewVec3(-1, -1, 0), core.NewVec3(1, -1, 0), core.NewVec3(0, 1, 0), pane, nil)
	b.AddSphere(core.NewVec3(0, 0, -3), 1, red, nil)
	s = b.Build()

	path = pathAt(tri, point, normal, 1)
	if got := wi.transmission(s, path, normal, view, 0); got != core.Black {
		t.Errorf("Expected triangle transmission to be skipped, got %v", got)
	}
}

func TestRayColor_Miss(t *testing.T) {
	background := core.NewColor(0.1, 0.2, 0.3)
	s := scene.NewBuilder().SetBackground(background, 1.0).Build()
	wi := NewWhittedIntegrator(DefaultConfig())

	got := wi.RayColor(core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1)), s)
	if got != background {
		t.Errorf("Expected background %v, got %v", background, got)
	}
}

// A diffuse sphere lit head-on is brightest at the pole facing the light
func TestRayColor_DiffuseSphere(t *testing.T) {
	s := scene.NewDiffuseSphereScene()
	wi := NewWhittedIntegrator(DefaultConfig())
	eye := core.NewVec3(0, 0, 5)

	pole := wi.RayColor(core.NewRay(eye, core.NewVec3(0, 0, -1)), s)
	edge := wi.RayColor(core.NewRay(eye, core.NewVec3(0.95, 0, -5).Normalize()), s)

	if edge == s.Background {
		t.Fatal("Expected the edge ray to hit the sphere")
	}
	if brightness(pole) <= brightness(edge) {
		t.Errorf("Expected pole %v to be brighter than edge %v", pole, edge)
	}

	expected := core.NewColor(0.9, 0.4, 0.2)
	if !colorsClose(pole, expected, 1e-9) {
		t.Errorf("Expected pole to be ka+kd of the diffuse color %v, got %v", expected, pole)
	}
}

// A clear sphere in front of a red one shows the red sphere through it
func TestRayColor_Refraction(t *testing.T) {
	s := scene.NewRefractionScene()
	wi := NewWhittedIntegrator(DefaultConfig())
	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))

	got := wi.RayColor(ray, s)
	if got.R < 0.9 || got.R <= got.B || got.G != 0 {
		t.Errorf("Expected the red sphere to dominate through the glass, got %v", got)
	}

	// The same front sphere made opaque shows only its own blue
	front := s.Objects[0].Info()
	front.Material = front.Material.WithTransparency(1, 1.5)
	got = wi.RayColor(ray, s)
	if got.R != 0 || got.B == 0 {
		t.Errorf("Expected the opaque front sphere's own color, got %v", got)
	}
}

func TestRayColor_Deterministic(t *testing.T) {
	s := scene.NewNestedGlassScene()
	wi := NewWhittedIntegrator(DefaultConfig())

	rays := []core.Ray{
		core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1)),
		core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0.3, -0.2, -1).Normalize()),
		core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0.1, -0.6, -1).Normalize()),
	}

	for _, ray := range rays {
		first := wi.RayColor(ray, s)
		second := wi.RayColor(ray, s)
		if first != second {
			t.Errorf("Ray %v: %v then %v", ray.Direction, first, second)
		}
		for _, v := range []float64{first.R, first.G, first.B} {
			if math.IsNaN(v) || v < 0 || v > 1 {
				t.Errorf("Ray %v: channel out of range in %v", ray.Direction, first)
			}
		}
	}
}

func TestBaseColor_Texture(t *testing.T) {
	tex := material.NewImageTexture(2, 1, []uint8{255, 0, 0, 0, 0, 255})
	mat := material.NewPhong(white, white, 1, 0, 0, 1)

	b := scene.NewBuilder()
	sphere := b.AddSphere(core.NewVec3(0, 0, 0), 1, mat, tex)
	tri := b.AddTriangle(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), mat, tex)
	tri.SetTexCoords(core.NewVec2(1, 0), core.NewVec2(1, 0), core.NewVec2(1, 0))
	plain := b.AddTriangle(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), mat, tex)

	tests := []struct {
		name     string
		hit      geometry.Hit
		expected core.Color
	}{
		{
			// atan2(-1, 0) = -pi/2 maps to u = 0.25, the left texel
			name:     "sphere",
			hit:      geometry.Hit{Primitive: sphere, Intersection: geometry.Intersection{Normal: core.NewVec3(0, -1, 0)}},
			expected: core.NewColor(1, 0, 0),
		},
		{
			name:     "triangle with texture coordinates",
			hit:      geometry.Hit{Primitive: tri, Intersection: geometry.Intersection{Weights: [3]float64{0.2, 0.3, 0.5}}},
			expected: core.NewColor(0, 0, 1),
		},
		{
			name:     "triangle without texture coordinates",
			hit:      geometry.Hit{Primitive: plain, Intersection: geometry.Intersection{Weights: [3]float64{0.2, 0.3, 0.5}}},
			expected: white,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := baseColor(tt.hit); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestRayColor_ConcentricSpheresIndices(t *testing.T) {
	// Non-reflective clear spheres so the only recursion is the straight
	// transmitted ray along the axis
	clearGlass := func(eta float64) material.Material {
		return material.NewPhong(white, white, 0.1, 0.5, 0, 1).WithTransparency(0, eta)
	}
	const outerIndex, innerIndex, backgroundIndex = 1.1, 1.3, 1.0

	b := scene.NewBuilder().SetBackground(core.NewColor(0, 0, 0), backgroundIndex)
	outer := b.AddSphere(core.NewVec3(0, 0, 0), 2, clearGlass(outerIndex), nil)
	inner := b.AddSphere(core.NewVec3(0, 0, 0), 1, clearGlass(innerIndex), nil)
	s := b.Build()

	var paths []Path
	integ := NewWhittedIntegrator(DefaultConfig())
	integ.observe = func(p Path) { paths = append(paths, p) }
	integ.RayColor(core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1)), s)

	expected := []struct {
		surface    string
		id         int
		z          float64
		etaI, etaT float64
		stackDepth int
	}{
		{"outer front", outer.Info().ID, 2, backgroundIndex, outerIndex, 1},
		{"inner front", inner.Info().ID, 1, outerIndex, innerIndex, 2},
		{"inner back", inner.Info().ID, -1, innerIndex, outerIndex, 1},
		{"outer back", outer.Info().ID, -2, outerIndex, backgroundIndex, 0},
	}

	if len(paths) != len(expected) {
		t.Fatalf("Expected %d shaded surfaces, got %d", len(expected), len(paths))
	}
	for i, want := range expected {
		t.Run(want.surface, func(t *testing.T) {
			p := paths[i]
			if got := p.Hit.Primitive.Info().ID; got != want.id {
				t.Errorf("Expected object %d, got %d", want.id, got)
			}
			if math.Abs(p.Hit.Intersection.Point.Z-want.z) > 1e-6 {
				t.Errorf("Expected hit at z=%v, got %v", want.z, p.Hit.Intersection.Point.Z)
			}
			if math.Abs(p.EtaI-want.etaI) > 1e-12 || math.Abs(p.EtaT-want.etaT) > 1e-12 {
				t.Errorf("Expected indices (%v, %v), got (%v, %v)", want.etaI, want.etaT, p.EtaI, p.EtaT)
			}
			if got := p.Medium.Stack.Len(); got != want.stackDepth {
				t.Errorf("Expected stack depth %d, got %d", want.stackDepth, got)
			}
		})
	}
}

func TestRayColor_NestedGlassSceneLeavesThroughOuterShell(t *testing.T) {
	s := scene.NewNestedGlassScene()
	s.BackgroundIndex = 1.2 // distinct from the outer shell's 1.0

	var paths []Path
	integ := NewWhittedIntegrator(DefaultConfig())
	integ.observe = func(p Path) { paths = append(paths, p) }
	integ.RayColor(core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1)), s)

	outerID := s.Objects[0].Info().ID
	innerID := s.Objects[1].Info().ID

	// Along the axis: the inner sphere's far side must hand the ray back to
	// the outer shell's index, and only the outer far side reaches background
	var sawInnerExit, sawOuterExit bool
	for _, p := range paths {
		id := p.Hit.Primitive.Info().ID
		onAxis := math.Abs(p.Hit.Intersection.Point.X) < 1e-9 && math.Abs(p.Hit.Intersection.Point.Y) < 1e-9
		if !onAxis || p.Incident.Z >= 0 {
			continue
		}
		switch {
		case id == innerID && math.Abs(p.Hit.Intersection.Point.Z+1) < 1e-6:
			sawInnerExit = true
			if p.EtaT != 1.0 {
				t.Errorf("Leaving the inner sphere should transmit into the shell (1.0), got %v", p.EtaT)
			}
		case id == outerID && math.Abs(p.Hit.Intersection.Point.Z+2) < 1e-6:
			sawOuterExit = true
			if !sawInnerExit {
				t.Error("Reached the outer far side before leaving the inner sphere")
			}
			if p.EtaT != s.BackgroundIndex {
				t.Errorf("Leaving the shell should transmit into background %v, got %v", s.BackgroundIndex, p.EtaT)
			}
		}
	}
	if !sawInnerExit || !sawOuterExit {
		t.Errorf("Expected both far-side crossings, inner=%v outer=%v", sawInnerExit, sawOuterExit)
	}
}
