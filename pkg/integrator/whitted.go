package integrator

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// Config holds the recursion budget and the self-intersection bias
type Config struct {
	MaxDepth int     // Recursion budget for reflection and transmission rays
	Epsilon  float64 // Minimum t accepted for shadow, reflection and transmission rays
}

// DefaultConfig returns a depth of 4 and an epsilon of 1e-3
func DefaultConfig() Config {
	return Config{MaxDepth: 4, Epsilon: 1e-3}
}

// WhittedIntegrator implements recursive Whitted ray tracing: Phong local
// illumination with shadows, plus Fresnel weighted reflection and refraction
type WhittedIntegrator struct {
	config Config

	// observe, when set, receives every Path before it is shaded
	observe func(Path)
}

// NewWhittedIntegrator creates a new Whitted integrator
func NewWhittedIntegrator(config Config) *WhittedIntegrator {
	return &WhittedIntegrator{config: config}
}

// Path is the state of one recursive call: the surface that was struck, how
// it was reached, and the budget left.
type Path struct {
	Incident core.Vec3 // Unit direction of the ray that produced Hit
	Hit      geometry.Hit
	EtaI     float64 // Refraction index on the incident side
	EtaT     float64 // Refraction index on the transmitted side
	Medium   MediumState
	Depth    int
}

// RayColor traces a primary ray. The nearest candidate with t > 0 is shaded;
// a miss returns the background color.
func (wi *WhittedIntegrator) RayColor(ray core.Ray, s *scene.Scene) core.Color {
	hit, ok := geometry.Trace(s.Objects, ray, 0)
	if !ok {
		return s.Background
	}

	medium, etaI, etaT := InitialMediumState().Transition(nil, hit.Primitive.Info(), s.BackgroundIndex, s.BackgroundIndex)
	return wi.Shade(s, Path{
		Incident: ray.Direction,
		Hit:      hit,
		EtaI:     etaI,
		EtaT:     etaT,
		Medium:   medium,
		Depth:    wi.config.MaxDepth,
	})
}

// Shade returns ambient + local illumination + transmission + reflection for
// the surface in p, clamped to [0, 1]
func (wi *WhittedIntegrator) Shade(s *scene.Scene, p Path) core.Color {
	if wi.observe != nil {
		wi.observe(p)
	}
	obj := p.Hit.Primitive.Info()
	mat := obj.Material
	point := p.Hit.Intersection.Point
	view := p.Incident.Negate()
	diffuse := baseColor(p.Hit)

	// Interior sphere hits see the outward normal from behind
	normal := p.Hit.Intersection.Normal
	if _, isSphere := p.Hit.Primitive.(*geometry.Sphere); isSphere && normal.Dot(view) < 0 {
		normal = normal.Negate()
	}

	color := diffuse.Multiply(mat.Ka)
	color = color.Add(wi.localIllumination(s, obj, point, normal, view, diffuse))

	if p.Depth <= 0 {
		return color
	}

	fresnel := material.Reflectance(normal.Dot(view), mat.RefractionIndex)
	color = color.Add(wi.transmission(s, p, normal, view, fresnel))
	color = color.Add(wi.reflection(s, p, normal, view, fresnel))
	return color
}

// localIllumination sums the Phong diffuse and specular terms of every light,
// each scaled by the light's shadow multiplier
func (wi *WhittedIntegrator) localIllumination(s *scene.Scene, obj *geometry.ObjectInfo, point, normal, view core.Vec3, diffuse core.Color) core.Color {
	mat := obj.Material
	total := core.Black

	for _, light := range s.Lights {
		sample := light.Sample(point)

		shadow := wi.shadowMultiplier(s, obj, core.NewRay(point, sample.Direction), sample.Distance)
		if shadow == 0 {
			continue
		}

		nDotL := math.Max(0, normal.Dot(sample.Direction))
		halfway := sample.Direction.Add(view).Normalize()
		nDotH := math.Max(0, normal.Dot(halfway))

		term := diffuse.Multiply(mat.Kd * nDotL).
			Add(mat.Specular.Multiply(mat.Ks * math.Pow(nDotH, mat.N)))
		total = total.Add(term.MultiplyColor(sample.Color).Multiply(shadow))
	}

	return total
}

// shadowMultiplier attenuates by (1 - opacity) for every object other than
// self with a candidate in (epsilon, maxDistance) along the shadow ray
func (wi *WhittedIntegrator) shadowMultiplier(s *scene.Scene, self *geometry.ObjectInfo, ray core.Ray, maxDistance float64) float64 {
	multiplier := 1.0
	for _, obj := range s.Objects {
		info := obj.Info()
		if info.ID == self.ID {
			continue
		}
		for _, isect := range geometry.Intersect(obj, ray) {
			if isect.T > wi.config.Epsilon && isect.T < maxDistance {
				multiplier *= 1 - info.Material.Opacity
				break
			}
		}
		if multiplier == 0 {
			return 0
		}
	}
	return multiplier
}

// transmission traces the refracted ray and weights it by (1-F)(1-opacity)
func (wi *WhittedIntegrator) transmission(s *scene.Scene, p Path, normal, view core.Vec3, fresnel float64) core.Color {
	mat := p.Hit.Primitive.Info().Material
	if !mat.IsTransparent() {
		return core.Black
	}
	weight := (1 - fresnel) * (1 - mat.Opacity)
	if weight == 0 {
		return core.Black
	}

	cosI := normal.Dot(view)
	if critical, ok := material.CriticalAngle(p.EtaI, p.EtaT); ok {
		incidence := math.Acos(math.Max(-1, math.Min(1, cosI)))
		if incidence > critical && incidence < math.Pi/2 {
			return core.Black
		}
	}

	direction, ok := material.Refract(view, normal, p.EtaI/p.EtaT)
	if !ok {
		return core.Black
	}
	direction = direction.Normalize()

	next, ok := geometry.Trace(s.Objects, core.NewRay(p.Hit.Intersection.Point, direction), wi.config.Epsilon)
	if !ok {
		return s.Background.Multiply(weight)
	}

	// Adjoining triangles share edges; only follow a triangle's transmitted
	// ray when it lands on the innermost medium
	if _, isTriangle := p.Hit.Primitive.(*geometry.Triangle); isTriangle {
		top, ok := p.Medium.Stack.Top()
		if !ok || top.ID != next.Primitive.Info().ID {
			return core.Black
		}
	}

	return wi.follow(s, p, direction, next).Multiply(weight)
}

// reflection traces the mirror ray and weights it by F
func (wi *WhittedIntegrator) reflection(s *scene.Scene, p Path, normal, view core.Vec3, fresnel float64) core.Color {
	if fresnel == 0 || p.Hit.Primitive.Info().Material.Ks <= 0 {
		return core.Black
	}

	direction := material.Reflect(view, normal).Normalize()
	next, ok := geometry.Trace(s.Objects, core.NewRay(p.Hit.Intersection.Point, direction), wi.config.Epsilon)
	if !ok {
		return s.Background.Multiply(fresnel)
	}

	return wi.follow(s, p, direction, next).Multiply(fresnel)
}

// follow crosses into next with its own copy of the medium state and shades it
func (wi *WhittedIntegrator) follow(s *scene.Scene, p Path, direction core.Vec3, next geometry.Hit) core.Color {
	medium, etaI, etaT := p.Medium.Transition(p.Hit.Primitive.Info(), next.Primitive.Info(), p.EtaT, s.BackgroundIndex)
	return wi.Shade(s, Path{
		Incident: direction,
		Hit:      next,
		EtaI:     etaI,
		EtaT:     etaT,
		Medium:   medium,
		Depth:    p.Depth - 1,
	})
}

// baseColor is the diffuse color, or the nearest texel when the object is textured
func baseColor(hit geometry.Hit) core.Color {
	info := hit.Primitive.Info()
	if info.Texture == nil {
		return info.Material.Diffuse
	}

	switch shape := hit.Primitive.(type) {
	case *geometry.Sphere:
		return material.Sample(info.Texture, shape.UV(hit.Intersection.Normal))
	case *geometry.Triangle:
		if shape.HasTexCoords {
			return material.Sample(info.Texture, shape.UV(hit.Intersection.Weights))
		}
	}
	return info.Material.Diffuse
}
