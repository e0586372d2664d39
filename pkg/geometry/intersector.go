package geometry

import "github.com/df07/go-whitted-raytracer/pkg/core"

// Intersect returns every candidate intersection of the ray with p along the
// infinite line. Callers filter by t.
func Intersect(p Primitive, ray core.Ray) []Intersection {
	switch shape := p.(type) {
	case *Sphere:
		return shape.Intersect(ray)
	case *Triangle:
		if hit, ok := shape.Intersect(ray); ok {
			return []Intersection{hit}
		}
	}
	return nil
}

// IntersectAll tests the ray against every primitive. ray.Direction must be
// unit length.
func IntersectAll(primitives []Primitive, ray core.Ray) []Hit {
	var hits []Hit
	for _, p := range primitives {
		for _, isect := range Intersect(p, ray) {
			hits = append(hits, Hit{Primitive: p, Intersection: isect})
		}
	}
	return hits
}

// Nearest returns the hit with the smallest t strictly greater than tMin
func Nearest(hits []Hit, tMin float64) (Hit, bool) {
	var closest Hit
	found := false
	for _, hit := range hits {
		if hit.Intersection.T <= tMin {
			continue
		}
		if !found || hit.Intersection.T < closest.Intersection.T {
			closest = hit
			found = true
		}
	}
	return closest, found
}

// Trace is IntersectAll followed by Nearest
func Trace(primitives []Primitive, ray core.Ray, tMin float64) (Hit, bool) {
	return Nearest(IntersectAll(primitives, ray), tMin)
}
