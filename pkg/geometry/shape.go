package geometry

import "github.com/df07/go-whitted-raytracer/pkg/core"

// Intersection contains information about a ray-object intersection
type Intersection struct {
	T      float64   // Parameter t along the ray, may be negative
	Point  core.Vec3 // Point of intersection
	Normal core.Vec3 // Unit shading normal

	// Weights are the barycentric weights (a, b, g) of Point for triangle
	// hits. They are zero for spheres.
	Weights [3]float64
}

// Hit pairs a candidate intersection with the primitive that produced it
type Hit struct {
	Primitive    Primitive
	Intersection Intersection
}
