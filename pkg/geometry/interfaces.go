package geometry

import "github.com/df07/go-whitted-raytracer/pkg/material"

// Kind tags the concrete primitive behind an ObjectInfo
type Kind int

const (
	KindSphere Kind = iota
	KindTriangle
)

func (k Kind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindTriangle:
		return "triangle"
	default:
		return "unknown"
	}
}

// ObjectInfo is the identity and surface description shared by every primitive
type ObjectInfo struct {
	ID       int // Unique across all objects in a scene, assigned in creation order
	Kind     Kind
	Material material.Material
	Texture  material.Texture // nil when the object uses its constant diffuse color
}

// Primitive is the closed set of shapes the tracer understands: *Sphere and
// *Triangle. Callers dispatch on the concrete type with a type switch.
type Primitive interface {
	Info() *ObjectInfo
	primitive()
}
