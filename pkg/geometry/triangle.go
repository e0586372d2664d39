package geometry

import "github.com/df07/go-whitted-raytracer/pkg/core"

// Triangle represents a single triangle defined by three vertices
type Triangle struct {
	V [3]core.Vec3

	// VertexNormals are interpolated when Smooth is set
	VertexNormals [3]core.Vec3
	Smooth        bool

	// TexCoords are blended with the barycentric weights when HasTexCoords is set
	TexCoords    [3]core.Vec2
	HasTexCoords bool

	Object *ObjectInfo

	edge1, edge2 core.Vec3
	normal       core.Vec3 // e1 × e2, not normalized
	unitNormal   core.Vec3
	d11, d12     float64
	d22, det     float64
}

// NewTriangle creates a flat-shaded triangle from three vertices and tags info as a triangle
func NewTriangle(v0, v1, v2 core.Vec3, info *ObjectInfo) *Triangle {
	info.Kind = KindTriangle
	t := &Triangle{
		V:      [3]core.Vec3{v0, v1, v2},
		Object: info,
	}

	// Precompute the plane and the 2x2 barycentric system, neither changes per ray
	t.edge1 = v1.Subtract(v0)
	t.edge2 = v2.Subtract(v0)
	t.normal = t.edge1.Cross(t.edge2)
	t.unitNormal = t.normal.Normalize()
	t.d11 = t.edge1.Dot(t.edge1)
	t.d12 = t.edge1.Dot(t.edge2)
	t.d22 = t.edge2.Dot(t.edge2)
	t.det = t.d11*t.d22 - t.d12*t.d12

	return t
}

// SetVertexNormals enables smooth shading with the given per-vertex normals
func (t *Triangle) SetVertexNormals(n0, n1, n2 core.Vec3) {
	t.VertexNormals = [3]core.Vec3{n0, n1, n2}
	t.Smooth = true
}

// SetTexCoords attaches per-vertex texture coordinates
func (t *Triangle) SetTexCoords(uv0, uv1, uv2 core.Vec2) {
	t.TexCoords = [3]core.Vec2{uv0, uv1, uv2}
	t.HasTexCoords = true
}

func (t *Triangle) Info() *ObjectInfo { return t.Object }
func (t *Triangle) primitive()        {}

// FaceNormal returns the unnormalized plane normal e1 × e2
func (t *Triangle) FaceNormal() core.Vec3 {
	return t.normal
}

// Intersect solves the ray/plane equation and then the barycentric 2x2
// system. Points on an edge or a vertex are reported as a miss: every weight
// must lie strictly inside (0, 1).
func (t *Triangle) Intersect(ray core.Ray) (Intersection, bool) {
	denom := t.normal.Dot(ray.Direction)
	if denom == 0 {
		// Ray is parallel to the triangle's plane
		return Intersection{}, false
	}

	// Plane: n·x + D = 0 with D = -n·v0
	planeD := -t.normal.Dot(t.V[0])
	dist := -(t.normal.Dot(ray.Origin) + planeD) / denom
	point := ray.At(dist)

	if t.det == 0 {
		// Degenerate triangle
		return Intersection{}, false
	}

	ep := point.Subtract(t.V[0])
	d1p := t.edge1.Dot(ep)
	d2p := t.edge2.Dot(ep)

	b := (t.d22*d1p - t.d12*d2p) / t.det
	g := (t.d11*d2p - t.d12*d1p) / t.det
	a := 1 - b - g

	if !insideOpenUnit(a) || !insideOpenUnit(b) || !insideOpenUnit(g) {
		return Intersection{}, false
	}

	return Intersection{
		T:       dist,
		Point:   point,
		Normal:  t.shadingNormal(a, b, g),
		Weights: [3]float64{a, b, g},
	}, true
}

func (t *Triangle) shadingNormal(a, b, g float64) core.Vec3 {
	if !t.Smooth {
		return t.unitNormal
	}
	return t.VertexNormals[0].Multiply(a).
		Add(t.VertexNormals[1].Multiply(b)).
		Add(t.VertexNormals[2].Multiply(g)).
		Normalize()
}

// UV blends the vertex texture coordinates with barycentric weights
func (t *Triangle) UV(weights [3]float64) core.Vec2 {
	return t.TexCoords[0].Multiply(weights[0]).
		Add(t.TexCoords[1].Multiply(weights[1])).
		Add(t.TexCoords[2].Multiply(weights[2]))
}

func insideOpenUnit(x float64) bool {
	return x > 0 && x < 1
}
