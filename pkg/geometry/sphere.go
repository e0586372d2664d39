package geometry

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center core.Vec3
	Radius float64
	Object *ObjectInfo
}

// NewSphere creates a new sphere and tags info as a sphere
func NewSphere(center core.Vec3, radius float64, info *ObjectInfo) *Sphere {
	info.Kind = KindSphere
	return &Sphere{
		Center: center,
		Radius: radius,
		Object: info,
	}
}

func (s *Sphere) Info() *ObjectInfo { return s.Object }
func (s *Sphere) primitive()        {}

// Intersect returns every root of the ray/sphere quadratic. The ray
// direction must be unit length. Roots are not filtered by sign.
func (s *Sphere) Intersect(ray core.Ray) []Intersection {
	// Vector from sphere center to ray origin
	offset := ray.Origin.Subtract(s.Center)

	// With |D| = 1 the quadratic is t² + Bt + C = 0
	b := 2 * ray.Direction.Dot(offset)
	c := offset.Dot(offset) - s.Radius*s.Radius

	discriminant := b*b - 4*c
	if discriminant < 0 {
		return nil
	}

	if discriminant == 0 {
		return []Intersection{s.intersectionAt(ray, -b/2)}
	}

	sqrtD := math.Sqrt(discriminant)
	return []Intersection{
		s.intersectionAt(ray, (-b-sqrtD)/2),
		s.intersectionAt(ray, (-b+sqrtD)/2),
	}
}

func (s *Sphere) intersectionAt(ray core.Ray, t float64) Intersection {
	point := ray.At(t)
	return Intersection{
		T:      t,
		Point:  point,
		Normal: point.Subtract(s.Center).Multiply(1.0 / s.Radius),
	}
}

// UV maps an outward unit normal to spherical texture coordinates:
// v = acos(n.z)/π and u remaps atan2(n.y, n.x) from [-π, π] to [0, 1].
func (s *Sphere) UV(normal core.Vec3) core.Vec2 {
	v := math.Acos(math.Max(-1, math.Min(1, normal.Z))) / math.Pi
	u := (math.Atan2(normal.Y, normal.X) + math.Pi) / (2 * math.Pi)
	return core.NewVec2(u, v)
}
