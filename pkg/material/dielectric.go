package material

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Reflectance calculates the Fresnel reflectance of a surface with the given
// refraction index against vacuum using Schlick's approximation. cosine is
// the cosine of the incidence angle and is clamped to [0, 1].
func Reflectance(cosine, refractionIndex float64) float64 {
	cosine = math.Max(0, math.Min(1, cosine))
	r0 := (refractionIndex - 1) / (refractionIndex + 1)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}

// Reflect mirrors i about n. Both point away from the surface: r = 2(n·i)n - i
func Reflect(i, n core.Vec3) core.Vec3 {
	return n.Multiply(2 * n.Dot(i)).Subtract(i)
}

// Refract bends i (unit, pointing away from the surface on the incident side)
// through a boundary with unit normal n and relative index eta = etaI/etaT.
// It reports false when the radicand is negative, i.e. the ray is totally
// internally reflected.
func Refract(i, n core.Vec3, eta float64) (core.Vec3, bool) {
	cosI := n.Dot(i)
	k := 1 - eta*eta*(1-cosI*cosI)
	if k < 0 {
		return core.Vec3{}, false
	}
	t := n.Negate().Multiply(math.Sqrt(k)).Add(n.Multiply(cosI).Subtract(i).Multiply(eta))
	return t, true
}

// CriticalAngle returns the angle above which light travelling from a medium
// of index etaI into etaT is totally internally reflected. The boolean is
// false when etaI <= etaT and no critical angle exists.
func CriticalAngle(etaI, etaT float64) (float64, bool) {
	if etaI <= etaT {
		return 0, false
	}
	return math.Asin(etaT / etaI), true
}
