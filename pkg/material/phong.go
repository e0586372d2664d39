package material

import "github.com/df07/go-whitted-raytracer/pkg/core"

// Material describes a surface under the Phong illumination model extended
// with transparency.
type Material struct {
	Diffuse  core.Color // Od, base reflectance
	Specular core.Color // Os, highlight color
	Ka       float64    // Ambient weight
	Kd       float64    // Diffuse weight
	Ks       float64    // Specular weight, also gates reflection rays
	N        float64    // Specular exponent

	// Opacity is 1 for fully opaque surfaces; transmission is traced when it is below 1.
	Opacity float64
	// RefractionIndex of the material, 1.0 for vacuum-like media.
	RefractionIndex float64
}

// NewPhong creates an opaque material with refraction index 1
func NewPhong(diffuse, specular core.Color, ka, kd, ks, n float64) Material {
	return Material{
		Diffuse:         diffuse,
		Specular:        specular,
		Ka:              ka,
		Kd:              kd,
		Ks:              ks,
		N:               n,
		Opacity:         1,
		RefractionIndex: 1,
	}
}

// WithTransparency returns a copy of the material with the given opacity and refraction index
func (m Material) WithTransparency(opacity, refractionIndex float64) Material {
	m.Opacity = opacity
	m.RefractionIndex = refractionIndex
	return m
}

// IsTransparent reports whether transmission rays should be traced through the material
func (m Material) IsTransparent() bool {
	return m.Opacity < 1 && m.RefractionIndex > 0
}
