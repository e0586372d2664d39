package renderer

import (
	"fmt"
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// viewDistance is the distance from the eye to the viewing window. Any
// positive value gives the same rays; only the window size scales with it.
const viewDistance = 5.0

// Camera maps pixel coordinates to primary rays through a viewing window
// placed in front of the eye
type Camera struct {
	eye       core.Vec3
	upperLeft core.Vec3
	deltaH    core.Vec3 // Step between horizontally adjacent pixel centers
	deltaV    core.Vec3 // Step between vertically adjacent pixel centers
	width     int
	height    int
}

// NewCamera builds the viewing window for a viewport. The window is centered
// on the view direction at viewDistance, with width 2·d·tan(hfov/2) and the
// image's aspect ratio. Pixel (0, 0) is the upper-left corner.
func NewCamera(vp scene.Viewport) (*Camera, error) {
	if vp.Width < 2 || vp.Height < 2 {
		return nil, fmt.Errorf("image size %dx%d must be at least 2x2", vp.Width, vp.Height)
	}
	if vp.HFov <= 0 || vp.HFov >= 180 {
		return nil, fmt.Errorf("field of view %v must be in (0, 180)", vp.HFov)
	}

	n := vp.ViewDir.Normalize()
	u := n.Cross(vp.UpDir).Normalize()
	if u.LengthSquared() == 0 {
		return nil, fmt.Errorf("view direction %v and up direction %v are parallel or zero", vp.ViewDir, vp.UpDir)
	}
	v := u.Cross(n)

	aspect := float64(vp.Width) / float64(vp.Height)
	windowWidth := 2 * viewDistance * math.Tan(vp.HFov*math.Pi/360)
	windowHeight := windowWidth / aspect

	center := vp.Eye.Add(n.Multiply(viewDistance))
	halfU := u.Multiply(windowWidth / 2)
	halfV := v.Multiply(windowHeight / 2)

	ul := center.Subtract(halfU).Add(halfV)
	ur := center.Add(halfU).Add(halfV)
	ll := center.Subtract(halfU).Subtract(halfV)

	return &Camera{
		eye:       vp.Eye,
		upperLeft: ul,
		deltaH:    ur.Subtract(ul).Multiply(1 / float64(vp.Width-1)),
		deltaV:    ll.Subtract(ul).Multiply(1 / float64(vp.Height-1)),
		width:     vp.Width,
		height:    vp.Height,
	}, nil
}

// GetRay returns the normalized primary ray from the eye through pixel (i, j)
func (c *Camera) GetRay(i, j int) core.Ray {
	point := c.upperLeft.
		Add(c.deltaH.Multiply(float64(i))).
		Add(c.deltaV.Multiply(float64(j)))
	return core.NewRay(c.eye, point.Subtract(c.eye).Normalize())
}

// Resolution returns the image size in pixels
func (c *Camera) Resolution() (width, height int) {
	return c.width, c.height
}
