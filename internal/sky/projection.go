// Package sky renders images of the sky dome with a Scatterer.
package sky

import (
	"fmt"
	gomath "math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/midgard-sky/pkg/atmosphere"
	"github.com/Faultbox/midgard-sky/pkg/geom"
	"github.com/Faultbox/midgard-sky/pkg/math"
)

// Projection names.
const (
	Fisheye     = "fisheye"
	Panorama    = "panorama"
	Perspective = "perspective"
)

// maxPitch keeps the perspective look-at away from the up vector.
const maxPitch = 89.0

// Projection maps a pixel center to a local view direction (Y up, +Z north).
// ok is false for pixels that show no sky, such as the corners of a fisheye.
type Projection interface {
	Direction(x, y float64) (dir math.Vec3, ok bool)
}

// Camera aims the perspective projection, angles in degrees.
type Camera struct {
	Yaw   float64
	Pitch float64
	FOV   float64
}

// NewProjection builds a projection by name for a width x height image.
func NewProjection(name string, width, height int, cam Camera) (Projection, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", width, height)
	}
	w, h := float64(width), float64(height)

	switch strings.ToLower(name) {
	case Fisheye:
		return fisheye{w: w, h: h}, nil
	case Panorama:
		return panorama{w: w, h: h}, nil
	case Perspective:
		if cam.FOV <= 0 || cam.FOV >= 180 {
			return nil, fmt.Errorf("invalid field of view %v", cam.FOV)
		}
		return newPerspective(w, h, cam), nil
	default:
		return nil, fmt.Errorf("unknown projection %q", name)
	}
}

// fisheye is an equidistant dome: zenith in the center, horizon on the
// inscribed circle, north at the top.
type fisheye struct {
	w, h float64
}

func (f fisheye) Direction(x, y float64) (math.Vec3, bool) {
	size := gomath.Min(f.w, f.h)
	nx := (2*x - f.w) / size
	ny := (f.h - 2*y) / size
	r := gomath.Hypot(nx, ny)
	if r > 1 {
		return math.Vec3{}, false
	}
	if r == 0 {
		return math.Vec3{Y: 1}, true
	}
	theta := r * gomath.Pi / 2
	s := gomath.Sin(theta) / r
	return math.Vec3{X: nx * s, Y: gomath.Cos(theta), Z: ny * s}, true
}

// panorama is an equirectangular map: azimuth 0..360 across, elevation
// +90..-90 down.
type panorama struct {
	w, h float64
}

func (p panorama) Direction(x, y float64) (math.Vec3, bool) {
	azimuth := x / p.w * 360
	elevation := 90 - y/p.h*180
	return atmosphere.SunDirection(azimuth, elevation), true
}

// perspective is a pinhole camera at the eye.
type perspective struct {
	w, h        float64
	invViewProj mgl64.Mat4
}

func newPerspective(w, h float64, cam Camera) perspective {
	pitch := gomath.Max(-maxPitch, gomath.Min(maxPitch, cam.Pitch))
	forward := atmosphere.SunDirection(cam.Yaw, pitch)

	view := mgl64.LookAtV(mgl64.Vec3{}, forward.Mgl(), mgl64.Vec3{0, 1, 0})
	proj := mgl64.Perspective(mgl64.DegToRad(cam.FOV), w/h, 0.1, 100)
	return perspective{w: w, h: h, invViewProj: proj.Mul4(view).Inv()}
}

func (p perspective) Direction(x, y float64) (math.Vec3, bool) {
	ray := geom.ScreenToRay(x, y, p.w, p.h, p.invViewProj)
	return ray.Direction, !ray.Direction.IsZero()
}
