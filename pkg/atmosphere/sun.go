package atmosphere

import (
	gomath "math"

	"github.com/Faultbox/midgard-sky/pkg/math"
)

// SunDirection converts azimuth/elevation angles in degrees to a unit
// direction in the local frame (Y up).
// Azimuth is rotation around Y starting at +Z toward +X, elevation is the
// angle above the horizon (negative below).
func SunDirection(azimuth, elevation float64) math.Vec3 {
	azRad := azimuth * gomath.Pi / 180.0
	elRad := elevation * gomath.Pi / 180.0

	// Spherical to Cartesian conversion
	return math.Vec3{
		X: gomath.Cos(elRad) * gomath.Sin(azRad),
		Y: gomath.Sin(elRad),
		Z: gomath.Cos(elRad) * gomath.Cos(azRad),
	}
}

// Angles is the inverse of SunDirection.
func Angles(dir math.Vec3) (azimuth, elevation float64) {
	dir = dir.Normalize()
	elevation = gomath.Asin(clampCos(dir.Y)) * 180.0 / gomath.Pi
	azimuth = gomath.Atan2(dir.X, dir.Z) * 180.0 / gomath.Pi
	if azimuth < 0 {
		azimuth += 360
	}
	return azimuth, elevation
}

// Frame is an orthonormal tangent basis at a point on or above the planet.
type Frame struct {
	East  math.Vec3
	Up    math.Vec3
	North math.Vec3
}

// NewFrame builds a tangent basis whose Up axis is up. For up along +Y the
// frame is the identity.
func NewFrame(up math.Vec3) Frame {
	up = up.Normalize()
	if up.IsZero() {
		up = math.Vec3{Y: 1}
	}
	ref := math.Vec3{Z: 1}
	if gomath.Abs(up.Dot(ref)) > 0.999 {
		ref = math.Vec3{X: -1}
	}
	east := up.Cross(ref).Normalize()
	north := east.Cross(up)
	return Frame{East: east, Up: up, North: north}
}

// FrameAt returns the tangent basis at the eye position of p.
func FrameAt(p Params) Frame {
	return NewFrame(p.RayOrigin)
}

// ToWorld maps a local (east, up, north) direction to planet space.
func (f Frame) ToWorld(local math.Vec3) math.Vec3 {
	return f.East.Scale(local.X).MulAdd(f.Up, local.Y).MulAdd(f.North, local.Z)
}

// ToLocal maps a planet-space direction into the frame.
func (f Frame) ToLocal(world math.Vec3) math.Vec3 {
	return math.Vec3{X: world.Dot(f.East), Y: world.Dot(f.Up), Z: world.Dot(f.North)}
}
