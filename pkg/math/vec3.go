// Package math provides the vector type used by the scattering integrator.
package math

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a 3D vector. It doubles as an RGB triple for radiance and
// per-channel coefficients.
type Vec3 struct {
	X, Y, Z float64
}

// Splat returns a vector with every component set to s.
func Splat(s float64) Vec3 {
	return Vec3{s, s, s}
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v * scalar.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Mul returns the per-component product.
func (v Vec3) Mul(other Vec3) Vec3 {
	return Vec3{v.X * other.X, v.Y * other.Y, v.Z * other.Z}
}

// MulAdd returns v + other*s.
func (v Vec3) MulAdd(other Vec3, s float64) Vec3 {
	return Vec3{v.X + other.X*s, v.Y + other.Y*s, v.Z + other.Z*s}
}

// Neg returns -v.
func (v Vec3) Neg() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

// Exp returns e raised to each component.
func (v Vec3) Exp() Vec3 {
	return Vec3{math.Exp(v.X), math.Exp(v.Y), math.Exp(v.Z)}
}

// Dot returns the dot product.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

// Squared lengths outside this range lose precision or overflow, so
// Length and Normalize rescale by the largest component first.
const (
	minSafeLengthSq = 1e-280
	maxSafeLengthSq = 1e280
)

// Length returns the magnitude.
func (v Vec3) Length() float64 {
	sq := v.Dot(v)
	if sq > minSafeLengthSq && sq < maxSafeLengthSq {
		return math.Sqrt(sq)
	}
	u, m := v.rescale()
	if m == 0 || !isFinite(m) {
		return m
	}
	return m * math.Sqrt(u.Dot(u))
}

// Normalize returns a unit vector, or the zero vector if v has no length
// or is not finite.
func (v Vec3) Normalize() Vec3 {
	sq := v.Dot(v)
	if sq > minSafeLengthSq && sq < maxSafeLengthSq {
		l := math.Sqrt(sq)
		return Vec3{v.X / l, v.Y / l, v.Z / l}
	}
	u, m := v.rescale()
	if m == 0 || !isFinite(m) {
		return Vec3{}
	}
	l := math.Sqrt(u.Dot(u))
	return Vec3{u.X / l, u.Y / l, u.Z / l}
}

// rescale divides v by its largest absolute component m, returning the
// result and m. The result is only meaningful for finite non-zero m.
func (v Vec3) rescale() (Vec3, float64) {
	m := math.Max(math.Abs(v.X), math.Max(math.Abs(v.Y), math.Abs(v.Z)))
	if m == 0 || !isFinite(m) {
		return v, m
	}
	return Vec3{v.X / m, v.Y / m, v.Z / m}, m
}

// IsZero reports whether all components are zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vec3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

// MaxComponent returns the largest component.
func (v Vec3) MaxComponent() float64 {
	return math.Max(v.X, math.Max(v.Y, v.Z))
}

// MinComponent returns the smallest component.
func (v Vec3) MinComponent() float64 {
	return math.Min(v.X, math.Min(v.Y, v.Z))
}

// Mgl converts to a mathgl vector.
func (v Vec3) Mgl() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// FromMgl converts a mathgl vector.
func FromMgl(v mgl64.Vec3) Vec3 {
	return Vec3{v[0], v[1], v[2]}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
