// Package geom provides rays, ray-sphere intersection and screen unprojection.
package geom

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/midgard-sky/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) math.Vec3 {
	return r.Origin.MulAdd(r.Direction, t)
}

// IntersectSphere intersects the ray's infinite line with a sphere.
// Returns the entry and exit distances (tNear <= tFar) and whether the line
// touches the sphere at all. Distances may be negative when the sphere lies
// partly or wholly behind the origin.
func (r Ray) IntersectSphere(center math.Vec3, radius float64) (tNear, tFar float64, ok bool) {
	// |O + tD - C|^2 = R^2 with |D| = 1:
	// t^2 + 2b t + c = 0, b = D.(O-C), c = |O-C|^2 - R^2
	oc := r.Origin.Sub(center)
	b := r.Direction.Dot(oc)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, 0, false
	}
	sq := gomath.Sqrt(disc)

	// Avoid cancellation in -b +- sq for large radii
	var q float64
	if b > 0 {
		q = -b - sq
	} else {
		q = -b + sq
	}
	if q == 0 {
		return 0, 0, true // origin on the sphere and tangent to it
	}
	t0, t1 := q, c/q
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	return t0, t1, true
}

// ScreenToRay converts screen coordinates to a world-space ray.
// screenX, screenY are pixel coordinates, viewportW/H are viewport dimensions.
// invViewProj is the inverse of the view-projection matrix.
func ScreenToRay(screenX, screenY, viewportW, viewportH float64, invViewProj mgl64.Mat4) Ray {
	// Convert screen coords to normalized device coords (-1 to 1)
	ndcX := 2.0*screenX/viewportW - 1.0
	ndcY := 1.0 - 2.0*screenY/viewportH // Flip Y

	nearWorld := unproject(invViewProj, mgl64.Vec4{ndcX, ndcY, -1.0, 1.0})
	farWorld := unproject(invViewProj, mgl64.Vec4{ndcX, ndcY, 1.0, 1.0})

	return Ray{
		Origin:    math.FromMgl(nearWorld),
		Direction: math.FromMgl(farWorld.Sub(nearWorld)).Normalize(),
	}
}

func unproject(inv mgl64.Mat4, ndc mgl64.Vec4) mgl64.Vec3 {
	w := inv.Mul4x1(ndc)
	// Perspective divide
	if w[3] != 0 {
		return w.Vec3().Mul(1 / w[3])
	}
	return w.Vec3()
}
