package atmosphere

import (
	gomath "math"

	"github.com/Faultbox/midgard-sky/pkg/math"
)

// Expose maps unbounded radiance into [0, 1) with 1 - exp(-exposure*radiance).
// Radiance from a Scatterer is never tone mapped; this is for display.
func Expose(radiance math.Vec3, exposure float64) math.Vec3 {
	return math.Splat(1).Sub(radiance.Scale(-exposure).Exp())
}

// EncodeGamma applies a display gamma to a [0, 1] color and clamps it.
func EncodeGamma(c math.Vec3, gamma float64) math.Vec3 {
	if gamma <= 0 {
		gamma = 1
	}
	inv := 1 / gamma
	ch := func(v float64) float64 {
		if !(v > 0) {
			return 0
		}
		if v >= 1 {
			return 1
		}
		return gomath.Pow(v, inv)
	}
	return math.Vec3{X: ch(c.X), Y: ch(c.Y), Z: ch(c.Z)}
}
