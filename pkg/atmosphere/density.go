package atmosphere

import (
	gomath "math"

	"github.com/Faultbox/midgard-sky/pkg/math"
)

// maxDensityExponent caps -altitude/scaleHeight so samples that land below
// the surface grow dense without overflowing to +Inf.
const maxDensityExponent = 80

// OpticalDepth is accumulated extinction along a ray segment, before the
// scattering coefficients are applied.
type OpticalDepth struct {
	Rayleigh float64
	Mie      float64
}

// Add returns the optical depth of two consecutive segments.
func (d OpticalDepth) Add(other OpticalDepth) OpticalDepth {
	return OpticalDepth{d.Rayleigh + other.Rayleigh, d.Mie + other.Mie}
}

// Scale returns d multiplied by a path length.
func (d OpticalDepth) Scale(s float64) OpticalDepth {
	return OpticalDepth{d.Rayleigh * s, d.Mie * s}
}

// Extinction applies the scattering coefficients, giving per-channel
// extinction with the scalar Mie term broadcast to every channel.
func (d OpticalDepth) Extinction(rayleighCoeff math.Vec3, mieCoeff float64) math.Vec3 {
	return rayleighCoeff.Scale(d.Rayleigh).Add(math.Splat(mieCoeff * d.Mie))
}

// Attenuation is the Beer-Lambert transmittance exp(-extinction).
func (d OpticalDepth) Attenuation(rayleighCoeff math.Vec3, mieCoeff float64) math.Vec3 {
	return d.Extinction(rayleighCoeff, mieCoeff).Neg().Exp()
}

// Density returns the relative Rayleigh and Mie densities at an altitude
// above the planet surface.
func (p Params) Density(altitude float64) OpticalDepth {
	return OpticalDepth{
		Rayleigh: falloff(altitude, p.RayleighScaleHeight),
		Mie:      falloff(altitude, p.MieScaleHeight),
	}
}

func falloff(altitude, scaleHeight float64) float64 {
	return gomath.Exp(gomath.Min(-altitude/scaleHeight, maxDensityExponent))
}

// sample is a point visited by a march.
type sample struct {
	pos      math.Vec3
	altitude float64
}

func (p Params) sampleAt(origin, dir math.Vec3, t float64) sample {
	pos := origin.MulAdd(dir, t)
	return sample{pos: pos, altitude: pos.Length() - p.PlanetRadius}
}

// march integrates density over count sub-segments of length step starting
// at startT, sampling each sub-segment at its midpoint.
func (p Params) march(origin, dir math.Vec3, startT, step float64, count int) OpticalDepth {
	var depth OpticalDepth
	for i := 0; i < count; i++ {
		s := p.sampleAt(origin, dir, startT+step*(float64(i)+0.5))
		depth = depth.Add(p.Density(s.altitude).Scale(step))
	}
	return depth
}
