package atmosphere

import (
	"github.com/Faultbox/midgard-sky/pkg/geom"
	"github.com/Faultbox/midgard-sky/pkg/math"
)

// Func maps a view direction to RGB radiance.
type Func func(view math.Vec3) math.Vec3

// Scatterer evaluates sky radiance for a fixed sun direction and atmosphere.
type Scatterer struct {
	params Params
	sun    math.Vec3
}

// New validates p and returns a Scatterer lighting the atmosphere from sun.
// The sun direction need not be normalized but must not be zero.
func New(sun math.Vec3, p Params) (*Scatterer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	dir := sun.Normalize()
	if !sun.IsFinite() || dir.IsZero() {
		return nil, &ConfigError{Field: "sun_direction", Value: sun, Reason: "must be a finite non-zero vector"}
	}
	return &Scatterer{params: p, sun: dir}, nil
}

// NewFunc is New in closure form.
func NewFunc(sun math.Vec3, p Params) (Func, error) {
	s, err := New(sun, p)
	if err != nil {
		return nil, err
	}
	return s.Radiance, nil
}

// Params returns the atmosphere the Scatterer was built with.
func (s *Scatterer) Params() Params {
	return s.params
}

// Sun returns the normalized sun direction.
func (s *Scatterer) Sun() math.Vec3 {
	return s.sun
}

// segment is the part of a view ray that lies inside the atmosphere.
type segment struct {
	ray   geom.Ray
	entry float64
	step  float64
}

// bound clips the view ray to the atmosphere shell and the planet surface.
// ok is false when the ray never enters the atmosphere in front of the eye.
func (s *Scatterer) bound(view math.Vec3) (seg segment, ok bool) {
	p := &s.params
	ray := geom.Ray{Origin: p.RayOrigin, Direction: view}

	tNear, tFar, hit := ray.IntersectSphere(math.Vec3{}, p.AtmosphereRadius)
	if !hit || tNear > tFar || tFar <= 0 {
		return segment{}, false
	}

	far := tFar
	if pNear, _, pHit := ray.IntersectSphere(math.Vec3{}, p.PlanetRadius); pHit && pNear > 0 && pNear < far {
		far = pNear
	}
	entry := tNear
	if entry < 0 {
		entry = 0 // Eye inside the shell
	}
	if far <= entry {
		return segment{}, false
	}

	return segment{
		ray:   ray,
		entry: entry,
		step:  (far - entry) / float64(p.PrimarySteps),
	}, true
}

// sunDepth integrates optical depth from pos toward the sun. lit is false
// when planet shadowing is enabled and the planet blocks the sun.
func (s *Scatterer) sunDepth(pos math.Vec3) (depth OpticalDepth, lit bool) {
	p := &s.params
	ray := geom.Ray{Origin: pos, Direction: s.sun}

	if p.PlanetShadow {
		if pNear, _, pHit := ray.IntersectSphere(math.Vec3{}, p.PlanetRadius); pHit && pNear > 0 {
			return OpticalDepth{}, false
		}
	}

	_, tFar, hit := ray.IntersectSphere(math.Vec3{}, p.AtmosphereRadius)
	if !hit || tFar <= 0 {
		return OpticalDepth{}, true
	}
	return p.march(pos, s.sun, 0, tFar/float64(p.SecondarySteps), p.SecondarySteps), true
}

// accumulator holds in-scattered light gathered along the primary ray.
type accumulator struct {
	rayleigh math.Vec3
	mie      math.Vec3
}

// Radiance returns the single-scattered radiance arriving at the eye along
// view. The direction need not be normalized. Rays that miss the atmosphere
// and zero directions yield exact zero.
func (s *Scatterer) Radiance(view math.Vec3) math.Vec3 {
	if !view.IsFinite() {
		return math.Vec3{}
	}
	view = view.Normalize()
	if view.IsZero() {
		return math.Vec3{}
	}

	seg, ok := s.bound(view)
	if !ok {
		return math.Vec3{}
	}

	p := &s.params
	var (
		acc     accumulator
		primary OpticalDepth
	)
	for i := 0; i < p.PrimarySteps; i++ {
		smp := p.sampleAt(seg.ray.Origin, view, seg.entry+seg.step*(float64(i)+0.5))
		stepDepth := p.Density(smp.altitude).Scale(seg.step)
		primary = primary.Add(stepDepth)

		secondary, lit := s.sunDepth(smp.pos)
		if !lit {
			continue
		}

		att := primary.Add(secondary).Attenuation(p.RayleighCoeff, p.MieCoeff)
		acc.rayleigh = acc.rayleigh.MulAdd(att, stepDepth.Rayleigh)
		acc.mie = acc.mie.MulAdd(att, stepDepth.Mie)
	}

	mu := view.Dot(s.sun)
	return s.compose(acc, RayleighPhase(mu), MiePhase(mu, p.MieG))
}

// compose applies phase functions, scattering coefficients and sun intensity.
func (s *Scatterer) compose(acc accumulator, phaseR, phaseM float64) math.Vec3 {
	p := &s.params
	rayleigh := p.RayleighCoeff.Mul(acc.rayleigh).Scale(phaseR)
	mie := acc.mie.Scale(phaseM * p.MieCoeff)
	return rayleigh.Add(mie).Scale(p.SunIntensity)
}

// Transmittance returns the fraction of light surviving the trip along view
// from the far end of the atmosphere segment (or the ground) to the eye.
// Rays that miss the atmosphere are not attenuated.
func (s *Scatterer) Transmittance(view math.Vec3) math.Vec3 {
	if !view.IsFinite() {
		return math.Splat(1)
	}
	view = view.Normalize()
	if view.IsZero() {
		return math.Splat(1)
	}

	seg, ok := s.bound(view)
	if !ok {
		return math.Splat(1)
	}
	p := &s.params
	depth := p.march(seg.ray.Origin, view, seg.entry, seg.step, p.PrimarySteps)
	return depth.Attenuation(p.RayleighCoeff, p.MieCoeff)
}

// HitsPlanet reports whether view intersects the planet surface in front of
// the eye.
func (s *Scatterer) HitsPlanet(view math.Vec3) bool {
	dir := view.Normalize()
	if dir.IsZero() {
		return false
	}
	ray := geom.Ray{Origin: s.params.RayOrigin, Direction: dir}
	tNear, _, hit := ray.IntersectSphere(math.Vec3{}, s.params.PlanetRadius)
	return hit && tNear > 0
}
