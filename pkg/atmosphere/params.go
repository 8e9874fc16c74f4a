// Package atmosphere computes single-scattering sky radiance for a planet
// wrapped in a Rayleigh + Mie atmosphere.
//
// A Scatterer is built once from Params and a sun direction, then queried
// per view direction. It holds no mutable state and may be shared freely
// between goroutines.
package atmosphere

import (
	"fmt"
	gomath "math"

	"go.uber.org/multierr"

	"github.com/Faultbox/midgard-sky/pkg/math"
)

// Params describes the planet, its atmosphere and the integrator settings.
// All lengths are in meters, coefficients in inverse meters.
type Params struct {
	RayOrigin           math.Vec3 `yaml:"ray_origin"` // Eye position relative to planet center
	SunIntensity        float64   `yaml:"sun_intensity"`
	PlanetRadius        float64   `yaml:"planet_radius"`
	AtmosphereRadius    float64   `yaml:"atmosphere_radius"`
	RayleighCoeff       math.Vec3 `yaml:"rayleigh_coeff"` // Per channel, wavelength dependent
	RayleighScaleHeight float64   `yaml:"rayleigh_scale_height"`
	MieCoeff            float64   `yaml:"mie_coeff"` // Broadcast to all channels
	MieScaleHeight      float64   `yaml:"mie_scale_height"`
	MieG                float64   `yaml:"mie_g"` // Preferred scattering direction, (-1, 1)
	PrimarySteps        int       `yaml:"primary_steps"`
	SecondarySteps      int       `yaml:"secondary_steps"`

	// PlanetShadow makes the planet block sunlight along secondary rays.
	// When off, sunlight reaches samples through the planet body, which
	// brightens the sky near the terminator.
	PlanetShadow bool `yaml:"planet_shadow"`
}

// DefaultParams returns an Earth-like atmosphere seen from 1 km above the surface.
func DefaultParams() Params {
	return Params{
		RayOrigin:           math.Vec3{X: 0, Y: 6372e3, Z: 0},
		SunIntensity:        22,
		PlanetRadius:        6371e3,
		AtmosphereRadius:    6471e3,
		RayleighCoeff:       math.Vec3{X: 5.5e-6, Y: 13.0e-6, Z: 22.4e-6},
		RayleighScaleHeight: 8e3,
		MieCoeff:            21e-6,
		MieScaleHeight:      1.2e3,
		MieG:                0.758,
		PrimarySteps:        16,
		SecondarySteps:      8,
	}
}

// ConfigError reports a single invalid Params field.
type ConfigError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("atmosphere: invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

// Validate checks the Params invariants. Every violation is reported; use
// multierr.Errors to list them or errors.As to get the first *ConfigError.
func (p Params) Validate() error {
	var err error
	bad := func(field string, value interface{}, reason string) {
		err = multierr.Append(err, &ConfigError{Field: field, Value: value, Reason: reason})
	}

	scalars := []struct {
		name string
		v    float64
	}{
		{"sun_intensity", p.SunIntensity},
		{"planet_radius", p.PlanetRadius},
		{"atmosphere_radius", p.AtmosphereRadius},
		{"rayleigh_scale_height", p.RayleighScaleHeight},
		{"mie_coeff", p.MieCoeff},
		{"mie_scale_height", p.MieScaleHeight},
		{"mie_g", p.MieG},
	}
	for _, s := range scalars {
		if gomath.IsNaN(s.v) || gomath.IsInf(s.v, 0) {
			bad(s.name, s.v, "must be finite")
		}
	}
	if !p.RayOrigin.IsFinite() {
		bad("ray_origin", p.RayOrigin, "must be finite")
	}
	if !p.RayleighCoeff.IsFinite() {
		bad("rayleigh_coeff", p.RayleighCoeff, "must be finite")
	}
	if err != nil {
		// Ordering checks below are meaningless on NaN
		return err
	}

	if p.PlanetRadius <= 0 {
		bad("planet_radius", p.PlanetRadius, "must be positive")
	}
	if p.AtmosphereRadius <= p.PlanetRadius {
		bad("atmosphere_radius", p.AtmosphereRadius, "must exceed planet radius")
	}
	if p.RayleighScaleHeight <= 0 {
		bad("rayleigh_scale_height", p.RayleighScaleHeight, "must be positive")
	}
	if p.MieScaleHeight <= 0 {
		bad("mie_scale_height", p.MieScaleHeight, "must be positive")
	}
	if p.MieG <= -1 || p.MieG >= 1 {
		bad("mie_g", p.MieG, "must lie strictly between -1 and 1")
	}
	if p.PrimarySteps < 1 {
		bad("primary_steps", p.PrimarySteps, "must be at least 1")
	}
	if p.SecondarySteps < 1 {
		bad("secondary_steps", p.SecondarySteps, "must be at least 1")
	}
	if p.SunIntensity < 0 {
		bad("sun_intensity", p.SunIntensity, "must not be negative")
	}
	if p.MieCoeff < 0 {
		bad("mie_coeff", p.MieCoeff, "must not be negative")
	}
	if p.RayleighCoeff.MinComponent() < 0 {
		bad("rayleigh_coeff", p.RayleighCoeff, "must not be negative")
	}
	return err
}
