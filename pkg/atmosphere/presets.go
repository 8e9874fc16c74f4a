package atmosphere

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Faultbox/midgard-sky/pkg/math"
)

var presets = map[string]func() Params{
	"earth": DefaultParams,
	"earth-hazy": func() Params {
		p := DefaultParams()
		p.MieCoeff = 60e-6
		p.MieScaleHeight = 1.8e3
		p.MieG = 0.8
		return p
	},
	// Approximate values for a thin, dusty atmosphere. Rayleigh falls off
	// toward blue, giving the butterscotch sky.
	"mars": func() Params {
		p := DefaultParams()
		p.PlanetRadius = 3389.5e3
		p.AtmosphereRadius = 3389.5e3 + 80e3
		p.RayOrigin = math.Vec3{Y: 3389.5e3 + 1e3}
		p.SunIntensity = 9.5
		p.RayleighCoeff = math.Vec3{X: 19.918e-6, Y: 13.57e-6, Z: 5.75e-6}
		p.RayleighScaleHeight = 11.1e3
		p.MieCoeff = 40e-6
		p.MieScaleHeight = 3.2e3
		p.MieG = 0.76
		return p
	},
}

// Preset returns a named atmosphere profile.
func Preset(name string) (Params, error) {
	fn, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Params{}, fmt.Errorf("atmosphere: unknown preset %q (have %s)", name, strings.Join(PresetNames(), ", "))
	}
	return fn(), nil
}

// PresetNames lists the available presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
