package atmosphere

import gomath "math"

// minMieDenominator keeps the Henyey-Greenstein denominator away from zero.
const minMieDenominator = 1e-12

// RayleighPhase evaluates the Rayleigh phase function for mu, the cosine of
// the angle between the view and sun directions.
func RayleighPhase(mu float64) float64 {
	mu = clampCos(mu)
	return 3 / (16 * gomath.Pi) * (1 + mu*mu)
}

// MiePhase evaluates the Cornette-Shanks form of Henyey-Greenstein with
// asymmetry g.
func MiePhase(mu, g float64) float64 {
	mu = clampCos(mu)
	mu2 := mu * mu
	g2 := g * g
	denom := gomath.Pow(1+g2-2*mu*g, 1.5) * (2 + g2)
	if denom < minMieDenominator {
		denom = minMieDenominator
	}
	return 3 / (8 * gomath.Pi) * (1 - g2) * (1 + mu2) / denom
}

func clampCos(mu float64) float64 {
	if mu > 1 {
		return 1
	}
	if mu < -1 {
		return -1
	}
	return mu
}
