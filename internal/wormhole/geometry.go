package wormhole

import "math"

// MinRadius is the smallest radius magnitude the integrator divides by.
const MinRadius = 1e-6

// Geometry is the throat shape: radius a, curvature scale N.
type Geometry struct {
	A float64
	N float64
}

func (g Geometry) kappa(l float64) float64 {
	return math.Max(0.0, 2.0*(math.Abs(l)-g.A)/(math.Pi*g.N))
}

// Radius returns r(l).
func (g Geometry) Radius(l float64) float64 {
	k := g.kappa(l)
	return g.A*g.A*math.Tan(k) - 0.5*math.Log(1.0+k*k)
}

// RadiusDerivative returns dr/dl at l.
func (g Geometry) RadiusDerivative(l float64) float64 {
	x := g.kappa(l)
	return g.A / (1.0 + x*x)
}

// ClampRadius keeps |r| >= MinRadius, preserving the sign. Zero maps to
// +MinRadius.
func ClampRadius(r float64) float64 {
	if math.Abs(r) >= MinRadius {
		return r
	}
	if r < 0 {
		return -MinRadius
	}
	return MinRadius
}
