package raytrace

import (
	"github.com/san-kum/wormsim/internal/ode"
	"github.com/san-kum/wormsim/internal/wormhole"
)

const (
	idxL = iota
	idxPhi
	idxDL
	stateDim
)

// rayDynamics is the ode.System of one ray. It memoizes the geometry at the
// last l it was asked about, since the tracer and the Euler step both need
// r(l) and r'(l) at the same point.
type rayDynamics struct {
	geom wormhole.Geometry
	h    float64

	cached bool
	l      float64
	r, dr  float64
}

func (d *rayDynamics) reset(h float64) {
	d.h = h
	d.cached = false
}

// eval returns the clamped radius and its derivative at l.
func (d *rayDynamics) eval(l float64) (r, dr float64) {
	if d.cached && l == d.l {
		return d.r, d.dr
	}
	d.dr = d.geom.RadiusDerivative(l)
	d.r = wormhole.ClampRadius(d.geom.Radius(l))
	d.l = l
	d.cached = true
	return d.r, d.dr
}

func (d *rayDynamics) Derive(dst, x ode.State, _ float64) {
	r, dr := d.eval(x[idxL])
	dst[idxL] = x[idxDL]
	dst[idxPhi] = d.h / r
	dst[idxDL] = (d.h * d.h * dr) / (r * r)
}

func (d *rayDynamics) StateDim() int { return stateDim }
