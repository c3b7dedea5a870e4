package integrators

import "github.com/san-kum/wormsim/internal/ode"

// Euler is the explicit forward Euler method. Every component is advanced
// from the pre-step state.
type Euler struct {
	dx ode.State
}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(dyn ode.System, dst, x ode.State, s, ds float64) {
	if len(e.dx) != len(x) {
		e.dx = make(ode.State, len(x))
	}
	dyn.Derive(e.dx, x, s)
	for i := range x {
		dst[i] = x[i] + e.dx[i]*ds
	}
}
