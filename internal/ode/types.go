package ode

type State []float64

// System is an autonomous or time-dependent first-order ODE.
type System interface {
	// Derive writes f(x, s) into dst. dst and x never alias.
	Derive(dst, x State, s float64)
	StateDim() int
}

// Integrator advances x by ds and writes the result into dst.
// dst and x must not alias.
type Integrator interface {
	Name() string
	Step(dyn System, dst, x State, s, ds float64)
}
