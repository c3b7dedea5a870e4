// Package ode provides the state and stepping primitives the ray
// integrator is built on.
//
//   - [State]: vector representing the evolving part of a ray
//   - [System]: an ODE dX/ds = f(X, s)
//   - [Integrator]: advances a [System] by one fixed step
//
// Integrators write into a caller-supplied destination so the per-pixel
// loop does not allocate. An Integrator may keep scratch buffers and is not
// safe for concurrent use; render workers each own one.
package ode
