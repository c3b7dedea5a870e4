// Package raytrace advances a single camera ray through the wormhole
// geometry until it escapes the radial bound or exhausts its step budget.
//
// The evolving part of a ray is the ODE state (l, phi, dl):
//
//	dl/ds   = dl
//	dphi/ds = H / r(l)
//	ddl/ds  = H^2 r'(l) / r(l)^2
//
// where H is the ray's conserved angular term. Stepping this system with
// explicit Euler at ds = dt gives l += dl*dt, phi += (H/r)*dt, dl += (H^2 r'/r^2)*dt.
package raytrace
