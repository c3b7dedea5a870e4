// Package wormhole defines the camera parameters of a render and the
// closed-form geometry of the wormhole throat.
//
// The geometry maps a proper-length coordinate l to a radius r(l) and its
// derivative. Both are total functions; tan diverges for large kappa and the
// resulting infinities are part of the model, not errors:
//
//	kappa(l) = max(0, 2(|l| - a) / (pi N))
//	r(l)     = a^2 tan(kappa) - 0.5 ln(1 + kappa^2)
//	r'(l)    = a / (1 + kappa^2)
package wormhole
