package integrators

import "github.com/san-kum/wormsim/internal/ode"

type RK4 struct {
	k1, k2, k3, k4 ode.State
	scratch        ode.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(ode.State, n)
		r.k2 = make(ode.State, n)
		r.k3 = make(ode.State, n)
		r.k4 = make(ode.State, n)
		r.scratch = make(ode.State, n)
	}
}

func (r *RK4) Step(dyn ode.System, dst, x ode.State, s, ds float64) {
	n := len(x)
	r.ensureScratch(n)

	dyn.Derive(r.k1, x, s)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + ds*0.5*r.k1[i]
	}
	dyn.Derive(r.k2, r.scratch, s+ds*0.5)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + ds*0.5*r.k2[i]
	}
	dyn.Derive(r.k3, r.scratch, s+ds*0.5)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + ds*r.k3[i]
	}
	dyn.Derive(r.k4, r.scratch, s+ds)

	ds6 := ds / 6.0
	for i := 0; i < n; i++ {
		dst[i] = x[i] + ds6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}
}
