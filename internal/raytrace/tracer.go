package raytrace

import (
	"math"

	"github.com/san-kum/wormsim/internal/ode"
	"github.com/san-kum/wormsim/internal/vecmath"
	"github.com/san-kum/wormsim/internal/wormhole"
)

// State is a snapshot of a ray as the loop head sees it.
type State struct {
	L     float64
	R     float64
	DR    float64
	DL    float64
	Phi   float64
	H     float64
	Steps int
}

// Result is the outcome of tracing one ray.
type Result struct {
	// Direction is the normalized [dx, dy, beta0, beta1] vector sampled at
	// the last state the loop examined.
	Direction vecmath.Vec4
	Steps     int
	// Escaped reports whether |l| reached the radial bound. A ray that ran
	// out of steps inside the bound is trapped.
	Escaped bool
	Final   State
}

// Observer is notified with the pre-step state of every iteration.
type Observer interface {
	OnStep(s State, dir vecmath.Vec4)
}

// Tracer integrates camera rays for one set of camera parameters.
// A Tracer owns scratch buffers; use one per goroutine.
type Tracer struct {
	params     wormhole.Params
	bound      float64
	integrator ode.Integrator
	dyn        *rayDynamics
	bufA, bufB ode.State
	observer   Observer
}

func NewTracer(p wormhole.Params, integrator ode.Integrator) *Tracer {
	return &Tracer{
		params:     p,
		bound:      p.Bound(),
		integrator: integrator,
		dyn:        &rayDynamics{geom: p.Geometry()},
		bufA:       make(ode.State, stateDim),
		bufB:       make(ode.State, stateDim),
	}
}

func (t *Tracer) SetObserver(o Observer) { t.observer = o }

// Trace follows the normalized camera ray vel. vel[0] is the inward axis,
// vel[1] and vel[2] are the screen-plane axes.
func (t *Tracer) Trace(vel vecmath.Vec3) Result {
	p := t.params
	beta := vel.YZ().Norm()
	h := vel.YZ().Len()
	t.dyn.reset(h)

	x, next := t.bufA, t.bufB
	x[idxL] = p.CamL
	x[idxPhi] = 0
	x[idxDL] = vel[0]

	var dir vecmath.Vec4
	steps := 0
	for math.Abs(x[idxL]) < t.bound && steps < p.MaxSteps {
		r, dr := t.dyn.eval(x[idxL])
		dir = direction(x[idxDL], dr, r, h, x[idxPhi], beta)
		if t.observer != nil {
			t.observer.OnStep(t.snapshot(x, r, dr, h, steps), dir)
		}

		t.integrator.Step(t.dyn, next, x, float64(steps)*p.Dt, p.Dt)
		x, next = next, x
		steps++
	}

	r, dr := t.dyn.eval(x[idxL])
	if steps == 0 {
		dir = direction(x[idxDL], dr, r, h, x[idxPhi], beta)
	}

	return Result{
		Direction: dir,
		Steps:     steps,
		Escaped:   math.Abs(x[idxL]) >= t.bound,
		Final:     t.snapshot(x, r, dr, h, steps),
	}
}

func (t *Tracer) snapshot(x ode.State, r, dr, h float64, steps int) State {
	return State{
		L:     x[idxL],
		R:     r,
		DR:    dr,
		DL:    x[idxDL],
		Phi:   x[idxPhi],
		H:     h,
		Steps: steps,
	}
}

// direction projects the ray's in-plane velocity onto the screen axes. The
// 2D offset is joined with beta and the four components are normalized
// together.
func direction(dl, dr, r, h, phi float64, beta vecmath.Vec2) vecmath.Vec4 {
	cos, sin := math.Cos(phi), math.Sin(phi)
	dx := dl*dr*cos - (h/r)*sin
	dy := dl*dr*sin + (h/r)*cos
	return vecmath.Concat(vecmath.Vec2{dx, dy}, beta).Norm()
}
