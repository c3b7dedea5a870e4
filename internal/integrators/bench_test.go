package integrators

import (
	"testing"

	"github.com/san-kum/wormsim/internal/ode"
)

type benchDynamics struct{}

func (b *benchDynamics) StateDim() int { return 3 }
func (b *benchDynamics) Derive(dst, x ode.State, t float64) {
	dst[0] = x[2]
	dst[1] = 1 / (1 + x[0]*x[0])
	dst[2] = -x[0]
}

func benchmarkStep(b *testing.B, integrator ode.Integrator) {
	dyn := &benchDynamics{}
	x, next := ode.State{1.0, 0.0, 0.0}, make(ode.State, 3)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		integrator.Step(dyn, next, x, 0, 0.005)
		x, next = next, x
	}
}

func BenchmarkEuler(b *testing.B) { benchmarkStep(b, NewEuler()) }

func BenchmarkRK4(b *testing.B) { benchmarkStep(b, NewRK4()) }
