package render

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"math"
	"sync/atomic"
	"testing"

	"github.com/san-kum/wormsim/internal/integrators"
	"github.com/san-kum/wormsim/internal/metrics"
	"github.com/san-kum/wormsim/internal/ode"
	"github.com/san-kum/wormsim/internal/texture"
	"github.com/san-kum/wormsim/internal/wormhole"
)

func mustRender(t *testing.T, p wormhole.Params, opts Options) *Frame {
	t.Helper()
	r, err := New(p, texture.Default(), opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f, err := r.Render(context.Background())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return f
}

func TestRender_ReferenceFrame(t *testing.T) {
	f := mustRender(t, wormhole.DefaultParams(), Options{Width: 4, Height: 4, Workers: 2})

	if b := f.Image.Bounds(); b.Dx() != 4 || b.Dy() != 4 {
		t.Fatalf("image size %v, want 4x4", b)
	}

	warm := color.NRGBA{R: 255, G: 200, B: 100, A: 255}
	black := color.NRGBA{A: 255}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			got := f.Image.NRGBAAt(x, y)
			if got.A != 255 {
				t.Errorf("pixel (%d,%d) alpha = %d", x, y, got.A)
			}
			want := black
			if x == 2 {
				want = warm
			}
			if got != want {
				t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}

			steps, _ := f.Samples.At(x, y)
			if steps < 0 || steps > f.Params.MaxSteps {
				t.Errorf("pixel (%d,%d) steps %d out of range", x, y, steps)
			}
			if b := f.Brightness(x, y); b < 0 || b > 1 {
				t.Errorf("pixel (%d,%d) brightness %v out of range", x, y, b)
			}
		}
	}
}

func TestRender_BrightnessFallsOffAxis(t *testing.T) {
	p := wormhole.DefaultParams()
	p.CamL = -2
	p.Dt = 0.005

	f := mustRender(t, p, Options{Width: 4, Height: 4, Workers: 3})

	type sample struct {
		dist       float64
		brightness float64
	}
	var samples []sample
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			dx, dy := float64(x-2), float64(y-2)
			samples = append(samples, sample{math.Hypot(dx, dy), f.Brightness(x, y)})
		}
	}

	for _, a := range samples {
		for _, b := range samples {
			if a.dist < b.dist-1e-9 && a.brightness <= b.brightness {
				t.Errorf("brightness at distance %.3f (%v) not above distance %.3f (%v)",
					a.dist, a.brightness, b.dist, b.brightness)
			}
		}
	}
	for _, corner := range [][2]int{{0, 0}, {3, 0}, {0, 3}, {3, 3}} {
		if f.Brightness(2, 2) <= f.Brightness(corner[0], corner[1]) {
			t.Errorf("center not brighter than corner %v", corner)
		}
	}
}

func TestRender_IndependentOfWorkers(t *testing.T) {
	p := wormhole.DefaultParams()
	p.MaxSteps = 500

	base := mustRender(t, p, Options{Width: 12, Height: 9, Workers: 1})
	for _, workers := range []int{2, 3, 8} {
		f := mustRender(t, p, Options{Width: 12, Height: 9, Workers: workers})
		if !bytes.Equal(base.Image.Pix, f.Image.Pix) {
			t.Errorf("workers=%d: image differs from single-worker render", workers)
		}
		for i := range base.Samples.Steps {
			if base.Samples.Steps[i] != f.Samples.Steps[i] {
				t.Fatalf("workers=%d: steps differ at sample %d", workers, i)
			}
		}
	}

	again := mustRender(t, p, Options{Width: 12, Height: 9, Workers: 1})
	if !bytes.Equal(base.Image.Pix, again.Image.Pix) {
		t.Error("re-render is not byte-identical")
	}
}

func TestRender_ZeroMaxSteps(t *testing.T) {
	p := wormhole.DefaultParams()
	p.MaxSteps = 0

	f := mustRender(t, p, Options{Width: 5, Height: 3})
	for i, steps := range f.Samples.Steps {
		if steps != 0 {
			t.Fatalf("sample %d: steps = %d", i, steps)
		}
	}
	m := f.Evaluate(metrics.NewMeanBrightness())
	if m["mean_brightness"] != 1 {
		t.Errorf("mean_brightness = %v, want 1", m["mean_brightness"])
	}
}

func TestRender_Canceled(t *testing.T) {
	r, err := New(wormhole.DefaultParams(), nil, Options{Width: 16, Height: 16, Workers: 2})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f, err := r.Render(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Render error = %v, want context.Canceled", err)
	}
	if f != nil {
		t.Error("canceled render returned a frame")
	}
}

func TestRender_Progress(t *testing.T) {
	var calls, last atomic.Int64
	p := wormhole.DefaultParams()
	p.MaxSteps = 100

	f := mustRender(t, p, Options{
		Width:   6,
		Height:  5,
		Workers: 2,
		Progress: func(done, total int) {
			calls.Add(1)
			if total != 5 {
				t.Errorf("total = %d, want 5", total)
			}
			if done == total {
				last.Store(int64(done))
			}
		},
	})
	if f == nil {
		t.Fatal("no frame")
	}
	if calls.Load() != 5 {
		t.Errorf("progress called %d times, want 5", calls.Load())
	}
	if last.Load() != 5 {
		t.Error("progress never reported completion")
	}
}

func TestRender_Supersample(t *testing.T) {
	p := wormhole.DefaultParams()
	p.MaxSteps = 200

	f := mustRender(t, p, Options{Width: 4, Height: 3, Supersample: 2})
	if b := f.Image.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Errorf("output size %v, want 4x3", b)
	}
	if f.Samples.Width != 8 || f.Samples.Height != 6 || len(f.Samples.Steps) != 48 {
		t.Errorf("sample grid %dx%d (%d)", f.Samples.Width, f.Samples.Height, len(f.Samples.Steps))
	}
}

func TestRender_CustomIntegrator(t *testing.T) {
	p := wormhole.DefaultParams()
	p.MaxSteps = 300
	var built atomic.Int64

	mustRender(t, p, Options{
		Width:   4,
		Height:  8,
		Workers: 2,
		NewIntegrator: func() ode.Integrator {
			built.Add(1)
			return integrators.NewRK4()
		},
	})
	if built.Load() == 0 {
		t.Error("integrator factory never called")
	}
}

func TestNew_Invalid(t *testing.T) {
	bad := wormhole.DefaultParams()
	bad.A = 0

	tests := []struct {
		name   string
		params wormhole.Params
		opts   Options
		want   error
	}{
		{"zero width", wormhole.DefaultParams(), Options{Width: 0, Height: 4}, ErrInvalidOptions},
		{"negative workers", wormhole.DefaultParams(), Options{Width: 4, Height: 4, Workers: -1}, ErrInvalidOptions},
		{"negative supersample", wormhole.DefaultParams(), Options{Width: 4, Height: 4, Supersample: -2}, ErrInvalidOptions},
		{"bad params", bad, Options{Width: 4, Height: 4}, wormhole.ErrInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.params, nil, tt.opts); !errors.Is(err, tt.want) {
				t.Errorf("New error = %v, want %v", err, tt.want)
			}
		})
	}
}

func BenchmarkRender(b *testing.B) {
	p := wormhole.DefaultParams()
	r, err := New(p, nil, Options{Width: 64, Height: 48})
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Render(context.Background()); err != nil {
			b.Fatal(err)
		}
	}
}
