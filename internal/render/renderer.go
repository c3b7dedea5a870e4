package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"runtime"
	"sync/atomic"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/wormsim/internal/integrators"
	"github.com/san-kum/wormsim/internal/metrics"
	"github.com/san-kum/wormsim/internal/ode"
	"github.com/san-kum/wormsim/internal/raytrace"
	"github.com/san-kum/wormsim/internal/texture"
	"github.com/san-kum/wormsim/internal/wormhole"
)

var ErrInvalidOptions = errors.New("render: invalid options")

// bandsPerWorker splits the frame finer than the worker count. Rays near
// the optical axis and far from it differ in cost.
const bandsPerWorker = 4

type Options struct {
	Width  int
	Height int
	// Workers bounds the number of concurrent bands. 0 means runtime.NumCPU.
	Workers int
	// Supersample renders at k·Width × k·Height and scales down. 0 means 1.
	Supersample int
	// NewIntegrator builds one integrator per band. nil means Euler.
	NewIntegrator func() ode.Integrator
	// Progress is called from worker goroutines after each finished row.
	Progress func(done, total int)
}

func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("%w: size must be positive, got %dx%d", ErrInvalidOptions, o.Width, o.Height)
	}
	if o.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative, got %d", ErrInvalidOptions, o.Workers)
	}
	if o.Supersample < 0 {
		return fmt.Errorf("%w: supersample must be non-negative, got %d", ErrInvalidOptions, o.Supersample)
	}
	return nil
}

// Grid holds per-sample trace results in row-major order at the sampling
// resolution.
type Grid struct {
	Width   int
	Height  int
	Steps   []int
	Escaped []bool
}

func (g Grid) At(x, y int) (steps int, escaped bool) {
	i := y*g.Width + x
	return g.Steps[i], g.Escaped[i]
}

type Frame struct {
	Image   *image.NRGBA
	Width   int
	Height  int
	Samples Grid
	Params  wormhole.Params
	Elapsed time.Duration
}

// Brightness returns the brightness of sample (x, y).
func (f *Frame) Brightness(x, y int) float64 {
	steps, _ := f.Samples.At(x, y)
	return Brightness(steps, f.Params.MaxSteps)
}

// Evaluate feeds every sample to the given metrics and returns their values
// by name.
func (f *Frame) Evaluate(ms ...metrics.Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
	}
	for i, steps := range f.Samples.Steps {
		s := metrics.Sample{
			Steps:      steps,
			MaxSteps:   f.Params.MaxSteps,
			Escaped:    f.Samples.Escaped[i],
			Brightness: Brightness(steps, f.Params.MaxSteps),
		}
		for _, m := range ms {
			m.Observe(s)
		}
	}
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

type Renderer struct {
	params  wormhole.Params
	texture *texture.Texture
	opts    Options
}

func New(p wormhole.Params, tex *texture.Texture, opts Options) (*Renderer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if tex == nil {
		tex = texture.Default()
	}
	if opts.Workers == 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Supersample == 0 {
		opts.Supersample = 1
	}
	if opts.NewIntegrator == nil {
		opts.NewIntegrator = func() ode.Integrator { return integrators.NewEuler() }
	}
	return &Renderer{params: p, texture: tex, opts: opts}, nil
}

func (r *Renderer) Options() Options { return r.opts }

// Shade traces pixel (x, y) of a width×height frame and colours it.
func (r *Renderer) Shade(tr *raytrace.Tracer, x, y, width, height int) (color.NRGBA, raytrace.Result) {
	res := tr.Trace(CameraRay(x, y, width, height, r.params.Zoom))
	b := Brightness(res.Steps, r.params.MaxSteps)
	return r.texture.Colorize(CubeCoord(res.Direction), b), res
}

// Render traces every pixel and returns the finished frame. A cancelled
// context stops the workers at the next row and its error is returned.
func (r *Renderer) Render(ctx context.Context) (*Frame, error) {
	start := time.Now()
	ss := r.opts.Supersample
	w, h := r.opts.Width*ss, r.opts.Height*ss

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	grid := Grid{
		Width:   w,
		Height:  h,
		Steps:   make([]int, w*h),
		Escaped: make([]bool, w*h),
	}

	bands := splitRows(h, r.opts.Workers*bandsPerWorker)
	Logger().Info("render started",
		"width", r.opts.Width, "height", r.opts.Height,
		"supersample", ss, "workers", r.opts.Workers)
	Logger().Debug("render bands", "count", len(bands), "rows", h)

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for _, b := range bands {
		g.Go(func() error {
			tr := raytrace.NewTracer(r.params, r.opts.NewIntegrator())
			for y := b.start; y < b.end; y++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				for x := 0; x < w; x++ {
					c, res := r.Shade(tr, x, y, w, h)
					img.SetNRGBA(x, y, c)
					i := y*w + x
					grid.Steps[i] = res.Steps
					grid.Escaped[i] = res.Escaped
				}
				n := done.Add(1)
				if r.opts.Progress != nil {
					r.opts.Progress(int(n), h)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// errgroup only cancels gctx on a worker error; a parent cancelled after
	// the last row check still counts.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := img
	if ss > 1 {
		out = Downscale(img, r.opts.Width, r.opts.Height)
	}

	elapsed := time.Since(start)
	Logger().Info("render finished", "elapsed", elapsed)

	return &Frame{
		Image:   out,
		Width:   r.opts.Width,
		Height:  r.opts.Height,
		Samples: grid,
		Params:  r.params,
		Elapsed: elapsed,
	}, nil
}

// Downscale resamples src to width×height with a Catmull-Rom filter.
func Downscale(src image.Image, width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

type band struct {
	start, end int
}

// splitRows partitions [0, rows) into at most n contiguous bands.
func splitRows(rows, n int) []band {
	if n < 1 {
		n = 1
	}
	if n > rows {
		n = rows
	}
	size := (rows + n - 1) / n
	bands := make([]band, 0, n)
	for start := 0; start < rows; start += size {
		bands = append(bands, band{start: start, end: min(start+size, rows)})
	}
	return bands
}
