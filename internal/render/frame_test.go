package render_test

import (
	"context"
	"image/color"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/wormsim/internal/metrics"
	"github.com/san-kum/wormsim/internal/render"
	"github.com/san-kum/wormsim/internal/texture"
	"github.com/san-kum/wormsim/internal/wormhole"
)

var _ = Describe("Renderer", func() {
	var (
		params wormhole.Params
		tex    *texture.Texture
		opts   render.Options
	)

	BeforeEach(func() {
		params = wormhole.DefaultParams()
		params.MaxSteps = 400
		tex = texture.Default()
		opts = render.Options{Width: 8, Height: 6, Workers: 2}
	})

	renderFrame := func() *render.Frame {
		r, err := render.New(params, tex, opts)
		Expect(err).NotTo(HaveOccurred())
		f, err := r.Render(context.Background())
		Expect(err).NotTo(HaveOccurred())
		return f
	}

	It("produces an opaque frame of the requested size", func() {
		f := renderFrame()
		Expect(f.Image.Bounds().Dx()).To(Equal(8))
		Expect(f.Image.Bounds().Dy()).To(Equal(6))
		Expect(f.Width).To(Equal(8))
		Expect(f.Height).To(Equal(6))
		for i := 3; i < len(f.Image.Pix); i += 4 {
			Expect(f.Image.Pix[i]).To(Equal(uint8(255)))
		}
	})

	It("keeps every step count within the budget", func() {
		f := renderFrame()
		for _, s := range f.Samples.Steps {
			Expect(s).To(BeNumerically(">=", 0))
			Expect(s).To(BeNumerically("<=", params.MaxSteps))
		}
	})

	It("records its parameters and elapsed time", func() {
		f := renderFrame()
		Expect(f.Params).To(Equal(params))
		Expect(f.Elapsed).To(BeNumerically(">", 0))
	})

	Context("with a zero step budget", func() {
		BeforeEach(func() {
			params.MaxSteps = 0
		})

		It("shows every pixel at full brightness", func() {
			f := renderFrame()
			for y := 0; y < f.Samples.Height; y++ {
				for x := 0; x < f.Samples.Width; x++ {
					Expect(f.Brightness(x, y)).To(Equal(1.0))
				}
			}
		})
	})

	Context("in ring-only mode", func() {
		BeforeEach(func() {
			var err error
			p := texture.DefaultParams()
			p.Mode = texture.ModeRing
			tex, err = texture.New(p)
			Expect(err).NotTo(HaveOccurred())
		})

		It("never paints the disk colour", func() {
			f := renderFrame()
			warm := color.NRGBA{R: 255, G: 200, B: 100, A: 255}
			for y := 0; y < f.Height; y++ {
				for x := 0; x < f.Width; x++ {
					c := f.Image.NRGBAAt(x, y)
					Expect(c).NotTo(Equal(warm))
					Expect(c.R).To(Equal(c.G))
					Expect(c.G).To(Equal(c.B))
				}
			}
		})
	})

	Describe("Evaluate", func() {
		It("reports the default metrics", func() {
			f := renderFrame()
			values := f.Evaluate(metrics.Defaults()...)
			Expect(values).To(HaveKey("mean_steps"))
			Expect(values).To(HaveKey("max_steps"))
			Expect(values["escape_ratio"]).To(BeNumerically(">=", 0))
			Expect(values["escape_ratio"]).To(BeNumerically("<=", 1))
			Expect(values["mean_brightness"]).To(BeNumerically(">=", 0))
			Expect(values["mean_brightness"]).To(BeNumerically("<=", 1))
		})
	})

	Describe("cancellation", func() {
		It("returns the context error", func() {
			r, err := render.New(params, tex, opts)
			Expect(err).NotTo(HaveOccurred())
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err = r.Render(ctx)
			Expect(err).To(MatchError(context.Canceled))
		})
	})
})
