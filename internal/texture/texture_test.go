package texture

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/san-kum/wormsim/internal/vecmath"
)

var warm = color.NRGBA{R: 255, G: 200, B: 100, A: 255}

func TestColorize_Disk(t *testing.T) {
	tex := Default()

	// On the vertical zero line the disk fully replaces the ring.
	for _, b := range []float64{0, 0.5, 1} {
		if got := tex.Colorize(vecmath.Vec3{0.2356, 0, 0.0173}, b); got != warm {
			t.Errorf("brightness %v: got %v, want %v", b, got, warm)
		}
	}
}

func TestColorize_Ring(t *testing.T) {
	tex := Default()

	// On the ring, well away from the disk band.
	got := tex.Colorize(vecmath.Vec3{0, 0.2, 0}, 1)
	if got != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("ring peak: got %v", got)
	}

	got = tex.Colorize(vecmath.Vec3{0, 0.2, 0}, 0.5)
	if got != (color.NRGBA{R: 127, G: 127, B: 127, A: 255}) {
		t.Errorf("half brightness ring: got %v", got)
	}
}

func TestColorize_Background(t *testing.T) {
	tex := Default()
	got := tex.Colorize(vecmath.Vec3{0.2532706, -0.6839776, 0.0142618}, 0.87)
	if got != (color.NRGBA{A: 255}) {
		t.Errorf("background: got %v", got)
	}
}

func TestColorize_Blend(t *testing.T) {
	tex := Default()
	// y = 0.05: diskFactor 0.5; r = 0.05: ringFactor 0.
	got := tex.Colorize(vecmath.Vec3{0, 0.05, 0}, 1)
	want := color.NRGBA{R: 127, G: 100, B: 50, A: 255}
	if got != want {
		t.Errorf("blend: got %v, want %v", got, want)
	}
}

func TestColorize_Symmetric(t *testing.T) {
	tex := Default()
	coords := []vecmath.Vec3{
		{0.2, 0, 0},
		{0.13, 0.07, 0.5},
		{0.05, 0.21, -0.3},
		{0.3, 0.02, 0},
	}

	for _, c := range coords {
		for _, b := range []float64{0.25, 1} {
			base := tex.Colorize(c, b)
			for _, flipped := range []vecmath.Vec3{
				{-c[0], c[1], c[2]},
				{c[0], -c[1], c[2]},
				{-c[0], -c[1], c[2]},
			} {
				if got := tex.Colorize(flipped, b); got != base {
					t.Errorf("colorize(%v) = %v, colorize(%v) = %v", c, base, flipped, got)
				}
			}
		}
	}
}

func TestColorize_ClampsOutOfRange(t *testing.T) {
	tex := Default()
	coord := vecmath.Vec3{0, 0.2, 0}

	if got := tex.Colorize(coord, 3); got.R != 255 || got.A != 255 {
		t.Errorf("brightness 3: got %v", got)
	}
	if got := tex.Colorize(coord, -2); got.R != 0 || got.A != 255 {
		t.Errorf("brightness -2: got %v", got)
	}
}

func TestColorize_NonFiniteCoord(t *testing.T) {
	nan, inf := math.NaN(), math.Inf(1)
	coords := []vecmath.Vec3{
		{nan, nan, nan},
		{0, nan, 0},
		{nan, 0.2, 0},
		{inf, -inf, 0},
	}

	for _, mode := range []Mode{ModeDisk, ModeRing} {
		tex, err := New(Params{Mode: mode, RingRadius: 0.2, RingWidth: 0.1, DiskThreshold: 0.1})
		if err != nil {
			t.Fatal(err)
		}
		for _, c := range coords {
			if f := tex.RingFactor(c); f != 0 {
				t.Errorf("%s RingFactor(%v) = %v, want 0", mode, c, f)
			}
			if f := tex.DiskFactor(c); f != 0 {
				t.Errorf("%s DiskFactor(%v) = %v, want 0", mode, c, f)
			}
			if got := tex.Colorize(c, 1); got != (color.NRGBA{A: 255}) {
				t.Errorf("%s Colorize(%v) = %v, want opaque black", mode, c, got)
			}
		}
	}
}

func TestRingMode(t *testing.T) {
	p := DefaultParams()
	p.Mode = ModeRing
	tex, err := New(p)
	if err != nil {
		t.Fatal(err)
	}

	if got := tex.Colorize(vecmath.Vec3{0.2, 0, 0}, 1); got != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("ring mode on ring: got %v", got)
	}
	if got := tex.Colorize(vecmath.Vec3{0.6, 0, 0}, 1); got != (color.NRGBA{A: 255}) {
		t.Errorf("ring mode off ring: got %v", got)
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"unknown mode", func(p *Params) { p.Mode = "plasma" }},
		{"zero ring width", func(p *Params) { p.RingWidth = 0 }},
		{"negative threshold", func(p *Params) { p.DiskThreshold = -1 }},
		{"bad colour", func(p *Params) { p.DiskColor = "not-a-colour" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			if _, err := New(p); !errors.Is(err, ErrInvalidTexture) {
				t.Errorf("expected ErrInvalidTexture, got %v", err)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#ffc864", warm},
		{"rgb(255, 200, 100)", warm},
		{"white", color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
	}

	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if err != nil {
			t.Errorf("ParseColor(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
