// Package texture maps a ray's projected exit direction to a colour: a
// luminous ring around the throat blended with a warm accretion-disk band.
package texture

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	css "github.com/mazznoer/csscolorparser"

	"github.com/san-kum/wormsim/internal/vecmath"
)

const (
	DefaultRingRadius    = 0.2
	DefaultRingWidth     = 0.1
	DefaultDiskThreshold = 0.1
	DefaultDiskColor     = "#ffc864"
)

// Mode selects which contributions a Texture blends.
type Mode string

const (
	// ModeDisk blends the ring with the accretion disk.
	ModeDisk Mode = "disk"
	// ModeRing draws the ring alone.
	ModeRing Mode = "ring"
)

var ErrInvalidTexture = errors.New("texture: invalid parameters")

// Params is the serialisable form of a Texture.
type Params struct {
	Mode          Mode    `yaml:"mode" json:"mode"`
	RingRadius    float64 `yaml:"ring_radius" json:"ring_radius"`
	RingWidth     float64 `yaml:"ring_width" json:"ring_width"`
	DiskThreshold float64 `yaml:"disk_threshold" json:"disk_threshold"`
	DiskColor     string  `yaml:"disk_color" json:"disk_color"`
}

func DefaultParams() Params {
	return Params{
		Mode:          ModeDisk,
		RingRadius:    DefaultRingRadius,
		RingWidth:     DefaultRingWidth,
		DiskThreshold: DefaultDiskThreshold,
		DiskColor:     DefaultDiskColor,
	}
}

// Texture is immutable and safe for concurrent use.
type Texture struct {
	mode          Mode
	ringRadius    float64
	ringWidth     float64
	diskThreshold float64
	disk          [4]float64
}

// New builds a Texture from p.
func New(p Params) (*Texture, error) {
	switch p.Mode {
	case ModeDisk, ModeRing:
	case "":
		p.Mode = ModeDisk
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidTexture, p.Mode)
	}
	if p.RingWidth <= 0 {
		return nil, fmt.Errorf("%w: ring_width must be positive, got %f", ErrInvalidTexture, p.RingWidth)
	}
	if p.DiskThreshold <= 0 {
		return nil, fmt.Errorf("%w: disk_threshold must be positive, got %f", ErrInvalidTexture, p.DiskThreshold)
	}
	if p.DiskColor == "" {
		p.DiskColor = DefaultDiskColor
	}
	disk, err := ParseColor(p.DiskColor)
	if err != nil {
		return nil, fmt.Errorf("%w: disk_color: %v", ErrInvalidTexture, err)
	}

	return &Texture{
		mode:          p.Mode,
		ringRadius:    p.RingRadius,
		ringWidth:     p.RingWidth,
		diskThreshold: p.DiskThreshold,
		disk:          [4]float64{float64(disk.R), float64(disk.G), float64(disk.B), float64(disk.A)},
	}, nil
}

// Default returns the reference texture.
func Default() *Texture {
	t, err := New(DefaultParams())
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Texture) Mode() Mode { return t.mode }

// RingFactor is 1 on the ring radius and falls linearly to 0 one ring width
// away.
func (t *Texture) RingFactor(coord vecmath.Vec3) float64 {
	r := math.Sqrt(coord[0]*coord[0] + coord[1]*coord[1])
	return positive(1.0 - math.Abs(r-t.ringRadius)/t.ringWidth)
}

// DiskFactor weights the disk band; coord[1] is the vertical axis.
func (t *Texture) DiskFactor(coord vecmath.Vec3) float64 {
	if t.mode == ModeRing {
		return 0
	}
	return positive(1.0 - math.Abs(coord[1])/t.diskThreshold)
}

// positive returns f when it is greater than zero and 0 otherwise,
// NaN included.
func positive(f float64) float64 {
	if !(f > 0) {
		return 0
	}
	return f
}

// Colorize returns the colour for a projected coordinate at the given
// brightness. Brightness outside [0,1] is not rejected; each channel is
// clamped to [0,255] after the blend.
func (t *Texture) Colorize(coord vecmath.Vec3, brightness float64) color.NRGBA {
	ring := brightness * t.RingFactor(coord) * 255
	df := t.DiskFactor(coord)

	src := [4]float64{ring, ring, ring, 255}
	var out [4]uint8
	for i := range out {
		out[i] = channel(vecmath.Lerp(src[i], t.disk[i], df))
	}
	return color.NRGBA{R: out[0], G: out[1], B: out[2], A: out[3]}
}

// channel truncates toward zero and clamps into a byte.
func channel(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	return uint8(vecmath.Clamp(math.Trunc(v), 0, 255))
}

// ParseColor accepts any CSS colour string.
func ParseColor(s string) (color.NRGBA, error) {
	c, err := css.Parse(s)
	if err != nil {
		return color.NRGBA{}, err
	}

	return color.NRGBA{
		R: uint8(math.Round(255 * c.R)),
		G: uint8(math.Round(255 * c.G)),
		B: uint8(math.Round(255 * c.B)),
		A: uint8(math.Round(255 * c.A)),
	}, nil
}
