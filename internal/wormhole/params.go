package wormhole

import (
	"fmt"
	"math"
)

const (
	DefaultA        = 1.0
	DefaultN        = 1.0
	DefaultDt       = -0.005
	DefaultMaxSteps = 3000
	DefaultCamL     = 2.0
	DefaultZoom     = 2.5
)

// Params holds the immutable camera parameters of a render.
type Params struct {
	A        float64 `yaml:"a" json:"a"`
	N        float64 `yaml:"n" json:"n"`
	Dt       float64 `yaml:"dt" json:"dt"`
	MaxSteps int     `yaml:"max_steps" json:"max_steps"`
	CamL     float64 `yaml:"cam_l" json:"cam_l"`
	Zoom     float64 `yaml:"zoom" json:"zoom"`
}

func DefaultParams() Params {
	return Params{
		A:        DefaultA,
		N:        DefaultN,
		Dt:       DefaultDt,
		MaxSteps: DefaultMaxSteps,
		CamL:     DefaultCamL,
		Zoom:     DefaultZoom,
	}
}

func (p Params) Validate() error {
	for name, v := range map[string]float64{"a": p.A, "n": p.N, "dt": p.Dt, "cam_l": p.CamL, "zoom": p.Zoom} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidParams, name, v)
		}
	}
	if p.A <= 0 {
		return fmt.Errorf("%w: a must be positive, got %f", ErrInvalidParams, p.A)
	}
	if p.N <= 0 {
		return fmt.Errorf("%w: n must be positive, got %f", ErrInvalidParams, p.N)
	}
	if p.MaxSteps < 0 {
		return fmt.Errorf("%w: max_steps must not be negative, got %d", ErrInvalidParams, p.MaxSteps)
	}
	return nil
}

// Bound is the |l| a ray must reach to count as escaped.
func (p Params) Bound() float64 {
	return math.Max(math.Abs(p.CamL)*2.0, p.A+2.0)
}

// Geometry returns the throat shape described by p.
func (p Params) Geometry() Geometry {
	return Geometry{A: p.A, N: p.N}
}
