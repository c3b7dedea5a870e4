// Package vecmath provides the small fixed-size vectors used by the ray
// integrator and the colorizer.
//
// Normalize never fails: a zero-length vector is returned unchanged.
package vecmath

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Length returns the Euclidean norm of v.
func Length[F constraints.Float](v []F) F {
	var sum F
	for _, c := range v {
		sum += c * c
	}
	return F(math.Sqrt(float64(sum)))
}

// Normalize scales v to unit length in place and returns it.
// A vector whose norm is exactly zero is left untouched.
func Normalize[F constraints.Float](v []F) []F {
	n := Length(v)
	if n == 0 {
		return v
	}
	for i := range v {
		v[i] /= n
	}
	return v
}

// Clamp limits n to [lo, hi].
func Clamp[N constraints.Integer | constraints.Float](n, lo, hi N) N {
	return max(lo, min(n, hi))
}

// Lerp blends a and b by t.
func Lerp[F constraints.Float](a, b, t F) F {
	return a*(1-t) + b*t
}

type Vec2 [2]float64

func (v Vec2) Len() float64 { return Length(v[:]) }

func (v Vec2) Norm() Vec2 {
	Normalize(v[:])
	return v
}

type Vec3 [3]float64

func (v Vec3) Len() float64 { return Length(v[:]) }

func (v Vec3) Norm() Vec3 {
	Normalize(v[:])
	return v
}

// YZ returns the screen-plane part of a camera ray.
func (v Vec3) YZ() Vec2 { return Vec2{v[1], v[2]} }

// Vec4 carries the ray direction produced by the integrator: two in-plane
// components followed by the two screen-axis components.
type Vec4 [4]float64

func (v Vec4) Len() float64 { return Length(v[:]) }

func (v Vec4) Norm() Vec4 {
	Normalize(v[:])
	return v
}

// Concat joins two 2D vectors into a Vec4.
func Concat(a, b Vec2) Vec4 {
	return Vec4{a[0], a[1], b[0], b[1]}
}
