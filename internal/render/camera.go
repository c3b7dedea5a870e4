package render

import (
	"github.com/san-kum/wormsim/internal/vecmath"
)

// CameraRay returns the normalized ray direction for pixel (x, y) of a
// width×height frame. Both screen axes are scaled by the width so pixels
// stay square.
func CameraRay(x, y, width, height int, zoom float64) vecmath.Vec3 {
	w := float64(width)
	u := (2*float64(x) - w) / w
	v := (2*float64(y) - float64(height)) / w
	return vecmath.Vec3{-zoom, u, v}.Norm()
}

// Brightness fades with the number of integration steps a ray took.
// A zero step budget leaves every pixel at full brightness.
func Brightness(steps, maxSteps int) float64 {
	if maxSteps <= 0 {
		return 1
	}
	return max(0, 1-float64(steps)/float64(maxSteps))
}

// CubeCoord remaps a traced direction into the texture's coordinate frame.
func CubeCoord(dir vecmath.Vec4) vecmath.Vec3 {
	return vecmath.Vec3{-dir[0], dir[2], -dir[1]}
}
