// Package export writes traced ray paths as SVG drawings.
package export

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

// Point is one sample of a path in the embedding plane.
type Point struct{ X, Y float64 }

// PathStyle controls the colours of a RayPathSVG drawing.
type PathStyle struct {
	Background string
	Throat     string
	Bound      string
	Stroke     string
}

var DefaultPathStyle = PathStyle{
	Background: "#0a0a0a",
	Throat:     "#ffc864",
	Bound:      "#444466",
	Stroke:     "#00ccff",
}

// PolarPath maps (l, phi) samples to points at radius |l| and angle phi.
func PolarPath(l, phi []float64) []Point {
	n := min(len(l), len(phi))
	pts := make([]Point, n)
	for i := 0; i < n; i++ {
		r := math.Abs(l[i])
		pts[i] = Point{X: r * math.Cos(phi[i]), Y: r * math.Sin(phi[i])}
	}
	return pts
}

// RayPathSVG draws points on a square canvas of size pixels showing
// [-bound, bound] on both axes, with circles at the throat radius and the
// escape bound.
func RayPathSVG(points []Point, throat, bound float64, size int, style PathStyle) string {
	if bound <= 0 {
		bound = 1
	}
	half := float64(size) / 2
	scale := half / (bound * 1.05)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="%s" stroke-dasharray="4 4"/>
<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="%s" stroke-width="2"/>
`,
		size, size, size, size, style.Background,
		half, half, bound*scale, style.Bound,
		half, half, throat*scale, style.Throat)

	if len(points) >= 2 {
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, style.Stroke)
		for i, p := range points {
			x := half + p.X*scale
			y := half - p.Y*scale
			if i == 0 {
				fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// WriteSVG writes svg to path, or to w when path is "-".
func WriteSVG(w io.Writer, path, svg string) error {
	if path == "-" {
		_, err := io.WriteString(w, svg)
		return err
	}
	return os.WriteFile(path, []byte(svg), 0644)
}
