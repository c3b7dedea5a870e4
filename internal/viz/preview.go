package viz

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/wormsim/internal/imageio"
)

const upperHalf = "▀"

// HalfBlock renders img at most maxWidth cells wide. Each text line holds two
// pixel rows: the upper pixel as foreground, the lower as background.
func HalfBlock(img image.Image, maxWidth int) string {
	thumb := imageio.Thumbnail(img, maxWidth)
	b := thumb.Bounds()

	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			style := lipgloss.NewStyle().Foreground(hex(thumb.NRGBAAt(x, y)))
			if y+1 < b.Max.Y {
				style = style.Background(hex(thumb.NRGBAAt(x, y+1)))
			}
			sb.WriteString(style.Render(upperHalf))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func hex(c color.NRGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
