package labeling

import (
	"image"

	"blobscope/pkg/colorutil"
)

// Colorize renders a label map with one palette color per label. Background
// and any label without a palette entry share the palette's background
// color.
func Colorize(m *LabelMap, p *colorutil.Palette) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			img.SetRGBA(x, y, p.Color(m.pix[y*m.Width+x]))
		}
	}
	return img
}
