package analysis

import (
	"image"
	"image/color"

	"blobscope/internal/labeling"
	"blobscope/pkg/colorutil"
)

// Projections counts the pixels of label per column (horizontal) and per
// row (vertical).
func Projections(m *labeling.LabelMap, label int) (horizontal, vertical []int) {
	horizontal = make([]int, m.Width)
	vertical = make([]int, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.At(x, y) == label {
				horizontal[x]++
				vertical[y]++
			}
		}
	}
	return horizontal, vertical
}

// projectionBarLength is the longest bar drawn by RenderProjections.
const projectionBarLength = 100

// RenderProjections draws the column counts as green bars rising from the
// bottom edge and the row counts as red bars from the left edge, scaled so
// the longest bar is at most projectionBarLength pixels.
func RenderProjections(width, height int, horizontal, vertical []int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fill(img, colorutil.Black)

	maxH := maxOf(horizontal)
	for x, v := range horizontal {
		if v == 0 || x >= width {
			continue
		}
		bar := v * projectionBarLength / (maxH + 1)
		for y := height - 1; y >= height-1-bar && y >= 0; y-- {
			img.SetRGBA(x, y, colorutil.Green)
		}
	}

	maxV := maxOf(vertical)
	for y, v := range vertical {
		if v == 0 || y >= height {
			continue
		}
		bar := v * projectionBarLength / (maxV + 1)
		for x := 0; x <= bar && x < width; x++ {
			img.SetRGBA(x, y, colorutil.Red)
		}
	}
	return img
}

func maxOf(values []int) int {
	m := 0
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}

func fill(img *image.RGBA, c color.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}
