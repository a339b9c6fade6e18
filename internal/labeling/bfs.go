package labeling

import (
	"image"

	"blobscope/internal/binimg"
)

// BFS labels components by breadth-first flood fill. Components receive
// labels in raster order of their first (top-most, left-most) pixel.
type BFS struct {
	Options Options
}

// Label implements Labeler.
func (b *BFS) Label(img *binimg.Image) (*LabelMap, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}

	m := NewLabelMap(img.Width, img.Height)
	label := 0
	var queue []image.Point

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			if !img.IsForeground(x, y) || m.pix[y*m.Width+x] != 0 {
				continue
			}
			label++
			if err := b.Options.checkCapacity(label); err != nil {
				return nil, err
			}

			m.pix[y*m.Width+x] = label
			queue = append(queue[:0], image.Point{X: x, Y: y})
			for qi := 0; qi < len(queue); qi++ {
				p := queue[qi]
				for _, d := range neighbors8 {
					nx, ny := p.X+d[0], p.Y+d[1]
					if !img.IsForeground(nx, ny) || m.pix[ny*m.Width+nx] != 0 {
						continue
					}
					m.pix[ny*m.Width+nx] = label
					queue = append(queue, image.Point{X: nx, Y: ny})
				}
			}
		}
	}

	return m, nil
}
