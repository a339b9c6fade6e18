// Package labeling assigns connected-component labels to binary images.
//
// Two strategies are provided, BFS flood fill and two-pass labeling with
// equivalence resolution. Both use 8-connectivity over the foreground
// pixels of a binimg.Image (value 0 = object) and produce a LabelMap whose
// labels are dense: exactly 1..K for K components, 0 for background.
package labeling

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"
)

// LabelMap is a row-major grid of component labels, same size as the
// image it was computed from. Label 0 is background.
type LabelMap struct {
	Width  int
	Height int
	pix    []int
}

// NewLabelMap returns an all-background label map.
func NewLabelMap(width, height int) *LabelMap {
	return &LabelMap{Width: width, Height: height, pix: make([]int, width*height)}
}

// FromGray imports an 8-bit label image, one label per gray value.
func FromGray(g *image.Gray) *LabelMap {
	b := g.Bounds()
	m := NewLabelMap(b.Dx(), b.Dy())
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			m.pix[y*m.Width+x] = int(g.Pix[y*g.Stride+x])
		}
	}
	return m
}

// InBounds reports whether (x, y) lies inside the map.
func (m *LabelMap) InBounds(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// At returns the label at (x, y), or 0 outside the map.
func (m *LabelMap) At(x, y int) int {
	if !m.InBounds(x, y) {
		return 0
	}
	return m.pix[y*m.Width+x]
}

// Set stores label l at (x, y).
func (m *LabelMap) Set(x, y, l int) {
	m.pix[y*m.Width+x] = l
}

// Clone returns an independent copy.
func (m *LabelMap) Clone() *LabelMap {
	c := &LabelMap{Width: m.Width, Height: m.Height, pix: make([]int, len(m.pix))}
	copy(c.pix, m.pix)
	return c
}

// MaxLabel returns the largest label in the map; for labeler output that
// is the component count K.
func (m *LabelMap) MaxLabel() int {
	maxLabel := 0
	for _, l := range m.pix {
		if l > maxLabel {
			maxLabel = l
		}
	}
	return maxLabel
}

// Labels returns the distinct non-background labels in ascending order.
func (m *LabelMap) Labels() []int {
	seen := make(map[int]struct{})
	for _, l := range m.pix {
		if l > 0 {
			seen[l] = struct{}{}
		}
	}
	labels := make([]int, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Ints(labels)
	return labels
}

// Areas returns the pixel count of every non-background label.
func (m *LabelMap) Areas() map[int]int {
	areas := make(map[int]int)
	for _, l := range m.pix {
		if l > 0 {
			areas[l]++
		}
	}
	return areas
}

// Regions groups pixel coordinates by label in a single raster scan.
// Pixels of each region appear in raster order.
func (m *LabelMap) Regions() map[int][]image.Point {
	regions := make(map[int][]image.Point)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if l := m.pix[y*m.Width+x]; l > 0 {
				regions[l] = append(regions[l], image.Point{X: x, Y: y})
			}
		}
	}
	return regions
}

// Pixels returns the coordinates carrying label l in raster order.
func (m *LabelMap) Pixels(l int) []image.Point {
	var pts []image.Point
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.pix[y*m.Width+x] == l {
				pts = append(pts, image.Point{X: x, Y: y})
			}
		}
	}
	return pts
}

// ToGray exports the map as an 8-bit image. Maps holding labels above 255
// fail with ErrCapacityExceeded instead of wrapping.
func (m *LabelMap) ToGray() (*image.Gray, error) {
	if maxLabel := m.MaxLabel(); maxLabel > math.MaxUint8 {
		return nil, fmt.Errorf("%w: label %d does not fit in 8 bits", ErrCapacityExceeded, maxLabel)
	}
	g := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			g.Pix[y*g.Stride+x] = uint8(m.pix[y*m.Width+x])
		}
	}
	return g, nil
}

// ToGray16 exports the map as a 16-bit image for label counts above 255.
func (m *LabelMap) ToGray16() (*image.Gray16, error) {
	if maxLabel := m.MaxLabel(); maxLabel > math.MaxUint16 {
		return nil, fmt.Errorf("%w: label %d does not fit in 16 bits", ErrCapacityExceeded, maxLabel)
	}
	g := image.NewGray16(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			g.SetGray16(x, y, color.Gray16{Y: uint16(m.pix[y*m.Width+x])})
		}
	}
	return g, nil
}
