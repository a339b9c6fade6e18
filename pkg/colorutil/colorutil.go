// Package colorutil provides shared color utilities for rendering label maps.
package colorutil

import (
	"image/color"
	"math/rand"
)

// Common overlay colors used throughout the application.
var (
	Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	Red   = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Green = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Blue  = color.RGBA{R: 0, G: 0, B: 255, A: 255}
)

// DefaultPaletteSize matches an 8-bit label image: labels 1..254 get colors.
const DefaultPaletteSize = 255

// Palette assigns a pseudo-random color to each label index.
type Palette struct {
	colors     []color.RGBA
	background color.RGBA
}

// NewPalette draws size label colors, then the background color, from a
// source seeded with seed. The same seed always yields the same palette.
func NewPalette(size int, seed int64) *Palette {
	rng := rand.New(rand.NewSource(seed))
	p := &Palette{colors: make([]color.RGBA, size)}
	for i := range p.colors {
		p.colors[i] = randomColor(rng)
	}
	p.background = randomColor(rng)
	return p
}

// Size returns the palette length. Index 0 is never drawn, so labels
// 1..Size()-1 have their own color.
func (p *Palette) Size() int {
	return len(p.colors)
}

// Covers reports whether label has its own color.
func (p *Palette) Covers(label int) bool {
	return label > 0 && label < len(p.colors)
}

// Background returns the color used for label 0 and out-of-range labels.
func (p *Palette) Background() color.RGBA {
	return p.background
}

// Color returns the color of label. Label 0 and labels at or beyond Size
// map to the background color.
func (p *Palette) Color(label int) color.RGBA {
	if p.Covers(label) {
		return p.colors[label]
	}
	return p.background
}

func randomColor(rng *rand.Rand) color.RGBA {
	return color.RGBA{
		R: uint8(rng.Intn(256)),
		G: uint8(rng.Intn(256)),
		B: uint8(rng.Intn(256)),
		A: 255,
	}
}
