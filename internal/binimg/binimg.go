// Package binimg holds the binary images consumed by the labelers.
//
// Polarity is inverted with respect to the usual display convention:
// a pixel value of 0 is FOREGROUND (part of an object) and any nonzero
// value, typically 255, is BACKGROUND. Every constructor in this package
// produces and preserves that convention.
package binimg

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"unicode/utf8"
)

const (
	// Foreground is the pixel value marking object pixels.
	Foreground uint8 = 0
	// Background is the value written for non-object pixels.
	Background uint8 = 255

	// DefaultThreshold splits luma into foreground (< threshold) and background.
	DefaultThreshold uint8 = 128
)

// Image is a row-major single-channel binary image.
type Image struct {
	Width  int
	Height int
	Pix    []uint8
}

// New returns a width x height image filled with background.
func New(width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidInput, width, height)
	}
	pix := make([]uint8, width*height)
	for i := range pix {
		pix[i] = Background
	}
	return &Image{Width: width, Height: height, Pix: pix}, nil
}

// FromGray wraps the values of an 8-bit gray image without thresholding:
// 0 stays foreground, everything else is background.
func FromGray(g *image.Gray) (*Image, error) {
	b := g.Bounds()
	img, err := New(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	for y := 0; y < img.Height; y++ {
		row := g.Pix[y*g.Stride : y*g.Stride+img.Width]
		copy(img.Pix[y*img.Width:(y+1)*img.Width], row)
	}
	return img, nil
}

// FromImage converts any image to binary. Pixels whose luma is below
// threshold become foreground (0), the rest background (255).
func FromImage(src image.Image, threshold uint8) (*Image, error) {
	b := src.Bounds()
	img, err := New(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			c := color.GrayModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			if c.Y < threshold {
				img.Pix[y*img.Width+x] = Foreground
			}
		}
	}
	return img, nil
}

// FromRows builds an image from ASCII text rows, one string per row. '#',
// 'X' and '1' mark foreground pixels; any other byte is background. Rows
// must share the same length.
func FromRows(rows ...string) (*Image, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidInput)
	}
	width := len(rows[0])
	img, err := New(width, len(rows))
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has length %d, want %d", ErrInvalidInput, y, len(row), width)
		}
		for x := 0; x < width; x++ {
			c := row[x]
			if c >= utf8.RuneSelf {
				return nil, fmt.Errorf("%w: row %d has non-ASCII byte at %d", ErrInvalidInput, y, x)
			}
			if strings.IndexByte("#X1", c) >= 0 {
				img.Pix[y*width+x] = Foreground
			}
		}
	}
	return img, nil
}

// MustFromRows is FromRows for fixtures known to be valid.
func MustFromRows(rows ...string) *Image {
	img, err := FromRows(rows...)
	if err != nil {
		panic(err)
	}
	return img
}

// InBounds reports whether (x, y) lies inside the image.
func (img *Image) InBounds(x, y int) bool {
	return x >= 0 && x < img.Width && y >= 0 && y < img.Height
}

// IsForeground reports whether (x, y) is an object pixel. Out-of-bounds
// positions are background.
func (img *Image) IsForeground(x, y int) bool {
	if !img.InBounds(x, y) {
		return false
	}
	return img.Pix[y*img.Width+x] == Foreground
}

// SetForeground marks (x, y) as an object pixel.
func (img *Image) SetForeground(x, y int) {
	img.Pix[y*img.Width+x] = Foreground
}

// ForegroundCount returns the number of object pixels.
func (img *Image) ForegroundCount() int {
	n := 0
	for _, v := range img.Pix {
		if v == Foreground {
			n++
		}
	}
	return n
}

// Validate checks the image is non-empty and its buffer matches its size.
func (img *Image) Validate() error {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("%w: empty image", ErrInvalidInput)
	}
	if len(img.Pix) != img.Width*img.Height {
		return fmt.Errorf("%w: buffer holds %d pixels, want %d", ErrInvalidInput, len(img.Pix), img.Width*img.Height)
	}
	return nil
}

// Gray renders the image as an 8-bit gray image, keeping its polarity.
func (img *Image) Gray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		copy(g.Pix[y*g.Stride:y*g.Stride+img.Width], img.Pix[y*img.Width:(y+1)*img.Width])
	}
	return g
}

// String renders the image with the FromRows alphabet, handy in test failures.
func (img *Image) String() string {
	var sb strings.Builder
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			if img.IsForeground(x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
