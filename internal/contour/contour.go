// Package contour extracts ordered external boundaries from binary masks.
//
// Masks follow the binimg polarity: 0 is the object. The tracer follows
// the border of the first object pixel in raster order (top-most, then
// left-most) with 8-connectivity, which yields the same pixel sequence
// length as OpenCV's FindContours with RETR_EXTERNAL and CHAIN_APPROX_NONE.
package contour

import (
	"image"

	"blobscope/internal/binimg"
)

// Tracer extracts the external contour of the first region in a mask.
type Tracer interface {
	Trace(mask *binimg.Image) []image.Point
}

// Direction is a chain code direction. 0 is east and codes increase
// counter-clockwise as seen on screen (y grows downward, so 2 is north).
type Direction int

const (
	East Direction = iota
	NorthEast
	North
	NorthWest
	West
	SouthWest
	South
	SouthEast
)

var (
	dirDX = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
	dirDY = [8]int{0, -1, -1, -1, 0, 1, 1, 1}
)

// Step returns p moved one pixel along d.
func (d Direction) Step(p image.Point) image.Point {
	return image.Point{X: p.X + dirDX[d], Y: p.Y + dirDY[d]}
}

// Moore traces boundaries by 8-neighbor border following.
type Moore struct{}

// Trace implements Tracer. It returns nil for a mask without foreground and
// a single point for an isolated pixel. The closing repeat of the start
// pixel is not included.
func (Moore) Trace(mask *binimg.Image) []image.Point {
	code, ok := follow(mask)
	if !ok {
		return nil
	}
	return code.Points()
}

// firstPixel returns the first foreground pixel in raster order.
func firstPixel(mask *binimg.Image) (image.Point, bool) {
	for y := 0; y < mask.Height; y++ {
		for x := 0; x < mask.Width; x++ {
			if mask.IsForeground(x, y) {
				return image.Point{X: x, Y: y}, true
			}
		}
	}
	return image.Point{}, false
}

// nextDirection searches the neighbors of cur for the next border pixel.
// The search starts at (prev+7)%8 for even prev and (prev+6)%8 for odd
// prev and proceeds counter-clockwise.
func nextDirection(mask *binimg.Image, cur image.Point, prev Direction) (Direction, bool) {
	start := (prev + 7) % 8
	if prev%2 == 1 {
		start = (prev + 6) % 8
	}
	for i := Direction(0); i < 8; i++ {
		d := (start + i) % 8
		n := d.Step(cur)
		if mask.IsForeground(n.X, n.Y) {
			return d, true
		}
	}
	return prev, false
}

// follow walks the border from the first pixel and records the chain code.
// The walk stops when it reaches the second border pixel again coming from
// the start pixel, so thin structures are traversed on both sides.
func follow(mask *binimg.Image) (Code, bool) {
	start, ok := firstPixel(mask)
	if !ok {
		return Code{}, false
	}

	code := Code{Start: start}
	dir := SouthEast
	cur := start
	var second image.Point
	maxSteps := 4*mask.Width*mask.Height + 8
	for steps := 0; steps < maxSteps; steps++ {
		d, found := nextDirection(mask, cur, dir)
		if !found {
			// isolated pixel
			return code, true
		}
		next := d.Step(cur)
		if steps == 0 {
			second = next
		} else if cur == start && next == second {
			return code, true
		}
		code.Directions = append(code.Directions, d)
		dir = d
		cur = next
	}
	return code, true
}
