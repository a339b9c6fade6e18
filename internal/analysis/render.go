package analysis

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"blobscope/pkg/colorutil"
)

// RenderOptions configures how object features are drawn.
type RenderOptions struct {
	CenterRadius  int     // Radius of the filled center-of-mass marker
	AxisLength    float64 // Half length of the principal axis line
	AxisThickness int     // Principal axis line thickness in pixels
	DrawBounds    bool    // Outline the bounding box
}

// DefaultRenderOptions returns default rendering options.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		CenterRadius:  3,
		AxisLength:    50,
		AxisThickness: 2,
	}
}

// RenderFeatures draws the contour (red), center of mass (green) and
// principal axis (blue) of props over a copy of base.
func RenderFeatures(base image.Image, props Properties, opts RenderOptions) *image.RGBA {
	b := base.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(img, img.Bounds(), base, b.Min, draw.Src)

	bounds := img.Bounds()
	for _, p := range props.Contour {
		if p.In(bounds) {
			img.SetRGBA(p.X, p.Y, colorutil.Red)
		}
	}

	if opts.DrawBounds && !props.Bounds.Empty() {
		r := props.Bounds
		drawRect(img, r.X, r.Y, r.X+r.Width-1, r.Y+r.Height-1, colorutil.Blue)
	}

	c := props.Center.Round()
	fillCircle(img, c.X, c.Y, opts.CenterRadius, colorutil.Green)

	radians := props.Orientation * math.Pi / 180
	p1 := props.Center.Polar(-opts.AxisLength, radians)
	p2 := props.Center.Polar(opts.AxisLength, radians)
	drawThickLine(img, p1.X, p1.Y, p2.X, p2.Y, opts.AxisThickness, colorutil.Blue)

	return img
}

// fillCircle fills a circle with the given color.
func fillCircle(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	bounds := img.Bounds()

	for y := cy - r; y <= cy+r; y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		for x := cx - r; x <= cx+r; x++ {
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

// drawThickLine draws a line with given thickness.
func drawThickLine(img *image.RGBA, x1, y1, x2, y2 float64, thickness int, c color.RGBA) {
	bounds := img.Bounds()

	dx := x2 - x1
	dy := y2 - y1
	length := math.Sqrt(dx*dx + dy*dy)
	if length == 0 {
		return
	}

	// Perpendicular unit vector
	px := -dy / length
	py := dx / length

	halfThick := float64(thickness) / 2
	for t := -halfThick; t <= halfThick; t += 1.0 {
		drawLine(img,
			int(math.Round(x1+px*t)), int(math.Round(y1+py*t)),
			int(math.Round(x2+px*t)), int(math.Round(y2+py*t)),
			c, bounds)
	}
}

// drawLine draws a line using Bresenham's algorithm.
func drawLine(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA, bounds image.Rectangle) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	sx, sy := -1, -1
	if x1 < x2 {
		sx = 1
	}
	if y1 < y2 {
		sy = 1
	}

	err := dx - dy
	for {
		if x1 >= bounds.Min.X && x1 < bounds.Max.X && y1 >= bounds.Min.Y && y1 < bounds.Max.Y {
			img.SetRGBA(x1, y1, c)
		}
		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// drawRect draws a rectangle outline.
func drawRect(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	bounds := img.Bounds()
	drawLine(img, x1, y1, x2, y1, c, bounds)
	drawLine(img, x1, y2, x2, y2, c, bounds)
	drawLine(img, x1, y1, x1, y2, c, bounds)
	drawLine(img, x2, y1, x2, y2, c, bounds)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
