package contour

import (
	"fmt"
	"image"
	"strings"

	"blobscope/internal/binimg"
)

// Code is a Freeman chain code: a start pixel and the moves that walk the
// closed boundary back to it.
type Code struct {
	Start      image.Point
	Directions []Direction
}

// ChainCode traces the first region of mask and returns its chain code.
// ok is false when the mask has no foreground.
func ChainCode(mask *binimg.Image) (code Code, ok bool) {
	return follow(mask)
}

// Len returns the number of moves.
func (c Code) Len() int {
	return len(c.Directions)
}

// Points returns the boundary pixels visited by the code, starting at
// Start. The final move back to Start is not repeated.
func (c Code) Points() []image.Point {
	pts := make([]image.Point, 0, len(c.Directions)+1)
	p := c.Start
	pts = append(pts, p)
	for i, d := range c.Directions {
		if i == len(c.Directions)-1 {
			break
		}
		p = d.Step(p)
		pts = append(pts, p)
	}
	return pts
}

// Reconstruct draws the visited pixels into a width x height mask.
// Pixels falling outside the mask are skipped.
func (c Code) Reconstruct(width, height int) (*binimg.Image, error) {
	img, err := binimg.New(width, height)
	if err != nil {
		return nil, err
	}
	p := c.Start
	if img.InBounds(p.X, p.Y) {
		img.SetForeground(p.X, p.Y)
	}
	for _, d := range c.Directions {
		p = d.Step(p)
		if img.InBounds(p.X, p.Y) {
			img.SetForeground(p.X, p.Y)
		}
	}
	return img, nil
}

// Bounds returns the smallest rectangle holding every pixel the code visits.
func (c Code) Bounds() image.Rectangle {
	p := c.Start
	r := image.Rectangle{Min: p, Max: p.Add(image.Point{X: 1, Y: 1})}
	for _, d := range c.Directions {
		p = d.Step(p)
		r = r.Union(image.Rectangle{Min: p, Max: p.Add(image.Point{X: 1, Y: 1})})
	}
	return r
}

// Derivative returns the rotation-invariant difference code:
// (d[i+1] - d[i]) mod 8 for every move, with the wrap-around term
// (d[0] - d[n-1]) mod 8 last. Codes shorter than two moves have an empty
// derivative.
func (c Code) Derivative() Code {
	out := Code{Start: c.Start}
	n := len(c.Directions)
	if n <= 1 {
		return out
	}
	out.Directions = make([]Direction, 0, n)
	for i := 0; i < n-1; i++ {
		out.Directions = append(out.Directions, (c.Directions[i+1]-c.Directions[i]+8)%8)
	}
	out.Directions = append(out.Directions, (c.Directions[0]-c.Directions[n-1]+8)%8)
	return out
}

// String formats the code in groups of ten digits, fifty per line.
func (c Code) String() string {
	var sb strings.Builder
	for i, d := range c.Directions {
		fmt.Fprintf(&sb, "%d", int(d))
		switch {
		case (i+1)%50 == 0:
			sb.WriteByte('\n')
		case (i+1)%10 == 0:
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

// MarshalText writes the code in the form ParseCode reads.
func (c Code) MarshalText() ([]byte, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d %d %d\n", c.Start.Y, c.Start.X, len(c.Directions))
	for i, d := range c.Directions {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d", int(d))
	}
	sb.WriteByte('\n')
	return []byte(sb.String()), nil
}

// ParseCode reads a chain code written as "row col count d d d ...",
// the plain-text format used for reconstruction fixtures. Direction
// values outside 0..7 are ignored.
func ParseCode(text string) (Code, error) {
	var row, col, count int
	fields := strings.Fields(text)
	if len(fields) < 3 {
		return Code{}, fmt.Errorf("contour: chain code needs row, col and count, got %d fields", len(fields))
	}
	if _, err := fmt.Sscan(strings.Join(fields[:3], " "), &row, &col, &count); err != nil {
		return Code{}, fmt.Errorf("contour: parse chain code header: %w", err)
	}

	code := Code{Start: image.Point{X: col, Y: row}}
	for _, f := range fields[3:] {
		var d int
		if _, err := fmt.Sscan(f, &d); err != nil {
			return Code{}, fmt.Errorf("contour: parse direction %q: %w", f, err)
		}
		if d >= 0 && d <= 7 {
			code.Directions = append(code.Directions, Direction(d))
		}
	}
	return code, nil
}
