package geometry

import (
	"image"
	"math"
	"sort"
)

// PixelPolygon converts an ordered pixel boundary into a polygon.
func PixelPolygon(points []image.Point) []Point2D {
	poly := make([]Point2D, len(points))
	for i, p := range points {
		poly[i] = Point2D{X: float64(p.X), Y: float64(p.Y)}
	}
	return poly
}

// ConvexHull computes the convex hull of a set of points using Andrew's
// monotone chain. Collinear points on the hull are dropped.
func ConvexHull(points []Point2D) []Point2D {
	if len(points) < 3 {
		return append([]Point2D(nil), points...)
	}

	// Make a copy to avoid modifying the input
	pts := make([]Point2D, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	hull := make([]Point2D, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && crossProduct(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && crossProduct(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	// Last point repeats the first
	return hull[:len(hull)-1]
}

// PolygonArea returns the unsigned area enclosed by a closed polygon
// (shoelace formula).
func PolygonArea(polygon []Point2D) float64 {
	if len(polygon) < 3 {
		return 0
	}
	var sum float64
	for i := range polygon {
		j := (i + 1) % len(polygon)
		sum += polygon[i].X*polygon[j].Y - polygon[j].X*polygon[i].Y
	}
	return math.Abs(sum) / 2
}

// ArcLength returns the length of a closed polyline.
func ArcLength(polygon []Point2D) float64 {
	if len(polygon) < 2 {
		return 0
	}
	var length float64
	for i := range polygon {
		length += polygon[i].Distance(polygon[(i+1)%len(polygon)])
	}
	return length
}

// crossProduct returns the z-component of (a-o) x (b-o).
func crossProduct(o, a, b Point2D) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}
