// Package analysis computes geometric descriptors of labeled objects.
package analysis

import (
	"fmt"
	"image"
	"math"
	"sort"

	"blobscope/internal/binimg"
	"blobscope/internal/contour"
	"blobscope/internal/labeling"
	"blobscope/pkg/geometry"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// epsilon keeps the elongation and thinness ratios finite for degenerate
// regions (zero minor-axis variance, empty contour).
const epsilon = 1e-6

// Properties describes one labeled object.
type Properties struct {
	Label  int              `json:"label"`
	Area   int              `json:"area"`
	Center geometry.Point2D `json:"center"`
	Bounds geometry.RectInt `json:"bounds"`

	// Central second-order moments normalized by area.
	M11 float64 `json:"m11"`
	M20 float64 `json:"m20"`
	M02 float64 `json:"m02"`

	// Orientation of the principal axis in degrees, in [-90, 90].
	// Rotationally symmetric regions (m11 = 0, m20 = m02) report 0.
	Orientation float64 `json:"orientation"`
	// Elongation is sqrt(lambda1/lambda2) of the covariance matrix. It is
	// >= 1 for regions with spread in both axes; a single pixel reports 0.
	Elongation float64 `json:"elongation"`

	Perimeter int     `json:"perimeter"` // external contour pixel count
	Thinness  float64 `json:"thinness"`  // 4*pi*area / perimeter^2

	Contour   []image.Point `json:"contour,omitempty"`
	ArcLength float64       `json:"arc_length"` // Euclidean length of the contour
	HullArea  float64       `json:"hull_area"`  // area of the contour's convex hull
}

// NormalizedOrientation maps Orientation into [0, 180).
func (p Properties) NormalizedOrientation() float64 {
	phi := p.Orientation
	if phi < 0 {
		phi += 180
	}
	if phi >= 180 {
		phi -= 180
	}
	return phi
}

// Analyze computes the properties of label in m, tracing its contour with
// tracer. Label 0 fails with ErrInvalidLabel, a label no pixel carries with
// ErrEmptyRegion. The label map is not modified.
func Analyze(m *labeling.LabelMap, label int, tracer contour.Tracer) (Properties, error) {
	if label <= 0 {
		return Properties{}, fmt.Errorf("%w: %d", ErrInvalidLabel, label)
	}
	pts := m.Pixels(label)
	if len(pts) == 0 {
		return Properties{}, fmt.Errorf("%w: label %d", ErrEmptyRegion, label)
	}
	return analyzeRegion(m.Width, m.Height, label, pts, tracer)
}

// AnalyzeAll computes the properties of every label in m, ordered by label.
func AnalyzeAll(m *labeling.LabelMap, tracer contour.Tracer) ([]Properties, error) {
	regions := m.Regions()
	labels := make([]int, 0, len(regions))
	for l := range regions {
		labels = append(labels, l)
	}
	sort.Ints(labels)

	out := make([]Properties, 0, len(labels))
	for _, l := range labels {
		props, err := analyzeRegion(m.Width, m.Height, l, regions[l], tracer)
		if err != nil {
			return nil, err
		}
		out = append(out, props)
	}
	return out, nil
}

// SelectAt analyzes the object under pt. It replaces the click handler of
// an interactive viewer with a plain call.
func SelectAt(m *labeling.LabelMap, pt image.Point, tracer contour.Tracer) (Properties, error) {
	if !m.InBounds(pt.X, pt.Y) {
		return Properties{}, fmt.Errorf("%w: (%d, %d) outside %dx%d", ErrOutOfBounds, pt.X, pt.Y, m.Width, m.Height)
	}
	label := m.At(pt.X, pt.Y)
	if label == 0 {
		return Properties{}, fmt.Errorf("%w: (%d, %d) is background", ErrInvalidLabel, pt.X, pt.Y)
	}
	return Analyze(m, label, tracer)
}

func analyzeRegion(width, height, label int, pts []image.Point, tracer contour.Tracer) (Properties, error) {
	props := Properties{
		Label:  label,
		Area:   len(pts),
		Bounds: geometry.BoundingBox(pts),
	}

	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i] = float64(p.X)
		ys[i] = float64(p.Y)
	}
	props.Center = geometry.NewPoint2D(stat.Mean(xs, nil), stat.Mean(ys, nil))

	for i := range pts {
		dx := xs[i] - props.Center.X
		dy := ys[i] - props.Center.Y
		props.M11 += dx * dy
		props.M20 += dx * dx
		props.M02 += dy * dy
	}
	area := float64(props.Area)
	props.M11 /= area
	props.M20 /= area
	props.M02 /= area

	props.Orientation = 0.5 * math.Atan2(2*props.M11, props.M20-props.M02) * 180 / math.Pi

	lambda1, lambda2, err := covarianceEigenvalues(props.M20, props.M11, props.M02)
	if err != nil {
		return Properties{}, fmt.Errorf("label %d: %w", label, err)
	}
	props.Elongation = math.Sqrt(lambda1 / math.Max(lambda2, epsilon))

	mask, err := regionMask(width, height, pts)
	if err != nil {
		return Properties{}, err
	}
	props.Contour = tracer.Trace(mask)
	props.Perimeter = len(props.Contour)
	props.Thinness = 4 * math.Pi * area / (float64(props.Perimeter*props.Perimeter) + epsilon)

	poly := geometry.PixelPolygon(props.Contour)
	props.ArcLength = geometry.ArcLength(poly)
	props.HullArea = geometry.PolygonArea(geometry.ConvexHull(poly))

	return props, nil
}

// covarianceEigenvalues returns the eigenvalues of [[m20 m11] [m11 m02]],
// largest first.
func covarianceEigenvalues(m20, m11, m02 float64) (lambda1, lambda2 float64, err error) {
	cov := mat.NewSymDense(2, []float64{
		m20, m11,
		m11, m02,
	})
	var eig mat.EigenSym
	if ok := eig.Factorize(cov, false); !ok {
		return 0, 0, fmt.Errorf("eigen decomposition of covariance failed")
	}
	values := eig.Values(nil) // ascending
	return values[1], values[0], nil
}

// regionMask builds a single-region binary mask from pixel coordinates.
func regionMask(width, height int, pts []image.Point) (*binimg.Image, error) {
	mask, err := binimg.New(width, height)
	if err != nil {
		return nil, err
	}
	for _, p := range pts {
		mask.SetForeground(p.X, p.Y)
	}
	return mask, nil
}
