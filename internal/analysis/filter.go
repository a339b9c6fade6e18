package analysis

import (
	"blobscope/internal/contour"
	"blobscope/internal/labeling"
)

// Criteria selects objects by size and orientation.
type Criteria struct {
	AreaThreshold int     `json:"area_threshold"` // keep objects with area strictly below
	PhiLow        float64 `json:"phi_low"`        // degrees, inclusive
	PhiHigh       float64 `json:"phi_high"`       // degrees, inclusive
}

// Accepts reports whether props satisfy the criteria. Orientation is
// compared after normalization into [0, 180).
func (c Criteria) Accepts(props Properties) bool {
	phi := props.NormalizedOrientation()
	return props.Area < c.AreaThreshold && phi >= c.PhiLow && phi <= c.PhiHigh
}

// Decision records the outcome of filtering one label.
type Decision struct {
	Label int     `json:"label"`
	Area  int     `json:"area"`
	Phi   float64 `json:"phi"`
	Kept  bool    `json:"kept"`
}

// Filter returns a label map holding only the objects of m that satisfy c,
// with their original labels, and one decision per label in ascending label
// order. Labels are judged independently of each other.
func Filter(m *labeling.LabelMap, c Criteria, tracer contour.Tracer) (*labeling.LabelMap, []Decision, error) {
	all, err := AnalyzeAll(m, tracer)
	if err != nil {
		return nil, nil, err
	}

	keep := make(map[int]bool, len(all))
	decisions := make([]Decision, 0, len(all))
	for _, props := range all {
		kept := c.Accepts(props)
		keep[props.Label] = kept
		decisions = append(decisions, Decision{
			Label: props.Label,
			Area:  props.Area,
			Phi:   props.NormalizedOrientation(),
			Kept:  kept,
		})
	}

	out := labeling.NewLabelMap(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if l := m.At(x, y); keep[l] {
				out.Set(x, y, l)
			}
		}
	}
	return out, decisions, nil
}
