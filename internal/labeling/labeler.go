package labeling

import (
	"fmt"
	"strings"

	"blobscope/internal/binimg"
)

// Algorithm selects a labeling strategy.
type Algorithm int

const (
	AlgorithmBFS Algorithm = iota
	AlgorithmTwoPass
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmBFS:
		return "bfs"
	case AlgorithmTwoPass:
		return "twopass"
	default:
		return "unknown"
	}
}

// ParseAlgorithm maps a name ("bfs", "twopass") to an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bfs", "flood", "traversal":
		return AlgorithmBFS, nil
	case "twopass", "two-pass", "2pass":
		return AlgorithmTwoPass, nil
	}
	return 0, fmt.Errorf("unknown labeling algorithm %q", name)
}

// Labeler assigns connected-component labels to a binary image.
type Labeler interface {
	Label(img *binimg.Image) (*LabelMap, error)
}

// Options configures a labeler.
type Options struct {
	// Capacity is the largest label the caller can store; 0 means unbounded.
	// Exceeding it fails with ErrCapacityExceeded.
	Capacity int
}

// New returns the labeler for algorithm a.
func New(a Algorithm, opts Options) (Labeler, error) {
	switch a {
	case AlgorithmBFS:
		return &BFS{Options: opts}, nil
	case AlgorithmTwoPass:
		return &TwoPass{Options: opts}, nil
	}
	return nil, fmt.Errorf("unknown labeling algorithm %d", a)
}

// checkCapacity fails once label no longer fits in opts.Capacity.
func (o Options) checkCapacity(label int) error {
	if o.Capacity > 0 && label > o.Capacity {
		return fmt.Errorf("%w: component %d exceeds capacity %d", ErrCapacityExceeded, label, o.Capacity)
	}
	return nil
}

// neighbors8 lists the 8-connected offsets in raster order.
var neighbors8 = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// causal4 lists the neighbors already visited by a raster scan:
// NW, N, NE and W.
var causal4 = [4][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0},
}
