package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLabel indicates label 0 or a label the map does not hold.
	ErrInvalidLabel = errors.New("analysis: invalid label")
	// ErrEmptyRegion indicates a label with no pixels. It wraps ErrInvalidLabel.
	ErrEmptyRegion = fmt.Errorf("%w: empty region", ErrInvalidLabel)
	// ErrOutOfBounds indicates a selection outside the label map.
	ErrOutOfBounds = errors.New("analysis: point outside label map")
)
