package labeling

import "errors"

// ErrCapacityExceeded indicates more components than the requested label
// storage width can represent.
var ErrCapacityExceeded = errors.New("labeling: label capacity exceeded")
