package imageio

import "errors"

// ErrUnsupportedFormat indicates a file extension with no encoder.
var ErrUnsupportedFormat = errors.New("imageio: unsupported image format")
