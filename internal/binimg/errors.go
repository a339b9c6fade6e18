package binimg

import "errors"

// ErrInvalidInput indicates an empty or malformed image.
var ErrInvalidInput = errors.New("binimg: invalid input image")
