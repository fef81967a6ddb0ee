package pipeline

import "errors"

// Sentinel error kinds for this package.
var (
	ErrNotFitted = errors.New("pipeline not fitted")
	ErrDecode    = errors.New("decode pipeline")
)
