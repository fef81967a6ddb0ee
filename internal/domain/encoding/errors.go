package encoding

import "errors"

// Sentinel error kinds for this package.
var (
	ErrNotFitted       = errors.New("encoder not fitted")
	ErrMissingColumn   = errors.New("column missing from frame")
	ErrUnknownCategory = errors.New("unknown category")
	ErrEmptyFrame      = errors.New("empty frame")
)
