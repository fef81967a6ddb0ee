package forest

import "errors"

// Sentinel error kinds for this package.
var (
	ErrEmptyInput     = errors.New("empty training input")
	ErrLengthMismatch = errors.New("feature and target lengths differ")
	ErrRaggedInput    = errors.New("rows have inconsistent widths")
	ErrNonFinite      = errors.New("non-finite target value")
	ErrNotFitted      = errors.New("forest not fitted")
	ErrWidthMismatch  = errors.New("feature width differs from training")
)
