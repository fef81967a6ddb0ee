package ledger

import "errors"

// Sentinel error kinds for this package.
var (
	ErrDisabled     = errors.New("training ledger disabled")
	ErrInvalidLimit = errors.New("invalid ledger limit")
)
