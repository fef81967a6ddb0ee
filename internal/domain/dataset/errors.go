package dataset

import "errors"

// Sentinel error kinds for this package.
var (
	ErrMissingColumns = errors.New("required columns missing")
	ErrMalformedData  = errors.New("malformed sensor data")
	ErrBadTimestamp   = errors.New("unparseable dateTime")
	ErrNoRows         = errors.New("no usable rows")
)
