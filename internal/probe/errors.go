package probe

import "errors"

var (
	ErrUnhealthy      = errors.New("service is not running")
	ErrUnexpectedCode = errors.New("unexpected status code")
	ErrAckMismatch    = errors.New("acknowledged count mismatch")
	ErrBadPrediction  = errors.New("invalid prediction")
	ErrQueriesFailed  = errors.New("prediction queries failed")
)
