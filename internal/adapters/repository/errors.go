package repository

import "errors"

// Sentinel kinds for artifact errors.
var (
	ErrArtifactMissing = errors.New("model artifact missing")
	ErrArtifactCorrupt = errors.New("model artifact corrupt")
	ErrTargetMismatch  = errors.New("model artifact holds another target")
	ErrInvalidTarget   = errors.New("invalid target")
)
