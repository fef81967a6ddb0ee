package service

import "errors"

// Sentinel error kinds for this package.
var (
	ErrModelsUnavailable = errors.New("models unavailable")
	ErrNotReady          = errors.New("models not loaded")
	ErrPrediction        = errors.New("prediction failed")
	ErrEmptyBatch        = errors.New("no litter items received")
	ErrInvalidItem       = errors.New("litter item must be an object")
)
