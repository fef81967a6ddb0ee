package dataset

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/okian/litterpredict/internal/domain/model"
)

// Synthetic data parameters.
const (
	DefaultSeed    = 42
	DefaultSamples = 1000

	hoursPerYear = 365 * 24

	latMin, latMax   = 51.4, 51.7
	lonMin, lonMax   = 4.5, 5.0
	tempMin, tempMax = 10.0, 30.0
	confMin, confMax = 0.5, 1.0
)

// Categories lists the litter categories sensors report.
func Categories() []string {
	return []string{"organisch", "grof metaal", "blikjes", "plastic", "papier", "glas", "sigaret"}
}

// Weekdays lists English weekday names Monday first.
func Weekdays() []string {
	return []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
}

var syntheticEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Synthesize generates n plausible readings. The same seed always yields the
// same readings, ids included.
func Synthesize(seed int64, n int) []model.Reading {
	if n < 0 {
		n = 0
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible data, not security
	cats := Categories()

	out := make([]model.Reading, n)
	for i := range out {
		id, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			// math/rand never fails a read.
			id = uuid.Nil
		}
		out[i] = model.Reading{
			ID:          id.String(),
			DateTime:    syntheticEpoch.Add(time.Duration(rng.Intn(hoursPerYear)) * time.Hour),
			Category:    cats[rng.Intn(len(cats))],
			LocationLat: uniform(rng, latMin, latMax),
			LocationLon: uniform(rng, lonMin, lonMax),
			Temperature: uniform(rng, tempMin, tempMax),
			Confidence:  uniform(rng, confMin, confMax),
		}
	}
	return out
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
