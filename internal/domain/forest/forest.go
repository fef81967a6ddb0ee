// Package forest implements a bagged ensemble of regression trees.
package forest

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"
)

// Default hyperparameters.
const (
	DefaultEstimators = 100
	DefaultSeed       = 42
)

// Forest averages the output of independently grown regression trees.
// Exported fields are persisted with the owning pipeline.
type Forest struct {
	Estimators      int
	Seed            int64
	Bootstrap       bool
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int

	Width int
	Trees []Tree

	workers int
}

// New creates an unfitted forest.
func New(opts ...Option) *Forest {
	f := &Forest{
		Estimators:      DefaultEstimators,
		Seed:            DefaultSeed,
		Bootstrap:       true,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		workers:         runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fitted reports whether Fit has completed.
func (f *Forest) Fitted() bool { return len(f.Trees) > 0 }

// Fit grows Estimators trees on x and y. Tree i draws its bootstrap sample
// and feature order from Seed+i, so the result does not depend on the
// number of workers.
func (f *Forest) Fit(ctx context.Context, x [][]float64, y []float64) error {
	if err := validate(x, y); err != nil {
		return err
	}

	n := len(x)
	params := treeParams{
		maxDepth:        f.MaxDepth,
		minSamplesSplit: f.MinSamplesSplit,
		minSamplesLeaf:  f.MinSamplesLeaf,
		maxFeatures:     f.MaxFeatures,
	}
	trees := make([]Tree, f.Estimators)

	workers := f.workers
	if workers <= 0 {
		workers = 1
	}
	if workers > f.Estimators {
		workers = f.Estimators
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				rng := rand.New(rand.NewSource(f.Seed + int64(idx))) //nolint:gosec // reproducible bagging
				sample := make([]int, n)
				for j := range sample {
					if f.Bootstrap {
						sample[j] = rng.Intn(n)
					} else {
						sample[j] = j
					}
				}
				trees[idx] = growTree(x, y, sample, params, rng)
			}
		}()
	}

	var err error
feed:
	for i := 0; i < f.Estimators; i++ {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	if err != nil {
		return err
	}

	f.Width = len(x[0])
	f.Trees = trees
	return nil
}

// Predict returns the mean tree output for every row.
func (f *Forest) Predict(x [][]float64) ([]float64, error) {
	if !f.Fitted() {
		return nil, ErrNotFitted
	}
	out := make([]float64, len(x))
	for r, row := range x {
		if len(row) != f.Width {
			return nil, fmt.Errorf("%w: row %d has %d features, want %d", ErrWidthMismatch, r, len(row), f.Width)
		}
		var sum float64
		for i := range f.Trees {
			sum += f.Trees[i].Predict(row)
		}
		out[r] = sum / float64(len(f.Trees))
	}
	return out, nil
}

func validate(x [][]float64, y []float64) error {
	if len(x) == 0 || len(x[0]) == 0 {
		return ErrEmptyInput
	}
	if len(x) != len(y) {
		return fmt.Errorf("%w: %d rows, %d targets", ErrLengthMismatch, len(x), len(y))
	}
	width := len(x[0])
	for i, row := range x {
		if len(row) != width {
			return fmt.Errorf("%w: row %d", ErrRaggedInput, i)
		}
	}
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: index %d", ErrNonFinite, i)
		}
	}
	return nil
}
