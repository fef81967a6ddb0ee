package probe

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/okian/litterpredict/internal/domain/dataset"
	"github.com/okian/litterpredict/internal/domain/types"
	"github.com/okian/litterpredict/pkg/logger"
)

type locationResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Unit      string  `json:"unit"`
}

type temperatureResponse struct {
	Prediction float64 `json:"prediction"`
	Unit       string  `json:"unit"`
}

// Queries returns every known category crossed with every weekday, followed
// by the unseen category for each weekday.
func Queries() []Query {
	cats := append(dataset.Categories(), UnseenCategory)
	days := dataset.Weekdays()
	out := make([]Query, 0, len(cats)*len(days))
	for _, c := range cats {
		for _, d := range days {
			out = append(out, Query{Category: c, DayOfWeek: d})
		}
	}
	return out
}

// queryAll runs every query through a bounded worker pool. Results keep the
// order of queries.
func queryAll(ctx context.Context, cfg *Config, c *client, queries []Query) []Result {
	log := logger.Named("probe")
	workers := max(cfg.Workers, 1)
	log.Info(ctx, "requesting predictions",
		logger.Int("queries", len(queries)),
		logger.Int("workers", workers))

	results := make([]Result, len(queries))
	var done, failed int64

	jobs := make(chan int, workers*workerChannelMultiplier)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					results[i] = Result{Query: queries[i], Err: ctx.Err()}
					atomic.AddInt64(&failed, 1)
					continue
				}
				results[i] = querySingle(ctx, c, queries[i])
				if results[i].Err != nil {
					atomic.AddInt64(&failed, 1)
					log.Warn(ctx, "prediction failed",
						logger.String("category", queries[i].Category),
						logger.String("day_of_week", queries[i].DayOfWeek),
						logger.Error(results[i].Err))
				} else if cfg.Verbose {
					log.Info(ctx, "prediction",
						logger.String("category", queries[i].Category),
						logger.String("day_of_week", queries[i].DayOfWeek),
						logger.Float64("latitude", results[i].Latitude),
						logger.Float64("longitude", results[i].Longitude),
						logger.Float64("temperature", results[i].Temperature))
				}
				atomic.AddInt64(&done, 1)
			}
		}()
	}

	for i := range queries {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	log.Info(ctx, "predictions completed",
		logger.Int("succeeded", int(atomic.LoadInt64(&done)-atomic.LoadInt64(&failed))),
		logger.Int("failed", int(atomic.LoadInt64(&failed))))
	return results
}

func querySingle(ctx context.Context, c *client, q Query) Result {
	res := Result{Query: q}

	var loc locationResponse
	if err := c.post(ctx, "/predict/location", q, &loc); err != nil {
		res.Err = err
		return res
	}
	if err := checkLocation(loc); err != nil {
		res.Err = err
		return res
	}

	var temp temperatureResponse
	if err := c.post(ctx, "/predict/temperature", q, &temp); err != nil {
		res.Err = err
		return res
	}
	if err := checkTemperature(temp); err != nil {
		res.Err = err
		return res
	}

	res.Latitude, res.Longitude, res.Temperature = loc.Latitude, loc.Longitude, temp.Prediction
	return res
}

func checkLocation(r locationResponse) error {
	if r.Unit != types.UnitDegrees {
		return fmt.Errorf("%w: location unit %q", ErrBadPrediction, r.Unit)
	}
	if !finite(r.Latitude) || !finite(r.Longitude) {
		return fmt.Errorf("%w: non-finite location (%v, %v)", ErrBadPrediction, r.Latitude, r.Longitude)
	}
	return nil
}

func checkTemperature(r temperatureResponse) error {
	if r.Unit != types.UnitDegreesCelsius {
		return fmt.Errorf("%w: temperature unit %q", ErrBadPrediction, r.Unit)
	}
	if !finite(r.Prediction) {
		return fmt.Errorf("%w: non-finite temperature %v", ErrBadPrediction, r.Prediction)
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
