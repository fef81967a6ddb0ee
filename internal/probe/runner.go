package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/litterpredict/internal/domain/dataset"
	"github.com/okian/litterpredict/pkg/logger"
)

const runningMessage = "Litter Prediction API is running!"

type messageResponse struct {
	Message string `json:"message"`
}

// Run executes the complete probe against cfg.BaseURL.
func Run(ctx context.Context, cfg *Config) (Stats, error) {
	stats := Stats{StartTime: time.Now()}
	log := logger.Named("probe")

	log.Info(ctx, "starting litter prediction probe",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("samples", cfg.Samples),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
		logger.Bool("verbose", cfg.Verbose))

	c := newClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: service is up
	if err := checkRunning(ctx, c); err != nil {
		return stats, fmt.Errorf("service check failed: %w", err)
	}

	// Step 2: data intake acknowledges the batch size
	posted, acked, err := postBatch(ctx, c, cfg)
	stats.ItemsPosted, stats.ItemsAcknowledged = posted, acked
	if err != nil {
		return stats, fmt.Errorf("data submission failed: %w", err)
	}

	// Step 3: predictions for every category and weekday
	results := queryAll(ctx, cfg, c, Queries())
	stats.Queries = len(results)
	var firstErr error
	for _, r := range results {
		if r.Err != nil {
			stats.Failed++
			if firstErr == nil {
				firstErr = r.Err
			}
			continue
		}
		stats.Succeeded++
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if stats.Failed > 0 {
		return stats, fmt.Errorf("%w: %d of %d: %w", ErrQueriesFailed, stats.Failed, stats.Queries, firstErr)
	}
	log.Info(ctx, "probe completed successfully")
	return stats, nil
}

func checkRunning(ctx context.Context, c *client) error {
	var msg messageResponse
	if err := c.get(ctx, "/", &msg); err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if msg.Message != runningMessage {
		return fmt.Errorf("%w: unexpected message %q", ErrUnhealthy, msg.Message)
	}
	logger.Named("probe").Info(ctx, "service is running")
	return nil
}

func postBatch(ctx context.Context, c *client, cfg *Config) (int, int, error) {
	readings := dataset.Synthesize(cfg.Seed, max(cfg.Samples, 1))

	var msg messageResponse
	if err := c.post(ctx, "/data", readings, &msg); err != nil {
		return len(readings), 0, err
	}

	var acked int
	if _, err := fmt.Sscanf(msg.Message, "Successfully received %d litter items.", &acked); err != nil {
		return len(readings), 0, fmt.Errorf("%w: unparseable acknowledgement %q", ErrAckMismatch, msg.Message)
	}
	if acked != len(readings) {
		return len(readings), acked, fmt.Errorf("%w: posted %d, acknowledged %d", ErrAckMismatch, len(readings), acked)
	}

	logger.Named("probe").Info(ctx, "data batch acknowledged", logger.Int("items", acked))
	return len(readings), acked, nil
}

func displayFinalStats(ctx context.Context, stats Stats) {
	var successRate, queriesPerSecond float64
	if stats.Queries > 0 {
		successRate = float64(stats.Succeeded) / float64(stats.Queries) * percentageMultiplier
	}
	if stats.Duration > 0 {
		queriesPerSecond = float64(stats.Queries) / stats.Duration.Seconds()
	}

	logger.Named("probe").Info(ctx, "final statistics",
		logger.Int("itemsPosted", stats.ItemsPosted),
		logger.Int("itemsAcknowledged", stats.ItemsAcknowledged),
		logger.Int("queries", stats.Queries),
		logger.Int("succeeded", stats.Succeeded),
		logger.Int("failed", stats.Failed),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("queriesPerSecond", queriesPerSecond))
}
