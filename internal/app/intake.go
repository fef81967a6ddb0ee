package service

import (
	"context"
	"fmt"

	"github.com/okian/litterpredict/pkg/logger"
	"github.com/okian/litterpredict/pkg/metrics"
)

// Intake acknowledges batches of sensor items. Batches are counted and
// logged; nothing is stored and the models are not involved.
type Intake struct {
	logger logger.Logger
}

// NewIntake returns an Intake using the package logger.
func NewIntake() *Intake {
	return &Intake{logger: logger.Get().Named("intake")}
}

// Receive returns the number of items in the batch. A null item rejects
// the whole batch.
func (i *Intake) Receive(ctx context.Context, items []map[string]any) (int, error) {
	if len(items) == 0 {
		return 0, ErrEmptyBatch
	}
	for idx, item := range items {
		if item == nil {
			return 0, fmt.Errorf("%w: item %d is null", ErrInvalidItem, idx)
		}
	}
	metrics.RecordDataBatch(len(items))
	i.logger.Info(ctx, "litter items received", logger.Int("count", len(items)))
	return len(items), nil
}
