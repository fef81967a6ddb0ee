package service

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/okian/litterpredict/internal/adapters/ledger"
	"github.com/okian/litterpredict/internal/adapters/repository"
	"github.com/okian/litterpredict/internal/domain/dataset"
	"github.com/okian/litterpredict/internal/domain/forest"
	"github.com/okian/litterpredict/internal/domain/pipeline"
	"github.com/okian/litterpredict/internal/domain/types"
	"github.com/okian/litterpredict/pkg/logger"
	"github.com/okian/litterpredict/pkg/metrics"
)

// RunRecorder stores training run history.
type RunRecorder interface {
	Record(ctx context.Context, entries []ledger.Entry) error
}

// Evaluation holds holdout scores of one target.
type Evaluation struct {
	R2   float64 `json:"r2"`
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
}

// TargetReport describes the outcome for one target.
type TargetReport struct {
	Target     types.Target  `json:"target"`
	Artifact   string        `json:"artifact"`
	Duration   time.Duration `json:"duration"`
	Evaluation *Evaluation   `json:"evaluation,omitempty"`
}

// Report summarizes a training run.
type Report struct {
	RunID       string         `json:"runId"`
	Source      string         `json:"source"`
	Rows        int            `json:"rows"`
	HoldoutRows int            `json:"holdoutRows"`
	Features    []string       `json:"features"`
	Targets     []TargetReport `json:"targets"`
}

// Trainer fits and persists one pipeline per target.
type Trainer struct {
	store      repository.Store
	recorder   RunRecorder
	estimators int
	seed       int64
	workers    int
	holdout    float64
	tree       []forest.Option
	logger     logger.Logger
}

// TrainerOption applies a configuration option to the Trainer.
type TrainerOption func(*Trainer)

// WithEstimators sets the number of trees per forest.
func WithEstimators(n int) TrainerOption {
	return func(t *Trainer) {
		if n > 0 {
			t.estimators = n
		}
	}
}

// WithSeed sets the forest and holdout seed.
func WithSeed(seed int64) TrainerOption {
	return func(t *Trainer) { t.seed = seed }
}

// WithTrainWorkers bounds concurrent tree fitting.
func WithTrainWorkers(n int) TrainerOption {
	return func(t *Trainer) {
		if n > 0 {
			t.workers = n
		}
	}
}

// WithHoldout sets the evaluation share; 0 disables evaluation.
func WithHoldout(ratio float64) TrainerOption {
	return func(t *Trainer) {
		if ratio >= 0 && ratio < 1 {
			t.holdout = ratio
		}
	}
}

// WithForestOptions passes tree growth limits to every forest.
func WithForestOptions(opts ...forest.Option) TrainerOption {
	return func(t *Trainer) { t.tree = append(t.tree, opts...) }
}

// WithRecorder appends every run to a ledger.
func WithRecorder(r RunRecorder) TrainerOption {
	return func(t *Trainer) { t.recorder = r }
}

// WithTrainerLogger sets a custom logger for the trainer.
func WithTrainerLogger(l logger.Logger) TrainerOption {
	return func(t *Trainer) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTrainer creates a trainer persisting to store.
func NewTrainer(store repository.Store, opts ...TrainerOption) *Trainer {
	t := &Trainer{
		store:      store,
		estimators: forest.DefaultEstimators,
		seed:       forest.DefaultSeed,
		workers:    runtime.NumCPU(),
		logger:     logger.Get().Named("trainer"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Trainer) forestOptions() []forest.Option {
	opts := []forest.Option{
		forest.WithEstimators(t.estimators),
		forest.WithSeed(t.seed),
		forest.WithWorkers(t.workers),
	}
	return append(opts, t.tree...)
}

// Run trains latitude, longitude and temperature in that order. The persisted
// pipelines are fit on every row; holdout scores come from separate
// evaluation fits.
func (t *Trainer) Run(ctx context.Context, ts dataset.TrainingSet, source dataset.Source) (Report, error) {
	report := Report{
		RunID:  uuid.NewString(),
		Source: string(source),
		Rows:   ts.Rows(),
	}
	log := t.logger

	var trainSet, testSet dataset.TrainingSet
	trainIdx, testIdx := dataset.HoldoutSplit(ts.Rows(), t.holdout, t.seed)
	if len(testIdx) > 0 {
		trainSet, testSet = ts.Subset(trainIdx), ts.Subset(testIdx)
		report.HoldoutRows = len(testIdx)
	}

	log.Info(ctx, "training started",
		logger.String("run_id", report.RunID),
		logger.String("source", report.Source),
		logger.Int("rows", report.Rows),
		logger.Int("holdout_rows", report.HoldoutRows),
		logger.Int("estimators", t.estimators),
		logger.Int("workers", t.workers))

	for _, target := range types.Targets() {
		start := time.Now()
		p := pipeline.New(target, t.forestOptions()...)
		if err := p.Fit(ctx, ts.Features, ts.Targets[target]); err != nil {
			return report, err
		}
		if report.Features == nil {
			report.Features = p.Encoder.FeatureNames()
			log.Info(ctx, "encoder features",
				logger.String("run_id", report.RunID),
				logger.Int("width", len(report.Features)),
				logger.Strings("features", report.Features))
		}
		path, err := t.store.Save(ctx, p)
		if err != nil {
			return report, fmt.Errorf("save %s: %w", target, err)
		}
		tr := TargetReport{Target: target, Artifact: path, Duration: time.Since(start)}
		metrics.RecordTrainingDuration(target.String(), tr.Duration)

		if report.HoldoutRows > 0 {
			ev, err := t.evaluate(ctx, target, trainSet, testSet)
			if err != nil {
				return report, err
			}
			tr.Evaluation = &ev
			metrics.RecordTrainingScore(target.String(), "r2", ev.R2)
			metrics.RecordTrainingScore(target.String(), "mae", ev.MAE)
			metrics.RecordTrainingScore(target.String(), "rmse", ev.RMSE)
		}

		fields := []logger.Field{
			logger.String("run_id", report.RunID),
			logger.String("target", target.String()),
			logger.String("artifact", path),
			logger.Duration("took", tr.Duration),
		}
		if tr.Evaluation != nil {
			fields = append(fields,
				logger.Float64("r2", tr.Evaluation.R2),
				logger.Float64("mae", tr.Evaluation.MAE),
				logger.Float64("rmse", tr.Evaluation.RMSE))
		}
		log.Info(ctx, "target trained", fields...)
		report.Targets = append(report.Targets, tr)
	}
	metrics.RecordTrainingRun(report.Rows)

	if t.recorder != nil {
		if err := t.recorder.Record(ctx, t.entries(report)); err != nil {
			log.Warn(ctx, "ledger write failed", logger.Error(err))
		}
	}
	return report, nil
}

func (t *Trainer) evaluate(ctx context.Context, target types.Target, train, test dataset.TrainingSet) (Evaluation, error) {
	p := pipeline.New(target, t.forestOptions()...)
	if err := p.Fit(ctx, train.Features, train.Targets[target]); err != nil {
		return Evaluation{}, fmt.Errorf("evaluate %s: %w", target, err)
	}
	pred, err := p.Predict(test.Features)
	if err != nil {
		return Evaluation{}, fmt.Errorf("evaluate %s: %w", target, err)
	}
	return Score(pred, test.Targets[target]), nil
}

// Score compares predictions with actual values.
func Score(pred, actual []float64) Evaluation {
	abs := make([]float64, len(pred))
	sq := make([]float64, len(pred))
	for i := range pred {
		d := pred[i] - actual[i]
		abs[i] = math.Abs(d)
		sq[i] = d * d
	}
	return Evaluation{
		R2:   stat.RSquaredFrom(pred, actual, nil),
		MAE:  stat.Mean(abs, nil),
		RMSE: math.Sqrt(stat.Mean(sq, nil)),
	}
}

func (t *Trainer) entries(r Report) []ledger.Entry {
	now := time.Now().UTC()
	out := make([]ledger.Entry, 0, len(r.Targets))
	for _, tr := range r.Targets {
		e := ledger.Entry{
			RunID:       r.RunID,
			Target:      tr.Target.String(),
			Source:      r.Source,
			Rows:        r.Rows,
			Estimators:  t.estimators,
			Seed:        t.seed,
			HoldoutRows: r.HoldoutRows,
			Artifact:    tr.Artifact,
			TrainedAt:   now,
		}
		if ev := tr.Evaluation; ev != nil {
			r2, mae, rmse := ev.R2, ev.MAE, ev.RMSE
			e.R2, e.MAE, e.RMSE = &r2, &mae, &rmse
		}
		out = append(out, e)
	}
	return out
}
