// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/go-gota/gota/dataframe"

	"github.com/okian/litterpredict/internal/domain/model"
	"github.com/okian/litterpredict/internal/domain/pipeline"
	"github.com/okian/litterpredict/internal/domain/types"
	"github.com/okian/litterpredict/pkg/logger"
	"github.com/okian/litterpredict/pkg/metrics"
)

// Loader fetches a trained pipeline for one target.
type Loader interface {
	Load(ctx context.Context, target types.Target) (*pipeline.Pipeline, error)
}

// Predictor turns a feature frame into one value per row.
type Predictor interface {
	Predict(features dataframe.DataFrame) ([]float64, error)
}

// ModelInfo describes a loaded model.
type ModelInfo struct {
	Target    string    `json:"target"`
	Rows      int       `json:"rows,omitempty"`
	TrainedAt time.Time `json:"trainedAt,omitempty"`
}

// Stats is a snapshot of the loaded models.
type Stats struct {
	ModelDir string      `json:"modelDir,omitempty"`
	LoadedAt time.Time   `json:"loadedAt"`
	Models   []ModelInfo `json:"models"`
}

// Service answers predictions with three independently trained pipelines.
// A constructed Service is always ready; its models are read-only.
type Service struct {
	predictors map[types.Target]Predictor
	modelDir   string
	loadedAt   time.Time
	logger     logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithModelDir records where the models were loaded from.
func WithModelDir(dir string) Option {
	return func(s *Service) { s.modelDir = dir }
}

// New loads every target through loader. Any failure is fatal: the
// returned error wraps ErrModelsUnavailable and no Service is returned.
func New(ctx context.Context, loader Loader, opts ...Option) (*Service, error) {
	predictors := make(map[types.Target]Predictor, len(types.Targets()))
	for _, t := range types.Targets() {
		p, err := loader.Load(ctx, t)
		if err != nil {
			metrics.UpdateModelsLoaded(0)
			return nil, fmt.Errorf("%w: %s: %w", ErrModelsUnavailable, t, err)
		}
		predictors[t] = p
	}
	return NewFromPredictors(predictors, opts...)
}

// NewFromPredictors builds a Service from already loaded predictors.
// Every target must be present.
func NewFromPredictors(predictors map[types.Target]Predictor, opts ...Option) (*Service, error) {
	s := &Service{
		predictors: make(map[types.Target]Predictor, len(predictors)),
		loadedAt:   time.Now().UTC(),
		logger:     logger.Get().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, t := range types.Targets() {
		p, ok := predictors[t]
		if !ok || p == nil {
			return nil, fmt.Errorf("%w: %s not provided", ErrModelsUnavailable, t)
		}
		s.predictors[t] = p
	}
	metrics.UpdateModelsLoaded(len(s.predictors))
	s.logger.Info(context.Background(), "models ready",
		logger.Int("count", len(s.predictors)),
		logger.String("dir", s.modelDir))
	return s, nil
}

// PredictLocation predicts latitude and longitude with their separate models.
func (s *Service) PredictLocation(ctx context.Context, row model.FeatureRow) (model.LocationPrediction, error) {
	if s == nil {
		return model.LocationPrediction{}, ErrNotReady
	}
	df, err := frame(row)
	if err != nil {
		return model.LocationPrediction{}, err
	}
	lat, err := s.predict(ctx, types.Latitude, df)
	if err != nil {
		return model.LocationPrediction{}, err
	}
	lon, err := s.predict(ctx, types.Longitude, df)
	if err != nil {
		return model.LocationPrediction{}, err
	}
	return model.LocationPrediction{Latitude: lat, Longitude: lon, Unit: types.UnitDegrees}, nil
}

// PredictTemperature predicts the temperature for a feature row.
func (s *Service) PredictTemperature(ctx context.Context, row model.FeatureRow) (model.TemperaturePrediction, error) {
	if s == nil {
		return model.TemperaturePrediction{}, ErrNotReady
	}
	df, err := frame(row)
	if err != nil {
		return model.TemperaturePrediction{}, err
	}
	v, err := s.predict(ctx, types.Temperature, df)
	if err != nil {
		return model.TemperaturePrediction{}, err
	}
	return model.TemperaturePrediction{Prediction: v, Unit: types.UnitDegreesCelsius}, nil
}

// Stats reports which models are loaded.
func (s *Service) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	st := Stats{ModelDir: s.modelDir, LoadedAt: s.loadedAt}
	for _, t := range types.Targets() {
		info := ModelInfo{Target: t.String()}
		if p, ok := s.predictors[t].(*pipeline.Pipeline); ok {
			info.Rows = p.Rows
			info.TrainedAt = p.TrainedAt
		}
		st.Models = append(st.Models, info)
	}
	sort.Slice(st.Models, func(i, j int) bool { return st.Models[i].Target < st.Models[j].Target })
	return st
}

func frame(row model.FeatureRow) (df dataframe.DataFrame, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: build frame: %v", ErrPrediction, r)
		}
	}()
	df = row.Frame()
	if df.Err != nil {
		return df, fmt.Errorf("%w: build frame: %w", ErrPrediction, df.Err)
	}
	return df, nil
}

func (s *Service) predict(ctx context.Context, t types.Target, df dataframe.DataFrame) (v float64, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrPrediction, t, r)
		}
		if err != nil {
			metrics.RecordPredictionError(t.String())
			s.logger.Error(ctx, "prediction failed", logger.String("target", t.String()), logger.Error(err))
			return
		}
		metrics.RecordPrediction(t.String(), float64(time.Since(start).Microseconds())/1000)
	}()

	out, err := s.predictors[t].Predict(df)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrPrediction, t, err)
	}
	if len(out) != 1 || math.IsNaN(out[0]) || math.IsInf(out[0], 0) {
		return 0, fmt.Errorf("%w: %s: unexpected output %v", ErrPrediction, t, out)
	}
	return out[0], nil
}
