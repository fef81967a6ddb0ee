// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and LITTER_* environment variables on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration shared by the API server and the trainer.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// LogFile, when set, mirrors logs into a rotated file.
	LogFile string `koanf:"log_file"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// ModelDir holds the three pipeline artifacts.
	ModelDir string `koanf:"model_dir"`

	// DataPath points at the JSON sensor export used for training.
	DataPath string `koanf:"data_path"`

	// ConfidenceThreshold drops readings below this confidence before training.
	ConfidenceThreshold float64 `koanf:"confidence_threshold"`

	// Estimators is the number of trees per forest.
	Estimators int `koanf:"n_estimators"`

	// MaxDepth limits tree depth; 0 grows trees until leaves are pure.
	MaxDepth int `koanf:"max_depth"`

	// MinSamplesSplit is the smallest node a tree may split.
	MinSamplesSplit int `koanf:"min_samples_split"`

	// MinSamplesLeaf is the smallest leaf a split may produce.
	MinSamplesLeaf int `koanf:"min_samples_leaf"`

	// MaxFeatures is how many encoded features each split considers; 0 means all.
	MaxFeatures int `koanf:"max_features"`

	// Bootstrap samples rows with replacement for every tree.
	Bootstrap bool `koanf:"bootstrap"`

	// RandomSeed seeds bootstrap sampling, synthetic data and holdout splits.
	RandomSeed int64 `koanf:"random_seed"`

	// SyntheticSamples is the size of the fallback dataset.
	SyntheticSamples int `koanf:"synthetic_samples"`

	// HoldoutRatio is the evaluation share; 0 disables evaluation.
	HoldoutRatio float64 `koanf:"holdout_ratio"`

	// TrainWorkers bounds concurrent tree fitting.
	TrainWorkers int `koanf:"train_workers"`

	// LedgerPath is the SQLite training ledger; empty disables it.
	LedgerPath string `koanf:"ledger_path"`

	// MetricsTextfile, when set, receives the trainer's metrics after a run.
	MetricsTextfile string `koanf:"metrics_textfile"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":8000",
		ModelDir:            "model",
		DataPath:            "data/sensoring_data.json",
		ConfidenceThreshold: 0.5,
		Estimators:          100,
		MinSamplesSplit:     2,
		MinSamplesLeaf:      1,
		Bootstrap:           true,
		RandomSeed:          42,
		SyntheticSamples:    1000,
		HoldoutRatio:        0.2,
		TrainWorkers:        runtime.NumCPU(),
		LedgerPath:          "ledger/training.db",
	}
}
