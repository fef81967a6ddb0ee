// Command train fits the latitude, longitude and temperature pipelines and
// writes them to the model directory.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/okian/litterpredict/internal/adapters/ledger"
	"github.com/okian/litterpredict/internal/adapters/repository"
	app "github.com/okian/litterpredict/internal/app"
	"github.com/okian/litterpredict/internal/config"
	"github.com/okian/litterpredict/internal/domain/dataset"
	"github.com/okian/litterpredict/internal/domain/forest"
	"github.com/okian/litterpredict/pkg/logger"
	"github.com/okian/litterpredict/pkg/metrics"
)

type flags struct {
	data       string
	models     string
	estimators int
	seed       int64
	holdout    float64
	history    int
}

func parseFlags(args []string, cfg *config.Config) (flags, error) {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	f := flags{}
	fs.StringVar(&f.data, "data", cfg.DataPath, "sensor data JSON file; synthetic data is used when missing")
	fs.StringVar(&f.models, "models", cfg.ModelDir, "directory receiving the model artifacts")
	fs.IntVar(&f.estimators, "estimators", cfg.Estimators, "trees per forest")
	fs.Int64Var(&f.seed, "seed", cfg.RandomSeed, "random seed")
	fs.Float64Var(&f.holdout, "holdout", cfg.HoldoutRatio, "evaluation share in [0,1); 0 disables evaluation")
	fs.IntVar(&f.history, "history", 0, "print the last N ledger rows and exit")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	cfg.DataPath = f.data
	cfg.ModelDir = f.models
	cfg.Estimators = f.estimators
	cfg.RandomSeed = f.seed
	cfg.HoldoutRatio = f.holdout
	return f, cfg.Validate()
}

func main() {
	if err := logger.Init(); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	f, err := parseFlags(os.Args[1:], cfg)
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}
	if err := setupLogging(ctx, cfg); err != nil {
		_, _ = os.Stderr.WriteString("failed to configure logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	if f.history > 0 {
		err = printHistory(ctx, os.Stdout, cfg.LedgerPath, f.history)
	} else {
		_, err = train(ctx, cfg)
	}
	if code := exitCode(ctx, err); code != 0 {
		stop()
		os.Exit(code)
	}
}

// exitCode logs a failed run, then flushes the log file.
func exitCode(ctx context.Context, err error) int {
	code := 0
	if err != nil {
		logger.Get().Error(ctx, "training failed", logger.Error(err))
		code = 1
	}
	_ = logger.Sync()
	return code
}

// setupLogging re-initializes the logger with the configured format, file and level.
func setupLogging(ctx context.Context, cfg *config.Config) error {
	if err := logger.Init(
		logger.WithJSON(cfg.LogFormat == "json"),
		logger.WithFile(cfg.LogFile),
	); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return nil
}

// train runs load -> extract -> fit/persist and records the run.
func train(ctx context.Context, cfg *config.Config) (app.Report, error) {
	log := logger.Named("train")

	tbl, err := dataset.Load(ctx, cfg.DataPath,
		dataset.WithSyntheticSeed(cfg.RandomSeed),
		dataset.WithSyntheticSamples(cfg.SyntheticSamples))
	if err != nil {
		return app.Report{}, err
	}
	ts, err := dataset.Extract(ctx, tbl, cfg.ConfidenceThreshold)
	if err != nil {
		return app.Report{}, err
	}

	opts := []app.TrainerOption{
		app.WithEstimators(cfg.Estimators),
		app.WithSeed(cfg.RandomSeed),
		app.WithTrainWorkers(cfg.TrainWorkers),
		app.WithHoldout(cfg.HoldoutRatio),
		app.WithForestOptions(
			forest.WithMaxDepth(cfg.MaxDepth),
			forest.WithMinSamplesSplit(cfg.MinSamplesSplit),
			forest.WithMinSamplesLeaf(cfg.MinSamplesLeaf),
			forest.WithMaxFeatures(cfg.MaxFeatures),
			forest.WithBootstrap(cfg.Bootstrap)),
	}
	if cfg.LedgerPath != "" {
		led, err := ledger.Open(ctx, cfg.LedgerPath)
		if err != nil {
			log.Warn(ctx, "training ledger unavailable", logger.String("path", cfg.LedgerPath), logger.Error(err))
		} else {
			defer func() { _ = led.Close() }()
			opts = append(opts, app.WithRecorder(led))
		}
	}

	store := repository.NewFileStore(cfg.ModelDir, repository.WithLogger(logger.Named("train_model_store")))
	trainer := app.NewTrainer(store, opts...)
	report, err := trainer.Run(ctx, ts, tbl.Source)
	if err != nil {
		return report, err
	}

	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			log.Warn(ctx, "metrics export failed", logger.Error(err))
		}
	}
	log.Info(ctx, "training finished",
		logger.String("run_id", report.RunID),
		logger.Int("rows", report.Rows),
		logger.String("model_dir", cfg.ModelDir))
	return report, nil
}

func printHistory(ctx context.Context, w io.Writer, path string, n int) error {
	if path == "" {
		return errors.New("ledger_path is empty")
	}
	led, err := ledger.Open(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = led.Close() }()

	entries, err := led.Recent(ctx, n)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TRAINED_AT\tRUN_ID\tTARGET\tSOURCE\tROWS\tR2\tMAE\tRMSE")
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			e.TrainedAt.Format("2006-01-02 15:04:05"), e.RunID, e.Target, e.Source, e.Rows,
			score(e.R2), score(e.MAE), score(e.RMSE))
	}
	return tw.Flush()
}

func score(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.4f", *v)
}
