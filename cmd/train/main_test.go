package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/litterpredict/internal/adapters/repository"
	"github.com/okian/litterpredict/internal/config"
	"github.com/okian/litterpredict/internal/domain/types"
	"github.com/okian/litterpredict/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestParseFlags(t *testing.T) {
	convey.Convey("Given default config", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("When flags are passed", func() {
			f, err := parseFlags([]string{"-data", "in.json", "-models", "out", "-estimators", "7", "-seed", "3", "-holdout", "0", "-history", "5"}, cfg)

			convey.Convey("Then they override the config", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DataPath, convey.ShouldEqual, "in.json")
				convey.So(cfg.ModelDir, convey.ShouldEqual, "out")
				convey.So(cfg.Estimators, convey.ShouldEqual, 7)
				convey.So(cfg.RandomSeed, convey.ShouldEqual, 3)
				convey.So(cfg.HoldoutRatio, convey.ShouldEqual, 0)
				convey.So(f.history, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When a flag value is invalid", func() {
			_, err := parseFlags([]string{"-holdout", "1.5"}, cfg)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestTrain(t *testing.T) {
	convey.Convey("Given a config without a data file", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		cfg := config.New(ctx)
		cfg.DataPath = filepath.Join(dir, "missing.json")
		cfg.ModelDir = filepath.Join(dir, "model")
		cfg.LedgerPath = filepath.Join(dir, "ledger", "training.db")
		cfg.MetricsTextfile = filepath.Join(dir, "train.prom")
		cfg.Estimators = 4
		cfg.SyntheticSamples = 120

		convey.Convey("When training runs", func() {
			report, err := train(ctx, cfg)

			convey.Convey("Then synthetic data trains all three artifacts", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(report.Source, convey.ShouldEqual, "synthetic")
				convey.So(report.Rows, convey.ShouldEqual, 120)
				for _, tg := range types.Targets() {
					_, statErr := os.Stat(filepath.Join(cfg.ModelDir, "model_predict_"+tg.String()+".gob"))
					convey.So(statErr, convey.ShouldBeNil)
				}
			})

			convey.Convey("Then metrics are exported", func() {
				body, err := os.ReadFile(cfg.MetricsTextfile)
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(body), convey.ShouldContainSubstring, "litter_predict_training_runs_total")
			})

			convey.Convey("Then the history lists the run", func() {
				var buf bytes.Buffer
				convey.So(printHistory(ctx, &buf, cfg.LedgerPath, 10), convey.ShouldBeNil)
				convey.So(buf.String(), convey.ShouldContainSubstring, report.RunID)
				convey.So(buf.String(), convey.ShouldContainSubstring, "temperature")
			})
		})

		convey.Convey("When tree limits are configured", func() {
			cfg.MaxDepth = 1
			cfg.MinSamplesLeaf = 3
			cfg.Bootstrap = false
			cfg.LedgerPath = ""
			cfg.MetricsTextfile = ""
			_, err := train(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the artifacts were grown with them", func() {
				p, err := repository.NewFileStore(cfg.ModelDir).Load(ctx, types.Temperature)
				convey.So(err, convey.ShouldBeNil)
				convey.So(p.Regressor.MaxDepth, convey.ShouldEqual, 1)
				convey.So(p.Regressor.MinSamplesLeaf, convey.ShouldEqual, 3)
				convey.So(p.Regressor.Bootstrap, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the history has no ledger path", func() {
			var buf bytes.Buffer
			convey.So(printHistory(ctx, &buf, "", 3), convey.ShouldNotBeNil)
		})
	})
}

func TestExitCode(t *testing.T) {
	convey.Convey("Given logging to a file", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "train.log")
		convey.So(logger.Init(logger.WithFile(path)), convey.ShouldBeNil)
		defer func() { _ = logger.Init() }()

		convey.Convey("When the run failed", func() {
			code := exitCode(ctx, errors.New("no rows left"))

			convey.Convey("Then the failure is in the file before it is closed", func() {
				convey.So(code, convey.ShouldEqual, 1)
				body, err := os.ReadFile(path)
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(body), convey.ShouldContainSubstring, "training failed")
				convey.So(string(body), convey.ShouldContainSubstring, "no rows left")
			})
		})

		convey.Convey("When the run succeeded", func() {
			convey.So(exitCode(ctx, nil), convey.ShouldEqual, 0)
		})
	})
}
