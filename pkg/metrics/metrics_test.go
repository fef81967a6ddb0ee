package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager()

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithRefreshInterval(3*time.Second),
				WithPrometheusRegistry(registry),
			)

			Convey("Then metrics should be registered on the given registry", func() {
				So(manager.RefreshInterval(), ShouldEqual, 3*time.Second)
				manager.modelsLoaded.Set(3)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_unit_models_loaded")
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When recording predictions", func() {
			before := testutil.ToFloat64(globalManager.predictions.WithLabelValues("latitude"))
			RecordPrediction("latitude", 1.5)
			RecordPredictionError("latitude")

			Convey("Then the counters should move", func() {
				So(testutil.ToFloat64(globalManager.predictions.WithLabelValues("latitude")), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.predictionErrors.WithLabelValues("latitude")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When recording a data batch", func() {
			before := testutil.ToFloat64(globalManager.dataItems)
			RecordDataBatch(4)

			Convey("Then the item counter should grow by the batch size", func() {
				So(testutil.ToFloat64(globalManager.dataItems), ShouldEqual, before+4)
			})
		})

		Convey("When recording training results", func() {
			RecordTrainingDuration("temperature", 2*time.Second)
			RecordTrainingScore("temperature", "r2", 0.25)
			RecordTrainingRun(900)

			Convey("Then the gauges should hold the last values", func() {
				So(testutil.ToFloat64(globalManager.trainingDuration.WithLabelValues("temperature")), ShouldEqual, 2)
				So(testutil.ToFloat64(globalManager.trainingScore.WithLabelValues("temperature", "r2")), ShouldEqual, 0.25)
				So(testutil.ToFloat64(globalManager.trainingRows), ShouldEqual, 900)
			})
		})

		Convey("When recording HTTP and system metrics", func() {
			So(func() {
				RecordHTTPRequest("predict_location", "POST", "200")
				RecordHTTPRequestDuration("predict_location", "POST", "200", 3)
				RecordErrorByType("server_error", "high")
				RecordErrorByEndpoint("predict_location", "POST", "server_error")
				UpdateModelsLoaded(3)
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(10)
				RecordSystemGCPauseTime(0.2)
			}, ShouldNotPanic)
		})
	})
}

func TestWriteTextfile(t *testing.T) {
	Convey("Given a textfile path", t, func() {
		path := filepath.Join(t.TempDir(), "litter.prom")
		RecordTrainingRun(10)

		Convey("When exporting the registry", func() {
			err := WriteTextfile(path)

			Convey("Then the file should contain the training metrics", func() {
				So(err, ShouldBeNil)
				data, readErr := os.ReadFile(path)
				So(readErr, ShouldBeNil)
				So(string(data), ShouldContainSubstring, "litter_predict_training_runs_total")
			})
		})

		Convey("When the directory does not exist", func() {
			err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))

			Convey("Then it should fail with the export kind", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, ErrExport), ShouldBeTrue)
			})
		})
	})
}
