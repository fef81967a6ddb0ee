package probe_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/litterpredict/internal/adapters/http/api"
	service "github.com/okian/litterpredict/internal/app"
	"github.com/okian/litterpredict/internal/domain/model"
	"github.com/okian/litterpredict/internal/domain/types"
	"github.com/okian/litterpredict/internal/probe"
	"github.com/okian/litterpredict/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type stubPredictor struct {
	mu      sync.Mutex
	seen    map[string]int
	err     error
	locUnit string
}

func (s *stubPredictor) record(row model.FeatureRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen == nil {
		s.seen = map[string]int{}
	}
	s.seen[row.Category]++
}

func (s *stubPredictor) PredictLocation(_ context.Context, row model.FeatureRow) (model.LocationPrediction, error) {
	s.record(row)
	if s.err != nil {
		return model.LocationPrediction{}, s.err
	}
	unit := types.UnitDegrees
	if s.locUnit != "" {
		unit = s.locUnit
	}
	return model.LocationPrediction{Latitude: 51.55, Longitude: 4.75, Unit: unit}, nil
}

func (s *stubPredictor) PredictTemperature(_ context.Context, _ model.FeatureRow) (model.TemperaturePrediction, error) {
	return model.TemperaturePrediction{Prediction: 20, Unit: types.UnitDegreesCelsius}, nil
}

func newTestServer(p api.Predictor) *httptest.Server {
	mux := http.NewServeMux()
	api.NewServer(p, service.NewIntake(), api.StatsFunc(func() any { return nil })).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func testConfig(url string) *probe.Config {
	return &probe.Config{BaseURL: url, Samples: 25, Seed: 42, Workers: 4, Timeout: 5 * time.Second}
}

func TestQueries(t *testing.T) {
	Convey("Given the probe query set", t, func() {
		qs := probe.Queries()

		Convey("Then it covers every category and weekday plus the unseen category", func() {
			So(len(qs), ShouldEqual, 8*7)
			So(qs[0], ShouldResemble, probe.Query{Category: "organisch", DayOfWeek: "Monday"})
			So(qs[len(qs)-1], ShouldResemble, probe.Query{Category: probe.UnseenCategory, DayOfWeek: "Sunday"})
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running API", t, func() {
		ctx := context.Background()

		Convey("When every prediction succeeds", func() {
			p := &stubPredictor{}
			srv := newTestServer(p)
			defer srv.Close()

			stats, err := probe.Run(ctx, testConfig(srv.URL))

			Convey("Then the probe passes and reports every query", func() {
				So(err, ShouldBeNil)
				So(stats.ItemsPosted, ShouldEqual, 25)
				So(stats.ItemsAcknowledged, ShouldEqual, 25)
				So(stats.Queries, ShouldEqual, 56)
				So(stats.Succeeded, ShouldEqual, 56)
				So(stats.Failed, ShouldEqual, 0)
				So(p.seen[probe.UnseenCategory], ShouldEqual, 7)
			})
		})

		Convey("When predictions fail on the server", func() {
			srv := newTestServer(&stubPredictor{err: errors.New("boom")})
			defer srv.Close()

			stats, err := probe.Run(ctx, testConfig(srv.URL))

			Convey("Then the probe reports the failures", func() {
				So(errors.Is(err, probe.ErrQueriesFailed), ShouldBeTrue)
				So(errors.Is(err, probe.ErrUnexpectedCode), ShouldBeTrue)
				So(stats.Failed, ShouldEqual, 56)
			})
		})

		Convey("When the location unit is wrong", func() {
			srv := newTestServer(&stubPredictor{locUnit: "meters"})
			defer srv.Close()

			_, err := probe.Run(ctx, testConfig(srv.URL))

			Convey("Then the prediction is rejected", func() {
				So(errors.Is(err, probe.ErrBadPrediction), ShouldBeTrue)
			})
		})

		Convey("When models are not loaded", func() {
			srv := newTestServer(nil)
			defer srv.Close()

			stats, err := probe.Run(ctx, testConfig(srv.URL))

			Convey("Then data intake still works but predictions fail", func() {
				So(stats.ItemsAcknowledged, ShouldEqual, 25)
				So(errors.Is(err, probe.ErrQueriesFailed), ShouldBeTrue)
			})
		})
	})

	Convey("Given a server that is not the prediction API", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"message":"hello"}`))
		}))
		defer srv.Close()

		_, err := probe.Run(context.Background(), testConfig(srv.URL))

		Convey("Then the service check fails", func() {
			So(errors.Is(err, probe.ErrUnhealthy), ShouldBeTrue)
		})
	})
}
