package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/litterpredict/internal/adapters/http/api"
	service "github.com/okian/litterpredict/internal/app"
	"github.com/okian/litterpredict/internal/domain/model"
)

type mockPredictor struct {
	err      error
	lastRow  model.FeatureRow
	location model.LocationPrediction
	temp     model.TemperaturePrediction
}

func (m *mockPredictor) PredictLocation(_ context.Context, row model.FeatureRow) (model.LocationPrediction, error) {
	m.lastRow = row
	return m.location, m.err
}

func (m *mockPredictor) PredictTemperature(_ context.Context, row model.FeatureRow) (model.TemperaturePrediction, error) {
	m.lastRow = row
	return m.temp, m.err
}

func newMux(p api.Predictor) *http.ServeMux {
	mux := http.NewServeMux()
	srv := api.NewServer(p, service.NewIntake(), api.StatsFunc(func() any {
		return map[string]any{"models": 3}
	}))
	srv.Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
	return out
}

func TestRootAndData(t *testing.T) {
	Convey("Given an API server", t, func() {
		mux := newMux(&mockPredictor{})

		Convey("When GET / is requested", func() {
			w := do(mux, http.MethodGet, "/", "")

			Convey("Then the running message is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode(w)["message"], ShouldEqual, "Litter Prediction API is running!")
			})
		})

		Convey("When an unknown path is requested", func() {
			w := do(mux, http.MethodGet, "/nope", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When posting three items to /data", func() {
			w := do(mux, http.MethodPost, "/data", `[{"category":"glas"},{"category":"papier"},{}]`)

			Convey("Then the exact count is acknowledged", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode(w)["message"], ShouldEqual, "Successfully received 3 litter items.")
			})
		})

		Convey("When posting an empty array to /data", func() {
			w := do(mux, http.MethodPost, "/data", `[]`)

			Convey("Then the batch is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(w)["code"], ShouldEqual, "empty_batch")
			})
		})

		Convey("When posting a null item to /data", func() {
			w := do(mux, http.MethodPost, "/data", `[null]`)

			Convey("Then the batch is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(w)["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When posting an object to /data", func() {
			w := do(mux, http.MethodPost, "/data", `{"category":"glas"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When using GET on /data", func() {
			w := do(mux, http.MethodGet, "/data", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When GET /stats is requested", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["models"], ShouldEqual, 3.0)
		})

		Convey("When GET /healthz is requested", func() {
			_ = do(mux, http.MethodGet, "/", "")
			w := do(mux, http.MethodGet, "/healthz", "")

			Convey("Then Prometheus metrics are served", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "litter_predict_http_requests_total")
			})
		})
	})
}

func TestPredict(t *testing.T) {
	Convey("Given an API server with a predictor", t, func() {
		p := &mockPredictor{
			location: model.LocationPrediction{Latitude: 51.55, Longitude: 4.75, Unit: "degrees"},
			temp:     model.TemperaturePrediction{Prediction: 19.5, Unit: "degrees Celsius"},
		}
		mux := newMux(p)
		body := `{"category":"plastic","day_of_week":"Monday"}`

		Convey("When predicting a location", func() {
			w := do(mux, http.MethodPost, "/predict/location", body)

			Convey("Then latitude, longitude and unit are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				out := decode(w)
				So(out["latitude"], ShouldEqual, 51.55)
				So(out["longitude"], ShouldEqual, 4.75)
				So(out["unit"], ShouldEqual, "degrees")
				So(p.lastRow, ShouldResemble, model.FeatureRow{Category: "plastic", DayOfWeek: "Monday"})
			})
		})

		Convey("When predicting a temperature", func() {
			w := do(mux, http.MethodPost, "/predict/temperature", body)

			Convey("Then prediction and unit are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				out := decode(w)
				So(out["prediction"], ShouldEqual, 19.5)
				So(out["unit"], ShouldEqual, "degrees Celsius")
			})
		})

		Convey("When the body is malformed", func() {
			w := do(mux, http.MethodPost, "/predict/location", `{"category":`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a field is missing", func() {
			w := do(mux, http.MethodPost, "/predict/temperature", `{"category":"glas"}`)

			Convey("Then the request is rejected naming the field", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(w)["message"], ShouldContainSubstring, "day_of_week")
			})
		})

		Convey("When a field is null", func() {
			w := do(mux, http.MethodPost, "/predict/location", `{"category":null,"day_of_week":"Monday"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(w)["message"], ShouldContainSubstring, "category")
		})

		Convey("When the category is an empty string", func() {
			w := do(mux, http.MethodPost, "/predict/location", `{"category":"","day_of_week":"Monday"}`)

			Convey("Then the row reaches the predictor unchanged", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(p.lastRow, ShouldResemble, model.FeatureRow{Category: "", DayOfWeek: "Monday"})
			})
		})

		Convey("When the category is blank", func() {
			w := do(mux, http.MethodPost, "/predict/temperature", `{"category":" ","day_of_week":"Monday"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["prediction"], ShouldEqual, 19.5)
		})

		Convey("When the predictor fails", func() {
			p.err = errors.Join(service.ErrPrediction, errors.New("tree exploded"))
			w := do(mux, http.MethodPost, "/predict/location", body)

			Convey("Then a 500 carries the cause", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decode(w)["message"], ShouldContainSubstring, "tree exploded")
			})
		})

		Convey("When using GET on a prediction route", func() {
			w := do(mux, http.MethodGet, "/predict/location", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})

	Convey("Given an API server without models", t, func() {
		mux := newMux(nil)

		Convey("When predicting", func() {
			w := do(mux, http.MethodPost, "/predict/temperature", `{"category":"glas","day_of_week":"Monday"}`)

			Convey("Then a 500 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decode(w)["code"], ShouldEqual, "not_ready")
			})
		})
	})

	Convey("Given an API server backed by an unloaded service", t, func() {
		var svc *service.Service
		mux := newMux(svc)

		Convey("When predicting", func() {
			w := do(mux, http.MethodPost, "/predict/location", `{"category":"glas","day_of_week":"Monday"}`)
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(decode(w)["code"], ShouldEqual, "not_ready")
		})
	})
}

func TestErrorKinds(t *testing.T) {
	Convey("Given error kind helpers", t, func() {
		err := api.WrapKind("api.op", api.ErrBadRequest, errors.New("cause"))
		So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
		So(err.Error(), ShouldEqual, "api.op: bad request: cause")
		So(errors.Is(api.NewKind("api.op", api.ErrInternal), api.ErrInternal), ShouldBeTrue)
	})
}
