// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/okian/litterpredict/internal/domain/model"
)

// Predictor answers prediction requests.
type Predictor interface {
	PredictLocation(ctx context.Context, row model.FeatureRow) (model.LocationPrediction, error)
	PredictTemperature(ctx context.Context, row model.FeatureRow) (model.TemperaturePrediction, error)
}

// Receiver acknowledges /data batches.
type Receiver interface {
	Receive(ctx context.Context, items []map[string]any) (int, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	rootHandler    *RootHandler
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	dataHandler    *DataHandler
	predictHandler *PredictHandler
}

// NewServer creates a new API server with all handlers. predictor may be
// nil, in which case prediction routes answer 500.
func NewServer(predictor Predictor, receiver Receiver, statsProvider StatsProvider) *Server {
	return &Server{
		rootHandler:    NewRootHandler(),
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		dataHandler:    NewDataHandler(receiver),
		predictHandler: NewPredictHandler(predictor),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/data", MetricsMiddleware(s.dataHandler.HandlePostData, "data"))
	mux.HandleFunc("/predict/location", MetricsMiddleware(s.predictHandler.HandleLocation, "predict_location"))
	mux.HandleFunc("/predict/temperature", MetricsMiddleware(s.predictHandler.HandleTemperature, "predict_temperature"))
	mux.HandleFunc("/", MetricsMiddleware(s.rootHandler.HandleRoot, "root"))
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
