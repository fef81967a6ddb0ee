package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	service "github.com/okian/litterpredict/internal/app"
	"github.com/okian/litterpredict/internal/domain/model"
)

// PredictHandler handles prediction requests.
type PredictHandler struct {
	predictor Predictor
}

// NewPredictHandler creates a new prediction handler.
func NewPredictHandler(predictor Predictor) *PredictHandler {
	return &PredictHandler{predictor: predictor}
}

// HandleLocation handles POST /predict/location requests.
func (h *PredictHandler) HandleLocation(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict_location"
	row, ok := h.decode(w, r, op)
	if !ok {
		return
	}
	res, err := h.predictor.PredictLocation(r.Context(), row)
	if err != nil {
		writePredictError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleTemperature handles POST /predict/temperature requests.
func (h *PredictHandler) HandleTemperature(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict_temperature"
	row, ok := h.decode(w, r, op)
	if !ok {
		return
	}
	res, err := h.predictor.PredictTemperature(r.Context(), row)
	if err != nil {
		writePredictError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// decode checks method, readiness and body. It writes the response itself
// when it returns false.
func (h *PredictHandler) decode(w http.ResponseWriter, r *http.Request, op string) (model.FeatureRow, bool) {
	var (
		row model.FeatureRow
		req model.PredictionRequest
	)
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return row, false
	}
	if h.predictor == nil {
		writeError(w, http.StatusInternalServerError, "not_ready", NewKind(op, ErrUnavailable))
		return row, false
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return row, false
	}
	row, err := req.Row()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return row, false
	}
	return row, true
}

func writePredictError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrNotReady):
		writeError(w, http.StatusInternalServerError, "not_ready", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "prediction_failed", WrapKind(op, ErrInternal, err))
	}
}
