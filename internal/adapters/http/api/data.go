package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	service "github.com/okian/litterpredict/internal/app"
)

// DataHandler handles litter batch uploads.
type DataHandler struct {
	receiver Receiver
}

// NewDataHandler creates a new data handler.
func NewDataHandler(receiver Receiver) *DataHandler {
	return &DataHandler{receiver: receiver}
}

// HandlePostData handles POST /data requests.
func (h *DataHandler) HandlePostData(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_data"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var items []map[string]any
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	n, err := h.receiver.Receive(r.Context(), items)
	switch {
	case errors.Is(err, service.ErrEmptyBatch):
		writeError(w, http.StatusBadRequest, "empty_batch", WrapKind(op, ErrBadRequest, err))
		return
	case errors.Is(err, service.ErrInvalidItem):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Successfully received %d litter items.", n),
	})
}
