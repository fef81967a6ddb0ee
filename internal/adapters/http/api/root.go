package api

import "net/http"

// RunningMessage is returned by GET /.
const RunningMessage = "Litter Prediction API is running!"

// RootHandler answers liveness pings on /.
type RootHandler struct{}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

// HandleRoot handles GET / requests.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet || r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: RunningMessage})
}
