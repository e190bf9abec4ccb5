package api

import "net/http"

// Status is the calculator as seen from outside.
type Status struct {
	Display     string   `json:"display"`
	Input       string   `json:"input"`
	Stored      float64  `json:"stored"`
	Operator    string   `json:"operator"`
	History     []string `json:"history"`
	LastGesture string   `json:"last_gesture"`
	SessionID   string   `json:"session_id,omitempty"`
}

// StatusFunc returns the current status. It is called once per request.
type StatusFunc func() Status

// StateHandler serves GET /api/state.
type StateHandler struct {
	status StatusFunc
}

// NewStateHandler creates a StateHandler reading from status.
func NewStateHandler(status StatusFunc) *StateHandler {
	return &StateHandler{status: status}
}

// ServeHTTP implements the http.Handler interface.
func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s := h.status()
	if s.History == nil {
		s.History = []string{}
	}
	writeJSON(w, http.StatusOK, s)
}
