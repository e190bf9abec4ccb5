package api

import (
	"net/http"
	"strconv"

	"github.com/ayusman/ganita/internal/store"
)

// MaxHistoryLimit caps the limit query parameter.
const MaxHistoryLimit = 500

// HistoryHandler serves the calculation tape at GET /api/history.
//
// Query parameters:
//
//	limit    number of newest entries (default store.DefaultListLimit)
//	session  restrict to one session, oldest first
type HistoryHandler struct {
	store *store.Store
}

// NewHistoryHandler creates a new HistoryHandler with the given store.
func NewHistoryHandler(s *store.Store) *HistoryHandler {
	return &HistoryHandler{store: s}
}

type historyResponse struct {
	Calculations []*store.Calculation `json:"calculations"`
}

// ServeHTTP implements the http.Handler interface.
func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()

	limit := store.DefaultListLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxHistoryLimit)
	}

	var (
		calcs []*store.Calculation
		err   error
	)
	if session := q.Get("session"); session != "" {
		calcs, err = h.store.Calculations().ListBySession(session)
	} else {
		calcs, err = h.store.Calculations().ListRecent(limit)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list calculations")
		return
	}

	if calcs == nil {
		calcs = []*store.Calculation{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Calculations: calcs})
}
