// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"strconv"

	service "github.com/layoffatlas/layoffatlas/internal/app"
)

// TrendsHandler serves the aggregates behind the Trends view.
type TrendsHandler struct {
	deps Dependencies
}

// NewTrendsHandler creates a new trends handler.
func NewTrendsHandler(deps Dependencies) *TrendsHandler {
	return &TrendsHandler{deps: deps}
}

// HandleGetTrends handles GET /trends?mover_dim=industry|country&mover_year=N
// with the shared filter parameters.
func (h *TrendsHandler) HandleGetTrends(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	moverYear := 0
	if raw := r.URL.Query().Get("mover_year"); raw != "" {
		moverYear, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
	}

	report, err := h.deps.Trends(r.Context(), f, r.URL.Query().Get("mover_dim"), moverYear)
	if err != nil {
		if errors.Is(err, service.ErrInvalidMoverDimension) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
