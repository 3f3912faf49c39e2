// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"

	"github.com/layoffatlas/layoffatlas/internal/domain/model"
)

// defaultRecordsLimit applies when the client does not pass limit.
const defaultRecordsLimit = 100

// RecordsHandler handles filtered record listing.
type RecordsHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(deps Dependencies, maxLimit int) *RecordsHandler {
	return &RecordsHandler{deps: deps, maxLimit: maxLimit}
}

type recordsResponse struct {
	Total   int            `json:"total"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
	Records []model.Record `json:"records"`
}

// HandleGetRecords handles GET /records requests with the shared filter
// parameters plus limit and offset.
func (h *RecordsHandler) HandleGetRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	limit := defaultRecordsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
	}
	if limit > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", ErrBadRequest)
		return
	}

	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
	}

	records, total, err := h.deps.Records(r.Context(), f, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	if records == nil {
		records = []model.Record{}
	}
	writeJSON(w, http.StatusOK, recordsResponse{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		Records: records,
	})
}
