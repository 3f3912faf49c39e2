// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"net/url"
	"strings"
)

// CompanyHandler serves the per-company deep dive.
type CompanyHandler struct {
	deps Dependencies
}

// NewCompanyHandler creates a new company handler.
func NewCompanyHandler(deps Dependencies) *CompanyHandler {
	return &CompanyHandler{deps: deps}
}

// HandleGetCompany handles GET /companies/{name} requests with the shared
// filter parameters narrowing the comparison scope.
func (h *CompanyHandler) HandleGetCompany(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/companies/")
	if name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}

	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	profile, err := h.deps.CompanyProfile(r.Context(), f, name)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
