// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"

	"github.com/layoffatlas/layoffatlas/internal/adapters/export"
	service "github.com/layoffatlas/layoffatlas/internal/app"
	"github.com/layoffatlas/layoffatlas/internal/domain/model"
)

// Content types and filenames per export format.
const (
	csvContentType  = "text/csv; charset=utf-8"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportHandler streams the filtered dataset and its scores as a download.
type ExportHandler struct {
	deps Dependencies
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps Dependencies) *ExportHandler {
	return &ExportHandler{deps: deps}
}

// HandleExport handles GET /export?format=csv|xlsx&group_by=... with the
// shared filter parameters. Headers are committed before the body streams,
// so a mid-stream failure surfaces as a truncated download.
func (h *ExportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = export.FormatCSV
	}
	switch format {
	case export.FormatCSV:
		w.Header().Set("Content-Type", csvContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="layoffs_export.csv"`)
	case export.FormatXLSX:
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="layoffs_export.xlsx"`)
	default:
		writeError(w, http.StatusBadRequest, "bad_request", service.ErrInvalidExportFormat)
		return
	}

	groupBy := model.GroupBy(r.URL.Query().Get("group_by"))
	if groupBy == "" {
		groupBy = model.GroupByCompany
	}
	if !groupBy.Valid() {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	if err := h.deps.Export(r.Context(), w, f, format, groupBy); err != nil {
		if errors.Is(err, service.ErrInvalidExportFormat) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		// Headers are already gone; nothing better to do than log via metrics.
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
