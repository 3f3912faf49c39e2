// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/layoffatlas/layoffatlas/internal/adapters/repository"
	service "github.com/layoffatlas/layoffatlas/internal/app"
	"github.com/layoffatlas/layoffatlas/internal/domain/filter"
	"github.com/layoffatlas/layoffatlas/internal/domain/model"
	"github.com/layoffatlas/layoffatlas/internal/domain/scoring"
	"github.com/layoffatlas/layoffatlas/internal/domain/trends"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Records(ctx context.Context, f filter.Filter, limit, offset int) ([]model.Record, int, error)
	Facets(ctx context.Context) repository.Facets
	Scores(ctx context.Context, f filter.Filter, groupBy model.GroupBy) (map[string]scoring.ScoreSet, error)
	Trends(ctx context.Context, f filter.Filter, moverDim string, moverYear int) (service.TrendsReport, error)
	CompanyProfile(ctx context.Context, f filter.Filter, company string) (trends.Profile, error)
	Export(ctx context.Context, w io.Writer, f filter.Filter, format string, groupBy model.GroupBy) error
}

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	recordsHandler   *RecordsHandler
	facetsHandler    *FacetsHandler
	scoresHandler    *ScoresHandler
	trendsHandler    *TrendsHandler
	companyHandler   *CompanyHandler
	exportHandler    *ExportHandler
	dashboardHandler *dashboardHandler
}

// NewServer creates a new API server with all handlers. maxRecordsLimit
// caps /records pages and maxTopLimit caps /scores result sizes.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxRecordsLimit, maxTopLimit int) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		recordsHandler:   NewRecordsHandler(deps, maxRecordsLimit),
		facetsHandler:    NewFacetsHandler(deps),
		scoresHandler:    NewScoresHandler(deps, maxTopLimit),
		trendsHandler:    NewTrendsHandler(deps),
		companyHandler:   NewCompanyHandler(deps),
		exportHandler:    NewExportHandler(deps),
		dashboardHandler: newDashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/records", MetricsMiddleware(s.recordsHandler.HandleGetRecords, "records"))
	mux.HandleFunc("/facets", MetricsMiddleware(s.facetsHandler.HandleGetFacets, "facets"))
	mux.HandleFunc("/scores", MetricsMiddleware(s.scoresHandler.HandleGetScores, "scores"))
	mux.HandleFunc("/trends", MetricsMiddleware(s.trendsHandler.HandleGetTrends, "trends"))
	mux.HandleFunc("/companies/", MetricsMiddleware(s.companyHandler.HandleGetCompany, "companies"))
	mux.HandleFunc("/export", MetricsMiddleware(s.exportHandler.HandleExport, "export"))
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

// parseFilter reads the shared filter query parameters. Every dimension
// accepts repeated parameters and comma-separated lists interchangeably.
func parseFilter(q url.Values) (filter.Filter, error) {
	f := filter.Filter{
		Quarters:       splitParam(q, "quarter"),
		Countries:      splitParam(q, "country"),
		Industries:     splitParam(q, "industry"),
		Companies:      splitParam(q, "company"),
		Stages:         splitParam(q, "stage"),
		SizeCategories: splitParam(q, "size"),
	}
	for _, y := range splitParam(q, "year") {
		year, err := strconv.Atoi(y)
		if err != nil {
			return filter.Filter{}, ErrBadRequest
		}
		f.Years = append(f.Years, year)
	}
	return f, nil
}

func splitParam(q url.Values, key string) []string {
	var out []string
	for _, raw := range q[key] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// isNotFound translates upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
