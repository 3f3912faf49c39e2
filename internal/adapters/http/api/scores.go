// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/layoffatlas/layoffatlas/internal/domain/model"
	"github.com/layoffatlas/layoffatlas/internal/domain/scoring"
)

// scoreSelectors maps sort_by values to the score they order on.
var scoreSelectors = map[string]func(scoring.ScoreSet) *float64{
	"efficiency":    func(s scoring.ScoreSet) *float64 { return s.Efficiency },
	"instability":   func(s scoring.ScoreSet) *float64 { return s.Instability },
	"severity":      func(s scoring.ScoreSet) *float64 { return s.Severity },
	"fragility":     func(s scoring.ScoreSet) *float64 { return s.Fragility },
	"survivability": func(s scoring.ScoreSet) *float64 { return s.Survivability },
	"bounceback":    func(s scoring.ScoreSet) *float64 { return s.Bounceback },
}

// ScoresHandler serves the six derived scores per group.
type ScoresHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps Dependencies, maxLimit int) *ScoresHandler {
	return &ScoresHandler{deps: deps, maxLimit: maxLimit}
}

type scoresResponse struct {
	GroupBy string             `json:"group_by"`
	SortBy  string             `json:"sort_by"`
	Groups  []scoring.ScoreSet `json:"groups"`
}

// HandleGetScores handles GET /scores?group_by=...&sort_by=...&limit=N with
// the shared filter parameters. Groups whose sort score is undefined rank
// after every defined score.
func (h *ScoresHandler) HandleGetScores(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	groupBy := model.GroupBy(r.URL.Query().Get("group_by"))
	if groupBy == "" {
		groupBy = model.GroupByCompany
	}

	sortBy := r.URL.Query().Get("sort_by")
	if sortBy == "" {
		sortBy = "efficiency"
	}
	selector, ok := scoreSelectors[sortBy]
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	limit := h.maxLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		if limit > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", ErrBadRequest)
			return
		}
	}

	scores, err := h.deps.Scores(r.Context(), f, groupBy)
	if err != nil {
		if errors.Is(err, scoring.ErrInvalidGrouping) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	groups := make([]scoring.ScoreSet, 0, len(scores))
	for _, s := range scores {
		groups = append(groups, s)
	}
	sort.Slice(groups, func(i, j int) bool {
		a, b := selector(groups[i]), selector(groups[j])
		switch {
		case a == nil && b == nil:
			return groups[i].Group < groups[j].Group
		case a == nil:
			return false
		case b == nil:
			return true
		case *a != *b:
			return *a > *b
		default:
			return groups[i].Group < groups[j].Group
		}
	})
	if len(groups) > limit {
		groups = groups[:limit]
	}

	writeJSON(w, http.StatusOK, scoresResponse{
		GroupBy: string(groupBy),
		SortBy:  sortBy,
		Groups:  groups,
	})
}
