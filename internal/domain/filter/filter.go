// Package filter narrows a record set the way the dashboard controls do.
package filter

import (
	"github.com/layoffatlas/layoffatlas/internal/domain/model"
)

// Filter restricts a record set. An empty slice places no constraint on its
// dimension, matching the dashboard semantics where an empty multiselect
// means "all".
type Filter struct {
	Years          []int    `json:"years,omitempty"`
	Quarters       []string `json:"quarters,omitempty"`
	Countries      []string `json:"countries,omitempty"`
	Industries     []string `json:"industries,omitempty"`
	Companies      []string `json:"companies,omitempty"`
	Stages         []string `json:"stages,omitempty"`
	SizeCategories []string `json:"size_categories,omitempty"`
}

// IsZero reports whether the filter places no constraint at all.
func (f Filter) IsZero() bool {
	return len(f.Years) == 0 && len(f.Quarters) == 0 && len(f.Countries) == 0 &&
		len(f.Industries) == 0 && len(f.Companies) == 0 && len(f.Stages) == 0 &&
		len(f.SizeCategories) == 0
}

// Match reports whether a record passes every constrained dimension.
func (f Filter) Match(r model.Record) bool {
	if len(f.Years) > 0 && !containsInt(f.Years, r.Year) {
		return false
	}
	if len(f.Quarters) > 0 && !containsString(f.Quarters, r.Quarter) {
		return false
	}
	if len(f.Countries) > 0 && !containsString(f.Countries, r.Country) {
		return false
	}
	if len(f.Industries) > 0 && !containsString(f.Industries, r.Industry) {
		return false
	}
	if len(f.Companies) > 0 && !containsString(f.Companies, r.Company) {
		return false
	}
	if len(f.Stages) > 0 && !containsString(f.Stages, r.Stage) {
		return false
	}
	if len(f.SizeCategories) > 0 && !containsString(f.SizeCategories, string(r.SizeCategory)) {
		return false
	}
	return true
}

// Apply returns the records passing the filter. The input slice is never
// mutated; an unconstrained filter returns the input as-is.
func Apply(records []model.Record, f Filter) []model.Record {
	if f.IsZero() {
		return records
	}
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

func containsInt(vs []int, v int) bool {
	for _, x := range vs {
		if x == v {
			return true
		}
	}
	return false
}

func containsString(vs []string, v string) bool {
	for _, x := range vs {
		if x == v {
			return true
		}
	}
	return false
}
