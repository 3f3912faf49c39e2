// Package trends computes the descriptive aggregates behind the Trends and
// Company dashboard views: quarterly series, top-N breakdowns, period-over-
// period changes and movers. Everything here is a pure function of the
// filtered record set.
package trends

import (
	"sort"

	"github.com/layoffatlas/layoffatlas/internal/domain/model"
)

// QuarterPoint is one quarter in a layoff time series.
type QuarterPoint struct {
	Quarter         string   `json:"quarter"`
	TotalLaidOff    int      `json:"total_laid_off"`
	ActiveCompanies int      `json:"active_companies"`
	AvgPerCompany   *float64 `json:"avg_per_company"`
	Cumulative      int      `json:"cumulative"`
}

// GroupTotal is a dimension value with its summed layoffs.
type GroupTotal struct {
	Key          string `json:"key"`
	TotalLaidOff int    `json:"total_laid_off"`
}

// SeriesPoint is one (quarter, key) cell of a dense quarterly grid.
type SeriesPoint struct {
	Quarter      string `json:"quarter"`
	Key          string `json:"key"`
	TotalLaidOff int    `json:"total_laid_off"`
}

// Mover is a dimension value compared against the prior year.
type Mover struct {
	Key       string `json:"key"`
	Current   int    `json:"current"`
	Previous  int    `json:"previous"`
	AbsChange int    `json:"abs_change"`
}

// Overview carries the KPI header of the Trends view.
type Overview struct {
	TotalLaidOff     int      `json:"total_laid_off"`
	Companies        int      `json:"companies"`
	Countries        int      `json:"countries"`
	QoQChange        *float64 `json:"qoq_change_pct"`
	YoYChange        *float64 `json:"yoy_change_pct"`
	PeakQuarter      string   `json:"peak_quarter"`
	PeakQuarterTotal int      `json:"peak_quarter_total"`
}

// Key selectors for TotalsBy and friends.
func ByCompany(r model.Record) string  { return r.Company }
func ByLocation(r model.Record) string { return r.Location }
func ByCountry(r model.Record) string  { return r.Country }
func ByIndustry(r model.Record) string { return r.Industry }
func BySizeCategory(r model.Record) string {
	return string(r.SizeCategory)
}

// laidOff reads the nullable layoff count as a plain int.
func laidOff(r model.Record) int {
	if r.TotalLaidOff == nil {
		return 0
	}
	return *r.TotalLaidOff
}

// QuarterlyTotals sums layoffs per quarter, counts active companies, and
// carries a running cumulative total. Records without a date are skipped.
func QuarterlyTotals(records []model.Record) []QuarterPoint {
	totals := make(map[string]int)
	companies := make(map[string]map[string]struct{})
	for _, r := range records {
		if r.Quarter == "" {
			continue
		}
		totals[r.Quarter] += laidOff(r)
		if r.Company != "" {
			set, ok := companies[r.Quarter]
			if !ok {
				set = make(map[string]struct{})
				companies[r.Quarter] = set
			}
			set[r.Company] = struct{}{}
		}
	}

	quarters := make([]string, 0, len(totals))
	for q := range totals {
		quarters = append(quarters, q)
	}
	sort.Strings(quarters)

	out := make([]QuarterPoint, 0, len(quarters))
	cumulative := 0
	for _, q := range quarters {
		p := QuarterPoint{
			Quarter:         q,
			TotalLaidOff:    totals[q],
			ActiveCompanies: len(companies[q]),
		}
		if p.ActiveCompanies > 0 {
			avg := float64(p.TotalLaidOff) / float64(p.ActiveCompanies)
			p.AvgPerCompany = &avg
		}
		cumulative += p.TotalLaidOff
		p.Cumulative = cumulative
		out = append(out, p)
	}
	return out
}

// RollingMean2 smooths a quarterly series with a trailing 2-point mean, the
// same smoothing the company timeline toggle applies.
func RollingMean2(points []QuarterPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		if i == 0 {
			out[i] = float64(p.TotalLaidOff)
			continue
		}
		out[i] = (float64(p.TotalLaidOff) + float64(points[i-1].TotalLaidOff)) / 2
	}
	return out
}

// PctChange returns the relative change in percent, or nil when the base
// period is zero and the change is undefined.
func PctChange(curr, prev float64) *float64 {
	if prev == 0 {
		return nil
	}
	v := (curr - prev) / prev * 100
	return &v
}

// ComputeOverview derives the KPI header for the current scope.
func ComputeOverview(records []model.Record) Overview {
	o := Overview{}
	companies := make(map[string]struct{})
	countries := make(map[string]struct{})
	yearly := make(map[int]int)

	for _, r := range records {
		o.TotalLaidOff += laidOff(r)
		if r.Company != "" {
			companies[r.Company] = struct{}{}
		}
		if r.Country != "" {
			countries[r.Country] = struct{}{}
		}
		if r.Year != 0 {
			yearly[r.Year] += laidOff(r)
		}
	}
	o.Companies = len(companies)
	o.Countries = len(countries)

	quarterly := QuarterlyTotals(records)
	if n := len(quarterly); n > 1 {
		o.QoQChange = PctChange(float64(quarterly[n-1].TotalLaidOff), float64(quarterly[n-2].TotalLaidOff))
	}
	for _, p := range quarterly {
		if p.TotalLaidOff > o.PeakQuarterTotal {
			o.PeakQuarterTotal = p.TotalLaidOff
			o.PeakQuarter = p.Quarter
		}
	}

	years := make([]int, 0, len(yearly))
	for y := range yearly {
		years = append(years, y)
	}
	sort.Ints(years)
	if n := len(years); n > 1 {
		o.YoYChange = PctChange(float64(yearly[years[n-1]]), float64(yearly[years[n-2]]))
	}
	return o
}

// TotalsBy sums layoffs per key and returns the groups sorted by total,
// largest first. Records with an empty key are skipped.
func TotalsBy(records []model.Record, key func(model.Record) string) []GroupTotal {
	totals := make(map[string]int)
	for _, r := range records {
		k := key(r)
		if k == "" {
			continue
		}
		totals[k] += laidOff(r)
	}
	out := make([]GroupTotal, 0, len(totals))
	for k, v := range totals {
		out = append(out, GroupTotal{Key: k, TotalLaidOff: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalLaidOff != out[j].TotalLaidOff {
			return out[i].TotalLaidOff > out[j].TotalLaidOff
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// TopN truncates a sorted totals slice.
func TopN(totals []GroupTotal, n int) []GroupTotal {
	if n < 0 || n >= len(totals) {
		return totals
	}
	return totals[:n]
}

// SizeCategoryTotals sums layoffs per size bucket in display order.
func SizeCategoryTotals(records []model.Record) []GroupTotal {
	order := []model.SizeCategory{model.SizeSmall, model.SizeMid, model.SizeLarge, model.SizeUnknown}
	totals := make(map[string]int)
	for _, r := range records {
		totals[string(r.SizeCategory)] += laidOff(r)
	}
	out := make([]GroupTotal, 0, len(order))
	for _, c := range order {
		out = append(out, GroupTotal{Key: string(c), TotalLaidOff: totals[string(c)]})
	}
	return out
}

// QuarterlySeriesBy builds a dense quarter-by-key grid over the given keys,
// filling absent cells with zero so chart lines do not skip quarters.
func QuarterlySeriesBy(records []model.Record, key func(model.Record) string, keys []string) []SeriesPoint {
	wanted := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		wanted[k] = struct{}{}
	}

	totals := make(map[string]map[string]int)
	quarterSet := make(map[string]struct{})
	for _, r := range records {
		k := key(r)
		if r.Quarter == "" {
			continue
		}
		if _, ok := wanted[k]; !ok {
			continue
		}
		quarterSet[r.Quarter] = struct{}{}
		byKey, ok := totals[r.Quarter]
		if !ok {
			byKey = make(map[string]int)
			totals[r.Quarter] = byKey
		}
		byKey[k] += laidOff(r)
	}

	quarters := make([]string, 0, len(quarterSet))
	for q := range quarterSet {
		quarters = append(quarters, q)
	}
	sort.Strings(quarters)

	out := make([]SeriesPoint, 0, len(quarters)*len(keys))
	for _, q := range quarters {
		for _, k := range keys {
			out = append(out, SeriesPoint{Quarter: q, Key: k, TotalLaidOff: totals[q][k]})
		}
	}
	return out
}

// Movers compares each key's layoffs in targetYear against the year before
// and returns every key sorted by absolute change, gainers first. Keys seen
// in only one of the two years count the other year as zero.
func Movers(records []model.Record, key func(model.Record) string, targetYear int) []Mover {
	curr := make(map[string]int)
	prev := make(map[string]int)
	for _, r := range records {
		k := key(r)
		if k == "" {
			continue
		}
		switch r.Year {
		case targetYear:
			curr[k] += laidOff(r)
		case targetYear - 1:
			prev[k] += laidOff(r)
		}
	}

	keys := make(map[string]struct{}, len(curr)+len(prev))
	for k := range curr {
		keys[k] = struct{}{}
	}
	for k := range prev {
		keys[k] = struct{}{}
	}

	out := make([]Mover, 0, len(keys))
	for k := range keys {
		out = append(out, Mover{
			Key:       k,
			Current:   curr[k],
			Previous:  prev[k],
			AbsChange: curr[k] - prev[k],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AbsChange != out[j].AbsChange {
			return out[i].AbsChange > out[j].AbsChange
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// LatestYear returns the most recent year present in the records, or 0 when
// no record carries a date. Used as the default movers target.
func LatestYear(records []model.Record) int {
	year := 0
	for _, r := range records {
		if r.Year > year {
			year = r.Year
		}
	}
	return year
}
