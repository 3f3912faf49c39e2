// Package model contains domain models passed between layers.
package model

import "time"

// SizeCategory buckets companies by their estimated headcount before the cut.
type SizeCategory string

// Size category values. Unknown covers records where neither the layoff
// count nor the workforce percentage was reported.
const (
	SizeSmall   SizeCategory = "Small (<500)"
	SizeMid     SizeCategory = "Mid (500-4999)"
	SizeLarge   SizeCategory = "Large (5000+)"
	SizeUnknown SizeCategory = "Unknown"
)

// GroupBy selects the dimension score computations aggregate over.
type GroupBy string

// Supported grouping dimensions.
const (
	GroupByCompany  GroupBy = "company"
	GroupByLocation GroupBy = "location"
	GroupByIndustry GroupBy = "industry"
	GroupByQuarter  GroupBy = "quarter"
)

// Valid reports whether g is one of the supported grouping dimensions.
func (g GroupBy) Valid() bool {
	switch g {
	case GroupByCompany, GroupByLocation, GroupByIndustry, GroupByQuarter:
		return true
	}
	return false
}

// Record is one cleaned layoff event. Records are immutable after cleaning;
// the dataset is loaded once per snapshot and never mutated in place.
//
// Nullable source fields are pointers: a nil PctLaidOff means the filing did
// not report the share of the workforce cut, not that it was zero.
type Record struct {
	ID       string `json:"id"`
	Company  string `json:"company"`
	Location string `json:"location"`
	Country  string `json:"country"`
	Industry string `json:"industry"`
	Stage    string `json:"stage"`

	Date    time.Time `json:"date"`
	Quarter string    `json:"quarter"` // YYYYQn, empty when the date is unknown
	Year    int       `json:"year"`    // 0 when the date is unknown

	TotalLaidOff *int     `json:"total_laid_off"`
	PctLaidOff   *float64 `json:"pct_laid_off"` // fraction in [0,1]
	FundsRaised  *float64 `json:"funds_raised"` // USD

	EstimatedSize *int         `json:"estimated_size"`
	SizeCategory  SizeCategory `json:"size_category"`
}

// Key returns the record's value for a grouping dimension. The second return
// is false when the value is missing and the record must be skipped for that
// grouping, mirroring a dropna on the group column.
func (r Record) Key(g GroupBy) (string, bool) {
	var v string
	switch g {
	case GroupByCompany:
		v = r.Company
	case GroupByLocation:
		v = r.Location
	case GroupByIndustry:
		v = r.Industry
	case GroupByQuarter:
		v = r.Quarter
	}
	return v, v != ""
}

// QuarterOf formats t as YYYYQn.
func QuarterOf(t time.Time) string {
	q := (int(t.Month())-1)/3 + 1
	return formatQuarter(t.Year(), q)
}

func formatQuarter(year, q int) string {
	// Small enough to avoid fmt in a per-record path.
	digits := [4]byte{
		byte('0' + year/1000%10),
		byte('0' + year/100%10),
		byte('0' + year/10%10),
		byte('0' + year%10),
	}
	return string(digits[:]) + "Q" + string(byte('0'+q))
}
