// Package cleaning turns raw tabular cells into typed, normalized records.
//
// The tracker exports percentages as strings like "25%", funding as "$120M"
// or "$1.2B", and leaves any unreported cell empty. Cleaning never fails a
// whole row: an unparseable cell becomes a null field and the row survives.
package cleaning

import (
	"strconv"
	"strings"
	"time"

	"github.com/layoffatlas/layoffatlas/internal/domain/model"
)

// RawRecord mirrors one row of the source table. All cells are kept as
// strings so the same shape works for CSV and XLSX ingestion.
type RawRecord struct {
	Company      string `csv:"company"`
	Location     string `csv:"location"`
	Country      string `csv:"country"`
	Industry     string `csv:"industry"`
	TotalLaidOff string `csv:"total_laid_off"`
	PctLaidOff   string `csv:"percentage_laid_off"`
	Date         string `csv:"date"`
	Stage        string `csv:"stage"`
	FundsRaised  string `csv:"funds_raised"`
	DateAdded    string `csv:"date_added"`
}

// Size category bounds on estimated headcount.
const (
	smallUpperBound = 500
	midUpperBound   = 5000
)

// dateLayouts are tried in order when parsing the date column.
var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Clean converts a raw row into a Record. id becomes the record's stable
// identifier for export references.
func Clean(raw RawRecord, id string) model.Record {
	r := model.Record{
		ID:       id,
		Company:  strings.TrimSpace(raw.Company),
		Location: orUnknown(raw.Location),
		Country:  orUnknown(raw.Country),
		Industry: strings.TrimSpace(raw.Industry),
		Stage:    strings.TrimSpace(raw.Stage),
	}

	if t := ParseDate(raw.Date); t != nil {
		r.Date = *t
		r.Quarter = model.QuarterOf(*t)
		r.Year = t.Year()
	}

	r.TotalLaidOff = ParseCount(raw.TotalLaidOff)
	r.PctLaidOff = ParsePercentage(raw.PctLaidOff)
	r.FundsRaised = ParseFunding(raw.FundsRaised)
	r.EstimatedSize = EstimateSize(r.TotalLaidOff, r.PctLaidOff)
	r.SizeCategory = CategorizeSize(r.EstimatedSize)
	return r
}

// ParsePercentage parses a workforce share into a fraction in [0,1].
// "25%" and "25" both mean a quarter of the workforce; a bare value at or
// below 1 is taken as an already-normalized fraction. Returns nil when the
// cell is empty or unparseable, or the result falls outside [0,1].
func ParsePercentage(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || isNullToken(s) {
		return nil
	}
	hadSign := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	if hadSign || v > 1 {
		v /= 100
	}
	if v < 0 || v > 1 {
		return nil
	}
	return &v
}

// ParseFunding parses a funding cell into USD. Accepts "$120M", "$1.2B",
// "2,500,000" and bare numbers. Returns nil for empty or unparseable cells.
func ParseFunding(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || isNullToken(s) {
		return nil
	}
	s = strings.ToUpper(strings.ReplaceAll(strings.TrimPrefix(s, "$"), ",", ""))

	multiplier := 1.0
	switch {
	case strings.HasSuffix(s, "B"):
		multiplier = 1_000_000_000
		s = strings.TrimSuffix(s, "B")
	case strings.HasSuffix(s, "M"):
		multiplier = 1_000_000
		s = strings.TrimSuffix(s, "M")
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return nil
	}
	v *= multiplier
	return &v
}

// ParseCount parses an integer cell, tolerating thousands separators and a
// trailing ".0" left behind by spreadsheet round-trips.
func ParseCount(s string) *int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || isNullToken(s) {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
		n := int(f)
		return &n
	}
	return nil
}

// ParseDate tries the known source layouts and returns nil when none match.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" || isNullToken(s) {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// EstimateSize derives the pre-layoff headcount from the layoff count and
// the workforce fraction. Only possible when both are known and the fraction
// is positive.
func EstimateSize(totalLaidOff *int, pct *float64) *int {
	if totalLaidOff == nil || pct == nil || *pct <= 0 {
		return nil
	}
	n := int(float64(*totalLaidOff) / *pct)
	return &n
}

// CategorizeSize buckets an estimated headcount.
func CategorizeSize(size *int) model.SizeCategory {
	switch {
	case size == nil:
		return model.SizeUnknown
	case *size < smallUpperBound:
		return model.SizeSmall
	case *size < midUpperBound:
		return model.SizeMid
	default:
		return model.SizeLarge
	}
}

func orUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "Unknown"
	}
	return s
}

func isNullToken(s string) bool {
	switch strings.ToLower(s) {
	case "nan", "none", "null", "n/a", "na":
		return true
	}
	return false
}
