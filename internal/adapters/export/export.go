// Package export writes filtered records and computed scores as
// downloadable spreadsheets.
package export

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/layoffatlas/layoffatlas/internal/domain/model"
	"github.com/layoffatlas/layoffatlas/internal/domain/scoring"
)

// Supported output formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// RecordRow is the flat export shape of one record. Null fields export as
// empty cells.
type RecordRow struct {
	ID            string `csv:"id"`
	Company       string `csv:"company"`
	Location      string `csv:"location"`
	Country       string `csv:"country"`
	Industry      string `csv:"industry"`
	Stage         string `csv:"stage"`
	Date          string `csv:"date"`
	Quarter       string `csv:"quarter"`
	TotalLaidOff  string `csv:"total_laid_off"`
	PctLaidOff    string `csv:"percentage_laid_off"`
	FundsRaised   string `csv:"funds_raised"`
	EstimatedSize string `csv:"estimated_size"`
	SizeCategory  string `csv:"size_category"`
}

// ScoreRow is the flat export shape of one group's score set.
type ScoreRow struct {
	Group         string `csv:"group"`
	Events        string `csv:"events"`
	TotalLaidOff  string `csv:"total_laid_off"`
	Efficiency    string `csv:"layoff_efficiency_score"`
	Instability   string `csv:"layoff_instability_score"`
	Severity      string `csv:"layoff_severity_index"`
	Fragility     string `csv:"location_fragility_index"`
	Survivability string `csv:"industry_survivability_score"`
	Bounceback    string `csv:"bounceback_potential_score"`
}

// BuildRecordRows flattens records for export, preserving input order.
func BuildRecordRows(records []model.Record) []RecordRow {
	rows := make([]RecordRow, 0, len(records))
	for _, r := range records {
		row := RecordRow{
			ID:           r.ID,
			Company:      r.Company,
			Location:     r.Location,
			Country:      r.Country,
			Industry:     r.Industry,
			Stage:        r.Stage,
			Quarter:      r.Quarter,
			SizeCategory: string(r.SizeCategory),
		}
		if !r.Date.IsZero() {
			row.Date = r.Date.Format("2006-01-02")
		}
		row.TotalLaidOff = formatInt(r.TotalLaidOff)
		row.PctLaidOff = formatFloat(r.PctLaidOff)
		row.FundsRaised = formatFloat(r.FundsRaised)
		row.EstimatedSize = formatInt(r.EstimatedSize)
		rows = append(rows, row)
	}
	return rows
}

// BuildScoreRows flattens a score mapping for export, sorted by group key.
func BuildScoreRows(scores map[string]scoring.ScoreSet) []ScoreRow {
	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]ScoreRow, 0, len(keys))
	for _, k := range keys {
		s := scores[k]
		rows = append(rows, ScoreRow{
			Group:         s.Group,
			Events:        strconv.Itoa(s.Events),
			TotalLaidOff:  strconv.Itoa(s.TotalLaidOff),
			Efficiency:    formatFloat(s.Efficiency),
			Instability:   formatFloat(s.Instability),
			Severity:      formatFloat(s.Severity),
			Fragility:     formatFloat(s.Fragility),
			Survivability: formatFloat(s.Survivability),
			Bounceback:    formatFloat(s.Bounceback),
		})
	}
	return rows
}

// WriteCSV writes the record rows followed by a blank line and the score
// rows, the closest a single CSV gets to the two-sheet XLSX layout.
func WriteCSV(w io.Writer, records []RecordRow, scores []ScoreRow) error {
	if err := gocsv.Marshal(&records, w); err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	if len(scores) == 0 {
		return nil
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	if err := gocsv.Marshal(&scores, w); err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return nil
}

// WriteXLSX writes a workbook with a Records sheet and a Scores sheet.
func WriteXLSX(w io.Writer, records []RecordRow, scores []ScoreRow) error {
	f := excelize.NewFile()
	defer f.Close()

	const recordsSheet = "Records"
	if err := f.SetSheetName("Sheet1", recordsSheet); err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}

	recordHeader := []interface{}{
		"id", "company", "location", "country", "industry", "stage", "date",
		"quarter", "total_laid_off", "percentage_laid_off", "funds_raised",
		"estimated_size", "size_category",
	}
	if err := f.SetSheetRow(recordsSheet, "A1", &recordHeader); err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrEncode, err)
		}
		row := []interface{}{
			r.ID, r.Company, r.Location, r.Country, r.Industry, r.Stage,
			r.Date, r.Quarter, r.TotalLaidOff, r.PctLaidOff, r.FundsRaised,
			r.EstimatedSize, r.SizeCategory,
		}
		if err := f.SetSheetRow(recordsSheet, cell, &row); err != nil {
			return fmt.Errorf("%w: %v", ErrEncode, err)
		}
	}

	const scoresSheet = "Scores"
	if _, err := f.NewSheet(scoresSheet); err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	scoreHeader := []interface{}{
		"group", "events", "total_laid_off", "layoff_efficiency_score",
		"layoff_instability_score", "layoff_severity_index",
		"location_fragility_index", "industry_survivability_score",
		"bounceback_potential_score",
	}
	if err := f.SetSheetRow(scoresSheet, "A1", &scoreHeader); err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	for i, s := range scores {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrEncode, err)
		}
		row := []interface{}{
			s.Group, s.Events, s.TotalLaidOff, s.Efficiency, s.Instability,
			s.Severity, s.Fragility, s.Survivability, s.Bounceback,
		}
		if err := f.SetSheetRow(scoresSheet, cell, &row); err != nil {
			return fmt.Errorf("%w: %v", ErrEncode, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return nil
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
