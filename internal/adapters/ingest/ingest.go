// Package ingest reads the source spreadsheet into cleaned records.
//
// The dataset is a single denormalized table shipped as CSV or XLSX. It is
// read in full, cleaned row by row, and handed to the repository as one
// immutable snapshot; there is no incremental ingestion.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/layoffatlas/layoffatlas/internal/domain/cleaning"
	"github.com/layoffatlas/layoffatlas/internal/domain/model"
)

// ReadCSV decodes raw rows from a CSV stream with a header row.
func ReadCSV(r io.Reader) ([]cleaning.RawRecord, error) {
	var rows []cleaning.RawRecord
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return rows, nil
}

// ReadXLSX decodes raw rows from the first sheet of an XLSX stream. Column
// order is free; columns are matched by header name against the CSV header
// names.
func ReadXLSX(r io.Reader) ([]cleaning.RawRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrDecode)
	}
	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(cells) == 0 {
		return nil, nil
	}

	colIdx := make(map[string]int, len(cells[0]))
	for i, name := range cells[0] {
		colIdx[strings.ToLower(strings.TrimSpace(name))] = i
	}

	cell := func(row []string, name string) string {
		i, ok := colIdx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	rows := make([]cleaning.RawRecord, 0, len(cells)-1)
	for _, row := range cells[1:] {
		rows = append(rows, cleaning.RawRecord{
			Company:      cell(row, "company"),
			Location:     cell(row, "location"),
			Country:      cell(row, "country"),
			Industry:     cell(row, "industry"),
			TotalLaidOff: cell(row, "total_laid_off"),
			PctLaidOff:   cell(row, "percentage_laid_off"),
			Date:         cell(row, "date"),
			Stage:        cell(row, "stage"),
			FundsRaised:  cell(row, "funds_raised"),
			DateAdded:    cell(row, "date_added"),
		})
	}
	return rows, nil
}

// CleanAll turns raw rows into records, assigning each a stable id.
func CleanAll(rows []cleaning.RawRecord) []model.Record {
	records := make([]model.Record, 0, len(rows))
	for _, raw := range rows {
		records = append(records, cleaning.Clean(raw, uuid.New().String()))
	}
	return records
}

// LoadFile reads and cleans the dataset at path, dispatching on the file
// extension (.csv or .xlsx).
func LoadFile(ctx context.Context, path string) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	var rows []cleaning.RawRecord
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = ReadCSV(f)
	case ".xlsx":
		rows, err = ReadXLSX(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	return CleanAll(rows), nil
}
