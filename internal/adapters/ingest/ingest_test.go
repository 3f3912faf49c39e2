package ingest_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"

	"github.com/layoffatlas/layoffatlas/internal/adapters/ingest"
)

const sampleCSV = `company,location,country,industry,total_laid_off,percentage_laid_off,date,stage,funds_raised,date_added
Acme,SF Bay Area,United States,Consumer,100,20%,2023-01-15,Series B,$50M,2023-01-16
Beta,Berlin,Germany,Finance,,,2023-04-02,Post-IPO,$1.2B,2023-04-03
`

func TestReadCSV(t *testing.T) {
	Convey("Given a CSV stream with a header row", t, func() {
		Convey("When decoding it", func() {
			rows, err := ingest.ReadCSV(strings.NewReader(sampleCSV))

			Convey("Then raw cells survive untouched", func() {
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 2)
				So(rows[0].Company, ShouldEqual, "Acme")
				So(rows[0].PctLaidOff, ShouldEqual, "20%")
				So(rows[0].FundsRaised, ShouldEqual, "$50M")
				So(rows[1].TotalLaidOff, ShouldEqual, "")
			})
		})

		Convey("When the stream is not CSV at all", func() {
			_, err := ingest.ReadCSV(strings.NewReader("\"broken"))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestReadXLSX(t *testing.T) {
	Convey("Given an XLSX workbook", t, func() {
		f := excelize.NewFile()
		sheet := f.GetSheetName(0)
		// deliberately shuffled column order; matching is by header name
		header := []interface{}{"date", "company", "country", "total_laid_off", "percentage_laid_off", "funds_raised"}
		So(f.SetSheetRow(sheet, "A1", &header), ShouldBeNil)
		row := []interface{}{"2023-01-15", "Acme", "United States", "100", "20%", "$50M"}
		So(f.SetSheetRow(sheet, "A2", &row), ShouldBeNil)

		var buf bytes.Buffer
		So(f.Write(&buf), ShouldBeNil)

		Convey("When decoding it", func() {
			rows, err := ingest.ReadXLSX(&buf)

			Convey("Then columns are matched by header name", func() {
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 1)
				So(rows[0].Company, ShouldEqual, "Acme")
				So(rows[0].Date, ShouldEqual, "2023-01-15")
				So(rows[0].PctLaidOff, ShouldEqual, "20%")
				So(rows[0].Location, ShouldEqual, "")
			})
		})

		Convey("When the stream is not a workbook", func() {
			_, err := ingest.ReadXLSX(strings.NewReader("plain text"))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestLoadFile(t *testing.T) {
	Convey("Given dataset files on disk", t, func() {
		ctx := context.Background()
		dir := t.TempDir()

		Convey("When loading a CSV dataset", func() {
			path := filepath.Join(dir, "layoffs.csv")
			So(os.WriteFile(path, []byte(sampleCSV), 0o600), ShouldBeNil)

			records, err := ingest.LoadFile(ctx, path)

			Convey("Then rows come back cleaned with stable ids", func() {
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 2)
				So(records[0].ID, ShouldNotBeEmpty)
				So(records[0].ID, ShouldNotEqual, records[1].ID)
				So(*records[0].TotalLaidOff, ShouldEqual, 100)
				So(*records[0].PctLaidOff, ShouldAlmostEqual, 0.2)
				So(records[0].Quarter, ShouldEqual, "2023Q1")
				So(records[1].TotalLaidOff, ShouldBeNil)
				So(*records[1].FundsRaised, ShouldAlmostEqual, 1_200_000_000)
			})
		})

		Convey("When the extension is unsupported", func() {
			path := filepath.Join(dir, "layoffs.json")
			So(os.WriteFile(path, []byte("{}"), 0o600), ShouldBeNil)

			_, err := ingest.LoadFile(ctx, path)
			So(err, ShouldWrap, ingest.ErrUnsupportedFormat)
		})

		Convey("When the file does not exist", func() {
			_, err := ingest.LoadFile(ctx, filepath.Join(dir, "missing.csv"))
			So(err, ShouldNotBeNil)
		})

		Convey("When the context is already canceled", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := ingest.LoadFile(canceled, filepath.Join(dir, "whatever.csv"))
			So(err, ShouldNotBeNil)
		})
	})
}
