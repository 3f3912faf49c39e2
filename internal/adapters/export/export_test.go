package export_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"

	"github.com/layoffatlas/layoffatlas/internal/adapters/export"
	"github.com/layoffatlas/layoffatlas/internal/domain/model"
	"github.com/layoffatlas/layoffatlas/internal/domain/scoring"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func exportFixtures() ([]model.Record, map[string]scoring.ScoreSet) {
	records := []model.Record{
		{
			ID:           "id-1",
			Company:      "Acme",
			Location:     "SF Bay Area",
			Country:      "United States",
			Industry:     "Consumer",
			Stage:        "Series B",
			Date:         time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
			Quarter:      "2023Q1",
			Year:         2023,
			TotalLaidOff: intPtr(100),
			PctLaidOff:   floatPtr(0.2),
			FundsRaised:  floatPtr(50_000_000),
			SizeCategory: model.SizeMid,
		},
		{
			ID:           "id-2",
			Company:      "Beta",
			Location:     "Berlin",
			Country:      "Germany",
			Industry:     "Finance",
			SizeCategory: model.SizeUnknown,
		},
	}
	scores := map[string]scoring.ScoreSet{
		"Beta": {Group: "Beta", Events: 1},
		"Acme": {Group: "Acme", Events: 1, TotalLaidOff: 100, Efficiency: floatPtr(10)},
	}
	return records, scores
}

func TestBuildRows(t *testing.T) {
	Convey("Given records and scores", t, func() {
		records, scores := exportFixtures()

		Convey("When flattening records", func() {
			rows := export.BuildRecordRows(records)

			Convey("Then null fields become empty cells", func() {
				So(rows, ShouldHaveLength, 2)
				So(rows[0].Date, ShouldEqual, "2023-01-15")
				So(rows[0].TotalLaidOff, ShouldEqual, "100")
				So(rows[0].PctLaidOff, ShouldEqual, "0.2")
				So(rows[1].Date, ShouldEqual, "")
				So(rows[1].TotalLaidOff, ShouldEqual, "")
				So(rows[1].SizeCategory, ShouldEqual, "Unknown")
			})
		})

		Convey("When flattening scores", func() {
			rows := export.BuildScoreRows(scores)

			Convey("Then rows come out sorted by group", func() {
				So(rows, ShouldHaveLength, 2)
				So(rows[0].Group, ShouldEqual, "Acme")
				So(rows[0].Efficiency, ShouldEqual, "10")
				So(rows[1].Group, ShouldEqual, "Beta")
				So(rows[1].Efficiency, ShouldEqual, "")
			})
		})
	})
}

func TestWriteCSV(t *testing.T) {
	Convey("Given export rows", t, func() {
		records, scores := exportFixtures()
		recordRows := export.BuildRecordRows(records)
		scoreRows := export.BuildScoreRows(scores)

		Convey("When writing CSV", func() {
			var buf bytes.Buffer
			err := export.WriteCSV(&buf, recordRows, scoreRows)

			Convey("Then both sections land in one stream", func() {
				So(err, ShouldBeNil)
				out := buf.String()
				So(out, ShouldContainSubstring, "id,company,location")
				So(out, ShouldContainSubstring, "id-1,Acme,SF Bay Area")
				So(out, ShouldContainSubstring, "layoff_efficiency_score")
				So(strings.Index(out, "id-1"), ShouldBeLessThan, strings.Index(out, "layoff_efficiency_score"))
			})
		})

		Convey("When there are no scores the score section is omitted", func() {
			var buf bytes.Buffer
			err := export.WriteCSV(&buf, recordRows, nil)

			So(err, ShouldBeNil)
			So(buf.String(), ShouldNotContainSubstring, "layoff_efficiency_score")
		})
	})
}

func TestWriteXLSX(t *testing.T) {
	Convey("Given export rows", t, func() {
		records, scores := exportFixtures()
		recordRows := export.BuildRecordRows(records)
		scoreRows := export.BuildScoreRows(scores)

		Convey("When writing a workbook", func() {
			var buf bytes.Buffer
			err := export.WriteXLSX(&buf, recordRows, scoreRows)
			So(err, ShouldBeNil)

			Convey("Then it opens with a Records and a Scores sheet", func() {
				f, err := excelize.OpenReader(&buf)
				So(err, ShouldBeNil)
				defer f.Close()

				recordCells, err := f.GetRows("Records")
				So(err, ShouldBeNil)
				So(recordCells, ShouldHaveLength, 3) // header + 2 rows
				So(recordCells[1][1], ShouldEqual, "Acme")

				scoreCells, err := f.GetRows("Scores")
				So(err, ShouldBeNil)
				So(scoreCells, ShouldHaveLength, 3)
				So(scoreCells[0][0], ShouldEqual, "group")
				So(scoreCells[1][0], ShouldEqual, "Acme")
			})
		})
	})
}
