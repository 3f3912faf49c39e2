package trends_test

import (
	"testing"
	"time"

	"github.com/layoffatlas/layoffatlas/internal/domain/model"
	"github.com/layoffatlas/layoffatlas/internal/domain/trends"
	. "github.com/smartystreets/goconvey/convey"
)

func intPtr(v int) *int { return &v }

func rec(company, country, industry string, year int, month time.Month, laidOff int) model.Record {
	d := time.Date(year, month, 10, 0, 0, 0, 0, time.UTC)
	return model.Record{
		Company:      company,
		Location:     "SF Bay Area",
		Country:      country,
		Industry:     industry,
		Date:         d,
		Quarter:      model.QuarterOf(d),
		Year:         year,
		TotalLaidOff: intPtr(laidOff),
		SizeCategory: model.SizeMid,
	}
}

func TestQuarterlyTotals(t *testing.T) {
	Convey("Given records across several quarters", t, func() {
		records := []model.Record{
			rec("Acme", "United States", "Consumer", 2022, time.January, 100),
			rec("Beta", "Germany", "Finance", 2022, time.February, 50),
			rec("Acme", "United States", "Consumer", 2022, time.July, 30),
			{Company: "NoDate", TotalLaidOff: intPtr(999)}, // skipped
		}

		Convey("When computing quarterly totals", func() {
			points := trends.QuarterlyTotals(records)

			Convey("Then quarters come out chronologically with running totals", func() {
				So(points, ShouldHaveLength, 2)
				So(points[0].Quarter, ShouldEqual, "2022Q1")
				So(points[0].TotalLaidOff, ShouldEqual, 150)
				So(points[0].ActiveCompanies, ShouldEqual, 2)
				So(*points[0].AvgPerCompany, ShouldAlmostEqual, 75.0)
				So(points[1].Quarter, ShouldEqual, "2022Q3")
				So(points[1].Cumulative, ShouldEqual, 180)
			})
		})

		Convey("When smoothing the series", func() {
			points := trends.QuarterlyTotals(records)
			smoothed := trends.RollingMean2(points)

			So(smoothed, ShouldHaveLength, 2)
			So(smoothed[0], ShouldAlmostEqual, 150.0)
			So(smoothed[1], ShouldAlmostEqual, 90.0)
		})
	})
}

func TestPctChange(t *testing.T) {
	Convey("Given period totals", t, func() {
		Convey("When the base is positive", func() {
			v := trends.PctChange(150, 100)
			So(v, ShouldNotBeNil)
			So(*v, ShouldAlmostEqual, 50.0)
		})

		Convey("When the base is zero the change is undefined", func() {
			So(trends.PctChange(150, 0), ShouldBeNil)
		})
	})
}

func TestComputeOverview(t *testing.T) {
	Convey("Given records spanning two years", t, func() {
		records := []model.Record{
			rec("Acme", "United States", "Consumer", 2022, time.October, 100),
			rec("Beta", "Germany", "Finance", 2023, time.January, 300),
			rec("Gamma", "United States", "Finance", 2023, time.April, 150),
		}

		Convey("When computing the overview", func() {
			o := trends.ComputeOverview(records)

			Convey("Then the KPI header is populated", func() {
				So(o.TotalLaidOff, ShouldEqual, 550)
				So(o.Companies, ShouldEqual, 3)
				So(o.Countries, ShouldEqual, 2)
				So(o.PeakQuarter, ShouldEqual, "2023Q1")
				So(o.PeakQuarterTotal, ShouldEqual, 300)
				// latest 2023Q2=150 vs 2023Q1=300
				So(*o.QoQChange, ShouldAlmostEqual, -50.0)
				// 2023=450 vs 2022=100
				So(*o.YoYChange, ShouldAlmostEqual, 350.0)
			})
		})

		Convey("When only one period exists the changes are undefined", func() {
			o := trends.ComputeOverview(records[:1])
			So(o.QoQChange, ShouldBeNil)
			So(o.YoYChange, ShouldBeNil)
		})
	})
}

func TestTotalsByAndTopN(t *testing.T) {
	Convey("Given records in several industries", t, func() {
		records := []model.Record{
			rec("Acme", "United States", "Consumer", 2023, time.January, 100),
			rec("Beta", "Germany", "Finance", 2023, time.January, 300),
			rec("Gamma", "United States", "Finance", 2023, time.April, 150),
		}

		Convey("When summing by industry", func() {
			totals := trends.TotalsBy(records, trends.ByIndustry)

			Convey("Then groups are sorted largest first", func() {
				So(totals, ShouldHaveLength, 2)
				So(totals[0].Key, ShouldEqual, "Finance")
				So(totals[0].TotalLaidOff, ShouldEqual, 450)
				So(totals[1].Key, ShouldEqual, "Consumer")
			})

			Convey("And TopN truncates without reordering", func() {
				top := trends.TopN(totals, 1)
				So(top, ShouldHaveLength, 1)
				So(top[0].Key, ShouldEqual, "Finance")
				So(trends.TopN(totals, 10), ShouldHaveLength, 2)
			})
		})

		Convey("When ties occur they break alphabetically", func() {
			tied := []model.Record{
				rec("A", "X", "Beta", 2023, time.January, 100),
				rec("B", "X", "Alpha", 2023, time.January, 100),
			}
			totals := trends.TotalsBy(tied, trends.ByIndustry)
			So(totals[0].Key, ShouldEqual, "Alpha")
		})
	})
}

func TestSizeCategoryTotals(t *testing.T) {
	Convey("Given records with size categories", t, func() {
		records := []model.Record{
			{SizeCategory: model.SizeSmall, TotalLaidOff: intPtr(10)},
			{SizeCategory: model.SizeLarge, TotalLaidOff: intPtr(500)},
		}

		Convey("When summing per bucket", func() {
			totals := trends.SizeCategoryTotals(records)

			Convey("Then buckets come out in display order, zeros included", func() {
				So(totals, ShouldHaveLength, 4)
				So(totals[0].Key, ShouldEqual, string(model.SizeSmall))
				So(totals[0].TotalLaidOff, ShouldEqual, 10)
				So(totals[1].TotalLaidOff, ShouldEqual, 0)
				So(totals[2].TotalLaidOff, ShouldEqual, 500)
			})
		})
	})
}

func TestQuarterlySeriesBy(t *testing.T) {
	Convey("Given records for two industries across two quarters", t, func() {
		records := []model.Record{
			rec("Acme", "United States", "Consumer", 2023, time.January, 100),
			rec("Beta", "Germany", "Finance", 2023, time.April, 300),
		}

		Convey("When building the dense grid", func() {
			series := trends.QuarterlySeriesBy(records, trends.ByIndustry, []string{"Consumer", "Finance"})

			Convey("Then absent cells are zero-filled", func() {
				So(series, ShouldHaveLength, 4)
				So(series[0], ShouldResemble, trends.SeriesPoint{Quarter: "2023Q1", Key: "Consumer", TotalLaidOff: 100})
				So(series[1].TotalLaidOff, ShouldEqual, 0)
				So(series[3], ShouldResemble, trends.SeriesPoint{Quarter: "2023Q2", Key: "Finance", TotalLaidOff: 300})
			})
		})

		Convey("When a requested key never appears it still gets cells", func() {
			series := trends.QuarterlySeriesBy(records, trends.ByIndustry, []string{"Crypto"})
			So(series, ShouldBeEmpty)
		})
	})
}

func TestMovers(t *testing.T) {
	Convey("Given layoffs across two consecutive years", t, func() {
		records := []model.Record{
			rec("Acme", "United States", "Consumer", 2022, time.March, 100),
			rec("Acme", "United States", "Consumer", 2023, time.March, 400),
			rec("Beta", "Germany", "Finance", 2022, time.June, 500),
			rec("Beta", "Germany", "Finance", 2023, time.June, 100),
			rec("Gamma", "Canada", "Retail", 2023, time.June, 50),
		}

		Convey("When comparing 2023 against 2022 by industry", func() {
			movers := trends.Movers(records, trends.ByIndustry, 2023)

			Convey("Then gainers lead and keys in one year count zero in the other", func() {
				So(movers, ShouldHaveLength, 3)
				So(movers[0].Key, ShouldEqual, "Consumer")
				So(movers[0].AbsChange, ShouldEqual, 300)
				So(movers[1].Key, ShouldEqual, "Retail")
				So(movers[1].Previous, ShouldEqual, 0)
				So(movers[2].Key, ShouldEqual, "Finance")
				So(movers[2].AbsChange, ShouldEqual, -400)
			})
		})

		Convey("When detecting the latest year", func() {
			So(trends.LatestYear(records), ShouldEqual, 2023)
			So(trends.LatestYear(nil), ShouldEqual, 0)
		})
	})
}
