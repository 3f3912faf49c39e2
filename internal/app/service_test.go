package service_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/layoffatlas/layoffatlas/internal/app"
	"github.com/layoffatlas/layoffatlas/internal/domain/filter"
	"github.com/layoffatlas/layoffatlas/internal/domain/model"
	"github.com/layoffatlas/layoffatlas/internal/domain/scoring"
	"github.com/layoffatlas/layoffatlas/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func seed() []model.Record {
	mk := func(id, company, country, industry string, year int, month time.Month, laidOff int, pct float64) model.Record {
		d := time.Date(year, month, 10, 0, 0, 0, 0, time.UTC)
		return model.Record{
			ID:           id,
			Company:      company,
			Location:     "SF Bay Area",
			Country:      country,
			Industry:     industry,
			Stage:        "Series B",
			Date:         d,
			Quarter:      model.QuarterOf(d),
			Year:         year,
			TotalLaidOff: intPtr(laidOff),
			PctLaidOff:   floatPtr(pct),
			FundsRaised:  floatPtr(50_000_000),
			SizeCategory: model.SizeMid,
		}
	}
	return []model.Record{
		mk("1", "Acme", "United States", "Consumer", 2022, time.March, 100, 0.1),
		mk("2", "Acme", "United States", "Consumer", 2023, time.January, 300, 0.2),
		mk("3", "Beta", "Germany", "Finance", 2023, time.February, 500, 0.3),
		mk("4", "Gamma", "Canada", "Retail", 2023, time.May, 50, 0.05),
	}
}

func startedService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	svc := service.New(append([]service.Option{service.WithRecords(seed())}, opts...)...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a service", t, func() {
		ctx := context.Background()

		Convey("When started without any dataset", func() {
			svc := service.New()
			err := svc.Start(ctx)
			So(err, ShouldEqual, service.ErrNoDataset)
		})

		Convey("When started with seeded records", func() {
			svc := startedService(t)

			Convey("Then stats reflect the snapshot", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldBeTrue)
				So(stats["records"], ShouldEqual, 4)
				So(stats["companies"], ShouldEqual, 3)
				So(stats["countries"], ShouldEqual, 3)
			})

			Convey("And starting again is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})

			Convey("And queries still work after Stop", func() {
				svc.Stop()
				records, total, err := svc.Records(ctx, filter.Filter{}, 10, 0)
				So(err, ShouldBeNil)
				So(total, ShouldEqual, 4)
				So(records, ShouldHaveLength, 4)
			})
		})
	})
}

func TestServiceRecords(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := startedService(t)

		Convey("When listing with a filter", func() {
			records, total, err := svc.Records(ctx, filter.Filter{Countries: []string{"United States"}}, 100, 0)
			So(err, ShouldBeNil)
			So(total, ShouldEqual, 2)
			So(records, ShouldHaveLength, 2)
		})

		Convey("When paging beyond the result set", func() {
			records, total, err := svc.Records(ctx, filter.Filter{}, 10, 100)
			So(err, ShouldBeNil)
			So(total, ShouldEqual, 4)
			So(records, ShouldBeEmpty)
		})

		Convey("When windowing", func() {
			records, total, err := svc.Records(ctx, filter.Filter{}, 2, 1)
			So(err, ShouldBeNil)
			So(total, ShouldEqual, 4)
			So(records, ShouldHaveLength, 2)
			So(records[0].ID, ShouldEqual, "2")
		})

		Convey("When reading facets", func() {
			facets := svc.Facets(ctx)
			So(facets.Companies, ShouldResemble, []string{"Acme", "Beta", "Gamma"})
			So(facets.Years, ShouldResemble, []int{2022, 2023})
		})
	})
}

func TestServiceScores(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := startedService(t)

		Convey("When computing scores by company", func() {
			scores, err := svc.Scores(ctx, filter.Filter{}, model.GroupByCompany)
			So(err, ShouldBeNil)
			So(scores, ShouldHaveLength, 3)
			So(scores["Acme"].Events, ShouldEqual, 2)
		})

		Convey("When the grouping is invalid", func() {
			_, err := svc.Scores(ctx, filter.Filter{}, model.GroupBy("stage"))
			So(err, ShouldEqual, scoring.ErrInvalidGrouping)
		})

		Convey("When the filter narrows the scope the scores change", func() {
			all, err := svc.Scores(ctx, filter.Filter{}, model.GroupByCompany)
			So(err, ShouldBeNil)
			scoped, err := svc.Scores(ctx, filter.Filter{Years: []int{2023}}, model.GroupByCompany)
			So(err, ShouldBeNil)
			So(all["Acme"].Events, ShouldEqual, 2)
			So(scoped["Acme"].Events, ShouldEqual, 1)
		})
	})
}

func TestServiceTrends(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := startedService(t)

		Convey("When building the default trends report", func() {
			report, err := svc.Trends(ctx, filter.Filter{}, "", 0)

			Convey("Then the report covers every section", func() {
				So(err, ShouldBeNil)
				So(report.Overview.TotalLaidOff, ShouldEqual, 950)
				So(report.Quarterly, ShouldNotBeEmpty)
				So(report.TopIndustries[0].Key, ShouldEqual, "Finance")
				So(report.SizeCategories, ShouldHaveLength, 4)
				So(report.MoverDimension, ShouldEqual, "industry")
				So(report.MoverYear, ShouldEqual, 2023)
			})

			Convey("And movers split into gainers and decliners", func() {
				So(report.Gainers, ShouldNotBeEmpty)
				for _, m := range report.Gainers {
					So(m.AbsChange, ShouldBeGreaterThan, 0)
				}
				for _, m := range report.Decliners {
					So(m.AbsChange, ShouldBeLessThan, 0)
				}
			})
		})

		Convey("When asking for country movers in a specific year", func() {
			report, err := svc.Trends(ctx, filter.Filter{}, "country", 2023)
			So(err, ShouldBeNil)
			So(report.MoverDimension, ShouldEqual, "country")
			So(report.MoverYear, ShouldEqual, 2023)
		})

		Convey("When the mover dimension is invalid", func() {
			_, err := svc.Trends(ctx, filter.Filter{}, "stage", 0)
			So(err, ShouldEqual, service.ErrInvalidMoverDimension)
		})
	})
}

func TestServiceCompanyProfile(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := startedService(t)

		Convey("When the company exists", func() {
			profile, err := svc.CompanyProfile(ctx, filter.Filter{}, "Acme")
			So(err, ShouldBeNil)
			So(profile.Company, ShouldEqual, "Acme")
			So(profile.TotalLaidOff, ShouldEqual, 400)
		})

		Convey("When the company is filtered out of scope", func() {
			_, err := svc.CompanyProfile(ctx, filter.Filter{Years: []int{2022}}, "Beta")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestServiceExport(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := startedService(t)

		Convey("When exporting CSV", func() {
			var buf bytes.Buffer
			err := svc.Export(ctx, &buf, filter.Filter{}, "csv", model.GroupByCompany)
			So(err, ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, "Acme")
			So(buf.String(), ShouldContainSubstring, "layoff_efficiency_score")
		})

		Convey("When exporting XLSX", func() {
			var buf bytes.Buffer
			err := svc.Export(ctx, &buf, filter.Filter{}, "xlsx", model.GroupByCompany)
			So(err, ShouldBeNil)
			So(buf.Len(), ShouldBeGreaterThan, 0)
		})

		Convey("When the format is unknown", func() {
			var buf bytes.Buffer
			err := svc.Export(ctx, &buf, filter.Filter{}, "pdf", model.GroupByCompany)
			So(err, ShouldEqual, service.ErrInvalidExportFormat)
		})
	})
}

func TestServiceDatasetReload(t *testing.T) {
	Convey("Given a service backed by a dataset file", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		path := filepath.Join(dir, "layoffs.csv")

		csvOne := "company,location,country,industry,total_laid_off,percentage_laid_off,date,stage,funds_raised,date_added\n" +
			"Acme,SF Bay Area,United States,Consumer,100,20%,2023-01-15,Series B,$50M,\n"
		csvTwo := csvOne +
			"Beta,Berlin,Germany,Finance,200,10%,2023-02-01,Post-IPO,$1.2B,\n"

		So(os.WriteFile(path, []byte(csvOne), 0o600), ShouldBeNil)

		svc := service.New(
			service.WithDatasetPath(path),
			service.WithDatasetWatch(false),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When the file grows and Reload is called", func() {
			So(svc.GetStats()["records"], ShouldEqual, 1)
			So(os.WriteFile(path, []byte(csvTwo), 0o600), ShouldBeNil)
			So(svc.Reload(ctx), ShouldBeNil)
			So(svc.GetStats()["records"], ShouldEqual, 2)
		})

		Convey("When a reload fails the previous snapshot survives", func() {
			So(os.Remove(path), ShouldBeNil)
			So(svc.Reload(ctx), ShouldNotBeNil)
			So(svc.GetStats()["records"], ShouldEqual, 1)
		})
	})
}
