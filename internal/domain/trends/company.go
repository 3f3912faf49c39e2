package trends

import (
	"sort"

	"github.com/layoffatlas/layoffatlas/internal/domain/model"
)

// topLocationCount bounds the per-company location breakdown.
const topLocationCount = 10

// YearCount counts layoff rounds (distinct event dates) in one year.
type YearCount struct {
	Year   int `json:"year"`
	Rounds int `json:"rounds"`
}

// Profile is the per-company deep dive behind the Company view.
type Profile struct {
	Company          string         `json:"company"`
	Industry         string         `json:"industry"`
	TotalLaidOff     int            `json:"total_laid_off"`
	Rounds           int            `json:"rounds"`
	PeakQuarter      string         `json:"peak_quarter"`
	PeakQuarterTotal int            `json:"peak_quarter_total"`
	UniqueLocations  int            `json:"unique_locations"`
	IndustryShare    *float64       `json:"industry_share"`
	Timeline         []QuarterPoint `json:"timeline"`
	Smoothed         []float64      `json:"smoothed"`
	RoundsPerYear    []YearCount    `json:"rounds_per_year"`
	TopLocations     []GroupTotal   `json:"top_locations"`
}

// CompanyProfile builds the deep dive for one company from the already
// filtered record scope. The industry share compares the company's layoffs
// to every layoff in its industry within the same scope. Returns ok=false
// when the scope holds no record for the company.
func CompanyProfile(records []model.Record, company string) (Profile, bool) {
	var own []model.Record
	for _, r := range records {
		if r.Company == company {
			own = append(own, r)
		}
	}
	if len(own) == 0 {
		return Profile{}, false
	}

	p := Profile{
		Company:  company,
		Industry: dominantIndustry(own),
	}

	dates := make(map[string]struct{})
	locations := make(map[string]struct{})
	roundsPerYear := make(map[int]map[string]struct{})
	for _, r := range own {
		p.TotalLaidOff += laidOff(r)
		if !r.Date.IsZero() {
			day := r.Date.Format("2006-01-02")
			dates[day] = struct{}{}
			byYear, ok := roundsPerYear[r.Year]
			if !ok {
				byYear = make(map[string]struct{})
				roundsPerYear[r.Year] = byYear
			}
			byYear[day] = struct{}{}
		}
		if r.Location != "" && r.Location != "Unknown" {
			locations[r.Location] = struct{}{}
		}
	}
	p.Rounds = len(dates)
	p.UniqueLocations = len(locations)

	p.Timeline = QuarterlyTotals(own)
	p.Smoothed = RollingMean2(p.Timeline)
	for _, pt := range p.Timeline {
		if pt.TotalLaidOff > p.PeakQuarterTotal {
			p.PeakQuarterTotal = pt.TotalLaidOff
			p.PeakQuarter = pt.Quarter
		}
	}

	years := make([]int, 0, len(roundsPerYear))
	for y := range roundsPerYear {
		years = append(years, y)
	}
	sort.Ints(years)
	for _, y := range years {
		p.RoundsPerYear = append(p.RoundsPerYear, YearCount{Year: y, Rounds: len(roundsPerYear[y])})
	}

	p.TopLocations = TopN(TotalsBy(own, ByLocation), topLocationCount)

	if p.Industry != "" {
		industryTotal := 0
		for _, r := range records {
			if r.Industry == p.Industry {
				industryTotal += laidOff(r)
			}
		}
		if industryTotal > 0 {
			share := float64(p.TotalLaidOff) / float64(industryTotal)
			p.IndustryShare = &share
		}
	}
	return p, true
}

// dominantIndustry picks the most frequent industry label among a company's
// records; filings occasionally disagree on the label.
func dominantIndustry(records []model.Record) string {
	counts := make(map[string]int)
	for _, r := range records {
		if r.Industry != "" {
			counts[r.Industry]++
		}
	}
	best, bestCount := "", 0
	for industry, c := range counts {
		if c > bestCount || (c == bestCount && industry < best) {
			best, bestCount = industry, c
		}
	}
	return best
}
