// Command gen-dataset writes a synthetic layoffs dataset in the raw
// spreadsheet format the service ingests. Useful for local development and
// load testing without the real dataset.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/layoffatlas/layoffatlas/internal/domain/cleaning"
)

// Default configuration constants.
const (
	defaultRows = 2000
	defaultOut  = "layoffs_generated.csv"
)

var companies = []string{
	"Acme Robotics", "Brightline", "CloudNest", "DataForge", "Evergrowth",
	"Finchpay", "Gridway", "Hypercart", "Ionwave", "Junctura",
	"Kitely", "Loopstack", "Meridian AI", "Northbeam", "Orbitly",
	"Pavestone", "Quantica", "Rivermind", "Streamly", "Tensorworks",
}

var locations = map[string][]string{
	"United States":  {"SF Bay Area", "New York City", "Seattle", "Austin", "Boston"},
	"India":          {"Bengaluru", "Mumbai", "Gurugram"},
	"Germany":        {"Berlin", "Munich"},
	"United Kingdom": {"London"},
	"Canada":         {"Toronto", "Vancouver"},
	"Brazil":         {"Sao Paulo"},
}

var countries = []string{
	"United States", "India", "Germany", "United Kingdom", "Canada", "Brazil",
}

var industries = []string{
	"Consumer", "Crypto", "Finance", "Food", "Healthcare",
	"Infrastructure", "Media", "Retail", "Sales", "Transportation",
}

var stages = []string{
	"Seed", "Series A", "Series B", "Series C", "Series D", "Post-IPO", "Acquired", "Unknown",
}

func main() {
	var (
		out  = flag.String("out", defaultOut, "Output CSV path")
		rows = flag.Int("rows", defaultRows, "Number of rows to generate")
		seed = flag.Int64("seed", time.Now().UnixNano(), "RNG seed for reproducible output")
	)
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	raw := make([]cleaning.RawRecord, 0, *rows)
	for i := 0; i < *rows; i++ {
		raw = append(raw, randomRow(rng))
	}

	f, err := os.Create(*out)
	if err != nil {
		os.Stderr.WriteString("failed to create output file: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = f.Close() }()

	if err := gocsv.MarshalFile(&raw, f); err != nil {
		os.Stderr.WriteString("failed to write dataset: " + err.Error() + "\n")
		os.Exit(1)
	}
	fmt.Printf("wrote %d rows to %s (seed %d)\n", *rows, *out, *seed)
}

// randomRow produces one raw record with the messiness of the real dataset:
// percentage strings, $-prefixed funding with M/B suffixes, and sparse cells.
func randomRow(rng *rand.Rand) cleaning.RawRecord {
	country := countries[rng.Intn(len(countries))]
	locs := locations[country]

	day := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, rng.Intn(365*5))

	row := cleaning.RawRecord{
		Company:   companies[rng.Intn(len(companies))],
		Location:  locs[rng.Intn(len(locs))],
		Country:   country,
		Industry:  industries[rng.Intn(len(industries))],
		Stage:     stages[rng.Intn(len(stages))],
		Date:      day.Format("2006-01-02"),
		DateAdded: day.AddDate(0, 0, rng.Intn(14)).Format("2006-01-02"),
	}

	// Roughly a tenth of real rows are missing the headcount.
	if rng.Float64() > 0.1 {
		row.TotalLaidOff = fmt.Sprintf("%d", 20+rng.Intn(5000))
	}
	// Percentage is the sparsest column.
	if rng.Float64() > 0.35 {
		row.PctLaidOff = fmt.Sprintf("%d%%", 1+rng.Intn(100))
	}
	if rng.Float64() > 0.15 {
		if rng.Float64() > 0.8 {
			row.FundsRaised = fmt.Sprintf("$%.1fB", 1+rng.Float64()*20)
		} else {
			row.FundsRaised = fmt.Sprintf("$%dM", 5+rng.Intn(900))
		}
	}
	return row
}
