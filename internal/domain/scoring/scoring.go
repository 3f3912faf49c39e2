// Package scoring computes the six derived layoff scores over a record set.
//
// Computation is a pure, deterministic, single-pass aggregation: no I/O, no
// shared state, and identical input always yields identical output. A score
// whose denominator aggregate is empty comes back nil for that group rather
// than NaN or an error.
package scoring

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/layoffatlas/layoffatlas/internal/domain/model"
)

// Sentinel kinds for scoring errors.
var (
	ErrInvalidGrouping = errors.New("invalid grouping dimension")
)

// Default calculator configuration constants.
const (
	defaultFundingUnit        = 1_000_000 // layoffs are scaled per $1M raised
	defaultSurvivabilityScale = 100
	maxBounceback             = 100
)

// ScoreSet holds the six derived scores plus the supporting aggregates for
// one group. Nil means the score is undefined for the group, and the JSON
// encoding keeps the null so dashboards can render a gap instead of a zero.
type ScoreSet struct {
	Group        string `json:"group"`
	Events       int    `json:"events"`
	TotalLaidOff int    `json:"total_laid_off"`

	MeanPctLaidOff    *float64 `json:"mean_pct_laid_off"`
	FundsRaisedTotal  *float64 `json:"funds_raised_total"`
	LayoffsPerMillion *float64 `json:"layoffs_per_million"`

	Efficiency    *float64 `json:"layoff_efficiency_score"`
	Instability   *float64 `json:"layoff_instability_score"`
	Severity      *float64 `json:"layoff_severity_index"`
	Fragility     *float64 `json:"location_fragility_index"`
	Survivability *float64 `json:"industry_survivability_score"`
	Bounceback    *float64 `json:"bounceback_potential_score"`
}

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithFundingUnit sets the funding denominator for the efficiency score.
func WithFundingUnit(unit float64) Option {
	return func(c *Calculator) {
		if unit > 0 {
			c.fundingUnit = unit
		}
	}
}

// WithSurvivabilityScale sets the upper bound of the survivability score.
func WithSurvivabilityScale(scale float64) Option {
	return func(c *Calculator) {
		if scale > 0 {
			c.survivabilityScale = scale
		}
	}
}

// Calculator maps a record collection to per-group score sets.
type Calculator struct {
	fundingUnit        float64
	survivabilityScale float64
}

// NewCalculator creates a Calculator with configuration options.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		fundingUnit:        defaultFundingUnit,
		survivabilityScale: defaultSurvivabilityScale,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// perCompanyPct accumulates the workforce fraction per company inside a
// group, feeding the fragility index.
type perCompanyPct struct {
	sum   float64
	count int
}

// accumulator gathers everything one group needs in a single pass.
type accumulator struct {
	events       int
	totalLaidOff int

	pctSum   float64
	pctCount int

	fundsSum   float64
	fundsCount int

	// efficiency-eligible rows only
	effLESSum float64
	effLPMSum float64
	effCount  int

	sevSum   float64
	sevCount int

	quarters      map[string]struct{}
	quarterTotals map[string]int
	companyPct    map[string]*perCompanyPct
}

func newAccumulator() *accumulator {
	return &accumulator{
		quarters:      make(map[string]struct{}),
		quarterTotals: make(map[string]int),
		companyPct:    make(map[string]*perCompanyPct),
	}
}

// Compute aggregates records along the given dimension and derives the six
// scores for every group. Records missing the grouping value are skipped,
// and an empty input yields an empty, non-nil map.
func (c *Calculator) Compute(ctx context.Context, records []model.Record, groupBy model.GroupBy) (map[string]ScoreSet, error) {
	if !groupBy.Valid() {
		return nil, ErrInvalidGrouping
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	accs := make(map[string]*accumulator)
	for _, r := range records {
		key, ok := r.Key(groupBy)
		if !ok {
			continue
		}
		acc, ok := accs[key]
		if !ok {
			acc = newAccumulator()
			accs[key] = acc
		}
		acc.observe(r, c.fundingUnit)
	}

	out := make(map[string]ScoreSet, len(accs))
	for key, acc := range accs {
		out[key] = acc.finalize(key, c.survivabilityScale)
	}
	if groupBy == model.GroupByQuarter {
		applyQuarterBounceback(out)
	}
	return out, nil
}

// applyQuarterBounceback rescores quarter groups against the dataset-wide
// peak quarter. A quarter group's own series is a single quarter, so the
// within-group comparison would always come out zero.
func applyQuarterBounceback(sets map[string]ScoreSet) {
	peak := 0
	for _, s := range sets {
		if s.Bounceback != nil && s.TotalLaidOff > peak {
			peak = s.TotalLaidOff
		}
	}
	if peak <= 0 {
		return
	}
	for key, s := range sets {
		if s.Bounceback == nil {
			continue
		}
		bb := (1 - float64(s.TotalLaidOff)/float64(peak)) * maxBounceback
		s.Bounceback = &bb
		sets[key] = s
	}
}

// observe folds one record into the accumulator.
func (a *accumulator) observe(r model.Record, fundingUnit float64) {
	a.events++

	if r.TotalLaidOff != nil {
		a.totalLaidOff += *r.TotalLaidOff
		if r.Quarter != "" {
			a.quarterTotals[r.Quarter] += *r.TotalLaidOff
		}
	}
	if r.Quarter != "" {
		a.quarters[r.Quarter] = struct{}{}
	}
	if r.PctLaidOff != nil {
		a.pctSum += *r.PctLaidOff
		a.pctCount++
		if r.Company != "" {
			cp, ok := a.companyPct[r.Company]
			if !ok {
				cp = &perCompanyPct{}
				a.companyPct[r.Company] = cp
			}
			cp.sum += *r.PctLaidOff
			cp.count++
		}
	}
	if r.FundsRaised != nil {
		a.fundsSum += *r.FundsRaised
		a.fundsCount++
	}

	// Efficiency needs all three inputs with positive denominators.
	if r.TotalLaidOff != nil && r.PctLaidOff != nil && r.FundsRaised != nil &&
		*r.PctLaidOff > 0 && *r.FundsRaised > 0 {
		lpm := float64(*r.TotalLaidOff) / (*r.FundsRaised / fundingUnit)
		a.effLPMSum += lpm
		a.effLESSum += lpm / *r.PctLaidOff
		a.effCount++
	}

	if r.TotalLaidOff != nil && r.PctLaidOff != nil {
		a.sevSum += *r.PctLaidOff * math.Log(float64(*r.TotalLaidOff)+1)
		a.sevCount++
	}
}

// finalize derives the score set from the accumulated aggregates.
func (a *accumulator) finalize(key string, survivabilityScale float64) ScoreSet {
	s := ScoreSet{
		Group:        key,
		Events:       a.events,
		TotalLaidOff: a.totalLaidOff,
	}

	if a.pctCount > 0 {
		s.MeanPctLaidOff = ptr(a.pctSum / float64(a.pctCount))
	}
	if a.fundsCount > 0 {
		s.FundsRaisedTotal = ptr(a.fundsSum)
	}
	if a.effCount > 0 {
		s.LayoffsPerMillion = ptr(a.effLPMSum / float64(a.effCount))
		s.Efficiency = ptr(a.effLESSum / float64(a.effCount))
	}
	if len(a.quarters) > 0 {
		s.Instability = ptr(float64(len(a.quarters)))
	}
	if a.sevCount > 0 {
		sev := a.sevSum / float64(a.sevCount)
		s.Severity = ptr(sev)
		s.Survivability = ptr(survivabilityScale / (1 + sev))
	}
	if n := len(a.companyPct); n > 0 {
		var meanSum float64
		for _, cp := range a.companyPct {
			meanSum += cp.sum / float64(cp.count)
		}
		s.Fragility = ptr(float64(n) * (meanSum / float64(n)))
	}
	s.Bounceback = a.bounceback()
	return s
}

// bounceback measures how far the group's latest layoff-active quarter sits
// below its own peak quarter: 100 means activity fully receded, 0 means the
// latest quarter is the peak. Undefined without a positive peak.
func (a *accumulator) bounceback() *float64 {
	if len(a.quarterTotals) == 0 {
		return nil
	}
	quarters := make([]string, 0, len(a.quarterTotals))
	peak := 0
	for q, total := range a.quarterTotals {
		quarters = append(quarters, q)
		if total > peak {
			peak = total
		}
	}
	if peak <= 0 {
		return nil
	}
	sort.Strings(quarters) // YYYYQn sorts chronologically
	latest := a.quarterTotals[quarters[len(quarters)-1]]
	bb := (1 - float64(latest)/float64(peak)) * maxBounceback
	if bb < 0 {
		bb = 0
	}
	if bb > maxBounceback {
		bb = maxBounceback
	}
	return &bb
}

func ptr(v float64) *float64 { return &v }
