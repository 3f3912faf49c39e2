// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/layoffatlas/layoffatlas/internal/adapters/export"
	"github.com/layoffatlas/layoffatlas/internal/adapters/ingest"
	"github.com/layoffatlas/layoffatlas/internal/adapters/repository"
	"github.com/layoffatlas/layoffatlas/internal/domain/filter"
	"github.com/layoffatlas/layoffatlas/internal/domain/model"
	"github.com/layoffatlas/layoffatlas/internal/domain/scoring"
	"github.com/layoffatlas/layoffatlas/internal/domain/trends"
	"github.com/layoffatlas/layoffatlas/pkg/logger"
	"github.com/layoffatlas/layoffatlas/pkg/metrics"
)

// Breakdown sizes for the trends report.
const (
	topBreakdownCount = 10
	topSeriesCount    = 6
	topMoverCount     = 10
)

// TrendsReport bundles every aggregate the Trends view renders.
type TrendsReport struct {
	Overview       trends.Overview       `json:"overview"`
	Quarterly      []trends.QuarterPoint `json:"quarterly"`
	TopIndustries  []trends.GroupTotal   `json:"top_industries"`
	TopCountries   []trends.GroupTotal   `json:"top_countries"`
	SizeCategories []trends.GroupTotal   `json:"size_categories"`
	IndustrySeries []trends.SeriesPoint  `json:"industry_series"`
	SizeSeries     []trends.SeriesPoint  `json:"size_series"`
	MoverDimension string                `json:"mover_dimension"`
	MoverYear      int                   `json:"mover_year"`
	Gainers        []trends.Mover        `json:"gainers"`
	Decliners      []trends.Mover        `json:"decliners"`
}

// Service owns the dataset snapshot and the computation layers behind the
// HTTP API.
type Service struct {
	mu sync.RWMutex

	store      repository.Store
	calculator *scoring.Calculator

	datasetPath  string
	watchDataset bool
	maxTopLimit  int
	scoringOpts  []scoring.Option

	// seedRecords bypasses file loading; used by tests and embedders.
	seedRecords []model.Record

	started bool
	stopCh  chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDatasetPath sets the spreadsheet to load at startup.
func WithDatasetPath(path string) Option {
	return func(s *Service) {
		s.datasetPath = path
	}
}

// WithDatasetWatch enables reloading when the dataset file changes.
func WithDatasetWatch(enabled bool) Option {
	return func(s *Service) {
		s.watchDataset = enabled
	}
}

// WithMaxTopLimit caps list-shaped responses.
func WithMaxTopLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxTopLimit = n
		}
	}
}

// WithStore overrides the snapshot store implementation.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithRecords seeds the store directly instead of loading a file.
func WithRecords(records []model.Record) Option {
	return func(s *Service) {
		s.seedRecords = records
	}
}

// WithScoringOptions forwards options to the metric calculator.
func WithScoringOptions(opts ...scoring.Option) Option {
	return func(s *Service) {
		s.scoringOpts = append(s.scoringOpts, opts...)
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		maxTopLimit: 100,
		stopCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the dataset and prepares the service for queries.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		s.store = repository.NewSnapshotStore(ctx)
	}
	s.calculator = scoring.NewCalculator(s.scoringOpts...)

	switch {
	case s.seedRecords != nil:
		s.store.Replace(ctx, s.seedRecords)
		s.logger.Info(ctx, "dataset seeded", logger.Int("records", len(s.seedRecords)))
	case s.datasetPath != "":
		if err := s.loadDataset(ctx); err != nil {
			return err
		}
	default:
		return ErrNoDataset
	}

	if s.watchDataset && s.datasetPath != "" {
		go s.watchLoop(ctx)
	}

	s.started = true
	s.logger.Info(ctx, "analytics service started",
		logger.Int("records", s.store.Count(ctx)),
		logger.Bool("watch", s.watchDataset),
	)
	return nil
}

// Stop releases background work. Queries against the last snapshot remain
// valid after Stop.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	s.started = false
	s.logger.Info(context.Background(), "analytics service stopped")
}

// loadDataset parses, cleans, and swaps in the dataset file.
func (s *Service) loadDataset(ctx context.Context) error {
	start := time.Now()
	records, err := ingest.LoadFile(ctx, s.datasetPath)
	if err != nil {
		metrics.RecordDatasetReloadError()
		return err
	}
	s.store.Replace(ctx, records)
	elapsed := time.Since(start)
	metrics.RecordDatasetReload(float64(elapsed.Microseconds()) / 1000)
	s.logger.Info(ctx, "dataset loaded",
		logger.String("path", s.datasetPath),
		logger.Int("records", len(records)),
		logger.Any("elapsed", elapsed),
	)
	return nil
}

// Reload re-reads the dataset file and swaps the snapshot. A failed reload
// keeps the previous snapshot.
func (s *Service) Reload(ctx context.Context) error {
	s.mu.RLock()
	path := s.datasetPath
	s.mu.RUnlock()
	if path == "" {
		return ErrNoDataset
	}
	return s.loadDataset(ctx)
}

// Records returns the filtered records windowed by limit/offset, plus the
// total match count before windowing.
func (s *Service) Records(ctx context.Context, f filter.Filter, limit, offset int) ([]model.Record, int, error) {
	matched := s.store.Query(ctx, f)
	total := len(matched)

	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end], total, nil
}

// Facets returns the distinct filterable values of the snapshot.
func (s *Service) Facets(ctx context.Context) repository.Facets {
	return s.store.Facets(ctx)
}

// Scores runs the metric calculator over the filtered scope.
func (s *Service) Scores(ctx context.Context, f filter.Filter, groupBy model.GroupBy) (map[string]scoring.ScoreSet, error) {
	matched := s.store.Query(ctx, f)

	start := time.Now()
	scores, err := s.calculator.Compute(ctx, matched, groupBy)
	if err != nil {
		return nil, err
	}
	metrics.RecordComputeRun(string(groupBy), len(scores), float64(time.Since(start).Microseconds())/1000)
	return scores, nil
}

// Trends builds the full trends report over the filtered scope. moverDim
// chooses the movers dimension (industry or country); moverYear zero means
// the latest year in scope.
func (s *Service) Trends(ctx context.Context, f filter.Filter, moverDim string, moverYear int) (TrendsReport, error) {
	matched := s.store.Query(ctx, f)

	report := TrendsReport{
		Overview:       trends.ComputeOverview(matched),
		Quarterly:      trends.QuarterlyTotals(matched),
		TopIndustries:  trends.TopN(trends.TotalsBy(matched, trends.ByIndustry), topBreakdownCount),
		TopCountries:   trends.TopN(trends.TotalsBy(matched, trends.ByCountry), topBreakdownCount),
		SizeCategories: trends.SizeCategoryTotals(matched),
	}

	seriesKeys := make([]string, 0, topSeriesCount)
	for _, g := range trends.TopN(report.TopIndustries, topSeriesCount) {
		seriesKeys = append(seriesKeys, g.Key)
	}
	report.IndustrySeries = trends.QuarterlySeriesBy(matched, trends.ByIndustry, seriesKeys)

	sizeKeys := make([]string, 0, len(report.SizeCategories))
	for _, g := range report.SizeCategories {
		if g.Key != string(model.SizeUnknown) {
			sizeKeys = append(sizeKeys, g.Key)
		}
	}
	report.SizeSeries = trends.QuarterlySeriesBy(matched, trends.BySizeCategory, sizeKeys)

	var moverKey func(model.Record) string
	switch moverDim {
	case "", "industry":
		moverDim = "industry"
		moverKey = trends.ByIndustry
	case "country":
		moverKey = trends.ByCountry
	default:
		return TrendsReport{}, ErrInvalidMoverDimension
	}
	if moverYear == 0 {
		moverYear = trends.LatestYear(matched)
	}
	report.MoverDimension = moverDim
	report.MoverYear = moverYear

	movers := trends.Movers(matched, moverKey, moverYear)
	for i, m := range movers {
		if i >= topMoverCount || m.AbsChange <= 0 {
			break
		}
		report.Gainers = append(report.Gainers, m)
	}
	for i := len(movers) - 1; i >= 0; i-- {
		m := movers[i]
		if len(report.Decliners) >= topMoverCount || m.AbsChange >= 0 {
			break
		}
		report.Decliners = append(report.Decliners, m)
	}
	return report, nil
}

// CompanyProfile builds the per-company deep dive within the filtered scope.
func (s *Service) CompanyProfile(ctx context.Context, f filter.Filter, company string) (trends.Profile, error) {
	matched := s.store.Query(ctx, f)
	profile, ok := trends.CompanyProfile(matched, company)
	if !ok {
		return trends.Profile{}, repository.ErrNotFound
	}
	return profile, nil
}

// Export writes the filtered records and their computed scores to w in the
// requested format.
func (s *Service) Export(ctx context.Context, w io.Writer, f filter.Filter, format string, groupBy model.GroupBy) error {
	matched := s.store.Query(ctx, f)
	scores, err := s.calculator.Compute(ctx, matched, groupBy)
	if err != nil {
		metrics.RecordExportError()
		return err
	}

	recordRows := export.BuildRecordRows(matched)
	scoreRows := export.BuildScoreRows(scores)

	switch format {
	case export.FormatCSV:
		err = export.WriteCSV(w, recordRows, scoreRows)
	case export.FormatXLSX:
		err = export.WriteXLSX(w, recordRows, scoreRows)
	default:
		err = ErrInvalidExportFormat
	}
	if err != nil {
		metrics.RecordExportError()
		return err
	}
	metrics.RecordExport(format)
	return nil
}

// MaxTopLimit returns the configured cap for list-shaped responses.
func (s *Service) MaxTopLimit() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxTopLimit
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":      s.started,
		"datasetPath":  s.datasetPath,
		"watchDataset": s.watchDataset,
	}
	if s.store != nil {
		facets := s.store.Facets(ctx)
		stats["records"] = s.store.Count(ctx)
		stats["companies"] = len(facets.Companies)
		stats["industries"] = len(facets.Industries)
		stats["countries"] = len(facets.Countries)
		stats["quarters"] = len(facets.Quarters)
	}
	return stats
}
