package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/layoffatlas/layoffatlas/internal/domain/filter"
	"github.com/layoffatlas/layoffatlas/internal/domain/model"
	"github.com/layoffatlas/layoffatlas/pkg/metrics"
)

// SnapshotStore implements Store with an immutable in-memory snapshot
// guarded by a RWMutex. Facets are precomputed at swap time so filter
// controls never pay a scan.
type SnapshotStore struct {
	mu              sync.RWMutex
	records         []model.Record
	facets          Facets
	initialCapacity int
}

// NewSnapshotStore creates an empty store with configuration options.
func NewSnapshotStore(ctx context.Context, opts ...Option) *SnapshotStore {
	s := &SnapshotStore{}
	for _, opt := range opts {
		opt(s)
	}
	if s.initialCapacity > 0 {
		s.records = make([]model.Record, 0, s.initialCapacity)
	}
	return s
}

// Replace swaps in a new snapshot atomically.
func (s *SnapshotStore) Replace(_ context.Context, records []model.Record) {
	facets := buildFacets(records)

	s.mu.Lock()
	s.records = records
	s.facets = facets
	s.mu.Unlock()

	metrics.UpdateDatasetRecords(len(records))
}

// Query returns the records matching the filter. The returned slice aliases
// the snapshot when the filter is unconstrained; callers must not mutate it.
func (s *SnapshotStore) Query(_ context.Context, f filter.Filter) []model.Record {
	start := time.Now()
	s.mu.RLock()
	records := s.records
	s.mu.RUnlock()

	out := filter.Apply(records, f)
	metrics.RecordRepositoryQuery(float64(time.Since(start).Microseconds()) / 1000)
	return out
}

// Facets returns the precomputed distinct values of the snapshot.
func (s *SnapshotStore) Facets(_ context.Context) Facets {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.facets
}

// Count returns the number of records in the snapshot.
func (s *SnapshotStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func buildFacets(records []model.Record) Facets {
	years := make(map[int]struct{})
	quarters := make(map[string]struct{})
	countries := make(map[string]struct{})
	industries := make(map[string]struct{})
	companies := make(map[string]struct{})
	stages := make(map[string]struct{})
	sizes := make(map[string]struct{})

	for _, r := range records {
		if r.Year != 0 {
			years[r.Year] = struct{}{}
		}
		if r.Quarter != "" {
			quarters[r.Quarter] = struct{}{}
		}
		if r.Country != "" {
			countries[r.Country] = struct{}{}
		}
		if r.Industry != "" {
			industries[r.Industry] = struct{}{}
		}
		if r.Company != "" {
			companies[r.Company] = struct{}{}
		}
		if r.Stage != "" {
			stages[r.Stage] = struct{}{}
		}
		sizes[string(r.SizeCategory)] = struct{}{}
	}

	f := Facets{
		Years:          make([]int, 0, len(years)),
		Quarters:       sortedKeys(quarters),
		Countries:      sortedKeys(countries),
		Industries:     sortedKeys(industries),
		Companies:      sortedKeys(companies),
		Stages:         sortedKeys(stages),
		SizeCategories: sortedKeys(sizes),
	}
	for y := range years {
		f.Years = append(f.Years, y)
	}
	sort.Ints(f.Years)
	return f
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
