// Package repository holds the in-memory dataset snapshot.
package repository

import (
	"context"

	"github.com/layoffatlas/layoffatlas/internal/domain/filter"
	"github.com/layoffatlas/layoffatlas/internal/domain/model"
)

// Facets lists the distinct values per filterable dimension, feeding the
// dashboard's filter controls.
type Facets struct {
	Years          []int    `json:"years"`
	Quarters       []string `json:"quarters"`
	Countries      []string `json:"countries"`
	Industries     []string `json:"industries"`
	Companies      []string `json:"companies"`
	Stages         []string `json:"stages"`
	SizeCategories []string `json:"size_categories"`
}

// Store provides read access to the loaded dataset.
type Store interface {
	// Replace swaps in a new snapshot atomically. Readers in flight keep
	// the snapshot they started with.
	Replace(ctx context.Context, records []model.Record)

	// Query returns the records matching the filter.
	Query(ctx context.Context, f filter.Filter) []model.Record

	// Facets returns the distinct filterable values of the snapshot.
	Facets(ctx context.Context) Facets

	// Count returns the number of records in the snapshot.
	Count(ctx context.Context) int
}
