// Package repository holds the in-memory dataset snapshot.
package repository

// Option applies a configuration option to the SnapshotStore.
type Option func(*SnapshotStore)

// WithInitialCapacity pre-sizes the snapshot for the expected record count.
func WithInitialCapacity(n int) Option {
	return func(s *SnapshotStore) {
		if n > 0 {
			s.initialCapacity = n
		}
	}
}
