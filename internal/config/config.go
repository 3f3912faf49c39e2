// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load(ctx) layers defaults, optional YAML file, and env vars.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DatasetPath points at the layoffs dataset (.csv or .xlsx).
	DatasetPath string `koanf:"dataset_path"`

	// WatchDataset reloads the snapshot when the dataset file changes.
	WatchDataset bool `koanf:"watch_dataset"`

	// MaxRecordsLimit caps GET /records?limit.
	MaxRecordsLimit int `koanf:"max_records_limit"`

	// MaxTopLimit caps GET /scores?limit.
	MaxTopLimit int `koanf:"max_top_limit"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		DatasetPath:     "data/layoffs.csv",
		WatchDataset:    true,
		MaxRecordsLimit: 1_000,
		MaxTopLimit:     100,
	}
}
