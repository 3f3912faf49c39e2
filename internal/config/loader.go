package config

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if ATLAS_CONFIG is set
//  3. env (prefix ATLAS_)
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("ATLAS_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: ATLAS_ADDR, ATLAS_DATASET_PATH, ...
	// Map env keys like ATLAS_DATASET_PATH -> dataset_path (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("ATLAS_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "atlas_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	// Basic validation
	if cfg.Addr == "" {
		return nil, errors.New("addr must not be empty")
	}
	if cfg.DatasetPath == "" {
		return nil, errors.New("dataset_path must not be empty")
	}
	if cfg.MaxRecordsLimit <= 0 {
		return nil, errors.New("max_records_limit must be positive")
	}
	if cfg.MaxTopLimit <= 0 {
		return nil, errors.New("max_top_limit must be positive")
	}
	return &cfg, nil
}
