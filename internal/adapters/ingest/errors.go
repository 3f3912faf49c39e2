package ingest

import "errors"

// Sentinel kinds for ingestion errors.
var (
	ErrDecode            = errors.New("dataset decode failed")
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
)
