package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNoDataset             = errors.New("no dataset configured")
	ErrInvalidMoverDimension = errors.New("invalid mover dimension")
	ErrInvalidExportFormat   = errors.New("invalid export format")
)
