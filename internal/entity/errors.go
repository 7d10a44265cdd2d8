package entity

import "errors"

var (
	// Generation errors
	ErrInvalidSeries   = errors.New("invalid series identifier")
	ErrInvalidCount    = errors.New("per-series count must be positive")
	ErrSeriesExhausted = errors.New("series exhausted")
	ErrInvalidCode     = errors.New("invalid ticket code")

	// Record set errors
	ErrRecordSetNotFound = errors.New("record set not found")
	ErrMalformedRecord   = errors.New("malformed record")

	// Render errors
	ErrInvalidRenderMode = errors.New("invalid render mode")
	ErrUnknownSymbology  = errors.New("unknown symbology")
)
