package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Geometry errors
	ErrInvalidGridSize   = errors.New("invalid grid size")
	ErrInvalidCoordinate = errors.New("invalid coordinate input")
	ErrDegenerateRegion  = errors.New("degenerate scan region")
	ErrEmptyStream       = fmt.Errorf("%w: empty byte stream", ErrDegenerateRegion)

	// Scan configuration errors
	ErrInvalidWeight     = errors.New("symbol weight must be non-negative")
	ErrInvalidPulseRange = errors.New("invalid pulse range")

	// Control generation errors
	ErrEmptyReference      = errors.New("empty reference sequence")
	ErrInvalidControlCount = errors.New("control count must be positive")

	// Significance errors
	ErrEmptyControlSet    = errors.New("empty control set")
	ErrInvalidTestCount   = errors.New("test count must be at least 1")
	ErrInvalidAlpha       = errors.New("alpha must be in (0, 1)")
	ErrUnknownAlternative = errors.New("unknown test alternative")

	// Archive errors
	ErrRunNotFound = errors.New("run not found")
)

// Error constructors with context
func NewRegionError(reason string) error {
	return fmt.Errorf("%w: %s", ErrDegenerateRegion, reason)
}

func NewWeightError(category string, weight float64) error {
	return fmt.Errorf("%w: category %q has weight %v", ErrInvalidWeight, category, weight)
}

func NewRunNotFoundError(runID string) error {
	return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
}

// Error checking helpers
func IsGeometryError(err error) bool {
	return errors.Is(err, ErrInvalidGridSize) ||
		errors.Is(err, ErrInvalidCoordinate) ||
		errors.Is(err, ErrDegenerateRegion) ||
		errors.Is(err, ErrEmptyStream)
}

func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidWeight) ||
		errors.Is(err, ErrInvalidPulseRange) ||
		errors.Is(err, ErrInvalidControlCount) ||
		errors.Is(err, ErrInvalidAlpha)
}

func IsDegenerateDataError(err error) bool {
	return errors.Is(err, ErrEmptyControlSet) ||
		errors.Is(err, ErrEmptyReference)
}
