package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrStrainNotFound  = fmt.Errorf("%w: strain", ErrNotFound)
	ErrFeatureNotFound = fmt.Errorf("%w: feature", ErrNotFound)

	// Validation errors
	ErrInvalidMatrix    = errors.New("invalid feature matrix")
	ErrNonBinaryValue   = fmt.Errorf("%w: cell value outside {0,1}", ErrInvalidMatrix)
	ErrDuplicateStrain  = fmt.Errorf("%w: duplicate strain identifier", ErrInvalidMatrix)
	ErrDuplicateFeature = fmt.Errorf("%w: duplicate feature name", ErrInvalidMatrix)
	ErrInsufficientData = errors.New("insufficient data for analysis")

	// Determinism errors
	ErrNonDeterministic = errors.New("non-deterministic result")
	ErrSeedMismatch     = errors.New("seed mismatch")
	ErrHashMismatch     = errors.New("hash mismatch")

	// Resource errors
	ErrCombinationCeiling = errors.New("combination ceiling exceeded")
	ErrTooManyFeatures    = errors.New("feature count exceeds cap")
	ErrTooManyPairs       = errors.New("pair count exceeds cap")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidMatrix, field, reason)
}

func NewCeilingError(requested, ceiling int) error {
	return fmt.Errorf("%w: %d combinations requested, ceiling is %d", ErrCombinationCeiling, requested, ceiling)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidMatrix) ||
		errors.Is(err, ErrInsufficientData)
}

func IsDeterminismError(err error) bool {
	return errors.Is(err, ErrNonDeterministic) ||
		errors.Is(err, ErrSeedMismatch) ||
		errors.Is(err, ErrHashMismatch)
}

func IsResourceError(err error) bool {
	return errors.Is(err, ErrCombinationCeiling) ||
		errors.Is(err, ErrTooManyFeatures) ||
		errors.Is(err, ErrTooManyPairs)
}
