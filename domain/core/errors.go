package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrEmptyDataset    = errors.New("dataset is empty")
	ErrMalformedInput  = errors.New("malformed input")
	ErrUnknownCategory = errors.New("unknown category label")

	// Cleaning errors
	ErrEmptyImputationGroup = errors.New("imputation group has no observed values")
	ErrMissingValue         = errors.New("missing value after cleaning")

	// Statistics errors
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrDegenerateSample = errors.New("degenerate sample (zero variance)")
	ErrSingularModel    = errors.New("singular design matrix")
	ErrLengthMismatch   = errors.New("response and predictor lengths differ")
)

// Error constructors with context
func NewInputError(row int, reason string) error {
	return fmt.Errorf("%w: row %d: %s", ErrMalformedInput, row, reason)
}

func NewUnknownCategoryError(field, label string) error {
	return fmt.Errorf("%w: %s=%q", ErrUnknownCategory, field, label)
}

func NewEmptyGroupError(field, group string) error {
	return fmt.Errorf("%w: field %s, group %q", ErrEmptyImputationGroup, field, group)
}

// Error checking helpers
func IsInputError(err error) bool {
	return errors.Is(err, ErrMalformedInput) ||
		errors.Is(err, ErrUnknownCategory) ||
		errors.Is(err, ErrEmptyDataset)
}

func IsDegenerateError(err error) bool {
	return errors.Is(err, ErrDegenerateSample) ||
		errors.Is(err, ErrSingularModel) ||
		errors.Is(err, ErrInsufficientData)
}
