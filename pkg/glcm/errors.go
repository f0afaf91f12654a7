package glcm

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDimensions is returned for non-positive width, height or step,
	// or a buffer shorter than width*height.
	ErrInvalidDimensions = errors.New("invalid dimensions")

	// ErrDegenerateRegion is returned when the scan observed no pixel pairs,
	// i.e. the region is not larger than the step along the chosen direction.
	ErrDegenerateRegion = errors.New("degenerate region")

	// ErrSingularCorrelation is returned by an Extractor using
	// CorrelationError when the joint variance of the matrix is zero.
	ErrSingularCorrelation = errors.New("singular correlation")

	// ErrNotNormalized is returned by NewMatrix for a table with a negative or
	// non-finite cell, or whose cells do not sum to 1.
	ErrNotNormalized = errors.New("matrix is not a probability table")

	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidFeature   = errors.New("invalid feature")
)

// CombinationError attributes a failure to the (direction, step)
// combination that produced it.
type CombinationError struct {
	Combination Combination
	Err         error
}

// Error implements the error interface.
func (e *CombinationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Combination, e.Err)
}

// Unwrap returns the underlying error.
func (e *CombinationError) Unwrap() error {
	return e.Err
}
