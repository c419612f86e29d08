package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a facility does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmptyDataset is returned when a map dataset has no points.
	ErrEmptyDataset = errors.New("map dataset is empty")

	// ErrLengthMismatch is returned when lat, lon and text differ in length.
	ErrLengthMismatch = errors.New("map dataset sequences differ in length")

	// ErrInvalidCoordinate is returned for NaN, infinite or out-of-range coordinates.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrInvalidFacility is returned when a facility fails validation.
	ErrInvalidFacility = errors.New("invalid facility")
)

// ValidationError describes why a value was rejected.
// It unwraps to one of the sentinel errors above.
type ValidationError struct {
	Field  string
	Index  int // -1 when the error is not tied to a position
	Reason error
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s[%d]: %v", e.Field, e.Index, e.Reason)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Reason)
	}
	return e.Reason.Error()
}

func (e *ValidationError) Unwrap() error { return e.Reason }
