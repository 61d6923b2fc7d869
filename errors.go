package geocoder

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is the class of errors rejected before any I/O:
	// malformed coordinates, oversized queries. Typed errors below
	// unwrap to it.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned when a required catalog or shard entry
	// is absent.
	ErrNotFound = errors.New("not found")

	// ErrServiceUnavailable is returned when a required shard or the
	// catalog cannot be reached or opened. Distinct from an empty
	// result, which is a valid success.
	ErrServiceUnavailable = errors.New("service unavailable")
)

// ErrQueryTooLong indicates a query string over the configured maximum.
type ErrQueryTooLong struct {
	Length int
	Max    int
}

func (e *ErrQueryTooLong) Error() string {
	return fmt.Sprintf("query too long: %d characters (max %d)", e.Length, e.Max)
}

func (e *ErrQueryTooLong) Unwrap() error { return ErrInvalidInput }

// ErrInvalidCoordinate indicates a latitude/longitude pair outside the
// valid range.
type ErrInvalidCoordinate struct {
	Lat float64
	Lon float64
}

func (e *ErrInvalidCoordinate) Error() string {
	return fmt.Sprintf("invalid coordinate: lat=%g lon=%g", e.Lat, e.Lon)
}

func (e *ErrInvalidCoordinate) Unwrap() error { return ErrInvalidInput }
