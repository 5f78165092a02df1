package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNegativeWeight marks an edge that produced negative weight or moved
	// time against the search direction. It aborts the search.
	ErrNegativeWeight = errors.New("negative weight")

	// ErrVertexNotFound is returned when a label does not name a vertex
	ErrVertexNotFound = errors.New("vertex not found")

	// ErrInvalidTime is returned for a missing or unusable query time
	ErrInvalidTime = errors.New("invalid time")

	// ErrTripOvertaking is returned when adding a trip would break the
	// non-overtaking order of a pattern
	ErrTripOvertaking = errors.New("trip overtakes another trip of the pattern")

	// ErrDuplicateTrip is returned when a pattern already has a trip leaving
	// its first stop at the same time
	ErrDuplicateTrip = errors.New("trip duplicates a departure of the pattern")

	// ErrUnknownRouteType is returned for GTFS route types with no mode
	ErrUnknownRouteType = errors.New("unknown route type")
)

// NegativeWeightError describes the offending traversal
type NegativeWeightError struct {
	Edge    *Edge
	Weight  float64
	Elapsed int64 // milliseconds in the search direction
}

func (e *NegativeWeightError) Error() string {
	return fmt.Sprintf("%s on %s: weight %.3f, elapsed %dms", ErrNegativeWeight, e.Edge, e.Weight, e.Elapsed)
}

func (e *NegativeWeightError) Unwrap() error { return ErrNegativeWeight }
