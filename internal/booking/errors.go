package booking

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a booking, item or inventory type does not exist.
var ErrNotFound = errors.New("not found")

// ErrAmbiguousDemand is returned when a request carries both legacy counters
// and a selected_items map. Exactly one representation is authoritative.
var ErrAmbiguousDemand = errors.New("both legacy counters and selected_items present")

// InsufficientCapacityError names the first inventory type that cannot satisfy
// the requested quantity for the window.
type InsufficientCapacityError struct {
	TypeID    int64
	TypeName  string
	Requested int
	Committed int
	Capacity  int
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("insufficient capacity for %q: requested %d, committed %d of %d",
		e.TypeName, e.Requested, e.Committed, e.Capacity)
}

// InvalidTransitionError is returned for a state change the lifecycle does not permit.
type InvalidTransitionError struct {
	BookingID int64
	From      string
	To        string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("booking %d: invalid transition %s -> %s", e.BookingID, e.From, e.To)
}

// ConsistencyViolationError signals that denormalized state (counters, item
// statuses) diverged from the booking table. It is never swallowed: callers
// log it and surface a 5xx.
type ConsistencyViolationError struct {
	Entity string
	ID     int64
	Detail string
}

func (e *ConsistencyViolationError) Error() string {
	return fmt.Sprintf("consistency violation: %s %d: %s", e.Entity, e.ID, e.Detail)
}

// IsInsufficientCapacity reports whether err wraps an InsufficientCapacityError.
func IsInsufficientCapacity(err error) bool {
	var e *InsufficientCapacityError
	return errors.As(err, &e)
}

// IsInvalidTransition reports whether err wraps an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var e *InvalidTransitionError
	return errors.As(err, &e)
}
