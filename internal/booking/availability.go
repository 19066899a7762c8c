package booking

import (
	"fmt"
	"time"
)

// Window is the half-open rental interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds a window from a planned start and a duration in hours.
func NewWindow(start time.Time, durationHours float64) Window {
	return Window{
		Start: start,
		End:   start.Add(time.Duration(durationHours * float64(time.Hour))),
	}
}

// Overlaps is the half-open interval intersection test: [a,b) and [c,d)
// overlap iff a < d && c < b. Touching endpoints do not overlap.
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// TypeCapacity is the availability picture for one inventory type within a
// window: how many active items exist and how many are already committed to
// overlapping active bookings.
type TypeCapacity struct {
	TypeID              int64
	Name                string
	AffectsAvailability bool
	ActiveItems         int
	Committed           int
}

// Result is the outcome of a capacity check. When Available is false,
// LimitingType names the first type (by id) that cannot be satisfied.
type Result struct {
	Available      bool   `json:"available"`
	LimitingType   string `json:"limiting_type,omitempty"`
	LimitingTypeID int64  `json:"limiting_type_id,omitempty"`
}

// CheckCapacity decides whether the requested demand fits on top of the
// committed demand, per type. Types with affects_availability=false are
// recorded but never capacity-checked. A zero demand is trivially satisfiable.
func CheckCapacity(requested Demand, capacities map[int64]TypeCapacity) (Result, error) {
	for _, typeID := range requested.TypeIDs() {
		cap, ok := capacities[typeID]
		if !ok {
			return Result{}, fmt.Errorf("inventory type %d: %w", typeID, ErrNotFound)
		}
		if !cap.AffectsAvailability {
			continue
		}
		if cap.Committed+requested[typeID] > cap.ActiveItems {
			return Result{
				Available:      false,
				LimitingType:   cap.Name,
				LimitingTypeID: cap.TypeID,
			}, nil
		}
	}
	return Result{Available: true}, nil
}

// CapacityError converts a failed Result into the structured error the
// lifecycle manager surfaces to callers.
func CapacityError(res Result, requested Demand, capacities map[int64]TypeCapacity) *InsufficientCapacityError {
	cap := capacities[res.LimitingTypeID]
	return &InsufficientCapacityError{
		TypeID:    cap.TypeID,
		TypeName:  cap.Name,
		Requested: requested[cap.TypeID],
		Committed: cap.Committed,
		Capacity:  cap.ActiveItems,
	}
}
