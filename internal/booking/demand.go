package booking

import (
	"fmt"
	"sort"
)

// Well-known type names the legacy fixed counters map onto.
const (
	TypeNameBoard         = "board"
	TypeNameBoardWithSeat = "board_with_seat"
	TypeNameRaft          = "raft"
)

// Demand is the normalized demand vector: inventory type id -> requested quantity.
// The resolver and lifecycle manager only ever see this shape; whichever wire
// representation came in is translated once at the boundary.
type Demand map[int64]int

// LegacyCounts are the fixed per-kind counters older clients still send.
type LegacyCounts struct {
	Boards         int
	BoardsWithSeat int
	Rafts          int
}

func (lc LegacyCounts) IsZero() bool {
	return lc.Boards == 0 && lc.BoardsWithSeat == 0 && lc.Rafts == 0
}

// NormalizeDemand builds the demand vector from exactly one of the two request
// shapes. typeIDByName resolves the legacy counter names to catalog ids.
// Zero total demand is valid; a request carrying both shapes is rejected.
func NormalizeDemand(legacy LegacyCounts, selected map[int64]int, typeIDByName map[string]int64) (Demand, error) {
	if !legacy.IsZero() && len(selected) > 0 {
		return nil, ErrAmbiguousDemand
	}

	demand := make(Demand)

	if len(selected) > 0 {
		for typeID, qty := range selected {
			if qty < 0 {
				return nil, fmt.Errorf("negative quantity %d for type %d", qty, typeID)
			}
			if qty == 0 {
				continue
			}
			demand[typeID] += qty
		}
		return demand, nil
	}

	for name, qty := range map[string]int{
		TypeNameBoard:         legacy.Boards,
		TypeNameBoardWithSeat: legacy.BoardsWithSeat,
		TypeNameRaft:          legacy.Rafts,
	} {
		if qty < 0 {
			return nil, fmt.Errorf("negative count for %q", name)
		}
		if qty == 0 {
			continue
		}
		typeID, ok := typeIDByName[name]
		if !ok {
			return nil, fmt.Errorf("legacy type %q is not in the catalog: %w", name, ErrNotFound)
		}
		demand[typeID] += qty
	}

	return demand, nil
}

// Total returns the summed quantity across all types.
func (d Demand) Total() int {
	total := 0
	for _, qty := range d {
		total += qty
	}
	return total
}

// TypeIDs returns the demanded type ids in ascending order, so capacity checks
// and error reporting are deterministic.
func (d Demand) TypeIDs() []int64 {
	ids := make([]int64, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// BoardEquivalent converts the vector into the shared capacity unit using the
// per-type conversion factors. Used for analytics only; the capacity check
// itself is per-type.
func (d Demand) BoardEquivalent(factors map[int64]float64) float64 {
	var total float64
	for typeID, qty := range d {
		total += float64(qty) * factors[typeID]
	}
	return total
}
