package booking

import (
	"testing"
	"time"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return ts
}

func TestWindowOverlaps(t *testing.T) {
	base := mustTime(t, "2025-07-01T10:00:00Z")
	window := Window{Start: base, End: base.Add(2 * time.Hour)}

	cases := []struct {
		name  string
		other Window
		want  bool
	}{
		{"identical", Window{base, base.Add(2 * time.Hour)}, true},
		{"contained", Window{base.Add(30 * time.Minute), base.Add(time.Hour)}, true},
		{"overlaps start", Window{base.Add(-time.Hour), base.Add(time.Hour)}, true},
		{"overlaps end", Window{base.Add(time.Hour), base.Add(3 * time.Hour)}, true},
		{"touching before", Window{base.Add(-2 * time.Hour), base}, false},
		{"touching after", Window{base.Add(2 * time.Hour), base.Add(4 * time.Hour)}, false},
		{"disjoint", Window{base.Add(5 * time.Hour), base.Add(6 * time.Hour)}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := window.Overlaps(tc.other); got != tc.want {
				t.Errorf("Overlaps(%v) = %v, want %v", tc.other, got, tc.want)
			}
			// Symmetric by definition.
			if got := tc.other.Overlaps(window); got != tc.want {
				t.Errorf("reverse Overlaps = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNewWindowDuration(t *testing.T) {
	start := mustTime(t, "2025-07-01T10:00:00Z")
	w := NewWindow(start, 1.5)
	if want := start.Add(90 * time.Minute); !w.End.Equal(want) {
		t.Errorf("End = %v, want %v", w.End, want)
	}
}

func TestCheckCapacityExactFit(t *testing.T) {
	caps := map[int64]TypeCapacity{
		1: {TypeID: 1, Name: "board", AffectsAvailability: true, ActiveItems: 10, Committed: 0},
	}

	res, err := CheckCapacity(Demand{1: 10}, caps)
	if err != nil {
		t.Fatalf("CheckCapacity: %v", err)
	}
	if !res.Available {
		t.Fatalf("request for exactly the remaining capacity must succeed, got %+v", res)
	}

	caps[1] = TypeCapacity{TypeID: 1, Name: "board", AffectsAvailability: true, ActiveItems: 10, Committed: 10}
	res, err = CheckCapacity(Demand{1: 1}, caps)
	if err != nil {
		t.Fatalf("CheckCapacity: %v", err)
	}
	if res.Available {
		t.Fatal("request beyond remaining capacity must fail")
	}
	if res.LimitingType != "board" || res.LimitingTypeID != 1 {
		t.Errorf("limiting type = %q (%d), want board (1)", res.LimitingType, res.LimitingTypeID)
	}
}

func TestCheckCapacityIgnoresAccessories(t *testing.T) {
	caps := map[int64]TypeCapacity{
		1: {TypeID: 1, Name: "board", AffectsAvailability: true, ActiveItems: 2},
		7: {TypeID: 7, Name: "life_vest", AffectsAvailability: false, ActiveItems: 0},
	}

	// Accessories never limit the request even with zero items on hand.
	res, err := CheckCapacity(Demand{1: 1, 7: 50}, caps)
	if err != nil {
		t.Fatalf("CheckCapacity: %v", err)
	}
	if !res.Available {
		t.Errorf("accessory demand must not be capacity-checked, got %+v", res)
	}
}

func TestCheckCapacityReportsFirstLimitingType(t *testing.T) {
	caps := map[int64]TypeCapacity{
		2: {TypeID: 2, Name: "raft", AffectsAvailability: true, ActiveItems: 1, Committed: 1},
		5: {TypeID: 5, Name: "board", AffectsAvailability: true, ActiveItems: 0},
	}

	res, err := CheckCapacity(Demand{5: 1, 2: 1}, caps)
	if err != nil {
		t.Fatalf("CheckCapacity: %v", err)
	}
	// Types are checked in ascending id order, so raft (2) fails first.
	if res.LimitingTypeID != 2 {
		t.Errorf("limiting type id = %d, want 2", res.LimitingTypeID)
	}
}

func TestCheckCapacityZeroDemand(t *testing.T) {
	res, err := CheckCapacity(Demand{}, nil)
	if err != nil {
		t.Fatalf("CheckCapacity: %v", err)
	}
	if !res.Available {
		t.Error("zero demand must be trivially satisfiable")
	}
}

func TestCheckCapacityUnknownType(t *testing.T) {
	_, err := CheckCapacity(Demand{99: 1}, map[int64]TypeCapacity{})
	if err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestCapacityError(t *testing.T) {
	caps := map[int64]TypeCapacity{
		1: {TypeID: 1, Name: "board", AffectsAvailability: true, ActiveItems: 10, Committed: 8},
	}
	requested := Demand{1: 3}

	res, err := CheckCapacity(requested, caps)
	if err != nil {
		t.Fatalf("CheckCapacity: %v", err)
	}
	capErr := CapacityError(res, requested, caps)
	if capErr.TypeName != "board" || capErr.Requested != 3 || capErr.Committed != 8 || capErr.Capacity != 10 {
		t.Errorf("unexpected error detail: %+v", capErr)
	}
	if !IsInsufficientCapacity(capErr) {
		t.Error("IsInsufficientCapacity must match")
	}
}
