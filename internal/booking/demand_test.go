package booking

import (
	"errors"
	"testing"
)

var catalog = map[string]int64{
	TypeNameBoard:         1,
	TypeNameBoardWithSeat: 2,
	TypeNameRaft:          3,
}

func TestNormalizeDemandLegacy(t *testing.T) {
	demand, err := NormalizeDemand(LegacyCounts{Boards: 2, BoardsWithSeat: 1}, nil, catalog)
	if err != nil {
		t.Fatalf("NormalizeDemand: %v", err)
	}
	if demand[1] != 2 || demand[2] != 1 {
		t.Errorf("demand = %v, want {1:2 2:1}", demand)
	}
	if _, ok := demand[3]; ok {
		t.Error("zero raft count must not appear in the vector")
	}
	if demand.Total() != 3 {
		t.Errorf("Total = %d, want 3", demand.Total())
	}
}

func TestNormalizeDemandSelectedItems(t *testing.T) {
	demand, err := NormalizeDemand(LegacyCounts{}, map[int64]int{5: 4, 6: 0}, catalog)
	if err != nil {
		t.Fatalf("NormalizeDemand: %v", err)
	}
	if len(demand) != 1 || demand[5] != 4 {
		t.Errorf("demand = %v, want {5:4}", demand)
	}
}

func TestNormalizeDemandAmbiguous(t *testing.T) {
	_, err := NormalizeDemand(LegacyCounts{Boards: 1}, map[int64]int{5: 1}, catalog)
	if !errors.Is(err, ErrAmbiguousDemand) {
		t.Fatalf("err = %v, want ErrAmbiguousDemand", err)
	}
}

func TestNormalizeDemandZero(t *testing.T) {
	demand, err := NormalizeDemand(LegacyCounts{}, nil, catalog)
	if err != nil {
		t.Fatalf("NormalizeDemand: %v", err)
	}
	if demand.Total() != 0 {
		t.Errorf("Total = %d, want 0", demand.Total())
	}
}

func TestNormalizeDemandNegative(t *testing.T) {
	if _, err := NormalizeDemand(LegacyCounts{Boards: -1}, nil, catalog); err == nil {
		t.Error("negative legacy count must be rejected")
	}
	if _, err := NormalizeDemand(LegacyCounts{}, map[int64]int{5: -2}, catalog); err == nil {
		t.Error("negative selected quantity must be rejected")
	}
}

func TestNormalizeDemandUnknownLegacyType(t *testing.T) {
	_, err := NormalizeDemand(LegacyCounts{Rafts: 1}, nil, map[string]int64{TypeNameBoard: 1})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want wrapped ErrNotFound", err)
	}
}

func TestDemandTypeIDsSorted(t *testing.T) {
	demand := Demand{9: 1, 2: 1, 5: 1}
	ids := demand.TypeIDs()
	want := []int64{2, 5, 9}
	for i, id := range ids {
		if id != want[i] {
			t.Fatalf("TypeIDs = %v, want %v", ids, want)
		}
	}
}

func TestDemandBoardEquivalent(t *testing.T) {
	demand := Demand{1: 2, 3: 1}
	factors := map[int64]float64{1: 1.0, 3: 4.0}
	if got := demand.BoardEquivalent(factors); got != 6.0 {
		t.Errorf("BoardEquivalent = %v, want 6.0", got)
	}
}
