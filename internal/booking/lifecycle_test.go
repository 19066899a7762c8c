package booking

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusBooked, StatusInProgress, true},
		{StatusBooked, StatusCancelled, true},
		{StatusBooked, StatusCompleted, false},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusCancelled, true},
		{StatusInProgress, StatusBooked, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusCancelled, false},
		{StatusCancelled, StatusInProgress, false},
		{"garbage", StatusCancelled, false},
	}

	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestTerminalAndActiveStatuses(t *testing.T) {
	if !IsActiveStatus(StatusBooked) || !IsActiveStatus(StatusInProgress) {
		t.Error("booked and in_progress hold capacity")
	}
	if IsActiveStatus(StatusCompleted) || IsActiveStatus(StatusCancelled) {
		t.Error("terminal statuses must not hold capacity")
	}
	if !IsTerminalStatus(StatusCompleted) || !IsTerminalStatus(StatusCancelled) {
		t.Error("completed and cancelled are terminal")
	}
}

func TestStatusForAction(t *testing.T) {
	if StatusForAction(ActionStart) != StatusInProgress {
		t.Error("start -> in_progress")
	}
	if StatusForAction(ActionComplete) != StatusCompleted {
		t.Error("complete -> completed")
	}
	if StatusForAction(ActionCancel) != StatusCancelled {
		t.Error("cancel -> cancelled")
	}
	if StatusForAction("pause") != "" {
		t.Error("unknown action must map to empty status")
	}
}
