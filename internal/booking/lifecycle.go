package booking

// Booking statuses. Completed and cancelled are terminal.
const (
	StatusBooked     = "booked"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Inventory item statuses.
const (
	ItemAvailable = "available"
	ItemInUse     = "in_use"
	ItemServicing = "servicing"
	ItemRepair    = "repair"
)

// Lifecycle actions accepted by the transition endpoint.
const (
	ActionStart    = "start"
	ActionComplete = "complete"
	ActionCancel   = "cancel"
)

var transitions = map[string]map[string]bool{
	StatusBooked: {
		StatusInProgress: true,
		StatusCancelled:  true,
	},
	StatusInProgress: {
		StatusCompleted: true,
		StatusCancelled: true,
	},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to string) bool {
	return transitions[from][to]
}

// IsActiveStatus reports whether bookings in this status hold capacity.
func IsActiveStatus(status string) bool {
	return status == StatusBooked || status == StatusInProgress
}

// IsTerminalStatus reports whether the status permits no further transitions.
func IsTerminalStatus(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

// StatusForAction maps a lifecycle action to its target status.
// Returns "" for unknown actions.
func StatusForAction(action string) string {
	switch action {
	case ActionStart:
		return StatusInProgress
	case ActionComplete:
		return StatusCompleted
	case ActionCancel:
		return StatusCancelled
	default:
		return ""
	}
}
