package models

import "time"

// NATS Event Types
const (
	EventBookingCreated    = "booking.created"
	EventBookingStarted    = "booking.started"
	EventBookingCompleted  = "booking.completed"
	EventBookingCancelled  = "booking.cancelled"
	EventBookingOverdue    = "booking.overdue"
	EventItemStatusChanged = "item.status_changed"
)

// BookingCreatedEvent represents a booking creation event
type BookingCreatedEvent struct {
	BookingID        int64     `json:"booking_id"`
	CustomerID       *int64    `json:"customer_id"`
	PlannedStartTime time.Time `json:"planned_start_time"`
	DurationHours    float64   `json:"duration_hours"`
	Timestamp        time.Time `json:"timestamp"`
}

// BookingStartedEvent represents a rental handover event
type BookingStartedEvent struct {
	BookingID       int64     `json:"booking_id"`
	ActualStartTime time.Time `json:"actual_start_time"`
	ItemIDs         []int64   `json:"item_ids"`
	Timestamp       time.Time `json:"timestamp"`
}

// BookingCompletedEvent represents a rental return event
type BookingCompletedEvent struct {
	BookingID  int64     `json:"booking_id"`
	CustomerID *int64    `json:"customer_id"`
	ReturnedAt time.Time `json:"returned_at"`
	Timestamp  time.Time `json:"timestamp"`
}

// BookingCancelledEvent represents a booking cancellation event
type BookingCancelledEvent struct {
	BookingID  int64     `json:"booking_id"`
	CustomerID *int64    `json:"customer_id"`
	Reason     string    `json:"reason"`
	Timestamp  time.Time `json:"timestamp"`
}

// BookingOverdueEvent is emitted by the watchdog for rentals still out past
// their planned window
type BookingOverdueEvent struct {
	BookingID  int64     `json:"booking_id"`
	PlannedEnd time.Time `json:"planned_end"`
	OverdueFor string    `json:"overdue_for"`
	Timestamp  time.Time `json:"timestamp"`
}

// ItemStatusChangedEvent represents an inventory item status change
type ItemStatusChangedEvent struct {
	ItemID    int64     `json:"item_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	BookingID *int64    `json:"booking_id"`
	Timestamp time.Time `json:"timestamp"`
}
