package models

import (
	"time"
)

// User represents a staff account with API access
type User struct {
	UserID       int64     `json:"user_id" db:"user_id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	Surname      string    `json:"surname" db:"surname"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	LastLoggedIn time.Time `json:"last_logged_in" db:"last_logged_in"`
}

// InventoryType defines a kind of rentable inventory and how it counts
// toward shared capacity
type InventoryType struct {
	ID                  int64     `json:"id" db:"id"`
	Name                string    `json:"name" db:"name"`
	DisplayName         string    `json:"display_name" db:"display_name"`
	AffectsAvailability bool      `json:"affects_availability" db:"affects_availability"`
	BoardEquivalent     float64   `json:"board_equivalent" db:"board_equivalent"`
	IsActive            bool      `json:"is_active" db:"is_active"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// InventoryItem is one physical unit of an inventory type.
// CurrentBookingID is set iff status is in_use.
type InventoryItem struct {
	ID               int64     `json:"id" db:"id"`
	InventoryTypeID  int64     `json:"inventory_type_id" db:"inventory_type_id"`
	SerialNumber     string    `json:"serial_number" db:"serial_number"`
	Status           string    `json:"status" db:"status"`
	CurrentBookingID *int64    `json:"current_booking_id" db:"current_booking_id"`
	IsActive         bool      `json:"is_active" db:"is_active"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// Booking represents a reservation of inventory for a time window
type Booking struct {
	ID                   int64         `json:"id" db:"id"`
	CustomerID           *int64        `json:"customer_id" db:"customer_id"`
	BusinessOwnerID      *int64        `json:"business_owner_id" db:"business_owner_id"`
	ClientName           *string       `json:"client_name" db:"client_name"` // legacy free text, superseded by customer_id
	Phone                *string       `json:"phone" db:"phone"`
	PlannedStartTime     time.Time     `json:"planned_start_time" db:"planned_start_time"`
	DurationHours        float64       `json:"duration_hours" db:"duration_hours"`
	ActualStartTime      *time.Time    `json:"actual_start_time" db:"actual_start_time"`
	TimeReturnedByClient *time.Time    `json:"time_returned_by_client" db:"time_returned_by_client"`
	BoardCount           int           `json:"board_count" db:"board_count"`
	BoardWithSeatCount   int           `json:"board_with_seat_count" db:"board_with_seat_count"`
	RaftCount            int           `json:"raft_count" db:"raft_count"`
	Status               string        `json:"status" db:"status"`
	TotalPrice           *string       `json:"total_price" db:"total_price"`
	Comment              *string       `json:"comment" db:"comment"`
	CreatedAt            time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at" db:"updated_at"`
	Items                []BookingItem `json:"items,omitempty"` // Not from DB, filled separately
}

// BookingItem is one row of the normalized demand vector stored per booking
type BookingItem struct {
	ID              int64 `json:"id" db:"id"`
	BookingID       int64 `json:"booking_id" db:"booking_id"`
	InventoryTypeID int64 `json:"inventory_type_id" db:"inventory_type_id"`
	Quantity        int   `json:"quantity" db:"quantity"`
}

// BookingAssignment pins a physical item to a booking while it is out
type BookingAssignment struct {
	ID              int64     `json:"id" db:"id"`
	BookingID       int64     `json:"booking_id" db:"booking_id"`
	InventoryItemID int64     `json:"inventory_item_id" db:"inventory_item_id"`
	AssignedAt      time.Time `json:"assigned_at" db:"assigned_at"`
}

// Customer carries denormalized booking statistics maintained incrementally
// as a crash-safe cache over the bookings table
type Customer struct {
	ID                     int64      `json:"id" db:"id"`
	Name                   string     `json:"name" db:"name"`
	Phone                  string     `json:"phone" db:"phone"`
	TelegramID             *int64     `json:"telegram_id" db:"telegram_id"`
	TotalBookingsCount     int        `json:"total_bookings_count" db:"total_bookings_count"`
	CompletedBookingsCount int        `json:"completed_bookings_count" db:"completed_bookings_count"`
	CancelledBookingsCount int        `json:"cancelled_bookings_count" db:"cancelled_bookings_count"`
	TotalRevenue           string     `json:"total_revenue" db:"total_revenue"`
	FirstBookingDate       *time.Time `json:"first_booking_date" db:"first_booking_date"`
	LastBookingDate        *time.Time `json:"last_booking_date" db:"last_booking_date"`
	CreatedAt              time.Time  `json:"created_at" db:"created_at"`
}
