package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createUsersTable,
		createCustomersTable,
		createInventoryTypesTable,
		createInventoryItemsTable,
		createBookingsTable,
		createBookingItemsTable,
		createBookingAssignmentsTable,
		createBookingWindowIndex,
		seedInventoryTypes,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    user_id SERIAL PRIMARY KEY,
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(64) NOT NULL,
    first_name VARCHAR(100) NOT NULL,
    surname VARCHAR(100) NOT NULL,
    registered_at TIMESTAMP NOT NULL DEFAULT NOW(),
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    last_logged_in TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createCustomersTable = `
CREATE TABLE IF NOT EXISTS customers (
    id SERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    phone VARCHAR(32) UNIQUE NOT NULL,
    telegram_id BIGINT,
    total_bookings_count INTEGER NOT NULL DEFAULT 0,
    completed_bookings_count INTEGER NOT NULL DEFAULT 0,
    cancelled_bookings_count INTEGER NOT NULL DEFAULT 0,
    total_revenue DECIMAL(12,2) NOT NULL DEFAULT 0,
    first_booking_date TIMESTAMP,
    last_booking_date TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createInventoryTypesTable = `
CREATE TABLE IF NOT EXISTS inventory_types (
    id SERIAL PRIMARY KEY,
    name VARCHAR(100) UNIQUE NOT NULL,
    display_name VARCHAR(255) NOT NULL,
    affects_availability BOOLEAN NOT NULL DEFAULT TRUE,
    board_equivalent DECIMAL(6,2) NOT NULL DEFAULT 1,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (board_equivalent >= 0)
);`

const createInventoryItemsTable = `
CREATE TABLE IF NOT EXISTS inventory_items (
    id SERIAL PRIMARY KEY,
    inventory_type_id INTEGER NOT NULL REFERENCES inventory_types(id),
    serial_number VARCHAR(100) NOT NULL DEFAULT '',
    status VARCHAR(20) NOT NULL DEFAULT 'available',
    current_booking_id INTEGER,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('available', 'in_use', 'servicing', 'repair')),
    CHECK ((status = 'in_use') = (current_booking_id IS NOT NULL))
);`

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id SERIAL PRIMARY KEY,
    customer_id INTEGER REFERENCES customers(id),
    business_owner_id INTEGER REFERENCES users(user_id),
    client_name VARCHAR(255),
    phone VARCHAR(32),
    planned_start_time TIMESTAMP NOT NULL,
    duration_hours DECIMAL(6,2) NOT NULL,
    actual_start_time TIMESTAMP,
    time_returned_by_client TIMESTAMP,
    board_count INTEGER NOT NULL DEFAULT 0,
    board_with_seat_count INTEGER NOT NULL DEFAULT 0,
    raft_count INTEGER NOT NULL DEFAULT 0,
    status VARCHAR(20) NOT NULL DEFAULT 'booked',
    total_price DECIMAL(12,2),
    comment TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('booked', 'in_progress', 'completed', 'cancelled')),
    CHECK (duration_hours > 0)
);`

const createBookingItemsTable = `
CREATE TABLE IF NOT EXISTS booking_items (
    id SERIAL PRIMARY KEY,
    booking_id INTEGER NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
    inventory_type_id INTEGER NOT NULL REFERENCES inventory_types(id),
    quantity INTEGER NOT NULL,

    UNIQUE(booking_id, inventory_type_id),
    CHECK (quantity > 0)
);`

const createBookingAssignmentsTable = `
CREATE TABLE IF NOT EXISTS booking_assignments (
    id SERIAL PRIMARY KEY,
    booking_id INTEGER NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
    inventory_item_id INTEGER NOT NULL REFERENCES inventory_items(id),
    assigned_at TIMESTAMP NOT NULL DEFAULT NOW(),

    UNIQUE(booking_id, inventory_item_id)
);`

const createBookingWindowIndex = `
CREATE INDEX IF NOT EXISTS bookings_active_window_idx
ON bookings (planned_start_time)
WHERE status IN ('booked', 'in_progress');`

const seedInventoryTypes = `
INSERT INTO inventory_types (name, display_name, affects_availability, board_equivalent)
VALUES
    ('board', 'Сапборд', TRUE, 1),
    ('board_with_seat', 'Сапборд с креслом', TRUE, 1),
    ('raft', 'Плот', TRUE, 4)
ON CONFLICT (name) DO NOTHING;`
