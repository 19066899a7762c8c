package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"prichal/internal/booking"
	"prichal/internal/database"
	"prichal/internal/models"

	"github.com/lib/pq"
)

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, customer_id, business_owner_id, client_name, phone,
	planned_start_time, duration_hours, actual_start_time, time_returned_by_client,
	board_count, board_with_seat_count, raft_count, status, total_price, comment,
	created_at, updated_at`

func scanBooking(row interface{ Scan(...interface{}) error }, b *models.Booking) error {
	return row.Scan(
		&b.ID,
		&b.CustomerID,
		&b.BusinessOwnerID,
		&b.ClientName,
		&b.Phone,
		&b.PlannedStartTime,
		&b.DurationHours,
		&b.ActualStartTime,
		&b.TimeReturnedByClient,
		&b.BoardCount,
		&b.BoardWithSeatCount,
		&b.RaftCount,
		&b.Status,
		&b.TotalPrice,
		&b.Comment,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
}

// Create checks capacity and persists the booking in one transaction. The
// affected inventory_types rows are locked first, so two concurrent creates
// for the last unit of capacity serialize: one commits, the other sees the
// committed demand and is rejected with InsufficientCapacityError.
func (r *BookingRepository) Create(ctx context.Context, b *models.Booking, demand booking.Demand) error {
	window := booking.NewWindow(b.PlannedStartTime, b.DurationHours)

	return r.db.WithTxRetry(ctx, func(tx *sql.Tx) error {
		if demand.Total() > 0 {
			capacities, err := lockAndLoadCapacities(ctx, tx, demand, window)
			if err != nil {
				return err
			}

			res, err := booking.CheckCapacity(demand, capacities)
			if err != nil {
				return err
			}
			if !res.Available {
				return booking.CapacityError(res, demand, capacities)
			}
		}

		query := `
			INSERT INTO bookings (customer_id, business_owner_id, client_name, phone,
			                      planned_start_time, duration_hours,
			                      board_count, board_with_seat_count, raft_count,
			                      status, total_price, comment)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id, created_at, updated_at`

		err := tx.QueryRowContext(ctx, query,
			b.CustomerID,
			b.BusinessOwnerID,
			b.ClientName,
			b.Phone,
			b.PlannedStartTime,
			b.DurationHours,
			b.BoardCount,
			b.BoardWithSeatCount,
			b.RaftCount,
			booking.StatusBooked,
			b.TotalPrice,
			b.Comment,
		).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return err
		}
		b.Status = booking.StatusBooked

		for _, typeID := range demand.TypeIDs() {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO booking_items (booking_id, inventory_type_id, quantity) VALUES ($1, $2, $3)`,
				b.ID, typeID, demand[typeID],
			)
			if err != nil {
				return err
			}
			b.Items = append(b.Items, models.BookingItem{
				BookingID:       b.ID,
				InventoryTypeID: typeID,
				Quantity:        demand[typeID],
			})
		}

		if b.CustomerID != nil {
			_, err = tx.ExecContext(ctx, `
				UPDATE customers
				SET total_bookings_count = total_bookings_count + 1,
				    first_booking_date = COALESCE(first_booking_date, $2)
				WHERE id = $1`,
				*b.CustomerID, b.PlannedStartTime,
			)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// lockAndLoadCapacities takes FOR UPDATE locks on the demanded type rows (in
// id order, to keep concurrent creates deadlock-free) and builds the
// availability picture for the window.
func lockAndLoadCapacities(ctx context.Context, tx *sql.Tx, demand booking.Demand, window booking.Window) (map[int64]booking.TypeCapacity, error) {
	typeIDs := demand.TypeIDs()
	capacities := make(map[int64]booking.TypeCapacity, len(typeIDs))

	rows, err := tx.QueryContext(ctx, `
		SELECT id, name, affects_availability, is_active
		FROM inventory_types
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE`,
		pq.Array(typeIDs),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cap      booking.TypeCapacity
			isActive bool
		)
		if err := rows.Scan(&cap.TypeID, &cap.Name, &cap.AffectsAvailability, &isActive); err != nil {
			return nil, err
		}
		if !isActive {
			return nil, fmt.Errorf("inventory type %q is inactive: %w", cap.Name, booking.ErrNotFound)
		}
		capacities[cap.TypeID] = cap
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, typeID := range typeIDs {
		if _, ok := capacities[typeID]; !ok {
			return nil, fmt.Errorf("inventory type %d: %w", typeID, booking.ErrNotFound)
		}
	}

	countRows, err := tx.QueryContext(ctx, `
		SELECT inventory_type_id, COUNT(*)
		FROM inventory_items
		WHERE inventory_type_id = ANY($1) AND is_active = TRUE
		GROUP BY inventory_type_id`,
		pq.Array(typeIDs),
	)
	if err != nil {
		return nil, err
	}
	defer countRows.Close()

	for countRows.Next() {
		var typeID int64
		var count int
		if err := countRows.Scan(&typeID, &count); err != nil {
			return nil, err
		}
		cap := capacities[typeID]
		cap.ActiveItems = count
		capacities[typeID] = cap
	}
	if err := countRows.Err(); err != nil {
		return nil, err
	}

	// Committed demand: booking_items of active bookings whose planned
	// window overlaps the requested half-open window.
	committedRows, err := tx.QueryContext(ctx, `
		SELECT bi.inventory_type_id, COALESCE(SUM(bi.quantity), 0)
		FROM booking_items bi
		JOIN bookings b ON b.id = bi.booking_id
		WHERE bi.inventory_type_id = ANY($1)
		  AND b.status IN ('booked', 'in_progress')
		  AND b.planned_start_time < $2
		  AND b.planned_start_time + b.duration_hours * INTERVAL '1 hour' > $3
		GROUP BY bi.inventory_type_id`,
		pq.Array(typeIDs), window.End, window.Start,
	)
	if err != nil {
		return nil, err
	}
	defer committedRows.Close()

	for committedRows.Next() {
		var typeID int64
		var committed int
		if err := committedRows.Scan(&typeID, &committed); err != nil {
			return nil, err
		}
		cap := capacities[typeID]
		cap.Committed = committed
		capacities[typeID] = cap
	}

	return capacities, committedRows.Err()
}

// CheckAvailability runs the same capacity computation as Create but without
// locks or writes. The answer is advisory: only Create's locked check decides.
func (r *BookingRepository) CheckAvailability(ctx context.Context, demand booking.Demand, window booking.Window) (booking.Result, error) {
	if demand.Total() == 0 {
		return booking.Result{Available: true}, nil
	}

	var res booking.Result
	err := r.db.WithTxRetry(ctx, func(tx *sql.Tx) error {
		capacities, err := loadCapacitiesUnlocked(ctx, tx, demand, window)
		if err != nil {
			return err
		}
		res, err = booking.CheckCapacity(demand, capacities)
		return err
	})
	return res, err
}

func loadCapacitiesUnlocked(ctx context.Context, tx *sql.Tx, demand booking.Demand, window booking.Window) (map[int64]booking.TypeCapacity, error) {
	typeIDs := demand.TypeIDs()
	capacities := make(map[int64]booking.TypeCapacity, len(typeIDs))

	rows, err := tx.QueryContext(ctx, `
		SELECT t.id, t.name, t.affects_availability,
		       (SELECT COUNT(*) FROM inventory_items i
		        WHERE i.inventory_type_id = t.id AND i.is_active = TRUE),
		       COALESCE((SELECT SUM(bi.quantity)
		        FROM booking_items bi
		        JOIN bookings b ON b.id = bi.booking_id
		        WHERE bi.inventory_type_id = t.id
		          AND b.status IN ('booked', 'in_progress')
		          AND b.planned_start_time < $2
		          AND b.planned_start_time + b.duration_hours * INTERVAL '1 hour' > $3), 0)
		FROM inventory_types t
		WHERE t.id = ANY($1) AND t.is_active = TRUE`,
		pq.Array(typeIDs), window.End, window.Start,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var cap booking.TypeCapacity
		if err := rows.Scan(&cap.TypeID, &cap.Name, &cap.AffectsAvailability, &cap.ActiveItems, &cap.Committed); err != nil {
			return nil, err
		}
		capacities[cap.TypeID] = cap
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, typeID := range typeIDs {
		if _, ok := capacities[typeID]; !ok {
			return nil, fmt.Errorf("inventory type %d: %w", typeID, booking.ErrNotFound)
		}
	}

	return capacities, nil
}

// Start transitions booked -> in_progress and pins physical items to the
// booking: one free active item per requested unit, marked in_use with
// current_booking_id set. All in the same transaction as the status change.
func (r *BookingRepository) Start(ctx context.Context, id int64, startedAt time.Time) (*models.Booking, error) {
	err := r.db.WithTxRetry(ctx, func(tx *sql.Tx) error {
		b, err := lockBooking(ctx, tx, id)
		if err != nil {
			return err
		}
		if !booking.CanTransition(b.Status, booking.StatusInProgress) {
			return &booking.InvalidTransitionError{BookingID: id, From: b.Status, To: booking.StatusInProgress}
		}

		demandRows, err := tx.QueryContext(ctx, `
			SELECT bi.inventory_type_id, bi.quantity, t.name, t.affects_availability
			FROM booking_items bi
			JOIN inventory_types t ON t.id = bi.inventory_type_id
			WHERE bi.booking_id = $1
			ORDER BY bi.inventory_type_id`,
			id,
		)
		if err != nil {
			return err
		}

		type demandLine struct {
			typeID   int64
			quantity int
			name     string
			affects  bool
		}
		var lines []demandLine
		for demandRows.Next() {
			var l demandLine
			if err := demandRows.Scan(&l.typeID, &l.quantity, &l.name, &l.affects); err != nil {
				demandRows.Close()
				return err
			}
			lines = append(lines, l)
		}
		demandRows.Close()
		if err := demandRows.Err(); err != nil {
			return err
		}

		for _, line := range lines {
			// Accessories are recorded but not pinned.
			if !line.affects {
				continue
			}

			itemIDs, err := pickFreeItems(ctx, tx, line.typeID, line.quantity)
			if err != nil {
				return err
			}
			if len(itemIDs) < line.quantity {
				return &booking.InsufficientCapacityError{
					TypeID:    line.typeID,
					TypeName:  line.name,
					Requested: line.quantity,
					Capacity:  len(itemIDs),
				}
			}

			_, err = tx.ExecContext(ctx, `
				UPDATE inventory_items
				SET status = 'in_use', current_booking_id = $1, updated_at = NOW()
				WHERE id = ANY($2)`,
				id, pq.Array(itemIDs),
			)
			if err != nil {
				return err
			}

			for _, itemID := range itemIDs {
				_, err = tx.ExecContext(ctx,
					`INSERT INTO booking_assignments (booking_id, inventory_item_id) VALUES ($1, $2)`,
					id, itemID,
				)
				if err != nil {
					return err
				}
			}
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE bookings
			SET status = 'in_progress', actual_start_time = $1, updated_at = NOW()
			WHERE id = $2`,
			startedAt, id,
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

// Complete transitions in_progress -> completed, releases the pinned items
// and updates the owner's counters, all atomically. serviceEveryN > 0 sends
// an item to servicing instead of available every Nth completed rental.
func (r *BookingRepository) Complete(ctx context.Context, id int64, returnedAt time.Time, serviceEveryN int) (*models.Booking, error) {
	err := r.db.WithTxRetry(ctx, func(tx *sql.Tx) error {
		b, err := lockBooking(ctx, tx, id)
		if err != nil {
			return err
		}
		if !booking.CanTransition(b.Status, booking.StatusCompleted) {
			return &booking.InvalidTransitionError{BookingID: id, From: b.Status, To: booking.StatusCompleted}
		}

		if err := releaseAssignedItems(ctx, tx, id, serviceEveryN); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE bookings
			SET status = 'completed', time_returned_by_client = $1, updated_at = NOW()
			WHERE id = $2`,
			returnedAt, id,
		)
		if err != nil {
			return err
		}

		if b.CustomerID != nil {
			_, err = tx.ExecContext(ctx, `
				UPDATE customers
				SET completed_bookings_count = completed_bookings_count + 1,
				    total_revenue = total_revenue + COALESCE((SELECT total_price FROM bookings WHERE id = $2), 0),
				    last_booking_date = $3
				WHERE id = $1`,
				*b.CustomerID, id, returnedAt,
			)
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

// Cancel transitions booked/in_progress -> cancelled and releases anything
// the booking holds. Cancelling an already-terminal booking is an
// InvalidTransitionError; the first cancel wins, the second fails.
func (r *BookingRepository) Cancel(ctx context.Context, id int64, reason string) (*models.Booking, error) {
	err := r.db.WithTxRetry(ctx, func(tx *sql.Tx) error {
		b, err := lockBooking(ctx, tx, id)
		if err != nil {
			return err
		}
		if !booking.CanTransition(b.Status, booking.StatusCancelled) {
			return &booking.InvalidTransitionError{BookingID: id, From: b.Status, To: booking.StatusCancelled}
		}

		if err := releaseAssignedItems(ctx, tx, id, 0); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE bookings
			SET status = 'cancelled', comment = COALESCE(comment || E'\n', '') || $2, updated_at = NOW()
			WHERE id = $1`,
			id, "cancelled: "+reason,
		)
		if err != nil {
			return err
		}

		if b.CustomerID != nil {
			_, err = tx.ExecContext(ctx, `
				UPDATE customers
				SET cancelled_bookings_count = cancelled_bookings_count + 1
				WHERE id = $1`,
				*b.CustomerID,
			)
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

func lockBooking(ctx context.Context, tx *sql.Tx, id int64) (*models.Booking, error) {
	b := &models.Booking{}
	row := tx.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
	err := scanBooking(row, b)
	if err == sql.ErrNoRows {
		return nil, booking.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func pickFreeItems(ctx context.Context, tx *sql.Tx, typeID int64, limit int) ([]int64, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id FROM inventory_items
		WHERE inventory_type_id = $1 AND status = 'available' AND is_active = TRUE
		ORDER BY id
		LIMIT $2
		FOR UPDATE`,
		typeID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// releaseAssignedItems returns a booking's pinned items to circulation. An
// assigned item no longer pointing at this booking means the item table and
// the booking table disagree; that is surfaced, never papered over.
func releaseAssignedItems(ctx context.Context, tx *sql.Tx, bookingID int64, serviceEveryN int) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT i.id, i.current_booking_id
		FROM inventory_items i
		JOIN booking_assignments ba ON ba.inventory_item_id = i.id
		WHERE ba.booking_id = $1
		ORDER BY i.id
		FOR UPDATE OF i`,
		bookingID,
	)
	if err != nil {
		return err
	}

	type assignedItem struct {
		id             int64
		currentBooking *int64
	}
	var items []assignedItem
	for rows.Next() {
		var it assignedItem
		if err := rows.Scan(&it.id, &it.currentBooking); err != nil {
			rows.Close()
			return err
		}
		items = append(items, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, it := range items {
		if it.currentBooking == nil || *it.currentBooking != bookingID {
			return &booking.ConsistencyViolationError{
				Entity: "inventory_item",
				ID:     it.id,
				Detail: fmt.Sprintf("assigned to booking %d but current_booking_id does not match", bookingID),
			}
		}

		nextStatus := booking.ItemAvailable
		if serviceEveryN > 0 {
			var rentals int
			err := tx.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM booking_assignments WHERE inventory_item_id = $1`,
				it.id,
			).Scan(&rentals)
			if err != nil {
				return err
			}
			if rentals%serviceEveryN == 0 {
				nextStatus = booking.ItemServicing
			}
		}

		_, err := tx.ExecContext(ctx, `
			UPDATE inventory_items
			SET status = $1, current_booking_id = NULL, updated_at = NOW()
			WHERE id = $2`,
			nextStatus, it.id,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	b := &models.Booking{}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	err := scanBooking(row, b)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	items, err := r.GetItems(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Items = items

	return b, nil
}

func (r *BookingRepository) GetItems(ctx context.Context, bookingID int64) ([]models.BookingItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, booking_id, inventory_type_id, quantity
		FROM booking_items
		WHERE booking_id = $1
		ORDER BY inventory_type_id`,
		bookingID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.BookingItem
	for rows.Next() {
		var item models.BookingItem
		if err := rows.Scan(&item.ID, &item.BookingID, &item.InventoryTypeID, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *BookingRepository) GetAssignments(ctx context.Context, bookingID int64) ([]models.BookingAssignment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, booking_id, inventory_item_id, assigned_at
		FROM booking_assignments
		WHERE booking_id = $1
		ORDER BY inventory_item_id`,
		bookingID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []models.BookingAssignment
	for rows.Next() {
		var a models.BookingAssignment
		if err := rows.Scan(&a.ID, &a.BookingID, &a.InventoryItemID, &a.AssignedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}

	return assignments, rows.Err()
}

func (r *BookingRepository) List(ctx context.Context, status *string, page, pageSize int) ([]models.Booking, error) {
	var args []interface{}
	argIndex := 1

	query := `SELECT ` + bookingColumns + ` FROM bookings`

	if status != nil {
		query += fmt.Sprintf(" WHERE status = $%d", argIndex)
		args = append(args, *status)
		argIndex++
	}

	query += " ORDER BY planned_start_time DESC, id DESC"

	if page > 0 && pageSize > 0 {
		offset := (page - 1) * pageSize
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
		args = append(args, pageSize, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		var b models.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}

	return bookings, rows.Err()
}

// GetOverdueBookings returns in_progress rentals whose planned window ended
// before the given moment. Used by the watchdog job; never mutates.
func (r *BookingRepository) GetOverdueBookings(ctx context.Context, asOf time.Time) ([]models.Booking, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE status = 'in_progress'
		  AND planned_start_time + duration_hours * INTERVAL '1 hour' < $1
		ORDER BY planned_start_time ASC`,
		asOf,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		var b models.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}

	return bookings, rows.Err()
}
