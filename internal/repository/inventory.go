package repository

import (
	"context"
	"database/sql"
	"fmt"

	"prichal/internal/booking"
	"prichal/internal/database"
	"prichal/internal/models"
)

type InventoryRepository struct {
	db *database.DB
}

func NewInventoryRepository(db *database.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) CreateType(ctx context.Context, t *models.InventoryType) error {
	query := `
		INSERT INTO inventory_types (name, display_name, affects_availability, board_equivalent)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_active, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Name,
		t.DisplayName,
		t.AffectsAvailability,
		t.BoardEquivalent,
	).Scan(&t.ID, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)

	return err
}

func (r *InventoryRepository) GetTypeByID(ctx context.Context, id int64) (*models.InventoryType, error) {
	t := &models.InventoryType{}
	query := `
		SELECT id, name, display_name, affects_availability, board_equivalent,
		       is_active, created_at, updated_at
		FROM inventory_types
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID,
		&t.Name,
		&t.DisplayName,
		&t.AffectsAvailability,
		&t.BoardEquivalent,
		&t.IsActive,
		&t.CreatedAt,
		&t.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return t, err
}

func (r *InventoryRepository) ListTypes(ctx context.Context, activeOnly bool) ([]models.InventoryType, error) {
	query := `
		SELECT id, name, display_name, affects_availability, board_equivalent,
		       is_active, created_at, updated_at
		FROM inventory_types`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []models.InventoryType
	for rows.Next() {
		var t models.InventoryType
		err := rows.Scan(
			&t.ID,
			&t.Name,
			&t.DisplayName,
			&t.AffectsAvailability,
			&t.BoardEquivalent,
			&t.IsActive,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}

	return types, rows.Err()
}

// TypeIDsByName returns the active catalog as a name -> id map, used to
// translate legacy demand counters at the request boundary.
func (r *InventoryRepository) TypeIDsByName(ctx context.Context) (map[string]int64, error) {
	types, err := r.ListTypes(ctx, true)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]int64, len(types))
	for _, t := range types {
		byName[t.Name] = t.ID
	}
	return byName, nil
}

func (r *InventoryRepository) UpdateType(ctx context.Context, t *models.InventoryType) error {
	query := `
		UPDATE inventory_types
		SET display_name = $1, affects_availability = $2, board_equivalent = $3,
		    is_active = $4, updated_at = NOW()
		WHERE id = $5`

	res, err := r.db.ExecContext(ctx, query,
		t.DisplayName,
		t.AffectsAvailability,
		t.BoardEquivalent,
		t.IsActive,
		t.ID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return booking.ErrNotFound
	}
	return nil
}

func (r *InventoryRepository) CreateItem(ctx context.Context, item *models.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (inventory_type_id, serial_number)
		VALUES ($1, $2)
		RETURNING id, status, is_active, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		item.InventoryTypeID,
		item.SerialNumber,
	).Scan(&item.ID, &item.Status, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)

	return err
}

func (r *InventoryRepository) GetItemByID(ctx context.Context, id int64) (*models.InventoryItem, error) {
	item := &models.InventoryItem{}
	query := `
		SELECT id, inventory_type_id, serial_number, status, current_booking_id,
		       is_active, created_at, updated_at
		FROM inventory_items
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID,
		&item.InventoryTypeID,
		&item.SerialNumber,
		&item.Status,
		&item.CurrentBookingID,
		&item.IsActive,
		&item.CreatedAt,
		&item.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return item, err
}

func (r *InventoryRepository) ListItems(ctx context.Context, typeID *int64, status *string) ([]models.InventoryItem, error) {
	var args []interface{}
	argIndex := 1

	query := `
		SELECT id, inventory_type_id, serial_number, status, current_booking_id,
		       is_active, created_at, updated_at
		FROM inventory_items
		WHERE is_active = TRUE`

	if typeID != nil {
		query += fmt.Sprintf(" AND inventory_type_id = $%d", argIndex)
		args = append(args, *typeID)
		argIndex++
	}

	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *status)
		argIndex++
	}

	query += " ORDER BY inventory_type_id, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.InventoryItem
	for rows.Next() {
		var item models.InventoryItem
		err := rows.Scan(
			&item.ID,
			&item.InventoryTypeID,
			&item.SerialNumber,
			&item.Status,
			&item.CurrentBookingID,
			&item.IsActive,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// SetItemStatus moves an item between the manual statuses (available,
// servicing, repair). in_use is owned by the booking lifecycle and rejected
// here so an item cannot be flipped out from under an active booking.
func (r *InventoryRepository) SetItemStatus(ctx context.Context, id int64, status string) (*models.InventoryItem, error) {
	if status == booking.ItemInUse {
		return nil, &booking.InvalidTransitionError{From: "manual", To: booking.ItemInUse}
	}

	var item *models.InventoryItem
	err := r.db.WithTxRetry(ctx, func(tx *sql.Tx) error {
		var current string
		var bookingID *int64
		err := tx.QueryRowContext(ctx,
			`SELECT status, current_booking_id FROM inventory_items WHERE id = $1 FOR UPDATE`,
			id,
		).Scan(&current, &bookingID)
		if err == sql.ErrNoRows {
			return booking.ErrNotFound
		}
		if err != nil {
			return err
		}

		if current == booking.ItemInUse {
			return &booking.InvalidTransitionError{From: booking.ItemInUse, To: status}
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE inventory_items SET status = $1, updated_at = NOW() WHERE id = $2`,
			status, id,
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	item, err = r.GetItemByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, booking.ErrNotFound
	}
	return item, nil
}

func (r *InventoryRepository) DeactivateItem(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE inventory_items SET is_active = FALSE, updated_at = NOW()
		 WHERE id = $1 AND status <> 'in_use'`,
		id,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return booking.ErrNotFound
	}
	return nil
}
