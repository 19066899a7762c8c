package repository

import (
	"context"
	"database/sql"
	"fmt"

	"prichal/internal/booking"
	"prichal/internal/database"
	"prichal/internal/models"
)

type CustomerRepository struct {
	db *database.DB
}

func NewCustomerRepository(db *database.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

const customerColumns = `id, name, phone, telegram_id,
	total_bookings_count, completed_bookings_count, cancelled_bookings_count,
	total_revenue, first_booking_date, last_booking_date, created_at`

func scanCustomer(row interface{ Scan(...interface{}) error }, c *models.Customer) error {
	return row.Scan(
		&c.ID,
		&c.Name,
		&c.Phone,
		&c.TelegramID,
		&c.TotalBookingsCount,
		&c.CompletedBookingsCount,
		&c.CancelledBookingsCount,
		&c.TotalRevenue,
		&c.FirstBookingDate,
		&c.LastBookingDate,
		&c.CreatedAt,
	)
}

func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	query := `
		INSERT INTO customers (name, phone, telegram_id)
		VALUES ($1, $2, $3)
		RETURNING id, total_revenue, created_at`

	return r.db.QueryRowContext(ctx, query,
		c.Name,
		c.Phone,
		c.TelegramID,
	).Scan(&c.ID, &c.TotalRevenue, &c.CreatedAt)
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	c := &models.Customer{}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	err := scanCustomer(row, c)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (r *CustomerRepository) GetByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	c := &models.Customer{}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE phone = $1`, phone)
	err := scanCustomer(row, c)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (r *CustomerRepository) List(ctx context.Context, page, pageSize int) ([]models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY id`
	var args []interface{}

	if page > 0 && pageSize > 0 {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, pageSize, (page-1)*pageSize)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		var c models.Customer
		if err := scanCustomer(rows, &c); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}

	return customers, rows.Err()
}

// RecomputeStats derives the counters straight from the bookings table. Used
// by the reconciliation job to detect drift in the denormalized cache; the
// incremental updates remain the authoritative write path.
func (r *CustomerRepository) RecomputeStats(ctx context.Context, customerID int64) (*models.CustomerStatsResponse, error) {
	stats := &models.CustomerStatsResponse{CustomerID: customerID}
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'completed'),
		       COUNT(*) FILTER (WHERE status = 'cancelled'),
		       COALESCE(SUM(total_price) FILTER (WHERE status = 'completed'), 0)
		FROM bookings
		WHERE customer_id = $1`,
		customerID,
	).Scan(
		&stats.TotalBookingsCount,
		&stats.CompletedBookingsCount,
		&stats.CancelledBookingsCount,
		&stats.TotalRevenue,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// VerifyStats compares stored counters with recomputed ones and returns a
// ConsistencyViolationError describing the first divergence found.
func (r *CustomerRepository) VerifyStats(ctx context.Context, customerID int64) error {
	c, err := r.GetByID(ctx, customerID)
	if err != nil {
		return err
	}
	if c == nil {
		return booking.ErrNotFound
	}

	actual, err := r.RecomputeStats(ctx, customerID)
	if err != nil {
		return err
	}

	checks := []struct {
		field  string
		stored int
		actual int
	}{
		{"total_bookings_count", c.TotalBookingsCount, actual.TotalBookingsCount},
		{"completed_bookings_count", c.CompletedBookingsCount, actual.CompletedBookingsCount},
		{"cancelled_bookings_count", c.CancelledBookingsCount, actual.CancelledBookingsCount},
	}
	for _, check := range checks {
		if check.stored != check.actual {
			return &booking.ConsistencyViolationError{
				Entity: "customer",
				ID:     customerID,
				Detail: fmt.Sprintf("%s stored=%d actual=%d", check.field, check.stored, check.actual),
			}
		}
	}

	return nil
}

// ListIDs returns all customer ids, oldest first. Used by the reconciliation
// sweep.
func (r *CustomerRepository) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM customers ORDER BY id`)
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
