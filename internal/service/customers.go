package service

import (
	"context"
	"errors"
	"fmt"

	"prichal/internal/booking"
	"prichal/internal/metrics"
	"prichal/internal/models"
	"prichal/internal/repository"
)

type CustomerService struct {
	customerRepo *repository.CustomerRepository
}

func NewCustomerService(customerRepo *repository.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

func (s *CustomerService) Create(ctx context.Context, c *models.Customer) error {
	existing, err := s.customerRepo.GetByPhone(ctx, c.Phone)
	if err != nil {
		return fmt.Errorf("failed to check phone: %w", err)
	}
	if existing != nil {
		return fmt.Errorf("customer with phone %s already exists", c.Phone)
	}

	return s.customerRepo.Create(ctx, c)
}

func (s *CustomerService) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	c, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if c == nil {
		return nil, booking.ErrNotFound
	}
	return c, nil
}

func (s *CustomerService) List(ctx context.Context, page, pageSize int) ([]models.Customer, error) {
	return s.customerRepo.List(ctx, page, pageSize)
}

// GetStats returns the denormalized counters as stored. They are maintained
// in the same transactions as the booking transitions, so no recomputation
// happens on this path.
func (s *CustomerService) GetStats(ctx context.Context, id int64) (*models.CustomerStatsResponse, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.CustomerStatsResponse{
		CustomerID:             c.ID,
		TotalBookingsCount:     c.TotalBookingsCount,
		CompletedBookingsCount: c.CompletedBookingsCount,
		CancelledBookingsCount: c.CancelledBookingsCount,
		TotalRevenue:           c.TotalRevenue,
		FirstBookingDate:       c.FirstBookingDate,
		LastBookingDate:        c.LastBookingDate,
	}, nil
}

// VerifyStats recomputes the counters from the bookings table and compares.
// A divergence bumps the violation metric and surfaces the detail.
func (s *CustomerService) VerifyStats(ctx context.Context, id int64) error {
	err := s.customerRepo.VerifyStats(ctx, id)

	var violation *booking.ConsistencyViolationError
	if errors.As(err, &violation) {
		metrics.ConsistencyViolations.Inc()
	}

	return err
}
