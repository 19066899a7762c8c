package service

import (
	"context"
	"fmt"
	"time"

	"prichal/internal/booking"
	"prichal/internal/logger"
	"prichal/internal/messaging"
	"prichal/internal/metrics"
	"prichal/internal/models"
	"prichal/internal/repository"
	"prichal/internal/search"
)

type BookingService struct {
	bookingRepo   *repository.BookingRepository
	inventoryRepo *repository.InventoryRepository
	customerRepo  *repository.CustomerRepository
	natsClient    *messaging.NATSClient
	esClient      *search.ElasticsearchClient
	serviceEveryN int
}

func NewBookingService(bookingRepo *repository.BookingRepository, inventoryRepo *repository.InventoryRepository, customerRepo *repository.CustomerRepository, natsClient *messaging.NATSClient, esClient *search.ElasticsearchClient, serviceEveryN int) *BookingService {
	return &BookingService{
		bookingRepo:   bookingRepo,
		inventoryRepo: inventoryRepo,
		customerRepo:  customerRepo,
		natsClient:    natsClient,
		esClient:      esClient,
		serviceEveryN: serviceEveryN,
	}
}

// normalizeDemand translates whichever request shape came in (legacy counters
// or selected_items) into the demand vector, resolving names through the
// active catalog.
func (s *BookingService) normalizeDemand(ctx context.Context, legacy booking.LegacyCounts, selected map[int64]int) (booking.Demand, error) {
	typeIDByName, err := s.inventoryRepo.TypeIDsByName(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return booking.NormalizeDemand(legacy, selected, typeIDByName)
}

func (s *BookingService) Create(ctx context.Context, req *models.CreateBookingRequest) (*models.CreateBookingResponse, error) {
	demand, err := s.normalizeDemand(ctx, booking.LegacyCounts{
		Boards:         req.BoardCount,
		BoardsWithSeat: req.BoardWithSeatCount,
		Rafts:          req.RaftCount,
	}, req.SelectedItems)
	if err != nil {
		return nil, err
	}

	if req.CustomerID != nil {
		customer, err := s.customerRepo.GetByID(ctx, *req.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("failed to get customer: %w", err)
		}
		if customer == nil {
			return nil, fmt.Errorf("customer %d: %w", *req.CustomerID, booking.ErrNotFound)
		}
	}

	b := &models.Booking{
		CustomerID:         req.CustomerID,
		BusinessOwnerID:    req.BusinessOwnerID,
		ClientName:         req.ClientName,
		Phone:              req.Phone,
		PlannedStartTime:   req.PlannedStartTime,
		DurationHours:      req.DurationHours,
		BoardCount:         req.BoardCount,
		BoardWithSeatCount: req.BoardWithSeatCount,
		RaftCount:          req.RaftCount,
		TotalPrice:         req.TotalPrice,
		Comment:            req.Comment,
	}

	if err := s.bookingRepo.Create(ctx, b, demand); err != nil {
		if booking.IsInsufficientCapacity(err) {
			metrics.BookingsRejected.WithLabelValues("capacity").Inc()
		}
		return nil, err
	}

	metrics.BookingsCreated.Inc()

	event := models.BookingCreatedEvent{
		BookingID:        b.ID,
		CustomerID:       b.CustomerID,
		PlannedStartTime: b.PlannedStartTime,
		DurationHours:    b.DurationHours,
		Timestamp:        time.Now(),
	}
	if err := s.natsClient.Publish(models.EventBookingCreated, event); err != nil {
		// Log error but don't fail the operation
		logger.WithContext(ctx).Error("Failed to publish booking created event",
			"error", err,
			"booking_id", b.ID,
			"event_type", models.EventBookingCreated)
	}

	s.indexBooking(ctx, b)

	return &models.CreateBookingResponse{ID: b.ID, Status: b.Status}, nil
}

func (s *BookingService) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if b == nil {
		return nil, booking.ErrNotFound
	}
	return b, nil
}

func (s *BookingService) List(ctx context.Context, status *string, page, pageSize int) (models.ListBookingsResponse, error) {
	bookings, err := s.bookingRepo.List(ctx, status, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	result := make(models.ListBookingsResponse, len(bookings))
	for i, b := range bookings {
		item := models.ListBookingsResponseItem{
			ID:               b.ID,
			Status:           b.Status,
			PlannedStartTime: b.PlannedStartTime,
			DurationHours:    b.DurationHours,
		}
		if b.ClientName != nil {
			item.ClientName = *b.ClientName
		}
		result[i] = item
	}

	return result, nil
}

// CheckAvailability answers without taking locks. The answer can go stale the
// moment it is produced; Create re-checks under locks and is the only
// authority.
func (s *BookingService) CheckAvailability(ctx context.Context, req *models.CheckAvailabilityRequest) (*models.AvailabilityResponse, error) {
	demand, err := s.normalizeDemand(ctx, booking.LegacyCounts{
		Boards:         req.BoardCount,
		BoardsWithSeat: req.BoardWithSeatCount,
		Rafts:          req.RaftCount,
	}, req.SelectedItems)
	if err != nil {
		return nil, err
	}

	window := booking.NewWindow(req.PlannedStartTime, req.DurationHours)
	res, err := s.bookingRepo.CheckAvailability(ctx, demand, window)
	if err != nil {
		return nil, err
	}

	return &models.AvailabilityResponse{
		Available:    res.Available,
		LimitingType: res.LimitingType,
	}, nil
}

// Start hands the inventory over to the client: booked -> in_progress, with
// physical items pinned to the booking.
func (s *BookingService) Start(ctx context.Context, id int64) (*models.Booking, error) {
	startedAt := time.Now()

	b, err := s.bookingRepo.Start(ctx, id, startedAt)
	if err != nil {
		if booking.IsInsufficientCapacity(err) {
			metrics.BookingsRejected.WithLabelValues("no_free_items").Inc()
		}
		return nil, err
	}

	metrics.BookingTransitions.WithLabelValues(booking.ActionStart).Inc()

	assignments, err := s.bookingRepo.GetAssignments(ctx, id)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to load assignments for started booking",
			"error", err, "booking_id", id)
	}
	itemIDs := make([]int64, len(assignments))
	for i, a := range assignments {
		itemIDs[i] = a.InventoryItemID
	}

	event := models.BookingStartedEvent{
		BookingID:       id,
		ActualStartTime: startedAt,
		ItemIDs:         itemIDs,
		Timestamp:       time.Now(),
	}
	if err := s.natsClient.Publish(models.EventBookingStarted, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish booking started event",
			"error", err,
			"booking_id", id,
			"event_type", models.EventBookingStarted)
	}

	s.indexBooking(ctx, b)

	return b, nil
}

// Complete takes the inventory back: in_progress -> completed, items released,
// customer counters updated.
func (s *BookingService) Complete(ctx context.Context, id int64, req *models.CompleteBookingRequest) (*models.Booking, error) {
	returnedAt := time.Now()
	if req != nil && req.ReturnedAt != nil {
		returnedAt = *req.ReturnedAt
	}

	b, err := s.bookingRepo.Complete(ctx, id, returnedAt, s.serviceEveryN)
	if err != nil {
		return nil, err
	}

	metrics.BookingTransitions.WithLabelValues(booking.ActionComplete).Inc()

	event := models.BookingCompletedEvent{
		BookingID:  id,
		CustomerID: b.CustomerID,
		ReturnedAt: returnedAt,
		Timestamp:  time.Now(),
	}
	if err := s.natsClient.Publish(models.EventBookingCompleted, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish booking completed event",
			"error", err,
			"booking_id", id,
			"event_type", models.EventBookingCompleted)
	}

	s.indexBooking(ctx, b)

	return b, nil
}

func (s *BookingService) Cancel(ctx context.Context, id int64, reason string) (*models.Booking, error) {
	if reason == "" {
		reason = "cancelled by operator"
	}

	b, err := s.bookingRepo.Cancel(ctx, id, reason)
	if err != nil {
		return nil, err
	}

	metrics.BookingTransitions.WithLabelValues(booking.ActionCancel).Inc()

	event := models.BookingCancelledEvent{
		BookingID:  id,
		CustomerID: b.CustomerID,
		Reason:     reason,
		Timestamp:  time.Now(),
	}
	if err := s.natsClient.Publish(models.EventBookingCancelled, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish booking cancelled event",
			"error", err,
			"booking_id", id,
			"event_type", models.EventBookingCancelled)
	}

	s.indexBooking(ctx, b)

	return b, nil
}

func (s *BookingService) Search(ctx context.Context, query, status string, page, pageSize int) (models.SearchBookingsResponse, error) {
	if s.esClient == nil {
		return nil, fmt.Errorf("search is not configured")
	}
	return s.esClient.Search(ctx, query, status, page, pageSize)
}

// indexBooking keeps the search index in sync, best effort. Postgres is the
// source of truth; a failed indexing never fails the operation.
func (s *BookingService) indexBooking(ctx context.Context, b *models.Booking) {
	if s.esClient == nil {
		return
	}

	doc := &search.BookingDocument{
		ID:               b.ID,
		Status:           b.Status,
		PlannedStartTime: b.PlannedStartTime,
		CreatedAt:        b.CreatedAt,
	}
	if b.ClientName != nil {
		doc.ClientName = *b.ClientName
	}
	if b.Phone != nil {
		doc.Phone = *b.Phone
	}
	if b.Comment != nil {
		doc.Comment = *b.Comment
	}

	if err := s.esClient.IndexBooking(ctx, doc); err != nil {
		logger.WithContext(ctx).Error("Failed to index booking",
			"error", err, "booking_id", b.ID)
	}
}
