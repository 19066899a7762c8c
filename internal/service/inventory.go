package service

import (
	"context"
	"fmt"
	"time"

	"prichal/internal/booking"
	"prichal/internal/cache"
	"prichal/internal/logger"
	"prichal/internal/messaging"
	"prichal/internal/models"
	"prichal/internal/repository"
)

type InventoryService struct {
	inventoryRepo *repository.InventoryRepository
	natsClient    *messaging.NATSClient
	valkey        *cache.ValkeyClient
}

func NewInventoryService(inventoryRepo *repository.InventoryRepository, natsClient *messaging.NATSClient, valkey *cache.ValkeyClient) *InventoryService {
	return &InventoryService{
		inventoryRepo: inventoryRepo,
		natsClient:    natsClient,
		valkey:        valkey,
	}
}

func (s *InventoryService) CreateType(ctx context.Context, req *models.CreateInventoryTypeRequest) (*models.InventoryType, error) {
	t := &models.InventoryType{
		Name:                req.Name,
		DisplayName:         req.DisplayName,
		AffectsAvailability: req.AffectsAvailability.Bool(),
		BoardEquivalent:     req.BoardEquivalent,
	}

	if err := s.inventoryRepo.CreateType(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create inventory type: %w", err)
	}

	s.invalidateCatalog(ctx)
	return t, nil
}

func (s *InventoryService) GetType(ctx context.Context, id int64) (*models.InventoryType, error) {
	t, err := s.inventoryRepo.GetTypeByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory type: %w", err)
	}
	if t == nil {
		return nil, booking.ErrNotFound
	}
	return t, nil
}

func (s *InventoryService) ListTypes(ctx context.Context, activeOnly bool) ([]models.InventoryType, error) {
	return s.inventoryRepo.ListTypes(ctx, activeOnly)
}

func (s *InventoryService) UpdateType(ctx context.Context, id int64, req *models.UpdateInventoryTypeRequest) (*models.InventoryType, error) {
	t, err := s.inventoryRepo.GetTypeByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory type: %w", err)
	}
	if t == nil {
		return nil, booking.ErrNotFound
	}

	if req.DisplayName != nil {
		t.DisplayName = *req.DisplayName
	}
	if req.AffectsAvailability != nil {
		t.AffectsAvailability = req.AffectsAvailability.Bool()
	}
	if req.BoardEquivalent != nil {
		t.BoardEquivalent = *req.BoardEquivalent
	}
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}

	if err := s.inventoryRepo.UpdateType(ctx, t); err != nil {
		return nil, err
	}

	s.invalidateCatalog(ctx)
	return t, nil
}

func (s *InventoryService) CreateItem(ctx context.Context, req *models.CreateInventoryItemRequest) (*models.InventoryItem, error) {
	t, err := s.inventoryRepo.GetTypeByID(ctx, req.InventoryTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory type: %w", err)
	}
	if t == nil {
		return nil, fmt.Errorf("inventory type %d: %w", req.InventoryTypeID, booking.ErrNotFound)
	}

	item := &models.InventoryItem{
		InventoryTypeID: req.InventoryTypeID,
		SerialNumber:    req.SerialNumber,
	}
	if err := s.inventoryRepo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create inventory item: %w", err)
	}

	return item, nil
}

func (s *InventoryService) GetItem(ctx context.Context, id int64) (*models.InventoryItem, error) {
	item, err := s.inventoryRepo.GetItemByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory item: %w", err)
	}
	if item == nil {
		return nil, booking.ErrNotFound
	}
	return item, nil
}

func (s *InventoryService) ListItems(ctx context.Context, typeID *int64, status *string) ([]models.InventoryItem, error) {
	return s.inventoryRepo.ListItems(ctx, typeID, status)
}

// SetItemStatus moves an item between manual statuses and announces the
// change. in_use is rejected by the repository; the booking lifecycle owns it.
func (s *InventoryService) SetItemStatus(ctx context.Context, id int64, status string) (*models.InventoryItem, error) {
	before, err := s.inventoryRepo.GetItemByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory item: %w", err)
	}
	if before == nil {
		return nil, booking.ErrNotFound
	}

	item, err := s.inventoryRepo.SetItemStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	event := models.ItemStatusChangedEvent{
		ItemID:    id,
		OldStatus: before.Status,
		NewStatus: item.Status,
		BookingID: item.CurrentBookingID,
		Timestamp: time.Now(),
	}
	if err := s.natsClient.Publish(models.EventItemStatusChanged, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish item status changed event",
			"error", err,
			"item_id", id,
			"event_type", models.EventItemStatusChanged)
	}

	return item, nil
}

func (s *InventoryService) DeactivateItem(ctx context.Context, id int64) error {
	return s.inventoryRepo.DeactivateItem(ctx, id)
}

func (s *InventoryService) invalidateCatalog(ctx context.Context) {
	if s.valkey == nil {
		return
	}
	if err := s.valkey.InvalidateCatalog(ctx); err != nil {
		logger.WithContext(ctx).Error("Failed to invalidate catalog cache", "error", err)
	}
}
