package consumers

import (
	"context"
	"encoding/json"
	"log/slog"

	"prichal/internal/models"
	"prichal/internal/repository"
	"prichal/internal/search"

	"github.com/nats-io/stan.go"
)

type Handlers struct {
	repos    *repository.Repositories
	esClient *search.ElasticsearchClient
}

func NewHandlers(repos *repository.Repositories, esClient *search.ElasticsearchClient) *Handlers {
	return &Handlers{
		repos:    repos,
		esClient: esClient,
	}
}

// reindexBooking подтягивает бронирование из БД и пишет его в поисковый
// индекс. Индексация здесь, а не в API, дает ровно одну точку синхронизации
// на каждое событие жизненного цикла, даже если API-инстанс упал после коммита.
func (h *Handlers) reindexBooking(ctx context.Context, bookingID int64) {
	if h.esClient == nil {
		return
	}

	b, err := h.repos.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		slog.Error("Failed to load booking for indexing", "booking_id", bookingID, "error", err)
		return
	}
	if b == nil {
		slog.Warn("Booking vanished before indexing", "booking_id", bookingID)
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

	if err := h.esClient.IndexBooking(ctx, doc); err != nil {
		slog.Error("Failed to index booking", "booking_id", bookingID, "error", err)
	}
}

func (h *Handlers) HandleBookingCreated(m *stan.Msg) {
	var event models.BookingCreatedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking created event", "error", err)
		return
	}

	slog.Info("Processing booking created event",
		"booking_id", event.BookingID,
		"planned_start_time", event.PlannedStartTime,
		"duration_hours", event.DurationHours)

	h.reindexBooking(context.Background(), event.BookingID)

	m.Ack()
}

func (h *Handlers) HandleBookingStarted(m *stan.Msg) {
	var event models.BookingStartedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking started event", "error", err)
		return
	}

	slog.Info("Processing booking started event",
		"booking_id", event.BookingID,
		"item_ids", event.ItemIDs)

	h.reindexBooking(context.Background(), event.BookingID)

	m.Ack()
}

func (h *Handlers) HandleBookingCompleted(m *stan.Msg) {
	var event models.BookingCompletedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking completed event", "error", err)
		return
	}

	slog.Info("Processing booking completed event",
		"booking_id", event.BookingID,
		"returned_at", event.ReturnedAt)

	h.reindexBooking(context.Background(), event.BookingID)

	m.Ack()
}

func (h *Handlers) HandleBookingCancelled(m *stan.Msg) {
	var event models.BookingCancelledEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking cancelled event", "error", err)
		return
	}

	slog.Info("Processing booking cancelled event",
		"booking_id", event.BookingID,
		"reason", event.Reason)

	h.reindexBooking(context.Background(), event.BookingID)

	m.Ack()
}

// HandleBookingOverdue только фиксирует просрочку в журнале. Доставка
// уведомлений клиентам живет вне этого сервиса.
func (h *Handlers) HandleBookingOverdue(m *stan.Msg) {
	var event models.BookingOverdueEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking overdue event", "error", err)
		return
	}

	slog.Warn("Booking is overdue",
		"booking_id", event.BookingID,
		"planned_end", event.PlannedEnd,
		"overdue_for", event.OverdueFor)

	m.Ack()
}

func (h *Handlers) HandleItemStatusChanged(m *stan.Msg) {
	var event models.ItemStatusChangedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal item status changed event", "error", err)
		return
	}

	slog.Info("Processing item status changed event",
		"item_id", event.ItemID,
		"old_status", event.OldStatus,
		"new_status", event.NewStatus)

	m.Ack()
}
