package jobs

import (
	"context"
	"log/slog"
	"time"

	"prichal/internal/messaging"
	"prichal/internal/models"
	"prichal/internal/repository"
)

const overdueCheckInterval = time.Minute

// OverdueWatchdogJob reports rentals still out past their planned window.
// It only observes and publishes; a late return is a business situation,
// not an error, so no status is ever changed here.
type OverdueWatchdogJob struct {
	bookingRepo *repository.BookingRepository
	natsClient  *messaging.NATSClient
	ticker      *time.Ticker
	done        chan bool
}

func NewOverdueWatchdogJob(bookingRepo *repository.BookingRepository, natsClient *messaging.NATSClient) *OverdueWatchdogJob {
	return &OverdueWatchdogJob{
		bookingRepo: bookingRepo,
		natsClient:  natsClient,
		done:        make(chan bool),
	}
}

// Start begins the periodic overdue sweep
func (j *OverdueWatchdogJob) Start(ctx context.Context) {
	slog.Info("Starting overdue watchdog job", "check_interval", overdueCheckInterval.String())

	j.ticker = time.NewTicker(overdueCheckInterval)

	// Run initial check immediately
	go j.checkOverdueBookings(ctx)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				go j.checkOverdueBookings(ctx)
			case <-j.done:
				slog.Info("Overdue watchdog job stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the background job
func (j *OverdueWatchdogJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
}

func (j *OverdueWatchdogJob) checkOverdueBookings(ctx context.Context) {
	now := time.Now()

	overdue, err := j.bookingRepo.GetOverdueBookings(ctx, now)
	if err != nil {
		slog.Error("Failed to get overdue bookings", "error", err)
		return
	}

	if len(overdue) == 0 {
		slog.Debug("No overdue bookings found")
		return
	}

	slog.Info("Found overdue bookings", "count", len(overdue))

	for _, b := range overdue {
		event := NewOverdueEvent(&b, now)

		if err := j.natsClient.Publish(models.EventBookingOverdue, event); err != nil {
			slog.Error("Failed to publish booking overdue event",
				"error", err,
				"booking_id", b.ID,
				"event_type", models.EventBookingOverdue)
			continue
		}

		slog.Warn("Booking overdue",
			"booking_id", b.ID,
			"planned_end", event.PlannedEnd,
			"overdue_for", event.OverdueFor)
	}
}

// NewOverdueEvent derives the overdue report from the booking's planned
// window. The window is half-open, so the planned end itself is not overdue.
func NewOverdueEvent(b *models.Booking, now time.Time) models.BookingOverdueEvent {
	plannedEnd := b.PlannedStartTime.Add(time.Duration(b.DurationHours * float64(time.Hour)))

	return models.BookingOverdueEvent{
		BookingID:  b.ID,
		PlannedEnd: plannedEnd,
		OverdueFor: now.Sub(plannedEnd).Truncate(time.Second).String(),
		Timestamp:  now,
	}
}
