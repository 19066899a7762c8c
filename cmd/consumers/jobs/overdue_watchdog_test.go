package jobs

import (
	"testing"
	"time"

	"prichal/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNewOverdueEvent(t *testing.T) {
	start := time.Date(2025, 7, 12, 10, 0, 0, 0, time.UTC)
	b := &models.Booking{
		ID:               42,
		PlannedStartTime: start,
		DurationHours:    2,
	}

	now := start.Add(2*time.Hour + 30*time.Minute)
	event := NewOverdueEvent(b, now)

	assert.Equal(t, int64(42), event.BookingID)
	assert.Equal(t, start.Add(2*time.Hour), event.PlannedEnd)
	assert.Equal(t, "30m0s", event.OverdueFor)
	assert.Equal(t, now, event.Timestamp)
}

func TestNewOverdueEventFractionalHours(t *testing.T) {
	start := time.Date(2025, 7, 12, 18, 0, 0, 0, time.UTC)
	b := &models.Booking{
		ID:               7,
		PlannedStartTime: start,
		DurationHours:    1.5,
	}

	now := start.Add(1*time.Hour + 45*time.Minute)
	event := NewOverdueEvent(b, now)

	assert.Equal(t, start.Add(90*time.Minute), event.PlannedEnd)
	assert.Equal(t, "15m0s", event.OverdueFor)
}
