package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"prichal/internal/booking"
	"prichal/internal/metrics"
	"prichal/internal/repository"
)

const reconciliationInterval = 15 * time.Minute

// CounterReconciliationJob sweeps the denormalized customer counters against
// the bookings table. The counters are co-committed with the transitions, so
// a divergence means a bug or manual surgery on the data; the job reports it
// and leaves the stored values alone.
type CounterReconciliationJob struct {
	customerRepo *repository.CustomerRepository
	ticker       *time.Ticker
	done         chan bool
}

func NewCounterReconciliationJob(customerRepo *repository.CustomerRepository) *CounterReconciliationJob {
	return &CounterReconciliationJob{
		customerRepo: customerRepo,
		done:         make(chan bool),
	}
}

func (j *CounterReconciliationJob) Start(ctx context.Context) {
	slog.Info("Starting counter reconciliation job", "check_interval", reconciliationInterval.String())

	j.ticker = time.NewTicker(reconciliationInterval)

	go j.sweep(ctx)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				go j.sweep(ctx)
			case <-j.done:
				slog.Info("Counter reconciliation job stopped")
				return
			}
		}
	}()
}

func (j *CounterReconciliationJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
}

func (j *CounterReconciliationJob) sweep(ctx context.Context) {
	ids, err := j.customerRepo.ListIDs(ctx)
	if err != nil {
		slog.Error("Failed to list customers for reconciliation", "error", err)
		return
	}

	var violations int
	for _, id := range ids {
		err := j.customerRepo.VerifyStats(ctx, id)
		if err == nil {
			continue
		}

		var violation *booking.ConsistencyViolationError
		if errors.As(err, &violation) {
			violations++
			metrics.ConsistencyViolations.Inc()
			slog.Error("Customer counters diverged from bookings",
				"customer_id", id,
				"detail", violation.Detail)
			continue
		}

		slog.Error("Failed to verify customer counters", "customer_id", id, "error", err)
	}

	if violations == 0 {
		slog.Debug("Counter reconciliation sweep clean", "customers", len(ids))
	} else {
		slog.Warn("Counter reconciliation sweep found divergences",
			"customers", len(ids), "violations", violations)
	}
}
