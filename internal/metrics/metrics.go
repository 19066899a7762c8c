package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prichal_bookings_created_total",
		Help: "Number of bookings successfully created",
	})

	BookingsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prichal_bookings_rejected_total",
		Help: "Number of booking requests rejected, by reason",
	}, []string{"reason"})

	BookingTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prichal_booking_transitions_total",
		Help: "Number of booking lifecycle transitions, by action",
	}, []string{"action"})

	ConsistencyViolations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prichal_consistency_violations_total",
		Help: "Number of detected divergences between counters/items and bookings",
	})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "prichal_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)
