package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resv_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "code", "method"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resv_bookings_total",
			Help: "Booking attempts by terminal outcome",
		},
		[]string{"outcome"},
	)

	LockContention = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resv_slot_lock_contention_total",
			Help: "Booking attempts that failed to acquire the slot lock",
		},
	)

	AvailabilityScans = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resv_availability_scans_total",
			Help: "Bulk availability scans served",
		},
	)

	DBTxDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resv_db_tx_seconds",
			Help:    "Duration of DB transactions",
			Buckets: prometheus.DefBuckets,
		},
	)

	OutboxLag = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "resv_outbox_lag_seconds",
			Help: "Age of the oldest unpublished outbox record",
		},
	)

	RateLimitExceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resv_rate_limit_exceeded_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)
