// Package metrics holds the Prometheus collectors shared by the booking
// path and the notification dispatcher.  Collectors register on the
// default registry, which /metrics exposes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Booking outcomes, used as the "result" label of BookingsTotal.
const (
	ResultSuccess     = "success"
	ResultUnavailable = "unavailable"
	ResultNotFound    = "not_found"
	ResultConflict    = "conflict"
	ResultInvalid     = "invalid"
	ResultError       = "error"
)

// Notification outcomes, used as the "result" label of NotificationsTotal.
const (
	NotifyEnqueued      = "enqueued"
	NotifyEncodeFailed  = "encode_failed"
	NotifyDropped       = "dropped"
	NotifyPublished     = "published"
	NotifyPublishFailed = "publish_failed"
)

var (
	BookingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_attempts_total",
		Help: "Booking attempts by result",
	}, []string{"result"})

	BookingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "booking_duration_seconds",
		Help:    "Time taken by a booking attempt including the transaction",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})

	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_notifications_total",
		Help: "Booking notifications by result",
	}, []string{"result"})

	SeatCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seat_cache_lookups_total",
		Help: "Seat map cache lookups by outcome",
	}, []string{"outcome"})
)
