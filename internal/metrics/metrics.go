package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics for the relay
var (
	PixelEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_pixel_events_total",
			Help: "Total number of tracking pixels emitted",
		},
		[]string{"event", "delivery"},
	)

	PixelEventsSuppressedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_pixel_events_suppressed_total",
			Help: "Total number of pixels dropped by the duplicate guard",
		},
		[]string{"event"},
	)

	OrderExtractionFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_order_extraction_failures_total",
			Help: "Total number of sale enrichments that stopped with an error fingerprint",
		},
		[]string{"component"},
	)

	LinkAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_link_attempts_total",
			Help: "Total number of link_site callbacks by outcome",
		},
		[]string{"outcome"},
	)

	StatusNotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_status_notifications_total",
			Help: "Total number of activation status notifications sent to the platform",
		},
		[]string{"status", "outcome"},
	)

	PixelStreamDeliveredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_pixel_stream_delivered_total",
			Help: "Total number of pixels handed to debug stream subscribers",
		},
	)

	PixelStreamDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_pixel_stream_dropped_total",
			Help: "Total number of pixels dropped because a debug subscriber fell behind",
		},
	)

	PixelStreamSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_pixel_stream_subscribers",
			Help: "Number of open debug stream subscriptions",
		},
	)

	HookDispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_hook_dispatch_duration_seconds",
			Help:    "Duration of hook dispatches",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"hook"},
	)
)

var registerOnce sync.Once

// Register registers all Prometheus metrics with the default registry
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			PixelEventsTotal,
			PixelEventsSuppressedTotal,
			OrderExtractionFailuresTotal,
			LinkAttemptsTotal,
			StatusNotificationsTotal,
			PixelStreamDeliveredTotal,
			PixelStreamDroppedTotal,
			PixelStreamSubscribers,
			HookDispatchDuration,
		)
	})
}
