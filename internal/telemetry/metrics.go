package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// IngestTotal counts sensor posts by outcome and rejection reason
	IngestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "probe",
			Name:      "ingest_total",
			Help:      "Total number of sensor submissions by outcome",
		},
		[]string{"outcome", "reason"},
	)

	// DevicesObserved tracks the device total of the most recent accepted reading
	DevicesObserved = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "probe",
			Name:      "devices_observed",
			Help:      "Sum of SSID counts in the latest reading",
		},
	)

	// EstimatedPeople tracks the latest occupancy estimate
	EstimatedPeople = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "probe",
			Name:      "estimated_people",
			Help:      "Estimated people present derived from the latest reading",
		},
	)

	// StoreOperations counts persistence calls by backend, operation and result
	StoreOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "probe",
			Name:      "store_operations_total",
			Help:      "Total number of store operations",
		},
		[]string{"backend", "op", "result"},
	)

	// StoreLatency observes how long store operations take
	StoreLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "probe",
			Name:      "store_operation_seconds",
			Help:      "Latency of store operations",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"backend", "op"},
	)

	// BreakerState exposes circuit breaker state (0 closed, 1 half-open, 2 open)
	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "probe",
			Name:      "store_breaker_state",
			Help:      "State of the store circuit breaker",
		},
		[]string{"name"},
	)

	// RateLimiterKeys counts sources currently tracked by the admission limiter
	RateLimiterKeys = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "probe",
			Name:      "rate_limiter_keys",
			Help:      "Number of source keys held by the rate limiter",
		},
	)

	// HTTPRequests counts served requests
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "probe",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"route", "method", "code"},
	)

	// HTTPDuration observes request latency
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "probe",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// LiveClients tracks connected live feed websockets
	LiveClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "probe",
			Name:      "live_clients",
			Help:      "Number of connected live feed clients",
		},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// Safe to call more than once.
func InitMetrics() {
	once.Do(func() {
		// Already-registered errors are ignored so tests can share the registry
		collectors := []prometheus.Collector{
			IngestTotal,
			DevicesObserved,
			EstimatedPeople,
			StoreOperations,
			StoreLatency,
			BreakerState,
			RateLimiterKeys,
			HTTPRequests,
			HTTPDuration,
			LiveClients,
		}
		for _, c := range collectors {
			_ = prometheus.DefaultRegisterer.Register(c)
		}
	})
}
