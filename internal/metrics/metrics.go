// OceanLens - Live Vessel, Air Quality, and Wave Map Aggregator
// Copyright 2026 OceanLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/oceanlens/oceanlens

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - AIS ingest throughput and connection health
// - Vessel store occupancy and eviction
// - Unified response cache efficiency
// - Upstream fetch latency and circuit breaker state
// - API endpoint latency and throughput
// - WebSocket fanout

var (
	// Ingest Metrics
	IngestMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ais_messages_total",
			Help: "Total number of AIS messages received from the stream",
		},
	)

	IngestDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ais_messages_dropped_total",
			Help: "Total number of AIS messages dropped before storage",
		},
		[]string{"reason"}, // "parse", "validation", "type"
	)

	IngestConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ais_stream_connected",
			Help: "Whether the AIS stream is connected (1) or not (0)",
		},
	)

	IngestReconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ais_stream_reconnects_total",
			Help: "Total number of AIS stream reconnect attempts",
		},
	)

	// Vessel Store Metrics
	StoreVessels = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vessel_store_entries",
			Help: "Current number of vessels tracked in the position store",
		},
	)

	StoreUpserts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vessel_store_upserts_total",
			Help: "Total number of position upserts applied to the store",
		},
	)

	StoreRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vessel_store_rejected_total",
			Help: "Total number of position records rejected by validation",
		},
	)

	StoreSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vessel_store_swept_total",
			Help: "Total number of stale vessels removed by the sweeper",
		},
	)

	StoreQueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vessel_store_query_duration_seconds",
			Help:    "Duration of bounding-box queries against the store",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	// Response Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of response cache hits",
		},
		[]string{"kind"}, // "aqi", "waves", "wave_point"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of response cache misses",
		},
		[]string{"kind"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions",
		},
		[]string{"reason"}, // "lru", "ttl"
	)

	CacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of entries in the response cache",
		},
	)

	CacheFetchShared = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_fetch_shared_total",
			Help: "Total number of fetches coalesced onto an in-flight call",
		},
	)

	// Upstream Metrics
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of upstream fetch attempts",
		},
		[]string{"source", "result"}, // source: "aqi", "waves"; result: "success", "failure", "rejected"
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Duration of upstream fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent to clients",
		},
	)

	WSMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_dropped_total",
			Help: "Total number of WebSocket messages dropped on slow clients",
		},
	)
)

// RecordAPIRequest records metrics for an API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordUpstreamRequest records one upstream fetch attempt.
func RecordUpstreamRequest(source, result string, duration time.Duration) {
	UpstreamRequests.WithLabelValues(source, result).Inc()
	UpstreamDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// SetIngestConnected updates the stream connection gauge.
func SetIngestConnected(connected bool) {
	if connected {
		IngestConnected.Set(1)
	} else {
		IngestConnected.Set(0)
	}
}

// RecordBreakerTransition updates breaker gauges on a state change.
// State encoding matches sony/gobreaker: 0=closed, 1=half-open, 2=open.
func RecordBreakerTransition(name, from, to string, toState float64) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(toState)
}
