package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatrelay_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatrelay_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Relay metrics
	MessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatrelay_messages_published_total",
			Help: "Total messages published to the inbound queue",
		},
		[]string{"source"}, // "http" or "ws"
	)

	ResponsesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatrelay_responses_generated_total",
			Help: "Total automated responses generated",
		},
		[]string{"rule"},
	)

	BroadcastDeliveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatrelay_broadcast_deliveries_total",
			Help: "Total per-connection broadcast deliveries",
		},
	)

	BroadcastFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatrelay_broadcast_failures_total",
			Help: "Total per-connection deliveries dropped (closed or slow connection)",
		},
	)

	// Connection metrics
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatrelay_ws_connections",
			Help: "Currently registered WebSocket connections",
		},
	)

	HistoryMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatrelay_history_messages_sent_total",
			Help: "Total history messages replayed to new connections",
		},
	)
)
