// Package metrics defines the Prometheus instruments exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lms_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lms_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Chat relay metrics
	ChatConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lms_chat_connected_clients",
			Help: "Currently connected chat clients",
		},
	)

	ChatActiveRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lms_chat_active_rooms",
			Help: "Rooms with at least one member",
		},
	)

	ChatMessagesRelayed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lms_chat_messages_relayed_total",
			Help: "Messages delivered to room members",
		},
	)

	// Business metrics
	VideosCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lms_videos_completed_total",
			Help: "Video completions recorded",
		},
	)

	CoinsAwarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lms_coins_awarded_total",
			Help: "Coins credited to learners",
		},
		[]string{"reason"}, // "video", "chapter_bonus", "roadmap"
	)

	AssistantRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lms_assistant_requests_total",
			Help: "AI assistant requests",
		},
		[]string{"status"}, // "ok", "error", "rate_limited"
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lms_rate_limit_hits_total",
			Help: "Requests rejected by rate limiting",
		},
		[]string{"endpoint"},
	)
)
