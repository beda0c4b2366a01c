// Package metrics provides Prometheus metrics for the chat service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled HTTP requests by route and status.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// SocketConnections tracks live websocket connections.
	SocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_socket_connections",
			Help: "Number of currently open websocket connections",
		},
	)

	OnlineUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_online_users",
			Help: "Number of distinct users with at least one open connection",
		},
	)

	// SocketEvents counts realtime events by name and direction (in/out).
	SocketEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_socket_events_total",
			Help: "Total number of realtime events received or emitted",
		},
		[]string{"event", "direction"},
	)

	MessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_sent_total",
			Help: "Total number of messages persisted",
		},
		[]string{"type"},
	)

	MessagesSeen = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_messages_seen_total",
			Help: "Total number of messages transitioned to seen",
		},
	)

	// Notifications counts notification publishes by topic and result.
	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_notifications_total",
			Help: "Total number of notification publish attempts",
		},
		[]string{"topic", "result"},
	)

	// ProfileLookups counts profile resolutions by the layer that answered.
	ProfileLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_profile_lookups_total",
			Help: "Total number of profile lookups by source",
		},
		[]string{"source"},
	)
)

func RecordHTTPRequest(method, route string, status int, elapsed time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordPresence updates connection and online user gauges.
func RecordPresence(connections, users int) {
	SocketConnections.Set(float64(connections))
	OnlineUsers.Set(float64(users))
}

func RecordSocketEvent(event, direction string) {
	SocketEvents.WithLabelValues(event, direction).Inc()
}

func RecordMessageSent(kind string) {
	MessagesSent.WithLabelValues(kind).Inc()
}

func RecordMessagesSeen(n int) {
	if n > 0 {
		MessagesSeen.Add(float64(n))
	}
}

func RecordNotification(topic string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	Notifications.WithLabelValues(topic, result).Inc()
}

func RecordProfileLookup(source string) {
	ProfileLookups.WithLabelValues(source).Inc()
}
