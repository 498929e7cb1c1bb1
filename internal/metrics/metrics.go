package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Sessions with an open websocket
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scrub_active_sessions",
		Help: "Current number of connected scrubbing sessions",
	})

	SessionsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scrub_sessions_created_total",
		Help: "Total number of sessions created",
	})

	// Websocket messages by type
	MessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scrub_ws_messages_total",
		Help: "Total number of websocket messages handled",
	}, []string{"type"})

	MessageErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scrub_ws_message_errors_total",
		Help: "Total number of websocket messages answered with an error",
	}, []string{"type"})

	MessageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scrub_ws_message_duration_seconds",
		Help:    "Time taken to handle one websocket message",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10us to ~2.6s
	}, []string{"type"})

	CursorChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scrub_cursor_changes_total",
		Help: "Total number of time cursor writes",
	}, []string{"source"})

	StrategySwitchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scrub_strategy_switches_total",
		Help: "Total number of navigation strategy switches",
	}, []string{"strategy", "result"})

	TrajectoryLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scrub_trajectory_loads_total",
		Help: "Total number of trajectory loads",
	}, []string{"result"})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
