// Package metrics provides Prometheus metrics for stocky.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ClockTicks counts clock ticks across all sessions.
	ClockTicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stocky",
			Name:      "clock_ticks_total",
			Help:      "Total number of virtual clock ticks",
		},
	)

	// NewsReleased counts records moved from the pool into an active feed.
	NewsReleased = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stocky",
			Name:      "news_released_total",
			Help:      "Total number of news records released into active feeds",
		},
	)

	// FeedBuilds counts pool builds by outcome.
	FeedBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stocky",
			Name:      "feed_builds_total",
			Help:      "Total number of news pool builds",
		},
		[]string{"status"},
	)

	// PersistErrors counts failed best-effort writes by key family.
	PersistErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stocky",
			Name:      "persist_errors_total",
			Help:      "Total number of failed session state writes",
		},
		[]string{"family"},
	)

	// FillNotifications counts fill notifications raised.
	FillNotifications = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stocky",
			Name:      "fill_notifications_total",
			Help:      "Total number of order fill notifications",
		},
	)

	// OrderPollErrors counts failed order polls.
	OrderPollErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stocky",
			Name:      "order_poll_errors_total",
			Help:      "Total number of failed order list polls",
		},
	)

	// PoolSize tracks the unreleased backlog of the live session.
	PoolSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "stocky",
			Name:      "news_pool_size",
			Help:      "Number of unreleased news records in the live session",
		},
	)

	// LiveSessions is 1 while a session is running.
	LiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "stocky",
			Name:      "live_sessions",
			Help:      "Number of live sessions",
		},
	)

	// WebsocketClients tracks connected websocket clients.
	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "stocky",
			Name:      "websocket_clients",
			Help:      "Number of connected websocket clients",
		},
	)
)
