// Package observability provides metrics and tracing for the application.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransitionsTotal counts lifecycle transitions by transition name and outcome.
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shardit_request_transitions_total",
		Help: "Total borrow request transitions by transition and outcome",
	}, []string{"transition", "outcome"})

	// NotificationsEmitted counts notification side effects by delivery result.
	NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shardit_notifications_emitted_total",
		Help: "Total notifications emitted by delivery result",
	}, []string{"result"})

	// RequestsCreated counts new borrow requests.
	RequestsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shardit_requests_created_total",
		Help: "Total borrow requests created",
	})

	// WebSocketConnections is the gauge of active notification WebSocket connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shardit_websocket_connections",
		Help: "Number of active notification WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped because a client's
	// send buffer was full or its channel already closed.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shardit_websocket_backpressure_drops_total",
		Help: "Messages dropped due to WebSocket client backpressure",
	}, []string{"hub", "reason"})
)
