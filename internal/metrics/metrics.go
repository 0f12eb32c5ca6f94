// Package metrics exposes Prometheus collectors for the realtime hub and
// the moderation engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ActiveConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gateway_active_connections",
		Help: "Currently connected websocket clients",
	})
	MessagesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gateway_messages_sent_total",
		Help: "Messages persisted and broadcast",
	})
	MessagesFlagged = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gateway_messages_flagged_total",
		Help: "Messages flagged by the safety scorer",
	})
	MessagesRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_messages_rejected_total",
		Help: "Messages rejected before persistence",
	}, []string{"reason"})
	RoomJoins = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gateway_room_joins_total",
		Help: "Successful room joins",
	})
	ReportsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trust_reports_total",
		Help: "User reports received",
	})
	MutesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trust_mutes_total",
		Help: "Identities muted, automatic or explicit",
	})
)

// Register registers all collectors on the default registry.
func Register() {
	prometheus.MustRegister(
		ActiveConnections,
		MessagesSent,
		MessagesFlagged,
		MessagesRejected,
		RoomJoins,
		ReportsTotal,
		MutesTotal,
	)
}
