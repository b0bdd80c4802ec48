package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		relayMessagesTotal,
		relayRoutingMissTotal,
		relaySendFailuresTotal,
		relaySendLatency,
	)
}

var (
	relayMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_messages_total",
			Help: "Messages relayed, by direction (to_admin, to_user).",
		},
		[]string{"direction"},
	)

	relayRoutingMissTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_routing_miss_total",
			Help: "Admin replies that referenced an unknown forwarded message.",
		},
	)

	relaySendFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_send_failures_total",
			Help: "Failed outbound sends, by target (admin, user, ack).",
		},
		[]string{"target"},
	)

	relaySendLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_send_latency_seconds",
			Help:    "Outbound sendMessage latency.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"success"},
	)
)

func IncRelayed(direction string) {
	relayMessagesTotal.WithLabelValues(norm(direction)).Inc()
}

func IncRoutingMiss() {
	relayRoutingMissTotal.Inc()
}

func IncSendFailure(target string) {
	relaySendFailuresTotal.WithLabelValues(norm(target)).Inc()
}

func ObserveSend(d time.Duration, success bool) {
	label := "false"
	if success {
		label = "true"
	}
	relaySendLatency.WithLabelValues(label).Observe(d.Seconds())
}
