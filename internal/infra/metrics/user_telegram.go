package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		telegramUpdatesReceivedTotal,
		telegramUpdatesDuplicateTotal,
		telegramUpdatesMalformedTotal,
	)
}

var (
	telegramUpdatesReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_updates_received_total",
			Help: "Counts webhook updates by dispatch route.",
		},
		[]string{"route"}, // start, admin_reply, admin_direct, submission, ignored
	)

	telegramUpdatesDuplicateTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_updates_duplicate_total",
			Help: "Webhook redeliveries skipped by the update guard.",
		},
	)

	telegramUpdatesMalformedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_updates_malformed_total",
			Help: "Webhook payloads that could not be decoded.",
		},
	)
)

func IncUpdate(route string) {
	telegramUpdatesReceivedTotal.WithLabelValues(norm(route)).Inc()
}

func IncDuplicateUpdate() {
	telegramUpdatesDuplicateTotal.Inc()
}

func IncMalformedUpdate() {
	telegramUpdatesMalformedTotal.Inc()
}
