package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(relayMapEntries, relayMapPrunedTotal) }

var (
	relayMapEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_map_entries",
			Help: "Current number of forwarded-message correlations held in memory.",
		},
	)

	relayMapPrunedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_map_pruned_total",
			Help: "Correlations dropped by TTL expiry.",
		},
	)
)

func SetRelayMapEntries(n int) {
	relayMapEntries.Set(float64(n))
}

func AddRelayMapPruned(n int) {
	relayMapPrunedTotal.Add(float64(n))
}
