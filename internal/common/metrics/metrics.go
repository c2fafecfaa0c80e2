// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elevenlabs_api_requests_total",
			Help: "Total number of ElevenLabs API requests issued",
		},
		[]string{"endpoint"},
	)

	ConversationsAggregated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "conversations_aggregated_total",
			Help: "Total number of conversations accepted by the aggregator",
		},
	)

	ConversationsEnriched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "conversations_enriched_total",
			Help: "Total number of conversations enriched with detail data",
		},
	)

	ExportRowsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "export_rows_written_total",
			Help: "Total number of rows written to export files",
		},
		[]string{"format"},
	)

	AgentsUpdated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agents_updated_total",
			Help: "Total number of agents whose data collection was updated",
		},
	)
)

// Summary gathers the default registry and returns the current counter
// totals keyed by metric name. The exporter is a batch process with no
// scrape endpoint, so the totals are logged once at the end of a run.
func Summary() map[string]float64 {
	totals := make(map[string]float64)

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return totals
	}

	for _, family := range families {
		var sum float64
		for _, m := range family.GetMetric() {
			if m.GetCounter() != nil {
				sum += m.GetCounter().GetValue()
			}
		}
		if sum > 0 {
			totals[family.GetName()] = sum
		}
	}

	return totals
}
