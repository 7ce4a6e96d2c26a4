package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the retrieval fan-out.
type Metrics struct {
	SearchesTotal     prometheus.Counter
	DegradedTotal     prometheus.Counter
	PartitionSearches *prometheus.CounterVec
	SearchDuration    prometheus.Histogram
	HitsReturned      prometheus.Histogram
}

// NewMetrics registers fan-out metrics with the given registerer.
// Pass prometheus.DefaultRegisterer for the process-wide registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SearchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "ontosearch",
			Subsystem: "fanout",
			Name:      "searches_total",
			Help:      "Total number of fan-out searches executed.",
		}),
		DegradedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "ontosearch",
			Subsystem: "fanout",
			Name:      "degraded_total",
			Help:      "Number of searches that completed with partial partition failures.",
		}),
		PartitionSearches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ontosearch",
			Subsystem: "fanout",
			Name:      "partition_searches_total",
			Help:      "Partition search tasks by partition and outcome.",
		}, []string{"partition", "status"}),
		SearchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ontosearch",
			Subsystem: "fanout",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of the full fan-out.",
			Buckets:   prometheus.DefBuckets,
		}),
		HitsReturned: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ontosearch",
			Subsystem: "fanout",
			Name:      "hits_returned",
			Help:      "Number of raw hits returned per fan-out before fusion.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}),
	}
}
