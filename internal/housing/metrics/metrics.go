// Package metrics exposes Prometheus instrumentation for the allocation
// engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	AllocationsCommitted *prometheus.CounterVec
	AllocationsRemoved   prometheus.Counter
	Conflicts            *prometheus.CounterVec
	BulkRunDuration      *prometheus.HistogramVec
	BulkUnallocated      *prometheus.GaugeVec
}

// New registers all engine metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers on a caller-supplied registry, so tests can isolate.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AllocationsCommitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quarters_allocations_committed_total",
			Help: "Allocations committed to the ledger, by strategy.",
		}, []string{"strategy"}),
		AllocationsRemoved: factory.NewCounter(prometheus.CounterOpts{
			Name: "quarters_allocations_removed_total",
			Help: "Allocations removed from the ledger.",
		}),
		Conflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quarters_allocation_conflicts_total",
			Help: "Allocation attempts rejected, by conflict code.",
		}, []string{"code"}),
		BulkRunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quarters_bulk_run_duration_seconds",
			Help:    "Wall time of bulk allocation runs, by strategy.",
			Buckets: prometheus.DefBuckets,
		}, []string{"strategy"}),
		BulkUnallocated: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "quarters_bulk_unallocated",
			Help: "Registrants left unplaced by the most recent bulk run.",
		}, []string{"strategy"}),
	}
}

// ObserveBulkRun records the outcome of one bulk invocation.
func (m *Metrics) ObserveBulkRun(strategy string, started time.Time, allocated, unallocated int) {
	m.BulkRunDuration.WithLabelValues(strategy).Observe(time.Since(started).Seconds())
	m.AllocationsCommitted.WithLabelValues(strategy).Add(float64(allocated))
	m.BulkUnallocated.WithLabelValues(strategy).Set(float64(unallocated))
}
