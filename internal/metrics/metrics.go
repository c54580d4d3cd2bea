// Package metrics provides Prometheus metrics for snapshot ingestion.
//
// Ingestion runs as a short-lived command, so metrics are not served over
// HTTP; the caller writes them to a node-exporter textfile when configured.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "almanac"

// Ingestion outcomes.
const (
	OutcomeCommitted = "committed"
	OutcomeAborted   = "aborted"
)

// Metrics holds all ingestion metrics. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	Ingestions    *prometheus.CounterVec
	RowsWritten   *prometheus.CounterVec
	FieldsDropped prometheus.Counter
	Duration      prometheus.Histogram

	registry *prometheus.Registry
}

// New creates a metrics instance registered on its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.Ingestions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingestions_total",
			Help:      "Total snapshot ingestions by outcome",
		},
		[]string{"outcome"}, // "committed", "aborted"
	)

	m.RowsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_written_total",
			Help:      "Total rows written by table",
		},
		[]string{"table"},
	)

	m.FieldsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fields_dropped_total",
			Help:      "Relationship rows dropped for referencing unknown countries",
		},
	)

	m.Duration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_duration_seconds",
			Help:      "Wall time of one snapshot ingestion",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	m.registry.MustRegister(m.Ingestions, m.RowsWritten, m.FieldsDropped, m.Duration)
	return m
}

// Registry returns the registry holding the ingestion metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordIngestion counts one finished ingestion and observes its duration.
func (m *Metrics) RecordIngestion(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Ingestions.WithLabelValues(outcome).Inc()
	m.Duration.Observe(d.Seconds())
}

// RecordRowsWritten adds committed row counts keyed by table.
func (m *Metrics) RecordRowsWritten(rows map[string]int) {
	if m == nil {
		return
	}
	for table, n := range rows {
		m.RowsWritten.WithLabelValues(table).Add(float64(n))
	}
}

// RecordDropped adds n dropped relationship rows.
func (m *Metrics) RecordDropped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.FieldsDropped.Add(float64(n))
}

// WriteTextfile writes the current metric values to path in the Prometheus
// text format. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
