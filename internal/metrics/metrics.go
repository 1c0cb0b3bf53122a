// Package metrics provides Prometheus metrics for ingestion runs
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the ingestion metrics on a private registry. A nil *Metrics
// records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	DocumentsTotal   *prometheus.CounterVec
	RowsWrittenTotal *prometheus.CounterVec
	DocumentDuration *prometheus.HistogramVec
	LastRunTimestamp prometheus.Gauge
}

// New creates and registers all metrics
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		DocumentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caomdb_documents_total",
				Help: "Total number of observation documents processed",
			},
			[]string{"status"},
		),
		RowsWrittenTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caomdb_rows_written_total",
				Help: "Total number of rows written",
			},
			[]string{"table"},
		),
		DocumentDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "caomdb_document_duration_seconds",
				Help:    "Time to read, map and store one document",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"status"},
		),
		LastRunTimestamp: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "caomdb_last_run_timestamp_seconds",
				Help: "Unix time the last ingestion run finished",
			},
		),
	}
}

// RecordDocument records one document outcome.
func (m *Metrics) RecordDocument(err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := "ingested"
	if err != nil {
		status = "failed"
	}
	m.DocumentsTotal.WithLabelValues(status).Inc()
	m.DocumentDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordRows adds n rows written to table.
func (m *Metrics) RecordRows(table string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RowsWrittenTotal.WithLabelValues(table).Add(float64(n))
}

// RunFinished stamps the end of a run.
func (m *Metrics) RunFinished(at time.Time) {
	if m == nil {
		return
	}
	m.LastRunTimestamp.Set(float64(at.Unix()))
}

// WriteTextfile writes the registry in text exposition format, for the node
// exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
