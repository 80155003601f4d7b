package http

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the exporter's prometheus collectors.
type Metrics struct {
	NavigationsTotal   prometheus.Counter
	MountsTotal        *prometheus.CounterVec
	MountFailuresTotal *prometheus.CounterVec
	ExtractionsTotal   *prometheus.CounterVec
	ExportsTotal       *prometheus.CounterVec
	CollectionSize     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		NavigationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "scexport_navigations_total",
				Help: "Total number of client-side navigations detected",
			},
		),
		MountsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scexport_mounts_total",
				Help: "Total number of buttons mounted",
			},
			[]string{"mount"},
		),
		MountFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scexport_mount_failures_total",
				Help: "Total number of mount points whose container was never found",
			},
			[]string{"mount"},
		),
		ExtractionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scexport_extractions_total",
				Help: "Total number of track extractions",
			},
			[]string{"kind", "status"},
		),
		ExportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scexport_exports_total",
				Help: "Total number of clipboard exports",
			},
			[]string{"format", "status"},
		),
		CollectionSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "scexport_collection_size",
				Help: "Current number of tracks in the collection",
			},
		),
	}

	reg.MustRegister(
		metrics.NavigationsTotal,
		metrics.MountsTotal,
		metrics.MountFailuresTotal,
		metrics.ExtractionsTotal,
		metrics.ExportsTotal,
		metrics.CollectionSize,
	)

	return metrics
}

func (m *Metrics) RecordNavigation() {
	m.NavigationsTotal.Inc()
}

func (m *Metrics) MountSucceeded(key string) {
	m.MountsTotal.WithLabelValues(key).Inc()
}

func (m *Metrics) MountFailed(key string) {
	m.MountFailuresTotal.WithLabelValues(key).Inc()
}

func (m *Metrics) RecordExtraction(kind, status string) {
	m.ExtractionsTotal.WithLabelValues(kind, status).Inc()
}

func (m *Metrics) RecordExport(format, status string) {
	m.ExportsTotal.WithLabelValues(format, status).Inc()
}

func (m *Metrics) SetCollectionSize(size int) {
	m.CollectionSize.Set(float64(size))
}
