// Package metrics holds the Prometheus instrumentation for the scan
// pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Metrics registers all pipeline collectors on a dedicated registry so
// tests can run multiple instances without collisions.
type Metrics struct {
	registry *prometheus.Registry

	fetchDuration *prometheus.HistogramVec
	fetchErrors   *prometheus.CounterVec
	signalsTotal  *prometheus.CounterVec
	scoresTotal   *prometheus.CounterVec
	bottlenecks   prometheus.Counter
	scanDuration  prometheus.Histogram
	activeScans   prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "supplyradar",
			Name:      "provider_fetch_duration_seconds",
			Help:      "Duration of provider fetches by source.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "supplyradar",
			Name:      "provider_fetch_errors_total",
			Help:      "Provider fetches that degraded to fallback or empty data.",
		}, []string{"source"}),
		signalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "supplyradar",
			Name:      "signals_ingested_total",
			Help:      "Signals ingested by source.",
		}, []string{"source"}),
		scoresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "supplyradar",
			Name:      "risk_scores_computed_total",
			Help:      "Risk scores computed by segment.",
		}, []string{"segment"}),
		bottlenecks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "supplyradar",
			Name:      "bottlenecks_detected_total",
			Help:      "Regional bottlenecks crossing the reporting threshold.",
		}),
		scanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "supplyradar",
			Name:      "scan_duration_seconds",
			Help:      "End-to-end duration of a full risk scan.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		activeScans: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "supplyradar",
			Name:      "active_scans",
			Help:      "Scans currently in flight.",
		}),
	}
	m.registry.MustRegister(
		m.fetchDuration, m.fetchErrors, m.signalsTotal,
		m.scoresTotal, m.bottlenecks, m.scanDuration, m.activeScans,
	)
	return m
}

// Registry exposes the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveFetch(source string, d time.Duration, degraded bool, signals int) {
	m.fetchDuration.WithLabelValues(source).Observe(d.Seconds())
	m.signalsTotal.WithLabelValues(source).Add(float64(signals))
	if degraded {
		m.fetchErrors.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) ScoreComputed(segment string) { m.scoresTotal.WithLabelValues(segment).Inc() }
func (m *Metrics) BottlenecksDetected(n int)    { m.bottlenecks.Add(float64(n)) }

func (m *Metrics) ScanStarted() func(d time.Duration) {
	m.activeScans.Inc()
	return func(d time.Duration) {
		m.activeScans.Dec()
		m.scanDuration.Observe(d.Seconds())
	}
}

// CounterValue reads the current value of a counter family, summed over the
// matching label value. Used in tests and the status report.
func (m *Metrics) CounterValue(name, labelValue string) float64 {
	families, err := m.registry.Gather()
	if err != nil {
		return 0
	}
	var total float64
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if labelValue == "" || metricHasLabelValue(metric, labelValue) {
				total += metric.GetCounter().GetValue()
			}
		}
	}
	return total
}

func metricHasLabelValue(metric *dto.Metric, value string) bool {
	for _, lp := range metric.GetLabel() {
		if lp.GetValue() == value {
			return true
		}
	}
	return false
}
