// Package metrics provides Prometheus metrics for proxy detection.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rennerdo30/proxydetect/internal/detect"
)

// Metrics holds all Prometheus metrics for proxy detection.
type Metrics struct {
	// Detection metrics
	DetectionsTotal   *prometheus.CounterVec
	DetectionDuration *prometheus.HistogramVec

	// Result metrics
	ResultsTotal *prometheus.CounterVec
	LastRun      prometheus.Gauge

	registry *prometheus.Registry
}

// New creates a new Metrics instance with all metrics registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.DetectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxydetect_detections_total",
			Help: "Total number of detector attempts",
		},
		[]string{"source", "outcome"},
	)

	m.DetectionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "proxydetect_detection_duration_seconds",
			Help:    "Duration of detector attempts",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"source"},
	)

	m.ResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxydetect_results_total",
			Help: "Total number of chain runs by winning source and mode",
		},
		[]string{"source", "mode"},
	)

	m.LastRun = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "proxydetect_last_run_timestamp_seconds",
			Help: "Unix time of the last completed chain run",
		},
	)

	m.registry.MustRegister(
		m.DetectionsTotal,
		m.DetectionDuration,
		m.ResultsTotal,
		m.LastRun,
	)

	return m
}

// ObserveDetection implements detect.Observer.
func (m *Metrics) ObserveDetection(source string, outcome detect.Outcome, elapsed time.Duration) {
	m.DetectionsTotal.WithLabelValues(source, string(outcome)).Inc()
	if outcome != detect.OutcomeSkipped {
		m.DetectionDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	}
}

// RecordResult records the outcome of a whole chain run. found is false
// when no detector produced a configuration.
func (m *Metrics) RecordResult(res detect.Result, found bool) {
	source, mode := "none", detect.ModeDirect.String()
	if found {
		source, mode = res.Source, res.Config.Mode().String()
	}
	m.ResultsTotal.WithLabelValues(source, mode).Inc()
	m.LastRun.SetToCurrentTime()
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics in the text exposition format, for
// collection by the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

var _ detect.Observer = (*Metrics)(nil)
