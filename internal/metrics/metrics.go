// Package metrics collects Prometheus metrics about synthesis runs.
//
// The CLI is a short-lived process, so metrics are not served over HTTP.
// They are written to a node-exporter textfile instead.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the synthesis collectors and the registry they belong to.
type Metrics struct {
	registry *prometheus.Registry

	Syntheses  *prometheus.CounterVec
	Rejected   *prometheus.CounterVec
	HalfAdders *prometheus.CounterVec
	FullAdders *prometheus.CounterVec
	Cells      prometheus.Histogram
	Duration   prometheus.Histogram
	Verified   prometheus.Counter
	Mismatches prometheus.Counter
}

// New creates a Metrics with its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Syntheses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dadda_syntheses_total",
			Help: "Total multiplier blocks synthesized",
		}, []string{"mode"}),
		Rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dadda_rejected_requests_total",
			Help: "Total synthesis requests rejected by validation",
		}, []string{"code"}),
		HalfAdders: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dadda_half_adders_total",
			Help: "Total half adders allocated",
		}, []string{"mode"}),
		FullAdders: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dadda_full_adders_total",
			Help: "Total full adders allocated",
		}, []string{"mode"}),
		Cells: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "dadda_cells_per_block",
			Help:    "Adder cells allocated per synthesized block",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "dadda_synthesis_duration_seconds",
			Help:    "Time spent synthesizing one block",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		Verified: factory.NewCounter(prometheus.CounterOpts{
			Name: "dadda_verified_assignments_total",
			Help: "Operand assignments checked against reference arithmetic",
		}),
		Mismatches: factory.NewCounter(prometheus.CounterOpts{
			Name: "dadda_verification_mismatches_total",
			Help: "Operand assignments where a netlist disagreed with reference arithmetic",
		}),
	}
}

// ObserveSynthesis records one successful synthesis.
func (m *Metrics) ObserveSynthesis(mode string, half, full int, elapsed time.Duration) {
	m.Syntheses.WithLabelValues(mode).Inc()
	m.HalfAdders.WithLabelValues(mode).Add(float64(half))
	m.FullAdders.WithLabelValues(mode).Add(float64(full))
	m.Cells.Observe(float64(half + full))
	m.Duration.Observe(elapsed.Seconds())
}

// ObserveRejection records a request rejected with the given error code.
func (m *Metrics) ObserveRejection(code string) {
	m.Rejected.WithLabelValues(code).Inc()
}

// ObserveVerification records one verification run over a netlist.
func (m *Metrics) ObserveVerification(checked, failed int) {
	m.Verified.Add(float64(checked))
	m.Mismatches.Add(float64(failed))
}

// WriteTextfile writes every metric in the textfile-collector format.
// The file is written atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
