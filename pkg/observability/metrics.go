// Package observability holds the Prometheus metrics recorded during a scan.
package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is one scan process's metric set on its own registry, so tests
// and repeated scans never collide on the default registerer. All methods
// are safe on a nil *Metrics.
type Metrics struct {
	Registry *prometheus.Registry

	FilesTotal       *prometheus.CounterVec
	ComponentsTotal  *prometheus.CounterVec
	DuplicatesTotal  prometheus.Counter
	DiagnosticsTotal *prometheus.CounterVec
	PhaseDuration    *prometheus.HistogramVec
	Tokens           prometheus.Gauge
	ScansTotal       *prometheus.CounterVec
}

// NewMetrics registers the scan metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		FilesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "uiregistry_files_total",
			Help: "Source files analyzed, by outcome.",
		}, []string{"status"}),
		ComponentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "uiregistry_components_total",
			Help: "Component descriptors produced, by origin.",
		}, []string{"origin"}),
		DuplicatesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "uiregistry_duplicates_dropped_total",
			Help: "Descriptors discarded or replaced during deduplication.",
		}),
		DiagnosticsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "uiregistry_diagnostics_total",
			Help: "Non-fatal scan diagnostics, by kind.",
		}, []string{"kind"}),
		PhaseDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "uiregistry_phase_seconds",
			Help:    "Time spent in each scan phase.",
			Buckets: prometheus.DefBuckets,
		}, []string{"phase"}),
		Tokens: factory.NewGauge(prometheus.GaugeOpts{
			Name: "uiregistry_tokens",
			Help: "Distinct tokens in the last assembled registry.",
		}),
		ScansTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "uiregistry_scans_total",
			Help: "Completed scans, by result.",
		}, []string{"result"}),
	}
}

// ObservePhase records how long a phase took.
func (m *Metrics) ObservePhase(phase string, d time.Duration) {
	if m == nil {
		return
	}
	m.PhaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// AddFiles counts analyzed files by status ("ok" or "failed").
func (m *Metrics) AddFiles(status string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.FilesTotal.WithLabelValues(status).Add(float64(n))
}

// AddComponents counts descriptors by origin ("canonical" or "barrel").
func (m *Metrics) AddComponents(origin string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.ComponentsTotal.WithLabelValues(origin).Add(float64(n))
}

// AddDuplicates counts descriptors dropped by deduplication.
func (m *Metrics) AddDuplicates(n int) {
	if m == nil || n == 0 {
		return
	}
	m.DuplicatesTotal.Add(float64(n))
}

// AddDiagnostic counts one diagnostic.
func (m *Metrics) AddDiagnostic(kind string) {
	if m == nil {
		return
	}
	m.DiagnosticsTotal.WithLabelValues(kind).Inc()
}

// SetTokens records the token dictionary size.
func (m *Metrics) SetTokens(n int) {
	if m == nil {
		return
	}
	m.Tokens.Set(float64(n))
}

// ScanDone counts a finished scan.
func (m *Metrics) ScanDone(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ScansTotal.WithLabelValues(result).Inc()
}

// WriteTextfile writes the metrics in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
