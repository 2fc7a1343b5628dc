package observability

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// value returns the counter or gauge value of the series of name whose
// labels include labelValue ("" matches any series).
func value(t *testing.T, m *Metrics, name, labelValue string) float64 {
	t.Helper()
	families, err := m.Registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			matched := labelValue == ""
			for _, lp := range metric.GetLabel() {
				if lp.GetValue() == labelValue {
					matched = true
				}
			}
			if !matched {
				continue
			}
			if c := metric.GetCounter(); c != nil {
				return c.GetValue()
			}
			if g := metric.GetGauge(); g != nil {
				return g.GetValue()
			}
			if h := metric.GetHistogram(); h != nil {
				return float64(h.GetSampleCount())
			}
		}
	}
	return 0
}

func TestMetricsRecord(t *testing.T) {
	m := NewMetrics()
	m.AddFiles("ok", 3)
	m.AddFiles("failed", 1)
	m.AddComponents("canonical", 2)
	m.AddDuplicates(1)
	m.AddDiagnostic("parse_error")
	m.AddDiagnostic("parse_error")
	m.SetTokens(7)
	m.ObservePhase("analysis", 20*time.Millisecond)
	m.ScanDone(nil)
	m.ScanDone(errors.New("boom"))

	assert.Equal(t, 3.0, value(t, m, "uiregistry_files_total", "ok"))
	assert.Equal(t, 1.0, value(t, m, "uiregistry_files_total", "failed"))
	assert.Equal(t, 2.0, value(t, m, "uiregistry_components_total", "canonical"))
	assert.Equal(t, 1.0, value(t, m, "uiregistry_duplicates_dropped_total", ""))
	assert.Equal(t, 2.0, value(t, m, "uiregistry_diagnostics_total", "parse_error"))
	assert.Equal(t, 7.0, value(t, m, "uiregistry_tokens", ""))
	assert.Equal(t, 1.0, value(t, m, "uiregistry_scans_total", "error"))
	assert.Equal(t, 1.0, value(t, m, "uiregistry_phase_seconds", "analysis"))
}

func TestMetricsIndependentRegistries(t *testing.T) {
	a, b := NewMetrics(), NewMetrics()
	a.AddDuplicates(5)
	assert.Equal(t, 5.0, value(t, a, "uiregistry_duplicates_dropped_total", ""))
	assert.Equal(t, 0.0, value(t, b, "uiregistry_duplicates_dropped_total", ""))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.AddFiles("ok", 1)
		m.AddComponents("barrel", 1)
		m.AddDiagnostic("unresolved_export")
		m.ObservePhase("total", time.Second)
		m.SetTokens(1)
		m.ScanDone(nil)
	})
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestWriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.AddFiles("ok", 2)
	path := filepath.Join(t.TempDir(), "scan.prom")

	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `uiregistry_files_total{status="ok"} 2`)
}
