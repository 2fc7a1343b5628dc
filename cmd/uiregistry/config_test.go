package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/uiregistry/pkg/scanner"
)

func TestLoadProjectConfig_Missing(t *testing.T) {
	cfg, err := loadProjectConfig(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadProjectConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: acme-ui
output: out/registry.json
include: ["src/**/*.tsx"]
exclude: ["src/legacy/**"]
max_depth: 4
workers: 2
type_analyzer: node docgen.js
metrics_file: metrics.prom
`), 0o644))

	cfg, err := loadProjectConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "acme-ui", cfg.Name)
	assert.Equal(t, "out/registry.json", cfg.Output)
	assert.Equal(t, []string{"src/**/*.tsx"}, cfg.Include)
	assert.Equal(t, []string{"src/legacy/**"}, cfg.Exclude)
	assert.Equal(t, 4, cfg.MaxDepth)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "node docgen.js", cfg.TypeAnalyzer)
	assert.Equal(t, "metrics.prom", cfg.MetricsFile)
}

func TestLoadProjectConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_depth: [oops"), 0o644))

	_, err := loadProjectConfig(path)
	assert.Error(t, err)
}

func TestResolveSettings_Defaults(t *testing.T) {
	s := resolveSettings("/proj", nil, scanFlags{})

	defaults := scanner.DefaultScanConfig()
	assert.Equal(t, "/proj", s.Root)
	assert.Empty(t, s.Name)
	assert.Equal(t, filepath.Join("/proj", defaultOutput), s.Output)
	assert.Empty(t, s.MetricsFile)
	assert.Empty(t, s.TypeAnalyzer)
	assert.Equal(t, defaults.Include, s.Scan.Include)
	assert.Equal(t, defaults.Exclude, s.Scan.Exclude)
	assert.Equal(t, scanner.DefaultMaxDepth, s.Scan.MaxDepth)
	assert.Zero(t, s.Scan.Workers)
}

func TestResolveSettings_ConfigOverridesDefaults(t *testing.T) {
	cfg := &ProjectConfig{
		Name:        "acme-ui",
		Output:      "out/registry.json",
		Include:     []string{"src/**/*.tsx"},
		Exclude:     []string{"src/legacy/**"},
		MaxDepth:    4,
		Workers:     2,
		MetricsFile: "/tmp/metrics.prom",
	}
	s := resolveSettings("/proj", cfg, scanFlags{})

	assert.Equal(t, "acme-ui", s.Name)
	assert.Equal(t, filepath.Join("/proj", "out/registry.json"), s.Output)
	assert.Equal(t, "/tmp/metrics.prom", s.MetricsFile)
	assert.Equal(t, []string{"src/**/*.tsx"}, s.Scan.Include)
	assert.Contains(t, s.Scan.Exclude, "node_modules/**", "config excludes extend the defaults")
	assert.Contains(t, s.Scan.Exclude, "src/legacy/**")
	assert.Equal(t, 4, s.Scan.MaxDepth)
	assert.Equal(t, 2, s.Scan.Workers)
}

func TestResolveSettings_FlagsOverrideConfig(t *testing.T) {
	cfg := &ProjectConfig{Name: "acme-ui", Output: "out/registry.json", MaxDepth: 4, TypeAnalyzer: "node a.js"}
	flags := scanFlags{
		name:         "override",
		output:       "registry.json",
		maxDepth:     7,
		workers:      3,
		typeAnalyzer: "node b.js",
		metricsFile:  "m.prom",
	}
	s := resolveSettings("/proj", cfg, flags)

	assert.Equal(t, "override", s.Name)
	assert.Equal(t, "registry.json", s.Output, "flag paths are used as given")
	assert.Equal(t, "m.prom", s.MetricsFile)
	assert.Equal(t, 7, s.Scan.MaxDepth)
	assert.Equal(t, 3, s.Scan.Workers)
	assert.Equal(t, "node b.js", s.TypeAnalyzer)
}

func TestLoadSettings_ReadsProjectConfig(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".uiregistry"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, defaultConfigPath), []byte("name: from-config\n"), 0o644))

	s, err := loadSettings(root, scanFlags{})
	require.NoError(t, err)
	assert.Equal(t, "from-config", s.Name)
	assert.Equal(t, filepath.Join(root, defaultOutput), s.Output)
}
