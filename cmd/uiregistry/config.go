package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gnana997/uiregistry/pkg/scanner"
)

const (
	defaultConfigPath = ".uiregistry/config.yaml"
	defaultOutput     = ".uiregistry/registry.json"

	defaultTypeAnalyzerTimeout = 2 * time.Minute
)

// ProjectConfig holds the contents of .uiregistry/config.yaml.
type ProjectConfig struct {
	Name   string `yaml:"name"`
	Output string `yaml:"output"`
	// Include replaces the default include globs when set.
	Include []string `yaml:"include"`
	// Exclude is appended to the default exclude globs.
	Exclude      []string `yaml:"exclude"`
	MaxDepth     int      `yaml:"max_depth"`
	Workers      int      `yaml:"workers"`
	TypeAnalyzer string   `yaml:"type_analyzer"`
	MetricsFile  string   `yaml:"metrics_file"`
}

// loadProjectConfig reads a project config file.
// Returns nil (no error) if the file does not exist.
func loadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// scanFlags holds command-line overrides. Zero values mean "not set".
type scanFlags struct {
	name         string
	output       string
	maxDepth     int
	workers      int
	typeAnalyzer string
	metricsFile  string
}

// settings is the resolved configuration for one command run.
type settings struct {
	Root         string
	Name         string
	Output       string
	Scan         scanner.ScanConfig
	TypeAnalyzer string
	MetricsFile  string
}

// resolveSettings applies the fallback chain for every setting:
//  1. Explicit flag value
//  2. Value from the project config
//  3. Default
//
// Paths that come from the config or defaults are relative to root; flag
// paths are used as given.
func resolveSettings(root string, cfg *ProjectConfig, flags scanFlags) settings {
	if cfg == nil {
		cfg = &ProjectConfig{}
	}
	s := settings{
		Root:         root,
		Name:         firstNonEmpty(flags.name, cfg.Name),
		TypeAnalyzer: firstNonEmpty(flags.typeAnalyzer, cfg.TypeAnalyzer),
		Scan:         scanner.DefaultScanConfig(),
	}

	switch {
	case flags.output != "":
		s.Output = flags.output
	case cfg.Output != "":
		s.Output = underRoot(root, cfg.Output)
	default:
		s.Output = underRoot(root, defaultOutput)
	}

	switch {
	case flags.metricsFile != "":
		s.MetricsFile = flags.metricsFile
	case cfg.MetricsFile != "":
		s.MetricsFile = underRoot(root, cfg.MetricsFile)
	}

	if len(cfg.Include) > 0 {
		s.Scan.Include = cfg.Include
	}
	s.Scan.Exclude = append(s.Scan.Exclude, cfg.Exclude...)
	s.Scan.MaxDepth = firstPositive(flags.maxDepth, cfg.MaxDepth, scanner.DefaultMaxDepth)
	s.Scan.Workers = firstPositive(flags.workers, cfg.Workers, 0)
	return s
}

// loadSettings reads the project config for root and resolves it against
// flags.
func loadSettings(root string, flags scanFlags) (settings, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return settings{}, fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	path := configPath
	if path == "" {
		path = filepath.Join(abs, defaultConfigPath)
	}
	cfg, err := loadProjectConfig(path)
	if err != nil {
		return settings{}, err
	}
	return resolveSettings(abs, cfg, flags), nil
}

func underRoot(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
