package theme

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// ConfigFileName is the theme configuration file looked up at the project
// root.
const ConfigFileName = "components.json"

// projectMarkers identify a project root when walking up from a directory.
var projectMarkers = []string{"package.json", ConfigFileName}

// wellKnownStylesheets are tried in order when the config does not name a
// stylesheet.
var wellKnownStylesheets = []string{
	"app/globals.css",
	"src/app/globals.css",
	"styles/globals.css",
	"src/styles/globals.css",
	"src/index.css",
	"src/globals.css",
	"app/global.css",
}

// stylesheetFallbackGlob is searched last, relative to the project root.
const stylesheetFallbackGlob = "{app,src,styles}/**/global{s,}.css"

// Config is the subset of components.json the theme loader understands.
type Config struct {
	Style    string         `json:"style"`
	Tailwind TailwindConfig `json:"tailwind"`
}

// TailwindConfig is the "tailwind" block of components.json.
type TailwindConfig struct {
	Config       string `json:"config"`
	CSS          string `json:"css"`
	BaseColor    string `json:"baseColor"`
	CSSVariables *bool  `json:"cssVariables"`
	Prefix       string `json:"prefix"`
}

// UsesCSSVariables reports the cssVariables flag, defaulting to true.
func (c *Config) UsesCSSVariables() bool {
	if c == nil || c.Tailwind.CSSVariables == nil {
		return true
	}
	return *c.Tailwind.CSSVariables
}

// FindProjectRoot walks up from start to the nearest directory holding a
// project marker file. When no marker is found it returns fallback, or
// start itself when fallback is empty.
func FindProjectRoot(start, fallback string) string {
	abs, err := filepath.Abs(start)
	if err != nil {
		return start
	}
	dir := abs
	for {
		for _, marker := range projectMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	if fallback != "" {
		if f, err := filepath.Abs(fallback); err == nil {
			return f
		}
	}
	return abs
}

// loadConfig reads components.json from root. A missing file yields
// (nil, "", nil).
func loadConfig(root string) (*Config, string, error) {
	path := filepath.Join(root, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("failed to read %s: %w", ConfigFileName, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, path, nil
}

// findStylesheet returns the global stylesheet for root, or "" when none
// exists.
func findStylesheet(root string, cfg *Config) string {
	if cfg != nil && cfg.Tailwind.CSS != "" {
		p := cfg.Tailwind.CSS
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, p)
		}
		if isFile(p) {
			return p
		}
	}
	for _, rel := range wellKnownStylesheets {
		p := filepath.Join(root, rel)
		if isFile(p) {
			return p
		}
	}

	matches, err := doublestar.Glob(os.DirFS(root), stylesheetFallbackGlob, doublestar.WithFilesOnly())
	if err != nil || len(matches) == 0 {
		return ""
	}
	return filepath.Join(root, filepath.FromSlash(matches[0]))
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
