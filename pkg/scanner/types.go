// Package scanner turns TSX/JSX component sources into a design-system
// registry. It classifies exported components, follows barrel re-exports,
// extracts variant and token usage and assembles the final document.
package scanner

import (
	"errors"
	"time"

	"github.com/gnana997/uiregistry/pkg/registry"
)

var (
	// ErrRootUnreadable is returned when the scan root does not exist, is not
	// a directory or cannot be listed.
	ErrRootUnreadable = errors.New("scan root is not a readable directory")
	// ErrNoSourceFiles is returned when discovery finds no component sources.
	ErrNoSourceFiles = errors.New("no component source files found")
)

// DefaultMaxDepth bounds how many barrel hops the resolver follows.
const DefaultMaxDepth = 10

// ScanConfig configures file discovery and resolution.
type ScanConfig struct {
	// Include glob patterns for file matching.
	Include []string
	// Exclude glob patterns, matched against root-relative slash paths.
	Exclude []string
	// MaxDepth bounds re-export resolution. Zero means DefaultMaxDepth.
	MaxDepth int
	// Workers overrides the extraction pool size. Zero picks one from the
	// CPU count.
	Workers int
}

// DefaultScanConfig returns the default scan configuration with
// scan-specific exclusions for test, story, and mock files.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		Include: []string{
			"**/*.ts",
			"**/*.tsx",
			"**/*.js",
			"**/*.jsx",
		},
		Exclude: []string{
			"node_modules/**",
			".git/**",
			"dist/**",
			"build/**",
			".next/**",
			"coverage/**",
			"out/**",
			".vscode/**",
			".uiregistry/**",
			"**/*.d.ts",
			"**/*.test.*",
			"**/*.spec.*",
			"**/*.stories.*",
			"**/*.story.*",
			"__tests__/**",
			"**/__tests__/**",
			"**/__mocks__/**",
			"**/__snapshots__/**",
		},
		MaxDepth: DefaultMaxDepth,
	}
}

func (c ScanConfig) maxDepth() int {
	if c.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return c.MaxDepth
}

// Candidate is one exported component found by the classifier.
type Candidate struct {
	// Name is the exposed name. Anonymous default exports take a name
	// derived from the file.
	Name string
	// LocalName is the declaration's identifier, empty for anonymous
	// default exports.
	LocalName       string
	ExportKind      registry.ExportKind
	DeclarationKind registry.DeclarationKind
	// Wrappers lists composition helpers outermost first.
	Wrappers []string
	Line     uint
}

// ReExportEdge is one re-export statement in a barrel file.
type ReExportEdge struct {
	// Source is the module specifier as written, e.g. "./button".
	Source string
	// Imported is the name looked up in the target module: a symbol,
	// "default", or empty for wildcards.
	Imported string
	// Exported is the name the barrel exposes, empty for wildcards.
	Exported string
	Wildcard bool
	Line     uint
}

// ComponentFacts is everything the per-file analysis learned about one
// candidate. It holds no syntax tree references and can be cached.
type ComponentFacts struct {
	Candidate
	Props           []registry.Prop
	Variants        registry.Variants
	DefaultVariants map[string]string
	// Classes are the utility classes the component and its associated
	// variant call use, in first-seen order.
	Classes     []string
	Composition []string
}

// FileAnalysis is the cached result of analyzing one source file.
type FileAnalysis struct {
	Path        string
	Components  []ComponentFacts
	Edges       []ReExportEdge
	Diagnostics []registry.Diagnostic
	// Failed is set when the file could not be read or parsed; it then
	// contributes no components or edges.
	Failed bool
}

// Component returns the facts for an exposed name.
func (a *FileAnalysis) Component(name string) (*ComponentFacts, bool) {
	for i := range a.Components {
		if a.Components[i].Name == name {
			return &a.Components[i], true
		}
	}
	return nil, false
}

// DefaultComponent returns the component exposed as the file's default
// export.
func (a *FileAnalysis) DefaultComponent() (*ComponentFacts, bool) {
	for i := range a.Components {
		if a.Components[i].ExportKind == registry.ExportDefault {
			return &a.Components[i], true
		}
	}
	return nil, false
}

// ScanStats holds timing and count information for a scan run.
type ScanStats struct {
	FilesDiscovered     int
	FilesAnalyzed       int
	FilesFailed         int
	FilesParsed         int64
	CanonicalComponents int
	BarrelComponents    int
	DuplicatesDropped   int
	TokensMatched       int
	Diagnostics         int
	TypedComponents     int

	DiscoveryTimeMs  int64
	AnalysisTimeMs   int64
	ResolutionTimeMs int64
	TypeAnalysisMs   int64
	AssemblyTimeMs   int64
	TotalTimeMs      int64
}

// Result is the output of one scan.
type Result struct {
	Registry *registry.Registry
	Stats    ScanStats
}

func msSince(t time.Time) int64 {
	return time.Since(t).Milliseconds()
}
