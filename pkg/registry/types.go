package registry

import "time"

// SchemaVersion is written into every registry document.
const SchemaVersion = "1"

// Registry is the design-system document produced by one scan.
type Registry struct {
	Name        string        `json:"name"`
	Version     string        `json:"version"`
	GeneratedAt time.Time     `json:"generated_at"`
	Root        string        `json:"root"`
	Components  []Component   `json:"components"`
	Tokens      []Token       `json:"tokens"`
	Theme       *ThemeSummary `json:"theme,omitempty"`
	Diagnostics []Diagnostic  `json:"diagnostics,omitempty"`
}

// Component describes one exposed UI component.
type Component struct {
	Name            string            `json:"name"`
	SourceFile      string            `json:"source_file"`
	Category        string            `json:"category"`
	Props           []Prop            `json:"props"`
	Variants        Variants          `json:"variants,omitempty"`
	DefaultVariants map[string]string `json:"default_variants,omitempty"`
	TokensUsed      []string          `json:"tokens_used,omitempty"`
	Composition     []string          `json:"composition,omitempty"`
	Provenance      Provenance        `json:"provenance"`

	// Theme is only set when the project has a theme configuration or
	// stylesheet and the component uses classes backed by theme variables.
	Theme []ThemeUsage `json:"theme,omitempty"`
}

// Prop describes a component property.
type Prop struct {
	Name          string     `json:"name"`
	Type          string     `json:"type"`
	Required      bool       `json:"required"`
	Default       string     `json:"default,omitempty"`
	Description   string     `json:"description,omitempty"`
	AllowedValues []string   `json:"allowed_values,omitempty"`
	Deprecated    bool       `json:"deprecated,omitempty"`
	Origin        PropOrigin `json:"origin"`
}

// PropOrigin names the analysis a prop's fields came from.
type PropOrigin string

const (
	OriginStructural   PropOrigin = "structural"
	OriginTypeAnalysis PropOrigin = "type-analysis"
)

// DeclarationKind is the syntactic shape a component was declared with.
type DeclarationKind string

const (
	DeclFunction   DeclarationKind = "function_declaration"
	DeclArrow      DeclarationKind = "arrow_function"
	DeclFunctionEx DeclarationKind = "function_expression"
)

// ExportKind records whether the exposed name came from a named or default
// export.
type ExportKind string

const (
	ExportNamed   ExportKind = "named"
	ExportDefault ExportKind = "default"
)

// Analyzer records which analyses contributed to a descriptor.
type Analyzer string

const (
	AnalyzerStructural Analyzer = "structural"
	AnalyzerMerged     Analyzer = "merged"
)

// Provenance explains where a descriptor came from.
type Provenance struct {
	DeclarationKind DeclarationKind `json:"declaration_kind"`
	// Wrappers lists composition helpers outermost first, e.g.
	// ["React.memo", "React.forwardRef"].
	Wrappers   []string   `json:"wrappers,omitempty"`
	ExportKind ExportKind `json:"export_kind"`
	Canonical  bool       `json:"canonical"`
	// ReExportedFrom is the barrel file the name was exposed through.
	ReExportedFrom  string `json:"reexported_from,omitempty"`
	ResolutionDepth int    `json:"resolution_depth,omitempty"`
	// LocalName is the declaration's own name when it differs from Name.
	LocalName string   `json:"local_name,omitempty"`
	Analyzer  Analyzer `json:"analyzer"`
}

// Token is a theme-independent design value identifier.
type Token struct {
	ID       string   `json:"id"`
	Category string   `json:"category"`
	Classes  []string `json:"classes"`
	Variable string   `json:"variable,omitempty"`
	Light    string   `json:"light,omitempty"`
	Dark     string   `json:"dark,omitempty"`
	// Inferred tokens came from a structural rule rather than the explicit
	// class table.
	Inferred bool `json:"inferred,omitempty"`
	// Verified is set when a theme variable backs the token.
	Verified bool     `json:"verified,omitempty"`
	UsedBy   []string `json:"used_by,omitempty"`
}

// ThemeUsage annotates one class of a component with its resolved values.
type ThemeUsage struct {
	Class    string `json:"class"`
	Variable string `json:"variable"`
	Light    string `json:"light,omitempty"`
	Dark     string `json:"dark,omitempty"`
}

// ThemeSummary describes the project theme the registry was resolved against.
type ThemeSummary struct {
	Style            string          `json:"style,omitempty"`
	CSSVariables     bool            `json:"css_variables"`
	BaseColor        string          `json:"base_color,omitempty"`
	Prefix           string          `json:"prefix,omitempty"`
	NamingConvention string          `json:"naming_convention"`
	ConfigFile       string          `json:"config_file,omitempty"`
	Stylesheet       string          `json:"stylesheet,omitempty"`
	Variables        []ThemeVariable `json:"variables,omitempty"`
}

// ThemeVariable is one CSS custom property with its per-mode values.
type ThemeVariable struct {
	Name  string `json:"name"`
	Light string `json:"light,omitempty"`
	Dark  string `json:"dark,omitempty"`
}

// DiagnosticKind classifies non-fatal scan problems.
type DiagnosticKind string

const (
	DiagParseError        DiagnosticKind = "parse_error"
	DiagUnresolvedExport  DiagnosticKind = "unresolved_export"
	DiagMalformedVariants DiagnosticKind = "malformed_variants"
	DiagTypeAnalysis      DiagnosticKind = "type_analysis"
)

// Diagnostic records a per-file or per-edge problem that did not stop the
// scan.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	File    string         `json:"file"`
	Symbol  string         `json:"symbol,omitempty"`
	Message string         `json:"message"`
}
