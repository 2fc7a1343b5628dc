package registry

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON string

var schemaLoader = gojsonschema.NewStringLoader(schemaJSON)

var validDiagnosticKinds = map[DiagnosticKind]bool{
	DiagParseError:        true,
	DiagUnresolvedExport:  true,
	DiagMalformedVariants: true,
	DiagTypeAnalysis:      true,
}

// IsComponentName reports whether name is an upper-camel-case identifier.
func IsComponentName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if i == 0 {
			if !unicode.IsUpper(r) {
				return false
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	// SCREAMING_CASE constants are not components
	return strings.ToUpper(name) != name || len(name) == 1
}

// Validate checks the registry for internal consistency.
// Returns a slice of validation errors (empty slice if valid).
func (r *Registry) Validate() []error {
	var errs []error

	if r.Name == "" {
		errs = append(errs, fmt.Errorf("registry name is required"))
	}

	seen := make(map[string]bool, len(r.Components))
	for i, comp := range r.Components {
		if comp.Name == "" {
			errs = append(errs, fmt.Errorf("components[%d]: name is required", i))
			continue
		}
		if !IsComponentName(comp.Name) {
			errs = append(errs, fmt.Errorf("component %q: name is not upper camel case", comp.Name))
		}
		if seen[comp.Name] {
			errs = append(errs, fmt.Errorf("component %q: duplicate component name", comp.Name))
			continue
		}
		seen[comp.Name] = true

		if comp.SourceFile == "" {
			errs = append(errs, fmt.Errorf("component %q: source_file is required", comp.Name))
		}
		for j, prop := range comp.Props {
			if prop.Name == "" {
				errs = append(errs, fmt.Errorf("component %q props[%d]: name is required", comp.Name, j))
			}
		}
		for group, option := range comp.DefaultVariants {
			opts, ok := comp.Variants.Get(group)
			if !ok {
				errs = append(errs, fmt.Errorf("component %q: default variant for unknown group %q", comp.Name, group))
				continue
			}
			if !slices.Contains(opts, option) {
				errs = append(errs, fmt.Errorf("component %q: default variant %q not in group %q", comp.Name, option, group))
			}
		}
	}

	tokenIDs := make(map[string]bool, len(r.Tokens))
	for i, tok := range r.Tokens {
		if tok.ID == "" {
			errs = append(errs, fmt.Errorf("tokens[%d]: id is required", i))
			continue
		}
		if tokenIDs[tok.ID] {
			errs = append(errs, fmt.Errorf("token %q: duplicate token id", tok.ID))
		}
		tokenIDs[tok.ID] = true
	}

	for i, d := range r.Diagnostics {
		if !validDiagnosticKinds[d.Kind] {
			errs = append(errs, fmt.Errorf("diagnostics[%d]: unknown kind %q", i, d.Kind))
		}
	}

	return errs
}

// Save writes the registry as indented JSON. The file is written to a
// temporary sibling first and renamed into place.
func (r *Registry) Save(path string) error {
	data, err := r.MarshalIndent()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move registry into place: %w", err)
	}
	return nil
}

// MarshalIndent renders the registry as indented JSON with a trailing newline.
func (r *Registry) MarshalIndent() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal registry: %w", err)
	}
	return append(data, '\n'), nil
}

// Load reads a registry JSON file, validates it, and returns it.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes checks raw JSON against the registry schema, decodes it and
// runs Validate.
func LoadFromBytes(data []byte) (*Registry, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse registry JSON: %w", err)
	}
	if !result.Valid() {
		errs := make([]error, 0, len(result.Errors()))
		for _, re := range result.Errors() {
			errs = append(errs, errors.New(re.String()))
		}
		return nil, fmt.Errorf("registry schema validation failed: %w", errors.Join(errs...))
	}

	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to decode registry JSON: %w", err)
	}
	if errs := reg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("registry validation failed: %w", errors.Join(errs...))
	}
	return &reg, nil
}
