package scanner

import (
	"sort"

	"github.com/gnana997/uiregistry/pkg/registry"
)

// MergeTyped fuses a type-aware analysis into a structural descriptor of
// the same name.
//
// Rules:
//   - Props are the union of both lists, structural order first.
//   - Type-aware type, required, default and description win when present.
//   - Structural allowed values are kept unless the structural prop has none.
//   - Props only the type-aware analysis found are appended.
//   - Token ids are unioned.
//
// A nil typed analysis returns the structural descriptor unchanged.
func MergeTyped(structural registry.Component, typed *TypedComponent) registry.Component {
	if typed == nil {
		return structural
	}
	out := structural
	out.Props = mergeTypedProps(structural.Props, typed.Props)
	out.Provenance.Analyzer = registry.AnalyzerMerged

	if len(typed.Tokens) > 0 {
		set := make(map[string]bool, len(out.TokensUsed)+len(typed.Tokens))
		for _, id := range out.TokensUsed {
			set[id] = true
		}
		for _, id := range typed.Tokens {
			set[id] = true
		}
		out.TokensUsed = make([]string, 0, len(set))
		for id := range set {
			out.TokensUsed = append(out.TokensUsed, id)
		}
		sort.Strings(out.TokensUsed)
	}
	return out
}

func mergeTypedProps(base []registry.Prop, typed []TypedProp) []registry.Prop {
	out := make([]registry.Prop, len(base), len(base)+len(typed))
	copy(out, base)
	if len(typed) == 0 {
		return out
	}

	byName := make(map[string]int, len(out))
	for i, p := range out {
		byName[p.Name] = i
	}

	for _, tp := range typed {
		idx, exists := byName[tp.Name]
		if !exists {
			out = append(out, registry.Prop{
				Name:          tp.Name,
				Type:          simplifyTypedType(tp.Type),
				Required:      tp.Required,
				Default:       tp.DefaultValue,
				Description:   tp.Description,
				AllowedValues: tp.AllowedValues,
				Deprecated:    tp.Deprecated,
				Origin:        registry.OriginTypeAnalysis,
			})
			byName[tp.Name] = len(out) - 1
			continue
		}

		p := &out[idx]
		if t := simplifyTypedType(tp.Type); t != "" {
			p.Type = t
		}
		p.Required = tp.Required
		if tp.DefaultValue != "" {
			p.Default = tp.DefaultValue
		}
		if tp.Description != "" {
			p.Description = tp.Description
		}
		if len(p.AllowedValues) == 0 && len(tp.AllowedValues) > 0 {
			p.AllowedValues = tp.AllowedValues
		}
		if tp.Deprecated {
			p.Deprecated = true
		}
		p.Origin = registry.OriginTypeAnalysis
	}
	return out
}

// simplifyTypedType converts checker type names to the simplified names
// structural extraction produces.
func simplifyTypedType(t string) string {
	switch t {
	case "enum":
		// enums come with allowed values
		return "string"
	case "() => void", "(...args: any[]) => any":
		return "function"
	case "React.ReactNode":
		return "ReactNode"
	case "React.ReactElement":
		return "ReactElement"
	}
	return t
}
