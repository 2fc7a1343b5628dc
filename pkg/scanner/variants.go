package scanner

import (
	"fmt"
	"slices"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uiregistry/pkg/registry"
)

// VariantCall is a style-variant helper call such as cva(...) or tv(...):
// any call whose configuration object carries a "variants" map.
type VariantCall struct {
	// VarName is the variable the call is assigned to, if any.
	VarName  string
	Callee   string
	Variants registry.Variants
	Defaults map[string]string
	// Classes are every utility class named in the call's string values.
	Classes []string
	Line    uint
}

// ExtractVariantCalls finds variant helper calls anywhere in a file.
// Malformed blocks are skipped and reported; the rest of the file is
// still processed.
func ExtractVariantCalls(root *ts.Node, source []byte, file string) ([]VariantCall, []registry.Diagnostic) {
	var calls []VariantCall
	var diags []registry.Diagnostic

	walk(root, func(node *ts.Node) bool {
		if node.Kind() != "call_expression" {
			return true
		}
		config := variantConfig(node, source)
		if config == nil {
			return true
		}
		call := VariantCall{
			VarName:  enclosingVariableName(node, source),
			Callee:   calleeName(node, source),
			Defaults: map[string]string{},
			Line:     lineOf(node),
		}
		symbol := call.VarName
		if symbol == "" {
			symbol = call.Callee
		}

		for _, pair := range namedChildren(config) {
			if pair.Kind() != "pair" {
				continue
			}
			value := pair.ChildByFieldName("value")
			switch keyText(pair.ChildByFieldName("key"), source) {
			case "variants":
				groups, err := parseVariantGroups(value, source)
				if err != nil {
					diags = append(diags, registry.Diagnostic{
						Kind:    registry.DiagMalformedVariants,
						File:    file,
						Symbol:  symbol,
						Message: fmt.Sprintf("line %d: %v", lineOf(pair), err),
					})
					continue
				}
				call.Variants = groups
			case "defaultVariants":
				defaults, err := parseDefaultVariants(value, source)
				if err != nil {
					diags = append(diags, registry.Diagnostic{
						Kind:    registry.DiagMalformedVariants,
						File:    file,
						Symbol:  symbol,
						Message: fmt.Sprintf("line %d: %v", lineOf(pair), err),
					})
					continue
				}
				call.Defaults = defaults
			}
		}

		// defaults naming unknown groups or options are dropped
		for group, opt := range call.Defaults {
			opts, ok := call.Variants.Get(group)
			if !ok || !slices.Contains(opts, opt) {
				delete(call.Defaults, group)
			}
		}

		call.Classes = splitClasses(stringValues(node.ChildByFieldName("arguments"), source))
		calls = append(calls, call)
		// nested calls inside a variant config are part of this call
		return false
	})
	return calls, diags
}

// variantConfig returns the first object argument holding a "variants" key.
func variantConfig(call *ts.Node, source []byte) *ts.Node {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	for _, arg := range namedChildren(args) {
		if arg.Kind() != "object" {
			continue
		}
		for _, pair := range namedChildren(arg) {
			if pair.Kind() == "pair" && keyText(pair.ChildByFieldName("key"), source) == "variants" {
				return arg
			}
		}
	}
	return nil
}

// enclosingVariableName walks up from a call to the variable declaration
// holding it (e.g. "buttonVariants").
func enclosingVariableName(call *ts.Node, source []byte) string {
	node := call.Parent()
	for node != nil {
		switch node.Kind() {
		case "variable_declarator":
			if name := node.ChildByFieldName("name"); name != nil {
				return name.Utf8Text(source)
			}
			return ""
		case "lexical_declaration", "variable_declaration", "export_statement", "program",
			"statement_block", "arguments":
			return ""
		}
		node = node.Parent()
	}
	return ""
}

// parseVariantGroups reads a variants object. Group and option order
// follows the source.
func parseVariantGroups(obj *ts.Node, source []byte) (registry.Variants, error) {
	if obj == nil || obj.Kind() != "object" {
		return nil, fmt.Errorf("variants is not an object literal")
	}
	var groups registry.Variants
	for _, pair := range namedChildren(obj) {
		if pair.Kind() != "pair" {
			// spreads and shorthand properties cannot be read statically
			continue
		}
		key := pair.ChildByFieldName("key")
		value := pair.ChildByFieldName("value")
		if key == nil || value == nil {
			continue
		}
		name := keyText(key, source)
		if value.Kind() != "object" {
			return nil, fmt.Errorf("variant group %q is not an object literal", name)
		}
		group := registry.VariantGroup{Name: name}
		for _, opt := range namedChildren(value) {
			if opt.Kind() != "pair" {
				continue
			}
			if k := opt.ChildByFieldName("key"); k != nil {
				group.Options = append(group.Options, keyText(k, source))
			}
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func parseDefaultVariants(obj *ts.Node, source []byte) (map[string]string, error) {
	if obj == nil || obj.Kind() != "object" {
		return nil, fmt.Errorf("defaultVariants is not an object literal")
	}
	defaults := make(map[string]string)
	for _, pair := range namedChildren(obj) {
		if pair.Kind() != "pair" {
			continue
		}
		key := pair.ChildByFieldName("key")
		value := pair.ChildByFieldName("value")
		if key == nil || value == nil {
			continue
		}
		defaults[keyText(key, source)] = unquoteString(value.Utf8Text(source))
	}
	return defaults, nil
}

// stringValues collects the text of string literals under node, skipping
// object keys.
func stringValues(node *ts.Node, source []byte) []string {
	var out []string
	walk(node, func(n *ts.Node) bool {
		switch n.Kind() {
		case "pair":
			out = append(out, stringValues(n.ChildByFieldName("value"), source)...)
			return false
		case "string", "template_string":
			out = append(out, literalText(n, source))
			return false
		}
		return true
	})
	return out
}

// literalText returns the static text of a string or template literal.
// Template substitutions are blanked out.
func literalText(n *ts.Node, source []byte) string {
	text := n.Utf8Text(source)
	if n.Kind() == "template_string" {
		for i := uint(0); i < n.ChildCount(); i++ {
			child := n.Child(i)
			if child.Kind() == "template_substitution" {
				text = strings.Replace(text, child.Utf8Text(source), " ", 1)
			}
		}
	}
	return unquoteString(text)
}

// splitClasses splits class strings on whitespace and keeps the first
// occurrence of each class.
func splitClasses(values []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range values {
		for _, class := range strings.Fields(v) {
			if seen[class] || !looksLikeClass(class) {
				continue
			}
			seen[class] = true
			out = append(out, class)
		}
	}
	return out
}

// looksLikeClass filters out strings that are clearly not utility classes,
// like URLs or sentences with punctuation.
func looksLikeClass(s string) bool {
	if strings.ContainsAny(s, "{};'\"") || strings.Contains(s, "://") {
		return false
	}
	return s[0] != '.' && s[0] != '#'
}

// associateVariantCall picks the variant call a component uses: first an
// explicit VariantProps<typeof x> reference, then a call of x inside the
// component body, then the only call in a file with a single component.
func associateVariantCall(calls []VariantCall, propsRef string, fn *ts.Node, source []byte, singleComponent bool) *VariantCall {
	if len(calls) == 0 {
		return nil
	}
	byName := make(map[string]*VariantCall, len(calls))
	for i := range calls {
		if calls[i].VarName != "" {
			byName[calls[i].VarName] = &calls[i]
		}
	}
	if propsRef != "" {
		if call, ok := byName[propsRef]; ok {
			return call
		}
	}
	if fn != nil {
		var found *VariantCall
		walk(fn, func(n *ts.Node) bool {
			if found != nil {
				return false
			}
			if n.Kind() == "call_expression" {
				if call, ok := byName[calleeName(n, source)]; ok {
					found = call
					return false
				}
			}
			return true
		})
		if found != nil {
			return found
		}
	}
	if singleComponent && len(calls) == 1 {
		return &calls[0]
	}
	return nil
}

// variantProps projects variant groups onto props with allowed values and
// defaults.
func variantProps(v *VariantCall) []registry.Prop {
	props := make([]registry.Prop, 0, len(v.Variants))
	for _, g := range v.Variants {
		props = append(props, registry.Prop{
			Name:          g.Name,
			Type:          "string",
			AllowedValues: append([]string(nil), g.Options...),
			Default:       v.Defaults[g.Name],
			Origin:        registry.OriginStructural,
		})
	}
	return props
}
