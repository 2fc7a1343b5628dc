package scanner

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uiregistry/pkg/registry"
)

// maxTypeDepth bounds how far props types are followed through aliases,
// extends clauses and intersections.
const maxTypeDepth = 8

// typeDecls maps a type name to its interface or type alias declaration.
type typeDecls map[string]*ts.Node

// collectTypeDecls indexes the top-level interface and type alias
// declarations of a file.
func collectTypeDecls(root *ts.Node, source []byte) typeDecls {
	decls := make(typeDecls)
	for _, stmt := range namedChildren(root) {
		node := stmt
		if stmt.Kind() == "export_statement" {
			node = stmt.ChildByFieldName("declaration")
			if node == nil {
				continue
			}
		}
		switch node.Kind() {
		case "interface_declaration", "type_alias_declaration":
			if name := node.ChildByFieldName("name"); name != nil {
				decls[name.Utf8Text(source)] = node
			}
		}
	}
	return decls
}

// propsExtraction is the structural prop information of one component.
type propsExtraction struct {
	props []registry.Prop
	// variantRef is x from a VariantProps<typeof x> reference.
	variantRef string
}

type propsExtractor struct {
	source []byte
	types  typeDecls
	seen   map[string]bool
	result *propsExtraction
	index  map[string]int
}

// extractProps reads a component's props from its first parameter: the
// declared type (local interface, type alias, inline object or
// intersection), destructuring defaults and destructured names.
func extractProps(fn *ts.Node, types typeDecls, source []byte) *propsExtraction {
	x := &propsExtractor{
		source: source,
		types:  types,
		seen:   make(map[string]bool),
		result: &propsExtraction{},
		index:  make(map[string]int),
	}
	if fn == nil {
		return x.result
	}

	param := firstParameter(fn)
	typeNode := parameterType(param)
	if typeNode == nil {
		typeNode = wrapperPropsType(fn)
	}
	x.fromType(typeNode, 0)

	for _, d := range destructuredProps(param, source) {
		if i, ok := x.index[d.name]; ok {
			if d.defaultValue != "" && x.result.props[i].Default == "" {
				x.result.props[i].Default = d.defaultValue
			}
			continue
		}
		x.add(registry.Prop{
			Name:    d.name,
			Type:    "unknown",
			Default: d.defaultValue,
			Origin:  registry.OriginStructural,
		})
	}
	return x.result
}

func (x *propsExtractor) add(p registry.Prop) {
	if _, ok := x.index[p.Name]; ok {
		return
	}
	x.index[p.Name] = len(x.result.props)
	x.result.props = append(x.result.props, p)
}

// fromType collects props from a type expression.
func (x *propsExtractor) fromType(node *ts.Node, depth int) {
	if node == nil || depth > maxTypeDepth {
		return
	}
	switch node.Kind() {
	case "type_annotation":
		for _, child := range namedChildren(node) {
			x.fromType(child, depth)
		}
	case "type_identifier":
		x.fromTypeName(node.Utf8Text(x.source), depth)
	case "object_type", "interface_body":
		x.fromBody(node)
	case "intersection_type", "parenthesized_type":
		for _, child := range namedChildren(node) {
			x.fromType(child, depth+1)
		}
	case "generic_type":
		if ref := variantPropsRef(node, x.source); ref != "" {
			if x.result.variantRef == "" {
				x.result.variantRef = ref
			}
			return
		}
		// Omit<ButtonProps, "x"> and friends: props of the first argument
		name := node.ChildByFieldName("name")
		if name != nil && x.types[name.Utf8Text(x.source)] == nil {
			if args := findChildByKind(node, "type_arguments"); args != nil {
				if first := namedChildren(args); len(first) > 0 {
					x.fromType(first[0], depth+1)
				}
			}
		}
	}
}

func (x *propsExtractor) fromTypeName(name string, depth int) {
	decl, ok := x.types[name]
	if !ok || x.seen[name] {
		return
	}
	x.seen[name] = true

	switch decl.Kind() {
	case "interface_declaration":
		if body := decl.ChildByFieldName("body"); body != nil {
			x.fromBody(body)
		} else if body := findChildByKind(decl, "interface_body"); body != nil {
			x.fromBody(body)
		}
		if ext := findChildByKind(decl, "extends_type_clause"); ext != nil {
			for _, t := range namedChildren(ext) {
				x.fromType(t, depth+1)
			}
		}
	case "type_alias_declaration":
		x.fromType(decl.ChildByFieldName("value"), depth+1)
	}
}

// fromBody extracts props from an interface_body or object_type node.
func (x *propsExtractor) fromBody(body *ts.Node) {
	for i := uint(0); i < body.ChildCount(); i++ {
		child := body.Child(i)
		if child.Kind() != "property_signature" {
			continue
		}
		prop, ok := propFromSignature(child, x.source)
		if !ok {
			continue
		}
		prop.Description, prop.Deprecated = jsDocForProp(body, i, x.source)
		x.add(prop)
	}
}

// propFromSignature extracts a single prop from a property_signature node.
func propFromSignature(sig *ts.Node, source []byte) (registry.Prop, bool) {
	nameNode := sig.ChildByFieldName("name")
	if nameNode == nil {
		return registry.Prop{}, false
	}
	prop := registry.Prop{
		Name:     keyText(nameNode, source),
		Required: !hasChildKind(sig, "?"),
		Origin:   registry.OriginStructural,
	}
	if inner := namedChildren(sig.ChildByFieldName("type")); len(inner) > 0 {
		prop.Type, prop.AllowedValues = resolveType(inner[0], source)
	}
	if prop.Type == "" {
		prop.Type = "unknown"
	}
	return prop, true
}

// resolveType resolves a type node to a simplified type string and, for
// literal unions, the allowed values.
func resolveType(node *ts.Node, source []byte) (string, []string) {
	switch node.Kind() {
	case "predefined_type", "type_identifier":
		return node.Utf8Text(source), nil
	case "literal_type":
		text := node.Utf8Text(source)
		if isStringLiteral(text) {
			return "string", []string{unquoteString(text)}
		}
		return inferLiteralType(text), nil
	case "union_type":
		return resolveUnionType(node, source)
	case "generic_type":
		if name := node.ChildByFieldName("name"); name != nil {
			return strings.TrimPrefix(name.Utf8Text(source), "React."), nil
		}
	case "function_type":
		return "function", nil
	case "array_type":
		return "array", nil
	case "tuple_type":
		return "tuple", nil
	case "object_type":
		return "object", nil
	case "parenthesized_type":
		if inner := namedChildren(node); len(inner) == 1 {
			return resolveType(inner[0], source)
		}
	case "nested_type_identifier", "member_expression":
		return strings.TrimPrefix(node.Utf8Text(source), "React."), nil
	}
	return node.Utf8Text(source), nil
}

// resolveUnionType handles unions like "default" | "outline". Tree-sitter
// parses multi-member unions as nested binary nodes, so they are
// flattened first. undefined and null members only mark optionality.
func resolveUnionType(node *ts.Node, source []byte) (string, []string) {
	var literals []string
	allStrings, allLiterals := true, true
	for _, m := range flattenUnion(node) {
		text := m.Utf8Text(source)
		if m.Kind() == "predefined_type" && (text == "undefined" || text == "null") {
			continue
		}
		if m.Kind() != "literal_type" {
			allStrings, allLiterals = false, false
			continue
		}
		if isStringLiteral(text) {
			literals = append(literals, unquoteString(text))
		} else {
			allStrings = false
			literals = append(literals, text)
		}
	}
	switch {
	case allStrings && len(literals) > 0:
		return "string", literals
	case allLiterals && len(literals) > 0:
		if isBooleanPair(literals) {
			return "boolean", nil
		}
		return "union", literals
	}
	return node.Utf8Text(source), nil
}

func isBooleanPair(values []string) bool {
	return len(values) == 2 &&
		((values[0] == "true" && values[1] == "false") || (values[0] == "false" && values[1] == "true"))
}

func flattenUnion(node *ts.Node) []*ts.Node {
	if node.Kind() != "union_type" {
		return []*ts.Node{node}
	}
	var members []*ts.Node
	for _, child := range namedChildren(node) {
		members = append(members, flattenUnion(child)...)
	}
	return members
}

// variantPropsRef returns x for a VariantProps<typeof x> generic.
func variantPropsRef(node *ts.Node, source []byte) string {
	name := node.ChildByFieldName("name")
	if name == nil || name.Utf8Text(source) != "VariantProps" {
		return ""
	}
	args := findChildByKind(node, "type_arguments")
	for _, arg := range namedChildren(args) {
		if arg.Kind() != "type_query" {
			continue
		}
		for _, q := range namedChildren(arg) {
			if q.Kind() == "identifier" {
				return q.Utf8Text(source)
			}
		}
	}
	return ""
}

// firstParameter returns the first formal parameter of a function, or the
// bare identifier parameter of an arrow function.
func firstParameter(fn *ts.Node) *ts.Node {
	if p := fn.ChildByFieldName("parameter"); p != nil {
		return p
	}
	if list := namedChildren(fn.ChildByFieldName("parameters")); len(list) > 0 {
		return list[0]
	}
	return nil
}

// parameterType returns the type annotation of a TypeScript parameter.
func parameterType(param *ts.Node) *ts.Node {
	if param == nil {
		return nil
	}
	switch param.Kind() {
	case "required_parameter", "optional_parameter":
		return param.ChildByFieldName("type")
	}
	return nil
}

// wrapperPropsType finds the props type given to a wrapper call, e.g.
// ButtonProps in forwardRef<HTMLButtonElement, ButtonProps>(...).
func wrapperPropsType(fn *ts.Node) *ts.Node {
	args := fn.Parent()
	if args == nil || args.Kind() != "arguments" {
		return nil
	}
	call := args.Parent()
	if call == nil || call.Kind() != "call_expression" {
		return nil
	}
	typeArgs := call.ChildByFieldName("type_arguments")
	if typeArgs == nil {
		typeArgs = findChildByKind(call, "type_arguments")
	}
	list := namedChildren(typeArgs)
	switch len(list) {
	case 0:
		return nil
	case 1:
		// memo<Props>
		return list[0]
	default:
		// forwardRef<Ref, Props>
		return list[1]
	}
}

type destructuredProp struct {
	name         string
	defaultValue string
}

// destructuredProps lists the names and defaults of an object pattern
// parameter. Rest elements are pass-through and not listed.
func destructuredProps(param *ts.Node, source []byte) []destructuredProp {
	pattern := param
	if param != nil {
		switch param.Kind() {
		case "required_parameter", "optional_parameter":
			pattern = param.ChildByFieldName("pattern")
		case "assignment_pattern":
			// ({ a } = {}) in plain JavaScript
			pattern = param.ChildByFieldName("left")
		}
	}
	if pattern == nil || pattern.Kind() != "object_pattern" {
		return nil
	}

	var out []destructuredProp
	for _, child := range namedChildren(pattern) {
		switch child.Kind() {
		case "shorthand_property_identifier_pattern":
			out = append(out, destructuredProp{name: child.Utf8Text(source)})
		case "object_assignment_pattern", "assignment_pattern":
			left := child.ChildByFieldName("left")
			if left == nil {
				continue
			}
			out = append(out, destructuredProp{
				name:         left.Utf8Text(source),
				defaultValue: defaultText(child.ChildByFieldName("right"), source),
			})
		case "pair_pattern":
			// { key: local = value }
			key := child.ChildByFieldName("key")
			if key == nil {
				continue
			}
			d := destructuredProp{name: keyText(key, source)}
			if value := child.ChildByFieldName("value"); value != nil &&
				(value.Kind() == "assignment_pattern" || value.Kind() == "object_assignment_pattern") {
				d.defaultValue = defaultText(value.ChildByFieldName("right"), source)
			}
			out = append(out, d)
		}
	}
	return out
}

func defaultText(node *ts.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return unquoteString(node.Utf8Text(source))
}

// jsDocForProp returns the description and deprecation flag of the comment
// directly preceding the property at index i.
func jsDocForProp(body *ts.Node, i uint, source []byte) (string, bool) {
	for j := int(i) - 1; j >= 0; j-- {
		child := body.Child(uint(j))
		if child == nil {
			break
		}
		switch child.Kind() {
		case "comment":
			return parseJSDoc(child.Utf8Text(source))
		case ";", ",":
			continue
		}
		break
	}
	return "", false
}

// parseJSDoc extracts the description and @deprecated marker from a
// comment.
func parseJSDoc(comment string) (string, bool) {
	comment = strings.TrimSpace(comment)
	if strings.HasPrefix(comment, "//") {
		text := strings.TrimSpace(strings.TrimPrefix(comment, "//"))
		if strings.Contains(text, "@deprecated") {
			return strings.TrimSpace(strings.Replace(text, "@deprecated", "", 1)), true
		}
		return text, false
	}
	if !strings.HasPrefix(comment, "/**") {
		return "", false
	}
	comment = strings.TrimSuffix(strings.TrimPrefix(comment, "/**"), "*/")

	deprecated := false
	var parts []string
	for _, line := range strings.Split(comment, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "*"))
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "@deprecated") {
			deprecated = true
			if rest := strings.TrimSpace(strings.TrimPrefix(line, "@deprecated")); rest != "" {
				parts = append(parts, rest)
			}
			continue
		}
		if strings.HasPrefix(line, "@") {
			continue
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, " "), deprecated
}

// mergeVariantProps folds variant groups into the structural props. A
// declared prop keeps its type unless it was only known by name.
func mergeVariantProps(props []registry.Prop, variant []registry.Prop) []registry.Prop {
	byName := make(map[string]int, len(props))
	for i, p := range props {
		byName[p.Name] = i
	}
	for _, vp := range variant {
		i, ok := byName[vp.Name]
		if !ok {
			byName[vp.Name] = len(props)
			props = append(props, vp)
			continue
		}
		if props[i].Type == "unknown" || props[i].Type == "" {
			props[i].Type = vp.Type
		}
		if len(props[i].AllowedValues) == 0 {
			props[i].AllowedValues = vp.AllowedValues
		}
		if props[i].Default == "" {
			props[i].Default = vp.Default
		}
	}
	return props
}
