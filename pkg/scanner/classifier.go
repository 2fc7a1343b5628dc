package scanner

import (
	"path/filepath"
	"strings"
	"unicode"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uiregistry/pkg/registry"
)

// maxUnwrapDepth bounds how many wrapper calls and parentheses are peeled
// off before giving up on a declaration.
const maxUnwrapDepth = 8

// componentWrappers are the call helpers a component may be wrapped in.
var componentWrappers = map[string]bool{
	"forwardRef":       true,
	"React.forwardRef": true,
	"memo":             true,
	"React.memo":       true,
	"observer":         true,
}

// Classification is the classifier's output for one file.
type Classification struct {
	Candidates []Candidate
	Edges      []ReExportEdge

	// fns maps a candidate name to its innermost function node. Only valid
	// while the tree is open.
	fns map[string]*ts.Node
}

// Function returns the innermost function node of a candidate.
func (c *Classification) Function(name string) *ts.Node {
	return c.fns[name]
}

type localDecl struct {
	kind     registry.DeclarationKind
	fn       *ts.Node
	wrappers []string
	line     uint
}

type importBinding struct {
	source   string
	imported string
}

type classifier struct {
	path    string
	source  []byte
	locals  map[string]localDecl
	imports map[string]importBinding
	// pending holds variable initializers not yet unwrapped, so a binding
	// may refer to a declaration further down the file.
	pending map[string]*ts.Node
	out     *Classification
	index   map[string]int
}

// ClassifyFile finds the exported components and re-export edges of one
// parsed file. It only reads the tree and is safe to call concurrently on
// distinct trees.
func ClassifyFile(tree *ts.Tree, path string, source []byte) *Classification {
	c := &classifier{
		path:    path,
		source:  source,
		locals:  make(map[string]localDecl),
		imports: make(map[string]importBinding),
		pending: make(map[string]*ts.Node),
		out:     &Classification{fns: make(map[string]*ts.Node)},
		index:   make(map[string]int),
	}
	if tree == nil {
		return c.out
	}
	root := tree.RootNode()
	c.collectLocals(root)
	for _, stmt := range namedChildren(root) {
		if stmt.Kind() == "export_statement" {
			c.exportStatement(stmt)
		}
	}
	return c.out
}

// collectLocals records top-level declarations and imports so export
// clauses can be resolved. Function declarations are hoisted: they are
// recorded before any variable initializer is unwrapped.
func (c *classifier) collectLocals(root *ts.Node) {
	var order []string
	for _, stmt := range namedChildren(root) {
		switch stmt.Kind() {
		case "import_statement":
			c.importStatement(stmt)
		case "export_statement":
			if decl := stmt.ChildByFieldName("declaration"); decl != nil {
				order = append(order, c.declaration(decl)...)
			}
		default:
			order = append(order, c.declaration(stmt)...)
		}
	}
	for _, name := range order {
		c.bindVariable(name, 0)
	}
}

// declaration records a function declaration directly and queues variable
// initializers, returning the queued names in source order.
func (c *classifier) declaration(node *ts.Node) []string {
	var queued []string
	switch node.Kind() {
	case "function_declaration", "generator_function_declaration":
		name := node.ChildByFieldName("name")
		if name == nil {
			return nil
		}
		c.locals[name.Utf8Text(c.source)] = localDecl{
			kind: registry.DeclFunction,
			fn:   node,
			line: lineOf(node),
		}
	case "lexical_declaration", "variable_declaration":
		for _, decl := range namedChildren(node) {
			if decl.Kind() != "variable_declarator" {
				continue
			}
			name := decl.ChildByFieldName("name")
			value := decl.ChildByFieldName("value")
			if name == nil || value == nil || name.Kind() != "identifier" {
				continue
			}
			n := name.Utf8Text(c.source)
			c.pending[n] = decl
			queued = append(queued, n)
		}
	}
	return queued
}

// bindVariable unwraps a queued variable initializer into a local
// declaration. It is called in source order and again, on demand, when an
// earlier initializer refers to the name.
func (c *classifier) bindVariable(name string, depth int) (localDecl, bool) {
	if local, ok := c.locals[name]; ok {
		return local, true
	}
	decl, ok := c.pending[name]
	if !ok {
		return localDecl{}, false
	}
	delete(c.pending, name)
	fn, kind, wrappers, ok := c.unwrap(decl.ChildByFieldName("value"), depth)
	if !ok {
		return localDecl{}, false
	}
	local := localDecl{
		kind:     kind,
		fn:       fn,
		wrappers: wrappers,
		line:     lineOf(decl),
	}
	c.locals[name] = local
	return local, true
}

func (c *classifier) importStatement(stmt *ts.Node) {
	src := stmt.ChildByFieldName("source")
	clause := findChildByKind(stmt, "import_clause")
	if src == nil || clause == nil || hasChildKind(stmt, "type") {
		return
	}
	source := unquoteString(src.Utf8Text(c.source))
	for _, part := range namedChildren(clause) {
		switch part.Kind() {
		case "identifier":
			c.imports[part.Utf8Text(c.source)] = importBinding{source: source, imported: "default"}
		case "named_imports":
			for _, spec := range namedChildren(part) {
				if spec.Kind() != "import_specifier" || hasChildKind(spec, "type") {
					continue
				}
				name := spec.ChildByFieldName("name")
				if name == nil {
					continue
				}
				local := name
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					local = alias
				}
				c.imports[local.Utf8Text(c.source)] = importBinding{
					source:   source,
					imported: unquoteString(name.Utf8Text(c.source)),
				}
			}
		}
	}
}

// unwrap peels parentheses, type assertions and wrapper calls off value
// until it reaches a function. Identifiers refer back to local
// declarations so memo(Button) classifies like Button.
func (c *classifier) unwrap(value *ts.Node, depth int) (*ts.Node, registry.DeclarationKind, []string, bool) {
	var wrappers []string
	node := value
	for ; node != nil && depth <= maxUnwrapDepth; depth++ {
		switch node.Kind() {
		case "arrow_function":
			return node, registry.DeclArrow, wrappers, true
		case "function_expression", "function":
			return node, registry.DeclFunctionEx, wrappers, true
		case "parenthesized_expression", "as_expression", "satisfies_expression", "non_null_expression":
			inner := namedChildren(node)
			if len(inner) == 0 {
				return nil, "", nil, false
			}
			node = inner[0]
		case "call_expression":
			callee := calleeName(node, c.source)
			if !componentWrappers[callee] {
				return nil, "", nil, false
			}
			wrappers = append(wrappers, callee)
			node = findNthArgument(node.ChildByFieldName("arguments"), 0)
		case "identifier":
			local, ok := c.bindVariable(node.Utf8Text(c.source), depth+1)
			if !ok {
				return nil, "", nil, false
			}
			return local.fn, local.kind, append(wrappers, local.wrappers...), true
		default:
			return nil, "", nil, false
		}
	}
	return nil, "", nil, false
}

func (c *classifier) exportStatement(stmt *ts.Node) {
	if hasChildKind(stmt, "type") {
		// export type { ... }
		return
	}
	if src := stmt.ChildByFieldName("source"); src != nil {
		c.reExport(stmt, unquoteString(src.Utf8Text(c.source)))
		return
	}
	if hasChildKind(stmt, "default") {
		c.defaultExport(stmt)
		return
	}
	if decl := stmt.ChildByFieldName("declaration"); decl != nil {
		c.namedDeclaration(decl)
		return
	}
	if clause := findChildByKind(stmt, "export_clause"); clause != nil {
		c.localExportClause(clause)
	}
}

func (c *classifier) namedDeclaration(decl *ts.Node) {
	switch decl.Kind() {
	case "function_declaration", "generator_function_declaration":
		if name := decl.ChildByFieldName("name"); name != nil {
			c.addLocal(name.Utf8Text(c.source), name.Utf8Text(c.source), registry.ExportNamed)
		}
	case "lexical_declaration", "variable_declaration":
		for _, d := range namedChildren(decl) {
			if d.Kind() != "variable_declarator" {
				continue
			}
			if name := d.ChildByFieldName("name"); name != nil && name.Kind() == "identifier" {
				c.addLocal(name.Utf8Text(c.source), name.Utf8Text(c.source), registry.ExportNamed)
			}
		}
	}
}

func (c *classifier) defaultExport(stmt *ts.Node) {
	target := stmt.ChildByFieldName("declaration")
	if target == nil {
		target = stmt.ChildByFieldName("value")
	}
	if target == nil {
		seenDefault := false
		for i := uint(0); i < stmt.ChildCount(); i++ {
			child := stmt.Child(i)
			if child.Kind() == "default" {
				seenDefault = true
				continue
			}
			if seenDefault && child.IsNamed() && child.Kind() != "comment" {
				target = child
				break
			}
		}
	}
	if target == nil {
		return
	}

	switch target.Kind() {
	case "function_declaration", "generator_function_declaration":
		if name := target.ChildByFieldName("name"); name != nil {
			n := name.Utf8Text(c.source)
			c.addLocal(n, n, registry.ExportDefault)
			return
		}
		c.addAnonymous(target, registry.DeclFunction, nil)
	case "identifier":
		n := target.Utf8Text(c.source)
		if _, ok := c.locals[n]; ok {
			c.addLocal(n, n, registry.ExportDefault)
			return
		}
		if imp, ok := c.imports[n]; ok && registry.IsComponentName(n) {
			c.addEdge(ReExportEdge{Source: imp.source, Imported: imp.imported, Exported: "default", Line: lineOf(target)})
			c.addEdge(ReExportEdge{Source: imp.source, Imported: imp.imported, Exported: n, Line: lineOf(target)})
		}
	default:
		fn, kind, wrappers, ok := c.unwrap(target, 0)
		if !ok {
			return
		}
		if name := fn.ChildByFieldName("name"); name != nil && kind == registry.DeclFunctionEx {
			// export default memo(function Button() {})
			n := name.Utf8Text(c.source)
			if registry.IsComponentName(n) {
				c.add(Candidate{Name: n, LocalName: n, ExportKind: registry.ExportDefault,
					DeclarationKind: kind, Wrappers: wrappers, Line: lineOf(target)}, fn)
				return
			}
		}
		if n := c.wrappedLocal(target); registry.IsComponentName(n) {
			// export default forwardRef(Button)
			c.add(Candidate{Name: n, LocalName: n, ExportKind: registry.ExportDefault,
				DeclarationKind: kind, Wrappers: wrappers, Line: lineOf(target)}, fn)
			return
		}
		c.addAnonymous(fn, kind, wrappers)
	}
}

// wrappedLocal returns the local declaration a chain of wrapper calls ends
// at, or "" when it ends at an inline function.
func (c *classifier) wrappedLocal(node *ts.Node) string {
	for depth := 0; node != nil && depth <= maxUnwrapDepth; depth++ {
		switch node.Kind() {
		case "identifier":
			n := node.Utf8Text(c.source)
			if _, ok := c.locals[n]; ok {
				return n
			}
			return ""
		case "parenthesized_expression", "as_expression", "satisfies_expression", "non_null_expression":
			inner := namedChildren(node)
			if len(inner) == 0 {
				return ""
			}
			node = inner[0]
		case "call_expression":
			if !componentWrappers[calleeName(node, c.source)] {
				return ""
			}
			node = findNthArgument(node.ChildByFieldName("arguments"), 0)
		default:
			return ""
		}
	}
	return ""
}

func (c *classifier) addAnonymous(fn *ts.Node, kind registry.DeclarationKind, wrappers []string) {
	name := nameFromPath(c.path)
	if !registry.IsComponentName(name) {
		return
	}
	c.add(Candidate{
		Name:            name,
		ExportKind:      registry.ExportDefault,
		DeclarationKind: kind,
		Wrappers:        wrappers,
		Line:            lineOf(fn),
	}, fn)
}

// localExportClause handles export { A, B as C } without a source.
func (c *classifier) localExportClause(clause *ts.Node) {
	for _, spec := range namedChildren(clause) {
		if spec.Kind() != "export_specifier" || hasChildKind(spec, "type") {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		local := nameNode.Utf8Text(c.source)
		exported := local
		if alias := spec.ChildByFieldName("alias"); alias != nil {
			exported = unquoteString(alias.Utf8Text(c.source))
		}

		if _, ok := c.locals[local]; ok {
			if exported == "default" {
				c.addLocal(local, local, registry.ExportDefault)
			} else {
				c.addLocal(exported, local, registry.ExportNamed)
			}
			continue
		}
		if imp, ok := c.imports[local]; ok {
			// import { Button } from "./button"; export { Button }
			c.addEdge(ReExportEdge{
				Source:   imp.source,
				Imported: imp.imported,
				Exported: exported,
				Line:     lineOf(spec),
			})
		}
	}
}

// reExport handles export ... from "source".
func (c *classifier) reExport(stmt *ts.Node, source string) {
	clause := findChildByKind(stmt, "export_clause")
	if clause == nil {
		if hasChildKind(stmt, "namespace_export") {
			// export * as ns from: a namespace object, not a component
			return
		}
		if hasChildKind(stmt, "*") {
			c.addEdge(ReExportEdge{Source: source, Wildcard: true, Line: lineOf(stmt)})
		}
		return
	}
	for _, spec := range namedChildren(clause) {
		if spec.Kind() != "export_specifier" || hasChildKind(spec, "type") {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		imported := unquoteString(nameNode.Utf8Text(c.source))
		exported := imported
		if alias := spec.ChildByFieldName("alias"); alias != nil {
			exported = unquoteString(alias.Utf8Text(c.source))
		}
		c.addEdge(ReExportEdge{
			Source:   source,
			Imported: imported,
			Exported: exported,
			Line:     lineOf(spec),
		})
	}
}

func (c *classifier) addEdge(e ReExportEdge) {
	if !e.Wildcard && e.Exported != "default" && !registry.IsComponentName(e.Exported) {
		return
	}
	c.out.Edges = append(c.out.Edges, e)
}

// addLocal exposes the local declaration named local under name.
func (c *classifier) addLocal(name, local string, kind registry.ExportKind) {
	decl, ok := c.locals[local]
	if !ok || !registry.IsComponentName(name) {
		return
	}
	cand := Candidate{
		Name:            name,
		LocalName:       local,
		ExportKind:      kind,
		DeclarationKind: decl.kind,
		Wrappers:        decl.wrappers,
		Line:            decl.line,
	}
	c.add(cand, decl.fn)
}

// add records a candidate, folding duplicates of the same exposed name.
// A named export outranks a default export of the same name regardless of
// order and the first structural information seen is kept.
func (c *classifier) add(cand Candidate, fn *ts.Node) {
	if i, ok := c.index[cand.Name]; ok {
		existing := &c.out.Candidates[i]
		if cand.ExportKind == registry.ExportNamed {
			existing.ExportKind = registry.ExportNamed
		}
		if c.out.fns[cand.Name] == nil && fn != nil {
			c.out.fns[cand.Name] = fn
			existing.DeclarationKind = cand.DeclarationKind
			existing.Wrappers = cand.Wrappers
		}
		if existing.LocalName == "" {
			existing.LocalName = cand.LocalName
		}
		return
	}
	c.index[cand.Name] = len(c.out.Candidates)
	c.out.Candidates = append(c.out.Candidates, cand)
	c.out.fns[cand.Name] = fn
}

// nameFromPath derives a component name for an anonymous default export:
// dropdown-menu.tsx gives DropdownMenu and an index file takes its
// directory's name.
func nameFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "index" {
		base = filepath.Base(filepath.Dir(path))
	}
	return pascalCase(base)
}

func pascalCase(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if r == '-' || r == '_' || r == '.' || r == ' ' {
			upper = true
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
