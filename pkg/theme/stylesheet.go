package theme

import (
	"fmt"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uiregistry/pkg/parser"
)

// Mode is a theme mode a variable table belongs to.
type Mode int

const (
	ModeLight Mode = iota
	ModeDark
)

func (m Mode) String() string {
	if m == ModeDark {
		return "dark"
	}
	return "light"
}

// Variables maps a CSS custom property name (with leading "--") to its raw
// value.
type Variables map[string]string

// stylesheetTables is the result of walking one stylesheet.
type stylesheetTables struct {
	light Variables
	dark  Variables
}

// parseStylesheet extracts light and dark custom-property tables from CSS
// source. Rules under :root land in the light table, rules under .dark or a
// dark data-theme selector land in the dark table. Nested @layer, @media and
// @supports blocks are walked; Tailwind v4 @theme blocks count as light.
func parseStylesheet(pm *parser.ParserManager, src []byte) (*stylesheetTables, error) {
	tree, err := pm.Parse(src, parser.LanguageCSS, false)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stylesheet: %w", err)
	}
	defer tree.Close()

	tables := &stylesheetTables{light: Variables{}, dark: Variables{}}
	w := cssWalker{src: src, tables: tables}
	w.walk(tree.RootNode(), false)
	return tables, nil
}

type cssWalker struct {
	src    []byte
	tables *stylesheetTables
}

func (w *cssWalker) walk(node *ts.Node, darkMedia bool) {
	if node == nil {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "rule_set":
			w.ruleSet(child, darkMedia)
		case "media_statement":
			dark := darkMedia || isDarkMediaQuery(child.Utf8Text(w.src))
			w.walkBlock(child, dark)
		case "at_rule", "supports_statement":
			if w.atKeyword(child) == "@theme" {
				if block := childOfKind(child, "block"); block != nil {
					w.collect(block, w.tables.light)
				}
				continue
			}
			w.walkBlock(child, darkMedia)
		}
	}
}

func (w *cssWalker) walkBlock(node *ts.Node, darkMedia bool) {
	if block := childOfKind(node, "block"); block != nil {
		w.walk(block, darkMedia)
	}
}

func (w *cssWalker) atKeyword(node *ts.Node) string {
	if kw := childOfKind(node, "at_keyword"); kw != nil {
		return kw.Utf8Text(w.src)
	}
	return ""
}

func (w *cssWalker) ruleSet(node *ts.Node, darkMedia bool) {
	selectors := childOfKind(node, "selectors")
	block := childOfKind(node, "block")
	if selectors == nil || block == nil {
		return
	}

	var light, dark bool
	for _, sel := range strings.Split(selectors.Utf8Text(w.src), ",") {
		switch classifySelector(sel) {
		case selectorLight:
			if darkMedia {
				dark = true
			} else {
				light = true
			}
		case selectorDark:
			dark = true
		}
	}
	if light {
		w.collect(block, w.tables.light)
	}
	if dark {
		w.collect(block, w.tables.dark)
	}
	// nested rules (CSS nesting) keep the parent's media context
	w.walk(block, darkMedia)
}

// collect copies every custom-property declaration directly inside block.
func (w *cssWalker) collect(block *ts.Node, into Variables) {
	for i := uint(0); i < block.ChildCount(); i++ {
		decl := block.Child(i)
		if decl == nil || decl.Kind() != "declaration" {
			continue
		}
		name, value, ok := splitDeclaration(decl.Utf8Text(w.src))
		if !ok || !strings.HasPrefix(name, "--") {
			continue
		}
		into[name] = value
	}
}

// splitDeclaration splits "--name: value;" into its name and raw value.
// Custom property values are taken verbatim since the grammar does not
// model arbitrary token streams.
func splitDeclaration(text string) (string, string, bool) {
	idx := strings.IndexByte(text, ':')
	if idx <= 0 {
		return "", "", false
	}
	name := strings.TrimSpace(text[:idx])
	value := strings.TrimSpace(text[idx+1:])
	value = strings.TrimSpace(strings.TrimSuffix(value, ";"))
	if name == "" || value == "" {
		return "", "", false
	}
	return name, value, true
}

type selectorKind int

const (
	selectorOther selectorKind = iota
	selectorLight
	selectorDark
)

func classifySelector(sel string) selectorKind {
	s := strings.Join(strings.Fields(sel), "")
	s = strings.ReplaceAll(s, "'", `"`)
	switch s {
	case ":root", "html", ":host", `:root[data-theme="light"]`, `[data-theme="light"]`, ".light":
		return selectorLight
	case ".dark", ":root.dark", "html.dark", ".dark:root", `[data-theme="dark"]`,
		`:root[data-theme="dark"]`, `html[data-theme="dark"]`:
		return selectorDark
	}
	return selectorOther
}

// isDarkMediaQuery inspects only the prelude of an @media rule.
func isDarkMediaQuery(text string) bool {
	if idx := strings.IndexByte(text, '{'); idx >= 0 {
		text = text[:idx]
	}
	return strings.Contains(strings.Join(strings.Fields(text), ""), "prefers-color-scheme:dark")
}

func childOfKind(node *ts.Node, kind string) *ts.Node {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}
