package scanner

import (
	"regexp"
	"strings"

	"github.com/gnana997/uiregistry/pkg/theme"
)

// Token categories.
const (
	TokenColor      = "color"
	TokenSpacing    = "spacing"
	TokenSizing     = "sizing"
	TokenRadius     = "radius"
	TokenTypography = "typography"
)

// TokenMatch maps one utility class to a design token.
type TokenMatch struct {
	Class    string
	ID       string
	Category string
	// Inferred is set when the match came from a structural rule rather
	// than the catalog table.
	Inferred bool
}

// colorRoles maps color utility prefixes to the role segment of the
// token id. Longer prefixes come first.
var colorRoles = []struct{ prefix, role string }{
	{"ring-offset-", "ring-offset"},
	{"placeholder-", "placeholder"},
	{"decoration-", "decoration"},
	{"outline-", "outline"},
	{"divide-", "divide"},
	{"border-", "border"},
	{"accent-", "accent"},
	{"stroke-", "stroke"},
	{"shadow-", "shadow"},
	{"caret-", "caret"},
	{"text-", "text"},
	{"ring-", "ring"},
	{"fill-", "fill"},
	{"from-", "gradient-from"},
	{"via-", "gradient-via"},
	{"bg-", "background"},
	{"to-", "gradient-to"},
}

// notColors lists remainders of color prefixes that name some other
// utility, e.g. text-left or border-dashed.
var notColors = map[string]bool{
	"left": true, "right": true, "center": true, "justify": true, "start": true, "end": true,
	"wrap": true, "nowrap": true, "balance": true, "pretty": true, "ellipsis": true, "clip": true,
	"solid": true, "dashed": true, "dotted": true, "double": true, "hidden": true, "none": true,
	"wavy": true, "collapse": true, "separate": true, "inset": true, "inner": true, "auto": true,
	"cover": true, "contain": true, "fixed": true, "local": true, "scroll": true, "repeat": true,
	"no-repeat": true, "repeat-x": true, "repeat-y": true, "round": true, "space": true,
	"top": true, "bottom": true, "from-font": true, "x": true, "y": true, "t": true, "b": true,
	"l": true, "r": true, "s": true, "e": true, "base": true, "origin": true,
	"xs": true, "sm": true, "md": true, "lg": true, "xl": true,
}

var (
	paletteColor  = regexp.MustCompile(`^(slate|gray|zinc|neutral|stone|red|orange|amber|yellow|lime|green|emerald|teal|cyan|sky|blue|indigo|violet|purple|fuchsia|pink|rose)-(50|[1-9]00|950)$`)
	semanticColor = regexp.MustCompile(`^[a-z]+(-[a-z]+)*$`)
	sizeSuffix    = regexp.MustCompile(`^[0-9]*xl$|^(x-|bg-)?gradient|^(clip|origin|blend|opacity|offset)-`)
	numericValue  = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)
)

// spacingScale is the default Tailwind spacing scale.
var spacingScale = []string{
	"0", "px", "0.5", "1", "1.5", "2", "2.5", "3", "3.5", "4", "5", "6", "7", "8", "9", "10",
	"11", "12", "14", "16", "20", "24", "28", "32", "36", "40", "44", "48", "52", "56", "60",
	"64", "72", "80", "96",
}

var spacingUtilities = map[string]string{
	"p": "padding", "px": "padding.x", "py": "padding.y", "pt": "padding.top",
	"pr": "padding.right", "pb": "padding.bottom", "pl": "padding.left",
	"ps": "padding.start", "pe": "padding.end",
	"m": "margin", "mx": "margin.x", "my": "margin.y", "mt": "margin.top",
	"mr": "margin.right", "mb": "margin.bottom", "ml": "margin.left",
	"ms": "margin.start", "me": "margin.end",
	"gap": "gap", "gap-x": "gap.x", "gap-y": "gap.y",
	"space-x": "space.x", "space-y": "space.y",
}

var sizingUtilities = map[string]string{
	"w": "width", "h": "height", "size": "size",
	"min-w": "min-width", "min-h": "min-height",
	"max-w": "max-width", "max-h": "max-height",
}

var sizingKeywords = []string{
	"auto", "full", "screen", "min", "max", "fit", "svh", "dvh", "lvh",
	"1/2", "1/3", "2/3", "1/4", "3/4", "1/5", "2/5", "3/5", "4/5",
	"xs", "sm", "md", "lg", "xl", "2xl", "3xl", "4xl", "5xl", "6xl", "7xl", "prose",
}

var radiusSizes = []string{"none", "xs", "sm", "md", "lg", "xl", "2xl", "3xl", "4xl", "full"}

var radiusSides = []string{"t", "r", "b", "l", "s", "e", "tl", "tr", "br", "bl", "ss", "se", "ee", "es"}

var fontSizes = []string{"xs", "sm", "base", "lg", "xl", "2xl", "3xl", "4xl", "5xl", "6xl", "7xl", "8xl", "9xl"}

var fontWeights = []string{
	"thin", "extralight", "light", "normal", "medium", "semibold", "bold", "extrabold", "black",
}

// tokenAliases are semantic classes whose token id does not follow the
// structural naming.
var tokenAliases = map[string]TokenMatch{
	"bg-background":   {ID: "color.background.base", Category: TokenColor},
	"text-foreground": {ID: "color.text.base", Category: TokenColor},
	"border-border":   {ID: "color.border.base", Category: TokenColor},
	"border-input":    {ID: "color.border.input", Category: TokenColor},
	"ring-ring":       {ID: "color.ring.focus", Category: TokenColor},
}

// tokenTable is the catalog of classes with a known token.
var tokenTable = buildTokenTable()

func buildTokenTable() map[string]TokenMatch {
	table := make(map[string]TokenMatch)
	for class, m := range tokenAliases {
		table[class] = m
	}
	for prefix, prop := range spacingUtilities {
		for _, v := range spacingScale {
			table[prefix+"-"+v] = TokenMatch{ID: "spacing." + prop + "." + v, Category: TokenSpacing}
		}
		if strings.HasPrefix(prefix, "m") {
			table[prefix+"-auto"] = TokenMatch{ID: "spacing." + prop + ".auto", Category: TokenSpacing}
		}
	}
	for prefix, prop := range sizingUtilities {
		for _, v := range append(append([]string{}, spacingScale...), sizingKeywords...) {
			table[prefix+"-"+v] = TokenMatch{ID: "sizing." + prop + "." + v, Category: TokenSizing}
		}
	}
	table["rounded"] = TokenMatch{ID: "radius.default", Category: TokenRadius}
	for _, side := range radiusSides {
		table["rounded-"+side] = TokenMatch{ID: "radius.default", Category: TokenRadius}
	}
	for _, size := range radiusSizes {
		table["rounded-"+size] = TokenMatch{ID: "radius." + size, Category: TokenRadius}
		for _, side := range radiusSides {
			table["rounded-"+side+"-"+size] = TokenMatch{ID: "radius." + size, Category: TokenRadius}
		}
	}
	for _, size := range fontSizes {
		table["text-"+size] = TokenMatch{ID: "typography.size." + size, Category: TokenTypography}
	}
	for _, w := range fontWeights {
		table["font-"+w] = TokenMatch{ID: "typography.weight." + w, Category: TokenTypography}
	}
	return table
}

// MatchToken maps a utility class to a token id. The catalog table is
// consulted first, then structural inference. Variant prefixes and the
// important marker are ignored; arbitrary values like bg-[#fff] have no
// token.
func MatchToken(class string) (TokenMatch, bool) {
	base := theme.StripClassModifiers(class)
	if base == "" || strings.HasPrefix(base, "-") || strings.Contains(base, "[") {
		return TokenMatch{}, false
	}
	if m, ok := tokenTable[base]; ok {
		m.Class = class
		return m, true
	}
	// opacity modifiers only apply to colors
	colorBase := base
	if idx := strings.IndexByte(base, '/'); idx > 0 {
		colorBase = base[:idx]
		if m, ok := tokenTable[colorBase]; ok && m.Category == TokenColor {
			m.Class = class
			return m, true
		}
	}
	if m, ok := inferColor(colorBase); ok {
		m.Class = class
		return m, true
	}
	if m, ok := inferScale(base); ok {
		m.Class = class
		return m, true
	}
	return TokenMatch{}, false
}

func inferColor(base string) (TokenMatch, bool) {
	for _, cr := range colorRoles {
		if !strings.HasPrefix(base, cr.prefix) {
			continue
		}
		rest := strings.TrimPrefix(base, cr.prefix)
		if !isColorName(rest) {
			return TokenMatch{}, false
		}
		return TokenMatch{
			ID:       "color." + cr.role + "." + rest,
			Category: TokenColor,
			Inferred: true,
		}, true
	}
	return TokenMatch{}, false
}

func isColorName(rest string) bool {
	if rest == "" || notColors[rest] || sizeSuffix.MatchString(rest) {
		return false
	}
	if paletteColor.MatchString(rest) {
		return true
	}
	return semanticColor.MatchString(rest)
}

// inferScale accepts off-scale numeric spacing and sizing values, e.g.
// p-13 or w-120.
func inferScale(base string) (TokenMatch, bool) {
	idx := strings.LastIndexByte(base, '-')
	if idx <= 0 {
		return TokenMatch{}, false
	}
	prefix, value := base[:idx], base[idx+1:]
	if !numericValue.MatchString(value) {
		return TokenMatch{}, false
	}
	if prop, ok := spacingUtilities[prefix]; ok {
		return TokenMatch{ID: "spacing." + prop + "." + value, Category: TokenSpacing, Inferred: true}, true
	}
	if prop, ok := sizingUtilities[prefix]; ok {
		return TokenMatch{ID: "sizing." + prop + "." + value, Category: TokenSizing, Inferred: true}, true
	}
	return TokenMatch{}, false
}

// TokensForClasses maps every class with a token, keeping input order
// and one match per class.
func TokensForClasses(classes []string) []TokenMatch {
	seen := make(map[string]bool, len(classes))
	var out []TokenMatch
	for _, class := range classes {
		if seen[class] {
			continue
		}
		seen[class] = true
		if m, ok := MatchToken(class); ok {
			out = append(out, m)
		}
	}
	return out
}
