package theme

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gnana997/uiregistry/pkg/registry"
)

// Naming conventions for theme variables.
const (
	// NamingBare is the shadcn v3 layout: --primary, --muted-foreground.
	NamingBare = "bare"
	// NamingColorPrefixed is the Tailwind v4 layout: --color-primary.
	NamingColorPrefixed = "color-prefixed"
)

// maxVarDepth bounds var() chains; cycles stop here too.
const maxVarDepth = 16

// colorUtilityPrefixes are class prefixes whose remainder names a color.
// Longer prefixes come first so "ring-offset-" wins over "ring-".
var colorUtilityPrefixes = []string{
	"ring-offset-", "placeholder-", "decoration-", "outline-", "divide-",
	"border-", "accent-", "stroke-", "shadow-", "caret-", "text-", "ring-",
	"fill-", "from-", "via-", "bg-", "to-",
}

// Context is the resolved theme of one project root. It is immutable once
// built and safe for concurrent readers.
type Context struct {
	Root       string
	ConfigFile string
	Stylesheet string
	Config     *Config
	Naming     string
	Light      Variables
	Dark       Variables
}

// Prefix returns the Tailwind class prefix from the config, if any.
func (c *Context) Prefix() string {
	if c.Config == nil {
		return ""
	}
	return c.Config.Tailwind.Prefix
}

// VariableForClass maps a utility class to the theme variable backing it.
// Variant prefixes (hover:, dark:, md:), the important marker and opacity
// modifiers are ignored.
func (c *Context) VariableForClass(class string) (string, bool) {
	base := StripClassModifiers(class)
	if p := c.Prefix(); p != "" {
		if !strings.HasPrefix(base, p) {
			return "", false
		}
		base = strings.TrimPrefix(base, p)
	}
	if idx := strings.IndexByte(base, '/'); idx > 0 {
		base = base[:idx]
	}

	if base == "rounded" || strings.HasPrefix(base, "rounded-") {
		if c.has("--radius") {
			return "--radius", true
		}
		return "", false
	}
	if strings.HasPrefix(base, "font-") {
		name := "--" + base
		if c.has(name) {
			return name, true
		}
		return "", false
	}

	for _, prefix := range colorUtilityPrefixes {
		if !strings.HasPrefix(base, prefix) {
			continue
		}
		rest := strings.TrimPrefix(base, prefix)
		if rest == "" {
			return "", false
		}
		for _, name := range []string{"--" + rest, "--color-" + rest} {
			if c.has(name) {
				return name, true
			}
		}
		return "", false
	}
	return "", false
}

func (c *Context) has(name string) bool {
	if _, ok := c.Light[name]; ok {
		return true
	}
	_, ok := c.Dark[name]
	return ok
}

// Value resolves a variable for a mode. Dark lookups fall back to the light
// table, matching CSS inheritance from :root. var() references are followed
// within the same mode and bare HSL components are normalized to hsl().
func (c *Context) Value(mode Mode, name string) (string, bool) {
	raw, ok := c.lookup(mode, name)
	if !ok {
		return "", false
	}
	return NormalizeColor(c.expand(mode, raw, map[string]bool{name: true}, 0)), true
}

func (c *Context) lookup(mode Mode, name string) (string, bool) {
	if mode == ModeDark {
		if v, ok := c.Dark[name]; ok {
			return v, true
		}
	}
	v, ok := c.Light[name]
	return v, ok
}

// expand replaces var(--x[, fallback]) occurrences in raw. Cyclic or overly
// deep references are left unexpanded.
func (c *Context) expand(mode Mode, raw string, seen map[string]bool, depth int) string {
	if depth >= maxVarDepth || !strings.Contains(raw, "var(") {
		return raw
	}

	var out strings.Builder
	rest := raw
	for {
		start := strings.Index(rest, "var(")
		if start < 0 {
			out.WriteString(rest)
			break
		}
		end := matchingParen(rest, start+3)
		if end < 0 {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:start])

		inner := rest[start+4 : end]
		ref, fallback, _ := strings.Cut(inner, ",")
		ref = strings.TrimSpace(ref)
		fallback = strings.TrimSpace(fallback)

		resolved := rest[start : end+1]
		if v, ok := c.lookup(mode, ref); ok && !seen[ref] {
			seen[ref] = true
			resolved = c.expand(mode, v, seen, depth+1)
			delete(seen, ref)
		} else if fallback != "" && !seen[ref] {
			resolved = c.expand(mode, fallback, seen, depth+1)
		}
		out.WriteString(resolved)
		rest = rest[end+1:]
	}
	return out.String()
}

func matchingParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// NormalizeColor turns space-separated HSL components ("222 47% 11%",
// optionally with "/ alpha") into "hsl(...)". Other values pass through
// unchanged.
func NormalizeColor(raw string) string {
	v := strings.TrimSpace(raw)
	main, alpha, hasAlpha := strings.Cut(v, "/")
	parts := strings.Fields(main)
	if len(parts) != 3 {
		return v
	}
	if !isHue(parts[0]) || !isPercent(parts[1]) || !isPercent(parts[2]) {
		return v
	}
	out := "hsl(" + strings.Join(parts, " ")
	if hasAlpha {
		a := strings.TrimSpace(alpha)
		if a == "" {
			return v
		}
		out += " / " + a
	}
	return out + ")"
}

func isHue(s string) bool {
	s = strings.TrimSuffix(s, "deg")
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func isPercent(s string) bool {
	if !strings.HasSuffix(s, "%") {
		return false
	}
	_, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	return err == nil
}

// Annotate maps a component's classes onto theme variables. The result is
// sorted by class and holds one entry per distinct class.
func (c *Context) Annotate(classes []string) []registry.ThemeUsage {
	seen := make(map[string]bool, len(classes))
	var usages []registry.ThemeUsage
	for _, class := range classes {
		if seen[class] {
			continue
		}
		seen[class] = true

		name, ok := c.VariableForClass(class)
		if !ok {
			continue
		}
		u := registry.ThemeUsage{Class: class, Variable: name}
		u.Light, _ = c.Value(ModeLight, name)
		if len(c.Dark) > 0 {
			u.Dark, _ = c.Value(ModeDark, name)
		}
		usages = append(usages, u)
	}
	sort.Slice(usages, func(i, j int) bool { return usages[i].Class < usages[j].Class })
	return usages
}

// Summary renders the context for the registry document. File paths are
// made relative to the project root.
func (c *Context) Summary() *registry.ThemeSummary {
	s := &registry.ThemeSummary{
		CSSVariables:     c.Config.UsesCSSVariables(),
		NamingConvention: c.Naming,
		ConfigFile:       relTo(c.Root, c.ConfigFile),
		Stylesheet:       relTo(c.Root, c.Stylesheet),
	}
	if c.Config != nil {
		s.Style = c.Config.Style
		s.BaseColor = c.Config.Tailwind.BaseColor
		s.Prefix = c.Config.Tailwind.Prefix
	}

	names := make(map[string]bool, len(c.Light)+len(c.Dark))
	for n := range c.Light {
		names[n] = true
	}
	for n := range c.Dark {
		names[n] = true
	}
	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	for _, n := range sorted {
		v := registry.ThemeVariable{Name: n}
		if _, ok := c.Light[n]; ok {
			v.Light, _ = c.Value(ModeLight, n)
		}
		if _, ok := c.Dark[n]; ok {
			v.Dark, _ = c.Value(ModeDark, n)
		}
		s.Variables = append(s.Variables, v)
	}
	return s
}

// StripClassModifiers removes variant prefixes and the important marker
// from a utility class: "md:hover:!bg-primary" becomes "bg-primary".
func StripClassModifiers(class string) string {
	if idx := lastTopLevelColon(class); idx >= 0 {
		class = class[idx+1:]
	}
	class = strings.TrimPrefix(class, "!")
	return strings.TrimSuffix(class, "!")
}

// lastTopLevelColon finds the last ':' outside square brackets so arbitrary
// values like "bg-[url(a:b)]" survive.
func lastTopLevelColon(s string) int {
	depth := 0
	last := -1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case ':':
			if depth == 0 {
				last = i
			}
		}
	}
	return last
}

func detectNaming(light, dark Variables) string {
	for _, table := range []Variables{light, dark} {
		for name := range table {
			if strings.HasPrefix(name, "--color-") {
				return NamingColorPrefixed
			}
		}
	}
	return NamingBare
}
