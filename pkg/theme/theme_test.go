package theme

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/uiregistry/pkg/parser"
)

const shadcnCSS = `@tailwind base;
@tailwind components;

@layer base {
  :root {
    --background: 0 0% 100%;
    --primary: 222.2 47.4% 11.2%;
    --primary-foreground: 210 40% 98%;
    --radius: 0.5rem;
    --ring: var(--primary);
  }

  .dark {
    --background: 222.2 84% 4.9%;
    --primary: 210 40% 98%;
  }
}
`

const componentsJSON = `{
  "style": "new-york",
  "tailwind": {
    "config": "tailwind.config.ts",
    "css": "src/styles/app.css",
    "baseColor": "slate",
    "cssVariables": true,
    "prefix": ""
  }
}`

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pm := parser.NewParserManager(logger)
	t.Cleanup(func() { pm.Close() })
	return NewCache(pm, "", logger)
}

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func shadcnProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"name":"app"}`)
	writeFile(t, root, "components.json", componentsJSON)
	writeFile(t, root, "src/styles/app.css", shadcnCSS)
	return root
}

func TestLoadShadcnProject(t *testing.T) {
	root := shadcnProject(t)
	cache := newTestCache(t)

	ctx, err := cache.Load(filepath.Join(root))
	require.NoError(t, err)
	require.NotNil(t, ctx)

	assert.Equal(t, "new-york", ctx.Config.Style)
	assert.Equal(t, NamingBare, ctx.Naming)
	assert.Equal(t, "222.2 47.4% 11.2%", ctx.Light["--primary"])
	assert.Equal(t, "0.5rem", ctx.Light["--radius"])
	assert.Equal(t, "210 40% 98%", ctx.Dark["--primary"])
	assert.Len(t, ctx.Dark, 2)

	light, ok := ctx.Value(ModeLight, "--primary")
	require.True(t, ok)
	assert.Equal(t, "hsl(222.2 47.4% 11.2%)", light)

	// --ring is only declared in :root but points at a variable .dark overrides
	dark, ok := ctx.Value(ModeDark, "--ring")
	require.True(t, ok)
	assert.Equal(t, "hsl(210 40% 98%)", dark)

	summary := ctx.Summary()
	assert.Equal(t, "components.json", summary.ConfigFile)
	assert.Equal(t, "src/styles/app.css", summary.Stylesheet)
	assert.Equal(t, "slate", summary.BaseColor)
	assert.True(t, summary.CSSVariables)
	require.Len(t, summary.Variables, 5)
	assert.Equal(t, "--background", summary.Variables[0].Name)
	assert.Equal(t, "hsl(222.2 84% 4.9%)", summary.Variables[0].Dark)
}

func TestAnnotate(t *testing.T) {
	root := shadcnProject(t)
	ctx, err := newTestCache(t).Load(root)
	require.NoError(t, err)
	require.NotNil(t, ctx)

	usages := ctx.Annotate([]string{
		"text-primary-foreground", "bg-primary", "hover:bg-primary/90",
		"p-4", "rounded-md", "bg-primary", "text-sm",
	})
	require.Len(t, usages, 4)

	assert.Equal(t, "bg-primary", usages[0].Class)
	assert.Equal(t, "--primary", usages[0].Variable)
	assert.Equal(t, "hsl(222.2 47.4% 11.2%)", usages[0].Light)
	assert.Equal(t, "hsl(210 40% 98%)", usages[0].Dark)

	assert.Equal(t, "hover:bg-primary/90", usages[1].Class)
	assert.Equal(t, "--primary", usages[1].Variable)

	assert.Equal(t, "rounded-md", usages[2].Class)
	assert.Equal(t, "--radius", usages[2].Variable)
	assert.Equal(t, "0.5rem", usages[2].Light)

	assert.Equal(t, "text-primary-foreground", usages[3].Class)
	assert.Equal(t, "hsl(210 40% 98%)", usages[3].Dark)
}

func TestLoadWithoutTheme(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"name":"plain"}`)
	writeFile(t, root, "src/button.tsx", `export function Button() { return null }`)

	ctx, err := newTestCache(t).Load(filepath.Join(root, "src"))
	assert.NoError(t, err)
	assert.Nil(t, ctx)
}

func TestLoadWellKnownStylesheet(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{}`)
	writeFile(t, root, "app/globals.css", `
:root { --accent: #f0f0f0; }
[data-theme="dark"] { --accent: #111; }
@media (prefers-color-scheme: dark) {
  :root { --background: black; }
}
`)

	ctx, err := newTestCache(t).Load(root)
	require.NoError(t, err)
	require.NotNil(t, ctx)
	assert.Nil(t, ctx.Config)
	assert.Equal(t, "#f0f0f0", ctx.Light["--accent"])
	assert.Equal(t, "#111", ctx.Dark["--accent"])
	assert.Equal(t, "black", ctx.Dark["--background"])
	assert.NotContains(t, ctx.Light, "--background")
}

func TestLoadTailwindV4Theme(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{}`)
	writeFile(t, root, "src/app/globals.css", `
@import "tailwindcss";

:root {
  --primary: oklch(0.205 0 0);
}

.dark {
  --primary: oklch(0.922 0 0);
}

@theme inline {
  --color-primary: var(--primary);
  --color-brand: #ff5500;
}
`)

	ctx, err := newTestCache(t).Load(root)
	require.NoError(t, err)
	require.NotNil(t, ctx)
	assert.Equal(t, NamingColorPrefixed, ctx.Naming)

	name, ok := ctx.VariableForClass("bg-brand")
	require.True(t, ok)
	assert.Equal(t, "--color-brand", name)

	dark, ok := ctx.Value(ModeDark, "--color-primary")
	require.True(t, ok)
	assert.Equal(t, "oklch(0.922 0 0)", dark)
}

func TestVarCycleTerminates(t *testing.T) {
	ctx := &Context{
		Light: Variables{"--a": "var(--b)", "--b": "var(--a)", "--c": "var(--missing, 1px)"},
	}
	v, ok := ctx.Value(ModeLight, "--a")
	assert.True(t, ok)
	assert.Equal(t, "var(--a)", v)

	v, ok = ctx.Value(ModeLight, "--c")
	assert.True(t, ok)
	assert.Equal(t, "1px", v)

	_, ok = ctx.Value(ModeLight, "--nope")
	assert.False(t, ok)
}

func TestNormalizeColor(t *testing.T) {
	testCases := map[string]string{
		"222 47% 11%":         "hsl(222 47% 11%)",
		"  0 0% 100% ":        "hsl(0 0% 100%)",
		"222 47% 11% / 0.5":   "hsl(222 47% 11% / 0.5)",
		"210deg 40% 98%":      "hsl(210deg 40% 98%)",
		"#ffffff":             "#ffffff",
		"oklch(0.2 0.1 250)":  "oklch(0.2 0.1 250)",
		"0.5rem":              "0.5rem",
		"1 2 3":               "1 2 3",
		"hsl(222 47% 11%)":    "hsl(222 47% 11%)",
	}
	for in, want := range testCases {
		assert.Equal(t, want, NormalizeColor(in), in)
	}
}

func TestStripClassModifiers(t *testing.T) {
	assert.Equal(t, "bg-primary", StripClassModifiers("md:hover:!bg-primary"))
	assert.Equal(t, "text-sm", StripClassModifiers("dark:text-sm"))
	assert.Equal(t, "bg-[url(a:b)]", StripClassModifiers("hover:bg-[url(a:b)]"))
	assert.Equal(t, "p-4", StripClassModifiers("p-4!"))
}

func TestPrefixedClasses(t *testing.T) {
	off := false
	ctx := &Context{
		Config: &Config{Tailwind: TailwindConfig{Prefix: "tw-", CSSVariables: &off}},
		Light:  Variables{"--primary": "1 2% 3%"},
	}
	_, ok := ctx.VariableForClass("bg-primary")
	assert.False(t, ok)
	name, ok := ctx.VariableForClass("hover:tw-bg-primary")
	assert.True(t, ok)
	assert.Equal(t, "--primary", name)
	assert.False(t, ctx.Config.UsesCSSVariables())
}

func TestCacheSharesPerRoot(t *testing.T) {
	root := shadcnProject(t)
	writeFile(t, root, "src/components/ui/button.tsx", "")
	cache := newTestCache(t)

	var wg sync.WaitGroup
	results := make([]*Context, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dir := root
			if i%2 == 0 {
				dir = filepath.Join(root, "src", "components", "ui")
			}
			ctx, err := cache.Load(dir)
			assert.NoError(t, err)
			results[i] = ctx
		}(i)
	}
	wg.Wait()

	for _, ctx := range results {
		assert.Same(t, results[0], ctx)
	}
	assert.Equal(t, 1, cache.Len())

	cache.Reset()
	assert.Equal(t, 0, cache.Len())
	again, err := cache.Load(root)
	require.NoError(t, err)
	assert.NotSame(t, results[0], again)
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "components.json", `{}`)
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	got := FindProjectRoot(nested, "")
	want, _ := filepath.Abs(root)
	assert.Equal(t, want, got)
}

func TestFindProjectRoot_NoMarker(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "components", "ui")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	want, _ := filepath.Abs(root)
	assert.Equal(t, want, FindProjectRoot(nested, root))

	self, _ := filepath.Abs(nested)
	assert.Equal(t, self, FindProjectRoot(nested, ""))
}

func TestCacheFallsBackToScanRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app/globals.css", `:root { --primary: 1 2% 3%; }`)
	nested := filepath.Join(root, "components", "ui")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pm := parser.NewParserManager(logger)
	t.Cleanup(func() { pm.Close() })
	cache := NewCache(pm, root, logger)

	fromFile, err := cache.Load(nested)
	require.NoError(t, err)
	require.NotNil(t, fromFile)
	assert.Equal(t, "1 2% 3%", fromFile.Light["--primary"])

	fromRoot, err := cache.Load(root)
	require.NoError(t, err)
	assert.Same(t, fromFile, fromRoot)
	assert.Equal(t, 1, cache.Len())
}

func TestMalformedConfigFallsBackToStylesheet(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "components.json", `{not json`)
	writeFile(t, root, "app/globals.css", `:root { --primary: 1 2% 3%; }`)

	ctx, err := newTestCache(t).Load(root)
	require.NoError(t, err)
	require.NotNil(t, ctx)
	assert.Nil(t, ctx.Config)
	assert.Equal(t, "1 2% 3%", ctx.Light["--primary"])
}
