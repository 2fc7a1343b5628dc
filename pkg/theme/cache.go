package theme

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gnana997/uiregistry/pkg/parser"
)

// Cache loads theme contexts once per project root and shares them for the
// lifetime of a scan session. Entries are only dropped by Reset.
type Cache struct {
	parsers *parser.ParserManager
	logger  *slog.Logger
	// scan root, used as the project root of files with no marker above them
	fallback string

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	once sync.Once
	ctx  *Context
	err  error
}

// NewCache creates a theme cache that parses stylesheets with pm. Files
// outside any marked project belong to scanRoot.
func NewCache(pm *parser.ParserManager, scanRoot string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		parsers:  pm,
		logger:   logger,
		fallback: scanRoot,
		entries:  make(map[string]*cacheEntry),
	}
}

// Load returns the theme context for the project containing dir. It returns
// (nil, nil) when the project has neither a theme configuration nor a global
// stylesheet. Concurrent callers for the same root share one load.
func (c *Cache) Load(dir string) (*Context, error) {
	root := FindProjectRoot(dir, c.fallback)

	c.mu.Lock()
	entry, ok := c.entries[root]
	if !ok {
		entry = &cacheEntry{}
		c.entries[root] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		entry.ctx, entry.err = c.load(root)
	})
	return entry.ctx, entry.err
}

// Reset drops every cached context.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// Len reports how many project roots have been loaded or are loading.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) load(root string) (*Context, error) {
	cfg, cfgPath, err := loadConfig(root)
	if err != nil {
		// a broken config should not hide a usable stylesheet
		c.logger.Warn("ignoring theme configuration", "root", root, "error", err)
		cfg, cfgPath = nil, ""
	}

	sheet := findStylesheet(root, cfg)
	if cfg == nil && sheet == "" {
		c.logger.Debug("no theme found", "root", root)
		return nil, nil
	}

	ctx := &Context{
		Root:       root,
		ConfigFile: cfgPath,
		Stylesheet: sheet,
		Config:     cfg,
		Light:      Variables{},
		Dark:       Variables{},
	}
	if sheet != "" {
		src, err := os.ReadFile(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read stylesheet %s: %w", sheet, err)
		}
		tables, err := parseStylesheet(c.parsers, src)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sheet, err)
		}
		ctx.Light, ctx.Dark = tables.light, tables.dark
	}
	ctx.Naming = detectNaming(ctx.Light, ctx.Dark)

	c.logger.Debug("loaded theme",
		"root", root,
		"config", cfgPath != "",
		"stylesheet", sheet,
		"light_vars", len(ctx.Light),
		"dark_vars", len(ctx.Dark))
	return ctx, nil
}

func relTo(root, path string) string {
	if path == "" {
		return ""
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
