package scanner

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uiregistry/pkg/parser"
	"github.com/gnana997/uiregistry/pkg/registry"
	"github.com/gnana997/uiregistry/pkg/util"
)

// DefaultAnalysisCacheSize is the number of file analyses kept in memory.
const DefaultAnalysisCacheSize = 4096

// AnalysisCache holds per-file analyses for one session so that a file
// reached through several barrel chains is read and parsed once.
type AnalysisCache struct {
	parsers *parser.ParserManager
	files   util.FileCache
	logger  *slog.Logger
	rootDir string

	cache *lru.Cache[string, *FileAnalysis]

	mu       sync.Mutex
	inflight map[string]*inflightLoad

	loads atomic.Int64
}

type inflightLoad struct {
	done     chan struct{}
	analysis *FileAnalysis
}

// NewAnalysisCache creates a cache. size <= 0 uses DefaultAnalysisCacheSize.
func NewAnalysisCache(rootDir string, pm *parser.ParserManager, files util.FileCache, size int, logger *slog.Logger) (*AnalysisCache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if size <= 0 {
		size = DefaultAnalysisCacheSize
	}
	c, err := lru.New[string, *FileAnalysis](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis cache: %w", err)
	}
	return &AnalysisCache{
		parsers:  pm,
		files:    files,
		logger:   logger,
		rootDir:  rootDir,
		cache:    c,
		inflight: make(map[string]*inflightLoad),
	}, nil
}

// Get returns the analysis for path, analyzing the file on first use.
// Concurrent callers for the same path share one analysis.
func (c *AnalysisCache) Get(path string) *FileAnalysis {
	if a, ok := c.cache.Get(path); ok {
		return a
	}

	c.mu.Lock()
	if a, ok := c.cache.Get(path); ok {
		c.mu.Unlock()
		return a
	}
	if load, ok := c.inflight[path]; ok {
		c.mu.Unlock()
		<-load.done
		return load.analysis
	}
	load := &inflightLoad{done: make(chan struct{})}
	c.inflight[path] = load
	c.mu.Unlock()

	load.analysis = c.analyze(path)
	c.loads.Add(1)
	c.cache.Add(path, load.analysis)

	c.mu.Lock()
	delete(c.inflight, path)
	c.mu.Unlock()
	close(load.done)
	return load.analysis
}

// Peek returns a cached analysis without loading it.
func (c *AnalysisCache) Peek(path string) (*FileAnalysis, bool) {
	return c.cache.Peek(path)
}

// Invalidate drops the analysis of path and its cached file contents.
func (c *AnalysisCache) Invalidate(path string) {
	c.cache.Remove(path)
	if c.files != nil {
		c.files.Invalidate(path)
	}
}

// Purge drops every cached analysis and the file contents behind them.
func (c *AnalysisCache) Purge() {
	if c.files != nil {
		for _, path := range c.cache.Keys() {
			c.files.Invalidate(path)
		}
	}
	c.cache.Purge()
}

// Len reports how many analyses are cached.
func (c *AnalysisCache) Len() int {
	return c.cache.Len()
}

// Loads reports how many files were analyzed.
func (c *AnalysisCache) Loads() int64 {
	return c.loads.Load()
}

func (c *AnalysisCache) read(path string) ([]byte, error) {
	if c.files != nil {
		data, err := c.files.Get(path)
		if !errors.Is(err, util.ErrCacheFull) {
			return data, err
		}
	}
	return os.ReadFile(path)
}

func (c *AnalysisCache) analyze(path string) (a *FileAnalysis) {
	rel := relPath(c.rootDir, path)
	a = &FileAnalysis{Path: path}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("analysis panicked", "file", path, "panic", r)
			*a = FileAnalysis{Path: path, Failed: true, Diagnostics: []registry.Diagnostic{{
				Kind:    registry.DiagParseError,
				File:    rel,
				Message: fmt.Sprintf("analysis panicked: %v", r),
			}}}
		}
	}()

	source, err := c.read(path)
	if err != nil {
		c.logger.Warn("failed to read source", "file", path, "error", err)
		a.Failed = true
		a.Diagnostics = append(a.Diagnostics, registry.Diagnostic{
			Kind: registry.DiagParseError, File: rel, Message: err.Error(),
		})
		return a
	}

	tree, err := c.parsers.ParseFile(source, path)
	if err != nil {
		c.logger.Warn("failed to parse source", "file", path, "error", err)
		a.Failed = true
		a.Diagnostics = append(a.Diagnostics, registry.Diagnostic{
			Kind: registry.DiagParseError, File: rel, Message: err.Error(),
		})
		return a
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		line := firstErrorLine(root)
		c.logger.Warn("syntax error", "file", path, "line", line)
		a.Failed = true
		a.Diagnostics = append(a.Diagnostics, registry.Diagnostic{
			Kind:    registry.DiagParseError,
			File:    rel,
			Message: fmt.Sprintf("syntax error near line %d", line),
		})
		return a
	}

	analyzeTree(a, tree, source, rel)
	return a
}

// analyzeTree fills a from a parsed file.
func analyzeTree(a *FileAnalysis, tree *ts.Tree, source []byte, rel string) {
	root := tree.RootNode()
	cls := ClassifyFile(tree, a.Path, source)
	a.Edges = cls.Edges

	calls, diags := ExtractVariantCalls(root, source, rel)
	a.Diagnostics = append(a.Diagnostics, diags...)
	if len(cls.Candidates) == 0 {
		return
	}

	types := collectTypeDecls(root, source)
	single := len(cls.Candidates) == 1
	for _, cand := range cls.Candidates {
		fn := cls.Function(cand.Name)
		facts := ComponentFacts{Candidate: cand}

		px := extractProps(fn, types, source)
		facts.Props = px.props

		var classes []string
		if call := associateVariantCall(calls, px.variantRef, fn, source, single); call != nil {
			facts.Variants = call.Variants
			if len(call.Defaults) > 0 {
				facts.DefaultVariants = make(map[string]string, len(call.Defaults))
				for k, v := range call.Defaults {
					facts.DefaultVariants[k] = v
				}
			}
			facts.Props = mergeVariantProps(facts.Props, variantProps(call))
			classes = append(classes, call.Classes...)
		}
		classes = append(classes, classNames(fn, source)...)
		facts.Classes = splitClasses(classes)
		facts.Composition = composition(fn, source, cand.Name)

		if facts.Props == nil {
			facts.Props = []registry.Prop{}
		}
		a.Components = append(a.Components, facts)
	}
}

// classNames collects the static strings of className attributes and of
// class-merging helper calls inside a component.
func classNames(fn *ts.Node, source []byte) []string {
	var out []string
	walk(fn, func(n *ts.Node) bool {
		switch n.Kind() {
		case "jsx_attribute":
			named := namedChildren(n)
			if len(named) < 2 {
				return false
			}
			name := named[0].Utf8Text(source)
			if name != "className" && name != "class" {
				return false
			}
			out = append(out, stringValues(named[1], source)...)
			return false
		case "call_expression":
			switch calleeName(n, source) {
			case "cn", "clsx", "classNames", "cx", "twMerge", "twJoin":
				out = append(out, stringValues(n.ChildByFieldName("arguments"), source)...)
				return false
			}
		}
		return true
	})
	return out
}

// composition lists the other upper-camel-case JSX elements a component
// renders, sorted.
func composition(fn *ts.Node, source []byte, self string) []string {
	seen := make(map[string]bool)
	walk(fn, func(n *ts.Node) bool {
		switch n.Kind() {
		case "jsx_opening_element", "jsx_self_closing_element":
			if name := n.ChildByFieldName("name"); name != nil {
				text := name.Utf8Text(source)
				if text != self && registry.IsComponentName(text) {
					seen[text] = true
				}
			}
		}
		return true
	})
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func firstErrorLine(root *ts.Node) uint {
	var line uint
	walk(root, func(n *ts.Node) bool {
		if line != 0 {
			return false
		}
		if n.IsError() || n.IsMissing() {
			line = lineOf(n)
			return false
		}
		return n.HasError()
	})
	if line == 0 {
		line = 1
	}
	return line
}

// relPath renders path relative to root with forward slashes.
func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
