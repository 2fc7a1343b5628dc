package scanner

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gnana997/uiregistry/pkg/registry"
)

// resolveExtensions are tried in order when a module specifier has no
// extension or names a directory.
var resolveExtensions = []string{".tsx", ".ts", ".jsx", ".js"}

// ResolvedExport is a component reached through one or more re-exports.
type ResolvedExport struct {
	// Edge is the re-export statement in Barrel the component came through.
	Edge ReExportEdge
	// Barrel is the file holding the re-export statement.
	Barrel string
	// File is the file declaring the component.
	File string
	// Symbol is the name the declaring file exports.
	Symbol string
	// Name is the name the barrel exposes.
	Name string
	// Alias repeats Name when it differs from Symbol.
	Alias string
	// Depth counts the re-export hops followed.
	Depth int
	Facts *ComponentFacts
}

// visitKey identifies one (file, symbol) resolution. The symbol "*" stands
// for every name a file exports.
type visitKey struct {
	file   string
	symbol string
}

type resolution struct {
	found []ResolvedExport
	// cyclic is set when the walk was cut short by a cycle; such
	// resolutions are not reported as unresolved.
	cyclic bool
	// limited is set when a branch hit the depth bound, so the outcome
	// depends on the depth the lookup started at.
	limited bool
	// reach is the deepest hop the walk visited.
	reach  int
	reason string
}

// absorb folds the walk state of sub into res.
func (res *resolution) absorb(sub resolution) {
	res.cyclic = res.cyclic || sub.cyclic
	res.limited = res.limited || sub.limited
	res.reach = max(res.reach, sub.reach)
}

// shift returns a copy of res with every depth moved by delta.
func (res resolution) shift(delta int) resolution {
	out := res
	out.reach += delta
	if len(res.found) > 0 {
		out.found = make([]ResolvedExport, len(res.found))
		for i, f := range res.found {
			f.Depth += delta
			out.found[i] = f
		}
	}
	return out
}

// Resolver follows re-export edges to the files declaring components. The
// memo of completed resolutions is shared by every barrel in a session and
// stores depths relative to where each lookup started.
type Resolver struct {
	root     string
	analyses *AnalysisCache
	maxDepth int
	logger   *slog.Logger

	mu      sync.Mutex
	memo    map[visitKey]resolution
	diags   []registry.Diagnostic
	touched map[string]bool
}

// NewResolver creates a resolver over the session's analysis cache.
func NewResolver(root string, analyses *AnalysisCache, maxDepth int, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Resolver{
		root:     root,
		analyses: analyses,
		maxDepth: maxDepth,
		logger:   logger,
		memo:     make(map[visitKey]resolution),
		touched:  make(map[string]bool),
	}
}

// Resolve returns every component exposed by the re-export edges of the
// barrel file. Unresolvable named edges are recorded as diagnostics;
// cycles terminate silently.
func (r *Resolver) Resolve(barrel string) []ResolvedExport {
	a := r.analyses.Get(barrel)
	if a.Failed || len(a.Edges) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var out []ResolvedExport
	seen := make(map[string]bool)
	for _, edge := range a.Edges {
		if edge.Exported == "default" {
			continue
		}
		path := []visitKey{{file: barrel, symbol: "*"}}
		var res resolution
		if edge.Wildcard {
			res = r.resolveWildcard(barrel, edge, 1, path)
		} else {
			path = []visitKey{{file: barrel, symbol: edge.Exported}}
			res = r.resolveEdge(barrel, edge, 1, path)
			if len(res.found) == 0 && !res.cyclic && res.reason != "" {
				r.record(barrel, edge.Exported, res.reason)
			}
		}
		for _, f := range res.found {
			name := f.Name
			if !edge.Wildcard {
				name = edge.Exported
			}
			if seen[name] {
				continue
			}
			seen[name] = true
			f.Name = name
			f.Alias = ""
			if name != f.Symbol {
				f.Alias = name
			}
			f.Barrel = barrel
			f.Edge = edge
			out = append(out, f)
		}
	}
	return out
}

// Diagnostics returns the unresolved-export diagnostics recorded so far,
// sorted by file then symbol.
func (r *Resolver) Diagnostics() []registry.Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]registry.Diagnostic(nil), r.diags...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}

// Reset clears the memo and recorded diagnostics.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.memo = make(map[visitKey]resolution)
	r.diags = nil
	r.touched = make(map[string]bool)
}

// Touched returns the files the resolver analyzed while following edges,
// sorted.
func (r *Resolver) Touched() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.touched))
	for f := range r.touched {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func (r *Resolver) analysis(file string) *FileAnalysis {
	r.touched[file] = true
	return r.analyses.Get(file)
}

func (r *Resolver) record(file, symbol, reason string) {
	for _, d := range r.diags {
		if d.File == relPath(r.root, file) && d.Symbol == symbol {
			return
		}
	}
	r.diags = append(r.diags, registry.Diagnostic{
		Kind:    registry.DiagUnresolvedExport,
		File:    relPath(r.root, file),
		Symbol:  symbol,
		Message: reason,
	})
}

// memoized returns the stored resolution of key shifted to depth, unless
// reusing it from depth would cross the depth bound.
func (r *Resolver) memoized(key visitKey, depth int) (resolution, bool) {
	res, ok := r.memo[key]
	if !ok || depth+res.reach > r.maxDepth {
		return resolution{}, false
	}
	return res.shift(depth), true
}

// remember stores res for key relative to depth. Results that depend on
// the current path or on the depth bound are not stored.
func (r *Resolver) remember(key visitKey, depth int, res resolution) {
	if res.cyclic || res.limited {
		return
	}
	r.memo[key] = res.shift(-depth)
}

func onPath(path []visitKey, key visitKey) bool {
	for _, k := range path {
		if k == key {
			return true
		}
	}
	return false
}

// resolveEdge follows a named edge of file.
func (r *Resolver) resolveEdge(file string, edge ReExportEdge, depth int, path []visitKey) resolution {
	target, external, err := r.resolveModule(file, edge.Source)
	if external {
		r.logger.Debug("skipping package re-export", "file", file, "source", edge.Source)
		return resolution{}
	}
	if err != nil {
		return resolution{reason: err.Error()}
	}
	return r.resolveSymbol(target, edge.Imported, depth, path)
}

// resolveSymbol finds the declaration of symbol as exported by file.
func (r *Resolver) resolveSymbol(file, symbol string, depth int, path []visitKey) resolution {
	if depth > r.maxDepth {
		return resolution{
			reason:  fmt.Sprintf("resolution depth %d exceeded at %s", r.maxDepth, relPath(r.root, file)),
			limited: true,
			reach:   depth,
		}
	}
	key := visitKey{file: file, symbol: symbol}
	if onPath(path, key) {
		return resolution{cyclic: true, reach: depth}
	}
	if res, ok := r.memoized(key, depth); ok {
		return res
	}
	path = append(path, key)

	a := r.analysis(file)
	if a.Failed {
		res := resolution{reason: fmt.Sprintf("%s could not be parsed", relPath(r.root, file)), reach: depth}
		r.remember(key, depth, res)
		return res
	}

	var facts *ComponentFacts
	if symbol == "default" {
		facts, _ = a.DefaultComponent()
	} else if f, ok := a.Component(symbol); ok && f.ExportKind == registry.ExportNamed {
		facts = f
	}
	if facts != nil {
		res := resolution{
			found: []ResolvedExport{{Name: symbol, Symbol: symbol, File: file, Depth: depth, Facts: facts}},
			reach: depth,
		}
		r.remember(key, depth, res)
		return res
	}

	res := resolution{reason: fmt.Sprintf("%s does not export %s", relPath(r.root, file), symbol), reach: depth}
	for _, edge := range a.Edges {
		if edge.Wildcard || edge.Exported != symbol {
			continue
		}
		sub := r.resolveEdge(file, edge, depth+1, path)
		res.absorb(sub)
		if len(sub.found) > 0 {
			res.found, res.reason = sub.found, ""
			break
		}
		if sub.reason != "" {
			res.reason = sub.reason
		}
	}
	if len(res.found) == 0 && symbol != "default" {
		// export * never forwards the default export
		for _, edge := range a.Edges {
			if !edge.Wildcard {
				continue
			}
			target, external, err := r.resolveModule(file, edge.Source)
			if external || err != nil {
				continue
			}
			sub := r.resolveSymbol(target, symbol, depth+1, path)
			res.absorb(sub)
			if len(sub.found) > 0 {
				res.found, res.reason = sub.found, ""
				break
			}
		}
	}
	r.remember(key, depth, res)
	return res
}

// resolveWildcard expands export * from edge.Source into every component
// the target exposes.
func (r *Resolver) resolveWildcard(file string, edge ReExportEdge, depth int, path []visitKey) resolution {
	target, external, err := r.resolveModule(file, edge.Source)
	if external {
		return resolution{}
	}
	if err != nil {
		r.record(file, "*", err.Error())
		return resolution{reason: err.Error()}
	}
	return r.exportsOf(target, depth, path)
}

// exportsOf lists every component name file exposes, except its default
// export.
func (r *Resolver) exportsOf(file string, depth int, path []visitKey) resolution {
	if depth > r.maxDepth {
		r.record(file, "*", fmt.Sprintf("resolution depth %d exceeded", r.maxDepth))
		return resolution{limited: true, reach: depth}
	}
	key := visitKey{file: file, symbol: "*"}
	if onPath(path, key) {
		return resolution{cyclic: true, reach: depth}
	}
	if res, ok := r.memoized(key, depth); ok {
		return res
	}
	path = append(path, key)

	a := r.analysis(file)
	res := resolution{reach: depth}
	if a.Failed {
		r.remember(key, depth, res)
		return res
	}

	seen := make(map[string]bool)
	add := func(found []ResolvedExport, name string) {
		for _, f := range found {
			n := f.Name
			if name != "" {
				n = name
			}
			if seen[n] {
				continue
			}
			seen[n] = true
			f.Name = n
			res.found = append(res.found, f)
		}
	}

	for i := range a.Components {
		c := &a.Components[i]
		if c.ExportKind != registry.ExportNamed {
			continue
		}
		add([]ResolvedExport{{Name: c.Name, Symbol: c.Name, File: file, Depth: depth, Facts: c}}, "")
	}
	for _, edge := range a.Edges {
		if edge.Wildcard || edge.Exported == "default" || seen[edge.Exported] {
			continue
		}
		sub := r.resolveEdge(file, edge, depth+1, path)
		res.absorb(sub)
		add(sub.found, edge.Exported)
	}
	for _, edge := range a.Edges {
		if !edge.Wildcard {
			continue
		}
		target, external, err := r.resolveModule(file, edge.Source)
		if external || err != nil {
			continue
		}
		sub := r.exportsOf(target, depth+1, path)
		res.absorb(sub)
		add(sub.found, "")
	}
	r.remember(key, depth, res)
	return res
}

// resolveModule maps a module specifier used in from to a file. Bare
// package specifiers are reported as external.
func (r *Resolver) resolveModule(from, spec string) (string, bool, error) {
	var bases []string
	switch {
	case strings.HasPrefix(spec, "./"), strings.HasPrefix(spec, "../"), spec == ".", spec == "..":
		bases = []string{filepath.Join(filepath.Dir(from), filepath.FromSlash(spec))}
	case strings.HasPrefix(spec, "@/"), strings.HasPrefix(spec, "~/"):
		rest := filepath.FromSlash(spec[2:])
		bases = []string{filepath.Join(r.root, rest), filepath.Join(r.root, "src", rest)}
	case strings.HasPrefix(spec, "/"):
		bases = []string{filepath.FromSlash(spec)}
	default:
		return "", true, nil
	}

	for _, base := range bases {
		if p, ok := resolveFile(base); ok {
			return p, false, nil
		}
	}
	return "", false, fmt.Errorf("cannot resolve module %q from %s", spec, relPath(r.root, from))
}

func resolveFile(base string) (string, bool) {
	if ext := filepath.Ext(base); ext != "" && isRegularFile(base) {
		return base, true
	}
	candidates := []string{base}
	switch filepath.Ext(base) {
	case ".js", ".jsx", ".mjs":
		// "./button.js" names button.tsx in TypeScript sources
		candidates = append(candidates, strings.TrimSuffix(base, filepath.Ext(base)))
	}
	for _, candidate := range candidates {
		for _, ext := range resolveExtensions {
			if isRegularFile(candidate + ext) {
				return candidate + ext, true
			}
		}
	}
	for _, ext := range resolveExtensions {
		p := filepath.Join(base, "index"+ext)
		if isRegularFile(p) {
			return p, true
		}
	}
	return "", false
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
