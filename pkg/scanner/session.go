package scanner

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gnana997/uiregistry/pkg/registry"
	"github.com/gnana997/uiregistry/pkg/theme"
	"github.com/gnana997/uiregistry/pkg/util"
)

// Session is one scan root with the caches that survive between scans of
// it. A long-running watcher keeps a session and invalidates changed files;
// one-shot scans use a fresh session.
type Session struct {
	s        *Scanner
	root     string
	analyses *AnalysisCache
	resolver *Resolver
	themes   *theme.Cache

	// scans are serialized; the resolver memo is per scan
	mu sync.Mutex
}

func newSession(s *Scanner, root string) (*Session, error) {
	analyses, err := NewAnalysisCache(root, s.pm, s.files, s.opts.CacheSize, s.log)
	if err != nil {
		return nil, err
	}
	return &Session{
		s:        s,
		root:     root,
		analyses: analyses,
		resolver: NewResolver(root, analyses, s.opts.Config.maxDepth(), s.log),
		themes:   theme.NewCache(s.pm, root, s.log),
	}, nil
}

// Root returns the absolute scan root.
func (ss *Session) Root() string {
	return ss.root
}

// Invalidate forgets everything cached about paths. A changed stylesheet or
// project file drops the loaded themes. A path without an extension is
// taken to be a directory, and every cached analysis is dropped since the
// files below it are unknown.
func (ss *Session) Invalidate(paths ...string) {
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(ss.root, p)
		}
		p = filepath.Clean(p)
		ss.analyses.Invalidate(p)

		switch strings.ToLower(filepath.Ext(p)) {
		case ".css", ".json":
			ss.themes.Reset()
		case "":
			ss.s.log.Debug("directory changed, dropping cached analyses", "path", p, "cached", ss.analyses.Len())
			ss.analyses.Purge()
			ss.themes.Reset()
		}
	}
}

// Scan analyzes files and assembles a registry. Per-file failures become
// diagnostics; only an empty file set, a cancelled context or an
// unreadable root fail the scan.
func (ss *Session) Scan(ctx context.Context, files []string) (*Result, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	res, err := ss.scan(ctx, files)
	ss.s.opts.Metrics.ScanDone(err)
	return res, err
}

func (ss *Session) scan(ctx context.Context, files []string) (*Result, error) {
	log := ss.s.log
	m := ss.s.opts.Metrics
	totalStart := time.Now()
	stats := ScanStats{}

	files = normalizeFiles(ss.root, files)
	stats.FilesDiscovered = len(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoSourceFiles, ss.root)
	}

	// Analysis
	analysisStart := time.Now()
	loadsBefore := ss.analyses.Loads()
	analyses, err := ss.analyzeAll(ctx, files)
	if err != nil {
		return nil, err
	}
	var descs []*descriptor
	for _, a := range analyses {
		if a.Failed {
			stats.FilesFailed++
			continue
		}
		stats.FilesAnalyzed++
		rel := relPath(ss.root, a.Path)
		for i := range a.Components {
			f := &a.Components[i]
			descs = append(descs, newDescriptor(f, f.Name, a.Path, rel))
		}
	}
	stats.CanonicalComponents = len(descs)
	stats.AnalysisTimeMs = msSince(analysisStart)
	m.AddFiles("ok", stats.FilesAnalyzed)
	m.AddFiles("failed", stats.FilesFailed)
	m.ObservePhase("analysis", time.Since(analysisStart))

	log.Info("analysis complete",
		"analyzed", stats.FilesAnalyzed,
		"failed", stats.FilesFailed,
		"components", stats.CanonicalComponents,
		"ms", stats.AnalysisTimeMs)

	// Resolution
	resolutionStart := time.Now()
	ss.resolver.Reset()
	for _, a := range analyses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if a.Failed || len(a.Edges) == 0 {
			continue
		}
		barrelRel := relPath(ss.root, a.Path)
		for _, exp := range ss.resolver.Resolve(a.Path) {
			d := newDescriptor(exp.Facts, exp.Name, exp.File, relPath(ss.root, exp.File))
			p := &d.component.Provenance
			p.Canonical = false
			p.ExportKind = registry.ExportNamed
			p.ReExportedFrom = barrelRel
			p.ResolutionDepth = exp.Depth
			descs = append(descs, d)
			stats.BarrelComponents++
		}
	}
	stats.FilesParsed = ss.analyses.Loads() - loadsBefore
	stats.ResolutionTimeMs = msSince(resolutionStart)
	m.AddComponents("canonical", stats.CanonicalComponents)
	m.AddComponents("barrel", stats.BarrelComponents)
	m.ObservePhase("resolution", time.Since(resolutionStart))

	log.Info("resolution complete",
		"barrel_components", stats.BarrelComponents,
		"files_touched", len(ss.resolver.Touched()),
		"ms", stats.ResolutionTimeMs)

	diags := ss.collectDiagnostics(analyses)

	// Theme context
	ss.attachThemes(descs)

	// Type-aware analysis (optional)
	if ss.s.opts.TypeAnalyzer != nil {
		typeStart := time.Now()
		merged, diag := ss.mergeTyped(ctx, descs)
		if diag != nil {
			diags = append(diags, *diag)
		}
		stats.TypedComponents = merged
		stats.TypeAnalysisMs = msSince(typeStart)
		m.ObservePhase("type_analysis", time.Since(typeStart))
	}

	// Dedup and assembly
	assemblyStart := time.Now()
	dd := NewDeduplicator()
	for _, d := range descs {
		dd.Add(d)
	}
	stats.DuplicatesDropped = dd.Dropped()
	m.AddDuplicates(stats.DuplicatesDropped)

	rootTheme, err := ss.themes.Load(ss.root)
	if err != nil {
		log.Warn("failed to load root theme", "root", ss.root, "error", err)
		rootTheme = nil
	}
	asm := &Assembler{
		Name:  ss.s.opts.Name,
		Root:  ss.root,
		Theme: rootTheme,
		Now:   ss.s.opts.Now,
	}
	if asm.Name == "" {
		asm.Name = filepath.Base(ss.root)
	}
	reg := asm.Assemble(dd.descriptors(), diags)

	stats.TokensMatched = len(reg.Tokens)
	stats.Diagnostics = len(reg.Diagnostics)
	for _, d := range reg.Diagnostics {
		m.AddDiagnostic(string(d.Kind))
	}
	m.SetTokens(stats.TokensMatched)
	stats.AssemblyTimeMs = msSince(assemblyStart)
	m.ObservePhase("assembly", time.Since(assemblyStart))

	stats.TotalTimeMs = msSince(totalStart)
	m.ObservePhase("total", time.Since(totalStart))

	log.Info("registry assembled",
		"components", len(reg.Components),
		"duplicates_dropped", stats.DuplicatesDropped,
		"tokens", stats.TokensMatched,
		"diagnostics", stats.Diagnostics,
		"ms", stats.AssemblyTimeMs)

	return &Result{Registry: reg, Stats: stats}, nil
}

// analyzeAll analyzes files in parallel and returns the analyses in input
// order. Files that fail are returned with Failed set.
func (ss *Session) analyzeAll(ctx context.Context, files []string) ([]*FileAnalysis, error) {
	numWorkers := util.GetOptimalPoolSizeWithOverride(ss.s.opts.Config.Workers)
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	out := make([]*FileAnalysis, len(files))
	jobs := make(chan int, numWorkers*2)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					continue
				}
				out[idx] = ss.analyses.Get(files[idx])
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan cancelled: %w", err)
	}
	return out, nil
}

// collectDiagnostics gathers per-file diagnostics of the scanned files and
// of every file the resolver reached, plus unresolved exports.
func (ss *Session) collectDiagnostics(analyses []*FileAnalysis) []registry.Diagnostic {
	var diags []registry.Diagnostic
	seen := make(map[string]bool, len(analyses))
	for _, a := range analyses {
		seen[a.Path] = true
		diags = append(diags, a.Diagnostics...)
	}
	for _, path := range ss.resolver.Touched() {
		if seen[path] {
			continue
		}
		if a, ok := ss.analyses.Peek(path); ok {
			diags = append(diags, a.Diagnostics...)
		}
	}
	return append(diags, ss.resolver.Diagnostics()...)
}

// attachThemes gives every descriptor the theme of the project containing
// its declaring file.
func (ss *Session) attachThemes(descs []*descriptor) {
	byDir := make(map[string]*theme.Context)
	for _, d := range descs {
		dir := filepath.Dir(d.file)
		ctx, ok := byDir[dir]
		if !ok {
			var err error
			ctx, err = ss.themes.Load(dir)
			if err != nil {
				ss.s.log.Warn("failed to load theme", "dir", dir, "error", err)
				ctx = nil
			}
			byDir[dir] = ctx
		}
		d.theme = ctx
	}
}

// mergeTyped runs the type analyzer over the declaring files and folds its
// results into matching descriptors. A failing analyzer yields a diagnostic
// and leaves every descriptor structural.
func (ss *Session) mergeTyped(ctx context.Context, descs []*descriptor) (int, *registry.Diagnostic) {
	fileSet := make(map[string]bool)
	for _, d := range descs {
		fileSet[d.file] = true
	}
	files := sortedKeys(fileSet)

	typed, err := ss.s.opts.TypeAnalyzer.Analyze(ctx, ss.root, files)
	if err != nil {
		ss.s.log.Warn("type analysis failed, continuing with structural data only", "error", err)
		return 0, &registry.Diagnostic{
			Kind:    registry.DiagTypeAnalysis,
			Message: err.Error(),
		}
	}

	merged := 0
	for _, d := range descs {
		tc, ok := typed[d.component.Name]
		if !ok && d.component.Provenance.LocalName != "" {
			tc, ok = typed[d.component.Provenance.LocalName]
		}
		if !ok {
			continue
		}
		d.component = MergeTyped(d.component, tc)
		merged++
	}
	ss.s.log.Info("type analysis merged", "components", merged)
	return merged, nil
}

// newDescriptor builds a canonical descriptor for facts exposed as name.
func newDescriptor(f *ComponentFacts, name, file, rel string) *descriptor {
	comp := registry.Component{
		Name:        name,
		SourceFile:  rel,
		Category:    InferCategory(name, rel),
		Props:       append([]registry.Prop{}, f.Props...),
		Variants:    f.Variants,
		Composition: f.Composition,
		Provenance: registry.Provenance{
			DeclarationKind: f.DeclarationKind,
			Wrappers:        f.Wrappers,
			ExportKind:      f.ExportKind,
			Canonical:       true,
			Analyzer:        registry.AnalyzerStructural,
		},
	}
	if len(f.DefaultVariants) > 0 {
		comp.DefaultVariants = make(map[string]string, len(f.DefaultVariants))
		for k, v := range f.DefaultVariants {
			comp.DefaultVariants[k] = v
		}
	}
	switch {
	case f.LocalName != "" && f.LocalName != name:
		comp.Provenance.LocalName = f.LocalName
	case f.LocalName == "" && f.Name != name:
		comp.Provenance.LocalName = f.Name
	}
	return &descriptor{
		component: comp,
		classes:   f.Classes,
		file:      file,
	}
}
