package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gnana997/uiregistry/pkg/observability"
	"github.com/gnana997/uiregistry/pkg/parser"
	"github.com/gnana997/uiregistry/pkg/util"
)

// Options configures a Scanner.
type Options struct {
	Config ScanConfig
	// Name is written into the registry. Defaults to the root's base name.
	Name string
	// TypeAnalyzer is optional.
	TypeAnalyzer TypeAnalyzer
	Metrics      *observability.Metrics
	Logger       *slog.Logger
	// CacheSize bounds the per-session analysis cache.
	CacheSize int
	// Now stamps the registry; defaults to time.Now.
	Now func() time.Time
}

// Scanner owns the long-lived resources of the pipeline: parser pools and
// the memory-mapped source cache.
type Scanner struct {
	opts  Options
	pm    *parser.ParserManager
	files util.FileCache
	log   *slog.Logger
}

// NewScanner creates a scanner with all required dependencies.
func NewScanner(opts Options) *Scanner {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Config.Include == nil && opts.Config.Exclude == nil {
		defaults := DefaultScanConfig()
		opts.Config.Include, opts.Config.Exclude = defaults.Include, defaults.Exclude
	}
	fcCfg := util.DefaultFileCacheConfig()
	fcCfg.Logger = opts.Logger
	return &Scanner{
		opts:  opts,
		pm:    parser.NewParserManager(opts.Logger),
		files: util.NewFileCache(fcCfg),
		log:   opts.Logger,
	}
}

// Run discovers the component sources under rootDir and scans them.
func (s *Scanner) Run(ctx context.Context, rootDir string) (*Result, error) {
	start := time.Now()
	files, err := DiscoverFiles(rootDir, s.opts.Config)
	if err != nil {
		s.opts.Metrics.ScanDone(err)
		return nil, fmt.Errorf("discovery failed: %w", err)
	}
	discoveryMs := msSince(start)
	s.opts.Metrics.ObservePhase("discovery", time.Since(start))
	s.log.Info("discovery complete", "files", len(files), "ms", discoveryMs)

	res, err := s.ScanFiles(ctx, rootDir, files)
	if err != nil {
		return nil, err
	}
	res.Stats.DiscoveryTimeMs = discoveryMs
	res.Stats.TotalTimeMs += discoveryMs
	return res, nil
}

// ScanFiles scans an explicit file list. Relative paths are taken from
// rootDir; files that are not component sources are ignored.
func (s *Scanner) ScanFiles(ctx context.Context, rootDir string, files []string) (*Result, error) {
	sess, err := s.NewSession(rootDir)
	if err != nil {
		s.opts.Metrics.ScanDone(err)
		return nil, err
	}
	return sess.Scan(ctx, files)
}

// NewSession creates a session with fresh caches for rootDir.
func (s *Scanner) NewSession(rootDir string) (*Session, error) {
	root, err := checkRoot(rootDir)
	if err != nil {
		return nil, err
	}
	return newSession(s, root)
}

// Close releases parser pools and mapped files.
func (s *Scanner) Close() error {
	fcErr := s.files.Close()
	pmErr := s.pm.Close()
	if fcErr != nil {
		return fcErr
	}
	return pmErr
}
