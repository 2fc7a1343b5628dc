package util

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"
)

// ErrCacheFull is returned when loading another file would exceed MaxFiles.
var ErrCacheFull = errors.New("file cache limit reached")

// FileCache serves read-only source bytes for a scan session.
//
// Files are memory-mapped on first access and stay mapped until Invalidate
// or Close. When mmap fails the file is read into memory instead. Returned
// slices are only valid until the entry is invalidated; callers that retain
// text must copy it.
type FileCache interface {
	Get(path string) ([]byte, error)
	Invalidate(path string)
	Stats() FileCacheStats
	Close() error
}

// FileCacheConfig controls FileCache limits.
type FileCacheConfig struct {
	// MaxFiles caps the number of resident files. Zero means unlimited.
	MaxFiles int
	Logger   *slog.Logger
}

// DefaultFileCacheConfig returns a config sized for medium monorepos.
func DefaultFileCacheConfig() *FileCacheConfig {
	return &FileCacheConfig{MaxFiles: 20000}
}

// FileCacheStats tracks cache usage.
type FileCacheStats struct {
	FilesCached  int
	Hits         int64
	Misses       int64
	MmapFailures int64
	BytesMapped  int64
}

type cachedFile struct {
	data   mmap.MMap
	file   *os.File
	mapped bool
}

func (c *cachedFile) release() error {
	var errs []error
	if c.mapped && c.data != nil {
		errs = append(errs, c.data.Unmap())
	}
	if c.file != nil {
		errs = append(errs, c.file.Close())
	}
	return errors.Join(errs...)
}

type fileCache struct {
	config *FileCacheConfig
	logger *slog.Logger

	mu    sync.RWMutex
	files map[string]*cachedFile
	stats FileCacheStats
}

// NewFileCache creates a FileCache. A nil config uses DefaultFileCacheConfig.
func NewFileCache(config *FileCacheConfig) FileCache {
	if config == nil {
		config = DefaultFileCacheConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &fileCache{
		config: config,
		logger: logger,
		files:  make(map[string]*cachedFile),
	}
}

func (fc *fileCache) Get(path string) ([]byte, error) {
	fc.mu.RLock()
	if cf, ok := fc.files[path]; ok {
		fc.mu.RUnlock()
		fc.mu.Lock()
		fc.stats.Hits++
		fc.mu.Unlock()
		return cf.data, nil
	}
	fc.mu.RUnlock()

	fc.mu.Lock()
	defer fc.mu.Unlock()
	if cf, ok := fc.files[path]; ok {
		fc.stats.Hits++
		return cf.data, nil
	}
	fc.stats.Misses++

	if fc.config.MaxFiles > 0 && len(fc.files) >= fc.config.MaxFiles {
		return nil, fmt.Errorf("%w: %d files", ErrCacheFull, fc.config.MaxFiles)
	}

	cf, err := fc.load(path)
	if err != nil {
		return nil, err
	}
	fc.files[path] = cf
	fc.stats.BytesMapped += int64(len(cf.data))
	return cf.data, nil
}

// load must be called with mu held.
func (fc *fileCache) load(path string) (*cachedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat %q: %w", path, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%q is a directory", path)
	}
	// zero-length files cannot be mapped
	if info.Size() == 0 {
		f.Close()
		return &cachedFile{data: mmap.MMap{}}, nil
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err == nil {
		return &cachedFile{data: data, file: f, mapped: true}, nil
	}
	f.Close()

	fc.logger.Debug("mmap failed, reading file", "path", path, "error", err)
	fc.stats.MmapFailures++
	raw, readErr := os.ReadFile(path)
	if readErr != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, readErr)
	}
	return &cachedFile{data: mmap.MMap(raw)}, nil
}

func (fc *fileCache) Invalidate(path string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	cf, ok := fc.files[path]
	if !ok {
		return
	}
	delete(fc.files, path)
	fc.stats.BytesMapped -= int64(len(cf.data))
	if err := cf.release(); err != nil {
		fc.logger.Warn("failed to release cached file", "path", path, "error", err)
	}
}

func (fc *fileCache) Stats() FileCacheStats {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	stats := fc.stats
	stats.FilesCached = len(fc.files)
	return stats
}

func (fc *fileCache) Close() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var errs []error
	for path, cf := range fc.files {
		if err := cf.release(); err != nil {
			errs = append(errs, fmt.Errorf("release %q: %w", path, err))
		}
	}
	fc.files = make(map[string]*cachedFile)
	fc.stats.BytesMapped = 0
	return errors.Join(errs...)
}
