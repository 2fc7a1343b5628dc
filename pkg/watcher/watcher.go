// Package watcher reports batches of changed source and theme files under
// a project root.
package watcher

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/uiregistry/pkg/parser"
	"github.com/gnana997/uiregistry/pkg/theme"
)

// DefaultDebounce groups bursts of editor writes into one batch.
const DefaultDebounce = 200 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Debounce is the quiet period before a batch is delivered.
	Debounce time.Duration
	// Exclude holds doublestar patterns matched against root-relative slash
	// paths. Matching directories are not watched.
	Exclude []string
	Logger  *slog.Logger
}

// Watcher watches a directory tree and calls OnChange with every relevant
// path that changed during a debounce window. Batches are delivered one at
// a time from a single goroutine.
type Watcher struct {
	fs       *fsnotify.Watcher
	root     string
	opts     Options
	onChange func(paths []string)
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]bool
	timer   *time.Timer
	stopped bool

	batches  chan []string
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New creates a watcher for root. It does not watch anything until Start.
func New(root string, opts Options, onChange func(paths []string)) (*Watcher, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Watcher{
		fs:       fsw,
		root:     absRoot,
		opts:     opts,
		onChange: onChange,
		logger:   opts.Logger,
		pending:  make(map[string]bool),
		batches:  make(chan []string, 1),
		stopChan: make(chan struct{}),
	}, nil
}

// Start adds the directory tree to the watch list and begins delivering
// batches in the background.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return fmt.Errorf("watcher already stopped")
	}
	w.mu.Unlock()

	if err := w.addTree(w.root); err != nil {
		return err
	}
	w.logger.Info("file watcher started", "root", w.root)

	w.wg.Add(2)
	go w.eventLoop()
	go w.deliverLoop()
	return nil
}

// Stop stops watching. Pending changes are dropped. Safe to call more than
// once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pending = make(map[string]bool)
	close(w.stopChan)
	w.mu.Unlock()

	err := w.fs.Close()
	w.wg.Wait()
	w.logger.Info("file watcher stopped")
	return err
}

// Pending reports how many changed paths wait for the debounce timer.
func (w *Watcher) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.stopChan:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if w.ignored(path) {
		return
	}

	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			// files created before the watch was added are picked up by the
			// rescan this triggers
			if err := w.addTree(path); err != nil {
				w.logger.Warn("failed to watch new directory", "path", path, "error", err)
			}
			w.schedule(path)
			return
		}
	}
	if event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
		if filepath.Ext(path) == "" {
			// a removed directory: its files get no events of their own
			w.logger.Debug("directory removed", "path", path)
			w.schedule(path)
			return
		}
	}
	if !relevant(path) {
		return
	}
	w.logger.Debug("file event", "op", event.Op.String(), "file", path)
	w.schedule(path)
}

// schedule adds path to the pending batch and restarts the debounce timer.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.pending[path] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if w.stopped || len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	batch := make([]string, 0, len(w.pending))
	for p := range w.pending {
		batch = append(batch, p)
	}
	w.pending = make(map[string]bool)
	w.mu.Unlock()

	sort.Strings(batch)
	select {
	case w.batches <- batch:
	case <-w.stopChan:
	}
}

func (w *Watcher) deliverLoop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.stopChan:
			return
		case batch := <-w.batches:
			w.onChange(batch)
		}
	}
}

func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return true
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range w.opts.Exclude {
		if matched, _ := doublestar.PathMatch(pattern, rel); matched {
			return true
		}
		// "dist/**" also excludes the directory itself
		if prefix, ok := strings.CutSuffix(pattern, "/**"); ok && rel == prefix {
			return true
		}
	}
	return false
}

// relevant reports whether a change to path can alter the registry.
func relevant(path string) bool {
	if parser.IsComponentSource(path) {
		return true
	}
	if strings.EqualFold(filepath.Ext(path), ".css") {
		return true
	}
	base := filepath.Base(path)
	return base == theme.ConfigFileName || base == "package.json"
}
