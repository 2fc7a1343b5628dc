package watcher

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	batches [][]string
}

func (r *recorder) record(paths []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, paths)
}

func (r *recorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.batches...)
}

func startWatcher(t *testing.T, root string, exclude ...string) (*Watcher, *recorder) {
	t.Helper()
	rec := &recorder{}
	w, err := New(root, Options{
		Debounce: 50 * time.Millisecond,
		Exclude:  exclude,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, rec.record)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(func() { w.Stop() })
	return w, rec
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWatcher_BatchesChanges(t *testing.T) {
	root := t.TempDir()
	_, rec := startWatcher(t, root)

	button := filepath.Join(root, "button.tsx")
	card := filepath.Join(root, "card.tsx")
	write(t, button, "export function Button() {}")
	write(t, card, "export function Card() {}")
	write(t, button, "export function Button() { return null }")

	require.Eventually(t, func() bool { return len(rec.snapshot()) > 0 }, 2*time.Second, 10*time.Millisecond)
	// give a late event time to arrive in a second batch
	time.Sleep(150 * time.Millisecond)

	seen := map[string]bool{}
	for _, batch := range rec.snapshot() {
		for _, p := range batch {
			seen[p] = true
		}
	}
	assert.True(t, seen[button])
	assert.True(t, seen[card])
}

func TestWatcher_IgnoresIrrelevantAndExcluded(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "pkg"), 0o755))
	w, rec := startWatcher(t, root, "node_modules/**")

	write(t, filepath.Join(root, "README.md"), "docs")
	write(t, filepath.Join(root, "node_modules", "pkg", "index.tsx"), "export {}")

	time.Sleep(200 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
	assert.Zero(t, w.Pending())
}

func TestWatcher_ThemeFilesAreRelevant(t *testing.T) {
	root := t.TempDir()
	_, rec := startWatcher(t, root)

	css := filepath.Join(root, "globals.css")
	write(t, css, ":root { --primary: 0 0% 0%; }")

	require.Eventually(t, func() bool {
		for _, batch := range rec.snapshot() {
			for _, p := range batch {
				if p == css {
					return true
				}
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_NewDirectoryIsWatched(t *testing.T) {
	root := t.TempDir()
	_, rec := startWatcher(t, root)

	dir := filepath.Join(root, "components")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.Eventually(t, func() bool { return len(rec.snapshot()) > 0 }, 2*time.Second, 10*time.Millisecond)

	input := filepath.Join(dir, "input.tsx")
	write(t, input, "export function Input() {}")
	require.Eventually(t, func() bool {
		for _, batch := range rec.snapshot() {
			for _, p := range batch {
				if p == input {
					return true
				}
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_RemovedDirectoryIsReported(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "legacy")
	write(t, filepath.Join(dir, "old.tsx"), "export function Old() {}")
	_, rec := startWatcher(t, root)

	require.NoError(t, os.RemoveAll(dir))
	require.Eventually(t, func() bool {
		for _, batch := range rec.snapshot() {
			for _, p := range batch {
				if p == dir {
					return true
				}
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	root := t.TempDir()
	w, _ := startWatcher(t, root)

	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
	assert.Error(t, w.Start())
}

func TestWatcher_StartMissingRoot(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "missing"), Options{}, func([]string) {})
	require.NoError(t, err)
	defer w.Stop()
	assert.Error(t, w.Start())
}

func TestRelevant(t *testing.T) {
	assert.True(t, relevant("/p/button.tsx"))
	assert.True(t, relevant("/p/index.ts"))
	assert.True(t, relevant("/p/app/globals.css"))
	assert.True(t, relevant("/p/components.json"))
	assert.True(t, relevant("/p/package.json"))
	assert.False(t, relevant("/p/README.md"))
}

func TestIgnored(t *testing.T) {
	w := &Watcher{root: "/p", opts: Options{Exclude: []string{"dist/**", "**/*.test.*"}}}
	assert.True(t, w.ignored("/p/dist"))
	assert.True(t, w.ignored("/p/dist/index.js"))
	assert.True(t, w.ignored("/p/ui/button.test.tsx"))
	assert.True(t, w.ignored("/elsewhere/button.tsx"))
	assert.False(t, w.ignored("/p/ui/button.tsx"))
}
