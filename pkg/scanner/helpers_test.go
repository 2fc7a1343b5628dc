package scanner

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uiregistry/pkg/parser"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func fileNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names
}

// parseSource parses src as if it lived at path and closes the tree when
// the test ends.
func parseSource(t *testing.T, path, src string) (*ts.Tree, []byte) {
	t.Helper()
	pm := parser.NewParserManager(testLogger())
	t.Cleanup(func() { pm.Close() })

	source := []byte(src)
	tree, err := pm.ParseFile(source, path)
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree, source
}

// analyzeSource runs the per-file analysis over an in-memory source.
func analyzeSource(t *testing.T, path, src string) *FileAnalysis {
	t.Helper()
	tree, source := parseSource(t, path, src)
	require.False(t, tree.RootNode().HasError(), "fixture should parse cleanly")
	a := &FileAnalysis{Path: path}
	analyzeTree(a, tree, source, filepath.Base(path))
	return a
}

func newTestScanner(t *testing.T, opts Options) *Scanner {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = testLogger()
	}
	s := NewScanner(opts)
	t.Cleanup(func() { s.Close() })
	return s
}
