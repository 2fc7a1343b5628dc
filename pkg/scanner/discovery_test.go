package scanner

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverFiles_BasicDirectory(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, tmp, "components/ui/button.tsx", "export function Button() { return null }")
	writeFile(t, tmp, "components/ui/index.ts", `export * from "./button"`)
	writeFile(t, tmp, "lib/utils.js", "export const x = 1")
	writeFile(t, tmp, "styles/globals.css", ":root {}")
	writeFile(t, tmp, "README.md", "# ui")

	files, err := DiscoverFiles(tmp, DefaultScanConfig())
	require.NoError(t, err)

	for _, f := range files {
		assert.True(t, filepath.IsAbs(f), "expected absolute path, got %s", f)
	}
	assert.ElementsMatch(t, []string{"button.tsx", "index.ts", "utils.js"}, fileNames(files))
}

func TestDiscoverFiles_ExcludesTestFiles(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, tmp, "button.tsx", "export function Button() {}")
	writeFile(t, tmp, "button.test.tsx", "test('button', () => {})")
	writeFile(t, tmp, "button.spec.tsx", "describe('button', () => {})")
	writeFile(t, tmp, "button.stories.tsx", "export default { title: 'Button' }")
	writeFile(t, tmp, "button.story.tsx", "export default { title: 'Button' }")
	writeFile(t, tmp, "types.d.ts", "declare const x: number")
	writeFile(t, tmp, "__tests__/utils.ts", "export {}")
	writeFile(t, tmp, "node_modules/pkg/index.tsx", "export function Pkg() {}")
	writeFile(t, tmp, ".uiregistry/cache.ts", "export {}")

	files, err := DiscoverFiles(tmp, DefaultScanConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"button.tsx"}, fileNames(files))
}

func TestDiscoverFiles_SortedOutput(t *testing.T) {
	tmp := t.TempDir()
	for _, name := range []string{"z.tsx", "a.tsx", "m/b.tsx", "c.jsx"} {
		writeFile(t, tmp, name, "export {}")
	}

	files, err := DiscoverFiles(tmp, DefaultScanConfig())
	require.NoError(t, err)
	require.Len(t, files, 4)
	for i := 1; i < len(files); i++ {
		assert.LessOrEqual(t, files[i-1], files[i], "files should be sorted")
	}
}

func TestDiscoverFiles_EmptyDirectory(t *testing.T) {
	files, err := DiscoverFiles(t.TempDir(), DefaultScanConfig())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscoverFiles_InvalidGlob(t *testing.T) {
	cfg := DefaultScanConfig()
	cfg.Exclude = append(cfg.Exclude, "[invalid")
	_, err := DiscoverFiles(t.TempDir(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid exclude pattern")
}

func TestDiscoverFiles_UnreadableRoot(t *testing.T) {
	tmp := t.TempDir()
	file := writeFile(t, tmp, "button.tsx", "export {}")

	_, err := DiscoverFiles(filepath.Join(tmp, "missing"), DefaultScanConfig())
	assert.True(t, errors.Is(err, ErrRootUnreadable))

	_, err = DiscoverFiles(file, DefaultScanConfig())
	assert.True(t, errors.Is(err, ErrRootUnreadable))
}

func TestNormalizeFiles(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, tmp, "a.tsx", "export {}")
	writeFile(t, tmp, "b.ts", "export {}")

	files := normalizeFiles(tmp, []string{
		"b.ts",
		filepath.Join(tmp, "a.tsx"),
		"a.tsx",
		"notes.md",
	})
	assert.Equal(t, []string{filepath.Join(tmp, "a.tsx"), filepath.Join(tmp, "b.ts")}, files)
}
