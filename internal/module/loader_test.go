package module

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoader(t *testing.T) *Loader {
	t.Helper()
	var out bytes.Buffer
	l, err := New(&out, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	return l
}

func TestLoadImportsAndCachesAModule(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "geo.noo"), []byte("area = fn w h => w * h"), 0o644))

	l := newLoader(t)
	entry := filepath.Join(dir, "main.noo")
	_, _, val, err := l.Load("geo", entry)
	require.NoError(t, err)
	rec, ok := val.(interface{ String() string })
	require.True(t, ok)
	assert.Contains(t, rec.String(), "area")

	// A second Load of the same resolved path hits the cache rather than
	// re-parsing and re-evaluating the file.
	_, _, val2, err := l.Load("geo", entry)
	require.NoError(t, err)
	assert.Same(t, val, val2)
}

func TestLoadDetectsImportCycle(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.noo"), []byte(`import "b"`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.noo"), []byte(`import "a"`), 0o644))

	l := newLoader(t)
	_, _, _, err := l.Load("a", filepath.Join(dir, "entry.noo"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import cycle")
}

func TestLoadFallsBackToSearchPaths(t *testing.T) {
	vendorDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(vendorDir, "util.noo"), []byte("double = fn x => x * 2"), 0o644))

	entryDir := t.TempDir()
	l := newLoader(t)
	l.SetSearchPaths([]string{vendorDir})

	_, _, val, err := l.Load("util", filepath.Join(entryDir, "main.noo"))
	require.NoError(t, err)
	assert.NotNil(t, val)
}

func TestLoadMissingFileIsAnImportError(t *testing.T) {
	l := newLoader(t)
	_, _, _, err := l.Load("does-not-exist", "")
	assert.Error(t, err)
}
