package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jethrolarson/noolang-sub000/internal/types"
)

// chdir switches to dir for the duration of the test, restoring the
// original working directory on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadReturnsZeroValueWhenNoFileExists(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.SearchPaths)
	assert.Empty(t, cfg.Effects)
}

func TestLoadParsesNoorcYaml(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", dir)

	yaml := "searchPaths:\n  - ./vendor/noo\neffects:\n  - log\n  - write\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".noorc.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"./vendor/noo"}, cfg.SearchPaths)
	assert.ElementsMatch(t, []string{"log", "write"}, cfg.Effects)
}

func TestEffectSetIgnoresUnknownNames(t *testing.T) {
	cfg := &Config{Effects: []string{"log", "bogus", "rand"}}
	set := cfg.EffectSet()
	assert.True(t, set.Has(types.Log))
	assert.True(t, set.Has(types.Rand))
	assert.False(t, set.Has(types.Write))
	assert.Len(t, set, 2)
}
