package internal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	body := `extensions: [go, .PY]
ignore_dirs: [vendor]
special_names: [Makefile, README]
editor: "code -w"
color: never
`
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))

	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, "code -w", cfg.Editor)
	assert.Equal(t, "never", cfg.Color)

	opts := DefaultOptions()
	require.NoError(t, cfg.Apply(&opts))
	assert.Equal(t, []string{"go", "py"}, opts.Extensions)
	assert.Equal(t, []string{"vendor"}, opts.IgnoredRootDirs)
	assert.Equal(t, []string{"Makefile", "README"}, opts.SpecialNames)
	assert.Equal(t, DefaultArtifactSuffixes, opts.ArtifactSuffixes)
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errors.Is(err, ErrConfigNotFound))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("extensions: [unterminated\n"), 0644))
	_, err = LoadConfig(bad)
	assert.True(t, IsCode(err, ErrConfigInvalid), "got %v", err)

	badExt := filepath.Join(dir, "ext.yaml")
	require.NoError(t, os.WriteFile(badExt, []byte("extensions: [\"p y\"]\n"), 0644))
	cfg, err := LoadConfig(badExt)
	require.NoError(t, err)
	opts := DefaultOptions()
	assert.True(t, IsCode(cfg.Apply(&opts), ErrConfigInvalid))
}

func TestResolveConfig(t *testing.T) {
	_, err := ResolveConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, IsCode(err, ErrConfigInvalid), "explicit missing config is an error: %v", err)
}
