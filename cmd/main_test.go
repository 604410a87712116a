package main

import (
	"TreeGrep/internal"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// parse runs the real flag set and returns what buildOptions made of it.
func parse(t *testing.T, cfg *internal.FileConfig, args ...string) (internal.ScanOptions, error) {
	t.Helper()
	var opts internal.ScanOptions
	var buildErr error
	app := newApp()
	app.Action = func(c *cli.Context) error {
		opts, buildErr = buildOptions(c, cfg)
		return nil
	}
	require.NoError(t, app.Run(append([]string{"treegrep"}, args...)))
	return opts, buildErr
}

func TestBuildOptions_Defaults(t *testing.T) {
	root := t.TempDir()
	opts, err := parse(t, &internal.FileConfig{}, "--root", root, "foo", "bar")
	require.NoError(t, err)
	assert.Equal(t, []string{"foo", "bar"}, opts.Patterns)
	assert.Equal(t, internal.DefaultExtensions, opts.Extensions)
	assert.Equal(t, 1, opts.Threads)
	assert.False(t, opts.Replace)
}

func TestBuildOptions_FlagsOverrideConfig(t *testing.T) {
	root := t.TempDir()
	cfg := &internal.FileConfig{Extensions: []string{"go"}, IgnoreDirs: []string{"vendor"}}

	opts, err := parse(t, cfg, "--root", root, "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, opts.Extensions)
	assert.Equal(t, []string{"vendor"}, opts.IgnoredRootDirs)

	opts, err = parse(t, cfg, "--root", root, "-e", ".PY,txt", "-n", "2", "-i", "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"py", "txt"}, opts.Extensions)
	assert.Equal(t, 2, opts.Context)
	assert.True(t, opts.IgnoreCase)
}

func TestBuildOptions_Invalid(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	cases := map[string][]string{
		"no patterns":         {"--root", root},
		"replace needs two":   {"--root", root, "-r", "a"},
		"replace ignore case": {"--root", root, "-r", "-i", "a", "b"},
		"dry run alone":       {"--root", root, "--dry-run", "a"},
		"negative context":    {"--root", root, "-n=-1", "a"},
		"bad extension":       {"--root", root, "-e", "p y", "a"},
		"root is a file":      {"--root", file, "a"},
		"duplicate patterns":  {"--root", root, "a", "a"},
		"flag after pattern":  {"--root", root, "foo", "--context", "2"},
		"alias after pattern": {"--root", root, "foo", "-n=2"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parse(t, &internal.FileConfig{}, args...)
			assert.True(t, internal.IsCode(err, internal.ErrConfigInvalid), "got %v", err)
		})
	}
}

func TestOpenMatches_NothingOnDisk(t *testing.T) {
	called := false
	pick := func([]string) ([]string, error) {
		called = true
		return nil, errors.New("unexpected")
	}
	err := openMatches(context.Background(), "", []string{"/nonexistent/a.py", "x.zip:inner.txt"}, pick)
	assert.NoError(t, err)
	assert.False(t, called)
}

func TestBuildOptions_DashPatternThatIsNoFlag(t *testing.T) {
	opts, err := parse(t, &internal.FileConfig{}, "--root", t.TempDir(), "foo", "-x")
	require.NoError(t, err)
	assert.Equal(t, []string{"foo", "-x"}, opts.Patterns)
}

// runApp drives run through the real app and returns the exit code and
// stdout. The process is never exited.
func runApp(t *testing.T, ctx context.Context, args ...string) (int, string) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfg, nil, 0644))

	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.RunContext(ctx, append([]string{"treegrep", "--config", cfg}, args...))
	if err == nil {
		return 0, out.String()
	}
	var ec cli.ExitCoder
	require.True(t, errors.As(err, &ec), "error without exit code: %v", err)
	return ec.ExitCode(), out.String()
}

func TestRun_ExitCodes(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("foo\n"), 0644))

	code, out := runApp(t, context.Background(), "--root", root, "--color", "never", "foo")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "occurrences=1, files-matching=1, exts=(.txt=1)")

	code, out = runApp(t, context.Background(), "--root", root, "nomatch")
	assert.Equal(t, 0, code, "zero matches is still success")
	assert.Empty(t, out)

	code, _ = runApp(t, context.Background(), "--root", root)
	assert.Equal(t, exitConfig, code)

	code, _ = runApp(t, context.Background(), "--root", root, "foo", "--context", "2")
	assert.Equal(t, exitConfig, code)

	code, _ = runApp(t, context.Background(), "--root", root, "--color", "rainbow", "foo")
	assert.Equal(t, exitConfig, code)
}

func TestRun_InterruptedPrintsNoSummary(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("foo\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	code, out := runApp(t, ctx, "--root", root, "foo")
	assert.Equal(t, exitInterrupted, code)
	assert.Empty(t, out)
}
