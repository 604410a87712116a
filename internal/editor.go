package internal

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrNoEditor means no editor could be resolved.
var ErrNoEditor = errors.New("no editor found: set TREEGREP_EDITOR, VISUAL or EDITOR")

// editorEnv is searched in order after the config value.
var editorEnv = []string{"TREEGREP_EDITOR", "VISUAL", "EDITOR"}

// fallbackEditors are looked up on PATH last.
var fallbackEditors = []string{"vim", "vi", "nano"}

// Editor launches an external program on a list of files.
type Editor struct {
	Argv []string

	// run is replaced in tests.
	run func(ctx context.Context, name string, args ...string) error
}

// ResolveEditor picks the configured editor, then the environment, then
// the first fallback found on PATH. Values may carry arguments.
func ResolveEditor(configured string, getenv func(string) string, lookPath func(string) (string, error)) (*Editor, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	candidates := []string{configured}
	for _, k := range editorEnv {
		candidates = append(candidates, getenv(k))
	}
	for _, c := range candidates {
		if argv := strings.Fields(c); len(argv) > 0 {
			return &Editor{Argv: argv, run: runAttached}, nil
		}
	}
	for _, name := range fallbackEditors {
		if p, err := lookPath(name); err == nil {
			return &Editor{Argv: []string{p}, run: runAttached}, nil
		}
	}
	return nil, ErrNoEditor
}

// Open runs the editor once with all paths appended to its arguments.
func (e *Editor) Open(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append(append([]string{}, e.Argv[1:]...), paths...)
	logrus.WithFields(logrus.Fields{"editor": e.Argv[0], "files": len(paths)}).Info("opening editor")
	return e.run(ctx, e.Argv[0], args...)
}

func runAttached(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
