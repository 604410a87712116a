package main

import (
	"TreeGrep/internal"
	"context"
	"os"

	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// selector lets the user choose a subset of options.
type selector func(options []string) ([]string, error)

func pickFiles(options []string) ([]string, error) {
	return pterm.DefaultInteractiveMultiselect.
		WithOptions(options).
		WithDefaultText("Select files to open").
		Show()
}

// openMatches offers the matched files that exist on disk (archive
// entries can't be edited) and opens the chosen ones in one editor call.
func openMatches(ctx context.Context, configuredEditor string, matched []string, pick selector) error {
	var files []string
	for _, p := range matched {
		if st, err := os.Stat(p); err == nil && st.Mode().IsRegular() {
			files = append(files, p)
		}
	}
	if len(files) == 0 {
		return nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		logrus.Warn("--open needs an interactive terminal, skipping")
		return nil
	}
	chosen, err := pick(files)
	if err != nil || len(chosen) == 0 {
		return err
	}
	editor, err := internal.ResolveEditor(configuredEditor, nil, nil)
	if err != nil {
		return err
	}
	return editor.Open(ctx, chosen...)
}
