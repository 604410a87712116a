package main

import (
	"TreeGrep/internal"
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"
)

const (
	exitConfig      = 1
	exitInterrupted = 130
)

func main() {
	// .env is optional; it only feeds the TREEGREP_* variables below.
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "treegrep",
		Usage:     "Recursively search (or replace) literal strings in a source tree",
		UsageText: "treegrep [options] <pattern> [<pattern> ...]\n   treegrep --replace [options] <src> <dst>",
		Description: "Several patterns must all occur on the same line (AND). " +
			"With --replace exactly two patterns are taken: every <src> is replaced with <dst> in place.",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "extensions",
				Aliases: []string{"e"},
				Usage:   "Only scan these extensions (comma separated, dot optional). '*' scans every file",
				EnvVars: []string{"TREEGREP_EXTENSIONS"},
			},
			&cli.BoolFlag{
				Name:    "ignore-case",
				Aliases: []string{"i"},
				Usage:   "Case-insensitive matching (not with --replace)",
			},
			&cli.BoolFlag{
				Name:    "replace",
				Aliases: []string{"r"},
				Usage:   "Replace the first pattern with the second one in place",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "With --replace: count occurrences without writing",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "With --replace: print matching lines before rewriting",
			},
			&cli.IntFlag{
				Name:    "context",
				Aliases: []string{"n"},
				Usage:   "Number of lines to print above and below each match",
			},
			&cli.BoolFlag{
				Name:    "open",
				Aliases: []string{"o"},
				Usage:   "Choose matched files to open in an editor after the report",
			},
			&cli.StringFlag{
				Name:  "root",
				Usage: "Directory to scan",
				Value: ".",
			},
			&cli.IntFlag{
				Name:  "depth",
				Usage: "Max directory depth (0 - unlimited)",
				Value: 0,
			},
			&cli.IntFlag{
				Name:    "threads",
				Usage:   "File workers; output order does not depend on it (0 - one per CPU)",
				Value:   1,
				EnvVars: []string{"TREEGREP_THREADS"},
			},
			&cli.BoolFlag{
				Name:  "archives",
				Usage: "Also search inside archives (.zip,.tar,.gz,...), read-only",
			},
			&cli.StringFlag{
				Name:    "color",
				Usage:   "auto, always or never",
				Value:   "auto",
				EnvVars: []string{"TREEGREP_COLOR"},
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Config file (default: $XDG_CONFIG_HOME/treegrep/config.yaml)",
			},
			&cli.StringFlag{
				Name:  "logfile",
				Usage: "Write logs into file instead of stderr",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level: debug, info, warn, error",
				Value:   "warn",
				EnvVars: []string{"TREEGREP_LOG_LEVEL"},
			},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	internal.InitLogger(c.String("logfile"), c.String("log-level"))
	logrus.Info("treegrep started")

	cfg, err := internal.ResolveConfig(c.String("config"))
	if err != nil {
		return cli.Exit(err.Error(), exitConfig)
	}
	opts, err := buildOptions(c, cfg)
	if err != nil {
		return cli.Exit(err.Error(), exitConfig)
	}
	colorValue := c.String("color")
	if !c.IsSet("color") && cfg.Color != "" {
		colorValue = cfg.Color
	}
	mode, err := internal.ParseColorMode(colorValue)
	if err != nil {
		return cli.Exit(err.Error(), exitConfig)
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var stats internal.AppStats
	out := c.App.Writer
	reporter := internal.NewReporter(out, c.App.ErrWriter, formatterFor(mode, out), &opts)
	scanner := internal.NewFileScanner(afero.NewOsFs(), &stats)
	if err := scanner.Scan(ctx, &opts, reporter.Handle); err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			logrus.Warn("Scan cancelled")
			return cli.Exit("interrupted", exitInterrupted)
		}
		return cli.Exit(err.Error(), exitConfig)
	}
	reporter.Summary()

	if c.Bool("open") {
		if err := openMatches(ctx, cfg.Editor, reporter.Result().FilesMatched, pickFiles); err != nil {
			reporter.Warn(err)
		}
	}
	logrus.Infof("treegrep finished in %s", stats.Elapsed())
	return nil
}

// buildOptions layers defaults, config file and flags, then validates.
func buildOptions(c *cli.Context, cfg *internal.FileConfig) (internal.ScanOptions, error) {
	opts := internal.DefaultOptions()
	if err := cfg.Apply(&opts); err != nil {
		return opts, err
	}
	if c.IsSet("extensions") {
		exts, err := internal.NormalizeExtensions(c.StringSlice("extensions"))
		if err != nil {
			return opts, err
		}
		opts.Extensions = exts
	}
	opts.Root = c.String("root")
	opts.Patterns = c.Args().Slice()
	if err := checkTrailingFlags(c.App.Flags, opts.Patterns); err != nil {
		return opts, err
	}
	opts.IgnoreCase = c.Bool("ignore-case")
	opts.Replace = c.Bool("replace")
	opts.DryRun = c.Bool("dry-run")
	opts.Verbose = c.Bool("verbose")
	opts.Context = c.Int("context")
	opts.Depth = c.Int("depth")
	opts.Threads = c.Int("threads")
	opts.Archives = c.Bool("archives")

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	if st, err := os.Stat(opts.Root); err != nil || !st.IsDir() {
		return opts, internal.NewConfigError("not a directory or inaccessible: %s", opts.Root)
	}
	opts.Prepare()
	return opts, nil
}

// checkTrailingFlags rejects positionals that name a defined flag: parsing
// stops at the first pattern, so "foo --context 2" would otherwise search
// for "--context" and "2".
func checkTrailingFlags(flags []cli.Flag, args []string) error {
	names := make(map[string]struct{})
	for _, f := range flags {
		for _, n := range f.Names() {
			names[n] = struct{}{}
		}
	}
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			continue
		}
		name, _, _ := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if _, ok := names[name]; ok {
			return internal.NewConfigError("flag %s must come before the patterns", a)
		}
	}
	return nil
}

// formatterFor probes w when it is a terminal file; other writers get
// plain text unless colors are forced.
func formatterFor(mode internal.ColorMode, w io.Writer) internal.Formatter {
	if f, ok := w.(*os.File); ok {
		return internal.NewFormatter(mode, f)
	}
	if mode == internal.ColorAlways {
		return internal.NewColorFormatter(0)
	}
	return internal.PlainFormatter{}
}
