package internal

import (
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ColorMode selects how the formatter is chosen.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

const fallbackWidth = 40

func (c ColorMode) String() string {
	switch c {
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	default:
		return "auto"
	}
}

// ParseColorMode parses auto|always|never.
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ColorAuto, nil
	case "always", "yes", "on":
		return ColorAlways, nil
	case "never", "no", "off":
		return ColorNever, nil
	default:
		return ColorAuto, NewConfigError("unknown color mode %q", s)
	}
}

// Formatter decorates report fragments. Implementations must not keep
// process-wide state.
type Formatter interface {
	Path(s string) string
	LineNo(n int) string
	Match(s string) string
	Count(n int) string
	Error(s string) string
	Separator() string
}

// PlainFormatter emits text unchanged.
type PlainFormatter struct {
	Width int
}

func (p PlainFormatter) Path(s string) string  { return s }
func (p PlainFormatter) LineNo(n int) string   { return strconv.Itoa(n) }
func (p PlainFormatter) Match(s string) string { return s }
func (p PlainFormatter) Count(n int) string    { return strconv.Itoa(n) }
func (p PlainFormatter) Error(s string) string { return s }
func (p PlainFormatter) Separator() string     { return strings.Repeat(".", widthOr(p.Width)) }

// ColorFormatter highlights with ANSI sequences. Every color.Color has
// colors forced on, so the global color.NoColor switch is never consulted.
type ColorFormatter struct {
	width  int
	bold   *color.Color
	green  *color.Color
	greenB *color.Color
	red    *color.Color
}

func NewColorFormatter(width int) *ColorFormatter {
	f := &ColorFormatter{
		width:  width,
		bold:   color.New(color.Bold),
		green:  color.New(color.FgGreen),
		greenB: color.New(color.FgGreen, color.Bold),
		red:    color.New(color.FgRed),
	}
	for _, c := range []*color.Color{f.bold, f.green, f.greenB, f.red} {
		c.EnableColor()
	}
	return f
}

func (c *ColorFormatter) Path(s string) string  { return c.bold.Sprint(s) }
func (c *ColorFormatter) LineNo(n int) string   { return c.bold.Sprint(n) }
func (c *ColorFormatter) Match(s string) string { return c.green.Sprint(s) }
func (c *ColorFormatter) Count(n int) string    { return c.greenB.Sprint(n) }
func (c *ColorFormatter) Error(s string) string { return c.red.Sprint(s) }
func (c *ColorFormatter) Separator() string     { return strings.Repeat(".", widthOr(c.width)) }

func widthOr(w int) int {
	if w <= 0 {
		return fallbackWidth
	}
	return w
}

// SupportsColor probes f: NO_COLOR unset, a (cygwin) terminal, and a color
// profile better than plain ASCII.
func SupportsColor(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return false
	}
	return termenv.NewOutput(f).ColorProfile() != termenv.Ascii
}

// TerminalWidth returns the column count of f, or 0 when unknown.
func TerminalWidth(f *os.File) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return w
}

// NewFormatter picks a formatter for f according to mode.
func NewFormatter(mode ColorMode, f *os.File) Formatter {
	width := TerminalWidth(f)
	switch mode {
	case ColorAlways:
		return NewColorFormatter(width)
	case ColorNever:
		return PlainFormatter{Width: width}
	}
	if SupportsColor(f) {
		return NewColorFormatter(width)
	}
	return PlainFormatter{Width: width}
}

// highlight wraps every span of line with f.Match.
func highlight(f Formatter, line string, spans []Span) string {
	if len(spans) == 0 {
		return line
	}
	var b strings.Builder
	prev := 0
	for _, s := range spans {
		if s.Start < prev || s.End > len(line) {
			continue
		}
		b.WriteString(line[prev:s.Start])
		b.WriteString(f.Match(line[s.Start:s.End]))
		prev = s.End
	}
	b.WriteString(line[prev:])
	return b.String()
}

var _ Formatter = PlainFormatter{}
var _ Formatter = (*ColorFormatter)(nil)
