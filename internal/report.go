package internal

import (
	"fmt"
	"io"
	"strings"
)

// Reporter prints per-file blocks to out and warnings to errOut, and
// accumulates the ScanResult. Handle is meant to be the scanner sink.
type Reporter struct {
	out    io.Writer
	errOut io.Writer
	f      Formatter

	replace bool
	dryRun  bool
	result  ScanResult
}

func NewReporter(out, errOut io.Writer, f Formatter, opts *ScanOptions) *Reporter {
	return &Reporter{
		out:     out,
		errOut:  errOut,
		f:       f,
		replace: opts.Replace,
		dryRun:  opts.DryRun,
	}
}

// Result returns the aggregate so far.
func (r *Reporter) Result() *ScanResult { return &r.result }

// Handle consumes one file result.
func (r *Reporter) Handle(res FileResult) {
	if len(res.Records) > 0 {
		r.printBlock(res.Path, res.Records)
	}
	if res.Err != nil {
		if !IsCode(res.Err, ErrNotTextFile) {
			r.Warn(res.Err)
		}
		return
	}
	if res.Occurrences == 0 {
		return
	}
	if r.replace {
		verb := "updated"
		if r.dryRun {
			verb = "found"
		}
		fmt.Fprintf(r.out, "%s %s occurrences in %s\n", verb, r.f.Count(res.Occurrences), r.f.Path(res.Path))
	}
	r.result.Add(res.Path, res.Ext, res.Occurrences)
}

func (r *Reporter) printBlock(path string, records []MatchRecord) {
	fmt.Fprintln(r.out, r.f.Path(path))
	for _, rec := range records {
		if len(rec.Before) > 0 || len(rec.After) > 0 {
			fmt.Fprintln(r.out, r.f.Separator())
		}
		for _, c := range rec.Before {
			r.printLine(c.Number, c.Text)
		}
		r.printLine(rec.LineNumber, highlight(r.f, rec.Line, rec.Spans))
		for _, c := range rec.After {
			r.printLine(c.Number, c.Text)
		}
	}
	fmt.Fprintln(r.out)
}

func (r *Reporter) printLine(n int, text string) {
	fmt.Fprintf(r.out, "%s: %s\n", r.f.LineNo(n), strings.TrimRight(text, " \t"))
}

// Warn prints a non-fatal error to errOut.
func (r *Reporter) Warn(err error) {
	fmt.Fprintf(r.errOut, "%s %v\n", r.f.Error("warning:"), err)
}

// Summary prints the totals line. Nothing is printed without occurrences.
func (r *Reporter) Summary() {
	if r.result.Occurrences == 0 {
		return
	}
	var exts []string
	for _, e := range r.result.ExtensionCounts() {
		name := "(none)"
		if e.Ext != "" {
			name = "." + e.Ext
		}
		exts = append(exts, fmt.Sprintf("%s=%s", name, r.f.Count(e.Files)))
	}
	fmt.Fprintf(r.out, "occurrences=%s, files-matching=%s, exts=(%s)\n",
		r.f.Count(r.result.Occurrences),
		r.f.Count(len(r.result.FilesMatched)),
		strings.Join(exts, ","))
}
