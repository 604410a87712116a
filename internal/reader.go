package internal

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/spf13/afero"
)

// sniffLen is how much of a file is inspected for NUL bytes.
const sniffLen = 8000

// ContextLine is a neighbour of a matched line.
type ContextLine struct {
	Number int
	Text   string
}

// MatchRecord is one matched line. Line keeps the original casing.
type MatchRecord struct {
	FilePath   string
	LineNumber int // 1-based
	Line       string
	Before     []ContextLine
	After      []ContextLine
	Spans      []Span
}

// readText loads a whole file and rejects content that is not text.
func readText(fsys afero.Fs, path string) (string, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return "", Wrap(err, ErrFileAccess, path, "read failed")
	}
	return decodeText(data, path)
}

// readTextFrom is readText for streams (archive entries).
func readTextFrom(r io.Reader, path string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", Wrap(err, ErrFileAccess, path, "read failed")
	}
	return decodeText(data, path)
}

// decodeText treats NUL bytes in the head or invalid UTF-8 as binary.
func decodeText(data []byte, path string) (string, error) {
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	if bytes.IndexByte(head, 0) >= 0 || !utf8.Valid(data) {
		return "", Wrap(ErrNotText, ErrNotTextFile, path, "skipped")
	}
	return string(data), nil
}

// splitLines splits on \n, drops a trailing \r per line and does not
// yield an empty last line for content ending in a newline.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// contextWindow returns up to n lines before and after idx (0-based),
// truncated at the slice bounds.
func contextWindow(lines []string, idx, n int) (before, after []ContextLine) {
	if n <= 0 {
		return nil, nil
	}
	for i := max(0, idx-n); i < idx; i++ {
		before = append(before, ContextLine{Number: i + 1, Text: lines[i]})
	}
	for i := idx + 1; i <= idx+n && i < len(lines); i++ {
		after = append(after, ContextLine{Number: i + 1, Text: lines[i]})
	}
	return before, after
}

// matchLines streams a MatchRecord for each matching line to onMatch and
// returns the number of matched lines.
func matchLines(path string, lines []string, m *Matcher, contextN int, onMatch func(MatchRecord)) int {
	n := 0
	for i, line := range lines {
		if !m.MatchLine(line) {
			continue
		}
		n++
		if onMatch == nil {
			continue
		}
		before, after := contextWindow(lines, i, contextN)
		onMatch(MatchRecord{
			FilePath:   path,
			LineNumber: i + 1,
			Line:       line,
			Before:     before,
			After:      after,
			Spans:      m.Spans(line),
		})
	}
	return n
}
