package internal

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Pattern - fast interface for line match.
type Pattern interface {
	Match(string) bool
	Desc() string // original text, for highlighting and logs
}

// PlainPattern is a literal substring. When insensitive, s holds the
// folded form and Match expects an already folded line.
type PlainPattern struct {
	s           string
	orig        string
	insensitive bool
}

func NewPlainPattern(s string, insensitive bool) *PlainPattern {
	p := &PlainPattern{s: s, orig: s, insensitive: insensitive}
	if insensitive {
		p.s = foldString(s)
	}
	return p
}

func (p *PlainPattern) Match(s string) bool { return strings.Contains(s, p.s) }
func (p *PlainPattern) Desc() string        { return p.orig }

// foldString applies full Unicode case folding. A Caser keeps state, so a
// fresh one is used per call.
func foldString(s string) string {
	return cases.Fold().String(s)
}

// Span is a byte range [Start, End) inside a line.
type Span struct {
	Start, End int
}

// Matcher evaluates a pattern set with AND semantics. One pattern is a
// plain contains; n patterns require all n on the same line.
type Matcher struct {
	patterns   []Pattern
	ignoreCase bool
}

// NewMatcher compiles literal patterns. Duplicates are rejected earlier by
// ScanOptions.Validate.
func NewMatcher(patterns []string, ignoreCase bool) *Matcher {
	ps := make([]Pattern, 0, len(patterns))
	for _, s := range patterns {
		ps = append(ps, NewPlainPattern(s, ignoreCase))
	}
	return &Matcher{patterns: ps, ignoreCase: ignoreCase}
}

// Patterns returns the compiled patterns in order.
func (m *Matcher) Patterns() []Pattern { return m.patterns }

// prepare returns the text patterns are compared against.
func (m *Matcher) prepare(line string) string {
	if m.ignoreCase {
		return foldString(line)
	}
	return line
}

// MatchLine reports whether every pattern occurs in line.
func (m *Matcher) MatchLine(line string) bool {
	if len(m.patterns) == 0 {
		return false
	}
	check := m.prepare(line)
	for _, p := range m.patterns {
		if !p.Match(check) {
			return false
		}
	}
	return true
}

// MatchContent is a cheap whole-file pre-check: any line can only match if
// every pattern occurs somewhere in the content.
func (m *Matcher) MatchContent(content string) bool {
	return m.MatchLine(content)
}

// Spans returns the sorted, merged byte ranges of pattern occurrences in
// line, in terms of the original line. Under case folding a range that
// starts or ends inside the folded form of a rune covers the whole rune.
func (m *Matcher) Spans(line string) []Span {
	check := line
	var startOf, endOf []int
	if m.ignoreCase {
		check, startOf, endOf = foldWithOffsets(line)
	}
	var spans []Span
	for _, p := range m.patterns {
		needle := p.Desc()
		if pp, ok := p.(*PlainPattern); ok {
			needle = pp.s
		}
		if needle == "" {
			continue
		}
		for off := 0; off < len(check); {
			i := strings.Index(check[off:], needle)
			if i < 0 {
				break
			}
			s := Span{Start: off + i, End: off + i + len(needle)}
			if startOf != nil {
				s = Span{Start: startOf[s.Start], End: endOf[s.End-1]}
			}
			spans = append(spans, s)
			off += i + len(needle)
		}
	}
	return mergeSpans(spans)
}

// foldWithOffsets folds line rune by rune. For every byte i of the folded
// string, startOf[i] and endOf[i] bound the original rune it came from.
func foldWithOffsets(line string) (folded string, startOf, endOf []int) {
	var b strings.Builder
	startOf = make([]int, 0, len(line))
	endOf = make([]int, 0, len(line))
	for i := 0; i < len(line); {
		_, size := utf8.DecodeRuneInString(line[i:])
		f := foldString(line[i : i+size])
		b.WriteString(f)
		for range len(f) {
			startOf = append(startOf, i)
			endOf = append(endOf, i+size)
		}
		i += size
	}
	return b.String(), startOf, endOf
}

func mergeSpans(spans []Span) []Span {
	if len(spans) < 2 {
		return spans
	}
	slices.SortFunc(spans, func(a, b Span) int { return cmp.Compare(a.Start, b.Start) })
	out := spans[:1]
	for _, s := range spans[1:] {
		last := &out[len(out)-1]
		if s.Start <= last.End {
			if s.End > last.End {
				last.End = s.End
			}
			continue
		}
		out = append(out, s)
	}
	return out
}
