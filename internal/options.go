package internal

import (
	"path/filepath"
	"runtime"
	"strings"
	"unicode"
)

// WildcardExt disables extension filtering.
const WildcardExt = "*"

var (
	DefaultExtensions       = []string{"c", "h", "in", "ini", "md", "py", "rst", "txt", "yaml", "yml"}
	DefaultSpecialNames     = []string{"README"}
	DefaultIgnoredRootDirs  = []string{".git", "build", "dist"}
	DefaultArtifactSuffixes = []string{".egg-info"}
)

// ScanOptions - immutable run configuration built from CLI + config file.
type ScanOptions struct {
	Root             string
	Patterns         []string
	Extensions       []string // lower-case, no leading dot; "*" = any
	IgnoredRootDirs  []string
	ArtifactSuffixes []string
	SpecialNames     []string
	IgnoreCase       bool
	Context          int
	Replace          bool
	DryRun           bool
	Verbose          bool
	Threads          int
	Depth            int
	Archives         bool

	extMap     map[string]struct{}
	specialMap map[string]struct{}
	ignoredMap map[string]struct{}
	anyExt     bool
}

// DefaultOptions returns options with the built-in filter lists.
func DefaultOptions() ScanOptions {
	return ScanOptions{
		Root:             ".",
		Extensions:       append([]string(nil), DefaultExtensions...),
		IgnoredRootDirs:  append([]string(nil), DefaultIgnoredRootDirs...),
		ArtifactSuffixes: append([]string(nil), DefaultArtifactSuffixes...),
		SpecialNames:     append([]string(nil), DefaultSpecialNames...),
		Threads:          1,
	}
}

// NormalizeExtensions splits comma lists, strips dots and lower-cases.
// Tokens must be alphanumeric or "*".
func NormalizeExtensions(in []string) ([]string, error) {
	var out []string
	seen := map[string]struct{}{}
	for _, raw := range in {
		for _, v := range strings.Split(raw, ",") {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			v = strings.ToLower(strings.TrimPrefix(v, "."))
			if v != WildcardExt && !isAlnum(v) {
				return nil, NewConfigError("invalid extension %q", v)
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out, nil
}

func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Validate checks invariants. All failures are CONFIG_INVALID.
func (o *ScanOptions) Validate() error {
	if len(o.Patterns) == 0 {
		return NewConfigError("at least one pattern is required")
	}
	seen := make(map[string]struct{}, len(o.Patterns))
	for _, p := range o.Patterns {
		if p == "" {
			return NewConfigError("patterns can't be empty")
		}
		key := p
		if o.IgnoreCase {
			key = foldString(p)
		}
		if _, dup := seen[key]; dup {
			return NewConfigError("patterns can't be equal: %q", p)
		}
		seen[key] = struct{}{}
	}
	if o.Replace {
		if len(o.Patterns) != 2 {
			return NewConfigError("with --replace you must specify exactly 2 patterns, got %d", len(o.Patterns))
		}
		if o.IgnoreCase {
			return NewConfigError("--ignore-case can't be used with --replace")
		}
		if o.Archives {
			return NewConfigError("--archives can't be used with --replace")
		}
	}
	if o.DryRun && !o.Replace {
		return NewConfigError("--dry-run requires --replace")
	}
	if len(o.Extensions) == 0 {
		return NewConfigError("extension list can't be empty")
	}
	for _, e := range o.Extensions {
		if e != WildcardExt && !isAlnum(e) {
			return NewConfigError("invalid extension %q", e)
		}
	}
	if o.Context < 0 {
		return NewConfigError("context must be >= 0, got %d", o.Context)
	}
	if o.Depth < 0 {
		return NewConfigError("depth must be >= 0, got %d", o.Depth)
	}
	if o.Threads < 0 {
		return NewConfigError("threads must be >= 0, got %d", o.Threads)
	}
	if o.Root == "" {
		return NewConfigError("root can't be empty")
	}
	return nil
}

// Prepare builds fast lookup structures and sensible defaults.
func (o *ScanOptions) Prepare() {
	o.extMap = toSet(o.Extensions)
	o.specialMap = toSet(o.SpecialNames)
	o.ignoredMap = toSet(o.IgnoredRootDirs)
	_, o.anyExt = o.extMap[WildcardExt]
	if o.Threads <= 0 {
		o.Threads = max(1, runtime.GOMAXPROCS(0))
	}
}

func toSet(s []string) map[string]struct{} {
	m := make(map[string]struct{}, len(s))
	for _, x := range s {
		m[x] = struct{}{}
	}
	return m
}

// ReplacePair returns src and dst in replace mode.
func (o *ScanOptions) ReplacePair() (src, dst string) {
	return o.Patterns[0], o.Patterns[1]
}

// extOf returns the lower-cased extension without the dot.
func extOf(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// isCandidate applies the per-file rule: extension, special name or wildcard.
func (o *ScanOptions) isCandidate(name string) bool {
	if o.anyExt {
		return true
	}
	if _, ok := o.specialMap[name]; ok {
		return true
	}
	ext := extOf(name)
	if ext == "" {
		return false
	}
	_, ok := o.extMap[ext]
	return ok
}

// skipRootDir reports whether a first-level directory is excluded.
func (o *ScanOptions) skipRootDir(name string) bool {
	if _, ok := o.ignoredMap[name]; ok {
		return true
	}
	for _, suf := range o.ArtifactSuffixes {
		if suf != "" && strings.HasSuffix(name, suf) {
			return true
		}
	}
	return false
}
