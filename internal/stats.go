package internal

import (
	"sort"
	"sync/atomic"
	"time"
)

// AppStats atomic counters for totals
type AppStats struct {
	start        time.Time
	FilesFound   atomic.Int64
	FilesScanned atomic.Int64
	FilesSkipped atomic.Int64
	Errors       atomic.Int64
}

func (s *AppStats) Start() {
	s.start = time.Now()
}

func (s *AppStats) Elapsed() time.Duration {
	return time.Since(s.start)
}

// ExtCount is one row of the per-extension breakdown.
type ExtCount struct {
	Ext   string // without dot, "" for no extension
	Files int
}

// ScanResult accumulates the whole run. Not safe for concurrent use: the
// scanner feeds it from the ordered emitter only.
type ScanResult struct {
	Occurrences  int
	FilesMatched []string

	extOrder  []string
	extCounts map[string]int
}

// Add records one file. Files with zero occurrences are ignored.
func (r *ScanResult) Add(path, ext string, occurrences int) {
	if occurrences <= 0 {
		return
	}
	if r.extCounts == nil {
		r.extCounts = make(map[string]int)
	}
	r.Occurrences += occurrences
	r.FilesMatched = append(r.FilesMatched, path)
	if _, ok := r.extCounts[ext]; !ok {
		r.extOrder = append(r.extOrder, ext)
	}
	r.extCounts[ext]++
}

// ExtensionCounts is sorted by file count, descending. Ties keep the order
// in which extensions were first seen.
func (r *ScanResult) ExtensionCounts() []ExtCount {
	out := make([]ExtCount, 0, len(r.extOrder))
	for _, e := range r.extOrder {
		out = append(out, ExtCount{Ext: e, Files: r.extCounts[e]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Files > out[j].Files })
	return out
}
