package internal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// FileResult is everything one file pass produced. Err set means the file
// counts as zero occurrences.
type FileResult struct {
	Path        string
	Ext         string
	Occurrences int
	Records     []MatchRecord
	Replaced    bool
	Err         error
}

// FileScanner runs the walk → match/replace pipeline.
type FileScanner struct {
	fs    afero.Fs
	stats *AppStats
}

func NewFileScanner(fsys afero.Fs, stats *AppStats) *FileScanner {
	if stats == nil {
		stats = &AppStats{}
	}
	return &FileScanner{fs: fsys, stats: stats}
}

// resultQueue releases per-task results strictly in walk order, so output
// does not depend on which worker finishes first.
type resultQueue struct {
	mu      sync.Mutex
	next    int
	pending map[int][]FileResult
	emit    func(FileResult)
}

func newResultQueue(emit func(FileResult)) *resultQueue {
	return &resultQueue{pending: make(map[int][]FileResult), emit: emit}
}

func (q *resultQueue) put(index int, rs []FileResult) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending[index] = rs
	for {
		ready, ok := q.pending[q.next]
		if !ok {
			return
		}
		delete(q.pending, q.next)
		q.next++
		for _, r := range ready {
			q.emit(r)
		}
	}
}

// emitNow bypasses ordering; used for walk errors.
func (q *resultQueue) emitNow(r FileResult) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.emit(r)
}

// Scan is the main pipeline. sink is never called concurrently. A
// cancelled ctx makes Scan return ctx.Err(); files rewritten before that
// stay rewritten.
func (s *FileScanner) Scan(ctx context.Context, opts *ScanOptions, sink func(FileResult)) error {
	var m *Matcher
	if opts.Replace {
		src, _ := opts.ReplacePair()
		m = NewMatcher([]string{src}, false)
	} else {
		m = NewMatcher(opts.Patterns, opts.IgnoreCase)
	}
	s.stats.Start()
	queue := newResultQueue(sink)

	var wg sync.WaitGroup
	pool, err := ants.NewPoolWithFunc(opts.Threads, func(i interface{}) {
		defer wg.Done()
		t := i.(Task)
		if ctx.Err() != nil {
			queue.put(t.index, nil)
			return
		}
		queue.put(t.index, s.process(ctx, t, opts, m))
	})
	if err != nil {
		return fmt.Errorf("pool: %w", err)
	}
	defer pool.Release()

	// periodic stats
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				logrus.Debugf("Stats: found=%d scanned=%d skipped=%d errors=%d",
					s.stats.FilesFound.Load(), s.stats.FilesScanned.Load(),
					s.stats.FilesSkipped.Load(), s.stats.Errors.Load())
			}
		}
	}()
	defer close(done)

	walkErr := WalkCandidates(ctx, s.fs, opts, func(t Task) error {
		s.stats.FilesFound.Add(1)
		wg.Add(1)
		if err := pool.Invoke(t); err != nil {
			wg.Done()
			return fmt.Errorf("submit task: %w", err)
		}
		return nil
	}, func(err error) {
		s.stats.Errors.Add(1)
		queue.emitNow(FileResult{Err: err})
	})
	wg.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if walkErr != nil {
		return walkErr
	}
	logrus.Debugf("Scan done in %s: found=%d scanned=%d skipped=%d errors=%d",
		s.stats.Elapsed(), s.stats.FilesFound.Load(), s.stats.FilesScanned.Load(),
		s.stats.FilesSkipped.Load(), s.stats.Errors.Load())
	return nil
}

func (s *FileScanner) process(ctx context.Context, t Task, opts *ScanOptions, m *Matcher) []FileResult {
	if t.isArchive {
		rs := scanArchive(ctx, t.path, m, opts)
		for _, r := range rs {
			s.count(r)
		}
		return rs
	}
	var r FileResult
	if opts.Replace {
		r = s.replaceOne(t.path, opts, m)
	} else {
		r = s.searchOne(t.path, opts, m)
	}
	s.count(r)
	return []FileResult{r}
}

func (s *FileScanner) searchOne(path string, opts *ScanOptions, m *Matcher) FileResult {
	res := FileResult{Path: path, Ext: extOf(path)}
	content, err := readText(s.fs, path)
	if err != nil {
		res.Err = err
		return res
	}
	if !m.MatchContent(content) {
		return res
	}
	res.Occurrences = matchLines(path, splitLines(content), m, opts.Context, func(r MatchRecord) {
		res.Records = append(res.Records, r)
	})
	return res
}

func (s *FileScanner) replaceOne(path string, opts *ScanOptions, m *Matcher) FileResult {
	res := FileResult{Path: path, Ext: extOf(path)}
	var onMatch func(MatchRecord)
	if opts.Verbose {
		onMatch = func(r MatchRecord) { res.Records = append(res.Records, r) }
	}
	src, dst := opts.ReplacePair()
	res.Occurrences, res.Err = replaceFile(s.fs, path, src, dst, opts.DryRun, m, opts.Context, onMatch)
	res.Replaced = res.Err == nil && res.Occurrences > 0 && !opts.DryRun
	return res
}

func (s *FileScanner) count(r FileResult) {
	switch {
	case r.Err == nil:
		s.stats.FilesScanned.Add(1)
	case IsCode(r.Err, ErrNotTextFile):
		s.stats.FilesSkipped.Add(1)
		logrus.WithField("file", r.Path).Debug("not a text file")
	default:
		s.stats.Errors.Add(1)
		logrus.WithFields(logrus.Fields{"file": r.Path, "err": r.Err}).Debug("file error")
	}
}
