package internal

import (
	"context"
	"errors"
	"io"
	iofs "io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"
	"github.com/sirupsen/logrus"
)

const maxArchiveFiles = 10000 // zip-bomb protection

// IsArchive by extension. O(1) map lookup
var archiveExt = map[string]struct{}{
	".zip": {}, ".tar": {}, ".gz": {}, ".bz2": {}, ".xz": {},
	".rar": {}, ".br": {}, ".lz4": {}, ".lz": {}, ".mz": {},
	".sz": {}, ".s2": {}, ".zz": {}, ".zst": {}, ".7z": {},
}

var errArchiveLimit = errors.New("archive file limit reached")

func IsArchive(p string) bool {
	_, ok := archiveExt[strings.ToLower(filepath.Ext(p))]
	return ok
}

// archiveEntryPath is how an inner file is shown in reports.
func archiveEntryPath(archivePath, inner string) string {
	return archivePath + ":" + inner
}

// scanArchive searches every candidate entry of an archive on the real
// filesystem. Archives are read-only: replace mode never reaches here.
func scanArchive(ctx context.Context, archivePath string, m *Matcher, opts *ScanOptions) []FileResult {
	fsys, err := archives.FileSystem(ctx, archivePath, nil)
	if err != nil {
		return []FileResult{{Path: archivePath, Err: Wrap(err, ErrFileAccess, archivePath, "open archive")}}
	}
	if closer, ok := fsys.(io.Closer); ok {
		defer closer.Close()
	}

	var results []FileResult
	count := 0
	walkErr := iofs.WalkDir(fsys, ".", func(inner string, d iofs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil || d.IsDir() {
			return nil
		}
		if count >= maxArchiveFiles {
			logrus.Warnf("Archive %s truncated: too many files (>= %d)", archivePath, maxArchiveFiles)
			return errArchiveLimit
		}
		if !opts.isCandidate(path.Base(inner)) {
			return nil
		}
		count++
		display := archiveEntryPath(archivePath, inner)
		res := FileResult{Path: display, Ext: extOf(inner)}
		f, err := fsys.Open(inner)
		if err != nil {
			res.Err = Wrap(err, ErrFileAccess, display, "open entry")
			results = append(results, res)
			return nil
		}
		content, err := readTextFrom(f, display)
		f.Close()
		if err != nil {
			res.Err = err
			results = append(results, res)
			return nil
		}
		res.Occurrences = matchLines(display, splitLines(content), m, opts.Context, func(r MatchRecord) {
			res.Records = append(res.Records, r)
		})
		results = append(results, res)
		return nil
	})
	if walkErr != nil && !errors.Is(walkErr, errArchiveLimit) && ctx.Err() == nil {
		results = append(results, FileResult{Path: archivePath, Err: Wrap(walkErr, ErrFileAccess, archivePath, "walk archive")})
	}
	return results
}
