package internal

import (
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// replaceFile counts src in the file and, unless dryRun, rewrites the file
// with every occurrence of src replaced by dst. When lines are wanted, the
// pre-replacement matching lines are streamed to onMatch before anything is
// written. The returned count is 0 if the rewrite failed; the original file
// is then left untouched.
func replaceFile(fsys afero.Fs, path, src, dst string, dryRun bool, m *Matcher, contextN int, onMatch func(MatchRecord)) (int, error) {
	content, err := readText(fsys, path)
	if err != nil {
		return 0, err
	}
	occurrences := strings.Count(content, src)
	if occurrences == 0 {
		return 0, nil
	}
	if onMatch != nil {
		matchLines(path, splitLines(content), m, contextN, onMatch)
	}
	if dryRun {
		return occurrences, nil
	}
	if err := atomicWriteFile(fsys, path, []byte(strings.ReplaceAll(content, src, dst))); err != nil {
		return 0, err
	}
	logrus.WithFields(logrus.Fields{"file": path, "occurrences": occurrences}).Debug("rewritten")
	return occurrences, nil
}

// atomicWriteFile writes data to a temp file next to path, then renames it
// over path. The original keeps its permissions. On failure the temp file
// is removed and path is not modified.
func atomicWriteFile(fsys afero.Fs, path string, data []byte) (err error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return Wrap(err, ErrFileWrite, path, "stat before write")
	}
	tmp, err := afero.TempFile(fsys, filepath.Dir(path), "."+filepath.Base(path)+".tg-*")
	if err != nil {
		return Wrap(err, ErrFileWrite, path, "create temp file")
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = fsys.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return Wrap(err, ErrFileWrite, path, "write temp file")
	}
	if err = tmp.Sync(); err != nil {
		return Wrap(err, ErrFileWrite, path, "sync temp file")
	}
	if err = tmp.Close(); err != nil {
		return Wrap(err, ErrFileWrite, path, "close temp file")
	}
	if err = fsys.Chmod(tmpName, info.Mode().Perm()); err != nil {
		return Wrap(err, ErrFileWrite, path, "chmod temp file")
	}
	if err = fsys.Rename(tmpName, path); err != nil {
		return Wrap(err, ErrFileWrite, path, "rename temp file")
	}
	return nil
}
