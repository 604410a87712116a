package internal

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Task describes a unit of work
type Task struct {
	index     int
	path      string
	isArchive bool
}

// maxRootLinks bounds symlink chains when resolving the walk root.
const maxRootLinks = 40

// WalkWithDepth walks root in lexical order (afero sorts entries) and cuts
// branches deeper than maxDepth. maxDepth 0 is unlimited. A symlinked root
// is followed; paths are still reported under root.
func WalkWithDepth(ctx context.Context, fsys afero.Fs, root string, maxDepth int, fn func(path string, info os.FileInfo, err error) error) error {
	walkRoot := resolveRoot(fsys, root)
	return afero.Walk(fsys, walkRoot, func(path string, info os.FileInfo, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if walkRoot != root {
			rel, _ := filepath.Rel(walkRoot, path)
			path = filepath.Join(root, rel)
		}
		if err != nil {
			return fn(path, info, err)
		}
		if maxDepth > 0 {
			rel, _ := filepath.Rel(root, path)
			if rel != "." && depthCount(rel) > maxDepth {
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}
		return fn(path, info, nil)
	})
}

// WalkCandidates feeds every candidate file under opts.Root to send, in
// walk order. Walk errors go to onErr and never stop the walk.
func WalkCandidates(ctx context.Context, fsys afero.Fs, opts *ScanOptions, send func(Task) error, onErr func(error)) error {
	index := 0
	return WalkWithDepth(ctx, fsys, opts.Root, opts.Depth, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			onErr(Wrap(err, ErrFileAccess, path, "walk failed"))
			return nil
		}
		rel, _ := filepath.Rel(opts.Root, path)
		if info.IsDir() {
			if rel != "." && depthCount(rel) == 1 && opts.skipRootDir(info.Name()) {
				logrus.Debugf("skip dir %s", path)
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		t := Task{index: index, path: path}
		switch {
		case opts.Archives && IsArchive(path):
			t.isArchive = true
		case !opts.isCandidate(info.Name()):
			return nil
		}
		index++
		return send(t)
	})
}

// resolveRoot follows root while it is a symlink. Filesystems without
// symlink support return root unchanged.
func resolveRoot(fsys afero.Fs, root string) string {
	lst, ok := fsys.(afero.Lstater)
	if !ok {
		return root
	}
	lr, ok := fsys.(afero.LinkReader)
	if !ok {
		return root
	}
	p := root
	for range maxRootLinks {
		info, lstatCalled, err := lst.LstatIfPossible(p)
		if err != nil || !lstatCalled || info.Mode()&os.ModeSymlink == 0 {
			return p
		}
		target, err := lr.ReadlinkIfPossible(p)
		if err != nil {
			return root
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(p), target)
		}
		logrus.Debugf("root %s -> %s", p, target)
		p = target
	}
	return root
}

func depthCount(rel string) int {
	if rel == "" || rel == "." {
		return 0
	}
	return strings.Count(rel, string(os.PathSeparator)) + 1
}
