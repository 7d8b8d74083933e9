package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
	"strings"
)

// Walker discovers vector icon sources under a theme directory.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkSources yields every .svg file under root, skipping hidden and ignored directories.
// Unreadable directories are skipped rather than aborting the walk.
func (w *Walker) WalkSources(root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if skipAction := w.shouldSkip(path, root, d, ignores); skipAction != nil {
				return skipAction
			}

			if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".svg") {
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// shouldSkip returns filepath.SkipDir for directories that must not be descended into.
func (w *Walker) shouldSkip(path, root string, d fs.DirEntry, ignores []string) error {
	if !d.IsDir() || path == root {
		return nil
	}

	name := d.Name()
	if strings.HasPrefix(name, ".") {
		return filepath.SkipDir
	}

	for _, ignore := range ignores {
		if matched, _ := filepath.Match(ignore, name); matched {
			return filepath.SkipDir
		}
	}
	return nil
}
