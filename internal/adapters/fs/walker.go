// Package fs provides file system adapters for collecting compiled classes.
package fs

import (
	"io/fs"
	"iter"
	"path"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"go.trai.ch/depcache/internal/core/domain"
	"go.trai.ch/zerr"
)

// Walker yields class files below a root directory.
type Walker struct {
	excludes []glob.Glob
}

// NewWalker creates a Walker. Exclude patterns are matched against slash
// separated paths relative to the walked root.
func NewWalker(excludes []string) (*Walker, error) {
	w := &Walker{}
	for _, pattern := range excludes {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidExcludePattern, err.Error()), "pattern", pattern)
		}
		w.excludes = append(w.excludes, g)
	}
	return w, nil
}

// WalkClasses yields the root-relative, slash separated path of every class file.
// Directories named .git, .jj or the cache directory are skipped.
func (w *Walker) WalkClasses(root string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path == root {
				return nil
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)

			if d.IsDir() {
				if w.skipDir(d.Name(), rel) {
					return filepath.SkipDir
				}
				return nil
			}

			if !strings.HasSuffix(rel, domain.ClassFileExt) || w.excluded(rel) {
				return nil
			}
			if !yield(rel, nil) {
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil {
			yield("", err)
		}
	}
}

// Dirs yields the absolute path of root and every directory below it that is
// not skipped. Unreadable directories are ignored.
func (w *Walker) Dirs(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // Skip directories that vanished or cannot be read
			}
			if !d.IsDir() {
				return nil
			}
			if path != root {
				rel, relErr := filepath.Rel(root, path)
				if relErr != nil || w.skipDir(d.Name(), filepath.ToSlash(rel)) {
					return filepath.SkipDir
				}
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// Skipped reports whether a root-relative file path lies in a skipped directory
// or matches an exclude pattern.
func (w *Walker) Skipped(rel string) bool {
	rel = filepath.ToSlash(rel)
	if dir := path.Dir(rel); dir != "." && w.SkipsDir(dir) {
		return true
	}
	return w.excluded(rel)
}

// SkipsDir reports whether a root-relative directory, or any of its parents,
// is skipped while walking.
func (w *Walker) SkipsDir(rel string) bool {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for i, part := range parts {
		if w.skipDir(part, strings.Join(parts[:i+1], "/")) {
			return true
		}
	}
	return false
}

func (w *Walker) skipDir(name, rel string) bool {
	switch name {
	case ".git", ".jj", domain.CacheDirName:
		return true
	}
	return w.excluded(rel)
}

func (w *Walker) excluded(rel string) bool {
	for _, g := range w.excludes {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// ClassName derives the internal class name from a root-relative class file path.
func ClassName(rel string) string {
	return strings.TrimSuffix(filepath.ToSlash(rel), domain.ClassFileExt)
}
