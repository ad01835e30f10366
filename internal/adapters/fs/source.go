package fs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/depcache/internal/core/domain"
	"go.trai.ch/depcache/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Source implements ports.ClassSource on the local file system.
type Source struct {
	walker  *Walker
	workers int
}

var _ ports.ClassSource = (*Source)(nil)

// NewSource creates a Source that reads up to workers files concurrently.
func NewSource(walker *Walker, workers int) *Source {
	return &Source{walker: walker, workers: max(workers, 1)}
}

// Collect reads every class file below dir.
func (s *Source) Collect(ctx context.Context, dir string) ([]domain.CompiledClass, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, zerr.With(zerr.Wrap(domain.ErrClassDirNotFound, "failed to collect classes"), "dir", dir)
	}

	var paths []string
	for rel, err := range s.walker.WalkClasses(dir) {
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to walk classes directory"), "dir", dir)
		}
		paths = append(paths, rel)
	}

	classes, _, err := s.read(ctx, dir, paths, false)
	return classes, err
}

// Read loads the given root-relative class files below dir. Files that no longer
// exist are reported as removed class names instead of failing.
func (s *Source) Read(ctx context.Context, dir string, paths []string) ([]domain.CompiledClass, []string, error) {
	return s.read(ctx, dir, paths, true)
}

func (s *Source) read(
	ctx context.Context,
	dir string,
	paths []string,
	allowMissing bool,
) ([]domain.CompiledClass, []string, error) {
	classes := make([]domain.CompiledClass, len(paths))
	missing := make([]bool, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, rel := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(dir, filepath.FromSlash(rel))
			//nolint:gosec // Path comes from walking or watching the classes directory
			data, err := os.ReadFile(path)
			if err != nil {
				if allowMissing && errors.Is(err, fs.ErrNotExist) {
					missing[i] = true
					return nil
				}
				return zerr.With(zerr.Wrap(domain.ErrClassReadFailed, err.Error()), "path", path)
			}
			classes[i] = domain.CompiledClass{Name: ClassName(rel), Bytes: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var removed []string
	present := classes[:0]
	for i, class := range classes {
		if missing[i] {
			removed = append(removed, ClassName(paths[i]))
			continue
		}
		present = append(present, class)
	}

	slices.SortFunc(present, func(a, b domain.CompiledClass) int {
		return strings.Compare(a.Name, b.Name)
	})
	slices.Sort(removed)
	return present, slices.Compact(removed), nil
}

// LoadReferences reads a YAML manifest mapping class names to the classes the
// compiler resolved for them. Dotted names are converted to internal form.
// A missing file yields an empty manifest.
func (s *Source) LoadReferences(path string) (map[string][]string, error) {
	//nolint:gosec // Path is provided by the user on the command line
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string][]string{}, nil
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrRefsReadFailed, err.Error()), "path", path)
	}

	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrRefsReadFailed, err.Error()), "path", path)
	}

	refs := make(map[string][]string, len(raw))
	for class, deps := range raw {
		name := domain.InternalName(class)
		for _, dep := range deps {
			refs[name] = append(refs[name], domain.InternalName(dep))
		}
		if _, ok := refs[name]; !ok {
			refs[name] = nil
		}
	}
	for name := range refs {
		slices.Sort(refs[name])
		refs[name] = slices.Compact(refs[name])
	}
	return refs, nil
}
