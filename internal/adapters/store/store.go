// Package store persists dependency cache snapshots as numbered generations.
package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"go.trai.ch/depcache/internal/core/domain"
	"go.trai.ch/depcache/internal/core/ports"
	"go.trai.ch/zerr"
)

const tempPrefix = ".tmp-"

// Store implements ports.CacheStore with one directory per generation.
// The highest numbered generation is current.
type Store struct {
	root string

	mu sync.Mutex
	// last is the highest generation observed by this process, so numbers
	// keep increasing after Discard.
	last uint32
}

var _ ports.CacheStore = (*Store)(nil)

// NewStore creates a store rooted at root. Nothing is created until the first Save.
func NewStore(root string) *Store {
	return &Store{root: filepath.Clean(root)}
}

// Root returns the cache root directory.
func (s *Store) Root() string {
	return s.root
}

// Load reads the current generation.
func (s *Store) Load(ctx context.Context) (domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	gens, err := s.generations()
	if err != nil {
		return domain.Snapshot{}, err
	}
	if len(gens) == 0 {
		return domain.Snapshot{}, nil
	}

	current := gens[len(gens)-1]
	s.last = max(s.last, current)

	path := domain.GenerationCachePath(s.root, current)
	//nolint:gosec // Path is built from the configured cache root
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Snapshot{}, zerr.With(
				zerr.With(zerr.Wrap(domain.ErrCacheCorrupted, "generation without cache file"), "generation", current),
				"path", path,
			)
		}
		return domain.Snapshot{}, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "path", path)
	}

	snap, err := Decode(data)
	if err != nil {
		return domain.Snapshot{}, zerr.With(err, "path", path)
	}
	if snap.Generation != current {
		return domain.Snapshot{}, zerr.With(
			zerr.With(zerr.Wrap(domain.ErrCacheCorrupted, "generation mismatch"), "generation", current),
			"path", path,
		)
	}
	return snap, nil
}

// Save writes snap. A zero generation starts a new generation directory, which
// becomes visible in one rename; older generations are pruned afterwards.
// Otherwise the cache file of snap.Generation is replaced via temp file and rename.
func (s *Store) Save(ctx context.Context, snap domain.Snapshot) (uint32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.root, domain.DirPerm); err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "path", s.root)
	}

	gens, err := s.generations()
	if err != nil {
		return 0, err
	}
	if len(gens) > 0 {
		s.last = max(s.last, gens[len(gens)-1])
	}

	if snap.Generation != 0 {
		if err := s.replace(snap); err != nil {
			return 0, err
		}
		s.last = max(s.last, snap.Generation)
		return snap.Generation, nil
	}

	snap.Generation = s.last + 1
	if err := s.create(snap); err != nil {
		return 0, err
	}
	s.last = snap.Generation

	var errs []error
	for _, gen := range gens {
		if gen < snap.Generation {
			errs = append(errs, s.remove(filepath.Join(s.root, domain.GenerationDirName(gen))))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return 0, err
	}
	return snap.Generation, nil
}

// Discard removes every generation and leftover temporary entries.
func (s *Store) Discard(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(zerr.Wrap(err, domain.ErrStoreDiscardFailed.Error()), "path", s.root)
	}

	var errs []error
	for _, entry := range entries {
		name := entry.Name()
		if gen, ok := parseGeneration(name); ok {
			s.last = max(s.last, gen)
		} else if !strings.HasPrefix(name, tempPrefix) {
			continue
		}
		errs = append(errs, s.remove(filepath.Join(s.root, name)))
	}
	return errors.Join(errs...)
}

func (s *Store) create(snap domain.Snapshot) error {
	tmpDir, err := os.MkdirTemp(s.root, tempPrefix+"gen-*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "path", s.root)
	}
	if err := writeFile(filepath.Join(tmpDir, domain.CacheFileName), Encode(snap)); err != nil {
		_ = os.RemoveAll(tmpDir)
		return err
	}

	dir := filepath.Join(s.root, domain.GenerationDirName(snap.Generation))
	if err := os.Rename(tmpDir, dir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", dir)
	}
	return nil
}

func (s *Store) replace(snap domain.Snapshot) error {
	dir := filepath.Join(s.root, domain.GenerationDirName(snap.Generation))
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "path", dir)
	}
	return writeFile(domain.GenerationCachePath(s.root, snap.Generation), Encode(snap))
}

func (s *Store) remove(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreDiscardFailed.Error()), "path", path)
	}
	return nil
}

// generations returns the generation numbers present under root, ascending.
func (s *Store) generations() ([]uint32, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "path", s.root)
	}

	var gens []uint32
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if gen, ok := parseGeneration(entry.Name()); ok {
			gens = append(gens, gen)
		}
	}
	slices.Sort(gens)
	return gens, nil
}

func parseGeneration(name string) (uint32, bool) {
	digits, ok := strings.CutPrefix(name, domain.GenerationPrefix)
	if !ok || digits == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(digits, 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint32(n), true
}

// writeFile replaces path atomically: the data is synced to a temp file in the
// same directory which is then renamed over path.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", path)
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmpName, domain.FilePerm)
	}
	if err == nil {
		err = os.Rename(tmpName, path)
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", path)
	}
	return nil
}
