package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/depcache/internal/adapters/store"
	"go.trai.ch/depcache/internal/core/domain"
)

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestStore_LoadMissingRoot(t *testing.T) {
	t.Parallel()

	s := store.NewStore(filepath.Join(t.TempDir(), "missing"))
	snap, err := s.Load(t.Context())
	require.NoError(t, err)
	assert.True(t, snap.IsEmpty())
	assert.Zero(t, snap.Generation)
}

func TestStore_Generations(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), domain.CacheDirName)
	s := store.NewStore(root)
	ctx := t.Context()

	snap := sampleSnapshot()
	snap.Generation = 0

	gen, err := s.Save(ctx, snap)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), gen)
	assert.Equal(t, []string{"gen-000001"}, listDir(t, root))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	snap.Generation = 1
	assert.Equal(t, snap, loaded)

	// Saving into the current generation replaces its file in place.
	snap.Pass = 43
	gen, err = s.Save(ctx, snap)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), gen)
	assert.Equal(t, []string{domain.CacheFileName}, listDir(t, filepath.Join(root, "gen-000001")))

	// A new generation prunes the older ones.
	snap.Generation = 0
	gen, err = s.Save(ctx, snap)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), gen)
	assert.Equal(t, []string{"gen-000002"}, listDir(t, root))

	loaded, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), loaded.Generation)
	assert.Equal(t, uint64(43), loaded.Pass)
}

func TestStore_Discard(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "keep.txt"), []byte("x"), 0o600))
	s := store.NewStore(root)
	ctx := t.Context()

	_, err := s.Save(ctx, domain.Snapshot{Symbols: []string{"a"}})
	require.NoError(t, err)
	require.NoError(t, s.Discard(ctx))

	assert.Equal(t, []string{"keep.txt"}, listDir(t, root))
	snap, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, snap.IsEmpty())

	// Generation numbers keep increasing after a discard.
	gen, err := s.Save(ctx, domain.Snapshot{})
	require.NoError(t, err)
	assert.Equal(t, uint32(2), gen)
}

func TestStore_DiscardMissingRoot(t *testing.T) {
	t.Parallel()

	s := store.NewStore(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, s.Discard(t.Context()))
}

func TestStore_LoadCorrupted(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(t *testing.T, root string)
	}{
		{
			name: "garbage file",
			setup: func(t *testing.T, root string) {
				t.Helper()
				require.NoError(t, os.MkdirAll(filepath.Join(root, "gen-000001"), 0o750))
				require.NoError(t, os.WriteFile(domain.GenerationCachePath(root, 1), []byte("not a cache"), 0o600))
			},
		},
		{
			name: "missing cache file",
			setup: func(t *testing.T, root string) {
				t.Helper()
				require.NoError(t, os.MkdirAll(filepath.Join(root, "gen-000004"), 0o750))
			},
		},
		{
			name: "generation mismatch",
			setup: func(t *testing.T, root string) {
				t.Helper()
				require.NoError(t, os.MkdirAll(filepath.Join(root, "gen-000002"), 0o750))
				data := store.Encode(domain.Snapshot{Generation: 9})
				require.NoError(t, os.WriteFile(domain.GenerationCachePath(root, 2), data, 0o600))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			tt.setup(t, root)

			_, err := store.NewStore(root).Load(t.Context())
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrCacheCorrupted)
		})
	}
}

func TestStore_IgnoresUnrelatedEntries(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "gen-abc"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".tmp-gen-1"), 0o750))

	snap, err := store.NewStore(root).Load(t.Context())
	require.NoError(t, err)
	assert.True(t, snap.IsEmpty())
}

func TestStore_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	s := store.NewStore(t.TempDir())
	_, err := s.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
	_, err = s.Save(ctx, domain.Snapshot{})
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, s.Discard(ctx), context.Canceled)
}
