package ports

import (
	"context"

	"go.trai.ch/depcache/internal/core/domain"
)

// CacheStore persists dependency cache snapshots, one generation per directory.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type CacheStore interface {
	// Load reads the current generation.
	// It returns an empty snapshot if no generation exists, and an error wrapping
	// domain.ErrCacheCorrupted if the persisted bytes are inconsistent.
	Load(ctx context.Context) (domain.Snapshot, error)

	// Save atomically replaces the cache file of snap.Generation, or starts a new
	// generation when snap.Generation is zero. It returns the generation written.
	Save(ctx context.Context, snap domain.Snapshot) (uint32, error)

	// Discard removes every generation.
	Discard(ctx context.Context) error
}
