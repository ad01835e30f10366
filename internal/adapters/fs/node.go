package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/depcache/internal/adapters/config" //nolint:depguard // Wired in adapter layer
	"go.trai.ch/depcache/internal/core/domain"
	"go.trai.ch/depcache/internal/core/ports"
)

// SourceNodeID is the unique identifier for the class source Graft node.
const SourceNodeID graft.ID = "adapter.class_source"

func init() {
	graft.Register(graft.Node[ports.ClassSource]{
		ID:        SourceNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (ports.ClassSource, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			walker, err := NewWalker(cfg.Exclude)
			if err != nil {
				return nil, err
			}
			return NewSource(walker, cfg.Workers), nil
		},
	})
}
