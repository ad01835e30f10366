package classfile

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/depcache/internal/adapters/config" //nolint:depguard // Wired in adapter layer
	"go.trai.ch/depcache/internal/adapters/logger" //nolint:depguard // Wired in adapter layer
	"go.trai.ch/depcache/internal/core/domain"
	"go.trai.ch/depcache/internal/core/ports"
)

// NodeID is the unique identifier for the class parser Graft node.
const NodeID graft.ID = "adapter.class_parser"

func init() {
	graft.Register(graft.Node[ports.ClassParser]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.ClassParser, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewForConfig(cfg, log)
		},
	})
}
