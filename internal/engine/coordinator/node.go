package coordinator

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/depcache/internal/adapters/classfile" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/depcache/internal/adapters/config"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/depcache/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/depcache/internal/adapters/store"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/depcache/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/depcache/internal/core/domain"
	"go.trai.ch/depcache/internal/core/ports"
	"go.trai.ch/depcache/internal/engine/depcache"
)

// NodeID is the unique identifier for the coordinator Graft node.
const NodeID graft.ID = "engine.coordinator"

func init() {
	graft.Register(graft.Node[*Coordinator]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			classfile.NodeID,
			store.NodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Coordinator, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}

			parser, err := graft.Dep[ports.ClassParser](ctx)
			if err != nil {
				return nil, err
			}

			cacheStore, err := graft.Dep[ports.CacheStore](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(depcache.New(nil), parser, cacheStore, tracer, log, cfg.Workers), nil
		},
	})
}
