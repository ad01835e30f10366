package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/depcache/internal/adapters/config"  //nolint:depguard // Wired in app layer
	"go.trai.ch/depcache/internal/adapters/fs"      //nolint:depguard // Wired in app layer
	"go.trai.ch/depcache/internal/adapters/logger"  //nolint:depguard // Wired in app layer
	"go.trai.ch/depcache/internal/adapters/metrics" //nolint:depguard // Wired in app layer
	"go.trai.ch/depcache/internal/adapters/store"   //nolint:depguard // Wired in app layer
	"go.trai.ch/depcache/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/depcache/internal/core/domain"
	"go.trai.ch/depcache/internal/core/ports"
	"go.trai.ch/depcache/internal/engine/coordinator"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			coordinator.NodeID,
			fs.SourceNodeID,
			store.NodeID,
			metrics.NodeID,
			watcher.NodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			config.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	cfg, err := graft.Dep[*domain.Config](ctx)
	if err != nil {
		return nil, err
	}

	coord, err := graft.Dep[*coordinator.Coordinator](ctx)
	if err != nil {
		return nil, err
	}

	source, err := graft.Dep[ports.ClassSource](ctx)
	if err != nil {
		return nil, err
	}

	cacheStore, err := graft.Dep[ports.CacheStore](ctx)
	if err != nil {
		return nil, err
	}

	recorder, err := graft.Dep[ports.Metrics](ctx)
	if err != nil {
		return nil, err
	}

	watch, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(cfg, coord, source, cacheStore, recorder, watch, log), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	cfg, err := graft.Dep[*domain.Config](ctx)
	if err != nil {
		return nil, err
	}

	return NewComponents(app, log, cfg), nil
}
