package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/iconsmith/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/iconsmith/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/iconsmith/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/iconsmith/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/iconsmith/internal/adapters/vector"    //nolint:depguard // Wired in app layer
	"go.trai.ch/iconsmith/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
			fs.FingerprinterNodeID,
			fs.HasherNodeID,
			fs.WalkerNodeID,
			telemetry.TracerNodeID,
			vector.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: a, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	fingerprinter, err := graft.Dep[ports.Fingerprinter](ctx)
	if err != nil {
		return nil, err
	}

	hasher, err := graft.Dep[*fs.Hasher](ctx)
	if err != nil {
		return nil, err
	}

	walker, err := graft.Dep[*fs.Walker](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	vec, err := graft.Dep[*vector.Rasterizer](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, log, fingerprinter, tracer, vec, hasher, walker), nil
}
