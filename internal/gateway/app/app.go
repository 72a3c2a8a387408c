package app

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/sirupsen/logrus"

	"livepreview/internal/compiler"
	"livepreview/internal/gateway/config"
	"livepreview/internal/gateway/handler/rpc"
	"livepreview/internal/gateway/server"
	"livepreview/internal/gateway/service/workspace"
	"livepreview/internal/importmap"
	"livepreview/internal/preview"
	"livepreview/internal/preview/bridge"
	"livepreview/internal/vfs"
)

type App struct {
	cfg       *config.Config
	server    *server.Server
	workspace *workspace.Service
	client    *bridge.Client
	compiler  *compiler.Compiler

	stops []func()
	close func() error
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Dependencies
	repo, closeRepo, err := initSnapshotStore(cfg)
	if err != nil {
		return nil, err
	}
	maps := importmap.NewBuilder(importmap.Options{
		CDN:          cfg.Preview.CDNBaseURL,
		ReactVersion: cfg.Preview.ReactVersion,
	})
	scope := preview.NormalizeScope(cfg.Preview.Scope)
	compOpts := compiler.DefaultOptions()
	compOpts.Prefix = scope
	compOpts.CacheSize = cfg.Preview.CompileCacheSize
	comp, err := compiler.New(compOpts)
	if err != nil {
		_ = closeRepo()
		return nil, err
	}

	store := vfs.NewStore()
	svc := workspace.New(cfg.Workspace.ID, store, repo, maps)
	a := &App{cfg: cfg, workspace: svc, compiler: comp, close: closeRepo}

	if cfg.Workspace.Dir != "" {
		if err := svc.MountDir(ctx, cfg.Workspace.Dir); err != nil {
			_ = closeRepo()
			return nil, fmt.Errorf("failed to mount workspace: %w", err)
		}
		stopMirror, err := svc.MirrorToDir(cfg.Workspace.Dir)
		if err != nil {
			_ = closeRepo()
			return nil, err
		}
		a.stops = append(a.stops, stopMirror)
	} else if err := svc.Restore(ctx, true); err != nil {
		_ = closeRepo()
		return nil, fmt.Errorf("failed to restore workspace: %w", err)
	}
	a.stops = append(a.stops, svc.StartAutosave(context.Background(), cfg.Snapshot.AutosaveDelay))

	client := bridge.NewClient(cfg.Preview.BridgeTimeout)
	a.client = client
	var bridgeHandler *rpc.BridgeHandler
	switch cfg.Preview.BridgeMode {
	case config.BridgeRemote:
		bridgeHandler = rpc.NewBridgeHandler(client)
	default:
		a.stops = append(a.stops, bridge.Connect(client, bridge.NewHost(store)))
	}

	interceptor := preview.NewInterceptor(scope, client, comp, maps)
	workspaceHandler := rpc.NewWorkspaceHandler(svc)

	// Routing & Server
	mux := server.NewMux(workspaceHandler, bridgeHandler, interceptor, a.health)
	a.server = server.New(cfg.Port, mux)

	logrus.WithFields(logrus.Fields{
		"workspace_id": svc.ID(),
		"scope":        scope,
		"bridge":       cfg.Preview.BridgeMode,
		"snapshot":     cfg.Snapshot.Backend,
	}).Info("preview app initialized")
	return a, nil
}

func (a *App) Workspace() *workspace.Service { return a.workspace }

func (a *App) health() map[string]any {
	return map[string]any{
		"workspace":       a.workspace.ID(),
		"files":           a.workspace.Store().Len(),
		"bridgeConnected": a.client.Connected(),
		"compileCache":    a.compiler.Cached(),
	}
}

func (a *App) Start() error {
	return a.server.Start()
}

// Serve runs the server on an existing listener.
func (a *App) Serve(ln net.Listener) error {
	return a.server.Serve(ln)
}

// Shutdown stops the server, flushes autosave and releases the snapshot store.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	for i := len(a.stops) - 1; i >= 0; i-- {
		a.stops[i]()
	}
	a.stops = nil
	if a.close != nil {
		err = errors.Join(err, a.close())
		a.close = nil
	}
	return err
}
