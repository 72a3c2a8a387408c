package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"livepreview/internal/gateway/app"
	"livepreview/internal/gateway/config"
)

const shutdownTimeout = 5 * time.Second

type serveFlags struct {
	port         string
	scope        string
	bridgeMode   string
	workspaceID  string
	workspaceDir string
	snapshot     string
	cdn          string
	reactVersion string
}

func newServeCmd() *cobra.Command {
	var f serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the preview server",
		Long: `Run the preview server.

  Configuration is read from the environment and .env; flags override it. With --workspace-dir the directory is mounted and edits are written back to it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			f.apply(cmd, cfg)
			return serve(cmd.Context(), cfg)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.port, "port", "", "listen port")
	fl.StringVar(&f.scope, "scope", "", "URL prefix served as the preview")
	fl.StringVar(&f.bridgeMode, "bridge-mode", "", "where preview files come from (local, remote)")
	fl.StringVar(&f.workspaceID, "workspace", "", "workspace id used for snapshots")
	fl.StringVar(&f.workspaceDir, "workspace-dir", "", "directory to mount as the workspace")
	fl.StringVar(&f.snapshot, "snapshot-backend", "", "snapshot backend (memory, file, s3, postgres)")
	fl.StringVar(&f.cdn, "cdn", "", "CDN base URL for bare imports")
	fl.StringVar(&f.reactVersion, "react-version", "", "pinned react and react-dom version")
	return cmd
}

func (f serveFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("port") {
		cfg.Port = f.port
		if cfg.Port != "" && cfg.Port[0] != ':' {
			cfg.Port = ":" + cfg.Port
		}
	}
	if changed("scope") {
		cfg.Preview.Scope = f.scope
	}
	if changed("bridge-mode") {
		cfg.Preview.BridgeMode = config.BridgeMode(f.bridgeMode)
	}
	if changed("workspace") {
		cfg.Workspace.ID = f.workspaceID
	}
	if changed("workspace-dir") {
		cfg.Workspace.Dir = f.workspaceDir
	}
	if changed("snapshot-backend") {
		cfg.Snapshot.Backend = f.snapshot
	}
	if changed("cdn") {
		cfg.Preview.CDNBaseURL = f.cdn
	}
	if changed("react-version") {
		cfg.Preview.ReactVersion = f.reactVersion
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- a.Start() }()

	select {
	case err = <-errCh:
	case <-ctx.Done():
		logrus.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := a.Shutdown(shutdownCtx); shutdownErr != nil {
		logrus.WithError(shutdownErr).Error("server forced to shutdown")
	}
	return err
}
