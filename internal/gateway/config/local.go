package config

import (
	"os"
	"path/filepath"
	"strings"
)

// applyLocalDefaults fills the developer setup: snapshots on disk and, when
// the compose minio is configured, plain-HTTP S3.
func applyLocalDefaults(cfg *SnapshotConfig) {
	if cfg.File == "" {
		cfg.File = filepath.Join("tmp", "workspace_snapshots.json")
	}
	if cfg.S3.Endpoint == "" {
		cfg.S3.Endpoint = strings.TrimSpace(os.Getenv("SNAPSHOT_MINIO_ENDPOINT"))
	}
	if cfg.S3.Endpoint != "" {
		cfg.S3.UseSSL = false
		cfg.S3.AccessKey = firstNonEmpty(cfg.S3.AccessKey, "livepreview")
		cfg.S3.SecretKey = firstNonEmpty(cfg.S3.SecretKey, "livepreview123")
	}
}
