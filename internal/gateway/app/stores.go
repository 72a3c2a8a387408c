package app

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"livepreview/internal/gateway/config"
	"livepreview/internal/gateway/repository/snapshot"
)

// initSnapshotStore opens the backend named by cfg.Snapshot.Backend. The
// returned close func releases its connections.
func initSnapshotStore(cfg *config.Config) (snapshot.Store, func() error, error) {
	noop := func() error { return nil }
	log := logrus.WithField("component", "snapshot")

	switch cfg.Snapshot.Backend {
	case "postgres":
		store, err := snapshot.OpenPostgres(cfg.Snapshot.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open snapshot db: %w", err)
		}
		log.Info("snapshot store: postgres")
		return store, store.Close, nil
	case "s3":
		s3 := cfg.Snapshot.S3
		store, err := snapshot.NewS3Store(snapshot.S3Config{
			Endpoint:  s3.Endpoint,
			Region:    s3.Region,
			AccessKey: s3.AccessKey,
			SecretKey: s3.SecretKey,
			Bucket:    s3.Bucket,
			UseSSL:    s3.UseSSL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize snapshot s3 store: %w", err)
		}
		log.WithFields(logrus.Fields{"bucket": s3.Bucket, "endpoint": s3.Endpoint}).Info("snapshot store: s3")
		return store, noop, nil
	case "file":
		store, err := snapshot.NewFileStore(cfg.Snapshot.File)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize snapshot file store: %w", err)
		}
		log.WithField("file", cfg.Snapshot.File).Info("snapshot store: file")
		return store, noop, nil
	default:
		log.Info("snapshot store: in-memory")
		return snapshot.NewMemoryStore(), noop, nil
	}
}
