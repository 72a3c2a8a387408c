package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type BridgeMode string

const (
	// BridgeLocal answers preview requests from the server-side store.
	BridgeLocal BridgeMode = "local"
	// BridgeRemote waits for a browser document context on the bridge websocket.
	BridgeRemote BridgeMode = "remote"
)

type Config struct {
	Port      string
	Env       string
	Preview   PreviewConfig
	Workspace WorkspaceConfig
	Snapshot  SnapshotConfig
}

type PreviewConfig struct {
	Scope            string
	BridgeMode       BridgeMode
	BridgeTimeout    time.Duration
	CDNBaseURL       string
	ReactVersion     string
	CompileCacheSize int
}

type WorkspaceConfig struct {
	ID  string
	Dir string
}

type SnapshotConfig struct {
	Backend       string
	File          string
	PostgresDSN   string
	AutosaveDelay time.Duration
	S3            S3Config
}

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	env := firstNonEmpty(strings.TrimSpace(os.Getenv("APP_ENV")), "local")

	timeout, err := durationEnv("BRIDGE_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	autosave, err := durationEnv("SNAPSHOT_AUTOSAVE_DELAY", time.Second)
	if err != nil {
		return nil, err
	}
	cacheSize, err := intEnv("COMPILE_CACHE_SIZE", 512)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port: normalizePort(firstNonEmpty(strings.TrimSpace(os.Getenv("PORT")), "8081")),
		Env:  env,
		Preview: PreviewConfig{
			Scope:            firstNonEmpty(strings.TrimSpace(os.Getenv("PREVIEW_SCOPE")), "/preview/"),
			BridgeMode:       BridgeMode(strings.ToLower(firstNonEmpty(strings.TrimSpace(os.Getenv("BRIDGE_MODE")), string(BridgeLocal)))),
			BridgeTimeout:    timeout,
			CDNBaseURL:       firstNonEmpty(strings.TrimSpace(os.Getenv("CDN_BASE_URL")), "https://esm.sh"),
			ReactVersion:     firstNonEmpty(strings.TrimSpace(os.Getenv("REACT_VERSION")), "19.2.0"),
			CompileCacheSize: cacheSize,
		},
		Workspace: WorkspaceConfig{
			ID:  firstNonEmpty(strings.TrimSpace(os.Getenv("WORKSPACE_ID")), "default"),
			Dir: strings.TrimSpace(os.Getenv("WORKSPACE_DIR")),
		},
		Snapshot: loadSnapshotConfig(env, autosave),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Preview.BridgeMode {
	case BridgeLocal, BridgeRemote:
	default:
		return fmt.Errorf("BRIDGE_MODE must be %q or %q, got %q", BridgeLocal, BridgeRemote, c.Preview.BridgeMode)
	}
	switch c.Snapshot.Backend {
	case "memory", "file", "s3", "postgres":
	default:
		return fmt.Errorf("unknown snapshot backend %q", c.Snapshot.Backend)
	}
	if c.Preview.BridgeTimeout <= 0 {
		return fmt.Errorf("BRIDGE_TIMEOUT must be positive")
	}
	return nil
}

func loadSnapshotConfig(env string, autosave time.Duration) SnapshotConfig {
	cfg := SnapshotConfig{
		File:          strings.TrimSpace(os.Getenv("SNAPSHOT_FILE")),
		PostgresDSN:   strings.TrimSpace(os.Getenv("SNAPSHOT_PG_DSN")),
		AutosaveDelay: autosave,
		S3: S3Config{
			Endpoint:  strings.TrimSpace(os.Getenv("SNAPSHOT_S3_ENDPOINT")),
			Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("SNAPSHOT_S3_REGION")), "us-east-1"),
			AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("SNAPSHOT_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
			SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("SNAPSHOT_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
			Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("SNAPSHOT_S3_BUCKET")), "livepreview-snapshots"),
			UseSSL:    boolEnv("SNAPSHOT_S3_USE_SSL", true),
		},
	}
	if strings.EqualFold(env, "local") {
		applyLocalDefaults(&cfg)
	}
	cfg.Backend = strings.ToLower(firstNonEmpty(strings.TrimSpace(os.Getenv("SNAPSHOT_BACKEND")), inferBackend(cfg)))
	return cfg
}

func inferBackend(cfg SnapshotConfig) string {
	switch {
	case cfg.PostgresDSN != "":
		return "postgres"
	case cfg.S3.Endpoint != "":
		return "s3"
	case cfg.File != "":
		return "file"
	default:
		return "memory"
	}
}

func normalizePort(port string) string {
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func boolEnv(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
