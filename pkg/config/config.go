package config

import (
	"context"
	"log"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	// LocalDBPath is the SQLite file backing the offline-first store.
	LocalDBPath string `env:"TASKSYNC_LOCAL_DB_PATH, default=./tasksync.db"`

	// RemoteDBURL points at the shared Postgres store. Empty means the
	// process runs offline-only.
	RemoteDBURL string `env:"TASKSYNC_REMOTE_DB_URL"`

	ServerPort string `env:"TASKSYNC_SERVER_PORT, default=8080"`

	// APIKeyHash is a bcrypt hash guarding the trigger API. Auth is
	// disabled when unset.
	APIKeyHash string `env:"TASKSYNC_API_KEY_HASH"`

	SyncInterval     time.Duration `env:"TASKSYNC_SYNC_INTERVAL, default=60s"`
	RecoveryInterval time.Duration `env:"TASKSYNC_RECOVERY_INTERVAL, default=30s"`

	// ConflictStrategy selects what happens when both stores hold a row
	// with the same external id: "push_wins" or "newer_wins".
	ConflictStrategy string `env:"TASKSYNC_CONFLICT_STRATEGY, default=push_wins"`

	// ExternalIDMode selects how external ids are synthesized for rows
	// that were never pushed: "derived" (local_<kind>_<id>) or "uuid".
	ExternalIDMode string `env:"TASKSYNC_EXTERNAL_ID_MODE, default=derived"`

	AutoMigrate bool `env:"TASKSYNC_AUTO_MIGRATE, default=true"`
	DBDebug     bool `env:"TASKSYNC_DB_DEBUG, default=false"`
}

func Load(ctx context.Context) *Config {
	var cfg Config

	err := envconfig.Process(ctx, &cfg)

	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	return &cfg
}
