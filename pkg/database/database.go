package database

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/targc/tasksync/pkg/config"
)

// Manager owns the two store handles. The local SQLite store is always
// available; the remote Postgres store may be unreachable, in which case
// the manager reports offline and replication is skipped.
type Manager struct {
	Local *gorm.DB

	mu             sync.Mutex
	remote         *gorm.DB
	remoteURL      string
	online         bool
	automigrate    bool
	remoteMigrated bool
	logLevel       logger.LogLevel
}

// Connect opens the local store and probes the remote one. A failed probe
// is not an error: the process starts offline and later refreshes may
// bring it online.
func Connect(ctx context.Context, cfg *config.Config) (*Manager, error) {
	logLevel := logger.Silent

	if cfg.DBDebug {
		logLevel = logger.Info
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)", cfg.LocalDBPath)

	local, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})

	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	if cfg.AutoMigrate {
		err = AutoMigrate(local)

		if err != nil {
			return nil, fmt.Errorf("failed to migrate local store: %w", err)
		}
	}

	m := &Manager{
		Local:       local,
		remoteURL:   cfg.RemoteDBURL,
		automigrate: cfg.AutoMigrate,
		logLevel:    logLevel,
	}

	if m.Refresh(ctx) {
		log.Println("[Database] Remote store reachable, starting online")
	} else {
		log.Println("[Database] Remote store unreachable, starting offline")
	}

	return m, nil
}

// NewManager wraps already-open store handles. remote may be nil to start
// offline. The caller is responsible for migrations.
func NewManager(local, remote *gorm.DB) *Manager {
	return &Manager{
		Local:          local,
		remote:         remote,
		online:         remote != nil,
		remoteMigrated: true,
	}
}

// Online reports the result of the most recent connectivity probe.
func (m *Manager) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.online
}

// Remote returns the remote store handle, or nil while offline.
func (m *Manager) Remote() *gorm.DB {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.online {
		return nil
	}

	return m.remote
}

// Refresh re-runs the connectivity probe and logs online/offline
// transitions. It is called once at startup and again before every sync
// cycle, so a transient startup outage does not pin the process offline.
// The dial and the probe run outside the lock so that a slow or hung
// remote never blocks Online and Remote readers.
func (m *Manager) Refresh(ctx context.Context) bool {
	m.mu.Lock()
	remote := m.remote
	was := m.online
	migrated := m.remoteMigrated
	m.mu.Unlock()

	if remote == nil {
		if m.remoteURL == "" {
			m.swap(nil, false, was, migrated, nil)
			return false
		}

		db, err := gorm.Open(postgres.Open(m.remoteURL), &gorm.Config{
			Logger: logger.Default.LogMode(m.logLevel),
		})

		if err != nil {
			m.swap(nil, false, was, migrated, err)
			return false
		}

		remote = db
	}

	err := remote.WithContext(ctx).Exec("SELECT 1").Error

	if err != nil {
		m.swap(remote, false, was, migrated, err)
		return false
	}

	if m.automigrate && !migrated {
		err = AutoMigrate(remote)

		if err != nil {
			m.swap(remote, false, was, migrated, err)
			return false
		}

		migrated = true
	}

	m.swap(remote, true, was, migrated, nil)

	return true
}

func (m *Manager) swap(remote *gorm.DB, online, was, migrated bool, err error) {
	m.mu.Lock()
	m.remote = remote
	m.online = online
	m.remoteMigrated = migrated
	m.mu.Unlock()

	if online && !was {
		log.Println("[Database] Transition offline -> online")
	}

	if !online && was {
		log.Printf("[Database] Transition online -> offline: %v", err)
	}
}
