// Package syncer drives complete sync cycles: connectivity refresh, then
// one push+pull pass per entity kind in dependency order.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/targc/tasksync/pkg/audit"
	"github.com/targc/tasksync/pkg/database"
	"github.com/targc/tasksync/pkg/identity"
	"github.com/targc/tasksync/pkg/replicator"
)

// ErrCycleInProgress is returned when a cycle is requested while another
// one is still running. At most one cycle is active at a time.
var ErrCycleInProgress = errors.New("sync cycle already in progress")

type Options struct {
	Strategy      replicator.Strategy
	NewExternalID replicator.ExternalIDFunc
}

// Status is a read-only snapshot for the trigger surface.
type Status struct {
	Online         bool       `json:"online"`
	Syncing        bool       `json:"syncing"`
	LastStartedAt  *time.Time `json:"last_started_at,omitempty"`
	LastFinishedAt *time.Time `json:"last_finished_at,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
}

type Orchestrator struct {
	db    *database.Manager
	audit *audit.Recorder
	opts  Options

	running sync.Mutex

	mu             sync.Mutex
	syncing        bool
	lastStartedAt  *time.Time
	lastFinishedAt *time.Time
	lastError      string
}

func NewOrchestrator(db *database.Manager, rec *audit.Recorder, opts Options) *Orchestrator {
	if opts.Strategy == "" {
		opts.Strategy = replicator.PushWins
	}

	if opts.NewExternalID == nil {
		opts.NewExternalID = replicator.ExternalIDFuncForMode("derived")
	}

	return &Orchestrator{
		db:    db,
		audit: rec,
		opts:  opts,
	}
}

// RunCycle executes one complete sync cycle. Concurrent calls get
// ErrCycleInProgress instead of overlapping. Offline is a no-op, not an
// error.
func (o *Orchestrator) RunCycle(ctx context.Context) error {
	if !o.running.TryLock() {
		return ErrCycleInProgress
	}

	defer o.running.Unlock()

	o.markStarted()

	err := o.runCycle(ctx)

	o.markFinished(err)

	return err
}

func (o *Orchestrator) runCycle(ctx context.Context) error {
	if !o.db.Refresh(ctx) {
		log.Println("[Orchestrator] Offline, skipping sync cycle")
		return nil
	}

	remote := o.db.Remote()

	if remote == nil {
		log.Println("[Orchestrator] Offline, skipping sync cycle")
		return nil
	}

	log.Println("[Orchestrator] Starting sync cycle")

	deps := replicator.Deps{
		Local:         o.db.Local,
		Remote:        remote,
		Mapper:        identity.NewMapper(o.db.Local, remote),
		Audit:         o.audit,
		Strategy:      o.opts.Strategy,
		NewExternalID: o.opts.NewExternalID,
	}

	// Parent kinds before child kinds: users reference companies, tasks
	// reference users and companies. FK resolution for a child depends
	// on its parents having crossed the store boundary in this cycle.
	replicators := []replicator.Replicator{
		replicator.NewCompanyReplicator(deps),
		replicator.NewUserReplicator(deps),
		replicator.NewTaskReplicator(deps),
	}

	for _, r := range replicators {
		err := r.Run(ctx)

		if err != nil {
			return fmt.Errorf("%s replication failed: %w", r.Kind(), err)
		}
	}

	log.Println("[Orchestrator] Sync cycle completed")

	return nil
}

// Status reports the current online flag and the last cycle outcome.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()

	return Status{
		Online:         o.db.Online(),
		Syncing:        o.syncing,
		LastStartedAt:  o.lastStartedAt,
		LastFinishedAt: o.lastFinishedAt,
		LastError:      o.lastError,
	}
}

func (o *Orchestrator) markStarted() {
	now := time.Now().UTC()

	o.mu.Lock()
	defer o.mu.Unlock()

	o.syncing = true
	o.lastStartedAt = &now
	o.lastError = ""
}

func (o *Orchestrator) markFinished(err error) {
	now := time.Now().UTC()

	o.mu.Lock()
	defer o.mu.Unlock()

	o.syncing = false
	o.lastFinishedAt = &now

	if err != nil {
		o.lastError = err.Error()
	}
}
