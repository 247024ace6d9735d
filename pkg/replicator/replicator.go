// Package replicator implements push/pull reconciliation for one entity
// kind. Push sends unsynced local rows outward and may create or update
// remote rows; pull scans the remote store and creates missing local
// rows. Rows are joined across stores by external id, which makes a
// retried push idempotent.
package replicator

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/targc/tasksync/pkg/audit"
	"github.com/targc/tasksync/pkg/identity"
	"github.com/targc/tasksync/pkg/models"
)

// Strategy decides what happens when both stores hold a row with the
// same external id.
type Strategy string

const (
	// PushWins blindly overwrites the remote row on push and never
	// updates an existing local row on pull.
	PushWins Strategy = "push_wins"

	// NewerWins compares updated_at: push skips the remote write when
	// the remote copy is newer, and pull updates an existing local row
	// when the remote copy is newer.
	NewerWins Strategy = "newer_wins"
)

// ParseStrategy maps a configured strategy name to a Strategy, falling
// back to PushWins for unknown values.
func ParseStrategy(name string) Strategy {
	if Strategy(name) == NewerWins {
		return NewerWins
	}

	return PushWins
}

// ExternalIDFunc synthesizes an external id for a row that was never
// pushed.
type ExternalIDFunc func(kind string, localID uint) string

// ExternalIDFuncForMode maps a configured mode name ("derived" or
// "uuid") to a synthesizer.
func ExternalIDFuncForMode(mode string) ExternalIDFunc {
	if mode == "uuid" {
		return models.UUIDExternalID
	}

	return models.DerivedExternalID
}

// Replicator runs one push+pull pass for a single entity kind.
type Replicator interface {
	Kind() string
	Run(ctx context.Context) error
}

// Deps carries everything an entity replicator needs for one cycle. The
// remote handle is re-resolved every cycle, so Deps are cheap and built
// per run.
type Deps struct {
	Local         *gorm.DB
	Remote        *gorm.DB
	Mapper        *identity.Mapper
	Audit         *audit.Recorder
	Strategy      Strategy
	NewExternalID ExternalIDFunc
}

type record[T any] interface {
	*T
	models.Entity
}

// entityReplicator is generic over the concrete model. Kind-specific
// behavior is limited to copying mutable fields and remapping foreign
// keys; everything else is shared.
type entityReplicator[T any, PT record[T]] struct {
	deps Deps

	// copyFields copies the mutable non-FK fields from src onto dst.
	copyFields func(dst, src PT)

	// mapPushFKs resolves src's local FKs and writes them onto dst as
	// remote FKs. A missing parent resolves to nil.
	mapPushFKs func(ctx context.Context, m *identity.Mapper, src, dst PT) error

	// mapPullFKs is the reverse direction: remote FKs to local FKs.
	mapPullFKs func(ctx context.Context, m *identity.Mapper, src, dst PT) error
}

func (r *entityReplicator[T, PT]) Kind() string {
	return PT(new(T)).Kind()
}

// Run executes the push phase, then the pull phase. An error here means
// a batch-level failure; per-row failures are logged and absorbed.
func (r *entityReplicator[T, PT]) Run(ctx context.Context) error {
	err := r.push(ctx)

	if err != nil {
		return err
	}

	return r.pull(ctx)
}

func (r *entityReplicator[T, PT]) push(ctx context.Context) error {
	var rows []T

	err := r.deps.Local.
		WithContext(ctx).
		Where("is_synced = ?", false).
		Find(&rows).
		Error

	if err != nil {
		return fmt.Errorf("failed to select unsynced %s rows: %w", r.Kind(), err)
	}

	if len(rows) > 0 {
		log.Printf("[Replicator] Pushing %d %s row(s)", len(rows), r.Kind())
	}

	for i := range rows {
		row := PT(&rows[i])

		err = r.pushRow(ctx, row)

		if err != nil {
			log.Printf("[Replicator] Failed to push %s %d: %v", r.Kind(), row.SyncState().ID, err)
		}
	}

	return nil
}

func (r *entityReplicator[T, PT]) pushRow(ctx context.Context, row PT) error {
	state := row.SyncState()

	// A synthesized id is committed to the local row before the remote
	// write, so a retry after a crash between the two commits reuses
	// the same key instead of minting a new one and duplicating the
	// remote row.
	externalID := state.ExternalID

	if externalID == "" {
		externalID = r.deps.NewExternalID(r.Kind(), state.ID)

		err := r.deps.Local.
			WithContext(ctx).
			Model(row).
			Update("external_id", externalID).
			Error

		if err != nil {
			return err
		}

		state.ExternalID = externalID
	}

	var existing T
	pexisting := PT(&existing)
	found := false

	err := r.deps.Remote.
		WithContext(ctx).
		Where("external_id = ?", externalID).
		Take(&existing).
		Error

	if err == nil {
		found = true
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if found && r.deps.Strategy == NewerWins && pexisting.SyncState().UpdatedAt.After(state.UpdatedAt) {
		// The remote copy is newer; the pull phase reconciles it back.
		return nil
	}

	tx := r.deps.Remote.WithContext(ctx).Begin()

	if tx.Error != nil {
		return tx.Error
	}

	defer tx.Rollback()

	if found {
		r.copyFields(pexisting, row)

		err := r.mapPushFKs(ctx, r.deps.Mapper, row, pexisting)

		if err != nil {
			return err
		}

		pexisting.SyncState().IsDeleted = state.IsDeleted

		err = tx.Save(&existing).Error

		if err != nil {
			return err
		}
	} else {
		var fresh T
		pfresh := PT(&fresh)

		r.copyFields(pfresh, row)

		err := r.mapPushFKs(ctx, r.deps.Mapper, row, pfresh)

		if err != nil {
			return err
		}

		fs := pfresh.SyncState()
		fs.ExternalID = externalID
		fs.IsSynced = true
		fs.IsDeleted = state.IsDeleted
		fs.CreatedAt = state.CreatedAt
		fs.UpdatedAt = state.UpdatedAt

		err = tx.Create(&fresh).Error

		if err != nil {
			return err
		}
	}

	err = tx.Commit().Error

	if err != nil {
		return err
	}

	// Remote commit succeeded; link the local row and mark it synced.
	// A crash before this point leaves the row unsynced, and the next
	// push matches the remote copy by external id instead of
	// duplicating it.
	state.ExternalID = externalID
	state.IsSynced = true

	err = r.deps.Local.WithContext(ctx).Save(row).Error

	if err != nil {
		return err
	}

	action := audit.ActionCreate

	if found {
		action = audit.ActionUpdate
	}

	r.deps.Audit.Record(ctx, action, r.Kind(), state.ID, state.ExternalID)

	return nil
}

func (r *entityReplicator[T, PT]) pull(ctx context.Context) error {
	var rows []T

	err := r.deps.Remote.
		WithContext(ctx).
		Find(&rows).
		Error

	if err != nil {
		return fmt.Errorf("failed to select remote %s rows: %w", r.Kind(), err)
	}

	if len(rows) > 0 {
		log.Printf("[Replicator] Pulling %d %s row(s)", len(rows), r.Kind())
	}

	for i := range rows {
		row := PT(&rows[i])

		err = r.pullRow(ctx, row)

		if err != nil {
			log.Printf("[Replicator] Failed to pull %s %s: %v", r.Kind(), row.SyncState().ExternalID, err)
		}
	}

	return nil
}

func (r *entityReplicator[T, PT]) pullRow(ctx context.Context, remote PT) error {
	rs := remote.SyncState()

	// Remote rows are always assigned an external id on push; a row
	// without one cannot be joined and is skipped.
	if rs.ExternalID == "" {
		return nil
	}

	var local T
	plocal := PT(&local)

	err := r.deps.Local.
		WithContext(ctx).
		Where("external_id = ?", rs.ExternalID).
		Take(&local).
		Error

	switch {
	case err == nil:
		return r.pullUpdate(ctx, remote, plocal, &local)

	case errors.Is(err, gorm.ErrRecordNotFound):
		return r.pullCreate(ctx, remote)

	default:
		return err
	}
}

// pullUpdate reconciles a remote row that already exists locally. Under
// PushWins the local row is left untouched; under NewerWins a newer
// remote copy overwrites it.
func (r *entityReplicator[T, PT]) pullUpdate(ctx context.Context, remote, plocal PT, local *T) error {
	if r.deps.Strategy != NewerWins {
		return nil
	}

	rs := remote.SyncState()
	ls := plocal.SyncState()

	if !rs.UpdatedAt.After(ls.UpdatedAt) {
		return nil
	}

	r.copyFields(plocal, remote)

	err := r.mapPullFKs(ctx, r.deps.Mapper, remote, plocal)

	if err != nil {
		return err
	}

	ls.IsDeleted = rs.IsDeleted
	ls.IsSynced = true

	err = r.deps.Local.WithContext(ctx).Save(local).Error

	if err != nil {
		return err
	}

	r.deps.Audit.Record(ctx, audit.ActionUpdate, r.Kind(), ls.ID, rs.ExternalID)

	return nil
}

func (r *entityReplicator[T, PT]) pullCreate(ctx context.Context, remote PT) error {
	rs := remote.SyncState()

	var fresh T
	pfresh := PT(&fresh)

	r.copyFields(pfresh, remote)

	err := r.mapPullFKs(ctx, r.deps.Mapper, remote, pfresh)

	if err != nil {
		return err
	}

	fs := pfresh.SyncState()
	fs.ExternalID = rs.ExternalID
	fs.IsSynced = true
	fs.IsDeleted = rs.IsDeleted
	fs.CreatedAt = rs.CreatedAt
	fs.UpdatedAt = rs.UpdatedAt

	err = r.deps.Local.WithContext(ctx).Create(&fresh).Error

	if err != nil {
		return err
	}

	r.deps.Audit.Record(ctx, audit.ActionCreate, r.Kind(), fs.ID, rs.ExternalID)

	return nil
}
