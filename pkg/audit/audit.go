// Package audit appends one record per successful replication action.
// Writes are best-effort: a failed append is logged and swallowed, never
// rolling back the sync it describes.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/targc/tasksync/pkg/models"
)

type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
)

type Recorder struct {
	db *gorm.DB
}

// NewRecorder writes audit rows to the local store.
func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Record appends one audit entry in its own transaction.
func (r *Recorder) Record(ctx context.Context, action Action, kind string, recordID uint, externalID string) {
	entry := models.SyncLog{
		ID:         uuid.Must(uuid.NewV7()),
		Action:     string(action),
		EntityKind: kind,
		RecordID:   recordID,
		ExternalID: externalID,
		SyncedAt:   time.Now().UTC(),
	}

	err := r.db.WithContext(ctx).Create(&entry).Error

	if err != nil {
		log.Printf("[Audit] Failed to record %s %s %d: %v", action, kind, recordID, err)
	}
}

// Recent returns the newest audit entries, for external diagnostics.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]models.SyncLog, error) {
	var entries []models.SyncLog

	err := r.db.
		WithContext(ctx).
		Order("synced_at DESC").
		Limit(limit).
		Find(&entries).
		Error

	if err != nil {
		return nil, err
	}

	return entries, nil
}
