package models

import (
	"time"

	"github.com/google/uuid"
)

// SyncLog records one successful replication action. Rows are append-only
// and written outside the entity-level transactions they describe.
type SyncLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Action     string    `gorm:"type:varchar(20);not null" json:"action"`
	EntityKind string    `gorm:"type:varchar(20);not null;index" json:"entity_kind"`
	RecordID   uint      `gorm:"not null" json:"record_id"`
	ExternalID string    `gorm:"type:varchar(100)" json:"external_id,omitempty"`
	SyncedAt   time.Time `gorm:"not null;index" json:"synced_at"`
}

func (SyncLog) TableName() string {
	return "sync_logs"
}
