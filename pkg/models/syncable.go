package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	KindCompany = "company"
	KindUser    = "user"
	KindTask    = "task"
)

// Syncable carries the replication bookkeeping shared by every entity that
// moves between the local and remote stores.
type Syncable struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// ExternalID joins a local row to its remote counterpart. Empty means
	// the row was never pushed.
	ExternalID string `gorm:"type:varchar(100);index" json:"external_id,omitempty"`

	IsSynced  bool `gorm:"not null;default:false" json:"is_synced"`
	IsDeleted bool `gorm:"not null;default:false" json:"is_deleted"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SyncState exposes the embedded bookkeeping to generic replication code.
func (s *Syncable) SyncState() *Syncable { return s }

// Entity is implemented by every replicable model.
type Entity interface {
	Kind() string
	SyncState() *Syncable
}

// DerivedExternalID builds the deterministic external id assigned when a
// never-pushed row reaches the remote store for the first time. Repeated
// pushes of the same row derive the same id.
func DerivedExternalID(kind string, localID uint) string {
	return fmt.Sprintf("local_%s_%d", kind, localID)
}

// UUIDExternalID generates a collision-free external id for deployments
// where several local stores replicate against one remote store.
func UUIDExternalID(string, uint) string {
	return uuid.Must(uuid.NewV7()).String()
}
