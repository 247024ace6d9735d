// Package identity translates foreign keys between the local and remote
// stores. Primary-key sequences on the two sides are independent, so a
// key is never compared directly: it is resolved to the row's external id
// first, then the external id is resolved to a primary key on the other
// side.
package identity

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/targc/tasksync/pkg/models"
)

var kindTables = map[string]string{
	models.KindCompany: models.Company{}.TableName(),
	models.KindUser:    models.User{}.TableName(),
	models.KindTask:    models.Task{}.TableName(),
}

type Mapper struct {
	local  *gorm.DB
	remote *gorm.DB
}

func NewMapper(local, remote *gorm.DB) *Mapper {
	return &Mapper{
		local:  local,
		remote: remote,
	}
}

// RemoteID resolves a local foreign key to the matching remote primary
// key. A missing row on either hop resolves to nil, not an error.
func (m *Mapper) RemoteID(ctx context.Context, kind string, localID *uint) (*uint, error) {
	if localID == nil {
		return nil, nil
	}

	ext, err := externalIDOf(m.local.WithContext(ctx), kind, *localID)

	if err != nil {
		return nil, err
	}

	if ext == "" {
		log.Printf("[Mapper] Local %s %d has no external id yet", kind, *localID)
		return nil, nil
	}

	id, found, err := idByExternalID(m.remote.WithContext(ctx), kind, ext)

	if err != nil {
		return nil, err
	}

	if !found {
		log.Printf("[Mapper] No remote %s for external id %s", kind, ext)
		return nil, nil
	}

	return &id, nil
}

// LocalID resolves a remote foreign key to the matching local primary
// key. A missing row on either hop resolves to nil, not an error.
func (m *Mapper) LocalID(ctx context.Context, kind string, remoteID *uint) (*uint, error) {
	if remoteID == nil {
		return nil, nil
	}

	ext, err := externalIDOf(m.remote.WithContext(ctx), kind, *remoteID)

	if err != nil {
		return nil, err
	}

	if ext == "" {
		return nil, nil
	}

	id, found, err := idByExternalID(m.local.WithContext(ctx), kind, ext)

	if err != nil {
		return nil, err
	}

	if !found {
		log.Printf("[Mapper] No local %s for external id %s", kind, ext)
		return nil, nil
	}

	return &id, nil
}

func externalIDOf(db *gorm.DB, kind string, id uint) (string, error) {
	var row struct {
		ExternalID string
	}

	err := db.
		Table(kindTables[kind]).
		Select("external_id").
		Where("id = ?", id).
		Take(&row).
		Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}

	if err != nil {
		return "", err
	}

	return row.ExternalID, nil
}

func idByExternalID(db *gorm.DB, kind string, externalID string) (uint, bool, error) {
	var row struct {
		ID uint
	}

	err := db.
		Table(kindTables[kind]).
		Select("id").
		Where("external_id = ?", externalID).
		Take(&row).
		Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}

	if err != nil {
		return 0, false, err
	}

	return row.ID, true, nil
}
