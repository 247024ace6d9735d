package identity

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/targc/tasksync/pkg/database"
	"github.com/targc/tasksync/pkg/models"
)

func testStore(t *testing.T, name string) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)

	db, err := gorm.Open(sqlite.Open(path+"?_pragma=busy_timeout(5000)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, database.AutoMigrate(db))

	return db
}

func testMapper(t *testing.T) (*Mapper, *gorm.DB, *gorm.DB) {
	t.Helper()

	local := testStore(t, "local.db")
	remote := testStore(t, "remote.db")

	return NewMapper(local, remote), local, remote
}

func TestRemoteIDDoubleHop(t *testing.T) {
	m, local, remote := testMapper(t)
	ctx := context.Background()

	localCompany := models.Company{Title: "Acme"}
	localCompany.ExternalID = "c-1"
	require.NoError(t, local.Create(&localCompany).Error)

	// Independent primary-key sequences: burn a remote id so the two
	// sides diverge and a direct key comparison would be wrong.
	burned := models.Company{Title: "burned"}
	require.NoError(t, remote.Create(&burned).Error)

	remoteCompany := models.Company{Title: "Acme"}
	remoteCompany.ExternalID = "c-1"
	require.NoError(t, remote.Create(&remoteCompany).Error)

	id, err := m.RemoteID(ctx, models.KindCompany, &localCompany.ID)
	require.NoError(t, err)
	require.NotNil(t, id)
	require.Equal(t, remoteCompany.ID, *id)
	require.NotEqual(t, localCompany.ID, *id)
}

func TestLocalIDDoubleHop(t *testing.T) {
	m, local, remote := testMapper(t)
	ctx := context.Background()

	remoteUser := models.User{UserName: "kim", Email: "kim@acme.test"}
	remoteUser.ExternalID = "u-1"
	require.NoError(t, remote.Create(&remoteUser).Error)

	localUser := models.User{UserName: "kim", Email: "kim@acme.test"}
	localUser.ExternalID = "u-1"
	require.NoError(t, local.Create(&localUser).Error)

	id, err := m.LocalID(ctx, models.KindUser, &remoteUser.ID)
	require.NoError(t, err)
	require.NotNil(t, id)
	require.Equal(t, localUser.ID, *id)
}

func TestRemoteIDMissesResolveToNil(t *testing.T) {
	m, local, _ := testMapper(t)
	ctx := context.Background()

	// Nil FK stays nil.
	id, err := m.RemoteID(ctx, models.KindCompany, nil)
	require.NoError(t, err)
	require.Nil(t, id)

	// Referenced local row does not exist.
	missing := uint(42)
	id, err = m.RemoteID(ctx, models.KindCompany, &missing)
	require.NoError(t, err)
	require.Nil(t, id)

	// Local row exists but was never pushed: no external id yet.
	unsyncedCompany := models.Company{Title: "Acme"}
	require.NoError(t, local.Create(&unsyncedCompany).Error)

	id, err = m.RemoteID(ctx, models.KindCompany, &unsyncedCompany.ID)
	require.NoError(t, err)
	require.Nil(t, id)

	// External id exists locally but has no remote counterpart.
	pushedCompany := models.Company{Title: "Beta"}
	pushedCompany.ExternalID = "c-orphan"
	require.NoError(t, local.Create(&pushedCompany).Error)

	id, err = m.RemoteID(ctx, models.KindCompany, &pushedCompany.ID)
	require.NoError(t, err)
	require.Nil(t, id)
}
