package api

import (
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/targc/tasksync/pkg/audit"
	"github.com/targc/tasksync/pkg/database"
	"github.com/targc/tasksync/pkg/models"
	"github.com/targc/tasksync/pkg/syncer"
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

func testApp(t *testing.T, apiKeyHash string) (*fiber.App, *database.Manager) {
	t.Helper()

	local := testStore(t, "local.db")
	remote := testStore(t, "remote.db")
	mgr := database.NewManager(local, remote)

	rec := audit.NewRecorder(local)
	orch := syncer.NewOrchestrator(mgr, rec, syncer.Options{})
	sched := syncer.NewScheduler(orch, time.Hour, time.Hour)

	app := fiber.New()

	NewServer(orch, sched, rec, apiKeyHash).SetupRoutes(app)

	return app, mgr
}

func TestHealth(t *testing.T) {
	app, _ := testApp(t, "")

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestTriggerSyncAcknowledgesUnconditionally(t *testing.T) {
	app, _ := testApp(t, "")

	resp, err := app.Test(httptest.NewRequest("POST", "/api/v1/sync/trigger", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "accepted", body["status"])
}

func TestSyncStatus(t *testing.T) {
	app, _ := testApp(t, "")

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/sync/status", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var status syncer.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	require.True(t, status.Online)
	require.False(t, status.Syncing)
	require.Nil(t, status.LastStartedAt)
}

func TestListSyncLog(t *testing.T) {
	app, mgr := testApp(t, "")

	rec := audit.NewRecorder(mgr.Local)
	rec.Record(t.Context(), audit.ActionCreate, models.KindCompany, 1, "local_company_1")

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/sync/log", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var entries []models.SyncLog
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	require.Len(t, entries, 1)
	require.Equal(t, "local_company_1", entries[0].ExternalID)
}

func TestListSyncLogCapsLimit(t *testing.T) {
	app, mgr := testApp(t, "")

	entries := make([]models.SyncLog, 0, maxLogLimit+10)
	now := time.Now().UTC()

	for i := 0; i < maxLogLimit+10; i++ {
		entries = append(entries, models.SyncLog{
			ID:         uuid.Must(uuid.NewV7()),
			Action:     string(audit.ActionCreate),
			EntityKind: models.KindTask,
			RecordID:   uint(i + 1),
			SyncedAt:   now,
		})
	}
	require.NoError(t, mgr.Local.CreateInBatches(entries, 100).Error)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/sync/log?limit=100000", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got []models.SyncLog
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, maxLogLimit)
}

func TestListSyncLogIgnoresBadLimit(t *testing.T) {
	app, _ := testApp(t, "")

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/sync/log?limit=zero", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuthMiddleware(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("sekrit"), bcrypt.MinCost)
	require.NoError(t, err)

	app, _ := testApp(t, string(hash))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/sync/status", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("GET", "/api/v1/sync/status", nil)
	req.Header.Set("X-API-Key", "wrong")

	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest("GET", "/api/v1/sync/status", nil)
	req.Header.Set("X-API-Key", "sekrit")

	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Health stays open for liveness probes.
	resp, err = app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
