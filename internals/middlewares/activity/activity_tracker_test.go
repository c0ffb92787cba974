package activity

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	activityModel "pmhub_backend/internals/features/users/activity/model"
	sessionModel "pmhub_backend/internals/features/users/sessions/model"
	sessionService "pmhub_backend/internals/features/users/sessions/service"
)

func newTrackerApp(t *testing.T) (*fiber.App, *gorm.DB, uuid.UUID) {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&activityModel.ActivityLogModel{},
		&sessionModel.SessionModel{},
	))

	registry := sessionService.NewSessionRegistry(db, time.Hour)
	userID := uuid.New()
	_, err = registry.OpenSession(userID, "10.0.0.1", "test-agent")
	require.NoError(t, err)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID.String())
		c.Locals("reqid", "req-abc123")
		return c.Next()
	})
	app.Use(Tracker(db, registry))
	app.Get("/projects", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Post("/projects", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusCreated) })

	return app, db, userID
}

func lastLog(t *testing.T, db *gorm.DB) activityModel.ActivityLogModel {
	t.Helper()
	var row activityModel.ActivityLogModel
	require.NoError(t, db.Order("activity_log_created_at DESC").First(&row).Error)
	return row
}

func TestTrackerContextQueryAndRequestID(t *testing.T) {
	app, db, userID := newTrackerApp(t)

	req := httptest.NewRequest(fiber.MethodGet, "/projects?page=2&per_page=10", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	row := lastLog(t, db)
	assert.Equal(t, userID, row.ActivityLogUserID)
	require.NotEmpty(t, row.ActivityLogContext)

	var ctx map[string]interface{}
	require.NoError(t, sonic.Unmarshal(row.ActivityLogContext, &ctx))
	assert.Equal(t, "req-abc123", ctx["request_id"])
	assert.Equal(t, "page=2&per_page=10", ctx["query"])
	assert.NotContains(t, ctx, "bytes_in")
}

func TestTrackerContextBodySizeNotBody(t *testing.T) {
	app, db, _ := newTrackerApp(t)

	body := `{"project_name":"桥梁检测项目","password":"secret123"}`
	req := httptest.NewRequest(fiber.MethodPost, "/projects", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	row := lastLog(t, db)
	require.NotEmpty(t, row.ActivityLogContext)

	var ctx map[string]interface{}
	require.NoError(t, sonic.Unmarshal(row.ActivityLogContext, &ctx))
	assert.EqualValues(t, len(body), ctx["bytes_in"])
	// isi body tidak pernah ikut tersimpan
	assert.NotContains(t, string(row.ActivityLogContext), "secret123")
}
