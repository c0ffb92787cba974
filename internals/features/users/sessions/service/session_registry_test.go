package service

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	sessionModel "pmhub_backend/internals/features/users/sessions/model"
)

func newSessionDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// sqlite in-memory: satu koneksi supaya transaksi tidak saling kunci
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&sessionModel.SessionModel{}))
	return db
}

func activeSessions(t *testing.T, db *gorm.DB, userID uuid.UUID) []sessionModel.SessionModel {
	t.Helper()
	var out []sessionModel.SessionModel
	require.NoError(t, db.
		Where("session_user_id = ? AND session_is_active = ?", userID, true).
		Find(&out).Error)
	return out
}

func TestOpenSessionSingleActive(t *testing.T) {
	db := newSessionDB(t)
	registry := NewSessionRegistry(db, time.Hour)
	userID := uuid.New()

	const logins = 16
	var wg sync.WaitGroup
	for i := 0; i < logins; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := registry.OpenSession(userID, "10.0.0.1", "test-agent")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// tepat satu sesi aktif, sisanya tertutup dengan reason relogin
	active := activeSessions(t, db, userID)
	require.Len(t, active, 1)

	var total int64
	require.NoError(t, db.Model(&sessionModel.SessionModel{}).
		Where("session_user_id = ?", userID).
		Count(&total).Error)
	assert.EqualValues(t, logins, total)

	var closed []sessionModel.SessionModel
	require.NoError(t, db.
		Where("session_user_id = ? AND session_is_active = ?", userID, false).
		Find(&closed).Error)
	require.Len(t, closed, logins-1)
	for _, s := range closed {
		assert.Equal(t, CloseReasonRelogin, s.SessionCloseReason)
		assert.NotNil(t, s.SessionLogoutTime)
		assert.NotNil(t, s.SessionDuration)
	}
}

func TestCheckAndTouchRefreshes(t *testing.T) {
	db := newSessionDB(t)
	registry := NewSessionRegistry(db, time.Hour)
	userID := uuid.New()

	sessionID, err := registry.OpenSession(userID, "10.0.0.1", "test-agent")
	require.NoError(t, err)

	stale := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(&sessionModel.SessionModel{}).
		Where("session_id = ?", sessionID).
		Update("session_last_activity_time", stale).Error)

	require.NoError(t, registry.CheckAndTouch(userID))

	var s sessionModel.SessionModel
	require.NoError(t, db.First(&s, "session_id = ?", sessionID).Error)
	assert.True(t, s.SessionLastActivityTime.After(stale))
	assert.True(t, s.SessionIsActive)
}

func TestCheckAndTouchExpiresIdle(t *testing.T) {
	db := newSessionDB(t)
	registry := NewSessionRegistry(db, time.Hour)
	userID := uuid.New()

	sessionID, err := registry.OpenSession(userID, "10.0.0.1", "test-agent")
	require.NoError(t, err)

	require.NoError(t, db.Model(&sessionModel.SessionModel{}).
		Where("session_id = ?", sessionID).
		Update("session_last_activity_time", time.Now().Add(-2*time.Hour)).Error)

	err = registry.CheckAndTouch(userID)
	require.ErrorIs(t, err, ErrSessionExpired)

	var s sessionModel.SessionModel
	require.NoError(t, db.First(&s, "session_id = ?", sessionID).Error)
	assert.False(t, s.SessionIsActive)
	assert.Equal(t, CloseReasonIdle, s.SessionCloseReason)
}

func TestCheckAndTouchNoSession(t *testing.T) {
	db := newSessionDB(t)
	registry := NewSessionRegistry(db, time.Hour)

	err := registry.CheckAndTouch(uuid.New())
	require.ErrorIs(t, err, ErrNoActiveSession)

	live, err := registry.IsLive(uuid.New())
	require.NoError(t, err)
	assert.False(t, live)
}

func TestCloseSessionByAdmin(t *testing.T) {
	db := newSessionDB(t)
	registry := NewSessionRegistry(db, time.Hour)
	userID := uuid.New()

	sessionID, err := registry.OpenSession(userID, "10.0.0.1", "test-agent")
	require.NoError(t, err)

	require.NoError(t, registry.CloseSession(sessionID, CloseReasonAdmin))

	var s sessionModel.SessionModel
	require.NoError(t, db.First(&s, "session_id = ?", sessionID).Error)
	assert.False(t, s.SessionIsActive)
	assert.Equal(t, CloseReasonAdmin, s.SessionCloseReason)

	// idempotent untuk sesi yang sudah tertutup
	require.NoError(t, registry.CloseSession(sessionID, CloseReasonAdmin))
}

func TestCloseActiveSessionsLogout(t *testing.T) {
	db := newSessionDB(t)
	registry := NewSessionRegistry(db, time.Hour)
	userID := uuid.New()

	_, err := registry.OpenSession(userID, "10.0.0.1", "test-agent")
	require.NoError(t, err)

	closed, err := registry.CloseActiveSessions(userID, CloseReasonLogout)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)
	assert.Empty(t, activeSessions(t, db, userID))

	closed, err = registry.CloseActiveSessions(userID, CloseReasonLogout)
	require.NoError(t, err)
	assert.Equal(t, 0, closed)
}

func TestReapIdle(t *testing.T) {
	db := newSessionDB(t)
	registry := NewSessionRegistry(db, time.Hour)

	staleUser := uuid.New()
	freshUser := uuid.New()

	staleID, err := registry.OpenSession(staleUser, "10.0.0.1", "test-agent")
	require.NoError(t, err)
	_, err = registry.OpenSession(freshUser, "10.0.0.2", "test-agent")
	require.NoError(t, err)

	require.NoError(t, db.Model(&sessionModel.SessionModel{}).
		Where("session_id = ?", staleID).
		Update("session_last_activity_time", time.Now().Add(-3*time.Hour)).Error)

	reaped, err := registry.ReapIdle(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, reaped)

	assert.Empty(t, activeSessions(t, db, staleUser))
	assert.Len(t, activeSessions(t, db, freshUser), 1)
}
