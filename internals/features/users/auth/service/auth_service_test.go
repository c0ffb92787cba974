package service

import (
	"errors"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	authDTO "pmhub_backend/internals/features/users/auth/dto"
	sessionModel "pmhub_backend/internals/features/users/sessions/model"
	sessionService "pmhub_backend/internals/features/users/sessions/service"
	userModel "pmhub_backend/internals/features/users/user/model"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&userModel.UserModel{},
		&sessionModel.SessionModel{},
	))
	return NewAuthService(db, sessionService.NewSessionRegistry(db, time.Hour))
}

func seedUser(t *testing.T, db *gorm.DB, name, password string, active bool) *userModel.UserModel {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	m := &userModel.UserModel{
		UserName:     name,
		UserPassword: string(hashed),
		UserRole:     3,
		UserIsActive: active,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

func TestLoginOpensSession(t *testing.T) {
	svc := newAuthService(t)
	user := seedUser(t, svc.DB, "zhang_san", "secret123", true)

	resp, err := svc.Login(authDTO.LoginRequest{
		UserName: "zhang_san",
		Password: "secret123",
	}, "10.0.0.1", "test-agent")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.NotEqual(t, uuid.Nil, resp.SessionID)
	assert.Equal(t, user.UserID, resp.User.UserID)

	var s sessionModel.SessionModel
	require.NoError(t, svc.DB.First(&s, "session_id = ?", resp.SessionID).Error)
	assert.True(t, s.SessionIsActive)
	assert.Equal(t, "10.0.0.1", s.SessionIP)
}

func TestLoginWrongCredentials(t *testing.T) {
	svc := newAuthService(t)
	seedUser(t, svc.DB, "zhang_san", "secret123", true)

	for _, req := range []authDTO.LoginRequest{
		{UserName: "zhang_san", Password: "wrongpass"},
		{UserName: "no_such_user", Password: "secret123"},
	} {
		_, err := svc.Login(req, "10.0.0.1", "test-agent")
		require.Error(t, err)
		var fe *fiber.Error
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, fiber.StatusUnauthorized, fe.Code)
		assert.Equal(t, "用户名或密码错误", fe.Message)
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	svc := newAuthService(t)
	seedUser(t, svc.DB, "zhang_san", "secret123", false)

	_, err := svc.Login(authDTO.LoginRequest{
		UserName: "zhang_san",
		Password: "secret123",
	}, "10.0.0.1", "test-agent")
	require.Error(t, err)
	var fe *fiber.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, fiber.StatusForbidden, fe.Code)
}

func TestReloginClosesPreviousSession(t *testing.T) {
	svc := newAuthService(t)
	user := seedUser(t, svc.DB, "zhang_san", "secret123", true)

	first, err := svc.Login(authDTO.LoginRequest{UserName: "zhang_san", Password: "secret123"}, "10.0.0.1", "a")
	require.NoError(t, err)
	second, err := svc.Login(authDTO.LoginRequest{UserName: "zhang_san", Password: "secret123"}, "10.0.0.2", "b")
	require.NoError(t, err)

	var active []sessionModel.SessionModel
	require.NoError(t, svc.DB.
		Where("session_user_id = ? AND session_is_active = ?", user.UserID, true).
		Find(&active).Error)
	require.Len(t, active, 1)
	assert.Equal(t, second.SessionID, active[0].SessionID)

	var old sessionModel.SessionModel
	require.NoError(t, svc.DB.First(&old, "session_id = ?", first.SessionID).Error)
	assert.False(t, old.SessionIsActive)
	assert.Equal(t, sessionService.CloseReasonRelogin, old.SessionCloseReason)
}

func TestChangePassword(t *testing.T) {
	svc := newAuthService(t)
	user := seedUser(t, svc.DB, "zhang_san", "secret123", true)

	err := svc.ChangePassword(user.UserID, authDTO.ChangePasswordRequest{
		OldPassword: "wrongpass",
		NewPassword: "newsecret456",
	})
	require.Error(t, err)
	var fe *fiber.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, fiber.StatusBadRequest, fe.Code)

	require.NoError(t, svc.ChangePassword(user.UserID, authDTO.ChangePasswordRequest{
		OldPassword: "secret123",
		NewPassword: "newsecret456",
	}))

	_, err = svc.Login(authDTO.LoginRequest{UserName: "zhang_san", Password: "newsecret456"}, "10.0.0.1", "a")
	require.NoError(t, err)
}
