// internals/features/users/auth/service/auth_service.go
package service

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"pmhub_backend/internals/configs"
	authDTO "pmhub_backend/internals/features/users/auth/dto"
	sessionService "pmhub_backend/internals/features/users/sessions/service"
	userModel "pmhub_backend/internals/features/users/user/model"
)

// AuthService: verifikasi kredensial + penerbitan token + pembukaan sesi.
// Login selalu membuka sesi baru; sesi aktif sebelumnya ditutup registry
// dengan reason=relogin.
type AuthService struct {
	DB       *gorm.DB
	Registry *sessionService.SessionRegistry
}

func NewAuthService(db *gorm.DB, registry *sessionService.SessionRegistry) *AuthService {
	return &AuthService{DB: db, Registry: registry}
}

func (s *AuthService) Login(req authDTO.LoginRequest, ip, userAgent string) (*authDTO.LoginResponse, error) {
	var user userModel.UserModel
	err := s.DB.First(&user, "user_name = ? AND user_deleted_at IS NULL", req.UserName).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "用户名或密码错误")
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.UserPassword), []byte(req.Password)) != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "用户名或密码错误")
	}
	if !user.UserIsActive {
		return nil, fiber.NewError(fiber.StatusForbidden, "账号已被禁用")
	}

	sessionID, err := s.Registry.OpenSession(user.UserID, ip, userAgent)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := issueToken(&user)
	if err != nil {
		return nil, err
	}

	return &authDTO.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		SessionID: sessionID,
		User: authDTO.UserBrief{
			UserID:   user.UserID,
			UserName: user.UserName,
			UserRole: user.UserRole,
		},
	}, nil
}

// ChangePassword memverifikasi password lama sebelum mengganti hash.
func (s *AuthService) ChangePassword(userID uuid.UUID, req authDTO.ChangePasswordRequest) error {
	var user userModel.UserModel
	if err := s.DB.First(&user, "user_id = ? AND user_deleted_at IS NULL", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "用户不存在")
		}
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.UserPassword), []byte(req.OldPassword)) != nil {
		return fiber.NewError(fiber.StatusBadRequest, "原密码错误")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.DB.Model(&userModel.UserModel{}).
		Where("user_id = ?", userID).
		Update("user_password", string(hashed)).Error
}

// Logout menutup semua sesi aktif user (reason=logout).
func (s *AuthService) Logout(userID uuid.UUID) error {
	_, err := s.Registry.CloseActiveSessions(userID, sessionService.CloseReasonLogout)
	return err
}

func issueToken(user *userModel.UserModel) (string, time.Time, error) {
	expiresAt := time.Now().Add(configs.AccessTokenTTL)
	claims := jwt.MapClaims{
		"user_id":  user.UserID.String(),
		"role":     user.UserRole,
		"username": user.UserName,
		"exp":      expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(configs.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
