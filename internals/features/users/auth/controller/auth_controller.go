// internals/features/users/auth/controller/auth_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"pmhub_backend/internals/configs"
	authDTO "pmhub_backend/internals/features/users/auth/dto"
	authService "pmhub_backend/internals/features/users/auth/service"
	sessionService "pmhub_backend/internals/features/users/sessions/service"
	helper "pmhub_backend/internals/helpers"
	activityMw "pmhub_backend/internals/middlewares/activity"
	authMw "pmhub_backend/internals/middlewares/auth"
)

var validateAuth = validator.New()

type AuthController struct {
	Service *authService.AuthService
}

func NewAuthController(db *gorm.DB, registry *sessionService.SessionRegistry) *AuthController {
	return &AuthController{Service: authService.NewAuthService(db, registry)}
}

// POST /api/auth/login
func (h *AuthController) Login(c *fiber.Ctx) error {
	var req authDTO.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "请求体格式错误")
	}
	if err := validateAuth.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "用户名或密码格式不正确")
	}

	resp, err := h.Service.Login(req, activityMw.ResolveClientIP(c), c.Get(fiber.HeaderUserAgent))
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "登录成功", resp)
}

// POST /api/auth/logout
func (h *AuthController) Logout(c *fiber.Ctx) error {
	userID, err := authMw.GetUserUUID(c)
	if err != nil {
		return err
	}
	if err := h.Service.Logout(userID); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "已退出登录", nil)
}

// POST /api/auth/change-password
func (h *AuthController) ChangePassword(c *fiber.Ctx) error {
	userID, err := authMw.GetUserUUID(c)
	if err != nil {
		return err
	}

	var req authDTO.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "请求体格式错误")
	}
	if err := validateAuth.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "密码格式不正确")
	}

	if err := h.Service.ChangePassword(userID, req); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "密码修改成功", nil)
}

// GET /api/auth/me — klaim token yang sedang dipakai
func (h *AuthController) Me(c *fiber.Ctx) error {
	userID, err := authMw.GetUserUUID(c)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "", fiber.Map{
		"user_id":          userID,
		"user_role":        authMw.GetUserRole(c),
		"user_name":        c.Locals("user_name"),
		"idle_timeout_sec": int(configs.SessionIdleTimeout.Seconds()),
	})
}
