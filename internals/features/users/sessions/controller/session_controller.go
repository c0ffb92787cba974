// internals/features/users/sessions/controller/session_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	sessionModel "pmhub_backend/internals/features/users/sessions/model"
	sessionService "pmhub_backend/internals/features/users/sessions/service"
	helper "pmhub_backend/internals/helpers"
)

type SessionController struct {
	DB       *gorm.DB
	Registry *sessionService.SessionRegistry
}

func NewSessionController(db *gorm.DB, registry *sessionService.SessionRegistry) *SessionController {
	return &SessionController{DB: db, Registry: registry}
}

// GET /api/admin/sessions — filter opsional: user_id, active=true|false
func (h *SessionController) ListSessions(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 100)

	tx := h.DB.Model(&sessionModel.SessionModel{})
	if raw := c.Query("user_id"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "无效的 user_id")
		}
		tx = tx.Where("session_user_id = ?", userID)
	}
	if active := c.Query("active"); active != "" {
		tx = tx.Where("session_is_active = ?", active == "true")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "查询失败")
	}

	var rows []sessionModel.SessionModel
	if err := tx.Order("session_login_time DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "查询失败")
	}
	return helper.JsonList(c, "", rows, helper.BuildPagination(total, p.Page, p.PerPage))
}

// POST /api/admin/sessions/:id/terminate
func (h *SessionController) TerminateSession(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "无效的会话 ID")
	}
	if err := h.Registry.CloseSession(id, sessionService.CloseReasonAdmin); err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "会话不存在")
	}
	return helper.JsonOK(c, "会话已终止", fiber.Map{"session_id": id})
}
