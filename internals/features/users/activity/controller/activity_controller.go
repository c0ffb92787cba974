// internals/features/users/activity/controller/activity_controller.go
package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	activityModel "pmhub_backend/internals/features/users/activity/model"
	helper "pmhub_backend/internals/helpers"
)

type ActivityController struct {
	DB *gorm.DB
}

func NewActivityController(db *gorm.DB) *ActivityController {
	return &ActivityController{DB: db}
}

// GET /api/admin/activity-logs
// Filter opsional: user_id, resource_type, action_type, since (RFC3339).
func (h *ActivityController) ListActivityLogs(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 50, 200)

	tx := h.DB.Model(&activityModel.ActivityLogModel{})
	if raw := c.Query("user_id"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "无效的 user_id")
		}
		tx = tx.Where("activity_log_user_id = ?", userID)
	}
	if rt := c.Query("resource_type"); rt != "" {
		tx = tx.Where("activity_log_resource_type = ?", rt)
	}
	if at := c.Query("action_type"); at != "" {
		tx = tx.Where("activity_log_action_type = ?", at)
	}
	if since := c.Query("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "since 需为 RFC3339 格式")
		}
		tx = tx.Where("activity_log_created_at >= ?", t)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "查询失败")
	}

	var rows []activityModel.ActivityLogModel
	if err := tx.Order("activity_log_created_at DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "查询失败")
	}
	return helper.JsonList(c, "", rows, helper.BuildPagination(total, p.Page, p.PerPage))
}
