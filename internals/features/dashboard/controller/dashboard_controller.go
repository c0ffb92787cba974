// internals/features/dashboard/controller/dashboard_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	backupModel "pmhub_backend/internals/features/backup/model"
	fileModel "pmhub_backend/internals/features/files/files/model"
	planModel "pmhub_backend/internals/features/projects/plans/model"
	sessionModel "pmhub_backend/internals/features/users/sessions/model"
	userModel "pmhub_backend/internals/features/users/user/model"
	helper "pmhub_backend/internals/helpers"
)

type DashboardController struct {
	DB *gorm.DB
}

func NewDashboardController(db *gorm.DB) *DashboardController {
	return &DashboardController{DB: db}
}

type countRow struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// GET /api/admin/dashboard — ringkasan untuk halaman admin
func (h *DashboardController) Stats(c *fiber.Ctx) error {
	var usersByRole []countRow
	if err := h.DB.Model(&userModel.UserModel{}).
		Select("CAST(user_role AS TEXT) AS key, COUNT(*) AS count").
		Where("user_deleted_at IS NULL").
		Group("user_role").
		Scan(&usersByRole).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "查询失败")
	}

	var projectsByStatus []countRow
	if err := h.DB.Model(&planModel.ProjectModel{}).
		Select("project_status AS key, COUNT(*) AS count").
		Where("project_deleted_at IS NULL").
		Group("project_status").
		Scan(&projectsByStatus).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "查询失败")
	}

	var activeSessions int64
	if err := h.DB.Model(&sessionModel.SessionModel{}).
		Where("session_is_active = ?", true).
		Count(&activeSessions).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "查询失败")
	}

	var fileCount int64
	var fileBytes struct{ Total int64 }
	if err := h.DB.Model(&fileModel.FileModel{}).
		Where("file_deleted_at IS NULL").
		Count(&fileCount).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "查询失败")
	}
	if err := h.DB.Model(&fileModel.FileModel{}).
		Select("COALESCE(SUM(file_size), 0) AS total").
		Where("file_deleted_at IS NULL").
		Scan(&fileBytes).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "查询失败")
	}

	var lastBackup backupModel.BackupRunModel
	if err := h.DB.Order("backup_run_started_at DESC").Limit(1).
		Find(&lastBackup).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "查询失败")
	}
	hasBackup := lastBackup.BackupRunID != uuid.Nil

	out := fiber.Map{
		"users_by_role":      usersByRole,
		"projects_by_status": projectsByStatus,
		"active_sessions":    activeSessions,
		"file_count":         fileCount,
		"file_bytes":         fileBytes.Total,
	}
	if hasBackup {
		out["last_backup"] = lastBackup
	}
	return helper.JsonOK(c, "", out)
}
