// internals/features/backup/controller/backup_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	backupModel "pmhub_backend/internals/features/backup/model"
	backupService "pmhub_backend/internals/features/backup/service"
	helper "pmhub_backend/internals/helpers"
	"pmhub_backend/internals/mailer"
)

type BackupController struct {
	DB      *gorm.DB
	Service *backupService.BackupService
}

func NewBackupController(db *gorm.DB) *BackupController {
	return &BackupController{DB: db, Service: backupService.NewBackupService(db, mailer.New())}
}

// POST /api/admin/backups/run — backup manual, sinkron
func (h *BackupController) TriggerBackup(c *fiber.Ctx) error {
	run, err := h.Service.Run()
	if err != nil {
		// baris run tetap dikembalikan supaya admin melihat detail gagalnya
		return helper.JsonError(c, fiber.StatusInternalServerError, "备份执行失败")
	}
	return helper.JsonOK(c, "备份已完成", run)
}

// GET /api/admin/backups
func (h *BackupController) ListBackupRuns(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 100)

	tx := h.DB.Model(&backupModel.BackupRunModel{})
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "查询失败")
	}

	var rows []backupModel.BackupRunModel
	if err := tx.Order("backup_run_started_at DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "查询失败")
	}
	return helper.JsonList(c, "", rows, helper.BuildPagination(total, p.Page, p.PerPage))
}
