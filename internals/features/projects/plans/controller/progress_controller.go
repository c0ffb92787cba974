// internals/features/projects/plans/controller/progress_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"pmhub_backend/internals/constants"
	planDTO "pmhub_backend/internals/features/projects/plans/dto"
	planModel "pmhub_backend/internals/features/projects/plans/model"
	planService "pmhub_backend/internals/features/projects/plans/service"
	helper "pmhub_backend/internals/helpers"
	authMw "pmhub_backend/internals/middlewares/auth"
)

type ProgressController struct {
	DB     *gorm.DB
	Store  *planService.PlanStore
	Rollup *planService.RollupService
}

func NewProgressController(db *gorm.DB) *ProgressController {
	store := planService.NewPlanStore(db)
	return &ProgressController{
		DB:     db,
		Store:  store,
		Rollup: planService.NewRollupService(db, store),
	}
}

// POST /api/tasks/:id/progress-updates
func (h *ProgressController) RecordProgress(c *fiber.Ctx) error {
	taskID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "无效的任务 ID")
	}

	userID, err := authMw.GetUserUUID(c)
	if err != nil {
		return err
	}

	var req planDTO.RecordProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "请求体格式错误")
	}
	if err := validatePlan.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.canWriteTask(c, taskID); err != nil {
		return helper.FromFiberError(c, err)
	}

	task, err := h.Rollup.RecordTaskProgress(taskID, *req.Progress, req.Description, userID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "进度已记录", task)
}

// GET /api/tasks/:id/progress-updates
func (h *ProgressController) ListProgressUpdates(c *fiber.Ctx) error {
	taskID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "无效的任务 ID")
	}
	if _, err := h.Store.GetTask(h.DB, taskID); err != nil {
		return helper.FromFiberError(c, err)
	}

	p := helper.ResolvePaging(c, 20, 100)

	tx := h.DB.Model(&planModel.ProgressUpdateModel{}).
		Where("progress_update_task_id = ?", taskID)

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "查询失败")
	}

	var rows []planModel.ProgressUpdateModel
	if err := tx.Order("progress_update_created_at DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "查询失败")
	}
	return helper.JsonList(c, "", rows, helper.BuildPagination(total, p.Page, p.PerPage))
}

// POST /api/admin/tasks/:id/reset — reset paksa oleh admin
func (h *ProgressController) AdminResetTask(c *fiber.Ctx) error {
	taskID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "无效的任务 ID")
	}
	userID, err := authMw.GetUserUUID(c)
	if err != nil {
		return err
	}

	var req planDTO.RecordProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "请求体格式错误")
	}
	if err := validatePlan.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	task, err := h.Rollup.AdminResetTask(taskID, *req.Progress, userID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "任务进度已重置", task)
}

// canWriteTask: admin/manager bebas; leader jika memiliki project;
// member hanya jika ditugaskan pada subproject pemilik task.
func (h *ProgressController) canWriteTask(c *fiber.Ctx, taskID uuid.UUID) error {
	userID, err := authMw.GetUserUUID(c)
	if err != nil {
		return err
	}
	role := authMw.GetUserRole(c)
	if role == constants.RoleAdmin || role == constants.RoleManager {
		return nil
	}

	task, err := h.Store.GetTask(h.DB, taskID)
	if err != nil {
		return err
	}
	stage, err := h.Store.GetStage(h.DB, task.TaskStageID)
	if err != nil {
		return err
	}
	sub, err := h.Store.GetSubproject(h.DB, stage.StageSubprojectID)
	if err != nil {
		return err
	}

	switch role {
	case constants.RoleLeader:
		project, err := h.Store.GetProject(h.DB, sub.SubprojectProjectID)
		if err != nil {
			return err
		}
		if project.ProjectOwnerID == userID {
			return nil
		}
	case constants.RoleMember:
		if sub.SubprojectEmployeeID != nil && *sub.SubprojectEmployeeID == userID {
			return nil
		}
	}
	return fiber.NewError(fiber.StatusForbidden, "无权修改该任务进度")
}
