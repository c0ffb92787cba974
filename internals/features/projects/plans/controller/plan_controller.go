// internals/features/projects/plans/controller/plan_controller.go
package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
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

type PlanController struct {
	DB     *gorm.DB
	Store  *planService.PlanStore
	Rollup *planService.RollupService
}

func NewPlanController(db *gorm.DB) *PlanController {
	store := planService.NewPlanStore(db)
	return &PlanController{
		DB:     db,
		Store:  store,
		Rollup: planService.NewRollupService(db, store),
	}
}

var validatePlan = validator.New()

/* ===================== PROJECTS ===================== */

// GET /api/projects
func (h *PlanController) ListProjects(c *fiber.Ctx) error {
	userID, err := authMw.GetUserUUID(c)
	if err != nil {
		return err
	}
	role := authMw.GetUserRole(c)

	p := helper.ResolvePaging(c, 20, 100)

	tx := h.DB.Model(&planModel.ProjectModel{}).Where("project_deleted_at IS NULL")
	// leader hanya melihat project miliknya; member lewat subproject assignment
	switch role {
	case constants.RoleLeader:
		tx = tx.Where("project_owner_id = ?", userID)
	case constants.RoleMember:
		tx = tx.Where("project_id IN (?)",
			h.DB.Model(&planModel.SubprojectModel{}).
				Select("subproject_project_id").
				Where("subproject_employee_id = ?", userID))
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "查询失败")
	}

	var rows []planModel.ProjectModel
	if err := tx.Order("project_name ASC").Order("project_id ASC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "查询失败")
	}

	out := make([]planDTO.ProjectResponse, 0, len(rows))
	for i := range rows {
		out = append(out, planDTO.NewProjectResponse(&rows[i]))
	}
	return helper.JsonList(c, "", out, helper.BuildPagination(total, p.Page, p.PerPage))
}

// POST /api/projects
func (h *PlanController) CreateProject(c *fiber.Ctx) error {
	userID, err := authMw.GetUserUUID(c)
	if err != nil {
		return err
	}

	var req planDTO.CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "请求体格式错误")
	}
	if err := validatePlan.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	m := req.ToModel(userID)
	if err := h.Store.CreateProject(m); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "项目创建成功", planDTO.NewProjectResponse(m))
}

// GET /api/projects/:id — project + pohon anak terurut
func (h *PlanController) GetProjectTree(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "无效的项目 ID")
	}

	project, err := h.Store.GetProject(h.DB, projectID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := h.canReadProject(c, project); err != nil {
		return helper.FromFiberError(c, err)
	}

	subs, err := h.Store.OrderedSubprojects(h.DB, projectID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "查询失败")
	}

	subTrees := make([]fiber.Map, 0, len(subs))
	for i := range subs {
		stages, err := h.Store.OrderedStages(h.DB, subs[i].SubprojectID)
		if err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, "查询失败")
		}
		stageTrees := make([]fiber.Map, 0, len(stages))
		for j := range stages {
			tasks, err := h.Store.OrderedTasks(h.DB, stages[j].StageID)
			if err != nil {
				return helper.JsonError(c, fiber.StatusInternalServerError, "查询失败")
			}
			stageTrees = append(stageTrees, fiber.Map{
				"stage": planDTO.NewStageResponse(&stages[j]),
				"tasks": tasks,
			})
		}
		subTrees = append(subTrees, fiber.Map{
			"subproject": planDTO.NewSubprojectResponse(&subs[i]),
			"stages":     stageTrees,
		})
	}

	return helper.JsonOK(c, "", fiber.Map{
		"project":     planDTO.NewProjectResponse(project),
		"subprojects": subTrees,
	})
}

// DELETE /api/projects/:id
func (h *PlanController) DeleteProject(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "无效的项目 ID")
	}
	if _, err := h.Store.GetProject(h.DB, projectID); err != nil {
		return helper.FromFiberError(c, err)
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		subs, err := h.Store.OrderedSubprojects(tx, projectID)
		if err != nil {
			return err
		}
		for i := range subs {
			stages, err := h.Store.OrderedStages(tx, subs[i].SubprojectID)
			if err != nil {
				return err
			}
			for j := range stages {
				if err := tx.Delete(&planModel.TaskModel{}, "task_stage_id = ?", stages[j].StageID).Error; err != nil {
					return err
				}
			}
			if err := tx.Delete(&planModel.StageModel{}, "stage_subproject_id = ?", subs[i].SubprojectID).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&planModel.SubprojectModel{}, "subproject_project_id = ?", projectID).Error; err != nil {
			return err
		}
		return tx.Delete(&planModel.ProjectModel{}, "project_id = ?", projectID).Error
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "项目已删除", fiber.Map{"project_id": projectID})
}

/* ===================== SUBPROJECTS / STAGES / TASKS ===================== */

// POST /api/subprojects
func (h *PlanController) CreateSubproject(c *fiber.Ctx) error {
	var req planDTO.CreateSubprojectRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "请求体格式错误")
	}
	if err := validatePlan.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	m := req.ToModel()
	if err := h.Store.CreateSubproject(m); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "子项目创建成功", planDTO.NewSubprojectResponse(m))
}

// GET /api/subprojects/:id
func (h *PlanController) GetSubproject(c *fiber.Ctx) error {
	subID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "无效的子项目 ID")
	}
	sub, err := h.Store.GetSubproject(h.DB, subID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := h.canReadSubproject(c, sub); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "", planDTO.NewSubprojectResponse(sub))
}

// PUT /api/subprojects/:id/assign
func (h *PlanController) AssignSubproject(c *fiber.Ctx) error {
	subID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "无效的子项目 ID")
	}
	var req planDTO.AssignSubprojectRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "请求体格式错误")
	}
	if err := h.Store.AssignSubproject(subID, req.SubprojectEmployeeID); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "子项目分配已更新", fiber.Map{"subproject_id": subID})
}

// DELETE /api/subprojects/:id
func (h *PlanController) DeleteSubproject(c *fiber.Ctx) error {
	subID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "无效的子项目 ID")
	}
	if err := h.Store.DeleteSubproject(subID); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "子项目已删除", fiber.Map{"subproject_id": subID})
}

// POST /api/stages
func (h *PlanController) CreateStage(c *fiber.Ctx) error {
	var req planDTO.CreateStageRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "请求体格式错误")
	}
	if err := validatePlan.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	m := req.ToModel()
	if err := h.Store.CreateStage(m); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "阶段创建成功", planDTO.NewStageResponse(m))
}

// DELETE /api/stages/:id
func (h *PlanController) DeleteStage(c *fiber.Ctx) error {
	stageID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "无效的阶段 ID")
	}
	if err := h.Store.DeleteStage(stageID); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "阶段已删除", fiber.Map{"stage_id": stageID})
}

// POST /api/tasks
func (h *PlanController) CreateTask(c *fiber.Ctx) error {
	var req planDTO.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "请求体格式错误")
	}
	if err := validatePlan.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	m := req.ToModel()
	if err := h.Store.CreateTask(m); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "任务创建成功", m)
}

// DELETE /api/tasks/:id
func (h *PlanController) DeleteTask(c *fiber.Ctx) error {
	taskID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "无效的任务 ID")
	}
	if err := h.Store.DeleteTask(taskID); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "任务已删除", fiber.Map{"task_id": taskID})
}

/* ===================== RENAME ===================== */
// Edit struktural murni; progress/status tidak tersentuh.

func (h *PlanController) parseRename(c *fiber.Ctx, label string) (uuid.UUID, string, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, "", helper.JsonError(c, fiber.StatusBadRequest, "无效的"+label+" ID")
	}
	var req planDTO.RenameRequest
	if err := c.BodyParser(&req); err != nil {
		return uuid.Nil, "", helper.JsonError(c, fiber.StatusBadRequest, "请求体格式错误")
	}
	if err := validatePlan.Struct(req); err != nil {
		return uuid.Nil, "", helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	return id, strings.TrimSpace(req.Name), nil
}

// PUT /api/projects/:id
func (h *PlanController) RenameProject(c *fiber.Ctx) error {
	id, name, err := h.parseRename(c, "项目")
	if err != nil {
		return err
	}
	if err := h.Store.RenameProject(id, name); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "项目已更新", fiber.Map{"project_id": id})
}

// PUT /api/subprojects/:id
func (h *PlanController) RenameSubproject(c *fiber.Ctx) error {
	id, name, err := h.parseRename(c, "子项目")
	if err != nil {
		return err
	}
	if err := h.Store.RenameSubproject(id, name); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "子项目已更新", fiber.Map{"subproject_id": id})
}

// PUT /api/stages/:id
func (h *PlanController) RenameStage(c *fiber.Ctx) error {
	id, name, err := h.parseRename(c, "阶段")
	if err != nil {
		return err
	}
	if err := h.Store.RenameStage(id, name); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "阶段已更新", fiber.Map{"stage_id": id})
}

// PUT /api/tasks/:id
func (h *PlanController) RenameTask(c *fiber.Ctx) error {
	id, name, err := h.parseRename(c, "任务")
	if err != nil {
		return err
	}
	if err := h.Store.RenameTask(id, name); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "任务已更新", fiber.Map{"task_id": id})
}

/* ===================== ACCESS CHECKS ===================== */

func (h *PlanController) canReadProject(c *fiber.Ctx, project *planModel.ProjectModel) error {
	userID, err := authMw.GetUserUUID(c)
	if err != nil {
		return err
	}
	role := authMw.GetUserRole(c)

	switch role {
	case constants.RoleAdmin, constants.RoleManager:
		return nil
	case constants.RoleLeader:
		if project.ProjectOwnerID == userID {
			return nil
		}
	case constants.RoleMember:
		var n int64
		if err := h.DB.Model(&planModel.SubprojectModel{}).
			Where("subproject_project_id = ? AND subproject_employee_id = ?", project.ProjectID, userID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
	}
	return fiber.NewError(fiber.StatusForbidden, "无权访问该项目")
}

func (h *PlanController) canReadSubproject(c *fiber.Ctx, sub *planModel.SubprojectModel) error {
	userID, err := authMw.GetUserUUID(c)
	if err != nil {
		return err
	}
	role := authMw.GetUserRole(c)

	switch role {
	case constants.RoleAdmin, constants.RoleManager:
		return nil
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
	return fiber.NewError(fiber.StatusForbidden, "无权访问该子项目")
}
