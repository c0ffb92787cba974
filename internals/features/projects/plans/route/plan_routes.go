package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"pmhub_backend/internals/constants"
	planController "pmhub_backend/internals/features/projects/plans/controller"
	authMw "pmhub_backend/internals/middlewares/auth"
)

// PlanRoutes: pohon rencana + pencatatan progres.
func PlanRoutes(api fiber.Router, db *gorm.DB) {
	planCtrl := planController.NewPlanController(db)
	progressCtrl := planController.NewProgressController(db)

	projects := api.Group("/projects")
	projects.Get("/", planCtrl.ListProjects)
	projects.Post("/", authMw.RequireRoles("项目管理", constants.LeaderAndAbove...), planCtrl.CreateProject)
	projects.Get("/:id", planCtrl.GetProjectTree)
	projects.Put("/:id", authMw.RequireRoles("项目管理", constants.LeaderAndAbove...), planCtrl.RenameProject)
	projects.Delete("/:id", authMw.RequireRoles("项目管理", constants.ManagerAndAbove...), planCtrl.DeleteProject)

	subprojects := api.Group("/subprojects")
	subprojects.Post("/", authMw.RequireRoles("子项目管理", constants.LeaderAndAbove...), planCtrl.CreateSubproject)
	subprojects.Get("/:id", planCtrl.GetSubproject)
	subprojects.Put("/:id", authMw.RequireRoles("子项目管理", constants.LeaderAndAbove...), planCtrl.RenameSubproject)
	subprojects.Put("/:id/assign", authMw.RequireRoles("项目分配", constants.ManagerAndAbove...), planCtrl.AssignSubproject)
	subprojects.Delete("/:id", authMw.RequireRoles("子项目管理", constants.LeaderAndAbove...), planCtrl.DeleteSubproject)

	stages := api.Group("/stages")
	stages.Post("/", authMw.RequireRoles("阶段管理", constants.LeaderAndAbove...), planCtrl.CreateStage)
	stages.Put("/:id", authMw.RequireRoles("阶段管理", constants.LeaderAndAbove...), planCtrl.RenameStage)
	stages.Delete("/:id", authMw.RequireRoles("阶段管理", constants.LeaderAndAbove...), planCtrl.DeleteStage)

	tasks := api.Group("/tasks")
	tasks.Post("/", authMw.RequireRoles("任务管理", constants.LeaderAndAbove...), planCtrl.CreateTask)
	tasks.Put("/:id", authMw.RequireRoles("任务管理", constants.LeaderAndAbove...), planCtrl.RenameTask)
	tasks.Delete("/:id", authMw.RequireRoles("任务管理", constants.LeaderAndAbove...), planCtrl.DeleteTask)
	tasks.Post("/:id/progress-updates", progressCtrl.RecordProgress)
	tasks.Get("/:id/progress-updates", progressCtrl.ListProgressUpdates)
}

// PlanAdminRoutes: jalur reset paksa (role admin dicek di group caller).
func PlanAdminRoutes(admin fiber.Router, db *gorm.DB) {
	progressCtrl := planController.NewProgressController(db)
	admin.Post("/tasks/:id/reset", progressCtrl.AdminResetTask)
}
