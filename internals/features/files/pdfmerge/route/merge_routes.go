package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"pmhub_backend/internals/constants"
	mergeController "pmhub_backend/internals/features/files/pdfmerge/controller"
	authMw "pmhub_backend/internals/middlewares/auth"
)

// MergeRoutes: perakitan laporan PDF per project.
func MergeRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := mergeController.NewMergeController(db)

	projects := api.Group("/projects")
	projects.Get("/:id/pdf-list", ctrl.ListMergeablePDFs)
	projects.Get("/:id/merge-progress", ctrl.MergeProgress)
	projects.Post("/:id/merge-preview", authMw.RequireRoles("报告合成", constants.LeaderAndAbove...), ctrl.GeneratePreview)
	projects.Post("/:id/merge-pdf", authMw.RequireRoles("报告合成", constants.LeaderAndAbove...), ctrl.BuildFinal)

	previews := api.Group("/preview-sessions")
	previews.Post("/:id/cancel", authMw.RequireRoles("报告合成", constants.LeaderAndAbove...), ctrl.CancelPreview)
}
