package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"pmhub_backend/internals/constants"
	announcementController "pmhub_backend/internals/features/announcements/controller"
	authMw "pmhub_backend/internals/middlewares/auth"
)

// AnnouncementRoutes: publikasi oleh manager ke atas; baca oleh semua.
func AnnouncementRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := announcementController.NewAnnouncementController(db)

	ann := api.Group("/announcements")
	ann.Get("/", ctrl.ListAnnouncements)
	ann.Post("/", authMw.RequireRoles("公告管理", constants.ManagerAndAbove...), ctrl.CreateAnnouncement)
	ann.Put("/:id", authMw.RequireRoles("公告管理", constants.ManagerAndAbove...), ctrl.UpdateAnnouncement)
	ann.Delete("/:id", authMw.RequireRoles("公告管理", constants.ManagerAndAbove...), ctrl.DeleteAnnouncement)

	ann.Post("/:id/attachments", authMw.RequireRoles("公告管理", constants.ManagerAndAbove...), ctrl.UploadAttachment)
	ann.Get("/attachments/:id/download", ctrl.DownloadAttachment)
	ann.Delete("/attachments/:id", authMw.RequireRoles("公告管理", constants.ManagerAndAbove...), ctrl.DeleteAttachment)

	ann.Post("/:id/read", ctrl.MarkRead)
}
