package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"pmhub_backend/internals/constants"
	fileController "pmhub_backend/internals/features/files/files/controller"
	authMw "pmhub_backend/internals/middlewares/auth"
	"pmhub_backend/internals/search"
)

// FileRoutes: upload/download/list/search/delete lampiran.
func FileRoutes(api fiber.Router, db *gorm.DB, searcher search.Searcher) {
	ctrl := fileController.NewFileController(db, searcher)

	files := api.Group("/files")
	files.Get("/", ctrl.ListFiles)
	files.Get("/search", ctrl.SearchFiles)
	files.Post("/", ctrl.UploadFile)
	files.Get("/:id/download", ctrl.DownloadFile)
	files.Delete("/:id", authMw.RequireRoles("文件删除", constants.LeaderAndAbove...), ctrl.DeleteFile)
}
