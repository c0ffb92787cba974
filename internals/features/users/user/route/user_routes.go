package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"pmhub_backend/internals/constants"
	userController "pmhub_backend/internals/features/users/user/controller"
	authMw "pmhub_backend/internals/middlewares/auth"
)

// UserRoutes: listing terbuka untuk leader ke atas; mutasi hanya admin.
func UserRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := userController.NewUserController(db)

	users := api.Group("/users")
	users.Get("/", authMw.RequireRoles("用户列表", constants.LeaderAndAbove...), ctrl.ListUsers)
	users.Get("/:id", authMw.RequireRoles("用户详情", constants.LeaderAndAbove...), ctrl.GetUser)
	users.Post("/", authMw.RequireAdmin("用户管理"), ctrl.CreateUser)
	users.Put("/:id", authMw.RequireAdmin("用户管理"), ctrl.UpdateUser)
	users.Delete("/:id", authMw.RequireAdmin("用户管理"), ctrl.DeleteUser)
}
