package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	authController "pmhub_backend/internals/features/users/auth/controller"
	sessionService "pmhub_backend/internals/features/users/sessions/service"
	"pmhub_backend/internals/middlewares"
)

// AuthPublicRoutes: jalur tanpa token. Login diberi limiter khusus.
func AuthPublicRoutes(api fiber.Router, db *gorm.DB, registry *sessionService.SessionRegistry) {
	ctrl := authController.NewAuthController(db, registry)
	auth := api.Group("/auth")
	auth.Post("/login", middlewares.LoginRateLimiter(), ctrl.Login)
}

// AuthProtectedRoutes: butuh bearer token valid.
func AuthProtectedRoutes(api fiber.Router, db *gorm.DB, registry *sessionService.SessionRegistry) {
	ctrl := authController.NewAuthController(db, registry)
	auth := api.Group("/auth")
	auth.Post("/logout", ctrl.Logout)
	auth.Post("/change-password", ctrl.ChangePassword)
	auth.Get("/me", ctrl.Me)
}
