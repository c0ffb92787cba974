// internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	announcementRoute "pmhub_backend/internals/features/announcements/route"
	assistantRoute "pmhub_backend/internals/features/assistant/route"
	attendanceRoute "pmhub_backend/internals/features/attendance/route"
	fileRoute "pmhub_backend/internals/features/files/files/route"
	mergeRoute "pmhub_backend/internals/features/files/pdfmerge/route"
	planRoute "pmhub_backend/internals/features/projects/plans/route"
	authRoute "pmhub_backend/internals/features/users/auth/route"
	sessionService "pmhub_backend/internals/features/users/sessions/service"
	userRoute "pmhub_backend/internals/features/users/user/route"
	activityMw "pmhub_backend/internals/middlewares/activity"
	authMw "pmhub_backend/internals/middlewares/auth"
	routeDetails "pmhub_backend/internals/route/details"
	"pmhub_backend/internals/search"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB, registry *sessionService.SessionRegistry, searcher search.Searcher) {
	startTime = time.Now()

	BaseRoutes(app, db)

	// ===================== PUBLIC =====================
	log.Println("[INFO] Setting up PUBLIC group...")
	public := app.Group("/api")
	authRoute.AuthPublicRoutes(public, db, registry)

	// ===================== PROTECTED =====================
	// Urutan middleware: JWT dulu, lalu tracker (liveness sesi + audit log).
	log.Println("[INFO] Setting up PROTECTED group...")
	protected := app.Group("/api",
		authMw.AuthMiddleware(),
		activityMw.Tracker(db, registry),
	)

	authRoute.AuthProtectedRoutes(protected, db, registry)
	userRoute.UserRoutes(protected, db)
	planRoute.PlanRoutes(protected, db)
	fileRoute.FileRoutes(protected, db, searcher)
	mergeRoute.MergeRoutes(protected, db)
	announcementRoute.AnnouncementRoutes(protected, db)
	attendanceRoute.AttendanceRoutes(protected, db)
	assistantRoute.AssistantRoutes(protected)

	// ===================== ADMIN =====================
	log.Println("[INFO] Setting up ADMIN group...")
	admin := app.Group("/api/admin",
		authMw.AuthMiddleware(),
		activityMw.Tracker(db, registry),
		authMw.RequireAdmin("管理后台"),
	)

	planRoute.PlanAdminRoutes(admin, db)
	attendanceRoute.AttendanceAdminRoutes(admin, db)
	routeDetails.AdminRoutes(admin, db, registry)
}
