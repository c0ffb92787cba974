// internals/route/details/admin_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	backupController "pmhub_backend/internals/features/backup/controller"
	dashboardController "pmhub_backend/internals/features/dashboard/controller"
	activityController "pmhub_backend/internals/features/users/activity/controller"
	sessionController "pmhub_backend/internals/features/users/sessions/controller"
	sessionService "pmhub_backend/internals/features/users/sessions/service"
)

// AdminRoutes: permukaan khusus admin — sesi, audit log, backup, dashboard.
// Role dicek di group pemanggil.
func AdminRoutes(admin fiber.Router, db *gorm.DB, registry *sessionService.SessionRegistry) {
	sessionCtrl := sessionController.NewSessionController(db, registry)
	admin.Get("/sessions", sessionCtrl.ListSessions)
	admin.Post("/sessions/:id/terminate", sessionCtrl.TerminateSession)

	activityCtrl := activityController.NewActivityController(db)
	admin.Get("/activity-logs", activityCtrl.ListActivityLogs)

	backupCtrl := backupController.NewBackupController(db)
	admin.Post("/backups/run", backupCtrl.TriggerBackup)
	admin.Get("/backups", backupCtrl.ListBackupRuns)

	dashboardCtrl := dashboardController.NewDashboardController(db)
	admin.Get("/dashboard", dashboardCtrl.Stats)
}
