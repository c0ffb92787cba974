package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	attendanceController "pmhub_backend/internals/features/attendance/controller"
)

// AttendanceRoutes: laporan milik sendiri.
func AttendanceRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := attendanceController.NewAttendanceController(db)

	reports := api.Group("/attendance-reports")
	reports.Post("/", ctrl.SubmitReport)
	reports.Get("/", ctrl.ListMyReports)
}

// AttendanceAdminRoutes: rekap seluruh user.
func AttendanceAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctrl := attendanceController.NewAttendanceController(db)
	admin.Get("/attendance-reports", ctrl.ListAllReports)
	admin.Get("/attendance-reports/summary", ctrl.MonthlySummary)
}
