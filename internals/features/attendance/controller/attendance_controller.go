// internals/features/attendance/controller/attendance_controller.go
package controller

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	attendanceDTO "pmhub_backend/internals/features/attendance/dto"
	attendanceModel "pmhub_backend/internals/features/attendance/model"
	helper "pmhub_backend/internals/helpers"
	authMw "pmhub_backend/internals/middlewares/auth"
)

var validateAttendance = validator.New()

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

type AttendanceController struct {
	DB *gorm.DB
}

func NewAttendanceController(db *gorm.DB) *AttendanceController {
	return &AttendanceController{DB: db}
}

// POST /api/attendance-reports — satu laporan per (user, bulan); duplikat
// ditolak 409.
func (h *AttendanceController) SubmitReport(c *fiber.Ctx) error {
	userID, err := authMw.GetUserUUID(c)
	if err != nil {
		return err
	}

	var req attendanceDTO.SubmitReportRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "请求体格式错误")
	}
	if err := validateAttendance.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if !monthPattern.MatchString(req.Month) {
		return helper.JsonError(c, fiber.StatusBadRequest, "month 需为 YYYY-MM 格式")
	}

	m := req.ToModel(userID)
	if err := h.DB.Create(m).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") ||
			strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return helper.JsonError(c, fiber.StatusConflict, "该月补卡报告已提交")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "提交失败")
	}
	return helper.JsonCreated(c, "补卡报告已提交", m)
}

// GET /api/attendance-reports — laporan milik sendiri
func (h *AttendanceController) ListMyReports(c *fiber.Ctx) error {
	userID, err := authMw.GetUserUUID(c)
	if err != nil {
		return err
	}
	p := helper.ResolvePaging(c, 12, 100)

	tx := h.DB.Model(&attendanceModel.AttendanceReportModel{}).
		Where("attendance_report_user_id = ?", userID)

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "查询失败")
	}

	var rows []attendanceModel.AttendanceReportModel
	if err := tx.Order("attendance_report_month DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "查询失败")
	}
	return helper.JsonList(c, "", rows, helper.BuildPagination(total, p.Page, p.PerPage))
}

// GET /api/admin/attendance-reports — semua laporan; filter month/user_id
func (h *AttendanceController) ListAllReports(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 200)

	tx := h.DB.Model(&attendanceModel.AttendanceReportModel{})
	if month := c.Query("month"); month != "" {
		tx = tx.Where("attendance_report_month = ?", month)
	}
	if raw := c.Query("user_id"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "无效的 user_id")
		}
		tx = tx.Where("attendance_report_user_id = ?", userID)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "查询失败")
	}

	var rows []attendanceModel.AttendanceReportModel
	if err := tx.Order("attendance_report_month DESC").
		Order("attendance_report_created_at DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "查询失败")
	}
	return helper.JsonList(c, "", rows, helper.BuildPagination(total, p.Page, p.PerPage))
}

// GET /api/admin/attendance-reports/summary — agregat per bulan
func (h *AttendanceController) MonthlySummary(c *fiber.Ctx) error {
	var rows []attendanceDTO.MonthSummary
	err := h.DB.Model(&attendanceModel.AttendanceReportModel{}).
		Select("attendance_report_month AS month, COUNT(*) AS reports, SUM(attendance_report_days) AS total_days").
		Group("attendance_report_month").
		Order("attendance_report_month DESC").
		Scan(&rows).Error
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "查询失败")
	}
	return helper.JsonOK(c, "", rows)
}
