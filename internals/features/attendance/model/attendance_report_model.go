package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Laporan 补卡 bulanan; satu baris per (user, month).
type AttendanceReportModel struct {
	AttendanceReportID     uuid.UUID `gorm:"column:attendance_report_id;type:uuid;primaryKey" json:"attendance_report_id"`
	AttendanceReportUserID uuid.UUID `gorm:"column:attendance_report_user_id;type:uuid;not null;uniqueIndex:uq_attendance_user_month" json:"attendance_report_user_id"`

	// format YYYY-MM
	AttendanceReportMonth string `gorm:"column:attendance_report_month;type:varchar(7);not null;uniqueIndex:uq_attendance_user_month" json:"attendance_report_month"`

	AttendanceReportDays   int    `gorm:"column:attendance_report_days;not null;default:0" json:"attendance_report_days"`
	AttendanceReportReason string `gorm:"column:attendance_report_reason;type:text" json:"attendance_report_reason"`

	AttendanceReportCreatedAt time.Time `gorm:"column:attendance_report_created_at;not null;autoCreateTime" json:"attendance_report_created_at"`
}

func (AttendanceReportModel) TableName() string { return "attendance_reports" }

// ID diisi aplikasi sebelum insert.
func (m *AttendanceReportModel) BeforeCreate(tx *gorm.DB) error {
	if m.AttendanceReportID == uuid.Nil {
		m.AttendanceReportID = uuid.New()
	}
	return nil
}
