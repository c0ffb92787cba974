// internals/features/attendance/dto/attendance_dto.go
package dto

import (
	"github.com/google/uuid"

	attendanceModel "pmhub_backend/internals/features/attendance/model"
)

type SubmitReportRequest struct {
	// format YYYY-MM
	Month  string `json:"month" validate:"required,len=7"`
	Days   *int   `json:"days" validate:"required,min=0,max=31"`
	Reason string `json:"reason" validate:"max=2000"`
}

func (r SubmitReportRequest) ToModel(userID uuid.UUID) *attendanceModel.AttendanceReportModel {
	return &attendanceModel.AttendanceReportModel{
		AttendanceReportUserID: userID,
		AttendanceReportMonth:  r.Month,
		AttendanceReportDays:   *r.Days,
		AttendanceReportReason: r.Reason,
	}
}

type MonthSummary struct {
	Month     string `json:"month"`
	Reports   int    `json:"reports"`
	TotalDays int    `json:"total_days"`
}
