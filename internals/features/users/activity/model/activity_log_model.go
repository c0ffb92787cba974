package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityLogModel: jejak audit per request terautentikasi, ditulis
// middleware activity tracker.
type ActivityLogModel struct {
	ActivityLogID     uuid.UUID `gorm:"column:activity_log_id;type:uuid;primaryKey" json:"activity_log_id"`
	ActivityLogUserID uuid.UUID `gorm:"column:activity_log_user_id;type:uuid;not null;index" json:"activity_log_user_id"`

	// "<METHOD>_<route>"; "error" untuk respons >= 500
	ActivityLogActionType   string  `gorm:"column:activity_log_action_type;type:varchar(120);not null;index" json:"activity_log_action_type"`
	ActivityLogActionDetail *string `gorm:"column:activity_log_action_detail;type:text" json:"activity_log_action_detail,omitempty"`

	ActivityLogStatusCode int    `gorm:"column:activity_log_status_code;not null" json:"activity_log_status_code"`
	ActivityLogMethod     string `gorm:"column:activity_log_method;type:varchar(10);not null" json:"activity_log_method"`
	ActivityLogEndpoint   string `gorm:"column:activity_log_endpoint;type:varchar(255);not null" json:"activity_log_endpoint"`
	ActivityLogPath       string `gorm:"column:activity_log_path;type:varchar(255);not null" json:"activity_log_path"`

	ActivityLogResourceType *string    `gorm:"column:activity_log_resource_type;type:varchar(30);index" json:"activity_log_resource_type,omitempty"`
	ActivityLogResourceID   *uuid.UUID `gorm:"column:activity_log_resource_id;type:uuid" json:"activity_log_resource_id,omitempty"`

	ActivityLogIP string `gorm:"column:activity_log_ip;type:varchar(45)" json:"activity_log_ip"`

	// payload tambahan bebas bentuk (mis. ringkasan body)
	ActivityLogContext datatypes.JSON `gorm:"column:activity_log_context;type:jsonb" json:"activity_log_context,omitempty"`

	ActivityLogCreatedAt time.Time `gorm:"column:activity_log_created_at;not null;autoCreateTime;index" json:"activity_log_created_at"`
}

func (ActivityLogModel) TableName() string { return "activity_logs" }

// ID diisi aplikasi sebelum insert.
func (m *ActivityLogModel) BeforeCreate(tx *gorm.DB) error {
	if m.ActivityLogID == uuid.Nil {
		m.ActivityLogID = uuid.New()
	}
	return nil
}
