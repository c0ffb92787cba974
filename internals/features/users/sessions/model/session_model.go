package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionModel: satu baris per login. Invariant satu-sesi-aktif per user
// dijaga SessionRegistry, bukan constraint DB.
type SessionModel struct {
	SessionID     uuid.UUID `gorm:"column:session_id;type:uuid;primaryKey" json:"session_id"`
	SessionUserID uuid.UUID `gorm:"column:session_user_id;type:uuid;not null;index" json:"session_user_id"`

	SessionLoginTime        time.Time  `gorm:"column:session_login_time;not null" json:"session_login_time"`
	SessionLastActivityTime time.Time  `gorm:"column:session_last_activity_time;not null" json:"session_last_activity_time"`
	SessionLogoutTime       *time.Time `gorm:"column:session_logout_time" json:"session_logout_time,omitempty"`

	SessionIsActive bool `gorm:"column:session_is_active;not null;default:true;index" json:"session_is_active"`

	// durasi detik, diisi saat sesi ditutup
	SessionDuration    *int64 `gorm:"column:session_duration" json:"session_duration,omitempty"`
	SessionCloseReason string `gorm:"column:session_close_reason;type:varchar(20);default:''" json:"session_close_reason"`

	SessionIP        string `gorm:"column:session_ip;type:varchar(45)" json:"session_ip"`
	SessionUserAgent string `gorm:"column:session_user_agent;type:varchar(255)" json:"session_user_agent"`

	SessionCreatedAt time.Time `gorm:"column:session_created_at;not null;autoCreateTime" json:"session_created_at"`
}

func (SessionModel) TableName() string { return "sessions" }
