package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserModel struct {
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	UserName     string    `gorm:"column:user_name;type:varchar(50);not null;uniqueIndex" json:"user_name"`
	UserEmail    *string   `gorm:"column:user_email;type:varchar(120)" json:"user_email,omitempty"`
	UserPassword string    `gorm:"column:user_password;type:varchar(255);not null" json:"-"`

	// 0=admin 1=manager 2=leader 3=member
	UserRole int `gorm:"column:user_role;type:smallint;not null;default:3" json:"user_role"`

	// leader dari member ini; NULL untuk admin/manager/leader
	UserTeamLeaderID *uuid.UUID `gorm:"column:user_team_leader_id;type:uuid;index" json:"user_team_leader_id,omitempty"`

	UserIsActive bool `gorm:"column:user_is_active;not null;default:true" json:"user_is_active"`

	UserCreatedAt time.Time  `gorm:"column:user_created_at;not null;autoCreateTime" json:"user_created_at"`
	UserUpdatedAt time.Time  `gorm:"column:user_updated_at;not null;autoUpdateTime" json:"user_updated_at"`
	UserDeletedAt *time.Time `gorm:"column:user_deleted_at;index" json:"user_deleted_at,omitempty"`
}

func (UserModel) TableName() string { return "users" }

// ID diisi aplikasi sebelum insert.
func (m *UserModel) BeforeCreate(tx *gorm.DB) error {
	if m.UserID == uuid.Nil {
		m.UserID = uuid.New()
	}
	return nil
}
