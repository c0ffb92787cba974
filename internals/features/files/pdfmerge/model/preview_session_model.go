package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Satu preview session = satu staging dir berisi PNG per halaman.
// Dibersihkan saat finalize/cancel atau oleh TTL reaper.
type PreviewSessionModel struct {
	PreviewSessionID        uuid.UUID `gorm:"column:preview_session_id;type:uuid;primaryKey" json:"preview_session_id"`
	PreviewSessionProjectID uuid.UUID `gorm:"column:preview_session_project_id;type:uuid;not null;index" json:"preview_session_project_id"`

	PreviewSessionStagingDir string `gorm:"column:preview_session_staging_dir;type:varchar(400);not null" json:"-"`
	PreviewSessionPageCount  int    `gorm:"column:preview_session_page_count;not null;default:0" json:"preview_session_page_count"`

	// snapshot config merge yang menghasilkan preview ini
	PreviewSessionConfig datatypes.JSON `gorm:"column:preview_session_config;type:jsonb" json:"preview_session_config,omitempty"`

	PreviewSessionCreatedAt time.Time `gorm:"column:preview_session_created_at;not null;autoCreateTime;index" json:"preview_session_created_at"`
}

func (PreviewSessionModel) TableName() string { return "preview_sessions" }
