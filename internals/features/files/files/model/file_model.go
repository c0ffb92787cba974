package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FileModel struct {
	FileID uuid.UUID `gorm:"column:file_id;type:uuid;primaryKey" json:"file_id"`

	// scope key: minimal project, opsional sampai task
	FileProjectID    uuid.UUID  `gorm:"column:file_project_id;type:uuid;not null;index" json:"file_project_id"`
	FileSubprojectID *uuid.UUID `gorm:"column:file_subproject_id;type:uuid;index" json:"file_subproject_id,omitempty"`
	FileStageID      *uuid.UUID `gorm:"column:file_stage_id;type:uuid;index" json:"file_stage_id,omitempty"`
	FileTaskID       *uuid.UUID `gorm:"column:file_task_id;type:uuid;index" json:"file_task_id,omitempty"`

	FileOriginalName string `gorm:"column:file_original_name;type:varchar(255);not null" json:"file_original_name"`
	FileStoredName   string `gorm:"column:file_stored_name;type:varchar(255);not null;uniqueIndex" json:"file_stored_name"`
	FileType         int    `gorm:"column:file_type;type:smallint;not null" json:"file_type"`
	FileSize         int64  `gorm:"column:file_size;not null;default:0" json:"file_size"`

	FileUploaderID uuid.UUID `gorm:"column:file_uploader_id;type:uuid;not null;index" json:"file_uploader_id"`

	// teks hasil ekstraksi untuk full-text search; NULL jika tidak ada
	FileContentText *string `gorm:"column:file_content_text;type:text" json:"-"`

	FileUploadedAt time.Time  `gorm:"column:file_uploaded_at;not null;autoCreateTime" json:"file_uploaded_at"`
	FileDeletedAt  *time.Time `gorm:"column:file_deleted_at;index" json:"file_deleted_at,omitempty"`
}

func (FileModel) TableName() string { return "files" }

// ID diisi aplikasi sebelum insert.
func (m *FileModel) BeforeCreate(tx *gorm.DB) error {
	if m.FileID == uuid.Nil {
		m.FileID = uuid.New()
	}
	return nil
}
