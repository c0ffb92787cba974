package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Catatan satu kali backup run, dipakai dashboard & laporan email.
type BackupRunModel struct {
	BackupRunID uuid.UUID `gorm:"column:backup_run_id;type:uuid;primaryKey" json:"backup_run_id"`

	BackupRunSources  pq.StringArray `gorm:"column:backup_run_sources;type:text[]" json:"backup_run_sources"`
	BackupRunArchives int            `gorm:"column:backup_run_archives;not null;default:0" json:"backup_run_archives"`
	BackupRunRemoved  int            `gorm:"column:backup_run_removed;not null;default:0" json:"backup_run_removed"`
	BackupRunMailed   bool           `gorm:"column:backup_run_mailed;not null;default:false" json:"backup_run_mailed"`
	BackupRunError    *string        `gorm:"column:backup_run_error;type:text" json:"backup_run_error,omitempty"`

	BackupRunStartedAt  time.Time  `gorm:"column:backup_run_started_at;not null" json:"backup_run_started_at"`
	BackupRunFinishedAt *time.Time `gorm:"column:backup_run_finished_at" json:"backup_run_finished_at,omitempty"`
}

func (BackupRunModel) TableName() string { return "backup_runs" }

// ID diisi aplikasi sebelum insert.
func (m *BackupRunModel) BeforeCreate(tx *gorm.DB) error {
	if m.BackupRunID == uuid.Nil {
		m.BackupRunID = uuid.New()
	}
	return nil
}
