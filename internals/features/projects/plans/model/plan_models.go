package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status node pada plan tree: project → subproject → stage → task.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusOverdue    = "overdue" // hanya untuk project & subproject
)

type ProjectModel struct {
	ProjectID      uuid.UUID `gorm:"column:project_id;type:uuid;primaryKey" json:"project_id"`
	ProjectName    string    `gorm:"column:project_name;type:varchar(200);not null;index" json:"project_name"`
	ProjectOwnerID uuid.UUID `gorm:"column:project_owner_id;type:uuid;not null;index" json:"project_owner_id"`

	ProjectStart    *time.Time `gorm:"column:project_start" json:"project_start,omitempty"`
	ProjectDeadline *time.Time `gorm:"column:project_deadline;index" json:"project_deadline,omitempty"`

	ProjectProgress float64 `gorm:"column:project_progress;type:numeric(7,4);not null;default:0" json:"project_progress"`
	ProjectStatus   string  `gorm:"column:project_status;type:varchar(20);not null;default:'pending'" json:"project_status"`

	ProjectCreatedAt time.Time  `gorm:"column:project_created_at;not null;autoCreateTime" json:"project_created_at"`
	ProjectUpdatedAt time.Time  `gorm:"column:project_updated_at;not null;autoUpdateTime" json:"project_updated_at"`
	ProjectDeletedAt *time.Time `gorm:"column:project_deleted_at;index" json:"project_deleted_at,omitempty"`
}

func (ProjectModel) TableName() string { return "projects" }

// ID diisi aplikasi sebelum insert.
func (m *ProjectModel) BeforeCreate(tx *gorm.DB) error {
	if m.ProjectID == uuid.Nil {
		m.ProjectID = uuid.New()
	}
	return nil
}

type SubprojectModel struct {
	SubprojectID        uuid.UUID `gorm:"column:subproject_id;type:uuid;primaryKey" json:"subproject_id"`
	SubprojectProjectID uuid.UUID `gorm:"column:subproject_project_id;type:uuid;not null;index" json:"subproject_project_id"`
	SubprojectName      string    `gorm:"column:subproject_name;type:varchar(200);not null" json:"subproject_name"`

	// member yang ditugaskan; NULL = belum ada
	SubprojectEmployeeID *uuid.UUID `gorm:"column:subproject_employee_id;type:uuid;index" json:"subproject_employee_id,omitempty"`

	SubprojectStart    *time.Time `gorm:"column:subproject_start" json:"subproject_start,omitempty"`
	SubprojectDeadline *time.Time `gorm:"column:subproject_deadline" json:"subproject_deadline,omitempty"`

	SubprojectProgress float64 `gorm:"column:subproject_progress;type:numeric(7,4);not null;default:0" json:"subproject_progress"`
	SubprojectStatus   string  `gorm:"column:subproject_status;type:varchar(20);not null;default:'pending'" json:"subproject_status"`

	SubprojectCreatedAt time.Time  `gorm:"column:subproject_created_at;not null;autoCreateTime" json:"subproject_created_at"`
	SubprojectUpdatedAt time.Time  `gorm:"column:subproject_updated_at;not null;autoUpdateTime" json:"subproject_updated_at"`
	SubprojectDeletedAt *time.Time `gorm:"column:subproject_deleted_at;index" json:"subproject_deleted_at,omitempty"`
}

func (SubprojectModel) TableName() string { return "subprojects" }

func (m *SubprojectModel) BeforeCreate(tx *gorm.DB) error {
	if m.SubprojectID == uuid.Nil {
		m.SubprojectID = uuid.New()
	}
	return nil
}

// Stage selalu milik tepat satu subproject.
type StageModel struct {
	StageID           uuid.UUID `gorm:"column:stage_id;type:uuid;primaryKey" json:"stage_id"`
	StageSubprojectID uuid.UUID `gorm:"column:stage_subproject_id;type:uuid;not null;index" json:"stage_subproject_id"`
	StageName         string    `gorm:"column:stage_name;type:varchar(200);not null" json:"stage_name"`

	StageStart *time.Time `gorm:"column:stage_start" json:"stage_start,omitempty"`
	StageEnd   *time.Time `gorm:"column:stage_end" json:"stage_end,omitempty"`

	StageProgress float64 `gorm:"column:stage_progress;type:numeric(7,4);not null;default:0" json:"stage_progress"`
	StageStatus   string  `gorm:"column:stage_status;type:varchar(20);not null;default:'pending'" json:"stage_status"`

	StageCreatedAt time.Time  `gorm:"column:stage_created_at;not null;autoCreateTime" json:"stage_created_at"`
	StageUpdatedAt time.Time  `gorm:"column:stage_updated_at;not null;autoUpdateTime" json:"stage_updated_at"`
	StageDeletedAt *time.Time `gorm:"column:stage_deleted_at;index" json:"stage_deleted_at,omitempty"`
}

func (StageModel) TableName() string { return "stages" }

func (m *StageModel) BeforeCreate(tx *gorm.DB) error {
	if m.StageID == uuid.Nil {
		m.StageID = uuid.New()
	}
	return nil
}

type TaskModel struct {
	TaskID      uuid.UUID `gorm:"column:task_id;type:uuid;primaryKey" json:"task_id"`
	TaskStageID uuid.UUID `gorm:"column:task_stage_id;type:uuid;not null;index" json:"task_stage_id"`
	TaskName    string    `gorm:"column:task_name;type:varchar(200);not null" json:"task_name"`

	TaskDueDate *time.Time `gorm:"column:task_due_date" json:"task_due_date,omitempty"`

	// monoton tidak menurun lewat API publik
	TaskProgress int    `gorm:"column:task_progress;not null;default:0" json:"task_progress"`
	TaskStatus   string `gorm:"column:task_status;type:varchar(20);not null;default:'pending'" json:"task_status"`

	TaskCreatedAt time.Time  `gorm:"column:task_created_at;not null;autoCreateTime" json:"task_created_at"`
	TaskUpdatedAt time.Time  `gorm:"column:task_updated_at;not null;autoUpdateTime" json:"task_updated_at"`
	TaskDeletedAt *time.Time `gorm:"column:task_deleted_at;index" json:"task_deleted_at,omitempty"`
}

func (TaskModel) TableName() string { return "tasks" }

func (m *TaskModel) BeforeCreate(tx *gorm.DB) error {
	if m.TaskID == uuid.Nil {
		m.TaskID = uuid.New()
	}
	return nil
}

// Append-only.
type ProgressUpdateModel struct {
	ProgressUpdateID     uuid.UUID `gorm:"column:progress_update_id;type:uuid;primaryKey" json:"progress_update_id"`
	ProgressUpdateTaskID uuid.UUID `gorm:"column:progress_update_task_id;type:uuid;not null;index" json:"progress_update_task_id"`

	// nilai yang dicatat, bukan delta
	ProgressUpdateProgress    int    `gorm:"column:progress_update_progress;not null" json:"progress_update_progress"`
	ProgressUpdateDescription string `gorm:"column:progress_update_description;type:text" json:"progress_update_description"`

	ProgressUpdateRecorderID uuid.UUID `gorm:"column:progress_update_recorder_id;type:uuid;not null" json:"progress_update_recorder_id"`
	ProgressUpdateCreatedAt  time.Time `gorm:"column:progress_update_created_at;not null;autoCreateTime" json:"progress_update_created_at"`
}

func (ProgressUpdateModel) TableName() string { return "progress_updates" }

func (m *ProgressUpdateModel) BeforeCreate(tx *gorm.DB) error {
	if m.ProgressUpdateID == uuid.Nil {
		m.ProgressUpdateID = uuid.New()
	}
	return nil
}
