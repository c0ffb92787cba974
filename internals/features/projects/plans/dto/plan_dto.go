// internals/features/projects/plans/dto/plan_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	planModel "pmhub_backend/internals/features/projects/plans/model"
	planService "pmhub_backend/internals/features/projects/plans/service"
)

/* ===================== REQUESTS ===================== */

type CreateProjectRequest struct {
	ProjectName     string  `json:"project_name" validate:"required,min=1,max=200"`
	ProjectStart    *string `json:"project_start" validate:"omitempty,datetime=2006-01-02"`
	ProjectDeadline *string `json:"project_deadline" validate:"omitempty,datetime=2006-01-02"`
}

func (r CreateProjectRequest) ToModel(ownerID uuid.UUID) *planModel.ProjectModel {
	return &planModel.ProjectModel{
		ProjectName:     strings.TrimSpace(r.ProjectName),
		ProjectOwnerID:  ownerID,
		ProjectStart:    parseDate(r.ProjectStart),
		ProjectDeadline: parseDate(r.ProjectDeadline),
		ProjectStatus:   planModel.StatusPending,
	}
}

type CreateSubprojectRequest struct {
	SubprojectProjectID  uuid.UUID  `json:"subproject_project_id" validate:"required"`
	SubprojectName       string     `json:"subproject_name" validate:"required,min=1,max=200"`
	SubprojectEmployeeID *uuid.UUID `json:"subproject_employee_id" validate:"omitempty"`
	SubprojectStart      *string    `json:"subproject_start" validate:"omitempty,datetime=2006-01-02"`
	SubprojectDeadline   *string    `json:"subproject_deadline" validate:"omitempty,datetime=2006-01-02"`
}

func (r CreateSubprojectRequest) ToModel() *planModel.SubprojectModel {
	return &planModel.SubprojectModel{
		SubprojectProjectID:  r.SubprojectProjectID,
		SubprojectName:       strings.TrimSpace(r.SubprojectName),
		SubprojectEmployeeID: r.SubprojectEmployeeID,
		SubprojectStart:      parseDate(r.SubprojectStart),
		SubprojectDeadline:   parseDate(r.SubprojectDeadline),
		SubprojectStatus:     planModel.StatusPending,
	}
}

type CreateStageRequest struct {
	StageSubprojectID uuid.UUID `json:"stage_subproject_id" validate:"required"`
	StageName         string    `json:"stage_name" validate:"required,min=1,max=200"`
	StageStart        *string   `json:"stage_start" validate:"omitempty,datetime=2006-01-02"`
	StageEnd          *string   `json:"stage_end" validate:"omitempty,datetime=2006-01-02"`
}

func (r CreateStageRequest) ToModel() *planModel.StageModel {
	return &planModel.StageModel{
		StageSubprojectID: r.StageSubprojectID,
		StageName:         strings.TrimSpace(r.StageName),
		StageStart:        parseDate(r.StageStart),
		StageEnd:          parseDate(r.StageEnd),
		StageStatus:       planModel.StatusPending,
	}
}

type CreateTaskRequest struct {
	TaskStageID uuid.UUID `json:"task_stage_id" validate:"required"`
	TaskName    string    `json:"task_name" validate:"required,min=1,max=200"`
	TaskDueDate *string   `json:"task_due_date" validate:"omitempty,datetime=2006-01-02"`
}

func (r CreateTaskRequest) ToModel() *planModel.TaskModel {
	return &planModel.TaskModel{
		TaskStageID: r.TaskStageID,
		TaskName:    strings.TrimSpace(r.TaskName),
		TaskDueDate: parseDate(r.TaskDueDate),
		TaskStatus:  planModel.StatusPending,
	}
}

type RenameRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

type RecordProgressRequest struct {
	Progress    *int   `json:"progress" validate:"required,min=0,max=100"`
	Description string `json:"description" validate:"max=2000"`
}

type AssignSubprojectRequest struct {
	SubprojectEmployeeID *uuid.UUID `json:"subproject_employee_id"`
}

/* ===================== RESPONSES ===================== */
// Progress agregat ditampilkan terpotong dua desimal.

type ProjectResponse struct {
	ProjectID       uuid.UUID  `json:"project_id"`
	ProjectName     string     `json:"project_name"`
	ProjectOwnerID  uuid.UUID  `json:"project_owner_id"`
	ProjectStart    *time.Time `json:"project_start,omitempty"`
	ProjectDeadline *time.Time `json:"project_deadline,omitempty"`
	ProjectProgress float64    `json:"project_progress"`
	ProjectStatus   string     `json:"project_status"`
}

func NewProjectResponse(m *planModel.ProjectModel) ProjectResponse {
	return ProjectResponse{
		ProjectID:       m.ProjectID,
		ProjectName:     m.ProjectName,
		ProjectOwnerID:  m.ProjectOwnerID,
		ProjectStart:    m.ProjectStart,
		ProjectDeadline: m.ProjectDeadline,
		ProjectProgress: planService.DisplayProgress(m.ProjectProgress),
		ProjectStatus:   m.ProjectStatus,
	}
}

type SubprojectResponse struct {
	SubprojectID         uuid.UUID  `json:"subproject_id"`
	SubprojectProjectID  uuid.UUID  `json:"subproject_project_id"`
	SubprojectName       string     `json:"subproject_name"`
	SubprojectEmployeeID *uuid.UUID `json:"subproject_employee_id,omitempty"`
	SubprojectProgress   float64    `json:"subproject_progress"`
	SubprojectStatus     string     `json:"subproject_status"`
}

func NewSubprojectResponse(m *planModel.SubprojectModel) SubprojectResponse {
	return SubprojectResponse{
		SubprojectID:         m.SubprojectID,
		SubprojectProjectID:  m.SubprojectProjectID,
		SubprojectName:       m.SubprojectName,
		SubprojectEmployeeID: m.SubprojectEmployeeID,
		SubprojectProgress:   planService.DisplayProgress(m.SubprojectProgress),
		SubprojectStatus:     m.SubprojectStatus,
	}
}

type StageResponse struct {
	StageID           uuid.UUID `json:"stage_id"`
	StageSubprojectID uuid.UUID `json:"stage_subproject_id"`
	StageName         string    `json:"stage_name"`
	StageProgress     float64   `json:"stage_progress"`
	StageStatus       string    `json:"stage_status"`
}

func NewStageResponse(m *planModel.StageModel) StageResponse {
	return StageResponse{
		StageID:           m.StageID,
		StageSubprojectID: m.StageSubprojectID,
		StageName:         m.StageName,
		StageProgress:     planService.DisplayProgress(m.StageProgress),
		StageStatus:       m.StageStatus,
	}
}

func parseDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	raw := strings.TrimSpace(*s)
	if raw == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &t
}
