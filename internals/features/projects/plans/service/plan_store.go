// internals/features/projects/plans/service/plan_store.go
package service

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	planModel "pmhub_backend/internals/features/projects/plans/model"
)

// PlanStore menyimpan pohon rencana empat level. Semua accessor anak
// mengembalikan urutan stabil: name ASC, tie-break id ASC.
// Field progress/status node non-leaf hanya ditulis lewat RollupService.
type PlanStore struct {
	DB *gorm.DB
}

func NewPlanStore(db *gorm.DB) *PlanStore { return &PlanStore{DB: db} }

/* ===================== ORDERED CHILD ACCESSORS ===================== */

func (s *PlanStore) OrderedSubprojects(db *gorm.DB, projectID uuid.UUID) ([]planModel.SubprojectModel, error) {
	var out []planModel.SubprojectModel
	err := db.
		Where("subproject_project_id = ? AND subproject_deleted_at IS NULL", projectID).
		Order("subproject_name ASC").
		Order("subproject_id ASC").
		Find(&out).Error
	return out, err
}

func (s *PlanStore) OrderedStages(db *gorm.DB, subprojectID uuid.UUID) ([]planModel.StageModel, error) {
	var out []planModel.StageModel
	err := db.
		Where("stage_subproject_id = ? AND stage_deleted_at IS NULL", subprojectID).
		Order("stage_name ASC").
		Order("stage_id ASC").
		Find(&out).Error
	return out, err
}

func (s *PlanStore) OrderedTasks(db *gorm.DB, stageID uuid.UUID) ([]planModel.TaskModel, error) {
	var out []planModel.TaskModel
	err := db.
		Where("task_stage_id = ? AND task_deleted_at IS NULL", stageID).
		Order("task_name ASC").
		Order("task_id ASC").
		Find(&out).Error
	return out, err
}

/* ===================== LOOKUPS ===================== */

func (s *PlanStore) GetProject(db *gorm.DB, id uuid.UUID) (*planModel.ProjectModel, error) {
	var m planModel.ProjectModel
	if err := db.First(&m, "project_id = ? AND project_deleted_at IS NULL", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "项目不存在")
		}
		return nil, err
	}
	return &m, nil
}

func (s *PlanStore) GetSubproject(db *gorm.DB, id uuid.UUID) (*planModel.SubprojectModel, error) {
	var m planModel.SubprojectModel
	if err := db.First(&m, "subproject_id = ? AND subproject_deleted_at IS NULL", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "子项目不存在")
		}
		return nil, err
	}
	return &m, nil
}

func (s *PlanStore) GetStage(db *gorm.DB, id uuid.UUID) (*planModel.StageModel, error) {
	var m planModel.StageModel
	if err := db.First(&m, "stage_id = ? AND stage_deleted_at IS NULL", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "阶段不存在")
		}
		return nil, err
	}
	return &m, nil
}

func (s *PlanStore) GetTask(db *gorm.DB, id uuid.UUID) (*planModel.TaskModel, error) {
	var m planModel.TaskModel
	if err := db.First(&m, "task_id = ? AND task_deleted_at IS NULL", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "任务不存在")
		}
		return nil, err
	}
	return &m, nil
}

/* ===================== STRUCTURAL WRITES ===================== */
// Create/delete anak memicu re-derive aggregate parent (satu transaksi).

func (s *PlanStore) CreateProject(m *planModel.ProjectModel) error {
	return s.DB.Create(m).Error
}

func (s *PlanStore) CreateSubproject(m *planModel.SubprojectModel) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.GetProject(tx, m.SubprojectProjectID); err != nil {
			return err
		}
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return rederiveProject(tx, s, m.SubprojectProjectID)
	})
}

func (s *PlanStore) CreateStage(m *planModel.StageModel) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		sub, err := s.GetSubproject(tx, m.StageSubprojectID)
		if err != nil {
			return err
		}
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return rederiveFromSubproject(tx, s, sub.SubprojectID)
	})
}

func (s *PlanStore) CreateTask(m *planModel.TaskModel) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		stage, err := s.GetStage(tx, m.TaskStageID)
		if err != nil {
			return err
		}
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return rederiveFromStage(tx, s, stage.StageID)
	})
}

func (s *PlanStore) DeleteTask(id uuid.UUID) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		task, err := s.GetTask(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(&planModel.TaskModel{}, "task_id = ?", id).Error; err != nil {
			return err
		}
		return rederiveFromStage(tx, s, task.TaskStageID)
	})
}

func (s *PlanStore) DeleteStage(id uuid.UUID) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		stage, err := s.GetStage(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(&planModel.TaskModel{}, "task_stage_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&planModel.StageModel{}, "stage_id = ?", id).Error; err != nil {
			return err
		}
		return rederiveFromSubproject(tx, s, stage.StageSubprojectID)
	})
}

func (s *PlanStore) DeleteSubproject(id uuid.UUID) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		sub, err := s.GetSubproject(tx, id)
		if err != nil {
			return err
		}
		stages, err := s.OrderedStages(tx, id)
		if err != nil {
			return err
		}
		for i := range stages {
			if err := tx.Delete(&planModel.TaskModel{}, "task_stage_id = ?", stages[i].StageID).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&planModel.StageModel{}, "stage_subproject_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&planModel.SubprojectModel{}, "subproject_id = ?", id).Error; err != nil {
			return err
		}
		return rederiveProject(tx, s, sub.SubprojectProjectID)
	})
}

// RenameTask dan kawan-kawan adalah edit struktural biasa; progress/status
// tidak tersentuh sehingga tidak perlu re-derive.
func (s *PlanStore) RenameProject(id uuid.UUID, name string) error {
	return s.renameColumn(&planModel.ProjectModel{}, "project_id", id, "project_name", name)
}

func (s *PlanStore) RenameSubproject(id uuid.UUID, name string) error {
	return s.renameColumn(&planModel.SubprojectModel{}, "subproject_id", id, "subproject_name", name)
}

func (s *PlanStore) RenameStage(id uuid.UUID, name string) error {
	return s.renameColumn(&planModel.StageModel{}, "stage_id", id, "stage_name", name)
}

func (s *PlanStore) RenameTask(id uuid.UUID, name string) error {
	return s.renameColumn(&planModel.TaskModel{}, "task_id", id, "task_name", name)
}

func (s *PlanStore) renameColumn(model interface{}, idCol string, id uuid.UUID, col, val string) error {
	res := s.DB.Model(model).Where(idCol+" = ?", id).Update(col, val)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "记录不存在")
	}
	return nil
}

// AssignSubproject menetapkan member pada subproject.
func (s *PlanStore) AssignSubproject(id uuid.UUID, employeeID *uuid.UUID) error {
	res := s.DB.Model(&planModel.SubprojectModel{}).
		Where("subproject_id = ?", id).
		Update("subproject_employee_id", employeeID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "子项目不存在")
	}
	return nil
}
