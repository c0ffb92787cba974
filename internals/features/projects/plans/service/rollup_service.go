// internals/features/projects/plans/service/rollup_service.go
package service

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	planModel "pmhub_backend/internals/features/projects/plans/model"
)

// RollupService menghitung ulang progress/status agregat dari leaf yang
// berubah sampai ke root. Semua penulisan agregat satu transaksi dengan
// penulisan leaf-nya.
type RollupService struct {
	DB    *gorm.DB
	Store *PlanStore
}

func NewRollupService(db *gorm.DB, store *PlanStore) *RollupService {
	return &RollupService{DB: db, Store: store}
}

// RecordTaskProgress: entry point utama pencatatan progres tugas.
// newProgress harus >= progres sekarang (monoton); pelanggaran → 400.
func (s *RollupService) RecordTaskProgress(taskID uuid.UUID, newProgress int, description string, recorderID uuid.UUID) (*planModel.TaskModel, error) {
	if newProgress < 0 || newProgress > 100 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "进度值必须在 0 到 100 之间")
	}

	var task *planModel.TaskModel
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		task, err = s.Store.GetTask(tx, taskID)
		if err != nil {
			return err
		}
		if newProgress < task.TaskProgress {
			return fiber.NewError(fiber.StatusBadRequest, "任务进度不能回退")
		}

		// 1) append progress update (append-only)
		if err := tx.Create(&planModel.ProgressUpdateModel{
			ProgressUpdateTaskID:      taskID,
			ProgressUpdateProgress:    newProgress,
			ProgressUpdateDescription: description,
			ProgressUpdateRecorderID:  recorderID,
		}).Error; err != nil {
			return err
		}

		// 2) tulis leaf
		return s.writeTaskAndRollup(tx, task, newProgress)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// AdminResetTask: reset paksa leaf oleh admin, boleh menurunkan progres.
// Jalur ini satu-satunya cara keluar dari completed.
func (s *RollupService) AdminResetTask(taskID uuid.UUID, progress int, recorderID uuid.UUID) (*planModel.TaskModel, error) {
	if progress < 0 || progress > 100 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "进度值必须在 0 到 100 之间")
	}

	var task *planModel.TaskModel
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		task, err = s.Store.GetTask(tx, taskID)
		if err != nil {
			return err
		}
		if err := tx.Create(&planModel.ProgressUpdateModel{
			ProgressUpdateTaskID:      taskID,
			ProgressUpdateProgress:    progress,
			ProgressUpdateDescription: "管理员重置进度",
			ProgressUpdateRecorderID:  recorderID,
		}).Error; err != nil {
			return err
		}
		return s.writeTaskAndRollup(tx, task, progress)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *RollupService) writeTaskAndRollup(tx *gorm.DB, task *planModel.TaskModel, progress int) error {
	status := planModel.StatusPending
	switch {
	case progress == 100:
		status = planModel.StatusCompleted
	case progress > 0:
		status = planModel.StatusInProgress
	}

	if err := tx.Model(&planModel.TaskModel{}).
		Where("task_id = ?", task.TaskID).
		Updates(map[string]interface{}{
			"task_progress": progress,
			"task_status":   status,
		}).Error; err != nil {
		return err
	}
	task.TaskProgress = progress
	task.TaskStatus = status

	return rederiveFromStage(tx, s.Store, task.TaskStageID)
}

// SweepOverdue menjalankan re-derivasi untuk subproject dan project yang
// lewat deadline dan belum completed/overdue. Status overdue hanya ditulis
// lewat jalur re-derivasi yang sama dengan rollup biasa.
func (s *RollupService) SweepOverdue() (int, error) {
	now := time.Now()
	swept := 0

	var subIDs []uuid.UUID
	if err := s.DB.Model(&planModel.SubprojectModel{}).
		Where("subproject_deadline IS NOT NULL AND subproject_deadline < ?", now).
		Where("subproject_status NOT IN ?", []string{planModel.StatusCompleted, planModel.StatusOverdue}).
		Where("subproject_deleted_at IS NULL").
		Pluck("subproject_id", &subIDs).Error; err != nil {
		return swept, err
	}
	for _, id := range subIDs {
		if err := s.DB.Transaction(func(tx *gorm.DB) error {
			return rederiveFromSubproject(tx, s.Store, id)
		}); err != nil {
			return swept, err
		}
		swept++
	}

	var projectIDs []uuid.UUID
	if err := s.DB.Model(&planModel.ProjectModel{}).
		Where("project_deadline IS NOT NULL AND project_deadline < ?", now).
		Where("project_status NOT IN ?", []string{planModel.StatusCompleted, planModel.StatusOverdue}).
		Where("project_deleted_at IS NULL").
		Pluck("project_id", &projectIDs).Error; err != nil {
		return swept, err
	}
	for _, id := range projectIDs {
		if err := s.DB.Transaction(func(tx *gorm.DB) error {
			return rederiveProject(tx, s.Store, id)
		}); err != nil {
			return swept, err
		}
		swept++
	}
	return swept, nil
}

/* ===================== RE-DERIVATION ===================== */
// Satu-satunya jalur yang mengubah aggregate parent. Dipakai juga oleh
// PlanStore setelah perubahan struktural.

func rederiveFromStage(tx *gorm.DB, store *PlanStore, stageID uuid.UUID) error {
	stage, err := store.GetStage(tx, stageID)
	if err != nil {
		return err
	}

	tasks, err := store.OrderedTasks(tx, stageID)
	if err != nil {
		return err
	}

	progresses := make([]float64, 0, len(tasks))
	statuses := make([]string, 0, len(tasks))
	for i := range tasks {
		progresses = append(progresses, float64(tasks[i].TaskProgress))
		statuses = append(statuses, tasks[i].TaskStatus)
	}
	progress, status := aggregate(progresses, statuses)

	if err := tx.Model(&planModel.StageModel{}).
		Where("stage_id = ?", stageID).
		Updates(map[string]interface{}{
			"stage_progress": progress,
			"stage_status":   status,
		}).Error; err != nil {
		return err
	}

	return rederiveFromSubproject(tx, store, stage.StageSubprojectID)
}

func rederiveFromSubproject(tx *gorm.DB, store *PlanStore, subprojectID uuid.UUID) error {
	sub, err := store.GetSubproject(tx, subprojectID)
	if err != nil {
		return err
	}

	stages, err := store.OrderedStages(tx, subprojectID)
	if err != nil {
		return err
	}

	progresses := make([]float64, 0, len(stages))
	statuses := make([]string, 0, len(stages))
	for i := range stages {
		progresses = append(progresses, stages[i].StageProgress)
		statuses = append(statuses, stages[i].StageStatus)
	}
	progress, status := aggregate(progresses, statuses)

	if status != planModel.StatusCompleted &&
		sub.SubprojectDeadline != nil &&
		sub.SubprojectDeadline.Before(time.Now()) {
		status = planModel.StatusOverdue
	}

	if err := tx.Model(&planModel.SubprojectModel{}).
		Where("subproject_id = ?", subprojectID).
		Updates(map[string]interface{}{
			"subproject_progress": progress,
			"subproject_status":   status,
		}).Error; err != nil {
		return err
	}

	return rederiveProject(tx, store, sub.SubprojectProjectID)
}

func rederiveProject(tx *gorm.DB, store *PlanStore, projectID uuid.UUID) error {
	project, err := store.GetProject(tx, projectID)
	if err != nil {
		return err
	}

	subs, err := store.OrderedSubprojects(tx, projectID)
	if err != nil {
		return err
	}

	progresses := make([]float64, 0, len(subs))
	statuses := make([]string, 0, len(subs))
	for i := range subs {
		progresses = append(progresses, subs[i].SubprojectProgress)
		statuses = append(statuses, subs[i].SubprojectStatus)
	}
	progress, status := aggregate(progresses, statuses)

	// Project yang belum completed dan lewat deadline → overdue.
	if status != planModel.StatusCompleted &&
		project.ProjectDeadline != nil &&
		project.ProjectDeadline.Before(time.Now()) {
		status = planModel.StatusOverdue
	}

	return tx.Model(&planModel.ProjectModel{}).
		Where("project_id = ?", projectID).
		Updates(map[string]interface{}{
			"project_progress": progress,
			"project_status":   status,
		}).Error
}

// aggregate: mean aritmetika tanpa bobot + aturan status.
// Himpunan anak kosong diperlakukan progress=0, status=pending.
func aggregate(progresses []float64, statuses []string) (float64, string) {
	if len(progresses) == 0 {
		return 0, planModel.StatusPending
	}

	sum := 0.0
	for _, p := range progresses {
		sum += p
	}
	mean := sum / float64(len(progresses))

	allCompleted := true
	anyStarted := false
	for i := range statuses {
		if statuses[i] != planModel.StatusCompleted {
			allCompleted = false
		}
		if statuses[i] == planModel.StatusInProgress || statuses[i] == planModel.StatusCompleted || progresses[i] > 0 {
			anyStarted = true
		}
	}

	switch {
	case allCompleted:
		return mean, planModel.StatusCompleted
	case anyStarted:
		return mean, planModel.StatusInProgress
	default:
		return mean, planModel.StatusPending
	}
}

// DisplayProgress memotong ke dua desimal untuk tampilan; nilai tersimpan
// tetap presisi penuh.
func DisplayProgress(v float64) float64 {
	return float64(int64(v*100)) / 100
}
