package service

import (
	"errors"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	planModel "pmhub_backend/internals/features/projects/plans/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&planModel.ProjectModel{},
		&planModel.SubprojectModel{},
		&planModel.StageModel{},
		&planModel.TaskModel{},
		&planModel.ProgressUpdateModel{},
	))
	return db
}

type testTree struct {
	project uuid.UUID
	sub     uuid.UUID
	stage   uuid.UUID
	taskA   uuid.UUID
	taskB   uuid.UUID
}

// seedTree: satu project → satu subproject → satu stage → dua task.
func seedTree(t *testing.T, store *PlanStore) testTree {
	t.Helper()

	project := &planModel.ProjectModel{
		ProjectName:    "桥梁检测项目",
		ProjectOwnerID: uuid.New(),
		ProjectStatus:  planModel.StatusPending,
	}
	require.NoError(t, store.CreateProject(project))

	sub := &planModel.SubprojectModel{
		SubprojectProjectID: project.ProjectID,
		SubprojectName:      "现场勘查",
		SubprojectStatus:    planModel.StatusPending,
	}
	require.NoError(t, store.CreateSubproject(sub))

	stage := &planModel.StageModel{
		StageSubprojectID: sub.SubprojectID,
		StageName:         "外观检查",
		StageStatus:       planModel.StatusPending,
	}
	require.NoError(t, store.CreateStage(stage))

	taskA := &planModel.TaskModel{
		TaskStageID: stage.StageID,
		TaskName:    "拍照记录",
		TaskStatus:  planModel.StatusPending,
	}
	require.NoError(t, store.CreateTask(taskA))

	taskB := &planModel.TaskModel{
		TaskStageID: stage.StageID,
		TaskName:    "裂缝测量",
		TaskStatus:  planModel.StatusPending,
	}
	require.NoError(t, store.CreateTask(taskB))

	return testTree{
		project: project.ProjectID,
		sub:     sub.SubprojectID,
		stage:   stage.StageID,
		taskA:   taskA.TaskID,
		taskB:   taskB.TaskID,
	}
}

func TestRecordTaskProgressRollsUp(t *testing.T) {
	db := newTestDB(t)
	store := NewPlanStore(db)
	rollup := NewRollupService(db, store)
	tree := seedTree(t, store)
	recorder := uuid.New()

	task, err := rollup.RecordTaskProgress(tree.taskA, 50, "完成一半", recorder)
	require.NoError(t, err)
	assert.Equal(t, 50, task.TaskProgress)
	assert.Equal(t, planModel.StatusInProgress, task.TaskStatus)

	stage, err := store.GetStage(db, tree.stage)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, stage.StageProgress, 1e-9)
	assert.Equal(t, planModel.StatusInProgress, stage.StageStatus)

	sub, err := store.GetSubproject(db, tree.sub)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, sub.SubprojectProgress, 1e-9)
	assert.Equal(t, planModel.StatusInProgress, sub.SubprojectStatus)

	project, err := store.GetProject(db, tree.project)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, project.ProjectProgress, 1e-9)
	assert.Equal(t, planModel.StatusInProgress, project.ProjectStatus)

	// riwayat append-only terbentuk
	var updates []planModel.ProgressUpdateModel
	require.NoError(t, db.Find(&updates, "progress_update_task_id = ?", tree.taskA).Error)
	require.Len(t, updates, 1)
	assert.Equal(t, 50, updates[0].ProgressUpdateProgress)
	assert.Equal(t, recorder, updates[0].ProgressUpdateRecorderID)
}

func TestRecordTaskProgressMonotonic(t *testing.T) {
	db := newTestDB(t)
	store := NewPlanStore(db)
	rollup := NewRollupService(db, store)
	tree := seedTree(t, store)
	recorder := uuid.New()

	_, err := rollup.RecordTaskProgress(tree.taskA, 60, "", recorder)
	require.NoError(t, err)

	_, err = rollup.RecordTaskProgress(tree.taskA, 40, "", recorder)
	require.Error(t, err)
	var fe *fiber.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, fiber.StatusBadRequest, fe.Code)
	assert.Equal(t, "任务进度不能回退", fe.Message)

	// nilai sama boleh (laporan ulang tanpa kemajuan)
	_, err = rollup.RecordTaskProgress(tree.taskA, 60, "", recorder)
	require.NoError(t, err)

	task, err := store.GetTask(db, tree.taskA)
	require.NoError(t, err)
	assert.Equal(t, 60, task.TaskProgress)
}

func TestRecordTaskProgressRange(t *testing.T) {
	db := newTestDB(t)
	store := NewPlanStore(db)
	rollup := NewRollupService(db, store)
	tree := seedTree(t, store)

	for _, bad := range []int{-1, 101} {
		_, err := rollup.RecordTaskProgress(tree.taskA, bad, "", uuid.New())
		require.Error(t, err)
		var fe *fiber.Error
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, fiber.StatusBadRequest, fe.Code)
	}
}

func TestAdminResetAllowsDecrease(t *testing.T) {
	db := newTestDB(t)
	store := NewPlanStore(db)
	rollup := NewRollupService(db, store)
	tree := seedTree(t, store)
	admin := uuid.New()

	_, err := rollup.RecordTaskProgress(tree.taskA, 100, "", admin)
	require.NoError(t, err)

	task, err := rollup.AdminResetTask(tree.taskA, 20, admin)
	require.NoError(t, err)
	assert.Equal(t, 20, task.TaskProgress)
	assert.Equal(t, planModel.StatusInProgress, task.TaskStatus)

	stage, err := store.GetStage(db, tree.stage)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, stage.StageProgress, 1e-9)
}

func TestCompletionPropagates(t *testing.T) {
	db := newTestDB(t)
	store := NewPlanStore(db)
	rollup := NewRollupService(db, store)
	tree := seedTree(t, store)
	recorder := uuid.New()

	_, err := rollup.RecordTaskProgress(tree.taskA, 100, "", recorder)
	require.NoError(t, err)
	_, err = rollup.RecordTaskProgress(tree.taskB, 100, "", recorder)
	require.NoError(t, err)

	project, err := store.GetProject(db, tree.project)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, project.ProjectProgress, 1e-9)
	assert.Equal(t, planModel.StatusCompleted, project.ProjectStatus)

	sub, err := store.GetSubproject(db, tree.sub)
	require.NoError(t, err)
	assert.Equal(t, planModel.StatusCompleted, sub.SubprojectStatus)
}

func TestDeadlineOverdueOverride(t *testing.T) {
	db := newTestDB(t)
	store := NewPlanStore(db)
	rollup := NewRollupService(db, store)
	tree := seedTree(t, store)

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, db.Model(&planModel.ProjectModel{}).
		Where("project_id = ?", tree.project).
		Update("project_deadline", past).Error)
	require.NoError(t, db.Model(&planModel.SubprojectModel{}).
		Where("subproject_id = ?", tree.sub).
		Update("subproject_deadline", past).Error)

	_, err := rollup.RecordTaskProgress(tree.taskA, 30, "", uuid.New())
	require.NoError(t, err)

	project, err := store.GetProject(db, tree.project)
	require.NoError(t, err)
	assert.Equal(t, planModel.StatusOverdue, project.ProjectStatus)

	sub, err := store.GetSubproject(db, tree.sub)
	require.NoError(t, err)
	assert.Equal(t, planModel.StatusOverdue, sub.SubprojectStatus)

	// completed tidak tertimpa overdue
	recorder := uuid.New()
	_, err = rollup.RecordTaskProgress(tree.taskA, 100, "", recorder)
	require.NoError(t, err)
	_, err = rollup.RecordTaskProgress(tree.taskB, 100, "", recorder)
	require.NoError(t, err)

	project, err = store.GetProject(db, tree.project)
	require.NoError(t, err)
	assert.Equal(t, planModel.StatusCompleted, project.ProjectStatus)
}

func TestStructuralChangeRederives(t *testing.T) {
	db := newTestDB(t)
	store := NewPlanStore(db)
	rollup := NewRollupService(db, store)
	tree := seedTree(t, store)

	_, err := rollup.RecordTaskProgress(tree.taskA, 100, "", uuid.New())
	require.NoError(t, err)

	// hapus task yang belum mulai → agregat naik
	require.NoError(t, store.DeleteTask(tree.taskB))

	stage, err := store.GetStage(db, tree.stage)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, stage.StageProgress, 1e-9)
	assert.Equal(t, planModel.StatusCompleted, stage.StageStatus)

	// tambah task baru → turun lagi
	taskC := &planModel.TaskModel{
		TaskStageID: tree.stage,
		TaskName:    "补充检测",
		TaskStatus:  planModel.StatusPending,
	}
	require.NoError(t, store.CreateTask(taskC))

	stage, err = store.GetStage(db, tree.stage)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, stage.StageProgress, 1e-9)
	assert.Equal(t, planModel.StatusInProgress, stage.StageStatus)
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name       string
		progresses []float64
		statuses   []string
		wantMean   float64
		wantStatus string
	}{
		{
			name:       "empty children",
			progresses: nil,
			statuses:   nil,
			wantMean:   0,
			wantStatus: planModel.StatusPending,
		},
		{
			name:       "all pending",
			progresses: []float64{0, 0},
			statuses:   []string{planModel.StatusPending, planModel.StatusPending},
			wantMean:   0,
			wantStatus: planModel.StatusPending,
		},
		{
			name:       "one started",
			progresses: []float64{30, 0},
			statuses:   []string{planModel.StatusInProgress, planModel.StatusPending},
			wantMean:   15,
			wantStatus: planModel.StatusInProgress,
		},
		{
			name:       "all completed",
			progresses: []float64{100, 100},
			statuses:   []string{planModel.StatusCompleted, planModel.StatusCompleted},
			wantMean:   100,
			wantStatus: planModel.StatusCompleted,
		},
		{
			name:       "completed mixed with pending",
			progresses: []float64{100, 0},
			statuses:   []string{planModel.StatusCompleted, planModel.StatusPending},
			wantMean:   50,
			wantStatus: planModel.StatusInProgress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, status := aggregate(tt.progresses, tt.statuses)
			assert.InDelta(t, tt.wantMean, mean, 1e-9)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestDisplayProgress(t *testing.T) {
	// dipotong, bukan dibulatkan
	assert.Equal(t, 33.33, DisplayProgress(100.0/3))
	assert.Equal(t, 66.66, DisplayProgress(200.0/3))
	assert.Equal(t, 100.0, DisplayProgress(100))
}

// Sweep berjalan lewat re-derivasi yang sama dengan rollup: status jadi
// overdue DAN progress agregat ikut dihitung ulang dari anak-anaknya.
func TestSweepOverdueRederives(t *testing.T) {
	db := newTestDB(t)
	store := NewPlanStore(db)
	rollup := NewRollupService(db, store)
	tree := seedTree(t, store)
	recorder := uuid.New()

	_, err := rollup.RecordTaskProgress(tree.taskA, 50, "进行中", recorder)
	require.NoError(t, err)

	// deadline lewat di-backdate langsung di kolom; progress agregat juga
	// dirusak supaya kelihatan sweep menghitung ulang, bukan cuma menandai
	past := time.Now().Add(-24 * time.Hour)
	require.NoError(t, db.Model(&planModel.SubprojectModel{}).
		Where("subproject_id = ?", tree.sub).
		Updates(map[string]interface{}{
			"subproject_deadline": past,
			"subproject_progress": 99.0,
		}).Error)
	require.NoError(t, db.Model(&planModel.ProjectModel{}).
		Where("project_id = ?", tree.project).
		Update("project_deadline", past).Error)

	swept, err := rollup.SweepOverdue()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, swept, 1)

	sub, err := store.GetSubproject(db, tree.sub)
	require.NoError(t, err)
	assert.Equal(t, planModel.StatusOverdue, sub.SubprojectStatus)
	assert.InDelta(t, 25.0, sub.SubprojectProgress, 1e-9)

	project, err := store.GetProject(db, tree.project)
	require.NoError(t, err)
	assert.Equal(t, planModel.StatusOverdue, project.ProjectStatus)
	assert.InDelta(t, 25.0, project.ProjectProgress, 1e-9)

	// sweep kedua tidak menemukan kandidat baru
	swept, err = rollup.SweepOverdue()
	require.NoError(t, err)
	assert.Equal(t, 0, swept)
}
