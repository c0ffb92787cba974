package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	fileModel "pmhub_backend/internals/features/files/files/model"
	previewModel "pmhub_backend/internals/features/files/pdfmerge/model"
	planModel "pmhub_backend/internals/features/projects/plans/model"
)

func TestLeadingInt(t *testing.T) {
	tests := []struct {
		name   string
		wantN  int
		wantOK bool
	}{
		{"3_结题报告.pdf", 3, true},
		{"12报告.pdf", 12, true},
		{"0_封面.pdf", 0, true},
		{"报告.pdf", 0, false},
		{"_1.pdf", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		n, ok := leadingInt(tt.name)
		assert.Equal(t, tt.wantOK, ok, tt.name)
		assert.Equal(t, tt.wantN, n, tt.name)
	}
}

func TestSortPDFGroup(t *testing.T) {
	rows := []fileModel.FileModel{
		{FileOriginalName: "附录.pdf"},
		{FileOriginalName: "10_总结.pdf"},
		{FileOriginalName: "2_方案.pdf"},
		{FileOriginalName: "1_封面.pdf"},
		{FileOriginalName: "说明.pdf"},
		{FileOriginalName: "2_备份方案.pdf"},
	}
	sortPDFGroup(rows)

	got := make([]string, len(rows))
	for i := range rows {
		got[i] = rows[i].FileOriginalName
	}
	// prefix angka naik, seri 2_ diputus nama, tanpa prefix di belakang
	assert.Equal(t, []string{
		"1_封面.pdf",
		"2_备份方案.pdf",
		"2_方案.pdf",
		"10_总结.pdf",
		"附录.pdf",
		"说明.pdf",
	}, got)
}

func newMergeService(t *testing.T) *MergeService {
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
		&fileModel.FileModel{},
	))
	return NewMergeService(db, nil)
}

func seedTaskFile(t *testing.T, db *gorm.DB, projectID, taskID uuid.UUID, original, stored string, deleted bool) *fileModel.FileModel {
	t.Helper()
	f := fileModel.FileModel{
		FileProjectID:    projectID,
		FileTaskID:       &taskID,
		FileOriginalName: original,
		FileStoredName:   stored,
		FileType:         1,
		FileUploaderID:   uuid.New(),
	}
	if deleted {
		now := time.Now()
		f.FileDeletedAt = &now
	}
	require.NoError(t, db.Create(&f).Error)
	return &f
}

// Dua pemanggilan di data yang sama harus menghasilkan urutan item dan TOC
// yang identik: subproject/stage/task urut nama, file per task urut prefix
// angka (01 -> 2 -> 10), non-PDF dan file terhapus tidak ikut.
func TestOrderedPDFListDeterministic(t *testing.T) {
	svc := newMergeService(t)
	db := svc.DB

	project := planModel.ProjectModel{
		ProjectName:    "桥梁检测项目",
		ProjectOwnerID: uuid.New(),
		ProjectStatus:  planModel.StatusPending,
	}
	require.NoError(t, db.Create(&project).Error)

	sub1 := planModel.SubprojectModel{
		SubprojectProjectID: project.ProjectID,
		SubprojectName:      "01_现场勘查",
		SubprojectStatus:    planModel.StatusPending,
	}
	sub2 := planModel.SubprojectModel{
		SubprojectProjectID: project.ProjectID,
		SubprojectName:      "02_资料整理",
		SubprojectStatus:    planModel.StatusPending,
	}
	require.NoError(t, db.Create(&sub1).Error)
	require.NoError(t, db.Create(&sub2).Error)

	stage1 := planModel.StageModel{
		StageSubprojectID: sub1.SubprojectID,
		StageName:         "外观检查",
		StageStatus:       planModel.StatusPending,
	}
	stage2 := planModel.StageModel{
		StageSubprojectID: sub2.SubprojectID,
		StageName:         "归档",
		StageStatus:       planModel.StatusPending,
	}
	require.NoError(t, db.Create(&stage1).Error)
	require.NoError(t, db.Create(&stage2).Error)

	taskA := planModel.TaskModel{TaskStageID: stage1.StageID, TaskName: "任务A", TaskStatus: planModel.StatusPending}
	taskB := planModel.TaskModel{TaskStageID: stage1.StageID, TaskName: "任务B", TaskStatus: planModel.StatusPending}
	taskC := planModel.TaskModel{TaskStageID: stage2.StageID, TaskName: "任务C", TaskStatus: planModel.StatusPending}
	require.NoError(t, db.Create(&taskA).Error)
	require.NoError(t, db.Create(&taskB).Error)
	require.NoError(t, db.Create(&taskC).Error)

	seedTaskFile(t, db, project.ProjectID, taskA.TaskID, "10_正文.pdf", "10_正文_a.pdf", false)
	appendix := seedTaskFile(t, db, project.ProjectID, taskA.TaskID, "2_附录.pdf", "2_附录_b.pdf", false)
	seedTaskFile(t, db, project.ProjectID, taskA.TaskID, "01_介绍.pdf", "01_介绍_c.pdf", false)
	seedTaskFile(t, db, project.ProjectID, taskA.TaskID, "报告.docx", "报告_d.docx", false)
	seedTaskFile(t, db, project.ProjectID, taskA.TaskID, "伪装.pdf", "伪装_e.tmp", false)
	seedTaskFile(t, db, project.ProjectID, taskA.TaskID, "删除版.pdf", "删除版_f.pdf", true)
	seedTaskFile(t, db, project.ProjectID, taskB.TaskID, "附件.pdf", "附件_g.pdf", false)

	items, toc, err := svc.OrderedPDFList(project.ProjectID, nil)
	require.NoError(t, err)

	names := make([]string, len(items))
	for i := range items {
		names[i] = items[i].OriginalName
	}
	assert.Equal(t, []string{"01_介绍.pdf", "2_附录.pdf", "10_正文.pdf", "附件.pdf"}, names)

	assert.Equal(t, []tocEntry{
		{Level: 1, Label: "桥梁检测项目"},
		{Level: 2, Label: "01_现场勘查"},
		{Level: 3, Label: "外观检查"},
		{Level: 4, Label: "任务A"},
		{Level: 4, Label: "任务B"},
		{Level: 2, Label: "02_资料整理"},
		{Level: 3, Label: "归档"},
		{Level: 4, Label: "任务C"},
	}, toc)

	itemsAgain, tocAgain, err := svc.OrderedPDFList(project.ProjectID, nil)
	require.NoError(t, err)
	assert.Equal(t, items, itemsAgain)
	assert.Equal(t, toc, tocAgain)

	// subset terpilih tetap mengikuti urutan pohon, bukan urutan argumen
	sel, _, err := svc.OrderedPDFList(project.ProjectID, []uuid.UUID{items[2].FileID, appendix.FileID})
	require.NoError(t, err)
	require.Len(t, sel, 2)
	assert.Equal(t, "2_附录.pdf", sel[0].OriginalName)
	assert.Equal(t, "10_正文.pdf", sel[1].OriginalName)
}

func newPreviewStore(t *testing.T) *PreviewStore {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&previewModel.PreviewSessionModel{}))
	return NewPreviewStore(db, t.TempDir(), time.Hour)
}

func TestPreviewStoreCreateAndDrop(t *testing.T) {
	store := newPreviewStore(t)
	projectID := uuid.New()

	sess, err := store.Create(projectID, []byte(`{"toc_included":true}`))
	require.NoError(t, err)

	info, err := os.Stat(sess.PreviewSessionStagingDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	require.NoError(t, store.Drop(sess.PreviewSessionID))
	_, err = os.Stat(sess.PreviewSessionStagingDir)
	assert.True(t, os.IsNotExist(err))

	var count int64
	require.NoError(t, store.DB.Model(&previewModel.PreviewSessionModel{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestPreviewStorePathStaysUnderRoot(t *testing.T) {
	store := newPreviewStore(t)
	id := uuid.New()

	p, err := store.Path(id, 3)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.Root, id.String(), "page_3.png"), p)

	_, err = store.Path(id, -1)
	require.Error(t, err)
}

func TestPreviewStoreDropByProject(t *testing.T) {
	store := newPreviewStore(t)
	projectID := uuid.New()

	a, err := store.Create(projectID, nil)
	require.NoError(t, err)
	b, err := store.Create(projectID, nil)
	require.NoError(t, err)
	other, err := store.Create(uuid.New(), nil)
	require.NoError(t, err)

	require.NoError(t, store.DropByProject(projectID))

	for _, dir := range []string{a.PreviewSessionStagingDir, b.PreviewSessionStagingDir} {
		_, err := os.Stat(dir)
		assert.True(t, os.IsNotExist(err))
	}
	_, err = os.Stat(other.PreviewSessionStagingDir)
	assert.NoError(t, err)
}

func TestPreviewStoreReapOlderThan(t *testing.T) {
	store := newPreviewStore(t)

	stale, err := store.Create(uuid.New(), nil)
	require.NoError(t, err)
	fresh, err := store.Create(uuid.New(), nil)
	require.NoError(t, err)

	require.NoError(t, store.DB.Model(&previewModel.PreviewSessionModel{}).
		Where("preview_session_id = ?", stale.PreviewSessionID).
		Update("preview_session_created_at", time.Now().Add(-2*time.Hour)).Error)

	reaped, err := store.ReapOlderThan(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, reaped)

	_, err = os.Stat(stale.PreviewSessionStagingDir)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh.PreviewSessionStagingDir)
	assert.NoError(t, err)
}
