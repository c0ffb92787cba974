package service

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	backupModel "pmhub_backend/internals/features/backup/model"
	"pmhub_backend/internals/mailer"
)

func newBackupService(t *testing.T, sources []string, retention int) *BackupService {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&backupModel.BackupRunModel{}))

	return &BackupService{
		DB:        db,
		Mailer:    &mailer.Mailer{}, // tidak terkonfigurasi -> laporan dilewati
		Sources:   sources,
		Dir:       t.TempDir(),
		Retention: retention,
	}
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestZipDir(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, map[string]string{
		"a.txt":        "hello",
		"nested/b.txt": "world",
	})

	dst := filepath.Join(t.TempDir(), "out.zip")
	require.NoError(t, zipDir(src, dst))

	zr, err := zip.OpenReader(dst)
	require.NoError(t, err)
	defer zr.Close()

	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	assert.True(t, names["a.txt"])
	assert.True(t, names["nested/b.txt"])
}

func TestZipDirRejectsFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	err := zipDir(src, filepath.Join(t.TempDir(), "out.zip"))
	require.Error(t, err)
}

func TestPruneKeepsNewest(t *testing.T) {
	svc := newBackupService(t, nil, 2)

	// nama memuat timestamp: leksikal = kronologis
	names := []string{
		"uploads_20260101_020000.zip",
		"uploads_20260102_020000.zip",
		"uploads_20260103_020000.zip",
		"uploads_20260104_020000.zip",
		"other_20260101_020000.zip", // source lain tidak tersentuh
	}
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(svc.Dir, n), []byte("zip"), 0o644))
	}

	removed, err := svc.prune("uploads")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	entries, err := os.ReadDir(svc.Dir)
	require.NoError(t, err)
	left := map[string]bool{}
	for _, e := range entries {
		left[e.Name()] = true
	}
	assert.True(t, left["uploads_20260104_020000.zip"])
	assert.True(t, left["uploads_20260103_020000.zip"])
	assert.False(t, left["uploads_20260102_020000.zip"])
	assert.False(t, left["uploads_20260101_020000.zip"])
	assert.True(t, left["other_20260101_020000.zip"])
}

func TestRunRecordsRow(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, map[string]string{"a.txt": "data"})

	svc := newBackupService(t, []string{src}, 3)

	run, err := svc.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, run.BackupRunArchives)
	assert.Nil(t, run.BackupRunError)
	assert.NotNil(t, run.BackupRunFinishedAt)
	assert.False(t, run.BackupRunMailed)

	var count int64
	require.NoError(t, svc.DB.Model(&backupModel.BackupRunModel{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRunWithoutSources(t *testing.T) {
	svc := newBackupService(t, nil, 3)

	run, err := svc.Run()
	require.Error(t, err)
	require.NotNil(t, run.BackupRunError)
	assert.Equal(t, 0, run.BackupRunArchives)
}
