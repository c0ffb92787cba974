package search

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pmhub_backend/internals/constants"
	fileModel "pmhub_backend/internals/features/files/files/model"
)

func newLikeSearcher(t *testing.T) *Like {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&fileModel.FileModel{}))
	return NewLike(db)
}

func seedFile(t *testing.T, db *gorm.DB, projectID uuid.UUID, name string) uuid.UUID {
	t.Helper()
	m := fileModel.FileModel{
		FileProjectID:    projectID,
		FileOriginalName: name,
		FileStoredName:   uuid.NewString() + "_" + name,
		FileType:         constants.DetectFileTypeFromExt(name),
		FileUploaderID:   uuid.New(),
	}
	require.NoError(t, db.Create(&m).Error)
	return m.FileID
}

func TestLikeSearchByName(t *testing.T) {
	l := newLikeSearcher(t)
	projectID := uuid.New()

	want := seedFile(t, l.DB, projectID, "结题报告.pdf")
	seedFile(t, l.DB, projectID, "现场照片.png")

	ids, err := l.SearchFiles(Query{Text: "报告"})
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, want, ids[0])
}

func TestLikeSearchScopedToProject(t *testing.T) {
	l := newLikeSearcher(t)
	projectA := uuid.New()
	projectB := uuid.New()

	inA := seedFile(t, l.DB, projectA, "方案.pdf")
	seedFile(t, l.DB, projectB, "方案.pdf")

	ids, err := l.SearchFiles(Query{Text: "方案", ProjectID: &projectA})
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, inA, ids[0])
}

func TestLikeSearchSkipsDeleted(t *testing.T) {
	l := newLikeSearcher(t)
	projectID := uuid.New()

	id := seedFile(t, l.DB, projectID, "旧版报告.pdf")
	now := time.Now()
	require.NoError(t, l.DB.Model(&fileModel.FileModel{}).
		Where("file_id = ?", id).
		Update("file_deleted_at", now).Error)

	ids, err := l.SearchFiles(Query{Text: "报告"})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestLikeNoContentSearch(t *testing.T) {
	l := newLikeSearcher(t)
	assert.False(t, l.SupportsContentSearch())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c\\d`, escapeLike(`c\d`))
	assert.Equal(t, "报告", escapeLike("报告"))
}
