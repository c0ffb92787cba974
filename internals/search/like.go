// internals/search/like.go
package search

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	fileModel "pmhub_backend/internals/features/files/files/model"
)

// Like adalah fallback tanpa Meilisearch: substring match langsung ke
// tabel files. Hanya nama file yang dicari; isi dokumen tidak.
type Like struct {
	DB *gorm.DB
}

func NewLike(db *gorm.DB) *Like { return &Like{DB: db} }

func (l *Like) SupportsContentSearch() bool { return false }

// IndexFile no-op: baris DB sudah jadi index-nya.
func (l *Like) IndexFile(doc FileDoc) {}

func (l *Like) RemoveFile(fileID uuid.UUID) {}

func (l *Like) SearchFiles(q Query) ([]uuid.UUID, error) {
	limit := q.Limit
	if limit == 0 {
		limit = 20
	}

	pattern := "%" + escapeLike(q.Text) + "%"
	tx := l.DB.Model(&fileModel.FileModel{}).
		Where("file_deleted_at IS NULL").
		Where("file_original_name LIKE ?", pattern)
	if q.ProjectID != nil {
		tx = tx.Where("file_project_id = ?", *q.ProjectID)
	}

	var ids []uuid.UUID
	err := tx.Limit(limit).Pluck("file_id", &ids).Error
	return ids, err
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
