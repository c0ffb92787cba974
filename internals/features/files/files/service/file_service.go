// internals/features/files/files/service/file_service.go
package service

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"pmhub_backend/internals/configs"
	"pmhub_backend/internals/constants"
	fileModel "pmhub_backend/internals/features/files/files/model"
	planService "pmhub_backend/internals/features/projects/plans/service"
	helper "pmhub_backend/internals/helpers"
	"pmhub_backend/internals/search"
)

// FileService: blob di UPLOAD_ROOT, metadata di tabel files, index di
// backend pencarian. Ketiganya dijaga konsisten: hapus baris = hapus blob
// + hapus entri index.
type FileService struct {
	DB       *gorm.DB
	Plans    *planService.PlanStore
	Searcher search.Searcher
	Root     string
}

func NewFileService(db *gorm.DB, searcher search.Searcher) *FileService {
	return &FileService{
		DB:       db,
		Plans:    planService.NewPlanStore(db),
		Searcher: searcher,
		Root:     configs.UploadRoot,
	}
}

type UploadScope struct {
	ProjectID    uuid.UUID
	SubprojectID *uuid.UUID
	StageID      *uuid.UUID
	TaskID       *uuid.UUID
}

// resolveScope memvalidasi rantai scope dan melengkapi ancestor dari node
// terdalam yang diberikan.
func (s *FileService) resolveScope(sc *UploadScope) error {
	if sc.TaskID != nil {
		task, err := s.Plans.GetTask(s.DB, *sc.TaskID)
		if err != nil {
			return err
		}
		sc.StageID = &task.TaskStageID
	}
	if sc.StageID != nil {
		stage, err := s.Plans.GetStage(s.DB, *sc.StageID)
		if err != nil {
			return err
		}
		sc.SubprojectID = &stage.StageSubprojectID
	}
	if sc.SubprojectID != nil {
		sub, err := s.Plans.GetSubproject(s.DB, *sc.SubprojectID)
		if err != nil {
			return err
		}
		sc.ProjectID = sub.SubprojectProjectID
	}
	if _, err := s.Plans.GetProject(s.DB, sc.ProjectID); err != nil {
		return err
	}
	return nil
}

// Save menulis blob lalu membuat baris metadata. originalName dipertahankan
// apa adanya untuk download; nama simpan disanitasi dan anti-tabrakan.
func (s *FileService) Save(sc UploadScope, uploaderID uuid.UUID, originalName string, data []byte, contentText *string) (*fileModel.FileModel, error) {
	if !constants.IsAllowedUploadExt(originalName) {
		return nil, fiber.NewError(fiber.StatusBadRequest, "不支持的文件类型")
	}
	if err := s.resolveScope(&sc); err != nil {
		return nil, err
	}

	storedName := helper.StoredName(originalName, func(name string) bool {
		var n int64
		s.DB.Model(&fileModel.FileModel{}).
			Where("file_stored_name = ?", name).
			Count(&n)
		if n > 0 {
			return true
		}
		_, err := os.Stat(filepath.Join(s.Root, name))
		return err == nil
	})

	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return nil, err
	}
	dst := filepath.Join(s.Root, storedName)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return nil, err
	}

	m := &fileModel.FileModel{
		FileProjectID:    sc.ProjectID,
		FileSubprojectID: sc.SubprojectID,
		FileStageID:      sc.StageID,
		FileTaskID:       sc.TaskID,
		FileOriginalName: originalName,
		FileStoredName:   storedName,
		FileType:         constants.DetectFileTypeFromExt(originalName),
		FileSize:         int64(len(data)),
		FileUploaderID:   uploaderID,
		FileContentText:  contentText,
	}
	if err := s.DB.Create(m).Error; err != nil {
		os.Remove(dst)
		return nil, err
	}

	doc := search.FileDoc{
		FileID:       m.FileID.String(),
		ProjectID:    m.FileProjectID.String(),
		OriginalName: m.FileOriginalName,
	}
	if contentText != nil {
		doc.Content = *contentText
	}
	s.Searcher.IndexFile(doc)

	return m, nil
}

func (s *FileService) Get(id uuid.UUID) (*fileModel.FileModel, error) {
	var m fileModel.FileModel
	if err := s.DB.First(&m, "file_id = ? AND file_deleted_at IS NULL", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "文件不存在")
		}
		return nil, err
	}
	return &m, nil
}

// BlobPath: lokasi blob untuk download.
func (s *FileService) BlobPath(m *fileModel.FileModel) string {
	return filepath.Join(s.Root, m.FileStoredName)
}

// Delete menghapus baris, blob, dan entri index sekaligus.
func (s *FileService) Delete(id uuid.UUID) error {
	m, err := s.Get(id)
	if err != nil {
		return err
	}

	now := time.Now()
	if err := s.DB.Model(&fileModel.FileModel{}).
		Where("file_id = ?", id).
		Update("file_deleted_at", now).Error; err != nil {
		return err
	}

	if err := os.Remove(s.BlobPath(m)); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] hapus blob %s: %v", m.FileStoredName, err)
	}
	s.Searcher.RemoveFile(id)
	return nil
}

type ListFilter struct {
	ProjectID    *uuid.UUID
	SubprojectID *uuid.UUID
	StageID      *uuid.UUID
	TaskID       *uuid.UUID
	FileType     *int
	NameQuery    string
}

// List: filter metadata biasa, tanpa backend pencarian.
func (s *FileService) List(f ListFilter, p helper.Paging) ([]fileModel.FileModel, int64, error) {
	tx := s.DB.Model(&fileModel.FileModel{}).Where("file_deleted_at IS NULL")
	if f.ProjectID != nil {
		tx = tx.Where("file_project_id = ?", *f.ProjectID)
	}
	if f.SubprojectID != nil {
		tx = tx.Where("file_subproject_id = ?", *f.SubprojectID)
	}
	if f.StageID != nil {
		tx = tx.Where("file_stage_id = ?", *f.StageID)
	}
	if f.TaskID != nil {
		tx = tx.Where("file_task_id = ?", *f.TaskID)
	}
	if f.FileType != nil {
		tx = tx.Where("file_type = ?", *f.FileType)
	}
	if q := strings.TrimSpace(f.NameQuery); q != "" {
		tx = tx.Where("file_original_name LIKE ?", "%"+q+"%")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []fileModel.FileModel
	err := tx.Order("file_uploaded_at DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&rows).Error
	return rows, total, err
}

// Search lewat backend pencarian (meili / LIKE) lalu hidrasi baris DB
// dengan urutan relevansi backend.
func (s *FileService) Search(text string, projectID *uuid.UUID, limit int) ([]fileModel.FileModel, error) {
	ids, err := s.Searcher.SearchFiles(search.Query{
		Text:      text,
		ProjectID: projectID,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []fileModel.FileModel{}, nil
	}

	var rows []fileModel.FileModel
	if err := s.DB.
		Where("file_id IN ? AND file_deleted_at IS NULL", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]fileModel.FileModel, len(rows))
	for i := range rows {
		byID[rows[i].FileID] = rows[i]
	}
	out := make([]fileModel.FileModel, 0, len(ids))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}
