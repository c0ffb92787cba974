// internals/features/files/pdfmerge/service/preview_store.go
package service

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	previewModel "pmhub_backend/internals/features/files/pdfmerge/model"
)

// PreviewStore memetakan preview_session_id (opaque) ke satu staging dir
// di bawah root milik server. Semua path divalidasi agar tidak keluar root.
type PreviewStore struct {
	DB   *gorm.DB
	Root string // <static_root>/temp_preview_images
	TTL  time.Duration
}

func NewPreviewStore(db *gorm.DB, staticRoot string, ttl time.Duration) *PreviewStore {
	return &PreviewStore{
		DB:   db,
		Root: filepath.Join(staticRoot, "temp_preview_images"),
		TTL:  ttl,
	}
}

// Create membuat sesi preview baru beserta staging dir-nya.
func (s *PreviewStore) Create(projectID uuid.UUID, config []byte) (*previewModel.PreviewSessionModel, error) {
	id := uuid.New()
	dir := filepath.Join(s.Root, id.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	m := &previewModel.PreviewSessionModel{
		PreviewSessionID:         id,
		PreviewSessionProjectID:  projectID,
		PreviewSessionStagingDir: dir,
		PreviewSessionConfig:     config,
	}
	if err := s.DB.Create(m).Error; err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	return m, nil
}

// Path mengembalikan path PNG halaman ke-page. Input divalidasi; path yang
// keluar dari root ditolak.
func (s *PreviewStore) Path(id uuid.UUID, page int) (string, error) {
	if page < 0 {
		return "", fmt.Errorf("invalid page index %d", page)
	}
	p := filepath.Join(s.Root, id.String(), fmt.Sprintf("page_%d.png", page))
	clean := filepath.Clean(p)
	if !strings.HasPrefix(clean, filepath.Clean(s.Root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("path escapes preview root")
	}
	return clean, nil
}

// SetPageCount dicatat setelah seluruh PNG ditulis.
func (s *PreviewStore) SetPageCount(id uuid.UUID, n int) error {
	return s.DB.Model(&previewModel.PreviewSessionModel{}).
		Where("preview_session_id = ?", id).
		Update("preview_session_page_count", n).Error
}

// Drop menghapus staging dir dan baris sesi.
func (s *PreviewStore) Drop(id uuid.UUID) error {
	var m previewModel.PreviewSessionModel
	err := s.DB.First(&m, "preview_session_id = ?", id).Error
	if err != nil {
		return err
	}
	if err := os.RemoveAll(m.PreviewSessionStagingDir); err != nil {
		log.Printf("[WARN] hapus staging dir %s: %v", m.PreviewSessionStagingDir, err)
	}
	return s.DB.Delete(&previewModel.PreviewSessionModel{}, "preview_session_id = ?", id).Error
}

// DropByProject menutup semua sesi preview milik satu project (dipakai
// saat finalize).
func (s *PreviewStore) DropByProject(projectID uuid.UUID) error {
	var rows []previewModel.PreviewSessionModel
	if err := s.DB.Find(&rows, "preview_session_project_id = ?", projectID).Error; err != nil {
		return err
	}
	for i := range rows {
		if err := s.Drop(rows[i].PreviewSessionID); err != nil {
			log.Printf("[WARN] drop preview %s: %v", rows[i].PreviewSessionID, err)
		}
	}
	return nil
}

// ReapOlderThan menghapus sesi yang lebih tua dari ttl. Dipanggil worker
// periodik.
func (s *PreviewStore) ReapOlderThan(ttl time.Duration) (int, error) {
	cutoff := time.Now().Add(-ttl)

	var stale []previewModel.PreviewSessionModel
	if err := s.DB.
		Where("preview_session_created_at < ?", cutoff).
		Find(&stale).Error; err != nil {
		return 0, err
	}

	reaped := 0
	for i := range stale {
		if err := s.Drop(stale[i].PreviewSessionID); err != nil {
			log.Printf("[ERROR] reap preview %s: %v", stale[i].PreviewSessionID, err)
			continue
		}
		reaped++
	}
	return reaped, nil
}
