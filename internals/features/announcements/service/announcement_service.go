// internals/features/announcements/service/announcement_service.go
package service

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"pmhub_backend/internals/configs"
	announcementDTO "pmhub_backend/internals/features/announcements/dto"
	announcementModel "pmhub_backend/internals/features/announcements/model"
	helper "pmhub_backend/internals/helpers"
)

const thumbWidth = 320

// AnnouncementService: CRUD pengumuman + lampiran + status baca per user.
// Setiap perubahan judul/isi/prioritas mereset is_read semua user.
type AnnouncementService struct {
	DB   *gorm.DB
	Root string // <upload_root>/announcements
}

func NewAnnouncementService(db *gorm.DB) *AnnouncementService {
	return &AnnouncementService{
		DB:   db,
		Root: filepath.Join(configs.UploadRoot, "announcements"),
	}
}

func (s *AnnouncementService) Get(id uuid.UUID) (*announcementModel.AnnouncementModel, error) {
	var m announcementModel.AnnouncementModel
	if err := s.DB.First(&m, "announcement_id = ? AND announcement_deleted_at IS NULL", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "公告不存在")
		}
		return nil, err
	}
	return &m, nil
}

func (s *AnnouncementService) Create(req announcementDTO.CreateAnnouncementRequest, creatorID uuid.UUID) (*announcementModel.AnnouncementModel, error) {
	m := req.ToModel(creatorID)
	if err := s.DB.Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// Update: jika konten berubah, seluruh baris read status direset dalam
// transaksi yang sama.
func (s *AnnouncementService) Update(id uuid.UUID, req announcementDTO.UpdateAnnouncementRequest) (*announcementModel.AnnouncementModel, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var m announcementModel.AnnouncementModel
		if err := tx.First(&m, "announcement_id = ? AND announcement_deleted_at IS NULL", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "公告不存在")
			}
			return err
		}

		updates := map[string]interface{}{}
		if req.Title != nil {
			updates["announcement_title"] = *req.Title
		}
		if req.Content != nil {
			updates["announcement_content"] = *req.Content
		}
		if req.Priority != nil {
			updates["announcement_priority"] = *req.Priority
		}
		if req.IsActive != nil {
			updates["announcement_is_active"] = *req.IsActive
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&announcementModel.AnnouncementModel{}).
			Where("announcement_id = ?", id).
			Updates(updates).Error; err != nil {
			return err
		}

		if req.ContentChanged() {
			return tx.Model(&announcementModel.ReadStatusModel{}).
				Where("read_status_announcement_id = ?", id).
				Updates(map[string]interface{}{
					"read_status_is_read": false,
					"read_status_read_at": nil,
				}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

func (s *AnnouncementService) Delete(id uuid.UUID) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.Get(id); err != nil {
			return err
		}

		var atts []announcementModel.AnnouncementAttachmentModel
		if err := tx.Find(&atts, "announcement_attachment_announcement_id = ?", id).Error; err != nil {
			return err
		}
		for i := range atts {
			s.removeBlob(atts[i].AnnouncementAttachmentStoredName)
			if atts[i].AnnouncementAttachmentThumbName != nil {
				s.removeBlob(*atts[i].AnnouncementAttachmentThumbName)
			}
		}
		if err := tx.Delete(&announcementModel.AnnouncementAttachmentModel{},
			"announcement_attachment_announcement_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&announcementModel.ReadStatusModel{},
			"read_status_announcement_id = ?", id).Error; err != nil {
			return err
		}

		now := time.Now()
		return tx.Model(&announcementModel.AnnouncementModel{}).
			Where("announcement_id = ?", id).
			Update("announcement_deleted_at", now).Error
	})
}

func (s *AnnouncementService) removeBlob(name string) {
	if err := os.Remove(filepath.Join(s.Root, name)); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] hapus lampiran %s: %v", name, err)
	}
}

/* ===================== ATTACHMENTS ===================== */

// AddAttachment menyimpan lampiran sebagai <announcement_id>_<timestamp><ext>.
// Lampiran gambar mendapat thumbnail webp.
func (s *AnnouncementService) AddAttachment(announcementID uuid.UUID, originalName string, data []byte) (*announcementModel.AnnouncementAttachmentModel, error) {
	if _, err := s.Get(announcementID); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return nil, err
	}

	storedName := helper.TimestampedName(announcementID.String(), originalName)
	if err := os.WriteFile(filepath.Join(s.Root, storedName), data, 0o644); err != nil {
		return nil, err
	}

	m := &announcementModel.AnnouncementAttachmentModel{
		AnnouncementAttachmentAnnouncementID: announcementID,
		AnnouncementAttachmentOriginalName:   originalName,
		AnnouncementAttachmentStoredName:     storedName,
	}

	if isImageExt(originalName) {
		if thumb, err := s.writeThumbnail(storedName, data); err != nil {
			log.Printf("[WARN] thumbnail %s: %v", storedName, err)
		} else {
			m.AnnouncementAttachmentThumbName = &thumb
		}
	}

	if err := s.DB.Create(m).Error; err != nil {
		s.removeBlob(storedName)
		return nil, err
	}
	return m, nil
}

func (s *AnnouncementService) writeThumbnail(storedName string, data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	small := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)

	out, err := webp.EncodeRGBA(small, 80)
	if err != nil {
		return "", err
	}

	ext := filepath.Ext(storedName)
	thumbName := fmt.Sprintf("%s_thumb.webp", strings.TrimSuffix(storedName, ext))
	if err := os.WriteFile(filepath.Join(s.Root, thumbName), out, 0o644); err != nil {
		return "", err
	}
	return thumbName, nil
}

func isImageExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".webp":
		return true
	}
	return false
}

func (s *AnnouncementService) DeleteAttachment(id uuid.UUID) error {
	var m announcementModel.AnnouncementAttachmentModel
	if err := s.DB.First(&m, "announcement_attachment_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "附件不存在")
		}
		return err
	}

	s.removeBlob(m.AnnouncementAttachmentStoredName)
	if m.AnnouncementAttachmentThumbName != nil {
		s.removeBlob(*m.AnnouncementAttachmentThumbName)
	}
	return s.DB.Delete(&announcementModel.AnnouncementAttachmentModel{},
		"announcement_attachment_id = ?", id).Error
}

/* ===================== READ STATUS ===================== */

// MarkRead upsert baris (announcement, user) dengan is_read=true.
func (s *AnnouncementService) MarkRead(announcementID, userID uuid.UUID) error {
	if _, err := s.Get(announcementID); err != nil {
		return err
	}

	now := time.Now()
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var existing announcementModel.ReadStatusModel
		err := tx.
			Where("read_status_announcement_id = ? AND read_status_user_id = ?", announcementID, userID).
			Limit(1).
			Find(&existing).Error
		if err != nil {
			return err
		}

		if existing.ReadStatusID == uuid.Nil {
			return tx.Create(&announcementModel.ReadStatusModel{
				ReadStatusAnnouncementID: announcementID,
				ReadStatusUserID:         userID,
				ReadStatusIsRead:         true,
				ReadStatusReadAt:         &now,
			}).Error
		}
		return tx.Model(&announcementModel.ReadStatusModel{}).
			Where("read_status_id = ?", existing.ReadStatusID).
			Updates(map[string]interface{}{
				"read_status_is_read": true,
				"read_status_read_at": now,
			}).Error
	})
}

// IsRead: status baca user untuk satu pengumuman.
func (s *AnnouncementService) IsRead(announcementID, userID uuid.UUID) (bool, error) {
	var m announcementModel.ReadStatusModel
	err := s.DB.
		Where("read_status_announcement_id = ? AND read_status_user_id = ?", announcementID, userID).
		Limit(1).
		Find(&m).Error
	if err != nil {
		return false, err
	}
	return m.ReadStatusIsRead, nil
}

func (s *AnnouncementService) Attachments(announcementID uuid.UUID) ([]announcementModel.AnnouncementAttachmentModel, error) {
	var rows []announcementModel.AnnouncementAttachmentModel
	err := s.DB.
		Where("announcement_attachment_announcement_id = ?", announcementID).
		Order("announcement_attachment_created_at ASC").
		Find(&rows).Error
	return rows, err
}
