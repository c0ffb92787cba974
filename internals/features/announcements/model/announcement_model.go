package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnnouncementModel struct {
	AnnouncementID          uuid.UUID `gorm:"column:announcement_id;type:uuid;primaryKey" json:"announcement_id"`
	AnnouncementTitle       string    `gorm:"column:announcement_title;type:varchar(200);not null" json:"announcement_title"`
	AnnouncementContent     string    `gorm:"column:announcement_content;type:text;not null" json:"announcement_content"`
	AnnouncementPriority    int       `gorm:"column:announcement_priority;type:smallint;not null;default:0" json:"announcement_priority"`
	AnnouncementCreatedByID uuid.UUID `gorm:"column:announcement_created_by_id;type:uuid;not null" json:"announcement_created_by_id"`

	AnnouncementIsActive bool `gorm:"column:announcement_is_active;not null;default:true" json:"announcement_is_active"`

	AnnouncementCreatedAt time.Time  `gorm:"column:announcement_created_at;not null;autoCreateTime" json:"announcement_created_at"`
	AnnouncementUpdatedAt time.Time  `gorm:"column:announcement_updated_at;not null;autoUpdateTime" json:"announcement_updated_at"`
	AnnouncementDeletedAt *time.Time `gorm:"column:announcement_deleted_at;index" json:"announcement_deleted_at,omitempty"`
}

func (AnnouncementModel) TableName() string { return "announcements" }

// ID diisi aplikasi sebelum insert.
func (m *AnnouncementModel) BeforeCreate(tx *gorm.DB) error {
	if m.AnnouncementID == uuid.Nil {
		m.AnnouncementID = uuid.New()
	}
	return nil
}

type AnnouncementAttachmentModel struct {
	AnnouncementAttachmentID             uuid.UUID `gorm:"column:announcement_attachment_id;type:uuid;primaryKey" json:"announcement_attachment_id"`
	AnnouncementAttachmentAnnouncementID uuid.UUID `gorm:"column:announcement_attachment_announcement_id;type:uuid;not null;index" json:"announcement_attachment_announcement_id"`

	AnnouncementAttachmentOriginalName string `gorm:"column:announcement_attachment_original_name;type:varchar(255);not null" json:"announcement_attachment_original_name"`
	AnnouncementAttachmentStoredName   string `gorm:"column:announcement_attachment_stored_name;type:varchar(255);not null" json:"announcement_attachment_stored_name"`

	// thumbnail webp untuk lampiran gambar; NULL untuk tipe lain
	AnnouncementAttachmentThumbName *string `gorm:"column:announcement_attachment_thumb_name;type:varchar(255)" json:"announcement_attachment_thumb_name,omitempty"`

	AnnouncementAttachmentCreatedAt time.Time `gorm:"column:announcement_attachment_created_at;not null;autoCreateTime" json:"announcement_attachment_created_at"`
}

func (AnnouncementAttachmentModel) TableName() string { return "announcement_attachments" }

func (m *AnnouncementAttachmentModel) BeforeCreate(tx *gorm.DB) error {
	if m.AnnouncementAttachmentID == uuid.Nil {
		m.AnnouncementAttachmentID = uuid.New()
	}
	return nil
}

// Satu baris per (announcement, user); is_read direset false saat konten berubah.
type ReadStatusModel struct {
	ReadStatusID             uuid.UUID `gorm:"column:read_status_id;type:uuid;primaryKey" json:"read_status_id"`
	ReadStatusAnnouncementID uuid.UUID `gorm:"column:read_status_announcement_id;type:uuid;not null;uniqueIndex:uq_read_status_ann_user" json:"read_status_announcement_id"`
	ReadStatusUserID         uuid.UUID `gorm:"column:read_status_user_id;type:uuid;not null;uniqueIndex:uq_read_status_ann_user" json:"read_status_user_id"`

	ReadStatusIsRead bool       `gorm:"column:read_status_is_read;not null;default:false" json:"read_status_is_read"`
	ReadStatusReadAt *time.Time `gorm:"column:read_status_read_at" json:"read_status_read_at,omitempty"`
}

func (ReadStatusModel) TableName() string { return "announcement_read_statuses" }

func (m *ReadStatusModel) BeforeCreate(tx *gorm.DB) error {
	if m.ReadStatusID == uuid.Nil {
		m.ReadStatusID = uuid.New()
	}
	return nil
}
