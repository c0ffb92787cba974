// internals/features/announcements/dto/announcement_dto.go
package dto

import (
	"github.com/google/uuid"

	announcementModel "pmhub_backend/internals/features/announcements/model"
)

type CreateAnnouncementRequest struct {
	Title    string `json:"title" validate:"required,min=1,max=200"`
	Content  string `json:"content" validate:"required"`
	Priority int    `json:"priority" validate:"min=0,max=2"`
}

func (r CreateAnnouncementRequest) ToModel(creatorID uuid.UUID) *announcementModel.AnnouncementModel {
	return &announcementModel.AnnouncementModel{
		AnnouncementTitle:       r.Title,
		AnnouncementContent:     r.Content,
		AnnouncementPriority:    r.Priority,
		AnnouncementCreatedByID: creatorID,
		AnnouncementIsActive:    true,
	}
}

type UpdateAnnouncementRequest struct {
	Title    *string `json:"title" validate:"omitempty,min=1,max=200"`
	Content  *string `json:"content"`
	Priority *int    `json:"priority" validate:"omitempty,min=0,max=2"`
	IsActive *bool   `json:"is_active"`
}

// ContentChanged: perubahan yang mereset status baca semua user.
func (r UpdateAnnouncementRequest) ContentChanged() bool {
	return r.Title != nil || r.Content != nil || r.Priority != nil
}

type AnnouncementResponse struct {
	announcementModel.AnnouncementModel
	Attachments []announcementModel.AnnouncementAttachmentModel `json:"attachments"`
	IsRead      bool                                            `json:"is_read"`
}
