package service

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	announcementDTO "pmhub_backend/internals/features/announcements/dto"
	announcementModel "pmhub_backend/internals/features/announcements/model"
)

func newAnnouncementService(t *testing.T) *AnnouncementService {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&announcementModel.AnnouncementModel{},
		&announcementModel.AnnouncementAttachmentModel{},
		&announcementModel.ReadStatusModel{},
	))
	return &AnnouncementService{DB: db, Root: t.TempDir()}
}

func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }

func createAnnouncement(t *testing.T, svc *AnnouncementService) *announcementModel.AnnouncementModel {
	t.Helper()
	m, err := svc.Create(announcementDTO.CreateAnnouncementRequest{
		Title:    "系统维护通知",
		Content:  "本周六凌晨停机维护",
		Priority: 1,
	}, uuid.New())
	require.NoError(t, err)
	return m
}

func TestMarkReadUpsert(t *testing.T) {
	svc := newAnnouncementService(t)
	ann := createAnnouncement(t, svc)
	userID := uuid.New()

	read, err := svc.IsRead(ann.AnnouncementID, userID)
	require.NoError(t, err)
	assert.False(t, read)

	require.NoError(t, svc.MarkRead(ann.AnnouncementID, userID))
	require.NoError(t, svc.MarkRead(ann.AnnouncementID, userID))

	// upsert: tetap satu baris per (announcement, user)
	var count int64
	require.NoError(t, svc.DB.Model(&announcementModel.ReadStatusModel{}).
		Where("read_status_announcement_id = ? AND read_status_user_id = ?", ann.AnnouncementID, userID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)

	read, err = svc.IsRead(ann.AnnouncementID, userID)
	require.NoError(t, err)
	assert.True(t, read)
}

func TestUpdateContentResetsReadStatus(t *testing.T) {
	svc := newAnnouncementService(t)
	ann := createAnnouncement(t, svc)

	userA := uuid.New()
	userB := uuid.New()
	require.NoError(t, svc.MarkRead(ann.AnnouncementID, userA))
	require.NoError(t, svc.MarkRead(ann.AnnouncementID, userB))

	_, err := svc.Update(ann.AnnouncementID, announcementDTO.UpdateAnnouncementRequest{
		Content: strPtr("维护时间改到周日凌晨"),
	})
	require.NoError(t, err)

	for _, userID := range []uuid.UUID{userA, userB} {
		read, err := svc.IsRead(ann.AnnouncementID, userID)
		require.NoError(t, err)
		assert.False(t, read)
	}

	var row announcementModel.ReadStatusModel
	require.NoError(t, svc.DB.
		First(&row, "read_status_announcement_id = ? AND read_status_user_id = ?", ann.AnnouncementID, userA).Error)
	assert.Nil(t, row.ReadStatusReadAt)
}

func TestUpdateActiveOnlyKeepsReadStatus(t *testing.T) {
	svc := newAnnouncementService(t)
	ann := createAnnouncement(t, svc)
	userID := uuid.New()
	require.NoError(t, svc.MarkRead(ann.AnnouncementID, userID))

	_, err := svc.Update(ann.AnnouncementID, announcementDTO.UpdateAnnouncementRequest{
		IsActive: boolPtr(false),
	})
	require.NoError(t, err)

	read, err := svc.IsRead(ann.AnnouncementID, userID)
	require.NoError(t, err)
	assert.True(t, read)
}

func TestAddAttachmentImageThumbnail(t *testing.T) {
	svc := newAnnouncementService(t)
	ann := createAnnouncement(t, svc)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 640, 480))))

	att, err := svc.AddAttachment(ann.AnnouncementID, "现场照片.png", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "现场照片.png", att.AnnouncementAttachmentOriginalName)

	_, err = os.Stat(filepath.Join(svc.Root, att.AnnouncementAttachmentStoredName))
	require.NoError(t, err)

	require.NotNil(t, att.AnnouncementAttachmentThumbName)
	_, err = os.Stat(filepath.Join(svc.Root, *att.AnnouncementAttachmentThumbName))
	require.NoError(t, err)
}

func TestAddAttachmentNonImageNoThumbnail(t *testing.T) {
	svc := newAnnouncementService(t)
	ann := createAnnouncement(t, svc)

	att, err := svc.AddAttachment(ann.AnnouncementID, "说明.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Nil(t, att.AnnouncementAttachmentThumbName)
}

func TestDeleteAnnouncementRemovesBlobs(t *testing.T) {
	svc := newAnnouncementService(t)
	ann := createAnnouncement(t, svc)

	att, err := svc.AddAttachment(ann.AnnouncementID, "说明.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ann.AnnouncementID))

	_, err = os.Stat(filepath.Join(svc.Root, att.AnnouncementAttachmentStoredName))
	assert.True(t, os.IsNotExist(err))

	// soft delete: Get tidak menemukan lagi
	_, err = svc.Get(ann.AnnouncementID)
	require.Error(t, err)

	var count int64
	require.NoError(t, svc.DB.Model(&announcementModel.AnnouncementAttachmentModel{}).
		Where("announcement_attachment_announcement_id = ?", ann.AnnouncementID).
		Count(&count).Error)
	assert.EqualValues(t, 0, count)
}
