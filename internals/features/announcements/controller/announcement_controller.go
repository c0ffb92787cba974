// internals/features/announcements/controller/announcement_controller.go
package controller

import (
	"io"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"pmhub_backend/internals/constants"
	announcementDTO "pmhub_backend/internals/features/announcements/dto"
	announcementModel "pmhub_backend/internals/features/announcements/model"
	announcementService "pmhub_backend/internals/features/announcements/service"
	helper "pmhub_backend/internals/helpers"
	authMw "pmhub_backend/internals/middlewares/auth"
)

var validateAnnouncement = validator.New()

type AnnouncementController struct {
	DB      *gorm.DB
	Service *announcementService.AnnouncementService
}

func NewAnnouncementController(db *gorm.DB) *AnnouncementController {
	return &AnnouncementController{DB: db, Service: announcementService.NewAnnouncementService(db)}
}

// GET /api/announcements — aktif saja untuk member; admin bisa ?all=true
func (h *AnnouncementController) ListAnnouncements(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 100)
	userID, err := authMw.GetUserUUID(c)
	if err != nil {
		return err
	}

	tx := h.DB.Model(&announcementModel.AnnouncementModel{}).
		Where("announcement_deleted_at IS NULL")
	if !(c.Query("all") == "true" && authMw.GetUserRole(c) == constants.RoleAdmin) {
		tx = tx.Where("announcement_is_active = ?", true)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "查询失败")
	}

	var rows []announcementModel.AnnouncementModel
	if err := tx.Order("announcement_priority DESC").
		Order("announcement_created_at DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "查询失败")
	}

	out := make([]announcementDTO.AnnouncementResponse, 0, len(rows))
	for i := range rows {
		atts, err := h.Service.Attachments(rows[i].AnnouncementID)
		if err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, "查询失败")
		}
		isRead, err := h.Service.IsRead(rows[i].AnnouncementID, userID)
		if err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, "查询失败")
		}
		out = append(out, announcementDTO.AnnouncementResponse{
			AnnouncementModel: rows[i],
			Attachments:       atts,
			IsRead:            isRead,
		})
	}
	return helper.JsonList(c, "", out, helper.BuildPagination(total, p.Page, p.PerPage))
}

// POST /api/announcements
func (h *AnnouncementController) CreateAnnouncement(c *fiber.Ctx) error {
	userID, err := authMw.GetUserUUID(c)
	if err != nil {
		return err
	}

	var req announcementDTO.CreateAnnouncementRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "请求体格式错误")
	}
	if err := validateAnnouncement.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	m, err := h.Service.Create(req, userID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "公告已发布", m)
}

// PUT /api/announcements/:id — perubahan konten mereset status baca semua user
func (h *AnnouncementController) UpdateAnnouncement(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "无效的公告 ID")
	}

	var req announcementDTO.UpdateAnnouncementRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "请求体格式错误")
	}
	if err := validateAnnouncement.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	m, err := h.Service.Update(id, req)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "公告已更新", m)
}

// DELETE /api/announcements/:id
func (h *AnnouncementController) DeleteAnnouncement(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "无效的公告 ID")
	}
	if err := h.Service.Delete(id); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "公告已删除", fiber.Map{"announcement_id": id})
}

// POST /api/announcements/:id/attachments — multipart field "file"
func (h *AnnouncementController) UploadAttachment(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "无效的公告 ID")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "缺少上传文件")
	}
	if !constants.IsAllowedUploadExt(fh.Filename) {
		return helper.JsonError(c, fiber.StatusBadRequest, "不支持的文件类型")
	}

	src, err := fh.Open()
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "无法读取上传文件")
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "无法读取上传文件")
	}

	m, err := h.Service.AddAttachment(id, fh.Filename, data)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "附件已上传", m)
}

// GET /api/announcements/attachments/:id/download
func (h *AnnouncementController) DownloadAttachment(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "无效的附件 ID")
	}

	var m announcementModel.AnnouncementAttachmentModel
	if err := h.DB.First(&m, "announcement_attachment_id = ?", id).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "附件不存在")
	}
	return c.Download(
		filepath.Join(h.Service.Root, m.AnnouncementAttachmentStoredName),
		m.AnnouncementAttachmentOriginalName,
	)
}

// DELETE /api/announcements/attachments/:id
func (h *AnnouncementController) DeleteAttachment(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "无效的附件 ID")
	}
	if err := h.Service.DeleteAttachment(id); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "附件已删除", fiber.Map{"announcement_attachment_id": id})
}

// POST /api/announcements/:id/read
func (h *AnnouncementController) MarkRead(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "无效的公告 ID")
	}
	userID, err := authMw.GetUserUUID(c)
	if err != nil {
		return err
	}
	if err := h.Service.MarkRead(id, userID); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "已标记为已读", nil)
}
