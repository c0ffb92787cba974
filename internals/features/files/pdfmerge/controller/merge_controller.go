// internals/features/files/pdfmerge/controller/merge_controller.go
package controller

import (
	"fmt"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"pmhub_backend/internals/configs"
	mergeDTO "pmhub_backend/internals/features/files/pdfmerge/dto"
	mergeService "pmhub_backend/internals/features/files/pdfmerge/service"
	planService "pmhub_backend/internals/features/projects/plans/service"
	helper "pmhub_backend/internals/helpers"
)

var validateMerge = validator.New()

type MergeController struct {
	DB       *gorm.DB
	Plans    *planService.PlanStore
	Merger   *mergeService.MergeService
	Previews *mergeService.PreviewStore
}

func NewMergeController(db *gorm.DB) *MergeController {
	previews := mergeService.NewPreviewStore(db, configs.StaticRoot, configs.PreviewTTL)
	return &MergeController{
		DB:       db,
		Plans:    planService.NewPlanStore(db),
		Merger:   mergeService.NewMergeService(db, previews),
		Previews: previews,
	}
}

// GET /api/projects/:id/pdf-list
// Daftar file PDF project dalam urutan merge; dipakai frontend untuk
// memilih selected_ids.
func (h *MergeController) ListMergeablePDFs(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "无效的项目 ID")
	}

	items, _, err := h.Merger.OrderedPDFList(projectID, nil)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	out := make([]fiber.Map, 0, len(items))
	for _, it := range items {
		out = append(out, fiber.Map{
			"file_id":       it.FileID,
			"original_name": it.OriginalName,
		})
	}
	return helper.JsonOK(c, "", out)
}

// POST /api/projects/:id/merge-preview
func (h *MergeController) GeneratePreview(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "无效的项目 ID")
	}

	var req mergeDTO.GeneratePreviewRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "请求体格式错误")
	}
	if err := validateMerge.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	resp, err := h.Merger.GeneratePagedPreview(projectID, req)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "预览已生成", resp)
}

// POST /api/projects/:id/merge-pdf
// Respons adalah byte PDF final; server tidak menyimpan salinannya.
func (h *MergeController) BuildFinal(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "无效的项目 ID")
	}

	var req mergeDTO.BuildFinalRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "请求体格式错误")
	}
	if err := validateMerge.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	project, err := h.Plans.GetProject(h.DB, projectID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	out, err := h.Merger.BuildFinal(projectID, req)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	filename := url.PathEscape(project.ProjectName + ".pdf")
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename*=UTF-8''%s`, filename))
	return c.Send(out)
}

// GET /api/projects/:id/merge-progress
func (h *MergeController) MergeProgress(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "无效的项目 ID")
	}
	return helper.JsonOK(c, "", fiber.Map{"progress": h.Merger.Progress(projectID)})
}

// POST /api/preview-sessions/:id/cancel
// Pembatalan eksplisit dari frontend; sesi yang tidak dibatalkan akan
// dipungut reaper setelah TTL.
func (h *MergeController) CancelPreview(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "无效的预览会话 ID")
	}
	if err := h.Previews.Drop(id); err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "预览会话不存在")
	}
	return helper.JsonDeleted(c, "预览会话已取消", fiber.Map{"preview_session_id": id})
}
