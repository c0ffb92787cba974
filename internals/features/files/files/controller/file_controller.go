// internals/features/files/files/controller/file_controller.go
package controller

import (
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	fileService "pmhub_backend/internals/features/files/files/service"
	helper "pmhub_backend/internals/helpers"
	authMw "pmhub_backend/internals/middlewares/auth"
	"pmhub_backend/internals/search"
)

type FileController struct {
	Service *fileService.FileService
}

func NewFileController(db *gorm.DB, searcher search.Searcher) *FileController {
	return &FileController{Service: fileService.NewFileService(db, searcher)}
}

// POST /api/files — multipart: field "file" + scope id (minimal project_id;
// task_id/stage_id/subproject_id melengkapi ancestor otomatis)
func (h *FileController) UploadFile(c *fiber.Ctx) error {
	uploaderID, err := authMw.GetUserUUID(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "缺少上传文件")
	}

	var sc fileService.UploadScope
	if raw := c.FormValue("project_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "无效的 project_id")
		}
		sc.ProjectID = id
	}
	for _, f := range []struct {
		field string
		dst   **uuid.UUID
	}{
		{"subproject_id", &sc.SubprojectID},
		{"stage_id", &sc.StageID},
		{"task_id", &sc.TaskID},
	} {
		if raw := c.FormValue(f.field); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return helper.JsonError(c, fiber.StatusBadRequest, "无效的 "+f.field)
			}
			*f.dst = &id
		}
	}
	if sc.ProjectID == uuid.Nil && sc.SubprojectID == nil && sc.StageID == nil && sc.TaskID == nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "缺少归属范围")
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

	var contentText *string
	if txt := c.FormValue("content_text"); txt != "" {
		contentText = &txt
	}

	m, err := h.Service.Save(sc, uploaderID, fh.Filename, data, contentText)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "文件已上传", m)
}

// GET /api/files — listing dengan filter scope / tipe / nama
func (h *FileController) ListFiles(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 100)

	var f fileService.ListFilter
	for _, q := range []struct {
		key string
		dst **uuid.UUID
	}{
		{"project_id", &f.ProjectID},
		{"subproject_id", &f.SubprojectID},
		{"stage_id", &f.StageID},
		{"task_id", &f.TaskID},
	} {
		if raw := c.Query(q.key); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return helper.JsonError(c, fiber.StatusBadRequest, "无效的 "+q.key)
			}
			*q.dst = &id
		}
	}
	if raw := c.Query("file_type"); raw != "" {
		t, err := strconv.Atoi(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "无效的 file_type")
		}
		f.FileType = &t
	}
	f.NameQuery = c.Query("name")

	rows, total, err := h.Service.List(f, p)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "查询失败")
	}
	return helper.JsonList(c, "", rows, helper.BuildPagination(total, p.Page, p.PerPage))
}

// GET /api/files/search?q=...&project_id=...
func (h *FileController) SearchFiles(c *fiber.Ctx) error {
	q := c.Query("q")
	if q == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "缺少查询关键字")
	}

	var projectID *uuid.UUID
	if raw := c.Query("project_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "无效的 project_id")
		}
		projectID = &id
	}

	rows, err := h.Service.Search(q, projectID, 50)
	if err != nil {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "搜索服务暂不可用")
	}
	return helper.JsonOK(c, "", fiber.Map{
		"results":        rows,
		"content_search": h.Service.Searcher.SupportsContentSearch(),
	})
}

// GET /api/files/:id/download — respons memakai nama asli file
func (h *FileController) DownloadFile(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "无效的文件 ID")
	}
	m, err := h.Service.Get(id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return c.Download(h.Service.BlobPath(m), m.FileOriginalName)
}

// DELETE /api/files/:id
func (h *FileController) DeleteFile(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "无效的文件 ID")
	}
	if err := h.Service.Delete(id); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "文件已删除", fiber.Map{"file_id": id})
}
