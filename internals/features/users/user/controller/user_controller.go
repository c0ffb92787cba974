// internals/features/users/user/controller/user_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"pmhub_backend/internals/constants"
	userDTO "pmhub_backend/internals/features/users/user/dto"
	userModel "pmhub_backend/internals/features/users/user/model"
	userService "pmhub_backend/internals/features/users/user/service"
	helper "pmhub_backend/internals/helpers"
)

var validateUser = validator.New()

type UserController struct {
	DB      *gorm.DB
	Service *userService.UserService
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db, Service: userService.NewUserService(db)}
}

func toResponse(m *userModel.UserModel) userDTO.UserResponse {
	return userDTO.UserResponse{
		UserID:           m.UserID,
		UserName:         m.UserName,
		UserEmail:        m.UserEmail,
		UserRole:         m.UserRole,
		UserRoleName:     constants.RoleNames[m.UserRole],
		UserTeamLeaderID: m.UserTeamLeaderID,
		UserIsActive:     m.UserIsActive,
	}
}

// GET /api/users — filter opsional: role, team_leader_id
func (h *UserController) ListUsers(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 100)

	tx := h.DB.Model(&userModel.UserModel{}).Where("user_deleted_at IS NULL")
	if role := c.Query("role"); role != "" {
		tx = tx.Where("user_role = ?", role)
	}
	if leader := c.Query("team_leader_id"); leader != "" {
		leaderID, err := uuid.Parse(leader)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "无效的 team_leader_id")
		}
		tx = tx.Where("user_team_leader_id = ?", leaderID)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "查询失败")
	}

	var rows []userModel.UserModel
	if err := tx.Order("user_name ASC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "查询失败")
	}

	out := make([]userDTO.UserResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toResponse(&rows[i]))
	}
	return helper.JsonList(c, "", out, helper.BuildPagination(total, p.Page, p.PerPage))
}

// GET /api/users/:id
func (h *UserController) GetUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "无效的用户 ID")
	}
	m, err := h.Service.Get(id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "", toResponse(m))
}

// POST /api/users
func (h *UserController) CreateUser(c *fiber.Ctx) error {
	var req userDTO.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "请求体格式错误")
	}
	if err := validateUser.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	m, err := h.Service.Create(req)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "用户已创建", toResponse(m))
}

// PUT /api/users/:id
func (h *UserController) UpdateUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "无效的用户 ID")
	}

	var req userDTO.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "请求体格式错误")
	}
	if err := validateUser.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	m, err := h.Service.Update(id, req)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "用户已更新", toResponse(m))
}

// DELETE /api/users/:id
func (h *UserController) DeleteUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "无效的用户 ID")
	}
	if err := h.Service.Delete(id); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "用户已删除", fiber.Map{"user_id": id})
}
