// internals/features/assistant/controller/assistant_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	assistantService "pmhub_backend/internals/features/assistant/service"
	helper "pmhub_backend/internals/helpers"
)

var validateAssistant = validator.New()

type AssistantController struct {
	Service *assistantService.AssistantService
}

func NewAssistantController() *AssistantController {
	return &AssistantController{Service: assistantService.NewAssistantService()}
}

// POST /api/assistant/chat
func (h *AssistantController) Chat(c *fiber.Ctx) error {
	var req assistantService.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "请求体格式错误")
	}
	if err := validateAssistant.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	msg, err := h.Service.Chat(req)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "", msg)
}
