package route

import (
	"github.com/gofiber/fiber/v2"

	assistantController "pmhub_backend/internals/features/assistant/controller"
)

// AssistantRoutes: proxy chat LLM, tersedia untuk semua user login.
func AssistantRoutes(api fiber.Router) {
	ctrl := assistantController.NewAssistantController()
	api.Post("/assistant/chat", ctrl.Chat)
}
