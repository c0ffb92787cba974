// internals/features/assistant/service/assistant_service.go
package service

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"

	"pmhub_backend/internals/configs"
)

// AssistantService meneruskan percakapan ke endpoint LLM kompatibel
// chat-completions. API key tidak pernah sampai ke klien.
type AssistantService struct {
	Endpoint string
	APIKey   string
	Model    string
	Client   *http.Client
}

func NewAssistantService() *AssistantService {
	return &AssistantService{
		Endpoint: configs.LLMEndpoint,
		APIKey:   configs.LLMAPIKey,
		Model:    configs.LLMModel,
		Client:   &http.Client{Timeout: configs.LLMTimeout},
	}
}

type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content" validate:"required"`
}

type ChatRequest struct {
	Messages []ChatMessage `json:"messages" validate:"required,min=1,dive"`
}

type chatUpstreamRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

type chatUpstreamResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

// Chat: satu round-trip sinkron; kegagalan upstream dipetakan ke 502.
func (s *AssistantService) Chat(req ChatRequest) (*ChatMessage, error) {
	if s.Endpoint == "" {
		return nil, fiber.NewError(fiber.StatusServiceUnavailable, "智能助手未配置")
	}

	payload, err := sonic.Marshal(chatUpstreamRequest{
		Model:    s.Model,
		Messages: req.Messages,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest(http.MethodPost, s.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.APIKey)
	}

	start := time.Now()
	resp, err := s.Client.Do(httpReq)
	if err != nil {
		log.Printf("[ERROR] LLM upstream: %v", err)
		return nil, fiber.NewError(fiber.StatusBadGateway, "智能助手服务暂不可用")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadGateway, "智能助手服务暂不可用")
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("[ERROR] LLM upstream status %d: %s", resp.StatusCode, truncate(string(body), 300))
		return nil, fiber.NewError(fiber.StatusBadGateway, "智能助手服务暂不可用")
	}

	var parsed chatUpstreamResponse
	if err := sonic.Unmarshal(body, &parsed); err != nil || len(parsed.Choices) == 0 {
		return nil, fiber.NewError(fiber.StatusBadGateway, "智能助手响应格式异常")
	}

	log.Printf("[INFO] LLM chat selesai dalam %s", time.Since(start))
	msg := parsed.Choices[0].Message
	if msg.Role == "" {
		msg.Role = "assistant"
	}
	return &msg, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s...", s[:n])
}
