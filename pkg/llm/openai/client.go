// Package openai реализует адаптер LLM провайдера для OpenAI-совместимых API.
//
// Поддерживает custom BaseURL, поэтому один адаптер обслуживает OpenAI,
// Perplexity, Zai, DeepSeek и любой другой совместимый endpoint.
// Соблюдает правило 4 манифеста: рантайм работает только через llm.Provider.
package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/deepshard/hyphae/pkg/config"
	"github.com/deepshard/hyphae/pkg/llm"
	"github.com/deepshard/hyphae/pkg/utils"
)

// Client реализует интерфейс llm.Provider для OpenAI-совместимых API.
type Client struct {
	api         *openai.Client
	model       string
	maxTokens   int
	temperature float64
}

// Проверка что Client реализует llm.Provider
var _ llm.Provider = (*Client)(nil)

// NewClient создает клиент на основе конфигурации модели.
//
// Принимает ModelDef напрямую для упрощения создания клиентов.
// Правило 2: все настройки из конфигурации, никакого хардкода.
func NewClient(modelDef config.ModelDef) *Client {
	// Поддержка custom BaseURL для non-OpenAI провайдеров
	cfg := openai.DefaultConfig(modelDef.APIKey)
	if modelDef.BaseURL != "" {
		cfg.BaseURL = modelDef.BaseURL
	}

	return &Client{
		api:         openai.NewClientWithConfig(cfg),
		model:       modelDef.ModelName,
		maxTokens:   modelDef.MaxTokens,
		temperature: modelDef.Temperature,
	}
}

// Chat выполняет запрос к API и возвращает текст ответа модели.
//
// Параметры запроса (Model, Temperature, MaxTokens) берутся из req,
// пустые поля падают обратно на значения из конфигурации модели.
//
// Правило 7: все ошибки возвращаются, никаких panic.
func (c *Client) Chat(ctx context.Context, req llm.ChatRequest) (string, error) {
	startTime := time.Now()

	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}

	utils.Debug("LLM request started",
		"model", model,
		"messages_count", len(req.Messages),
	)

	apiReq := openai.ChatCompletionRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: float32(temperature),
		Messages:    convertMessages(req.Messages),
	}
	if req.Format == "json_object" {
		apiReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.api.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		utils.Error("LLM request failed",
			"model", model,
			"duration_ms", time.Since(startTime).Milliseconds(),
			"error", err,
		)
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty choices in response")
	}

	utils.Debug("LLM request completed",
		"model", model,
		"duration_ms", time.Since(startTime).Milliseconds(),
		"tokens_total", resp.Usage.TotalTokens,
	)

	return resp.Choices[0].Message.Content, nil
}

// convertMessages конвертирует внутренние сообщения в формат OpenAI SDK.
func convertMessages(messages []llm.Message) []openai.ChatCompletionMessage {
	converted := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		converted = append(converted, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return converted
}
