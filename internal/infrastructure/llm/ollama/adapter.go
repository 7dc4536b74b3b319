// Package ollama talks to an Ollama server over its native chat API.
package ollama

import (
	"context"
	"fmt"
	"strings"

	"browser-bridge/internal/application/port/output"
	"browser-bridge/internal/domain/entity"

	"github.com/tmc/langchaingo/llms"
	lcollama "github.com/tmc/langchaingo/llms/ollama"
)

const (
	DefaultServerURL = "http://localhost:11434"
	DefaultModel     = "qwen2.5-coder:7b"
)

var _ output.LLMPort = (*Adapter)(nil)

type Config struct {
	ServerURL string
	Model     string
	Logger    output.LoggerPort
}

func DefaultConfig() Config {
	return Config{
		ServerURL: DefaultServerURL,
		Model:     DefaultModel,
	}
}

type Adapter struct {
	llm    *lcollama.LLM
	model  string
	logger output.LoggerPort
}

func NewAdapter(cfg Config) (*Adapter, error) {
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	llm, err := lcollama.New(
		lcollama.WithServerURL(strings.TrimRight(cfg.ServerURL, "/")),
		lcollama.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}

	return &Adapter{llm: llm, model: cfg.Model, logger: cfg.Logger}, nil
}

func (a *Adapter) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	if a.logger != nil {
		a.logger.Debug("Creating ollama chat",
			"model", a.model,
			"messagesCount", len(req.Messages),
			"temperature", req.Temperature)
	}

	resp, err := a.llm.GenerateContent(ctx, convertMessages(req.Messages),
		llms.WithTemperature(float64(req.Temperature)))
	if err != nil {
		return nil, fmt.Errorf("%w: ollama chat failed: %w", entity.ErrSynthesis, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", entity.ErrSynthesis)
	}

	return &output.ChatResponse{
		Message: entity.Message{
			Role:    entity.RoleAssistant,
			Content: strings.TrimSpace(resp.Choices[0].Content),
		},
	}, nil
}

func convertMessages(messages []entity.Message) []llms.MessageContent {
	result := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		result = append(result, llms.TextParts(chatType(msg.Role), msg.Content))
	}
	return result
}

func chatType(role entity.MessageRole) llms.ChatMessageType {
	switch role {
	case entity.RoleSystem:
		return llms.ChatMessageTypeSystem
	case entity.RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
