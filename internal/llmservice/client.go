package llmservice

import (
	"context"
	"fmt"
	"strings"

	"waterfilter-rag/internal/config"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Client wraps a chat-completion model behind a single non-streaming call.
type Client struct {
	llm llms.Model
}

func NewClient(cfg *config.LLMConfig) (*Client, error) {
	switch cfg.Provider {
	case "ollama":
		llm, err := ollama.New(
			ollama.WithServerURL(cfg.BaseURL),
			ollama.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize ollama chat client: %w", err)
		}
		return &Client{llm: llm}, nil
	case "openai", "":
		opts := []openai.Option{
			openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
			openai.WithModel(cfg.Model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize chat client: %w", err)
		}
		return &Client{llm: llm}, nil
	default:
		return nil, fmt.Errorf("unknown chat provider: %q", cfg.Provider)
	}
}

// GenerateContent submits one prompt and returns the model's text.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}
	res, err := c.llm.GenerateContent(ctx, messages, llms.WithTemperature(0.2))
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("chat model returned no choices")
	}
	return res.Choices[0].Content, nil
}
