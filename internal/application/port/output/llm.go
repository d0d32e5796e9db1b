package output

import (
	"context"

	"browser-use-gologin/internal/domain/entity"
)

type LLMPort interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

type ChatRequest struct {
	Messages []entity.Message
	Tools    []entity.ToolDefinition
	// Temperature overrides the client default when set. Zero is a valid value.
	Temperature *float32
}

type ChatResponse struct {
	Message entity.Message
}

type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
}

// LLMFactory builds a client per task so credentials are read at call time.
type LLMFactory interface {
	New(cfg LLMConfig) (LLMPort, error)
}
