// Package langchain runs the agent's chat turns through a langchaingo model.
package langchain

import (
	"context"
	"fmt"

	"browser-use-gologin/internal/application/port/output"
	"browser-use-gologin/internal/domain/entity"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

var (
	_ output.LLMPort    = (*Adapter)(nil)
	_ output.LLMFactory = (*Factory)(nil)
)

type Adapter struct {
	model       llms.Model
	temperature float64
	logger      output.LoggerPort
}

func NewAdapter(model llms.Model, temperature float64, logger output.LoggerPort) *Adapter {
	return &Adapter{model: model, temperature: temperature, logger: logger}
}

func (a *Adapter) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	temperature := a.temperature
	if req.Temperature != nil {
		temperature = float64(*req.Temperature)
	}

	opts := []llms.CallOption{llms.WithTemperature(temperature)}
	if len(req.Tools) > 0 {
		opts = append(opts, llms.WithTools(convertTools(req.Tools)))
	}

	resp, err := a.model.GenerateContent(ctx, convertMessages(req.Messages), opts...)
	if err != nil {
		return nil, fmt.Errorf("generate content failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	choice := resp.Choices[0]
	if a.logger != nil {
		a.logger.Debug("Generate content", "stopReason", choice.StopReason, "toolCalls", len(choice.ToolCalls))
	}

	return &output.ChatResponse{Message: convertChoice(choice)}, nil
}

func convertMessages(messages []entity.Message) []llms.MessageContent {
	result := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case entity.RoleSystem:
			result = append(result, llms.TextParts(llms.ChatMessageTypeSystem, msg.Content))
		case entity.RoleTool:
			result = append(result, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: msg.ToolCallID,
					Name:       msg.Name,
					Content:    msg.Content,
				}},
			})
		case entity.RoleAssistant:
			mc := llms.MessageContent{Role: llms.ChatMessageTypeAI}
			if msg.Content != "" {
				mc.Parts = append(mc.Parts, llms.TextPart(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				mc.Parts = append(mc.Parts, llms.ToolCall{
					ID:   tc.ID,
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				})
			}
			result = append(result, mc)
		default:
			mc := llms.MessageContent{Role: llms.ChatMessageTypeHuman}
			if msg.Content != "" {
				mc.Parts = append(mc.Parts, llms.TextPart(msg.Content))
			}
			for _, img := range msg.Images {
				format := img.Format
				if format == "" {
					format = "jpeg"
				}
				mc.Parts = append(mc.Parts, llms.BinaryPart("image/"+format, img.Data))
			}
			result = append(result, mc)
		}
	}
	return result
}

func convertTools(tools []entity.ToolDefinition) []llms.Tool {
	result := make([]llms.Tool, 0, len(tools))
	for _, t := range tools {
		result = append(result, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return result
}

func convertChoice(choice *llms.ContentChoice) entity.Message {
	msg := entity.Message{
		Role:    entity.RoleAssistant,
		Content: choice.Content,
	}
	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil {
			continue
		}
		msg.ToolCalls = append(msg.ToolCalls, entity.ToolCall{
			ID:        tc.ID,
			Name:      tc.FunctionCall.Name,
			Arguments: tc.FunctionCall.Arguments,
		})
	}
	return msg
}

// Factory builds OpenAI-backed langchaingo models.
type Factory struct {
	logger output.LoggerPort
}

func NewFactory(logger output.LoggerPort) *Factory {
	return &Factory{logger: logger}
}

func (f *Factory) New(cfg output.LLMConfig) (output.LLMPort, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing LLM API key")
	}

	opts := []openai.Option{openai.WithToken(cfg.APIKey), openai.WithModel(cfg.Model)}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create langchain model: %w", err)
	}
	return NewAdapter(model, float64(cfg.Temperature), f.logger), nil
}
