package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"browser-use-gologin/internal/application/port/output"
	"browser-use-gologin/internal/domain/entity"
)

var _ output.AgentPort = (*UseCase)(nil)

const maxObservationLen = 20000

type Config struct {
	MaxActionsPerStep int
	MaxFailures       int
	UseVision         bool
}

func DefaultConfig() Config {
	return Config{
		MaxActionsPerStep: 10,
		MaxFailures:       3,
		UseVision:         true,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxActionsPerStep <= 0 {
		c.MaxActionsPerStep = DefaultConfig().MaxActionsPerStep
	}
	if c.MaxFailures <= 0 {
		c.MaxFailures = DefaultConfig().MaxFailures
	}
	return c
}

// UseCase runs the step loop: look at the page, ask the model, perform its actions.
type UseCase struct {
	browser      output.BrowserPort
	llm          output.LLMPort
	tools        output.ToolRegistry
	logger       output.LoggerPort
	systemPrompt string
	cfg          Config
}

func New(
	browser output.BrowserPort,
	llm output.LLMPort,
	tools output.ToolRegistry,
	logger output.LoggerPort,
	systemPrompt string,
	cfg Config,
) *UseCase {
	return &UseCase{
		browser:      browser,
		llm:          llm,
		tools:        tools,
		logger:       logger,
		systemPrompt: systemPrompt,
		cfg:          cfg.withDefaults(),
	}
}

// Run returns the history recorded so far together with any context error.
func (uc *UseCase) Run(ctx context.Context, task string, maxSteps int) (*entity.History, error) {
	history := &entity.History{}
	messages := []entity.Message{
		{Role: entity.RoleSystem, Content: uc.systemPrompt},
		{Role: entity.RoleUser, Content: "Your task: " + task},
	}
	toolDefs := uc.tools.Definitions()
	failures := 0

	for step := 1; step <= maxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return history, err
		}
		uc.logger.Debug("Starting step", "step", step, "maxSteps", maxSteps)

		rec, next, err := uc.step(ctx, step, maxSteps, messages, toolDefs)
		history.Add(rec)
		messages = next
		if err != nil {
			return history, err
		}

		if history.IsDone() {
			uc.logger.Info("Task completed", "step", step)
			return history, nil
		}

		if stepFailed(rec) {
			failures++
			if failures >= uc.cfg.MaxFailures {
				uc.logger.Warn("Stopping after consecutive failures", "failures", failures)
				last := &history.Steps[len(history.Steps)-1]
				stop := fmt.Sprintf("stopped after %d consecutive failures", failures)
				if last.Error == "" {
					last.Error = stop
				} else {
					last.Error += "; " + stop
				}
				return history, nil
			}
		} else {
			failures = 0
		}
	}

	uc.logger.Info("Step budget exhausted", "maxSteps", maxSteps)
	return history, nil
}

// step returns the recorded step and the conversation to carry forward. The error is
// non-nil only when ctx ended.
func (uc *UseCase) step(
	ctx context.Context,
	number, maxSteps int,
	messages []entity.Message,
	toolDefs []entity.ToolDefinition,
) (entity.Step, []entity.Message, error) {
	rec := entity.Step{Number: number}

	state, err := uc.browser.State(ctx, uc.cfg.UseVision)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return rec, messages, ctxErr
		}
		uc.logger.Warn("Page state failed", "step", number, "error", err)
		rec.Error = "page state: " + err.Error()
		return rec, messages, nil
	}
	rec.URL = state.URL
	rec.Title = state.Title

	request := make([]entity.Message, 0, len(messages)+1)
	request = append(request, messages...)
	request = append(request, stateMessage(state, number, maxSteps))

	resp, err := uc.llm.Chat(ctx, output.ChatRequest{
		Messages: request,
		Tools:    toolDefs,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return rec, messages, ctxErr
		}
		uc.logger.Error("LLM request failed", "step", number, "error", err)
		rec.Error = "llm request failed: " + err.Error()
		return rec, messages, nil
	}

	messages = append(messages, resp.Message)

	if len(resp.Message.ToolCalls) == 0 {
		rec.Results = append(rec.Results, entity.ActionResult{
			ExtractedContent: resp.Message.Content,
			IsDone:           true,
			Success:          true,
		})
		return rec, messages, nil
	}

	stopped := ""
	for i, tc := range resp.Message.ToolCalls {
		if stopped == "" && i >= uc.cfg.MaxActionsPerStep {
			stopped = fmt.Sprintf("Skipped: at most %d actions per step", uc.cfg.MaxActionsPerStep)
		}
		if stopped != "" {
			messages = append(messages, toolMessage(tc, stopped))
			continue
		}

		rec.Actions = append(rec.Actions, entity.Action{Name: tc.Name, Params: parseParams(tc.Arguments)})
		result, observation := uc.executeTool(ctx, tc)
		rec.Results = append(rec.Results, result)
		messages = append(messages, toolMessage(tc, observation))

		if ctxErr := ctx.Err(); ctxErr != nil {
			for _, rest := range resp.Message.ToolCalls[i+1:] {
				messages = append(messages, toolMessage(rest, "Skipped: cancelled"))
			}
			return rec, messages, ctxErr
		}
		if result.IsDone {
			stopped = "Skipped: task already done"
		}
	}

	return rec, messages, nil
}

func (uc *UseCase) executeTool(ctx context.Context, tc entity.ToolCall) (entity.ActionResult, string) {
	tool, ok := uc.tools.Get(entity.ToolName(tc.Name))
	if !ok {
		uc.logger.Warn("Unknown tool called", "name", tc.Name)
		msg := fmt.Sprintf("unknown tool '%s'", tc.Name)
		return entity.ActionResult{Error: msg}, "Error: " + msg
	}

	uc.logger.Info("Executing tool", "name", tc.Name, "args", tc.Arguments)

	result, err := tool.Execute(ctx, tc.Arguments)
	if err != nil {
		uc.logger.Error("Tool execution failed", "name", tc.Name, "error", err)
		msg := fmt.Sprintf("%s: %s", tc.Name, err.Error())
		return entity.ActionResult{Error: msg}, "Error: " + err.Error()
	}

	observation := result.ExtractedContent
	if observation == "" {
		observation = "OK"
	}
	observation = truncate(observation, maxObservationLen)

	uc.logger.Debug("Tool completed", "name", tc.Name, "resultLen", len(observation))
	return result, observation
}

// truncate cuts s on a rune boundary so the model never sees a broken character.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "\n... (truncated)"
}

func toolMessage(tc entity.ToolCall, content string) entity.Message {
	return entity.Message{
		Role:       entity.RoleTool,
		ToolCallID: tc.ID,
		Name:       tc.Name,
		Content:    content,
	}
}

func parseParams(arguments string) map[string]any {
	params := map[string]any{}
	if arguments == "" {
		return params
	}
	if err := json.Unmarshal([]byte(arguments), &params); err != nil {
		return map[string]any{"raw": arguments}
	}
	return params
}

func stepFailed(rec entity.Step) bool {
	if rec.Error != "" {
		return true
	}
	if len(rec.Results) == 0 {
		return false
	}
	for _, r := range rec.Results {
		if r.Error == "" {
			return false
		}
	}
	return true
}
