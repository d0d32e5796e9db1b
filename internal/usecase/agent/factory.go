package agent

import (
	"context"
	"fmt"

	"browser-use-gologin/internal/application/port/output"
	"browser-use-gologin/internal/domain/entity"
)

var _ output.AgentFactory = (*Factory)(nil)

// ToolsBuilder returns the actions bound to one browser.
type ToolsBuilder func(browser output.BrowserPort, logger output.LoggerPort) output.ToolRegistry

// PromptBuilder renders the system prompt for a set of actions.
type PromptBuilder func(tools output.ToolRegistry, maxActionsPerStep int) (string, error)

type Factory struct {
	cfg    Config
	tools  ToolsBuilder
	prompt PromptBuilder
}

func NewFactory(cfg Config, tools ToolsBuilder, prompt PromptBuilder) *Factory {
	return &Factory{cfg: cfg.withDefaults(), tools: tools, prompt: prompt}
}

func (f *Factory) New(browser output.BrowserPort, llm output.LLMPort, logger output.LoggerPort) output.AgentPort {
	tools := f.tools(browser, logger)
	prompt, err := f.prompt(tools, f.cfg.MaxActionsPerStep)
	if err != nil {
		return failed{err: fmt.Errorf("render system prompt: %w", err)}
	}
	return New(browser, llm, tools, logger.Named("agent"), prompt, f.cfg)
}

type failed struct {
	err error
}

func (f failed) Run(context.Context, string, int) (*entity.History, error) {
	return nil, f.err
}
