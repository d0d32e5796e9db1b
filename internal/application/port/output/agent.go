package output

import (
	"context"

	"browser-use-gologin/internal/domain/entity"
)

type AgentPort interface {
	Run(ctx context.Context, task string, maxSteps int) (*entity.History, error)
}

// AgentFactory binds an agent to the browser and model of one task.
type AgentFactory interface {
	New(browser BrowserPort, llm LLMPort, logger LoggerPort) AgentPort
}
