package input

import (
	"context"

	"browser-use-gologin/internal/domain/entity"
)

type TaskRunner interface {
	Run(ctx context.Context, req entity.TaskRequest) (*entity.TaskSummary, error)
}

type ReadinessGate interface {
	Wait(ctx context.Context) error
}
