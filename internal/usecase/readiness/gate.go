package readiness

import (
	"context"
	"fmt"
	"time"

	"browser-use-gologin/internal/application/port/input"
	"browser-use-gologin/internal/application/port/output"
	"browser-use-gologin/internal/domain/entity"
)

var _ input.ReadinessGate = (*Gate)(nil)

const (
	DefaultAttempts = 10
	DefaultInterval = time.Second
)

// Gate polls a readiness check a bounded number of times.
type Gate struct {
	check    output.ReadinessCheck
	logger   output.LoggerPort
	attempts int
	interval time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

func New(check output.ReadinessCheck, logger output.LoggerPort) *Gate {
	return &Gate{
		check:    check,
		logger:   logger,
		attempts: DefaultAttempts,
		interval: DefaultInterval,
		sleep:    sleepContext,
	}
}

func (g *Gate) Wait(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= g.attempts; attempt++ {
		if attempt > 1 {
			if err := g.sleep(ctx, g.interval); err != nil {
				return entity.NewReadinessError(fmt.Errorf("waiting for display: %w", err))
			}
		}

		lastErr = g.check.Check(ctx)
		if lastErr == nil {
			if attempt > 1 {
				g.logger.Info("Display ready", "attempt", attempt)
			}
			return nil
		}
		g.logger.Debug("Display not ready", "attempt", attempt, "error", lastErr)
	}

	return entity.NewReadinessError(fmt.Errorf("display not ready after %d attempts: %w", g.attempts, lastErr))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
