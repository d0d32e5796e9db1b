// Package runtask drives one run_task call from credential check to session release.
package runtask

import (
	"context"
	"fmt"
	"time"

	"browser-use-gologin/internal/application/port/input"
	"browser-use-gologin/internal/application/port/output"
	"browser-use-gologin/internal/domain/entity"

	"github.com/google/uuid"
)

var _ input.TaskRunner = (*UseCase)(nil)

const defaultReleaseTimeout = 30 * time.Second

type Config struct {
	LLM           output.LLMConfig
	GoLoginAPIKey string

	ExecPath     string
	Display      string
	WindowWidth  int
	WindowHeight int
	CookiesPath  string

	// ReleaseTimeout bounds Session.Stop, which runs even after the request context ends.
	ReleaseTimeout time.Duration
}

type UseCase struct {
	cfg      Config
	gate     input.ReadinessGate
	profiles output.ProfileService
	browsers output.BrowserFactory
	llms     output.LLMFactory
	agents   output.AgentFactory
	jar      output.CookieJar
	logger   output.LoggerPort

	// sem serializes runs; they all share one cookie file.
	sem   chan struct{}
	newID func() string
}

func New(
	cfg Config,
	gate input.ReadinessGate,
	profiles output.ProfileService,
	browsers output.BrowserFactory,
	llms output.LLMFactory,
	agents output.AgentFactory,
	jar output.CookieJar,
	logger output.LoggerPort,
) *UseCase {
	if cfg.ReleaseTimeout <= 0 {
		cfg.ReleaseTimeout = defaultReleaseTimeout
	}
	return &UseCase{
		cfg:      cfg,
		gate:     gate,
		profiles: profiles,
		browsers: browsers,
		llms:     llms,
		agents:   agents,
		jar:      jar,
		logger:   logger,
		sem:      make(chan struct{}, 1),
		newID:    uuid.NewString,
	}
}

func (uc *UseCase) Run(ctx context.Context, req entity.TaskRequest) (*entity.TaskSummary, error) {
	if err := uc.checkCredentials(); err != nil {
		return nil, err
	}

	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	log := uc.logger.WithFields(map[string]any{
		"task_id":    uc.newID(),
		"profile_id": req.ProfileID,
	})
	log.Info("Task received", "task", req.Task, "maxSteps", req.MaxSteps)

	if err := uc.gate.Wait(ctx); err != nil {
		log.Error("Display not ready", "error", err)
		return nil, err
	}

	select {
	case uc.sem <- struct{}{}:
		defer func() { <-uc.sem }()
	case <-ctx.Done():
		return nil, entity.NewOrchestrationError(ctx.Err())
	}

	start := time.Now()
	summary, err := uc.execute(ctx, req, log)
	if err != nil {
		log.Error("Task failed", "error", err, "duration", time.Since(start))
		return nil, entity.NewOrchestrationError(err)
	}

	log.Info("Task finished",
		"steps", summary.Steps,
		"isDone", summary.IsDone,
		"errors", len(summary.Errors),
		"duration", time.Since(start))
	return summary, nil
}

func (uc *UseCase) checkCredentials() error {
	if uc.cfg.LLM.APIKey == "" {
		return entity.NewConfigError("LLM_API_KEY environment variable is required")
	}
	if uc.cfg.GoLoginAPIKey == "" {
		return entity.NewConfigError("GOLOGIN_API_KEY environment variable is required")
	}
	return nil
}

func (uc *UseCase) execute(ctx context.Context, req entity.TaskRequest, log output.LoggerPort) (*entity.TaskSummary, error) {
	session, err := uc.profiles.Start(ctx, entity.LaunchOptions{
		ProfileID:              req.ProfileID,
		ExecPath:               uc.cfg.ExecPath,
		Display:                uc.cfg.Display,
		WindowWidth:            uc.cfg.WindowWidth,
		WindowHeight:           uc.cfg.WindowHeight,
		Headless:               false,
		ExtraArgs:              entity.SandboxArgs,
		WriteCookiesFromServer: true,
	})
	if err != nil {
		return nil, fmt.Errorf("start profile %s: %w", req.ProfileID, err)
	}
	log.Info("Profile started", "address", session.Address())
	defer uc.release(ctx, session, log)

	browser, err := uc.browsers.Connect(ctx, session.Address(), uc.cfg.CookiesPath, session.ProxyAuth())
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", session.Address(), err)
	}
	closed := false
	defer func() {
		if !closed {
			_ = browser.Close(context.WithoutCancel(ctx))
		}
	}()

	llm, err := uc.llms.New(uc.cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("create LLM client: %w", err)
	}

	history, err := uc.agents.New(browser, llm, log).Run(ctx, req.Task, req.MaxSteps)
	if err != nil {
		return nil, fmt.Errorf("agent run: %w", err)
	}

	closed = true
	if err := browser.Close(ctx); err != nil {
		return nil, fmt.Errorf("close browser: %w", err)
	}

	cookies, err := uc.jar.Read(uc.cfg.CookiesPath)
	if err != nil {
		return nil, fmt.Errorf("read cookies: %w", err)
	}
	if err := uc.profiles.UploadCookies(ctx, req.ProfileID, cookies); err != nil {
		return nil, fmt.Errorf("upload cookies: %w", err)
	}
	log.Info("Cookies uploaded", "count", len(cookies))

	return history.Summary(), nil
}

// release stops the session even when ctx is already done.
func (uc *UseCase) release(ctx context.Context, session output.Session, log output.LoggerPort) {
	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.cfg.ReleaseTimeout)
	defer cancel()

	if err := session.Stop(stopCtx); err != nil {
		log.Warn("Profile stop failed", "error", err)
		return
	}
	log.Info("Profile stopped")
}
