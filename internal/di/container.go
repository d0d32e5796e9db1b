package di

import (
	"fmt"

	"browser-use-gologin/internal/adapter/mcpserver"
	"browser-use-gologin/internal/adapter/tool"
	"browser-use-gologin/internal/application/port/input"
	"browser-use-gologin/internal/application/port/output"
	"browser-use-gologin/internal/application/service"
	"browser-use-gologin/internal/infrastructure/browser/rod"
	"browser-use-gologin/internal/infrastructure/cookiejar"
	"browser-use-gologin/internal/infrastructure/display"
	"browser-use-gologin/internal/infrastructure/env"
	"browser-use-gologin/internal/infrastructure/gologin"
	"browser-use-gologin/internal/infrastructure/llm/langchain"
	"browser-use-gologin/internal/infrastructure/llm/openaicompat"
	"browser-use-gologin/internal/infrastructure/logger"
	"browser-use-gologin/internal/infrastructure/prompts"
	"browser-use-gologin/internal/infrastructure/urlpolicy"
	"browser-use-gologin/internal/usecase/agent"
	"browser-use-gologin/internal/usecase/readiness"
	"browser-use-gologin/internal/usecase/runtask"
)

type Container struct {
	Config     *env.Config
	Logger     output.LoggerPort
	TaskRunner input.TaskRunner
	Server     *mcpserver.Server
}

func NewContainer(cfg *env.Config) (*Container, error) {
	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.Format = cfg.Log.Format
	logCfg.File = cfg.Log.File
	log, err := logger.NewLoggerAdapter(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	policy, err := urlpolicy.New(cfg.Browser.AllowedDomains)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("invalid ALLOWED_DOMAINS: %w", err)
	}
	if patterns := policy.Patterns(); len(patterns) > 0 {
		log.Info("Navigation restricted", "allowed_domains", patterns)
	}

	llms, err := newLLMFactory(cfg.LLM.Provider, log.Named("llm"))
	if err != nil {
		log.Close()
		return nil, err
	}

	jar := cookiejar.New()

	client := gologin.NewClient(gologin.ClientConfig{
		BaseURL: cfg.GoLogin.APIURL,
		Token:   cfg.GoLogin.APIKey,
		Logger:  log.Named("gologin"),
	})
	profiles := gologin.NewService(client, rod.SeedCookies, log.Named("gologin"), gologin.ServiceConfig{
		ProfilesDir: cfg.GoLogin.ProfilesDir,
	})

	browsers := rod.NewFactory(rod.DefaultConfig(), jar, log.Named("browser"))

	agents := agent.NewFactory(
		agent.Config{
			MaxActionsPerStep: cfg.Agent.MaxActionsPerStep,
			MaxFailures:       cfg.Agent.MaxFailures,
			UseVision:         cfg.Browser.UseVision,
		},
		func(browser output.BrowserPort, l output.LoggerPort) output.ToolRegistry {
			tools := service.NewToolRegistry()
			tool.RegisterAll(tools, browser, policy, l.Named("tool"))
			return tools
		},
		func(tools output.ToolRegistry, maxActionsPerStep int) (string, error) {
			return prompts.GenerateSystemPrompt(prompts.SystemPrompt, tools, maxActionsPerStep)
		},
	)

	gate := readiness.New(display.NewX11Check(cfg.Browser.Display), log.Named("readiness"))

	runner := runtask.New(
		runtask.Config{
			LLM: output.LLMConfig{
				Model:       cfg.LLM.Model,
				APIKey:      cfg.LLM.APIKey,
				BaseURL:     cfg.LLM.BaseURL,
				Temperature: float32(cfg.LLM.Temperature),
			},
			GoLoginAPIKey: cfg.GoLogin.APIKey,
			ExecPath:      cfg.GoLogin.ExecPath,
			Display:       cfg.Browser.Display,
			WindowWidth:   cfg.Browser.ScreenWidth,
			WindowHeight:  cfg.Browser.ScreenHeight,
			CookiesPath:   cfg.Browser.CookiesPath,
		},
		gate,
		profiles,
		browsers,
		llms,
		agents,
		jar,
		log.Named("runtask"),
	)

	return &Container{
		Config:     cfg,
		Logger:     log,
		TaskRunner: runner,
		Server:     mcpserver.New(runner, log.Named("mcp")),
	}, nil
}

func newLLMFactory(provider string, log output.LoggerPort) (output.LLMFactory, error) {
	switch provider {
	case env.ProviderOpenAI, "":
		return openaicompat.NewFactory(log), nil
	case env.ProviderLangchain:
		return langchain.NewFactory(log), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", provider)
	}
}

func (c *Container) Close() {
	if c.Logger != nil {
		c.Logger.Close()
	}
}
