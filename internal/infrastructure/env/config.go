package env

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	LLM     LLMConfig
	GoLogin GoLoginConfig
	Browser BrowserConfig
	Agent   AgentConfig
	Log     LogConfig
	Server  ServerConfig
}

type LLMConfig struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
}

type GoLoginConfig struct {
	APIKey      string
	APIURL      string
	ExecPath    string
	ProfilesDir string
}

type BrowserConfig struct {
	ScreenWidth    int
	ScreenHeight   int
	Display        string
	CookiesPath    string
	UseVision      bool
	AllowedDomains []string
}

type AgentConfig struct {
	MaxActionsPerStep int
	MaxFailures       int
}

type LogConfig struct {
	Level  string
	Format string
	File   string
}

type ServerConfig struct {
	Transport string
	Addr      string
}

const (
	ProviderOpenAI    = "openai"
	ProviderLangchain = "langchain"

	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

var defaults = map[string]any{
	"llm_provider":         ProviderOpenAI,
	"llm_model":            "gpt-4o-mini",
	"llm_api_key":          "",
	"llm_base_url":         "",
	"llm_temperature":      0.7,
	"gologin_api_key":      "",
	"gologin_api_url":      "https://api.gologin.com",
	"exec_path":            "/usr/bin/orbita-browser/chrome",
	"profiles_dir":         "",
	"screen_width":         1920,
	"screen_height":        1080,
	"display":              ":99",
	"cookies_path":         "./cookies.json",
	"use_vision":           true,
	"allowed_domains":      "",
	"max_actions_per_step": 10,
	"max_failures":         3,
	"log_level":            "info",
	"log_format":           "console",
	"log_file":             "",
	"transport":            TransportStdio,
	"addr":                 ":8080",
}

// Load reads configuration from the environment, with flags taking precedence when set.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if flags != nil {
		for _, name := range []string{"transport", "addr", "log-level"} {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(strings.ReplaceAll(name, "-", "_"), f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		LLM: LLMConfig{
			Provider:    strings.ToLower(v.GetString("llm_provider")),
			Model:       v.GetString("llm_model"),
			APIKey:      v.GetString("llm_api_key"),
			BaseURL:     v.GetString("llm_base_url"),
			Temperature: v.GetFloat64("llm_temperature"),
		},
		GoLogin: GoLoginConfig{
			APIKey:      v.GetString("gologin_api_key"),
			APIURL:      strings.TrimRight(v.GetString("gologin_api_url"), "/"),
			ExecPath:    v.GetString("exec_path"),
			ProfilesDir: v.GetString("profiles_dir"),
		},
		Browser: BrowserConfig{
			ScreenWidth:    v.GetInt("screen_width"),
			ScreenHeight:   v.GetInt("screen_height"),
			Display:        v.GetString("display"),
			CookiesPath:    v.GetString("cookies_path"),
			UseVision:      v.GetBool("use_vision"),
			AllowedDomains: splitList(v.GetString("allowed_domains")),
		},
		Agent: AgentConfig{
			MaxActionsPerStep: v.GetInt("max_actions_per_step"),
			MaxFailures:       v.GetInt("max_failures"),
		},
		Log: LogConfig{
			Level:  v.GetString("log_level"),
			Format: v.GetString("log_format"),
			File:   v.GetString("log_file"),
		},
		Server: ServerConfig{
			Transport: strings.ToLower(v.GetString("transport")),
			Addr:      v.GetString("addr"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks shape only. Missing credentials are reported per task call.
func (c *Config) validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderLangchain:
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider)
	}
	switch c.Server.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("unknown transport %q", c.Server.Transport)
	}
	if c.Browser.ScreenWidth <= 0 || c.Browser.ScreenHeight <= 0 {
		return fmt.Errorf("invalid screen size %dx%d", c.Browser.ScreenWidth, c.Browser.ScreenHeight)
	}
	if c.Browser.CookiesPath == "" {
		return fmt.Errorf("COOKIES_PATH must not be empty")
	}
	if c.Agent.MaxActionsPerStep <= 0 {
		c.Agent.MaxActionsPerStep = 10
	}
	if c.Agent.MaxFailures <= 0 {
		c.Agent.MaxFailures = 3
	}
	return nil
}

func splitList(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
