package openaicompat

import (
	"fmt"

	"browser-use-gologin/internal/application/port/output"
)

var _ output.LLMFactory = (*Factory)(nil)

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
	if cfg.Model == "" {
		return nil, fmt.Errorf("missing LLM model")
	}
	return NewAdapter(Config{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		BaseURL:     cfg.BaseURL,
		Temperature: cfg.Temperature,
		Logger:      f.logger,
	}), nil
}
