package env

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for key := range defaults {
		t.Setenv(strings.ToUpper(key), "")
		os.Unsetenv(strings.ToUpper(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-9)
	assert.Empty(t, cfg.LLM.APIKey)
	assert.Empty(t, cfg.GoLogin.APIKey)
	assert.Equal(t, "https://api.gologin.com", cfg.GoLogin.APIURL)
	assert.Equal(t, 1920, cfg.Browser.ScreenWidth)
	assert.Equal(t, 1080, cfg.Browser.ScreenHeight)
	assert.Equal(t, ":99", cfg.Browser.Display)
	assert.Equal(t, "./cookies.json", cfg.Browser.CookiesPath)
	assert.Empty(t, cfg.Browser.AllowedDomains)
	assert.Equal(t, 10, cfg.Agent.MaxActionsPerStep)
	assert.Equal(t, 3, cfg.Agent.MaxFailures)
	assert.Equal(t, TransportStdio, cfg.Server.Transport)
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_MODEL", "gpt-4o")
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("GOLOGIN_API_KEY", "gl-test")
	t.Setenv("GOLOGIN_API_URL", "http://localhost:9000/")
	t.Setenv("SCREEN_WIDTH", "1280")
	t.Setenv("SCREEN_HEIGHT", "720")
	t.Setenv("ALLOWED_DOMAINS", "*.example.com, example.org ,")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "gl-test", cfg.GoLogin.APIKey)
	assert.Equal(t, "http://localhost:9000", cfg.GoLogin.APIURL)
	assert.Equal(t, 1280, cfg.Browser.ScreenWidth)
	assert.Equal(t, 720, cfg.Browser.ScreenHeight)
	assert.Equal(t, []string{"*.example.com", "example.org"}, cfg.Browser.AllowedDomains)
}

func TestLoad_ZeroTemperature(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_TEMPERATURE", "0")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Zero(t, cfg.LLM.Temperature)
}

func TestLoad_FlagsOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRANSPORT", "stdio")

	flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	flags.String("transport", "stdio", "")
	flags.String("addr", ":8080", "")
	require.NoError(t, flags.Parse([]string{"--transport", "http", "--addr", ":9999"}))

	cfg, err := Load(flags)
	require.NoError(t, err)

	assert.Equal(t, TransportHTTP, cfg.Server.Transport)
	assert.Equal(t, ":9999", cfg.Server.Addr)
}

func TestLoad_RejectsUnknownProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "carrier-pigeon")

	_, err := Load(nil)
	assert.Error(t, err)
}

func TestNewEnvServiceIn_OverloadsAppEnvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LLM_MODEL=from-base\nLLM_API_KEY=base-key\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"), []byte("LLM_MODEL=from-test\n"), 0o600))
	t.Setenv("APP_ENV", "test")
	t.Cleanup(func() {
		os.Unsetenv("LLM_MODEL")
		os.Unsetenv("LLM_API_KEY")
	})

	svc := NewEnvServiceIn(dir)

	assert.Equal(t, "test", svc.AppEnv())
	assert.Len(t, svc.LoadedFiles(), 2)
	assert.Equal(t, "from-test", os.Getenv("LLM_MODEL"))
	assert.Equal(t, "base-key", os.Getenv("LLM_API_KEY"))
}
