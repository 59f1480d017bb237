package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oskli/triagebot/internal/config"
	errs "github.com/oskli/triagebot/internal/errors"
)

// setRequiredEnv provides the three mandatory credentials. Individual tests
// blank out the one they want to see reported as missing.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CHAT_BOT_TOKEN", "telegram-token")
	t.Setenv("AI_PROVIDER_API_KEY", "ai-key")
	t.Setenv("TOOL_SERVER_AUTH_TOKEN", "sentry-token")
	t.Setenv("TOOL_SERVER_HOST", "")
}

func TestLoadConfigMissingCredential(t *testing.T) {
	testCases := []struct {
		name  string
		unset string
	}{
		{
			name:  "missing chat bot token",
			unset: "CHAT_BOT_TOKEN",
		},
		{
			name:  "missing ai provider api key",
			unset: "AI_PROVIDER_API_KEY",
		},
		{
			name:  "missing tool server auth token",
			unset: "TOOL_SERVER_AUTH_TOKEN",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tc.unset, "")

			cfg, err := config.LoadConfig("")
			require.Error(t, err)
			assert.Nil(t, cfg)

			var cfgErr *errs.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Contains(t, err.Error(), tc.unset)
		})
	}
}

func TestLoadConfigAllCredentialsMissing(t *testing.T) {
	t.Setenv("CHAT_BOT_TOKEN", "")
	t.Setenv("AI_PROVIDER_API_KEY", "")
	t.Setenv("TOOL_SERVER_AUTH_TOKEN", "")
	t.Setenv("TOOL_SERVER_HOST", "")

	_, err := config.LoadConfig("")
	require.Error(t, err)

	for _, name := range []string{"CHAT_BOT_TOKEN", "AI_PROVIDER_API_KEY", "TOOL_SERVER_AUTH_TOKEN"} {
		assert.Contains(t, err.Error(), name)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "telegram-token", cfg.Telegram.Token)
	assert.Equal(t, "ai-key", cfg.AI.APIKey)
	assert.Equal(t, "sentry-token", cfg.MCP.AuthToken)

	// Host falls back to the public Sentry instance when TOOL_SERVER_HOST is unset.
	assert.Equal(t, "sentry.io", cfg.MCP.Host)

	assert.Equal(t, "anthropic", cfg.AI.Backend)
	assert.Equal(t, "claude-3-5-sonnet-20241022", cfg.AI.Model)
	assert.Equal(t, int64(1000), cfg.AI.MaxTokens)
	assert.Equal(t, 10, cfg.AI.MaxToolIterations)
	assert.Equal(t, 2*time.Minute, cfg.AI.RequestTimeout)

	assert.Equal(t, "npx", cfg.MCP.Command)
	assert.Equal(t, "@sentry/mcp-server@latest", cfg.MCP.Package)
	assert.Equal(t, 30*time.Second, cfg.MCP.ConnectTimeout)

	assert.Equal(t, 4096, cfg.Telegram.MaxMessageLength)
	assert.Equal(t, int64(0), cfg.Telegram.AllowedChatID)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	task, ok := cfg.Scheduler.Tasks["bridge_health"]
	require.True(t, ok)
	assert.True(t, task.Enabled)
	assert.NotEmpty(t, task.Schedule)
}

func TestLoadConfigHostFromEnvironment(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TOOL_SERVER_HOST", "sentry.example.com")

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "sentry.example.com", cfg.MCP.Host)
}

func TestLoadConfigFromFile(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := []byte("ai:\n  backend: gemini\n  model: gemini-2.0-flash\ntelegram:\n  allowed_chat_id: 42\n")
	require.NoError(t, os.WriteFile(path, contents, 0o600))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.AI.Backend)
	assert.Equal(t, "gemini-2.0-flash", cfg.AI.Model)
	assert.Equal(t, int64(42), cfg.Telegram.AllowedChatID)

	// Values absent from the file keep their defaults.
	assert.Equal(t, int64(1000), cfg.AI.MaxTokens)
}

func TestLoadConfigMissingFileIgnored(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "sentry.io", cfg.MCP.Host)
}

func TestLoadConfigInvalidBackend(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BOT_AI_BACKEND", "cohere")

	cfg, err := config.LoadConfig("")
	require.Error(t, err)
	assert.Nil(t, cfg)

	var cfgErr *errs.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoadConfigEnvironmentOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BOT_AI_MAX_TOOL_ITERATIONS", "3")
	t.Setenv("BOT_LOG_LEVEL", "debug")

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.AI.MaxToolIterations)
	assert.Equal(t, "debug", cfg.Log.Level)
}
