package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	errs "github.com/oskli/triagebot/internal/errors"
)

// credentialEnv maps config keys to the environment variables that provide
// them. Failure messages name the variable, not the internal key.
var credentialEnv = map[string]string{
	"telegram.token": "CHAT_BOT_TOKEN",
	"ai.api_key":     "AI_PROVIDER_API_KEY",
	"mcp.auth_token": "TOOL_SERVER_AUTH_TOKEN",
	"mcp.host":       "TOOL_SERVER_HOST",
}

// LoadConfig loads and validates configuration from:
// 1. Default values
// 2. An optional YAML file at path (or ./config.yaml when path is empty)
// 3. Environment variables (credentials above, plus BOT_* overrides)
//
// Each layer overrides the previous one. The returned Config is validated
// and must be treated as read-only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if err := readConfigFile(v, path); err != nil {
		return nil, errs.NewConfigError("failed to load config file", err)
	}

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, envVar := range credentialEnv {
		if err := v.BindEnv(key, envVar); err != nil {
			return nil, errs.NewConfigError("failed to bind environment variable "+envVar, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errs.NewConfigError("failed to parse config", err)
	}

	if missing := missingCredentials(cfg); len(missing) > 0 {
		return nil, errs.NewConfigError(
			"missing required environment variable(s): "+strings.Join(missing, ", "), nil)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, errs.NewConfigError("invalid configuration", err)
	}

	return cfg, nil
}

// readConfigFile loads the optional YAML file. A missing file is fine; any
// other read error is not.
func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// missingCredentials returns the required environment variables that are
// still unset after all layers were applied, in a stable order.
func missingCredentials(cfg *Config) []string {
	var missing []string
	if cfg.Telegram.Token == "" {
		missing = append(missing, "CHAT_BOT_TOKEN")
	}
	if cfg.AI.APIKey == "" {
		missing = append(missing, "AI_PROVIDER_API_KEY")
	}
	if cfg.MCP.AuthToken == "" {
		missing = append(missing, "TOOL_SERVER_AUTH_TOKEN")
	}
	return missing
}

// setDefaults sets default values for optional configuration parameters.
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)

	// AI defaults
	v.SetDefault("ai.backend", DefaultAIBackend)
	v.SetDefault("ai.model", DefaultAIModel)
	v.SetDefault("ai.max_tokens", DefaultAIMaxTokens)
	v.SetDefault("ai.temperature", DefaultAITemperature)
	v.SetDefault("ai.instruction", DefaultAIInstruction)
	v.SetDefault("ai.request_timeout", DefaultAIRequestTimeout)
	v.SetDefault("ai.max_tool_iterations", DefaultAIMaxToolIterations)

	// Tool server defaults
	v.SetDefault("mcp.command", DefaultMCPCommand)
	v.SetDefault("mcp.package", DefaultMCPPackage)
	v.SetDefault("mcp.host", DefaultMCPHost)
	v.SetDefault("mcp.connect_timeout", DefaultMCPConnectTimeout)
	v.SetDefault("mcp.call_timeout", DefaultMCPCallTimeout)
	v.SetDefault("mcp.ping_timeout", DefaultMCPPingTimeout)

	// Telegram defaults
	v.SetDefault("telegram.allowed_chat_id", 0)
	v.SetDefault("telegram.max_message_length", DefaultTelegramMaxMessageLength)

	// Telegram messages defaults
	v.SetDefault("telegram.messages.provide_question", DefaultMessages.ProvideQuestion)
	v.SetDefault("telegram.messages.greeting", DefaultMessages.Greeting)
	v.SetDefault("telegram.messages.status_connected", DefaultMessages.StatusConnected)
	v.SetDefault("telegram.messages.status_disconnected", DefaultMessages.StatusDisconnected)
	v.SetDefault("telegram.messages.error_reply", DefaultMessages.ErrorReply)
	v.SetDefault("telegram.messages.too_many_steps", DefaultMessages.TooManySteps)
	v.SetDefault("telegram.messages.empty_answer", DefaultMessages.EmptyAnswer)

	// Scheduler defaults
	v.SetDefault("scheduler.tasks", DefaultSchedulerTasks)
}
