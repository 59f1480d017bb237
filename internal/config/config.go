// Package config manages application configuration from environment
// variables, an optional config file, and default values.
package config

import "time"

// Config defines the application configuration. Credentials come from the
// environment (CHAT_BOT_TOKEN, AI_PROVIDER_API_KEY, TOOL_SERVER_AUTH_TOKEN,
// TOOL_SERVER_HOST); everything else can be set in config.yaml or through
// BOT_* environment variables. The value is read-only after LoadConfig.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	AI        AIConfig        `mapstructure:"ai"`
	MCP       MCPConfig       `mapstructure:"mcp"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LogConfig controls slog output.
type LogConfig struct {
	Level  string `mapstructure:"level"  validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// TelegramConfig holds the chat gateway settings.
type TelegramConfig struct {
	Token            string   `mapstructure:"token"              validate:"required"`
	AllowedChatID    int64    `mapstructure:"allowed_chat_id"`
	MaxMessageLength int      `mapstructure:"max_message_length" validate:"required,min=1,max=4096"`
	Messages         Messages `mapstructure:"messages"`
}

// Messages are the user-visible reply strings. StatusConnected takes the
// tool count (%d); ErrorReply takes the error (%v).
type Messages struct {
	ProvideQuestion    string `mapstructure:"provide_question"    validate:"required"`
	Greeting           string `mapstructure:"greeting"            validate:"required"`
	StatusConnected    string `mapstructure:"status_connected"    validate:"required"`
	StatusDisconnected string `mapstructure:"status_disconnected" validate:"required"`
	ErrorReply         string `mapstructure:"error_reply"         validate:"required"`
	TooManySteps       string `mapstructure:"too_many_steps"      validate:"required"`
	EmptyAnswer        string `mapstructure:"empty_answer"        validate:"required"`
}

// AIConfig selects and tunes the completion backend.
type AIConfig struct {
	Backend           string        `mapstructure:"backend"             validate:"required,oneof=anthropic gemini"`
	APIKey            string        `mapstructure:"api_key"             validate:"required"`
	Model             string        `mapstructure:"model"               validate:"required"`
	MaxTokens         int64         `mapstructure:"max_tokens"          validate:"required,min=1,max=64000"`
	Temperature       float32       `mapstructure:"temperature"         validate:"min=0,max=2"`
	Instruction       string        `mapstructure:"instruction"         validate:"required"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"     validate:"required,min=1s,max=10m"`
	MaxToolIterations int           `mapstructure:"max_tool_iterations" validate:"required,min=1,max=50"`
}

// MCPConfig describes how to spawn and talk to the tool server subprocess.
type MCPConfig struct {
	Command        string        `mapstructure:"command"         validate:"required"`
	Package        string        `mapstructure:"package"         validate:"required"`
	AuthToken      string        `mapstructure:"auth_token"      validate:"required"`
	Host           string        `mapstructure:"host"            validate:"required"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" validate:"required,min=1s,max=5m"`
	CallTimeout    time.Duration `mapstructure:"call_timeout"    validate:"required,min=1s,max=10m"`
	PingTimeout    time.Duration `mapstructure:"ping_timeout"    validate:"required,min=1s,max=1m"`
}

// SchedulerConfig lists the periodic background tasks.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables a named task on a cron schedule (seconds field included).
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}
