package config

import "time"

// Default values for configuration
const (
	// Log defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// AI defaults
	DefaultAIBackend           = "anthropic"
	DefaultAIModel             = "claude-3-5-sonnet-20241022"
	DefaultAIMaxTokens         = 1000
	DefaultAITemperature       = 1.0
	DefaultAIRequestTimeout    = 2 * time.Minute
	DefaultAIMaxToolIterations = 10 // Prevent runaway tool loops

	// Tool server defaults
	DefaultMCPCommand        = "npx"
	DefaultMCPPackage        = "@sentry/mcp-server@latest"
	DefaultMCPHost           = "sentry.io"
	DefaultMCPConnectTimeout = 30 * time.Second
	DefaultMCPCallTimeout    = 2 * time.Minute
	DefaultMCPPingTimeout    = 5 * time.Second // Quick status check response

	// Telegram defaults
	DefaultTelegramMaxMessageLength = 4096 // Telegram's maximum message length
)

// DefaultAIInstruction is the system prompt sent with every completion request.
const DefaultAIInstruction = `You are a helpful assistant that can answer questions about Sentry data. You are also able to use the tools provided to you to answer questions.

For your final response - please assume the user is a technically minded, experienced software engineer. Remember to be friendly and supportive - they might be stressed or frustrated as they are dealing with a bug or issue.

If the user gives you a sentry issue id, you can use that to help you understand which Sentry project the issue is about - the format of a sentry issue id is "PROJECT_NAME-ISSUE" so from that you can determine the project name when you are using the tools to look up information.`

// Default reply messages
var DefaultMessages = Messages{
	ProvideQuestion:    "ℹ️ Please provide a question with your command.",
	Greeting:           "Hello!",
	StatusConnected:    "✅ Connected to Sentry with %d tools available",
	StatusDisconnected: "❌ Not connected to Sentry",
	ErrorReply:         "Sorry, I encountered an error: %v",
	TooManySteps:       "Sorry, the request took too many steps to complete.",
	EmptyAnswer:        "I couldn't process that request.",
}

// DefaultSchedulerTasks enables the periodic tool-server health check.
var DefaultSchedulerTasks = map[string]TaskConfig{
	"bridge_health": {Enabled: true, Schedule: "0 */5 * * * *"},
}
