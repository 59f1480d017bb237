// Package tasks implements scheduled background tasks for the TriageBot
// Telegram bot. It includes task definitions, dependencies, and registration
// mechanisms.
package tasks

import (
	"log/slog"

	"github.com/oskli/triagebot/internal/config"
	"github.com/oskli/triagebot/internal/mcp"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Bridge mcp.Bridge
	Config *config.Config
}
