package handlers

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot/models"

	"github.com/oskli/triagebot/internal/config"
	"github.com/oskli/triagebot/internal/mcp"
)

// Asker answers one question through the completion/tool loop.
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Replier delivers handler output back to the chat. The Telegram
// implementation splits oversized messages; tests record calls.
type Replier interface {
	Reply(ctx context.Context, chatID int64, replyTo int, text string) error
	// Typing shows the typing indicator until the returned stop function is
	// called. Telegram expires the indicator after a few seconds, so
	// implementations keep refreshing it.
	Typing(ctx context.Context, chatID int64) (stop func())
}

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger  *slog.Logger
	Config  *config.Config
	Asker   Asker
	Bridge  mcp.Bridge
	Replier Replier
	BotInfo *models.User
}
