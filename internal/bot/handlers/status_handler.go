package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStatusHandler returns a handler for the !status command.
func NewStatusHandler(deps HandlerDeps) bot.HandlerFunc {
	return statusHandler{deps}.Handle
}

// statusHandler reports whether the tool server session is alive and how many
// tools it advertised at connect time.
type statusHandler struct {
	deps HandlerDeps
}

func (h statusHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "status")

	msg := update.Message
	if msg == nil || msg.From == nil {
		log.WarnContext(ctx, "Status handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	if _, ok := commandArgument(msg.Text, "!status"); !ok {
		log.DebugContext(ctx, "Message only resembles the status command, skipping", "chat_id", msg.Chat.ID)
		return
	}

	chatID := msg.Chat.ID
	log.InfoContext(ctx, "Handling !status command", "chat_id", chatID, "user_id", msg.From.ID)

	messages := h.deps.Config.Telegram.Messages

	text := fmt.Sprintf(messages.StatusConnected, h.deps.Bridge.ToolCount())
	if err := h.deps.Bridge.Ping(ctx); err != nil {
		log.WarnContext(ctx, "Tool server ping failed", "error", err, "chat_id", chatID)
		text = messages.StatusDisconnected
	}

	sendReply(ctx, h.deps, log, chatID, msg.ID, text)
}
