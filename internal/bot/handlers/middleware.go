// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// ChatAllowed creates a middleware that restricts handlers to the configured
// chat when allowed_chat_id is set. Private chats always pass; group messages
// from other chats are dropped silently so the bot never replies in groups it
// was not set up for.
func ChatAllowed(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			allowedChatID := deps.Config.Telegram.AllowedChatID
			if allowedChatID == 0 || update.Message == nil {
				next(ctx, bot, update)
				return
			}

			if update.Message.Chat.Type == models.ChatTypePrivate {
				next(ctx, bot, update)
				return
			}

			if update.Message.Chat.ID != allowedChatID {
				log := deps.Logger.With("middleware", "ChatAllowed")
				log.WarnContext(ctx, "Ignoring message from unexpected chat",
					"chat_id", update.Message.Chat.ID,
					"allowed_chat_id", allowedChatID)
				return
			}

			next(ctx, bot, update)
		}
	}
}
