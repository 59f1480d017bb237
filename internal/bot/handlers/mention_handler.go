package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

type mentionHandler struct {
	deps HandlerDeps
}

// NewMentionHandler creates the default handler for messages that are not
// commands. Direct messages and messages mentioning the bot are treated as
// questions; everything else is ignored.
func NewMentionHandler(deps HandlerDeps) bot.HandlerFunc {
	return mentionHandler{deps}.Handle
}

func (h mentionHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "mention")

	msg := update.Message
	if msg == nil || msg.Text == "" || msg.From == nil {
		log.DebugContext(ctx, "Ignoring update with nil message, empty text, or nil sender", "update_id", update.ID)
		return
	}

	if !h.shouldHandle(msg) {
		log.DebugContext(ctx, "Bot not mentioned or referenced, skipping", "chat_id", msg.Chat.ID)
		return
	}

	chatID := msg.Chat.ID
	log.InfoContext(ctx, "Handling mention", "chat_id", chatID, "message_id", msg.ID)

	question := msg.Text
	if h.deps.BotInfo != nil {
		question = stripMention(question, h.deps.BotInfo.Username)
	}

	if question == "" {
		sendReply(ctx, h.deps, log, chatID, msg.ID, h.deps.Config.Telegram.Messages.Greeting)
		return
	}

	processQuestion(ctx, h.deps, log, chatID, msg.ID, question)
}

// shouldHandle reports whether the message addresses the bot: any private
// chat message, an explicit @mention, or a reply to one of the bot's own
// messages. Command lookalikes stay with their registered handlers.
func (h mentionHandler) shouldHandle(msg *models.Message) bool {
	if strings.HasPrefix(msg.Text, "!") {
		return false
	}

	if msg.Chat.Type == models.ChatTypePrivate {
		return true
	}

	botInfo := h.deps.BotInfo
	if botInfo == nil || botInfo.Username == "" {
		return false
	}

	text := strings.ToLower(msg.Text)
	mention := "@" + strings.ToLower(botInfo.Username)

	for _, e := range msg.Entities {
		if e.Type != models.MessageEntityTypeMention {
			continue
		}
		if e.Offset >= 0 && e.Length > 0 && e.Offset+e.Length <= len(text) {
			if text[e.Offset:e.Offset+e.Length] == mention {
				return true
			}
		}
	}

	if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil && msg.ReplyToMessage.From.ID == botInfo.ID {
		return true
	}

	return false
}

// stripMention removes every case-insensitive occurrence of the bot's
// @username from the text and trims the remainder.
func stripMention(text, username string) string {
	if username == "" {
		return strings.TrimSpace(text)
	}

	mention := "@" + strings.ToLower(username)
	lower := strings.ToLower(text)

	var out strings.Builder
	for {
		idx := strings.Index(lower, mention)
		if idx < 0 {
			out.WriteString(text)
			break
		}
		out.WriteString(text[:idx])
		text = text[idx+len(mention):]
		lower = lower[idx+len(mention):]
	}

	return strings.TrimSpace(out.String())
}
