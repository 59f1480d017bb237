package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	errs "github.com/oskli/triagebot/internal/errors"
)

// NewAskHandler returns a handler for the !ask command.
func NewAskHandler(deps HandlerDeps) bot.HandlerFunc {
	return askHandler{deps}.Handle
}

// askHandler processes the !ask command using injected dependencies.
type askHandler struct {
	deps HandlerDeps
}

func (h askHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "ask")

	msg := update.Message
	if msg == nil || msg.From == nil {
		log.WarnContext(ctx, "Ask handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	question, ok := commandArgument(msg.Text, "!ask")
	if !ok {
		log.DebugContext(ctx, "Message only resembles the ask command, skipping", "chat_id", msg.Chat.ID)
		return
	}

	chatID := msg.Chat.ID
	log.InfoContext(ctx, "Handling !ask command", "chat_id", chatID, "user_id", msg.From.ID)

	if question == "" {
		sendReply(ctx, h.deps, log, chatID, msg.ID, h.deps.Config.Telegram.Messages.ProvideQuestion)
		return
	}

	processQuestion(ctx, h.deps, log, chatID, msg.ID, question)
}

// commandArgument extracts the argument of a prefix command. The boolean is
// false when the text is a different command sharing the prefix, such as
// "!askfoo" for "!ask".
func commandArgument(text, command string) (string, bool) {
	if !strings.HasPrefix(text, command) {
		return "", false
	}

	rest := strings.TrimPrefix(text, command)
	if rest != "" {
		r, _ := utf8.DecodeRuneInString(rest)
		if !unicode.IsSpace(r) {
			return "", false
		}
	}

	return strings.TrimSpace(rest), true
}

// processQuestion runs the completion/tool loop for a question and replies
// with the outcome. Typed errors map to their configured chat messages; the
// error text itself is only shown for unexpected failures.
func processQuestion(ctx context.Context, deps HandlerDeps, log *slog.Logger, chatID int64, replyTo int, question string) {
	stopTyping := deps.Replier.Typing(ctx, chatID)
	defer stopTyping()

	answer, err := deps.Asker.Ask(ctx, question)
	if err != nil {
		log.ErrorContext(ctx, "Failed to answer question", "error", err, "chat_id", chatID)

		var loopErr *errs.ToolLoopExceededError
		if errors.As(err, &loopErr) {
			sendReply(ctx, deps, log, chatID, replyTo, deps.Config.Telegram.Messages.TooManySteps)
			return
		}

		sendReply(ctx, deps, log, chatID, replyTo, fmt.Sprintf(deps.Config.Telegram.Messages.ErrorReply, err))
		return
	}

	sendReply(ctx, deps, log, chatID, replyTo, answer)
}

// sendReply delivers a reply through the Replier, logging delivery failures
// instead of surfacing them; there is nobody left to tell.
func sendReply(ctx context.Context, deps HandlerDeps, log *slog.Logger, chatID int64, replyTo int, text string) {
	if err := deps.Replier.Reply(ctx, chatID, replyTo, text); err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID)
	}
}
