package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/oskli/triagebot/internal/config"
)

const (
	sendMessageTimeout = 10 * time.Second

	// Telegram drops the typing indicator after roughly five seconds, so it
	// is refreshed a little faster than that.
	typingInterval = 4 * time.Second
)

// Sender delivers handler replies through the Telegram API. Messages longer
// than the API limit are split into chunks; only the first chunk is threaded
// as a reply to the triggering message.
type Sender struct {
	bot       *bot.Bot
	log       *slog.Logger
	maxLength int
}

// NewSender creates a Sender bound to the given bot instance.
func NewSender(b *bot.Bot, logger *slog.Logger, maxLength int) *Sender {
	if maxLength <= 0 {
		maxLength = config.DefaultTelegramMaxMessageLength
	}

	return &Sender{
		bot:       b,
		log:       logger.With("component", "telegram_sender"),
		maxLength: maxLength,
	}
}

// Reply sends text to a chat, splitting it when it exceeds the configured
// maximum message length.
func (s *Sender) Reply(ctx context.Context, chatID int64, replyTo int, text string) error {
	chunks := splitMessage(text, s.maxLength)

	for i, chunk := range chunks {
		params := &bot.SendMessageParams{
			ChatID: chatID,
			Text:   chunk,
		}
		if i == 0 && replyTo > 0 {
			params.ReplyParameters = &models.ReplyParameters{MessageID: replyTo}
		}

		if err := s.sendChunk(ctx, params); err != nil {
			return fmt.Errorf("failed to send message chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}

	s.log.DebugContext(ctx, "Sent reply", "chat_id", chatID, "chunks", len(chunks))
	return nil
}

func (s *Sender) sendChunk(ctx context.Context, params *bot.SendMessageParams) error {
	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()

	_, err := s.bot.SendMessage(sendCtx, params)
	return err
}

// Typing shows the typing indicator and keeps it alive until the returned
// stop function is called or the context ends.
func (s *Sender) Typing(ctx context.Context, chatID int64) func() {
	typingCtx, cancel := context.WithCancel(ctx)

	go s.sendContinuousTyping(typingCtx, chatID)

	return cancel
}

func (s *Sender) sendContinuousTyping(ctx context.Context, chatID int64) {
	ticker := time.NewTicker(typingInterval)
	defer ticker.Stop()

	if err := s.sendTypingAction(ctx, chatID); err != nil {
		s.log.DebugContext(ctx, "Failed to send initial typing action", "error", err, "chat_id", chatID)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.sendTypingAction(ctx, chatID); err != nil {
				if ctx.Err() != nil {
					return
				}
				s.log.DebugContext(ctx, "Typing action failed", "error", err, "chat_id", chatID)
			}
		}
	}
}

func (s *Sender) sendTypingAction(ctx context.Context, chatID int64) error {
	_, err := s.bot.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	})
	return err
}

// splitMessage cuts text into chunks of at most limit runes, preferring to
// break at the last newline, then the last space, inside the window.
func splitMessage(text string, limit int) []string {
	if limit <= 0 || len([]rune(text)) <= limit {
		return []string{text}
	}

	runes := []rune(text)
	var chunks []string

	for len(runes) > limit {
		cut := limit

		window := string(runes[:limit])
		if idx := strings.LastIndexByte(window, '\n'); idx > 0 {
			cut = len([]rune(window[:idx]))
		} else if idx := strings.LastIndexByte(window, ' '); idx > 0 {
			cut = len([]rune(window[:idx]))
		}

		chunks = append(chunks, strings.TrimRight(string(runes[:cut]), " \n"))
		runes = runes[cut:]
		for len(runes) > 0 && (runes[0] == ' ' || runes[0] == '\n') {
			runes = runes[1:]
		}
	}

	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}

	return chunks
}
