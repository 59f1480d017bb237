// Package ai provides the completion client interface and its backend
// implementations for the supported AI providers.
package ai

import (
	"context"
	"log/slog"

	"github.com/oskli/triagebot/internal/config"
	errs "github.com/oskli/triagebot/internal/errors"
)

// NewClient creates and returns a completion Client based on the provided
// configuration. It acts as a factory, selecting either the Anthropic or
// Gemini implementation.
func NewClient(ctx context.Context, cfg config.AIConfig, log *slog.Logger) (Client, error) {
	log.Info("Initializing AI client", "backend", cfg.Backend, "model", cfg.Model)

	switch cfg.Backend {
	case "anthropic":
		client, err := newAnthropicClient(cfg, log)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "gemini":
		client, err := newGeminiClient(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, errs.NewConfigError("unknown AI backend: "+cfg.Backend, nil)
	}
}
