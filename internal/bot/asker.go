package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oskli/triagebot/internal/ai"
	"github.com/oskli/triagebot/internal/config"
	errs "github.com/oskli/triagebot/internal/errors"
	"github.com/oskli/triagebot/internal/mcp"
)

// Asker runs the completion/tool loop for a single question: it sends the
// conversation to the completion backend, executes any tool call the model
// requests through the bridge, feeds the result back, and repeats until the
// model produces a final text answer or the iteration cap is hit.
type Asker struct {
	logger         *slog.Logger
	client         ai.Client
	bridge         mcp.Bridge
	maxIterations  int
	requestTimeout time.Duration
	emptyAnswer    string
}

// NewAsker wires the completion client and the tool bridge into an Asker.
// emptyAnswer is returned verbatim when the model finishes without any text.
func NewAsker(logger *slog.Logger, client ai.Client, bridge mcp.Bridge, cfg config.AIConfig, emptyAnswer string) *Asker {
	return &Asker{
		logger:         logger.With("component", "asker"),
		client:         client,
		bridge:         bridge,
		maxIterations:  cfg.MaxToolIterations,
		requestTimeout: cfg.RequestTimeout,
		emptyAnswer:    emptyAnswer,
	}
}

// Ask answers one question. Tool failures are folded back into the
// conversation so the model can react to them; completion failures and an
// exhausted iteration budget abort with a typed error for the caller to map
// to a chat reply.
func (a *Asker) Ask(ctx context.Context, question string) (string, error) {
	conv := ai.NewConversation(question)
	tools := a.bridge.Tools()

	for iteration := 1; iteration <= a.maxIterations; iteration++ {
		a.logger.DebugContext(ctx, "Requesting completion", "iteration", iteration)

		outcome, err := a.complete(ctx, conv, tools)
		if err != nil {
			return "", err
		}

		switch result := outcome.(type) {
		case ai.FinalAnswer:
			if strings.TrimSpace(result.Text) == "" {
				a.logger.WarnContext(ctx, "Completion finished without any text")
				return a.emptyAnswer, nil
			}

			return result.Text, nil
		case ai.ToolCallRequested:
			conv.AppendToolCall(result)
			conv.AppendToolResult(a.executeTool(ctx, result))
		default:
			return "", errs.NewProtocolError(fmt.Sprintf("completion produced an unsupported outcome %T", outcome), nil)
		}
	}

	a.logger.WarnContext(ctx, "Tool loop exhausted its iteration budget", "max_iterations", a.maxIterations)

	return "", errs.NewToolLoopExceededError(fmt.Sprintf("question required more than %d tool iterations", a.maxIterations))
}

// complete sends one completion request bounded by the configured timeout.
func (a *Asker) complete(ctx context.Context, conv *ai.Conversation, tools []ai.ToolDescriptor) (ai.Outcome, error) {
	if a.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.requestTimeout)
		defer cancel()
	}

	return a.client.Complete(ctx, conv, tools)
}

// executeTool runs one requested tool call. Failures never abort the loop;
// they come back as an error-flagged result the model sees on the next round.
func (a *Asker) executeTool(ctx context.Context, call ai.ToolCallRequested) ai.ToolResult {
	a.logger.InfoContext(ctx, "Executing tool call", "tool", call.Name, "call_id", call.ID)

	content, err := a.bridge.Call(ctx, call.Name, call.Arguments)
	if err != nil {
		a.logger.WarnContext(ctx, "Tool call failed", "tool", call.Name, "error", err)

		return ai.ToolResult{
			ID:      call.ID,
			Name:    call.Name,
			Content: "Error: " + err.Error(),
			IsError: true,
		}
	}

	return ai.ToolResult{
		ID:      call.ID,
		Name:    call.Name,
		Content: content,
	}
}
