package ai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	anthropicSDK "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/oskli/triagebot/internal/config"
	errs "github.com/oskli/triagebot/internal/errors"
)

type anthropicClient struct {
	client      anthropicSDK.Client
	log         *slog.Logger
	model       string
	maxTokens   int64
	temperature float32
	instruction string
}

func newAnthropicClient(cfg config.AIConfig, log *slog.Logger) (*anthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, errs.NewConfigError("anthropic API key is required", nil)
	}

	client := anthropicSDK.NewClient(
		option.WithAPIKey(cfg.APIKey),
	)

	logger := log.With("component", "anthropic_client")
	logger.Info("Anthropic client initialized successfully", "model", cfg.Model)
	return &anthropicClient{
		client:      client,
		log:         logger,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		instruction: cfg.Instruction,
	}, nil
}

// Complete runs one completion round against the Messages API.
func (c *anthropicClient) Complete(ctx context.Context, conv *Conversation, tools []ToolDescriptor) (Outcome, error) {
	params := anthropicSDK.MessageNewParams{
		Model:     anthropicSDK.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages:  conversationToMessages(conv),
	}
	if c.instruction != "" {
		params.System = []anthropicSDK.TextBlockParam{{
			Text: c.instruction,
		}}
	}
	if c.temperature > 0 {
		params.Temperature = anthropicSDK.Float(float64(c.temperature))
	}
	if len(tools) > 0 {
		params.Tools = convertAnthropicTools(tools)
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		c.log.ErrorContext(ctx, "Anthropic API call failed", "error", err)
		return nil, errs.NewUpstreamError("anthropic API call failed", err)
	}

	return outcomeFromMessage(message)
}

// conversationToMessages converts the neutral conversation into Anthropic
// message params, batching consecutive same-role turns into one message.
func conversationToMessages(conv *Conversation) []anthropicSDK.MessageParam {
	turns := conv.Turns()
	messages := make([]anthropicSDK.MessageParam, 0, len(turns))

	var currentBlocks []anthropicSDK.ContentBlockParamUnion
	var currentRole anthropicSDK.MessageParamRole

	flushCurrentMessage := func() {
		if len(currentBlocks) > 0 {
			messages = append(messages, anthropicSDK.MessageParam{
				Role:    currentRole,
				Content: currentBlocks,
			})
			currentBlocks = nil
		}
	}

	for _, turn := range turns {
		role := anthropicSDK.MessageParamRoleUser
		if turn.Role == RoleAssistant {
			role = anthropicSDK.MessageParamRoleAssistant
		}
		if role != currentRole {
			flushCurrentMessage()
			currentRole = role
		}

		switch {
		case turn.ToolCall != nil:
			currentBlocks = append(currentBlocks, anthropicSDK.NewToolUseBlock(
				turn.ToolCall.ID,
				turn.ToolCall.Arguments,
				turn.ToolCall.Name,
			))
		case turn.ToolResult != nil:
			currentBlocks = append(currentBlocks, anthropicSDK.NewToolResultBlock(
				turn.ToolResult.ID,
				turn.ToolResult.Content,
				turn.ToolResult.IsError,
			))
		case turn.Text != "":
			currentBlocks = append(currentBlocks, anthropicSDK.NewTextBlock(turn.Text))
		}
	}

	flushCurrentMessage()
	return messages
}

// convertAnthropicTools converts the tool catalog to Anthropic tool params.
func convertAnthropicTools(tools []ToolDescriptor) []anthropicSDK.ToolUnionParam {
	converted := make([]anthropicSDK.ToolUnionParam, len(tools))
	for i, tool := range tools {
		converted[i] = anthropicSDK.ToolUnionParam{
			OfTool: &anthropicSDK.ToolParam{
				Name:        tool.Name,
				Description: anthropicSDK.String(tool.Description),
				InputSchema: anthropicSDK.ToolInputSchemaParam{Properties: tool.InputSchema.Properties},
			},
		}
	}
	return converted
}

// outcomeFromMessage maps a Messages API response to an Outcome, failing
// closed on anything that is neither text nor a decodable tool call.
func outcomeFromMessage(message *anthropicSDK.Message) (Outcome, error) {
	if message == nil || len(message.Content) == 0 {
		return nil, errs.NewProtocolError("completion response contained no content", nil)
	}

	var text strings.Builder
	sawText := false

	for _, block := range message.Content {
		switch block.Type {
		case "tool_use":
			args, err := decodeArguments(block.Input)
			if err != nil {
				return nil, errs.NewProtocolError("undecodable tool call arguments for "+block.Name, err)
			}
			return ToolCallRequested{ID: block.ID, Name: block.Name, Arguments: args}, nil
		case "text":
			text.WriteString(block.Text)
			sawText = true
		}
	}

	if !sawText {
		return nil, errs.NewProtocolError("completion response contained neither text nor a tool call", nil)
	}

	return FinalAnswer{Text: text.String()}, nil
}

// decodeArguments normalizes the SDK's tool input payload to a plain map.
func decodeArguments(input any) (map[string]any, error) {
	raw, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return map[string]any{}, nil
	}

	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	return args, nil
}
