package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/oskli/triagebot/internal/config"
	errs "github.com/oskli/triagebot/internal/errors"
)

type geminiClient struct {
	genaiClient   *genai.Client
	log           *slog.Logger
	contentConfig *genai.GenerateContentConfig
	modelName     string
}

func newGeminiClient(ctx context.Context, cfg config.AIConfig, log *slog.Logger) (*geminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errs.NewConfigError("gemini API key is required", nil)
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errs.NewConnectionError("failed to create genai client", err)
	}

	temperature := cfg.Temperature
	baseCfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(cfg.MaxTokens),
	}
	if cfg.Instruction != "" {
		baseCfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: cfg.Instruction}}}
	}

	logger := log.With("component", "gemini_client")
	logger.Info("Gemini client initialized successfully", "model", cfg.Model)
	return &geminiClient{
		genaiClient:   gi,
		log:           logger,
		contentConfig: baseCfg,
		modelName:     cfg.Model,
	}, nil
}

// Complete runs one completion round against the Gemini API.
func (c *geminiClient) Complete(ctx context.Context, conv *Conversation, tools []ToolDescriptor) (Outcome, error) {
	contents := conversationToContents(conv)

	copyCfg := *c.contentConfig
	if len(tools) > 0 {
		copyCfg.Tools = convertGeminiTools(tools)
	}

	resp, err := c.genaiClient.Models.GenerateContent(ctx, c.modelName, contents, &copyCfg)
	if err != nil {
		c.log.ErrorContext(ctx, "Gemini API call failed", "error", err)
		return nil, errs.NewUpstreamError("gemini API call failed", err)
	}

	return outcomeFromResponse(resp)
}

// conversationToContents converts the neutral conversation to genai contents.
// Tool calls become FunctionCall parts on the model role; tool results become
// FunctionResponse parts on the user role.
func conversationToContents(conv *Conversation) []*genai.Content {
	turns := conv.Turns()
	contents := make([]*genai.Content, 0, len(turns))

	for _, turn := range turns {
		var role genai.Role = genai.RoleUser
		if turn.Role == RoleAssistant {
			role = genai.RoleModel
		}

		switch {
		case turn.ToolCall != nil:
			contents = append(contents, genai.NewContentFromParts([]*genai.Part{{
				FunctionCall: &genai.FunctionCall{
					ID:   turn.ToolCall.ID,
					Name: turn.ToolCall.Name,
					Args: turn.ToolCall.Arguments,
				},
			}}, role))
		case turn.ToolResult != nil:
			response := map[string]any{"output": turn.ToolResult.Content}
			if turn.ToolResult.IsError {
				response = map[string]any{"error": turn.ToolResult.Content}
			}
			contents = append(contents, genai.NewContentFromParts([]*genai.Part{{
				FunctionResponse: &genai.FunctionResponse{
					ID:       turn.ToolResult.ID,
					Name:     turn.ToolResult.Name,
					Response: response,
				},
			}}, role))
		default:
			contents = append(contents, genai.NewContentFromText(turn.Text, role))
		}
	}

	return contents
}

// convertGeminiTools converts the tool catalog to genai function declarations.
func convertGeminiTools(tools []ToolDescriptor) []*genai.Tool {
	declarations := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, tool := range tools {
		declarations = append(declarations, &genai.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  schemaFromDescriptor(tool.InputSchema),
		})
	}
	return []*genai.Tool{{FunctionDeclarations: declarations}}
}

// schemaFromDescriptor maps a tool's JSON-schema fragment onto genai.Schema.
// Tool schemas are object-typed at the root even when the type is omitted.
func schemaFromDescriptor(schema ToolInputSchema) *genai.Schema {
	rootType := schema.Type
	if rootType == "" {
		rootType = "object"
	}

	out := &genai.Schema{
		Type:     schemaType(rootType),
		Required: schema.Required,
	}
	if len(schema.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(schema.Properties))
		for name, value := range schema.Properties {
			prop, _ := value.(map[string]any)
			out.Properties[name] = schemaFromMap(prop)
		}
	}
	return out
}

// schemaFromMap recursively converts one JSON-schema node.
func schemaFromMap(node map[string]any) *genai.Schema {
	if node == nil {
		return &genai.Schema{Type: genai.TypeString}
	}

	typeName, _ := node["type"].(string)
	out := &genai.Schema{Type: schemaType(typeName)}

	if desc, ok := node["description"].(string); ok {
		out.Description = desc
	}

	if properties, ok := node["properties"].(map[string]any); ok {
		out.Properties = make(map[string]*genai.Schema, len(properties))
		for name, value := range properties {
			prop, _ := value.(map[string]any)
			out.Properties[name] = schemaFromMap(prop)
		}
	}

	if items, ok := node["items"].(map[string]any); ok {
		out.Items = schemaFromMap(items)
	}

	if required, ok := node["required"].([]any); ok {
		for _, entry := range required {
			if name, ok := entry.(string); ok {
				out.Required = append(out.Required, name)
			}
		}
	}

	return out
}

// schemaType maps JSON-schema type names to genai types. Properties without
// a recognized type degrade to plain strings.
func schemaType(name string) genai.Type {
	switch name {
	case "object":
		return genai.TypeObject
	case "array":
		return genai.TypeArray
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}

// outcomeFromResponse maps a GenerateContent response to an Outcome, failing
// closed on anything that is neither text nor a function call.
func outcomeFromResponse(resp *genai.GenerateContentResponse) (Outcome, error) {
	if resp == nil {
		return nil, errs.NewProtocolError("completion response contained no content", nil)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reason := resp.PromptFeedback.BlockReasonMessage
		if reason == "" {
			reason = fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		}
		return nil, errs.NewUpstreamError("completion blocked by safety filter: "+reason, nil)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, errs.NewProtocolError("completion response contained no content", nil)
	}

	var text strings.Builder
	sawText := false

	for _, part := range resp.Candidates[0].Content.Parts {
		if part.FunctionCall != nil {
			args := part.FunctionCall.Args
			if args == nil {
				args = map[string]any{}
			}
			return ToolCallRequested{
				ID:        part.FunctionCall.ID,
				Name:      part.FunctionCall.Name,
				Arguments: args,
			}, nil
		}
		if part.Text != "" {
			text.WriteString(part.Text)
			sawText = true
		}
	}

	if !sawText {
		return nil, errs.NewProtocolError("completion response contained neither text nor a tool call", nil)
	}

	return FinalAnswer{Text: text.String()}, nil
}
