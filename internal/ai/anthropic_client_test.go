package ai

import (
	"encoding/json"
	"errors"
	"testing"

	anthropicSDK "github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/oskli/triagebot/internal/errors"
)

func TestConversationToMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		conv *Conversation
		want []anthropicSDK.MessageParam
	}{
		{
			name: "question only",
			conv: NewConversation("how many issues today?"),
			want: []anthropicSDK.MessageParam{
				{
					Role: anthropicSDK.MessageParamRoleUser,
					Content: []anthropicSDK.ContentBlockParamUnion{
						anthropicSDK.NewTextBlock("how many issues today?"),
					},
				},
			},
		},
		{
			name: "full tool round",
			conv: func() *Conversation {
				conv := NewConversation("how many issues today?")
				conv.AppendToolCall(ToolCallRequested{
					ID:        "call-1",
					Name:      "list_issues",
					Arguments: map[string]any{},
				})
				conv.AppendToolResult(ToolResult{
					ID:      "call-1",
					Name:    "list_issues",
					Content: "3 issues",
				})

				return conv
			}(),
			want: []anthropicSDK.MessageParam{
				{
					Role: anthropicSDK.MessageParamRoleUser,
					Content: []anthropicSDK.ContentBlockParamUnion{
						anthropicSDK.NewTextBlock("how many issues today?"),
					},
				},
				{
					Role: anthropicSDK.MessageParamRoleAssistant,
					Content: []anthropicSDK.ContentBlockParamUnion{
						anthropicSDK.NewToolUseBlock("call-1", map[string]any{}, "list_issues"),
					},
				},
				{
					Role: anthropicSDK.MessageParamRoleUser,
					Content: []anthropicSDK.ContentBlockParamUnion{
						anthropicSDK.NewToolResultBlock("call-1", "3 issues", false),
					},
				},
			},
		},
		{
			name: "consecutive same-role turns are batched",
			conv: &Conversation{turns: []Turn{
				{Role: RoleUser, Text: "first"},
				{Role: RoleUser, Text: "second"},
				{Role: RoleAssistant, Text: "answer"},
			}},
			want: []anthropicSDK.MessageParam{
				{
					Role: anthropicSDK.MessageParamRoleUser,
					Content: []anthropicSDK.ContentBlockParamUnion{
						anthropicSDK.NewTextBlock("first"),
						anthropicSDK.NewTextBlock("second"),
					},
				},
				{
					Role: anthropicSDK.MessageParamRoleAssistant,
					Content: []anthropicSDK.ContentBlockParamUnion{
						anthropicSDK.NewTextBlock("answer"),
					},
				},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := conversationToMessages(tc.conv)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestConvertAnthropicTools(t *testing.T) {
	t.Parallel()

	descriptors := []ToolDescriptor{
		{
			Name:        "list_issues",
			Description: "List issues for a project.",
			InputSchema: ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"project": map[string]any{"type": "string"},
				},
				Required: []string{"project"},
			},
		},
		{
			Name: "get_event",
		},
	}

	converted := convertAnthropicTools(descriptors)
	require.Len(t, converted, 2)

	first := converted[0].OfTool
	require.NotNil(t, first)
	assert.Equal(t, "list_issues", first.Name)
	assert.Equal(t, anthropicSDK.String("List issues for a project."), first.Description)
	assert.Equal(t, descriptors[0].InputSchema.Properties, first.InputSchema.Properties)

	second := converted[1].OfTool
	require.NotNil(t, second)
	assert.Equal(t, "get_event", second.Name)
	assert.Nil(t, second.InputSchema.Properties)
}

func TestOutcomeFromMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		message *anthropicSDK.Message
		want    Outcome
		wantErr bool
	}{
		{
			name:    "nil message",
			message: nil,
			wantErr: true,
		},
		{
			name:    "empty content",
			message: &anthropicSDK.Message{},
			wantErr: true,
		},
		{
			name: "text blocks are concatenated",
			message: &anthropicSDK.Message{
				Content: []anthropicSDK.ContentBlockUnion{
					{Type: "text", Text: "There are "},
					{Type: "text", Text: "3 issues today."},
				},
			},
			want: FinalAnswer{Text: "There are 3 issues today."},
		},
		{
			name: "tool use wins over surrounding text",
			message: &anthropicSDK.Message{
				Content: []anthropicSDK.ContentBlockUnion{
					{Type: "text", Text: "Let me check."},
					{
						Type:  "tool_use",
						ID:    "call-1",
						Name:  "list_issues",
						Input: json.RawMessage(`{"project":"blog"}`),
					},
				},
			},
			want: ToolCallRequested{
				ID:        "call-1",
				Name:      "list_issues",
				Arguments: map[string]any{"project": "blog"},
			},
		},
		{
			name: "tool use without arguments gets an empty map",
			message: &anthropicSDK.Message{
				Content: []anthropicSDK.ContentBlockUnion{
					{
						Type: "tool_use",
						ID:   "call-2",
						Name: "list_issues",
					},
				},
			},
			want: ToolCallRequested{
				ID:        "call-2",
				Name:      "list_issues",
				Arguments: map[string]any{},
			},
		},
		{
			name: "undecodable tool arguments",
			message: &anthropicSDK.Message{
				Content: []anthropicSDK.ContentBlockUnion{
					{
						Type:  "tool_use",
						ID:    "call-3",
						Name:  "list_issues",
						Input: json.RawMessage(`["not","an","object"]`),
					},
				},
			},
			wantErr: true,
		},
		{
			name: "neither text nor tool use",
			message: &anthropicSDK.Message{
				Content: []anthropicSDK.ContentBlockUnion{
					{Type: "thinking"},
				},
			},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := outcomeFromMessage(tc.message)
			if tc.wantErr {
				require.Error(t, err)

				var protocolErr *errs.ProtocolError

				assert.True(t, errors.As(err, &protocolErr))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeArguments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   any
		want    map[string]any
		wantErr bool
	}{
		{
			name:  "nil input",
			input: nil,
			want:  map[string]any{},
		},
		{
			name:  "empty object",
			input: json.RawMessage(`{}`),
			want:  map[string]any{},
		},
		{
			name:  "object with values",
			input: json.RawMessage(`{"project":"blog","limit":5}`),
			want:  map[string]any{"project": "blog", "limit": float64(5)},
		},
		{
			name:  "already decoded map",
			input: map[string]any{"project": "blog"},
			want:  map[string]any{"project": "blog"},
		},
		{
			name:    "non-object payload",
			input:   json.RawMessage(`[1,2,3]`),
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := decodeArguments(tc.input)
			if tc.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
