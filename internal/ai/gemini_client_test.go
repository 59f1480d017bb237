package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	errs "github.com/oskli/triagebot/internal/errors"
)

func TestConversationToContents(t *testing.T) {
	t.Parallel()

	conv := NewConversation("how many issues today?")
	conv.AppendToolCall(ToolCallRequested{
		ID:        "call-1",
		Name:      "list_issues",
		Arguments: map[string]any{"project": "blog"},
	})
	conv.AppendToolResult(ToolResult{
		ID:      "call-1",
		Name:    "list_issues",
		Content: "3 issues",
	})

	want := []*genai.Content{
		genai.NewContentFromText("how many issues today?", genai.RoleUser),
		genai.NewContentFromParts([]*genai.Part{{
			FunctionCall: &genai.FunctionCall{
				ID:   "call-1",
				Name: "list_issues",
				Args: map[string]any{"project": "blog"},
			},
		}}, genai.RoleModel),
		genai.NewContentFromParts([]*genai.Part{{
			FunctionResponse: &genai.FunctionResponse{
				ID:       "call-1",
				Name:     "list_issues",
				Response: map[string]any{"output": "3 issues"},
			},
		}}, genai.RoleUser),
	}

	assert.Equal(t, want, conversationToContents(conv))
}

func TestConversationToContentsFailedTool(t *testing.T) {
	t.Parallel()

	conv := NewConversation("question")
	conv.AppendToolResult(ToolResult{
		ID:      "call-1",
		Name:    "list_issues",
		Content: "Error: boom",
		IsError: true,
	})

	contents := conversationToContents(conv)
	require.Len(t, contents, 2)
	require.Len(t, contents[1].Parts, 1)

	response := contents[1].Parts[0].FunctionResponse
	require.NotNil(t, response)
	assert.Equal(t, map[string]any{"error": "Error: boom"}, response.Response)
}

func TestConvertGeminiTools(t *testing.T) {
	t.Parallel()

	converted := convertGeminiTools([]ToolDescriptor{
		{
			Name:        "list_issues",
			Description: "List issues for a project.",
			InputSchema: ToolInputSchema{
				Properties: map[string]any{
					"project": map[string]any{"type": "string"},
				},
				Required: []string{"project"},
			},
		},
	})

	require.Len(t, converted, 1)
	require.Len(t, converted[0].FunctionDeclarations, 1)

	decl := converted[0].FunctionDeclarations[0]
	assert.Equal(t, "list_issues", decl.Name)
	assert.Equal(t, "List issues for a project.", decl.Description)
	require.NotNil(t, decl.Parameters)
	assert.Equal(t, genai.TypeObject, decl.Parameters.Type)
	assert.Equal(t, []string{"project"}, decl.Parameters.Required)
}

func TestSchemaFromDescriptor(t *testing.T) {
	t.Parallel()

	schema := schemaFromDescriptor(ToolInputSchema{
		Properties: map[string]any{
			"project": map[string]any{"type": "string", "description": "Project slug."},
			"limit":   map[string]any{"type": "integer"},
			"tags": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"untyped": nil,
		},
		Required: []string{"project"},
	})

	want := &genai.Schema{
		Type:     genai.TypeObject,
		Required: []string{"project"},
		Properties: map[string]*genai.Schema{
			"project": {Type: genai.TypeString, Description: "Project slug."},
			"limit":   {Type: genai.TypeInteger},
			"tags":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"untyped": {Type: genai.TypeString},
		},
	}

	assert.Equal(t, want, schema)
}

func TestSchemaFromMapNestedObject(t *testing.T) {
	t.Parallel()

	schema := schemaFromMap(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"filter": map[string]any{"type": "string"},
		},
		"required": []any{"filter", 42},
	})

	want := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"filter": {Type: genai.TypeString},
		},
		Required: []string{"filter"},
	}

	assert.Equal(t, want, schema)
}

func TestSchemaType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want genai.Type
	}{
		{name: "object", want: genai.TypeObject},
		{name: "array", want: genai.TypeArray},
		{name: "string", want: genai.TypeString},
		{name: "number", want: genai.TypeNumber},
		{name: "integer", want: genai.TypeInteger},
		{name: "boolean", want: genai.TypeBoolean},
		{name: "unrecognized", want: genai.TypeString},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, schemaType(tc.name))
		})
	}
}

func TestOutcomeFromResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		resp        *genai.GenerateContentResponse
		want        Outcome
		wantErrCode string
	}{
		{
			name:        "nil response",
			resp:        nil,
			wantErrCode: errs.CodeProtocol,
		},
		{
			name: "blocked by safety filter",
			resp: &genai.GenerateContentResponse{
				PromptFeedback: &genai.GenerateContentResponsePromptFeedback{
					BlockReason:        genai.BlockedReasonSafety,
					BlockReasonMessage: "flagged content",
				},
			},
			wantErrCode: errs.CodeUpstream,
		},
		{
			name:        "no candidates",
			resp:        &genai.GenerateContentResponse{},
			wantErrCode: errs.CodeProtocol,
		},
		{
			name: "candidate without parts",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{Content: &genai.Content{}}},
			},
			wantErrCode: errs.CodeProtocol,
		},
		{
			name: "text parts are concatenated",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{
					{Text: "There are "},
					{Text: "3 issues today."},
				}}}},
			},
			want: FinalAnswer{Text: "There are 3 issues today."},
		},
		{
			name: "function call wins over text",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{
					{Text: "Let me check."},
					{FunctionCall: &genai.FunctionCall{
						ID:   "call-1",
						Name: "list_issues",
						Args: map[string]any{"project": "blog"},
					}},
				}}}},
			},
			want: ToolCallRequested{
				ID:        "call-1",
				Name:      "list_issues",
				Arguments: map[string]any{"project": "blog"},
			},
		},
		{
			name: "function call without arguments gets an empty map",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{
					{FunctionCall: &genai.FunctionCall{ID: "call-2", Name: "list_issues"}},
				}}}},
			},
			want: ToolCallRequested{
				ID:        "call-2",
				Name:      "list_issues",
				Arguments: map[string]any{},
			},
		},
		{
			name: "parts without text or call",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{}}}}},
			},
			wantErrCode: errs.CodeProtocol,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := outcomeFromResponse(tc.resp)
			if tc.wantErrCode != "" {
				require.Error(t, err)
				assert.Equal(t, tc.wantErrCode, errs.Code(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestOutcomeFromResponseBlockedWithoutMessage(t *testing.T) {
	t.Parallel()

	resp := &genai.GenerateContentResponse{
		PromptFeedback: &genai.GenerateContentResponsePromptFeedback{
			BlockReason: genai.BlockedReasonSafety,
		},
	}

	_, err := outcomeFromResponse(resp)
	require.Error(t, err)

	var upstreamErr *errs.UpstreamError

	require.True(t, errors.As(err, &upstreamErr))
	assert.Contains(t, err.Error(), "blocked by safety filter")
}
