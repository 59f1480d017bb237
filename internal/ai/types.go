package ai

// Role identifies who produced a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Outcome is the result of one completion round: either a final answer for
// the user or a request to invoke a tool. The set of implementations is
// closed; any other response shape from a backend is a protocol violation.
type Outcome interface {
	isOutcome()
}

// FinalAnswer carries the model's answer text, ready for the user.
type FinalAnswer struct {
	Text string
}

func (FinalAnswer) isOutcome() {}

// ToolCallRequested asks the caller to invoke a named tool. ID is the
// provider's continuation token and must be echoed on the matching
// ToolResult so the provider can pair call and result.
type ToolCallRequested struct {
	ID        string
	Name      string
	Arguments map[string]any
}

func (ToolCallRequested) isOutcome() {}

// ToolResult carries the flattened output of a tool invocation back to the
// model. IsError marks results that describe a failure.
type ToolResult struct {
	ID      string
	Name    string
	Content string
	IsError bool
}

// Turn is one provider-neutral conversation entry. Exactly one of Text,
// ToolCall, or ToolResult is meaningful per turn.
type Turn struct {
	Role       Role
	Text       string
	ToolCall   *ToolCallRequested
	ToolResult *ToolResult
}

// Conversation accumulates the turns of a single command invocation. It is
// built up by the ask loop and discarded with the reply.
type Conversation struct {
	turns []Turn
}

// NewConversation starts a conversation with the user's question.
func NewConversation(question string) *Conversation {
	return &Conversation{
		turns: []Turn{{Role: RoleUser, Text: question}},
	}
}

// AppendToolCall records the assistant turn that requested a tool invocation.
func (c *Conversation) AppendToolCall(call ToolCallRequested) {
	c.turns = append(c.turns, Turn{Role: RoleAssistant, ToolCall: &call})
}

// AppendToolResult records the outcome of a tool invocation as a user turn,
// echoing the continuation ID of the call it answers.
func (c *Conversation) AppendToolResult(result ToolResult) {
	c.turns = append(c.turns, Turn{Role: RoleUser, ToolResult: &result})
}

// Turns returns the conversation in order. Callers must not modify it.
func (c *Conversation) Turns() []Turn {
	return c.turns
}

// ToolDescriptor describes one entry of the tool catalog in the shape
// completion backends convert from.
type ToolDescriptor struct {
	Name        string
	Description string
	InputSchema ToolInputSchema
}

// ToolInputSchema is the JSON-schema fragment describing a tool's arguments.
type ToolInputSchema struct {
	Type       string
	Properties map[string]any
	Required   []string
}
