package ai

import "context"

// Client produces one completion round per call. Implementations map
// provider failures to UpstreamError and malformed payloads to
// ProtocolError, and never retry.
type Client interface {
	Complete(ctx context.Context, conv *Conversation, tools []ToolDescriptor) (Outcome, error)
}
