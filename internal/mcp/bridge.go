// Package mcp maintains the stdio session to the external tool server and
// caches its tool catalog for the rest of the bot. The server is spawned as a
// child process once at startup; every handler that needs tool access shares
// the same bridge.
package mcp

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/oskli/triagebot/internal/ai"
	"github.com/oskli/triagebot/internal/config"
	errs "github.com/oskli/triagebot/internal/errors"
)

const (
	clientName    = "triagebot"
	clientVersion = "0.1.0"
)

// emptyResult stands in for tool results with no text content, mirroring what
// the tool loop feeds back to the model.
const emptyResult = "No result"

// Bridge is the surface handlers and the tool loop depend on. The concrete
// implementation talks to a subprocess; tests substitute fakes.
type Bridge interface {
	// Tools returns the catalog captured during connect.
	Tools() []ai.ToolDescriptor
	// ToolCount reports the size of the cached catalog.
	ToolCount() int
	// Call executes a named tool and returns its flattened text content.
	Call(ctx context.Context, name string, args map[string]any) (string, error)
	// Ping verifies the session is still alive.
	Ping(ctx context.Context) error
	// Close terminates the session and the child process.
	Close() error
}

// session is the subset of the MCP client the bridge uses, extracted so tests
// can run against an in-memory fake.
type session interface {
	Initialize(ctx context.Context, request mcp.InitializeRequest) (*mcp.InitializeResult, error)
	ListTools(ctx context.Context, request mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Ping(ctx context.Context) error
	Close() error
}

// StdioBridge wraps one stdio MCP session. The tool catalog is fetched once
// during Connect and never refreshed; a restart picks up catalog changes.
type StdioBridge struct {
	log         *slog.Logger
	session     session
	tools       []ai.ToolDescriptor
	byName      map[string]ai.ToolDescriptor
	callTimeout time.Duration
	pingTimeout time.Duration

	mu     sync.Mutex
	closed bool
}

var _ Bridge = (*StdioBridge)(nil)

// Connect spawns the tool server subprocess, performs the protocol handshake
// and caches the advertised tool catalog. The returned bridge owns the child
// process; callers must Close it on shutdown.
func Connect(ctx context.Context, cfg config.MCPConfig, log *slog.Logger) (*StdioBridge, error) {
	logger := log.With("component", "mcp_bridge")

	args := []string{
		cfg.Package,
		"--access-token=" + cfg.AuthToken,
		"--host=" + cfg.Host,
	}

	mcpClient, err := client.NewStdioMCPClient(cfg.Command, nil, args...)
	if err != nil {
		return nil, errs.NewConnectionError("failed to launch tool server process", err)
	}

	success := false
	defer func() {
		if !success {
			_ = mcpClient.Close()
		}
	}()

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := initializeSession(connectCtx, mcpClient); err != nil {
		return nil, err
	}

	tools, err := loadTools(connectCtx, mcpClient)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Connected to tool server",
		"command", cfg.Command,
		"package", cfg.Package,
		"host", cfg.Host,
		"tool_count", len(tools))

	success = true

	return newBridge(mcpClient, tools, cfg, logger), nil
}

// initializeSession performs the MCP handshake on a fresh session.
func initializeSession(ctx context.Context, sess session) error {
	request := mcp.InitializeRequest{}
	request.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	request.Params.ClientInfo = mcp.Implementation{
		Name:    clientName,
		Version: clientVersion,
	}

	if _, err := sess.Initialize(ctx, request); err != nil {
		return errs.NewConnectionError("failed to initialize tool server session", err)
	}

	return nil
}

// loadTools fetches the server's tool catalog and converts it to the neutral
// descriptor form the completion clients consume.
func loadTools(ctx context.Context, sess session) ([]ai.ToolDescriptor, error) {
	result, err := sess.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, errs.NewProtocolError("failed to list tool server tools", err)
	}

	descriptors := make([]ai.ToolDescriptor, 0, len(result.Tools))
	for _, tool := range result.Tools {
		descriptors = append(descriptors, ai.ToolDescriptor{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: ai.ToolInputSchema{
				Type:       tool.InputSchema.Type,
				Properties: tool.InputSchema.Properties,
				Required:   tool.InputSchema.Required,
			},
		})
	}

	return descriptors, nil
}

func newBridge(sess session, tools []ai.ToolDescriptor, cfg config.MCPConfig, log *slog.Logger) *StdioBridge {
	byName := make(map[string]ai.ToolDescriptor, len(tools))
	for _, tool := range tools {
		byName[tool.Name] = tool
	}

	return &StdioBridge{
		log:         log,
		session:     sess,
		tools:       tools,
		byName:      byName,
		callTimeout: cfg.CallTimeout,
		pingTimeout: cfg.PingTimeout,
	}
}

// Tools returns the cached catalog. The slice is a copy; the descriptors
// share their schema maps, which are read-only after connect.
func (b *StdioBridge) Tools() []ai.ToolDescriptor {
	out := make([]ai.ToolDescriptor, len(b.tools))
	copy(out, b.tools)

	return out
}

// ToolCount reports how many tools the server advertised at connect time.
func (b *StdioBridge) ToolCount() int {
	return len(b.tools)
}

// Call executes a tool by name. Names outside the cached catalog fail without
// touching the session, and server-side tool failures come back as ToolError
// so the tool loop can fold them into the conversation.
func (b *StdioBridge) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	if b.isClosed() {
		return "", errs.NewConnectionError("tool server session is closed", nil)
	}

	if _, ok := b.byName[name]; !ok {
		return "", errs.NewToolError("requested tool is not in the server catalog: "+name, nil)
	}

	if b.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.callTimeout)
		defer cancel()
	}

	b.log.DebugContext(ctx, "Calling tool", "tool", name)

	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = args

	result, err := b.session.CallTool(ctx, request)
	if err != nil {
		b.log.ErrorContext(ctx, "Tool call failed", "tool", name, "error", err)
		return "", errs.NewToolError("tool call failed: "+name, err)
	}

	content := flattenContent(result.Content)
	if result.IsError {
		return "", errs.NewToolError("tool "+name+" returned an error: "+content, nil)
	}

	return content, nil
}

// Ping verifies the child process still answers, bounded by the configured
// ping timeout.
func (b *StdioBridge) Ping(ctx context.Context) error {
	if b.isClosed() {
		return errs.NewConnectionError("tool server session is closed", nil)
	}

	if b.pingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.pingTimeout)
		defer cancel()
	}

	if err := b.session.Ping(ctx); err != nil {
		return errs.NewConnectionError("tool server did not answer ping", err)
	}

	return nil
}

// Close shuts down the session and the child process. Safe to call more than
// once; only the first call reaches the session.
func (b *StdioBridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	if err := b.session.Close(); err != nil {
		return errs.NewConnectionError("failed to close tool server session", err)
	}

	return nil
}

func (b *StdioBridge) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.closed
}

// flattenContent joins all text blocks of a tool result into one string.
func flattenContent(contents []mcp.Content) string {
	parts := make([]string, 0, len(contents))
	for _, content := range contents {
		if text, ok := mcp.AsTextContent(content); ok {
			parts = append(parts, text.Text)
		}
	}

	if len(parts) == 0 {
		return emptyResult
	}

	return strings.Join(parts, "\n")
}
