// Package errors defines the typed error taxonomy used across the bot.
// Startup errors are fatal; per-command errors are converted to chat replies
// at the dispatcher boundary.
package errors

import (
	"errors"
	"fmt"
)

// Standard error codes for the application.
const (
	CodeUnknown    = "UNKNOWN"
	CodeConfig     = "CONFIG"
	CodeConnection = "CONNECTION"
	CodeProtocol   = "PROTOCOL"
	CodeTool       = "TOOL"
	CodeUpstream   = "UPSTREAM"
	CodeToolLoop   = "TOOL_LOOP"
)

// ApplicationError is the interface that all our custom errors implement.
type ApplicationError interface {
	error
	Code() string
	Unwrap() error
}

// Error represents a basic application error.
type Error struct {
	code    string
	message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}

	return e.message
}

func (e *Error) Code() string {
	return e.code
}

func (e *Error) Unwrap() error {
	return e.err
}

// Code returns the application error code of err if it carries one,
// or CodeUnknown if it doesn't.
func Code(err error) string {
	var appErr ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}

	return CodeUnknown
}

// Specific error types and constructors

// ConfigError reports a missing or invalid configuration value.
// Fatal at startup; the process exits.
type ConfigError struct {
	base Error
}

func (e *ConfigError) Error() string {
	return e.base.Error()
}

func (e *ConfigError) Code() string {
	return e.base.Code()
}

func (e *ConfigError) Unwrap() error {
	return e.base.Unwrap()
}

func NewConfigError(message string, cause error) error {
	return &ConfigError{
		base: Error{
			code:    CodeConfig,
			message: message,
			err:     cause,
		},
	}
}

// ConnectionError reports a failure reaching the chat gateway or the tool
// server. Fatal at startup; mid-session it surfaces as an "unavailable" reply.
type ConnectionError struct {
	base Error
}

func (e *ConnectionError) Error() string {
	return e.base.Error()
}

func (e *ConnectionError) Code() string {
	return e.base.Code()
}

func (e *ConnectionError) Unwrap() error {
	return e.base.Unwrap()
}

func NewConnectionError(message string, cause error) error {
	return &ConnectionError{
		base: Error{
			code:    CodeConnection,
			message: message,
			err:     cause,
		},
	}
}

// ProtocolError reports a malformed response from the tool server or an
// unexpected completion payload shape. Not fatal to the process.
type ProtocolError struct {
	base Error
}

func (e *ProtocolError) Error() string {
	return e.base.Error()
}

func (e *ProtocolError) Code() string {
	return e.base.Code()
}

func (e *ProtocolError) Unwrap() error {
	return e.base.Unwrap()
}

func NewProtocolError(message string, cause error) error {
	return &ProtocolError{
		base: Error{
			code:    CodeProtocol,
			message: message,
			err:     cause,
		},
	}
}

// ToolError reports a failed tool invocation. Folded back into the
// completion loop as context, not fatal.
type ToolError struct {
	base Error
}

func (e *ToolError) Error() string {
	return e.base.Error()
}

func (e *ToolError) Code() string {
	return e.base.Code()
}

func (e *ToolError) Unwrap() error {
	return e.base.Unwrap()
}

func NewToolError(message string, cause error) error {
	return &ToolError{
		base: Error{
			code:    CodeTool,
			message: message,
			err:     cause,
		},
	}
}

// UpstreamError reports an AI provider failure (auth, rate limit, malformed
// response). Surfaced as a single failure reply, never retried.
type UpstreamError struct {
	base Error
}

func (e *UpstreamError) Error() string {
	return e.base.Error()
}

func (e *UpstreamError) Code() string {
	return e.base.Code()
}

func (e *UpstreamError) Unwrap() error {
	return e.base.Unwrap()
}

func NewUpstreamError(message string, cause error) error {
	return &UpstreamError{
		base: Error{
			code:    CodeUpstream,
			message: message,
			err:     cause,
		},
	}
}

// ToolLoopExceededError reports that a completion kept requesting tool calls
// past the configured maximum. Safety cutoff, surfaced as a failure reply.
type ToolLoopExceededError struct {
	base Error
}

func (e *ToolLoopExceededError) Error() string {
	return e.base.Error()
}

func (e *ToolLoopExceededError) Code() string {
	return e.base.Code()
}

func (e *ToolLoopExceededError) Unwrap() error {
	return e.base.Unwrap()
}

func NewToolLoopExceededError(message string) error {
	return &ToolLoopExceededError{
		base: Error{
			code:    CodeToolLoop,
			message: message,
		},
	}
}
