// Package llm defines the chat-model client interface and its providers.
//
// Providers with native function calling (OpenAI-compatible endpoints)
// receive tool definitions directly and return structured tool calls.
// The others receive the tools in the system prompt and answer with fenced
// tool_call blocks that the agent parses.
package llm

import (
	"context"
	"time"
)

// Role constants for messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)

// Message is a single turn in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`

	// ToolCalls is set on assistant messages that requested tools natively.
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`
	// ToolCallID links a RoleTool message to the call it answers.
	ToolCallID string `json:"toolCallId,omitempty"`
}

// ToolDefinition describes a tool the model can invoke.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema object
}

// CompletionRequest is the input to a Complete call.
type CompletionRequest struct {
	Model       string           `json:"model,omitempty"`
	System      string           `json:"system,omitempty"`
	Messages    []Message        `json:"messages"`
	Tools       []ToolDefinition `json:"tools,omitempty"`
	MaxTokens   int              `json:"maxTokens,omitempty"`
	Temperature *float64         `json:"temperature,omitempty"`
}

// CompletionResponse is the result of a completion.
type CompletionResponse struct {
	Content    string        `json:"content"`
	StopReason string        `json:"stopReason,omitempty"`
	ToolCalls  []ToolCall    `json:"toolCalls,omitempty"`
	Usage      Usage         `json:"usage"`
	Model      string        `json:"model,omitempty"`
	Duration   time.Duration `json:"duration,omitempty"`
}

// ToolCall is a model request to invoke a tool.
type ToolCall struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Input string `json:"input"` // JSON string
}

// Usage tracks token consumption.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// Client is the interface all model providers implement.
type Client interface {
	// Complete sends a request and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name (e.g., "openai", "ollama").
	Name() string
}

// NativeToolCaller is implemented by clients that accept tool definitions
// in the request and return structured tool calls.
type NativeToolCaller interface {
	NativeTools() bool
}

// SupportsNativeTools reports whether c takes tool definitions directly.
func SupportsNativeTools(c Client) bool {
	n, ok := c.(NativeToolCaller)
	return ok && n.NativeTools()
}
