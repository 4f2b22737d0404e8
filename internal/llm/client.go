// Package llm provides LLM client interfaces and implementations.
package llm

import (
	"context"
)

// Tool describes a callable tool declared to the completion service.
type Tool struct {
	Name        string
	Description string
	// Parameters is a JSON Schema object describing the argument shape.
	Parameters map[string]any
}

// ToolCall is a tool invocation requested by the model. Arguments is the
// raw JSON argument object exactly as the model produced it.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ChatMessage represents a chat message for LLM.
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// CompletionRequest represents a completion request.
type CompletionRequest struct {
	Model       string
	Messages    []ChatMessage
	Tools       []Tool
	MaxTokens   int
	Temperature float64
}

// CompletionResponse represents a completion response. When ToolCalls is
// non-empty the model wants tools invoked before it can reply.
type CompletionResponse struct {
	Content    string
	ToolCalls  []ToolCall
	Model      string
	TokensIn   int
	TokensOut  int
	StopReason string
	LatencyMs  int64
}

// Client is the interface for LLM providers.
type Client interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name.
	Name() string
}
