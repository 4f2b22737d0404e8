// Package model defines data structures shared across the bot.
package model

import (
	"time"
)

// Role represents the author of a transcript turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// ToolCall is a structured request from the completion service to invoke
// a named tool. Arguments is the raw JSON argument object.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Turn is one entry in a session transcript.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// ToolCalls is set on assistant turns that request tool invocations.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID links a tool-result turn back to the call it answers.
	ToolCallID string `json:"tool_call_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// IsToolRequest reports whether the turn asks for tool invocations.
func (t Turn) IsToolRequest() bool {
	return t.Role == RoleAssistant && len(t.ToolCalls) > 0
}
