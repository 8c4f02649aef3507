package conversation

import (
	"context"
	"encoding/json"

	"github.com/hostwise-ai/hostwise/internal/tools"
)

// Message roles on the conversation transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ChatMessage is one turn on the transcript. Tool results are carried as
// RoleTool messages with the originating call's ID.
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// LLMRequest is a provider-neutral chat completion request.
type LLMRequest struct {
	Model       string
	System      []string
	Messages    []ChatMessage
	Tools       []tools.Definition
	MaxTokens   int
	Temperature float32
}

// Usage reports token consumption for one model call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Stop reasons returned by LLMResponse.
const (
	StopEndTurn = "end_turn"
	StopToolUse = "tool_use"
)

// LLMResponse is the model's reply: assistant text, any tool calls, or both.
type LLMResponse struct {
	Text       string
	ToolCalls  []ToolCall
	StopReason string
	Usage      Usage
}

// LLMClient abstracts the chat completion providers.
type LLMClient interface {
	Chat(ctx context.Context, req LLMRequest) (*LLMResponse, error)
	Provider() string
}
