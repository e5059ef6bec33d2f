package provider

import "encoding/json"

// Request represents a provider-agnostic streaming chat request.
type Request struct {
	Model         string
	Messages      []Message
	Functions     []FunctionDef
	Temperature   *float64
	MaxTokens     *int
	TopP          *float64
	StopSequences []string
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role represents the message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// FunctionDef describes a function the model may call.
// Rivulet only accumulates and displays calls; it never executes them.
type FunctionDef struct {
	Name        string
	Description string
	Parameters  json.RawMessage // JSON Schema
}

// Fragment is one element of the incremental response sequence.
// A fragment may carry a text delta, a function-call delta, both, or
// neither (e.g. a role-only or finish-only frame).
type Fragment struct {
	Delta             string
	FunctionCallDelta *FunctionCallDelta
	FinishReason      FinishReason
}

// FunctionCallDelta represents incremental function-call data.
// Name arrives on the first fragment of a call; ArgumentsDelta carries
// the next piece of the arguments JSON on subsequent fragments.
type FunctionCallDelta struct {
	ID             string
	Name           string
	ArgumentsDelta string
}

// FinishReason indicates why the model stopped generating.
type FinishReason string

const (
	FinishReasonStop         FinishReason = "stop"
	FinishReasonFunctionCall FinishReason = "function_call"
	FinishReasonLength       FinishReason = "length"
)

// Usage contains token usage statistics reported by the service.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
