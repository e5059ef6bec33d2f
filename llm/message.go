package llm

import "github.com/nfujita/rivulet/provider"

// Message is an alias for provider.Message for convenience.
type Message = provider.Message

// Role is an alias for provider.Role for convenience.
type Role = provider.Role

// Role constants.
const (
	RoleSystem    = provider.RoleSystem
	RoleUser      = provider.RoleUser
	RoleAssistant = provider.RoleAssistant
)

// SystemMessage creates a system message.
func SystemMessage(content string) Message {
	return Message{
		Role:    RoleSystem,
		Content: content,
	}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{
		Role:    RoleUser,
		Content: content,
	}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) Message {
	return Message{
		Role:    RoleAssistant,
		Content: content,
	}
}

// History is an ordered conversation transcript. It lives for one
// session and is never persisted.
type History []Message

// NewHistory creates a history, optionally seeded with a system message.
func NewHistory(system string) History {
	if system == "" {
		return History{}
	}
	return History{SystemMessage(system)}
}

// AddUser appends a user turn and returns the extended history.
func (h History) AddUser(content string) History {
	return append(h, UserMessage(content))
}

// AddAssistant appends an assistant turn and returns the extended history.
func (h History) AddAssistant(content string) History {
	return append(h, AssistantMessage(content))
}
