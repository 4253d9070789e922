// Package llm holds the provider-agnostic chat types shared by the chat
// providers under pkg/llm/provider.
package llm

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single text message in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewTextMessage creates a text message with the given role and content.
func NewTextMessage(role, text string) Message {
	return Message{Role: role, Content: text}
}

// SystemMessage creates a system message.
func SystemMessage(text string) Message {
	return NewTextMessage(RoleSystem, text)
}

// UserMessage creates a user message.
func UserMessage(text string) Message {
	return NewTextMessage(RoleUser, text)
}

// SplitSystem separates system messages from the rest of the conversation,
// preserving order within each group. Providers whose APIs carry system
// instructions outside the message list use it.
func SplitSystem(msgs []Message) (system []string, rest []Message) {
	for _, m := range msgs {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}
