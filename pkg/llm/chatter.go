package llm

import (
	"context"
	"errors"
)

// ErrChat is wrapped by every chat provider failure.
var ErrChat = errors.New("chat completion failed")

// Chatter sends a conversation to a chat model and returns the reply text.
type Chatter interface {
	// Chat sends msgs in order and returns the model's text response.
	Chat(ctx context.Context, msgs []Message) (string, error)

	// Close releases any resources held by the chatter.
	Close() error
}
