package testutils

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/papercomputeco/ragnotes/pkg/llm"
)

// MockChatter records every conversation it is sent and replies with Reply.
type MockChatter struct {
	mu sync.Mutex

	Reply string
	Fail  bool

	Conversations [][]llm.Message
}

func NewMockChatter(reply string) *MockChatter {
	return &MockChatter{Reply: reply}
}

func (m *MockChatter) Chat(_ context.Context, msgs []llm.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Conversations = append(m.Conversations, slices.Clone(msgs))
	if m.Fail {
		return "", errors.New("mock chat failure")
	}
	return m.Reply, nil
}

// Last returns the most recent conversation, or nil.
func (m *MockChatter) Last() []llm.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Conversations) == 0 {
		return nil
	}
	return m.Conversations[len(m.Conversations)-1]
}

func (m *MockChatter) Close() error {
	return nil
}
