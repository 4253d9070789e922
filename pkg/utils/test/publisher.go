package testutils

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/papercomputeco/ragnotes/pkg/eventstream"
)

// MockPublisher records published note events.
type MockPublisher struct {
	mu sync.Mutex

	Fail bool
	// Delay holds each publish until it elapses or ctx is done.
	Delay  time.Duration
	Events []*eventstream.NoteEvent
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishNote(ctx context.Context, event *eventstream.NoteEvent) error {
	if event == nil {
		return eventstream.ErrNilNoteEvent
	}

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail {
		return errors.New("mock publish failure")
	}
	m.Events = append(m.Events, event)
	return nil
}

// EventTypes returns the types of recorded events in publish order.
func (m *MockPublisher) EventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	types := make([]string, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.EventType
	}
	return types
}

func (m *MockPublisher) Close() error {
	return nil
}
