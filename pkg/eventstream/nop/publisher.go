package nop

import (
	"context"

	"github.com/papercomputeco/ragnotes/pkg/eventstream"
)

// Publisher is a no-op eventstream publisher used for tests and disabled mode.
type Publisher struct{}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishNote validates input and otherwise does nothing.
func (p *Publisher) PublishNote(_ context.Context, event *eventstream.NoteEvent) error {
	if event == nil {
		return eventstream.ErrNilNoteEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
