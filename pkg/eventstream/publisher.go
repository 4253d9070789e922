package eventstream

import "context"

// Publisher publishes note events to an event stream backend.
type Publisher interface {
	PublishNote(ctx context.Context, event *NoteEvent) error
	Close() error
}
