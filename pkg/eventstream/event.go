package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeNoteCreated is emitted after a note is stored and indexed.
	EventTypeNoteCreated = "notes.note.created"

	// EventTypeNoteDeleted is emitted after a note is removed.
	EventTypeNoteDeleted = "notes.note.deleted"
)

// NoteEvent is a transport-neutral event payload for a note lifecycle change.
type NoteEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`
	Note          NoteRef   `json:"note"`
}

// NoteRef identifies the note an event refers to. Text is empty for
// deletions.
type NoteRef struct {
	ID   int64  `json:"id"`
	Text string `json:"text,omitempty"`
}

// NewNoteEvent builds an event of the given type with a fresh ID and
// timestamp.
func NewNoteEvent(eventType string, id int64, text string) *NoteEvent {
	return &NoteEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     eventType,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Note:          NoteRef{ID: id, Text: text},
	}
}
