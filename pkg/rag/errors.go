package rag

import "errors"

var (
	// ErrEmptyText is returned when a note with no text is submitted.
	ErrEmptyText = errors.New("note text is required")

	// ErrNoteNotCreated is returned when the store reports success but
	// hands back no note.
	ErrNoteNotCreated = errors.New("note store returned no note")

	// ErrNoEmbedding is returned when the embedder produced no vector.
	ErrNoEmbedding = errors.New("embedder returned no vector")

	// ErrPartialWrite marks a two-step write where the note store committed
	// but the vector index step failed, leaving the two out of sync.
	ErrPartialWrite = errors.New("note store and vector index out of sync")
)
