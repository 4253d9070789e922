// Package storage
package storage

import (
	"context"
	"time"
)

// Note is a stored free-text note. ID is assigned by the store on insert and
// never changes.
type Note struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Driver defines the interface for persisting and retrieving notes in a
// storage backend.
type Driver interface {
	// Insert stores a new note and returns it with its assigned ID.
	Insert(ctx context.Context, text string) (*Note, error)

	// Get retrieves a note by its ID. Returns NotFoundError when absent.
	Get(ctx context.Context, id int64) (*Note, error)

	// GetByIDs retrieves the notes with the given IDs, ordered by ID.
	// Unknown IDs are skipped.
	GetByIDs(ctx context.Context, ids []int64) ([]*Note, error)

	// List returns all notes ordered by ID.
	List(ctx context.Context) ([]*Note, error)

	// Delete removes a note by ID. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id int64) error

	// Close closes the store and releases any resources.
	Close() error
}
