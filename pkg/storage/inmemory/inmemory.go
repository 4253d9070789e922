package inmemory

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/papercomputeco/ragnotes/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu is a read write sync mutex for locking the mapping of notes
	mu sync.RWMutex

	// notes is the in memory map of notes keyed by note ID
	notes map[int64]*storage.Note

	// lastID is the most recently assigned ID; IDs are never reused
	lastID int64
}

// NewDriver creates a new in-memory note store.
func NewDriver() *Driver {
	return &Driver{
		notes: make(map[int64]*storage.Note),
	}
}

// Insert stores a new note and returns it with its assigned ID.
func (s *Driver) Insert(_ context.Context, text string) (*storage.Note, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("cannot store empty note")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	note := &storage.Note{
		ID:        s.lastID,
		Text:      strings.Clone(text),
		CreatedAt: time.Now().UTC(),
	}
	s.notes[note.ID] = note

	return clone(note), nil
}

// Get retrieves a note by its ID.
func (s *Driver) Get(_ context.Context, id int64) (*storage.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	note, ok := s.notes[id]
	if !ok {
		return nil, storage.NotFoundError{ID: id}
	}

	return clone(note), nil
}

// GetByIDs retrieves notes by ID, skipping unknown IDs.
func (s *Driver) GetByIDs(_ context.Context, ids []int64) ([]*storage.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[int64]bool, len(ids))
	result := []*storage.Note{}
	for _, id := range ids {
		note, ok := s.notes[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, clone(note))
	}

	sortByID(result)
	return result, nil
}

// List returns all notes ordered by ID.
func (s *Driver) List(_ context.Context) ([]*storage.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*storage.Note, 0, len(s.notes))
	for _, note := range s.notes {
		result = append(result, clone(note))
	}

	sortByID(result)
	return result, nil
}

// Delete removes a note by ID.
func (s *Driver) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.notes, id)
	return nil
}

// Count returns the number of stored notes.
func (s *Driver) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}

// Close is a no-op for the in-memory store.
func (s *Driver) Close() error {
	return nil
}

func clone(n *storage.Note) *storage.Note {
	c := *n
	return &c
}

func sortByID(notes []*storage.Note) {
	slices.SortFunc(notes, func(a, b *storage.Note) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
}

var _ storage.Driver = (*Driver)(nil)
