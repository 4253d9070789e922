package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/ragnotes/pkg/storage"
	"github.com/papercomputeco/ragnotes/pkg/storage/inmemory"
)

// ErrMockStorage is returned by MockStorageDriver when a failure flag is set.
var ErrMockStorage = errors.New("mock storage failure")

// MockStorageDriver wraps the in-memory note store with call counters and
// failure switches.
type MockStorageDriver struct {
	mu    sync.Mutex
	inner *inmemory.Driver

	FailInsert bool
	FailGet    bool
	FailDelete bool

	// NilInsert makes Insert succeed without returning a note.
	NilInsert bool

	InsertCalls int
	DeleteCalls []int64
}

func NewMockStorageDriver() *MockStorageDriver {
	return &MockStorageDriver{inner: inmemory.NewDriver()}
}

func (m *MockStorageDriver) Insert(ctx context.Context, text string) (*storage.Note, error) {
	m.mu.Lock()
	m.InsertCalls++
	fail, nilNote := m.FailInsert, m.NilInsert
	m.mu.Unlock()

	switch {
	case fail:
		return nil, ErrMockStorage
	case nilNote:
		return nil, nil
	}
	return m.inner.Insert(ctx, text)
}

func (m *MockStorageDriver) Get(ctx context.Context, id int64) (*storage.Note, error) {
	if m.failGet() {
		return nil, ErrMockStorage
	}
	return m.inner.Get(ctx, id)
}

func (m *MockStorageDriver) GetByIDs(ctx context.Context, ids []int64) ([]*storage.Note, error) {
	if m.failGet() {
		return nil, ErrMockStorage
	}
	return m.inner.GetByIDs(ctx, ids)
}

func (m *MockStorageDriver) List(ctx context.Context) ([]*storage.Note, error) {
	if m.failGet() {
		return nil, ErrMockStorage
	}
	return m.inner.List(ctx)
}

func (m *MockStorageDriver) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	m.DeleteCalls = append(m.DeleteCalls, id)
	fail := m.FailDelete
	m.mu.Unlock()

	if fail {
		return ErrMockStorage
	}
	return m.inner.Delete(ctx, id)
}

// Count returns the number of stored notes.
func (m *MockStorageDriver) Count() int {
	return m.inner.Count()
}

func (m *MockStorageDriver) Close() error {
	return nil
}

func (m *MockStorageDriver) failGet() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.FailGet
}
