package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/ragnotes/pkg/vector"
	"github.com/papercomputeco/ragnotes/pkg/vector/inmemory"
)

// ErrMockVector is returned by MockVectorDriver when a failure flag is set.
var ErrMockVector = errors.New("mock vector failure")

// MockVectorDriver is a test vector driver backed by the in-memory driver.
// It records calls and can be told to fail individual operations.
type MockVectorDriver struct {
	mu    sync.Mutex
	inner *inmemory.Driver

	// Results, when non-nil, is returned by Query instead of real scores.
	Results []vector.QueryResult

	FailAdd    bool
	FailQuery  bool
	FailDelete bool

	AddCalls    [][]vector.Document
	QueryCalls  int
	DeleteCalls [][]string
}

func NewMockVectorDriver() *MockVectorDriver {
	return &MockVectorDriver{
		inner: inmemory.NewDriver(),
	}
}

func (m *MockVectorDriver) Add(ctx context.Context, docs []vector.Document) (vector.Ack, error) {
	m.mu.Lock()
	m.AddCalls = append(m.AddCalls, docs)
	fail := m.FailAdd
	m.mu.Unlock()

	if fail {
		return vector.Ack{}, ErrMockVector
	}
	return m.inner.Add(ctx, docs)
}

func (m *MockVectorDriver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	m.mu.Lock()
	m.QueryCalls++
	fail, results := m.FailQuery, m.Results
	m.mu.Unlock()

	if fail {
		return nil, ErrMockVector
	}
	if results != nil {
		if len(results) < topK {
			return results, nil
		}
		return results[:topK], nil
	}
	return m.inner.Query(ctx, embedding, topK)
}

func (m *MockVectorDriver) Get(ctx context.Context, ids []string) ([]vector.Document, error) {
	return m.inner.Get(ctx, ids)
}

func (m *MockVectorDriver) Delete(ctx context.Context, ids []string) error {
	m.mu.Lock()
	m.DeleteCalls = append(m.DeleteCalls, ids)
	fail := m.FailDelete
	m.mu.Unlock()

	if fail {
		return ErrMockVector
	}
	return m.inner.Delete(ctx, ids)
}

// Count returns the number of stored documents.
func (m *MockVectorDriver) Count() int {
	return m.inner.Count()
}

func (m *MockVectorDriver) Close() error {
	return nil
}
