// Package inmemory provides a brute-force, map-backed vector driver.
// It is used for local development and tests; data does not survive restarts.
package inmemory

import (
	"context"
	"slices"
	"sync"

	"github.com/papercomputeco/ragnotes/pkg/vector"
)

// Driver implements vector.Driver over an in-memory map.
type Driver struct {
	mu   sync.RWMutex
	docs map[string][]float32
}

// NewDriver creates an empty in-memory vector driver.
func NewDriver() *Driver {
	return &Driver{
		docs: make(map[string][]float32),
	}
}

// Add stores or replaces documents.
func (d *Driver) Add(_ context.Context, docs []vector.Document) (vector.Ack, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, doc := range docs {
		d.docs[doc.ID] = slices.Clone(doc.Embedding)
	}

	return vector.NewAck(docs), nil
}

// Query scores every stored document and returns the topK best.
func (d *Driver) Query(_ context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	d.mu.RLock()
	results := make([]vector.QueryResult, 0, len(d.docs))
	for id, emb := range d.docs {
		results = append(results, vector.QueryResult{
			Document: vector.Document{ID: id, Embedding: emb},
			Score:    vector.CosineSimilarity(embedding, emb),
		})
	}
	d.mu.RUnlock()

	slices.SortFunc(results, func(a, b vector.QueryResult) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		// stable order for equal scores
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Get retrieves documents by their IDs, skipping unknown IDs.
func (d *Driver) Get(_ context.Context, ids []string) ([]vector.Document, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	docs := make([]vector.Document, 0, len(ids))
	for _, id := range ids {
		if emb, ok := d.docs[id]; ok {
			docs = append(docs, vector.Document{ID: id, Embedding: emb})
		}
	}
	return docs, nil
}

// Delete removes documents by their IDs.
func (d *Driver) Delete(_ context.Context, ids []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, id := range ids {
		delete(d.docs, id)
	}
	return nil
}

// Count returns the number of stored documents.
func (d *Driver) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.docs)
}

// Close is a no-op.
func (d *Driver) Close() error {
	return nil
}

var _ vector.Driver = (*Driver)(nil)
