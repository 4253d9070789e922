// Package vector provides interfaces and implementations for vector storage
// of note embeddings.
package vector

import "context"

// Document is a note embedding keyed by the note id.
type Document struct {
	// ID is the owning note's id rendered as a decimal string.
	ID string `json:"id"`

	// Embedding is the vector representation of the note text.
	Embedding []float32 `json:"embedding,omitempty"`
}

// QueryResult represents a search result with similarity score.
type QueryResult struct {
	Document

	// Score is the cosine similarity between the query and the document
	// (higher = more similar). Drivers convert their native distance so the
	// value is comparable across backends.
	Score float32 `json:"score"`
}

// Ack acknowledges an Add call.
type Ack struct {
	// Count is the number of documents written.
	Count int `json:"count"`

	// IDs are the document ids written, in request order.
	IDs []string `json:"ids"`
}

// NewAck builds the acknowledgment for a successful write of docs.
func NewAck(docs []Document) Ack {
	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
	}
	return Ack{Count: len(docs), IDs: ids}
}

// Driver handles storage and retrieval of vector embeddings.
type Driver interface {
	// Add stores documents with their embeddings.
	// If a document with the same ID already exists, implementers should update
	// the document.
	Add(ctx context.Context, docs []Document) (Ack, error)

	// Query finds the topK most similar documents to the given embedding,
	// ordered by descending score.
	Query(ctx context.Context, embedding []float32, topK int) ([]QueryResult, error)

	// Get retrieves documents by their IDs.
	Get(ctx context.Context, ids []string) ([]Document, error)

	// Delete removes documents by their IDs. Unknown IDs are ignored.
	Delete(ctx context.Context, ids []string) error

	// Close releases any resources held by the driver.
	Close() error
}
