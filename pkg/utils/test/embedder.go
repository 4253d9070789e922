package testutils

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"unicode"
)

// MockEmbedderDimensions is the size of vectors produced by MockEmbedder
// for texts without an explicit embedding.
const MockEmbedderDimensions = 256

// MockEmbedder is a test embedder that returns predictable embeddings.
// Texts without an entry in Embeddings get a normalized bag-of-words vector,
// so identical texts score 1.0 and texts sharing no words score near 0.
type MockEmbedder struct {
	mu sync.Mutex

	Embeddings map[string][]float32

	// FailOn causes Embed to return an error when an input text matches
	FailOn string

	// Fail causes every Embed call to return an error
	Fail bool

	// Empty causes Embed to succeed with no vectors
	Empty bool

	// Calls records every text passed to Embed
	Calls []string
}

func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		Embeddings: make(map[string][]float32),
	}
}

func (m *MockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, texts...)

	if m.Fail {
		return nil, fmt.Errorf("mock embedding failure")
	}
	if m.Empty {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		if m.FailOn != "" && text == m.FailOn {
			return nil, fmt.Errorf("mock embedding failure for: %s", text)
		}
		if emb, ok := m.Embeddings[text]; ok {
			out = append(out, emb)
			continue
		}
		out = append(out, BagOfWords(text))
	}
	return out, nil
}

// CallCount returns how many texts have been embedded.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

func (m *MockEmbedder) Close() error {
	return nil
}

// BagOfWords hashes lowercased words of text into a unit vector.
func BagOfWords(text string) []float32 {
	vec := make([]float32, MockEmbedderDimensions)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[h.Sum32()%MockEmbedderDimensions]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	if norm == 0 {
		return vec
	}
	n := float32(math.Sqrt(norm))
	for i := range vec {
		vec[i] /= n
	}
	return vec
}
