// Package workersai implements embeddings.Embedder on Cloudflare Workers AI
// text embedding models.
package workersai

import (
	"context"
	"fmt"

	"github.com/papercomputeco/ragnotes/pkg/embeddings"
	"github.com/papercomputeco/ragnotes/pkg/vector"
	cf "github.com/papercomputeco/ragnotes/pkg/workersai"
)

// DefaultEmbeddingModel produces 768-dimension vectors.
const DefaultEmbeddingModel = "@cf/baai/bge-base-en-v1.5"

// EmbedderConfig holds configuration for the Workers AI embedder.
type EmbedderConfig struct {
	Client cf.Config

	// Model defaults to DefaultEmbeddingModel.
	Model string
}

type embedInput struct {
	Text []string `json:"text"`
}

type embedResult struct {
	Shape []int       `json:"shape"`
	Data  [][]float32 `json:"data"`
}

// Embedder wraps Workers AI's embedding models.
type Embedder struct {
	client *cf.Client
	model  string
}

// NewEmbedder creates a Workers AI embedder.
func NewEmbedder(cfg EmbedderConfig) (*Embedder, error) {
	client, err := cf.NewClient(cfg.Client)
	if err != nil {
		return nil, err
	}

	model := cfg.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}

	return &Embedder{client: client, model: model}, nil
}

// Embed converts texts into vector embeddings.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var out embedResult
	if err := e.client.Run(ctx, e.model, embedInput{Text: texts}, &out); err != nil {
		return nil, fmt.Errorf("%w: workers ai: %w", vector.ErrEmbedding, err)
	}

	if len(out.Data) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", vector.ErrEmbedding, len(texts), len(out.Data))
	}

	return out.Data, nil
}

// Close releases resources held by the embedder.
func (e *Embedder) Close() error { return nil }

var _ embeddings.Embedder = (*Embedder)(nil)
