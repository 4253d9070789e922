// Package google implements embeddings.Embedder on the Gemini embedding API.
package google

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/papercomputeco/ragnotes/pkg/embeddings"
	chat "github.com/papercomputeco/ragnotes/pkg/llm/provider/google"
	"github.com/papercomputeco/ragnotes/pkg/vector"
)

// DefaultEmbeddingModel is the default model used for embeddings.
const DefaultEmbeddingModel = "text-embedding-004"

// EmbedderConfig holds configuration for the Gemini embedder.
type EmbedderConfig struct {
	APIKey  string
	BaseURL string

	// Model defaults to DefaultEmbeddingModel.
	Model string

	// Dimensions sets the output dimensionality when non-zero.
	Dimensions uint
}

// Embedder wraps genai's EmbedContent.
type Embedder struct {
	client     *genai.Client
	model      string
	dimensions uint
}

// NewEmbedder creates a Gemini embedder.
func NewEmbedder(ctx context.Context, cfg EmbedderConfig) (*Embedder, error) {
	client, err := chat.NewClient(ctx, cfg.APIKey, cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	model := cfg.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}

	return &Embedder{client: client, model: model, dimensions: cfg.Dimensions}, nil
}

// Embed converts texts into vector embeddings.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	cfg := &genai.EmbedContentConfig{}
	if e.dimensions > 0 {
		cfg.OutputDimensionality = genai.Ptr(int32(e.dimensions))
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: google: %w", vector.ErrEmbedding, err)
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", vector.ErrEmbedding, len(texts), len(resp.Embeddings))
	}

	out := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		out[i] = emb.Values
	}

	return out, nil
}

// Close releases resources held by the embedder.
func (e *Embedder) Close() error { return nil }

var _ embeddings.Embedder = (*Embedder)(nil)
