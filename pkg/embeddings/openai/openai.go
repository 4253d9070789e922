// Package openai implements embeddings.Embedder on OpenAI's embeddings API.
package openai

import (
	"context"
	"errors"
	"fmt"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"

	"github.com/papercomputeco/ragnotes/pkg/embeddings"
	chat "github.com/papercomputeco/ragnotes/pkg/llm/provider/openai"
	"github.com/papercomputeco/ragnotes/pkg/vector"
)

// DefaultEmbeddingModel is the default model used for embeddings.
const DefaultEmbeddingModel = "text-embedding-3-small"

// EmbedderConfig holds configuration for the OpenAI embedder.
type EmbedderConfig struct {
	APIKey  string
	BaseURL string

	// Model defaults to DefaultEmbeddingModel.
	Model string

	// Dimensions shortens the returned vectors when non-zero. Only the
	// text-embedding-3 family supports it.
	Dimensions uint
}

// Embedder wraps OpenAI's embeddings API.
type Embedder struct {
	client     openaisdk.Client
	model      string
	dimensions uint
}

// NewEmbedder creates an OpenAI embedder.
func NewEmbedder(cfg EmbedderConfig) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: missing api key")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}

	return &Embedder{
		client:     openaisdk.NewClient(chat.ClientOptions(cfg.APIKey, cfg.BaseURL)...),
		model:      model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed converts texts into vector embeddings.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	params := openaisdk.EmbeddingNewParams{
		Model: openaisdk.EmbeddingModel(e.model),
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	}
	if e.dimensions > 0 {
		params.Dimensions = param.NewOpt(int64(e.dimensions))
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: openai: %w", vector.ErrEmbedding, err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", vector.ErrEmbedding, len(texts), len(resp.Data))
	}

	// Data carries its input index; place each vector accordingly.
	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(out) {
			return nil, fmt.Errorf("%w: embedding index %d out of range", vector.ErrEmbedding, d.Index)
		}
		v := make([]float32, len(d.Embedding))
		for i, f := range d.Embedding {
			v[i] = float32(f)
		}
		out[d.Index] = v
	}

	return out, nil
}

// Close releases resources held by the embedder.
func (e *Embedder) Close() error { return nil }

var _ embeddings.Embedder = (*Embedder)(nil)
