// Package embeddingutils is the embeddings utility package
package embeddingutils

import (
	"context"
	"fmt"

	"github.com/papercomputeco/ragnotes/pkg/embeddings"
	"github.com/papercomputeco/ragnotes/pkg/embeddings/google"
	"github.com/papercomputeco/ragnotes/pkg/embeddings/ollama"
	"github.com/papercomputeco/ragnotes/pkg/embeddings/openai"
	"github.com/papercomputeco/ragnotes/pkg/embeddings/workersai"
	cf "github.com/papercomputeco/ragnotes/pkg/workersai"
)

// Provider names accepted by NewEmbedder.
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderGoogle    = "google"
	ProviderWorkersAI = "workersai"
)

// Providers lists every supported embedding provider.
var Providers = []string{ProviderOllama, ProviderOpenAI, ProviderGoogle, ProviderWorkersAI}

type NewEmbedderOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
	Dimensions   uint

	// APIKey is the provider credential; for Workers AI it is the API token.
	APIKey    string
	AccountID string
}

func NewEmbedder(ctx context.Context, o *NewEmbedderOpts) (embeddings.Embedder, error) {
	switch o.ProviderType {
	case ProviderOllama:
		return ollama.NewEmbedder(ollama.EmbedderConfig{
			BaseURL:    o.TargetURL,
			Model:      o.Model,
			Dimensions: o.Dimensions,
		})
	case ProviderOpenAI:
		return openai.NewEmbedder(openai.EmbedderConfig{
			APIKey:     o.APIKey,
			BaseURL:    o.TargetURL,
			Model:      o.Model,
			Dimensions: o.Dimensions,
		})
	case ProviderGoogle:
		return google.NewEmbedder(ctx, google.EmbedderConfig{
			APIKey:     o.APIKey,
			BaseURL:    o.TargetURL,
			Model:      o.Model,
			Dimensions: o.Dimensions,
		})
	case ProviderWorkersAI:
		return workersai.NewEmbedder(workersai.EmbedderConfig{
			Client: cf.Config{
				AccountID: o.AccountID,
				APIToken:  o.APIKey,
				BaseURL:   o.TargetURL,
			},
			Model: o.Model,
		})
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", o.ProviderType)
	}
}
