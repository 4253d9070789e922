// Package provider builds llm.Chatter implementations by provider name.
package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/ragnotes/pkg/llm"
	"github.com/papercomputeco/ragnotes/pkg/llm/provider/anthropic"
	"github.com/papercomputeco/ragnotes/pkg/llm/provider/google"
	"github.com/papercomputeco/ragnotes/pkg/llm/provider/ollama"
	"github.com/papercomputeco/ragnotes/pkg/llm/provider/openai"
	"github.com/papercomputeco/ragnotes/pkg/llm/provider/workersai"
	cf "github.com/papercomputeco/ragnotes/pkg/workersai"
)

// Opts selects and configures a chat provider.
type Opts struct {
	ProviderType string

	// TargetURL is the provider base URL. Empty uses the provider default.
	TargetURL string
	Model     string

	// APIKey is the provider credential; for Workers AI it is the API token.
	APIKey string

	// AccountID is only used by Workers AI.
	AccountID string

	Logger *slog.Logger
}

// New creates a Chatter for the given provider type.
// Returns an error if the provider type is not recognized.
func New(ctx context.Context, o *Opts) (llm.Chatter, error) {
	switch o.ProviderType {
	case Ollama:
		return ollama.New(ollama.Config{
			BaseURL: o.TargetURL,
			Model:   o.Model,
			Logger:  o.Logger,
		}), nil
	case OpenAI:
		return openai.New(openai.Config{
			APIKey:  o.APIKey,
			BaseURL: o.TargetURL,
			Model:   o.Model,
			Logger:  o.Logger,
		})
	case Anthropic:
		return anthropic.New(anthropic.Config{
			APIKey:  o.APIKey,
			BaseURL: o.TargetURL,
			Model:   o.Model,
			Logger:  o.Logger,
		})
	case Google:
		return google.New(ctx, google.Config{
			APIKey:  o.APIKey,
			BaseURL: o.TargetURL,
			Model:   o.Model,
			Logger:  o.Logger,
		})
	case WorkersAI:
		return workersai.New(workersai.Config{
			Client: cf.Config{
				AccountID: o.AccountID,
				APIToken:  o.APIKey,
				BaseURL:   o.TargetURL,
			},
			Model:  o.Model,
			Logger: o.Logger,
		})
	default:
		return nil, fmt.Errorf("unknown provider type: %q (supported: %v)", o.ProviderType, SupportedProviders())
	}
}
