// Package ragutils wires a rag.Notebook from the persistent configuration.
package ragutils

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/papercomputeco/ragnotes/pkg/config"
	"github.com/papercomputeco/ragnotes/pkg/embeddings"
	embeddingutils "github.com/papercomputeco/ragnotes/pkg/embeddings/utils"
	"github.com/papercomputeco/ragnotes/pkg/eventstream"
	eventstreamutils "github.com/papercomputeco/ragnotes/pkg/eventstream/utils"
	"github.com/papercomputeco/ragnotes/pkg/llm"
	"github.com/papercomputeco/ragnotes/pkg/llm/provider"
	"github.com/papercomputeco/ragnotes/pkg/rag"
	"github.com/papercomputeco/ragnotes/pkg/storage"
	storageutils "github.com/papercomputeco/ragnotes/pkg/storage/utils"
	"github.com/papercomputeco/ragnotes/pkg/vector"
	vectorutils "github.com/papercomputeco/ragnotes/pkg/vector/utils"
)

// AccountIDEnv holds the Cloudflare account for Workers AI.
const AccountIDEnv = "CLOUDFLARE_ACCOUNT_ID"

// Components are the backends behind a Notebook.
type Components struct {
	Store     storage.Driver
	Vectors   vector.Driver
	Embedder  embeddings.Embedder
	Chatter   llm.Chatter
	Publisher eventstream.Publisher
}

// Close releases every component that was built.
func (c *Components) Close() error {
	var errs []error
	if c.Publisher != nil {
		errs = append(errs, c.Publisher.Close())
	}
	if c.Chatter != nil {
		errs = append(errs, c.Chatter.Close())
	}
	if c.Embedder != nil {
		errs = append(errs, c.Embedder.Close())
	}
	if c.Vectors != nil {
		errs = append(errs, c.Vectors.Close())
	}
	if c.Store != nil {
		errs = append(errs, c.Store.Close())
	}
	return errors.Join(errs...)
}

// NewNotebookOpts is the input to NewNotebook. A nil Config means the
// defaults.
type NewNotebookOpts struct {
	Config *config.Config

	// SQLitePath and VectorTarget are resolved paths that override the
	// config when set.
	SQLitePath   string
	VectorTarget string

	Logger *slog.Logger
}

// NewNotebook builds every backend named by the config and the Notebook on
// top of them. On error, anything already built is closed.
func NewNotebook(ctx context.Context, o *NewNotebookOpts) (*rag.Notebook, *Components, error) {
	cfg := o.Config
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	log := o.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	policy, err := rag.ParsePartialFailurePolicy(cfg.RAG.OnPartialFailure)
	if err != nil {
		return nil, nil, err
	}

	c := &Components{}
	fail := func(err error) (*rag.Notebook, *Components, error) {
		_ = c.Close()
		return nil, nil, err
	}

	sqlitePath := cfg.Storage.SQLitePath
	if o.SQLitePath != "" {
		sqlitePath = o.SQLitePath
	}
	c.Store, err = storageutils.NewStorageDriver(ctx, &storageutils.NewStorageDriverOpts{
		ProviderType: cfg.Storage.Provider,
		SQLitePath:   sqlitePath,
		PostgresDSN:  cfg.Storage.PostgresDSN,
		Logger:       log,
	})
	if err != nil {
		return fail(err)
	}

	vectorTarget := cfg.VectorStore.Target
	if o.VectorTarget != "" {
		vectorTarget = o.VectorTarget
	}
	c.Vectors, err = vectorutils.NewVectorDriver(ctx, &vectorutils.NewVectorDriverOpts{
		ProviderType: cfg.VectorStore.Provider,
		TargetURL:    vectorTarget,
		Collection:   cfg.VectorStore.Collection,
		Dimensions:   cfg.Embedding.Dimensions,
		Logger:       log,
	})
	if err != nil {
		return fail(fmt.Errorf("creating vector driver: %w", err))
	}

	c.Embedder, err = embeddingutils.NewEmbedder(ctx, &embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		Model:        cfg.Embedding.Model,
		Dimensions:   cfg.Embedding.Dimensions,
		APIKey:       apiKey(cfg.Embedding.Provider),
		AccountID:    os.Getenv(AccountIDEnv),
	})
	if err != nil {
		return fail(fmt.Errorf("creating embedder: %w", err))
	}

	c.Chatter, err = provider.New(ctx, &provider.Opts{
		ProviderType: cfg.Chat.Provider,
		TargetURL:    cfg.Chat.Target,
		Model:        cfg.Chat.Model,
		APIKey:       apiKey(cfg.Chat.Provider),
		AccountID:    os.Getenv(AccountIDEnv),
		Logger:       log,
	})
	if err != nil {
		return fail(fmt.Errorf("creating chat provider: %w", err))
	}

	c.Publisher, err = eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{
		ProviderType: cfg.Events.Provider,
		Brokers:      cfg.Events.Brokers,
		Topic:        cfg.Events.Topic,
		Logger:       log,
	})
	if err != nil {
		return fail(fmt.Errorf("creating event publisher: %w", err))
	}

	notebook, err := rag.New(rag.Config{
		Store:            c.Store,
		Vectors:          c.Vectors,
		Embedder:         c.Embedder,
		Chatter:          c.Chatter,
		Publisher:        c.Publisher,
		Logger:           log,
		SimilarityCutoff: float32(cfg.RAG.SimilarityCutoff),
		OnPartialFailure: policy,
	})
	if err != nil {
		return fail(err)
	}

	log.Info("notebook ready",
		"storage", cfg.Storage.Provider,
		"vector_store", cfg.VectorStore.Provider,
		"embedding_provider", cfg.Embedding.Provider,
		"chat_provider", cfg.Chat.Provider,
		"events", cfg.Events.Provider,
		"on_partial_failure", string(policy),
	)

	return notebook, c, nil
}

func apiKey(providerType string) string {
	env := provider.APIKeyEnv(providerType)
	if env == "" {
		return ""
	}
	return os.Getenv(env)
}
