// Package vectorutils builds a vector.Driver from configuration.
package vectorutils

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/papercomputeco/ragnotes/pkg/vector"
	"github.com/papercomputeco/ragnotes/pkg/vector/chroma"
	"github.com/papercomputeco/ragnotes/pkg/vector/inmemory"
	"github.com/papercomputeco/ragnotes/pkg/vector/pgvector"
	"github.com/papercomputeco/ragnotes/pkg/vector/qdrant"
	"github.com/papercomputeco/ragnotes/pkg/vector/sqlitevec"
)

// Provider names accepted by NewVectorDriver.
const (
	ProviderInMemory = "inmemory"
	ProviderSQLite   = "sqlite"
	ProviderChroma   = "chroma"
	ProviderQdrant   = "qdrant"
	ProviderPGVector = "pgvector"
)

// Providers lists every supported vector store provider.
var Providers = []string{ProviderInMemory, ProviderSQLite, ProviderChroma, ProviderQdrant, ProviderPGVector}

type NewVectorDriverOpts struct {
	ProviderType string

	// TargetURL is a URL, gRPC address, DSN or file path depending on the
	// provider.
	TargetURL  string
	Collection string
	Dimensions uint
	Logger     *slog.Logger
}

func NewVectorDriver(ctx context.Context, o *NewVectorDriverOpts) (vector.Driver, error) {
	switch o.ProviderType {
	case ProviderInMemory:
		return inmemory.NewDriver(), nil
	case ProviderSQLite:
		return sqlitevec.NewDriver(sqlitevec.Config{
			DBPath:     o.TargetURL,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case ProviderChroma:
		return chroma.NewDriver(chroma.Config{
			URL:            o.TargetURL,
			CollectionName: o.Collection,
		}, o.Logger)
	case ProviderQdrant:
		return qdrant.NewDriver(ctx, qdrant.Config{
			Target:         o.TargetURL,
			APIKey:         os.Getenv("QDRANT_API_KEY"),
			CollectionName: o.Collection,
			Dimensions:     o.Dimensions,
		}, o.Logger)
	case ProviderPGVector:
		// The note store may share the database, so the collection is
		// suffixed to keep the tables apart.
		table := ""
		if o.Collection != "" {
			table = o.Collection + "_embeddings"
		}
		return pgvector.NewDriver(ctx, pgvector.Config{
			ConnString: o.TargetURL,
			Table:      table,
			Dimensions: o.Dimensions,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}
