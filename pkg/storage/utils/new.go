// Package storageutils builds a storage.Driver from configuration.
package storageutils

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/ragnotes/pkg/logger"
	"github.com/papercomputeco/ragnotes/pkg/storage"
	"github.com/papercomputeco/ragnotes/pkg/storage/inmemory"
	"github.com/papercomputeco/ragnotes/pkg/storage/postgres"
	"github.com/papercomputeco/ragnotes/pkg/storage/sqlite"
)

// Provider names accepted by NewStorageDriver.
const (
	ProviderInMemory = "inmemory"
	ProviderSQLite   = "sqlite"
	ProviderPostgres = "postgres"
)

// Providers lists every supported note store provider.
var Providers = []string{ProviderInMemory, ProviderSQLite, ProviderPostgres}

type NewStorageDriverOpts struct {
	ProviderType string
	SQLitePath   string
	PostgresDSN  string
	Logger       *slog.Logger
}

func NewStorageDriver(ctx context.Context, o *NewStorageDriverOpts) (storage.Driver, error) {
	switch o.ProviderType {
	case ProviderInMemory:
		o.log().Info("using in-memory note store")
		return inmemory.NewDriver(), nil

	case ProviderSQLite:
		if o.SQLitePath == "" {
			return nil, errors.New("sqlite note store requires a database path")
		}
		driver, err := sqlite.NewDriver(ctx, o.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("creating SQLite note store: %w", err)
		}
		o.log().Info("using SQLite note store", logger.Path(o.SQLitePath))
		return driver, nil

	case ProviderPostgres:
		if o.PostgresDSN == "" {
			return nil, errors.New("postgres note store requires a connection string")
		}
		driver, err := postgres.NewDriver(ctx, o.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("creating PostgreSQL note store: %w", err)
		}
		o.log().Info("using PostgreSQL note store")
		return driver, nil

	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", o.ProviderType)
	}
}

func (o *NewStorageDriverOpts) log() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}
