// Package sqlitepath resolves where the local SQLite databases live.
package sqlitepath

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/papercomputeco/ragnotes/pkg/config"
	"github.com/papercomputeco/ragnotes/pkg/dotdir"
	storageutils "github.com/papercomputeco/ragnotes/pkg/storage/utils"
	vectorutils "github.com/papercomputeco/ragnotes/pkg/vector/utils"
)

const (
	// NotesDB is the file name of the SQLite note store.
	NotesDB = "ragnotes.db"

	// VectorsDB is the file name of the sqlite-vec index.
	VectorsDB = "vectors.db"
)

// Resolve returns the path of the database file name. An explicit override
// wins; otherwise an existing file in the working directory or the local
// .ragnotes/ directory is reused, and the resolved .ragnotes/ directory is
// the fallback.
func Resolve(override, configDir, name string) (string, error) {
	if override != "" {
		return override, nil
	}

	for _, candidate := range candidates(name) {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return filepath.Abs(candidate)
		}
	}

	return dotdir.NewManager().Path(configDir, name)
}

func candidates(name string) []string {
	return []string{
		name,
		filepath.Join(dotdir.DirName, name),
	}
}

// ResolveStores returns the SQLite note database and sqlite-vec index paths
// for cfg. A path is empty when its store is not SQLite backed.
func ResolveStores(cfg *config.Config, configDir string) (string, string, error) {
	var notes, vectors string
	var err error

	if cfg.Storage.Provider == storageutils.ProviderSQLite {
		notes, err = Resolve(cfg.Storage.SQLitePath, configDir, NotesDB)
		if err != nil {
			return "", "", fmt.Errorf("resolving note database: %w", err)
		}
	}

	if cfg.VectorStore.Provider == vectorutils.ProviderSQLite {
		vectors, err = Resolve(cfg.VectorStore.Target, configDir, VectorsDB)
		if err != nil {
			return "", "", fmt.Errorf("resolving vector database: %w", err)
		}
	}

	return notes, vectors, nil
}
