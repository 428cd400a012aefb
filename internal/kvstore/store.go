package kvstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"nutrilog/internal/config"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("kvstore: closed")

// Store persists opaque blobs by key. Put replaces the value atomically:
// readers observe either the previous blob or the new one, never a partial
// write.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open builds the backend selected by cfg.Storage.Backend under the data
// directory. Callers own the returned store and must Close it.
func Open(cfg *config.Config, logger *slog.Logger) (Store, error) {
	switch cfg.Storage.Backend {
	case config.StorageMemory:
		return NewMemory(), nil
	case config.StorageBadger:
		return OpenBadger(filepath.Join(cfg.Paths.DataDir, "badger"), logger)
	case config.StorageSQLite, "":
		return OpenSQLite(filepath.Join(cfg.Paths.DataDir, "nutrilog.db"))
	default:
		return nil, fmt.Errorf("kvstore: unsupported backend %q", cfg.Storage.Backend)
	}
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
