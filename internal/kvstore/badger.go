package kvstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
)

// Badger stores blobs in an embedded BadgerDB.
type Badger struct {
	db   *badger.DB
	path string
}

// OpenBadger opens (or creates) a Badger database at dir. A nil logger
// silences Badger's internal logging.
func OpenBadger(dir string, logger *slog.Logger) (*Badger, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create database directory %s: %w", dir, err)
	}
	opts := badger.DefaultOptions(dir).
		WithSyncWrites(true).
		WithNumVersionsToKeep(1)
	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger})
	} else {
		opts = opts.WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Badger{db: db, path: dir}, nil
}

// OpenBadgerInMemory opens a Badger instance with no on-disk footprint.
func OpenBadgerInMemory() (*Badger, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Badger{db: db}, nil
}

// Get returns the blob stored under key.
func (b *Badger) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if b == nil || b.db == nil {
		return nil, false, ErrClosed
	}
	if err := ensureContext(ctx).Err(); err != nil {
		return nil, false, err
	}
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Put replaces the blob inside a single transaction.
func (b *Badger) Put(ctx context.Context, key string, value []byte) error {
	if b == nil || b.db == nil {
		return ErrClosed
	}
	if err := ensureContext(ctx).Err(); err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}
	if err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	}); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (b *Badger) Delete(ctx context.Context, key string) error {
	if b == nil || b.db == nil {
		return ErrClosed
	}
	if err := ensureContext(ctx).Err(); err != nil {
		return err
	}
	if err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Close flushes and closes the database.
func (b *Badger) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
