package logbook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"nutrilog/internal/kvstore"
	"nutrilog/internal/logging"
	"nutrilog/internal/services"
)

// errUnchanged lets an apply callback skip the write.
var errUnchanged = errors.New("unchanged")

// Record is implemented by every type stored in a Collection.
type Record interface {
	RecordID() string
}

// Collection is an insertion-ordered list of records persisted as one blob.
// The newest record is at index 0.
type Collection[T Record] struct {
	store  kvstore.Store
	schema Schema
	logger *slog.Logger

	mu    sync.RWMutex
	items []T
}

// OpenCollection loads the collection described by schema, migrating older
// blobs forward when the current key is absent. Corrupt blobs are preserved
// under a ".corrupt" key and skipped. Only backend I/O failures are returned.
func OpenCollection[T Record](ctx context.Context, store kvstore.Store, schema Schema, logger *slog.Logger) (*Collection[T], error) {
	if err := schema.validate(); err != nil {
		return nil, err
	}
	c := &Collection[T]{
		store:  store,
		schema: schema,
		logger: logging.NewComponentLogger(logger, "logbook").With(logging.String("collection", schema.Name)),
	}
	if err := c.load(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Collection[T]) load(ctx context.Context) error {
	for v := c.schema.Version; v >= c.schema.oldest(); v-- {
		key := c.schema.Key(v)
		data, ok, err := c.store.Get(ctx, key)
		if err != nil {
			return services.Wrap(services.ErrStorage, "logbook", "load", key, err)
		}
		if !ok {
			continue
		}

		items, err := c.decode(ctx, v, data)
		if err != nil {
			c.quarantine(ctx, key, data, err)
			continue
		}
		c.items = items

		if v != c.schema.Version {
			if err := c.persistLocked(ctx, items); err != nil {
				return err
			}
			if err := c.store.Delete(ctx, key); err != nil {
				logging.WarnWithContext(c.logger, "old schema key not deleted", "logbook_migration_cleanup_failed",
					logging.String("key", key),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "the stale key is ignored on later loads"),
					logging.String(logging.FieldImpact, "none"),
				)
			}
			c.logger.Info("collection migrated",
				logging.Int("from_version", v),
				logging.Int("to_version", c.schema.Version),
				logging.Int("entries", len(items)),
			)
		}
		return nil
	}
	c.items = nil
	return nil
}

func (c *Collection[T]) decode(ctx context.Context, version int, data []byte) ([]T, error) {
	if version != c.schema.Version {
		migrated, err := c.schema.migrate(ctx, version, data)
		if err != nil {
			return nil, err
		}
		data = migrated
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.schema.Key(version), err)
	}
	return items, nil
}

func (c *Collection[T]) quarantine(ctx context.Context, key string, data []byte, cause error) {
	backupKey := fmt.Sprintf("%s.corrupt-%d", key, time.Now().Unix())
	backupErr := c.store.Put(ctx, backupKey, data)
	attrs := []logging.Attr{
		logging.String("key", key),
		logging.Error(cause),
		logging.String(logging.FieldErrorHint, "inspect or delete the quarantined blob"),
		logging.String(logging.FieldImpact, "entries from this blob are not loaded"),
	}
	if backupErr == nil {
		attrs = append(attrs, logging.String("quarantine_key", backupKey))
	}
	logging.WarnWithContext(c.logger, "collection blob unreadable; skipping", "logbook_blob_corrupt", attrs...)
	if backupErr == nil {
		_ = c.store.Delete(ctx, key)
	}
}

func (c *Collection[T]) persistLocked(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return services.Wrap(services.ErrStorage, "logbook", "encode", c.schema.Name, err)
	}
	if err := c.store.Put(ctx, c.schema.CurrentKey(), data); err != nil {
		return services.Wrap(services.ErrStorage, "logbook", "save", c.schema.CurrentKey(), err)
	}
	return nil
}

// apply computes the next collection from the current one and persists it.
// The in-memory slice is only replaced once the write succeeds.
func (c *Collection[T]) apply(ctx context.Context, fn func(current []T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := fn(slices.Clone(c.items))
	if errors.Is(err, errUnchanged) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := c.persistLocked(ctx, next); err != nil {
		return err
	}
	c.items = next
	return nil
}

// Schema returns the collection's schema.
func (c *Collection[T]) Schema() Schema { return c.schema }

// Len returns the number of stored records.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// All returns a snapshot of every record, newest first.
func (c *Collection[T]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

// Filter returns the records for which keep reports true, in collection order.
func (c *Collection[T]) Filter(keep func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []T
	for _, item := range c.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// Get returns the record with id.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if item.RecordID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Insert adds item at the head of the collection.
func (c *Collection[T]) Insert(ctx context.Context, item T) error {
	return c.apply(ctx, func(current []T) ([]T, error) {
		if indexOf(current, item.RecordID()) >= 0 {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, item.RecordID())
		}
		return slices.Insert(current, 0, item), nil
	})
}

// Update replaces the stored record with the same id.
func (c *Collection[T]) Update(ctx context.Context, item T) error {
	return c.apply(ctx, func(current []T) ([]T, error) {
		idx := indexOf(current, item.RecordID())
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, item.RecordID())
		}
		current[idx] = item
		return current, nil
	})
}

// Mutate applies fn to the stored record with id and persists the result.
// Returning an error from fn aborts without writing.
func (c *Collection[T]) Mutate(ctx context.Context, id string, fn func(*T) error) (T, error) {
	var updated T
	err := c.apply(ctx, func(current []T) ([]T, error) {
		idx := indexOf(current, id)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err := fn(&current[idx]); err != nil {
			return nil, err
		}
		updated = current[idx]
		return current, nil
	})
	return updated, err
}

// Remove deletes the record with id. It reports false when nothing was stored.
func (c *Collection[T]) Remove(ctx context.Context, id string) (T, bool, error) {
	var (
		removed T
		found   bool
	)
	err := c.apply(ctx, func(current []T) ([]T, error) {
		idx := indexOf(current, id)
		if idx < 0 {
			return nil, errUnchanged
		}
		removed, found = current[idx], true
		return slices.Delete(current, idx, idx+1), nil
	})
	if err != nil {
		return removed, false, err
	}
	return removed, found, nil
}

func indexOf[T Record](items []T, id string) int {
	return slices.IndexFunc(items, func(item T) bool { return item.RecordID() == id })
}
