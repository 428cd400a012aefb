package testsupport

import (
	"context"
	"testing"
	"time"

	"nutrilog/internal/config"
	"nutrilog/internal/kvstore"
	"nutrilog/internal/logbook"
	"nutrilog/internal/logging"
)

// MustOpenKV opens the configured key-value store and registers cleanup.
func MustOpenKV(t testing.TB, cfg *config.Config) kvstore.Store {
	t.Helper()

	store, err := kvstore.Open(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("kvstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustOpenBook opens a log book over store. A nil clock uses time.Now.
func MustOpenBook(t testing.TB, store kvstore.Store, clock func() time.Time) *logbook.Book {
	t.Helper()

	book, err := logbook.Open(context.Background(), store, logbook.Options{
		Logger: logging.NewNop(),
		Clock:  clock,
	})
	if err != nil {
		t.Fatalf("logbook.Open: %v", err)
	}
	return book
}

// NewBook opens an empty in-memory log book.
func NewBook(t testing.TB) *logbook.Book {
	t.Helper()
	return MustOpenBook(t, kvstore.NewMemory(), nil)
}
