package kvstore_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"nutrilog/internal/config"
	"nutrilog/internal/kvstore"
)

func backends(t *testing.T) map[string]kvstore.Store {
	t.Helper()

	sqliteStore, err := kvstore.OpenSQLite(filepath.Join(t.TempDir(), "blobs.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	badgerStore, err := kvstore.OpenBadger(filepath.Join(t.TempDir(), "badger"), nil)
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	stores := map[string]kvstore.Store{
		"memory": kvstore.NewMemory(),
		"sqlite": sqliteStore,
		"badger": badgerStore,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := store.Get(ctx, "meals-v6"); err != nil || ok {
				t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
			}

			if err := store.Put(ctx, "meals-v6", []byte(`[{"id":"a"}]`)); err != nil {
				t.Fatalf("Put: %v", err)
			}
			got, ok, err := store.Get(ctx, "meals-v6")
			if err != nil || !ok {
				t.Fatalf("Get after Put: ok=%v err=%v", ok, err)
			}
			if string(got) != `[{"id":"a"}]` {
				t.Fatalf("unexpected value %q", got)
			}

			if err := store.Put(ctx, "meals-v6", []byte(`[]`)); err != nil {
				t.Fatalf("overwrite Put: %v", err)
			}
			got, _, _ = store.Get(ctx, "meals-v6")
			if string(got) != `[]` {
				t.Fatalf("expected overwrite, got %q", got)
			}

			if err := store.Delete(ctx, "meals-v6"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, ok, _ := store.Get(ctx, "meals-v6"); ok {
				t.Fatal("expected key to be deleted")
			}
			if err := store.Delete(ctx, "meals-v6"); err != nil {
				t.Fatalf("Delete of missing key should succeed, got %v", err)
			}
		})
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "blobs.db")

	store, err := kvstore.OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := store.Put(ctx, "water-v1", []byte(`[{"day":"2026-01-02","amountMl":500}]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := kvstore.OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, ok, err := reopened.Get(ctx, "water-v1")
	if err != nil || !ok {
		t.Fatalf("Get after reopen: ok=%v err=%v", ok, err)
	}
	if len(got) == 0 {
		t.Fatal("expected persisted value")
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	value := []byte("abc")
	if err := store.Put(ctx, "k", value); err != nil {
		t.Fatalf("Put: %v", err)
	}
	value[0] = 'z'
	got, _, _ := store.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("stored value mutated through caller slice: %q", got)
	}
	got[1] = 'z'
	again, _, _ := store.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("stored value mutated through returned slice: %q", again)
	}
}

func TestClosedStoreErrors(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	_ = store.Close()
	if err := store.Put(ctx, "k", nil); !errors.Is(err, kvstore.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()

	cfg.Storage.Backend = config.StorageMemory
	store, err := kvstore.Open(&cfg, nil)
	if err != nil {
		t.Fatalf("Open memory: %v", err)
	}
	if _, ok := store.(*kvstore.Memory); !ok {
		t.Fatalf("expected memory backend, got %T", store)
	}
	_ = store.Close()

	cfg.Storage.Backend = config.StorageSQLite
	store, err = kvstore.Open(&cfg, nil)
	if err != nil {
		t.Fatalf("Open sqlite: %v", err)
	}
	if _, ok := store.(*kvstore.SQLite); !ok {
		t.Fatalf("expected sqlite backend, got %T", store)
	}
	_ = store.Close()

	cfg.Storage.Backend = "etcd"
	if _, err := kvstore.Open(&cfg, nil); err == nil {
		t.Fatal("expected error for unsupported backend")
	}
}

func TestLockDirIsExclusive(t *testing.T) {
	dir := t.TempDir()
	first, err := kvstore.LockDir(dir)
	if err != nil {
		t.Fatalf("first LockDir: %v", err)
	}
	if _, err := kvstore.LockDir(dir); !errors.Is(err, kvstore.ErrLocked) {
		t.Fatalf("expected ErrLocked for second lock, got %v", err)
	}
	if err := first.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	second, err := kvstore.LockDir(dir)
	if err != nil {
		t.Fatalf("LockDir after unlock: %v", err)
	}
	_ = second.Unlock()
}
